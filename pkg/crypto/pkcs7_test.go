package crypto

import (
	"bytes"
	"testing"
)

func TestPad(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    []byte
	}{
		{
			name: "empty input gets a full block",
			data: nil,
			want: bytes.Repeat([]byte{16}, 16),
		},
		{
			name: "one short of a block",
			data: bytes.Repeat([]byte{0xAA}, 15),
			want: append(bytes.Repeat([]byte{0xAA}, 15), 1),
		},
		{
			name: "aligned input gets a full extra block",
			data: bytes.Repeat([]byte{0xBB}, 16),
			want: append(bytes.Repeat([]byte{0xBB}, 16), bytes.Repeat([]byte{16}, 16)...),
		},
		{
			name: "partial block",
			data: []byte{1, 2, 3},
			want: append([]byte{1, 2, 3}, bytes.Repeat([]byte{13}, 13)...),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Pad(tt.data, 16)
			if !bytes.Equal(got, tt.want) {
				t.Errorf("Pad() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUnpad(t *testing.T) {
	t.Run("roundtrip", func(t *testing.T) {
		for size := 0; size <= 48; size++ {
			data := bytes.Repeat([]byte{0x7F}, size)
			got, err := Unpad(Pad(data, 16), 16)
			if err != nil {
				t.Fatalf("Unpad(Pad(%d bytes)) error = %v", size, err)
			}
			if !bytes.Equal(got, data) {
				t.Errorf("Unpad(Pad(%d bytes)) mismatch", size)
			}
		}
	})

	t.Run("invalid", func(t *testing.T) {
		tests := []struct {
			name string
			data []byte
		}{
			{"empty", nil},
			{"misaligned", make([]byte, 15)},
			{"zero pad byte", append(bytes.Repeat([]byte{0}, 15), 0)},
			{"pad byte exceeds block", append(bytes.Repeat([]byte{0}, 15), 17)},
			{"inconsistent padding", append(bytes.Repeat([]byte{9}, 14), 8, 9)},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				if _, err := Unpad(tt.data, 16); err != ErrBadPadding {
					t.Errorf("Unpad() error = %v, want %v", err, ErrBadPadding)
				}
			})
		}
	})
}

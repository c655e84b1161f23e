package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func testKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		t.Fatalf("rand.Read() error = %v", err)
	}
	return key
}

func TestNewCipher(t *testing.T) {
	t.Run("valid key", func(t *testing.T) {
		if _, err := NewCipher(make([]byte, KeySize)); err != nil {
			t.Errorf("NewCipher() error = %v", err)
		}
	})

	t.Run("invalid key sizes", func(t *testing.T) {
		for _, size := range []int{0, 8, 15, 17, 24, 32} {
			if _, err := NewCipher(make([]byte, size)); err != ErrInvalidKeySize {
				t.Errorf("NewCipher(%d bytes) error = %v, want %v", size, err, ErrInvalidKeySize)
			}
		}
	})
}

func TestSealOpenRoundtrip(t *testing.T) {
	key := testKey(t)
	c, err := NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	// Lengths around block boundaries plus the receive buffer bound.
	for _, size := range []int{0, 1, 15, 16, 17, 31, 32, 255, 4096} {
		plaintext := make([]byte, size)
		if _, err := rand.Read(plaintext); err != nil {
			t.Fatalf("rand.Read() error = %v", err)
		}

		sealed, err := c.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal(%d bytes) error = %v", size, err)
		}

		// IV prefix plus at least one block of padded ciphertext.
		if len(sealed) < IVSize+BlockSize {
			t.Errorf("Seal(%d bytes) output length = %d, want >= %d", size, len(sealed), IVSize+BlockSize)
		}
		if (len(sealed)-IVSize)%BlockSize != 0 {
			t.Errorf("Seal(%d bytes) ciphertext not block aligned: %d", size, len(sealed)-IVSize)
		}

		opened, err := c.Open(sealed)
		if err != nil {
			t.Fatalf("Open() error = %v", err)
		}
		if !bytes.Equal(opened, plaintext) {
			t.Errorf("roundtrip mismatch at %d bytes", size)
		}
	}
}

func TestSealGeneratesFreshIVs(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	plaintext := []byte(`{"method":"status.position"}`)

	a, err := c.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	b, err := c.Seal(plaintext)
	if err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	if bytes.Equal(a[:IVSize], b[:IVSize]) {
		t.Error("Seal() reused an IV across messages")
	}
	if bytes.Equal(a[IVSize:], b[IVSize:]) {
		t.Error("Seal() produced identical ciphertexts for distinct IVs")
	}
}

func TestSealWithIV(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	t.Run("deterministic", func(t *testing.T) {
		iv := make([]byte, IVSize)
		a, err := c.SealWithIV(iv, []byte("hello"))
		if err != nil {
			t.Fatalf("SealWithIV() error = %v", err)
		}
		b, err := c.SealWithIV(iv, []byte("hello"))
		if err != nil {
			t.Fatalf("SealWithIV() error = %v", err)
		}
		if !bytes.Equal(a, b) {
			t.Error("SealWithIV() not deterministic for a fixed IV")
		}
	})

	t.Run("invalid IV size", func(t *testing.T) {
		if _, err := c.SealWithIV(make([]byte, 12), []byte("hello")); err != ErrInvalidIVSize {
			t.Errorf("SealWithIV() error = %v, want %v", err, ErrInvalidIVSize)
		}
	})
}

func TestOpenRejectsCorruption(t *testing.T) {
	c, err := NewCipher(testKey(t))
	if err != nil {
		t.Fatalf("NewCipher() error = %v", err)
	}

	t.Run("too short", func(t *testing.T) {
		for _, size := range []int{0, 1, IVSize, IVSize + BlockSize - 1} {
			if _, err := c.Open(make([]byte, size)); err != ErrCiphertextTooShort {
				t.Errorf("Open(%d bytes) error = %v, want %v", size, err, ErrCiphertextTooShort)
			}
		}
	})

	t.Run("not block aligned", func(t *testing.T) {
		sealed, err := c.Seal([]byte("payload"))
		if err != nil {
			t.Fatalf("Seal() error = %v", err)
		}
		if _, err := c.Open(sealed[:len(sealed)-1]); err != ErrNotBlockAligned {
			t.Errorf("Open() error = %v, want %v", err, ErrNotBlockAligned)
		}
	})

	t.Run("bit flips fail cleanly", func(t *testing.T) {
		plaintext := []byte(`{"id":7,"method":"move.up","params":{"targetID":"a1","seq":1}}`)
		sealed, err := c.Seal(plaintext)
		if err != nil {
			t.Fatalf("Seal() error = %v", err)
		}

		// Flip one bit at a time across the whole datagram. Without a
		// MAC most flips still unpad to garbage plaintext; the contract
		// here is only that Open never panics and never returns the
		// original message as valid.
		for i := range sealed {
			corrupted := make([]byte, len(sealed))
			copy(corrupted, sealed)
			corrupted[i] ^= 0x01

			opened, err := c.Open(corrupted)
			if err == nil && bytes.Equal(opened, plaintext) {
				t.Errorf("Open() accepted datagram with bit flip at byte %d as original plaintext", i)
			}
		}
	})

	t.Run("wrong key", func(t *testing.T) {
		sealed, err := c.Seal([]byte("payload"))
		if err != nil {
			t.Fatalf("Seal() error = %v", err)
		}

		other, err := NewCipher(testKey(t))
		if err != nil {
			t.Fatalf("NewCipher() error = %v", err)
		}
		if opened, err := other.Open(sealed); err == nil && bytes.Equal(opened, []byte("payload")) {
			t.Error("Open() under the wrong key returned the original plaintext")
		}
	})
}

func TestConvenienceFunctions(t *testing.T) {
	key := testKey(t)
	plaintext := []byte(`{"result":true}`)

	sealed, err := Encrypt(key, plaintext)
	if err != nil {
		t.Fatalf("Encrypt() error = %v", err)
	}

	opened, err := Decrypt(key, sealed)
	if err != nil {
		t.Fatalf("Decrypt() error = %v", err)
	}
	if !bytes.Equal(opened, plaintext) {
		t.Errorf("Decrypt() = %q, want %q", opened, plaintext)
	}

	if _, err := Encrypt(make([]byte, 8), plaintext); err != ErrInvalidKeySize {
		t.Errorf("Encrypt() short key error = %v, want %v", err, ErrInvalidKeySize)
	}
	if _, err := Decrypt(make([]byte, 8), sealed); err != ErrInvalidKeySize {
		t.Errorf("Decrypt() short key error = %v, want %v", err, ErrInvalidKeySize)
	}
}

func TestGenerateIV(t *testing.T) {
	a, err := GenerateIV()
	if err != nil {
		t.Fatalf("GenerateIV() error = %v", err)
	}
	if len(a) != IVSize {
		t.Errorf("GenerateIV() length = %d, want %d", len(a), IVSize)
	}

	b, err := GenerateIV()
	if err != nil {
		t.Fatalf("GenerateIV() error = %v", err)
	}
	if bytes.Equal(a, b) {
		t.Error("GenerateIV() returned identical IVs")
	}
}

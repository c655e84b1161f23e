package crypto

import "errors"

// ErrBadPadding is returned when PKCS7 padding validation fails during
// decryption. On this protocol it is the primary corruption signal,
// since datagrams carry no MAC.
var ErrBadPadding = errors.New("crypto: invalid PKCS7 padding")

// Pad appends PKCS7 padding to data so its length is a multiple of
// blockSize. A full block of padding is added when data is already
// aligned, so the result is always at least one byte longer.
func Pad(data []byte, blockSize int) []byte {
	padLen := blockSize - len(data)%blockSize

	out := make([]byte, len(data)+padLen)
	copy(out, data)
	for i := len(data); i < len(out); i++ {
		out[i] = byte(padLen)
	}
	return out
}

// Unpad validates and removes PKCS7 padding. Every padding byte is
// checked, not just the last one.
func Unpad(data []byte, blockSize int) ([]byte, error) {
	if len(data) == 0 || len(data)%blockSize != 0 {
		return nil, ErrBadPadding
	}

	padLen := int(data[len(data)-1])
	if padLen == 0 || padLen > blockSize {
		return nil, ErrBadPadding
	}

	for _, b := range data[len(data)-padLen:] {
		if int(b) != padLen {
			return nil, ErrBadPadding
		}
	}

	return data[:len(data)-padLen], nil
}

// AES-CBC framing for the Somfy PoE command channel.
// Every UDP datagram exchanged with the motor is framed as:
//
//	IV (16 bytes) || AES-128-CBC(PKCS7-padded plaintext)
//
// A fresh random IV is generated for each outgoing message. The
// protocol carries no integrity tag; a corrupted datagram surfaces as
// a padding or parse error, never as silent garbage accepted upstream.

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
)

// Framing constants.
const (
	// KeySize is the AES-128 key size in bytes.
	KeySize = 16

	// IVSize is the initialization vector size in bytes. The IV is
	// prepended to every ciphertext on the wire.
	IVSize = 16

	// BlockSize is the AES block size (always 16 bytes).
	BlockSize = aes.BlockSize
)

// Errors
var (
	ErrInvalidKeySize     = errors.New("crypto: invalid key size, must be 16 bytes")
	ErrInvalidIVSize      = errors.New("crypto: invalid IV size, must be 16 bytes")
	ErrCiphertextTooShort = errors.New("crypto: ciphertext too short to carry an IV")
	ErrNotBlockAligned    = errors.New("crypto: ciphertext length is not a multiple of the block size")
)

// Cipher encrypts and decrypts command-channel payloads under a single
// session key. It is stateless apart from the key schedule and safe for
// concurrent use.
type Cipher struct {
	block cipher.Block
}

// NewCipher creates a Cipher for the given session key.
// The key must be exactly 16 bytes (AES-128).
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		return nil, ErrInvalidKeySize
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	return &Cipher{block: block}, nil
}

// Seal encrypts plaintext with a freshly generated random IV and
// returns IV || ciphertext, ready to be sent as a single datagram.
func (c *Cipher) Seal(plaintext []byte) ([]byte, error) {
	iv, err := GenerateIV()
	if err != nil {
		return nil, err
	}
	return c.SealWithIV(iv, plaintext)
}

// SealWithIV encrypts plaintext under the given IV and returns
// IV || ciphertext. The IV must never be reused with the same key;
// use Seal unless a deterministic IV is required (tests, vectors).
func (c *Cipher) SealWithIV(iv, plaintext []byte) ([]byte, error) {
	if len(iv) != IVSize {
		return nil, ErrInvalidIVSize
	}

	padded := Pad(plaintext, BlockSize)

	out := make([]byte, IVSize+len(padded))
	copy(out, iv)

	mode := cipher.NewCBCEncrypter(c.block, iv)
	mode.CryptBlocks(out[IVSize:], padded)

	return out, nil
}

// Open splits the leading IV off data, decrypts the remainder and
// removes the PKCS7 padding. It returns the original plaintext, or an
// error when the datagram is too short, misaligned or carries invalid
// padding (the only corruption signal this protocol provides).
func (c *Cipher) Open(data []byte) ([]byte, error) {
	if len(data) < IVSize+BlockSize {
		return nil, ErrCiphertextTooShort
	}

	iv := data[:IVSize]
	ciphertext := data[IVSize:]

	if len(ciphertext)%BlockSize != 0 {
		return nil, ErrNotBlockAligned
	}

	plaintext := make([]byte, len(ciphertext))
	mode := cipher.NewCBCDecrypter(c.block, iv)
	mode.CryptBlocks(plaintext, ciphertext)

	return Unpad(plaintext, BlockSize)
}

// GenerateIV returns a cryptographically random 16-byte IV.
func GenerateIV() ([]byte, error) {
	iv := make([]byte, IVSize)
	if _, err := rand.Read(iv); err != nil {
		return nil, err
	}
	return iv, nil
}

// Encrypt is a convenience function that seals plaintext under key with
// a random IV. See Cipher.Seal.
func Encrypt(key, plaintext []byte) ([]byte, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return c.Seal(plaintext)
}

// Decrypt is a convenience function that opens IV-prefixed data under
// key. See Cipher.Open.
func Decrypt(key, data []byte) ([]byte, error) {
	c, err := NewCipher(key)
	if err != nil {
		return nil, err
	}
	return c.Open(data)
}

// Package cryptocore provides the primitive operations the Agile decryption
// pipeline is built on: hashing, HMAC and raw AES-CBC decryption.
//
// Everything above this package talks to the primitives through the
// Provider interface so that tests can swap in a recording double.
package cryptocore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"errors"
	"fmt"
)

const (
	// CipherAES is the only cipherAlgorithm value we support.
	CipherAES = "AES"
	// ChainingModeCBC is the only cipherChaining value we support.
	ChainingModeCBC = "ChainingModeCBC"
	// ChainingModeCFB is defined by the format but not implemented.
	ChainingModeCFB = "ChainingModeCFB"
)

var (
	// ErrUnsupportedAlgorithm is returned for hash algorithm names we do not
	// know.
	ErrUnsupportedAlgorithm = errors.New("unsupported hash algorithm")
	// ErrUnsupportedCipher is returned for any cipherAlgorithm but AES.
	ErrUnsupportedCipher = errors.New("unsupported cipher algorithm")
	// ErrUnsupportedChaining is returned for any cipherChaining but CBC.
	ErrUnsupportedChaining = errors.New("unsupported cipher chaining")
	// ErrPrimitive marks a failure inside the Provider itself.
	ErrPrimitive = errors.New("crypto primitive failure")
)

// PrimitiveError wraps an error coming out of a Provider call.
type PrimitiveError struct {
	Op  string
	Err error
}

func (e *PrimitiveError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error.
func (e *PrimitiveError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrPrimitive) true for every PrimitiveError.
func (e *PrimitiveError) Is(target error) bool {
	return target == ErrPrimitive
}

// Provider is the capability set the pipeline needs.
type Provider interface {
	// Hash returns the digest of the concatenation of "data".
	Hash(alg HashAlgo, data ...[]byte) ([]byte, error)
	// HMAC returns the keyed digest of the concatenation of "data".
	HMAC(alg HashAlgo, key []byte, data ...[]byte) ([]byte, error)
	// DecryptCBC decrypts "ciphertext" with AES in CBC mode. No padding is
	// removed.
	DecryptCBC(key, iv, ciphertext []byte) ([]byte, error)
}

// GoProvider implements Provider using the Go standard library.
type GoProvider struct{}

// New returns the default Provider.
func New() *GoProvider {
	return &GoProvider{}
}

// Hash implements Provider.
func (GoProvider) Hash(alg HashAlgo, data ...[]byte) ([]byte, error) {
	newHash, err := alg.constructor()
	if err != nil {
		return nil, err
	}
	h := newHash()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil), nil
}

// HMAC implements Provider.
func (GoProvider) HMAC(alg HashAlgo, key []byte, data ...[]byte) ([]byte, error) {
	newHash, err := alg.constructor()
	if err != nil {
		return nil, err
	}
	m := hmac.New(newHash, key)
	for _, d := range data {
		m.Write(d)
	}
	return m.Sum(nil), nil
}

// DecryptCBC implements Provider.
func (GoProvider) DecryptCBC(key, iv, ciphertext []byte) ([]byte, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, &PrimitiveError{"DecryptCBC", fmt.Errorf("invalid AES key length %d", len(key))}
	}
	if len(iv) != aes.BlockSize {
		return nil, &PrimitiveError{"DecryptCBC", fmt.Errorf("IV length %d != block size %d", len(iv), aes.BlockSize)}
	}
	if len(ciphertext)%aes.BlockSize != 0 {
		return nil, &PrimitiveError{"DecryptCBC", fmt.Errorf("ciphertext length %d is not a multiple of the block size", len(ciphertext))}
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, &PrimitiveError{"DecryptCBC", err}
	}
	out := make([]byte, len(ciphertext))
	cipher.NewCBCDecrypter(block, iv).CryptBlocks(out, ciphertext)
	return out, nil
}

// CheckCipher verifies that "cipherAlgorithm" and "chaining" name a
// combination we can decrypt. It must be called before any cipher call.
func CheckCipher(cipherAlgorithm string, chaining string) error {
	if cipherAlgorithm != CipherAES {
		return fmt.Errorf("%w: %q", ErrUnsupportedCipher, cipherAlgorithm)
	}
	if chaining != ChainingModeCBC {
		return fmt.Errorf("%w: %q", ErrUnsupportedChaining, chaining)
	}
	return nil
}

package keyderiv

import (
	"fmt"

	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
)

// UnwrapPackageKey decrypts "encryptedKeyValue" with the key-encryption key
// and returns the first "keyBytes" bytes, which is the package key.
// The IV is the salt fitted to the block size. encryptedKeyValue is padded
// to a block multiple on disk, hence the cut.
func UnwrapPackageKey(p cryptocore.Provider, kek []byte, cipherAlgorithm string, chaining string,
	salt []byte, blockSize int, encryptedKeyValue []byte, keyBytes int) ([]byte, error) {

	if err := cryptocore.CheckCipher(cipherAlgorithm, chaining); err != nil {
		return nil, err
	}
	if blockSize <= 0 {
		return nil, fmt.Errorf("UnwrapPackageKey: invalid blockSize %d", blockSize)
	}
	iv := cryptocore.FitLength(salt, blockSize)
	key, err := p.DecryptCBC(kek, iv, encryptedKeyValue)
	if err != nil {
		return nil, fmt.Errorf("UnwrapPackageKey: %w", err)
	}
	if len(key) < keyBytes {
		return nil, fmt.Errorf("UnwrapPackageKey: got %d key bytes, want %d", len(key), keyBytes)
	}
	return key[:keyBytes], nil
}

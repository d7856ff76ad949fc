package encinfo

import (
	"crypto/aes"
	"fmt"

	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
)

// Validate checks that the combination of settings makes sense and is
// supported. Unknown hashes and chaining modes come back wrapping
// cryptocore.ErrUnsupportedAlgorithm and cryptocore.ErrUnsupportedChaining.
func (d *Descriptor) Validate() error {
	if err := d.KeyData.validate("keyData"); err != nil {
		return err
	}
	if err := d.KeyEncryptor.KeyData.validate("encryptedKey"); err != nil {
		return err
	}
	if len(d.KeyEncryptor.EncryptedKeyValue) == 0 {
		return fmt.Errorf("%w: empty encryptedKeyValue", ErrInvalidEncryptionInfo)
	}
	if len(d.KeyEncryptor.EncryptedKeyValue)%d.KeyEncryptor.BlockSize != 0 {
		return fmt.Errorf("%w: encryptedKeyValue length %d is not a multiple of blockSize %d",
			ErrInvalidEncryptionInfo, len(d.KeyEncryptor.EncryptedKeyValue), d.KeyEncryptor.BlockSize)
	}
	return nil
}

func (k *KeyData) validate(elem string) error {
	if err := cryptocore.CheckCipher(k.CipherAlgorithm, k.CipherChaining); err != nil {
		return fmt.Errorf("<%s>: %w", elem, err)
	}
	alg, err := cryptocore.ParseHashAlgo(k.HashAlgorithm)
	if err != nil {
		return fmt.Errorf("<%s>: %w", elem, err)
	}
	if k.HashSize != 0 && k.HashSize != alg.Size() {
		return fmt.Errorf("%w: <%s> hashSize=%d but %s produces %d bytes",
			ErrInvalidEncryptionInfo, elem, k.HashSize, alg, alg.Size())
	}
	switch k.KeyBits {
	case 128, 192, 256:
	default:
		return fmt.Errorf("%w: <%s> keyBits=%d is not a valid AES key length",
			ErrInvalidEncryptionInfo, elem, k.KeyBits)
	}
	if k.BlockSize != aes.BlockSize {
		return fmt.Errorf("%w: <%s> blockSize=%d, AES requires %d",
			ErrInvalidEncryptionInfo, elem, k.BlockSize, aes.BlockSize)
	}
	if len(k.SaltValue) == 0 {
		return fmt.Errorf("%w: <%s> empty saltValue", ErrInvalidEncryptionInfo, elem)
	}
	if k.SaltSize != 0 && len(k.SaltValue) != k.SaltSize {
		return fmt.Errorf("%w: <%s> saltValue has %d bytes but saltSize=%d",
			ErrInvalidEncryptionInfo, elem, len(k.SaltValue), k.SaltSize)
	}
	return nil
}

// Hash returns the parsed package hash algorithm. Only valid after
// Validate succeeded.
func (k *KeyData) Hash() cryptocore.HashAlgo {
	alg, _ := cryptocore.ParseHashAlgo(k.HashAlgorithm)
	return alg
}

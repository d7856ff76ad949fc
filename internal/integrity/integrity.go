// Package integrity checks the HMAC that the <dataIntegrity> element stores
// over the EncryptedPackage stream.
package integrity

import (
	"crypto/hmac"
	"errors"
	"fmt"

	"github.com/agiledecrypt/agiledecrypt/internal/contentenc"
	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/encinfo"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

var (
	// BlockKeyHMACKey derives the IV for encryptedHmacKey.
	BlockKeyHMACKey = []byte{0x5f, 0xb2, 0xad, 0x01, 0x0c, 0xb9, 0xe1, 0xf6}
	// BlockKeyHMACValue derives the IV for encryptedHmacValue.
	BlockKeyHMACValue = []byte{0xa0, 0x67, 0x7f, 0x02, 0xb2, 0x2c, 0x84, 0x33}
)

var (
	// ErrIntegrity means the package stream does not match the stored HMAC.
	ErrIntegrity = errors.New("package integrity check failed")
	// ErrNoIntegrityData means the descriptor has no <dataIntegrity> element.
	ErrNoIntegrityData = errors.New("no data integrity information")
)

// Verify decrypts the stored HMAC key and value with the package key and
// checks them against "packageStream", the complete EncryptedPackage stream
// including its length prefix.
func Verify(p cryptocore.Provider, desc *encinfo.Descriptor, packageKey []byte, packageStream []byte) error {
	di := desc.DataIntegrity
	if di == nil {
		return ErrNoIntegrityData
	}
	kd := &desc.KeyData
	if err := cryptocore.CheckCipher(kd.CipherAlgorithm, kd.CipherChaining); err != nil {
		return err
	}
	alg, err := cryptocore.ParseHashAlgo(kd.HashAlgorithm)
	if err != nil {
		return err
	}
	hashSize := kd.HashSize
	if hashSize == 0 {
		hashSize = alg.Size()
	}

	hmacKey, err := decryptField(p, kd, alg, packageKey, BlockKeyHMACKey, di.EncryptedHMACKey, hashSize)
	if err != nil {
		return fmt.Errorf("encryptedHmacKey: %w", err)
	}
	defer cryptocore.Wipe(hmacKey)
	want, err := decryptField(p, kd, alg, packageKey, BlockKeyHMACValue, di.EncryptedHMACValue, hashSize)
	if err != nil {
		return fmt.Errorf("encryptedHmacValue: %w", err)
	}
	have, err := p.HMAC(alg, hmacKey, packageStream)
	if err != nil {
		return err
	}
	if !hmac.Equal(have, want) {
		tlog.Debug.Printf("integrity.Verify: want %x, have %x", want, have)
		return ErrIntegrity
	}
	tlog.Debug.Printf("integrity.Verify: %s HMAC ok over %d bytes", alg, len(packageStream))
	return nil
}

func decryptField(p cryptocore.Provider, kd *encinfo.KeyData, alg cryptocore.HashAlgo, key []byte,
	blockKey []byte, field []byte, n int) ([]byte, error) {

	iv, err := contentenc.BlockIV(p, alg, kd.SaltValue, kd.BlockSize, blockKey)
	if err != nil {
		return nil, err
	}
	out, err := p.DecryptCBC(key, iv, field)
	if err != nil {
		return nil, err
	}
	if len(out) < n {
		return nil, fmt.Errorf("%w: decrypted %d bytes, want %d",
			encinfo.ErrInvalidEncryptionInfo, len(out), n)
	}
	return out[:n], nil
}

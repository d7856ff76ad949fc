package keyderiv

import (
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/encinfo"
)

// ErrPasswordIncorrect is returned by VerifyPassword on a verifier mismatch.
var ErrPasswordIncorrect = errors.New("password incorrect")

// VerifyPassword checks the password against the verifier stored in the key
// encryptor. "spun" is the SpinHash output for the candidate password.
//
// The verifier is a random salt-sized input, stored encrypted together with
// its encrypted hash. Both are decrypted with keys derived from the password
// and the hash is recomputed.
func VerifyPassword(p cryptocore.Provider, ke *encinfo.KeyEncryptor, spun []byte) error {
	if len(ke.EncryptedVerifierHashInput) == 0 || len(ke.EncryptedVerifierHashValue) == 0 {
		return fmt.Errorf("%w: no password verifier", encinfo.ErrInvalidEncryptionInfo)
	}
	alg, err := cryptocore.ParseHashAlgo(ke.HashAlgorithm)
	if err != nil {
		return err
	}
	input, err := decryptVerifierField(p, ke, alg, spun, BlockKeyVerifierHashInput, ke.EncryptedVerifierHashInput)
	if err != nil {
		return err
	}
	inputLen := ke.SaltSize
	if inputLen == 0 {
		inputLen = len(ke.SaltValue)
	}
	if len(input) < inputLen {
		return fmt.Errorf("%w: verifier input too short", encinfo.ErrInvalidEncryptionInfo)
	}
	want, err := p.Hash(alg, input[:inputLen])
	if err != nil {
		return err
	}
	have, err := decryptVerifierField(p, ke, alg, spun, BlockKeyVerifierHashValue, ke.EncryptedVerifierHashValue)
	if err != nil {
		return err
	}
	if len(have) < len(want) {
		return fmt.Errorf("%w: verifier hash too short", encinfo.ErrInvalidEncryptionInfo)
	}
	if subtle.ConstantTimeCompare(have[:len(want)], want) != 1 {
		return ErrPasswordIncorrect
	}
	return nil
}

func decryptVerifierField(p cryptocore.Provider, ke *encinfo.KeyEncryptor, alg cryptocore.HashAlgo,
	spun []byte, blockKey []byte, field []byte) ([]byte, error) {

	if err := cryptocore.CheckCipher(ke.CipherAlgorithm, ke.CipherChaining); err != nil {
		return nil, err
	}
	key, err := FinalizeKey(p, alg, spun, ke.KeyBits, blockKey)
	if err != nil {
		return nil, err
	}
	defer cryptocore.Wipe(key)
	out, err := p.DecryptCBC(key, cryptocore.FitLength(ke.SaltValue, ke.BlockSize), field)
	if err != nil {
		return nil, fmt.Errorf("VerifyPassword: %w", err)
	}
	return out, nil
}

// Package agile ties the pieces together: it turns an EncryptionInfo
// stream, an EncryptedPackage stream and a password into the decrypted
// package.
package agile

import (
	"fmt"

	"github.com/agiledecrypt/agiledecrypt/internal/contentenc"
	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/encinfo"
	"github.com/agiledecrypt/agiledecrypt/internal/integrity"
	"github.com/agiledecrypt/agiledecrypt/internal/keyderiv"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

// Options control the optional checks and the parallelism.
type Options struct {
	// Workers limits the number of chunks decrypted in parallel.
	// 0 means one per CPU.
	Workers int
	// VerifyPassword checks the password verifier before unwrapping the
	// package key, turning a wrong password into ErrPasswordIncorrect.
	VerifyPassword bool
	// VerifyIntegrity checks the <dataIntegrity> HMAC before decrypting.
	VerifyIntegrity bool
}

// Decryptor runs the decryption pipeline. It holds no key material between
// calls and is safe for concurrent use.
type Decryptor struct {
	provider cryptocore.Provider
	opts     Options
}

// New returns a Decryptor using the primitives from "p". A nil Provider
// means cryptocore.New().
func New(p cryptocore.Provider, opts Options) *Decryptor {
	if p == nil {
		p = cryptocore.New()
	}
	return &Decryptor{provider: p, opts: opts}
}

// Decrypt parses and validates "infoStream", derives the package key from
// "password" and decrypts "packageStream". The first error aborts the run.
func (d *Decryptor) Decrypt(infoStream []byte, packageStream []byte, password string) ([]byte, error) {
	desc, err := encinfo.Parse(infoStream)
	if err != nil {
		return nil, err
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	key, err := d.PackageKey(desc, password)
	if err != nil {
		return nil, err
	}
	defer cryptocore.Wipe(key)
	return d.DecryptWithKey(desc, key, packageStream)
}

// PackageKey derives the key-encryption key from "password" and unwraps the
// package key. The descriptor must have been validated.
func (d *Decryptor) PackageKey(desc *encinfo.Descriptor, password string) ([]byte, error) {
	ke := &desc.KeyEncryptor
	alg := ke.Hash()
	spun, err := keyderiv.SpinHash(d.provider, password, alg, ke.SaltValue, ke.SpinCount)
	if err != nil {
		return nil, err
	}
	defer cryptocore.Wipe(spun)
	if d.opts.VerifyPassword {
		if err := keyderiv.VerifyPassword(d.provider, ke, spun); err != nil {
			return nil, err
		}
		tlog.Debug.Printf("PackageKey: password verifier ok")
	}
	kek, err := keyderiv.FinalizeKey(d.provider, alg, spun, ke.KeyBits, keyderiv.BlockKeyEncryptedKey)
	if err != nil {
		return nil, err
	}
	defer cryptocore.Wipe(kek)
	return keyderiv.UnwrapPackageKey(d.provider, kek, ke.CipherAlgorithm, ke.CipherChaining,
		ke.SaltValue, ke.BlockSize, ke.EncryptedKeyValue, desc.KeyData.KeyBits/8)
}

// DecryptWithKey decrypts "packageStream" with a known package key,
// skipping the password step entirely.
func (d *Decryptor) DecryptWithKey(desc *encinfo.Descriptor, key []byte, packageStream []byte) ([]byte, error) {
	kd := &desc.KeyData
	if want := kd.KeyBits / 8; len(key) != want {
		return nil, fmt.Errorf("package key has %d bytes, want %d", len(key), want)
	}
	if d.opts.VerifyIntegrity {
		if err := integrity.Verify(d.provider, desc, key, packageStream); err != nil {
			return nil, err
		}
	}
	ce, err := contentenc.New(d.provider, contentenc.Params{
		CipherAlgorithm: kd.CipherAlgorithm,
		CipherChaining:  kd.CipherChaining,
		Hash:            kd.Hash(),
		BlockSize:       kd.BlockSize,
		Salt:            kd.SaltValue,
	}, key, d.opts.Workers)
	if err != nil {
		return nil, err
	}
	return ce.DecryptPackage(packageStream)
}

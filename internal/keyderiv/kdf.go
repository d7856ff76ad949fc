// Package keyderiv turns a password into the package key: iterated
// ("spin") hashing, the key-encryption key (KEK) unwrap and the optional
// password verifier check.
package keyderiv

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/text/encoding/unicode"

	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

// Block keys separate the different things derived from the same password
// and salt. They are fixed by the file format and must never change.
var (
	// BlockKeyEncryptedKey derives the KEK for encryptedKeyValue.
	BlockKeyEncryptedKey = []byte{0x14, 0x6e, 0x0b, 0xe7, 0xab, 0xac, 0xd0, 0xd6}
	// BlockKeyVerifierHashInput derives the key for encryptedVerifierHashInput.
	BlockKeyVerifierHashInput = []byte{0xfe, 0xa7, 0xd2, 0x76, 0x3b, 0x4b, 0x9e, 0x79}
	// BlockKeyVerifierHashValue derives the key for encryptedVerifierHashValue.
	BlockKeyVerifierHashValue = []byte{0xd7, 0xaa, 0x0f, 0x6d, 0x30, 0x61, 0x34, 0x4e}
)

// DefaultSpinCount is what Office writes.
const DefaultSpinCount = 100000

// EncodePassword returns the UTF-16LE encoding of "password" without BOM
// and without terminator.
func EncodePassword(password string) ([]byte, error) {
	enc := unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewEncoder()
	b, err := enc.Bytes([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("EncodePassword: %v", err)
	}
	return b, nil
}

// DeriveKey derives a keyBits/8 byte key from "password":
//
//	h = H(salt || password)
//	h = H(LE32(i) || h)      for i = 0 .. spinCount-1
//	h = H(h || blockKey)
//
// and then pads with 0x36 or truncates h to the key length.
func DeriveKey(p cryptocore.Provider, password string, alg cryptocore.HashAlgo, salt []byte,
	spinCount uint32, keyBits int, blockKey []byte) ([]byte, error) {

	h, err := SpinHash(p, password, alg, salt, spinCount)
	if err != nil {
		return nil, err
	}
	defer cryptocore.Wipe(h)
	return FinalizeKey(p, alg, h, keyBits, blockKey)
}

// SpinHash runs the first two steps of DeriveKey. The result can be
// finalized with several block keys without paying for the spin loop again.
func SpinHash(p cryptocore.Provider, password string, alg cryptocore.HashAlgo, salt []byte,
	spinCount uint32) ([]byte, error) {

	pw, err := EncodePassword(password)
	if err != nil {
		return nil, err
	}
	defer cryptocore.Wipe(pw)

	h, err := p.Hash(alg, salt, pw)
	if err != nil {
		return nil, err
	}
	// The iteration counter is always 4 bytes little endian
	iterator := make([]byte, 4)
	for i := uint32(0); i < spinCount; i++ {
		binary.LittleEndian.PutUint32(iterator, i)
		h, err = p.Hash(alg, iterator, h)
		if err != nil {
			return nil, err
		}
	}
	tlog.Debug.Printf("SpinHash: %s, spinCount=%d", alg, spinCount)
	return h, nil
}

// FinalizeKey is the last step of DeriveKey.
func FinalizeKey(p cryptocore.Provider, alg cryptocore.HashAlgo, spun []byte, keyBits int,
	blockKey []byte) ([]byte, error) {

	if keyBits <= 0 || keyBits%8 != 0 {
		return nil, fmt.Errorf("FinalizeKey: keyBits=%d is not a positive multiple of 8", keyBits)
	}
	h, err := p.Hash(alg, spun, blockKey)
	if err != nil {
		return nil, err
	}
	return cryptocore.FitLength(h, keyBits/8), nil
}

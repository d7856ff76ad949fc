package cryptocore

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"
)

// HashAlgo identifies one of the hash functions the Agile scheme allows.
type HashAlgo int

const (
	_ HashAlgo = iota // Skip zero
	// SHA1 is "SHA1" in the descriptor.
	SHA1
	// SHA256 is "SHA256" in the descriptor.
	SHA256
	// SHA384 is "SHA384" in the descriptor.
	SHA384
	// SHA512 is "SHA512" in the descriptor.
	SHA512
)

var hashNames = map[HashAlgo]string{
	SHA1:   "SHA1",
	SHA256: "SHA256",
	SHA384: "SHA384",
	SHA512: "SHA512",
}

// ParseHashAlgo maps a descriptor hashAlgorithm value to a HashAlgo.
// Both "SHA512" and "SHA-512" spellings are accepted.
func ParseHashAlgo(name string) (HashAlgo, error) {
	n := strings.ToUpper(strings.Replace(name, "-", "", -1))
	for alg, s := range hashNames {
		if s == n {
			return alg, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, name)
}

func (a HashAlgo) String() string {
	if s, ok := hashNames[a]; ok {
		return s
	}
	return fmt.Sprintf("HashAlgo(%d)", int(a))
}

// Size returns the digest length in bytes, or 0 for an unknown algorithm.
func (a HashAlgo) Size() int {
	switch a {
	case SHA1:
		return sha1.Size
	case SHA256:
		return sha256.Size
	case SHA384:
		return sha512.Size384
	case SHA512:
		return sha512.Size
	}
	return 0
}

func (a HashAlgo) constructor() (func() hash.Hash, error) {
	switch a {
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA384:
		return sha512.New384, nil
	case SHA512:
		return sha512.New, nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnsupportedAlgorithm, a)
}

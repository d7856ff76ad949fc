package cryptocore

import (
	"crypto/rand"
	"log"
)

// PadByte is what FitLength fills short values with.
const PadByte = 0x36

// FitLength returns a copy of "b" that is exactly "n" bytes long.
// Longer input keeps its first "n" bytes, shorter input is right-padded
// with PadByte.
func FitLength(b []byte, n int) []byte {
	out := make([]byte, n)
	c := copy(out, b)
	for i := c; i < n; i++ {
		out[i] = PadByte
	}
	return out
}

// Wipe overwrites "b" with zeros. Used for key material we are done with.
func Wipe(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// RandBytes gets "n" random bytes from /dev/urandom or panics
func RandBytes(n int) []byte {
	b := make([]byte, n)
	_, err := rand.Read(b)
	if err != nil {
		log.Panic("Failed to read random bytes: " + err.Error())
	}
	return b
}

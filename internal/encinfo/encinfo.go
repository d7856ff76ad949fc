// Package encinfo parses the EncryptionInfo stream of an Agile-encrypted
// OOXML package into a Descriptor.
//
// Stream format: [ major uint16 LE ] [ minor uint16 LE ] [ reserved uint32 LE ] [ XML ]
package encinfo

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

const (
	// HeaderLen is the length of the binary prefix in front of the XML.
	HeaderLen = 8
	// AgileMajor and AgileMinor identify the Agile scheme. Other versions
	// (Standard, Extensible) are not supported.
	AgileMajor = 4
	AgileMinor = 4
	// AgileReserved is the value the reserved field must carry.
	AgileReserved = 0x40

	// Upper bound for the stream. Real-world descriptors are a few kB.
	maxStreamLen = 1 << 20
)

// ErrInvalidEncryptionInfo is returned (wrapped) for any stream we cannot
// parse.
var ErrInvalidEncryptionInfo = errors.New("invalid EncryptionInfo")

// Version is the version prefix of the EncryptionInfo stream.
type Version struct {
	Major uint16
	Minor uint16
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// ParseHeader parses the 8-byte binary prefix.
func ParseHeader(buf []byte) (Version, uint32, error) {
	if len(buf) < HeaderLen {
		return Version{}, 0, fmt.Errorf("%w: stream too short: got %d bytes, want at least %d",
			ErrInvalidEncryptionInfo, len(buf), HeaderLen)
	}
	v := Version{
		Major: binary.LittleEndian.Uint16(buf[0:2]),
		Minor: binary.LittleEndian.Uint16(buf[2:4]),
	}
	reserved := binary.LittleEndian.Uint32(buf[4:8])
	if v.Major != AgileMajor || v.Minor != AgileMinor {
		return v, reserved, fmt.Errorf("%w: version %s is not Agile Encryption (%d.%d)",
			ErrInvalidEncryptionInfo, v, AgileMajor, AgileMinor)
	}
	if reserved != AgileReserved {
		return v, reserved, fmt.Errorf("%w: reserved field is 0x%x, want 0x%x",
			ErrInvalidEncryptionInfo, reserved, AgileReserved)
	}
	return v, reserved, nil
}

// Parse parses a complete EncryptionInfo stream. The returned Descriptor
// has not been validated yet, call Validate for that.
func Parse(stream []byte) (*Descriptor, error) {
	v, reserved, err := ParseHeader(stream)
	if err != nil {
		return nil, err
	}
	d, err := parseXML(stream[HeaderLen:])
	if err != nil {
		return nil, err
	}
	d.Version = v
	d.Reserved = reserved
	tlog.Debug.Printf("encinfo: version %s, package %s/%s/%s, %d-bit key, spinCount %d",
		v, d.KeyData.CipherAlgorithm, d.KeyData.CipherChaining, d.KeyData.HashAlgorithm,
		d.KeyEncryptor.KeyBits, d.KeyEncryptor.SpinCount)
	return d, nil
}

// Read reads and parses an EncryptionInfo stream from "r".
func Read(r io.Reader) (*Descriptor, error) {
	buf, err := io.ReadAll(io.LimitReader(r, maxStreamLen+1))
	if err != nil {
		return nil, err
	}
	if len(buf) > maxStreamLen {
		return nil, fmt.Errorf("%w: stream larger than %d bytes", ErrInvalidEncryptionInfo, maxStreamLen)
	}
	return Parse(buf)
}

// Load reads and parses the EncryptionInfo stream stored in "filename".
func Load(filename string) (*Descriptor, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Read(f)
}

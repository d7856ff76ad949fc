package contentenc

// EncryptedPackage length prefix
//
// Format: [ "Size" uint32 little endian ] [ "Reserved" uint32 little endian ]

import (
	"encoding/binary"
	"fmt"

	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

// PackageOffset is where the ciphertext starts in the package stream.
const PackageOffset = 8

// PackageHeader is the length prefix of the EncryptedPackage stream. The
// field is 64 bits on disk but only the low 32 are used.
type PackageHeader struct {
	Size     uint32
	Reserved uint32
}

// ParsePackageHeader parses the first PackageOffset bytes of "buf".
func ParsePackageHeader(buf []byte) (*PackageHeader, error) {
	if len(buf) < PackageOffset {
		return nil, fmt.Errorf("%w: got %d bytes, want at least %d",
			ErrInvalidPackageHeader, len(buf), PackageOffset)
	}
	h := PackageHeader{
		Size:     binary.LittleEndian.Uint32(buf[0:4]),
		Reserved: binary.LittleEndian.Uint32(buf[4:8]),
	}
	if h.Reserved != 0 {
		tlog.Debug.Printf("ParsePackageHeader: ignoring high size bits %#x", h.Reserved)
	}
	return &h, nil
}

// Pack serializes the header.
func (h *PackageHeader) Pack() []byte {
	buf := make([]byte, PackageOffset)
	binary.LittleEndian.PutUint32(buf[0:4], h.Size)
	binary.LittleEndian.PutUint32(buf[4:8], h.Reserved)
	return buf
}

package contentenc

import (
	"encoding/binary"
	"fmt"

	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
)

// BlockIV returns H(salt || blockKey) fitted to "blockSize" bytes.
func BlockIV(p cryptocore.Provider, alg cryptocore.HashAlgo, salt []byte, blockSize int,
	blockKey []byte) ([]byte, error) {

	if blockSize <= 0 {
		return nil, fmt.Errorf("BlockIV: invalid block size %d", blockSize)
	}
	h, err := p.Hash(alg, salt, blockKey)
	if err != nil {
		return nil, err
	}
	return cryptocore.FitLength(h, blockSize), nil
}

// ChunkIV is BlockIV with the little-endian 32-bit chunk index as block key.
func ChunkIV(p cryptocore.Provider, alg cryptocore.HashAlgo, salt []byte, blockSize int,
	index uint32) ([]byte, error) {

	var blockKey [4]byte
	binary.LittleEndian.PutUint32(blockKey[:], index)
	return BlockIV(p, alg, salt, blockSize, blockKey[:])
}

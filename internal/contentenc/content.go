// Package contentenc decrypts the EncryptedPackage stream chunk by chunk.
package contentenc

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/agiledecrypt/agiledecrypt/internal/cryptocore"
	"github.com/agiledecrypt/agiledecrypt/internal/tlog"
)

const (
	// ChunkSize is the ciphertext segment length. Each chunk has its own IV.
	ChunkSize = 4096
)

var (
	// ErrInvalidPackageHeader is returned for a package stream that is too
	// short to hold the length prefix.
	ErrInvalidPackageHeader = errors.New("invalid package header")
	// ErrTruncated is matched by every *TruncationError.
	ErrTruncated = errors.New("package truncated")
)

// TruncationError means the length prefix promises more plaintext than the
// ciphertext decrypted to.
type TruncationError struct {
	Declared  uint64
	Available uint64
}

func (e *TruncationError) Error() string {
	return fmt.Sprintf("package truncated: declared size %d, only %d bytes decrypted",
		e.Declared, e.Available)
}

// Is makes errors.Is(err, ErrTruncated) work.
func (e *TruncationError) Is(target error) bool {
	return target == ErrTruncated
}

// Params are the package cipher parameters from the descriptor's keyData.
type Params struct {
	CipherAlgorithm string
	CipherChaining  string
	Hash            cryptocore.HashAlgo
	BlockSize       int
	Salt            []byte
}

// ContentEnc decrypts package chunks with a fixed package key.
type ContentEnc struct {
	// Cryptographic primitives
	provider cryptocore.Provider
	params   Params
	// Package key
	key []byte
	// Maximum number of chunks decrypted in parallel
	workers int
}

// New returns a ContentEnc. The cipher parameters are checked here, so an
// unsupported chaining mode fails before the first cipher call.
// workers <= 0 means runtime.NumCPU().
func New(p cryptocore.Provider, params Params, key []byte, workers int) (*ContentEnc, error) {
	if err := cryptocore.CheckCipher(params.CipherAlgorithm, params.CipherChaining); err != nil {
		return nil, err
	}
	if params.Hash.Size() == 0 {
		return nil, fmt.Errorf("%w: %v", cryptocore.ErrUnsupportedAlgorithm, params.Hash)
	}
	if params.BlockSize <= 0 || ChunkSize%params.BlockSize != 0 {
		return nil, fmt.Errorf("contentenc.New: invalid block size %d", params.BlockSize)
	}
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ContentEnc{
		provider: p,
		params:   params,
		key:      key,
		workers:  workers,
	}, nil
}

// Workers returns the parallelism limit.
func (ce *ContentEnc) Workers() int {
	return ce.workers
}

// ChunkIV returns the IV of chunk "index" using our parameters.
func (ce *ContentEnc) ChunkIV(index uint32) ([]byte, error) {
	return ChunkIV(ce.provider, ce.params.Hash, ce.params.Salt, ce.params.BlockSize, index)
}

// DecryptChunk decrypts one ciphertext chunk. A chunk that is not a block
// multiple (only the last one can be) is zero-padded first.
func (ce *ContentEnc) DecryptChunk(chunk []byte, index uint32) ([]byte, error) {
	iv, err := ce.ChunkIV(index)
	if err != nil {
		return nil, err
	}
	if rem := len(chunk) % ce.params.BlockSize; rem != 0 {
		padded := make([]byte, len(chunk)+ce.params.BlockSize-rem)
		copy(padded, chunk)
		chunk = padded
	}
	plain, err := ce.provider.DecryptCBC(ce.key, iv, chunk)
	if err != nil {
		return nil, fmt.Errorf("chunk %d: %w", index, err)
	}
	return plain, nil
}

// DecryptPackage decrypts a whole EncryptedPackage stream, including the
// 8-byte length prefix, and returns the plaintext cut to the declared size.
//
// An empty stream decrypts to an empty package. On error no partial
// plaintext is returned.
func (ce *ContentEnc) DecryptPackage(blob []byte) ([]byte, error) {
	if len(blob) == 0 {
		return []byte{}, nil
	}
	hdr, err := ParsePackageHeader(blob)
	if err != nil {
		return nil, err
	}
	chunks := ExplodeChunks(uint64(len(blob)))
	tlog.Debug.Printf("DecryptPackage: declared size %d, %d chunks, %d workers",
		hdr.Size, len(chunks), ce.workers)

	plain := make([][]byte, len(chunks))
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(ce.workers)
	for _, c := range chunks {
		c := c
		g.Go(func() error {
			// Stop scheduling work once a chunk has failed
			if ctx.Err() != nil {
				return ctx.Err()
			}
			out, err := ce.DecryptChunk(blob[c.Offset:c.Offset+c.Length], c.Index)
			if err != nil {
				return err
			}
			plain[c.Index] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var available uint64
	for _, p := range plain {
		available += uint64(len(p))
	}
	declared := uint64(hdr.Size)
	if declared > available {
		return nil, &TruncationError{Declared: declared, Available: available}
	}
	out := make([]byte, 0, declared)
	for _, p := range plain {
		if n := declared - uint64(len(out)); uint64(len(p)) > n {
			p = p[:n]
		}
		out = append(out, p...)
	}
	return out, nil
}

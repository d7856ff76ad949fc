package contentenc

// Helpers that translate between chunk numbers and EncryptedPackage stream
// offsets. All offsets include the PackageOffset bytes of length prefix.

// Chunk identifies one ciphertext chunk inside the package stream.
type Chunk struct {
	Index  uint32 // Chunk number, also the IV input
	Offset uint64 // Offset in the package stream
	Length uint64 // Ciphertext bytes in this chunk
}

// Partial tells whether this chunk is shorter than ChunkSize. Only the last
// chunk of a stream can be.
func (c *Chunk) Partial() bool {
	return c.Length < ChunkSize
}

// ChunkCount returns the number of chunks in a package stream of
// "streamLen" bytes.
func ChunkCount(streamLen uint64) uint64 {
	if streamLen <= PackageOffset {
		return 0
	}
	return (streamLen - PackageOffset + ChunkSize - 1) / ChunkSize
}

// ChunkRange returns the byte range of chunk "index" in a package stream of
// "streamLen" bytes. The length is 0 when the chunk lies beyond the end.
func ChunkRange(index uint32, streamLen uint64) (offset uint64, length uint64) {
	offset = ChunkNoToStreamOff(index)
	if offset >= streamLen {
		return offset, 0
	}
	return offset, MinUint64(ChunkSize, streamLen-offset)
}

// ChunkNoToStreamOff returns the stream offset of chunk "index".
func ChunkNoToStreamOff(index uint32) uint64 {
	return PackageOffset + uint64(index)*ChunkSize
}

// StreamOffToChunkNo returns the chunk that contains stream offset
// "offset". Offsets inside the length prefix belong to chunk 0.
func StreamOffToChunkNo(offset uint64) uint32 {
	if offset < PackageOffset {
		return 0
	}
	return uint32((offset - PackageOffset) / ChunkSize)
}

// ExplodeChunks splits a package stream of "streamLen" bytes into chunks.
// Returns an empty slice if there is no ciphertext.
func ExplodeChunks(streamLen uint64) []Chunk {
	n := ChunkCount(streamLen)
	chunks := make([]Chunk, 0, n)
	for i := uint64(0); i < n; i++ {
		off, l := ChunkRange(uint32(i), streamLen)
		chunks = append(chunks, Chunk{Index: uint32(i), Offset: off, Length: l})
	}
	return chunks
}

// MinUint64 returns the smaller of x and y.
func MinUint64(x uint64, y uint64) uint64 {
	if x < y {
		return x
	}
	return y
}

package buffer

// PooledBuffer is a byte buffer whose memory is owned elsewhere, either a pool or a mapped
// file region.
type PooledBuffer interface {
	Data() []byte

	Len() int

	// Release hands the memory back. The buffer and any slice obtained from Data must not
	// be used afterwards.
	Release()
}

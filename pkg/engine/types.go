package engine

// Target is a benchmark target opened in one of the write modes.
type Target interface {
	// Write issues exactly one write call for buf and reports how many
	// bytes the call transferred.
	Write(buf []byte) (int, error)
	// Sync flushes any user-space buffering and forces the written data
	// to durable storage.
	Sync() error
	Close() error
}

package ports

import "github.com/hawkmon/breachwatch/internal/domain"

type WALEntryID uint64

// WAL is the write-ahead log that makes breach events durable until the
// sink has confirmed them.
type WAL interface {
	Append(e *domain.Assessment) (WALEntryID, error)
	Iterate(from WALEntryID, fn func(id WALEntryID, e *domain.Assessment) error) error
	Commit(upto WALEntryID) error
	TruncateCommitted() error
	Stats() WALStats
}

type WALStats struct {
	OldestUncommitted WALEntryID
	LatestAppended    WALEntryID
	SizeBytes         int64
}

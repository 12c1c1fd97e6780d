package user

import "context"

// Repository is the authoritative user store. Create and UpdateProfile also
// enqueue the user for mirroring in the same write.
type Repository interface {
	Create(ctx context.Context, item User) (User, error)
	GetByID(ctx context.Context, userID int64) (User, bool, error)
	GetByUsername(ctx context.Context, username string) (User, bool, error)
	ListActive(ctx context.Context) ([]User, error)
	ListByIDs(ctx context.Context, userIDs []int64) ([]User, error)
	UpdateProfile(ctx context.Context, userID int64, in ProfileUpdate) (User, error)
}

// MirrorRepository writes the flattened user projection to the document store.
// A snapshot older than the stored projection is ignored, not an error.
type MirrorRepository interface {
	Upsert(ctx context.Context, item User) error
}

// MirrorOutbox tracks users whose projection still has to be written. Each
// entry carries the newest user version queued for it.
type MirrorOutbox interface {
	ListPending(ctx context.Context, limit int) ([]int64, error)
	// MarkMirrored clears the entry only when no version newer than
	// version has been queued since.
	MarkMirrored(ctx context.Context, userID, version int64) error
	RecordFailure(ctx context.Context, userID int64, reason string) error
}

package port

import (
	"context"
	"imagestudio/internal/core/domain"
)

type HistoryStore interface {
	// Append stores record in the collection at path and returns its id.
	Append(ctx context.Context, path string, record domain.HistoryRecord) (string, error)
	// List returns every record stored at path in no particular order.
	List(ctx context.Context, path string) ([]domain.HistoryRecord, error)
}

type IdentityProvider interface {
	// Identity returns the identity of the current caller, if any.
	Identity(ctx context.Context) (string, bool)
}

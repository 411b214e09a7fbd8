package shared

import (
	"context"

	"github.com/google/uuid"
)

// Cached read views, keyed per user
const (
	ViewAccounts     = "accounts"
	ViewTransactions = "transactions"
)

// ViewVersion is the generation of a user's views seen by Get. Every
// Invalidate moves it on.
type ViewVersion int64

// ViewCache stores per-user read views. A miss is (version, false, nil).
// Values round-trip through JSON so every implementation behaves alike.
//
// A reader that misses loads the view from the database and passes the
// version from its Get to Set. Set drops the value when the user's views
// were invalidated in between, so rows read before a write are never
// cached after it.
type ViewCache interface {
	// Get loads the view into dest and reports whether it was present
	Get(ctx context.Context, userID uuid.UUID, view string, dest any) (ViewVersion, bool, error)
	// Set stores the view unless the user's version is no longer version
	Set(ctx context.Context, userID uuid.UUID, view string, version ViewVersion, value any) error
	// Invalidate drops every cached view of the user and moves the version on
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

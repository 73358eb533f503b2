// Package ventlog persists the append-only audit log of anonymous vents.
package ventlog

import (
	"context"

	"github.com/hearthbot/hearth/internal/model"
)

// Repository is the audit log. It is append-only by design: no update or
// delete operation exists, so the moderation trail stays reconstructable.
type Repository interface {
	// Append adds a record to the end of the community's log.
	Append(ctx context.Context, rec *model.VentRecord) error

	// ReadRecent returns the last n records in original append order
	// (oldest of the n first).
	ReadRecent(ctx context.Context, communityID string, n int) ([]model.VentRecord, error)

	// Count returns the number of records logged for a community.
	Count(ctx context.Context, communityID string) (int, error)
}

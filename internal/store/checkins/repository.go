// Package checkins persists daily check-in idempotency state.
package checkins

import (
	"context"

	"github.com/hearthbot/hearth/internal/model"
)

// Repository stores one CheckinState per community.
type Repository interface {
	// Get returns the community's state, or common.ErrNotFound if no
	// check-in was ever posted there.
	Get(ctx context.Context, communityID string) (*model.CheckinState, error)

	// Put inserts or replaces the community's state. Called atomically with
	// a successful post so a crash in between duplicates at most one post.
	Put(ctx context.Context, state *model.CheckinState) error
}

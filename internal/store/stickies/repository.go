// Package stickies persists the reference to each vent channel's current
// call-to-action message.
package stickies

import (
	"context"

	"github.com/hearthbot/hearth/internal/model"
)

// Repository stores at most one StickyRef per community.
//
// Get may return a legacy ref (empty ChannelID) written by old deployments;
// callers normalize it against the community config. Put always writes the
// full representation.
type Repository interface {
	// Get returns the community's sticky ref, or common.ErrNotFound.
	Get(ctx context.Context, communityID string) (*model.StickyRef, error)

	// Put inserts or replaces the community's sticky ref.
	Put(ctx context.Context, communityID string, ref model.StickyRef) error
}

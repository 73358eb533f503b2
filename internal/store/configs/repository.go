// Package configs persists per-community setup produced by the wizard.
package configs

import (
	"context"

	"github.com/hearthbot/hearth/internal/model"
)

// Repository stores one CommunityConfig per community.
type Repository interface {
	// Get returns the config for a community, or common.ErrNotFound.
	Get(ctx context.Context, communityID string) (*model.CommunityConfig, error)

	// Put inserts or replaces a community's config.
	Put(ctx context.Context, cfg *model.CommunityConfig) error

	// All returns every configured community, in no particular order.
	All(ctx context.Context) ([]model.CommunityConfig, error)
}

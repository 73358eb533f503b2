package grants

import (
	"context"

	"github.com/hearthbot/hearth/internal/model"
)

// Repository persists the append-only record of successful token redemptions.
type Repository interface {
	Append(ctx context.Context, g *model.AccessGrant) error
	// Count reports how many grants exist for the community.
	Count(ctx context.Context, communityID string) (int, error)
}

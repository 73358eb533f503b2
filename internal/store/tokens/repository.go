package tokens

import (
	"context"
	"time"

	"github.com/hearthbot/hearth/internal/model"
)

// Repository persists single-use access tokens.
type Repository interface {
	// Create stores a freshly issued token.
	Create(ctx context.Context, t *model.AccessToken) error
	// MarkUsed atomically consumes the token. It returns false when
	// the token does not exist or was already consumed; callers must
	// not distinguish the two cases.
	MarkUsed(ctx context.Context, communityID, token, userID string, at time.Time) (bool, error)
	// Count reports how many tokens were ever issued for the community.
	Count(ctx context.Context, communityID string) (int, error)
}

// Package access issues and redeems the single-use tokens moderators need
// before they may read the obfuscated vent log.
package access

import (
	"context"
	"database/sql"
	"time"

	"github.com/hearthbot/hearth/internal/common"
	"github.com/hearthbot/hearth/internal/dbx"
	"github.com/hearthbot/hearth/internal/logging"
	"github.com/hearthbot/hearth/internal/metrics"
	"github.com/hearthbot/hearth/internal/model"
	"github.com/hearthbot/hearth/internal/store/grants"
	"github.com/hearthbot/hearth/internal/store/tokens"
)

// TokenBytes is the entropy of an issued token; 16 bytes renders as 32 hex chars.
const TokenBytes = 16

// Service issues single-use access tokens and redeems them atomically.
type Service struct {
	db     *sql.DB
	tokens tokens.Repository
	logger logging.Logger
}

func NewService(db *sql.DB, tokenRepo tokens.Repository, logger logging.Logger) *Service {
	return &Service{db: db, tokens: tokenRepo, logger: logger}
}

// Issue mints a fresh unused token for the community and persists it before
// returning. The token string is the only copy; it is never logged.
func (s *Service) Issue(ctx context.Context, communityID string) (string, error) {
	token, err := common.MakeRandHexString(TokenBytes)
	if err != nil {
		return "", err
	}

	err = s.tokens.Create(ctx, &model.AccessToken{
		CommunityID: communityID,
		Token:       token,
		CreatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return "", err
	}

	s.logger.Info(ctx, "issued access token", "community", communityID)
	return token, nil
}

// Redeem consumes the token for userID and records the grant. Marking the
// token used and appending the grant happen in one transaction, so a token
// can never be consumed without leaving a grant behind.
//
// Unknown and already-used tokens both come back as ErrInvalidToken; callers
// must not be able to tell the difference.
func (s *Service) Redeem(ctx context.Context, communityID, token, userID string) error {
	now := time.Now().UTC()

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		ok, err := tokens.NewSQLiteRepository(tx).MarkUsed(ctx, communityID, token, userID, now)
		if err != nil {
			return err
		}
		if !ok {
			return common.ErrInvalidToken
		}

		return grants.NewSQLiteRepository(tx).Append(ctx, &model.AccessGrant{
			CommunityID: communityID,
			UserID:      userID,
			AccessedAt:  now,
			Token:       token,
		})
	})
	if err != nil {
		return err
	}

	metrics.TokenRedemptions.Inc()
	s.logger.Info(ctx, "access token redeemed", "community", communityID, "user", userID)
	return nil
}

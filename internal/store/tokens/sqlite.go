package tokens

import (
	"context"
	"fmt"
	"time"

	"github.com/hearthbot/hearth/internal/dbx"
	"github.com/hearthbot/hearth/internal/model"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, t *model.AccessToken) error {
	query := `INSERT INTO access_tokens (community_id, token, created_at, used, used_by, used_at)
		VALUES (?, ?, ?, 0, '', '')`
	_, err := r.db.ExecContext(ctx, query, t.CommunityID, t.Token, t.CreatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to insert access token: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkUsed(ctx context.Context, communityID, token, userID string, at time.Time) (bool, error) {
	query := `UPDATE access_tokens SET used = 1, used_by = ?, used_at = ?
		WHERE community_id = ? AND token = ? AND used = 0`
	res, err := r.db.ExecContext(ctx, query, userID, at.Format(time.RFC3339Nano), communityID, token)
	if err != nil {
		return false, fmt.Errorf("failed to mark token used: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, communityID string) (int, error) {
	query := `SELECT COUNT(*) FROM access_tokens WHERE community_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, query, communityID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count access tokens: %w", err)
	}
	return n, nil
}

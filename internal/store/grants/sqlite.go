package grants

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

func (r *SQLiteRepository) Append(ctx context.Context, g *model.AccessGrant) error {
	query := `INSERT INTO access_grants (community_id, user_id, accessed_at, token)
		VALUES (?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query, g.CommunityID, g.UserID, g.AccessedAt.Format(time.RFC3339Nano), g.Token)
	if err != nil {
		return fmt.Errorf("failed to insert access grant: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context, communityID string) (int, error) {
	query := `SELECT COUNT(*) FROM access_grants WHERE community_id = ?`
	var n int
	if err := r.db.QueryRowContext(ctx, query, communityID).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count access grants: %w", err)
	}
	return n, nil
}

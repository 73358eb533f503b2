package stickies

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/hearthbot/hearth/internal/common"
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

func (r *SQLiteRepository) Get(ctx context.Context, communityID string) (*model.StickyRef, error) {
	query := `SELECT message_id, channel_id FROM sticky_refs WHERE community_id = ?`
	row := r.db.QueryRowContext(ctx, query, communityID)

	ref := &model.StickyRef{}
	err := row.Scan(&ref.MessageID, &ref.ChannelID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select sticky ref: %w", err)
	}
	return ref, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, communityID string, ref model.StickyRef) error {
	query := `INSERT INTO sticky_refs (community_id, message_id, channel_id)
		VALUES (?, ?, ?)
		ON CONFLICT(community_id) DO UPDATE SET
			message_id = excluded.message_id,
			channel_id = excluded.channel_id`
	_, err := r.db.ExecContext(ctx, query, communityID, ref.MessageID, ref.ChannelID)
	if err != nil {
		return fmt.Errorf("failed to upsert sticky ref: %w", err)
	}
	return nil
}

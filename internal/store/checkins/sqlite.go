package checkins

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

func (r *SQLiteRepository) Get(ctx context.Context, communityID string) (*model.CheckinState, error) {
	query := `SELECT community_id, last_date, message_id FROM checkin_states WHERE community_id = ?`
	row := r.db.QueryRowContext(ctx, query, communityID)

	state := &model.CheckinState{}
	err := row.Scan(&state.CommunityID, &state.LastDate, &state.MessageID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select checkin state: %w", err)
	}
	return state, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, state *model.CheckinState) error {
	query := `INSERT INTO checkin_states (community_id, last_date, message_id)
		VALUES (?, ?, ?)
		ON CONFLICT(community_id) DO UPDATE SET
			last_date = excluded.last_date,
			message_id = excluded.message_id`
	_, err := r.db.ExecContext(ctx, query, state.CommunityID, state.LastDate, state.MessageID)
	if err != nil {
		return fmt.Errorf("failed to upsert checkin state: %w", err)
	}
	return nil
}

package configs

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

func (r *SQLiteRepository) Get(ctx context.Context, communityID string) (*model.CommunityConfig, error) {
	query := `SELECT community_id, post_channel_id, support_channel_id, vent_channel_id,
		ping, checkin_time, timezone FROM community_configs WHERE community_id = ?`
	row := r.db.QueryRowContext(ctx, query, communityID)

	cfg := &model.CommunityConfig{}
	err := row.Scan(&cfg.CommunityID, &cfg.PostChannelID, &cfg.SupportChannelID,
		&cfg.VentChannelID, &cfg.Ping, &cfg.CheckinTime, &cfg.Timezone)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select config: %w", err)
	}
	return cfg, nil
}

// Put upserts the whole config; re-running setup replaces every field.
func (r *SQLiteRepository) Put(ctx context.Context, cfg *model.CommunityConfig) error {
	query := `INSERT INTO community_configs
		(community_id, post_channel_id, support_channel_id, vent_channel_id, ping, checkin_time, timezone)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(community_id) DO UPDATE SET
			post_channel_id = excluded.post_channel_id,
			support_channel_id = excluded.support_channel_id,
			vent_channel_id = excluded.vent_channel_id,
			ping = excluded.ping,
			checkin_time = excluded.checkin_time,
			timezone = excluded.timezone`
	_, err := r.db.ExecContext(ctx, query, cfg.CommunityID, cfg.PostChannelID,
		cfg.SupportChannelID, cfg.VentChannelID, cfg.Ping, cfg.CheckinTime, cfg.Timezone)
	if err != nil {
		return fmt.Errorf("failed to upsert config: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) All(ctx context.Context) ([]model.CommunityConfig, error) {
	query := `SELECT community_id, post_channel_id, support_channel_id, vent_channel_id,
		ping, checkin_time, timezone FROM community_configs`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select configs: %w", err)
	}
	defer rows.Close()

	var result []model.CommunityConfig
	for rows.Next() {
		var cfg model.CommunityConfig
		if err := rows.Scan(&cfg.CommunityID, &cfg.PostChannelID, &cfg.SupportChannelID,
			&cfg.VentChannelID, &cfg.Ping, &cfg.CheckinTime, &cfg.Timezone); err != nil {
			return nil, err
		}
		result = append(result, cfg)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

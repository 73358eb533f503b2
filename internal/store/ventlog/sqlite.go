package ventlog

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

func (r *SQLiteRepository) Append(ctx context.Context, rec *model.VentRecord) error {
	query := `INSERT INTO vent_log
		(id, ts, community_id, channel_id, user_id, username, display_name, fingerprint, content)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.Timestamp.Format(time.RFC3339Nano), rec.CommunityID, rec.ChannelID,
		rec.UserID, rec.Username, rec.DisplayName, rec.Fingerprint, rec.Content)
	if err != nil {
		return fmt.Errorf("failed to append vent record: %w", err)
	}
	return nil
}

// ReadRecent selects the newest n rows and reverses them back into append
// order.
func (r *SQLiteRepository) ReadRecent(ctx context.Context, communityID string, n int) ([]model.VentRecord, error) {
	query := `SELECT id, ts, community_id, channel_id, user_id, username, display_name, fingerprint, content
		FROM vent_log WHERE community_id = ? ORDER BY rowid DESC LIMIT ?`
	rows, err := r.db.QueryContext(ctx, query, communityID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to select vent records: %w", err)
	}
	defer rows.Close()

	var result []model.VentRecord
	for rows.Next() {
		var rec model.VentRecord
		var ts string
		if err := rows.Scan(&rec.ID, &ts, &rec.CommunityID, &rec.ChannelID,
			&rec.UserID, &rec.Username, &rec.DisplayName, &rec.Fingerprint, &rec.Content); err != nil {
			return nil, err
		}
		rec.Timestamp, err = time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return nil, fmt.Errorf("corrupt timestamp in vent log: %w", err)
		}
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return result, nil
}

func (r *SQLiteRepository) Count(ctx context.Context, communityID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM vent_log WHERE community_id = ?`, communityID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count vent records: %w", err)
	}
	return n, nil
}

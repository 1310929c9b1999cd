package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/liliang-cn/qualia/internal/domain"
)

// timestampLayout keeps millisecond precision and sorts lexically when every
// value is UTC.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// HistoryRepository handles chat history persistence in the local database
type HistoryRepository struct {
	db *DB
}

// NewHistoryRepository creates a new history repository
func NewHistoryRepository(db *DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

// Save inserts one message row
func (r *HistoryRepository) Save(ctx context.Context, message domain.Message) error {
	_, err := r.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (id, role, content, timestamp)
		VALUES (?, ?, ?, ?)
	`, r.db.table), message.ID, string(message.Role), message.Content, formatTimestamp(message.Timestamp))
	if err != nil {
		return fmt.Errorf("repository: insert message %s: %w", message.ID, err)
	}
	return nil
}

// Load retrieves all messages ordered by timestamp
func (r *HistoryRepository) Load(ctx context.Context) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, role, content, timestamp
		FROM %s
		ORDER BY timestamp ASC
	`, r.db.table))
	if err != nil {
		return nil, fmt.Errorf("repository: select history: %w", err)
	}
	defer rows.Close()

	var messages []domain.Message
	for rows.Next() {
		var (
			message domain.Message
			role    string
			ts      string
		)
		if err := rows.Scan(&message.ID, &role, &message.Content, &ts); err != nil {
			return nil, fmt.Errorf("repository: scan history row: %w", err)
		}
		message.Role = domain.Role(role)
		message.Timestamp, err = parseTimestamp(ts)
		if err != nil {
			return nil, fmt.Errorf("repository: message %s: %w", message.ID, err)
		}
		messages = append(messages, message)
	}

	return messages, rows.Err()
}

// Count returns the number of stored messages
func (r *HistoryRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, r.db.table)).Scan(&count)
	return count, err
}

// Close closes the underlying database
func (r *HistoryRepository) Close() error {
	return r.db.Close()
}

func formatTimestamp(t time.Time) string {
	return t.UTC().Format(timestampLayout)
}

// naiveTimestampLayouts cover columns declared without a time zone; those
// values are read as UTC.
var naiveTimestampLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

func parseTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t.UTC(), nil
	}
	for _, layout := range naiveTimestampLayouts {
		if t, nerr := time.ParseInLocation(layout, s, time.UTC); nerr == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
}

package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/supabase-community/postgrest-go"

	"github.com/liliang-cn/qualia/internal/domain"
)

const historyColumns = "id,role,content,timestamp"

// supabaseRow is the wire shape of one chat_history row. The timestamp stays
// a string so columns with and without a time zone both decode.
type supabaseRow struct {
	ID        string `json:"id"`
	Role      string `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// SupabaseStore reads and writes chat history through the PostgREST API of a
// hosted Supabase project.
type SupabaseStore struct {
	client  *postgrest.Client
	table   string
	timeout time.Duration
}

// NewSupabaseStore creates a store for the given project URL and anon key.
// timeout bounds every call; zero means 10 seconds.
func NewSupabaseStore(projectURL, anonKey, table string, timeout time.Duration) (*SupabaseStore, error) {
	projectURL = strings.TrimRight(strings.TrimSpace(projectURL), "/")
	if projectURL == "" {
		return nil, errors.New("supabase: project url must not be empty")
	}
	if strings.TrimSpace(anonKey) == "" {
		return nil, errors.New("supabase: anon key must not be empty")
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("supabase: invalid table name %q", table)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := postgrest.NewClient(projectURL+"/rest/v1", "", map[string]string{
		"apikey":        anonKey,
		"Authorization": "Bearer " + anonKey,
	})
	if client.ClientError != nil {
		return nil, fmt.Errorf("supabase: create client: %w", client.ClientError)
	}
	return &SupabaseStore{client: client, table: table, timeout: timeout}, nil
}

// Load selects every row ordered by timestamp ascending.
func (s *SupabaseStore) Load(ctx context.Context) ([]domain.Message, error) {
	var raw []byte
	err := s.run(ctx, func() (err error) {
		raw, _, err = s.client.From(s.table).
			Select(historyColumns, "", false).
			Order("timestamp", &postgrest.OrderOpts{Ascending: true}).
			Execute()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("supabase: load history: %w", err)
	}

	var rows []supabaseRow
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("supabase: decode history: %w", err)
	}
	messages := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		if !domain.Role(row.Role).Valid() {
			return nil, fmt.Errorf("supabase: row %s: %w %q", row.ID, domain.ErrInvalidRole, row.Role)
		}
		ts, err := parseTimestamp(row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("supabase: row %s: %w", row.ID, err)
		}
		messages = append(messages, domain.Message{
			ID:        row.ID,
			Role:      domain.Role(row.Role),
			Content:   row.Content,
			Timestamp: ts,
		})
	}
	return messages, nil
}

// Save inserts one row.
func (s *SupabaseStore) Save(ctx context.Context, message domain.Message) error {
	row := supabaseRow{
		ID:        message.ID,
		Role:      string(message.Role),
		Content:   message.Content,
		Timestamp: formatTimestamp(message.Timestamp),
	}
	err := s.run(ctx, func() error {
		_, _, err := s.client.From(s.table).Insert(row, false, "", "minimal", "").Execute()
		return err
	})
	if err != nil {
		return fmt.Errorf("supabase: insert message %s: %w", message.ID, err)
	}
	return nil
}

// Count asks PostgREST for an exact row count without fetching rows.
func (s *SupabaseStore) Count(ctx context.Context) (int, error) {
	var n int64
	err := s.run(ctx, func() error {
		_, count, err := s.client.From(s.table).Select("id", "exact", true).Execute()
		n = int64(count)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("supabase: count history: %w", err)
	}
	return int(n), nil
}

// run executes call, giving up when ctx is done or the store timeout passes.
// The PostgREST client takes no context, so an abandoned call finishes in the
// background.
func (s *SupabaseStore) run(ctx context.Context, call func() error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- call() }()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Package repository persists conversations, message history, and the
// per-conversation profile in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Message is one stored chat message.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ProfileRecord is a stored profile with its conversation and last update.
type ProfileRecord struct {
	ConversationID string            `json:"conversation_id"`
	Profile        map[string]string `json:"profile"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// Keys a profile merge is allowed to persist. Anything else is dropped.
var allowedProfileKeys = map[string]bool{
	"stage":            true,
	"intent":           true,
	"urgency":          true,
	"contact_name":     true,
	"contact_email":    true,
	"contact_phone":    true,
	"product_type":     true,
	"product_sku":      true,
	"product_name":     true,
	"inventory_status": true,
	"budget":           true,
	"consult_type":     true,
	"requested_date":   true,
	"agent_status":     true,
	"pre_approval":     true,
	"summary":          true,
}

// Repo implements conversation persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new conversation repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Ping verifies database connectivity for health checks.
func (r *Repo) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// EnsureConversation creates the conversation row if it does not exist.
func (r *Repo) EnsureConversation(ctx context.Context, conversationID string) error {
	query := `
		INSERT INTO conversations (id)
		VALUES ($1)
		ON CONFLICT (id) DO NOTHING`

	if _, err := r.pool.Exec(ctx, query, conversationID); err != nil {
		return fmt.Errorf("ensure conversation: %w", err)
	}
	return nil
}

// GetMessages returns the most recent messages in chronological order.
func (r *Repo) GetMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	query := `
		SELECT role, content FROM (
			SELECT id, role, content FROM messages
			WHERE conversation_id = $1
			ORDER BY id DESC
			LIMIT $2
		) recent
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, conversationID, limit)
	if err != nil {
		return nil, fmt.Errorf("get messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.Role, &msg.Content); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

// LogMessage appends a message. Routing may be nil for user messages.
func (r *Repo) LogMessage(ctx context.Context, conversationID, role, content string, routing map[string]string) error {
	query := `
		INSERT INTO messages (conversation_id, role, content, routing)
		VALUES ($1, $2, $3, $4)`

	if routing == nil {
		routing = map[string]string{}
	}
	if _, err := r.pool.Exec(ctx, query, conversationID, role, content, routing); err != nil {
		return fmt.Errorf("log message: %w", err)
	}
	return nil
}

// GetProfile returns the stored profile, or an empty map when none exists.
func (r *Repo) GetProfile(ctx context.Context, conversationID string) (map[string]string, error) {
	query := `
		SELECT profile FROM conversation_profiles
		WHERE conversation_id = $1`

	profile := map[string]string{}
	err := r.pool.QueryRow(ctx, query, conversationID).Scan(&profile)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}
	if profile == nil {
		profile = map[string]string{}
	}
	return profile, nil
}

// The stored document is concatenated with the incoming partial in a single
// statement, so concurrent upserts on the same conversation never lose each
// other's fields.
const upsertProfileQuery = `
	INSERT INTO conversation_profiles (conversation_id, profile, updated_at)
	VALUES ($1, $2, now())
	ON CONFLICT (conversation_id)
	DO UPDATE SET profile = conversation_profiles.profile || EXCLUDED.profile, updated_at = now()
	RETURNING profile`

// filterProfileKeys keeps only recognized keys with non-empty values, so a
// merge never erases a known fact.
func filterProfileKeys(partial map[string]string) map[string]string {
	filtered := make(map[string]string, len(partial))
	for key, value := range partial {
		if allowedProfileKeys[key] && value != "" {
			filtered[key] = value
		}
	}
	return filtered
}

// UpsertProfile merges partial updates into the stored profile atomically and
// returns the merged result.
func (r *Repo) UpsertProfile(ctx context.Context, conversationID string, partial map[string]string) (map[string]string, error) {
	merged := map[string]string{}
	err := r.pool.QueryRow(ctx, upsertProfileQuery, conversationID, filterProfileKeys(partial)).Scan(&merged)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}
	if merged == nil {
		merged = map[string]string{}
	}
	return merged, nil
}

// ListProfiles returns all tracked profiles, most recently updated first.
func (r *Repo) ListProfiles(ctx context.Context) ([]ProfileRecord, error) {
	query := `
		SELECT conversation_id, profile, updated_at
		FROM conversation_profiles
		ORDER BY updated_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileRecord
	for rows.Next() {
		var rec ProfileRecord
		if err := rows.Scan(&rec.ConversationID, &rec.Profile, &rec.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// ClearHistory deletes all conversations, cascading to messages and
// profiles. Captured leads are kept.
func (r *Repo) ClearHistory(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, `DELETE FROM conversations`); err != nil {
		return fmt.Errorf("clear history: %w", err)
	}
	return nil
}

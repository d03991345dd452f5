// Package repository persists leads in PostgreSQL.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"receptionist_backend/internal/leads/domain"
)

// Repo implements lead persistence with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new leads repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Save inserts a lead and returns its id.
func (r *Repo) Save(ctx context.Context, lead domain.Lead) (int64, error) {
	query := `
		INSERT INTO leads (conversation_id, name, email, phone, contact_method, preferred_time, intent, urgency, summary, profile)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	profile := lead.Profile
	if profile == nil {
		profile = map[string]string{}
	}

	var id int64
	err := r.pool.QueryRow(ctx, query,
		lead.ConversationID, lead.Name, lead.Email, lead.Phone, lead.ContactMethod,
		lead.PreferredTime, lead.Intent, lead.Urgency, lead.Summary, profile,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("save lead: %w", err)
	}
	return id, nil
}

// Exists reports whether a lead with the same conversation and email or
// phone was already captured.
func (r *Repo) Exists(ctx context.Context, conversationID, email, phone string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM leads
			WHERE conversation_id = $1
			  AND (($2 <> '' AND email = $2) OR ($3 <> '' AND phone = $3))
		)`

	var exists bool
	if err := r.pool.QueryRow(ctx, query, conversationID, email, phone).Scan(&exists); err != nil {
		return false, fmt.Errorf("lead exists: %w", err)
	}
	return exists, nil
}

// List returns all captured leads, newest first.
func (r *Repo) List(ctx context.Context) ([]domain.Lead, error) {
	query := `
		SELECT id, conversation_id, name, email, phone, contact_method, preferred_time, intent, urgency, summary, profile, created_at
		FROM leads
		ORDER BY created_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	defer rows.Close()

	var out []domain.Lead
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(
			&lead.ID, &lead.ConversationID, &lead.Name, &lead.Email, &lead.Phone,
			&lead.ContactMethod, &lead.PreferredTime, &lead.Intent, &lead.Urgency,
			&lead.Summary, &lead.Profile, &lead.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan lead: %w", err)
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

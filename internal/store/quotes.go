package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vinpro/dealdesk/internal/finance"
)

// Quote statuses.
const (
	QuoteStatusDraft    = "draft"
	QuoteStatusSent     = "sent"
	QuoteStatusAccepted = "accepted"
	QuoteStatusExpired  = "expired"
)

// quoteValidity is how long a saved quote stays presentable by default.
const quoteValidity = 7 * 24 * time.Hour

// Quote is a saved payment worksheet. The calculations snapshot is frozen at
// save time; re-quoting creates a new record rather than mutating this one.
type Quote struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customerId,omitempty"`
	VehicleID    string          `json:"vehicleId,omitempty"`
	QuoteType    string          `json:"quoteType"` // "lease", "loan"
	Calculations json.RawMessage `json:"calculations"`
	Status       string          `json:"status"`
	ExpiresAt    time.Time       `json:"expiresAt"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

// QuoteStore persists saved quotes.
type QuoteStore struct {
	db *sql.DB
}

// NewQuoteStore creates a QuoteStore on db.
func NewQuoteStore(db *sql.DB) *QuoteStore {
	return &QuoteStore{db: db}
}

// CreateQuoteInput carries a new quote. A zero ExpiresAt defaults to seven
// days out.
type CreateQuoteInput struct {
	CustomerID   string          `json:"customerId,omitempty"`
	VehicleID    string          `json:"vehicleId,omitempty"`
	QuoteType    string          `json:"quoteType,omitempty"`
	Calculations json.RawMessage `json:"calculations"`
	ExpiresAt    time.Time       `json:"expiresAt,omitempty"`
}

// Create saves a quote in draft status.
func (s *QuoteStore) Create(ctx context.Context, in CreateQuoteInput) (*Quote, error) {
	if len(in.Calculations) == 0 {
		return nil, &finance.InvalidInputError{Field: "calculations", Reason: "is required"}
	}

	now := time.Now().UTC()
	q := &Quote{
		ID:           uuid.New().String(),
		CustomerID:   in.CustomerID,
		VehicleID:    in.VehicleID,
		QuoteType:    in.QuoteType,
		Calculations: in.Calculations,
		Status:       QuoteStatusDraft,
		ExpiresAt:    in.ExpiresAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if q.QuoteType == "" {
		q.QuoteType = "lease"
	}
	if q.ExpiresAt.IsZero() {
		q.ExpiresAt = now.Add(quoteValidity)
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO quotes (id, customer_id, vehicle_id, quote_type, calculations,
			status, expires_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		q.ID, nullable(q.CustomerID), nullable(q.VehicleID), q.QuoteType,
		string(q.Calculations), q.Status, formatTime(q.ExpiresAt),
		formatTime(q.CreatedAt), formatTime(q.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting quote: %w", err)
	}
	return q, nil
}

// Get returns one quote by ID. A quote past its expiry reads back as expired
// without a separate sweep.
func (s *QuoteStore) Get(ctx context.Context, id string) (*Quote, error) {
	row := s.db.QueryRowContext(ctx, quoteSelect+` WHERE id = ?`, id)
	return scanQuote(row)
}

// List returns quotes newest-first, optionally filtered by customer.
func (s *QuoteStore) List(ctx context.Context, customerID string, limit, offset int) ([]*Quote, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := quoteSelect
	var args []interface{}
	if customerID != "" {
		query += ` WHERE customer_id = ?`
		args = append(args, customerID)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing quotes: %w", err)
	}
	defer rows.Close()

	var quotes []*Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, q)
	}
	return quotes, rows.Err()
}

// SetStatus updates a quote's status. Expired quotes cannot be revived.
func (s *QuoteStore) SetStatus(ctx context.Context, id, status string) (*Quote, error) {
	switch status {
	case QuoteStatusDraft, QuoteStatusSent, QuoteStatusAccepted, QuoteStatusExpired:
	default:
		return nil, &finance.InvalidInputError{Field: "status", Reason: "unknown quote status"}
	}

	q, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if q.Status == QuoteStatusExpired && status != QuoteStatusExpired {
		return nil, &finance.InvalidInputError{Field: "status", Reason: "quote has expired"}
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE quotes SET status = ?, updated_at = ? WHERE id = ?`,
		status, formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("updating quote: %w", err)
	}
	return s.Get(ctx, id)
}

const quoteSelect = `
	SELECT id, customer_id, vehicle_id, quote_type, calculations, status,
		expires_at, created_at, updated_at
	FROM quotes`

func scanQuote(row rowScanner) (*Quote, error) {
	var q Quote
	var customerID, vehicleID sql.NullString
	var calculations, expiresAt, createdAt, updatedAt string
	err := row.Scan(&q.ID, &customerID, &vehicleID, &q.QuoteType,
		&calculations, &q.Status, &expiresAt, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning quote: %w", err)
	}
	q.CustomerID = customerID.String
	q.VehicleID = vehicleID.String
	q.Calculations = json.RawMessage(calculations)
	q.ExpiresAt = parseTime(expiresAt)
	q.CreatedAt = parseTime(createdAt)
	q.UpdatedAt = parseTime(updatedAt)
	if q.Status != QuoteStatusAccepted && q.Status != QuoteStatusExpired && time.Now().After(q.ExpiresAt) {
		q.Status = QuoteStatusExpired
	}
	return &q, nil
}

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

// BankProgram is one lending program a bank offers.
type BankProgram struct {
	Name           string  `json:"name"`
	MinCreditScore int     `json:"minCreditScore"`
	MaxLTV         float64 `json:"maxLtv"` // loan-to-value, e.g. 1.2
	MaxTermMonths  int     `json:"maxTermMonths"`
	BaseRate       float64 `json:"baseRate"` // annual percentage
}

// Bank is one lender in the directory.
type Bank struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Contact   string        `json:"contact,omitempty"`
	Phone     string        `json:"phone,omitempty"`
	Programs  []BankProgram `json:"programs"`
	Preferred bool          `json:"preferred"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// BankStore persists the lender directory.
type BankStore struct {
	db *sql.DB
}

// NewBankStore creates a BankStore on db.
func NewBankStore(db *sql.DB) *BankStore {
	return &BankStore{db: db}
}

// Create adds a lender.
func (s *BankStore) Create(ctx context.Context, b *Bank) (*Bank, error) {
	if b.Name == "" {
		return nil, &finance.InvalidInputError{Field: "name", Reason: "is required"}
	}

	now := time.Now().UTC()
	b.ID = uuid.New().String()
	b.CreatedAt = now
	b.UpdatedAt = now
	if b.Programs == nil {
		b.Programs = []BankProgram{}
	}

	programsJSON, _ := json.Marshal(b.Programs)
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO banks (id, name, contact, phone, programs, preferred, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.Name, b.Contact, b.Phone, string(programsJSON), boolToInt(b.Preferred),
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting bank: %w", err)
	}
	return b, nil
}

// Get returns one lender by ID.
func (s *BankStore) Get(ctx context.Context, id string) (*Bank, error) {
	row := s.db.QueryRowContext(ctx, bankSelect+` WHERE id = ?`, id)
	return scanBank(row)
}

// List returns the lender directory, preferred lenders first.
func (s *BankStore) List(ctx context.Context) ([]*Bank, error) {
	rows, err := s.db.QueryContext(ctx, bankSelect+` ORDER BY preferred DESC, name ASC`)
	if err != nil {
		return nil, fmt.Errorf("listing banks: %w", err)
	}
	defer rows.Close()

	var banks []*Bank
	for rows.Next() {
		b, err := scanBank(rows)
		if err != nil {
			return nil, err
		}
		banks = append(banks, b)
	}
	return banks, rows.Err()
}

// Update replaces the lender's mutable fields.
func (s *BankStore) Update(ctx context.Context, id string, b *Bank) (*Bank, error) {
	if b.Name == "" {
		return nil, &finance.InvalidInputError{Field: "name", Reason: "is required"}
	}
	programsJSON, _ := json.Marshal(b.Programs)
	res, err := s.db.ExecContext(ctx, `
		UPDATE banks SET name = ?, contact = ?, phone = ?, programs = ?, preferred = ?, updated_at = ?
		WHERE id = ?`,
		b.Name, b.Contact, b.Phone, string(programsJSON), boolToInt(b.Preferred),
		formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("updating bank: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete removes a lender from the directory.
func (s *BankStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM banks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting bank: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

const bankSelect = `
	SELECT id, name, contact, phone, programs, preferred, created_at, updated_at
	FROM banks`

func scanBank(row rowScanner) (*Bank, error) {
	var b Bank
	var programsJSON, createdAt, updatedAt string
	var preferred int
	err := row.Scan(&b.ID, &b.Name, &b.Contact, &b.Phone, &programsJSON,
		&preferred, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning bank: %w", err)
	}
	b.Preferred = preferred != 0
	_ = json.Unmarshal([]byte(programsJSON), &b.Programs)
	b.CreatedAt = parseTime(createdAt)
	b.UpdatedAt = parseTime(updatedAt)
	return &b, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

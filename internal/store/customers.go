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

// Customer lifecycle statuses, in rough funnel order.
const (
	CustomerStatusNewLead = "New Lead"
	CustomerStatusHotLead = "Hot Lead"
	CustomerStatusInDeal  = "In Deal"
	CustomerStatusSold    = "Sold"
	CustomerStatusLost    = "Lost"
)

// DLData holds the fields read off a scanned driver's license.
type DLData struct {
	LicenseNumber string `json:"licenseNumber"`
	Address       string `json:"address,omitempty"`
	City          string `json:"city,omitempty"`
	State         string `json:"state,omitempty"`
	Zip           string `json:"zip,omitempty"`
	DateOfBirth   string `json:"dateOfBirth,omitempty"`
	Expiration    string `json:"expiration,omitempty"`
}

// Qualification is the result of a soft credit pull: a band and a score range
// rather than an exact FICO, since no hard inquiry is made.
type Qualification struct {
	Band      string    `json:"band"` // "Prime", "Near-Prime", "Subprime"
	ScoreLow  int       `json:"scoreLow"`
	ScoreHigh int       `json:"scoreHigh"`
	PulledAt  time.Time `json:"pulledAt"`
}

// Customer is a showroom lead or buyer.
type Customer struct {
	ID              string         `json:"id"`
	FirstName       string         `json:"firstName"`
	LastName        string         `json:"lastName"`
	Email           string         `json:"email,omitempty"`
	Phone           string         `json:"phone,omitempty"`
	LicenseNumber   string         `json:"licenseNumber,omitempty"`
	Status          string         `json:"status"`
	Source          string         `json:"source,omitempty"` // "dl_scan", "walk_in", "web"
	EngagementScore int            `json:"engagementScore"`
	DLData          *DLData        `json:"dlData,omitempty"`
	Qualification   *Qualification `json:"qualification,omitempty"`
	Notes           string         `json:"notes,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// CustomerStore persists customers.
type CustomerStore struct {
	db *sql.DB
}

// NewCustomerStore creates a CustomerStore on db.
func NewCustomerStore(db *sql.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

// CreateLeadInput carries a new lead, typically from a license scan.
type CreateLeadInput struct {
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email,omitempty"`
	Phone     string  `json:"phone,omitempty"`
	Source    string  `json:"source,omitempty"`
	DLData    *DLData `json:"dlData,omitempty"`
}

// CreateLead inserts a new customer unless one already exists with the same
// license number or email. On a match the existing customer is returned with
// duplicate=true so the desk can resume that record instead of forking it.
func (s *CustomerStore) CreateLead(ctx context.Context, in CreateLeadInput) (c *Customer, duplicate bool, err error) {
	if in.FirstName == "" {
		return nil, false, &finance.InvalidInputError{Field: "firstName", Reason: "is required"}
	}
	if in.LastName == "" {
		return nil, false, &finance.InvalidInputError{Field: "lastName", Reason: "is required"}
	}

	license := ""
	if in.DLData != nil {
		license = in.DLData.LicenseNumber
	}

	if existing, err := s.findDuplicate(ctx, license, in.Email); err != nil {
		return nil, false, err
	} else if existing != nil {
		return existing, true, nil
	}

	now := time.Now().UTC()
	c = &Customer{
		ID:        uuid.New().String(),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Status:    CustomerStatusNewLead,
		Source:    in.Source,
		DLData:    in.DLData,
		CreatedAt: now,
		UpdatedAt: now,
	}
	c.LicenseNumber = license

	var dlJSON interface{}
	if c.DLData != nil {
		b, _ := json.Marshal(c.DLData)
		dlJSON = string(b)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO customers (id, first_name, last_name, email, phone, license_number,
			status, source, engagement_score, dl_data, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, 0, ?, '', ?, ?)`,
		c.ID, c.FirstName, c.LastName, c.Email, c.Phone, c.LicenseNumber,
		c.Status, c.Source, dlJSON, formatTime(c.CreatedAt), formatTime(c.UpdatedAt))
	if err != nil {
		return nil, false, fmt.Errorf("inserting customer: %w", err)
	}
	return c, false, nil
}

func (s *CustomerStore) findDuplicate(ctx context.Context, license, email string) (*Customer, error) {
	if license == "" && email == "" {
		return nil, nil
	}
	row := s.db.QueryRowContext(ctx, customerSelect+`
		WHERE (license_number != '' AND license_number = ?)
		   OR (email != '' AND email = ?)
		LIMIT 1`, license, email)
	c, err := scanCustomer(row)
	if err == ErrNotFound {
		return nil, nil
	}
	return c, err
}

// Get returns one customer by ID.
func (s *CustomerStore) Get(ctx context.Context, id string) (*Customer, error) {
	row := s.db.QueryRowContext(ctx, customerSelect+` WHERE id = ?`, id)
	return scanCustomer(row)
}

// List returns customers newest-first, optionally filtered by status.
func (s *CustomerStore) List(ctx context.Context, status string, limit, offset int) ([]*Customer, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := customerSelect
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing customers: %w", err)
	}
	defer rows.Close()

	var customers []*Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// UpdateStatus moves the customer through the funnel.
func (s *CustomerStore) UpdateStatus(ctx context.Context, id, status string) (*Customer, error) {
	switch status {
	case CustomerStatusNewLead, CustomerStatusHotLead, CustomerStatusInDeal, CustomerStatusSold, CustomerStatusLost:
	default:
		return nil, &finance.InvalidInputError{Field: "status", Reason: "unknown customer status"}
	}
	return s.update(ctx, id, `status = ?`, status)
}

// SetQualification records a completed soft credit pull.
func (s *CustomerStore) SetQualification(ctx context.Context, id string, q Qualification) (*Customer, error) {
	b, _ := json.Marshal(q)
	return s.update(ctx, id, `qualification = ?`, string(b))
}

// AddEngagement increments the engagement score by delta.
func (s *CustomerStore) AddEngagement(ctx context.Context, id string, delta int) (*Customer, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET engagement_score = engagement_score + ?, updated_at = ? WHERE id = ?`,
		delta, formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("updating engagement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// SetNotes replaces the customer's notes.
func (s *CustomerStore) SetNotes(ctx context.Context, id, notes string) (*Customer, error) {
	return s.update(ctx, id, `notes = ?`, notes)
}

func (s *CustomerStore) update(ctx context.Context, id, setClause string, arg interface{}) (*Customer, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE customers SET `+setClause+`, updated_at = ? WHERE id = ?`,
		arg, formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("updating customer: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

const customerSelect = `
	SELECT id, first_name, last_name, email, phone, license_number, status,
		source, engagement_score, dl_data, qualification, notes, created_at, updated_at
	FROM customers`

func scanCustomer(row rowScanner) (*Customer, error) {
	var c Customer
	var dlJSON, qualJSON sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&c.ID, &c.FirstName, &c.LastName, &c.Email, &c.Phone,
		&c.LicenseNumber, &c.Status, &c.Source, &c.EngagementScore,
		&dlJSON, &qualJSON, &c.Notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning customer: %w", err)
	}
	if dlJSON.Valid && dlJSON.String != "" {
		c.DLData = &DLData{}
		_ = json.Unmarshal([]byte(dlJSON.String), c.DLData)
	}
	if qualJSON.Valid && qualJSON.String != "" {
		c.Qualification = &Qualification{}
		_ = json.Unmarshal([]byte(qualJSON.String), c.Qualification)
	}
	c.CreatedAt = parseTime(createdAt)
	c.UpdatedAt = parseTime(updatedAt)
	return &c, nil
}

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vinpro/dealdesk/internal/deal"
	"github.com/vinpro/dealdesk/internal/finance"
)

// DealStore persists deal aggregates. The computed structure is stored as a
// JSON document holding both the raw inputs and the derived principal and
// payment, so reads never recompute.
type DealStore struct {
	db *sql.DB
}

// NewDealStore creates a DealStore on db.
func NewDealStore(db *sql.DB) *DealStore {
	return &DealStore{db: db}
}

// CreateDealInput carries the fields needed to open a new deal pencil.
type CreateDealInput struct {
	CustomerID  string                 `json:"customerId"`
	VehicleID   string                 `json:"vehicleId"`
	LenderID    string                 `json:"lenderId,omitempty"`
	Salesperson string                 `json:"salesperson,omitempty"`
	Structure   finance.StructureInput `json:"structure"`
	Notes       string                 `json:"notes,omitempty"`
}

// Create computes the deal structure from the raw inputs and persists the new
// deal in pending status. Structural input errors surface unchanged.
func (s *DealStore) Create(ctx context.Context, in CreateDealInput) (*deal.Deal, error) {
	if in.CustomerID == "" {
		return nil, &finance.InvalidInputError{Field: "customerId", Reason: "is required"}
	}
	if in.VehicleID == "" {
		return nil, &finance.InvalidInputError{Field: "vehicleId", Reason: "is required"}
	}

	structure, err := finance.BuildStructure(in.Structure)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	d := &deal.Deal{
		ID:          uuid.New().String(),
		CustomerID:  in.CustomerID,
		VehicleID:   in.VehicleID,
		LenderID:    in.LenderID,
		Salesperson: in.Salesperson,
		Structure:   structure,
		Status:      deal.StatusPending,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	structureJSON, _ := json.Marshal(d.Structure)
	stipsJSON, _ := json.Marshal(d.Stipulations)

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO deals (id, customer_id, vehicle_id, lender_id, salesperson,
			structure, stipulations, status, notes, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.CustomerID, d.VehicleID, nullable(d.LenderID), d.Salesperson,
		string(structureJSON), string(stipsJSON), string(d.Status), d.Notes,
		formatTime(d.CreatedAt), formatTime(d.UpdatedAt))
	if err != nil {
		return nil, fmt.Errorf("inserting deal: %w", err)
	}
	return d, nil
}

// Get returns one deal by ID.
func (s *DealStore) Get(ctx context.Context, id string) (*deal.Deal, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, vehicle_id, lender_id, salesperson,
			structure, stipulations, status, notes, created_at, updated_at
		FROM deals WHERE id = ?`, id)
	return scanDeal(row)
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Status      string
	Salesperson string
	CustomerID  string
	Limit       int
	Offset      int
}

// List returns deals newest-first, optionally filtered.
func (s *DealStore) List(ctx context.Context, f ListFilter) ([]*deal.Deal, error) {
	conditions := []string{"1=1"}
	var args []interface{}
	if f.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, f.Status)
	}
	if f.Salesperson != "" {
		conditions = append(conditions, "salesperson = ?")
		args = append(args, f.Salesperson)
	}
	if f.CustomerID != "" {
		conditions = append(conditions, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	args = append(args, limit, f.Offset)

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT id, customer_id, vehicle_id, lender_id, salesperson,
			structure, stipulations, status, notes, created_at, updated_at
		FROM deals WHERE %s
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, strings.Join(conditions, " AND ")), args...)
	if err != nil {
		return nil, fmt.Errorf("listing deals: %w", err)
	}
	defer rows.Close()

	var deals []*deal.Deal
	for rows.Next() {
		d, err := scanDeal(rows)
		if err != nil {
			return nil, err
		}
		deals = append(deals, d)
	}
	return deals, rows.Err()
}

// UpdateStructure recomputes the deal structure from new raw inputs and
// persists the result. The structure is a value object: any input change
// replaces the whole document.
func (s *DealStore) UpdateStructure(ctx context.Context, id string, in finance.StructureInput) (*deal.Deal, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Status.Terminal() {
		return nil, &deal.InvalidTransitionError{From: d.Status, To: d.Status}
	}

	structure, err := finance.BuildStructure(in)
	if err != nil {
		return nil, err
	}
	d.Structure = structure
	d.UpdatedAt = time.Now().UTC()

	structureJSON, _ := json.Marshal(d.Structure)
	_, err = s.db.ExecContext(ctx,
		`UPDATE deals SET structure = ?, updated_at = ? WHERE id = ?`,
		string(structureJSON), formatTime(d.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("updating deal structure: %w", err)
	}
	return d, nil
}

// SetStipulations replaces the deal's stipulation checklist.
func (s *DealStore) SetStipulations(ctx context.Context, id string, stips deal.Stipulations) (*deal.Deal, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Stipulations = stips
	d.UpdatedAt = time.Now().UTC()

	stipsJSON, _ := json.Marshal(stips)
	_, err = s.db.ExecContext(ctx,
		`UPDATE deals SET stipulations = ?, updated_at = ? WHERE id = ?`,
		string(stipsJSON), formatTime(d.UpdatedAt), id)
	if err != nil {
		return nil, fmt.Errorf("updating deal stipulations: %w", err)
	}
	return d, nil
}

// TransitionStatus validates and applies a lifecycle transition, persisting
// the new status. The returned StatusChange is zero-valued with changed=false
// for a self-transition no-op.
func (s *DealStore) TransitionStatus(ctx context.Context, id string, target deal.Status) (*deal.Deal, deal.StatusChange, bool, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return nil, deal.StatusChange{}, false, err
	}

	change, changed, err := d.Transition(target, time.Now().UTC())
	if err != nil {
		return nil, deal.StatusChange{}, false, err
	}
	if !changed {
		return d, deal.StatusChange{}, false, nil
	}

	_, err = s.db.ExecContext(ctx,
		`UPDATE deals SET status = ?, updated_at = ? WHERE id = ?`,
		string(d.Status), formatTime(d.UpdatedAt), id)
	if err != nil {
		return nil, deal.StatusChange{}, false, fmt.Errorf("updating deal status: %w", err)
	}
	return d, change, true, nil
}

// CountByStatus returns deal counts grouped by lifecycle status.
func (s *DealStore) CountByStatus(ctx context.Context) (map[deal.Status]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM deals GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("counting deals: %w", err)
	}
	defer rows.Close()

	counts := make(map[deal.Status]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[deal.Status(status)] = n
	}
	return counts, rows.Err()
}

// PipelineValue sums the sale price of all open (non-terminal) deals.
func (s *DealStore) PipelineValue(ctx context.Context) (float64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT structure FROM deals WHERE status NOT IN ('delivered', 'cancelled')`)
	if err != nil {
		return 0, fmt.Errorf("querying pipeline: %w", err)
	}
	defer rows.Close()

	var total float64
	for rows.Next() {
		var structureJSON string
		if err := rows.Scan(&structureJSON); err != nil {
			return 0, err
		}
		var structure finance.DealStructure
		if err := json.Unmarshal([]byte(structureJSON), &structure); err != nil {
			continue
		}
		total += structure.SalePrice
	}
	return total, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanDeal(row rowScanner) (*deal.Deal, error) {
	var d deal.Deal
	var lenderID sql.NullString
	var structureJSON, stipsJSON, status, createdAt, updatedAt string
	err := row.Scan(&d.ID, &d.CustomerID, &d.VehicleID, &lenderID, &d.Salesperson,
		&structureJSON, &stipsJSON, &status, &d.Notes, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning deal: %w", err)
	}
	d.LenderID = lenderID.String
	d.Status = deal.Status(status)
	if err := json.Unmarshal([]byte(structureJSON), &d.Structure); err != nil {
		return nil, fmt.Errorf("decoding deal structure: %w", err)
	}
	if err := json.Unmarshal([]byte(stipsJSON), &d.Stipulations); err != nil {
		return nil, fmt.Errorf("decoding deal stipulations: %w", err)
	}
	d.CreatedAt = parseTime(createdAt)
	d.UpdatedAt = parseTime(updatedAt)
	return &d, nil
}

func formatTime(t time.Time) string {
	return t.Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

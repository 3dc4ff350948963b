package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vinpro/dealdesk/internal/finance"
)

// Inventory statuses.
const (
	VehicleStatusAvailable = "available"
	VehicleStatusPending   = "pending" // held by an open deal
	VehicleStatusSold      = "sold"
	VehicleStatusWholesale = "wholesale"
)

// Vehicle is one unit on the lot. MarketVariance and DaysOnLot are derived on
// read and never stored.
type Vehicle struct {
	ID                string     `json:"id"`
	VIN               string     `json:"vin"`
	StockNumber       string     `json:"stockNumber"`
	Year              int        `json:"year"`
	Make              string     `json:"make"`
	Model             string     `json:"model"`
	Trim              string     `json:"trim,omitempty"`
	Mileage           int        `json:"mileage"`
	Price             float64    `json:"price"`
	Cost              float64    `json:"cost,omitempty"`
	Status            string     `json:"status"`
	MarketAverage     *float64   `json:"marketAverage,omitempty"`
	MarketRank        *int       `json:"marketRank,omitempty"`
	MarketLastUpdated *time.Time `json:"marketLastUpdated,omitempty"`
	MarketVariance    *float64   `json:"marketVariance,omitempty"` // price − marketAverage
	DaysOnLot         int        `json:"daysOnLot"`
	CreatedAt         time.Time  `json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`
}

// InventoryStore persists lot inventory.
type InventoryStore struct {
	db *sql.DB
}

// NewInventoryStore creates an InventoryStore on db.
func NewInventoryStore(db *sql.DB) *InventoryStore {
	return &InventoryStore{db: db}
}

// CreateVehicleInput carries a new unit. A blank StockNumber gets a generated
// one.
type CreateVehicleInput struct {
	VIN         string  `json:"vin"`
	StockNumber string  `json:"stockNumber,omitempty"`
	Year        int     `json:"year"`
	Make        string  `json:"make"`
	Model       string  `json:"model"`
	Trim        string  `json:"trim,omitempty"`
	Mileage     int     `json:"mileage,omitempty"`
	Price       float64 `json:"price"`
	Cost        float64 `json:"cost,omitempty"`
}

// Create adds a unit to inventory. VINs are unique across the lot.
func (s *InventoryStore) Create(ctx context.Context, in CreateVehicleInput) (*Vehicle, error) {
	if len(in.VIN) != 17 {
		return nil, &finance.InvalidInputError{Field: "vin", Reason: "must be 17 characters"}
	}
	if in.Price <= 0 {
		return nil, &finance.InvalidInputError{Field: "price", Reason: "must be greater than zero"}
	}
	if in.Make == "" || in.Model == "" {
		return nil, &finance.InvalidInputError{Field: "make", Reason: "make and model are required"}
	}

	now := time.Now().UTC()
	v := &Vehicle{
		ID:          uuid.New().String(),
		VIN:         strings.ToUpper(in.VIN),
		StockNumber: in.StockNumber,
		Year:        in.Year,
		Make:        in.Make,
		Model:       in.Model,
		Trim:        in.Trim,
		Mileage:     in.Mileage,
		Price:       in.Price,
		Cost:        in.Cost,
		Status:      VehicleStatusAvailable,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if v.StockNumber == "" {
		// Last six of the VIN keeps stock numbers recognisable on the lot.
		v.StockNumber = "VP-" + v.VIN[11:]
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO inventory (id, vin, stock_number, year, make, model, trim,
			mileage, price, cost, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.VIN, v.StockNumber, v.Year, v.Make, v.Model, v.Trim,
		v.Mileage, v.Price, v.Cost, v.Status, formatTime(v.CreatedAt), formatTime(v.UpdatedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, fmt.Errorf("%w: vin %s", ErrDuplicate, v.VIN)
		}
		return nil, fmt.Errorf("inserting vehicle: %w", err)
	}
	return v, nil
}

// Get returns one unit by ID.
func (s *InventoryStore) Get(ctx context.Context, id string) (*Vehicle, error) {
	row := s.db.QueryRowContext(ctx, vehicleSelect+` WHERE id = ?`, id)
	return scanVehicle(row)
}

// GetByVIN returns one unit by VIN.
func (s *InventoryStore) GetByVIN(ctx context.Context, vin string) (*Vehicle, error) {
	row := s.db.QueryRowContext(ctx, vehicleSelect+` WHERE vin = ?`, strings.ToUpper(vin))
	return scanVehicle(row)
}

// List returns units newest-first, optionally filtered by status.
func (s *InventoryStore) List(ctx context.Context, status string, limit, offset int) ([]*Vehicle, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	query := vehicleSelect
	var args []interface{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing inventory: %w", err)
	}
	defer rows.Close()

	var vehicles []*Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// SetPrice adjusts the asking price, returning both the old and new record
// state for event emission.
func (s *InventoryStore) SetPrice(ctx context.Context, id string, price float64) (old, updated *Vehicle, err error) {
	if price <= 0 {
		return nil, nil, &finance.InvalidInputError{Field: "price", Reason: "must be greater than zero"}
	}
	old, err = s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	_, err = s.db.ExecContext(ctx,
		`UPDATE inventory SET price = ?, updated_at = ? WHERE id = ?`,
		price, formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, nil, fmt.Errorf("updating price: %w", err)
	}
	updated, err = s.Get(ctx, id)
	return old, updated, err
}

// SetStatus updates the unit's lot status.
func (s *InventoryStore) SetStatus(ctx context.Context, id, status string) (*Vehicle, error) {
	switch status {
	case VehicleStatusAvailable, VehicleStatusPending, VehicleStatusSold, VehicleStatusWholesale:
	default:
		return nil, &finance.InvalidInputError{Field: "status", Reason: "unknown vehicle status"}
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE inventory SET status = ?, updated_at = ? WHERE id = ?`,
		status, formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("updating status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// SetMarketData records a fresh market valuation for the unit.
func (s *InventoryStore) SetMarketData(ctx context.Context, id string, average float64, rank int) (*Vehicle, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE inventory SET market_average = ?, market_rank = ?, market_last_updated = ?, updated_at = ? WHERE id = ?`,
		average, rank, formatTime(time.Now().UTC()), formatTime(time.Now().UTC()), id)
	if err != nil {
		return nil, fmt.Errorf("updating market data: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, id)
}

// LotHealth summarises the lot for the dashboard.
type LotHealth struct {
	TotalUnits     int     `json:"totalUnits"`
	AvailableUnits int     `json:"availableUnits"`
	TotalValue     float64 `json:"totalValue"`
	AvgDaysOnLot   float64 `json:"avgDaysOnLot"`
	AgedUnits      int     `json:"agedUnits"` // on the lot more than 60 days
}

// Health computes lot-level aggregates over non-sold units.
func (s *InventoryStore) Health(ctx context.Context) (LotHealth, error) {
	vehicles, err := s.List(ctx, "", 500, 0)
	if err != nil {
		return LotHealth{}, err
	}

	var h LotHealth
	var totalDays int
	for _, v := range vehicles {
		if v.Status == VehicleStatusSold {
			continue
		}
		h.TotalUnits++
		h.TotalValue += v.Price
		totalDays += v.DaysOnLot
		if v.Status == VehicleStatusAvailable {
			h.AvailableUnits++
		}
		if v.DaysOnLot > 60 {
			h.AgedUnits++
		}
	}
	if h.TotalUnits > 0 {
		h.AvgDaysOnLot = float64(totalDays) / float64(h.TotalUnits)
	}
	return h, nil
}

const vehicleSelect = `
	SELECT id, vin, stock_number, year, make, model, trim, mileage, price, cost,
		status, market_average, market_rank, market_last_updated, created_at, updated_at
	FROM inventory`

func scanVehicle(row rowScanner) (*Vehicle, error) {
	var v Vehicle
	var marketAvg sql.NullFloat64
	var marketRank sql.NullInt64
	var marketUpdated sql.NullString
	var createdAt, updatedAt string
	err := row.Scan(&v.ID, &v.VIN, &v.StockNumber, &v.Year, &v.Make, &v.Model,
		&v.Trim, &v.Mileage, &v.Price, &v.Cost, &v.Status,
		&marketAvg, &marketRank, &marketUpdated, &createdAt, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning vehicle: %w", err)
	}
	if marketAvg.Valid {
		avg := marketAvg.Float64
		v.MarketAverage = &avg
		variance := v.Price - avg
		v.MarketVariance = &variance
	}
	if marketRank.Valid {
		rank := int(marketRank.Int64)
		v.MarketRank = &rank
	}
	if marketUpdated.Valid && marketUpdated.String != "" {
		t := parseTime(marketUpdated.String)
		v.MarketLastUpdated = &t
	}
	v.CreatedAt = parseTime(createdAt)
	v.UpdatedAt = parseTime(updatedAt)
	v.DaysOnLot = int(time.Since(v.CreatedAt).Hours() / 24)
	return &v, nil
}

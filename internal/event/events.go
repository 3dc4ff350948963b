package event

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vinpro/dealdesk/internal/deal"
	"github.com/vinpro/dealdesk/internal/types"
)

// DomainEvent carries the canonical shape of every domain event.
type DomainEvent struct {
	ID               string
	EventType        string
	OccurredAt       time.Time
	AffectedEntities []types.SourceRef
	Summary          string
	Category         string // "deal", "customer", "inventory", "finance", "system"
	Weight           string // "critical", "major", "minor", "info"
	Polarity         string // "positive", "negative", "neutral"
	Actor            string
	Payload          json.RawMessage
}

func newID() string { return uuid.New().String() }

func mustJSON(v any) json.RawMessage {
	b, _ := json.Marshal(v)
	return b
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

// ── Customer events ──────────────────────────────────────────────────────────

// LeadCapturedPayload carries event-specific data for LeadCaptured.
type LeadCapturedPayload struct {
	CustomerID string `json:"customer_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Source     string `json:"source"` // "dl_scan", "walk_in", "web"
}

func NewLeadCaptured(actor string, p LeadCapturedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "lead_captured",
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: "customer", EntityID: p.CustomerID, Role: "subject"},
		},
		Summary:  fmt.Sprintf("Lead captured: %s %s via %s", p.FirstName, p.LastName, p.Source),
		Category: "customer",
		Weight:   "minor",
		Polarity: "positive",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// CreditQualifiedPayload carries event-specific data for CreditQualified.
type CreditQualifiedPayload struct {
	CustomerID string `json:"customer_id"`
	CreditBand string `json:"credit_band"`
	FicoRange  string `json:"fico_range"`
}

func NewCreditQualified(actor string, p CreditQualifiedPayload) DomainEvent {
	polarity := "positive"
	if p.CreditBand == "Subprime" {
		polarity = "neutral"
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  "credit_qualified",
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: "customer", EntityID: p.CustomerID, Role: "subject"},
		},
		Summary:  fmt.Sprintf("Credit qualified: %s band (%s)", p.CreditBand, p.FicoRange),
		Category: "customer",
		Weight:   "minor",
		Polarity: polarity,
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// ── Deal events ──────────────────────────────────────────────────────────────

// PencilCreatedPayload carries event-specific data for PencilCreated.
type PencilCreatedPayload struct {
	DealID         string  `json:"deal_id"`
	CustomerID     string  `json:"customer_id"`
	VehicleID      string  `json:"vehicle_id"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

func NewPencilCreated(actor string, p PencilCreatedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "pencil_created",
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: "deal", EntityID: p.DealID, Role: "subject"},
			{EntityType: "customer", EntityID: p.CustomerID, Role: "related"},
			{EntityType: "vehicle", EntityID: p.VehicleID, Role: "target"},
		},
		Summary:  fmt.Sprintf("Pencil created: $%.0f/mo on vehicle %s", p.MonthlyPayment, short(p.VehicleID)),
		Category: "deal",
		Weight:   "major",
		Polarity: "positive",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// StructureRevisedPayload carries event-specific data for StructureRevised.
type StructureRevisedPayload struct {
	DealID         string  `json:"deal_id"`
	CustomerID     string  `json:"customer_id"`
	OldPayment     float64 `json:"old_payment"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

func NewStructureRevised(actor string, p StructureRevisedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "structure_revised",
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: "deal", EntityID: p.DealID, Role: "subject"},
			{EntityType: "customer", EntityID: p.CustomerID, Role: "related"},
		},
		Summary:  fmt.Sprintf("Pencil reworked: $%.0f/mo → $%.0f/mo", p.OldPayment, p.MonthlyPayment),
		Category: "deal",
		Weight:   "minor",
		Polarity: "neutral",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// DealStatusChangedPayload carries the lifecycle transition emitted by the
// deal state machine.
type DealStatusChangedPayload struct {
	DealID     string    `json:"deal_id"`
	CustomerID string    `json:"customer_id"`
	FromStatus string    `json:"from_status"`
	ToStatus   string    `json:"to_status"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewDealStatusChanged maps a lifecycle StatusChange onto the feed. Weight and
// polarity depend on where the deal landed: deliveries and approvals read as
// wins, cancellations as losses, everything else as routine desk traffic.
func NewDealStatusChanged(actor, customerID string, change deal.StatusChange) DomainEvent {
	p := DealStatusChangedPayload{
		DealID:     change.DealID,
		CustomerID: customerID,
		FromStatus: string(change.From),
		ToStatus:   string(change.To),
		Timestamp:  change.At,
	}

	weight, polarity := "minor", "neutral"
	switch change.To {
	case deal.StatusApproved:
		weight, polarity = "major", "positive"
	case deal.StatusDelivered:
		weight, polarity = "critical", "positive"
	case deal.StatusCancelled:
		weight, polarity = "major", "negative"
	}

	return DomainEvent{
		ID:         newID(),
		EventType:  "deal_status_changed",
		OccurredAt: change.At,
		AffectedEntities: []types.SourceRef{
			{EntityType: "deal", EntityID: change.DealID, Role: "subject"},
			{EntityType: "customer", EntityID: customerID, Role: "related"},
		},
		Summary:  fmt.Sprintf("Deal %s moved %s → %s", short(change.DealID), change.From, change.To),
		Category: "deal",
		Weight:   weight,
		Polarity: polarity,
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// ── Inventory events ─────────────────────────────────────────────────────────

// UnitAddedPayload carries event-specific data for UnitAdded.
type UnitAddedPayload struct {
	VehicleID   string  `json:"vehicle_id"`
	VIN         string  `json:"vin"`
	StockNumber string  `json:"stock_number"`
	Label       string  `json:"label"` // "2022 Honda Accord"
	Price       float64 `json:"price"`
}

func NewUnitAdded(actor string, p UnitAddedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "unit_added",
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: "vehicle", EntityID: p.VehicleID, Role: "subject"},
		},
		Summary:  fmt.Sprintf("Unit added: %s (stock %s)", p.Label, p.StockNumber),
		Category: "inventory",
		Weight:   "minor",
		Polarity: "positive",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// PriceAdjustedPayload carries event-specific data for PriceAdjusted.
type PriceAdjustedPayload struct {
	VehicleID string  `json:"vehicle_id"`
	VIN       string  `json:"vin"`
	OldPrice  float64 `json:"old_price"`
	NewPrice  float64 `json:"new_price"`
}

func NewPriceAdjusted(actor string, p PriceAdjustedPayload) DomainEvent {
	polarity := "neutral"
	if p.NewPrice < p.OldPrice {
		polarity = "negative"
	}
	return DomainEvent{
		ID:         newID(),
		EventType:  "price_adjusted",
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: "vehicle", EntityID: p.VehicleID, Role: "subject"},
		},
		Summary:  fmt.Sprintf("Price adjusted on %s: $%.0f → $%.0f", short(p.VehicleID), p.OldPrice, p.NewPrice),
		Category: "inventory",
		Weight:   "minor",
		Polarity: polarity,
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// MarketValueSyncedPayload carries event-specific data for MarketValueSynced.
type MarketValueSyncedPayload struct {
	VehicleID     string  `json:"vehicle_id"`
	VIN           string  `json:"vin"`
	MarketAverage float64 `json:"market_average"`
	MarketRank    string  `json:"market_rank"`
}

func NewMarketValueSynced(actor string, p MarketValueSyncedPayload) DomainEvent {
	return DomainEvent{
		ID:         newID(),
		EventType:  "market_value_synced",
		OccurredAt: time.Now(),
		AffectedEntities: []types.SourceRef{
			{EntityType: "vehicle", EntityID: p.VehicleID, Role: "subject"},
		},
		Summary:  fmt.Sprintf("Market sync on %s: avg $%.0f (%s)", short(p.VehicleID), p.MarketAverage, p.MarketRank),
		Category: "inventory",
		Weight:   "info",
		Polarity: "neutral",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

// ── Finance events ───────────────────────────────────────────────────────────

// QuoteSavedPayload carries event-specific data for QuoteSaved.
type QuoteSavedPayload struct {
	QuoteID        string  `json:"quote_id"`
	CustomerID     string  `json:"customer_id"`
	VehicleID      string  `json:"vehicle_id"`
	TermMonths     int     `json:"term_months"`
	MonthlyPayment float64 `json:"monthly_payment"`
}

func NewQuoteSaved(actor string, p QuoteSavedPayload) DomainEvent {
	// Quotes can be anonymous worksheets; only link the parties we have.
	refs := []types.SourceRef{
		{EntityType: "quote", EntityID: p.QuoteID, Role: "subject"},
	}
	if p.CustomerID != "" {
		refs = append(refs, types.SourceRef{EntityType: "customer", EntityID: p.CustomerID, Role: "related"})
	}
	if p.VehicleID != "" {
		refs = append(refs, types.SourceRef{EntityType: "vehicle", EntityID: p.VehicleID, Role: "target"})
	}
	return DomainEvent{
		ID:               newID(),
		EventType:        "quote_saved",
		OccurredAt:       time.Now(),
		AffectedEntities: refs,
		Summary:  fmt.Sprintf("Lease quote locked: $%.0f/mo over %d months", p.MonthlyPayment, p.TermMonths),
		Category: "finance",
		Weight:   "minor",
		Polarity: "positive",
		Actor:    actor,
		Payload:  mustJSON(p),
	}
}

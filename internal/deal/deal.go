// Package deal defines the deal aggregate and its status lifecycle. The
// lifecycle performs no I/O: transitions are validated against a closed table
// and return a StatusChange for the caller to persist and publish.
package deal

import (
	"time"

	"github.com/vinpro/dealdesk/internal/finance"
)

// Stipulations is the salesperson's compliance checklist. The booleans are
// independent, with no ordering between them, and purely informational gating for
// human review; the state machine does not enforce them.
type Stipulations struct {
	IDVerified     bool `json:"idVerified"`
	VideoSent      bool `json:"videoSent"`
	InsuranceProof bool `json:"insuranceProof"`
	CreditConsent  bool `json:"creditConsent"`
}

// Deal is a retail installment pencil: relationships, the computed financial
// structure, the trade appraisal, and the review lifecycle.
type Deal struct {
	ID           string                `json:"id"`
	CustomerID   string                `json:"customerId"`
	VehicleID    string                `json:"vehicleId"`
	LenderID     string                `json:"lenderId,omitempty"`
	Salesperson  string                `json:"salesperson"`
	Structure    finance.DealStructure `json:"structure"`
	Stipulations Stipulations          `json:"stipulations"`
	Status       Status                `json:"status"`
	Notes        string                `json:"notes,omitempty"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
}

// StatusChange is the domain-event payload emitted on every lifecycle
// transition, consumed by the activity/notification layer.
type StatusChange struct {
	DealID string    `json:"dealId"`
	From   Status    `json:"fromStatus"`
	To     Status    `json:"toStatus"`
	At     time.Time `json:"timestamp"`
}

// Transition moves the deal to target after validating against the lifecycle
// table. Transitioning into the current state is a no-op, reported via
// changed=false with no error. On success the deal's status and UpdatedAt are
// mutated and the resulting StatusChange returned.
func (d *Deal) Transition(target Status, at time.Time) (change StatusChange, changed bool, err error) {
	if d.Status == target {
		return StatusChange{}, false, nil
	}
	if err := ValidateTransition(d.Status, target); err != nil {
		return StatusChange{}, false, err
	}
	change = StatusChange{DealID: d.ID, From: d.Status, To: target, At: at}
	d.Status = target
	d.UpdatedAt = at
	return change, true, nil
}

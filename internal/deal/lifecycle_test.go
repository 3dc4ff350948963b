package deal

import (
	"errors"
	"testing"
	"time"
)

func newTestDeal(status Status) *Deal {
	return &Deal{ID: "d-1", CustomerID: "c-1", VehicleID: "v-1", Status: status}
}

func TestValidateTransition_AllowedPath(t *testing.T) {
	path := []Status{StatusPending, StatusPendingManager, StatusApproved, StatusDelivered}
	for i := 0; i < len(path)-1; i++ {
		if err := ValidateTransition(path[i], path[i+1]); err != nil {
			t.Errorf("ValidateTransition(%s, %s) = %v, want nil", path[i], path[i+1], err)
		}
	}
}

func TestValidateTransition_CancelFromNonTerminal(t *testing.T) {
	for _, from := range []Status{StatusPending, StatusPendingManager, StatusApproved} {
		if err := ValidateTransition(from, StatusCancelled); err != nil {
			t.Errorf("cancel from %s: %v, want nil", from, err)
		}
	}
}

func TestValidateTransition_Rejected(t *testing.T) {
	cases := []struct{ from, to Status }{
		{StatusDelivered, StatusPendingManager},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusPending, StatusApproved},
		{StatusPending, StatusDelivered},
		{StatusApproved, StatusPendingManager}, // no walking backwards
	}
	for _, tc := range cases {
		err := ValidateTransition(tc.from, tc.to)
		var transErr *InvalidTransitionError
		if !errors.As(err, &transErr) {
			t.Errorf("ValidateTransition(%s, %s) = %v, want InvalidTransitionError", tc.from, tc.to, err)
			continue
		}
		if transErr.From != tc.from || transErr.To != tc.to {
			t.Errorf("error names %s→%s, want %s→%s", transErr.From, transErr.To, tc.from, tc.to)
		}
	}
}

func TestDeal_Transition(t *testing.T) {
	d := newTestDeal(StatusPending)
	at := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	change, changed, err := d.Transition(StatusPendingManager, at)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if !changed {
		t.Fatal("changed = false, want true")
	}
	if change.DealID != "d-1" || change.From != StatusPending || change.To != StatusPendingManager || !change.At.Equal(at) {
		t.Errorf("unexpected change payload: %+v", change)
	}
	if d.Status != StatusPendingManager {
		t.Errorf("status = %s, want %s", d.Status, StatusPendingManager)
	}
	if !d.UpdatedAt.Equal(at) {
		t.Errorf("UpdatedAt = %v, want %v", d.UpdatedAt, at)
	}
}

func TestDeal_Transition_SelfIsNoop(t *testing.T) {
	d := newTestDeal(StatusApproved)
	_, changed, err := d.Transition(StatusApproved, time.Now())
	if err != nil {
		t.Fatalf("self-transition must not error: %v", err)
	}
	if changed {
		t.Error("self-transition reported changed = true")
	}
	// even on terminal states
	d = newTestDeal(StatusDelivered)
	if _, changed, err := d.Transition(StatusDelivered, time.Now()); err != nil || changed {
		t.Errorf("terminal self-transition: changed=%v err=%v", changed, err)
	}
}

func TestDeal_Transition_InvalidLeavesDealUntouched(t *testing.T) {
	d := newTestDeal(StatusDelivered)
	_, changed, err := d.Transition(StatusPendingManager, time.Now())
	var transErr *InvalidTransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("err = %v, want InvalidTransitionError", err)
	}
	if changed {
		t.Error("changed = true on rejected transition")
	}
	if d.Status != StatusDelivered {
		t.Errorf("status mutated to %s on rejected transition", d.Status)
	}
}

func TestStatus_Terminal(t *testing.T) {
	for s, terminal := range map[Status]bool{
		StatusPending:        false,
		StatusPendingManager: false,
		StatusApproved:       false,
		StatusDelivered:      true,
		StatusCancelled:      true,
	} {
		if s.Terminal() != terminal {
			t.Errorf("%s.Terminal() = %v, want %v", s, s.Terminal(), terminal)
		}
	}
	if Status("bogus").Terminal() {
		t.Error("unknown status reported terminal")
	}
}

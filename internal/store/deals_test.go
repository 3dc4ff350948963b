package store

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/vinpro/dealdesk/internal/deal"
	"github.com/vinpro/dealdesk/internal/finance"
)

func TestDealCreateComputesStructure(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	customerID, vehicleID := seedCustomerAndVehicle(t, db)
	deals := NewDealStore(db)

	d, err := deals.Create(ctx, CreateDealInput{
		CustomerID: customerID,
		VehicleID:  vehicleID,
		Structure: finance.StructureInput{
			SalePrice: 25000, TermMonths: 60, APR: 6,
		},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if d.Status != deal.StatusPending {
		t.Errorf("status = %s, want pending", d.Status)
	}
	if d.Structure.Principal != 25000 {
		t.Errorf("principal = %v, want 25000", d.Structure.Principal)
	}
	if math.Abs(d.Structure.MonthlyPayment-483.32) > 0.005 {
		t.Errorf("payment = %v, want 483.32", d.Structure.MonthlyPayment)
	}

	// Round-trip through the JSON column.
	got, err := deals.Get(ctx, d.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Structure != d.Structure {
		t.Errorf("structure round-trip mismatch:\n got  %+v\n want %+v", got.Structure, d.Structure)
	}
}

func TestDealCreateValidation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	customerID, vehicleID := seedCustomerAndVehicle(t, db)
	deals := NewDealStore(db)

	_, err := deals.Create(ctx, CreateDealInput{
		VehicleID: vehicleID,
		Structure: finance.StructureInput{SalePrice: 25000},
	})
	var inputErr *finance.InvalidInputError
	if !errors.As(err, &inputErr) || inputErr.Field != "customerId" {
		t.Errorf("missing customer: got %v", err)
	}

	_, err = deals.Create(ctx, CreateDealInput{
		CustomerID: customerID,
		VehicleID:  vehicleID,
		Structure:  finance.StructureInput{SalePrice: -100},
	})
	if !errors.As(err, &inputErr) || inputErr.Field != "salePrice" {
		t.Errorf("bad sale price: got %v", err)
	}
}

func TestDealTransitionStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	customerID, vehicleID := seedCustomerAndVehicle(t, db)
	deals := NewDealStore(db)

	d, err := deals.Create(ctx, CreateDealInput{
		CustomerID: customerID,
		VehicleID:  vehicleID,
		Structure:  finance.StructureInput{SalePrice: 25000, APR: 6},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Skipping manager review is rejected and nothing is persisted.
	_, _, _, err = deals.TransitionStatus(ctx, d.ID, deal.StatusApproved)
	var transErr *deal.InvalidTransitionError
	if !errors.As(err, &transErr) {
		t.Fatalf("pending→approved: got %v, want InvalidTransitionError", err)
	}
	got, _ := deals.Get(ctx, d.ID)
	if got.Status != deal.StatusPending {
		t.Errorf("status after rejected transition = %s, want pending", got.Status)
	}

	// The sanctioned path persists each step.
	for _, target := range []deal.Status{deal.StatusPendingManager, deal.StatusApproved, deal.StatusDelivered} {
		updated, change, changed, err := deals.TransitionStatus(ctx, d.ID, target)
		if err != nil {
			t.Fatalf("transition to %s: %v", target, err)
		}
		if !changed || updated.Status != target || change.To != target {
			t.Errorf("transition to %s: changed=%v status=%s", target, changed, updated.Status)
		}
	}

	// Self-transition into the current (terminal) state is a quiet no-op.
	_, _, changed, err := deals.TransitionStatus(ctx, d.ID, deal.StatusDelivered)
	if err != nil || changed {
		t.Errorf("self-transition: changed=%v err=%v, want no-op", changed, err)
	}
}

func TestDealUpdateStructureRecomputes(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	customerID, vehicleID := seedCustomerAndVehicle(t, db)
	deals := NewDealStore(db)

	d, err := deals.Create(ctx, CreateDealInput{
		CustomerID: customerID,
		VehicleID:  vehicleID,
		Structure:  finance.StructureInput{SalePrice: 25000, APR: 6},
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	// Adding an appraisal overrides the manual trade-in value.
	updated, err := deals.UpdateStructure(ctx, d.ID, finance.StructureInput{
		SalePrice: 25000, APR: 6, TradeInValue: 5000,
		Appraisal: &finance.Appraisal{
			BaseValue:  5500,
			Deductions: []finance.Deduction{{Label: "Tires", Cost: 800}, {Label: "Windshield", Cost: 500}},
		},
	})
	if err != nil {
		t.Fatalf("UpdateStructure: %v", err)
	}
	if updated.Structure.TradeInValue != 4200 {
		t.Errorf("trade-in = %v, want appraisal ACV 4200", updated.Structure.TradeInValue)
	}
	if updated.Structure.Principal != 20800 {
		t.Errorf("principal = %v, want 20800", updated.Structure.Principal)
	}

	// Terminal deals are frozen.
	if _, _, _, err := deals.TransitionStatus(ctx, d.ID, deal.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}
	_, err = deals.UpdateStructure(ctx, d.ID, finance.StructureInput{SalePrice: 30000})
	var transErr *deal.InvalidTransitionError
	if !errors.As(err, &transErr) {
		t.Errorf("update on cancelled deal: got %v, want InvalidTransitionError", err)
	}
}

func TestDealListAndAggregates(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	customerID, vehicleID := seedCustomerAndVehicle(t, db)
	deals := NewDealStore(db)

	for _, in := range []CreateDealInput{
		{CustomerID: customerID, VehicleID: vehicleID, Salesperson: "alex", Structure: finance.StructureInput{SalePrice: 25000, APR: 6}},
		{CustomerID: customerID, VehicleID: vehicleID, Salesperson: "alex", Structure: finance.StructureInput{SalePrice: 18000, APR: 7}},
		{CustomerID: customerID, VehicleID: vehicleID, Salesperson: "sam", Structure: finance.StructureInput{SalePrice: 40000, APR: 5}},
	} {
		if _, err := deals.Create(ctx, in); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	byPerson, err := deals.List(ctx, ListFilter{Salesperson: "alex"})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(byPerson) != 2 {
		t.Errorf("alex deals = %d, want 2", len(byPerson))
	}

	// Cancel one deal; pipeline only counts open deals.
	all, _ := deals.List(ctx, ListFilter{})
	if _, _, _, err := deals.TransitionStatus(ctx, all[0].ID, deal.StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	counts, err := deals.CountByStatus(ctx)
	if err != nil {
		t.Fatalf("CountByStatus: %v", err)
	}
	if counts[deal.StatusPending] != 2 || counts[deal.StatusCancelled] != 1 {
		t.Errorf("counts = %v", counts)
	}

	pipeline, err := deals.PipelineValue(ctx)
	if err != nil {
		t.Fatalf("PipelineValue: %v", err)
	}
	want := 25000.0 + 18000 + 40000 - all[0].Structure.SalePrice
	if pipeline != want {
		t.Errorf("pipeline = %v, want %v", pipeline, want)
	}
}

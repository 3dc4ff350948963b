// Package seed provides demo data for a fresh database.
package seed

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/vinpro/dealdesk/internal/store"
)

// Demo seeds a small lot and lender directory so the dashboard has something
// to show on first boot. If inventory already exists it skips seeding.
func Demo(ctx context.Context, db *sql.DB) error {
	var count int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM inventory`).Scan(&count); err != nil {
		return fmt.Errorf("checking inventory: %w", err)
	}
	if count > 0 {
		log.Printf("seed: inventory already present (%d units), skipping", count)
		return nil
	}

	inventory := store.NewInventoryStore(db)
	units := []store.CreateVehicleInput{
		{VIN: "1HGCV1F34NA123456", Year: 2022, Make: "Honda", Model: "Accord", Trim: "Sport", Mileage: 24100, Price: 28500, Cost: 25200},
		{VIN: "4S4BTGND5P3178902", Year: 2023, Make: "Subaru", Model: "Outback", Trim: "Limited", Mileage: 9800, Price: 35900, Cost: 32400},
		{VIN: "3FMCR9B69NRE01775", Year: 2022, Make: "Ford", Model: "Bronco Sport", Mileage: 31500, Price: 27400, Cost: 24000},
		{VIN: "5YJ3E1EA8PF384211", Year: 2023, Make: "Tesla", Model: "Model 3", Mileage: 12050, Price: 38900, Cost: 35700},
	}
	for _, u := range units {
		if _, err := inventory.Create(ctx, u); err != nil {
			return fmt.Errorf("seeding unit %s: %w", u.VIN, err)
		}
	}

	banks := store.NewBankStore(db)
	lenders := []*store.Bank{
		{
			Name: "Pinnacle Auto Finance", Contact: "Dana Whitfield", Phone: "555-0142",
			Preferred: true,
			Programs: []store.BankProgram{
				{Name: "Prime Retail", MinCreditScore: 700, MaxLTV: 1.15, MaxTermMonths: 72, BaseRate: 5.9},
				{Name: "Near-Prime Retail", MinCreditScore: 620, MaxLTV: 1.10, MaxTermMonths: 66, BaseRate: 8.9},
			},
		},
		{
			Name: "Harbor Credit Union", Contact: "Miguel Santos", Phone: "555-0177",
			Programs: []store.BankProgram{
				{Name: "Member Advantage", MinCreditScore: 660, MaxLTV: 1.20, MaxTermMonths: 75, BaseRate: 6.4},
			},
		},
		{
			Name: "Crossroads Acceptance", Contact: "Priya Nair", Phone: "555-0163",
			Programs: []store.BankProgram{
				{Name: "Second Chance", MinCreditScore: 520, MaxLTV: 1.05, MaxTermMonths: 60, BaseRate: 14.5},
			},
		},
	}
	for _, b := range lenders {
		if _, err := banks.Create(ctx, b); err != nil {
			return fmt.Errorf("seeding lender %s: %w", b.Name, err)
		}
	}

	log.Printf("seed: created %d units and %d lenders", len(units), len(lenders))
	return nil
}

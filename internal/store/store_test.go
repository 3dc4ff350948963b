package store

import (
	"context"
	"database/sql"
	"testing"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enabling foreign keys: %v", err)
	}
	if err := CreateSchema(context.Background(), db); err != nil {
		t.Fatalf("CreateSchema: %v", err)
	}
	return db
}

// seedCustomerAndVehicle inserts the referenced records a deal needs.
func seedCustomerAndVehicle(t *testing.T, db *sql.DB) (customerID, vehicleID string) {
	t.Helper()
	ctx := context.Background()

	c, _, err := NewCustomerStore(db).CreateLead(ctx, CreateLeadInput{
		FirstName: "Maria", LastName: "Flores", Email: "maria@example.com",
	})
	if err != nil {
		t.Fatalf("seeding customer: %v", err)
	}
	v, err := NewInventoryStore(db).Create(ctx, CreateVehicleInput{
		VIN: "1HGCV1F34NA123456", Year: 2022, Make: "Honda", Model: "Accord", Price: 28500,
	})
	if err != nil {
		t.Fatalf("seeding vehicle: %v", err)
	}
	return c.ID, v.ID
}

// Package server assembles all HTTP handlers and starts the server.
package server

import (
	"context"
	"database/sql"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vinpro/dealdesk/internal/activity"
	"github.com/vinpro/dealdesk/internal/event"
	"github.com/vinpro/dealdesk/internal/handler"
	"github.com/vinpro/dealdesk/internal/marketdata"
	"github.com/vinpro/dealdesk/internal/pulse"
	"github.com/vinpro/dealdesk/internal/store"
)

// Config holds the assembled dependencies the server routes over.
type Config struct {
	Addr     string
	DB       *sql.DB
	Activity activity.Store
	Recorder event.Recorder
	Decoder  marketdata.Decoder
	Valuator marketdata.Valuator
	Pulse    *pulse.Hub
}

// Run starts the HTTP server with all routes registered and shuts it down
// when ctx is cancelled.
func Run(ctx context.Context, cfg Config) error {
	r := chi.NewRouter()
	r.Use(handler.Recovery, handler.Logging, handler.Metrics)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Method(http.MethodGet, "/v1/pulse", cfg.Pulse)

	customers := handler.NewCustomerHandler(store.NewCustomerStore(cfg.DB), cfg.Recorder)
	r.Post("/v1/leads/scan", customers.ScanLead)
	r.Get("/v1/customers", customers.List)
	r.Get("/v1/customers/{id}", customers.Get)
	r.Post("/v1/customers/{id}/softpull", customers.SoftPull)
	r.Post("/v1/customers/{id}/status", customers.UpdateStatus)
	r.Patch("/v1/customers/{id}/notes", customers.SetNotes)

	inventory := handler.NewInventoryHandler(store.NewInventoryStore(cfg.DB), cfg.Valuator, cfg.Recorder)
	r.Post("/v1/inventory", inventory.Create)
	r.Get("/v1/inventory", inventory.List)
	r.Get("/v1/inventory/{id}", inventory.Get)
	r.Post("/v1/inventory/{id}/price", inventory.SetPrice)
	r.Post("/v1/inventory/{id}/status", inventory.SetStatus)
	r.Get("/v1/inventory/{id}/market", inventory.Market)

	vin := handler.NewVINHandler(cfg.Decoder)
	r.Get("/v1/vin/{vin}", vin.Decode)

	deals := handler.NewDealHandler(store.NewDealStore(cfg.DB), cfg.Recorder)
	r.Post("/v1/deals", deals.Create)
	r.Get("/v1/deals", deals.List)
	r.Get("/v1/deals/{id}", deals.Get)
	r.Patch("/v1/deals/{id}/structure", deals.UpdateStructure)
	r.Patch("/v1/deals/{id}/stipulations", deals.SetStipulations)
	r.Post("/v1/deals/{id}/commit", deals.Commit)
	r.Post("/v1/deals/{id}/status", deals.Transition)

	lease := handler.NewLeaseHandler()
	r.Post("/v1/lease/calculate", lease.Calculate)
	r.Post("/v1/lease/compare", lease.Compare)

	quotes := handler.NewQuoteHandler(store.NewQuoteStore(cfg.DB), cfg.Recorder)
	r.Post("/v1/quotes", quotes.Create)
	r.Get("/v1/quotes", quotes.List)
	r.Get("/v1/quotes/{id}", quotes.Get)
	r.Post("/v1/quotes/{id}/status", quotes.SetStatus)

	banks := handler.NewBankHandler(store.NewBankStore(cfg.DB))
	r.Post("/v1/banks", banks.Create)
	r.Get("/v1/banks", banks.List)
	r.Get("/v1/banks/{id}", banks.Get)
	r.Put("/v1/banks/{id}", banks.Update)
	r.Delete("/v1/banks/{id}", banks.Delete)

	tasks := handler.NewTaskHandler(store.NewTaskStore(cfg.DB))
	r.Post("/v1/tasks", tasks.Create)
	r.Get("/v1/tasks", tasks.List)
	r.Get("/v1/tasks/{id}", tasks.Get)
	r.Put("/v1/tasks/{id}", tasks.Update)
	r.Delete("/v1/tasks/{id}", tasks.Delete)

	acts := handler.NewActivityHandler(cfg.Activity)
	r.Get("/v1/activity", acts.Feed)
	r.Get("/v1/activity/entity/{entity_type}/{entity_id}", acts.EntityActivity)
	r.Post("/v1/activity/search", acts.Search)

	dashboard := handler.NewDashboardHandler(
		store.NewDealStore(cfg.DB), store.NewInventoryStore(cfg.DB), cfg.Activity)
	r.Get("/v1/dashboard", dashboard.Get)

	log.Printf("starting server on %s", cfg.Addr)
	srv := &http.Server{Addr: cfg.Addr, Handler: r}

	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

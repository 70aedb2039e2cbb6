package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/ghuser/larder/services/inventory/application/handlers"
	appsvcs "github.com/ghuser/larder/services/inventory/application/services"
)

// InventoryRoutes registers catalog, ledger and audit endpoints on the
// provided chi router. imports may be nil; bulk imports then run inside the
// request.
func InventoryRoutes(r chi.Router, svcs *appsvcs.Services, imports handlers.ImportStarter) {
	catalog := handlers.NewCatalogHandler(svcs)
	ledger := handlers.NewLedgerHandler(svcs, imports)

	r.Route("/items", func(r chi.Router) {
		r.Post("/", catalog.CreateItem)
		r.Get("/", catalog.ListItems)
		r.Get("/{id}", catalog.GetItem)
		r.Patch("/{id}", catalog.UpdateItem)
		r.Delete("/{id}", catalog.DeleteItem)
	})
	r.Route("/vendors", func(r chi.Router) {
		r.Post("/", catalog.CreateVendor)
		r.Get("/", catalog.ListVendors)
		r.Patch("/{id}", catalog.UpdateVendor)
		r.Delete("/{id}", catalog.DeleteVendor)
	})
	r.Route("/chefs", func(r chi.Router) {
		r.Post("/", catalog.CreateChef)
		r.Get("/", catalog.ListChefs)
		r.Patch("/{id}", catalog.UpdateChef)
		r.Delete("/{id}", catalog.DeleteChef)
	})

	r.Route("/movements", func(r chi.Router) {
		r.Post("/", ledger.RecordMovement)
		r.Get("/", ledger.ListMovements)
		r.Get("/overview", ledger.Overview)
		r.Post("/import", ledger.ImportMovements)
		r.Post("/{id}/reverse", ledger.ReverseMovement)
	})
	r.Route("/stock", func(r chi.Router) {
		r.Get("/on-hand", ledger.OnHand)
		r.Get("/low", ledger.LowStock)
		r.Post("/count", ledger.CountStock)
	})
	r.Get("/audit", ledger.ListAudit)
}

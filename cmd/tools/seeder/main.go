// Seeds a local document with demo data so the frontend has something
// to show on a fresh install.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/docelucro/backend-doce/internal/cashbook"
	"github.com/docelucro/backend-doce/internal/catalog"
	"github.com/docelucro/backend-doce/internal/obs"
	"github.com/docelucro/backend-doce/internal/orders"
	"github.com/docelucro/backend-doce/internal/pricing"
	"github.com/docelucro/backend-doce/internal/sales"
	"github.com/docelucro/backend-doce/internal/state"
	"github.com/docelucro/backend-doce/internal/store"

	validator "github.com/go-playground/validator/v10"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	docPath := os.Getenv("DOC_PATH")
	if docPath == "" {
		docPath = "data/doce.json"
	}

	ctx := context.Background()
	st, err := store.Open(ctx, store.Config{
		Local:  &store.FileStore{Path: docPath},
		UserID: "owner",
		Logger: obs.NewLogger("console", "info"),
	})
	if err != nil {
		log.Fatalf("Failed to open document at %s: %v", docPath, err)
	}

	doc, err := st.Snapshot()
	if err != nil {
		log.Fatalf("Failed to read document: %v", err)
	}
	if len(doc.Products) > 0 {
		log.Println("Document already has products, nothing to do")
		return
	}

	validate := validator.New()
	catalogSvc := &catalog.Service{Store: st, Validate: validate}
	salesSvc := &sales.Service{Store: st, FeeBps: 299}
	ordersSvc := &orders.Service{Store: st, Validate: validate}
	cashSvc := &cashbook.Service{Store: st}

	log.Println("Seeding products...")
	products := []catalog.Input{
		{Name: "Brigadeiro gourmet", Price: 4.50, Cost: 1.20},
		{Name: "Bolo de pote ninho", Price: 12.00, Cost: 4.50},
		{Name: "Torta de limão (fatia)", Price: 9.00, Cost: 3.00},
	}
	created := make([]state.Product, 0, len(products))
	for _, in := range products {
		p, err := catalogSvc.Create(ctx, in)
		if err != nil {
			log.Fatalf("Failed to seed product %q: %v", in.Name, err)
		}
		created = append(created, p)
	}

	log.Println("Seeding a cash sale...")
	if _, err := salesSvc.SetQty(ctx, created[0].ID, 4); err != nil {
		log.Fatalf("Failed to build draft: %v", err)
	}
	received := 20.0
	method := pricing.MethodDinheiro
	if _, err := salesSvc.Patch(ctx, sales.DraftPatch{Method: &method, Received: &received}); err != nil {
		log.Fatalf("Failed to patch draft: %v", err)
	}
	if _, err := salesSvc.Finalize(ctx); err != nil {
		log.Fatalf("Failed to finalize sale: %v", err)
	}

	log.Println("Seeding an open order...")
	pickup := time.Now().AddDate(0, 0, 3).Format("2006-01-02")
	_, err = ordersSvc.Create(ctx, orders.Input{
		Customer:    "Dona Maria",
		Whats:       "+55 11 98888-0000",
		PickupDate:  pickup,
		DeliveryFee: 5.00,
		Deposit:     10.00,
		Entries: []pricing.Entry{
			{ProductID: created[1].ID, Qty: 2},
		},
		DepositMethod: pricing.MethodPix,
	})
	if err != nil {
		log.Fatalf("Failed to seed order: %v", err)
	}

	log.Println("Seeding an expense...")
	if _, err := cashSvc.Append(ctx, cashbook.Input{
		Type:  state.MoveSaida,
		Value: 15.00,
		Note:  "leite condensado e embalagens",
	}); err != nil {
		log.Fatalf("Failed to seed expense: %v", err)
	}

	if err := st.Close(ctx); err != nil {
		log.Fatalf("Failed to flush document: %v", err)
	}
	log.Println("Seeding completed successfully!")
}

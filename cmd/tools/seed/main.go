package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/st3v3nn/KLADISHOP/internal/backend"
	"github.com/st3v3nn/KLADISHOP/internal/modules/orders"
	"github.com/st3v3nn/KLADISHOP/internal/modules/products"
)

func intPtr(v int) *int { return &v }

var seedProducts = []products.Product{
	{
		ID: "1", Name: "Vintage Oversized Blazer", Price: 2500,
		Gallery: []string{}, Category: "Outerwear",
		Description: "A structured vintage piece that screams 90s corporate chic. Perfect for power moves in the city. Heavy wool blend, slightly padded shoulders.",
		Tag:         "RARE", Stock: intPtr(1),
	},
	{
		ID: "2", Name: "90s Graphic Band Tee", Price: 1200,
		Gallery: []string{}, Category: "Tops",
		Description: "Authentic tour merch from a legendary era. Distressed collar and fade for that perfect lived-in look. 100% heavy cotton.",
		Tag:         "NEW", Stock: intPtr(5),
	},
	{
		ID: "3", Name: "Baggy Carpenter Jeans", Price: 1800,
		Gallery: []string{}, Category: "Bottoms",
		Description: "Wide-leg silhouette with utility loops. Perfect for skating or just vibing. Deep indigo wash with contrast stitching.",
		Tag:         "BESTSELLER", Stock: intPtr(2),
	},
	{
		ID: "4", Name: "Retro Colorblock Windbreaker", Price: 3200,
		Gallery: []string{}, Category: "Outerwear",
		Description: "Neon accents and lightweight nylon. Water-resistant and 100% loud. Folds into its own pocket for travel.",
		Stock:       intPtr(1),
	},
	{
		ID: "5", Name: "Y2K Pleated Mini Skirt", Price: 1500,
		Gallery: []string{}, Category: "Bottoms",
		Description: "Classic schoolcore aesthetic with a streetwear twist. Hidden shorts underneath for comfort. Tartan pattern.",
		Tag:         "HOT", Stock: intPtr(3),
	},
}

var seedOrders = []orders.Order{
	{
		ID:           "9c1f0f44-0e6a-4b44-8f2a-6e1d1c2a9b01",
		Code:         "ORD-001",
		CustomerName: "Kiprop Maina",
		Phone:        "0712345678",
		Items: []orders.Item{
			{ProductID: "1", Name: "Vintage Oversized Blazer", Price: 2500},
		},
		Amount: 2500,
		Status: orders.StatusDelivered,
		Date:   "2024-03-20",
	},
}

func main() {
	_ = godotenv.Load()

	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		log.Fatal("DB_DSN environment variable is required")
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	store := backend.NewGormStore(db, nil)
	ctx := context.Background()

	for _, p := range seedProducts {
		data, err := json.Marshal(p)
		if err != nil {
			log.Fatalf("marshal product %s: %v", p.ID, err)
		}
		if err := store.Upsert(ctx, products.Collection, p.ID, data); err != nil {
			log.Fatalf("seed product %s: %v", p.ID, err)
		}
	}
	log.Printf("seeded %d products", len(seedProducts))

	for _, o := range seedOrders {
		data, err := json.Marshal(o)
		if err != nil {
			log.Fatalf("marshal order %s: %v", o.Code, err)
		}
		if err := store.Upsert(ctx, orders.Collection, o.ID, data); err != nil {
			log.Fatalf("seed order %s: %v", o.Code, err)
		}
	}
	log.Printf("seeded %d orders", len(seedOrders))
}

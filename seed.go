package main

import (
	"context"
	"fmt"
	"time"

	model "auction-market/internal/models"
	"auction-market/internal/repository"

	"github.com/shopspring/decimal"
)

// seedDemoData adds a few users and auctions so the API can be explored locally
func seedDemoData(ctx context.Context, repo repository.AuctionDB, now time.Time) error {
	users := []model.User{
		{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com"},
		{FirstName: "Alan", LastName: "Turing", Email: "alan@example.com"},
		{FirstName: "Grace", LastName: "Hopper", Email: "grace@example.com"},
	}
	for i := range users {
		if err := repo.CreateUser(ctx, &users[i]); err != nil {
			return fmt.Errorf("seed user %s: %w", users[i].Email, err)
		}
	}

	auctions := []model.Auction{
		{Name: "Vintage Camera", Description: "Rangefinder, fully working", Type: model.ProductTypeAuction, StartingPrice: decimal.NewFromInt(100), AuctionEndTime: now.Add(30 * time.Minute), IsActive: true},
		{Name: "Mechanical Keyboard", Description: "Brown switches", Type: model.ProductTypeAuction, StartingPrice: decimal.NewFromInt(60), AuctionEndTime: now.Add(2 * time.Hour), IsActive: true},
		{Name: "Desk Lamp", Description: "Fixed price listing", Type: model.ProductTypeFixedPrice, StartingPrice: decimal.NewFromInt(25), IsActive: true},
	}
	for i := range auctions {
		if err := repo.CreateAuction(ctx, &auctions[i]); err != nil {
			return fmt.Errorf("seed product %s: %w", auctions[i].Name, err)
		}
	}
	return nil
}

package server

import (
	processor "auction-market/internal/auctionProcessor"
	bidding "auction-market/internal/biddingService"
	"auction-market/internal/scheduler"
	auctionhandler "auction-market/services/auction/handler"
	handler "auction-market/services/bidding/handler"

	"github.com/gin-gonic/gin"
)

// SetupRouter configures all Gin routes for the application
func SetupRouter(biddingService *bidding.BiddingService, auctionProcessor *processor.AuctionProcessor, sched *scheduler.Scheduler, operatorToken string) *gin.Engine {
	router := gin.New() // New router without default middleware for full control over middleware and logging

	router.Use(gin.Recovery())          // recover from panics
	router.Use(RequestIDMiddleware)
	router.Use(RequestLoggerMiddleware) // custom request logging

	biddingHandler := handler.NewBiddingHandler(biddingService)
	auctionHandler := auctionhandler.NewAuctionHandler(auctionProcessor, sched)

	bids := router.Group("/bids")
	{
		bids.POST("", biddingHandler.RecordBidHandler)
		bids.DELETE("/:bid_id", biddingHandler.CancelBidHandler)
	}

	products := router.Group("/products")
	{
		products.GET("/:product_id/bids", biddingHandler.GetBidsByProductHandler)
		products.GET("/:product_id/winning", biddingHandler.GetWinningBidHandler)
		products.GET("/:product_id/stats", biddingHandler.GetStatsHandler)
	}

	users := router.Group("/users")
	{
		users.GET("/me/bids", biddingHandler.GetMyBidsHandler)
	}

	auctions := router.Group("/auctions")
	{
		auctions.POST("/process", OperatorTokenMiddleware(operatorToken), auctionHandler.ProcessAuctionsHandler)
		auctions.GET("/processor", auctionHandler.ProcessorStatusHandler)
		auctions.GET("/:auction_id/status", auctionHandler.AuctionStatusHandler)
		auctions.GET("/:auction_id/orders", auctionHandler.AuctionOrdersHandler)
	}

	return router
}

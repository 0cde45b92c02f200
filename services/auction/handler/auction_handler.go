package handler

import (
	"context"
	"net/http"

	processor "auction-market/internal/auctionProcessor"
	model "auction-market/internal/models"
	"auction-market/internal/scheduler"
	"auction-market/services/bidding/helpers"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

//go:generate mockgen -source=auction_handler.go -destination=mock_auction_service.go -package=handler

type AuctionProcessorInterface interface {
	GetAuctionStatus(ctx context.Context, auctionID int64) (processor.AuctionStatus, error)
	GetAuctionOrders(ctx context.Context, auctionID int64) ([]model.Order, error)
}

type SchedulerInterface interface {
	Trigger(ctx context.Context) (processor.Summary, error)
	Status() scheduler.Status
}

type AuctionHandler struct {
	processor AuctionProcessorInterface
	scheduler SchedulerInterface
}

func NewAuctionHandler(p AuctionProcessorInterface, s SchedulerInterface) *AuctionHandler {
	return &AuctionHandler{processor: p, scheduler: s}
}

// ProcessAuctionsHandler handles POST /auctions/process.
// The sweep is detached from the request and keeps running if the client disconnects.
func (h *AuctionHandler) ProcessAuctionsHandler(c *gin.Context) {
	summary, err := h.scheduler.Trigger(context.WithoutCancel(c.Request.Context()))
	if err != nil {
		helpers.RespondError(c, "ProcessAuctionsHandler", err, nil)
		return
	}

	utils.JSONResponse(c, http.StatusOK, summary, "auction processing completed")
	helpers.LogSuccess("ProcessAuctionsHandler", "auction processing completed", map[string]any{
		"processed": summary.Processed,
		"orders":    len(summary.Results),
		"errors":    len(summary.Errors),
	})
}

// ProcessorStatusHandler handles GET /auctions/processor
func (h *AuctionHandler) ProcessorStatusHandler(c *gin.Context) {
	utils.JSONResponse(c, http.StatusOK, h.scheduler.Status(), "processor status retrieved successfully")
}

// AuctionStatusHandler handles GET /auctions/:auction_id/status
func (h *AuctionHandler) AuctionStatusHandler(c *gin.Context) {
	auctionID, ok := helpers.PathID(c, "AuctionStatusHandler", "auction_id")
	if !ok {
		return
	}

	status, err := h.processor.GetAuctionStatus(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "AuctionStatusHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	utils.JSONResponse(c, http.StatusOK, status, "auction status retrieved successfully")
}

// AuctionOrdersHandler handles GET /auctions/:auction_id/orders
func (h *AuctionHandler) AuctionOrdersHandler(c *gin.Context) {
	auctionID, ok := helpers.PathID(c, "AuctionOrdersHandler", "auction_id")
	if !ok {
		return
	}

	orders, err := h.processor.GetAuctionOrders(c.Request.Context(), auctionID)
	if err != nil {
		helpers.RespondError(c, "AuctionOrdersHandler", err, map[string]any{"auction_id": auctionID})
		return
	}
	if orders == nil {
		orders = []model.Order{}
	}

	utils.JSONResponse(c, http.StatusOK, orders, "auction orders retrieved successfully")
	helpers.LogSuccess("AuctionOrdersHandler", "auction orders retrieved successfully", map[string]any{
		"auction_id": auctionID,
		"count":      len(orders),
	})
}

package helpers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"auction-market/internal/biddingerrors"
	"auction-market/utils"

	"github.com/gin-gonic/gin"
)

// UserIDHeader carries the authenticated caller, set by the gateway in front of this service
const UserIDHeader = "X-User-ID"

var (
	ErrMissingCaller = errors.New("missing or invalid " + UserIDHeader + " header")
	ErrInvalidID     = errors.New("invalid identifier")
)

// HandleBindError sends a standardized JSON error for binding failures
func HandleBindError(c *gin.Context, handlerName string, err error) {
	wrappedErr := fmt.Errorf("invalid request payload: %w", err)
	utils.JSONError(c, http.StatusBadRequest, wrappedErr, "invalid request payload")
	utils.Warn(handlerName+": binding error", map[string]any{"error": err.Error()})
}

// CallerID returns the caller's user id, or writes a 401 and returns false
func CallerID(c *gin.Context, handlerName string) (int64, bool) {
	id, err := strconv.ParseInt(c.GetHeader(UserIDHeader), 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusUnauthorized, ErrMissingCaller, "unauthenticated")
		utils.Warn(handlerName+": missing caller", map[string]any{"path": c.Request.URL.Path})
		return 0, false
	}
	return id, true
}

// PathID parses a positive numeric path parameter, or writes a 400 and returns false
func PathID(c *gin.Context, handlerName, param string) (int64, bool) {
	raw := c.Param(param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		utils.JSONError(c, http.StatusBadRequest, fmt.Errorf("%w: %s=%q", ErrInvalidID, param, raw), "invalid "+param)
		utils.Warn(handlerName+": invalid path parameter", map[string]any{"param": param, "value": raw})
		return 0, false
	}
	return id, true
}

// MapErrorToHTTP maps domain/service errors to HTTP status code and message
func MapErrorToHTTP(err error) (int, string) {
	switch {
	case errors.Is(err, biddingerrors.ErrAuctionNotFound):
		return http.StatusNotFound, "auction not found"
	case errors.Is(err, biddingerrors.ErrBidNotFound):
		return http.StatusNotFound, "bid not found"
	case errors.Is(err, biddingerrors.ErrUserNotFound):
		return http.StatusNotFound, "user not found"
	case errors.Is(err, biddingerrors.ErrNoBids):
		return http.StatusNotFound, "no winning bid found"
	case errors.Is(err, biddingerrors.ErrOrderNotFound):
		return http.StatusNotFound, "order not found"
	case errors.Is(err, biddingerrors.ErrNotAuction):
		return http.StatusBadRequest, "product is not an auction"
	case errors.Is(err, biddingerrors.ErrAuctionEnded):
		return http.StatusBadRequest, "auction has ended"
	case errors.Is(err, biddingerrors.ErrInvalidBid):
		return http.StatusBadRequest, "invalid bid details"
	case errors.Is(err, biddingerrors.ErrBidTooLow):
		return http.StatusBadRequest, "bid amount too low"
	case errors.Is(err, biddingerrors.ErrNotWinningBid):
		return http.StatusBadRequest, "not winning bid"
	case errors.Is(err, biddingerrors.ErrSweepInProgress):
		return http.StatusConflict, "auction processing already in progress"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// RespondError writes the mapped error and logs it at a level matching its class
func RespondError(c *gin.Context, handlerName string, err error, fields map[string]any) {
	status, message := MapErrorToHTTP(err)
	utils.JSONError(c, status, fmt.Errorf("%s: %w", message, err), message)

	if fields == nil {
		fields = map[string]any{}
	}
	fields["handler"] = handlerName
	fields["error"] = err.Error()
	if status >= http.StatusInternalServerError {
		utils.Error(handlerName+": request failed", fields)
		return
	}
	utils.Warn(handlerName+": request rejected", fields)
}

// LogSuccess is a small helper to standardize logging of successful operations
func LogSuccess(handlerName, message string, ctx map[string]any) {
	utils.Info(handlerName+": "+message, ctx)
}

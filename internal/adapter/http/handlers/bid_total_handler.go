package handlers

import (
	"context"
	"log"
	"net/http"

	response "bid_pricing/internal/adapter/http/dto/response"
	"bid_pricing/internal/usecase"

	"github.com/gin-gonic/gin"
)

// BidTotalHandler exposes the locally tracked total of a bid.
type BidTotalHandler struct {
	usecase usecase.IAggregateSyncUseCase
}

func NewBidTotalHandler(uc usecase.IAggregateSyncUseCase) *BidTotalHandler {
	return &BidTotalHandler{usecase: uc}
}

// GetTotal godoc
// @Summary      Current bid total
// @Tags         total
// @Produce      json
// @Param        bid_id  path  string  true  "Bid ID"
// @Success      200  {object}  response.AggregateResponse
// @Failure      400  {object}  pkg.HTTPError
// @Router       /bids/{bid_id}/total [get]
func (h *BidTotalHandler) GetTotal(c *gin.Context) {
	h.respond(c, "get", h.usecase.State)
}

// RefreshTotal godoc
// @Summary      Reconcile the bid total with the store
// @Tags         total
// @Produce      json
// @Param        bid_id  path  string  true  "Bid ID"
// @Success      200  {object}  response.AggregateResponse
// @Failure      400  {object}  pkg.HTTPError
// @Router       /bids/{bid_id}/total/refresh [post]
func (h *BidTotalHandler) RefreshTotal(c *gin.Context) {
	h.respond(c, "refresh", h.usecase.Refresh)
}

// ClearTotal godoc
// @Summary      Remove the stored bid total
// @Tags         total
// @Param        bid_id  path  string  true  "Bid ID"
// @Success      204
// @Failure      502  {object}  pkg.HTTPError
// @Router       /bids/{bid_id}/total [delete]
func (h *BidTotalHandler) ClearTotal(c *gin.Context) {
	bidID := c.Param("bid_id")
	if err := h.usecase.Clear(c.Request.Context(), bidID); err != nil {
		log.Printf("[aggregate][handler] clear failed bid_id=%s err=%v", bidID, err)
		writeError(c, mapSyncError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *BidTotalHandler) respond(c *gin.Context, op string, read func(ctx context.Context, bidID string) (usecase.AggregateState, error)) {
	bidID := c.Param("bid_id")
	state, err := read(c.Request.Context(), bidID)
	if err != nil {
		log.Printf("[aggregate][handler] %s failed bid_id=%s err=%v", op, bidID, err)
		writeError(c, mapSyncError(err))
		return
	}
	c.JSON(http.StatusOK, response.FromAggregateState(state))
}

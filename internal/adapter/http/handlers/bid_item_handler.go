package handlers

import (
	"log"
	"net/http"

	request "bid_pricing/internal/adapter/http/dto/request"
	response "bid_pricing/internal/adapter/http/dto/response"
	"bid_pricing/internal/usecase"

	"github.com/gin-gonic/gin"
)

// BidItemHandler serves the line items of a bid. Store failures that did not
// block a local edit come back as warnings with a 2xx status.
type BidItemHandler struct {
	usecase usecase.IItemSyncUseCase
}

func NewBidItemHandler(uc usecase.IItemSyncUseCase) *BidItemHandler {
	return &BidItemHandler{usecase: uc}
}

// ListItems godoc
// @Summary      List bid line items
// @Description  Fetches the items from the store and merges local-only rows. Pass refresh=false to read the session without a fetch.
// @Tags         items
// @Produce      json
// @Param        bid_id   path   string  true   "Bid ID"
// @Param        refresh  query  bool    false  "Re-fetch from the store (default true)"
// @Success      200  {object}  response.ItemsResponse
// @Failure      400  {object}  pkg.HTTPError
// @Router       /bids/{bid_id}/items [get]
func (h *BidItemHandler) ListItems(c *gin.Context) {
	bidID := c.Param("bid_id")

	var (
		res usecase.ItemsResult
		err error
	)
	if c.DefaultQuery("refresh", "true") == "false" {
		res, err = h.usecase.Items(c.Request.Context(), bidID)
	} else {
		res, err = h.usecase.Load(c.Request.Context(), bidID)
	}
	if err != nil {
		log.Printf("[items][handler] list failed bid_id=%s err=%v", bidID, err)
		writeError(c, mapSyncError(err))
		return
	}

	c.JSON(http.StatusOK, response.FromItemsResult(res))
}

// CreateItem godoc
// @Summary      Add a line item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        bid_id  path  string                   true  "Bid ID"
// @Param        item    body  request.LineItemRequest  true  "Item"
// @Success      201  {object}  response.ItemResponse
// @Failure      400  {object}  pkg.HTTPError
// @Router       /bids/{bid_id}/items [post]
func (h *BidItemHandler) CreateItem(c *gin.Context) {
	bidID := c.Param("bid_id")

	var payload request.LineItemRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidItemPayload)
		return
	}
	item, err := payload.ToLineItem()
	if err != nil {
		writeError(c, mapSyncError(err))
		return
	}

	res, err := h.usecase.Create(c.Request.Context(), bidID, item)
	if err != nil {
		log.Printf("[items][handler] create failed bid_id=%s err=%v", bidID, err)
		writeError(c, mapSyncError(err))
		return
	}

	c.JSON(http.StatusCreated, response.FromItemResult(res))
}

// UpdateItem godoc
// @Summary      Edit a line item
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        bid_id   path  string                        true  "Bid ID"
// @Param        item_id  path  string                        true  "Item ID"
// @Param        patch    body  request.LineItemPatchRequest  true  "Changed fields"
// @Success      200  {object}  response.ItemResponse
// @Failure      400  {object}  pkg.HTTPError
// @Failure      404  {object}  pkg.HTTPError
// @Router       /bids/{bid_id}/items/{item_id} [patch]
func (h *BidItemHandler) UpdateItem(c *gin.Context) {
	bidID, itemID := c.Param("bid_id"), c.Param("item_id")

	var payload request.LineItemPatchRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidItemPayload)
		return
	}
	patch, err := payload.ToPatch()
	if err != nil {
		writeError(c, mapSyncError(err))
		return
	}

	res, err := h.usecase.Update(c.Request.Context(), bidID, itemID, patch)
	if err != nil {
		log.Printf("[items][handler] update failed bid_id=%s item_id=%s err=%v", bidID, itemID, err)
		writeError(c, mapSyncError(err))
		return
	}

	c.JSON(http.StatusOK, response.FromItemResult(res))
}

// DeleteItem godoc
// @Summary      Remove a line item
// @Tags         items
// @Produce      json
// @Param        bid_id   path  string  true  "Bid ID"
// @Param        item_id  path  string  true  "Item ID"
// @Success      200  {object}  response.ItemResponse
// @Failure      404  {object}  pkg.HTTPError
// @Router       /bids/{bid_id}/items/{item_id} [delete]
func (h *BidItemHandler) DeleteItem(c *gin.Context) {
	bidID, itemID := c.Param("bid_id"), c.Param("item_id")

	res, err := h.usecase.Delete(c.Request.Context(), bidID, itemID)
	if err != nil {
		log.Printf("[items][handler] delete failed bid_id=%s item_id=%s err=%v", bidID, itemID, err)
		writeError(c, mapSyncError(err))
		return
	}

	c.JSON(http.StatusOK, response.FromItemResult(res))
}

// ReplaceItems godoc
// @Summary      Replace every line item of a bid
// @Tags         items
// @Accept       json
// @Produce      json
// @Param        bid_id  path  string                       true  "Bid ID"
// @Param        items   body  request.ReplaceItemsRequest  true  "Full item set"
// @Success      200  {object}  response.ItemsResponse
// @Failure      400  {object}  pkg.HTTPError
// @Router       /bids/{bid_id}/items [put]
func (h *BidItemHandler) ReplaceItems(c *gin.Context) {
	bidID := c.Param("bid_id")

	var payload request.ReplaceItemsRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		writeError(c, errInvalidItemPayload)
		return
	}
	items, err := payload.ToLineItems()
	if err != nil {
		writeError(c, mapSyncError(err))
		return
	}

	res, err := h.usecase.ReplaceAll(c.Request.Context(), bidID, items)
	if err != nil {
		log.Printf("[items][handler] replace failed bid_id=%s err=%v", bidID, err)
		writeError(c, mapSyncError(err))
		return
	}

	c.JSON(http.StatusOK, response.FromItemsResult(res))
}

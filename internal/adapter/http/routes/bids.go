package routes

import (
	"bid_pricing/internal/adapter/http/handlers"

	"github.com/gin-gonic/gin"
)

const (
	PathBids = "/bids"
)

func addBidRoutes(rg *gin.RouterGroup, itemHandler *handlers.BidItemHandler, totalHandler *handlers.BidTotalHandler) {
	bids := rg.Group(PathBids + "/:bid_id")
	{
		bids.GET("/items", itemHandler.ListItems)
		bids.POST("/items", itemHandler.CreateItem)
		bids.PUT("/items", itemHandler.ReplaceItems)
		bids.PATCH("/items/:item_id", itemHandler.UpdateItem)
		bids.DELETE("/items/:item_id", itemHandler.DeleteItem)

		bids.GET("/total", totalHandler.GetTotal)
		bids.POST("/total/refresh", totalHandler.RefreshTotal)
		bids.DELETE("/total", totalHandler.ClearTotal)
	}
}

package admin

import (
	"net/http"

	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

const lowStockThreshold = 10

type dashboardStats struct {
	TotalOrders   int                        `json:"total_orders"`
	Revenue       float64                    `json:"revenue"`
	ByStatus      map[models.OrderStatus]int `json:"orders_by_status"`
	TotalProducts int                        `json:"total_products"`
	LowStock      int                        `json:"low_stock_products"`
	OutOfStock    int                        `json:"out_of_stock_products"`
	TotalUsers    int                        `json:"total_users"`
}

// Dashboard agrège commandes, stock et comptes. Les commandes annulées ou
// impayées ne comptent pas dans le chiffre d'affaires.
func (h *Handler) Dashboard(c *gin.Context) {
	ctx := c.Request.Context()
	list, err := h.Orders.List(ctx, "")
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	products, err := h.Catalog.ListProducts(ctx, nil)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	users, err := h.Auth.ListUsers(ctx)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	stats := dashboardStats{
		TotalOrders:   len(list),
		ByStatus:      map[models.OrderStatus]int{},
		TotalProducts: len(products),
		TotalUsers:    len(users),
	}
	revenue := decimal.Zero
	for _, o := range list {
		stats.ByStatus[o.OrderStatus]++
		if o.OrderStatus != models.OrderCancelled && o.PaymentStatus.Paid() {
			revenue = revenue.Add(decimal.NewFromFloat(o.TotalAmount))
		}
	}
	stats.Revenue = revenue.Round(2).InexactFloat64()
	for _, p := range products {
		switch {
		case p.InventoryCount == 0:
			stats.OutOfStock++
		case p.InventoryCount < lowStockThreshold:
			stats.LowStock++
		}
	}
	c.JSON(http.StatusOK, stats)
}

package admin

import (
	"net/http"

	"wearxture_back_end/internal/handlers"
	"wearxture_back_end/internal/models"
	"wearxture_back_end/internal/support"

	"github.com/gin-gonic/gin"
)

// ListSupportQueries accepte ?status= ou ?email=.
func (h *Handler) ListSupportQueries(c *gin.Context) {
	list, err := h.Support.List(c.Request.Context(), support.Filter{
		Status: c.Query("status"),
		Email:  c.Query("email"),
	})
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queries": list, "count": len(list)})
}

func (h *Handler) GetSupportQuery(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	q, err := h.Support.Get(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

func (h *Handler) UpdateSupportQuery(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	var in models.SupportUpdate
	if !handlers.BindJSON(c, &in) {
		return
	}
	q, err := h.Support.Update(c.Request.Context(), id, in)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, q)
}

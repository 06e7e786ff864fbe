package product

import (
	"net/http"
	"strconv"

	"wearxture_back_end/internal/catalog"
	"wearxture_back_end/internal/handlers"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// Handler expose le catalogue public.
type Handler struct {
	catalog *catalog.Service
}

func NewHandler(svc *catalog.Service) *Handler {
	return &Handler{catalog: svc}
}

func (h *Handler) Register(api *gin.RouterGroup) {
	api.GET("/products", h.ListProducts)
	api.GET("/products/search", h.Search)
	api.GET("/products/:id", h.GetProduct)
	api.GET("/products/:id/related", h.Related)
	api.GET("/categories", h.ListCategories)
	api.GET("/categories/:id", h.GetCategory)
	api.GET("/categories/:id/subcategories", h.Subcategories)
	api.GET("/reels", h.ListReels)
}

// ListProducts accepte ?category_id= pour filtrer par catégorie.
func (h *Handler) ListProducts(c *gin.Context) {
	var category *gocql.UUID
	if raw := c.Query("category_id"); raw != "" {
		id, err := catalog.ParseID(raw)
		if err != nil {
			handlers.RespondError(c, err)
			return
		}
		category = &id
	}
	products, err := h.catalog.ListProducts(c.Request.Context(), category)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.catalog.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products, "count": len(products)})
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) Related(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	limit, _ := strconv.Atoi(c.Query("limit"))
	products, err := h.catalog.RelatedProducts(c.Request.Context(), id, limit)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) GetCategory(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	category, err := h.catalog.GetCategory(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *Handler) Subcategories(c *gin.Context) {
	id, ok := handlers.ParamID(c, "id")
	if !ok {
		return
	}
	categories, err := h.catalog.Subcategories(c.Request.Context(), id)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

func (h *Handler) ListReels(c *gin.Context) {
	reels, err := h.catalog.ListReels(c.Request.Context(), true)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reels": reels})
}

package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/dnery/storecache/cache"
	"github.com/dnery/storecache/catalog"
)

// Handler holds the controllers' collaborators. It is thin glue: every
// endpoint delegates to the catalog service or the cache facade.
type Handler struct {
	catalog        *catalog.Service
	cache          *cache.Service
	logger         *zap.Logger
	adminTokenHash string
}

func NewHandler(cat *catalog.Service, cacheSvc *cache.Service, logger *zap.Logger, adminTokenHash string) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		catalog:        cat,
		cache:          cacheSvc,
		logger:         logger,
		adminTokenHash: adminTokenHash,
	}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.health)
	e.GET("/products/:id", h.product)
	e.GET("/products", h.products)
	e.GET("/cart/:user", h.cart)
	e.POST("/cart/:user/items", h.addToCart)
	e.DELETE("/cart/:user", h.clearCart)

	admin := e.Group("/admin", AdminToken(h.adminTokenHash))
	admin.DELETE("/cache", h.invalidateCache)
}

func (h *Handler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) product(c echo.Context) error {
	p, err := h.catalog.Product(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		h.logger.Error("product lookup failed", zap.String("id", c.Param("id")), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "catalog unavailable")
	}
	return c.JSON(http.StatusOK, catalog.NewProductView(p))
}

func (h *Handler) products(c echo.Context) error {
	raw := strings.TrimSpace(c.QueryParam("ids"))
	if raw == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "ids query parameter is required")
	}
	ids := strings.Split(raw, ",")

	products, err := h.catalog.Products(c.Request().Context(), ids)
	if err != nil {
		h.logger.Error("product batch lookup failed", zap.Strings("ids", ids), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "catalog unavailable")
	}

	views := make([]catalog.ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, catalog.NewProductView(p))
	}
	return c.JSON(http.StatusOK, views)
}

func (h *Handler) cart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.Cart(c.Request().Context(), c.Param("user")))
}

type addToCartRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

func (h *Handler) addToCart(c echo.Context) error {
	var req addToCartRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed body")
	}
	if req.ProductID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "product_id is required")
	}

	summary, err := h.catalog.AddToCart(c.Request().Context(), c.Param("user"), req.ProductID, req.Quantity)
	if err != nil {
		if errors.Is(err, catalog.ErrProductNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found")
		}
		h.logger.Error("add to cart failed", zap.String("user", c.Param("user")), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "cart unavailable")
	}
	return c.JSON(http.StatusOK, summary)
}

func (h *Handler) clearCart(c echo.Context) error {
	if err := h.catalog.ClearCart(c.Request().Context(), c.Param("user")); err != nil {
		h.logger.Error("clear cart failed", zap.String("user", c.Param("user")), zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "cart unavailable")
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) invalidateCache(c echo.Context) error {
	pattern := c.QueryParam("pattern")
	if pattern == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "pattern query parameter is required")
	}
	if err := h.cache.RemoveByPattern(c.Request().Context(), pattern); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "invalidation failed")
	}
	return c.NoContent(http.StatusNoContent)
}

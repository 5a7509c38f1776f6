package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nikolayk812/shopcart/internal/domain"
	"github.com/nikolayk812/shopcart/internal/port"
	"github.com/shopspring/decimal"
)

type Handler struct {
	svc    port.CartService
	logger *slog.Logger
	ping   func(ctx context.Context) error // optional readiness probe
}

func NewHandler(svc port.CartService, logger *slog.Logger, ping func(ctx context.Context) error) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{svc: svc, logger: logger, ping: ping}
}

type addItemRequest struct {
	ProductID uuid.UUID `json:"productId" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
}

type updateItemRequest struct {
	Quantity int `json:"quantity" binding:"required,gt=0"`
}

type cartIDResponse struct {
	CartID uuid.UUID `json:"cartId"`
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type cartItemResponse struct {
	ProductID    uuid.UUID       `json:"productId"`
	ProductName  string          `json:"productName"`
	ProductPrice decimal.Decimal `json:"productPrice"`
	ProductImage string          `json:"productImage,omitempty"`
	Quantity     int             `json:"quantity"`
	TotalPrice   decimal.Decimal `json:"totalPrice"`
}

type cartResponse struct {
	ID           uuid.UUID          `json:"id"`
	Items        []cartItemResponse `json:"items"`
	TotalBalance decimal.Decimal    `json:"totalBalance"`
	Currency     string             `json:"currency,omitempty"`
}

type productResponse struct {
	ProductID     uuid.UUID       `json:"productId"`
	ProductName   string          `json:"productName"`
	ProductPrice  decimal.Decimal `json:"productPrice"`
	ProductImage  string          `json:"productImage,omitempty"`
	ProductAmount int             `json:"productAmount"`
}

// statusOf is the single mapping from failure codes to HTTP statuses.
func statusOf(code domain.Code) int {
	switch code {
	case domain.CodeCartNotFound, domain.CodeCartItemNotFound, domain.CodeProductNotFound:
		return http.StatusNotFound
	case domain.CodeStockInsufficient:
		return http.StatusConflict
	case domain.CodeCartEmpty:
		return http.StatusBadRequest
	case domain.CodeCheckoutFailed:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) AddItem(c *gin.Context) {
	cartID, ok := pathUUID(c, "cartId")
	if !ok {
		return
	}

	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id, err := h.svc.AddItem(c.Request.Context(), cartID, req.ProductID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartIDResponse{CartID: id})
}

func (h *Handler) UpdateItem(c *gin.Context) {
	cartID, ok := pathUUID(c, "cartId")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "productId")
	if !ok {
		return
	}

	var req updateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	id, err := h.svc.UpdateItem(c.Request.Context(), cartID, productID, req.Quantity)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartIDResponse{CartID: id})
}

func (h *Handler) RemoveItem(c *gin.Context) {
	cartID, ok := pathUUID(c, "cartId")
	if !ok {
		return
	}
	productID, ok := pathUUID(c, "productId")
	if !ok {
		return
	}

	id, err := h.svc.RemoveItem(c.Request.Context(), cartID, productID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, cartIDResponse{CartID: id})
}

func (h *Handler) ClearCart(c *gin.Context) {
	cartID, ok := pathUUID(c, "cartId")
	if !ok {
		return
	}

	if err := h.svc.ClearCart(c.Request.Context(), cartID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetCart(c *gin.Context) {
	cartID, ok := pathUUID(c, "cartId")
	if !ok {
		return
	}

	cart, err := h.svc.GetCart(c.Request.Context(), cartID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := cartResponse{
		ID:           cart.CartID,
		Items:        []cartItemResponse{},
		TotalBalance: cart.Total.Amount,
	}
	if len(cart.Items) > 0 {
		resp.Currency = cart.Total.Currency.String()
	}
	for _, item := range cart.Items {
		resp.Items = append(resp.Items, cartItemResponse{
			ProductID:    item.ProductID,
			ProductName:  item.Name,
			ProductPrice: item.UnitPrice.Amount,
			ProductImage: item.Image,
			Quantity:     item.Quantity,
			TotalPrice:   item.LineTotal.Amount,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Checkout(c *gin.Context) {
	cartID, ok := pathUUID(c, "cartId")
	if !ok {
		return
	}

	if err := h.svc.Checkout(c.Request.Context(), cartID); err != nil {
		h.respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListProducts(c *gin.Context) {
	listings, err := h.svc.ListProducts(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	resp := make([]productResponse, 0, len(listings))
	for _, listing := range listings {
		resp = append(resp, productResponse{
			ProductID:     listing.ID,
			ProductName:   listing.Name,
			ProductPrice:  listing.Price.Amount,
			ProductImage:  listing.Image,
			ProductAmount: listing.Available,
		})
	}

	c.JSON(http.StatusOK, resp)
}

func (h *Handler) Health(c *gin.Context) {
	if h.ping != nil {
		if err := h.ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, errorResponse{Code: "Unhealthy", Message: err.Error()})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		c.JSON(statusOf(de.Code), errorResponse{Code: string(de.Code), Message: de.Message})
		return
	}

	h.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, errorResponse{
		Code:    "Internal",
		Message: "internal server error",
	})
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil || id == uuid.Nil {
		c.JSON(http.StatusBadRequest, errorResponse{
			Code:    "Validation.Error",
			Message: name + " must be a valid UUID",
		})
		return uuid.Nil, false
	}

	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, errorResponse{
		Code:    "Validation.Error",
		Message: err.Error(),
	})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainagg "github.com/yungbote/cart-backend/internal/domain/aggregates"
	types "github.com/yungbote/cart-backend/internal/domain/cart"
	"github.com/yungbote/cart-backend/internal/http/response"
	"github.com/yungbote/cart-backend/internal/platform/apierr"
	"github.com/yungbote/cart-backend/internal/platform/logger"
	"github.com/yungbote/cart-backend/internal/services"
)

type CartHandler struct {
	log         *logger.Logger
	cartService services.CartService
}

func NewCartHandler(log *logger.Logger, cartService services.CartService) *CartHandler {
	return &CartHandler{
		log:         log.With("handler", "CartHandler"),
		cartService: cartService,
	}
}

type updateCartRequest struct {
	Items []struct {
		ProductID string `json:"productId"`
		Count     *int   `json:"count"`
	} `json:"items"`
}

// GET /api/profile/cart
func (h *CartHandler) GetCart(c *gin.Context) {
	view, err := h.cartService.Get(c.Request.Context())
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// PUT /api/profile/cart
// body: { "items": [ { "productId": "...", "count": 2 } ] }
func (h *CartHandler) UpdateCart(c *gin.Context) {
	var req updateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	items := make([]types.ItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		count := 0
		if it.Count != nil {
			count = *it.Count
		}
		items = append(items, types.ItemInput{ProductID: it.ProductID, Count: count})
	}

	view, err := h.cartService.Update(c.Request.Context(), items)
	if err != nil {
		h.respondCartError(c, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/profile/cart
func (h *CartHandler) ClearCart(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context()); err != nil {
		h.respondCartError(c, err)
		return
	}
	response.RespondOK(c, nil)
}

// POST /api/profile/cart/checkout
func (h *CartHandler) Checkout(c *gin.Context) {
	if _, err := h.cartService.Checkout(c.Request.Context()); err != nil {
		h.respondCartError(c, err)
		return
	}
	response.RespondOK(c, nil)
}

func (h *CartHandler) respondCartError(c *gin.Context, err error) {
	apiErr := cartAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		h.log.Error("cart request failed", "path", c.FullPath(), "code", apiErr.Code, "error", err)
	}
	response.RespondError(c, apiErr.Status, apiErr.Message)
}

// cartAPIError classifies a cart service failure for the HTTP response.
func cartAPIError(err error) *apierr.Error {
	if errors.Is(err, services.ErrUnauthorized) {
		return apierr.New(http.StatusUnauthorized, "unauthorized", "Unauthorized", err)
	}
	if errors.Is(err, types.ErrEmptyCart) {
		return apierr.New(http.StatusBadRequest, "empty_cart", "Cart is empty", err)
	}

	var aggErr *domainagg.Error
	code := domainagg.CodeInternal
	if errors.As(err, &aggErr) {
		code = aggErr.Code
	}
	switch code {
	case domainagg.CodeValidation:
		msg := "Invalid request"
		if aggErr != nil && aggErr.Message != "" {
			msg = aggErr.Message
		}
		return apierr.New(http.StatusBadRequest, string(code), msg, err)
	case domainagg.CodeNotFound:
		return apierr.New(http.StatusNotFound, string(code), "Cart not found", err)
	case domainagg.CodeConflict:
		return apierr.New(http.StatusConflict, string(code), "Cart was modified concurrently", err)
	case domainagg.CodePreconditionFailed:
		return apierr.New(http.StatusBadRequest, "empty_cart", "Cart is empty", err)
	default:
		return apierr.New(http.StatusInternalServerError, string(code), "Internal Server Error", err)
	}
}

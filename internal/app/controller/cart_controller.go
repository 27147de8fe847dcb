package controller

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/clockert/fram-backend/internal/app/service"
	"github.com/clockert/fram-backend/internal/cart"
	apperrors "github.com/clockert/fram-backend/internal/errors"
	"github.com/clockert/fram-backend/internal/middleware"
	"github.com/clockert/fram-backend/internal/websocket"
)

type CartController struct {
	cartService service.CartService
	hub         *websocket.Hub
	upgrader    gorillaws.Upgrader
}

func NewCartController(cartService service.CartService, hub *websocket.Hub) *CartController {
	return &CartController{
		cartService: cartService,
		hub:         hub,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The session cookie scopes every connection to its own cart.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

type AddCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// GetCart returns the rendered cart for the caller's session
// GET /api/cart
func (ctrl *CartController) GetCart(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		apperrors.InternalError(c, "Session not resolved")
		return
	}

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// AddItem adds a product to the cart, consolidating repeated adds
// POST /api/cart/items
func (ctrl *CartController) AddItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		apperrors.InternalError(c, "Session not resolved")
		return
	}

	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid add-to-cart request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.ValidationInvalidInput, "product_id and a positive quantity are required")
		return
	}

	if err := ctrl.cartService.AddToCart(c.Request.Context(), sessionID, req.ProductID, req.Quantity); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			apperrors.NotFound(c, apperrors.ProductNotFound, "Product not found")
		case errors.Is(err, cart.ErrInvalidProduct):
			apperrors.BadRequest(c, apperrors.CartInvalidProduct, "Product cannot be added to the cart")
		default:
			log.Error("Failed to add item to cart", err, map[string]interface{}{
				"product_id": req.ProductID,
			})
			apperrors.InternalError(c, "Failed to add item to cart")
		}
		return
	}

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// UpdateItem sets the quantity of an existing line; zero or less removes it
// PUT /api/cart/items/:id
func (ctrl *CartController) UpdateItem(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		apperrors.InternalError(c, "Session not resolved")
		return
	}

	productID, err := parseProductID(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	var req UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid cart update request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.BadRequest(c, apperrors.CartInvalidQuantity, "quantity is required")
		return
	}

	if err := ctrl.cartService.UpdateQuantity(c.Request.Context(), sessionID, productID, req.Quantity); err != nil {
		if errors.Is(err, service.ErrCartItemNotFound) {
			apperrors.NotFound(c, apperrors.CartItemNotFound, "Item is not in the cart")
			return
		}
		log.Error("Failed to update cart item", err, map[string]interface{}{
			"product_id": productID,
		})
		apperrors.InternalError(c, "Failed to update cart item")
		return
	}

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// RemoveItem deletes a line regardless of its quantity. Removing an item
// that is not in the cart succeeds quietly.
// DELETE /api/cart/items/:id
func (ctrl *CartController) RemoveItem(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		apperrors.InternalError(c, "Session not resolved")
		return
	}

	productID, err := parseProductID(c)
	if err != nil {
		apperrors.BadRequest(c, apperrors.ValidationInvalidID, "Invalid product ID")
		return
	}

	ctrl.cartService.RemoveFromCart(c.Request.Context(), sessionID, productID)

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// ClearCart empties the session's cart
// DELETE /api/cart
func (ctrl *CartController) ClearCart(c *gin.Context) {
	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		apperrors.InternalError(c, "Session not resolved")
		return
	}

	ctrl.cartService.ClearCart(c.Request.Context(), sessionID)

	view := ctrl.cartService.GetCart(c.Request.Context(), sessionID)
	c.JSON(http.StatusOK, gin.H{
		"cart": view,
	})
}

// Subscribe upgrades to a WebSocket that receives cart change events for
// the caller's session
// GET /api/cart/ws
func (ctrl *CartController) Subscribe(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	sessionID, ok := middleware.GetSessionID(c)
	if !ok {
		apperrors.InternalError(c, "Session not resolved")
		return
	}

	conn, err := ctrl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket upgrade failed", err, map[string]interface{}{
			"session_id": sessionID,
		})
		return
	}

	client := &websocket.Client{
		Hub:       ctrl.hub,
		Conn:      &websocket.Conn{Conn: conn},
		SessionID: sessionID,
		Send:      make(chan []byte, 64),
	}
	ctrl.hub.Register(client)

	go client.WritePump()
	go client.ReadPump()
}

func parseProductID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

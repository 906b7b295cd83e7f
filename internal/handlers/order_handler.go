package handlers

import (
	"net/http"
	"strconv"

	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

type OrderHandler struct {
	orderService services.OrderService
}

func NewOrderHandler(orderService services.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	actor := CurrentActor(c)
	var req services.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.PlaceOrder(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"order": order})
}

func (h *OrderHandler) GetOrder(c *gin.Context) {
	actor := CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := h.orderService.GetOrder(actor, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *OrderHandler) ListOrders(c *gin.Context) {
	actor := CurrentActor(c)
	page, limit := pageParams(c)

	status := repository.AnyOrderStatus()
	if raw := c.Query("status"); raw != "" {
		status = repository.WithOrderStatus(models.OrderStatus(raw))
	}

	orders, total, err := h.orderService.ListOrders(actor, status, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"orders":     orders,
		"pagination": pagination(page, limit, total),
	})
}

func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	actor := CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	var req struct {
		Status string `json:"status"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Status == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	order, err := h.orderService.AdvanceStatus(actor, uint(id), models.OrderStatus(req.Status), req.Note)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

// PaymentCallback is the gateway webhook. It carries its own reference and is
// not session-authenticated; only successful payments reach the ledger.
func (h *OrderHandler) PaymentCallback(c *gin.Context) {
	var req struct {
		OrderNumber string `json:"order_number"`
		PaymentRef  string `json:"payment_ref"`
		Status      string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.OrderNumber == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if req.Status != "success" {
		c.JSON(http.StatusOK, gin.H{"status": "ignored"})
		return
	}

	order, err := h.orderService.ConfirmPayment(req.OrderNumber, req.PaymentRef)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

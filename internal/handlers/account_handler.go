package handlers

import (
	"net/http"
	"strconv"

	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

type AccountHandler struct {
	userService     services.UserService
	loyaltyService  services.LoyaltyService
	referralService services.ReferralService
	ticketService   services.TicketService
}

func NewAccountHandler(
	userService services.UserService,
	loyaltyService services.LoyaltyService,
	referralService services.ReferralService,
	ticketService services.TicketService,
) *AccountHandler {
	return &AccountHandler{
		userService:     userService,
		loyaltyService:  loyaltyService,
		referralService: referralService,
		ticketService:   ticketService,
	}
}

func (h *AccountHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	user, err := h.userService.Register(req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"user": user})
}

func (h *AccountHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	token, user, err := h.userService.Login(req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (h *AccountHandler) Logout(c *gin.Context) {
	if err := h.userService.Logout(sessionToken(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged_out"})
}

func (h *AccountHandler) Me(c *gin.Context) {
	actor := CurrentActor(c)
	user, err := h.userService.GetByID(actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *AccountHandler) Rewards(c *gin.Context) {
	actor := CurrentActor(c)
	page, limit := pageParams(c)

	balance, err := h.loyaltyService.Balance(actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	txns, total, err := h.loyaltyService.History(actor.UserID, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"balance":      balance,
		"transactions": txns,
		"pagination":   pagination(page, limit, total),
	})
}

func (h *AccountHandler) RedeemPoints(c *gin.Context) {
	actor := CurrentActor(c)
	var req struct {
		Points int `json:"points"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	result, err := h.loyaltyService.Redeem(actor.UserID, req.Points, nil)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *AccountHandler) Referrals(c *gin.Context) {
	actor := CurrentActor(c)
	stats, err := h.referralService.Stats(actor.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *AccountHandler) CreateTicket(c *gin.Context) {
	actor := CurrentActor(c)
	var req struct {
		Subject string `json:"subject"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ticket, err := h.ticketService.Create(actor, req.Subject, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"ticket": ticket})
}

func (h *AccountHandler) MyTickets(c *gin.Context) {
	actor := CurrentActor(c)
	page, limit := pageParams(c)

	tickets, total, err := h.ticketService.MyTickets(actor, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets":    tickets,
		"pagination": pagination(page, limit, total),
	})
}

func (h *AccountHandler) GetTicket(c *gin.Context) {
	actor := CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	ticket, err := h.ticketService.Get(actor, uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

func (h *AccountHandler) ReplyTicket(c *gin.Context) {
	actor := CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	ticket, err := h.ticketService.Reply(actor, uint(id), req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

package handlers

import (
	"net/http"
	"strconv"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	couponService         services.CouponService
	ticketService         services.TicketService
	reportService         services.ReportService
	referralService       services.ReferralService
	catalogService        services.CatalogService
	serviceabilityService services.ServiceabilityService
}

func NewAdminHandler(
	couponService services.CouponService,
	ticketService services.TicketService,
	reportService services.ReportService,
	referralService services.ReferralService,
	catalogService services.CatalogService,
	serviceabilityService services.ServiceabilityService,
) *AdminHandler {
	return &AdminHandler{
		couponService:         couponService,
		ticketService:         ticketService,
		reportService:         reportService,
		referralService:       referralService,
		catalogService:        catalogService,
		serviceabilityService: serviceabilityService,
	}
}

func (h *AdminHandler) CreateCoupon(c *gin.Context) {
	actor := CurrentActor(c)
	var req services.CreateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	coupon, err := h.couponService.Create(actor, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

func (h *AdminHandler) ListCoupons(c *gin.Context) {
	actor := CurrentActor(c)
	page, limit := pageParams(c)

	filter := repository.CouponAll
	switch c.Query("status") {
	case "active":
		filter = repository.CouponActive
	case "expired":
		filter = repository.CouponExpired
	}

	coupons, total, err := h.couponService.List(actor, filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"coupons":    coupons,
		"pagination": pagination(page, limit, total),
	})
}

func (h *AdminHandler) DeactivateCoupon(c *gin.Context) {
	actor := CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid coupon id"})
		return
	}

	if err := h.couponService.Deactivate(actor, uint(id)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

func (h *AdminHandler) ListTickets(c *gin.Context) {
	actor := CurrentActor(c)
	page, limit := pageParams(c)

	filter := repository.AnyTicketStatus()
	if raw := c.Query("status"); raw != "" {
		filter = repository.WithTicketStatus(models.TicketStatus(raw))
	}

	tickets, total, err := h.ticketService.List(actor, filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets":    tickets,
		"pagination": pagination(page, limit, total),
	})
}

func (h *AdminHandler) UpdateTicketStatus(c *gin.Context) {
	actor := CurrentActor(c)
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid ticket id"})
		return
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.ticketService.UpdateStatus(actor, uint(id), models.TicketStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

func (h *AdminHandler) SettleReferral(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid referral id"})
		return
	}

	referral, err := h.referralService.Settle(uint(id))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"referral": referral})
}

func (h *AdminHandler) SalesSummary(c *gin.Context) {
	actor := CurrentActor(c)
	start, end, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range"})
		return
	}

	rows, err := h.reportService.SalesSummary(actor, start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": rows, "start": start, "end": end})
}

func (h *AdminHandler) TopProducts(c *gin.Context) {
	actor := CurrentActor(c)
	start, end, err := dateRange(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid date range"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	rows, err := h.reportService.TopProducts(actor, start, end, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": rows, "start": start, "end": end})
}

func (h *AdminHandler) CreatePincode(c *gin.Context) {
	actor := CurrentActor(c)
	var pincode models.Pincode
	if err := c.ShouldBindJSON(&pincode); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.serviceabilityService.CreatePincode(actor, &pincode); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"pincode": pincode})
}

func (h *AdminHandler) ListPincodes(c *gin.Context) {
	actor := CurrentActor(c)
	page, limit := pageParams(c)

	pincodes, total, err := h.serviceabilityService.ListPincodes(actor, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"pincodes":   pincodes,
		"pagination": pagination(page, limit, total),
	})
}

func (h *AdminHandler) CreateBanner(c *gin.Context) {
	actor := CurrentActor(c)
	var banner models.Banner
	if err := c.ShouldBindJSON(&banner); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.catalogService.CreateBanner(actor, &banner); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"banner": banner})
}

func (h *AdminHandler) CreateOffer(c *gin.Context) {
	actor := CurrentActor(c)
	var offer models.Offer
	if err := c.ShouldBindJSON(&offer); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.catalogService.CreateOffer(actor, &offer); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"offer": offer})
}

// dateRange parses ?start=YYYY-MM-DD&end=YYYY-MM-DD, defaulting to the last
// 30 days. The end date is inclusive.
func dateRange(c *gin.Context) (time.Time, time.Time, error) {
	now := time.Now()
	start := now.AddDate(0, 0, -30)
	end := now

	if raw := c.Query("start"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	if raw := c.Query("end"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed.AddDate(0, 0, 1).Add(-time.Second)
	}
	return start, end, nil
}

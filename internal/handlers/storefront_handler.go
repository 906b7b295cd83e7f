package handlers

import (
	"net/http"
	"time"

	"storefront/internal/models"
	"storefront/internal/repository"
	"storefront/internal/services"

	"github.com/gin-gonic/gin"
)

type StorefrontHandler struct {
	catalogService        services.CatalogService
	serviceabilityService services.ServiceabilityService
}

func NewStorefrontHandler(catalogService services.CatalogService, serviceabilityService services.ServiceabilityService) *StorefrontHandler {
	return &StorefrontHandler{
		catalogService:        catalogService,
		serviceabilityService: serviceabilityService,
	}
}

func (h *StorefrontHandler) ListProducts(c *gin.Context) {
	page, limit := pageParams(c)
	filter := repository.ProductFilter{
		Category:   c.Query("category"),
		ActiveOnly: true,
	}

	products, total, err := h.catalogService.ListProducts(filter, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"products":   products,
		"pagination": pagination(page, limit, total),
	})
}

func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	product, err := h.catalogService.GetProduct(c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product})
}

func (h *StorefrontHandler) CreateProduct(c *gin.Context) {
	actor := CurrentActor(c)
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	if err := h.catalogService.CreateProduct(actor, &product); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"product": product})
}

func (h *StorefrontHandler) ListBanners(c *gin.Context) {
	banners, err := h.catalogService.ListBanners()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"banners": banners})
}

func (h *StorefrontHandler) ListOffers(c *gin.Context) {
	offers, err := h.catalogService.ListOffers(time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offers": offers})
}

func (h *StorefrontHandler) CheckServiceability(c *gin.Context) {
	result, err := h.serviceabilityService.Check(c.Param("pincode"), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

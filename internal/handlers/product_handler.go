package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "github.com/DmitryBilevich/product-sales-service/internal/errors"
	"github.com/DmitryBilevich/product-sales-service/internal/models"
	"github.com/DmitryBilevich/product-sales-service/internal/repositories"
	"github.com/DmitryBilevich/product-sales-service/internal/services"
	"github.com/DmitryBilevich/product-sales-service/internal/utils"
	"github.com/DmitryBilevich/product-sales-service/internal/validator"
)

// ProductHandler exposes catalog CRUD and search.
type ProductHandler struct {
	BaseHandler
	productService services.ProductService
	validator      *validator.Validator
}

func NewProductHandler(
	productService services.ProductService,
	v *validator.Validator,
	logger utils.Logger,
) *ProductHandler {
	return &ProductHandler{
		BaseHandler:    NewBaseHandler(logger),
		productService: productService,
		validator:      v,
	}
}

// List handles GET /api/products
func (h *ProductHandler) List(c *gin.Context) {
	filters := repositories.ProductFilters{
		PageNumber: queryInt(c, "pageNumber", 1),
		PageSize:   queryInt(c, "pageSize", 20),
	}

	result, err := h.productService.Search(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/products/:id
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid product id", nil)
		return
	}

	product, err := h.productService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, product)
}

// Create handles POST /api/products
func (h *ProductHandler) Create(c *gin.Context) {
	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}

	created, err := h.productService.Create(c.Request.Context(), &product)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// Update handles PUT /api/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid product id", nil)
		return
	}

	var product models.Product
	if err := c.ShouldBindJSON(&product); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	product.ProductID = id

	updated, err := h.productService.Update(c.Request.Context(), &product)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

// Delete handles DELETE /api/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseUintParam(c, "id")
	if !ok {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid product id", nil)
		return
	}

	if err := h.productService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Search handles POST /api/products/search
func (h *ProductHandler) Search(c *gin.Context) {
	var filters repositories.ProductFilters
	if err := c.ShouldBindJSON(&filters); err != nil {
		h.RespondWithError(c, http.StatusBadRequest, "Invalid request payload", err)
		return
	}
	if err := h.validator.ValidateStruct(&filters); err != nil {
		h.handleServiceError(c, apperrors.ToValidationErrors(err))
		return
	}

	result, err := h.productService.Search(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// CheckSKU handles GET /api/products/check-sku?sku=...&excludeId=...
func (h *ProductHandler) CheckSKU(c *gin.Context) {
	sku := c.Query("sku")
	if sku == "" {
		h.RespondWithError(c, http.StatusBadRequest, "Missing sku parameter", nil)
		return
	}

	var excludeID *uint
	if raw := c.Query("excludeId"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			h.RespondWithError(c, http.StatusBadRequest, "Invalid excludeId parameter", err)
			return
		}
		id := uint(parsed)
		excludeID = &id
	}

	exists, err := h.productService.CheckSKU(c.Request.Context(), sku, excludeID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

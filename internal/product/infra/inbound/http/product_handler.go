package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/posalpro/posalpro/internal/product/application"
	"github.com/posalpro/posalpro/internal/product/domain"
	"github.com/posalpro/posalpro/pkg/utils"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
)

// ProductHandler encapsula los endpoints HTTP relacionados con Product
type ProductHandler struct {
	service *application.ProductService
}

// NewProductHandler crea un nuevo ProductHandler
func NewProductHandler(service *application.ProductService) *ProductHandler {
	return &ProductHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateProduct endpoint POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req struct {
		SKU         string   `json:"sku" binding:"required"`
		Name        string   `json:"name" binding:"required"`
		Category    string   `json:"category,omitempty"`
		Price       *float64 `json:"price,omitempty"`
		Description string   `json:"description,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), req.SKU, req.Name, req.Category, req.Description, req.Price)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProduct) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusCreated, product)
}

// GetProduct endpoint GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid product id")
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			utils.SendNotFound(c, "product not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, product)
}

// UpdateProduct endpoint PUT /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid product id")
		return
	}

	var req struct {
		SKU         *string  `json:"sku,omitempty"`
		Name        *string  `json:"name,omitempty"`
		Category    *string  `json:"category,omitempty"`
		Price       *float64 `json:"price,omitempty"`
		Active      *bool    `json:"active,omitempty"`
		Description *string  `json:"description,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	product, err := h.service.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			utils.SendNotFound(c, "product not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	if req.SKU != nil {
		product.SKU = *req.SKU
	}
	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Category != nil {
		product.Category = *req.Category
	}
	if req.Price != nil {
		product.Price = req.Price
	}
	if req.Active != nil {
		if *req.Active {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}
	if req.Description != nil {
		product.Description = *req.Description
	}

	if err := h.service.UpdateProduct(c.Request.Context(), product); err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, product)
}

// DeleteProduct endpoint DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid product id")
		return
	}

	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			utils.SendNotFound(c, "product not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProducts endpoint GET /products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	var criterias []sharedDomain.Criteria

	// --- Filtros desde query params ---
	if category := c.Query("category"); category != "" {
		criterias = append(criterias, domain.CategoryCriteria{Category: category})
	}

	if sku := c.Query("sku"); sku != "" {
		criterias = append(criterias, domain.SKUCriteria{SKU: sku})
	}

	if activeStr := c.Query("active"); activeStr != "" {
		if active, err := strconv.ParseBool(activeStr); err == nil {
			criterias = append(criterias, domain.ActiveCriteria{Active: active})
		}
	}

	if name := c.Query("name"); name != "" {
		criterias = append(criterias, domain.NameLikeCriteria{Name: name})
	}

	var minPrice, maxPrice *float64
	if minStr := c.Query("min_price"); minStr != "" {
		if v, err := strconv.ParseFloat(minStr, 64); err == nil {
			minPrice = &v
		}
	}
	if maxStr := c.Query("max_price"); maxStr != "" {
		if v, err := strconv.ParseFloat(maxStr, 64); err == nil {
			maxPrice = &v
		}
	}
	if minPrice != nil || maxPrice != nil {
		criterias = append(criterias, domain.PriceRangeCriteria{Min: minPrice, Max: maxPrice})
	}

	criteria := sharedDomain.And(criterias...)

	// --- Petición de listado ---
	req := sharedQuery.ListRequest{
		Fields: sharedQuery.ParseFields(c.Query("fields")),
		Cursor: c.Query("cursor"),
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		if v, err := strconv.Atoi(limitStr); err == nil {
			req.Limit = v
		}
	}

	if pageStr := c.Query("page"); pageStr != "" {
		if v, err := strconv.Atoi(pageStr); err == nil {
			req.Page = v
		}
	}

	if sortField := c.Query("sort_field"); sortField != "" {
		req.Sort = sharedQuery.Sort{
			Field: sortField,
			Desc:  c.Query("sort_desc") == "true",
		}
	}

	page, err := h.service.ListProducts(c.Request.Context(), criteria, req)
	if err != nil {
		switch {
		case errors.Is(err, sharedQuery.ErrMalformedCursor):
			utils.SendBadCursor(c, err.Error())
		case sharedQuery.IsClientError(err):
			utils.SendBadRequest(c, err.Error())
		case sharedQuery.IsRetryable(err):
			utils.SendStoreUnavailable(c, err.Error())
		default:
			utils.SendInternalServerError(c, err.Error())
		}
		return
	}

	utils.SendSuccess(c, http.StatusOK, page)
}

package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/posalpro/posalpro/internal/customer/application"
	"github.com/posalpro/posalpro/internal/customer/domain"
	"github.com/posalpro/posalpro/pkg/utils"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
)

// CustomerHandler encapsula los endpoints HTTP relacionados con Customer
type CustomerHandler struct {
	service *application.CustomerService
}

// NewCustomerHandler crea un nuevo CustomerHandler
func NewCustomerHandler(service *application.CustomerService) *CustomerHandler {
	return &CustomerHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateCustomer endpoint POST /customers
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Industry string `json:"industry,omitempty"`
		Tier     string `json:"tier,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	customer, err := h.service.CreateCustomer(c.Request.Context(), req.Name, req.Email, req.Industry, domain.CustomerTier(req.Tier))
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCustomer) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusCreated, customer)
}

// GetCustomer endpoint GET /customers/:id
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid customer id")
		return
	}

	customer, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			utils.SendNotFound(c, "customer not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, customer)
}

// UpdateCustomer endpoint PUT /customers/:id
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid customer id")
		return
	}

	var req struct {
		Name     *string `json:"name,omitempty"`
		Email    *string `json:"email,omitempty"`
		Industry *string `json:"industry,omitempty"`
		Tier     *string `json:"tier,omitempty"`
		Status   *string `json:"status,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	customer, err := h.service.GetCustomer(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			utils.SendNotFound(c, "customer not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	if req.Name != nil {
		customer.Name = *req.Name
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Industry != nil {
		customer.Industry = *req.Industry
	}
	if req.Tier != nil {
		customer.Upgrade(domain.CustomerTier(*req.Tier))
	}
	if req.Status != nil {
		switch domain.CustomerStatus(*req.Status) {
		case domain.CustomerActive:
			customer.Activate()
		case domain.CustomerInactive:
			customer.Deactivate()
		default:
			utils.SendBadRequest(c, "invalid status")
			return
		}
	}

	if err := h.service.UpdateCustomer(c.Request.Context(), customer); err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, customer)
}

// DeleteCustomer endpoint DELETE /customers/:id
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid customer id")
		return
	}

	if err := h.service.DeleteCustomer(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrCustomerNotFound) {
			utils.SendNotFound(c, "customer not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// ListCustomers endpoint GET /customers
func (h *CustomerHandler) ListCustomers(c *gin.Context) {
	var criterias []sharedDomain.Criteria

	// --- Filtros desde query params ---
	if tier := c.Query("tier"); tier != "" {
		criterias = append(criterias, domain.TierCriteria{Tier: domain.CustomerTier(tier)})
	}

	if status := c.Query("status"); status != "" {
		criterias = append(criterias, domain.StatusCriteria{Status: domain.CustomerStatus(status)})
	}

	if industry := c.Query("industry"); industry != "" {
		criterias = append(criterias, domain.IndustryCriteria{Industry: industry})
	}

	if name := c.Query("name"); name != "" {
		criterias = append(criterias, domain.NameLikeCriteria{Name: name})
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

	page, err := h.service.ListCustomers(c.Request.Context(), criteria, req)
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

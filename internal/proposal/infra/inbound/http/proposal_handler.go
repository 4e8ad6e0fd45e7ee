package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/posalpro/posalpro/internal/proposal/application"
	"github.com/posalpro/posalpro/internal/proposal/domain"
	"github.com/posalpro/posalpro/pkg/utils"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
)

// ProposalHandler encapsula los endpoints HTTP relacionados con Proposal
type ProposalHandler struct {
	service *application.ProposalService
}

// NewProposalHandler crea un nuevo ProposalHandler
func NewProposalHandler(service *application.ProposalService) *ProposalHandler {
	return &ProposalHandler{service: service}
}

// ---------------- Handlers ----------------

// CreateProposal endpoint POST /proposals
func (h *ProposalHandler) CreateProposal(c *gin.Context) {
	var req struct {
		Title         string   `json:"title" binding:"required"`
		CustomerID    *string  `json:"customer_id,omitempty"`
		Value         *float64 `json:"value,omitempty"`
		Currency      string   `json:"currency,omitempty"`
		DueDate       *string  `json:"due_date,omitempty"` // ISO8601, ej: 2026-09-30
		InternalNotes string   `json:"internal_notes,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	var customerID *uuid.UUID
	if req.CustomerID != nil {
		parsed, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			utils.SendBadRequest(c, "invalid customer_id")
			return
		}
		customerID = &parsed
	}

	var dueDate *time.Time
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			utils.SendBadRequest(c, "invalid due_date format, use YYYY-MM-DD")
			return
		}
		dueDate = &parsed
	}

	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	proposal, err := h.service.CreateProposal(c.Request.Context(), req.Title, customerID, req.Value, currency, dueDate, req.InternalNotes)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidProposal) {
			utils.SendBadRequest(c, err.Error())
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusCreated, proposal)
}

// GetProposal endpoint GET /proposals/:id
func (h *ProposalHandler) GetProposal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid proposal id")
		return
	}

	proposal, err := h.service.GetProposal(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			utils.SendNotFound(c, "proposal not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, proposal)
}

// UpdateProposal endpoint PUT /proposals/:id
func (h *ProposalHandler) UpdateProposal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid proposal id")
		return
	}

	var req struct {
		Title         *string  `json:"title,omitempty"`
		Status        *string  `json:"status,omitempty"`
		Value         *float64 `json:"value,omitempty"`
		Currency      *string  `json:"currency,omitempty"`
		DueDate       *string  `json:"due_date,omitempty"`
		InternalNotes *string  `json:"internal_notes,omitempty"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBadRequest(c, err.Error())
		return
	}

	proposal, err := h.service.GetProposal(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			utils.SendNotFound(c, "proposal not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	if req.Title != nil {
		proposal.Title = *req.Title
	}
	if req.Status != nil {
		// Los cambios de estado pasan por las transiciones del dominio.
		switch domain.ProposalStatus(*req.Status) {
		case domain.ProposalSubmitted:
			proposal.Submit()
		case domain.ProposalApproved:
			proposal.Approve()
		case domain.ProposalRejected:
			proposal.Reject()
		default:
			utils.SendBadRequest(c, "invalid status")
			return
		}
	}
	if req.Value != nil {
		proposal.Value = req.Value
	}
	if req.Currency != nil {
		proposal.Currency = *req.Currency
	}
	if req.DueDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.DueDate)
		if err != nil {
			utils.SendBadRequest(c, "invalid due_date format")
			return
		}
		proposal.DueDate = &parsed
	}
	if req.InternalNotes != nil {
		proposal.InternalNotes = *req.InternalNotes
	}

	if err := h.service.UpdateProposal(c.Request.Context(), proposal); err != nil {
		utils.SendInternalServerError(c, err.Error())
		return
	}

	utils.SendSuccess(c, http.StatusOK, proposal)
}

// DeleteProposal endpoint DELETE /proposals/:id
func (h *ProposalHandler) DeleteProposal(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.SendBadRequest(c, "invalid proposal id")
		return
	}

	if err := h.service.DeleteProposal(c.Request.Context(), id); err != nil {
		if errors.Is(err, domain.ErrProposalNotFound) {
			utils.SendNotFound(c, "proposal not found")
			return
		}
		utils.SendInternalServerError(c, err.Error())
		return
	}

	c.Status(http.StatusNoContent)
}

// ListProposals endpoint GET /proposals
//
// Soporta ?fields=a,b,c (proyección), ?cursor=... o ?page=N (paginación),
// ?limit, ?sort_field, ?sort_desc y los filtros de negocio.
func (h *ProposalHandler) ListProposals(c *gin.Context) {
	var criterias []sharedDomain.Criteria

	// --- Filtros desde query params ---
	if status := c.Query("status"); status != "" {
		criterias = append(criterias, domain.StatusCriteria{Status: domain.ProposalStatus(status)})
	}

	if customerIDStr := c.Query("customer_id"); customerIDStr != "" {
		if customerID, err := uuid.Parse(customerIDStr); err == nil {
			criterias = append(criterias, domain.CustomerCriteria{CustomerID: customerID})
		}
	}

	if title := c.Query("title"); title != "" {
		criterias = append(criterias, domain.TitleLikeCriteria{Title: title})
	}

	var minValue, maxValue *float64
	if minStr := c.Query("min_value"); minStr != "" {
		if v, err := strconv.ParseFloat(minStr, 64); err == nil {
			minValue = &v
		}
	}
	if maxStr := c.Query("max_value"); maxStr != "" {
		if v, err := strconv.ParseFloat(maxStr, 64); err == nil {
			maxValue = &v
		}
	}
	if minValue != nil || maxValue != nil {
		criterias = append(criterias, domain.ValueRangeCriteria{Min: minValue, Max: maxValue})
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

	page, err := h.service.ListProposals(c.Request.Context(), criteria, req)
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

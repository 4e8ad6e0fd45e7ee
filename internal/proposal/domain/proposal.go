package domain

import (
	"time"

	sharedBus "github.com/posalpro/posalpro/shared/platform/bus"
	"github.com/google/uuid"
)

type ProposalStatus string

const (
	ProposalDraft     ProposalStatus = "draft"
	ProposalSubmitted ProposalStatus = "submitted"
	ProposalApproved  ProposalStatus = "approved"
	ProposalRejected  ProposalStatus = "rejected"
)

// Proposal representa una propuesta comercial. Los campos no identificadores
// son punteros u omitempty: en los listados solo se hidratan los campos
// proyectados y el resto no debe aparecer en la respuesta.
type Proposal struct {
	ID         uuid.UUID      `json:"id"`
	Title      string         `json:"title,omitempty"`
	Status     ProposalStatus `json:"status,omitempty"`
	CustomerID *uuid.UUID     `json:"customer_id,omitempty"`
	Value      *float64       `json:"value,omitempty"`
	Currency   string         `json:"currency,omitempty"`
	DueDate    *time.Time     `json:"due_date,omitempty"` // anulable: ordena al final
	CreatedAt  *time.Time     `json:"created_at,omitempty"`
	UpdatedAt  *time.Time     `json:"updated_at,omitempty"`

	// InternalNotes existe en el almacén pero no está en el allow-list:
	// nunca viaja hacia fuera.
	InternalNotes string `json:"-"`
}

func (p *Proposal) PartitionKey() string {
	return p.ID.String()
}

// --- Métodos de dominio ---

func (p *Proposal) Submit() {
	p.Status = ProposalSubmitted
	now := time.Now().UTC()
	p.UpdatedAt = &now
}

func (p *Proposal) Approve() {
	p.Status = ProposalApproved
	now := time.Now().UTC()
	p.UpdatedAt = &now
}

func (p *Proposal) Reject() {
	p.Status = ProposalRejected
	now := time.Now().UTC()
	p.UpdatedAt = &now
}

// Overdue indica si la propuesta venció. Sin fecha límite nunca vence.
func (p *Proposal) Overdue(now time.Time) bool {
	if p.DueDate == nil {
		return false
	}
	return now.After(*p.DueDate) && p.Status != ProposalApproved
}

// Verificación estática para asegurar que Proposal implementa la interfaz
var _ sharedBus.Keyer = (*Proposal)(nil)

package domain

import (
	"reflect"
	"time"

	sharedEvents "github.com/posalpro/posalpro/shared/events"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/google/uuid"
)

// Las constantes de los tipos de evento se definen aquí, como valores string.
const (
	ProposalCreated = "proposal.created"
	ProposalUpdated = "proposal.updated"
	ProposalDeleted = "proposal.deleted"
)

const ProposalTopic = "proposal"

// EntityType es el tipo de entidad bajo el que se registra el descriptor.
const EntityType = "proposal"

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		ProposalCreated: {
			Type:  reflect.TypeOf(Proposal{}),
			Topic: ProposalTopic,
		},
		ProposalUpdated: {
			Type:  reflect.TypeOf(Proposal{}),
			Topic: ProposalTopic,
		},
		ProposalDeleted: {
			Type:  reflect.TypeOf(Proposal{}),
			Topic: ProposalTopic,
		},
	}
}

// Descriptor es la metadata de listado de Proposal: el allow-list de campos
// consultables (internal_notes queda fuera a propósito), el
// conjunto mínimo por defecto y la ordenación por defecto.
func Descriptor() *sharedQuery.Descriptor {
	return &sharedQuery.Descriptor{
		Entity:  EntityType,
		Table:   "proposals",
		IDField: "id",
		Fields: map[string]sharedQuery.FieldSpec{
			"id":          {Kind: sharedQuery.KindString},
			"title":       {Kind: sharedQuery.KindString},
			"status":      {Kind: sharedQuery.KindString},
			"customer_id": {Kind: sharedQuery.KindString, Nullable: true},
			"value":       {Kind: sharedQuery.KindFloat, Nullable: true},
			"currency":    {Kind: sharedQuery.KindString},
			"due_date":    {Kind: sharedQuery.KindTime, Nullable: true},
			"created_at":  {Kind: sharedQuery.KindTime},
			"updated_at":  {Kind: sharedQuery.KindTime, Nullable: true},
		},
		DefaultFields: []string{"id", "title", "status", "created_at"},
		DefaultSort:   sharedQuery.Sort{Field: "created_at", Desc: true},
	}
}

// Anchor extrae (valor del campo de orden, id) de una propuesta para el
// codec de cursor. El valor debe ser el hidratado, incluidos los NULL.
func Anchor(p *Proposal, sortField string) (interface{}, uuid.UUID) {
	switch sortField {
	case "id":
		return p.ID.String(), p.ID
	case "title":
		return p.Title, p.ID
	case "status":
		return string(p.Status), p.ID
	case "customer_id":
		if p.CustomerID == nil {
			return nil, p.ID
		}
		return p.CustomerID.String(), p.ID
	case "value":
		if p.Value == nil {
			return nil, p.ID
		}
		return *p.Value, p.ID
	case "currency":
		return p.Currency, p.ID
	case "due_date":
		return timeOrNil(p.DueDate), p.ID
	case "created_at":
		return timeOrNil(p.CreatedAt), p.ID
	case "updated_at":
		return timeOrNil(p.UpdatedAt), p.ID
	default:
		return nil, p.ID
	}
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

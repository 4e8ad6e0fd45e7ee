package domain

import (
	"reflect"
	"time"

	sharedEvents "github.com/posalpro/posalpro/shared/events"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/google/uuid"
)

const (
	CustomerCreated = "customer.created"
	CustomerUpdated = "customer.updated"
	CustomerDeleted = "customer.deleted"
)

const CustomerTopic = "customer"

const EntityType = "customer"

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		CustomerCreated: {
			Type:  reflect.TypeOf(Customer{}),
			Topic: CustomerTopic,
		},
		CustomerUpdated: {
			Type:  reflect.TypeOf(Customer{}),
			Topic: CustomerTopic,
		},
		CustomerDeleted: {
			Type:  reflect.TypeOf(Customer{}),
			Topic: CustomerTopic,
		},
	}
}

// Descriptor es la metadata de listado de Customer. Todos los campos son no
// anulables (updated_at se inicializa en el alta), lo que simplifica el
// predicado keyset en los adaptadores.
func Descriptor() *sharedQuery.Descriptor {
	return &sharedQuery.Descriptor{
		Entity:  EntityType,
		Table:   "customers",
		IDField: "id",
		Fields: map[string]sharedQuery.FieldSpec{
			"id":         {Kind: sharedQuery.KindString},
			"name":       {Kind: sharedQuery.KindString},
			"email":      {Kind: sharedQuery.KindString},
			"tier":       {Kind: sharedQuery.KindString},
			"industry":   {Kind: sharedQuery.KindString},
			"status":     {Kind: sharedQuery.KindString},
			"created_at": {Kind: sharedQuery.KindTime},
			"updated_at": {Kind: sharedQuery.KindTime},
		},
		DefaultFields: []string{"id", "name", "tier", "status"},
		DefaultSort:   sharedQuery.Sort{Field: "created_at", Desc: true},
	}
}

// Anchor extrae (valor de ordenación, id) del último item de una página;
// es lo que el ejecutor codifica como cursor de continuación.
func Anchor(c *Customer, sortField string) (interface{}, uuid.UUID) {
	switch sortField {
	case "name":
		return c.Name, c.ID
	case "email":
		return c.Email, c.ID
	case "tier":
		return string(c.Tier), c.ID
	case "industry":
		return c.Industry, c.ID
	case "status":
		return string(c.Status), c.ID
	case "created_at":
		return timeOrNil(c.CreatedAt), c.ID
	case "updated_at":
		return timeOrNil(c.UpdatedAt), c.ID
	default:
		return c.ID.String(), c.ID
	}
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

package domain

import (
	"reflect"
	"time"

	sharedEvents "github.com/posalpro/posalpro/shared/events"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/google/uuid"
)

const (
	ProductCreated = "product.created"
	ProductUpdated = "product.updated"
	ProductDeleted = "product.deleted"
)

const ProductTopic = "product"

const EntityType = "product"

func NewEventRegistry() map[string]sharedEvents.EventMetadata {
	return map[string]sharedEvents.EventMetadata{
		ProductCreated: {
			Type:  reflect.TypeOf(Product{}),
			Topic: ProductTopic,
		},
		ProductUpdated: {
			Type:  reflect.TypeOf(Product{}),
			Topic: ProductTopic,
		},
		ProductDeleted: {
			Type:  reflect.TypeOf(Product{}),
			Topic: ProductTopic,
		},
	}
}

// Descriptor es la metadata de listado de Product. description está marcado
// Expensive: solo viaja si se pide explícitamente.
func Descriptor() *sharedQuery.Descriptor {
	return &sharedQuery.Descriptor{
		Entity:  EntityType,
		Table:   "products",
		IDField: "id",
		Fields: map[string]sharedQuery.FieldSpec{
			"id":          {Kind: sharedQuery.KindString},
			"sku":         {Kind: sharedQuery.KindString},
			"name":        {Kind: sharedQuery.KindString},
			"category":    {Kind: sharedQuery.KindString},
			"price":       {Kind: sharedQuery.KindFloat, Nullable: true},
			"active":      {Kind: sharedQuery.KindBool},
			"description": {Kind: sharedQuery.KindString, Expensive: true},
			"created_at":  {Kind: sharedQuery.KindTime},
		},
		DefaultFields: []string{"id", "sku", "name", "price"},
		DefaultSort:   sharedQuery.Sort{Field: "created_at", Desc: true},
	}
}

// Anchor extrae (valor de ordenación, id) del último item de una página.
func Anchor(p *Product, sortField string) (interface{}, uuid.UUID) {
	switch sortField {
	case "sku":
		return p.SKU, p.ID
	case "name":
		return p.Name, p.ID
	case "category":
		return p.Category, p.ID
	case "price":
		if p.Price == nil {
			return nil, p.ID
		}
		return *p.Price, p.ID
	case "active":
		if p.Active == nil {
			return false, p.ID
		}
		return *p.Active, p.ID
	case "description":
		return p.Description, p.ID
	case "created_at":
		return timeOrNil(p.CreatedAt), p.ID
	default:
		return p.ID.String(), p.ID
	}
}

func timeOrNil(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

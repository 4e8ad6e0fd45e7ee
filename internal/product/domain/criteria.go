package domain

import (
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
)

// ---------------- Implementaciones concretas ----------------

// Filtrado por categoría exacta
type CategoryCriteria struct {
	Category string
}

func (c CategoryCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "category", Op: sharedDomain.OpEq, Value: c.Category}}
}

// Filtrado por SKU exacto
type SKUCriteria struct {
	SKU string
}

func (c SKUCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "sku", Op: sharedDomain.OpEq, Value: c.SKU}}
}

// Filtrado por activo/inactivo
type ActiveCriteria struct {
	Active bool
}

func (c ActiveCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "active", Op: sharedDomain.OpEq, Value: c.Active}}
}

// Filtrado por rango de precio
type PriceRangeCriteria struct {
	Min *float64
	Max *float64
}

func (c PriceRangeCriteria) ToConditions() []sharedDomain.Criterion {
	var conds []sharedDomain.Criterion
	if c.Min != nil {
		conds = append(conds, sharedDomain.Criterion{Field: "price", Op: sharedDomain.OpGte, Value: *c.Min})
	}
	if c.Max != nil {
		conds = append(conds, sharedDomain.Criterion{Field: "price", Op: sharedDomain.OpLte, Value: *c.Max})
	}
	return conds
}

// Filtrado por nombre LIKE
type NameLikeCriteria struct {
	Name string
}

func (c NameLikeCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "name", Op: sharedDomain.OpLike, Value: "%" + c.Name + "%"}}
}

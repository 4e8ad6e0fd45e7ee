package domain

import (
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	"github.com/google/uuid"
)

// ---------------- Implementaciones concretas ----------------

// Filtrado por estado exacto
type StatusCriteria struct {
	Status ProposalStatus
}

func (c StatusCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "status", Op: sharedDomain.OpEq, Value: string(c.Status)}}
}

// Filtrado por cliente exacto
type CustomerCriteria struct {
	CustomerID uuid.UUID
}

func (c CustomerCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "customer_id", Op: sharedDomain.OpEq, Value: c.CustomerID.String()}}
}

// Filtrado por título LIKE
type TitleLikeCriteria struct {
	Title string
}

func (c TitleLikeCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "title", Op: sharedDomain.OpLike, Value: "%" + c.Title + "%"}}
}

// Filtrado por rango de importe
type ValueRangeCriteria struct {
	Min *float64
	Max *float64
}

func (c ValueRangeCriteria) ToConditions() []sharedDomain.Criterion {
	var conds []sharedDomain.Criterion
	if c.Min != nil {
		conds = append(conds, sharedDomain.Criterion{Field: "value", Op: sharedDomain.OpGte, Value: *c.Min})
	}
	if c.Max != nil {
		conds = append(conds, sharedDomain.Criterion{Field: "value", Op: sharedDomain.OpLte, Value: *c.Max})
	}
	return conds
}

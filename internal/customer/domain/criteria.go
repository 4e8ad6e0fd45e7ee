package domain

import (
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
)

// ---------------- Implementaciones concretas ----------------

// Filtrado por tier exacto
type TierCriteria struct {
	Tier CustomerTier
}

func (c TierCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "tier", Op: sharedDomain.OpEq, Value: string(c.Tier)}}
}

// Filtrado por estado exacto
type StatusCriteria struct {
	Status CustomerStatus
}

func (c StatusCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "status", Op: sharedDomain.OpEq, Value: string(c.Status)}}
}

// Filtrado por industria exacta
type IndustryCriteria struct {
	Industry string
}

func (c IndustryCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "industry", Op: sharedDomain.OpEq, Value: c.Industry}}
}

// Filtrado por nombre, insensible a mayúsculas
type NameLikeCriteria struct {
	Name string
}

func (c NameLikeCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "name", Op: sharedDomain.OpILike, Value: "%" + c.Name + "%"}}
}

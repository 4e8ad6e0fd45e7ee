package mocks

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	customerDomain "github.com/posalpro/posalpro/internal/customer/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
)

// InMemoryCustomerRepo es el doble de pruebas del repositorio de clientes.
// Implementa filtrado y proyección pero no keyset: los tests de servicio de
// clientes trabajan con páginas únicas; el recorrido por cursor se cubre con
// el repositorio de propuestas y los tests de integración.
type InMemoryCustomerRepo struct {
	mu        sync.Mutex
	Customers map[uuid.UUID]*customerDomain.Customer
	Outbox    []sharedDomain.OutboxEvent

	FailFetch error
}

func NewInMemoryCustomerRepo() *InMemoryCustomerRepo {
	return &InMemoryCustomerRepo{
		Customers: make(map[uuid.UUID]*customerDomain.Customer),
	}
}

func (r *InMemoryCustomerRepo) Create(ctx context.Context, c *customerDomain.Customer, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Customers[c.ID] = c
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCustomerRepo) Update(ctx context.Context, c *customerDomain.Customer, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Customers[c.ID]; !ok {
		return customerDomain.ErrCustomerNotFound
	}
	r.Customers[c.ID] = c
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCustomerRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Customers[id]; !ok {
		return customerDomain.ErrCustomerNotFound
	}
	delete(r.Customers, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryCustomerRepo) GetByID(ctx context.Context, id uuid.UUID) (*customerDomain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.Customers[id]
	if !ok {
		return nil, customerDomain.ErrCustomerNotFound
	}
	copied := *c
	return &copied, nil
}

func (r *InMemoryCustomerRepo) FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*customerDomain.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailFetch != nil {
		return nil, r.FailFetch
	}

	var matched []*customerDomain.Customer
	for _, c := range r.Customers {
		if matchesCustomer(c, criteria) {
			matched = append(matched, c)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		vi, idI := customerDomain.Anchor(matched[i], spec.Sort.Field)
		vj, idJ := customerDomain.Anchor(matched[j], spec.Sort.Field)
		if cmp := compareValues(vi, vj); cmp != 0 {
			if spec.Sort.Desc {
				return cmp > 0
			}
			return cmp < 0
		}
		if spec.Sort.Desc {
			return idI.String() > idJ.String()
		}
		return idI.String() < idJ.String()
	})

	if spec.Offset > 0 {
		if spec.Offset >= len(matched) {
			matched = nil
		} else {
			matched = matched[spec.Offset:]
		}
	}
	if spec.Limit > 0 && len(matched) > spec.Limit {
		matched = matched[:spec.Limit]
	}

	out := make([]*customerDomain.Customer, 0, len(matched))
	for _, c := range matched {
		out = append(out, projectCustomer(c, spec.Selection.Fields))
	}
	return out, nil
}

func (r *InMemoryCustomerRepo) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailFetch != nil {
		return 0, r.FailFetch
	}
	count := 0
	for _, c := range r.Customers {
		if matchesCustomer(c, criteria) {
			count++
		}
	}
	return count, nil
}

func matchesCustomer(c *customerDomain.Customer, criteria sharedDomain.Criteria) bool {
	if criteria == nil {
		return true
	}
	for _, cond := range criteria.ToConditions() {
		var got string
		switch cond.Field {
		case "tier":
			got = string(c.Tier)
		case "status":
			got = string(c.Status)
		case "industry":
			got = c.Industry
		case "name":
			got = c.Name
		default:
			return false
		}
		if want, ok := cond.Value.(string); ok {
			if cond.Op == sharedDomain.OpILike || cond.Op == sharedDomain.OpLike {
				if !likeMatch(got, want) {
					return false
				}
			} else if got != want {
				return false
			}
		}
	}
	return true
}

func likeMatch(got, pattern string) bool {
	return strings.Contains(strings.ToLower(got), strings.ToLower(strings.Trim(pattern, "%")))
}

func projectCustomer(c *customerDomain.Customer, fields []string) *customerDomain.Customer {
	out := &customerDomain.Customer{ID: c.ID}
	for _, f := range fields {
		switch f {
		case "name":
			out.Name = c.Name
		case "email":
			out.Email = c.Email
		case "tier":
			out.Tier = c.Tier
		case "industry":
			out.Industry = c.Industry
		case "status":
			out.Status = c.Status
		case "created_at":
			out.CreatedAt = c.CreatedAt
		case "updated_at":
			out.UpdatedAt = c.UpdatedAt
		}
	}
	return out
}

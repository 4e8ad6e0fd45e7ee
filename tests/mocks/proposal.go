package mocks

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	proposalDomain "github.com/posalpro/posalpro/internal/proposal/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/google/uuid"
)

// InMemoryProposalRepo simula ProposalRepository con outbox incluido.
type InMemoryProposalRepo struct {
	Proposals map[uuid.UUID]*proposalDomain.Proposal
	Outbox    []sharedDomain.OutboxEvent
	// FailFetch fuerza un error de almacén en FetchPage/CountByCriteria.
	FailFetch error
	mu        sync.Mutex
}

func NewInMemoryProposalRepo() *InMemoryProposalRepo {
	return &InMemoryProposalRepo{
		Proposals: make(map[uuid.UUID]*proposalDomain.Proposal),
		Outbox:    []sharedDomain.OutboxEvent{},
	}
}

// Create con outbox
func (r *InMemoryProposalRepo) Create(ctx context.Context, p *proposalDomain.Proposal, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Proposals[p.ID]; ok {
		return proposalDomain.ErrProposalAlreadyExists
	}
	r.Proposals[p.ID] = p
	r.Outbox = append(r.Outbox, evt)
	return nil
}

func (r *InMemoryProposalRepo) GetByID(ctx context.Context, id uuid.UUID) (*proposalDomain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.Proposals[id]
	if !ok {
		return nil, proposalDomain.ErrProposalNotFound
	}
	return p, nil
}

// Update con outbox
func (r *InMemoryProposalRepo) Update(ctx context.Context, p *proposalDomain.Proposal, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Proposals[p.ID]; !ok {
		return proposalDomain.ErrProposalNotFound
	}
	r.Proposals[p.ID] = p
	r.Outbox = append(r.Outbox, evt)
	return nil
}

// DeleteByID con outbox
func (r *InMemoryProposalRepo) DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.Proposals[id]; !ok {
		return proposalDomain.ErrProposalNotFound
	}
	delete(r.Proposals, id)
	r.Outbox = append(r.Outbox, evt)
	return nil
}

// FetchPage replica la semántica de los adaptadores reales: filtrado,
// ordenación total (campo, id) con NULLs al final, predicado keyset y
// ventana limit/offset, hidratando solo los campos proyectados.
func (r *InMemoryProposalRepo) FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*proposalDomain.Proposal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailFetch != nil {
		return nil, r.FailFetch
	}

	var list []*proposalDomain.Proposal
	for _, p := range r.Proposals {
		if matchesAll(p, criteria) {
			list = append(list, p)
		}
	}

	sort.SliceStable(list, func(i, j int) bool {
		return proposalLess(list[i], list[j], spec.Sort)
	})

	if spec.Keyset != nil {
		var after []*proposalDomain.Proposal
		for _, p := range list {
			if afterKeyset(p, spec.Keyset) {
				after = append(after, p)
			}
		}
		list = after
	}

	if spec.Offset > 0 {
		if spec.Offset >= len(list) {
			return []*proposalDomain.Proposal{}, nil
		}
		list = list[spec.Offset:]
	}
	if spec.Limit > 0 && len(list) > spec.Limit {
		list = list[:spec.Limit]
	}

	projected := make([]*proposalDomain.Proposal, 0, len(list))
	for _, p := range list {
		projected = append(projected, projectProposal(p, spec.Selection))
	}
	return projected, nil
}

func (r *InMemoryProposalRepo) CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.FailFetch != nil {
		return 0, r.FailFetch
	}

	count := 0
	for _, p := range r.Proposals {
		if matchesAll(p, criteria) {
			count++
		}
	}
	return count, nil
}

// ------------------- Helpers de ordenación y keyset -------------------

// sortValue devuelve el valor de ordenación de un campo; nil representa NULL.
func sortValue(p *proposalDomain.Proposal, field string) interface{} {
	v, _ := proposalDomain.Anchor(p, field)
	return v
}

// compareValues ordena dos valores del mismo tipo con NULLs al final.
// Devuelve -1, 0 o 1 en orden ascendente.
func compareValues(a, b interface{}) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return 1 // NULL ordena después de cualquier valor
	}
	if b == nil {
		return -1
	}

	switch av := a.(type) {
	case string:
		bv := b.(string)
		return strings.Compare(av, bv)
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case int64:
		bv := b.(int64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case time.Time:
		bv := b.(time.Time)
		switch {
		case av.Before(bv):
			return -1
		case av.After(bv):
			return 1
		}
		return 0
	default:
		return strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
	}
}

func proposalLess(a, b *proposalDomain.Proposal, s sharedQuery.Sort) bool {
	cmp := compareValues(sortValue(a, s.Field), sortValue(b, s.Field))
	if cmp != 0 {
		// Los NULLs van al final en ambas direcciones.
		av, bv := sortValue(a, s.Field), sortValue(b, s.Field)
		if av == nil || bv == nil {
			return cmp < 0
		}
		if s.Desc {
			return cmp > 0
		}
		return cmp < 0
	}
	if s.Desc {
		return a.ID.String() > b.ID.String()
	}
	return a.ID.String() < b.ID.String()
}

// afterKeyset indica si la fila va estrictamente después del ancla en el
// orden total activo.
func afterKeyset(p *proposalDomain.Proposal, k *sharedQuery.Keyset) bool {
	v := sortValue(p, k.Field)

	if k.SortValue == nil {
		// Solo quedan filas NULL, avanzando por id.
		if v != nil {
			return false
		}
		if k.Desc {
			return p.ID.String() < k.ID.String()
		}
		return p.ID.String() > k.ID.String()
	}

	if v == nil {
		return true // NULL ordena después de cualquier valor
	}

	cmp := compareValues(v, k.SortValue)
	if cmp == 0 {
		if k.Desc {
			return p.ID.String() < k.ID.String()
		}
		return p.ID.String() > k.ID.String()
	}
	if k.Desc {
		return cmp < 0
	}
	return cmp > 0
}

// projectProposal copia solo los campos proyectados.
func projectProposal(p *proposalDomain.Proposal, sel sharedQuery.Selection) *proposalDomain.Proposal {
	out := &proposalDomain.Proposal{}
	for _, f := range sel.Fields {
		switch f {
		case "id":
			out.ID = p.ID
		case "title":
			out.Title = p.Title
		case "status":
			out.Status = p.Status
		case "customer_id":
			out.CustomerID = p.CustomerID
		case "value":
			out.Value = p.Value
		case "currency":
			out.Currency = p.Currency
		case "due_date":
			out.DueDate = p.DueDate
		case "created_at":
			out.CreatedAt = p.CreatedAt
		case "updated_at":
			out.UpdatedAt = p.UpdatedAt
		}
	}
	return out
}

// ------------------- Filtrado -------------------

func matchesAll(p *proposalDomain.Proposal, criteria sharedDomain.Criteria) bool {
	if criteria == nil {
		return true
	}
	for _, cond := range criteria.ToConditions() {
		if !matchCriterion(p, cond) {
			return false
		}
	}
	return true
}

// matchCriterion evalúa un Criterion contra una propuesta en memoria.
func matchCriterion(p *proposalDomain.Proposal, crit sharedDomain.Criterion) bool {
	op := strings.ToUpper(strings.TrimSpace(string(crit.Op)))

	switch crit.Field {
	case "status":
		return string(p.Status) == fmt.Sprintf("%v", crit.Value)

	case "customer_id":
		if p.CustomerID == nil {
			return false
		}
		return p.CustomerID.String() == fmt.Sprintf("%v", crit.Value)

	case "title":
		val := fmt.Sprintf("%v", crit.Value)
		if op == "LIKE" || op == "ILIKE" {
			pattern := strings.Trim(val, "%")
			if op == "ILIKE" {
				return strings.Contains(strings.ToLower(p.Title), strings.ToLower(pattern))
			}
			return strings.Contains(p.Title, pattern)
		}
		return p.Title == val

	case "value":
		if p.Value == nil {
			return false
		}
		v, ok := crit.Value.(float64)
		if !ok {
			return true
		}
		switch op {
		case ">=":
			return *p.Value >= v
		case "<=":
			return *p.Value <= v
		case ">":
			return *p.Value > v
		case "<":
			return *p.Value < v
		case "=":
			return *p.Value == v
		default:
			return true
		}

	default:
		// criterio desconocido: no filtrar (mejor ser permisivo en mock)
		return true
	}
}

// ------------------- Outbox -------------------

func (r *InMemoryProposalRepo) FetchPendingOutbox(ctx context.Context, limit int) ([]sharedDomain.OutboxEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit > len(r.Outbox) {
		limit = len(r.Outbox)
	}
	pending := r.Outbox[:limit]
	return append([]sharedDomain.OutboxEvent(nil), pending...), nil
}

func (r *InMemoryProposalRepo) MarkOutboxProcessed(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, evt := range r.Outbox {
		if evt.ID == id {
			r.Outbox = append(r.Outbox[:i], r.Outbox[i+1:]...)
			return nil
		}
	}
	return proposalDomain.ErrProposalNotFound
}

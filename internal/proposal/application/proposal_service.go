package application

import (
	"context"
	"time"

	"github.com/posalpro/posalpro/internal/proposal/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	"github.com/posalpro/posalpro/shared/platform/analytics"
	sharedCache "github.com/posalpro/posalpro/shared/platform/cache"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/posalpro/posalpro/shared/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProposalService define los casos de uso relacionados con Proposal.
type ProposalService struct {
	repo    domain.ProposalRepository
	cache   sharedCache.Cache
	metrics analytics.QueryMetricsSink
	desc    *sharedQuery.Descriptor
	limits  sharedQuery.Limits
	log     *zap.Logger
}

// NewProposalService constructor
func NewProposalService(
	repo domain.ProposalRepository,
	cache sharedCache.Cache,
	metrics analytics.QueryMetricsSink,
	limits sharedQuery.Limits,
	log *zap.Logger,
) *ProposalService {
	return &ProposalService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		desc:    domain.Descriptor(),
		limits:  limits,
		log:     log,
	}
}

func (s *ProposalService) CreateProposal(
	ctx context.Context,
	title string,
	customerID *uuid.UUID,
	value *float64,
	currency string,
	dueDate *time.Time,
	internalNotes string,
) (*domain.Proposal, error) {
	if title == "" {
		return nil, domain.ErrInvalidProposal
	}

	now := time.Now().UTC()
	proposal := &domain.Proposal{
		ID:            uuid.New(),
		Title:         title,
		Status:        domain.ProposalDraft,
		CustomerID:    customerID,
		Value:         value,
		Currency:      currency,
		DueDate:       dueDate,
		CreatedAt:     &now,
		InternalNotes: internalNotes,
	}

	outboxEvent := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   proposal.ID.String(),
		EventType:     domain.ProposalCreated,
		Payload:       proposal,
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, proposal, outboxEvent); err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(proposal.ID), proposal, 60, s.log)

	return proposal, nil
}

func (s *ProposalService) UpdateProposal(ctx context.Context, p *domain.Proposal) error {
	now := time.Now().UTC()
	p.UpdatedAt = &now

	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   p.ID.String(),
		EventType:     domain.ProposalUpdated,
		Payload:       p,
		CreatedAt:     now,
	}

	if err := s.repo.Update(ctx, p, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(p.ID), p, 60, s.log)

	return nil
}

func (s *ProposalService) DeleteProposal(ctx context.Context, id uuid.UUID) error {
	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   id.String(),
		EventType:     domain.ProposalDeleted,
		Payload:       id,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, domain.CacheKeyByID(id), s.log)

	return nil
}

// GetProposal obtiene una propuesta (primero intenta desde cache).
func (s *ProposalService) GetProposal(ctx context.Context, id uuid.UUID) (*domain.Proposal, error) {
	// 1. Intentar cache
	if s.cache != nil {
		var p domain.Proposal
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &p); ok {
			return &p, nil
		}
	}

	// 2. Ir al repo con reintentos
	var proposal *domain.Proposal
	err := utils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		proposal, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	// 3. Actualizar cache en background sin bloquear la respuesta
	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(id), proposal, 60, s.log)

	return proposal, nil
}

// ListProposals ejecuta un listado paginado con proyección de campos.
// Toda la decisión (estrategia, cursor, proyección, métricas) vive en el
// ejecutor central; aquí solo se valida el filtro y se enchufa el repo.
func (s *ProposalService) ListProposals(
	ctx context.Context,
	criteria sharedDomain.Criteria,
	req sharedQuery.ListRequest,
) (*sharedQuery.Page[*domain.Proposal], error) {
	req.Entity = domain.EntityType

	if err := sharedQuery.ValidateCriteria(s.desc, criteria); err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, spec sharedQuery.FetchSpec) ([]*domain.Proposal, error) {
		return s.repo.FetchPage(ctx, criteria, spec)
	}
	count := func(ctx context.Context) (int, error) {
		return s.repo.CountByCriteria(ctx, criteria)
	}

	start := time.Now()
	page, err := sharedQuery.Paginate(ctx, s.desc, req, s.limits, fetch, count, domain.Anchor)
	if err != nil {
		return nil, err
	}

	analytics.AsyncLog(s.metrics, analytics.ListQueryMetric{
		Entity:           domain.EntityType,
		Mode:             string(page.Meta.PaginationType),
		ItemCount:        len(page.Items),
		FieldsRequested:  page.Meta.Optimization.FieldsRequested,
		FieldsAvailable:  page.Meta.Optimization.FieldsAvailable,
		FieldsReturned:   page.Meta.Optimization.FieldsReturned,
		ReductionPercent: page.Meta.Optimization.ReductionPercent,
		RejectedFields:   len(page.Meta.Optimization.RejectedFields),
		Duration:         time.Since(start),
		EventTime:        time.Now().UTC(),
	}, s.log)

	return page, nil
}

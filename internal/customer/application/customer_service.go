package application

import (
	"context"
	"time"

	"github.com/posalpro/posalpro/internal/customer/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	"github.com/posalpro/posalpro/shared/platform/analytics"
	sharedCache "github.com/posalpro/posalpro/shared/platform/cache"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/posalpro/posalpro/shared/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CustomerService define los casos de uso relacionados con Customer.
type CustomerService struct {
	repo    domain.CustomerRepository
	cache   sharedCache.Cache
	metrics analytics.QueryMetricsSink
	desc    *sharedQuery.Descriptor
	limits  sharedQuery.Limits
	log     *zap.Logger
}

// NewCustomerService constructor
func NewCustomerService(
	repo domain.CustomerRepository,
	cache sharedCache.Cache,
	metrics analytics.QueryMetricsSink,
	limits sharedQuery.Limits,
	log *zap.Logger,
) *CustomerService {
	return &CustomerService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		desc:    domain.Descriptor(),
		limits:  limits,
		log:     log,
	}
}

func (s *CustomerService) CreateCustomer(
	ctx context.Context,
	name, email, industry string,
	tier domain.CustomerTier,
) (*domain.Customer, error) {
	if name == "" || email == "" {
		return nil, domain.ErrInvalidCustomer
	}
	if tier == "" {
		tier = domain.TierBronze
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		Tier:      tier,
		Industry:  industry,
		Status:    domain.CustomerProspect,
		CreatedAt: &now,
		UpdatedAt: &now,
	}

	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   customer.ID.String(),
		EventType:     domain.CustomerCreated,
		Payload:       customer,
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, customer, evt); err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(customer.ID), customer, 60, s.log)

	return customer, nil
}

func (s *CustomerService) UpdateCustomer(ctx context.Context, c *domain.Customer) error {
	now := time.Now().UTC()
	c.UpdatedAt = &now

	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   c.ID.String(),
		EventType:     domain.CustomerUpdated,
		Payload:       c,
		CreatedAt:     now,
	}

	if err := s.repo.Update(ctx, c, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(c.ID), c, 60, s.log)

	return nil
}

func (s *CustomerService) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   id.String(),
		EventType:     domain.CustomerDeleted,
		Payload:       id,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, domain.CacheKeyByID(id), s.log)

	return nil
}

// GetCustomer obtiene un cliente (primero intenta desde cache).
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*domain.Customer, error) {
	if s.cache != nil {
		var c domain.Customer
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &c); ok {
			return &c, nil
		}
	}

	var customer *domain.Customer
	err := utils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		customer, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(id), customer, 60, s.log)

	return customer, nil
}

// ListCustomers ejecuta un listado paginado con proyección de campos.
func (s *CustomerService) ListCustomers(
	ctx context.Context,
	criteria sharedDomain.Criteria,
	req sharedQuery.ListRequest,
) (*sharedQuery.Page[*domain.Customer], error) {
	req.Entity = domain.EntityType

	if err := sharedQuery.ValidateCriteria(s.desc, criteria); err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, spec sharedQuery.FetchSpec) ([]*domain.Customer, error) {
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

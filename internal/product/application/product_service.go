package application

import (
	"context"
	"time"

	"github.com/posalpro/posalpro/internal/product/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	"github.com/posalpro/posalpro/shared/platform/analytics"
	sharedCache "github.com/posalpro/posalpro/shared/platform/cache"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/posalpro/posalpro/shared/utils"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProductService define los casos de uso relacionados con Product.
type ProductService struct {
	repo    domain.ProductRepository
	cache   sharedCache.Cache
	metrics analytics.QueryMetricsSink
	desc    *sharedQuery.Descriptor
	limits  sharedQuery.Limits
	log     *zap.Logger
}

// NewProductService constructor
func NewProductService(
	repo domain.ProductRepository,
	cache sharedCache.Cache,
	metrics analytics.QueryMetricsSink,
	limits sharedQuery.Limits,
	log *zap.Logger,
) *ProductService {
	return &ProductService{
		repo:    repo,
		cache:   cache,
		metrics: metrics,
		desc:    domain.Descriptor(),
		limits:  limits,
		log:     log,
	}
}

func (s *ProductService) CreateProduct(
	ctx context.Context,
	sku, name, category, description string,
	price *float64,
) (*domain.Product, error) {
	if sku == "" || name == "" {
		return nil, domain.ErrInvalidProduct
	}

	now := time.Now().UTC()
	active := true
	product := &domain.Product{
		ID:          uuid.New(),
		SKU:         sku,
		Name:        name,
		Category:    category,
		Price:       price,
		Active:      &active,
		Description: description,
		CreatedAt:   &now,
	}

	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   product.ID.String(),
		EventType:     domain.ProductCreated,
		Payload:       product,
		CreatedAt:     now,
	}

	if err := s.repo.Create(ctx, product, evt); err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(product.ID), product, 60, s.log)

	return product, nil
}

func (s *ProductService) UpdateProduct(ctx context.Context, p *domain.Product) error {
	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   p.ID.String(),
		EventType:     domain.ProductUpdated,
		Payload:       p,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.Update(ctx, p, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(p.ID), p, 60, s.log)

	return nil
}

func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	evt := sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: domain.EntityType,
		AggregateID:   id.String(),
		EventType:     domain.ProductDeleted,
		Payload:       id,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.repo.DeleteByID(ctx, id, evt); err != nil {
		return err
	}

	sharedCache.AsyncCacheDelete(ctx, s.cache, domain.CacheKeyByID(id), s.log)

	return nil
}

// GetProduct obtiene un producto (primero intenta desde cache).
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	if s.cache != nil {
		var p domain.Product
		if ok, _ := s.cache.Get(ctx, domain.CacheKeyByID(id), &p); ok {
			return &p, nil
		}
	}

	var product *domain.Product
	err := utils.Retry(ctx, 3, 100*time.Millisecond, func() error {
		var err error
		product, err = s.repo.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	sharedCache.AsyncCacheSet(ctx, s.cache, domain.CacheKeyByID(id), product, 60, s.log)

	return product, nil
}

// ListProducts ejecuta un listado paginado con proyección de campos.
func (s *ProductService) ListProducts(
	ctx context.Context,
	criteria sharedDomain.Criteria,
	req sharedQuery.ListRequest,
) (*sharedQuery.Page[*domain.Product], error) {
	req.Entity = domain.EntityType

	if err := sharedQuery.ValidateCriteria(s.desc, criteria); err != nil {
		return nil, err
	}

	fetch := func(ctx context.Context, spec sharedQuery.FetchSpec) ([]*domain.Product, error) {
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

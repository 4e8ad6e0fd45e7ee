package domain

import (
	"context"
	"errors"
	"fmt"

	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/google/uuid"
)

// ---------- Errores de dominio ----------
var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductAlreadyExists = errors.New("product already exists")
	ErrInvalidProduct       = errors.New("invalid product")
)

// ---------- Interfaces (Ports) ----------

// ProductRepository define las operaciones persistentes para Product.
type ProductRepository interface {
	Create(ctx context.Context, p *Product, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrProductNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// Debe devolver ErrProductNotFound si el producto no existe.
	Update(ctx context.Context, p *Product, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrProductNotFound si el producto no existe.
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error

	// FetchPage emite UNA consulta de página aplicando la proyección y, si
	// hay ancla, el predicado de continuación keyset.
	FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*Product, error)

	CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func CacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("product:id:%s", id.String())
}

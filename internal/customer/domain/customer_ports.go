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
	ErrCustomerNotFound      = errors.New("customer not found")
	ErrCustomerAlreadyExists = errors.New("customer already exists")
	ErrInvalidCustomer       = errors.New("invalid customer")
)

// ---------- Interfaces (Ports) ----------

// CustomerRepository define las operaciones persistentes para Customer.
type CustomerRepository interface {
	Create(ctx context.Context, c *Customer, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrCustomerNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// Debe devolver ErrCustomerNotFound si el cliente no existe.
	Update(ctx context.Context, c *Customer, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrCustomerNotFound si el cliente no existe.
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error

	// FetchPage emite UNA consulta de página aplicando la proyección y, si
	// hay ancla, el predicado de continuación keyset.
	FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*Customer, error)

	CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

func CacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("customer:id:%s", id.String())
}

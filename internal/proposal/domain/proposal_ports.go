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
	ErrProposalNotFound      = errors.New("proposal not found")
	ErrProposalAlreadyExists = errors.New("proposal already exists")
	ErrInvalidProposal       = errors.New("invalid proposal")
)

// ---------- Interfaces (Ports) ----------

// ProposalRepository define las operaciones persistentes para Proposal.
type ProposalRepository interface {
	// Debe devolver ErrProposalAlreadyExists si la entidad ya existe.
	Create(ctx context.Context, p *Proposal, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrProposalNotFound si no existe.
	GetByID(ctx context.Context, id uuid.UUID) (*Proposal, error)

	// Debe devolver ErrProposalNotFound si la propuesta no existe.
	Update(ctx context.Context, p *Proposal, evt sharedDomain.OutboxEvent) error

	// Debe devolver ErrProposalNotFound si la propuesta no existe.
	DeleteByID(ctx context.Context, id uuid.UUID, evt sharedDomain.OutboxEvent) error

	// FetchPage emite UNA consulta de página (rango keyset o skip/limit)
	// aplicando la proyección del spec. Las filas vuelven en el orden
	// (campo de orden, id) pedido; el ejecutor central decide todo lo demás.
	FetchPage(ctx context.Context, criteria sharedDomain.Criteria, spec sharedQuery.FetchSpec) ([]*Proposal, error)

	// CountByCriteria es la consulta de total del modo offset.
	CountByCriteria(ctx context.Context, criteria sharedDomain.Criteria) (int, error)
}

// ---------- Helpers comunes (cache keys, etc.) ----------

// CacheKeyByID forma una key consistente para cache usando ID.
func CacheKeyByID(id uuid.UUID) string {
	return fmt.Sprintf("proposal:id:%s", id.String())
}

package relayer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	proposalDomain "github.com/posalpro/posalpro/internal/proposal/domain"
	"github.com/posalpro/posalpro/internal/shared/infra/relayer"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	"github.com/posalpro/posalpro/tests/mocks"
)

type failingPublisher struct {
	err error
}

func (p *failingPublisher) Publish(ctx context.Context, event interface{}) error {
	return p.err
}

func pendingEvent(title string) sharedDomain.OutboxEvent {
	id := uuid.New()
	return sharedDomain.OutboxEvent{
		ID:            uuid.New(),
		AggregateType: "proposal",
		AggregateID:   id.String(),
		EventType:     proposalDomain.ProposalCreated,
		Payload:       proposalDomain.Proposal{ID: id, Title: title},
		CreatedAt:     time.Now().UTC(),
	}
}

func TestProcessBatch_PublishesTypedAndMarks(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	repo.Outbox = append(repo.Outbox, pendingEvent("Renovación anual"), pendingEvent("Ampliación"))

	publisher := &mocks.DummyPublisher{}
	worker := relayer.NewOutboxWorker(repo, publisher, proposalDomain.NewEventRegistry(), time.Second, 10, zap.NewNop())

	worker.ProcessBatch(context.Background())

	require.Len(t, publisher.Published, 2)
	// El payload se re-hidrata al tipo de dominio antes de publicarse.
	assert.Contains(t, publisher.Published[0], `"title":"Renovación anual"`)
	assert.Contains(t, publisher.Published[1], `"title":"Ampliación"`)

	// Marcados como procesados: un segundo batch no hace nada.
	assert.Empty(t, repo.Outbox)
	worker.ProcessBatch(context.Background())
	assert.Len(t, publisher.Published, 2)
}

func TestProcessBatch_UnknownEventTypeIsSkipped(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	evt := pendingEvent("fantasma")
	evt.EventType = "ghost.event"
	repo.Outbox = append(repo.Outbox, evt)

	publisher := &mocks.DummyPublisher{}
	worker := relayer.NewOutboxWorker(repo, publisher, proposalDomain.NewEventRegistry(), time.Second, 10, zap.NewNop())

	worker.ProcessBatch(context.Background())

	assert.Empty(t, publisher.Published)
	// Sin metadata no se publica ni se marca: queda para inspección manual.
	assert.Len(t, repo.Outbox, 1)
}

func TestProcessBatch_PublishFailureLeavesEventPending(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	repo.Outbox = append(repo.Outbox, pendingEvent("reintenta"))

	worker := relayer.NewOutboxWorker(repo,
		&failingPublisher{err: errors.New("broker down")},
		proposalDomain.NewEventRegistry(), time.Second, 10, zap.NewNop())

	worker.ProcessBatch(context.Background())

	// El evento no se marca procesado y se reintentará en el siguiente tick.
	require.Len(t, repo.Outbox, 1)

	publisher := &mocks.DummyPublisher{}
	retry := relayer.NewOutboxWorker(repo, publisher, proposalDomain.NewEventRegistry(), time.Second, 10, zap.NewNop())
	retry.ProcessBatch(context.Background())

	assert.Len(t, publisher.Published, 1)
	assert.Empty(t, repo.Outbox)
}

func TestProcessBatch_RespectsBatchSize(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	for i := 0; i < 5; i++ {
		repo.Outbox = append(repo.Outbox, pendingEvent("lote"))
	}

	publisher := &mocks.DummyPublisher{}
	worker := relayer.NewOutboxWorker(repo, publisher, proposalDomain.NewEventRegistry(), time.Second, 2, zap.NewNop())

	worker.ProcessBatch(context.Background())
	assert.Len(t, publisher.Published, 2)
	assert.Len(t, repo.Outbox, 3)
}

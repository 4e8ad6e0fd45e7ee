package contracts

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/posalpro/posalpro/internal/proposal/application"
	proposalDomain "github.com/posalpro/posalpro/internal/proposal/domain"
	"github.com/posalpro/posalpro/internal/shared/infra/events"
	"github.com/posalpro/posalpro/internal/shared/infra/relayer"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/posalpro/posalpro/tests/mocks"
)

// TestConsumerContract_OutboxToSubscriber fija el recorrido completo de un
// evento: escritura CRUD -> fila de outbox -> relayer -> bus -> consumidor.
// Lo que recibe el consumidor es el evento de dominio tipado, en JSON.
func TestConsumerContract_OutboxToSubscriber(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service := application.NewProposalService(repo, mocks.NewDummyCache(), nil, sharedQuery.DefaultLimits(), zap.NewNop())

	bus := events.NewInMemoryEventBus("posalpro.events")
	inbox := bus.Subscribe(8)

	value := 4200.0
	created, err := service.CreateProposal(context.Background(), "Integración CRM", nil, &value, "EUR", nil, "")
	require.NoError(t, err)
	require.Len(t, repo.Outbox, 1)

	worker := relayer.NewOutboxWorker(repo, bus, proposalDomain.NewEventRegistry(), time.Second, 10, zap.NewNop())
	worker.ProcessBatch(context.Background())

	select {
	case raw := <-inbox:
		payload, ok := raw.([]byte)
		require.True(t, ok, "el bus entrega el evento serializado en JSON")

		var got proposalDomain.Proposal
		require.NoError(t, json.Unmarshal(payload, &got))
		assert.Equal(t, created.ID, got.ID)
		assert.Equal(t, "Integración CRM", got.Title)
		assert.Equal(t, proposalDomain.ProposalDraft, got.Status)
	case <-time.After(time.Second):
		t.Fatal("el consumidor no recibió el evento")
	}

	// La fila de outbox quedó marcada: no hay re-entrega.
	assert.Empty(t, repo.Outbox)
}

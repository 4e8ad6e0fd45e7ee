package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/posalpro/posalpro/internal/proposal/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/posalpro/posalpro/tests/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(repo *mocks.InMemoryProposalRepo) (*ProposalService, *mocks.DummyMetricsSink) {
	metrics := &mocks.DummyMetricsSink{}
	svc := NewProposalService(repo, mocks.NewDummyCache(), metrics, sharedQuery.DefaultLimits(), zap.NewNop())
	return svc, metrics
}

func TestCreateProposal_Success(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)

	value := 12500.0
	proposal, err := service.CreateProposal(context.Background(), "Propuesta Q3", nil, &value, "EUR", nil, "nota interna")
	assert.NoError(t, err)
	assert.NotNil(t, proposal)
	assert.Equal(t, "Propuesta Q3", proposal.Title)
	assert.Equal(t, domain.ProposalDraft, proposal.Status)

	// ✅ Verificar que se creó un evento Outbox
	assert.Len(t, repo.Outbox, 1)
	assert.Equal(t, domain.ProposalCreated, repo.Outbox[0].EventType)
	assert.Equal(t, proposal.ID.String(), repo.Outbox[0].AggregateID)
}

func TestCreateProposal_EmptyTitle(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)

	_, err := service.CreateProposal(context.Background(), "", nil, nil, "USD", nil, "")
	assert.ErrorIs(t, err, domain.ErrInvalidProposal)
	assert.Empty(t, repo.Outbox)
}

func TestGetProposal_NotFound(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)

	_, err := service.GetProposal(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)
}

func TestGetProposal_CacheHit(t *testing.T) {
	id := uuid.New()
	proposal := &domain.Proposal{ID: id, Title: "En cache", Status: domain.ProposalDraft}

	cache := mocks.NewDummyCache()
	cache.SetForTest(domain.CacheKeyByID(id), proposal)

	repo := mocks.NewInMemoryProposalRepo()
	service := NewProposalService(repo, cache, nil, sharedQuery.DefaultLimits(), zap.NewNop())

	p, err := service.GetProposal(context.Background(), id)
	assert.NoError(t, err)
	assert.NotNil(t, p)
	assert.Equal(t, "En cache", p.Title)
}

func TestUpdateProposal_Success(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)

	proposal, _ := service.CreateProposal(context.Background(), "Original", nil, nil, "USD", nil, "")
	proposal.Submit()

	err := service.UpdateProposal(context.Background(), proposal)
	assert.NoError(t, err)

	p2, _ := repo.GetByID(context.Background(), proposal.ID)
	assert.Equal(t, domain.ProposalSubmitted, p2.Status)
	assert.NotNil(t, p2.UpdatedAt)

	// ✅ Verificar que se creó un evento Outbox adicional
	assert.Len(t, repo.Outbox, 2)
	assert.Equal(t, domain.ProposalUpdated, repo.Outbox[1].EventType)
}

func TestDeleteProposal_Success(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)

	proposal, _ := service.CreateProposal(context.Background(), "A borrar", nil, nil, "USD", nil, "")

	err := service.DeleteProposal(context.Background(), proposal.ID)
	assert.NoError(t, err)

	_, err = repo.GetByID(context.Background(), proposal.ID)
	assert.ErrorIs(t, err, domain.ErrProposalNotFound)

	assert.Len(t, repo.Outbox, 2)
	assert.Equal(t, domain.ProposalDeleted, repo.Outbox[1].EventType)
}

// ----------------- ListProposals -----------------

func seedProposals(t *testing.T, service *ProposalService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		value := float64(1000 * (i + 1))
		_, err := service.CreateProposal(context.Background(), "Propuesta", nil, &value, "USD", nil, "")
		require.NoError(t, err)
	}
}

func TestListProposals_DefaultFieldsAndCursor(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)
	seedProposals(t, service, 5)

	page, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, page.Items, 3)

	info, ok := page.Pagination.(sharedQuery.CursorInfo)
	require.True(t, ok, "sin señales explícitas el modo debe ser cursor")
	assert.True(t, info.HasNextPage)
	assert.NotEmpty(t, info.NextCursor)

	// Conjunto por defecto: title viaja, value no.
	for _, p := range page.Items {
		assert.NotEmpty(t, p.Title)
		assert.Nil(t, p.Value)
	}
}

func TestListProposals_WalkAllPages(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)
	seedProposals(t, service, 7)

	seen := make(map[uuid.UUID]bool)
	cursor := ""
	for {
		page, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{Limit: 3, Cursor: cursor})
		require.NoError(t, err)

		for _, p := range page.Items {
			assert.False(t, seen[p.ID], "item repetido entre páginas: %s", p.ID)
			seen[p.ID] = true
		}

		info := page.Pagination.(sharedQuery.CursorInfo)
		if !info.HasNextPage {
			break
		}
		cursor = info.NextCursor
	}

	assert.Len(t, seen, 7)
}

func TestListProposals_OffsetMode(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)
	seedProposals(t, service, 5)

	page, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)

	info, ok := page.Pagination.(sharedQuery.OffsetInfo)
	require.True(t, ok)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 5, info.Total)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNextPage)
}

func TestListProposals_MalformedCursor(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)
	seedProposals(t, service, 2)

	_, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{Cursor: "no-es-un-cursor"})
	assert.ErrorIs(t, err, sharedQuery.ErrMalformedCursor)
}

func TestListProposals_InvalidSortField(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)
	seedProposals(t, service, 2)

	_, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{
		Sort: sharedQuery.Sort{Field: "internal_notes"},
	})
	assert.ErrorIs(t, err, sharedQuery.ErrInvalidFilter)
}

func TestListProposals_StoreUnavailable(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, _ := newTestService(repo)
	seedProposals(t, service, 2)

	cause := errors.New("connection refused")
	repo.FailFetch = cause

	_, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{})
	assert.True(t, sharedQuery.IsRetryable(err))
	assert.ErrorIs(t, err, cause)
}

func TestListProposals_MetricsLogged(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	service, metrics := newTestService(repo)
	seedProposals(t, service, 3)

	page, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{
		Fields: []string{"id", "title", "nope"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"nope"}, page.Meta.Optimization.RejectedFields)

	// La métrica se registra en background.
	assert.Eventually(t, func() bool {
		return metrics.Count() == 1
	}, time.Second, 10*time.Millisecond)
}

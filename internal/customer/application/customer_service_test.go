package application

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/posalpro/posalpro/internal/customer/domain"
	sharedDomain "github.com/posalpro/posalpro/shared/domain"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/posalpro/posalpro/tests/mocks"
)

func newTestService(repo *mocks.InMemoryCustomerRepo) *CustomerService {
	return NewCustomerService(repo, mocks.NewDummyCache(), nil, sharedQuery.DefaultLimits(), zap.NewNop())
}

func TestCreateCustomer_DefaultsToBronzeProspect(t *testing.T) {
	repo := mocks.NewInMemoryCustomerRepo()
	service := newTestService(repo)

	c, err := service.CreateCustomer(context.Background(), "Acme Corp", "ops@acme.example", "manufacturing", "")
	require.NoError(t, err)
	assert.Equal(t, domain.TierBronze, c.Tier)
	assert.Equal(t, domain.CustomerProspect, c.Status)

	require.Len(t, repo.Outbox, 1)
	assert.Equal(t, domain.CustomerCreated, repo.Outbox[0].EventType)
	assert.Equal(t, c.ID.String(), repo.Outbox[0].AggregateID)
}

func TestCreateCustomer_RequiresNameAndEmail(t *testing.T) {
	repo := mocks.NewInMemoryCustomerRepo()
	service := newTestService(repo)

	_, err := service.CreateCustomer(context.Background(), "", "ops@acme.example", "", domain.TierGold)
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = service.CreateCustomer(context.Background(), "Acme", "", "", domain.TierGold)
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
	assert.Empty(t, repo.Outbox)
}

func TestUpdateCustomer_UpgradeEmitsEvent(t *testing.T) {
	repo := mocks.NewInMemoryCustomerRepo()
	service := newTestService(repo)

	c, err := service.CreateCustomer(context.Background(), "Acme Corp", "ops@acme.example", "", domain.TierSilver)
	require.NoError(t, err)

	require.True(t, c.Upgrade(domain.TierPlatinum))
	require.NoError(t, service.UpdateCustomer(context.Background(), c))

	require.Len(t, repo.Outbox, 2)
	assert.Equal(t, domain.CustomerUpdated, repo.Outbox[1].EventType)

	// Directo contra el repositorio: la escritura de cache es asíncrona.
	stored := repo.Customers[c.ID]
	require.NotNil(t, stored)
	assert.Equal(t, domain.TierPlatinum, stored.Tier)
}

func TestDeleteCustomer_NotFound(t *testing.T) {
	repo := mocks.NewInMemoryCustomerRepo()
	service := newTestService(repo)

	err := service.DeleteCustomer(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestListCustomers_TierFilterAndProjection(t *testing.T) {
	repo := mocks.NewInMemoryCustomerRepo()
	service := newTestService(repo)

	seed := []struct {
		name string
		tier domain.CustomerTier
	}{
		{"Acme", domain.TierGold},
		{"Globex", domain.TierGold},
		{"Initech", domain.TierBronze},
	}
	for _, s := range seed {
		_, err := service.CreateCustomer(context.Background(), s.name, s.name+"@example.com", "tech", s.tier)
		require.NoError(t, err)
	}

	page, err := service.ListCustomers(context.Background(),
		domain.TierCriteria{Tier: domain.TierGold},
		sharedQuery.ListRequest{Fields: []string{"id", "name", "tier"}},
	)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)

	for _, c := range page.Items {
		assert.Equal(t, domain.TierGold, c.Tier)
		assert.NotEmpty(t, c.Name)
		// email no proyectado
		assert.Empty(t, c.Email)
	}

	info, ok := page.Pagination.(sharedQuery.CursorInfo)
	require.True(t, ok)
	assert.False(t, info.HasNextPage)
}

func TestListCustomers_InvalidFilterField(t *testing.T) {
	repo := mocks.NewInMemoryCustomerRepo()
	service := newTestService(repo)

	_, err := service.ListCustomers(context.Background(),
		badFieldCriteria{}, sharedQuery.ListRequest{})
	assert.ErrorIs(t, err, sharedQuery.ErrInvalidFilter)
}

type badFieldCriteria struct{}

func (badFieldCriteria) ToConditions() []sharedDomain.Criterion {
	return []sharedDomain.Criterion{{Field: "password", Op: sharedDomain.OpEq}}
}

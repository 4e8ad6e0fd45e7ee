package integration

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	_ "modernc.org/sqlite"

	"github.com/posalpro/posalpro/internal/proposal/application"
	"github.com/posalpro/posalpro/internal/proposal/domain"
	proposalSQLite "github.com/posalpro/posalpro/internal/proposal/infra/outbound/db/sqlite"
	sharedSQLite "github.com/posalpro/posalpro/internal/shared/infra/db/sqlite"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/posalpro/posalpro/tests/mocks"
)

// newSQLiteService levanta el stack real sobre SQLite en memoria:
// repositorio de verdad, SQL de verdad, solo cache y métricas dummy.
func newSQLiteService(t *testing.T) (*application.ProposalService, *sql.DB) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// En memoria cada conexión del pool vería una base distinta.
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, proposalSQLite.InitSQLite(db))

	repo := proposalSQLite.NewProposalRepoSQLite(db)
	service := application.NewProposalService(repo, mocks.NewDummyCache(), nil, sharedQuery.DefaultLimits(), zap.NewNop())
	return service, db
}

func seedProposals(t *testing.T, service *application.ProposalService, values []*float64) []uuid.UUID {
	t.Helper()

	ids := make([]uuid.UUID, 0, len(values))
	for i, v := range values {
		p, err := service.CreateProposal(context.Background(),
			"Propuesta "+string(rune('A'+i)), nil, v, "EUR", nil, "")
		require.NoError(t, err)
		ids = append(ids, p.ID)
		// CreatedAt distintos para que el orden por defecto sea estable.
		time.Sleep(2 * time.Millisecond)
	}
	return ids
}

func fptr(f float64) *float64 { return &f }

// TestCreate_WritesOutboxEvent comprueba que crear una propuesta deja el
// evento en la tabla outbox, con el agregado correcto, listo para el relayer.
func TestCreate_WritesOutboxEvent(t *testing.T) {
	service, db := newSQLiteService(t)

	p, err := service.CreateProposal(context.Background(),
		"Oferta Acme", nil, fptr(900), "EUR", nil, "")
	require.NoError(t, err)

	outbox := sharedSQLite.NewOutboxRepoSQLite(db)
	events, err := outbox.FetchPendingOutbox(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, events, 1)

	evt := events[0]
	assert.Equal(t, domain.EntityType, evt.AggregateType)
	assert.Equal(t, p.ID.String(), evt.AggregateID)
	assert.Equal(t, domain.ProposalCreated, evt.EventType)
}

// TestKeysetWalk_ValueAscWithNulls recorre todo el conjunto por cursor
// ordenando por un campo anulable y con valores empatados: no debe saltarse
// ni repetir ninguna fila, y los NULL deben salir al final.
func TestKeysetWalk_ValueAscWithNulls(t *testing.T) {
	service, _ := newSQLiteService(t)

	// Dos NULL, un empate en 200 y valores sueltos.
	seeded := seedProposals(t, service, []*float64{
		fptr(300), nil, fptr(200), fptr(50), fptr(200), nil, fptr(100),
	})

	req := sharedQuery.ListRequest{
		Fields: []string{"id", "title", "value"},
		Sort:   sharedQuery.Sort{Field: "value"},
		Limit:  2,
	}

	seen := map[uuid.UUID]bool{}
	var ordered []*domain.Proposal
	pages := 0
	for {
		page, err := service.ListProposals(context.Background(), nil, req)
		require.NoError(t, err)
		pages++

		for _, p := range page.Items {
			assert.False(t, seen[p.ID], "fila repetida entre páginas: %s", p.ID)
			seen[p.ID] = true
			ordered = append(ordered, p)
		}

		info, ok := page.Pagination.(sharedQuery.CursorInfo)
		require.True(t, ok, "se esperaba paginación por cursor")
		if !info.HasNextPage {
			break
		}
		require.NotEmpty(t, info.NextCursor)
		req.Cursor = info.NextCursor
	}

	require.Len(t, ordered, len(seeded), "el recorrido debe cubrir todas las filas")
	assert.Equal(t, 4, pages) // 7 filas a 2 por página

	// Orden ascendente con NULL al final.
	wantValues := []float64{50, 100, 200, 200, 300}
	for i, want := range wantValues {
		require.NotNil(t, ordered[i].Value, "posición %d debería tener valor", i)
		assert.Equal(t, want, *ordered[i].Value)
	}
	assert.Nil(t, ordered[5].Value)
	assert.Nil(t, ordered[6].Value)
}

// TestKeysetWalk_DefaultSortDesc recorre con la ordenación por defecto
// (created_at desc) y verifica el orden cronológico inverso.
func TestKeysetWalk_DefaultSortDesc(t *testing.T) {
	service, _ := newSQLiteService(t)
	seeded := seedProposals(t, service, []*float64{fptr(1), fptr(2), fptr(3), fptr(4), fptr(5)})

	req := sharedQuery.ListRequest{Limit: 2}

	var got []uuid.UUID
	for {
		page, err := service.ListProposals(context.Background(), nil, req)
		require.NoError(t, err)
		for _, p := range page.Items {
			got = append(got, p.ID)
		}
		info := page.Pagination.(sharedQuery.CursorInfo)
		if !info.HasNextPage {
			break
		}
		req.Cursor = info.NextCursor
	}

	require.Len(t, got, len(seeded))
	for i := range seeded {
		// El más reciente primero.
		assert.Equal(t, seeded[len(seeded)-1-i], got[i])
	}
}

// TestOffsetMode_Totals pide una página numerada y comprueba los totales.
func TestOffsetMode_Totals(t *testing.T) {
	service, _ := newSQLiteService(t)
	seedProposals(t, service, []*float64{fptr(1), fptr(2), fptr(3), fptr(4), fptr(5)})

	page, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{
		Page:  2,
		Limit: 2,
	})
	require.NoError(t, err)

	info, ok := page.Pagination.(sharedQuery.OffsetInfo)
	require.True(t, ok, "se esperaba paginación por offset")
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 5, info.Total)
	assert.Equal(t, 3, info.TotalPages)
	assert.True(t, info.HasNextPage)
	assert.Len(t, page.Items, 2)
}

// TestProjection_OnlySelectedColumnsHydrated comprueba que las columnas no
// proyectadas llegan a cero, no con el valor guardado.
func TestProjection_OnlySelectedColumnsHydrated(t *testing.T) {
	service, _ := newSQLiteService(t)
	seedProposals(t, service, []*float64{fptr(750)})

	page, err := service.ListProposals(context.Background(), nil, sharedQuery.ListRequest{
		Fields: []string{"title"},
	})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)

	item := page.Items[0]
	assert.NotEqual(t, uuid.Nil, item.ID) // id siempre presente
	assert.NotEmpty(t, item.Title)
	// created_at se hidrata aunque no se pidiera: es el campo de orden y el
	// ancla del cursor se lee de él.
	assert.NotNil(t, item.CreatedAt)
	assert.Nil(t, item.Value, "value no fue proyectado")
	assert.Empty(t, item.Currency)
}

// TestCriteria_FilterCombinesWithKeyset aplica un filtro de rango junto con
// el cursor para cubrir la combinación WHERE + claúsula de keyset.
func TestCriteria_FilterCombinesWithKeyset(t *testing.T) {
	service, _ := newSQLiteService(t)
	seedProposals(t, service, []*float64{
		fptr(10), fptr(20), fptr(30), fptr(40), fptr(50), fptr(60),
	})

	criteria := domain.ValueRangeCriteria{Min: fptr(20), Max: fptr(50)}
	req := sharedQuery.ListRequest{
		Sort:  sharedQuery.Sort{Field: "value"},
		Limit: 2,
	}

	var values []float64
	for {
		page, err := service.ListProposals(context.Background(), criteria, req)
		require.NoError(t, err)
		for _, p := range page.Items {
			require.NotNil(t, p.Value)
			values = append(values, *p.Value)
		}
		info := page.Pagination.(sharedQuery.CursorInfo)
		if !info.HasNextPage {
			break
		}
		req.Cursor = info.NextCursor
	}

	assert.Equal(t, []float64{20, 30, 40, 50}, values)
}

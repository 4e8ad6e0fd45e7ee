package contracts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/posalpro/posalpro/internal/proposal/application"
	proposalHTTP "github.com/posalpro/posalpro/internal/proposal/infra/inbound/http"
	sharedQuery "github.com/posalpro/posalpro/shared/platform/query"
	"github.com/posalpro/posalpro/tests/mocks"
)

// Estos tests fijan el contrato HTTP del listado: la forma del sobre JSON y
// los códigos de estado que los clientes ya interpretan. Cambiarlos rompe
// consumidores, no solo tests.

func newTestRouter(repo *mocks.InMemoryProposalRepo) (*gin.Engine, *application.ProposalService) {
	gin.SetMode(gin.TestMode)

	service := application.NewProposalService(repo, mocks.NewDummyCache(), nil, sharedQuery.DefaultLimits(), zap.NewNop())

	router := gin.New()
	proposalHTTP.RegisterProposalRoutes(router, proposalHTTP.NewProposalHandler(service))
	return router, service
}

func seed(t *testing.T, service *application.ProposalService, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		v := float64((i + 1) * 100)
		_, err := service.CreateProposal(context.Background(), fmt.Sprintf("Propuesta %d", i), nil, &v, "EUR", nil, "")
		require.NoError(t, err)
	}
}

func doGET(router *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	router.ServeHTTP(w, req)
	return w
}

func TestListContract_Envelope(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	router, service := newTestRouter(repo)
	seed(t, service, 5)

	w := doGET(router, "/proposals/?limit=2&fields=id,title")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Items      []map[string]interface{} `json:"items"`
			Pagination struct {
				Limit       int    `json:"limit"`
				ItemCount   int    `json:"itemCount"`
				HasNextPage bool   `json:"hasNextPage"`
				NextCursor  string `json:"nextCursor"`
			} `json:"pagination"`
			Meta struct {
				PaginationType string `json:"paginationType"`
				Optimization   struct {
					FieldsRequested int      `json:"fieldsRequested"`
					FieldsReturned  int      `json:"fieldsReturned"`
					RejectedFields  []string `json:"rejectedFields"`
				} `json:"optimizationMetrics"`
			} `json:"meta"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Len(t, body.Data.Items, 2)
	assert.Equal(t, 2, body.Data.Pagination.Limit)
	assert.Equal(t, 2, body.Data.Pagination.ItemCount)
	assert.True(t, body.Data.Pagination.HasNextPage)
	assert.NotEmpty(t, body.Data.Pagination.NextCursor)
	assert.Equal(t, "cursor", body.Data.Meta.PaginationType)
	assert.Equal(t, 2, body.Data.Meta.Optimization.FieldsRequested)

	// Los campos no proyectados no deben viajar en el JSON.
	for _, item := range body.Data.Items {
		assert.Contains(t, item, "id")
		assert.Contains(t, item, "title")
		assert.NotContains(t, item, "value")
		assert.NotContains(t, item, "status")
		// internal_notes jamás se serializa, proyectado o no.
		assert.NotContains(t, item, "internal_notes")
	}
}

func TestListContract_OffsetEnvelope(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	router, service := newTestRouter(repo)
	seed(t, service, 5)

	w := doGET(router, "/proposals/?page=2&limit=2")
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Data struct {
			Pagination struct {
				Page        int  `json:"page"`
				Total       int  `json:"total"`
				TotalPages  int  `json:"totalPages"`
				HasNextPage bool `json:"hasNextPage"`
			} `json:"pagination"`
			Meta struct {
				PaginationType string `json:"paginationType"`
			} `json:"meta"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, "offset", body.Data.Meta.PaginationType)
	assert.Equal(t, 2, body.Data.Pagination.Page)
	assert.Equal(t, 5, body.Data.Pagination.Total)
	assert.Equal(t, 3, body.Data.Pagination.TotalPages)
	assert.True(t, body.Data.Pagination.HasNextPage)
}

func TestListContract_MalformedCursorRestartsPagination(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	router, _ := newTestRouter(repo)

	w := doGET(router, "/proposals/?cursor=esto-no-es-un-cursor")
	require.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		Error struct {
			Message           string `json:"message"`
			RestartPagination bool   `json:"restartPagination"`
			Retryable         bool   `json:"retryable"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Error.RestartPagination, "el cliente debe reiniciar sin cursor")
	assert.False(t, body.Error.Retryable)
	assert.NotEmpty(t, body.Error.Message)
}

func TestListContract_InvalidSortFieldIsBadRequest(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	router, _ := newTestRouter(repo)

	w := doGET(router, "/proposals/?sort_field=internal_notes")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListContract_StoreDownIsRetryable(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	router, _ := newTestRouter(repo)
	repo.FailFetch = errors.New("connection refused")

	w := doGET(router, "/proposals/")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var body struct {
		Error struct {
			Retryable         bool `json:"retryable"`
			RestartPagination bool `json:"restartPagination"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.True(t, body.Error.Retryable, "el fallo de almacén se marca reintenable")
	assert.False(t, body.Error.RestartPagination)
}

func TestListContract_UnknownFieldsDegradeSilently(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	router, service := newTestRouter(repo)
	seed(t, service, 1)

	w := doGET(router, "/proposals/?fields=id,title,hackfield")
	require.Equal(t, http.StatusOK, w.Code, "campos desconocidos degradan, no fallan")

	var body struct {
		Data struct {
			Meta struct {
				Optimization struct {
					RejectedFields []string `json:"rejectedFields"`
				} `json:"optimizationMetrics"`
			} `json:"meta"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"hackfield"}, body.Data.Meta.Optimization.RejectedFields)
}

func TestCreateContract_CreatedWithEnvelope(t *testing.T) {
	repo := mocks.NewInMemoryProposalRepo()
	router, _ := newTestRouter(repo)

	payload := `{"title":"Oferta anual","value":9900.5,"currency":"EUR","due_date":"2026-12-31"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/proposals/", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data map[string]interface{} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Oferta anual", body.Data["title"])
	assert.Equal(t, "draft", body.Data["status"])
	assert.NotContains(t, body.Data, "internal_notes")
	assert.Len(t, repo.Outbox, 1)
}

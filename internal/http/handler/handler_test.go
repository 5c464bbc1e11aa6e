package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"companyapi/internal/model"
	"companyapi/internal/repository"
	"companyapi/internal/repository/memory"
	repoMocks "companyapi/internal/repository/mocks"
	"companyapi/internal/repository/objectstore"
	"companyapi/internal/repository/redisstore"
	"companyapi/internal/service"
	serviceMocks "companyapi/internal/service/mocks"
	"companyapi/internal/storage"
	storeMocks "companyapi/internal/storage/mocks"

	"github.com/go-redis/redismock/v9"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestHome(t *testing.T) {
	app := fiber.New()
	app.Get("/", Home())

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Equal(t, "<h1>Default route</h1>", readBody(t, resp))
}

func TestHealthCheck(t *testing.T) {
	mRepo := new(repoMocks.MockCompanyRepository)
	app := fiber.New()
	app.Get("/health", HealthCheck(mRepo))

	t.Run("healthy", func(t *testing.T) {
		mRepo.On("Ping", mock.Anything).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		mRepo.On("Ping", mock.Anything).Return(errors.New("db error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "dependency unavailable", body.Error)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListCompanies(t *testing.T) {
	mockSvc := new(serviceMocks.MockCompanyService)
	app := fiber.New()
	app.Get("/api/companies", ListCompanies(mockSvc))

	t.Run("success", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(model.SampleCompanies(), nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result []model.Company
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, model.SampleCompanies(), result)
		mockSvc.AssertExpectations(t)
	})

	t.Run("empty collection is an empty array", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return([]model.Company{}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "[]", readBody(t, resp))
	})

	t.Run("store error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything).Return(nil, errors.New("connection refused")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"connection refused"}`, readBody(t, resp))
	})
}

func TestGetCompany(t *testing.T) {
	mockSvc := new(serviceMocks.MockCompanyService)
	app := fiber.New()
	app.Get("/api/companies/:id", GetCompany(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		expected := &model.Company{ID: id, Name: "Bravo", Size: 160}
		mockSvc.On("Get", mock.Anything, id).Return(expected, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/"+id, nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		var result model.Company
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Equal(t, *expected, result)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, repository.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, readBody(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		invalid := fmt.Errorf("%w: %q", repository.ErrInvalidID, "invalid-uuid")
		mockSvc.On("Get", mock.Anything, "invalid-uuid").Return(nil, invalid).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/invalid-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var res errorPayload
		json.NewDecoder(resp.Body).Decode(&res)
		assert.Equal(t, `invalid company id: "invalid-uuid"`, res.Error)
	})

	t.Run("store error", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, errors.New("db error")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/"+id, nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"db error"}`, readBody(t, resp))
		mockSvc.AssertExpectations(t)
	})
}

func TestCreateCompany(t *testing.T) {
	mockSvc := new(serviceMocks.MockCompanyService)
	app := fiber.New()
	app.Post("/api/companies", CreateCompany(mockSvc))

	post := func(body string) *http.Response {
		req := httptest.NewRequest(http.MethodPost, "/api/companies", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp
	}

	t.Run("success", func(t *testing.T) {
		in := model.CompanyInput{Name: "Delta", Size: 100}
		mockSvc.On("Create", mock.Anything, in).Return(&model.Company{ID: "4", Name: "Delta", Size: 100}, nil).Once()

		resp := post(`{"name":"Delta","size":100}`)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"id":"4","name":"Delta","size":100}`, readBody(t, resp))
		mockSvc.AssertExpectations(t)
	})

	for _, body := range []string{"", "   ", "null"} {
		t.Run(fmt.Sprintf("missing body %q", body), func(t *testing.T) {
			resp := post(body)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.JSONEq(t, `{"error":"missing body content"}`, readBody(t, resp))
		})
	}

	t.Run("invalid json", func(t *testing.T) {
		resp := post(`{"name":`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"invalid body content"}`, readBody(t, resp))
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("Create", mock.Anything, mock.Anything).Return(nil, errors.New("write failed")).Once()

		resp := post(`{"name":"Echo"}`)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"write failed"}`, readBody(t, resp))
		mockSvc.AssertExpectations(t)
	})
}

func TestDeleteCompany(t *testing.T) {
	mockSvc := new(serviceMocks.MockCompanyService)
	app := fiber.New()
	app.Delete("/api/companies/:id", DeleteCompany(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/companies/"+id, nil))

		assert.Equal(t, http.StatusNoContent, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Delete", mock.Anything, id).Return(repository.ErrNotFound).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/companies/"+id, nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, readBody(t, resp))
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid id", func(t *testing.T) {
		mockSvc.On("Delete", mock.Anything, "not-a-uuid").Return(repository.ErrInvalidID).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/companies/not-a-uuid", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"invalid company id"}`, readBody(t, resp))
	})
}

func TestErrorHandler(t *testing.T) {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("boom") })

	t.Run("unknown route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/nope", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Not Found"}`, readBody(t, resp))
	})

	t.Run("plain error", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil))

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Internal Server Error"}`, readBody(t, resp))
	})
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "companies_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	app := fiber.New()
	app.Get("/metrics", Metrics(reg))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "companies_test_total 1")
}

// newMemoryApp wires the real router over a seeded in-memory store.
func newMemoryApp() *fiber.App {
	repo := memory.NewCompanyMemory(model.SampleCompanies()...)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
	RegisterRoutes(app, service.NewCompanyService(repo, nil), repo)
	return app
}

func TestRoutes_MemoryScenarios(t *testing.T) {
	t.Run("get seeded company", func(t *testing.T) {
		app := newMemoryApp()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/2", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"id":"2","name":"Bravo","size":160}`, readBody(t, resp))
	})

	t.Run("unknown id is 404 with empty body", func(t *testing.T) {
		app := newMemoryApp()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/99", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, readBody(t, resp))
	})

	t.Run("post assigns next id and lists it once", func(t *testing.T) {
		app := newMemoryApp()

		req := httptest.NewRequest(http.MethodPost, "/api/companies", strings.NewReader(`{"name":"Delta","size":100}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		require.Equal(t, http.StatusOK, resp.StatusCode)
		var created model.Company
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
		assert.Equal(t, model.Company{ID: "4", Name: "Delta", Size: 100}, created)

		resp, _ = app.Test(httptest.NewRequest(http.MethodGet, "/api/companies", nil))
		var all []model.Company
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
		count := 0
		for _, c := range all {
			if c.ID == created.ID {
				count++
			}
		}
		assert.Equal(t, 1, count)
		assert.Len(t, all, 4)
	})

	t.Run("post without body", func(t *testing.T) {
		app := newMemoryApp()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/api/companies", nil))

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"missing body content"}`, readBody(t, resp))
	})

	t.Run("delete always answers 204", func(t *testing.T) {
		app := newMemoryApp()

		for _, id := range []string{"1", "99", "1"} {
			resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/companies/"+id, nil))
			assert.Equal(t, http.StatusNoContent, resp.StatusCode, "delete %s", id)
		}

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/api/companies/1", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})

	t.Run("landing page", func(t *testing.T) {
		app := newMemoryApp()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}

func TestRoutes_PersistentDeleteMissing(t *testing.T) {
	newApp := func(repo repository.CompanyRepository) *fiber.App {
		app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler()})
		RegisterRoutes(app, service.NewCompanyService(repo, nil), repo)
		return app
	}

	t.Run("object store", func(t *testing.T) {
		mStore := new(storeMocks.MockStorage)
		mStore.On("EnsureBucket", mock.Anything).Return(nil).Once()
		mStore.On("Stat", mock.Anything, "companies/99.json").
			Return(storage.ObjectInfo{}, fmt.Errorf("%w: companies/99.json", storage.ErrObjectNotFound)).Once()
		app := newApp(objectstore.NewCompanyObjectStore(mStore))

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/companies/99", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, readBody(t, resp))
		mStore.AssertExpectations(t)
	})

	t.Run("redis", func(t *testing.T) {
		db, rMock := redismock.NewClientMock()
		rMock.ExpectTxPipeline()
		rMock.ExpectDel("company:99").SetVal(0)
		rMock.ExpectZRem("companies", "99").SetVal(0)
		rMock.ExpectTxPipelineExec()
		app := newApp(redisstore.NewCompanyRedis(db))

		resp, _ := app.Test(httptest.NewRequest(http.MethodDelete, "/api/companies/99", nil))

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Empty(t, readBody(t, resp))
		assert.NoError(t, rMock.ExpectationsWereMet())
	})
}

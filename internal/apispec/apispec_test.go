package apispec

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/apidemo/internal/errortranslator"
)

func gatedRouter(t *testing.T, spec *Spec, handler http.HandlerFunc) *chi.Mux {
	t.Helper()
	router := chi.NewRouter()
	router.Group(func(router chi.Router) {
		router.Use(spec.Gate)
		router.Post(`/v1/products`, handler)
		router.Get(`/users/{id}`, handler)
		router.Delete(`/v1/products/{id}`, handler)
		router.Get(`/undocumented`, handler)
	})
	return router
}

func writeJSON(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func decodeEnvelope(t *testing.T, body string) errortranslator.Envelope {
	t.Helper()
	var envelope errortranslator.Envelope
	require.NoError(t, json.Unmarshal([]byte(body), &envelope))
	return envelope
}

func TestLoad(t *testing.T) {
	spec, err := Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Catalog API", spec.Title())
	assert.Equal(t, document, spec.Document())

	_, err = Load(context.Background(), WithDocument([]byte("openapi: [")))
	assert.Error(t, err)
}

func TestRequestGate(t *testing.T) {
	spec, err := Load(context.Background())
	require.NoError(t, err)

	called := false
	router := gatedRouter(t, spec, func(w http.ResponseWriter, r *http.Request) {
		called = true
		writeJSON(http.StatusCreated, `{"id":2,"name":"Lamp","price":10,"category":"Home"}`)(w, r)
	})

	type tTestCase struct {
		name        string
		method      string
		target      string
		body        string
		wantStatus  int
		wantCalled  bool
		wantDetails []string
	}
	testCases := []tTestCase{
		{
			name:       "valid_product",
			method:     http.MethodPost,
			target:     "/v1/products",
			body:       `{"name":"Lamp","price":10,"category":"Home"}`,
			wantStatus: http.StatusCreated,
			wantCalled: true,
		},
		{
			name:        "short_name_and_bad_category",
			method:      http.MethodPost,
			target:      "/v1/products",
			body:        `{"name":"La","price":10,"category":"Toys"}`,
			wantStatus:  http.StatusBadRequest,
			wantDetails: []string{"body/name", "body/category"},
		},
		{
			name:        "missing_price",
			method:      http.MethodPost,
			target:      "/v1/products",
			body:        `{"name":"Lamp","category":"Home"}`,
			wantStatus:  http.StatusBadRequest,
			wantDetails: []string{"body/price"},
		},
		{
			name:        "non_integer_id",
			method:      http.MethodGet,
			target:      "/users/abc",
			wantStatus:  http.StatusBadRequest,
			wantDetails: []string{"path/id"},
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			called = false
			request := httptest.NewRequest(testCase.method, testCase.target, strings.NewReader(testCase.body))
			if testCase.body != "" {
				request.Header.Set("Content-Type", "application/json")
			}
			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, request)

			assert.Equal(t, testCase.wantStatus, recorder.Code)
			assert.Equal(t, testCase.wantCalled, called)
			if len(testCase.wantDetails) == 0 {
				return
			}

			envelope := decodeEnvelope(t, recorder.Body.String())
			assert.Equal(t, errortranslator.MessageValidation, envelope.Error)
			paths := make([]string, 0, len(envelope.Detalles))
			for _, detail := range envelope.Detalles {
				paths = append(paths, detail.Path)
				assert.NotEmpty(t, detail.Message)
			}
			for _, want := range testCase.wantDetails {
				assert.Contains(t, paths, want)
			}
		})
	}
}

func TestResponseGate(t *testing.T) {
	spec, err := Load(context.Background())
	require.NoError(t, err)

	t.Run("undocumented_body_is_500", func(t *testing.T) {
		router := gatedRouter(t, spec, writeJSON(http.StatusOK, `{"name":"no id"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/1", nil))

		assert.Equal(t, http.StatusInternalServerError, recorder.Code)
		envelope := decodeEnvelope(t, recorder.Body.String())
		assert.Equal(t, "response does not match the API document", envelope.Error)
		assert.NotEmpty(t, envelope.Detalles)
	})

	t.Run("documented_body_passes_through", func(t *testing.T) {
		router := gatedRouter(t, spec, writeJSON(http.StatusOK, `{"id":1,"name":"John Doe"}`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/users/1", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.JSONEq(t, `{"id":1,"name":"John Doe"}`, recorder.Body.String())
		assert.Equal(t, "application/json", recorder.Header().Get("Content-Type"))
	})

	t.Run("no_content", func(t *testing.T) {
		router := gatedRouter(t, spec, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		})
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/v1/products/1", nil))

		assert.Equal(t, http.StatusNoContent, recorder.Code)
		assert.Empty(t, recorder.Body.String())
	})

	t.Run("undocumented_route_is_not_gated", func(t *testing.T) {
		router := gatedRouter(t, spec, writeJSON(http.StatusOK, `"anything"`))
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/undocumented", nil))

		assert.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, `"anything"`, recorder.Body.String())
	})
}

func TestDisabledGates(t *testing.T) {
	spec, err := Load(context.Background(), WithRequestValidation(false), WithResponseValidation(false))
	require.NoError(t, err)

	router := gatedRouter(t, spec, writeJSON(http.StatusCreated, `{"whatever":true}`))
	request := httptest.NewRequest(http.MethodPost, "/v1/products", strings.NewReader(`{"name":"x"}`))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, `{"whatever":true}`, recorder.Body.String())
}

func TestDocsHandlers(t *testing.T) {
	spec, err := Load(context.Background())
	require.NoError(t, err)

	recorder := httptest.NewRecorder()
	spec.ServeDocs(recorder, httptest.NewRequest(http.MethodGet, "/api-docs", nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, recorder.Body.String(), "SwaggerUIBundle")
	assert.Contains(t, recorder.Body.String(), DocumentPath)
	assert.Contains(t, recorder.Body.String(), "<title>Catalog API</title>")

	recorder = httptest.NewRecorder()
	spec.ServeDocument(recorder, httptest.NewRequest(http.MethodGet, DocumentPath, nil))
	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "application/yaml", recorder.Header().Get("Content-Type"))
	assert.Equal(t, string(document), recorder.Body.String())
}

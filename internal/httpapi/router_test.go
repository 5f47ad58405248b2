package httpapi_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/lumenvault/photovault/internal/httpapi"
)

func TestHealthEndpointIsPublic(t *testing.T) {
	deps := &httpapi.Deps{AuthSecret: []byte("test-secret")}
	router := httpapi.NewRouter(deps)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateStorageLocationRequiresAuth(t *testing.T) {
	deps := &httpapi.Deps{AuthSecret: []byte("test-secret")}
	router := httpapi.NewRouter(deps)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/storage-locations/", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBrowseRejectsPathTraversalSegment(t *testing.T) {
	deps := &httpapi.Deps{AuthSecret: []byte("test-secret")}
	router := httpapi.NewRouter(deps)

	id := uuid.New().String()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/storage-locations/"+id+"/browse/2024/../etc", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

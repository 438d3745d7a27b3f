package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/Domenick1991/carebooking/internal/hospitalapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCatalogUseCase is a mock implementation of catalog.CatalogUseCase
type MockCatalogUseCase struct {
	mock.Mock
}

func (m *MockCatalogUseCase) Hospitals(ctx context.Context, page hospitalapi.PageRequest) (domain.Page[domain.Hospital], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.Page[domain.Hospital]), args.Error(1)
}

func (m *MockCatalogUseCase) Departments(ctx context.Context, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Department], error) {
	args := m.Called(ctx, hospitalID, page)
	return args.Get(0).(domain.Page[domain.Department]), args.Error(1)
}

func (m *MockCatalogUseCase) Doctors(ctx context.Context, departmentID, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Doctor], error) {
	args := m.Called(ctx, departmentID, hospitalID, page)
	return args.Get(0).(domain.Page[domain.Doctor]), args.Error(1)
}

func TestCatalogHandler_hospitals(t *testing.T) {
	mockService := &MockCatalogUseCase{}
	r := newTestRouter(nil, mockService)

	mockService.On("Hospitals", mock.Anything, hospitalapi.PageRequest{Page: 2, PageSize: 5}).
		Return(domain.Page[domain.Hospital]{Items: []domain.Hospital{{ID: "h1"}}, Total: 6, Page: 2, PageSize: 5}, nil)

	w := do(r, http.MethodGet, "/api/v1/hospitals?page=2&page_size=5", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[{"id":"h1","name":"","address":"","phone":"","type":""}],"total":6,"page":2,"page_size":5}`, w.Body.String())

	w = do(r, http.MethodGet, "/api/v1/hospitals?page=zero", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNumberOfCalls(t, "Hospitals", 1)
}

func TestCatalogHandler_doctors(t *testing.T) {
	mockService := &MockCatalogUseCase{}
	r := newTestRouter(nil, mockService)

	mockService.On("Doctors", mock.Anything, "d1", "h1", hospitalapi.PageRequest{}).
		Return(domain.Page[domain.Doctor]{Items: []domain.Doctor{{ID: "doc1"}}}, nil)
	mockService.On("Doctors", mock.Anything, "d2", "", hospitalapi.PageRequest{}).
		Return(domain.Page[domain.Doctor]{}, &domain.ExternalCallError{Op: "list doctors", Err: errors.New("timeout")})

	assert.Equal(t, http.StatusOK, do(r, http.MethodGet, "/api/v1/departments/d1/doctors?hospital_id=h1", "").Code)
	assert.Equal(t, http.StatusBadGateway, do(r, http.MethodGet, "/api/v1/departments/d2/doctors", "").Code)
}

func TestCatalogHandler_departments(t *testing.T) {
	mockService := &MockCatalogUseCase{}
	r := newTestRouter(nil, mockService)

	mockService.On("Departments", mock.Anything, "h1", hospitalapi.PageRequest{}).
		Return(domain.Page[domain.Department]{Items: []domain.Department{{ID: "d1", Name: "Cardiology"}}}, nil)

	w := do(r, http.MethodGet, "/api/v1/hospitals/h1/departments", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Cardiology")
}

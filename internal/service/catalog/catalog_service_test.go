package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/Domenick1991/carebooking/internal/domain"
	"github.com/Domenick1991/carebooking/internal/hospitalapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) ListHospitals(ctx context.Context, page hospitalapi.PageRequest) (domain.Page[domain.Hospital], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(domain.Page[domain.Hospital]), args.Error(1)
}

func (m *MockSource) ListDepartments(ctx context.Context, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Department], error) {
	args := m.Called(ctx, hospitalID, page)
	return args.Get(0).(domain.Page[domain.Department]), args.Error(1)
}

func (m *MockSource) ListDoctors(ctx context.Context, departmentID, hospitalID string, page hospitalapi.PageRequest) (domain.Page[domain.Doctor], error) {
	args := m.Called(ctx, departmentID, hospitalID, page)
	return args.Get(0).(domain.Page[domain.Doctor]), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetHospitals(ctx context.Context, page, pageSize int) (domain.Page[domain.Hospital], bool, error) {
	args := m.Called(ctx, page, pageSize)
	return args.Get(0).(domain.Page[domain.Hospital]), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetHospitals(ctx context.Context, page, pageSize int, p domain.Page[domain.Hospital]) error {
	return m.Called(ctx, page, pageSize, p).Error(0)
}

func (m *MockCache) GetDepartments(ctx context.Context, hospitalID string, page, pageSize int) (domain.Page[domain.Department], bool, error) {
	args := m.Called(ctx, hospitalID, page, pageSize)
	return args.Get(0).(domain.Page[domain.Department]), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetDepartments(ctx context.Context, hospitalID string, page, pageSize int, p domain.Page[domain.Department]) error {
	return m.Called(ctx, hospitalID, page, pageSize, p).Error(0)
}

func (m *MockCache) GetDoctors(ctx context.Context, departmentID, hospitalID string, page, pageSize int) (domain.Page[domain.Doctor], bool, error) {
	args := m.Called(ctx, departmentID, hospitalID, page, pageSize)
	return args.Get(0).(domain.Page[domain.Doctor]), args.Bool(1), args.Error(2)
}

func (m *MockCache) SetDoctors(ctx context.Context, departmentID, hospitalID string, page, pageSize int, p domain.Page[domain.Doctor]) error {
	return m.Called(ctx, departmentID, hospitalID, page, pageSize, p).Error(0)
}

func TestCatalogService_HospitalsFromCache(t *testing.T) {
	ctx := context.Background()
	source := new(MockSource)
	cache := new(MockCache)
	cached := domain.Page[domain.Hospital]{Items: []domain.Hospital{{ID: "h1"}}}

	cache.On("GetHospitals", ctx, 1, 10).Return(cached, true, nil)

	svc := NewCatalogService(source, cache, nil)
	got, err := svc.Hospitals(ctx, hospitalapi.PageRequest{Page: 1, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, cached, got)
	source.AssertNotCalled(t, "ListHospitals", mock.Anything, mock.Anything)
	cache.AssertExpectations(t)
}

func TestCatalogService_HospitalsMissFillsCache(t *testing.T) {
	ctx := context.Background()
	source := new(MockSource)
	cache := new(MockCache)
	page := hospitalapi.PageRequest{Page: 1, PageSize: 10}
	fresh := domain.Page[domain.Hospital]{Items: []domain.Hospital{{ID: "h2"}}}

	cache.On("GetHospitals", ctx, 1, 10).Return(domain.Page[domain.Hospital]{}, false, nil)
	source.On("ListHospitals", ctx, page).Return(fresh, nil)
	cache.On("SetHospitals", ctx, 1, 10, fresh).Return(nil)

	svc := NewCatalogService(source, cache, nil)
	got, err := svc.Hospitals(ctx, page)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
	source.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestCatalogService_CacheErrorFallsThrough(t *testing.T) {
	ctx := context.Background()
	source := new(MockSource)
	cache := new(MockCache)
	fresh := domain.Page[domain.Department]{Items: []domain.Department{{ID: "d1"}}}

	cache.On("GetDepartments", ctx, "h1", 0, 0).Return(domain.Page[domain.Department]{}, false, errors.New("redis down"))
	source.On("ListDepartments", ctx, "h1", hospitalapi.PageRequest{}).Return(fresh, nil)
	cache.On("SetDepartments", ctx, "h1", 0, 0, fresh).Return(errors.New("redis down"))

	svc := NewCatalogService(source, cache, nil)
	got, err := svc.Departments(ctx, "h1", hospitalapi.PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}

func TestCatalogService_SourceErrorIsExternal(t *testing.T) {
	ctx := context.Background()
	source := new(MockSource)
	boom := errors.New("connection refused")

	source.On("ListDoctors", ctx, "d1", "h1", hospitalapi.PageRequest{}).Return(domain.Page[domain.Doctor]{}, boom)

	svc := NewCatalogService(source, nil, nil)
	_, err := svc.Doctors(ctx, "d1", "h1", hospitalapi.PageRequest{})
	require.Error(t, err)

	var ext *domain.ExternalCallError
	require.True(t, errors.As(err, &ext))
	assert.Equal(t, "list doctors", ext.Op)
	assert.True(t, errors.Is(err, boom))
}

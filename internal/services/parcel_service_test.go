package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/landdesk/api/internal/logger"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
)

func floatPtr(v float64) *float64 {
	return &v
}

// A ~111m x 111m square at the equator.
var testRing = models.Ring{
	{0, 0},
	{0.001, 0},
	{0.001, 0.001},
	{0, 0.001},
}

func newParcelService(repo *MockParcelRepository, projects *MockProjectRepository) ParcelService {
	return NewParcelService(repo, projects, logger.New("test"))
}

func TestCreateParcel_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Parcel")).Return(nil)

	// Act
	parcel, err := service.CreateParcel(ctx, CreateParcelInput{
		Number:   "A-101",
		Geometry: testRing,
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, parcel)
	assert.NotEqual(t, uuid.Nil, parcel.ID)
	assert.Equal(t, "A-101", parcel.Number)
	assert.Equal(t, models.StatusAvailable, parcel.Status)
	require.NotNil(t, parcel.ComputedAreaSqm)
	assert.InDelta(t, 12392, *parcel.ComputedAreaSqm, 20)
	require.NotNil(t, parcel.ComputedPerimeterM)
	assert.InDelta(t, 445, *parcel.ComputedPerimeterM, 2)
	// No manual figures, so no discrepancy.
	assert.Nil(t, parcel.AreaDiffPct)
	mockRepo.AssertExpectations(t)
}

func TestCreateParcel_ManualAndComputedDelta(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Parcel")).Return(nil)

	// Act
	parcel, err := service.CreateParcel(ctx, CreateParcelInput{
		Number:        "A-102",
		Geometry:      testRing,
		ManualAreaSqm: floatPtr(12500),
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, parcel.AreaDiffPct)
	// Manual 12500 vs computed ~12392 is roughly a +0.9% discrepancy.
	assert.InDelta(t, 0.9, *parcel.AreaDiffPct, 0.3)
	mockRepo.AssertExpectations(t)
}

func TestCreateParcel_InvalidGeometry(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()

	// Act
	parcel, err := service.CreateParcel(ctx, CreateParcelInput{
		Number:   "A-103",
		Geometry: models.Ring{{0, 0}, {0.001, 0}, {0.002, 0}}, // collinear
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestCreateParcel_ProjectNotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	projectID := uuid.New()

	mockProjects.On("GetByID", ctx, projectID).Return(nil, nil)

	// Act
	parcel, err := service.CreateParcel(ctx, CreateParcelInput{
		Number:    "A-104",
		ProjectID: &projectID,
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, ErrProjectNotFound)
	mockRepo.AssertNotCalled(t, "Create")
	mockProjects.AssertExpectations(t)
}

func TestCreateParcel_NoGeometryNoManual(t *testing.T) {
	// A parcel awaiting survey is valid with no figures at all.
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.Parcel")).Return(nil)

	parcel, err := service.CreateParcel(ctx, CreateParcelInput{Number: "A-105"})

	require.NoError(t, err)
	assert.Nil(t, parcel.ComputedAreaSqm)
	assert.Nil(t, parcel.ManualAreaSqm)
	assert.Nil(t, parcel.AreaDiffPct)
	mockRepo.AssertExpectations(t)
}

func TestGetParcel_NotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	// Repository returns nil, nil when no parcel found
	mockRepo.On("GetByID", ctx, id).Return(nil, nil)

	// Act
	parcel, err := service.GetParcel(ctx, id)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, ErrParcelNotFound)
	mockRepo.AssertExpectations(t)
}

func TestGetParcel_RepositoryError(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	dbError := errors.New("database connection failed")
	mockRepo.On("GetByID", ctx, id).Return(nil, dbError)

	// Act
	parcel, err := service.GetParcel(ctx, id)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, dbError)
	mockRepo.AssertExpectations(t)
}

func TestUpdateMetrics_ClearManual(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	existing := &models.Parcel{
		ID:            id,
		Number:        "A-201",
		ManualAreaSqm: floatPtr(500),
		Status:        models.StatusAvailable,
	}

	mockRepo.On("GetByID", ctx, id).Return(existing, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.Parcel")).Return(nil)

	// Act
	parcel, err := service.UpdateMetrics(ctx, id, UpdateParcelMetricsInput{
		ClearManual: true,
	})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, parcel.ManualAreaSqm)
	assert.Nil(t, parcel.ManualPerimeterM)
	assert.Nil(t, parcel.AreaDiffPct)
	mockRepo.AssertExpectations(t)
}

func TestUpdateMetrics_ReplaceGeometryRecomputes(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	existing := &models.Parcel{
		ID:     id,
		Number: "A-202",
		Status: models.StatusAvailable,
	}

	mockRepo.On("GetByID", ctx, id).Return(existing, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.Parcel")).Return(nil)

	ring := testRing

	// Act
	parcel, err := service.UpdateMetrics(ctx, id, UpdateParcelMetricsInput{
		Geometry: &ring,
	})

	// Assert
	require.NoError(t, err)
	require.NotNil(t, parcel.ComputedAreaSqm)
	assert.InDelta(t, 12392, *parcel.ComputedAreaSqm, 20)
	mockRepo.AssertExpectations(t)
}

func TestUpdateMetrics_ClearGeometryWinsOverSupplied(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	existing := &models.Parcel{
		ID:       id,
		Number:   "A-203",
		Geometry: testRing,
		Status:   models.StatusAvailable,
	}

	mockRepo.On("GetByID", ctx, id).Return(existing, nil)
	mockRepo.On("Update", ctx, mock.AnythingOfType("*models.Parcel")).Return(nil)

	ring := testRing

	// Act
	parcel, err := service.UpdateMetrics(ctx, id, UpdateParcelMetricsInput{
		Geometry:      &ring,
		ClearGeometry: true,
	})

	// Assert
	require.NoError(t, err)
	assert.Nil(t, parcel.Geometry)
	assert.Nil(t, parcel.ComputedAreaSqm)
	assert.Nil(t, parcel.ComputedPerimeterM)
	mockRepo.AssertExpectations(t)
}

func TestUpdateMetrics_InvalidGeometry(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	existing := &models.Parcel{ID: id, Number: "A-204", Status: models.StatusAvailable}
	mockRepo.On("GetByID", ctx, id).Return(existing, nil)

	bad := models.Ring{{0, 0}, {0, 0}, {0, 0}}

	// Act
	parcel, err := service.UpdateMetrics(ctx, id, UpdateParcelMetricsInput{
		Geometry: &bad,
	})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, ErrInvalidGeometry)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestUpdateMetrics_NotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("GetByID", ctx, id).Return(nil, nil)

	// Act
	parcel, err := service.UpdateMetrics(ctx, id, UpdateParcelMetricsInput{})

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, ErrParcelNotFound)
	mockRepo.AssertNotCalled(t, "Update")
}

func TestChangeStatus_Success(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	existing := &models.Parcel{ID: id, Number: "A-301", Status: models.StatusAvailable}
	mockRepo.On("GetByID", ctx, id).Return(existing, nil)
	mockRepo.On("UpdateStatus", ctx, id, models.StatusReserved).Return(nil)

	// Act
	parcel, err := service.ChangeStatus(ctx, id, models.StatusReserved)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, models.StatusReserved, parcel.Status)
	mockRepo.AssertExpectations(t)
}

func TestChangeStatus_SoldIsTerminal(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	existing := &models.Parcel{ID: id, Number: "A-302", Status: models.StatusSold}
	mockRepo.On("GetByID", ctx, id).Return(existing, nil)

	// Act
	parcel, err := service.ChangeStatus(ctx, id, models.StatusAvailable)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, ErrInvalidTransition)
	mockRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestChangeStatus_InvalidStatusValue(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()

	// Act
	parcel, err := service.ChangeStatus(ctx, uuid.New(), models.ParcelStatus("pending"))

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	mockRepo.AssertNotCalled(t, "GetByID")
	mockRepo.AssertNotCalled(t, "UpdateStatus")
}

func TestChangeStatus_NotFound(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	id := uuid.New()

	mockRepo.On("GetByID", ctx, id).Return(nil, nil)

	// Act
	parcel, err := service.ChangeStatus(ctx, id, models.StatusReserved)

	// Assert
	assert.Error(t, err)
	assert.Nil(t, parcel)
	assert.ErrorIs(t, err, ErrParcelNotFound)
	mockRepo.AssertExpectations(t)
}

func TestFleetStats_AggregatesAuthoritativeAreas(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	parcels := []models.Parcel{
		{Status: models.StatusAvailable, ComputedAreaSqm: floatPtr(480)},
		{Status: models.StatusSold, ManualAreaSqm: floatPtr(520)},
		{Status: models.StatusAvailable},
	}

	mockRepo.On("List", ctx, repository.ParcelFilter{}).Return(parcels, nil)

	// Act
	stats, err := service.FleetStats(ctx, nil)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 3, stats.ParcelCount)
	assert.Equal(t, 2, stats.WithAreaCount)
	assert.Equal(t, 1000.0, stats.TotalAreaSqm)
	require.NotNil(t, stats.AverageAreaSqm)
	assert.Equal(t, 500.0, *stats.AverageAreaSqm)
	assert.Equal(t, 2, stats.ByStatus[models.StatusAvailable])
	mockRepo.AssertExpectations(t)
}

func TestFleetStats_FiltersByProject(t *testing.T) {
	// Arrange
	mockRepo := new(MockParcelRepository)
	mockProjects := new(MockProjectRepository)
	service := newParcelService(mockRepo, mockProjects)

	ctx := context.Background()
	projectID := uuid.New()

	mockRepo.On("List", ctx, repository.ParcelFilter{ProjectID: &projectID}).
		Return([]models.Parcel{}, nil)

	// Act
	stats, err := service.FleetStats(ctx, &projectID)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 0, stats.ParcelCount)
	assert.Nil(t, stats.AverageAreaSqm)
	mockRepo.AssertExpectations(t)
}

package handlers

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/landdesk/api/internal/metrics"
	"github.com/landdesk/api/internal/models"
	"github.com/landdesk/api/internal/repository"
	"github.com/landdesk/api/internal/services"
)

// MockParcelService is a mock implementation of services.ParcelService for testing
type MockParcelService struct {
	mock.Mock
}

func (m *MockParcelService) CreateParcel(ctx context.Context, in services.CreateParcelInput) (*models.Parcel, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Parcel), args.Error(1)
}

func (m *MockParcelService) GetParcel(ctx context.Context, id uuid.UUID) (*models.Parcel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Parcel), args.Error(1)
}

func (m *MockParcelService) ListParcels(ctx context.Context, filter repository.ParcelFilter) ([]models.Parcel, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Parcel), args.Error(1)
}

func (m *MockParcelService) UpdateMetrics(ctx context.Context, id uuid.UUID, in services.UpdateParcelMetricsInput) (*models.Parcel, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Parcel), args.Error(1)
}

func (m *MockParcelService) ChangeStatus(ctx context.Context, id uuid.UUID, target models.ParcelStatus) (*models.Parcel, error) {
	args := m.Called(ctx, id, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Parcel), args.Error(1)
}

func (m *MockParcelService) FleetStats(ctx context.Context, projectID *uuid.UUID) (metrics.FleetStats, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).(metrics.FleetStats), args.Error(1)
}

// MockLinkageService is a mock implementation of services.LinkageService for testing
type MockLinkageService struct {
	mock.Mock
}

func (m *MockLinkageService) Link(ctx context.Context, parcelID, propertyID uuid.UUID) error {
	args := m.Called(ctx, parcelID, propertyID)
	return args.Error(0)
}

func (m *MockLinkageService) Unlink(ctx context.Context, parcelID, propertyID uuid.UUID) error {
	args := m.Called(ctx, parcelID, propertyID)
	return args.Error(0)
}

// MockPropertyService is a mock implementation of services.PropertyService for testing
type MockPropertyService struct {
	mock.Mock
}

func (m *MockPropertyService) CreateProperty(ctx context.Context, in services.CreatePropertyInput) (*models.Property, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) GetProperty(ctx context.Context, id uuid.UUID) (*models.Property, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Property), args.Error(1)
}

func (m *MockPropertyService) ListProperties(ctx context.Context, filter repository.PropertyFilter) ([]models.Property, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Property), args.Error(1)
}

// MockProjectService is a mock implementation of services.ProjectService for testing
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) CreateProject(ctx context.Context, in services.CreateProjectInput) (*models.Project, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) ListProjects(ctx context.Context) ([]models.Project, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

// MockInquiryService is a mock implementation of services.InquiryService for testing
type MockInquiryService struct {
	mock.Mock
}

func (m *MockInquiryService) SubmitInquiry(ctx context.Context, in services.SubmitInquiryInput) (*models.Inquiry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) ListInquiries(ctx context.Context, filter repository.InquiryFilter) ([]models.Inquiry, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Inquiry), args.Error(1)
}

func (m *MockInquiryService) ChangeStatus(ctx context.Context, id uuid.UUID, target models.InquiryStatus) (*models.Inquiry, error) {
	args := m.Called(ctx, id, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Inquiry), args.Error(1)
}

package handler

import (
	"context"
	"io"

	"candle-labels/internal/label"
	"candle-labels/internal/model"
	"candle-labels/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockCandleService is a mock implementation of CandleService.
type MockCandleService struct {
	mock.Mock
}

func (m *MockCandleService) List(ctx context.Context, filter model.CandleFilter) ([]model.Candle, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Candle), args.Error(1)
}

func (m *MockCandleService) GetByID(ctx context.Context, id int64) (*model.Candle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candle), args.Error(1)
}

func (m *MockCandleService) Create(ctx context.Context, req *model.CandleCreate) (*model.Candle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candle), args.Error(1)
}

func (m *MockCandleService) Update(ctx context.Context, id int64, req *model.CandleUpdate) (*model.Candle, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candle), args.Error(1)
}

func (m *MockCandleService) ChangeQuantity(ctx context.Context, id int64, req *model.QuantityChange) (*model.Candle, error) {
	args := m.Called(ctx, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Candle), args.Error(1)
}

func (m *MockCandleService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCategoryService is a mock implementation of CategoryService.
type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) GetAll(ctx context.Context) ([]model.Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Category), args.Error(1)
}

func (m *MockCategoryService) Create(ctx context.Context, req *model.CategoryCreate) (*model.Category, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Category), args.Error(1)
}

// MockLabelSetService is a mock implementation of LabelSetService.
type MockLabelSetService struct {
	mock.Mock
}

func (m *MockLabelSetService) Create(ctx context.Context, req *model.LabelSetRequest) (*model.LabelSetResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabelSetResponse), args.Error(1)
}

func (m *MockLabelSetService) GetAll(ctx context.Context) ([]model.LabelSet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.LabelSet), args.Error(1)
}

func (m *MockLabelSetService) GetByID(ctx context.Context, id int64) (*model.LabelSetResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LabelSetResponse), args.Error(1)
}

// MockLabelService is a mock implementation of LabelService.
type MockLabelService struct {
	mock.Mock
}

func (m *MockLabelService) Generate(ctx context.Context, req *label.Request) (*service.Document, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Document), args.Error(1)
}

func (m *MockLabelService) GenerateForSet(ctx context.Context, setID int64, req *label.Request) (*service.Document, error) {
	args := m.Called(ctx, setID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Document), args.Error(1)
}

// MockImportService is a mock implementation of ImportService.
type MockImportService struct {
	mock.Mock
}

func (m *MockImportService) Import(ctx context.Context, filename string, r io.Reader) (*model.ImportResult, error) {
	args := m.Called(ctx, filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ImportResult), args.Error(1)
}

func (m *MockImportService) WriteTemplate(w io.Writer) error {
	args := m.Called(w)
	return args.Error(0)
}

// MockUploadService is a mock implementation of UploadService.
type MockUploadService struct {
	mock.Mock
}

func (m *MockUploadService) Upload(ctx context.Context, kind, filename string, r io.Reader) (*model.UploadResult, error) {
	args := m.Called(ctx, kind, filename, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UploadResult), args.Error(1)
}

func (m *MockUploadService) Open(ctx context.Context, dir, filename string) (io.ReadCloser, error) {
	args := m.Called(ctx, dir, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockAuthenticator is a mock implementation of Authenticator.
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.LoginResponse), args.Error(1)
}

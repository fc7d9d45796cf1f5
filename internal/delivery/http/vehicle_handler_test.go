package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/vehicle"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockVehicleService - мок для vehicle service
type MockVehicleService struct {
	mock.Mock
}

func (m *MockVehicleService) CreateVehicle(ctx context.Context, req *vehicle.CreateVehicleRequest) (*domain.Vehicle, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	args := m.Called(ctx, ownerID, vehicleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, req *vehicle.UpdateVehicleRequest) (*domain.Vehicle, error) {
	args := m.Called(ctx, ownerID, vehicleID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) DeleteVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error {
	args := m.Called(ctx, ownerID, vehicleID)
	return args.Error(0)
}

func (m *MockVehicleService) ListVehicles(ctx context.Context, ownerID uuid.UUID) ([]*domain.Vehicle, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleService) SearchAvailable(ctx context.Context, ownerID uuid.UUID, visibility []domain.VehicleVisibility, from, to time.Time) ([]*domain.Vehicle, error) {
	args := m.Called(ctx, ownerID, visibility, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vehicle), args.Error(1)
}

// TestVehicleHandler_CreateVehicle тестирует создание автомобиля
func TestVehicleHandler_CreateVehicle(t *testing.T) {
	ownerID := uuid.New()
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		requestBody    interface{}
		mockSetup      func(*MockVehicleService)
		expectedStatus int
		checkResponse  func(*testing.T, map[string]interface{})
	}{
		{
			name: "успешное создание",
			requestBody: vehicle.CreateVehicleRequest{
				Plate:   "A 12345",
				Model:   "Toyota Camry",
				Mileage: 42000,
			},
			mockSetup: func(m *MockVehicleService) {
				m.On("CreateVehicle", mock.Anything, mock.AnythingOfType("*vehicle.CreateVehicleRequest")).
					Return(CreateTestVehicle(vehicleID, ownerID, "A12345"), nil)
			},
			expectedStatus: http.StatusCreated,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertSuccess(t, resp)
				data := resp["data"].(map[string]interface{})
				assert.Equal(t, "A12345", data["vehicle_plate"])
			},
		},
		{
			name: "дублирующийся номер",
			requestBody: vehicle.CreateVehicleRequest{
				Plate: "A 12345",
			},
			mockSetup: func(m *MockVehicleService) {
				m.On("CreateVehicle", mock.Anything, mock.AnythingOfType("*vehicle.CreateVehicleRequest")).
					Return(nil, domain.ErrPlateTaken)
			},
			expectedStatus: http.StatusConflict,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
			},
		},
		{
			name:           "невалидный JSON",
			requestBody:    "invalid",
			mockSetup:      func(m *MockVehicleService) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockVehicleService)
			tt.mockSetup(mockService)

			log := logger.NewDevelopment()
			handler := NewVehicleHandler(mockService, log)

			var body []byte
			if str, ok := tt.requestBody.(string); ok {
				body = []byte(str)
			} else {
				body, _ = json.Marshal(tt.requestBody)
			}

			req := httptest.NewRequest(http.MethodPost, "/api/v1/vehicles", bytes.NewReader(body))
			req = req.WithContext(CreateOwnerContext(t, ownerID))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()

			handler.CreateVehicle(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			_ = json.Unmarshal(w.Body.Bytes(), &response)
			tt.checkResponse(t, response)

			mockService.AssertExpectations(t)
		})
	}
}

// TestVehicleHandler_GetVehicle тестирует получение автомобиля по ID
func TestVehicleHandler_GetVehicle(t *testing.T) {
	ownerID := uuid.New()
	vehicleID := uuid.New()

	tests := []struct {
		name           string
		vehicleID      string
		mockSetup      func(*MockVehicleService)
		expectedStatus int
	}{
		{
			name:      "успешное получение",
			vehicleID: vehicleID.String(),
			mockSetup: func(m *MockVehicleService) {
				m.On("GetVehicle", mock.Anything, ownerID, vehicleID).
					Return(CreateTestVehicle(vehicleID, ownerID, "A12345"), nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:      "чужой автомобиль",
			vehicleID: vehicleID.String(),
			mockSetup: func(m *MockVehicleService) {
				m.On("GetVehicle", mock.Anything, ownerID, vehicleID).
					Return(nil, domain.ErrNotOwner)
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name:           "невалидный UUID",
			vehicleID:      "invalid-uuid",
			mockSetup:      func(m *MockVehicleService) {},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockVehicleService)
			tt.mockSetup(mockService)

			log := logger.NewDevelopment()
			handler := NewVehicleHandler(mockService, log)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/vehicles/"+tt.vehicleID, nil)

			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.vehicleID)
			ctx := context.WithValue(CreateOwnerContext(t, ownerID), chi.RouteCtxKey, rctx)
			req = req.WithContext(ctx)

			w := httptest.NewRecorder()
			handler.GetVehicle(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// TestVehicleHandler_PublicSearch тестирует публичный поиск автомобилей
func TestVehicleHandler_PublicSearch(t *testing.T) {
	ownerID := uuid.New()
	webVisibility := []domain.VehicleVisibility{domain.VisibleWeb, domain.VisibleBoth}

	tests := []struct {
		name           string
		query          string
		mockSetup      func(*MockVehicleService)
		expectedStatus int
		checkResponse  func(*testing.T, map[string]interface{})
	}{
		{
			name:  "поиск по владельцу",
			query: "?owner_id=" + ownerID.String(),
			mockSetup: func(m *MockVehicleService) {
				m.On("SearchAvailable", mock.Anything, ownerID, webVisibility, time.Time{}, time.Time{}).
					Return([]*domain.Vehicle{
						CreateTestVehicle(uuid.New(), ownerID, "A12345"),
						CreateTestVehicle(uuid.New(), ownerID, "B67890"),
					}, nil)
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertSuccess(t, resp)
				data := resp["data"].([]interface{})
				assert.Len(t, data, 2)
			},
		},
		{
			name:  "поиск без фильтра владельца",
			query: "",
			mockSetup: func(m *MockVehicleService) {
				m.On("SearchAvailable", mock.Anything, uuid.Nil, webVisibility, time.Time{}, time.Time{}).
					Return([]*domain.Vehicle{}, nil)
			},
			expectedStatus: http.StatusOK,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertSuccess(t, resp)
			},
		},
		{
			name:           "невалидный owner_id",
			query:          "?owner_id=not-a-uuid",
			mockSetup:      func(m *MockVehicleService) {},
			expectedStatus: http.StatusBadRequest,
			checkResponse: func(t *testing.T, resp map[string]interface{}) {
				AssertError(t, resp)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockVehicleService)
			tt.mockSetup(mockService)

			log := logger.NewDevelopment()
			handler := NewVehicleHandler(mockService, log)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/public/vehicles"+tt.query, nil)
			w := httptest.NewRecorder()

			handler.PublicSearch(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			var response map[string]interface{}
			_ = json.Unmarshal(w.Body.Bytes(), &response)
			tt.checkResponse(t, response)

			mockService.AssertExpectations(t)
		})
	}
}

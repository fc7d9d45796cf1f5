package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/usecase/vehicle"
	"github.com/google/uuid"
)

// VehicleService определяет интерфейс для сервиса автомобилей
type VehicleService interface {
	CreateVehicle(ctx context.Context, req *vehicle.CreateVehicleRequest) (*domain.Vehicle, error)
	GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*domain.Vehicle, error)
	UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, req *vehicle.UpdateVehicleRequest) (*domain.Vehicle, error)
	DeleteVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error
	ListVehicles(ctx context.Context, ownerID uuid.UUID) ([]*domain.Vehicle, error)
	SearchAvailable(ctx context.Context, ownerID uuid.UUID, visibility []domain.VehicleVisibility, from, to time.Time) ([]*domain.Vehicle, error)
}

// VehicleHandler обрабатывает запросы связанные с автомобилями
type VehicleHandler struct {
	vehicleService VehicleService
	logger         logger.Logger
}

// NewVehicleHandler создает новый handler
func NewVehicleHandler(vehicleService VehicleService, logger logger.Logger) *VehicleHandler {
	return &VehicleHandler{
		vehicleService: vehicleService,
		logger:         logger,
	}
}

// CreateVehicle создает новый автомобиль
// POST /api/v1/vehicles
func (h *VehicleHandler) CreateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req vehicle.CreateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	req.OwnerID = claims.OwnerID

	v, err := h.vehicleService.CreateVehicle(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlateTaken):
			respondError(w, http.StatusConflict, "Plate already taken")
		case errors.Is(err, domain.ErrInvalidPlate), errors.Is(err, domain.ErrInvalidVehicleData):
			respondError(w, http.StatusBadRequest, "Invalid vehicle data")
		default:
			h.logger.Error("Failed to create vehicle", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to create vehicle")
		}
		return
	}

	respondData(w, http.StatusCreated, v)
}

// ListVehicles возвращает все автомобили владельца
// GET /api/v1/vehicles
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicles, err := h.vehicleService.ListVehicles(r.Context(), claims.OwnerID)
	if err != nil {
		h.logger.Error("Failed to list vehicles", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to list vehicles")
		return
	}

	respondData(w, http.StatusOK, vehicles)
}

// GetVehicle возвращает автомобиль владельца по ID
// GET /api/v1/vehicles/{id}
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicleID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	v, err := h.vehicleService.GetVehicle(r.Context(), claims.OwnerID, vehicleID)
	if err != nil {
		if errors.Is(err, domain.ErrVehicleNotFound) || errors.Is(err, domain.ErrNotOwner) {
			respondError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		h.logger.Error("Failed to get vehicle", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to get vehicle")
		return
	}

	respondData(w, http.StatusOK, v)
}

// UpdateVehicle частично обновляет автомобиль
// PATCH /api/v1/vehicles/{id}
func (h *VehicleHandler) UpdateVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicleID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	var req vehicle.UpdateVehicleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	v, err := h.vehicleService.UpdateVehicle(r.Context(), claims.OwnerID, vehicleID, &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrVehicleNotFound), errors.Is(err, domain.ErrNotOwner):
			respondError(w, http.StatusNotFound, "Vehicle not found")
		case errors.Is(err, domain.ErrPlateTaken):
			respondError(w, http.StatusConflict, "Plate already taken")
		case errors.Is(err, domain.ErrVehicleRented):
			respondError(w, http.StatusConflict, "Vehicle is rented")
		case errors.Is(err, domain.ErrInvalidVehicleData), errors.Is(err, domain.ErrInvalidPlate):
			respondError(w, http.StatusBadRequest, "Invalid vehicle data")
		default:
			h.logger.Error("Failed to update vehicle", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to update vehicle")
		}
		return
	}

	respondData(w, http.StatusOK, v)
}

// DeleteVehicle удаляет автомобиль владельца
// DELETE /api/v1/vehicles/{id}
func (h *VehicleHandler) DeleteVehicle(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	vehicleID, err := parseUUIDParam(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid vehicle ID")
		return
	}

	if err := h.vehicleService.DeleteVehicle(r.Context(), claims.OwnerID, vehicleID); err != nil {
		switch {
		case errors.Is(err, domain.ErrVehicleNotFound), errors.Is(err, domain.ErrNotOwner):
			respondError(w, http.StatusNotFound, "Vehicle not found")
		case errors.Is(err, domain.ErrVehicleRented):
			respondError(w, http.StatusConflict, "Vehicle is rented")
		default:
			h.logger.Error("Failed to delete vehicle", map[string]interface{}{
				"error": err.Error(),
			})
			respondError(w, http.StatusInternalServerError, "Failed to delete vehicle")
		}
		return
	}

	respondData(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// SearchAvailable возвращает доступные автомобили владельца,
// свободные от броней в указанном окне
// GET /api/v1/vehicles/available?from=...&to=...
func (h *VehicleHandler) SearchAvailable(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.GetAuthClaims(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	from, to, err := parseTimeWindow(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid time window")
		return
	}

	vehicles, err := h.vehicleService.SearchAvailable(r.Context(), claims.OwnerID, nil, from, to)
	if err != nil {
		h.logger.Error("Failed to search vehicles", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to search vehicles")
		return
	}

	respondData(w, http.StatusOK, vehicles)
}

// PublicSearch возвращает автомобили, доступные для онлайн-бронирования
// GET /api/v1/public/vehicles?owner_id=...&from=...&to=...
func (h *VehicleHandler) PublicSearch(w http.ResponseWriter, r *http.Request) {
	ownerID := uuid.Nil
	if raw := r.URL.Query().Get("owner_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "Invalid owner ID")
			return
		}
		ownerID = parsed
	}

	from, to, err := parseTimeWindow(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid time window")
		return
	}

	visibility := []domain.VehicleVisibility{domain.VisibleWeb, domain.VisibleBoth}
	vehicles, err := h.vehicleService.SearchAvailable(r.Context(), ownerID, visibility, from, to)
	if err != nil {
		h.logger.Error("Failed to search public vehicles", map[string]interface{}{
			"error": err.Error(),
		})
		respondError(w, http.StatusInternalServerError, "Failed to search vehicles")
		return
	}

	respondData(w, http.StatusOK, vehicles)
}

// parseTimeWindow читает окно from/to из query параметров.
// Оба параметра опциональны, но если указан один - нужен и второй.
func parseTimeWindow(r *http.Request) (time.Time, time.Time, error) {
	fromRaw := r.URL.Query().Get("from")
	toRaw := r.URL.Query().Get("to")
	if fromRaw == "" && toRaw == "" {
		return time.Time{}, time.Time{}, nil
	}

	from, err := time.Parse(time.RFC3339, fromRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := time.Parse(time.RFC3339, toRaw)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

package vehicle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
)

// CreateVehicleRequest - запрос на создание автомобиля
type CreateVehicleRequest struct {
	OwnerID        uuid.UUID                `json:"owner_id"`
	Plate          string                   `json:"vehicle_plate"`
	VIN            string                   `json:"vin,omitempty"`
	Model          string                   `json:"vehicle_model,omitempty"`
	Type           string                   `json:"vehicle_type,omitempty"`
	MakeYear       string                   `json:"make_year,omitempty"`
	Color          string                   `json:"color,omitempty"`
	BodyStyle      string                   `json:"body_style,omitempty"`
	EngineType     string                   `json:"engine_type,omitempty"`
	Transmission   string                   `json:"transmission,omitempty"`
	Fuel           string                   `json:"fuel,omitempty"`
	Price          int64                    `json:"price,omitempty"`
	Mileage        int64                    `json:"mileage"`
	PeopleCapacity int                      `json:"people_capacity,omitempty"`
	IsAC           bool                     `json:"is_ac,omitempty"`
	VisibleTo      domain.VehicleVisibility `json:"visible_to,omitempty"`
	SaleType       domain.SaleType          `json:"car_sale_type,omitempty"`
	Packages       []domain.RentPackage     `json:"package,omitempty"`
	Notes          string                   `json:"notes,omitempty"`
	ImageURL       string                   `json:"vehicle_image_url,omitempty"`
	FeaturedImage  string                   `json:"featured_image,omitempty"`
}

// UpdateVehicleRequest - запрос на частичное обновление автомобиля.
// Nil-поля остаются без изменений.
type UpdateVehicleRequest struct {
	Plate          *string                   `json:"vehicle_plate,omitempty"`
	Model          *string                   `json:"vehicle_model,omitempty"`
	Type           *string                   `json:"vehicle_type,omitempty"`
	MakeYear       *string                   `json:"make_year,omitempty"`
	Color          *string                   `json:"color,omitempty"`
	Price          *int64                    `json:"price,omitempty"`
	Mileage        *int64                    `json:"mileage,omitempty"`
	Remark         *string                   `json:"remark,omitempty"`
	PeopleCapacity *int                      `json:"people_capacity,omitempty"`
	IsAC           *bool                     `json:"is_ac,omitempty"`
	VisibleTo      *domain.VehicleVisibility `json:"visible_to,omitempty"`
	SaleType       *domain.SaleType          `json:"car_sale_type,omitempty"`
	Packages       []domain.RentPackage      `json:"package,omitempty"`
	Notes          *string                   `json:"notes,omitempty"`
	ImageURL       *string                   `json:"vehicle_image_url,omitempty"`
	FeaturedImage  *string                   `json:"featured_image,omitempty"`
	Status         *domain.VehicleStatus     `json:"status,omitempty"`
}

// Service содержит бизнес-логику работы с автомобилями
type Service struct {
	vehicleRepo    repository.VehicleRepository
	ticketRepo     repository.TicketRepository
	oilThresholdKm int64
	logger         logger.Logger
}

// NewService создает новый экземпляр VehicleService
func NewService(
	vehicleRepo repository.VehicleRepository,
	ticketRepo repository.TicketRepository,
	oilThresholdKm int64,
	logger logger.Logger,
) *Service {
	return &Service{
		vehicleRepo:    vehicleRepo,
		ticketRepo:     ticketRepo,
		oilThresholdKm: oilThresholdKm,
		logger:         logger,
	}
}

// CreateVehicle создает новый автомобиль
func (s *Service) CreateVehicle(ctx context.Context, req *CreateVehicleRequest) (*domain.Vehicle, error) {
	s.logger.Info("Creating new vehicle", map[string]interface{}{
		"owner_id": req.OwnerID,
		"plate":    req.Plate,
	})

	taken, err := s.vehicleRepo.IsPlateTaken(ctx, req.Plate, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check plate: %w", err)
	}
	if taken {
		s.logger.Warn("Vehicle plate already registered", map[string]interface{}{
			"plate": req.Plate,
		})
		return nil, domain.ErrPlateTaken
	}

	visibleTo := req.VisibleTo
	if visibleTo == "" {
		visibleTo = domain.VisibleBoth
	}
	saleType := req.SaleType
	if saleType == "" {
		saleType = domain.SaleTypeRent
	}

	vehicle := &domain.Vehicle{
		OwnerID:        req.OwnerID,
		VIN:            req.VIN,
		Plate:          req.Plate,
		Model:          req.Model,
		Type:           req.Type,
		MakeYear:       req.MakeYear,
		Color:          req.Color,
		BodyStyle:      req.BodyStyle,
		EngineType:     req.EngineType,
		Transmission:   req.Transmission,
		Fuel:           req.Fuel,
		Price:          req.Price,
		Status:         domain.VehicleAvailable,
		Mileage:        req.Mileage,
		LastOilCheck:   req.Mileage, // отсчет замены масла идет от пробега при регистрации
		PeopleCapacity: req.PeopleCapacity,
		IsAC:           req.IsAC,
		VisibleTo:      visibleTo,
		SaleType:       saleType,
		Packages:       req.Packages,
		Notes:          req.Notes,
		ImageURL:       req.ImageURL,
		FeaturedImage:  req.FeaturedImage,
	}

	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.Create(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to create vehicle: %w", err)
	}

	s.logger.Info("Vehicle created", map[string]interface{}{
		"vehicle_id": vehicle.ID,
		"plate":      vehicle.Plate,
	})

	return vehicle, nil
}

// GetVehicle возвращает автомобиль владельца
func (s *Service) GetVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) (*domain.Vehicle, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return nil, err
	}

	if vehicle.OwnerID != ownerID {
		return nil, domain.ErrNotOwner
	}

	return vehicle, nil
}

// UpdateVehicle частично обновляет данные автомобиля
func (s *Service) UpdateVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID, req *UpdateVehicleRequest) (*domain.Vehicle, error) {
	vehicle, err := s.GetVehicle(ctx, ownerID, vehicleID)
	if err != nil {
		return nil, err
	}

	if req.Plate != nil && domain.NormalizePlate(*req.Plate) != vehicle.Plate {
		taken, err := s.vehicleRepo.IsPlateTaken(ctx, *req.Plate, vehicle.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check plate: %w", err)
		}
		if taken {
			return nil, domain.ErrPlateTaken
		}
		vehicle.Plate = *req.Plate
	}

	if req.Model != nil {
		vehicle.Model = *req.Model
	}
	if req.Type != nil {
		vehicle.Type = *req.Type
	}
	if req.MakeYear != nil {
		vehicle.MakeYear = *req.MakeYear
	}
	if req.Color != nil {
		vehicle.Color = *req.Color
	}
	if req.Price != nil {
		vehicle.Price = *req.Price
	}
	if req.Mileage != nil {
		vehicle.Mileage = *req.Mileage
	}
	if req.Remark != nil {
		vehicle.Remark = *req.Remark
	}
	if req.PeopleCapacity != nil {
		vehicle.PeopleCapacity = *req.PeopleCapacity
	}
	if req.IsAC != nil {
		vehicle.IsAC = *req.IsAC
	}
	if req.VisibleTo != nil {
		vehicle.VisibleTo = *req.VisibleTo
	}
	if req.SaleType != nil {
		vehicle.SaleType = *req.SaleType
	}
	if req.Packages != nil {
		vehicle.Packages = req.Packages
	}
	if req.Notes != nil {
		vehicle.Notes = *req.Notes
	}
	if req.ImageURL != nil {
		vehicle.ImageURL = *req.ImageURL
	}
	if req.FeaturedImage != nil {
		vehicle.FeaturedImage = *req.FeaturedImage
	}
	if req.Status != nil {
		// Вручную переключаются только available и maintenance,
		// rented выставляет договор
		if *req.Status == domain.VehicleRented {
			return nil, domain.ErrInvalidVehicleData
		}
		if vehicle.Status == domain.VehicleRented {
			return nil, domain.ErrVehicleRented
		}
		vehicle.Status = *req.Status
	}

	if err := vehicle.Validate(); err != nil {
		return nil, err
	}

	if err := s.vehicleRepo.Update(ctx, vehicle); err != nil {
		return nil, fmt.Errorf("failed to update vehicle: %w", err)
	}

	return vehicle, nil
}

// DeleteVehicle удаляет автомобиль владельца. Арендованный автомобиль
// удалить нельзя.
func (s *Service) DeleteVehicle(ctx context.Context, ownerID, vehicleID uuid.UUID) error {
	vehicle, err := s.GetVehicle(ctx, ownerID, vehicleID)
	if err != nil {
		return err
	}

	if vehicle.Status == domain.VehicleRented {
		return domain.ErrVehicleRented
	}

	if err := s.vehicleRepo.Delete(ctx, ownerID, vehicleID); err != nil {
		return fmt.Errorf("failed to delete vehicle: %w", err)
	}

	s.logger.Info("Vehicle deleted", map[string]interface{}{
		"vehicle_id": vehicleID,
		"owner_id":   ownerID,
	})

	return nil
}

// ListVehicles возвращает все автомобили владельца
func (s *Service) ListVehicles(ctx context.Context, ownerID uuid.UUID) ([]*domain.Vehicle, error) {
	return s.vehicleRepo.ListByOwner(ctx, ownerID)
}

// SearchAvailable возвращает доступные для аренды автомобили с учетом
// оплаченных броней: автомобиль с пересекающейся бронью в выдачу
// не попадает
func (s *Service) SearchAvailable(ctx context.Context, ownerID uuid.UUID, visibility []domain.VehicleVisibility, from, to time.Time) ([]*domain.Vehicle, error) {
	if len(visibility) == 0 {
		visibility = []domain.VehicleVisibility{domain.VisibleWeb, domain.VisibleOutlet, domain.VisibleBoth}
	}

	vehicles, err := s.vehicleRepo.ListAvailable(ctx, ownerID, visibility)
	if err != nil {
		return nil, fmt.Errorf("failed to list available vehicles: %w", err)
	}

	if from.IsZero() || to.IsZero() {
		return vehicles, nil
	}

	free := make([]*domain.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		booked, err := s.ticketRepo.HasBookingOverlap(ctx, v.ID, from, to)
		if err != nil {
			return nil, fmt.Errorf("failed to check bookings: %w", err)
		}
		if !booked {
			free = append(free, v)
		}
	}

	return free, nil
}

// MarkRented переводит автомобиль в rented с начальным пробегом
func (s *Service) MarkRented(ctx context.Context, vehicleID uuid.UUID, startMileage int64) error {
	return s.vehicleRepo.MarkRented(ctx, vehicleID, startMileage)
}

// MarkAvailable возвращает автомобиль в available с конечным пробегом.
// При превышении порога пробега после последней замены масла дополнительно
// обновляет lastOilCheck и ставит пометку о замене.
func (s *Service) MarkAvailable(ctx context.Context, vehicleID uuid.UUID, endMileage int64) error {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		return err
	}

	oilChange := vehicle.OilChangeDue(endMileage, s.oilThresholdKm)
	if oilChange {
		s.logger.Info("Oil change due", map[string]interface{}{
			"vehicle_id":     vehicleID,
			"end_mileage":    endMileage,
			"last_oil_check": vehicle.LastOilCheck,
		})
	}

	if err := s.vehicleRepo.Release(ctx, vehicleID, endMileage, oilChange); err != nil {
		return fmt.Errorf("failed to release vehicle: %w", err)
	}

	return nil
}

// IsRentable сообщает, можно ли сейчас сдать автомобиль в аренду
func (s *Service) IsRentable(ctx context.Context, vehicleID uuid.UUID) (bool, error) {
	vehicle, err := s.vehicleRepo.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, domain.ErrVehicleNotFound) {
			return false, nil
		}
		return false, err
	}

	return vehicle.Status == domain.VehicleAvailable, nil
}

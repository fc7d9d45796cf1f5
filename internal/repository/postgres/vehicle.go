package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type vehicleRepository struct {
	db *pgxpool.Pool
}

func NewVehicleRepository(db *pgxpool.Pool) repository.VehicleRepository {
	return &vehicleRepository{db: db}
}

const vehicleColumns = `id, owner_id, vin, plate, model, vehicle_type, make_year, color, body_style,
		engine_type, transmission, fuel, price, status, mileage, last_oil_check, remark,
		people_capacity, is_ac, visible_to, sale_type, packages, notes, image_url, featured_image,
		created_at, updated_at`

func scanVehicle(row pgx.Row) (*domain.Vehicle, error) {
	vehicle := &domain.Vehicle{}
	err := row.Scan(
		&vehicle.ID,
		&vehicle.OwnerID,
		&vehicle.VIN,
		&vehicle.Plate,
		&vehicle.Model,
		&vehicle.Type,
		&vehicle.MakeYear,
		&vehicle.Color,
		&vehicle.BodyStyle,
		&vehicle.EngineType,
		&vehicle.Transmission,
		&vehicle.Fuel,
		&vehicle.Price,
		&vehicle.Status,
		&vehicle.Mileage,
		&vehicle.LastOilCheck,
		&vehicle.Remark,
		&vehicle.PeopleCapacity,
		&vehicle.IsAC,
		&vehicle.VisibleTo,
		&vehicle.SaleType,
		&vehicle.Packages,
		&vehicle.Notes,
		&vehicle.ImageURL,
		&vehicle.FeaturedImage,
		&vehicle.CreatedAt,
		&vehicle.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return vehicle, nil
}

func (r *vehicleRepository) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		INSERT INTO vehicles (` + vehicleColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
		        $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)
	`

	vehicle.ID = uuid.New()
	vehicle.CreatedAt = time.Now()
	vehicle.UpdatedAt = time.Now()

	// Нормализуем номер перед сохранением
	vehicle.Plate = domain.NormalizePlate(vehicle.Plate)

	_, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.OwnerID,
		vehicle.VIN,
		vehicle.Plate,
		vehicle.Model,
		vehicle.Type,
		vehicle.MakeYear,
		vehicle.Color,
		vehicle.BodyStyle,
		vehicle.EngineType,
		vehicle.Transmission,
		vehicle.Fuel,
		vehicle.Price,
		vehicle.Status,
		vehicle.Mileage,
		vehicle.LastOilCheck,
		vehicle.Remark,
		vehicle.PeopleCapacity,
		vehicle.IsAC,
		vehicle.VisibleTo,
		vehicle.SaleType,
		vehicle.Packages,
		vehicle.Notes,
		vehicle.ImageURL,
		vehicle.FeaturedImage,
		vehicle.CreatedAt,
		vehicle.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlateTaken
		}
		return err
	}

	return nil
}

func (r *vehicleRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE id = $1`

	vehicle, err := scanVehicle(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrVehicleNotFound
		}
		return nil, err
	}

	return vehicle, nil
}

func (r *vehicleRepository) IsPlateTaken(ctx context.Context, plate string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM vehicles WHERE plate = $1 AND id <> $2)`

	var taken bool
	if err := r.db.QueryRow(ctx, query, domain.NormalizePlate(plate), excludeID).Scan(&taken); err != nil {
		return false, err
	}

	return taken, nil
}

func (r *vehicleRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Vehicle, error) {
	query := `SELECT ` + vehicleColumns + ` FROM vehicles WHERE owner_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

func (r *vehicleRepository) ListAvailable(ctx context.Context, ownerID uuid.UUID, visibility []domain.VehicleVisibility) ([]*domain.Vehicle, error) {
	query := `
		SELECT ` + vehicleColumns + `
		FROM vehicles
		WHERE status = $1 AND visible_to = ANY($2) AND ($3::uuid IS NULL OR owner_id = $3)
		ORDER BY created_at DESC
	`

	visible := make([]string, len(visibility))
	for i, v := range visibility {
		visible[i] = string(v)
	}

	var ownerFilter *uuid.UUID
	if ownerID != uuid.Nil {
		ownerFilter = &ownerID
	}

	rows, err := r.db.Query(ctx, query, domain.VehicleAvailable, visible, ownerFilter)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vehicles []*domain.Vehicle
	for rows.Next() {
		vehicle, err := scanVehicle(rows)
		if err != nil {
			return nil, err
		}
		vehicles = append(vehicles, vehicle)
	}

	return vehicles, rows.Err()
}

func (r *vehicleRepository) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	query := `
		UPDATE vehicles
		SET vin = $3, plate = $4, model = $5, vehicle_type = $6, make_year = $7, color = $8,
		    body_style = $9, engine_type = $10, transmission = $11, fuel = $12, price = $13,
		    status = $14, mileage = $15, last_oil_check = $16, remark = $17, people_capacity = $18,
		    is_ac = $19, visible_to = $20, sale_type = $21, packages = $22, notes = $23,
		    image_url = $24, featured_image = $25, updated_at = $26
		WHERE id = $1 AND owner_id = $2
	`

	vehicle.UpdatedAt = time.Now()
	vehicle.Plate = domain.NormalizePlate(vehicle.Plate)

	result, err := r.db.Exec(ctx, query,
		vehicle.ID,
		vehicle.OwnerID,
		vehicle.VIN,
		vehicle.Plate,
		vehicle.Model,
		vehicle.Type,
		vehicle.MakeYear,
		vehicle.Color,
		vehicle.BodyStyle,
		vehicle.EngineType,
		vehicle.Transmission,
		vehicle.Fuel,
		vehicle.Price,
		vehicle.Status,
		vehicle.Mileage,
		vehicle.LastOilCheck,
		vehicle.Remark,
		vehicle.PeopleCapacity,
		vehicle.IsAC,
		vehicle.VisibleTo,
		vehicle.SaleType,
		vehicle.Packages,
		vehicle.Notes,
		vehicle.ImageURL,
		vehicle.FeaturedImage,
		vehicle.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrPlateTaken
		}
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}

	return nil
}

func (r *vehicleRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := `DELETE FROM vehicles WHERE id = $1 AND owner_id = $2`

	result, err := r.db.Exec(ctx, query, id, ownerID)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}

	return nil
}

func (r *vehicleRepository) MarkRented(ctx context.Context, id uuid.UUID, startMileage int64) error {
	// Условная запись: статус меняется только из available,
	// параллельное создание второго договора на тот же автомобиль
	// проигрывает здесь
	query := `
		UPDATE vehicles
		SET status = $2, mileage = $3, updated_at = $4
		WHERE id = $1 AND status = $5
	`

	result, err := r.db.Exec(ctx, query, id, domain.VehicleRented, startMileage, time.Now(), domain.VehicleAvailable)
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrVehicleRented
	}

	return nil
}

func (r *vehicleRepository) Release(ctx context.Context, id uuid.UUID, endMileage int64, oilChange bool) error {
	query := `
		UPDATE vehicles
		SET status = $2, mileage = $3,
		    last_oil_check = CASE WHEN $4 THEN $3 ELSE last_oil_check END,
		    remark = CASE WHEN $4 THEN $5 ELSE remark END,
		    updated_at = $6
		WHERE id = $1
	`

	result, err := r.db.Exec(ctx, query, id, domain.VehicleAvailable, endMileage, oilChange, domain.OilChangeRemark, time.Now())
	if err != nil {
		return err
	}

	if result.RowsAffected() == 0 {
		return domain.ErrVehicleNotFound
	}

	return nil
}

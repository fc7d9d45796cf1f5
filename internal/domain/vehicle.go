package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// VehicleStatus представляет состояние автомобиля
type VehicleStatus string

const (
	VehicleAvailable   VehicleStatus = "available"
	VehicleRented      VehicleStatus = "rented"
	VehicleMaintenance VehicleStatus = "maintenance"
)

// VehicleVisibility определяет, где автомобиль показывается
type VehicleVisibility string

const (
	VisibleWeb    VehicleVisibility = "web"
	VisibleOutlet VehicleVisibility = "outlet"
	VisibleBoth   VehicleVisibility = "both"
)

// SaleType - назначение автомобиля
type SaleType string

const (
	SaleTypeRent SaleType = "rent"
	SaleTypeSale SaleType = "sale"
)

// RentPackage - тарифный пакет аренды (дни/цена)
type RentPackage struct {
	Days  int   `json:"days"`
	Price int64 `json:"price"` // в минорных единицах валюты
}

// OilChangeRemark - текст пометки, проставляемой при достижении
// порога пробега после последней замены масла
const OilChangeRemark = "Oil change"

// Vehicle - автомобиль владельца.
// ВАЖНО: переходы available↔rented выполняются только через
// создание/завершение договора, maintenance - административный статус.
type Vehicle struct {
	ID             uuid.UUID         `json:"id"`
	OwnerID        uuid.UUID         `json:"owner_id"`
	VIN            string            `json:"vin,omitempty"`
	Plate          string            `json:"vehicle_plate"` // номер (уникальный, нормализованный)
	Model          string            `json:"vehicle_model,omitempty"`
	Type           string            `json:"vehicle_type,omitempty"`
	MakeYear       string            `json:"make_year,omitempty"`
	Color          string            `json:"color,omitempty"`
	BodyStyle      string            `json:"body_style,omitempty"`
	EngineType     string            `json:"engine_type,omitempty"`
	Transmission   string            `json:"transmission,omitempty"`
	Fuel           string            `json:"fuel,omitempty"`
	Price          int64             `json:"price,omitempty"` // балансовая стоимость
	Status         VehicleStatus     `json:"status"`
	Mileage        int64             `json:"mileage"`
	LastOilCheck   int64             `json:"last_oil_check"` // пробег на момент последней замены масла
	Remark         string            `json:"remark,omitempty"`
	PeopleCapacity int               `json:"people_capacity,omitempty"`
	IsAC           bool              `json:"is_ac,omitempty"`
	VisibleTo      VehicleVisibility `json:"visible_to"`
	SaleType       SaleType          `json:"car_sale_type,omitempty"`
	Packages       []RentPackage     `json:"package,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	ImageURL       string            `json:"vehicle_image_url,omitempty"`
	FeaturedImage  string            `json:"featured_image,omitempty"`
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`

	// Связанные данные (не хранятся в БД, заполняются при необходимости)
	Owner *Owner `json:"owner,omitempty"`
}

// NormalizePlate нормализует номер автомобиля (убирает пробелы, приводит к верхнему регистру)
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.ReplaceAll(plate, " ", ""))
}

// Validate проверяет корректность данных автомобиля
func (v *Vehicle) Validate() error {
	if v.OwnerID == uuid.Nil {
		return ErrInvalidVehicleData
	}
	if v.Plate == "" {
		return ErrInvalidPlate
	}
	v.Plate = NormalizePlate(v.Plate)
	if len(v.Plate) < 3 || len(v.Plate) > 20 {
		return ErrInvalidPlate
	}
	switch v.Status {
	case VehicleAvailable, VehicleRented, VehicleMaintenance:
	default:
		return ErrInvalidVehicleData
	}
	return nil
}

// OilChangeDue проверяет, превышен ли порог пробега после последней
// замены масла при возврате автомобиля с показанием endMileage
func (v *Vehicle) OilChangeDue(endMileage, threshold int64) bool {
	return endMileage-v.LastOilCheck > threshold
}

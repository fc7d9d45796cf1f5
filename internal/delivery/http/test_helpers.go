package http

import (
	"context"
	"testing"
	"time"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/jwt"
	"github.com/google/uuid"
)

// CreateOwnerContext создает контекст сессии владельца для тестирования
func CreateOwnerContext(t *testing.T, ownerID uuid.UUID) context.Context {
	t.Helper()
	return context.WithValue(context.Background(), middleware.AuthClaimsKey, &jwt.Claims{
		OwnerID: ownerID,
		Role:    jwt.RoleOwner,
	})
}

// CreateMemberContext создает контекст сессии субаккаунта для тестирования
func CreateMemberContext(t *testing.T, ownerID, memberID uuid.UUID) context.Context {
	t.Helper()
	return context.WithValue(context.Background(), middleware.AuthClaimsKey, &jwt.Claims{
		OwnerID:  ownerID,
		MemberID: &memberID,
		Role:     jwt.RoleMember,
	})
}

// CreateTestVehicle создает тестовый автомобиль
func CreateTestVehicle(id, ownerID uuid.UUID, plate string) *domain.Vehicle {
	return &domain.Vehicle{
		ID:        id,
		OwnerID:   ownerID,
		Plate:     plate,
		Model:     "Test Model",
		Status:    domain.VehicleAvailable,
		VisibleTo: domain.VisibleBoth,
		SaleType:  domain.SaleTypeRent,
	}
}

// CreateTestContract создает тестовый договор
func CreateTestContract(id, ownerID, carID uuid.UUID) *domain.Contract {
	now := time.Now()
	return &domain.Contract{
		ID:      id,
		OwnerID: ownerID,
		CarID:   carID,
		Status:  domain.ContractActive,
		Client: domain.Client{
			Name:     domain.ClientName{First: "Test", Last: "Client"},
			Passport: domain.Passport{IDNo: "AB1234567"},
		},
		Rent: domain.RentPeriod{
			PickUp:  now,
			DropOut: now.Add(72 * time.Hour),
		},
		SerialNumber: "00001",
	}
}

// AssertSuccess проверяет успешный ответ API
func AssertSuccess(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || !success {
		t.Errorf("Expected success=true, got %v", response)
	}
}

// AssertError проверяет ошибочный ответ API
func AssertError(t *testing.T, response map[string]interface{}) {
	t.Helper()
	success, ok := response["success"].(bool)
	if !ok || success {
		t.Errorf("Expected success=false, got %v", response)
	}
}

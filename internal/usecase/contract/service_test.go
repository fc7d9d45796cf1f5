package contract

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/infrastructure/payment"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockContractRepo - мок для contract repository
type MockContractRepo struct {
	mock.Mock
}

func (m *MockContractRepo) Create(ctx context.Context, c *domain.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractRepo) GetByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (*domain.Contract, error) {
	args := m.Called(ctx, ownerID, passportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Contract), args.Error(1)
}

func (m *MockContractRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Contract, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Contract), args.Error(1)
}

func (m *MockContractRepo) Update(ctx context.Context, c *domain.Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockContractRepo) SetStatus(ctx context.Context, id, ownerID uuid.UUID, from, to domain.ContractStatus) error {
	args := m.Called(ctx, id, ownerID, from, to)
	return args.Error(0)
}

func (m *MockContractRepo) UpdateBalance(ctx context.Context, id uuid.UUID, totalAmount, paid, balance int64) error {
	args := m.Called(ctx, id, totalAmount, paid, balance)
	return args.Error(0)
}

func (m *MockContractRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockContractRepo) CreateBatch(ctx context.Context, contracts []*domain.Contract, transactions []*domain.Transaction) error {
	args := m.Called(ctx, contracts, transactions)
	return args.Error(0)
}

// MockTransactionRepo - мок для transaction repository
type MockTransactionRepo struct {
	mock.Mock
}

func (m *MockTransactionRepo) Create(ctx context.Context, trx *domain.Transaction) error {
	args := m.Called(ctx, trx)
	return args.Error(0)
}

func (m *MockTransactionRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Transaction, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListByContract(ctx context.Context, contractID uuid.UUID, onlyCompleted bool) ([]*domain.Transaction, error) {
	args := m.Called(ctx, contractID, onlyCompleted)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID, filter repository.TransactionFilter) ([]*domain.Transaction, error) {
	args := m.Called(ctx, ownerID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Transaction), args.Error(1)
}

func (m *MockTransactionRepo) SumByContract(ctx context.Context, contractID uuid.UUID) (int64, error) {
	args := m.Called(ctx, contractID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) SumByOwner(ctx context.Context, ownerID uuid.UUID, types []domain.PaymentType) (int64, error) {
	args := m.Called(ctx, ownerID, types)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) SumExpensesByCategory(ctx context.Context, ownerID uuid.UUID, category domain.ExpenseCategory) (int64, error) {
	args := m.Called(ctx, ownerID, category)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockTransactionRepo) Complete(ctx context.Context, paymentID, paymentIntent string) error {
	args := m.Called(ctx, paymentID, paymentIntent)
	return args.Error(0)
}

func (m *MockTransactionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTicketRepo - мок для ticket repository
type MockTicketRepo struct {
	mock.Mock
}

func (m *MockTicketRepo) Create(ctx context.Context, t *domain.Ticket) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTicketRepo) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, ownerID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepo) GetByToken(ctx context.Context, tokenID string) (*domain.Ticket, error) {
	args := m.Called(ctx, tokenID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepo) GetByContract(ctx context.Context, contractID uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepo) GetByTransaction(ctx context.Context, transactionID uuid.UUID) (*domain.Ticket, error) {
	args := m.Called(ctx, transactionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepo) ListOpen(ctx context.Context, ownerID uuid.UUID) ([]*domain.Ticket, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Ticket), args.Error(1)
}

func (m *MockTicketRepo) HasBookingOverlap(ctx context.Context, carID uuid.UUID, from, to time.Time) (bool, error) {
	args := m.Called(ctx, carID, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockTicketRepo) LinkContract(ctx context.Context, ticketID, contractID uuid.UUID) error {
	args := m.Called(ctx, ticketID, contractID)
	return args.Error(0)
}

func (m *MockTicketRepo) MarkCompleted(ctx context.Context, transactionID uuid.UUID) error {
	args := m.Called(ctx, transactionID)
	return args.Error(0)
}

func (m *MockTicketRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBlacklistRepo - мок для blacklist repository
type MockBlacklistRepo struct {
	mock.Mock
}

func (m *MockBlacklistRepo) Create(ctx context.Context, entry *domain.BlacklistEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockBlacklistRepo) GetByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (*domain.BlacklistEntry, error) {
	args := m.Called(ctx, ownerID, passportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BlacklistEntry), args.Error(1)
}

func (m *MockBlacklistRepo) DeleteByPassport(ctx context.Context, ownerID uuid.UUID, passportID string) (int64, error) {
	args := m.Called(ctx, ownerID, passportID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlacklistRepo) List(ctx context.Context, ownerID uuid.UUID) ([]*domain.BlacklistEntry, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.BlacklistEntry), args.Error(1)
}

// MockVehicleRepo - мок для vehicle repository
type MockVehicleRepo struct {
	mock.Mock
}

func (m *MockVehicleRepo) Create(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVehicleRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Vehicle, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) IsPlateTaken(ctx context.Context, plate string, excludeID uuid.UUID) (bool, error) {
	args := m.Called(ctx, plate, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockVehicleRepo) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*domain.Vehicle, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) ListAvailable(ctx context.Context, ownerID uuid.UUID, visibility []domain.VehicleVisibility) ([]*domain.Vehicle, error) {
	args := m.Called(ctx, ownerID, visibility)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Vehicle), args.Error(1)
}

func (m *MockVehicleRepo) Update(ctx context.Context, v *domain.Vehicle) error {
	args := m.Called(ctx, v)
	return args.Error(0)
}

func (m *MockVehicleRepo) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	args := m.Called(ctx, ownerID, id)
	return args.Error(0)
}

func (m *MockVehicleRepo) MarkRented(ctx context.Context, id uuid.UUID, startMileage int64) error {
	args := m.Called(ctx, id, startMileage)
	return args.Error(0)
}

func (m *MockVehicleRepo) Release(ctx context.Context, id uuid.UUID, endMileage int64, oilChange bool) error {
	args := m.Called(ctx, id, endMileage, oilChange)
	return args.Error(0)
}

// MockSerialRepo - мок для serial repository
type MockSerialRepo struct {
	mock.Mock
}

func (m *MockSerialRepo) Next(ctx context.Context, ownerID uuid.UUID, scope domain.SerialScope) (int64, error) {
	args := m.Called(ctx, ownerID, scope)
	return args.Get(0).(int64), args.Error(1)
}

// MockOwnerRepo - мок для owner repository
type MockOwnerRepo struct {
	mock.Mock
}

func (m *MockOwnerRepo) Create(ctx context.Context, owner *domain.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockOwnerRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Owner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *MockOwnerRepo) GetByEmail(ctx context.Context, email string) (*domain.Owner, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Owner), args.Error(1)
}

func (m *MockOwnerRepo) Update(ctx context.Context, owner *domain.Owner) error {
	args := m.Called(ctx, owner)
	return args.Error(0)
}

func (m *MockOwnerRepo) UpdatePaymentCredentials(ctx context.Context, id uuid.UUID, creds *domain.PaymentCredentials) error {
	args := m.Called(ctx, id, creds)
	return args.Error(0)
}

// MockProvider - мок для платежного провайдера
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCharge(ctx context.Context, creds *domain.PaymentCredentials, req payment.ChargeParams) (*payment.Charge, error) {
	args := m.Called(ctx, creds, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Charge), args.Error(1)
}

func (m *MockProvider) Refund(ctx context.Context, creds *domain.PaymentCredentials, chargeID string, amount int64, currency string) error {
	args := m.Called(ctx, creds, chargeID, amount, currency)
	return args.Error(0)
}

func (m *MockProvider) GetCharge(ctx context.Context, creds *domain.PaymentCredentials, chargeID string) (*payment.Charge, error) {
	args := m.Called(ctx, creds, chargeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Charge), args.Error(1)
}

// testEnv собирает сервис со всеми моками
type testEnv struct {
	contracts    *MockContractRepo
	transactions *MockTransactionRepo
	tickets      *MockTicketRepo
	blacklist    *MockBlacklistRepo
	vehicles     *MockVehicleRepo
	serials      *MockSerialRepo
	owners       *MockOwnerRepo
	provider     *MockProvider
	service      *Service
}

func newTestEnv() *testEnv {
	env := &testEnv{
		contracts:    new(MockContractRepo),
		transactions: new(MockTransactionRepo),
		tickets:      new(MockTicketRepo),
		blacklist:    new(MockBlacklistRepo),
		vehicles:     new(MockVehicleRepo),
		serials:      new(MockSerialRepo),
		owners:       new(MockOwnerRepo),
		provider:     new(MockProvider),
	}
	env.service = NewService(
		env.contracts,
		env.transactions,
		env.tickets,
		env.blacklist,
		env.vehicles,
		env.serials,
		env.owners,
		env.provider,
		5000,
		logger.NewNoop(),
	)
	return env
}

func (env *testEnv) assertExpectations(t *testing.T) {
	t.Helper()
	env.contracts.AssertExpectations(t)
	env.transactions.AssertExpectations(t)
	env.tickets.AssertExpectations(t)
	env.blacklist.AssertExpectations(t)
	env.vehicles.AssertExpectations(t)
	env.serials.AssertExpectations(t)
	env.owners.AssertExpectations(t)
	env.provider.AssertExpectations(t)
}

func availableVehicle(id, ownerID uuid.UUID, mileage int64) *domain.Vehicle {
	return &domain.Vehicle{
		ID:           id,
		OwnerID:      ownerID,
		Plate:        "A12345",
		Status:       domain.VehicleAvailable,
		Mileage:      mileage,
		LastOilCheck: mileage,
	}
}

// TestService_CreateContract тестирует заключение договора
func TestService_CreateContract(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	ctx := context.Background()

	t.Run("успешное заключение с первым платежом наличными", func(t *testing.T) {
		env := newTestEnv()

		env.vehicles.On("GetByID", ctx, carID).Return(availableVehicle(carID, ownerID, 40000), nil)
		env.blacklist.On("GetByPassport", ctx, ownerID, "AB1234567").Return(nil, domain.ErrNotFound)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeContract).Return(int64(7), nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(12), nil)
		env.contracts.On("Create", ctx, mock.AnythingOfType("*domain.Contract")).Return(nil)
		env.transactions.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
		env.vehicles.On("MarkRented", ctx, carID, int64(40000)).Return(nil)

		result, err := env.service.CreateContract(ctx, &CreateContractRequest{
			OwnerID: ownerID,
			CarID:   carID,
			Client: domain.Client{
				Name:     domain.ClientName{First: "Test", Last: "Client"},
				Passport: domain.Passport{IDNo: "AB1234567"},
			},
			TotalAmount: 90000,
			Amount:      30000,
			PaymentType: domain.PaymentCash,
		})

		require.NoError(t, err)
		assert.Equal(t, CaseCreated, result.Case)
		require.NotNil(t, result.Contract)
		assert.Equal(t, "00007", result.Contract.SerialNumber)
		assert.Equal(t, int64(30000), result.Contract.Paid)
		assert.Equal(t, int64(60000), result.Contract.Balance)
		// Пробег не передан - берется текущий пробег автомобиля
		assert.Equal(t, int64(40000), result.Contract.StartMileageReading)

		env.assertExpectations(t)
	})

	t.Run("клиент в черном списке - без побочных эффектов", func(t *testing.T) {
		env := newTestEnv()

		entry := &domain.BlacklistEntry{
			ID:         uuid.New(),
			OwnerID:    ownerID,
			PassportID: "AB1234567",
			Reason:     "unpaid balance",
		}
		env.vehicles.On("GetByID", ctx, carID).Return(availableVehicle(carID, ownerID, 40000), nil)
		env.blacklist.On("GetByPassport", ctx, ownerID, "AB1234567").Return(entry, nil)

		result, err := env.service.CreateContract(ctx, &CreateContractRequest{
			OwnerID: ownerID,
			CarID:   carID,
			Client: domain.Client{
				Passport: domain.Passport{IDNo: "AB1234567"},
			},
			TotalAmount: 90000,
		})

		require.NoError(t, err)
		assert.Equal(t, CaseBlacklisted, result.Case)
		assert.Nil(t, result.Contract)
		assert.Equal(t, entry, result.Blacklist)

		// Договор не создается, автомобиль не переводится в rented
		env.contracts.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		env.vehicles.AssertNotCalled(t, "MarkRented", mock.Anything, mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})

	t.Run("override пропускает проверку черного списка", func(t *testing.T) {
		env := newTestEnv()

		env.vehicles.On("GetByID", ctx, carID).Return(availableVehicle(carID, ownerID, 40000), nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeContract).Return(int64(8), nil)
		env.contracts.On("Create", ctx, mock.AnythingOfType("*domain.Contract")).Return(nil)
		env.vehicles.On("MarkRented", ctx, carID, int64(40000)).Return(nil)

		result, err := env.service.CreateContract(ctx, &CreateContractRequest{
			OwnerID: ownerID,
			CarID:   carID,
			Client: domain.Client{
				Passport: domain.Passport{IDNo: "AB1234567"},
			},
			TotalAmount:       90000,
			OverrideBlacklist: true,
		})

		require.NoError(t, err)
		assert.Equal(t, CaseCreated, result.Case)

		env.blacklist.AssertNotCalled(t, "GetByPassport", mock.Anything, mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})

	t.Run("автомобиль не available", func(t *testing.T) {
		env := newTestEnv()

		rented := availableVehicle(carID, ownerID, 40000)
		rented.Status = domain.VehicleRented
		env.vehicles.On("GetByID", ctx, carID).Return(rented, nil)

		_, err := env.service.CreateContract(ctx, &CreateContractRequest{
			OwnerID: ownerID,
			CarID:   carID,
		})

		assert.ErrorIs(t, err, domain.ErrVehicleRented)
		env.assertExpectations(t)
	})

	t.Run("чужой автомобиль", func(t *testing.T) {
		env := newTestEnv()

		env.vehicles.On("GetByID", ctx, carID).Return(availableVehicle(carID, uuid.New(), 40000), nil)

		_, err := env.service.CreateContract(ctx, &CreateContractRequest{
			OwnerID: ownerID,
			CarID:   carID,
		})

		assert.ErrorIs(t, err, domain.ErrNotOwner)
		env.assertExpectations(t)
	})

	t.Run("компенсация при проигрыше гонки за автомобиль", func(t *testing.T) {
		env := newTestEnv()

		env.vehicles.On("GetByID", ctx, carID).Return(availableVehicle(carID, ownerID, 40000), nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeContract).Return(int64(9), nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(15), nil)
		env.contracts.On("Create", ctx, mock.AnythingOfType("*domain.Contract")).Return(nil)
		env.transactions.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
		// Параллельный договор успел первым
		env.vehicles.On("MarkRented", ctx, carID, int64(40000)).Return(domain.ErrVehicleRented)
		env.transactions.On("Delete", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)
		env.contracts.On("Delete", ctx, mock.AnythingOfType("uuid.UUID")).Return(nil)

		_, err := env.service.CreateContract(ctx, &CreateContractRequest{
			OwnerID:     ownerID,
			CarID:       carID,
			TotalAmount: 90000,
			Amount:      30000,
			PaymentType: domain.PaymentCash,
		})

		assert.ErrorIs(t, err, domain.ErrVehicleRented)
		env.assertExpectations(t)
	})
}

// TestService_GetContract тестирует карточку договора
func TestService_GetContract(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	contractID := uuid.New()
	ctx := context.Background()

	t.Run("возвраты уменьшают сумму платежей", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(&domain.Contract{
			ID:          contractID,
			OwnerID:     ownerID,
			CarID:       carID,
			Status:      domain.ContractActive,
			TotalAmount: 90000,
		}, nil)
		env.transactions.On("ListByContract", ctx, contractID, true).Return([]*domain.Transaction{
			{ID: uuid.New(), Type: domain.PaymentCash, Amount: 90000, IsCompleted: true},
			{ID: uuid.New(), Type: domain.PaymentRefund, Amount: 5000, IsCompleted: true},
		}, nil)
		env.vehicles.On("GetByID", ctx, carID).Return(availableVehicle(carID, ownerID, 40000), nil)

		detail, err := env.service.GetContract(ctx, ownerID, contractID)

		require.NoError(t, err)
		assert.Len(t, detail.Transactions, 2)
		assert.Equal(t, int64(85000), detail.PaidTotal)

		env.assertExpectations(t)
	})

	t.Run("чужой договор", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(&domain.Contract{
			ID:      contractID,
			OwnerID: uuid.New(),
		}, nil)

		_, err := env.service.GetContract(ctx, ownerID, contractID)

		assert.ErrorIs(t, err, domain.ErrContractNotFound)
		env.assertExpectations(t)
	})
}

// TestService_EditContract тестирует частичное изменение договора
func TestService_EditContract(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	contractID := uuid.New()
	ctx := context.Background()

	client := domain.Client{
		Name:     domain.ClientName{First: "Test", Last: "Client"},
		Passport: domain.Passport{IDNo: "AB1234567"},
	}

	storedContract := func() *domain.Contract {
		return &domain.Contract{
			ID:          contractID,
			OwnerID:     ownerID,
			CarID:       carID,
			Client:      client,
			Status:      domain.ContractActive,
			Package:     domain.RentPackage{Days: 7, Price: 90000},
			TotalAmount: 90000,
			Paid:        30000,
			Balance:     60000,
		}
	}

	t.Run("изменение суммы пересчитывает баланс", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(storedContract(), nil)
		env.contracts.On("Update", ctx, mock.MatchedBy(func(c *domain.Contract) bool {
			return c.TotalAmount == 100000 && c.Balance == 70000
		})).Return(nil)

		total := int64(100000)
		updated, err := env.service.EditContract(ctx, ownerID, contractID, &EditContractRequest{
			TotalAmount: &total,
		})

		require.NoError(t, err)
		assert.Equal(t, int64(100000), updated.TotalAmount)
		assert.Equal(t, int64(70000), updated.Balance)

		env.assertExpectations(t)
	})

	t.Run("повтор текущих значений не пишет в БД", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(storedContract(), nil)

		sameClient := client
		samePackage := domain.RentPackage{Days: 7, Price: 90000}
		sameTotal := int64(90000)
		_, err := env.service.EditContract(ctx, ownerID, contractID, &EditContractRequest{
			Client:      &sameClient,
			Package:     &samePackage,
			TotalAmount: &sameTotal,
		})

		assert.ErrorIs(t, err, domain.ErrNoChanges)
		env.contracts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})

	t.Run("правка по чужому автомобилю не проходит", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(storedContract(), nil)

		total := int64(100000)
		_, err := env.service.EditContract(ctx, ownerID, contractID, &EditContractRequest{
			CarID:       uuid.New(),
			TotalAmount: &total,
		})

		assert.ErrorIs(t, err, domain.ErrContractNotFound)
		env.contracts.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})
}

// TestService_EndContract тестирует завершение договора
func TestService_EndContract(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	contractID := uuid.New()
	ctx := context.Background()

	activeContract := func() *domain.Contract {
		return &domain.Contract{
			ID:                  contractID,
			OwnerID:             ownerID,
			CarID:               carID,
			Status:              domain.ContractActive,
			StartMileageReading: 40000,
			TotalAmount:         90000,
		}
	}

	t.Run("завершение с доплатой и заменой масла", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(activeContract(), nil)
		env.contracts.On("SetStatus", ctx, contractID, ownerID, domain.ContractActive, domain.ContractEnded).Return(nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(20), nil)
		env.transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.Type == domain.PaymentCash && trx.Amount == 10000 && trx.IsCompleted
		})).Return(nil)
		env.transactions.On("SumByContract", ctx, contractID).Return(int64(90000), nil)
		env.contracts.On("Update", ctx, mock.AnythingOfType("*domain.Contract")).Return(nil)

		// Пробег с начала обслуживания превысил порог 5000
		vehicle := availableVehicle(carID, ownerID, 40000)
		vehicle.LastOilCheck = 40000
		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.vehicles.On("Release", ctx, carID, int64(45001), true).Return(nil)

		ended, err := env.service.EndContract(ctx, ownerID, contractID, &EndContractRequest{
			EndMileage:       45001,
			SettlementAmount: 10000,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.ContractEnded, ended.Status)
		assert.Equal(t, int64(90000), ended.Paid)
		assert.Equal(t, int64(0), ended.Balance)

		env.assertExpectations(t)
	})

	t.Run("пробег ровно на пороге не требует замены масла", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(activeContract(), nil)
		env.contracts.On("SetStatus", ctx, contractID, ownerID, domain.ContractActive, domain.ContractEnded).Return(nil)
		env.transactions.On("SumByContract", ctx, contractID).Return(int64(90000), nil)
		env.contracts.On("Update", ctx, mock.AnythingOfType("*domain.Contract")).Return(nil)

		vehicle := availableVehicle(carID, ownerID, 40000)
		vehicle.LastOilCheck = 40000
		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.vehicles.On("Release", ctx, carID, int64(45000), false).Return(nil)

		_, err := env.service.EndContract(ctx, ownerID, contractID, &EndContractRequest{
			EndMileage: 45000,
		})

		require.NoError(t, err)
		env.assertExpectations(t)
	})

	t.Run("возврат клиенту при отрицательном расчете", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(activeContract(), nil)
		env.contracts.On("SetStatus", ctx, contractID, ownerID, domain.ContractActive, domain.ContractEnded).Return(nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(21), nil)
		env.transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.Type == domain.PaymentRefund && trx.Amount == 5000
		})).Return(nil)
		env.transactions.On("SumByContract", ctx, contractID).Return(int64(85000), nil)
		env.contracts.On("Update", ctx, mock.AnythingOfType("*domain.Contract")).Return(nil)

		vehicle := availableVehicle(carID, ownerID, 40000)
		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.vehicles.On("Release", ctx, carID, int64(42000), false).Return(nil)

		_, err := env.service.EndContract(ctx, ownerID, contractID, &EndContractRequest{
			EndMileage:       42000,
			SettlementAmount: -5000,
		})

		require.NoError(t, err)
		env.assertExpectations(t)
	})

	t.Run("чужой договор неотличим от несуществующего", func(t *testing.T) {
		env := newTestEnv()

		other := activeContract()
		other.OwnerID = uuid.New()
		env.contracts.On("GetByID", ctx, contractID).Return(other, nil)

		_, err := env.service.EndContract(ctx, ownerID, contractID, &EndContractRequest{EndMileage: 42000})

		assert.ErrorIs(t, err, domain.ErrContractNotFound)
		env.assertExpectations(t)
	})
}

// TestService_CancelContract тестирует расторжение договора
func TestService_CancelContract(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	contractID := uuid.New()
	ctx := context.Background()

	owner := &domain.Owner{
		ID:       ownerID,
		Currency: "USD",
		Payment:  &domain.PaymentCredentials{APIKey: "pk_test", SecretKey: "sk_test"},
	}

	activeContract := func() *domain.Contract {
		return &domain.Contract{
			ID:          contractID,
			OwnerID:     ownerID,
			CarID:       carID,
			Status:      domain.ContractActive,
			TotalAmount: 90000,
		}
	}

	t.Run("разбивка возвратов по типам платежей", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(activeContract(), nil)
		env.contracts.On("SetStatus", ctx, contractID, ownerID, domain.ContractActive, domain.ContractTerminated).Return(nil)

		entries := []*domain.Transaction{
			{ID: uuid.New(), Type: domain.PaymentOnline, Amount: 30000, VAT: 1500, PaymentID: "chg_1", IsCompleted: true},
			{ID: uuid.New(), Type: domain.PaymentCash, Amount: 15000, VAT: 750, IsCompleted: true},
		}
		env.transactions.On("ListByContract", ctx, contractID, true).Return(entries, nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)

		// НДС исходного платежа переносится на возвратную запись
		env.provider.On("Refund", ctx, owner.Payment, "chg_1", int64(30000), "USD").Return(nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(30), nil)
		env.transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.Type == domain.PaymentRefund && trx.Amount == 30000 && trx.VAT == 1500
		})).Return(nil).Once()
		env.transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.Type == domain.PaymentWithdraw && trx.Amount == 15000 && trx.VAT == 750
		})).Return(nil).Once()

		vehicle := availableVehicle(carID, ownerID, 41000)
		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.vehicles.On("Release", ctx, carID, int64(41000), false).Return(nil)

		result, err := env.service.CancelContract(ctx, ownerID, contractID)

		require.NoError(t, err)
		assert.Equal(t, CaseCancelled, result.Case)
		assert.Equal(t, int64(30000), result.BankTotal)
		assert.Equal(t, int64(15000), result.CashTotal)
		assert.Equal(t, 0, result.FailedRefunds)

		env.assertExpectations(t)
	})

	t.Run("неудачный возврат провайдера уходит в кассу", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(activeContract(), nil)
		env.contracts.On("SetStatus", ctx, contractID, ownerID, domain.ContractActive, domain.ContractTerminated).Return(nil)

		entries := []*domain.Transaction{
			{ID: uuid.New(), Type: domain.PaymentOnline, Amount: 30000, VAT: 1500, PaymentID: "chg_1", IsCompleted: true},
		}
		env.transactions.On("ListByContract", ctx, contractID, true).Return(entries, nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)

		env.provider.On("Refund", ctx, owner.Payment, "chg_1", int64(30000), "USD").
			Return(errors.New("provider unavailable"))
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(31), nil)
		env.transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.Type == domain.PaymentWithdraw && trx.Amount == 30000 && trx.VAT == 1500
		})).Return(nil)

		vehicle := availableVehicle(carID, ownerID, 41000)
		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.vehicles.On("Release", ctx, carID, int64(41000), false).Return(nil)

		result, err := env.service.CancelContract(ctx, ownerID, contractID)

		require.NoError(t, err)
		assert.Equal(t, int64(0), result.BankTotal)
		assert.Equal(t, int64(30000), result.CashTotal)
		assert.Equal(t, 1, result.FailedRefunds)

		env.assertExpectations(t)
	})

	t.Run("договор с активной бронью не расторгается", func(t *testing.T) {
		env := newTestEnv()

		ticketID := uuid.New()
		c := activeContract()
		c.TicketID = &ticketID
		env.contracts.On("GetByID", ctx, contractID).Return(c, nil)
		env.tickets.On("GetByContract", ctx, contractID).Return(&domain.Ticket{ID: ticketID}, nil)

		result, err := env.service.CancelContract(ctx, ownerID, contractID)

		require.NoError(t, err)
		assert.Equal(t, CaseBookedOnline, result.Case)

		env.contracts.AssertNotCalled(t, "SetStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})
}

// TestService_CashReceipt тестирует внесение платежа по договору
func TestService_CashReceipt(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	contractID := uuid.New()
	ctx := context.Background()

	t.Run("платеж пересчитывает баланс", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(&domain.Contract{
			ID:          contractID,
			OwnerID:     ownerID,
			CarID:       carID,
			Status:      domain.ContractActive,
			TotalAmount: 90000,
		}, nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(40), nil)
		env.transactions.On("Create", ctx, mock.AnythingOfType("*domain.Transaction")).Return(nil)
		env.transactions.On("SumByContract", ctx, contractID).Return(int64(45000), nil)
		env.contracts.On("UpdateBalance", ctx, contractID, int64(90000), int64(45000), int64(45000)).Return(nil)

		trx, err := env.service.CashReceipt(ctx, ownerID, contractID, &CashReceiptRequest{
			Amount:      15000,
			PaymentType: domain.PaymentBank,
		})

		require.NoError(t, err)
		assert.True(t, trx.IsCompleted)
		assert.Equal(t, "00040", trx.SerialNumber)

		env.assertExpectations(t)
	})

	t.Run("завершенный договор не принимает платежи", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(&domain.Contract{
			ID:      contractID,
			OwnerID: ownerID,
			Status:  domain.ContractEnded,
		}, nil)

		_, err := env.service.CashReceipt(ctx, ownerID, contractID, &CashReceiptRequest{
			Amount:      15000,
			PaymentType: domain.PaymentCash,
		})

		assert.ErrorIs(t, err, domain.ErrContractNotActive)
		env.assertExpectations(t)
	})

	t.Run("online тип запрещен для ручного внесения", func(t *testing.T) {
		env := newTestEnv()

		env.contracts.On("GetByID", ctx, contractID).Return(&domain.Contract{
			ID:      contractID,
			OwnerID: ownerID,
			Status:  domain.ContractActive,
		}, nil)

		_, err := env.service.CashReceipt(ctx, ownerID, contractID, &CashReceiptRequest{
			Amount:      15000,
			PaymentType: domain.PaymentOnline,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidPaymentType)
		env.assertExpectations(t)
	})
}

// TestService_ImportContracts тестирует массовый импорт истории
func TestService_ImportContracts(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	ctx := context.Background()

	t.Run("импорт с платежами", func(t *testing.T) {
		env := newTestEnv()

		env.vehicles.On("GetByID", ctx, carID).Return(availableVehicle(carID, ownerID, 40000), nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeContract).Return(int64(1), nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(1), nil)
		env.contracts.On("CreateBatch", ctx,
			mock.MatchedBy(func(contracts []*domain.Contract) bool {
				return len(contracts) == 1 && contracts[0].Status == domain.ContractEnded
			}),
			mock.MatchedBy(func(transactions []*domain.Transaction) bool {
				return len(transactions) == 1 && transactions[0].IsCompleted
			}),
		).Return(nil)

		contracts, err := env.service.ImportContracts(ctx, ownerID, []ImportContract{
			{
				CarID:       carID,
				TotalAmount: 60000,
				Paid:        60000,
			},
		})

		require.NoError(t, err)
		assert.Len(t, contracts, 1)
		env.assertExpectations(t)
	})

	t.Run("пустой пакет отклоняется", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.service.ImportContracts(ctx, ownerID, nil)

		assert.ErrorIs(t, err, domain.ErrBadRequest)
		env.assertExpectations(t)
	})

	t.Run("чужой автомобиль отклоняет весь пакет", func(t *testing.T) {
		env := newTestEnv()

		env.vehicles.On("GetByID", ctx, carID).Return(availableVehicle(carID, uuid.New(), 40000), nil)

		_, err := env.service.ImportContracts(ctx, ownerID, []ImportContract{{CarID: carID}})

		assert.ErrorIs(t, err, domain.ErrNotOwner)
		env.contracts.AssertNotCalled(t, "CreateBatch", mock.Anything, mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})
}

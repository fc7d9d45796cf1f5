package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

func newTestService() (*Service, *MockTransactionRepo, *MockVehicleRepo, *MockSerialRepo) {
	transactions := new(MockTransactionRepo)
	vehicles := new(MockVehicleRepo)
	serials := new(MockSerialRepo)
	return NewService(transactions, vehicles, serials, logger.NewNoop()), transactions, vehicles, serials
}

// TestService_AddExpense тестирует создание расходной записи
func TestService_AddExpense(t *testing.T) {
	ownerID := uuid.New()
	ctx := context.Background()

	t.Run("расход с категорией", func(t *testing.T) {
		service, transactions, _, serials := newTestService()

		serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(3), nil)
		transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.Type == domain.PaymentExpense &&
				trx.Category == domain.ExpenseMaintenance &&
				trx.IsCompleted
		})).Return(nil)

		trx, err := service.AddExpense(ctx, ownerID, &AddExpenseRequest{
			Amount:   12000,
			Category: domain.ExpenseMaintenance,
			Title:    "Oil change",
		})

		require.NoError(t, err)
		assert.Equal(t, "00003", trx.SerialNumber)

		transactions.AssertExpectations(t)
	})

	t.Run("неизвестная категория", func(t *testing.T) {
		service, transactions, _, _ := newTestService()

		_, err := service.AddExpense(ctx, ownerID, &AddExpenseRequest{
			Amount:   12000,
			Category: "groceries",
		})

		assert.ErrorIs(t, err, domain.ErrInvalidPaymentType)
		transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("неположительная сумма", func(t *testing.T) {
		service, _, _, _ := newTestService()

		_, err := service.AddExpense(ctx, ownerID, &AddExpenseRequest{
			Amount:   0,
			Category: domain.ExpenseTax,
		})

		assert.ErrorIs(t, err, domain.ErrInvalidAmount)
	})
}

// TestService_AddWithdrawal тестирует снятие средств
func TestService_AddWithdrawal(t *testing.T) {
	ownerID := uuid.New()
	ctx := context.Background()

	tests := []struct {
		name         string
		fromBank     bool
		expectedType domain.PaymentType
	}{
		{"снятие из кассы", false, domain.PaymentWithdraw},
		{"снятие с банковского счета", true, domain.PaymentWithdrawBank},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, transactions, _, serials := newTestService()

			serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(4), nil)
			transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
				return trx.Type == tt.expectedType && trx.Amount == 50000
			})).Return(nil)

			trx, err := service.AddWithdrawal(ctx, ownerID, &AddWithdrawalRequest{
				Amount:   50000,
				FromBank: tt.fromBank,
			})

			require.NoError(t, err)
			assert.Equal(t, tt.expectedType, trx.Type)

			transactions.AssertExpectations(t)
		})
	}
}

// TestService_CarEarnings тестирует отчет по заработку автомобиля
func TestService_CarEarnings(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	ctx := context.Background()

	t.Run("сумма по завершенным платежам за период", func(t *testing.T) {
		service, transactions, vehicles, _ := newTestService()

		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)

		vehicles.On("GetByID", ctx, carID).Return(&domain.Vehicle{ID: carID, OwnerID: ownerID}, nil)
		transactions.On("ListByOwner", ctx, ownerID, mock.MatchedBy(func(f repository.TransactionFilter) bool {
			return f.CarID != nil && *f.CarID == carID &&
				f.OnlyComplete && f.From != nil && f.To != nil
		})).Return([]*domain.Transaction{
			{Amount: 30000, Type: domain.PaymentCash},
			{Amount: 45000, Type: domain.PaymentOnline},
		}, nil)

		earnings, err := service.CarEarnings(ctx, ownerID, carID, from, to)

		require.NoError(t, err)
		assert.Equal(t, int64(75000), earnings.Total)
		assert.Len(t, earnings.Transactions, 2)
	})

	t.Run("чужой автомобиль", func(t *testing.T) {
		service, _, vehicles, _ := newTestService()

		vehicles.On("GetByID", ctx, carID).Return(&domain.Vehicle{ID: carID, OwnerID: uuid.New()}, nil)

		_, err := service.CarEarnings(ctx, ownerID, carID, time.Time{}, time.Time{})

		assert.ErrorIs(t, err, domain.ErrNotOwner)
	})
}

// TestService_CapitalSummary тестирует сводку по капиталу
func TestService_CapitalSummary(t *testing.T) {
	ownerID := uuid.New()
	ctx := context.Background()

	t.Run("сводка включает только ненулевые категории", func(t *testing.T) {
		service, transactions, vehicles, _ := newTestService()

		vehicles.On("ListByOwner", ctx, ownerID).Return([]*domain.Vehicle{
			{ID: uuid.New(), OwnerID: ownerID, Price: 2500000},
			{ID: uuid.New(), OwnerID: ownerID, Price: 1800000},
		}, nil)
		transactions.On("SumByOwner", ctx, ownerID, []domain.PaymentType{
			domain.PaymentOnline, domain.PaymentCash, domain.PaymentBank,
		}).Return(int64(640000), nil)

		transactions.On("SumExpensesByCategory", ctx, ownerID, domain.ExpenseMaintenance).
			Return(int64(45000), nil)
		for _, category := range []domain.ExpenseCategory{
			domain.ExpenseUtilities, domain.ExpenseAdditional,
			domain.ExpenseSalary, domain.ExpenseTax, domain.ExpenseOther,
		} {
			transactions.On("SumExpensesByCategory", ctx, ownerID, category).Return(int64(0), nil)
		}

		summary, err := service.CapitalSummary(ctx, ownerID)

		require.NoError(t, err)
		assert.Equal(t, int64(4300000), summary.FleetValue)
		assert.Equal(t, int64(640000), summary.Earnings)
		assert.Len(t, summary.Expenses, 1)
		assert.Equal(t, int64(45000), summary.Expenses[domain.ExpenseMaintenance])
	})
}

// TestService_ListPayments проверяет, что брони не попадают в выручку
func TestService_ListPayments(t *testing.T) {
	ownerID := uuid.New()
	ctx := context.Background()

	service, transactions, _, _ := newTestService()

	transactions.On("ListByOwner", ctx, ownerID, mock.MatchedBy(func(f repository.TransactionFilter) bool {
		return f.OnlyComplete && len(f.ExcludeTypes) == 2
	})).Return([]*domain.Transaction{}, nil)

	_, err := service.ListPayments(ctx, ownerID)

	require.NoError(t, err)
	transactions.AssertExpectations(t)
}

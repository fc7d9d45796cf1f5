package ticket

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/frontandrew/rental/internal/domain"
	"github.com/frontandrew/rental/internal/infrastructure/mailer"
	"github.com/frontandrew/rental/internal/infrastructure/payment"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/frontandrew/rental/internal/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

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

// MockSerialRepo - мок для serial repository
type MockSerialRepo struct {
	mock.Mock
}

func (m *MockSerialRepo) Next(ctx context.Context, ownerID uuid.UUID, scope domain.SerialScope) (int64, error) {
	args := m.Called(ctx, ownerID, scope)
	return args.Get(0).(int64), args.Error(1)
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

// MockMailer - мок для отправителя писем
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendBookingConfirmation(ctx context.Context, mail mailer.BookingMail) {
	m.Called(ctx, mail)
}

func (m *MockMailer) SendBookingCancelled(ctx context.Context, mail mailer.BookingMail) {
	m.Called(ctx, mail)
}

type testEnv struct {
	tickets      *MockTicketRepo
	transactions *MockTransactionRepo
	vehicles     *MockVehicleRepo
	owners       *MockOwnerRepo
	serials      *MockSerialRepo
	provider     *MockProvider
	mailer       *MockMailer
	service      *Service
}

func newTestEnv(cfg Config) *testEnv {
	env := &testEnv{
		tickets:      new(MockTicketRepo),
		transactions: new(MockTransactionRepo),
		vehicles:     new(MockVehicleRepo),
		owners:       new(MockOwnerRepo),
		serials:      new(MockSerialRepo),
		provider:     new(MockProvider),
		mailer:       new(MockMailer),
	}
	env.service = NewService(
		env.tickets,
		env.transactions,
		env.vehicles,
		env.owners,
		env.serials,
		env.provider,
		env.mailer,
		cfg,
		logger.NewNoop(),
	)
	return env
}

func (env *testEnv) assertExpectations(t *testing.T) {
	t.Helper()
	env.tickets.AssertExpectations(t)
	env.transactions.AssertExpectations(t)
	env.vehicles.AssertExpectations(t)
	env.owners.AssertExpectations(t)
	env.serials.AssertExpectations(t)
	env.provider.AssertExpectations(t)
	env.mailer.AssertExpectations(t)
}

func testDriver() domain.DriverInfo {
	return domain.DriverInfo{
		FirstName: "John",
		LastName:  "Driver",
		Contact: domain.DriverContact{
			Email:       "driver@example.com",
			PhoneNumber: "5551234",
		},
	}
}

// TestService_CreateTicket тестирует онлайн-бронирование
func TestService_CreateTicket(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	ctx := context.Background()
	now := time.Now()

	vehicle := &domain.Vehicle{
		ID:      carID,
		OwnerID: ownerID,
		Plate:   "A12345",
		Model:   "Toyota Camry",
		Status:  domain.VehicleAvailable,
	}

	owner := &domain.Owner{
		ID:       ownerID,
		Email:    "owner@example.com",
		Currency: "USD",
		Payment:  &domain.PaymentCredentials{APIKey: "pk_test", SecretKey: "sk_test"},
	}

	baseRequest := func(amount int64) *CreateTicketRequest {
		return &CreateTicketRequest{
			OwnerID:    ownerID,
			CarID:      carID,
			PickUp:     now.Add(24 * time.Hour),
			DropOff:    now.Add(96 * time.Hour),
			DriverInfo: testDriver(),
			Amount:     amount,
		}
	}

	t.Run("платная бронь создает платеж у провайдера", func(t *testing.T) {
		env := newTestEnv(Config{PublicURL: "https://rental.example.com"})

		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.tickets.On("HasBookingOverlap", ctx, carID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(false, nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(5), nil)
		env.provider.On("CreateCharge", ctx, owner.Payment, mock.MatchedBy(func(p payment.ChargeParams) bool {
			return p.Amount == 30000 && p.Currency == "USD" && p.Email == "driver@example.com"
		})).Return(&payment.Charge{ID: "chg_123", RedirectURL: "https://pay.example.com/chg_123"}, nil)
		env.transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.Type == domain.PaymentTicket && trx.PaymentID == "chg_123" && !trx.IsCompleted
		})).Return(nil)
		env.tickets.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).Return(nil)

		result, err := env.service.CreateTicket(ctx, baseRequest(30000))

		require.NoError(t, err)
		assert.Equal(t, CaseCreated, result.Case)
		assert.Equal(t, "https://pay.example.com/chg_123", result.PaymentURL)
		require.NotNil(t, result.Ticket)
		assert.False(t, result.Ticket.IsCompleted)
		assert.NotEmpty(t, result.Ticket.TokenID)

		// Письмо уходит после оплаты через webhook, не при создании
		env.mailer.AssertNotCalled(t, "SendBookingConfirmation", mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})

	t.Run("бесплатная бронь подтверждается сразу", func(t *testing.T) {
		env := newTestEnv(Config{PublicURL: "https://rental.example.com"})

		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.tickets.On("HasBookingOverlap", ctx, carID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(false, nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(6), nil)
		env.transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.IsCompleted && trx.Amount == 0
		})).Return(nil)
		env.tickets.On("Create", ctx, mock.AnythingOfType("*domain.Ticket")).Return(nil)
		env.mailer.On("SendBookingConfirmation", ctx, mock.MatchedBy(func(mail mailer.BookingMail) bool {
			return mail.To == "driver@example.com" && mail.CancelURL != ""
		})).Return()

		result, err := env.service.CreateTicket(ctx, baseRequest(0))

		require.NoError(t, err)
		assert.Equal(t, CaseCreated, result.Case)
		assert.True(t, result.Ticket.IsCompleted)
		assert.Empty(t, result.PaymentURL)

		env.provider.AssertNotCalled(t, "CreateCharge", mock.Anything, mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})

	t.Run("провайдер недоступен - ничего не сохраняется", func(t *testing.T) {
		env := newTestEnv(Config{PublicURL: "https://rental.example.com"})

		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.tickets.On("HasBookingOverlap", ctx, carID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(false, nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(7), nil)
		env.provider.On("CreateCharge", ctx, owner.Payment, mock.AnythingOfType("payment.ChargeParams")).
			Return(nil, errors.New("connection refused"))

		result, err := env.service.CreateTicket(ctx, baseRequest(30000))

		require.NoError(t, err)
		assert.Equal(t, CaseProviderFailed, result.Case)
		assert.Nil(t, result.Ticket)

		env.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		env.tickets.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})

	t.Run("пересечение с другой бронью", func(t *testing.T) {
		env := newTestEnv(Config{})

		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.tickets.On("HasBookingOverlap", ctx, carID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(true, nil)

		_, err := env.service.CreateTicket(ctx, baseRequest(30000))

		assert.ErrorIs(t, err, domain.ErrVehicleRented)
		env.assertExpectations(t)
	})

	t.Run("платная бронь без подключенных платежей", func(t *testing.T) {
		env := newTestEnv(Config{})

		noPayment := &domain.Owner{ID: ownerID, Email: "owner@example.com", Currency: "USD"}
		env.vehicles.On("GetByID", ctx, carID).Return(vehicle, nil)
		env.tickets.On("HasBookingOverlap", ctx, carID, mock.AnythingOfType("time.Time"), mock.AnythingOfType("time.Time")).
			Return(false, nil)
		env.owners.On("GetByID", ctx, ownerID).Return(noPayment, nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(8), nil)

		_, err := env.service.CreateTicket(ctx, baseRequest(30000))

		assert.ErrorIs(t, err, domain.ErrInvalidPaymentType)
		env.assertExpectations(t)
	})
}

// TestService_Cancel тестирует отмену брони с возвратом средств
func TestService_Cancel(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	ticketID := uuid.New()
	trxID := uuid.New()
	ctx := context.Background()
	now := time.Now()

	owner := &domain.Owner{
		ID:       ownerID,
		Email:    "owner@example.com",
		Currency: "USD",
		Payment:  &domain.PaymentCredentials{APIKey: "pk_test", SecretKey: "sk_test"},
	}

	paidTicket := func() *domain.Ticket {
		return &domain.Ticket{
			ID:            ticketID,
			OwnerID:       ownerID,
			CarID:         carID,
			TokenID:       "tok_abc",
			TransactionID: &trxID,
			PickUp:        now.Add(24 * time.Hour),
			DropOff:       now.Add(96 * time.Hour),
			DriverInfo:    testDriver(),
			IsCompleted:   true,
		}
	}

	paidTrx := &domain.Transaction{
		ID:          trxID,
		OwnerID:     ownerID,
		CarID:       &carID,
		Type:        domain.PaymentTicket,
		Amount:      30000,
		PaymentID:   "chg_123",
		IsCompleted: true,
	}

	t.Run("отмена по токену с возвратом", func(t *testing.T) {
		env := newTestEnv(Config{})

		env.tickets.On("GetByToken", ctx, "tok_abc").Return(paidTicket(), nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)
		env.transactions.On("GetByID", ctx, trxID).Return(paidTrx, nil)
		env.provider.On("Refund", ctx, owner.Payment, "chg_123", int64(30000), "USD").Return(nil)
		env.serials.On("Next", ctx, ownerID, domain.SerialScopeTransaction).Return(int64(9), nil)
		env.transactions.On("Create", ctx, mock.MatchedBy(func(trx *domain.Transaction) bool {
			return trx.Type == domain.PaymentTicketRefund && trx.Amount == 30000 && trx.IsCompleted
		})).Return(nil)
		env.tickets.On("SoftDelete", ctx, ticketID).Return(nil)
		env.vehicles.On("GetByID", ctx, carID).Return(&domain.Vehicle{ID: carID, Model: "Toyota Camry", Plate: "A12345"}, nil)
		env.mailer.On("SendBookingCancelled", ctx, mock.MatchedBy(func(mail mailer.BookingMail) bool {
			return mail.To == "driver@example.com" && mail.Refunded
		})).Return()

		result, err := env.service.CancelByToken(ctx, "tok_abc")

		require.NoError(t, err)
		assert.Equal(t, CaseCancelled, result.Case)
		assert.Equal(t, int64(30000), result.Refunded)

		env.assertExpectations(t)
	})

	t.Run("неудачный возврат сохраняет бронь для повтора", func(t *testing.T) {
		env := newTestEnv(Config{DeleteOnRefundFailure: false})

		env.tickets.On("GetByID", ctx, ownerID, ticketID).Return(paidTicket(), nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)
		env.transactions.On("GetByID", ctx, trxID).Return(paidTrx, nil)
		env.provider.On("Refund", ctx, owner.Payment, "chg_123", int64(30000), "USD").
			Return(errors.New("provider unavailable"))

		result, err := env.service.CancelByOwner(ctx, ownerID, ticketID)

		require.NoError(t, err)
		assert.Equal(t, CaseRefundFailed, result.Case)

		env.tickets.AssertNotCalled(t, "SoftDelete", mock.Anything, mock.Anything)
		env.transactions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})

	t.Run("неудачный возврат удаляет бронь при включенной настройке", func(t *testing.T) {
		env := newTestEnv(Config{DeleteOnRefundFailure: true})

		env.tickets.On("GetByID", ctx, ownerID, ticketID).Return(paidTicket(), nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)
		env.transactions.On("GetByID", ctx, trxID).Return(paidTrx, nil)
		env.provider.On("Refund", ctx, owner.Payment, "chg_123", int64(30000), "USD").
			Return(errors.New("provider unavailable"))
		env.tickets.On("SoftDelete", ctx, ticketID).Return(nil)

		result, err := env.service.CancelByOwner(ctx, ownerID, ticketID)

		require.NoError(t, err)
		assert.Equal(t, CaseRefundFailed, result.Case)

		env.assertExpectations(t)
	})

	t.Run("неоплаченная бронь отменяется без возврата", func(t *testing.T) {
		env := newTestEnv(Config{})

		unpaid := paidTicket()
		unpaid.IsCompleted = false
		unpaidTrx := &domain.Transaction{
			ID:        trxID,
			OwnerID:   ownerID,
			Type:      domain.PaymentTicket,
			Amount:    30000,
			PaymentID: "chg_123",
		}

		env.tickets.On("GetByToken", ctx, "tok_abc").Return(unpaid, nil)
		env.owners.On("GetByID", ctx, ownerID).Return(owner, nil)
		env.transactions.On("GetByID", ctx, trxID).Return(unpaidTrx, nil)
		env.tickets.On("SoftDelete", ctx, ticketID).Return(nil)
		env.vehicles.On("GetByID", ctx, carID).Return(&domain.Vehicle{ID: carID}, nil)
		env.mailer.On("SendBookingCancelled", ctx, mock.MatchedBy(func(mail mailer.BookingMail) bool {
			return !mail.Refunded
		})).Return()

		result, err := env.service.CancelByToken(ctx, "tok_abc")

		require.NoError(t, err)
		assert.Equal(t, CaseCancelled, result.Case)
		assert.Equal(t, int64(0), result.Refunded)

		env.provider.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})
}

// TestService_ConfirmPaid тестирует подтверждение оплаты из webhook
func TestService_ConfirmPaid(t *testing.T) {
	ownerID := uuid.New()
	carID := uuid.New()
	trxID := uuid.New()
	ctx := context.Background()
	now := time.Now()

	trx := &domain.Transaction{
		ID:          trxID,
		OwnerID:     ownerID,
		CarID:       &carID,
		Type:        domain.PaymentTicket,
		Amount:      30000,
		IsCompleted: true,
	}

	t.Run("подтверждение с письмом клиенту", func(t *testing.T) {
		env := newTestEnv(Config{PublicURL: "https://rental.example.com"})

		env.tickets.On("MarkCompleted", ctx, trxID).Return(nil)
		env.owners.On("GetByID", ctx, ownerID).Return(&domain.Owner{
			ID:       ownerID,
			Email:    "owner@example.com",
			Currency: "USD",
		}, nil)
		env.vehicles.On("GetByID", ctx, carID).Return(&domain.Vehicle{ID: carID, Model: "Toyota Camry", Plate: "A12345"}, nil)
		env.tickets.On("GetByTransaction", ctx, trxID).Return(&domain.Ticket{
			ID:         uuid.New(),
			OwnerID:    ownerID,
			CarID:      carID,
			TokenID:    "tok_abc",
			PickUp:     now,
			DropOff:    now.Add(72 * time.Hour),
			DriverInfo: testDriver(),
		}, nil)
		env.mailer.On("SendBookingConfirmation", ctx, mock.MatchedBy(func(mail mailer.BookingMail) bool {
			return mail.To == "driver@example.com" && mail.Amount == "300.00 USD"
		})).Return()

		err := env.service.ConfirmPaid(ctx, trx)

		require.NoError(t, err)
		env.assertExpectations(t)
	})

	t.Run("недоступность почты не отменяет подтверждение", func(t *testing.T) {
		env := newTestEnv(Config{})

		env.tickets.On("MarkCompleted", ctx, trxID).Return(nil)
		env.owners.On("GetByID", ctx, ownerID).Return(nil, errors.New("connection refused"))

		err := env.service.ConfirmPaid(ctx, trx)

		require.NoError(t, err)
		env.mailer.AssertNotCalled(t, "SendBookingConfirmation", mock.Anything, mock.Anything)
		env.assertExpectations(t)
	})
}

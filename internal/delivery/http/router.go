package http

import (
	"net/http"

	"github.com/frontandrew/rental/internal/delivery/http/middleware"
	"github.com/frontandrew/rental/internal/pkg/config"
	"github.com/frontandrew/rental/internal/pkg/jwt"
	"github.com/frontandrew/rental/internal/pkg/logger"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

// Router содержит все зависимости для HTTP роутера
type Router struct {
	authHandler      *AuthHandler
	vehicleHandler   *VehicleHandler
	contractHandler  *ContractHandler
	ticketHandler    *TicketHandler
	ledgerHandler    *LedgerHandler
	blacklistHandler *BlacklistHandler
	memberHandler    *MemberHandler
	paymentHandler   *PaymentHandler
	uploadHandler    *UploadHandler
	tokenService     *jwt.TokenService
	config           *config.Config
	logger           logger.Logger
}

// NewRouter создает новый HTTP router
func NewRouter(
	authHandler *AuthHandler,
	vehicleHandler *VehicleHandler,
	contractHandler *ContractHandler,
	ticketHandler *TicketHandler,
	ledgerHandler *LedgerHandler,
	blacklistHandler *BlacklistHandler,
	memberHandler *MemberHandler,
	paymentHandler *PaymentHandler,
	uploadHandler *UploadHandler,
	tokenService *jwt.TokenService,
	config *config.Config,
	logger logger.Logger,
) *Router {
	return &Router{
		authHandler:      authHandler,
		vehicleHandler:   vehicleHandler,
		contractHandler:  contractHandler,
		ticketHandler:    ticketHandler,
		ledgerHandler:    ledgerHandler,
		blacklistHandler: blacklistHandler,
		memberHandler:    memberHandler,
		paymentHandler:   paymentHandler,
		uploadHandler:    uploadHandler,
		tokenService:     tokenService,
		config:           config,
		logger:           logger,
	}
}

// Setup настраивает все маршруты
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Глобальные middleware
	r.Use(chiMiddleware.RequestID)
	r.Use(middleware.RecoveryMiddleware(rt.logger))
	r.Use(middleware.LoggingMiddleware(rt.logger))
	r.Use(middleware.CORSMiddleware(middleware.CORSConfig{
		AllowedOrigins: rt.config.CORS.AllowedOrigins,
		AllowedMethods: rt.config.CORS.AllowedMethods,
		AllowedHeaders: rt.config.CORS.AllowedHeaders,
	}))

	// Health check endpoint (публичный)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{
			"status": "healthy",
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Public routes (без аутентификации)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", rt.authHandler.Register)
			r.Post("/login", rt.authHandler.Login)
			r.Post("/login/member", rt.authHandler.LoginMember)
			r.Post("/refresh", rt.authHandler.Refresh)
			r.Post("/logout", rt.authHandler.Logout)
		})

		// Публичные endpoints витрины: поиск, бронирование, отмена
		// по ссылке из письма, webhook провайдера
		r.Route("/public", func(r chi.Router) {
			r.Get("/vehicles", rt.vehicleHandler.PublicSearch)
			r.Post("/tickets", rt.ticketHandler.CreateTicket)
			r.Get("/tickets/cancel/{token}", rt.ticketHandler.CancelByToken)
			r.Post("/payments/webhook", rt.paymentHandler.Webhook)
		})

		// Protected routes (требуют аутентификации)
		r.Group(func(r chi.Router) {
			r.Use(middleware.AuthMiddleware(rt.tokenService))

			// Current account endpoints
			r.Route("/auth/me", func(r chi.Router) {
				r.Get("/", rt.authHandler.GetMe)
			})

			// Vehicle endpoints
			r.Route("/vehicles", func(r chi.Router) {
				r.Get("/", rt.vehicleHandler.ListVehicles)
				r.Post("/", rt.vehicleHandler.CreateVehicle)
				r.Get("/available", rt.vehicleHandler.SearchAvailable)
				r.Get("/{id}", rt.vehicleHandler.GetVehicle)
				r.Patch("/{id}", rt.vehicleHandler.UpdateVehicle)
				r.Delete("/{id}", rt.vehicleHandler.DeleteVehicle)
			})

			// Contract endpoints
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", rt.contractHandler.ListContracts)
				r.Post("/", rt.contractHandler.CreateContract)
				r.Post("/import", rt.contractHandler.ImportContracts)
				r.Get("/{id}", rt.contractHandler.GetContract)
				r.Patch("/{id}", rt.contractHandler.EditContract)
				r.Post("/{id}/end", rt.contractHandler.EndContract)
				r.Post("/{id}/cancel", rt.contractHandler.CancelContract)
				r.Get("/{id}/payments", rt.contractHandler.ListPayments)
				r.Post("/{id}/payments", rt.contractHandler.CashReceipt)
				r.Post("/{id}/payment-link", rt.paymentHandler.CreatePaymentLink)
			})

			// Ticket endpoints
			r.Route("/tickets", func(r chi.Router) {
				r.Get("/", rt.ticketHandler.ListOpenTickets)
				r.Get("/{id}", rt.ticketHandler.GetTicket)
				r.Delete("/{id}", rt.ticketHandler.CancelTicket)
			})

			// Blacklist endpoints
			r.Route("/blacklist", func(r chi.Router) {
				r.Get("/", rt.blacklistHandler.List)
				r.Post("/", rt.blacklistHandler.Add)
				r.Delete("/{passportID}", rt.blacklistHandler.Remove)
			})

			// Payment status polling
			r.Get("/payments/{id}/status", rt.paymentHandler.PaymentStatus)

			// Upload presign
			r.Post("/uploads/presign", rt.uploadHandler.PresignUpload)

			// Owner only endpoints: деньги и управление аккаунтом
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireOwner())

				r.Put("/auth/payment-credentials", rt.authHandler.SetPaymentCredentials)

				r.Route("/members", func(r chi.Router) {
					r.Get("/", rt.memberHandler.ListMembers)
					r.Post("/", rt.memberHandler.CreateMember)
					r.Get("/{id}", rt.memberHandler.GetMember)
					r.Patch("/{id}", rt.memberHandler.UpdateMember)
					r.Delete("/{id}", rt.memberHandler.DeleteMember)
				})

				r.Route("/ledger", func(r chi.Router) {
					r.Get("/expenses", rt.ledgerHandler.ListExpenses)
					r.Post("/expenses", rt.ledgerHandler.AddExpense)
					r.Get("/withdrawals", rt.ledgerHandler.ListWithdrawals)
					r.Post("/withdrawals", rt.ledgerHandler.AddWithdrawal)
					r.Get("/payments", rt.ledgerHandler.ListPayments)
					r.Get("/earnings/{carID}", rt.ledgerHandler.CarEarnings)
					r.Get("/capital", rt.ledgerHandler.CapitalSummary)
				})
			})
		})
	})

	return r
}

package domain

import "errors"

// Доменные ошибки - используются во всех слоях приложения

// Owner errors
var (
	ErrOwnerNotFound      = errors.New("owner not found")
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidPassword    = errors.New("invalid password")
	ErrInvalidOwnerData   = errors.New("invalid owner data")
	ErrOwnerInactive      = errors.New("owner is inactive")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotOwner           = errors.New("entity belongs to another owner")
)

// Member errors
var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrUsernameTaken     = errors.New("username already taken")
	ErrInvalidMemberData = errors.New("invalid member data")
)

// Vehicle errors
var (
	ErrVehicleNotFound    = errors.New("vehicle not found")
	ErrPlateTaken         = errors.New("plate already taken")
	ErrInvalidPlate       = errors.New("invalid vehicle plate")
	ErrInvalidVehicleData = errors.New("invalid vehicle data")
	ErrVehicleRented      = errors.New("vehicle is rented")
)

// Contract errors
var (
	ErrContractNotFound    = errors.New("contract not found")
	ErrContractNotActive   = errors.New("contract is not active")
	ErrInvalidContractData = errors.New("invalid contract data")
	ErrNoChanges           = errors.New("no changes applied")
)

// Ledger errors
var (
	ErrTransactionNotFound   = errors.New("transaction not found")
	ErrInvalidPaymentType    = errors.New("invalid payment type")
	ErrInvalidAmount         = errors.New("invalid amount")
	ErrInvalidWithdrawalType = errors.New("invalid withdrawal type")
)

// Ticket errors
var (
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrInvalidTicketData = errors.New("invalid ticket data")
)

// Blacklist errors
var (
	ErrInvalidBlacklistData = errors.New("invalid blacklist data")
)

// Authorization errors
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrTokenExpired = errors.New("token expired")
	ErrInvalidToken = errors.New("invalid token")
)

// General errors
var (
	ErrInternal   = errors.New("internal server error")
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
)

package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/frontandrew/rental/internal/domain"
)

// Charge содержит результат создания платежа у провайдера
type Charge struct {
	ID            string `json:"id"`
	Status        string `json:"status"`
	PaymentIntent string `json:"payment_intent,omitempty"`
	RedirectURL   string `json:"redirect_url,omitempty"`
}

// chargeRequest - запрос на создание платежа
type chargeRequest struct {
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description,omitempty"`
	Email       string `json:"customer_email,omitempty"`
	CallbackURL string `json:"callback_url,omitempty"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

// refundRequest - запрос на возврат средств
type refundRequest struct {
	ChargeID string `json:"charge_id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Reason   string `json:"reason,omitempty"`
}

// Provider - интерфейс платежного провайдера. Все вызовы выполняются
// с ключами конкретного владельца: каждый владелец подключает
// собственный аккаунт провайдера.
type Provider interface {
	// CreateCharge создает платеж и возвращает ссылку на оплату
	CreateCharge(ctx context.Context, creds *domain.PaymentCredentials, req ChargeParams) (*Charge, error)

	// Refund возвращает средства по ранее завершенному платежу
	Refund(ctx context.Context, creds *domain.PaymentCredentials, chargeID string, amount int64, currency string) error

	// GetCharge возвращает текущий статус платежа
	GetCharge(ctx context.Context, creds *domain.PaymentCredentials, chargeID string) (*Charge, error)
}

// ChargeParams - параметры создаваемого платежа
type ChargeParams struct {
	Amount      int64
	Currency    string
	Description string
	Email       string
	CallbackURL string
	RedirectURL string
}

// httpProvider - HTTP реализация платежного провайдера
type httpProvider struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPProvider создает новый HTTP клиент платежного провайдера
func NewHTTPProvider(baseURL string, timeout time.Duration) Provider {
	return &httpProvider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        10,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// CreateCharge создает платеж у провайдера
func (c *httpProvider) CreateCharge(ctx context.Context, creds *domain.PaymentCredentials, params ChargeParams) (*Charge, error) {
	reqBody := chargeRequest{
		Amount:      params.Amount,
		Currency:    params.Currency,
		Description: params.Description,
		Email:       params.Email,
		CallbackURL: params.CallbackURL,
		RedirectURL: params.RedirectURL,
	}

	var charge Charge
	if err := c.doRequest(ctx, creds, http.MethodPost, "/charges", reqBody, &charge); err != nil {
		return nil, fmt.Errorf("create charge: %w", err)
	}

	return &charge, nil
}

// Refund возвращает средства по платежу
func (c *httpProvider) Refund(ctx context.Context, creds *domain.PaymentCredentials, chargeID string, amount int64, currency string) error {
	reqBody := refundRequest{
		ChargeID: chargeID,
		Amount:   amount,
		Currency: currency,
		Reason:   "requested_by_customer",
	}

	if err := c.doRequest(ctx, creds, http.MethodPost, "/refunds", reqBody, nil); err != nil {
		return fmt.Errorf("refund charge %s: %w", chargeID, err)
	}

	return nil
}

// GetCharge возвращает статус платежа
func (c *httpProvider) GetCharge(ctx context.Context, creds *domain.PaymentCredentials, chargeID string) (*Charge, error) {
	var charge Charge
	if err := c.doRequest(ctx, creds, http.MethodGet, "/charges/"+chargeID, nil, &charge); err != nil {
		return nil, fmt.Errorf("get charge %s: %w", chargeID, err)
	}

	return &charge, nil
}

// doRequest выполняет HTTP запрос к провайдеру и разбирает ответ
func (c *httpProvider) doRequest(ctx context.Context, creds *domain.PaymentCredentials, method, path string, reqBody, out any) error {
	var body io.Reader
	if reqBody != nil {
		jsonData, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		body = bytes.NewBuffer(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+creds.SecretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return fmt.Errorf("payment provider returned status %d: %s", resp.StatusCode, string(respBody))
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to unmarshal response: %w", err)
		}
	}

	return nil
}

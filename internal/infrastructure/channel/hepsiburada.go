package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prapazar/backend/internal/domain/integration"
)

const hepsiburadaDefaultBaseURL = "https://listing-external.hepsiburada.com"

// HepsiburadaConfig holds the credentials for one Hepsiburada merchant account
type HepsiburadaConfig struct {
	MerchantID string
	APIToken   string
	BaseURL    string
}

// Validate checks the required credentials are present
func (c *HepsiburadaConfig) Validate() error {
	if c.MerchantID == "" || c.APIToken == "" {
		return fmt.Errorf("%w: hepsiburada requires merchant_id and api_token", integration.ErrValidation)
	}
	return nil
}

// HepsiburadaAdapter implements the channel port against the Hepsiburada
// listing API. Authentication is a bearer token per merchant.
type HepsiburadaAdapter struct {
	config     *HepsiburadaConfig
	baseURL    string
	httpClient *http.Client
}

// NewHepsiburadaAdapter creates a new Hepsiburada adapter with the given configuration
func NewHepsiburadaAdapter(config *HepsiburadaConfig, timeout time.Duration) (*HepsiburadaAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = hepsiburadaDefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &HepsiburadaAdapter{
		config:     config,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Code returns the channel code this adapter handles
func (a *HepsiburadaAdapter) Code() integration.ChannelCode {
	return integration.ChannelCodeHepsiburada
}

// Connect validates the token with a minimal listing request.
func (a *HepsiburadaAdapter) Connect(ctx context.Context) error {
	path := fmt.Sprintf("/listings/merchantid/%s/products?offset=0&limit=1", a.config.MerchantID)
	_, err := a.doRequest(ctx, http.MethodGet, path, nil)
	return err
}

// HealthCheck probes the listing endpoint under the caller's deadline.
func (a *HepsiburadaAdapter) HealthCheck(ctx context.Context) error {
	return a.Connect(ctx)
}

// FetchProducts reads one page of the merchant's listings. Hepsiburada
// paginates with offset/limit rather than page/size.
func (a *HepsiburadaAdapter) FetchProducts(ctx context.Context, page integration.Pagination) ([]integration.RawProduct, error) {
	page.Normalize()
	offset := page.Page * page.Size
	path := fmt.Sprintf("/listings/merchantid/%s/products?offset=%d&limit=%d", a.config.MerchantID, offset, page.Size)

	body, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp hepsiburadaListingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse listings response: %v", integration.ErrInvalidResponse, err)
	}

	products := make([]integration.RawProduct, 0, len(resp.Listings))
	for _, item := range resp.Listings {
		raw, _ := json.Marshal(item)
		products = append(products, integration.RawProduct{
			ExternalID: item.HepsiburadaSku,
			SKU:        item.MerchantSku,
			Title:      item.ProductName,
			Price:      item.Price,
			Quantity:   item.AvailableStock,
			OnSale:     item.IsSalable,
			Raw:        string(raw),
		})
	}
	return products, nil
}

// PushStockUpdate sets the available stock for a listing.
func (a *HepsiburadaAdapter) PushStockUpdate(ctx context.Context, externalID string, quantity int) error {
	if externalID == "" {
		return fmt.Errorf("%w: sku is required", integration.ErrValidation)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", integration.ErrValidation)
	}

	payload := hepsiburadaInventoryUpdate{
		MerchantSku:    externalID,
		AvailableStock: &quantity,
	}
	path := fmt.Sprintf("/listings/merchantid/%s/products/%s/price-inventory", a.config.MerchantID, externalID)
	_, err := a.doRequest(ctx, http.MethodPut, path, payload)
	return err
}

// PushPriceUpdate sets the price for a listing.
func (a *HepsiburadaAdapter) PushPriceUpdate(ctx context.Context, externalID string, price decimal.Decimal) error {
	if externalID == "" {
		return fmt.Errorf("%w: sku is required", integration.ErrValidation)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", integration.ErrValidation)
	}

	payload := hepsiburadaInventoryUpdate{
		MerchantSku: externalID,
		Price:       &price,
	}
	path := fmt.Sprintf("/listings/merchantid/%s/products/%s/price-inventory", a.config.MerchantID, externalID)
	_, err := a.doRequest(ctx, http.MethodPut, path, payload)
	return err
}

// FetchOrders reads one page of orders within the date range.
func (a *HepsiburadaAdapter) FetchOrders(ctx context.Context, dates integration.DateRange, page integration.Pagination) ([]integration.RawOrder, error) {
	if err := dates.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrValidation, err)
	}
	page.Normalize()
	offset := page.Page * page.Size

	path := fmt.Sprintf("/orders/merchantid/%s?begindate=%s&enddate=%s&offset=%d&limit=%d",
		a.config.MerchantID,
		dates.Start.UTC().Format(time.RFC3339),
		dates.End.UTC().Format(time.RFC3339),
		offset, page.Size)

	body, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp hepsiburadaOrdersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse orders response: %v", integration.ErrInvalidResponse, err)
	}

	orders := make([]integration.RawOrder, 0, len(resp.Items))
	for _, o := range resp.Items {
		orders = append(orders, convertHepsiburadaOrder(&o))
	}
	return orders, nil
}

// convertHepsiburadaOrder maps a wire order onto the domain value object
func convertHepsiburadaOrder(o *hepsiburadaOrder) integration.RawOrder {
	raw, _ := json.Marshal(o)
	order := integration.RawOrder{
		ExternalID:  o.OrderNumber,
		Status:      o.Status,
		BuyerName:   o.CustomerName,
		TotalAmount: o.TotalPrice,
		Currency:    "TRY",
		Lines:       make([]integration.RawOrderLine, 0, len(o.Items)),
		PlacedAt:    o.OrderDate,
		Raw:         string(raw),
	}
	for _, l := range o.Items {
		order.Lines = append(order.Lines, integration.RawOrderLine{
			ExternalProductID: l.HepsiburadaSku,
			SKU:               l.MerchantSku,
			Title:             l.ProductName,
			Quantity:          l.Quantity,
			UnitPrice:         l.Price,
		})
	}
	return order
}

// doRequest performs an authenticated request and maps transport and status
// failures onto the shared error taxonomy.
func (a *HepsiburadaAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("hepsiburada: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("hepsiburada: failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+a.config.APIToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := a.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", integration.ErrNetworkUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("hepsiburada: failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrAuthenticationFailed, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: HTTP 429", integration.ErrChannelRateLimited)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", integration.ErrRequestFailed, resp.StatusCode)
	}

	return body, nil
}

// Ensure HepsiburadaAdapter implements the channel port
var _ integration.ChannelAdapter = (*HepsiburadaAdapter)(nil)

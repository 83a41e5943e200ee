// Package channel contains the concrete marketplace connectors. Each
// adapter translates the hub's channel port into one marketplace's wire
// API and maps transport failures onto the shared error taxonomy so the
// orchestrator can treat every channel uniformly.
package channel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/prapazar/backend/internal/domain/integration"
)

// maxResponseSize is the maximum allowed response size from a channel API (10MB)
const maxResponseSize = 10 * 1024 * 1024

const trendyolDefaultBaseURL = "https://api.trendyol.com/sapigw"

// trendyolListPriceMargin is the markup applied to derive the strike-through
// list price when pushing a new sale price.
var trendyolListPriceMargin = decimal.NewFromFloat(1.1)

// TrendyolConfig holds the credentials for one Trendyol supplier account
type TrendyolConfig struct {
	SupplierID string
	APIKey     string
	APISecret  string
	BaseURL    string
}

// Validate checks the required credentials are present
func (c *TrendyolConfig) Validate() error {
	if c.SupplierID == "" || c.APIKey == "" || c.APISecret == "" {
		return fmt.Errorf("%w: trendyol requires supplier_id, api_key and api_secret", integration.ErrValidation)
	}
	return nil
}

// TrendyolAdapter implements the channel port against the Trendyol supplier
// API. Authentication is HTTP basic with the API key pair.
type TrendyolAdapter struct {
	config     *TrendyolConfig
	baseURL    string
	httpClient *http.Client
}

// NewTrendyolAdapter creates a new Trendyol adapter with the given configuration
func NewTrendyolAdapter(config *TrendyolConfig, timeout time.Duration) (*TrendyolAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = trendyolDefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &TrendyolAdapter{
		config:     config,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Code returns the channel code this adapter handles
func (a *TrendyolAdapter) Code() integration.ChannelCode {
	return integration.ChannelCodeTrendyol
}

// Connect validates the credentials with a minimal listing request.
func (a *TrendyolAdapter) Connect(ctx context.Context) error {
	path := fmt.Sprintf("/suppliers/%s/products?page=0&size=1", a.config.SupplierID)
	_, err := a.doRequest(ctx, http.MethodGet, path, nil)
	return err
}

// HealthCheck probes the listing endpoint under the caller's deadline.
func (a *TrendyolAdapter) HealthCheck(ctx context.Context) error {
	return a.Connect(ctx)
}

// FetchProducts reads one page of the supplier's listings.
func (a *TrendyolAdapter) FetchProducts(ctx context.Context, page integration.Pagination) ([]integration.RawProduct, error) {
	page.Normalize()
	path := fmt.Sprintf("/suppliers/%s/products?page=%d&size=%d", a.config.SupplierID, page.Page, page.Size)

	body, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp trendyolProductsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse products response: %v", integration.ErrInvalidResponse, err)
	}

	products := make([]integration.RawProduct, 0, len(resp.Content))
	for _, item := range resp.Content {
		raw, _ := json.Marshal(item)
		products = append(products, integration.RawProduct{
			ExternalID: strconv.FormatInt(item.ID, 10),
			SKU:        item.StockCode,
			Title:      item.Title,
			Barcode:    item.Barcode,
			Price:      item.SalePrice,
			ListPrice:  item.ListPrice,
			Quantity:   item.Quantity,
			OnSale:     item.OnSale,
			Raw:        string(raw),
		})
	}
	return products, nil
}

// PushStockUpdate sets the available quantity for a barcode.
func (a *TrendyolAdapter) PushStockUpdate(ctx context.Context, externalID string, quantity int) error {
	if externalID == "" {
		return fmt.Errorf("%w: barcode is required", integration.ErrValidation)
	}
	if quantity < 0 {
		return fmt.Errorf("%w: quantity must not be negative", integration.ErrValidation)
	}

	payload := trendyolStockUpdateRequest{
		Items: []trendyolStockItem{{Barcode: externalID, Quantity: quantity}},
	}
	path := fmt.Sprintf("/suppliers/%s/products/stock-updates", a.config.SupplierID)
	_, err := a.doRequest(ctx, http.MethodPost, path, payload)
	return err
}

// PushPriceUpdate sets the sale price for a barcode. The list price is
// derived with a 10% margin, matching the supplier panel convention.
func (a *TrendyolAdapter) PushPriceUpdate(ctx context.Context, externalID string, price decimal.Decimal) error {
	if externalID == "" {
		return fmt.Errorf("%w: barcode is required", integration.ErrValidation)
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: price must be positive", integration.ErrValidation)
	}

	payload := trendyolPriceUpdateRequest{
		Items: []trendyolPriceItem{{
			Barcode:   externalID,
			SalePrice: price,
			ListPrice: price.Mul(trendyolListPriceMargin).Round(2),
		}},
	}
	path := fmt.Sprintf("/suppliers/%s/products/price-updates", a.config.SupplierID)
	_, err := a.doRequest(ctx, http.MethodPost, path, payload)
	return err
}

// FetchOrders reads one page of orders within the date range. Trendyol
// expects millisecond epoch bounds.
func (a *TrendyolAdapter) FetchOrders(ctx context.Context, dates integration.DateRange, page integration.Pagination) ([]integration.RawOrder, error) {
	if err := dates.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", integration.ErrValidation, err)
	}
	page.Normalize()

	path := fmt.Sprintf("/suppliers/%s/orders?startDate=%d&endDate=%d&page=%d&size=%d",
		a.config.SupplierID, dates.Start.UnixMilli(), dates.End.UnixMilli(), page.Page, page.Size)

	body, err := a.doRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp trendyolOrdersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse orders response: %v", integration.ErrInvalidResponse, err)
	}

	orders := make([]integration.RawOrder, 0, len(resp.Content))
	for _, o := range resp.Content {
		orders = append(orders, convertTrendyolOrder(&o))
	}
	return orders, nil
}

// convertTrendyolOrder maps a wire order onto the domain value object
func convertTrendyolOrder(o *trendyolOrder) integration.RawOrder {
	raw, _ := json.Marshal(o)
	order := integration.RawOrder{
		ExternalID:  o.OrderNumber,
		Status:      o.Status,
		BuyerName:   o.CustomerFirstName + " " + o.CustomerLastName,
		TotalAmount: o.TotalPrice,
		Currency:    "TRY",
		Lines:       make([]integration.RawOrderLine, 0, len(o.Lines)),
		PlacedAt:    time.UnixMilli(o.OrderDate),
		Raw:         string(raw),
	}
	for _, l := range o.Lines {
		order.Lines = append(order.Lines, integration.RawOrderLine{
			ExternalProductID: strconv.FormatInt(l.ProductID, 10),
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
func (a *TrendyolAdapter) doRequest(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("trendyol: failed to encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("trendyol: failed to create request: %w", err)
	}
	req.SetBasicAuth(a.config.APIKey, a.config.APISecret)
	req.Header.Set("User-Agent", a.config.SupplierID+" - SelfIntegration")
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
		return nil, fmt.Errorf("trendyol: failed to read response: %w", err)
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

// Ensure TrendyolAdapter implements the channel port
var _ integration.ChannelAdapter = (*TrendyolAdapter)(nil)

package integration

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Channel Errors
// ---------------------------------------------------------------------------

var (
	// Adapter-side errors surfaced by channel calls
	ErrAuthenticationFailed = errors.New("integration: channel authentication failed")
	ErrNetworkUnavailable   = errors.New("integration: channel unreachable")
	ErrChannelRateLimited   = errors.New("integration: channel rate limited")
	ErrInvalidResponse      = errors.New("integration: invalid channel response")
	ErrRequestFailed        = errors.New("integration: channel request failed")

	// Payload errors
	ErrValidation = errors.New("integration: invalid payload")

	// Registry errors
	ErrIntegrationNotFound  = errors.New("integration: not found")
	ErrDuplicateIntegration = errors.New("integration: already registered for this channel")
	ErrChannelNotSupported  = errors.New("integration: channel not supported")
	ErrIntegrationInactive  = errors.New("integration: not active")
)

// ---------------------------------------------------------------------------
// ChannelCode and Category
// ---------------------------------------------------------------------------

// ChannelCode identifies one external channel type.
type ChannelCode string

const (
	// ChannelCodeTrendyol represents the Trendyol marketplace
	ChannelCodeTrendyol ChannelCode = "TRENDYOL"
	// ChannelCodeHepsiburada represents the Hepsiburada marketplace
	ChannelCodeHepsiburada ChannelCode = "HEPSIBURADA"
	// ChannelCodeN11 represents the N11 marketplace
	ChannelCodeN11 ChannelCode = "N11"
	// ChannelCodePttAvm represents the PTT AVM marketplace
	ChannelCodePttAvm ChannelCode = "PTTAVM"
	// ChannelCodeArasKargo represents the Aras cargo carrier
	ChannelCodeArasKargo ChannelCode = "ARAS_KARGO"
	// ChannelCodeParasut represents the Paraşüt accounting system
	ChannelCodeParasut ChannelCode = "PARASUT"
)

// IsValid returns true if the channel code is one we know how to build
func (c ChannelCode) IsValid() bool {
	switch c {
	case ChannelCodeTrendyol, ChannelCodeHepsiburada, ChannelCodeN11,
		ChannelCodePttAvm, ChannelCodeArasKargo, ChannelCodeParasut:
		return true
	default:
		return false
	}
}

// String returns the string representation of ChannelCode
func (c ChannelCode) String() string {
	return string(c)
}

// DisplayName returns a human-readable name for the channel
func (c ChannelCode) DisplayName() string {
	switch c {
	case ChannelCodeTrendyol:
		return "Trendyol"
	case ChannelCodeHepsiburada:
		return "Hepsiburada"
	case ChannelCodeN11:
		return "N11"
	case ChannelCodePttAvm:
		return "PTT AVM"
	case ChannelCodeArasKargo:
		return "Aras Kargo"
	case ChannelCodeParasut:
		return "Paraşüt"
	default:
		return string(c)
	}
}

// Category classifies what kind of external system a channel is.
type Category string

const (
	CategoryMarketplace Category = "marketplace"
	CategoryEcommerce   Category = "ecommerce"
	CategoryCargo       Category = "cargo"
	CategoryAccounting  Category = "accounting"
	CategoryInvoice     Category = "invoice"
	CategoryPayment     Category = "payment"
	CategorySocial      Category = "social"
)

// IsValid returns true if the category is valid
func (c Category) IsValid() bool {
	switch c {
	case CategoryMarketplace, CategoryEcommerce, CategoryCargo,
		CategoryAccounting, CategoryInvoice, CategoryPayment, CategorySocial:
		return true
	default:
		return false
	}
}

// String returns the string representation of Category
func (c Category) String() string {
	return string(c)
}

// CategoryOf returns the category a channel belongs to.
func CategoryOf(code ChannelCode) Category {
	switch code {
	case ChannelCodeTrendyol, ChannelCodeHepsiburada, ChannelCodeN11, ChannelCodePttAvm:
		return CategoryMarketplace
	case ChannelCodeArasKargo:
		return CategoryCargo
	case ChannelCodeParasut:
		return CategoryAccounting
	default:
		return ""
	}
}

// ---------------------------------------------------------------------------
// Value Objects
// ---------------------------------------------------------------------------

// Pagination describes a page of a channel listing request.
type Pagination struct {
	// Page is the page number (0-indexed, channel convention)
	Page int
	// Size is the number of items per page
	Size int
}

// Normalize clamps pagination to sane bounds.
func (p *Pagination) Normalize() {
	if p.Page < 0 {
		p.Page = 0
	}
	if p.Size < 1 || p.Size > 200 {
		p.Size = 50
	}
}

// DateRange bounds an order listing request.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// Validate checks the range is well formed.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() {
		return errors.New("integration: start and end are required")
	}
	if r.Start.After(r.End) {
		return errors.New("integration: start must be before end")
	}
	return nil
}

// RawProduct is a product listing as returned by a channel, before any
// mapping to local catalog entities.
type RawProduct struct {
	// ExternalID is the product identifier on the channel
	ExternalID string
	// SKU is the seller-assigned stock code
	SKU string
	// Title is the product title on the channel
	Title string
	// Barcode is the product barcode, when the channel exposes one
	Barcode string
	// Price is the current selling price on the channel
	Price decimal.Decimal
	// ListPrice is the strike-through price, when present
	ListPrice decimal.Decimal
	// Quantity is the available stock on the channel
	Quantity int
	// OnSale indicates if the listing is live
	OnSale bool
	// Raw is the original channel payload (JSON)
	Raw string
}

// RawOrder is an order as returned by a channel.
type RawOrder struct {
	// ExternalID is the order identifier on the channel
	ExternalID string
	// Status is the channel's own status string
	Status string
	// BuyerName is the buyer's display name
	BuyerName string
	// TotalAmount is the amount the buyer paid
	TotalAmount decimal.Decimal
	// Currency is the payment currency
	Currency string
	// Lines contains the order line items
	Lines []RawOrderLine
	// PlacedAt is when the order was created on the channel
	PlacedAt time.Time
	// Raw is the original channel payload (JSON)
	Raw string
}

// RawOrderLine is one line item of a RawOrder.
type RawOrderLine struct {
	ExternalProductID string
	SKU               string
	Title             string
	Quantity          int
	UnitPrice         decimal.Decimal
}

// ---------------------------------------------------------------------------
// ChannelAdapter Port Interface
// ---------------------------------------------------------------------------

// ChannelAdapter is the port every concrete channel connector implements.
// All methods perform network I/O against the external system; callers are
// expected to gate them behind the circuit breaker and rate limiter and to
// bound them with a context deadline.
type ChannelAdapter interface {
	// Code returns the channel this adapter talks to
	Code() ChannelCode

	// Connect establishes or validates credentials with the channel.
	// Returns ErrAuthenticationFailed on bad credentials and
	// ErrNetworkUnavailable when the endpoint cannot be reached.
	Connect(ctx context.Context) error

	// FetchProducts reads one page of the seller's listings.
	// May return ErrChannelRateLimited when the channel throttles us.
	FetchProducts(ctx context.Context, page Pagination) ([]RawProduct, error)

	// PushStockUpdate sets the available quantity for an external product.
	// Idempotent: pushing the same quantity twice is a no-op channel-side.
	PushStockUpdate(ctx context.Context, externalID string, quantity int) error

	// PushPriceUpdate sets the selling price for an external product.
	// Same idempotence contract as PushStockUpdate.
	PushPriceUpdate(ctx context.Context, externalID string, price decimal.Decimal) error

	// FetchOrders reads one page of orders within the date range.
	FetchOrders(ctx context.Context, dates DateRange, page Pagination) ([]RawOrder, error)

	// HealthCheck is a cheap liveness probe. Implementations must honor the
	// (short) deadline on ctx independently of the normal operation timeout.
	HealthCheck(ctx context.Context) error
}

// AdapterFactory builds a live adapter from an Integration's channel code
// and credential map. Registered per channel code at startup; there is no
// dynamic dispatch by name beyond this table.
type AdapterFactory func(config *Integration) (ChannelAdapter, error)

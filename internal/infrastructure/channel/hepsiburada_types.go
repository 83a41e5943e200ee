package channel

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Hepsiburada Wire Types
// ---------------------------------------------------------------------------

// hepsiburadaListingsResponse is the listing envelope
type hepsiburadaListingsResponse struct {
	TotalCount int                  `json:"totalCount"`
	Offset     int                  `json:"offset"`
	Limit      int                  `json:"limit"`
	Listings   []hepsiburadaListing `json:"listings"`
}

// hepsiburadaListing is one listing row
type hepsiburadaListing struct {
	HepsiburadaSku string          `json:"hepsiburadaSku"`
	MerchantSku    string          `json:"merchantSku"`
	ProductName    string          `json:"productName"`
	Price          decimal.Decimal `json:"price"`
	AvailableStock int             `json:"availableStock"`
	IsSalable      bool            `json:"isSalable"`
}

// hepsiburadaInventoryUpdate is the price-inventory payload. Only non-nil
// fields are sent, so stock and price can be updated independently.
type hepsiburadaInventoryUpdate struct {
	MerchantSku    string           `json:"merchantSku"`
	AvailableStock *int             `json:"availableStock,omitempty"`
	Price          *decimal.Decimal `json:"price,omitempty"`
}

// hepsiburadaOrdersResponse is the orders envelope
type hepsiburadaOrdersResponse struct {
	TotalCount int                `json:"totalCount"`
	Items      []hepsiburadaOrder `json:"items"`
}

// hepsiburadaOrder is one order row
type hepsiburadaOrder struct {
	OrderNumber  string                 `json:"orderNumber"`
	Status       string                 `json:"status"`
	CustomerName string                 `json:"customerName"`
	TotalPrice   decimal.Decimal        `json:"totalPrice"`
	OrderDate    time.Time              `json:"orderDate"`
	Items        []hepsiburadaOrderItem `json:"items"`
}

type hepsiburadaOrderItem struct {
	HepsiburadaSku string          `json:"hepsiburadaSku"`
	MerchantSku    string          `json:"merchantSku"`
	ProductName    string          `json:"productName"`
	Quantity       int             `json:"quantity"`
	Price          decimal.Decimal `json:"price"`
}

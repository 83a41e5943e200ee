package channel

import "github.com/shopspring/decimal"

// ---------------------------------------------------------------------------
// Trendyol Wire Types
// ---------------------------------------------------------------------------

// trendyolProductsResponse is the paged listing envelope
type trendyolProductsResponse struct {
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	Content       []trendyolProduct `json:"content"`
}

// trendyolProduct is one listing row
type trendyolProduct struct {
	ID        int64           `json:"id"`
	Barcode   string          `json:"barcode"`
	Title     string          `json:"title"`
	StockCode string          `json:"stockCode"`
	SalePrice decimal.Decimal `json:"salePrice"`
	ListPrice decimal.Decimal `json:"listPrice"`
	Quantity  int             `json:"quantity"`
	OnSale    bool            `json:"onSale"`
	Approved  bool            `json:"approved"`
}

// trendyolStockUpdateRequest is the stock-updates payload
type trendyolStockUpdateRequest struct {
	Items []trendyolStockItem `json:"items"`
}

type trendyolStockItem struct {
	Barcode  string `json:"barcode"`
	Quantity int    `json:"quantity"`
}

// trendyolPriceUpdateRequest is the price-updates payload
type trendyolPriceUpdateRequest struct {
	Items []trendyolPriceItem `json:"items"`
}

type trendyolPriceItem struct {
	Barcode   string          `json:"barcode"`
	SalePrice decimal.Decimal `json:"salePrice"`
	ListPrice decimal.Decimal `json:"listPrice"`
}

// trendyolOrdersResponse is the paged orders envelope
type trendyolOrdersResponse struct {
	TotalElements int64           `json:"totalElements"`
	TotalPages    int             `json:"totalPages"`
	Page          int             `json:"page"`
	Content       []trendyolOrder `json:"content"`
}

// trendyolOrder is one order row. OrderDate is a millisecond epoch.
type trendyolOrder struct {
	OrderNumber       string              `json:"orderNumber"`
	Status            string              `json:"status"`
	CustomerFirstName string              `json:"customerFirstName"`
	CustomerLastName  string              `json:"customerLastName"`
	TotalPrice        decimal.Decimal     `json:"totalPrice"`
	OrderDate         int64               `json:"orderDate"`
	Lines             []trendyolOrderLine `json:"lines"`
}

type trendyolOrderLine struct {
	ProductID   int64           `json:"productId"`
	MerchantSku string          `json:"merchantSku"`
	ProductName string          `json:"productName"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

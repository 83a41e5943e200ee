package channel

import (
	"github.com/prapazar/backend/internal/domain/integration"
)

// Factories returns the startup-time adapter factory table. The registry
// resolves a factory by channel code once, at activation; there is no
// dynamic dispatch by name beyond this map. Channels without a connector
// yet are simply absent and register as unsupported.
func Factories() map[integration.ChannelCode]integration.AdapterFactory {
	return map[integration.ChannelCode]integration.AdapterFactory{
		integration.ChannelCodeTrendyol:    NewTrendyolFromIntegration,
		integration.ChannelCodeHepsiburada: NewHepsiburadaFromIntegration,
	}
}

// NewTrendyolFromIntegration builds a Trendyol adapter from a stored
// integration's credential map.
func NewTrendyolFromIntegration(integ *integration.Integration) (integration.ChannelAdapter, error) {
	cfg := &TrendyolConfig{
		SupplierID: integ.Credentials["supplier_id"],
		APIKey:     integ.Credentials["api_key"],
		APISecret:  integ.Credentials["api_secret"],
		BaseURL:    integ.Credentials["base_url"],
	}
	return NewTrendyolAdapter(cfg, integ.Settings.Timeout)
}

// NewHepsiburadaFromIntegration builds a Hepsiburada adapter from a stored
// integration's credential map.
func NewHepsiburadaFromIntegration(integ *integration.Integration) (integration.ChannelAdapter, error) {
	cfg := &HepsiburadaConfig{
		MerchantID: integ.Credentials["merchant_id"],
		APIToken:   integ.Credentials["api_token"],
		BaseURL:    integ.Credentials["base_url"],
	}
	return NewHepsiburadaAdapter(cfg, integ.Settings.Timeout)
}

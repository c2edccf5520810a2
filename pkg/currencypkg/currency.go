// Package currencypkg provides common currency related functionality for apps.
package currencypkg

// Constants for all supported virtual currencies.
const (
	Coin = "COIN"
	Gem  = "GEM"
	Dust = "DUST"
)

// SupportedCurrencies holds all the supported currencies.
var SupportedCurrencies = []string{
	Coin,
	Gem,
	Dust,
}

// IsSupportedCurrency returns true if the currency is supported.
func IsSupportedCurrency(currency string) bool {
	for _, c := range SupportedCurrencies {
		if c == currency {
			return true
		}
	}

	return false
}

package models

// Asset is a catalog entry offered to the selection surface.
type Asset struct {
	ID    AssetID `json:"id"`
	Label string  `json:"label"`
}

// Catalog lists the assets offered for tracking, in display order.
var Catalog = []Asset{
	{ID: "bitcoin", Label: "Bitcoin (BTC)"},
	{ID: "ethereum", Label: "Ethereum (ETH)"},
	{ID: "binancecoin", Label: "Binance Coin (BNB)"},
	{ID: "ripple", Label: "XRP (XRP)"},
	{ID: "cardano", Label: "Cardano (ADA)"},
	{ID: "solana", Label: "Solana (SOL)"},
	{ID: "polkadot", Label: "Polkadot (DOT)"},
	{ID: "dogecoin", Label: "Dogecoin (DOGE)"},
	{ID: "avalanche-2", Label: "Avalanche (AVAX)"},
	{ID: "chainlink", Label: "Chainlink (LINK)"},
}

// DefaultSelection is tracked when nothing else is configured.
var DefaultSelection = []string{"bitcoin", "ethereum", "solana"}

// LookupAsset returns the catalog entry for id.
func LookupAsset(id AssetID) (Asset, bool) {
	for _, a := range Catalog {
		if a.ID == id {
			return a, true
		}
	}
	return Asset{}, false
}

// AssetLabel returns the catalog label, falling back to the raw id.
func AssetLabel(id AssetID) string {
	if a, ok := LookupAsset(id); ok {
		return a.Label
	}
	return string(id)
}

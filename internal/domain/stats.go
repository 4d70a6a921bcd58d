package domain

// CollectionStats is an aggregate view of the collection.
type CollectionStats struct {
	Name           string         `json:"name" yaml:"name"`
	Symbol         string         `json:"symbol" yaml:"symbol"`
	TotalSupply    int            `json:"total_supply" yaml:"total_supply"`
	RarityCounts   map[Rarity]int `json:"rarity_counts" yaml:"rarity_counts"`
	LastKnownPrice int64          `json:"last_btc_price" yaml:"last_btc_price"`
	TotalUpdates   int            `json:"total_updates" yaml:"total_updates"`
}

package idhash

import (
	"testing"

	"dynamic-nft/internal/domain"
)

func TestComputePriceUpdateID(t *testing.T) {
	tests := []struct {
		name      string
		kind      domain.PriceUpdateKind
		subject   string
		ordinal   int
		timestamp int64
		newPrice  int64
	}{
		{
			name:      "mint",
			kind:      domain.PriceUpdateMint,
			subject:   "NFT-0001",
			timestamp: 1704067200000,
			newPrice:  47523,
		},
		{
			name:      "token update",
			kind:      domain.PriceUpdateToken,
			subject:   "NFT-0001",
			ordinal:   1,
			timestamp: 1704067260000,
			newPrice:  52891,
		},
		{
			name:      "batch run",
			kind:      domain.PriceUpdateBatch,
			subject:   "7f9c2ba4-e88f-4f2a-9c4b-1d2e3f4a5b6c",
			timestamp: 1704067320000,
			newPrice:  61000,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputePriceUpdateID(tt.kind, tt.subject, tt.ordinal, tt.timestamp, tt.newPrice)

			if len(got) != 64 {
				t.Errorf("ComputePriceUpdateID() length = %d, want 64", len(got))
			}

			got2 := ComputePriceUpdateID(tt.kind, tt.subject, tt.ordinal, tt.timestamp, tt.newPrice)
			if got != got2 {
				t.Errorf("ComputePriceUpdateID() not deterministic: %s != %s", got, got2)
			}
		})
	}
}

func TestComputePriceUpdateID_DifferentInputs(t *testing.T) {
	base := ComputePriceUpdateID(domain.PriceUpdateToken, "NFT-0001", 1, 1000, 52891)

	if base == ComputePriceUpdateID(domain.PriceUpdateMint, "NFT-0001", 1, 1000, 52891) {
		t.Error("Different kind should produce different hash")
	}
	if base == ComputePriceUpdateID(domain.PriceUpdateToken, "NFT-0002", 1, 1000, 52891) {
		t.Error("Different subject should produce different hash")
	}
	// Two updates of one token in the same millisecond still differ by ordinal.
	if base == ComputePriceUpdateID(domain.PriceUpdateToken, "NFT-0001", 2, 1000, 52891) {
		t.Error("Different ordinal should produce different hash")
	}
	if base == ComputePriceUpdateID(domain.PriceUpdateToken, "NFT-0001", 1, 1000, 52892) {
		t.Error("Different price should produce different hash")
	}
}

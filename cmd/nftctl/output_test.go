package main

import (
	"bytes"
	"testing"

	"github.com/pterm/pterm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dynamic-nft/internal/classifier"
	"dynamic-nft/internal/ledger"
)

func TestValidateOutput(t *testing.T) {
	for _, f := range []string{outputTable, outputJSON, outputYAML} {
		assert.NoError(t, validateOutput(f))
	}
	assert.Error(t, validateOutput("xml"))
}

func TestRender(t *testing.T) {
	r := &ledger.MintResult{
		TokenID:    "NFT-0001",
		Owner:      "alice",
		Price:      47523,
		Attributes: classifier.Classify(47523),
	}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, outputJSON, r, r.Summary(), nil))
	assert.Contains(t, buf.String(), `"token_id": "NFT-0001"`)
	assert.Contains(t, buf.String(), `"rarity": "Uncommon"`)

	buf.Reset()
	require.NoError(t, render(&buf, outputYAML, r, r.Summary(), nil))
	assert.Contains(t, buf.String(), "token_id: NFT-0001")
	assert.Contains(t, buf.String(), "color: Yellow")

	pterm.DisableColor()
	buf.Reset()
	require.NoError(t, render(&buf, outputTable, r, "Minted NFT-0001", bundleTable(r.Attributes)))
	assert.Contains(t, buf.String(), "Minted NFT-0001")
	assert.Contains(t, buf.String(), "Background")
	assert.Contains(t, buf.String(), "Sunset")
}

func TestNextThreshold(t *testing.T) {
	tests := []struct {
		price int64
		want  int64
		ok    bool
	}{
		{0, 30000, true},
		{29999, 30000, true},
		{30000, 35000, true},
		{47523, 50000, true},
		{79999, 80000, true},
		{80000, 0, false},
		{150000, 0, false},
	}

	for _, tt := range tests {
		got, ok := nextThreshold(tt.price)
		assert.Equal(t, tt.ok, ok, "price %d", tt.price)
		assert.Equal(t, tt.want, got, "price %d", tt.price)
	}
}

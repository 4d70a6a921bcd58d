package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"dynamic-nft/internal/domain"
)

// ComputePriceUpdateID computes a deterministic update_id using SHA256.
// Formula: SHA256(kind|subject|ordinal|timestamp|new_price)
// subject is the token id for mint/update rows and the batch run id for batch rows.
// ordinal is the token's update count after the change (0 for mint and batch).
// Returns hex-encoded hash (64 characters).
func ComputePriceUpdateID(
	kind domain.PriceUpdateKind,
	subject string,
	ordinal int,
	timestamp int64,
	newPrice int64,
) string {
	data := fmt.Sprintf("%s|%s|%d|%d|%d",
		string(kind),
		subject,
		ordinal,
		timestamp,
		newPrice,
	)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

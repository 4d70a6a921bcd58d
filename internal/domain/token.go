package domain

import "fmt"

// TokenIDPrefix is the prefix of every token identifier.
const TokenIDPrefix = "NFT-"

// FormatTokenID builds the identifier for the given sequence number, e.g. NFT-0001.
func FormatTokenID(seq int64) string {
	return fmt.Sprintf("%s%04d", TokenIDPrefix, seq)
}

// Token is a minted dynamic NFT.
// Corresponds to tokens table in PostgreSQL.
type Token struct {
	TokenID       string          // PRIMARY KEY, NFT-%04d
	Sequence      int64           // assignment order, unique
	Owner         string          // owner address
	CreatedAt     int64           // mint timestamp (ms)
	CreationPrice int64           // price used at mint
	Attributes    AttributeBundle // current bundle
	UpdateCount   int             // number of updates applied
	LastUpdated   int64           // last mutation timestamp (ms)
}

// TokenState is the logical lifecycle state of a token.
type TokenState string

const (
	TokenStateMinted  TokenState = "minted"
	TokenStateUpdated TokenState = "updated"
)

// State reports whether the token has been updated at least once.
func (t *Token) State() TokenState {
	if t.UpdateCount > 0 {
		return TokenStateUpdated
	}
	return TokenStateMinted
}

// LedgerState is the ledger-wide scalar state.
// Corresponds to ledger_state table in PostgreSQL.
type LedgerState struct {
	LastKnownPrice int64 // 0 until the first successful price is recorded
	Sequence       int64 // last assigned token sequence
}

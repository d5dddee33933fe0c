package domain

// TokenSnapshot is a token metadata entry as observed by a walk.
// Corresponds to token_snapshots table in PostgreSQL.
type TokenSnapshot struct {
	TokenMetadata
	ObservedAt int64 // when the walk saw the entry (ms)
}

// BalanceSnapshot is one balance observation of an owner.
// Corresponds to balance_snapshots table in ClickHouse.
type BalanceSnapshot struct {
	Owner      string
	Token      string
	Amount     string // decimal string, never parsed
	ObservedAt int64  // when the walk saw the balance (ms)
}

package domain

// TokenGroup discriminates fungible from non-fungible tokens.
type TokenGroup string

// Known token groups.
const (
	TokenGroupFungible    TokenGroup = "ft"
	TokenGroupNonFungible TokenGroup = "nft"
)

// TokenMetadata is a token metadata entry as served by the cache.
// Brands are listed with the same shape.
type TokenMetadata struct {
	Token      string               `json:"token"`
	TokenGroup TokenGroup           `json:"token_group"`
	Brand      string               `json:"brand"`
	Metadata   TokenMetadataContent `json:"metadata"`
}

// TokenMetadataContent holds the EVM-style metadata of a token.
type TokenMetadataContent struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
	// Decimals is 0 for NFTs and for tokens with no fractional part,
	// 18 for currency-like tokens. The wire name is singular.
	Decimals   uint32           `json:"decimal"`
	Properties map[string]Value `json:"properties"`
}

// BrandsResult is the response of GET /brands.
type BrandsResult struct {
	Brands []TokenMetadata `json:"brands"`
}

// UnmarshalJSON requires the "brands" array.
func (r *BrandsResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "brands", &r.Brands)
}

// TokensResult is the response of GET /tokens and GET /tokens/{brand}.
type TokensResult struct {
	Tokens []TokenMetadata `json:"tokens"`
}

// UnmarshalJSON requires the "tokens" array.
func (r *TokensResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "tokens", &r.Tokens)
}

package domain

import (
	"encoding/json"
	"fmt"
)

// BrandPermission is a capability granted to a user within a brand.
// Other fields of the wire record are redundant and dropped.
type BrandPermission struct {
	Permission string `json:"permission"`
}

// BrandPermissionsResult is the response of GET /brands/{brand}/permissions/{user}.
type BrandPermissionsResult struct {
	Permissions []BrandPermission `json:"permissions"`
}

// UnmarshalJSON requires the "permissions" array.
func (r *BrandPermissionsResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "permissions", &r.Permissions)
}

// MetaversePermission is a capability granted to a user at metaverse scope.
type MetaversePermission struct {
	Permission string `json:"permission"`
}

// MetaversePermissionsResult is the response of GET /permissions/{user}.
type MetaversePermissionsResult struct {
	Permissions []MetaversePermission `json:"permissions"`
}

// UnmarshalJSON requires the "permissions" array.
func (r *MetaversePermissionsResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "permissions", &r.Permissions)
}

// BrandSponsor is a sponsor address of a brand.
type BrandSponsor struct {
	Sponsor string `json:"sponsor"`
}

// BrandSponsorsResult is the response of GET /brands/{brand}/sponsors.
type BrandSponsorsResult struct {
	Sponsors []BrandSponsor `json:"sponsors"`
}

// UnmarshalJSON requires the "sponsors" array.
func (r *BrandSponsorsResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "sponsors", &r.Sponsors)
}

// SponsoredBrand is a brand address sponsored by a sponsor.
type SponsoredBrand struct {
	Brand string `json:"brand"`
}

// SponsoredBrandsResult is the response of GET /sponsors/{sponsor}/brands.
type SponsoredBrandsResult struct {
	Brands []SponsoredBrand `json:"brands"`
}

// UnmarshalJSON requires the "brands" array.
func (r *SponsoredBrandsResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "brands", &r.Brands)
}

// Balance is the amount of a token held by an owner.
// Amount stays a decimal string: balances routinely exceed 64 bits.
type Balance struct {
	Amount string `json:"amount"`
	Token  string `json:"token"`
}

// BalancesResult is the response of GET /balances/{owner}.
type BalancesResult struct {
	Balances []Balance `json:"balances"`
}

// UnmarshalJSON requires the "balances" array.
func (r *BalancesResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "balances", &r.Balances)
}

// Deal is an exchange between an emitter and a receiver.
// On each side the token ids and amounts are index-aligned.
type Deal struct {
	Index           string   `json:"index"`
	Emitter         string   `json:"emitter"`
	EmitterTokens   []string `json:"emitter_ids"`
	EmitterAmounts  []string `json:"emitter_amounts"`
	Receiver        string   `json:"receiver"`
	ReceiverTokens  []string `json:"receiver_ids"`
	ReceiverAmounts []string `json:"receiver_amounts"`
	Status          string   `json:"status"`
}

// DealsResult is the response of GET /deals/{dealer}.
type DealsResult struct {
	Deals []Deal `json:"deals"`
}

// UnmarshalJSON requires the "deals" array.
func (r *DealsResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "deals", &r.Deals)
}

// Parameter is a metaverse-wide configuration entry.
type Parameter struct {
	Key   string `json:"key"`
	Value Value  `json:"value"`
}

// ParametersResult is the response of GET /parameters.
type ParametersResult struct {
	Parameters []Parameter `json:"parameters"`
}

// UnmarshalJSON requires the "parameters" array.
func (r *ParametersResult) UnmarshalJSON(data []byte) error {
	return decodeList(data, "parameters", &r.Parameters)
}

// decodeList decodes the single array field of a result wrapper.
// A missing field, null or any non-array value is an error.
func decodeList[T any](data []byte, field string, dst *[]T) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}

	raw, ok := fields[field]
	if !ok {
		return fmt.Errorf("missing %q field", field)
	}
	if len(raw) == 0 || raw[0] != '[' {
		return fmt.Errorf("field %q is not an array", field)
	}

	items := make([]T, 0)
	if err := json.Unmarshal(raw, &items); err != nil {
		return fmt.Errorf("decode %q: %w", field, err)
	}
	*dst = items
	return nil
}

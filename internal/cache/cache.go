// Package cache is a typed read-only client for the SemperLand cache API.
package cache

import (
	"context"

	"semperland-cache/internal/domain"
)

// Client defines the SemperLand cache HTTP interface.
// Every call is a single GET; there is no retry and no memoization.
type Client interface {
	// Brands lists brands with their full metadata.
	Brands(ctx context.Context, opts BrandsOpts) (*domain.BrandsResult, error)

	// BrandPermissions lists the permissions a user holds in a brand.
	BrandPermissions(ctx context.Context, brand, user string, opts PageOpts) (*domain.BrandPermissionsResult, error)

	// BrandSponsors lists the sponsors of a brand.
	BrandSponsors(ctx context.Context, brand string, opts PageOpts) (*domain.BrandSponsorsResult, error)

	// Balances lists the token balances of an owner.
	Balances(ctx context.Context, owner string, opts BalancesOpts) (*domain.BalancesResult, error)

	// Deals lists the deals a user takes part in.
	Deals(ctx context.Context, dealer string, opts PageOpts) (*domain.DealsResult, error)

	// Parameters lists the metaverse parameters.
	Parameters(ctx context.Context, opts PageOpts) (*domain.ParametersResult, error)

	// Permissions lists the metaverse permissions of a user.
	Permissions(ctx context.Context, user string, opts PageOpts) (*domain.MetaversePermissionsResult, error)

	// SponsoredBrands lists the brands sponsored by a sponsor.
	SponsoredBrands(ctx context.Context, sponsor string, opts PageOpts) (*domain.SponsoredBrandsResult, error)

	// Tokens lists tokens, globally or within one brand, with optional full-text filter.
	Tokens(ctx context.Context, opts TokensOpts) (*domain.TokensResult, error)
}

// PageOpts selects a result page. The zero value is page 0.
type PageOpts struct {
	Page uint32
}

// BrandsOpts defines optional parameters for Brands.
type BrandsOpts struct {
	Page uint32
	Text string // full-text filter, empty for none
}

// BalancesOpts defines optional parameters for Balances.
type BalancesOpts struct {
	Page   uint32
	Tokens []string // restrict to these token ids, nil for all
}

// TokensOpts defines optional parameters for Tokens.
type TokensOpts struct {
	Brand  string // empty lists tokens of every brand
	Page   uint32
	Text   string   // full-text filter, empty for none
	Tokens []string // restrict to these token ids, nil for all
}

package cache

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"semperland-cache/internal/domain"
)

// Path templates, relative to the base endpoint.
const (
	brandsPath               = "/brands"
	brandPermissionsPath     = "/brands/%s/permissions/%s"
	brandSponsorsPath        = "/brands/%s/sponsors"
	balancesPath             = "/balances/%s"
	dealsPath                = "/deals/%s"
	metaverseParametersPath  = "/parameters"
	metaversePermissionsPath = "/permissions/%s"
	sponsoredBrandsPath      = "/sponsors/%s/brands"
	tokensPath               = "/tokens"
	tokensForBrandPath       = "/tokens/%s"
)

// Endpoint names used for metrics and logs.
const (
	EndpointBrands           = "brands"
	EndpointBrandPermissions = "brand_permissions"
	EndpointBrandSponsors    = "brand_sponsors"
	EndpointBalances         = "balances"
	EndpointDeals            = "deals"
	EndpointParameters       = "parameters"
	EndpointPermissions      = "permissions"
	EndpointSponsoredBrands  = "sponsored_brands"
	EndpointTokens           = "tokens"
)

// Compile-time interface check.
var _ Client = (*HTTPClient)(nil)

// Brands lists brands with their full metadata.
func (c *HTTPClient) Brands(ctx context.Context, opts BrandsOpts) (*domain.BrandsResult, error) {
	fullURL := c.buildURL(brandsPath, []queryParam{
		pageParam(opts.Page),
		{"text", strings.TrimSpace(opts.Text)},
	})
	return get[domain.BrandsResult](ctx, c, EndpointBrands, fullURL)
}

// BrandPermissions lists the permissions a user holds in a brand.
func (c *HTTPClient) BrandPermissions(ctx context.Context, brand, user string, opts PageOpts) (*domain.BrandPermissionsResult, error) {
	path := fmt.Sprintf(brandPermissionsPath, strings.TrimSpace(brand), strings.TrimSpace(user))
	fullURL := c.buildURL(path, []queryParam{pageParam(opts.Page)})
	return get[domain.BrandPermissionsResult](ctx, c, EndpointBrandPermissions, fullURL)
}

// BrandSponsors lists the sponsors of a brand.
func (c *HTTPClient) BrandSponsors(ctx context.Context, brand string, opts PageOpts) (*domain.BrandSponsorsResult, error) {
	path := fmt.Sprintf(brandSponsorsPath, strings.TrimSpace(brand))
	fullURL := c.buildURL(path, []queryParam{pageParam(opts.Page)})
	return get[domain.BrandSponsorsResult](ctx, c, EndpointBrandSponsors, fullURL)
}

// Balances lists the token balances of an owner.
func (c *HTTPClient) Balances(ctx context.Context, owner string, opts BalancesOpts) (*domain.BalancesResult, error) {
	path := fmt.Sprintf(balancesPath, strings.TrimSpace(owner))
	fullURL := c.buildURL(path, []queryParam{
		pageParam(opts.Page),
		tokensParam(opts.Tokens),
	})
	return get[domain.BalancesResult](ctx, c, EndpointBalances, fullURL)
}

// Deals lists the deals a user takes part in.
func (c *HTTPClient) Deals(ctx context.Context, dealer string, opts PageOpts) (*domain.DealsResult, error) {
	path := fmt.Sprintf(dealsPath, strings.TrimSpace(dealer))
	fullURL := c.buildURL(path, []queryParam{pageParam(opts.Page)})
	return get[domain.DealsResult](ctx, c, EndpointDeals, fullURL)
}

// Parameters lists the metaverse parameters.
func (c *HTTPClient) Parameters(ctx context.Context, opts PageOpts) (*domain.ParametersResult, error) {
	fullURL := c.buildURL(metaverseParametersPath, []queryParam{pageParam(opts.Page)})
	return get[domain.ParametersResult](ctx, c, EndpointParameters, fullURL)
}

// Permissions lists the metaverse permissions of a user.
func (c *HTTPClient) Permissions(ctx context.Context, user string, opts PageOpts) (*domain.MetaversePermissionsResult, error) {
	path := fmt.Sprintf(metaversePermissionsPath, strings.TrimSpace(user))
	fullURL := c.buildURL(path, []queryParam{pageParam(opts.Page)})
	return get[domain.MetaversePermissionsResult](ctx, c, EndpointPermissions, fullURL)
}

// SponsoredBrands lists the brands sponsored by a sponsor.
func (c *HTTPClient) SponsoredBrands(ctx context.Context, sponsor string, opts PageOpts) (*domain.SponsoredBrandsResult, error) {
	path := fmt.Sprintf(sponsoredBrandsPath, strings.TrimSpace(sponsor))
	fullURL := c.buildURL(path, []queryParam{pageParam(opts.Page)})
	return get[domain.SponsoredBrandsResult](ctx, c, EndpointSponsoredBrands, fullURL)
}

// Tokens lists tokens. An empty (after trimming) brand targets /tokens,
// any other brand targets /tokens/{brand}.
func (c *HTTPClient) Tokens(ctx context.Context, opts TokensOpts) (*domain.TokensResult, error) {
	path := tokensPath
	if brand := strings.TrimSpace(opts.Brand); brand != "" {
		path = fmt.Sprintf(tokensForBrandPath, brand)
	}
	fullURL := c.buildURL(path, []queryParam{
		pageParam(opts.Page),
		{"text", strings.TrimSpace(opts.Text)},
		tokensParam(opts.Tokens),
	})
	return get[domain.TokensResult](ctx, c, EndpointTokens, fullURL)
}

func pageParam(page uint32) queryParam {
	return queryParam{"page", strconv.FormatUint(uint64(page), 10)}
}

// tokensParam renders a token list as one comma-joined value.
// A nil list is sent as an empty value, never omitted.
func tokensParam(tokens []string) queryParam {
	trimmed := make([]string, len(tokens))
	for i, t := range tokens {
		trimmed[i] = strings.TrimSpace(t)
	}
	return queryParam{"tokens", strings.Join(trimmed, ",")}
}

// Package walker traverses every endpoint of a Semperland cache once,
// logging what it sees and optionally archiving tokens and balances.
package walker

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"semperland-cache/internal/cache"
	"semperland-cache/internal/domain"
	"semperland-cache/internal/observability"
	"semperland-cache/internal/storage"
)

// ZeroBrand owns the tokens that belong to no brand.
const ZeroBrand = "0x0000000000000000000000000000000000000000"

// DefaultConcurrency bounds the concurrent per-owner fetches.
const DefaultConcurrency = 4

// Store names used for storage metrics.
const (
	storeTokens   = "token_snapshots"
	storeBalances = "balance_snapshots"
)

// Options contains configuration for creating a Walker.
type Options struct {
	Client       cache.Client
	TokenStore   storage.TokenStore           // optional archive
	BalanceStore storage.BalanceSnapshotStore // optional archive
	Metrics      *observability.Metrics
	Logger       *log.Logger

	Managers      []string // users whose metaverse permissions are listed
	BrandManagers []string // users whose permissions are listed in every brand
	Owners        []string // users whose balances and deals are listed

	Concurrency int              // Default: 4
	Now         func() time.Time // Default: time.Now
}

// Summary counts what one walk saw.
type Summary struct {
	ObservedAt       int64 // ms
	Brands           int
	Tokens           int // distinct token ids
	Sponsors         int // distinct sponsors
	BrandPermissions int
	Permissions      int
	Parameters       int
	SponsoredBrands  int
	Balances         int
	Deals            int
}

// StepError reports which step of a walk failed.
type StepError struct {
	Step string
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("walk %s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Walker runs walks. It is safe to call Run repeatedly.
type Walker struct {
	client       cache.Client
	tokenStore   storage.TokenStore
	balanceStore storage.BalanceSnapshotStore
	metrics      *observability.Metrics
	logger       *log.Logger

	managers      []string
	brandManagers []string
	owners        []string

	concurrency int
	now         func() time.Time
}

// New creates a new Walker.
func New(opts Options) *Walker {
	concurrency := opts.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}

	return &Walker{
		client:        opts.Client,
		tokenStore:    opts.TokenStore,
		balanceStore:  opts.BalanceStore,
		metrics:       opts.Metrics,
		logger:        logger,
		managers:      opts.Managers,
		brandManagers: opts.BrandManagers,
		owners:        opts.Owners,
		concurrency:   concurrency,
		now:           now,
	}
}

// walk holds the state of one Run.
type walk struct {
	summary  Summary
	sponsors map[string]struct{}
	tokens   map[string]domain.TokenMetadata
	order    []string // token ids in first-seen order
	balances []*domain.BalanceSnapshot
}

// Run performs one walk. The first failing call aborts it and is
// returned as a *StepError wrapping the client error.
func (w *Walker) Run(ctx context.Context) (summary *Summary, err error) {
	defer func() {
		w.metrics.RecordWalkerRun(err, w.now())
	}()

	st := &walk{
		sponsors: make(map[string]struct{}),
		tokens:   make(map[string]domain.TokenMetadata),
	}
	st.summary.ObservedAt = w.now().UnixMilli()

	if err := w.walkBrands(ctx, st); err != nil {
		return nil, err
	}
	if err := w.walkMetaverse(ctx, st); err != nil {
		return nil, err
	}
	if err := w.walkTokens(ctx, st); err != nil {
		return nil, err
	}
	if err := w.walkSponsors(ctx, st); err != nil {
		return nil, err
	}
	if err := w.walkOwners(ctx, st); err != nil {
		return nil, err
	}

	st.summary.Tokens = len(st.order)
	st.summary.Sponsors = len(st.sponsors)

	if err := w.archive(ctx, st); err != nil {
		return nil, err
	}

	w.logger.Printf("walk done: %d brands, %d tokens, %d sponsors, %d balances, %d deals",
		st.summary.Brands, st.summary.Tokens, st.summary.Sponsors, st.summary.Balances, st.summary.Deals)
	return &st.summary, nil
}

func (w *Walker) walkBrands(ctx context.Context, st *walk) error {
	brands, err := w.client.Brands(ctx, cache.BrandsOpts{})
	if err != nil {
		return &StepError{Step: "brands", Err: err}
	}
	st.summary.Brands = len(brands.Brands)

	for _, brand := range brands.Brands {
		w.logResult("Brand", brand)

		sponsors, err := w.client.BrandSponsors(ctx, brand.Brand, cache.PageOpts{})
		if err != nil {
			return &StepError{Step: "sponsors of brand " + brand.Brand, Err: err}
		}
		for _, sponsor := range sponsors.Sponsors {
			w.logResult(">>> Sponsor", sponsor)
			st.sponsors[sponsor.Sponsor] = struct{}{}
		}

		tokens, err := w.client.Tokens(ctx, cache.TokensOpts{Brand: brand.Brand})
		if err != nil {
			return &StepError{Step: "tokens of brand " + brand.Brand, Err: err}
		}
		for _, token := range tokens.Tokens {
			w.logResult(fmt.Sprintf(">>> Token metadata (brand %s)", brand.Brand), token)
			st.addToken(token)
		}

		for _, manager := range w.brandManagers {
			perms, err := w.client.BrandPermissions(ctx, brand.Brand, manager, cache.PageOpts{})
			if err != nil {
				return &StepError{Step: fmt.Sprintf("permissions of %s in brand %s", manager, brand.Brand), Err: err}
			}
			w.logResult(fmt.Sprintf(">>> Brand permissions (brand %s, user %s)", brand.Brand, manager), perms)
			st.summary.BrandPermissions += len(perms.Permissions)
		}
	}
	return nil
}

func (w *Walker) walkMetaverse(ctx context.Context, st *walk) error {
	for _, manager := range w.managers {
		perms, err := w.client.Permissions(ctx, manager, cache.PageOpts{})
		if err != nil {
			return &StepError{Step: "metaverse permissions of " + manager, Err: err}
		}
		w.logResult(fmt.Sprintf("Metaverse permissions (user %s)", manager), perms)
		st.summary.Permissions += len(perms.Permissions)
	}

	params, err := w.client.Parameters(ctx, cache.PageOpts{})
	if err != nil {
		return &StepError{Step: "parameters", Err: err}
	}
	for _, param := range params.Parameters {
		w.logResult("Parameter", param)
	}
	st.summary.Parameters = len(params.Parameters)
	return nil
}

func (w *Walker) walkTokens(ctx context.Context, st *walk) error {
	all, err := w.client.Tokens(ctx, cache.TokensOpts{})
	if err != nil {
		return &StepError{Step: "tokens", Err: err}
	}
	for _, token := range all.Tokens {
		w.logResult("Token metadata (global)", token)
		st.addToken(token)
	}

	unbranded, err := w.client.Tokens(ctx, cache.TokensOpts{Brand: ZeroBrand})
	if err != nil {
		return &StepError{Step: "tokens of brand 0", Err: err}
	}
	for _, token := range unbranded.Tokens {
		w.logResult("Token metadata (Brand 0)", token)
		st.addToken(token)
	}
	return nil
}

func (w *Walker) walkSponsors(ctx context.Context, st *walk) error {
	sponsors := make([]string, 0, len(st.sponsors))
	for sponsor := range st.sponsors {
		sponsors = append(sponsors, sponsor)
	}
	sort.Strings(sponsors)

	for _, sponsor := range sponsors {
		brands, err := w.client.SponsoredBrands(ctx, sponsor, cache.PageOpts{})
		if err != nil {
			return &StepError{Step: "brands sponsored by " + sponsor, Err: err}
		}
		w.logResult("Sponsored brands for "+sponsor, brands)
		st.summary.SponsoredBrands += len(brands.Brands)
	}
	return nil
}

// ownerResult is what the per-owner fetch returns.
type ownerResult struct {
	balances *domain.BalancesResult
	deals    *domain.DealsResult
}

// walkOwners fetches owners concurrently but logs them in configured order.
func (w *Walker) walkOwners(ctx context.Context, st *walk) error {
	results := make([]ownerResult, len(w.owners))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(w.concurrency)
	for i, owner := range w.owners {
		g.Go(func() error {
			balances, err := w.client.Balances(gctx, owner, cache.BalancesOpts{})
			if err != nil {
				return &StepError{Step: "balances of " + owner, Err: err}
			}
			deals, err := w.client.Deals(gctx, owner, cache.PageOpts{})
			if err != nil {
				return &StepError{Step: "deals of " + owner, Err: err}
			}
			results[i] = ownerResult{balances: balances, deals: deals}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	seen := make(map[[2]string]struct{})
	for i, owner := range w.owners {
		res := results[i]
		w.logResult(fmt.Sprintf(">>> Balances (owner: %s)", owner), res.balances)
		w.logResult(fmt.Sprintf(">>> Deals (owner: %s)", owner), res.deals)

		st.summary.Balances += len(res.balances.Balances)
		st.summary.Deals += len(res.deals.Deals)

		for _, bal := range res.balances.Balances {
			// An owner may be configured twice; the archive key must stay unique.
			k := [2]string{owner, bal.Token}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			st.balances = append(st.balances, &domain.BalanceSnapshot{
				Owner:      owner,
				Token:      bal.Token,
				Amount:     bal.Amount,
				ObservedAt: st.summary.ObservedAt,
			})
		}
	}
	return nil
}

func (w *Walker) archive(ctx context.Context, st *walk) error {
	if w.tokenStore != nil && len(st.order) > 0 {
		snaps := make([]*domain.TokenSnapshot, len(st.order))
		for i, id := range st.order {
			snaps[i] = &domain.TokenSnapshot{TokenMetadata: st.tokens[id], ObservedAt: st.summary.ObservedAt}
		}
		err := w.tokenStore.Upsert(ctx, snaps)
		w.metrics.RecordStorageWrite(storeTokens, err)
		if err != nil {
			return &StepError{Step: "archive tokens", Err: err}
		}
		w.logger.Printf("archived %d token snapshots", len(snaps))
	}

	if w.balanceStore != nil && len(st.balances) > 0 {
		err := w.balanceStore.InsertBulk(ctx, st.balances)
		w.metrics.RecordStorageWrite(storeBalances, err)
		if err != nil {
			return &StepError{Step: "archive balances", Err: err}
		}
		w.logger.Printf("archived %d balance snapshots", len(st.balances))
	}
	return nil
}

// addToken keeps the first entry seen for a token id.
func (st *walk) addToken(token domain.TokenMetadata) {
	if token.Token == "" {
		return
	}
	if _, ok := st.tokens[token.Token]; ok {
		return
	}
	st.tokens[token.Token] = token
	st.order = append(st.order, token.Token)
}

func (w *Walker) logResult(label string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.logger.Printf("%s: <unencodable: %v>", label, err)
		return
	}
	w.logger.Printf("%s: %s", label, data)
}

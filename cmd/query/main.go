// Command query performs one call against a Semperland cache and prints
// the decoded result as indented JSON.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"semperland-cache/internal/cache"
)

const usageText = `usage: query [flags] <endpoint> [args]

endpoints:
  brands
  brand-permissions <brand> <user>
  brand-sponsors <brand>
  balances <owner>
  deals <dealer>
  parameters
  permissions <user>
  sponsored-brands <sponsor>
  tokens [brand]

flags:
`

// Exit codes.
const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

// errUsage marks argument errors.
var errUsage = errors.New("usage")

// invocation is one parsed command line.
type invocation struct {
	baseEndpoint string
	timeout      time.Duration
	name         string
	args         []string
	page         uint32
	text         string
	tokens       []string
}

// arity is the accepted positional argument count per endpoint.
var arity = map[string][2]int{
	"brands":            {0, 0},
	"brand-permissions": {2, 2},
	"brand-sponsors":    {1, 1},
	"balances":          {1, 1},
	"deals":             {1, 1},
	"parameters":        {0, 0},
	"permissions":       {1, 1},
	"sponsored-brands":  {1, 1},
	"tokens":            {0, 1},
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	inv, err := parseArgs(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintln(stderr, err)
		}
		return exitUsage
	}

	client := cache.NewHTTPClient(inv.baseEndpoint, cache.WithTimeout(inv.timeout))
	result, err := call(ctx, client, inv)
	if err != nil {
		fmt.Fprintf(stderr, "%s failed (%s): %v\n", inv.name, cache.KindOf(err), err)
		return exitFailure
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(result); err != nil {
		fmt.Fprintf(stderr, "encode result: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func parseArgs(args []string, stderr io.Writer) (*invocation, error) {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usageText)
		fs.PrintDefaults()
	}

	endpoint := fs.String("endpoint", envOr("SEMPERLAND_ENDPOINT", "http://localhost:8080"), "Semperland cache base endpoint")
	timeout := fs.Duration("timeout", cache.DefaultTimeout, "Request timeout")
	page := fs.Uint64("page", 0, "Page number")
	text := fs.String("text", "", "Text filter (brands, tokens)")
	tokens := fs.String("tokens", "", "Comma-separated token ids (balances, tokens)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *page > math.MaxUint32 {
		return nil, fmt.Errorf("%w: -page %d out of range", errUsage, *page)
	}

	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return nil, fmt.Errorf("%w: missing endpoint", errUsage)
	}

	name, positional := rest[0], rest[1:]
	bounds, ok := arity[name]
	if !ok {
		return nil, fmt.Errorf("%w: unknown endpoint %q", errUsage, name)
	}
	if len(positional) < bounds[0] || len(positional) > bounds[1] {
		return nil, fmt.Errorf("%w: %s takes %s", errUsage, name, describeArity(bounds))
	}

	inv := &invocation{
		baseEndpoint: *endpoint,
		timeout:      *timeout,
		name:         name,
		args:         positional,
		page:         uint32(*page),
		text:         *text,
	}
	if *tokens != "" {
		inv.tokens = strings.Split(*tokens, ",")
	}
	return inv, nil
}

func describeArity(bounds [2]int) string {
	switch {
	case bounds[0] == bounds[1] && bounds[0] == 0:
		return "no arguments"
	case bounds[0] == bounds[1]:
		return fmt.Sprintf("%d argument(s)", bounds[0])
	default:
		return fmt.Sprintf("%d to %d arguments", bounds[0], bounds[1])
	}
}

// call maps an invocation onto the matching client operation.
func call(ctx context.Context, client cache.Client, inv *invocation) (any, error) {
	page := cache.PageOpts{Page: inv.page}

	switch inv.name {
	case "brands":
		return client.Brands(ctx, cache.BrandsOpts{Page: inv.page, Text: inv.text})
	case "brand-permissions":
		return client.BrandPermissions(ctx, inv.args[0], inv.args[1], page)
	case "brand-sponsors":
		return client.BrandSponsors(ctx, inv.args[0], page)
	case "balances":
		return client.Balances(ctx, inv.args[0], cache.BalancesOpts{Page: inv.page, Tokens: inv.tokens})
	case "deals":
		return client.Deals(ctx, inv.args[0], page)
	case "parameters":
		return client.Parameters(ctx, page)
	case "permissions":
		return client.Permissions(ctx, inv.args[0], page)
	case "sponsored-brands":
		return client.SponsoredBrands(ctx, inv.args[0], page)
	case "tokens":
		opts := cache.TokensOpts{Page: inv.page, Text: inv.text, Tokens: inv.tokens}
		if len(inv.args) == 1 {
			opts.Brand = inv.args[0]
		}
		return client.Tokens(ctx, opts)
	default:
		return nil, fmt.Errorf("%w: unknown endpoint %q", errUsage, inv.name)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	inv, err := parseArgs([]string{"-endpoint", "http://cache", "-page", "3", "-tokens", "0xA,0xB", "tokens", "0xBrand"}, &bytes.Buffer{})
	require.NoError(t, err)

	assert.Equal(t, "http://cache", inv.baseEndpoint)
	assert.Equal(t, "tokens", inv.name)
	assert.Equal(t, []string{"0xBrand"}, inv.args)
	assert.Equal(t, uint32(3), inv.page)
	assert.Equal(t, []string{"0xA", "0xB"}, inv.tokens)
}

func TestParseArgs_UsageErrors(t *testing.T) {
	cases := map[string][]string{
		"missing endpoint":  {},
		"unknown endpoint":  {"wallets"},
		"too few args":      {"brand-permissions", "0xBrand"},
		"too many args":     {"parameters", "extra"},
		"page out of range": {"-page", "4294967296", "brands"},
		"bad flag":          {"-nope", "brands"},
	}

	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := parseArgs(args, &bytes.Buffer{})
			assert.Error(t, err)
		})
	}
}

func TestRun_RequestURIs(t *testing.T) {
	cases := []struct {
		args []string
		uri  string
		body string
	}{
		{[]string{"brands"}, "/brands?page=0&text=", `{"brands":[]}`},
		{[]string{"-text", "dragon", "brands"}, "/brands?page=0&text=dragon", `{"brands":[]}`},
		{[]string{"brand-permissions", "0xB", "0xU"}, "/brands/0xB/permissions/0xU?page=0", `{"permissions":[]}`},
		{[]string{"brand-sponsors", "0xB"}, "/brands/0xB/sponsors?page=0", `{"sponsors":[]}`},
		{[]string{"-tokens", "0xT1,0xT2", "balances", "0xO"}, "/balances/0xO?page=0&tokens=0xT1%2C0xT2", `{"balances":[]}`},
		{[]string{"-page", "2", "deals", "0xD"}, "/deals/0xD?page=2", `{"deals":[]}`},
		{[]string{"parameters"}, "/parameters?page=0", `{"parameters":[]}`},
		{[]string{"permissions", "0xU"}, "/permissions/0xU?page=0", `{"permissions":[]}`},
		{[]string{"sponsored-brands", "0xS"}, "/sponsors/0xS/brands?page=0", `{"brands":[]}`},
		{[]string{"tokens"}, "/tokens?page=0&text=&tokens=", `{"tokens":[]}`},
		{[]string{"tokens", "0xB"}, "/tokens/0xB?page=0&text=&tokens=", `{"tokens":[]}`},
	}

	for _, tc := range cases {
		t.Run(tc.uri, func(t *testing.T) {
			uris := make(chan string, 1)
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				uris <- r.URL.RequestURI()
				_, _ = w.Write([]byte(tc.body))
			}))
			defer server.Close()

			var stdout, stderr bytes.Buffer
			args := append([]string{"-endpoint", server.URL}, tc.args...)
			code := run(context.Background(), args, &stdout, &stderr)

			require.Equal(t, exitOK, code, stderr.String())
			assert.Equal(t, tc.uri, <-uris)
			assert.NotEmpty(t, stdout.String())
		})
	}
}

func TestRun_PrintsIndentedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"balances":[{"token":"0xT","amount":"12","extra":true}]}`))
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-endpoint", server.URL, "balances", "0xO"}, &stdout, &stderr)

	require.Equal(t, exitOK, code)
	assert.Equal(t, "{\n  \"balances\": [\n    {\n      \"amount\": \"12\",\n      \"token\": \"0xT\"\n    }\n  ]\n}\n", stdout.String())
}

func TestRun_Failures(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/parameters" {
			_, _ = w.Write([]byte(`not json`))
			return
		}
		http.NotFound(w, r)
	}))
	defer server.Close()

	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"-endpoint", server.URL, "deals", "0xD"}, &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "deals failed (unexpected_status)")
	assert.Empty(t, stdout.String())

	stderr.Reset()
	code = run(context.Background(), []string{"-endpoint", server.URL, "parameters"}, &stdout, &stderr)
	assert.Equal(t, exitFailure, code)
	assert.Contains(t, stderr.String(), "parameters failed (invalid_response)")

	stderr.Reset()
	code = run(context.Background(), []string{"-endpoint", server.URL, "deals"}, &stdout, &stderr)
	assert.Equal(t, exitUsage, code)
}

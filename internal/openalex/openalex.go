// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package openalex queries the OpenAlex works API for abstracts by DOI.
// OpenAlex stores abstracts as an inverted index (word -> positions) to
// save space; the client reconstructs the plain text.
package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/abstract-engine/internal/httputil"
	"github.com/pdiddy/abstract-engine/pkg/types"
)

// apiBase is the OpenAlex works endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.openalex.org/works/"

// Request pacing. OpenAlex admits mailto-tagged clients to the polite
// pool; anonymous clients are held to roughly one request per second.
const (
	politeInterval    = 200 * time.Millisecond
	anonymousInterval = 1 * time.Second
)

// workResponse captures the fields we need from an OpenAlex work record.
type workResponse struct {
	AbstractInvertedIndex map[string][]int `json:"abstract_inverted_index"`
}

// Client is a rate-limited OpenAlex API client.
type Client struct {
	httpClient *http.Client
	userAgent  string
	limiter    *rate.Limiter
}

// NewClient builds a client from cfg. The inter-request pause is chosen by
// whether a contact email is configured.
func NewClient(hc *http.Client, cfg types.LookupConfig) *Client {
	interval := anonymousInterval
	ua := cfg.UserAgent
	if ua == "" {
		ua = "abstract-engine/0.1"
	}
	if cfg.Email != "" {
		interval = politeInterval
		ua = fmt.Sprintf("%s (mailto:%s)", ua, cfg.Email)
	}
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &Client{
		httpClient: hc,
		userAgent:  ua,
		limiter:    rate.NewLimiter(rate.Every(interval), 1),
	}
}

// AbstractByDOI looks up a work by DOI and returns its reconstructed
// abstract. A work that is unknown to OpenAlex or has no abstract yields
// ("", nil): absence is a normal outcome, not an error. The call blocks on
// the client's rate limiter before issuing the request.
func (c *Client) AbstractByDOI(ctx context.Context, doi string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, apiBase+"doi:"+doi, nil)
	if err != nil {
		return "", fmt.Errorf("creating OpenAlex request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return "", fmt.Errorf("OpenAlex API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("OpenAlex API returned HTTP %d", resp.StatusCode)
	}

	var work workResponse
	if err := json.NewDecoder(resp.Body).Decode(&work); err != nil {
		return "", fmt.Errorf("parsing OpenAlex response: %w", err)
	}

	return Reconstruct(work.AbstractInvertedIndex), nil
}

// Reconstruct rebuilds abstract text from an inverted index: flatten to
// (position, word) pairs, sort by position, join with single spaces. The
// sort is stable so duplicate positions keep their flattening order.
func Reconstruct(index map[string][]int) string {
	if len(index) == 0 {
		return ""
	}

	type posWord struct {
		pos  int
		word string
	}

	// Iterate words in sorted order so flattening is deterministic before
	// the stable position sort.
	words := make([]string, 0, len(index))
	for w := range index {
		words = append(words, w)
	}
	sort.Strings(words)

	var pairs []posWord
	for _, w := range words {
		for _, p := range index[w] {
			pairs = append(pairs, posWord{pos: p, word: w})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool { return pairs[i].pos < pairs[j].pos })

	out := make([]byte, 0, len(pairs)*8)
	for i, pw := range pairs {
		if i > 0 {
			out = append(out, ' ')
		}
		out = append(out, pw.word...)
	}
	return string(out)
}

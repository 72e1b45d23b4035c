// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package zotero is a thin client for the Zotero web API covering what the
// pipeline needs: full item listing, attachment download, and versioned
// abstract writes. Writes carry the version captured at fetch time so the
// server rejects them if another actor changed the record in between.
package zotero

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/pdiddy/abstract-engine/internal/httputil"
	"github.com/pdiddy/abstract-engine/pkg/types"
)

// apiBase is the Zotero API root. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://api.zotero.org"

// pageSize is the Zotero API maximum page length.
const pageSize = 100

// ErrVersionConflict is returned when a write is rejected because the
// record changed since it was fetched. The record must be re-fetched in a
// subsequent run; there is no automatic retry.
var ErrVersionConflict = errors.New("zotero: item version conflict")

// item is the API envelope around a record.
type item struct {
	Key     string       `json:"key"`
	Version int          `json:"version"`
	Data    types.Record `json:"data"`
}

// Client talks to one Zotero library.
type Client struct {
	httpClient  *http.Client
	libraryID   string
	libraryType string
	apiKey      string
	userAgent   string
}

// NewClient builds a client from cfg. LibraryType defaults to "users".
func NewClient(hc *http.Client, cfg types.ZoteroConfig) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	libraryType := cfg.LibraryType
	if libraryType == "" {
		libraryType = "users"
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "abstract-engine/0.1"
	}
	return &Client{
		httpClient:  hc,
		libraryID:   cfg.LibraryID,
		libraryType: libraryType,
		apiKey:      cfg.APIKey,
		userAgent:   ua,
	}
}

func (c *Client) libraryURL(suffix string) string {
	return fmt.Sprintf("%s/%s/%s%s", apiBase, c.libraryType, c.libraryID, suffix)
}

func (c *Client) newRequest(ctx context.Context, method, url string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("creating Zotero request: %w", err)
	}
	req.Header.Set("Zotero-API-Version", "3")
	req.Header.Set("User-Agent", c.userAgent)
	if c.apiKey != "" {
		req.Header.Set("Zotero-API-Key", c.apiKey)
	}
	return req, nil
}

// Items lists every record in the library, following start/limit
// pagination until a short page arrives. Records come back with Key and
// Version copied from the item envelope.
func (c *Client) Items(ctx context.Context) ([]types.Record, error) {
	return c.listAll(ctx, "/items")
}

// CollectionItems lists every record in one collection.
func (c *Client) CollectionItems(ctx context.Context, collectionKey string) ([]types.Record, error) {
	return c.listAll(ctx, "/collections/"+collectionKey+"/items")
}

func (c *Client) listAll(ctx context.Context, suffix string) ([]types.Record, error) {
	var records []types.Record
	for start := 0; ; start += pageSize {
		url := fmt.Sprintf("%s?format=json&limit=%d&start=%d", c.libraryURL(suffix), pageSize, start)
		page, err := c.listPage(ctx, url)
		if err != nil {
			return nil, err
		}
		records = append(records, page...)
		if len(page) < pageSize {
			return records, nil
		}
	}
}

func (c *Client) listPage(ctx context.Context, url string) ([]types.Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httputil.DoWithRetry(ctx, c.httpClient, req, 0)
	if err != nil {
		return nil, fmt.Errorf("Zotero API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Zotero API returned HTTP %d", resp.StatusCode)
	}

	var page []item
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("parsing Zotero response: %w", err)
	}

	records := make([]types.Record, 0, len(page))
	for _, it := range page {
		rec := it.Data
		rec.Key = it.Key
		rec.Version = it.Version
		records = append(records, rec)
	}
	return records, nil
}

// File downloads the content of an attachment item.
func (c *Client) File(ctx context.Context, attachmentKey string) ([]byte, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.libraryURL("/items/"+attachmentKey+"/file"), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading attachment %s: %w", attachmentKey, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("attachment download returned HTTP %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading attachment %s: %w", attachmentKey, err)
	}
	return data, nil
}

// UpdateAbstract writes a new abstract to one item. The request patches
// only the abstract field, leaving every other field untouched, and sends
// If-Unmodified-Since-Version so the server rejects the write with
// ErrVersionConflict if the item changed since version was read.
func (c *Client) UpdateAbstract(ctx context.Context, key string, version int, abstract string) error {
	body, err := json.Marshal(map[string]string{"abstractNote": abstract})
	if err != nil {
		return fmt.Errorf("encoding update: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPatch, c.libraryURL("/items/"+key), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("If-Unmodified-Since-Version", strconv.Itoa(version))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("Zotero update request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent, http.StatusOK:
		return nil
	case http.StatusPreconditionFailed:
		return fmt.Errorf("updating item %s: %w", key, ErrVersionConflict)
	default:
		return fmt.Errorf("Zotero update returned HTTP %d", resp.StatusCode)
	}
}

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "abstract-engine/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// ZoteroConfig holds credentials and scope for the Zotero library.
type ZoteroConfig struct {
	HTTPConfig `yaml:",inline"`

	// LibraryID is the numeric user or group library identifier.
	LibraryID string `json:"library_id" yaml:"library_id"`

	// LibraryType is "users" or "groups" (default "users").
	LibraryType string `json:"library_type" yaml:"library_type"`

	// APIKey authenticates reads and writes against the library.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
}

// LookupConfig holds settings for the OpenAlex metadata lookup.
type LookupConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is the contact address sent to OpenAlex. Supplying one admits
	// the client to the polite pool and allows a shorter inter-request
	// pause; without one the client throttles to one request per second.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// RunConfig holds settings for one pipeline run.
type RunConfig struct {
	// LedgerPath is the hand-editable updates file. Its presence switches
	// the run into replay mode.
	LedgerPath string `json:"ledger_path" yaml:"ledger_path"`

	// HistoryPath is the SQLite database recording past run summaries.
	HistoryPath string `json:"history_path" yaml:"history_path"`

	// Collection restricts discovery to one collection key (fetch only).
	Collection string `json:"collection,omitempty" yaml:"collection,omitempty"`

	// Limit caps the number of records processed; zero means no cap.
	Limit int `json:"limit" yaml:"limit"`

	// Preview suppresses all library writes.
	Preview bool `json:"preview" yaml:"preview"`

	// Verbose echoes the run log to the console as well as the log file.
	Verbose bool `json:"verbose" yaml:"verbose"`
}

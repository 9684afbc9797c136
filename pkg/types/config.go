package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "taxa-harvester/0.1 (compatible; ResearchBot)").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// CollectionConfig holds settings for listing a journal topical collection.
type CollectionConfig struct {
	HTTPConfig `yaml:",inline"`

	// URL is the collection landing page
	// (e.g. "https://riojournal.com/topical_collection/280/").
	URL string `json:"url" yaml:"url"`

	// PageDelay is the pause between listing page requests (default 1s).
	PageDelay time.Duration `json:"page_delay" yaml:"page_delay"`

	// MaxPages caps pagination as a runaway guard (default 10).
	MaxPages int `json:"max_pages" yaml:"max_pages"`
}

// HarvestConfig holds settings for the per-publication extraction stage.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// FetchDelay is the pause between consecutive article fetches (default 1s).
	FetchDelay time.Duration `json:"fetch_delay" yaml:"fetch_delay"`

	// DataDir is the working directory (contains xml/, metadata/, index/).
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// ExclusionsFile is an optional YAML word list of capitalized tokens
	// that must never be treated as genus names. Merged over the built-in
	// list.
	ExclusionsFile string `json:"exclusions_file,omitempty" yaml:"exclusions_file,omitempty"`
}

// StoreConfig holds settings for the results database.
type StoreConfig struct {
	// DataDir is the working directory; the database lives at
	// DataDir/index/taxa.db.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// MaxResults is the default maximum number of query results (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

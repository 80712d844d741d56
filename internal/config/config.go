// Package config carries run configuration: source endpoints, request pacing,
// and the classifier keyword lists. Keywords are deliberately configuration
// rather than constants; the lexical classifier is a blunt heuristic and
// operators tune it.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML can carry values like "2s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Config struct {
	UserAgent    string `yaml:"user_agent"`
	BootstrapURL string `yaml:"bootstrap_url"`
	// CalendarURL takes year then month as verbs.
	CalendarURL string `yaml:"calendar_url"`
	RegistryURL string `yaml:"registry_url"`
	// FilingURL takes the 14-digit filing reference as its verb.
	FilingURL string `yaml:"filing_url"`

	FetchDelay   Duration `yaml:"fetch_delay"`
	FilingDelay  Duration `yaml:"filing_delay"`
	FetchTimeout Duration `yaml:"fetch_timeout"`

	MinListed int `yaml:"min_listed"`

	RightsKeywords  []string `yaml:"rights_keywords"`
	ListingKeywords []string `yaml:"listing_keywords"`
}

func Default() Config {
	return Config{
		UserAgent:    "ipofeed/1.0",
		BootstrapURL: "https://www.38.co.kr/html/fund/index.htm?o=k",
		CalendarURL:  "https://www.38.co.kr/html/fund/index.htm?o=k&year=%d&month=%d",
		RegistryURL:  "https://kind.krx.co.kr/corpgeneral/corpList.do?method=download",
		FilingURL:    "https://dart.fss.or.kr/dsaf001/main.do?rcpNo=%s",
		FetchDelay:   Duration(2 * time.Second),
		FilingDelay:  Duration(time.Second),
		FetchTimeout: Duration(15 * time.Second),
		MinListed:    500,
	}
}

// Load overlays an optional YAML file onto the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

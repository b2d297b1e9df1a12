package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// TestNewConfig pins the documented defaults.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default MaxPages is 20", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxPages != 20 {
			t.Errorf("expected MaxPages to be 20, got %d", cfg.MaxPages)
		}
	})

	t.Run("default Concurrency is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.Concurrency != 5 {
			t.Errorf("expected Concurrency to be 5, got %d", cfg.Concurrency)
		}
	})

	t.Run("default SoftCutoff is 80 percent", func(t *testing.T) {
		t.Parallel()
		if cfg.SoftCutoff != 0.8 {
			t.Errorf("expected SoftCutoff to be 0.8, got %v", cfg.SoftCutoff)
		}
	})

	t.Run("default CacheTTL is 10 minutes", func(t *testing.T) {
		t.Parallel()
		if cfg.CacheTTL != 10*time.Minute {
			t.Errorf("expected CacheTTL to be 10m, got %v", cfg.CacheTTL)
		}
	})

	t.Run("default MaxBodySize is 1,000,000 bytes", func(t *testing.T) {
		t.Parallel()
		if cfg.MaxBodySize != 1_000_000 {
			t.Errorf("expected MaxBodySize to be 1000000, got %d", cfg.MaxBodySize)
		}
	})

	t.Run("robots.txt is respected by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.RespectRobots {
			t.Error("expected RespectRobots to be true")
		}
	})
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"example.com"}
		return cfg
	}

	t.Run("valid config returns nil", func(t *testing.T) {
		t.Parallel()
		if err := validConfig().Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})

	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"no targets", func(c *Config) { c.Targets = nil }, ErrNoTargets},
		{"zero max pages", func(c *Config) { c.MaxPages = 0 }, ErrInvalidMaxPages},
		{"zero concurrency", func(c *Config) { c.Concurrency = 0 }, ErrInvalidConcurrency},
		{"negative budget", func(c *Config) { c.Budget = -time.Second }, ErrInvalidBudget},
		{"zero page timeout", func(c *Config) { c.PageTimeout = 0 }, ErrInvalidPageTimeout},
		{"zero fallback timeout", func(c *Config) { c.FallbackTimeout = 0 }, ErrInvalidFallbackTimeout},
		{"soft cutoff above one", func(c *Config) { c.SoftCutoff = 1.5 }, ErrInvalidSoftCutoff},
		{"negative rate", func(c *Config) { c.RequestsPerSecond = -1 }, ErrInvalidRate},
		{"zero batch size", func(c *Config) { c.BatchSize = 0 }, ErrInvalidBatchSize},
		{"zero rounds", func(c *Config) { c.Rounds = 0 }, ErrInvalidRounds},
		{"negative interval", func(c *Config) { c.Interval = -time.Second }, ErrInvalidInterval},
		{"zero cache ttl", func(c *Config) { c.CacheTTL = 0 }, ErrInvalidCacheTTL},
		{"zero max body size", func(c *Config) { c.MaxBodySize = 0 }, ErrInvalidMaxBodySize},
		{"json and csv together", func(c *Config) { c.JSONReport, c.CSVReport = true, true }, ErrConflictingReportFormats},
		{"markdown and json together", func(c *Config) { c.JSONReport, c.MarkdownReport = true, true }, ErrConflictingReportFormats},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := validConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestScoringPolicy(t *testing.T) {
	t.Parallel()

	t.Run("default cutoff", func(t *testing.T) {
		t.Parallel()
		if got := DefaultScoringPolicy().Cutoff(); got != DefaultAcceptanceCutoff {
			t.Errorf("expected %d, got %d", DefaultAcceptanceCutoff, got)
		}
	})

	t.Run("partial policy is completed with defaults", func(t *testing.T) {
		t.Parallel()
		zero := 0
		p := ScoringPolicy{KeywordBonus: 50, AcceptanceCutoff: &zero}.withDefaults()
		if p.KeywordBonus != 50 {
			t.Errorf("expected KeywordBonus 50, got %d", p.KeywordBonus)
		}
		if p.QueryPenalty != DefaultQueryPenalty {
			t.Errorf("expected QueryPenalty %d, got %d", DefaultQueryPenalty, p.QueryPenalty)
		}
		if p.Cutoff() != 0 {
			t.Errorf("expected explicit cutoff 0, got %d", p.Cutoff())
		}
		if len(p.Keywords) != len(DefaultKeywords()) {
			t.Errorf("expected default keywords, got %v", p.Keywords)
		}
	})

	t.Run("config without file uses defaults", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if cfg.Policy().ContentDepthMax != DefaultContentDepthMax {
			t.Errorf("expected default ContentDepthMax, got %d", cfg.Policy().ContentDepthMax)
		}
	})
}

func TestGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			Headers:  map[string]string{"Accept-Language": "en"},
			MaxPages: 10,
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				Cookie:         "session=abc",
				Headers:        map[string]string{"X-Test": "1"},
				IgnorePatterns: []string{"/admin/*"},
			},
		},
	}

	t.Run("site overrides merge over defaults", func(t *testing.T) {
		t.Parallel()
		sc := cf.GetSiteConfig("example.com")
		if sc.Cookie != "session=abc" {
			t.Errorf("expected cookie, got %q", sc.Cookie)
		}
		if sc.MaxPages != 10 {
			t.Errorf("expected default MaxPages 10, got %d", sc.MaxPages)
		}
		if sc.Headers["Accept-Language"] != "en" || sc.Headers["X-Test"] != "1" {
			t.Errorf("expected merged headers, got %v", sc.Headers)
		}
	})

	t.Run("www prefix resolves to bare host entry", func(t *testing.T) {
		t.Parallel()
		sc := cf.GetSiteConfig("www.example.com")
		if len(sc.IgnorePatterns) != 1 {
			t.Errorf("expected ignore patterns from example.com, got %v", sc.IgnorePatterns)
		}
	})

	t.Run("merging does not mutate defaults", func(t *testing.T) {
		t.Parallel()
		_ = cf.GetSiteConfig("example.com")
		if _, ok := cf.Defaults.Headers["X-Test"]; ok {
			t.Error("defaults headers were mutated")
		}
	})

	t.Run("unknown host gets defaults", func(t *testing.T) {
		t.Parallel()
		sc := cf.GetSiteConfig("other.org")
		if sc.Cookie != "" || sc.MaxPages != 10 {
			t.Errorf("expected defaults, got %+v", sc)
		}
	})
}

func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file returns ErrConfigNotFound", func(t *testing.T) {
		t.Parallel()
		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("parses sites and scoring", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := `
defaults:
  max_pages: 15
sites:
  example.com:
    cookie: "a=b"
scoring:
  keywords: [donate, contact]
  acceptance_cutoff: -30
`
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.MaxPages != 15 {
			t.Errorf("expected max_pages 15, got %d", cf.Defaults.MaxPages)
		}
		if cf.Sites["example.com"].Cookie != "a=b" {
			t.Errorf("expected cookie a=b, got %q", cf.Sites["example.com"].Cookie)
		}
		cfg := NewConfig()
		cfg.File = cf
		p := cfg.Policy()
		if p.Cutoff() != -30 {
			t.Errorf("expected cutoff -30, got %d", p.Cutoff())
		}
		if len(p.Keywords) != 2 {
			t.Errorf("expected 2 keywords, got %v", p.Keywords)
		}
	})

	t.Run("invalid yaml returns error", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		if err := os.WriteFile(path, []byte("sites: [unclosed"), 0o600); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("explicit existing path", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "c.yaml")
		if err := os.WriteFile(path, []byte("{}"), 0o600); err != nil {
			t.Fatal(err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("expected %s, got %s", path, got)
		}
	})

	t.Run("explicit missing path", func(t *testing.T) {
		t.Parallel()
		if got := FindConfigFile(filepath.Join(t.TempDir(), "missing.yaml")); got != "" {
			t.Errorf("expected empty, got %s", got)
		}
	})
}

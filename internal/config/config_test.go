package config

import "testing"

func TestDefaultConfigValidates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default configuration invalid: %v", err)
	}
	if cfg.Catalog.DocsDir == "" {
		t.Error("Expected a default docs directory")
	}
}

func TestDocsDirFromEnv(t *testing.T) {
	t.Setenv("DOCS_DIR", "/tmp/pages")

	cfg := DefaultConfig()
	if cfg.Catalog.DocsDir != "/tmp/pages" {
		t.Errorf("DocsDir = %q, want /tmp/pages", cfg.Catalog.DocsDir)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty listen addr", func(c *Config) { c.Server.ListenAddr = "" }},
		{"empty catalog path", func(c *Config) { c.Catalog.Path = "" }},
		{"compression too low", func(c *Config) { c.Catalog.CompressionLevel = 0 }},
		{"compression too high", func(c *Config) { c.Catalog.CompressionLevel = 5 }},
		{"empty docs dir", func(c *Config) { c.Catalog.DocsDir = "" }},
		{"zero cache capacity", func(c *Config) { c.Cache.Capacity = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Expected validation error")
			}
		})
	}
}

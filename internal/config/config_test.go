package config

import (
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BOARDWALK_DATA_DIR", "")
	t.Setenv("BOARDWALK_OP_TIMEOUT", "")
	t.Setenv("BOARDWALK_REMOTE_PROBE", "")
	t.Setenv("GITHUB_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.OperationTimeout != 20*time.Second {
		t.Errorf("OperationTimeout = %v", cfg.OperationTimeout)
	}
	if cfg.ProbeTimeout != 10*time.Second {
		t.Errorf("ProbeTimeout = %v", cfg.ProbeTimeout)
	}
	if cfg.RemoteProbe {
		t.Error("RemoteProbe should default to false")
	}
	if filepath.Base(cfg.DataDir) != ".boardwalk" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.GitHubAPIURL != "https://api.github.com" {
		t.Errorf("GitHubAPIURL = %q", cfg.GitHubAPIURL)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("BOARDWALK_DATA_DIR", "/tmp/boardwalk-test")
	t.Setenv("BOARDWALK_OP_TIMEOUT", "5s")
	t.Setenv("BOARDWALK_REMOTE_PROBE", "true")
	t.Setenv("BOARDWALK_GITHUB_TOKEN", "tok-explicit")
	t.Setenv("GITHUB_TOKEN", "tok-ambient")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DataDir != "/tmp/boardwalk-test" {
		t.Errorf("DataDir = %q", cfg.DataDir)
	}
	if cfg.OperationTimeout != 5*time.Second {
		t.Errorf("OperationTimeout = %v", cfg.OperationTimeout)
	}
	if !cfg.RemoteProbe {
		t.Error("RemoteProbe = false")
	}
	if cfg.GitHubToken != "tok-explicit" {
		t.Errorf("GitHubToken = %q, explicit var should win", cfg.GitHubToken)
	}
}

func TestLoad_TokenFallback(t *testing.T) {
	t.Setenv("BOARDWALK_GITHUB_TOKEN", "")
	t.Setenv("GITHUB_TOKEN", "tok-ambient")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GitHubToken != "tok-ambient" {
		t.Errorf("GitHubToken = %q, want ambient fallback", cfg.GitHubToken)
	}
}

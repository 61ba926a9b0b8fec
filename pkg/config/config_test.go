package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	// Check defaults
	if cfg.Env != "development" {
		t.Errorf("Expected Env to be development, got %s", cfg.Env)
	}

	if cfg.Rollover.Window != 5 {
		t.Errorf("Expected Rollover.Window to be 5, got %d", cfg.Rollover.Window)
	}

	if cfg.Rollover.OrderPolicy != OrderReject {
		t.Errorf("Expected OrderPolicy to be reject, got %s", cfg.Rollover.OrderPolicy)
	}

	if cfg.Rollover.OverlapPolicy != OverlapClamp {
		t.Errorf("Expected OverlapPolicy to be clamp, got %s", cfg.Rollover.OverlapPolicy)
	}
}

func TestLoadWithCustomValues(t *testing.T) {
	t.Setenv("ENV", "production")
	t.Setenv("ROLLOVER_WINDOW", "3")
	t.Setenv("ROLLOVER_ORDER_POLICY", "sort")
	t.Setenv("ROLLOVER_OVERLAP_POLICY", "last-write")
	t.Setenv("CHAIN_FILE", "chains/cl.yaml")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Env != "production" {
		t.Errorf("Expected Env to be production, got %s", cfg.Env)
	}

	if cfg.Rollover.Window != 3 {
		t.Errorf("Expected Rollover.Window to be 3, got %d", cfg.Rollover.Window)
	}

	if cfg.Rollover.OrderPolicy != OrderSort {
		t.Errorf("Expected OrderPolicy to be sort, got %s", cfg.Rollover.OrderPolicy)
	}

	if cfg.Rollover.OverlapPolicy != OverlapLastWrite {
		t.Errorf("Expected OverlapPolicy to be last-write, got %s", cfg.Rollover.OverlapPolicy)
	}

	if cfg.ChainFile != "chains/cl.yaml" {
		t.Errorf("Expected ChainFile to be chains/cl.yaml, got %s", cfg.ChainFile)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("Expected LogLevel to be debug, got %s", cfg.LogLevel)
	}
}

func TestValidateInvalidEnv(t *testing.T) {
	t.Setenv("ENV", "invalid")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ENV is invalid, got nil")
	}
}

func TestValidateNegativeWindow(t *testing.T) {
	t.Setenv("ROLLOVER_WINDOW", "-1")

	_, err := Load()
	if err == nil {
		t.Error("Expected error when ROLLOVER_WINDOW is negative, got nil")
	}
}

func TestValidateUnknownPolicies(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"ROLLOVER_ORDER_POLICY", "shuffle"},
		{"ROLLOVER_OVERLAP_POLICY", "merge"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("Expected error for %s=%s, got nil", tt.key, tt.value)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	// godotenv.Load does not override variables that are already set
	os.Unsetenv("ROLLOVER_WINDOW")
	t.Cleanup(func() { os.Unsetenv("ROLLOVER_WINDOW") })

	path := filepath.Join(t.TempDir(), "test.env")
	if err := os.WriteFile(path, []byte("ROLLOVER_WINDOW=8\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() failed: %v", err)
	}

	if cfg.Rollover.Window != 8 {
		t.Errorf("Expected Rollover.Window to be 8, got %d", cfg.Rollover.Window)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.env"))
	if err == nil {
		t.Error("Expected error for missing env file, got nil")
	}
}

func TestGetEnvAsInt(t *testing.T) {
	t.Setenv("TEST_INT", "100")

	value := getEnvAsInt("TEST_INT", 50)
	if value != 100 {
		t.Errorf("Expected value to be 100, got %d", value)
	}

	t.Setenv("TEST_INT", "abc")
	if value := getEnvAsInt("TEST_INT", 50); value != 50 {
		t.Errorf("Expected fallback 50, got %d", value)
	}
}

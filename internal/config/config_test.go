package config

import (
	"os"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	_ = os.Unsetenv("GOQUANT_CONFIG")
	_ = os.Unsetenv("GOQUANT_LOG_LEVEL")
	_ = os.Unsetenv("GOQUANT_SLIPPAGE_MODEL")

	c := Load()
	if c.Logging.Level != "info" {
		t.Fatalf("expected default log level info, got %s", c.Logging.Level)
	}
	if c.Cost.SlippageModel != "analytical" {
		t.Fatalf("expected default slippage model analytical, got %s", c.Cost.SlippageModel)
	}
	if c.Cost.ImpactK != 0.0001 {
		t.Fatalf("expected default impact k 0.0001, got %v", c.Cost.ImpactK)
	}
	if c.Cost.DefaultFeeTier != 0.001 {
		t.Fatalf("expected default fee tier 0.001, got %v", c.Cost.DefaultFeeTier)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("GOQUANT_LOG_LEVEL", "debug")
	t.Setenv("GOQUANT_SLIPPAGE_MODEL", "regression")
	t.Setenv("GOQUANT_IMPACT_ETA", "0.02")
	c := Load()
	if c.Logging.Level != "debug" {
		t.Fatalf("env override failed for log level, got %s", c.Logging.Level)
	}
	if c.Cost.SlippageModel != "regression" {
		t.Fatalf("env override failed for slippage model, got %s", c.Cost.SlippageModel)
	}
	if c.Cost.ImpactEta != 0.02 {
		t.Fatalf("env override failed for impact eta, got %v", c.Cost.ImpactEta)
	}
}

func TestYAMLFileOverride(t *testing.T) {
	f, err := os.CreateTemp(t.TempDir(), "cfg*.yaml")
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("cost:\n  impact_model: almgren\n  impact_gamma: 0.01\n")
	_ = f.Close()
	t.Setenv("GOQUANT_CONFIG", f.Name())
	c := Load()
	if c.Cost.ImpactModel != "almgren" {
		t.Fatalf("yaml override failed for impact model, got %s", c.Cost.ImpactModel)
	}
	if c.Cost.ImpactGamma != 0.01 {
		t.Fatalf("yaml override failed for impact gamma, got %v", c.Cost.ImpactGamma)
	}
}

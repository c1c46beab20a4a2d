package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadAppConfigDefaults(t *testing.T) {
	cfg, err := LoadAppConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HoldTTL != 10*time.Minute {
		t.Fatalf("expected 10m hold ttl, got %s", cfg.HoldTTL)
	}
	if cfg.ServiceFeeRate != 0.02 || cfg.TaxRate != 0.05 {
		t.Fatalf("unexpected rates: fee=%v tax=%v", cfg.ServiceFeeRate, cfg.TaxRate)
	}
	if cfg.Gateway != GatewaySandbox {
		t.Fatalf("expected sandbox gateway, got %q", cfg.Gateway)
	}
}

func TestLoadAppConfigRejectsRateOutOfRange(t *testing.T) {
	t.Setenv("TAX_RATE", "1.5")
	_, err := LoadAppConfig()
	if err == nil || !strings.Contains(err.Error(), "TAX_RATE") {
		t.Fatalf("expected TAX_RATE error, got %v", err)
	}
}

func TestLoadAppConfigRejectsNonPositiveSweepInterval(t *testing.T) {
	for _, v := range []string{"0s", "-1m"} {
		t.Setenv("SWEEP_INTERVAL", v)
		_, err := LoadAppConfig()
		if err == nil || !strings.Contains(err.Error(), "SWEEP_INTERVAL") {
			t.Fatalf("SWEEP_INTERVAL=%s: expected error, got %v", v, err)
		}
	}
}

func TestLoadAppConfigOmiseNeedsKeys(t *testing.T) {
	t.Setenv("GATEWAY", GatewayOmise)
	if _, err := LoadAppConfig(); err == nil {
		t.Fatal("expected error without omise keys")
	}
	t.Setenv("OMISE_PUBLIC_KEY", "pkey_test_1")
	t.Setenv("OMISE_SECRET_KEY", "skey_test_1")
	if _, err := LoadAppConfig(); err != nil {
		t.Fatalf("load: %v", err)
	}
}

func TestLoadAppConfigParseError(t *testing.T) {
	t.Setenv("HOLD_TTL", "ten minutes")
	_, err := LoadAppConfig()
	if err == nil || !strings.Contains(err.Error(), "parse app env:") {
		t.Fatalf("expected parse error, got %v", err)
	}
}

func TestLoadDBConfig(t *testing.T) {
	t.Setenv("DB_DRIVER", DriverSQLite)
	t.Setenv("DB_SQLITE_PATH", "/tmp/booking.db")
	cfg, err := LoadDBConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Driver != DriverSQLite || cfg.SQLitePath != "/tmp/booking.db" {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	t.Setenv("DB_DRIVER", "mysql")
	if _, err := LoadDBConfig(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

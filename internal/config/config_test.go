package config

import (
	"encoding/base64"
	"testing"
)

func withEnv(t *testing.T, kv map[string]string, fn func()) {
	t.Helper()
	for k, v := range kv {
		t.Setenv(k, v)
	}
	fn()
}

func TestLoadRequiresProgramID(t *testing.T) {
	withEnv(t, map[string]string{"HMAC_SECRET": "secret"}, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected error when PROGRAM_ID is missing")
		}
	})
}

func TestLoadRequiresHMACSecret(t *testing.T) {
	withEnv(t, map[string]string{"PROGRAM_ID": "11111111111111111111111111111111111111111"}, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected error when HMAC_SECRET is missing")
		}
	})
}

func TestLoadAppliesDefaults(t *testing.T) {
	withEnv(t, map[string]string{
		"PROGRAM_ID":  "11111111111111111111111111111111111111111",
		"HMAC_SECRET": "secret",
	}, func() {
		cfg, err := Load()
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if cfg.RPCURL != "http://127.0.0.1:8899" {
			t.Errorf("unexpected default RPC_URL: %s", cfg.RPCURL)
		}
		if cfg.MaxRetries != 5 {
			t.Errorf("unexpected default MAX_RETRIES: %d", cfg.MaxRetries)
		}
		if cfg.FulfillmentConcurrency != 4 {
			t.Errorf("unexpected default FULFILLMENT_CONCURRENCY: %d", cfg.FulfillmentConcurrency)
		}
		if cfg.JobStoreTTL.Hours() != 24 {
			t.Errorf("unexpected default JOB_STORE_TTL_HOURS: %v", cfg.JobStoreTTL)
		}
	})
}

func TestDecodeSecretPrefersBase64(t *testing.T) {
	raw := base64.StdEncoding.EncodeToString([]byte("hello"))
	decoded, err := decodeSecret(raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(decoded) != "hello" {
		t.Errorf("expected decoded base64, got %q", decoded)
	}
}

func TestDecodeSecretFallsBackToRawBytes(t *testing.T) {
	decoded, err := decodeSecret("not-base64!!!")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if string(decoded) != "not-base64!!!" {
		t.Errorf("expected raw fallback, got %q", decoded)
	}
}

func TestLoadRejectsNonIntegerMaxRetries(t *testing.T) {
	withEnv(t, map[string]string{
		"PROGRAM_ID":  "11111111111111111111111111111111111111111",
		"HMAC_SECRET": "secret",
		"MAX_RETRIES": "not-a-number",
	}, func() {
		if _, err := Load(); err == nil {
			t.Fatal("expected error for non-integer MAX_RETRIES")
		}
	})
}

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Mongo: MongoConfig{URI: "mongodb://localhost:27017"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_OK(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = 0

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_MissingMongoURI(t *testing.T) {
	cfg := validConfig()
	cfg.Mongo.URI = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing mongo uri")
	}
	if err.Error() != "mongo.uri is required" {
		t.Errorf("unexpected error message: %q", err.Error())
	}
}

func TestValidate_NegativeWindow(t *testing.T) {
	cfg := validConfig()
	cfg.RateLimit.WindowSec = -1

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for negative rate limit window")
	}
}

func TestValidate_DimensionMismatch(t *testing.T) {
	cfg := validConfig()
	cfg.Embedding.Dimensions = 768

	err := cfg.Validate()
	if err == nil || !strings.Contains(err.Error(), "milvus.dimensions") {
		t.Fatalf("expected dimension mismatch error, got %v", err)
	}
}

func TestValidate_ThresholdAboveOne(t *testing.T) {
	cfg := validConfig()
	cfg.Recommendation.Threshold = 1.5

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for threshold above 1")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.HTTP.ShutdownSec)
	}
	if cfg.Mongo.Database != "opendata" || cfg.Mongo.ReadinessTimeout != 10 {
		t.Errorf("unexpected mongo defaults: %+v", cfg.Mongo)
	}
	if cfg.RateLimit.Requests != 60 || cfg.RateLimit.WindowSec != 60 {
		t.Errorf("expected 60 requests per 60s, got %+v", cfg.RateLimit)
	}
	if cfg.Snapshot.Size != 1000 || cfg.Snapshot.MaxPageSize != 100 || cfg.Snapshot.RebuildIntervalSec != 0 {
		t.Errorf("unexpected snapshot defaults: %+v", cfg.Snapshot)
	}
	if cfg.Recommendation.TopK != 4 || cfg.Recommendation.Threshold != 0.5 {
		t.Errorf("unexpected recommendation defaults: %+v", cfg.Recommendation)
	}
	if cfg.Recommendation.CacheTTLHours != 168 || cfg.Recommendation.DetailTimeoutMs != 5000 {
		t.Errorf("unexpected recommendation timing defaults: %+v", cfg.Recommendation)
	}
	if cfg.Embedding.Dimensions != cfg.Milvus.Dimensions {
		t.Errorf("embedding dimensions %d should follow milvus %d", cfg.Embedding.Dimensions, cfg.Milvus.Dimensions)
	}
	if cfg.Redis.Enabled() {
		t.Error("redis should be disabled without addrs")
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Mongo:     MongoConfig{Database: "odm", ReadinessTimeout: 15},
		RateLimit: RateLimitConfig{Requests: 10, WindowSec: 1},
		Snapshot:  SnapshotConfig{Size: 500, RebuildIntervalSec: 3600},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.ReadTimeoutSec != 30 || cfg.HTTP.WriteTimeoutSec != 60 {
		t.Errorf("unexpected http: %+v", cfg.HTTP)
	}
	if cfg.Mongo.Database != "odm" {
		t.Errorf("expected Database=odm, got %q", cfg.Mongo.Database)
	}
	if cfg.RateLimit.Requests != 10 || cfg.RateLimit.WindowSec != 1 {
		t.Errorf("unexpected rate limit: %+v", cfg.RateLimit)
	}
	if cfg.Snapshot.Size != 500 || cfg.Snapshot.RebuildIntervalSec != 3600 {
		t.Errorf("unexpected snapshot: %+v", cfg.Snapshot)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("ODM_TEST_URI", "mongodb://db:27017")

	got := string(expandEnvVars([]byte("uri: ${ODM_TEST_URI}\nkey: ${ODM_TEST_MISSING:-fallback}\nempty: ${ODM_TEST_MISSING}")))
	want := "uri: mongodb://db:27017\nkey: fallback\nempty: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad_FromConfigDir(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "http:\n  port: 9090\nmongo:\n  uri: ${ODM_TEST_MONGO:-mongodb://localhost:27017}\nredis:\n  addrs: [\"localhost:6379\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.HTTP.Port != 9090 || cfg.Mongo.URI != "mongodb://localhost:27017" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if !cfg.Redis.Enabled() {
		t.Error("expected redis enabled")
	}
}

func TestGetEnv_Default(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
}

func TestLoad_UnsetListEntriesDropped(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "config"), 0o755); err != nil {
		t.Fatal(err)
	}
	yaml := "mongo:\n  uri: mongodb://localhost:27017\nredis:\n  addrs: [\"${ODM_TEST_UNSET_REDIS}\"]\nauth:\n  admin_api_keys: [\"${ODM_TEST_UNSET_KEY}\", \"k1\"]\n"
	if err := os.WriteFile(filepath.Join(dir, "config", "unittest.yaml"), []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Chdir(dir)
	t.Setenv("ODM_TEST_UNSET_REDIS", "")
	t.Setenv("ODM_TEST_UNSET_KEY", "")

	cfg, err := Load("unittest")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Redis.Enabled() {
		t.Errorf("expected redis disabled, addrs = %v", cfg.Redis.Addrs)
	}
	if len(cfg.Auth.AdminAPIKeys) != 1 || cfg.Auth.AdminAPIKeys[0] != "k1" {
		t.Errorf("AdminAPIKeys = %v, want [k1]", cfg.Auth.AdminAPIKeys)
	}
}

package config

import (
	"errors"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
)

const testKeys = "1:0123456789abcdef0123456789abcdef"

func TestLoadRequiresKeys(t *testing.T) {
	// no VID_KEYS in the environment: validation must fail
	_, err := Load()
	if err == nil {
		t.Fatal("expected error without VID_KEYS")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("VID_KEYS", testKeys)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := DefaultAppConfig
	want.Keys = testKeys
	assert.EqualValues(t, want, *cfg)
}

func TestLoadEnvOverlay(t *testing.T) {
	t.Setenv("VID_KEYS", testKeys)
	t.Setenv("VID_ADDR", "127.0.0.1:9090")
	t.Setenv("VID_DATA_DIR", "/var/lib/vid")
	t.Setenv("VID_NODE", "node-a")
	t.Setenv("VID_AUDIT_RETENTION", "72h")
	t.Setenv("VID_JANITOR_INTERVAL", "30s")
	t.Setenv("VID_METRICS_FLUSH", "2s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	assert.Equal(t, "127.0.0.1:9090", cfg.Addr)
	assert.Equal(t, "/var/lib/vid", cfg.DataDir)
	assert.Equal(t, "node-a", cfg.Node)
	assert.Equal(t, 72*time.Hour, cfg.AuditRetention)
	assert.Equal(t, 30*time.Second, cfg.JanitorInterval)
	assert.Equal(t, 2*time.Second, cfg.MetricsFlush)
}

func TestLoadRejectsCurrentKeyMissing(t *testing.T) {
	t.Setenv("VID_KEYS", testKeys)
	t.Setenv("VID_CURRENT_KEY", "2")
	_, err := Load()
	if err == nil {
		t.Fatal("expected error when current_key absent from keys")
	}
}

func TestValidPaths(t *testing.T) {
	t.Setenv("VID_KEYS", testKeys)
	valid := []string{
		"data",
		"/var/lib/vid",
		"./data",
		"relative/path/to/data",
		"nested/dir/structure",
	}
	for _, p := range valid {
		t.Setenv("VID_DATA_DIR", p)
		cfg, err := Load()
		if err != nil {
			t.Errorf("expected valid path %q, got error: %v", p, err)
			continue
		}
		if cfg.DataDir != p {
			t.Errorf("expected DataDir %q, got %q", p, cfg.DataDir)
		}
	}
}

func TestInvalidPaths(t *testing.T) {
	t.Setenv("VID_KEYS", testKeys)
	invalid := []string{
		".",
		"/",
		"//",
		"../data",
		"data/..",
		"data/../../../etc",
	}
	for _, p := range invalid {
		t.Setenv("VID_DATA_DIR", p)
		if _, err := Load(); err == nil {
			t.Errorf("expected error for invalid path %q, got nil", p)
		}
	}
}

func TestValidIPPort(t *testing.T) {
	type sample struct {
		Addr string `validate:"ip_port"`
	}

	v := validator.New()
	if err := v.RegisterValidation("ip_port", validIPPort); err != nil {
		t.Fatalf("register validation: %v", err)
	}

	tests := []struct {
		name  string
		addr  string
		valid bool
	}{
		{name: "empty", addr: "", valid: false},
		{name: "missing_port", addr: "127.0.0.1", valid: false},
		{name: "just_colon_port", addr: ":8080", valid: true},
		{name: "loopback_ipv4", addr: "127.0.0.1:8080", valid: true},
		{name: "ipv6_loopback", addr: "[::1]:8080", valid: true},
		{name: "ipv6_any", addr: "[::]:443", valid: true},
		{name: "unbracketed_ipv6", addr: "::1:8080", valid: false},
		{name: "hostname_not_ip", addr: "localhost:8080", valid: false},
		{name: "non_numeric_port", addr: "127.0.0.1:http", valid: false},
		{name: "port_zero", addr: "127.0.0.1:0", valid: false},
		{name: "port_max_valid", addr: "127.0.0.1:65535", valid: true},
		{name: "port_overflow", addr: "127.0.0.1:65536", valid: false},
		{name: "trailing_space", addr: "127.0.0.1:8080 ", valid: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := sample{Addr: tc.addr}
			err := v.Struct(&s)
			if tc.valid && err != nil {
				t.Fatalf("expected valid, got error: %v", err)
			}
			if !tc.valid && err == nil {
				t.Fatalf("expected error, got nil")
			}
		})
	}
}

func TestParseKeys(t *testing.T) {
	tests := []struct {
		name    string
		keys    string
		wantErr bool
		wantLen int
	}{
		{name: "single", keys: testKeys, wantLen: 1},
		{name: "multiple", keys: "1:0123456789abcdef,2:fedcba9876543210", wantLen: 2},
		{name: "secret_with_colon", keys: "1:abc:def:0123456789", wantLen: 1},
		{name: "spaces", keys: " 1:0123456789abcdef , 2:fedcba9876543210 ", wantLen: 2},
		{name: "empty", keys: "", wantErr: true},
		{name: "no_version", keys: "0123456789abcdef", wantErr: true},
		{name: "version_overflow", keys: "256:0123456789abcdef", wantErr: true},
		{name: "short_secret", keys: "1:short", wantErr: true},
		{name: "duplicate_version", keys: "1:0123456789abcdef,1:fedcba9876543210", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Config{Keys: tc.keys}
			m, err := c.ParseKeys()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Len(t, m, tc.wantLen)
		})
	}
}

func TestNodeSpec(t *testing.T) {
	spec := func(s string) (any, error) { c := Config{Node: s}; return c.NodeSpec() }

	v, err := spec("")
	assert.NoError(t, err)
	assert.Nil(t, v)

	v, err = spec("42")
	assert.NoError(t, err)
	assert.Equal(t, 42, v)

	v, err = spec("node-a")
	assert.NoError(t, err)
	assert.Equal(t, "node-a", v)

	_, err = spec("70000")
	assert.Error(t, err)

	_, err = spec("-1")
	assert.Error(t, err)
}

func TestSQLiteDSN(t *testing.T) {
	params := "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_synchronous=FULL"
	tests := []struct {
		name    string
		dataDir string
		want    string
	}{
		{name: "relative", dataDir: "data", want: "file:data/vid.db" + params},
		{name: "trailing_slash", dataDir: "data/", want: "file:data/vid.db" + params},
		{name: "absolute", dataDir: "/var/lib/vid", want: "file:/var/lib/vid/vid.db" + params},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := Config{DataDir: tc.dataDir}
			assert.Equal(t, tc.want, c.SQLiteDSN())
		})
	}
}

func TestLoadDefaultError(t *testing.T) {
	t.Setenv("VID_KEYS", testKeys)
	orig := defaultLoader
	t.Cleanup(func() { defaultLoader = orig })
	defaultLoader = func(k *koanf.Koanf) error {
		assert.NotNil(t, k)
		return assert.AnError
	}
	_, err := Load()
	if !errors.Is(err, assert.AnError) {
		t.Fatalf("expected assert.AnError, got: %v", err)
	}
}

func TestLoadEnvError(t *testing.T) {
	t.Setenv("VID_KEYS", testKeys)
	orig := envLoader
	t.Cleanup(func() { envLoader = orig })
	envLoader = func(k *koanf.Koanf) error {
		assert.NotNil(t, k)
		return assert.AnError
	}
	_, err := Load()
	if !errors.Is(err, assert.AnError) {
		t.Fatalf("expected assert.AnError, got: %v", err)
	}
}

func TestRegisterValidationFails(t *testing.T) {
	t.Setenv("VID_KEYS", testKeys)
	orig := registerValidators
	t.Cleanup(func() { registerValidators = orig })
	registerValidators = func(v *validator.Validate) error {
		assert.NotNil(t, v)
		return assert.AnError
	}
	_, err := Load()
	if !errors.Is(err, assert.AnError) {
		t.Fatalf("expected assert.AnError, got: %v", err)
	}
}

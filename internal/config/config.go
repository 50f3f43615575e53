// Package config provides environment-driven configuration for the vid
// service. Defaults are overlaid with VID_* environment variables via koanf,
// then validated (including custom cross-field checks) before anything else
// starts.
package config

import (
	"fmt"
	"net"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-viper/mapstructure/v2"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Config holds the merged runtime configuration. Precedence (lowest to
// highest): defaults, then VID_* environment variables.
type Config struct {
	Addr            string        `koanf:"addr" validate:"required,ip_port"`
	DataDir         string        `koanf:"data_dir" validate:"required,safe_dir"`
	Keys            string        `koanf:"keys" validate:"required,keyspec"`
	CurrentKey      int           `koanf:"current_key" validate:"gte=0,lte=255"`
	Node            string        `koanf:"node"`
	AuditRetention  time.Duration `koanf:"audit_retention" validate:"required"`
	JanitorInterval time.Duration `koanf:"janitor_interval" validate:"required"`
	MetricsFlush    time.Duration `koanf:"metrics_flush" validate:"required"`
	MetricsToken    string        `koanf:"metrics_token"`
}

// DefaultAppConfig is the baseline configuration. Keys has no safe default
// and must always be supplied via VID_KEYS.
var DefaultAppConfig = Config{
	Addr:            ":8080",
	DataDir:         "./data",
	CurrentKey:      1,
	AuditRetention:  30 * 24 * time.Hour,
	JanitorInterval: time.Minute,
	MetricsFlush:    5 * time.Second,
}

// Loader seams, swappable in tests.
var (
	defaultLoader = func(k *koanf.Koanf) error {
		return k.Load(structs.Provider(DefaultAppConfig, "koanf"), nil)
	}
	envLoader = func(k *koanf.Koanf) error {
		return k.Load(env.Provider(".", env.Opt{
			Prefix: "VID_",
			TransformFunc: func(key, value string) (string, any) {
				return strings.ToLower(strings.TrimPrefix(key, "VID_")), value
			},
		}), nil)
	}
	registerValidators = func(v *validator.Validate) error {
		if err := v.RegisterValidation("ip_port", validIPPort); err != nil {
			return err
		}
		if err := v.RegisterValidation("safe_dir", validSafeDir); err != nil {
			return err
		}
		return v.RegisterValidation("keyspec", validKeySpec)
	}
)

// Load merges defaults and environment, validates, and returns the resolved
// configuration. All configuration problems surface here, at startup.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := defaultLoader(k); err != nil {
		return nil, fmt.Errorf("defaults: %w", err)
	}
	if err := envLoader(k); err != nil {
		return nil, fmt.Errorf("environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unmarshal: %w", err)
	}

	v := validator.New()
	if err := registerValidators(v); err != nil {
		return nil, err
	}
	if err := v.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate: %w", err)
	}

	keys, err := cfg.ParseKeys()
	if err != nil {
		return nil, err
	}
	if _, ok := keys[uint8(cfg.CurrentKey)]; !ok {
		return nil, fmt.Errorf("current_key %d not present in keys", cfg.CurrentKey)
	}
	if _, err := cfg.NodeSpec(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ParseKeys expands the "version:secret,version:secret" key list. Secrets
// may contain colons; only the first one per entry delimits the version.
func (c *Config) ParseKeys() (map[uint8]string, error) {
	out := map[uint8]string{}
	for _, entry := range strings.Split(c.Keys, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		ver, secret, ok := strings.Cut(entry, ":")
		if !ok {
			return nil, fmt.Errorf("key entry %q: want version:secret", entry)
		}
		n, err := strconv.ParseUint(strings.TrimSpace(ver), 10, 8)
		if err != nil {
			return nil, fmt.Errorf("key entry %q: version must be 0-255", entry)
		}
		if len(secret) < 16 {
			return nil, fmt.Errorf("key version %s: secret shorter than 16 characters", ver)
		}
		if _, dup := out[uint8(n)]; dup {
			return nil, fmt.Errorf("key version %s declared twice", ver)
		}
		out[uint8(n)] = secret
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("keys must declare at least one version:secret entry")
	}
	return out, nil
}

// NodeSpec interprets the node setting: empty means resolve from the
// environment, a decimal number is an explicit id, anything else is a seed
// string to hash.
func (c *Config) NodeSpec() (any, error) {
	s := strings.TrimSpace(c.Node)
	if s == "" {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > 65535 {
			return nil, fmt.Errorf("node id %d out of range 0-65535", n)
		}
		return n, nil
	}
	return s, nil
}

// SQLiteDSN derives the audit database DSN inside the data directory.
func (c *Config) SQLiteDSN() string {
	dir := c.DataDir
	p := dir + "/vid.db"
	if dir == "" {
		p = "vid.db"
	} else if dir[len(dir)-1] == '/' {
		p = dir + "vid.db"
	}
	return "file:" + p + "?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000&_synchronous=FULL"
}

// validIPPort accepts host:port where host is empty or a literal IP and port
// is numeric 1-65535. Hostnames are rejected to keep bind addresses
// unambiguous.
func validIPPort(fl validator.FieldLevel) bool {
	host, port, err := net.SplitHostPort(fl.Field().String())
	if err != nil {
		return false
	}
	if host != "" && net.ParseIP(host) == nil {
		return false
	}
	p, err := strconv.Atoi(port)
	return err == nil && p >= 1 && p <= 65535
}

// validSafeDir rejects empty, root, and traversal-bearing paths.
func validSafeDir(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" {
		return false
	}
	clean := path.Clean(p)
	if clean == "." || clean == "/" {
		return false
	}
	for _, seg := range strings.Split(clean, "/") {
		if seg == ".." {
			return false
		}
	}
	return true
}

// validKeySpec runs the key list parser as a field validator so shape errors
// are reported alongside other validation failures.
func validKeySpec(fl validator.FieldLevel) bool {
	c := Config{Keys: fl.Field().String()}
	_, err := c.ParseKeys()
	return err == nil
}

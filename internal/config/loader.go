package config

import (
	"fmt"
	"os"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"time"
)

// Load reads configuration from environment variables.
// It applies defaults for unset values, merges the exclusions file when one is
// named, and validates the result.
func Load() (*Config, error) {
	cfg := &Config{}

	for _, f := range envFields(reflect.ValueOf(cfg).Elem(), nil) {
		if err := f.apply(os.Getenv); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}

	if path := cfg.Normalize.ExclusionsFile; path != "" {
		if err := cfg.Normalize.mergeFile(path); err != nil {
			return nil, fmt.Errorf("config load: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// envField is one leaf setting bound to an environment variable.
type envField struct {
	keys     []string // primary name, then the alternate
	fallback string
	dst      reflect.Value
}

// envFields flattens the config sections into their env-tagged leaves.
func envFields(v reflect.Value, out []envField) []envField {
	for i := range v.NumField() {
		sf := v.Type().Field(i)
		if !sf.IsExported() {
			continue
		}
		if sf.Type.Kind() == reflect.Struct {
			out = envFields(v.Field(i), out)
			continue
		}

		name := sf.Tag.Get("env")
		if name == "" {
			continue
		}
		keys := []string{name}
		if alt := sf.Tag.Get("envAlt"); alt != "" {
			keys = append(keys, alt)
		}
		out = append(out, envField{keys: keys, fallback: sf.Tag.Get("default"), dst: v.Field(i)})
	}
	return out
}

// apply sets the field from the first non-empty variable, else its default.
// An empty result leaves the zero value.
func (f envField) apply(getenv func(string) string) error {
	raw := f.fallback
	for _, k := range f.keys {
		if v := getenv(k); v != "" {
			raw = v
			break
		}
	}
	if raw == "" {
		return nil
	}

	if err := decodeInto(f.dst, raw); err != nil {
		return fmt.Errorf("invalid value for %s=%q: %w", f.keys[0], raw, err)
	}
	return nil
}

var durationType = reflect.TypeFor[time.Duration]()

func decodeInto(dst reflect.Value, raw string) error {
	switch {
	case dst.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		dst.SetInt(int64(d))

	case dst.Kind() == reflect.Int || dst.Kind() == reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		dst.SetInt(n)

	case dst.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		dst.SetBool(b)

	case dst.Kind() == reflect.String:
		dst.SetString(raw)

	case dst.Type() == reflect.TypeFor[[]string]():
		dst.Set(reflect.ValueOf(splitList(raw)))

	default:
		return fmt.Errorf("unsupported field type: %s", dst.Type())
	}
	return nil
}

// splitList reads a comma-separated list, dropping blank entries.
func splitList(raw string) []string {
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// problems collects every validation failure before reporting.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

func (p problems) err() error {
	if len(p) == 0 {
		return nil
	}
	return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
}

var (
	logLevels  = []string{"debug", "info", "warn", "error"}
	logFormats = []string{"text", "json"}
)

// Validate checks that the configuration is usable and reports all failures at once.
func (c *Config) Validate() error {
	var p problems

	s := c.Server
	p.check(s.Port > 0 && s.Port <= 65535, "SERVER_PORT (%d) must be 1-65535", s.Port)
	p.check(s.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(s.WriteTimeout >= 0, "SERVER_WRITE_TIMEOUT must be non-negative")
	p.check(s.ShutdownTimeout > 0, "SERVER_SHUTDOWN_TIMEOUT must be positive")
	p.check(s.RequestTimeout > 0, "SERVER_REQUEST_TIMEOUT must be positive")

	u := c.Upload
	p.check(u.MaxFileSize > 0, "UPLOAD_MAX_FILE_SIZE must be positive")
	p.check(u.MaxConcurrent > 0, "UPLOAD_MAX_CONCURRENT must be positive")
	p.check(u.MaxWaitTime > 0, "UPLOAD_MAX_WAIT_TIME must be positive")
	p.check(u.Timeout > 0, "UPLOAD_TIMEOUT must be positive")

	if c.Rate.Enabled {
		p.check(c.Rate.RequestsPerMinute > 0, "RATE_LIMIT_REQUESTS_PER_MINUTE must be positive when rate limiting is enabled")
		p.check(c.Rate.UploadLimit > 0, "RATE_LIMIT_UPLOAD must be positive when rate limiting is enabled")
	}

	p.check(slices.Contains(logLevels, strings.ToLower(c.Logging.Level)),
		"LOG_LEVEL (%q) must be one of: %s", c.Logging.Level, strings.Join(logLevels, ", "))
	p.check(slices.Contains(logFormats, strings.ToLower(c.Logging.Format)),
		"LOG_FORMAT (%q) must be one of: %s", c.Logging.Format, strings.Join(logFormats, ", "))

	return p.err()
}

// String returns a compact, secret-free summary for debug logging.
func (c *Config) String() string {
	sections := []string{
		fmt.Sprintf("Server: {Host: %q, Port: %d}", c.Server.Host, c.Server.Port),
		fmt.Sprintf("Upload: {MaxFileSize: %d, MaxConcurrent: %d, Timeout: %s}",
			c.Upload.MaxFileSize, c.Upload.MaxConcurrent, c.Upload.Timeout),
		fmt.Sprintf("Rate: {Enabled: %v, RequestsPerMinute: %d, UploadLimit: %d}",
			c.Rate.Enabled, c.Rate.RequestsPerMinute, c.Rate.UploadLimit),
		fmt.Sprintf("Security: {TrustedProxies: %d, EnableCSP: %v}",
			len(c.Security.TrustedProxies), c.Security.EnableCSP),
		fmt.Sprintf("Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format),
		fmt.Sprintf("Normalize: {ExcludedDescrs: %d, ExclusionsFile: %q}",
			len(c.Normalize.ExcludedDescrs), c.Normalize.ExclusionsFile),
	}
	return "Config{" + strings.Join(sections, ", ") + "}"
}

// Package config loads and validates link checker configuration via Viper.
package config

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. MDCHECKLINK_PARALLEL=8.
const EnvPrefix = "MDCHECKLINK"

const (
	defaultTimeout      = "10s"
	defaultRetryCount   = 2
	defaultRetryBackoff = "1s"
	defaultParallel     = 2

	remoteFetchTimeout = 30 * time.Second
	maxRemoteBytes     = 1 << 20
)

// Config mirrors the JSON configuration file.
type Config struct {
	IgnorePatterns      []IgnorePattern      `mapstructure:"ignorePatterns"`
	ReplacementPatterns []ReplacementPattern `mapstructure:"replacementPatterns"`
	HTTPHeaders         HeaderScopes         `mapstructure:"httpHeaders"`
	// Timeout is digits with an optional unit: "s" for seconds, otherwise milliseconds.
	Timeout       string  `mapstructure:"timeout"`
	IgnoreDisable bool    `mapstructure:"ignoreDisable"`
	RetryOn429    bool    `mapstructure:"retryOn429"`
	RetryCount    int     `mapstructure:"retryCount"`
	RetryBackoff  string  `mapstructure:"retryBackoff"`
	Parallel      int     `mapstructure:"parallel"`
	// HostRateLimit caps requests per second to one host; 0 disables pacing.
	HostRateLimit float64 `mapstructure:"hostRateLimit"`
	HostBurst     int     `mapstructure:"hostBurst"`
}

// IgnorePattern marks matching links as ignored.
type IgnorePattern struct {
	Pattern string `mapstructure:"pattern"`
}

// ReplacementPattern rewrites matching links before classification.
type ReplacementPattern struct {
	Pattern     string `mapstructure:"pattern"`
	Replacement string `mapstructure:"replacement"`
	Docsify     bool   `mapstructure:"docsify"`
}

// HeaderScope attaches Headers to links starting with one of URLs. An empty
// URLs list applies to every link.
type HeaderScope struct {
	URLs    []string          `mapstructure:"urls"`
	Headers map[string]string `mapstructure:"headers"`
}

// HeaderScopes accepts either a plain header object or a list of scopes.
type HeaderScopes []HeaderScope

// Load builds a Config from source, which may be empty, a local path, or an
// http(s) URL. Environment variables override file values.
func Load(ctx context.Context, source string) (Config, error) {
	v := viper.New()
	v.SetConfigType("json")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if source != "" {
		raw, err := readSource(ctx, source)
		if err != nil {
			return Config{}, err
		}
		if err := v.ReadConfig(bytes.NewReader(raw)); err != nil {
			return Config{}, fmt.Errorf("%w: parse %s: %w", ErrConfigInvalid, source, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		headerScopesHook,
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return Config{}, fmt.Errorf("%w: unmarshal: %w", ErrConfigInvalid, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("timeout", defaultTimeout)
	v.SetDefault("ignoreDisable", false)
	v.SetDefault("retryOn429", false)
	v.SetDefault("retryCount", defaultRetryCount)
	v.SetDefault("retryBackoff", defaultRetryBackoff)
	v.SetDefault("parallel", defaultParallel)
	v.SetDefault("hostRateLimit", 0)
	v.SetDefault("hostBurst", 1)
}

func readSource(ctx context.Context, source string) ([]byte, error) {
	lower := strings.ToLower(source)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return fetchRemote(ctx, source)
	}
	raw, err := os.ReadFile(source) //nolint:gosec // path supplied by the user
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, source)
		}
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfigNotFound, source, err)
	}
	return raw, nil
}

func fetchRemote(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, remoteFetchTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request for %s: %w", ErrConfigNotFound, url, err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", ErrConfigNotFound, url, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: fetch %s: status %d", ErrConfigNotFound, url, resp.StatusCode)
	}
	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxRemoteBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %w", ErrConfigNotFound, url, err)
	}
	return raw, nil
}

// headerScopesHook lets httpHeaders be a bare {Name: value} object, which is
// treated as a single scope applying to every link.
func headerScopesHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(HeaderScopes{}) || from.Kind() != reflect.Map {
		return data, nil
	}
	return []any{map[string]any{"headers": data}}, nil
}

// Validate enforces required values and compiles every pattern once so that
// errors surface before any document is read.
func (c Config) Validate() error {
	if c.Parallel <= 0 {
		return fmt.Errorf("%w: parallel must be > 0", ErrConfigInvalid)
	}
	if c.HostRateLimit < 0 {
		return fmt.Errorf("%w: hostRateLimit must be >= 0", ErrConfigInvalid)
	}
	if c.RetryCount < 0 {
		return fmt.Errorf("%w: retryCount must be >= 0", ErrConfigInvalid)
	}
	if _, err := c.TimeoutDuration(); err != nil {
		return err
	}
	if _, err := c.RetryPolicy(); err != nil {
		return err
	}
	if _, err := c.Rules(); err != nil {
		return err
	}
	for i, scope := range c.HTTPHeaders {
		if len(scope.Headers) == 0 {
			return fmt.Errorf("%w: httpHeaders[%d] has no headers", ErrConfigInvalid, i)
		}
	}
	return nil
}

package config

import (
	"fmt"
	"math"
	"net/url"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Defaults, overridable via STRESS_* environment variables and CLI flags.
const (
	DefaultURL         = "https://example.com"
	DefaultRequests    = 100
	DefaultConcurrency = 10
	DefaultTimeout     = 10 * time.Second
	DefaultMethod      = "GET"
)

// Unbounded is the request target for a paranoid run without a cap.
// The run then ends only on interrupt or keypress.
const Unbounded int64 = math.MaxInt64

// envBindings maps flag names to their environment fallbacks.
var envBindings = map[string]string{
	"url":         "STRESS_TARGET_URL",
	"requests":    "STRESS_TOTAL_REQUESTS",
	"concurrency": "STRESS_CONCURRENCY",
	"timeout":     "STRESS_TIMEOUT",
	"method":      "STRESS_METHOD",
}

var knownMethods = map[string]bool{
	"GET":     true,
	"HEAD":    true,
	"POST":    true,
	"PUT":     true,
	"PATCH":   true,
	"DELETE":  true,
	"OPTIONS": true,
}

// Config is the fully resolved run configuration. It is immutable once
// returned by Resolve.
type Config struct {
	URL         string
	Method      string
	Requests    int64
	Concurrency int
	Timeout     time.Duration
	Paranoid    bool
	MaxRequests int64
	Report      bool
	NoTUI       bool
}

// Bounded reports whether the run has a finite request target.
func (c Config) Bounded() bool {
	return c.Requests != Unbounded
}

// RegisterFlags attaches the run flags to fs. Kept here so tests can
// build the same flag set the root command uses.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.StringP("url", "u", DefaultURL, "Target URL")
	fs.Int64P("requests", "r", DefaultRequests, "Total number of requests to send")
	fs.IntP("concurrency", "c", DefaultConcurrency, "Number of concurrent workers")
	fs.DurationP("timeout", "t", DefaultTimeout, "Per-request timeout")
	fs.StringP("method", "m", DefaultMethod, "HTTP method")
	fs.Bool("report", false, "Save the run summary to a timestamped .log file")
	fs.Bool("paranoid", false, "Set concurrency to the CPU core count and run until the cap or an interrupt")
	fs.Int64("max-requests", 0, "Optional request cap for paranoid mode; 0 means unlimited")
	fs.Bool("no-tui", false, "Disable the interactive progress view")
}

// Resolve merges defaults, STRESS_* environment variables and CLI flags,
// in that order of precedence, into a validated Config.
func Resolve(fs *pflag.FlagSet) (Config, error) {
	v := viper.New()
	for name, env := range envBindings {
		f := fs.Lookup(name)
		if f == nil {
			return Config{}, fmt.Errorf("flag --%s is not registered", name)
		}
		if err := v.BindPFlag(name, f); err != nil {
			return Config{}, fmt.Errorf("binding --%s: %w", name, err)
		}
		if err := v.BindEnv(name, env); err != nil {
			return Config{}, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	cfg := Config{
		URL:         v.GetString("url"),
		Method:      strings.ToUpper(v.GetString("method")),
		Requests:    v.GetInt64("requests"),
		Concurrency: v.GetInt("concurrency"),
		Timeout:     v.GetDuration("timeout"),
	}
	cfg.Paranoid, _ = fs.GetBool("paranoid")
	cfg.MaxRequests, _ = fs.GetInt64("max-requests")
	cfg.Report, _ = fs.GetBool("report")
	cfg.NoTUI, _ = fs.GetBool("no-tui")

	if cfg.Paranoid {
		cfg.Concurrency = runtime.NumCPU()
		if cfg.MaxRequests > 0 {
			cfg.Requests = cfg.MaxRequests
		} else {
			cfg.Requests = Unbounded
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Requests <= 0 {
		return fmt.Errorf("--requests must be > 0, got %d", c.Requests)
	}
	if c.Concurrency <= 0 {
		return fmt.Errorf("--concurrency must be > 0, got %d", c.Concurrency)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("--timeout must be > 0, got %s", c.Timeout)
	}
	if c.MaxRequests < 0 {
		return fmt.Errorf("--max-requests must be >= 0, got %d", c.MaxRequests)
	}
	u, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid --url %q: %w", c.URL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid --url %q: need an absolute http(s) URL", c.URL)
	}
	if !knownMethods[c.Method] {
		return fmt.Errorf("unsupported --method %q", c.Method)
	}
	return nil
}

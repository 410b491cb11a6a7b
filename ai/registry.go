// Package ai describes the configured AI providers: which are enabled, which
// hold credentials, their ordering and per-provider request limits.
package ai

import (
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/aicreat/aicreat"
	"github.com/aicreat/aicreat/config"
)

// Provider names.
const (
	OpenAI    = "openai"
	Gemini    = "gemini"
	Claude    = "claude"
	Stability = "stability"
)

// DefaultGeminiModel is used when GEMINI_MODEL is not set.
const DefaultGeminiModel = "gemini-1.5-flash"

// Lower values sort first.
var defaultPriorities = map[string]int{
	Gemini:    1,
	OpenAI:    2,
	Claude:    3,
	Stability: 4,
}

// Provider is the resolved state of one AI provider. RequestsPerMinute is
// zero when requests are not limited.
type Provider struct {
	Name              string `json:"name"`
	Enabled           bool   `json:"enabled"`
	HasKey            bool   `json:"has_key"`
	Priority          int    `json:"priority"`
	Model             string `json:"model,omitempty"`
	RequestsPerMinute int    `json:"requests_per_minute,omitempty"`
}

// Registry is an immutable view of the AI providers built from settings.
type Registry struct {
	providers []Provider
	def       string
	model     string
	limiters  map[string]*rate.Limiter
}

// NewRegistry resolves providers from cfg. Unparsable priority or RPM values
// are logged and replaced by their defaults.
func NewRegistry(cfg config.AIConfig) *Registry {
	r := &Registry{
		def:      cfg.Provider,
		model:    cfg.GeminiModel.Or(DefaultGeminiModel),
		limiters: make(map[string]*rate.Limiter),
	}

	r.providers = []Provider{
		{Name: Gemini, Enabled: cfg.GeminiEnabled, HasKey: cfg.GeminiKey.IsSet(), Priority: geminiPriority(cfg.GeminiPriority)},
		{Name: OpenAI, Enabled: cfg.OpenAIEnabled, HasKey: cfg.OpenAIKey.IsSet(), Priority: defaultPriorities[OpenAI]},
		{Name: Claude, Enabled: cfg.ClaudeEnabled, HasKey: cfg.ClaudeKey.IsSet(), Priority: defaultPriorities[Claude]},
		{Name: Stability, Enabled: cfg.StabilityEnabled, HasKey: cfg.StabilityKey.IsSet(), Priority: defaultPriorities[Stability]},
	}
	slices.SortStableFunc(r.providers, func(a, b Provider) int {
		return a.Priority - b.Priority
	})

	if l, ok := perMinute(cfg.GeminiRPM); ok {
		r.limiters[Gemini] = l
	}

	return r
}

func geminiPriority(o config.Optional) int {
	raw, ok := o.Get()
	if !ok {
		return defaultPriorities[Gemini]
	}

	p, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		slog.Warn("invalid gemini priority, using default", "value", raw, "default", defaultPriorities[Gemini])
		return defaultPriorities[Gemini]
	}
	return p
}

func perMinute(o config.Optional) (*rate.Limiter, bool) {
	raw, ok := o.Get()
	if !ok {
		return nil, false
	}

	rpm, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || rpm <= 0 {
		slog.Warn("invalid gemini rpm, requests are not limited", "value", raw)
		return nil, false
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1), true
}

// Providers returns every known provider, ordered by priority.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	for i, p := range r.providers {
		out[i] = r.describe(p)
	}
	return out
}

func (r *Registry) describe(p Provider) Provider {
	p.Model = r.Model(p.Name)
	if limit := r.Limiter(p.Name).Limit(); limit != rate.Inf {
		p.RequestsPerMinute = int(math.Round(float64(limit) * 60))
	}
	return p
}

// Enabled returns the names of enabled providers, ordered by priority.
func (r *Registry) Enabled() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Enabled {
			names = append(names, p.Name)
		}
	}
	return names
}

// Default returns the configured default provider.
func (r *Registry) Default() string {
	return r.def
}

// Lookup returns the named provider. Unknown names wrap aicreat.ErrNotFound.
func (r *Registry) Lookup(name string) (Provider, error) {
	for _, p := range r.providers {
		if p.Name == name {
			return r.describe(p), nil
		}
	}
	return Provider{}, fmt.Errorf("provider %q: %w", name, aicreat.ErrNotFound)
}

// Limiter returns the request limiter for a provider. Providers without a
// configured rate get a fresh unlimited limiter.
func (r *Registry) Limiter(name string) *rate.Limiter {
	if l, ok := r.limiters[name]; ok {
		return l
	}
	return rate.NewLimiter(rate.Inf, 0)
}

// Model returns the model name used for a provider, or "" if it has none configured.
func (r *Registry) Model(name string) string {
	if name == Gemini {
		return r.model
	}
	return ""
}

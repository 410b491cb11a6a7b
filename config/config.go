package config

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	APIPrefix                = "/api/v1"
	ProjectName              = "AI CREAT Backend"
	TokenAlgorithm           = "HS256"
	AccessTokenExpireMinutes = 30

	// DefaultSecretKey is used when SECRET_KEY is unset. It must be overridden in production.
	DefaultSecretKey = "your-secret-key-change-in-production"
)

var (
	allowedExtensions    = []string{".jpg", ".jpeg", ".png", ".psd", ".tiff"}
	availableAIProviders = []string{"openai", "gemini"}
)

// AvailableAIProviders returns the providers AI_PROVIDER may name.
func AvailableAIProviders() []string {
	return slices.Clone(availableAIProviders)
}

// configKey is the context key for storing the loaded settings.
type configKey struct{}

// WithContext returns a new context with the settings stored.
func WithContext(ctx context.Context, s *Settings) context.Context {
	return context.WithValue(ctx, configKey{}, s)
}

// FromContext retrieves the settings from context.
// Returns an error if settings are not found.
func FromContext(ctx context.Context) (*Settings, error) {
	s, ok := ctx.Value(configKey{}).(*Settings)
	if !ok || s == nil {
		return nil, errors.New("settings not found in context")
	}
	return s, nil
}

// Optional holds a setting that may be absent from the environment.
type Optional struct {
	value string
	set   bool
}

// Some returns an Optional holding v.
func Some(v string) Optional {
	return Optional{value: v, set: true}
}

// Get returns the value and whether it was set.
func (o Optional) Get() (string, bool) {
	return o.value, o.set
}

func (o Optional) IsSet() bool {
	return o.set
}

// Or returns the value if set, def otherwise.
func (o Optional) Or(def string) string {
	if !o.set {
		return def
	}
	return o.value
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

// URL composes the connection string from the five connection fields.
// Values are substituted literally; reserved characters are not escaped.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgresql://%s:%s@%s:%s/%s", c.User, c.Password, c.Host, c.Port, c.Name)
}

// AuthConfig holds access token signing parameters.
type AuthConfig struct {
	SecretKey                string
	Algorithm                string
	AccessTokenExpireMinutes int
}

// AccessTokenTTL is the lifetime of an issued access token.
func (c AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(c.AccessTokenExpireMinutes) * time.Minute
}

// UsesDefaultSecret reports whether SECRET_KEY was left at its insecure default.
func (c AuthConfig) UsesDefaultSecret() bool {
	return c.SecretKey == DefaultSecretKey
}

// CORSConfig holds the cross-origin policy.
type CORSConfig struct {
	// Raw is the comma-joined origin list as read from BACKEND_CORS_ORIGINS.
	Raw string
}

// Origins splits Raw on commas and trims each entry. Empty entries are kept.
func (c CORSConfig) Origins() []string {
	origins := strings.Split(c.Raw, ",")
	for i, o := range origins {
		origins[i] = strings.TrimSpace(o)
	}
	return origins
}

// UploadConfig holds upload storage limits.
type UploadConfig struct {
	Dir         string
	MaxFileSize int64
}

// AllowedExtensions returns the accepted file extensions, including the leading dot.
func (c UploadConfig) AllowedExtensions() []string {
	return slices.Clone(allowedExtensions)
}

// IsAllowedExtension reports whether ext (with leading dot) is accepted.
// Matching is case-insensitive.
func (c UploadConfig) IsAllowedExtension(ext string) bool {
	return slices.Contains(allowedExtensions, strings.ToLower(ext))
}

// AIConfig holds AI provider selection, credentials and toggles.
type AIConfig struct {
	Provider string

	OpenAIKey    Optional
	GeminiKey    Optional
	ClaudeKey    Optional
	StabilityKey Optional

	GeminiEnabled    bool
	OpenAIEnabled    bool
	ClaudeEnabled    bool
	StabilityEnabled bool

	GeminiPriority Optional
	GeminiRPM      Optional
	GeminiModel    Optional
}

// QueueConfig holds task queue endpoints.
type QueueConfig struct {
	BrokerURL     string
	ResultBackend string
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Env  string
	Port int
}

func (c ServerConfig) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func (c ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string
}

// Settings is the resolved configuration snapshot. It is never modified after
// Build returns, so it may be read from any number of goroutines.
type Settings struct {
	database DatabaseConfig
	auth     AuthConfig
	cors     CORSConfig
	upload   UploadConfig
	ai       AIConfig
	queue    QueueConfig
	server   ServerConfig
	log      LogConfig
}

func (s *Settings) APIPrefix() string        { return APIPrefix }
func (s *Settings) ProjectName() string      { return ProjectName }
func (s *Settings) Database() DatabaseConfig { return s.database }
func (s *Settings) Auth() AuthConfig         { return s.auth }
func (s *Settings) CORS() CORSConfig         { return s.cors }
func (s *Settings) Upload() UploadConfig     { return s.upload }
func (s *Settings) AI() AIConfig             { return s.ai }
func (s *Settings) Queue() QueueConfig       { return s.queue }
func (s *Settings) Server() ServerConfig     { return s.server }
func (s *Settings) Log() LogConfig           { return s.log }

// flagToViperKey maps CLI flag names to settings keys.
var flagToViperKey = map[string]string{
	"port":       "server.port",
	"log-level":  "log.level",
	"upload-dir": "upload.dir",
}

// bindFlags binds explicitly set CLI flags to viper keys.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		viperKey, ok := flagToViperKey[f.Name]
		if !ok {
			return
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// Load applies the override file and builds a Settings snapshot.
// Order of precedence (highest to lowest): flags > env > override file > defaults
//
// Parameters:
//   - overrideFile: path to a KEY=VALUE file; a missing file is ignored
//   - flags: cobra flag set for flag binding (can be nil)
func Load(overrideFile string, flags *pflag.FlagSet) (*Settings, error) {
	if overrideFile != "" {
		if err := LoadOverrideFile(overrideFile); err != nil {
			return nil, err
		}
	}
	return Build(flags)
}

// LoadPartial is Load for callers that must keep going with broken settings,
// such as a command that rewrites the override file. It always returns a
// snapshot; see BuildPartial.
func LoadPartial(overrideFile string, flags *pflag.FlagSet) (*Settings, error) {
	var fileErr error
	if overrideFile != "" {
		fileErr = LoadOverrideFile(overrideFile)
	}
	s, err := BuildPartial(flags)
	return s, errors.Join(fileErr, err)
}

// Build reads every declared setting from the current process environment,
// coerces and validates it, and returns a new snapshot. Unknown environment
// variables are ignored.
func Build(flags *pflag.FlagSet) (*Settings, error) {
	return build(flags, false)
}

// BuildPartial is like Build but never fails: a field that does not coerce
// or validate takes its default, and every such FieldError is returned
// joined alongside the snapshot.
func BuildPartial(flags *pflag.FlagSet) (*Settings, error) {
	return build(flags, true)
}

func build(flags *pflag.FlagSet, partial bool) (*Settings, error) {
	v := viper.New()
	v.AllowEmptyEnv(true)

	// 1. Bind environment variables and defaults
	for _, f := range fields {
		_ = v.BindEnv(f.key, f.env)
		if f.kind != kindOptional {
			v.SetDefault(f.key, f.def)
		}
	}

	// 2. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 3. Resolve each field in table order
	s := &Settings{
		auth: AuthConfig{
			Algorithm:                TokenAlgorithm,
			AccessTokenExpireMinutes: AccessTokenExpireMinutes,
		},
	}
	validate := validator.New()
	var invalid []error
	for _, f := range fields {
		value, err := f.resolve(v, validate)
		if err != nil {
			if !partial {
				return nil, fmt.Errorf("build settings: %w", err)
			}
			invalid = append(invalid, err)
			if value, err = f.resolveDefault(validate); err != nil {
				return nil, fmt.Errorf("build settings: default for %s: %w", f.env, err)
			}
		}
		f.assign(s, value)
	}

	if len(invalid) > 0 {
		return s, fmt.Errorf("build settings: %w", errors.Join(invalid...))
	}
	return s, nil
}

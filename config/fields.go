package config

import (
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

type kind int

const (
	kindString kind = iota
	kindOptional
	kindInt
	kindBool
)

// field declares one setting: where it comes from, how it is coerced and
// validated, and where it lands in Settings.
type field struct {
	key    string
	env    string
	kind   kind
	def    string
	rule   string
	assign func(s *Settings, v any)
}

// fields is resolved in order. The database fields are all resolved before
// anything reads DatabaseConfig.URL.
var fields = []field{
	{key: "database.host", env: "POSTGRES_SERVER", def: "localhost",
		assign: func(s *Settings, v any) { s.database.Host = v.(string) }},
	{key: "database.user", env: "POSTGRES_USER", def: "postgres",
		assign: func(s *Settings, v any) { s.database.User = v.(string) }},
	{key: "database.password", env: "POSTGRES_PASSWORD", def: "",
		assign: func(s *Settings, v any) { s.database.Password = v.(string) }},
	{key: "database.name", env: "POSTGRES_DB", def: "ai_creat_db",
		assign: func(s *Settings, v any) { s.database.Name = v.(string) }},
	{key: "database.port", env: "POSTGRES_PORT", def: "5432",
		assign: func(s *Settings, v any) { s.database.Port = v.(string) }},

	{key: "auth.secret_key", env: "SECRET_KEY", def: DefaultSecretKey,
		assign: func(s *Settings, v any) { s.auth.SecretKey = v.(string) }},

	{key: "cors.origins", env: "BACKEND_CORS_ORIGINS", def: "http://localhost:3000,http://localhost:8000,http://localhost:5173",
		assign: func(s *Settings, v any) { s.cors.Raw = v.(string) }},

	{key: "upload.dir", env: "UPLOAD_DIR", def: "./uploads",
		assign: func(s *Settings, v any) { s.upload.Dir = v.(string) }},
	{key: "upload.max_file_size", env: "MAX_FILE_SIZE", kind: kindInt, def: "50000000", rule: "gt=0",
		assign: func(s *Settings, v any) { s.upload.MaxFileSize = v.(int64) }},

	{key: "ai.provider", env: "AI_PROVIDER", def: "gemini", rule: "oneof=" + strings.Join(availableAIProviders, " "),
		assign: func(s *Settings, v any) { s.ai.Provider = v.(string) }},
	{key: "ai.openai_api_key", env: "OPENAI_API_KEY", kind: kindOptional,
		assign: func(s *Settings, v any) { s.ai.OpenAIKey = v.(Optional) }},
	{key: "ai.gemini_api_key", env: "GEMINI_API_KEY", kind: kindOptional,
		assign: func(s *Settings, v any) { s.ai.GeminiKey = v.(Optional) }},
	{key: "ai.claude_api_key", env: "CLAUDE_API_KEY", kind: kindOptional,
		assign: func(s *Settings, v any) { s.ai.ClaudeKey = v.(Optional) }},
	{key: "ai.stability_api_key", env: "STABILITY_AI_API_KEY", kind: kindOptional,
		assign: func(s *Settings, v any) { s.ai.StabilityKey = v.(Optional) }},
	{key: "ai.gemini_enabled", env: "GEMINI_ENABLED", kind: kindBool, def: "true",
		assign: func(s *Settings, v any) { s.ai.GeminiEnabled = v.(bool) }},
	{key: "ai.openai_enabled", env: "OPENAI_ENABLED", kind: kindBool, def: "false",
		assign: func(s *Settings, v any) { s.ai.OpenAIEnabled = v.(bool) }},
	{key: "ai.claude_enabled", env: "CLAUDE_ENABLED", kind: kindBool, def: "false",
		assign: func(s *Settings, v any) { s.ai.ClaudeEnabled = v.(bool) }},
	{key: "ai.stability_enabled", env: "STABILITY_ENABLED", kind: kindBool, def: "false",
		assign: func(s *Settings, v any) { s.ai.StabilityEnabled = v.(bool) }},
	{key: "ai.gemini_priority", env: "GEMINI_PRIORITY", kind: kindOptional,
		assign: func(s *Settings, v any) { s.ai.GeminiPriority = v.(Optional) }},
	{key: "ai.gemini_rpm", env: "GEMINI_RPM", kind: kindOptional,
		assign: func(s *Settings, v any) { s.ai.GeminiRPM = v.(Optional) }},
	{key: "ai.gemini_model", env: "GEMINI_MODEL", kind: kindOptional,
		assign: func(s *Settings, v any) { s.ai.GeminiModel = v.(Optional) }},

	{key: "queue.broker_url", env: "CELERY_BROKER_URL", def: "pyamqp://guest@localhost//",
		assign: func(s *Settings, v any) { s.queue.BrokerURL = v.(string) }},
	{key: "queue.result_backend", env: "CELERY_RESULT_BACKEND", def: "redis://localhost:6379",
		assign: func(s *Settings, v any) { s.queue.ResultBackend = v.(string) }},

	{key: "server.env", env: "APP_ENV", def: "development",
		assign: func(s *Settings, v any) { s.server.Env = v.(string) }},
	{key: "server.port", env: "PORT", kind: kindInt, def: "8000", rule: "min=1,max=65535",
		assign: func(s *Settings, v any) { s.server.Port = int(v.(int64)) }},

	{key: "log.level", env: "LOG_LEVEL", def: "info", rule: "oneof=debug info warn error",
		assign: func(s *Settings, v any) { s.log.Level = v.(string) }},
}

// EnvVars returns the names of every environment variable Build reads.
func EnvVars() []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.env
	}
	return names
}

// resolve reads the field from v and coerces it to its declared kind.
func (f field) resolve(v *viper.Viper, validate *validator.Validate) (any, error) {
	switch f.kind {
	case kindOptional:
		if !v.IsSet(f.key) {
			return Optional{}, nil
		}
		return Some(v.GetString(f.key)), nil

	case kindBool:
		return parseBool(v.GetString(f.key), f.def), nil

	case kindInt:
		raw := v.GetString(f.key)
		n, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, &FieldError{Field: f.env, Value: raw, Reason: "not an integer", Err: ErrInvalidNumericField}
		}
		if err := f.check(validate, n, raw); err != nil {
			return nil, err
		}
		return n, nil

	default:
		raw := v.GetString(f.key)
		if err := f.check(validate, raw, raw); err != nil {
			return nil, err
		}
		return raw, nil
	}
}

// resolveDefault resolves f as if nothing but its default were set.
func (f field) resolveDefault(validate *validator.Validate) (any, error) {
	v := viper.New()
	if f.kind != kindOptional {
		v.SetDefault(f.key, f.def)
	}
	return f.resolve(v, validate)
}

func (f field) check(validate *validator.Validate, value any, raw string) error {
	if f.rule == "" {
		return nil
	}

	err := validate.Var(value, f.rule)
	if err == nil {
		return nil
	}

	kindErr := ErrInvalidEnumField
	if f.kind == kindInt {
		kindErr = ErrInvalidNumericField
	}
	return &FieldError{Field: f.env, Value: raw, Reason: describe(err), Err: kindErr}
}

func describe(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}

	fe := verrs[0]
	switch fe.Tag() {
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed " + fe.Tag() + " check"
	}
}

// parseBool accepts true/1/yes/on and false/0/no/off in any case.
// Anything else falls back to def.
func parseBool(raw, def string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes", "on":
		return true
	case "false", "0", "no", "off":
		return false
	default:
		return def == "true"
	}
}

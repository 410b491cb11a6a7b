package config

const redacted = "********"

// View is a printable rendition of Settings. Secrets are masked unless requested.
type View struct {
	APIPrefix   string `yaml:"api_prefix" json:"api_prefix"`
	ProjectName string `yaml:"project_name" json:"project_name"`

	Database struct {
		Host     string `yaml:"host" json:"host"`
		User     string `yaml:"user" json:"user"`
		Password string `yaml:"password" json:"password"`
		Name     string `yaml:"name" json:"name"`
		Port     string `yaml:"port" json:"port"`
		URL      string `yaml:"url" json:"url"`
	} `yaml:"database" json:"database"`

	Auth struct {
		SecretKey                string `yaml:"secret_key" json:"secret_key"`
		Algorithm                string `yaml:"algorithm" json:"algorithm"`
		AccessTokenExpireMinutes int    `yaml:"access_token_expire_minutes" json:"access_token_expire_minutes"`
	} `yaml:"auth" json:"auth"`

	CORSOrigins []string `yaml:"cors_origins" json:"cors_origins"`

	Upload struct {
		Dir               string   `yaml:"dir" json:"dir"`
		MaxFileSize       int64    `yaml:"max_file_size" json:"max_file_size"`
		AllowedExtensions []string `yaml:"allowed_extensions" json:"allowed_extensions"`
	} `yaml:"upload" json:"upload"`

	AI struct {
		Provider           string            `yaml:"provider" json:"provider"`
		AvailableProviders []string          `yaml:"available_providers" json:"available_providers"`
		Keys               map[string]string `yaml:"keys,omitempty" json:"keys,omitempty"`
		Enabled            map[string]bool   `yaml:"enabled" json:"enabled"`
		GeminiPriority     string            `yaml:"gemini_priority,omitempty" json:"gemini_priority,omitempty"`
		GeminiRPM          string            `yaml:"gemini_rpm,omitempty" json:"gemini_rpm,omitempty"`
		GeminiModel        string            `yaml:"gemini_model,omitempty" json:"gemini_model,omitempty"`
	} `yaml:"ai" json:"ai"`

	Queue struct {
		BrokerURL     string `yaml:"broker_url" json:"broker_url"`
		ResultBackend string `yaml:"result_backend" json:"result_backend"`
	} `yaml:"queue" json:"queue"`

	Server struct {
		Env  string `yaml:"env" json:"env"`
		Port int    `yaml:"port" json:"port"`
	} `yaml:"server" json:"server"`

	LogLevel string `yaml:"log_level" json:"log_level"`
}

// View renders s for display. With showSecrets false, the database password,
// secret key and API keys are masked and the database URL is composed from the
// masked password.
func (s *Settings) View(showSecrets bool) View {
	mask := func(v string) string {
		if showSecrets || v == "" {
			return v
		}
		return redacted
	}

	var out View
	out.APIPrefix = s.APIPrefix()
	out.ProjectName = s.ProjectName()

	db := s.database
	db.Password = mask(db.Password)
	out.Database.Host = db.Host
	out.Database.User = db.User
	out.Database.Password = db.Password
	out.Database.Name = db.Name
	out.Database.Port = db.Port
	out.Database.URL = db.URL()

	out.Auth.SecretKey = mask(s.auth.SecretKey)
	out.Auth.Algorithm = s.auth.Algorithm
	out.Auth.AccessTokenExpireMinutes = s.auth.AccessTokenExpireMinutes

	out.CORSOrigins = s.cors.Origins()

	out.Upload.Dir = s.upload.Dir
	out.Upload.MaxFileSize = s.upload.MaxFileSize
	out.Upload.AllowedExtensions = s.upload.AllowedExtensions()

	out.AI.Provider = s.ai.Provider
	out.AI.AvailableProviders = AvailableAIProviders()
	keys := map[string]Optional{
		"openai":    s.ai.OpenAIKey,
		"gemini":    s.ai.GeminiKey,
		"claude":    s.ai.ClaudeKey,
		"stability": s.ai.StabilityKey,
	}
	for name, key := range keys {
		if v, ok := key.Get(); ok {
			if out.AI.Keys == nil {
				out.AI.Keys = make(map[string]string)
			}
			out.AI.Keys[name] = mask(v)
		}
	}
	out.AI.Enabled = map[string]bool{
		"gemini":    s.ai.GeminiEnabled,
		"openai":    s.ai.OpenAIEnabled,
		"claude":    s.ai.ClaudeEnabled,
		"stability": s.ai.StabilityEnabled,
	}
	out.AI.GeminiPriority = s.ai.GeminiPriority.Or("")
	out.AI.GeminiRPM = s.ai.GeminiRPM.Or("")
	out.AI.GeminiModel = s.ai.GeminiModel.Or("")

	out.Queue.BrokerURL = s.queue.BrokerURL
	out.Queue.ResultBackend = s.queue.ResultBackend

	out.Server.Env = s.server.Env
	out.Server.Port = s.server.Port

	out.LogLevel = s.log.Level

	return out
}

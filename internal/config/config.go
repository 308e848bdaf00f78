package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// GeneratorConfig configures the generative model backend.
type GeneratorConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKeyEnv string `yaml:"api_key_env"`
	Model     string `yaml:"model"`
}

// IndexConfig points at the persisted index artifacts. All three files must
// exist for the chat binary to start; the index builder creates them.
type IndexConfig struct {
	VectorsPath  string `yaml:"vectors_path"`
	TextsPath    string `yaml:"texts_path"`
	SubjectsPath string `yaml:"subjects_path"`
}

// RedisConfig contains connection details for the answer cache.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTLSecs  int    `yaml:"ttl_secs"`
}

// PipelineConfig holds the retrieval and synthesis knobs.
type PipelineConfig struct {
	TopK               int `yaml:"top_k"`
	ContextTokenBudget int `yaml:"context_token_budget"`
}

// LogConfig holds the append-only sink paths plus the operational log file.
type LogConfig struct {
	EventsPath      string `yaml:"events_path"`
	EvaluationsPath string `yaml:"evaluations_path"`
	AppLogPath      string `yaml:"app_log_path"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Corpus    []string        `yaml:"corpus"`
	Index     IndexConfig     `yaml:"index"`
	Embedder  EmbedderConfig  `yaml:"embedder"`
	Generator GeneratorConfig `yaml:"generator"`
	Redis     RedisConfig     `yaml:"redis"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
	Log       LogConfig       `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return defaultConfig(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/vivi/config.yaml.
// If neither exists, it writes defaults to ~/.config/vivi/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := defaultConfig()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "vivi", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	return &AppConfig{
		Index: IndexConfig{
			VectorsPath:  "vivi.index",
			TextsPath:    "id_para_texto.json",
			SubjectsPath: "id_para_assunto.json",
		},
		Embedder:  EmbedderConfig{Type: "tfidf"},
		Generator: GeneratorConfig{APIKeyEnv: "OPENAI_API_KEY", Model: "gpt-4o-mini"},
		Redis:     RedisConfig{Addr: "localhost:6379", TTLSecs: 3600},
		Pipeline:  PipelineConfig{TopK: 3, ContextTokenBudget: 1024},
		Log: LogConfig{
			EventsPath:      "log.json",
			EvaluationsPath: "log_avaliacoes.json",
			AppLogPath:      "vivi.log",
		},
	}
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Index.VectorsPath == "" {
		cfg.Index.VectorsPath = "vivi.index"
	}
	if cfg.Index.TextsPath == "" {
		cfg.Index.TextsPath = "id_para_texto.json"
	}
	if cfg.Index.SubjectsPath == "" {
		cfg.Index.SubjectsPath = "id_para_assunto.json"
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if cfg.Embedder.OpenAI.Model == "" {
			cfg.Embedder.OpenAI.Model = "text-embedding-3-small"
		}
	}
	if cfg.Generator.APIKeyEnv == "" {
		cfg.Generator.APIKeyEnv = "OPENAI_API_KEY"
	}
	if cfg.Generator.Model == "" {
		cfg.Generator.Model = "gpt-4o-mini"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.TTLSecs == 0 {
		cfg.Redis.TTLSecs = 3600
	}
	if cfg.Pipeline.TopK == 0 {
		cfg.Pipeline.TopK = 3
	}
	if cfg.Pipeline.ContextTokenBudget == 0 {
		cfg.Pipeline.ContextTokenBudget = 1024
	}
	if cfg.Log.EventsPath == "" {
		cfg.Log.EventsPath = "log.json"
	}
	if cfg.Log.EvaluationsPath == "" {
		cfg.Log.EvaluationsPath = "log_avaliacoes.json"
	}
	if cfg.Log.AppLogPath == "" {
		cfg.Log.AppLogPath = "vivi.log"
	}
}

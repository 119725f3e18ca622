package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"tabvec/internal/space"
)

// DataConfig describes the dataset to embed.
type DataConfig struct {
	Source       string   `yaml:"source,omitempty"`
	TargetColumn string   `yaml:"target_column"`
	Columns      []string `yaml:"columns,omitempty"`
}

// EmbeddingModelConfig names the text-embedding model used by the naive path
// and by text spaces without their own model.
type EmbeddingModelConfig struct {
	ModelName string `yaml:"model_name"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string   `yaml:"base_url"`
	APIKeyEnv   string   `yaml:"api_key_env"`
	Models      []string `yaml:"models"`
	TimeoutSecs int      `yaml:"timeout_secs"`
	BatchSize   int      `yaml:"batch_size"`
	NoAuth      bool     `yaml:"no_auth,omitempty"`
}

// EmbedderConfig selects and configures the text embedder implementation.
type EmbedderConfig struct {
	Type   string                `yaml:"type"`
	OpenAI *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	Host             string `yaml:"host"`
	Port             int    `yaml:"port"`
	APIKey           string `yaml:"api_key"`
	UseTLS           bool   `yaml:"use_tls"`
	CollectionPrefix string `yaml:"collection_prefix"`
}

// ReducerConfig configures the dimensionality reduction.
type ReducerConfig struct {
	Components int `yaml:"components"`
}

// ChartConfig sizes the terminal scatter plots.
type ChartConfig struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// MetricsConfig enables the Prometheus endpoint when Addr is set.
type MetricsConfig struct {
	Addr string `yaml:"addr,omitempty"`
}

// DomainEntry is one row of the static domain table.
type DomainEntry struct {
	Column     string   `yaml:"column"`
	Space      string   `yaml:"space"`
	Categories []string `yaml:"categories,omitempty"`
	Min        float64  `yaml:"min,omitempty"`
	Max        float64  `yaml:"max,omitempty"`
	Mode       string   `yaml:"mode,omitempty"`
	Model      string   `yaml:"model,omitempty"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Data           DataConfig           `yaml:"data"`
	EmbeddingModel EmbeddingModelConfig `yaml:"embedding_model"`
	Embedder       EmbedderConfig       `yaml:"embedder"`
	VectorStore    VectorStoreConfig    `yaml:"vector_store"`
	Reducer        ReducerConfig        `yaml:"reducer"`
	Chart          ChartConfig          `yaml:"chart"`
	Log            LogConfig            `yaml:"log"`
	Metrics        MetricsConfig        `yaml:"metrics"`
	Domain         []DomainEntry        `yaml:"domain"`
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
	return Parse(data)
}

// Parse decodes YAML config data and fills defaults for omitted settings.
func Parse(data []byte) (*AppConfig, error) {
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	if _, err := cfg.Table(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadDefault tries ./tabvec.yaml first, then ~/.config/tabvec/config.yaml.
// If neither exists, it writes defaults to ~/.config/tabvec/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "tabvec.yaml"
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

// Table converts the configured domain entries into a validated space.Table.
func (c *AppConfig) Table() (space.Table, error) {
	table := make(space.Table, 0, len(c.Domain))
	for _, e := range c.Domain {
		kind, err := space.ParseKind(e.Space)
		if err != nil {
			return nil, fmt.Errorf("domain entry %q: %w", e.Column, err)
		}
		mode, err := space.ParseMode(e.Mode)
		if err != nil {
			return nil, fmt.Errorf("domain entry %q: %w", e.Column, err)
		}
		table = append(table, space.Entry{
			Column:     e.Column,
			Kind:       kind,
			Categories: e.Categories,
			Min:        e.Min,
			Max:        e.Max,
			Mode:       mode,
			ModelID:    e.Model,
		})
	}
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return table, nil
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "tabvec", "config.yaml"), nil
}

func defaultConfig() *AppConfig {
	cfg := &AppConfig{
		Data:           DataConfig{TargetColumn: "Attrition"},
		EmbeddingModel: EmbeddingModelConfig{ModelName: "tfidf"},
		Embedder:       EmbedderConfig{Type: "tfidf"},
		VectorStore:    VectorStoreConfig{Type: "memory"},
		Reducer:        ReducerConfig{Components: 3},
		Chart:          ChartConfig{Width: 60, Height: 20},
		Log:            LogConfig{Level: "info", Format: "text"},
		Domain:         domainEntries(space.DefaultTable()),
	}
	return cfg
}

func domainEntries(table space.Table) []DomainEntry {
	out := make([]DomainEntry, len(table))
	for i, e := range table {
		out[i] = DomainEntry{
			Column:     e.Column,
			Space:      e.Kind.String(),
			Categories: e.Categories,
			Min:        e.Min,
			Max:        e.Max,
			Model:      e.ModelID,
		}
		if e.Kind == space.KindNumber {
			out[i].Mode = e.Mode.String()
		}
	}
	return out
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.EmbeddingModel.ModelName == "" {
		cfg.EmbeddingModel.ModelName = "tfidf"
	}
	if cfg.Reducer.Components == 0 {
		cfg.Reducer.Components = 3
	}
	if cfg.Chart.Width == 0 {
		cfg.Chart.Width = 60
	}
	if cfg.Chart.Height == 0 {
		cfg.Chart.Height = 20
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Domain == nil {
		cfg.Domain = domainEntries(space.DefaultTable())
	}
	if cfg.Embedder.Type == "openai" && cfg.Embedder.OpenAI != nil {
		if cfg.Embedder.OpenAI.BaseURL == "" {
			cfg.Embedder.OpenAI.BaseURL = "https://api.openai.com/v1"
		}
		if cfg.Embedder.OpenAI.APIKeyEnv == "" {
			cfg.Embedder.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
		}
		if len(cfg.Embedder.OpenAI.Models) == 0 {
			cfg.Embedder.OpenAI.Models = []string{cfg.EmbeddingModel.ModelName}
		}
		if cfg.Embedder.OpenAI.TimeoutSecs == 0 {
			cfg.Embedder.OpenAI.TimeoutSecs = 30
		}
		if cfg.Embedder.OpenAI.BatchSize == 0 {
			cfg.Embedder.OpenAI.BatchSize = 32
		}
	}
	if cfg.VectorStore.Type == "qdrant" && cfg.VectorStore.Qdrant != nil {
		if cfg.VectorStore.Qdrant.Host == "" {
			cfg.VectorStore.Qdrant.Host = "localhost"
		}
		if cfg.VectorStore.Qdrant.Port == 0 {
			cfg.VectorStore.Qdrant.Port = 6334
		}
		if cfg.VectorStore.Qdrant.CollectionPrefix == "" {
			cfg.VectorStore.Qdrant.CollectionPrefix = "tabvec"
		}
	}
}

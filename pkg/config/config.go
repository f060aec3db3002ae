package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Telegram   TelegramConfig   `mapstructure:"telegram"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Classifier ClassifierConfig `mapstructure:"classifier"`
	Snapshot   SnapshotConfig   `mapstructure:"snapshot"`
	Retrieval  RetrievalConfig  `mapstructure:"retrieval"`
	OpenAI     OpenAIConfig     `mapstructure:"openai"`
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	UseInMemory bool   `mapstructure:"use_in_memory"`
}

type ClassifierConfig struct {
	CorpusPath   string  `mapstructure:"corpus_path"`
	HiddenSize   int     `mapstructure:"hidden_size"`
	LearningRate float64 `mapstructure:"learning_rate"`
	Epochs       int     `mapstructure:"epochs"`
	BatchSize    int     `mapstructure:"batch_size"`
	LogEvery     int     `mapstructure:"log_every"`
	Seed         int64   `mapstructure:"seed"`
	RetrievalTag string  `mapstructure:"retrieval_tag"`
}

// SnapshotConfig selects where the trained model is persisted:
// "file" (Path), "postgres" (row Name) or "memory".
type SnapshotConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Name    string `mapstructure:"name"`
}

// RetrievalConfig selects the document store: "bluge" for a lexical index
// or "embedding" for OpenAI vectors kept in badger.
type RetrievalConfig struct {
	Backend    string `mapstructure:"backend"`
	BlugePath  string `mapstructure:"bluge_path"`
	BadgerPath string `mapstructure:"badger_path"`
}

type OpenAIConfig struct {
	APIKey         string `mapstructure:"api_key"`
	EmbeddingModel string `mapstructure:"embedding_model"`
}

// DefaultFile is read when no config path is given and it exists.
const DefaultFile = "config.yaml"

// ResolvePath returns path, or DefaultFile when path is empty and the file
// exists. An empty result means defaults and environment only.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	if _, err := os.Stat(DefaultFile); err == nil {
		return DefaultFile
	}
	return ""
}

func parseDatabaseURL(dbURL string) (DatabaseConfig, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return DatabaseConfig{}, err
	}

	password, _ := u.User.Password()
	port := 5432 // default PostgreSQL port
	if u.Port() != "" {
		fmt.Sscanf(u.Port(), "%d", &port)
	}

	sslMode := u.Query().Get("sslmode")
	if sslMode == "" {
		sslMode = "disable"
	}

	return DatabaseConfig{
		Host:     u.Hostname(),
		Port:     port,
		User:     u.User.Username(),
		Password: password,
		DBName:   strings.TrimPrefix(u.Path, "/"),
		SSLMode:  sslMode,
	}, nil
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8001")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.dbname", "wikichat")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.use_in_memory", true)
	v.SetDefault("classifier.corpus_path", "resources/intents.json")
	v.SetDefault("classifier.hidden_size", 8)
	v.SetDefault("classifier.learning_rate", 0.001)
	v.SetDefault("classifier.epochs", 1000)
	v.SetDefault("classifier.batch_size", 8)
	v.SetDefault("classifier.log_every", 100)
	v.SetDefault("classifier.seed", 1)
	v.SetDefault("classifier.retrieval_tag", "wikipedia")
	v.SetDefault("snapshot.backend", "file")
	v.SetDefault("snapshot.path", "resources/chatbot_model.json")
	v.SetDefault("snapshot.name", "intent-classifier")
	v.SetDefault("retrieval.backend", "bluge")
	v.SetDefault("retrieval.bluge_path", "vectorstore/bluge")
	v.SetDefault("retrieval.badger_path", "vectorstore/badger")
	v.SetDefault("openai.embedding_model", "text-embedding-3-small")
}

// LoadConfig reads path (optional) on top of the defaults and the
// environment. Nested keys map to env vars with "_" (CLASSIFIER_EPOCHS).
func LoadConfig(v *viper.Viper, path string) (*Config, error) {
	SetDefaults(v)

	// Enable environment variable support
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if dbURL := v.GetString("DATABASE_URL"); dbURL != "" {
		dbConfig, err := parseDatabaseURL(dbURL)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DATABASE_URL: %w", err)
		}
		dbConfig.UseInMemory = false
		config.Database = dbConfig
	}

	if token := v.GetString("TELEGRAM_TOKEN"); token != "" {
		config.Telegram.Token = token
	}

	if apiKey := v.GetString("OPENAI_API_KEY"); apiKey != "" {
		config.OpenAI.APIKey = apiKey
	}

	return &config, config.Validate()
}

func (c *Config) Validate() error {
	switch c.Snapshot.Backend {
	case "file", "memory":
	case "postgres":
		if c.Database.UseInMemory {
			return fmt.Errorf("snapshot backend postgres requires database.use_in_memory=false")
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Snapshot.Backend)
	}

	switch c.Retrieval.Backend {
	case "bluge":
	case "embedding":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("retrieval backend embedding requires an OpenAI API key")
		}
	default:
		return fmt.Errorf("unknown retrieval backend %q", c.Retrieval.Backend)
	}

	if c.Classifier.HiddenSize <= 0 {
		return fmt.Errorf("classifier.hidden_size must be positive")
	}
	return nil
}

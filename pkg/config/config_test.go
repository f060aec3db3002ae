package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"DATABASE_URL", "TELEGRAM_TOKEN", "OPENAI_API_KEY", "CLASSIFIER_EPOCHS", "SNAPSHOT_BACKEND"} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	req := require.New(t)

	cfg, err := LoadConfig(viper.New(), "")
	req.NoError(err)
	req.Equal(":8001", cfg.Server.Addr)
	req.Equal("resources/intents.json", cfg.Classifier.CorpusPath)
	req.Equal(8, cfg.Classifier.HiddenSize)
	req.InDelta(0.001, cfg.Classifier.LearningRate, 1e-12)
	req.Equal(1000, cfg.Classifier.Epochs)
	req.Equal(8, cfg.Classifier.BatchSize)
	req.Equal("wikipedia", cfg.Classifier.RetrievalTag)
	req.Equal("file", cfg.Snapshot.Backend)
	req.Equal("bluge", cfg.Retrieval.Backend)
	req.True(cfg.Database.UseInMemory)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	clearEnv(t)
	req := require.New(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	req.NoError(os.WriteFile(path, []byte(`
server:
  addr: ":9000"
classifier:
  hidden_size: 16
  epochs: 200
snapshot:
  backend: memory
`), 0o644))

	t.Setenv("CLASSIFIER_EPOCHS", "50")
	t.Setenv("TELEGRAM_TOKEN", "secret")

	cfg, err := LoadConfig(viper.New(), path)
	req.NoError(err)
	req.Equal(":9000", cfg.Server.Addr)
	req.Equal(16, cfg.Classifier.HiddenSize)
	req.Equal(50, cfg.Classifier.Epochs)
	req.Equal("memory", cfg.Snapshot.Backend)
	req.Equal("secret", cfg.Telegram.Token)
}

func TestLoadConfig_DatabaseURL(t *testing.T) {
	clearEnv(t)
	req := require.New(t)
	t.Setenv("DATABASE_URL", "postgres://bot:pw@db.internal:6543/wiki?sslmode=require")
	t.Setenv("SNAPSHOT_BACKEND", "postgres")

	cfg, err := LoadConfig(viper.New(), "")
	req.NoError(err)
	req.Equal(DatabaseConfig{
		Host:     "db.internal",
		Port:     6543,
		User:     "bot",
		Password: "pw",
		DBName:   "wiki",
		SSLMode:  "require",
	}, cfg.Database)
	req.Equal("postgres", cfg.Snapshot.Backend)
}

func TestResolvePath(t *testing.T) {
	req := require.New(t)
	t.Chdir(t.TempDir())

	req.Equal("", ResolvePath(""))
	req.Equal("custom.yaml", ResolvePath("custom.yaml"))

	req.NoError(os.WriteFile(DefaultFile, []byte("server:\n  addr: \":9100\"\n"), 0o644))
	req.Equal(DefaultFile, ResolvePath(""))

	clearEnv(t)
	cfg, err := LoadConfig(viper.New(), ResolvePath(""))
	req.NoError(err)
	req.Equal(":9100", cfg.Server.Addr)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearEnv(t)
	_, err := LoadConfig(viper.New(), filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestConfig_Validate(t *testing.T) {
	valid := func() Config {
		return Config{
			Database:   DatabaseConfig{UseInMemory: true},
			Classifier: ClassifierConfig{HiddenSize: 8},
			Snapshot:   SnapshotConfig{Backend: "file"},
			Retrieval:  RetrievalConfig{Backend: "bluge"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "unknown snapshot backend", mutate: func(c *Config) { c.Snapshot.Backend = "s3" }, wantErr: "unknown snapshot backend"},
		{name: "postgres without database", mutate: func(c *Config) { c.Snapshot.Backend = "postgres" }, wantErr: "use_in_memory"},
		{name: "embedding without key", mutate: func(c *Config) { c.Retrieval.Backend = "embedding" }, wantErr: "API key"},
		{name: "embedding with key", mutate: func(c *Config) {
			c.Retrieval.Backend = "embedding"
			c.OpenAI.APIKey = "sk-test"
		}},
		{name: "unknown retrieval backend", mutate: func(c *Config) { c.Retrieval.Backend = "chroma" }, wantErr: "unknown retrieval backend"},
		{name: "zero hidden size", mutate: func(c *Config) { c.Classifier.HiddenSize = 0 }, wantErr: "hidden_size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorContains(t, err, tt.wantErr)
		})
	}
}

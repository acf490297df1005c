package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const ENV_FILE = ".env"
const CONFIG_FILE = "config.yaml"

type AppConfig struct {
	Logging      LoggingConfig      `yaml:"logging"`
	Server       ServerConfig       `yaml:"server"`
	Mongo        MongoConfig        `yaml:"mongo"`
	Transcript   TranscriptConfig   `yaml:"transcript"`
	Export       ExportConfig       `yaml:"export"`
	SummaryQuota SummaryQuotaConfig `yaml:"summary_quota"`
	Kafka        KafkaConfig        `yaml:"kafka"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type MongoConfig struct {
	URI      string `yaml:"uri"`
	Database string `yaml:"database"`
}

// TranscriptConfig controls the YouTube timedtext client.
type TranscriptConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// ExportConfig controls where completed summaries are written as markdown.
type ExportConfig struct {
	DataDir string `yaml:"data_dir"`
}

// SummaryQuotaConfig defines rate/daily limits for summarization LLM calls.
// Zero or negative values mean no limit in that direction.
type SummaryQuotaConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute"`
	RequestsPerDay    int `yaml:"requests_per_day"`
}

// KafkaConfig enables the eventbus-backed export worker. When disabled the
// export side effect runs in-process.
type KafkaConfig struct {
	Enabled bool   `yaml:"enabled"`
	Brokers string `yaml:"brokers"`
	GroupID string `yaml:"group_id"`
}

var config *AppConfig

func InitApp() {
	// load environment variables
	godotenv.Load(filepath.Join(GetBasePath(), ENV_FILE))

	// load configuration file
	data, err := os.ReadFile(filepath.Join(GetBasePath(), CONFIG_FILE))
	if err != nil {
		panic(err)
	}

	var c AppConfig
	err = yaml.Unmarshal(data, &c)
	if err != nil {
		panic(err)
	}
	applyDefaults(&c)
	config = &c
}

func GetConfig() AppConfig {
	if config == nil {
		InitApp()
	}

	return *config
}

func applyDefaults(c *AppConfig) {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "tubebrief"
	}
	if c.Transcript.BaseURL == "" {
		c.Transcript.BaseURL = "https://www.youtube.com/api/timedtext"
	}
	if c.Transcript.TimeoutSeconds <= 0 {
		c.Transcript.TimeoutSeconds = 30
	}
	if c.Export.DataDir == "" {
		c.Export.DataDir = filepath.Join(GetBasePath(), "data")
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "tube-brief.server"
	}
}

func GetBasePath() string {
	cwd, err := os.Getwd()
	if err != nil {
		return ""
	}

	dir := cwd
	for {
		cfgPath := filepath.Join(dir, CONFIG_FILE)
		if info, err := os.Stat(cfgPath); err == nil && !info.IsDir() {
			return dir
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return ""
}

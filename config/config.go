package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"go.yaml.in/yaml/v4"
)

type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Redis    RedisConfig    `yaml:"redis"`
	Warelog  WarelogConfig  `yaml:"warelog"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" env:"WARELOG_DB_HOST"`
	Port     int    `yaml:"port" env:"WARELOG_DB_PORT"`
	Username string `yaml:"username" env:"WARELOG_DB_USER"`
	Password string `yaml:"password" env:"WARELOG_DB_PASSWORD"`
	DBName   string `yaml:"name" env:"WARELOG_DB_NAME"`
	SSLMode  string `yaml:"ssl_mode" env:"WARELOG_DB_SSLMODE"`
}

type KafkaConfig struct {
	Host               string `yaml:"host" env:"WARELOG_KAFKA_HOST"`
	Port               int    `yaml:"port" env:"WARELOG_KAFKA_PORT"`
	RowChangeTopicName string `yaml:"row_change_topic_name" env:"WARELOG_KAFKA_ROW_CHANGE_TOPIC"`
}

type RedisConfig struct {
	Host string `yaml:"host" env:"WARELOG_REDIS_HOST"`
	Port int    `yaml:"port" env:"WARELOG_REDIS_PORT"`
}

type WarelogConfig struct {
	HTTPAddr           string `yaml:"http_addr" env:"WARELOG_HTTP_ADDR"`
	KafkaConsumerGroup string `yaml:"kafka_consumer_group" env:"WARELOG_KAFKA_CONSUMER_GROUP"`

	AuthSecret string `yaml:"auth_secret" env:"WARELOG_AUTH_SECRET"`
	AnonKey    string `yaml:"anon_key" env:"WARELOG_ANON_KEY"`

	SnapshotTTLSeconds          int `yaml:"snapshot_ttl_seconds"`
	TrackingPollIntervalSeconds int `yaml:"tracking_poll_interval_seconds"`
	TrackingFetchTimeoutSeconds int `yaml:"tracking_fetch_timeout_seconds"`

	FunctionsBaseURL string `yaml:"functions_base_url" env:"WARELOG_FUNCTIONS_BASE_URL"`
	MapboxToken      string `yaml:"mapbox_token" env:"WARELOG_MAPBOX_TOKEN"`

	SimulationEnabled            bool   `yaml:"simulation_enabled" env:"WARELOG_SIMULATION_ENABLED"`
	SimulationIntervalSeconds    int    `yaml:"simulation_interval_seconds"`
	SimulationRateLimitPerMinute int    `yaml:"simulation_rate_limit_per_minute"`
	SimulationBackoff1Seconds    int    `yaml:"simulation_backoff_1_seconds"`
	SimulationBackoff2Seconds    int    `yaml:"simulation_backoff_2_seconds"`
	SimulationBackoff3Seconds    int    `yaml:"simulation_backoff_3_seconds"`
	WorkerHTTPAddr               string `yaml:"worker_http_addr" env:"WARELOG_WORKER_HTTP_ADDR"`
}

func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}

	// Переменные окружения перекрывают значения из файла.
	if err := env.Parse(&config); err != nil {
		return nil, fmt.Errorf("failed to parse env overrides: %w", err)
	}

	return &config, nil
}

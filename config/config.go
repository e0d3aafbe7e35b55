package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	S3        S3Config
	Features  FeatureConfig
	Jobs      JobsConfig
	AuditPath string
	LogLevel  string
}

type ServerConfig struct {
	Port string `yaml:"port"`
}

type DatabaseConfig struct {
	URL string `yaml:"url"`
}

type CacheConfig struct {
	TTL           time.Duration `yaml:"ttl"`
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

type FeatureConfig struct {
	SharesCounter bool `yaml:"shares_counter"`
}

type JobsConfig struct {
	FeaturedCron  string `yaml:"featured_cron"`
	FeaturedCount int    `yaml:"featured_count"`
}

// fileConfig is the optional config.yaml overlay. Env vars win over the file.
type fileConfig struct {
	Server   ServerConfig  `yaml:"server"`
	Cache    CacheConfig   `yaml:"cache"`
	S3       S3Config      `yaml:"s3"`
	Features FeatureConfig `yaml:"features"`
	Jobs     JobsConfig    `yaml:"jobs"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Cache: CacheConfig{
			TTL:           5 * time.Minute,
			SweepInterval: 10 * time.Minute,
		},
		S3: S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          getEnv("S3_REGION", "eu-west-1"),
			Endpoint:        os.Getenv("S3_ENDPOINT"),
			AccessKeyID:     os.Getenv("S3_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("S3_SECRET_ACCESS_KEY"),
		},
		Features: FeatureConfig{
			SharesCounter: os.Getenv("FEATURES_SHARES_COUNTER") == "true",
		},
		Jobs: JobsConfig{
			FeaturedCron:  getEnv("FEATURED_CRON", "0 3 * * *"),
			FeaturedCount: getEnvInt("FEATURED_COUNT", 6),
		},
		AuditPath: getEnv("AUDIT_DB_PATH", "audit.db"),
		LogLevel:  getEnv("LOG_LEVEL", "info"),
	}

	if ttl := os.Getenv("CACHE_TTL"); ttl != "" {
		if d, err := time.ParseDuration(ttl); err == nil {
			cfg.Cache.TTL = d
		}
	}

	if err := cfg.loadFile(getEnv("CONFIG_FILE", "config.yaml")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFile overlays settings from an optional YAML file. Only fields still at
// their defaults are filled so environment variables keep precedence.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if os.Getenv("PORT") == "" && fc.Server.Port != "" {
		c.Server.Port = fc.Server.Port
	}
	if fc.Cache.TTL > 0 && os.Getenv("CACHE_TTL") == "" {
		c.Cache.TTL = fc.Cache.TTL
	}
	if fc.Cache.SweepInterval > 0 {
		c.Cache.SweepInterval = fc.Cache.SweepInterval
	}
	if c.S3.Bucket == "" && fc.S3.Bucket != "" {
		c.S3.Bucket = fc.S3.Bucket
	}
	if os.Getenv("S3_REGION") == "" && fc.S3.Region != "" {
		c.S3.Region = fc.S3.Region
	}
	if c.S3.Endpoint == "" && fc.S3.Endpoint != "" {
		c.S3.Endpoint = fc.S3.Endpoint
	}
	if c.S3.AccessKeyID == "" && fc.S3.AccessKeyID != "" {
		c.S3.AccessKeyID = fc.S3.AccessKeyID
	}
	if c.S3.SecretAccessKey == "" && fc.S3.SecretAccessKey != "" {
		c.S3.SecretAccessKey = fc.S3.SecretAccessKey
	}
	if fc.Features.SharesCounter {
		c.Features.SharesCounter = true
	}
	if os.Getenv("FEATURED_CRON") == "" && fc.Jobs.FeaturedCron != "" {
		c.Jobs.FeaturedCron = fc.Jobs.FeaturedCron
	}
	if os.Getenv("FEATURED_COUNT") == "" && fc.Jobs.FeaturedCount > 0 {
		c.Jobs.FeaturedCount = fc.Jobs.FeaturedCount
	}

	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds sqlite storage backend settings
type SQLiteConfig struct {
	Path string `json:"path" mapstructure:"path"`
}

// StorageConfig selects and configures the result sink
type StorageConfig struct {
	Backend string       `json:"backend" mapstructure:"backend"`
	Memory  MemoryConfig `json:"memory" mapstructure:"memory"`
	SQLite  SQLiteConfig `json:"sqlite" mapstructure:"sqlite"`
}

// OTelConfig holds OpenTelemetry export settings
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// SiteConfig locates the analysis site
type SiteConfig struct {
	Latitude     float64 `json:"latitude" mapstructure:"latitude"`
	Longitude    float64 `json:"longitude" mapstructure:"longitude"`
	ExtentMeters float64 `json:"extentMeters" mapstructure:"extentMeters"`
}

// AnalysisConfig holds the run parameters
type AnalysisConfig struct {
	Mode        string  `json:"mode" mapstructure:"mode"`
	Date        string  `json:"date" mapstructure:"date"`
	TimeOfDay   string  `json:"timeOfDay" mapstructure:"timeOfDay"`
	CellSize    float64 `json:"cellSize" mapstructure:"cellSize"`
	StepMinutes int     `json:"stepMinutes" mapstructure:"stepMinutes"`
	Workers     int     `json:"workers" mapstructure:"workers"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	// Set default values
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./heliosite-logs")

	viper.SetDefault("site.latitude", 0.0)
	viper.SetDefault("site.longitude", 0.0)
	viper.SetDefault("site.extentMeters", 500.0)

	viper.SetDefault("analysis.mode", "instant")
	viper.SetDefault("analysis.date", "")
	viper.SetDefault("analysis.timeOfDay", "12:00")
	viper.SetDefault("analysis.cellSize", 2.0)
	viper.SetDefault("analysis.stepMinutes", 15)
	viper.SetDefault("analysis.workers", 0)

	viper.SetDefault("input.elevationGrid", "")
	viper.SetDefault("input.buildings", "")

	viper.SetDefault("storage.backend", "memory")
	viper.SetDefault("storage.memory.outputDir", "./heliosite-results")
	viper.SetDefault("storage.memory.compressOutput", false)
	viper.SetDefault("storage.sqlite.path", "./heliosite.db")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "heliosite")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "")
	viper.SetDefault("influx.org", "heliosite-metrics")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "heliosite")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetConfigName("heliosite.cfg.json")
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetFloat64 returns a float config value.
func GetFloat64(key string) float64 {
	return viper.GetFloat64(key)
}

// GetStorageConfig returns the storage section.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Backend: viper.GetString("storage.backend"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
	}
}

// GetOTelConfig returns the otel section.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetSiteConfig returns the site section.
func GetSiteConfig() SiteConfig {
	return SiteConfig{
		Latitude:     viper.GetFloat64("site.latitude"),
		Longitude:    viper.GetFloat64("site.longitude"),
		ExtentMeters: viper.GetFloat64("site.extentMeters"),
	}
}

// GetAnalysisConfig returns the analysis section.
func GetAnalysisConfig() AnalysisConfig {
	return AnalysisConfig{
		Mode:        viper.GetString("analysis.mode"),
		Date:        viper.GetString("analysis.date"),
		TimeOfDay:   viper.GetString("analysis.timeOfDay"),
		CellSize:    viper.GetFloat64("analysis.cellSize"),
		StepMinutes: viper.GetInt("analysis.stepMinutes"),
		Workers:     viper.GetInt("analysis.workers"),
	}
}

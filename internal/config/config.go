package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the config file looked up in the config directory.
const FileName = "monbattle.cfg.json"

// MemoryConfig holds in-memory/JSON storage backend settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
	SaveDir        string `json:"saveDir" mapstructure:"saveDir"`
}

// SQLiteConfig holds the embedded database settings.
type SQLiteConfig struct {
	Path         string        `json:"path" mapstructure:"path"`
	DumpInterval time.Duration `json:"dumpInterval" mapstructure:"dumpInterval"`
}

// WebSocketConfig holds the spectator stream settings.
type WebSocketConfig struct {
	URL    string `json:"url" mapstructure:"url"`
	Secret string `json:"secret" mapstructure:"secret"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	Type      string          `json:"type" mapstructure:"type"`
	Memory    MemoryConfig    `json:"memory" mapstructure:"memory"`
	SQLite    SQLiteConfig    `json:"sqlite" mapstructure:"sqlite"`
	WebSocket WebSocketConfig `json:"websocket" mapstructure:"websocket"`
}

// OTelConfig holds OpenTelemetry settings.
type OTelConfig struct {
	Enabled      bool          `json:"enabled" mapstructure:"enabled"`
	ServiceName  string        `json:"serviceName" mapstructure:"serviceName"`
	BatchTimeout time.Duration `json:"batchTimeout" mapstructure:"batchTimeout"`
	Endpoint     string        `json:"endpoint" mapstructure:"endpoint"`
	Insecure     bool          `json:"insecure" mapstructure:"insecure"`
}

// BattleConfig tunes rewards, the RNG seed and log presentation.
type BattleConfig struct {
	TrainerExpBonus float64 `json:"trainerExpBonus" mapstructure:"trainerExpBonus"`
	DefaultReward   int     `json:"defaultReward" mapstructure:"defaultReward"`
	WhiteoutPenalty float64 `json:"whiteoutPenalty" mapstructure:"whiteoutPenalty"`
	LogWindow       int     `json:"logWindow" mapstructure:"logWindow"`
	// Seed 0 means seed from the clock.
	Seed         uint64        `json:"seed" mapstructure:"seed"`
	MessageDelay time.Duration `json:"messageDelay" mapstructure:"messageDelay"`
	CatalogDir   string        `json:"catalogDir" mapstructure:"catalogDir"`
	SaveSlot     string        `json:"saveSlot" mapstructure:"saveSlot"`
}

// InfluxConfig holds the metrics sink settings.
type InfluxConfig struct {
	Enabled  bool   `json:"enabled" mapstructure:"enabled"`
	Host     string `json:"host" mapstructure:"host"`
	Port     string `json:"port" mapstructure:"port"`
	Protocol string `json:"protocol" mapstructure:"protocol"`
	Token    string `json:"token" mapstructure:"token"`
	Org      string `json:"org" mapstructure:"org"`
	Bucket   string `json:"bucket" mapstructure:"bucket"`
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	setDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %v", err)
	}

	return nil
}

func setDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./logs")

	viper.SetDefault("battle.trainerExpBonus", 1.5)
	viper.SetDefault("battle.defaultReward", 2000)
	viper.SetDefault("battle.whiteoutPenalty", 0.25)
	viper.SetDefault("battle.logWindow", 20)
	viper.SetDefault("battle.seed", 0)
	viper.SetDefault("ui.messageDelay", "0s")
	viper.SetDefault("catalog.dir", "")
	viper.SetDefault("save.slot", "default")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./replays")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.memory.saveDir", "./saves")
	viper.SetDefault("storage.sqlite.path", "./monbattle.db")
	viper.SetDefault("storage.sqlite.dumpInterval", "3m")
	viper.SetDefault("storage.websocket.url", "")
	viper.SetDefault("storage.websocket.secret", "")

	viper.SetDefault("api.serverUrl", "http://localhost:5000")
	viper.SetDefault("api.apiKey", "")
	viper.SetDefault("api.enabled", false)

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "monbattle")

	viper.SetDefault("influx.enabled", false)
	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "monbattle")
	viper.SetDefault("influx.bucket", "battles")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "monbattle")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("monitor.interval", "30s")
}

// GetStorageConfig returns the storage backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
			SaveDir:        viper.GetString("storage.memory.saveDir"),
		},
		SQLite: SQLiteConfig{
			Path:         viper.GetString("storage.sqlite.path"),
			DumpInterval: viper.GetDuration("storage.sqlite.dumpInterval"),
		},
		WebSocket: WebSocketConfig{
			URL:    viper.GetString("storage.websocket.url"),
			Secret: viper.GetString("storage.websocket.secret"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetBattleConfig returns the battle tuning settings.
func GetBattleConfig() BattleConfig {
	return BattleConfig{
		TrainerExpBonus: viper.GetFloat64("battle.trainerExpBonus"),
		DefaultReward:   viper.GetInt("battle.defaultReward"),
		WhiteoutPenalty: viper.GetFloat64("battle.whiteoutPenalty"),
		LogWindow:       viper.GetInt("battle.logWindow"),
		Seed:            viper.GetUint64("battle.seed"),
		MessageDelay:    viper.GetDuration("ui.messageDelay"),
		CatalogDir:      viper.GetString("catalog.dir"),
		SaveSlot:        viper.GetString("save.slot"),
	}
}

// GetInfluxConfig returns the metrics sink settings.
func GetInfluxConfig() InfluxConfig {
	return InfluxConfig{
		Enabled:  viper.GetBool("influx.enabled"),
		Host:     viper.GetString("influx.host"),
		Port:     viper.GetString("influx.port"),
		Protocol: viper.GetString("influx.protocol"),
		Token:    viper.GetString("influx.token"),
		Org:      viper.GetString("influx.org"),
		Bucket:   viper.GetString("influx.bucket"),
	}
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

// GetDuration returns a duration config value.
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}

package config

type PluggableStorageEngine struct {
	LogLevel LogLevel `mapstructure:"log_level"`

	Provider StorageProvider   `mapstructure:"provider"`
	Postgres PostgresPSEConfig `mapstructure:"postgres"`
	SQLite   SQLitePSEConfig   `mapstructure:"sqlite"`
}

type SQLitePSEConfig struct {
	DatabasePath string `mapstructure:"database_path"`
	InMemory     bool   `mapstructure:"in_memory"`
}

type PostgresPSEConfig struct {
	Hostname string   `mapstructure:"hostname"`
	Port     int      `mapstructure:"port"`
	Username string   `mapstructure:"username"`
	Password Password `mapstructure:"password"`
	Database string   `mapstructure:"database"`
}

type StorageProvider string

const (
	Postgres StorageProvider = "postgres"
	SQLite   StorageProvider = "sqlite"
)

// TelemetryStorage optionally moves readings and metrics out of the
// relational store. An empty provider keeps them next to devices and alerts.
type TelemetryStorage struct {
	LogLevel LogLevel                 `mapstructure:"log_level"`
	Provider TelemetryStorageProvider `mapstructure:"provider"`
	InfluxDB InfluxDBConfig           `mapstructure:"influxdb"`
}

type TelemetryStorageProvider string

const (
	RelationalTelemetry TelemetryStorageProvider = ""
	InfluxDBTelemetry   TelemetryStorageProvider = "influxdb"
)

type InfluxDBConfig struct {
	URL          string   `mapstructure:"url"`
	Token        Password `mapstructure:"token"`
	Organization string   `mapstructure:"organization"`
	Bucket       string   `mapstructure:"bucket"`
}

type RedisCache struct {
	LogLevel LogLevel `mapstructure:"log_level"`
	Enabled  bool     `mapstructure:"enabled"`
	Address  string   `mapstructure:"address"`
	Password Password `mapstructure:"password"`
	DB       int      `mapstructure:"db"`
	TTL      string   `mapstructure:"ttl"`
}

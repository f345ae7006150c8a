package config

type HTTPProtocol string

const (
	HTTPS HTTPProtocol = "https"
	HTTP  HTTPProtocol = "http"
)

// HttpServer is the configuration for the HTTP server

type HttpServer struct {
	LogLevel           LogLevel     `mapstructure:"log_level"`
	HealthCheckLogging bool         `mapstructure:"health_check"`
	ListenAddress      string       `mapstructure:"listen_address"`
	Port               int          `mapstructure:"port"`
	Protocol           HTTPProtocol `mapstructure:"protocol"`
	CertFile           string       `mapstructure:"cert_file"`
	KeyFile            string       `mapstructure:"key_file"`
	BasePath           string       `mapstructure:"base_path"`
}

// HTTPClient is the configuration used by the SDK and the CLI

type HTTPClient struct {
	LogLevel LogLevel     `mapstructure:"log_level"`
	Protocol HTTPProtocol `mapstructure:"protocol"`
	BasePath string       `mapstructure:"base_path"`
	TenantID string       `mapstructure:"tenant_id"`
	Timeout  string       `mapstructure:"timeout"`

	BasicConnection `mapstructure:",squash"`
}

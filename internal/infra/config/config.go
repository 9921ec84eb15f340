package config

import (
	"github.com/caarlos0/env/v11"
)

type Config struct {
	TargetWidth  int `env:"E57X_TARGET_WIDTH"  envDefault:"8192"`
	TargetHeight int `env:"E57X_TARGET_HEIGHT" envDefault:"4096"`
	JPEGQuality  int `env:"E57X_JPEG_QUALITY"  envDefault:"50"`

	ExportTool        string `env:"E57X_EXPORT_TOOL"         envDefault:"e57-export"`
	ExportTimeoutSecs int    `env:"E57X_EXPORT_TIMEOUT_SECS" envDefault:"0"`
	TempDir           string `env:"E57X_TEMP_DIR"            envDefault:""`

	ProgressBufferSize int `env:"E57X_PROGRESS_BUFFER" envDefault:"64"`

	MetricsPort  int    `env:"E57X_METRICS_PORT"  envDefault:"0"`
	OTLPEndpoint string `env:"E57X_OTLP_ENDPOINT" envDefault:""`
	LogLevel     string `env:"E57X_LOG_LEVEL"     envDefault:"info"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

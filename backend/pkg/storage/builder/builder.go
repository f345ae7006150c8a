package builder

import (
	"fmt"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/storage/influxdb"
	log "github.com/sirupsen/logrus"
)

func BuildStorageEngine(logger *log.Entry, conf config.PluggableStorageEngine) (storage.StorageEngine, error) {
	builder := storage.GetEngineBuilder(conf.Provider)
	if builder == nil {
		return nil, fmt.Errorf("no storage engine of type %s", conf.Provider)
	}

	return builder(logger, conf)
}

// BuildTelemetryStorage returns the time series store for readings and metrics.
// Without a dedicated provider readings live next to the rest of the relational data.
func BuildTelemetryStorage(logger *log.Entry, conf config.TelemetryStorage, engine storage.StorageEngine) (storage.TelemetryRepo, error) {
	switch conf.Provider {
	case config.RelationalTelemetry:
		return engine.GetTelemetryStorage()
	case config.InfluxDBTelemetry:
		logger.Infof("telemetry will be stored in InfluxDB bucket '%s'", conf.InfluxDB.Bucket)
		return influxdb.NewTelemetryRepository(logger, conf.InfluxDB)
	default:
		return nil, fmt.Errorf("no telemetry storage of type %s", conf.Provider)
	}
}

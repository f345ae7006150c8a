package postgres

import (
	"context"
	"fmt"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/storage/gormstore"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

func Register() {
	storage.RegisterStorageEngine(config.Postgres, func(logger *log.Entry, conf config.PluggableStorageEngine) (storage.StorageEngine, error) {
		return NewStorageEngine(logger, conf.Postgres)
	})
}

type PostgresStorageEngine struct {
	storage.CommonStorageEngine
	Config config.PostgresPSEConfig
	logger *log.Entry
	db     *gorm.DB
}

func NewStorageEngine(logger *log.Entry, config config.PostgresPSEConfig) (storage.StorageEngine, error) {
	return &PostgresStorageEngine{
		Config: config,
		logger: logger,
	}, nil
}

func (s *PostgresStorageEngine) GetProvider() config.StorageProvider {
	return config.Postgres
}

// connection opens the database once and applies pending migrations.
func (s *PostgresStorageEngine) connection() (*gorm.DB, error) {
	if s.db != nil {
		return s.db, nil
	}

	psqlCli, err := CreatePostgresDBConnection(s.logger, s.Config)
	if err != nil {
		return nil, fmt.Errorf("could not create postgres client: %s", err)
	}

	m, err := NewMigrator(s.logger, psqlCli)
	if err != nil {
		return nil, err
	}

	if err := m.MigrateToLatest(context.Background()); err != nil {
		return nil, err
	}

	s.db = psqlCli
	return s.db, nil
}

func (s *PostgresStorageEngine) GetDeviceStorage() (storage.DeviceRepo, error) {
	if s.Devices == nil {
		db, err := s.connection()
		if err != nil {
			return nil, err
		}

		s.Devices, err = gormstore.NewDeviceRepository(db)
		if err != nil {
			return nil, fmt.Errorf("could not initialize postgres Device client: %s", err)
		}
	}

	return s.Devices, nil
}

func (s *PostgresStorageEngine) GetTelemetryStorage() (storage.TelemetryRepo, error) {
	if s.Telemetry == nil {
		db, err := s.connection()
		if err != nil {
			return nil, err
		}

		s.Telemetry, err = gormstore.NewTelemetryRepository(db)
		if err != nil {
			return nil, fmt.Errorf("could not initialize postgres Telemetry client: %s", err)
		}
	}

	return s.Telemetry, nil
}

func (s *PostgresStorageEngine) GetAlertStorage() (storage.AlertRepo, error) {
	if s.Alerts == nil {
		db, err := s.connection()
		if err != nil {
			return nil, err
		}

		s.Alerts, err = gormstore.NewAlertRepository(db)
		if err != nil {
			return nil, fmt.Errorf("could not initialize postgres Alert client: %s", err)
		}
	}

	return s.Alerts, nil
}

func (s *PostgresStorageEngine) GetStatusLogStorage() (storage.StatusLogRepo, error) {
	if s.StatusLogs == nil {
		db, err := s.connection()
		if err != nil {
			return nil, err
		}

		s.StatusLogs, err = gormstore.NewStatusLogRepository(db)
		if err != nil {
			return nil, fmt.Errorf("could not initialize postgres Status Log client: %s", err)
		}
	}

	return s.StatusLogs, nil
}

package sqlite

import (
	"fmt"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/engines/storage"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/storage/gormstore"
	log "github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func Register() {
	storage.RegisterStorageEngine(config.SQLite, func(logger *log.Entry, conf config.PluggableStorageEngine) (storage.StorageEngine, error) {
		return NewStorageEngine(logger, conf.SQLite)
	})
}

type SQLiteStorageEngine struct {
	storage.CommonStorageEngine
	Config config.SQLitePSEConfig
	logger *log.Entry
	db     *gorm.DB
}

func NewStorageEngine(logger *log.Entry, config config.SQLitePSEConfig) (storage.StorageEngine, error) {
	return &SQLiteStorageEngine{
		Config: config,
		logger: logger,
	}, nil
}

func CreateDBConnection(logger *log.Entry, cfg config.SQLitePSEConfig) (*gorm.DB, error) {
	dsn := cfg.DatabasePath
	if cfg.InMemory {
		dsn = "file::memory:?cache=shared"
	}

	if dsn == "" {
		return nil, fmt.Errorf("sqlite database path is empty")
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormstore.NewGormLogger(logger),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// sqlite allows a single writer
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(gormstore.Models()...)
	if err != nil {
		return nil, fmt.Errorf("could not migrate sqlite schema: %s", err)
	}

	return db, nil
}

func (s *SQLiteStorageEngine) GetProvider() config.StorageProvider {
	return config.SQLite
}

func (s *SQLiteStorageEngine) connection() (*gorm.DB, error) {
	if s.db == nil {
		db, err := CreateDBConnection(s.logger, s.Config)
		if err != nil {
			return nil, fmt.Errorf("could not create sqlite client: %s", err)
		}
		s.db = db
	}

	return s.db, nil
}

func (s *SQLiteStorageEngine) GetDeviceStorage() (storage.DeviceRepo, error) {
	if s.Devices == nil {
		db, err := s.connection()
		if err != nil {
			return nil, err
		}

		s.Devices, err = gormstore.NewDeviceRepository(db)
		if err != nil {
			return nil, fmt.Errorf("could not initialize sqlite Device client: %s", err)
		}
	}

	return s.Devices, nil
}

func (s *SQLiteStorageEngine) GetTelemetryStorage() (storage.TelemetryRepo, error) {
	if s.Telemetry == nil {
		db, err := s.connection()
		if err != nil {
			return nil, err
		}

		s.Telemetry, err = gormstore.NewTelemetryRepository(db)
		if err != nil {
			return nil, fmt.Errorf("could not initialize sqlite Telemetry client: %s", err)
		}
	}

	return s.Telemetry, nil
}

func (s *SQLiteStorageEngine) GetAlertStorage() (storage.AlertRepo, error) {
	if s.Alerts == nil {
		db, err := s.connection()
		if err != nil {
			return nil, err
		}

		s.Alerts, err = gormstore.NewAlertRepository(db)
		if err != nil {
			return nil, fmt.Errorf("could not initialize sqlite Alert client: %s", err)
		}
	}

	return s.Alerts, nil
}

func (s *SQLiteStorageEngine) GetStatusLogStorage() (storage.StatusLogRepo, error) {
	if s.StatusLogs == nil {
		db, err := s.connection()
		if err != nil {
			return nil, err
		}

		s.StatusLogs, err = gormstore.NewStatusLogRepository(db)
		if err != nil {
			return nil, fmt.Errorf("could not initialize sqlite Status Log client: %s", err)
		}
	}

	return s.StatusLogs, nil
}

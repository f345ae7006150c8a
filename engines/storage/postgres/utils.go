package postgres

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"github.com/lamassuiot/lamassu-iot-gateway/core/pkg/config"
	"github.com/lamassuiot/lamassu-iot-gateway/engines/storage/gormstore"
	"github.com/pressly/goose/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

const DefaultDatabase = "iotgateway"

func CreatePostgresDBConnection(logger *logrus.Entry, cfg config.PostgresPSEConfig) (*gorm.DB, error) {
	database := cfg.Database
	if database == "" {
		database = DefaultDatabase
	}

	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable", cfg.Hostname, cfg.Username, cfg.Password, database, cfg.Port)
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormstore.NewGormLogger(logger),
	})

	return db, err
}

// MigrationsFS exposes the embedded goose migrations.
func MigrationsFS() (fs.FS, error) {
	return fs.Sub(embedMigrations, "migrations")
}

type migrator struct {
	logger *logrus.Entry
	Goose  *goose.Provider
}

func NewMigrator(log *logrus.Entry, db *gorm.DB) (*migrator, error) {
	lMig := log.WithField("migrations", db.Migrator().CurrentDatabase())

	migrationsFS, err := MigrationsFS()
	if err != nil {
		return nil, fmt.Errorf("could not obtain migrations subdirectory: %s", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("could not get db connection: %s", err)
	}

	m, err := goose.NewProvider(goose.DialectPostgres, sqlDB, migrationsFS)
	if err != nil {
		return nil, fmt.Errorf("could not create migrator: %s", err)
	}

	return &migrator{
		logger: lMig,
		Goose:  m,
	}, nil
}

func (migrator *migrator) MigrateToLatest(ctx context.Context) error {
	c, t, err := migrator.Goose.GetVersions(ctx)
	if err != nil {
		return fmt.Errorf("could not get db version: %s", err)
	}

	migrator.logger.Infof("Current version: %d", c)
	migrator.logger.Infof("Target version: %d", t)

	r, err := migrator.Goose.UpTo(ctx, t)
	if err != nil {
		return fmt.Errorf("could not migrate db: %s", err)
	}

	migrator.logger.Infof("Migrated %d steps", len(r))
	return nil
}

package database

import (
	"github.com/pkg/errors"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"whatsapp-cloud-go/internal/config"
	"whatsapp-cloud-go/internal/models"
)

// ErrDisabled is returned by Open when the journal is switched off.
var ErrDisabled = errors.New("database: journal disabled")

// Open connects to the journal database selected by cfg.DBDriver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case config.DriverSQLite, "":
		dialector = sqlite.Open(cfg.DBDSN)
	case config.DriverPostgres:
		dialector = postgres.Open(cfg.DBDSN)
	case config.DriverNone:
		return nil, ErrDisabled
	default:
		return nil, errors.Errorf("database: unsupported driver %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, errors.Wrapf(err, "database: connect %s", cfg.DBDriver)
	}
	return db, nil
}

// Migrate creates or updates the journal tables.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "database: auto-migrate")
	}
	return nil
}

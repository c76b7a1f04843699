package database

import (
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whatsapp-cloud-go/internal/config"
	"whatsapp-cloud-go/internal/models"
)

func TestOpen_SQLiteAndMigrate(t *testing.T) {
	db, err := Open(&config.Config{DBDriver: config.DriverSQLite, DBDSN: filepath.Join(t.TempDir(), "journal.db")})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	for _, table := range []string{"received_messages", "delivery_receipts", "sent_messages"} {
		assert.True(t, db.Migrator().HasTable(table), table)
	}
	assert.True(t, db.Migrator().HasIndex(&models.ReceivedMessage{}, "WaMessageID"))
}

func TestOpen_Disabled(t *testing.T) {
	db, err := Open(&config.Config{DBDriver: config.DriverNone})
	assert.Nil(t, db)
	assert.True(t, errors.Is(err, ErrDisabled))
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

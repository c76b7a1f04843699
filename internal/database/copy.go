package database

import (
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"whatsapp-cloud-go/internal/models"
)

const copyBatchSize = 500

// CopyJournal copies every journal row from src into dst, keeping ids.
// Rows already present in dst are skipped. It returns the number of rows
// read per table.
func CopyJournal(src, dst *gorm.DB) (map[string]int, error) {
	counts := make(map[string]int)

	var received []models.ReceivedMessage
	if err := copyTable(src, dst, &received); err != nil {
		return counts, errors.Wrap(err, "received_messages")
	}
	counts[models.ReceivedMessage{}.TableName()] = len(received)

	var receipts []models.DeliveryReceipt
	if err := copyTable(src, dst, &receipts); err != nil {
		return counts, errors.Wrap(err, "delivery_receipts")
	}
	counts[models.DeliveryReceipt{}.TableName()] = len(receipts)

	var sent []models.SentMessage
	if err := copyTable(src, dst, &sent); err != nil {
		return counts, errors.Wrap(err, "sent_messages")
	}
	counts[models.SentMessage{}.TableName()] = len(sent)

	return counts, nil
}

// copyTable reads all rows of the slice pointed to by rows from src and
// writes them to dst in one transaction.
func copyTable[T any](src, dst *gorm.DB, rows *[]T) error {
	if err := src.Find(rows).Error; err != nil {
		return errors.Wrap(err, "database: read source")
	}
	if len(*rows) == 0 {
		return nil
	}
	return dst.Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(rows, copyBatchSize).Error
		return errors.Wrap(err, "database: write destination")
	})
}

// SyncSequences moves the PostgreSQL id sequences past the highest copied id.
// Other dialects need no adjustment.
func SyncSequences(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			return errors.Wrap(err, "database: parse model")
		}
		table := stmt.Schema.Table
		query := "SELECT setval(pg_get_serial_sequence('" + table + "', 'id'), coalesce(max(id), 0) + 1, false) FROM " + table
		if err := db.Exec(query).Error; err != nil {
			return errors.Wrapf(err, "database: sync sequence for %s", table)
		}
	}
	return nil
}

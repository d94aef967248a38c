package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"brokerage/server/internal/models"
)

// ErrSchemaMissing is returned when a record table does not exist.
var ErrSchemaMissing = errors.New("record schema is missing")

const upsertChunkSize = 100

// Database is the SQLite-backed record store used locally and for demos.
type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access sql handle: %w", err)
	}
	// SQLite serializes writers; a single connection also keeps :memory: databases intact.
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Database{db: db}, nil
}

func (d *Database) ListProperties(ctx context.Context) ([]models.PropertyRecord, error) {
	var records []models.PropertyRecord
	if err := d.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, wrapQueryError("properties", err)
	}
	return records, nil
}

func (d *Database) ListClients(ctx context.Context) ([]models.ClientRecord, error) {
	var records []models.ClientRecord
	if err := d.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, wrapQueryError("clients", err)
	}
	return records, nil
}

func (d *Database) ListLeads(ctx context.Context) ([]models.LeadRecord, error) {
	var records []models.LeadRecord
	if err := d.db.WithContext(ctx).Order("created_at").Find(&records).Error; err != nil {
		return nil, wrapQueryError("leads", err)
	}
	return records, nil
}

// UpsertBatch writes every record of the batch in one transaction, replacing rows with the same id.
func (d *Database) UpsertBatch(ctx context.Context, batch models.RecordBatch) error {
	return d.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		upsert := tx.Clauses(clause.OnConflict{UpdateAll: true})
		if len(batch.Properties) > 0 {
			if err := upsert.CreateInBatches(batch.Properties, upsertChunkSize).Error; err != nil {
				return fmt.Errorf("failed to upsert properties: %w", err)
			}
		}
		if len(batch.Clients) > 0 {
			if err := upsert.CreateInBatches(batch.Clients, upsertChunkSize).Error; err != nil {
				return fmt.Errorf("failed to upsert clients: %w", err)
			}
		}
		if len(batch.Leads) > 0 {
			if err := upsert.CreateInBatches(batch.Leads, upsertChunkSize).Error; err != nil {
				return fmt.Errorf("failed to upsert leads: %w", err)
			}
		}
		return nil
	})
}

func (d *Database) Counts(ctx context.Context) (models.RecordCounts, error) {
	var counts models.RecordCounts
	db := d.db.WithContext(ctx)
	if err := db.Model(&models.PropertyRecord{}).Count(&counts.Properties).Error; err != nil {
		return counts, wrapQueryError("properties", err)
	}
	if err := db.Model(&models.ClientRecord{}).Count(&counts.Clients).Error; err != nil {
		return counts, wrapQueryError("clients", err)
	}
	if err := db.Model(&models.LeadRecord{}).Count(&counts.Leads).Error; err != nil {
		return counts, wrapQueryError("leads", err)
	}
	return counts, nil
}

func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GetDB exposes the gorm handle for tests and migrations.
func (d *Database) GetDB() *gorm.DB {
	return d.db
}

func wrapQueryError(table string, err error) error {
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("%w: %s: %v", ErrSchemaMissing, table, err)
	}
	return fmt.Errorf("failed to query %s: %w", table, err)
}

package store

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/qs-lzh/cinema-booking/internal/model"
)

const defaultDocumentKey = "cinema"

// documentRow stores the whole cinema document as one JSON value.
type documentRow struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Body      string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (documentRow) TableName() string {
	return "cinema_documents"
}

// GormStore keeps the document in a database row. Update locks the row
// with SELECT ... FOR UPDATE, so writers are serialized across processes.
type GormStore struct {
	db  *gorm.DB
	key string
}

var _ Store = (*GormStore)(nil)

func NewGormStore(ctx context.Context, db *gorm.DB) (*GormStore, error) {
	if err := db.WithContext(ctx).AutoMigrate(&documentRow{}); err != nil {
		return nil, fmt.Errorf("migrate documents table: %w", err)
	}

	body, err := EncodeDocument(model.NewDocument())
	if err != nil {
		return nil, err
	}
	row := documentRow{ID: defaultDocumentKey, Body: string(body), UpdatedAt: time.Now().UTC()}
	if err := db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return nil, fmt.Errorf("create document row: %w", err)
	}

	return &GormStore{
		db:  db,
		key: defaultDocumentKey,
	}, nil
}

func (s *GormStore) View(ctx context.Context, fn func(doc *model.Document) error) error {
	row, err := gorm.G[documentRow](s.db).Where(&documentRow{ID: s.key}).First(ctx)
	if err != nil {
		return fmt.Errorf("load document: %w", err)
	}
	doc, err := DecodeDocument([]byte(row.Body))
	if err != nil {
		return err
	}
	return fn(doc)
}

func (s *GormStore) Update(ctx context.Context, fn func(doc *model.Document) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row documentRow
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where(&documentRow{ID: s.key}).First(&row).Error; err != nil {
			return fmt.Errorf("lock document: %w", err)
		}

		doc, err := DecodeDocument([]byte(row.Body))
		if err != nil {
			return err
		}
		if err := fn(doc); err != nil {
			return err
		}

		body, err := EncodeDocument(doc)
		if err != nil {
			return fmt.Errorf("encode document: %w", err)
		}
		return tx.Model(&documentRow{}).Where(&documentRow{ID: s.key}).
			Updates(map[string]any{"body": string(body), "updated_at": time.Now().UTC()}).Error
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

package backend

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type document struct {
	Collection string         `gorm:"primaryKey;size:191"`
	ID         string         `gorm:"primaryKey;type:char(36)"`
	Data       datatypes.JSON `gorm:"not null"`
	CreatedAt  time.Time      `gorm:"type:datetime(3);not null"`
	UpdatedAt  time.Time      `gorm:"type:datetime(3);not null"`
}

func (document) TableName() string { return "documents" }

// GormStore keeps every collection in a single documents table keyed by
// (collection, id). Each successful write publishes a change
// notification for the collection.
type GormStore struct {
	db       *gorm.DB
	notifier Notifier
}

func NewGormStore(db *gorm.DB, notifier Notifier) *GormStore {
	return &GormStore{db: db, notifier: notifier}
}

func (s *GormStore) FetchAll(ctx context.Context, collection string) ([]Document, error) {
	var recs []document
	err := s.db.WithContext(ctx).
		Where("collection = ?", collection).
		Order("created_at ASC, id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	out := make([]Document, len(recs))
	for i, r := range recs {
		out[i] = Document{ID: r.ID, Data: json.RawMessage(r.Data)}
	}
	return out, nil
}

func (s *GormStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var rec document
	err := s.db.WithContext(ctx).
		First(&rec, "collection = ? AND id = ?", collection, id).Error
	if err != nil {
		return Document{}, err
	}
	return Document{ID: rec.ID, Data: json.RawMessage(rec.Data)}, nil
}

func (s *GormStore) Create(ctx context.Context, collection string, data json.RawMessage) (string, error) {
	for {
		rec := document{
			Collection: collection,
			ID:         uuid.NewString(),
			Data:       datatypes.JSON(data),
			CreatedAt:  time.Now(),
			UpdatedAt:  time.Now(),
		}
		if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
			if isDuplicateKey(err) {
				continue
			}
			return "", err
		}
		s.publish(collection)
		return rec.ID, nil
	}
}

func (s *GormStore) Upsert(ctx context.Context, collection, id string, data json.RawMessage) error {
	rec := document{
		Collection: collection,
		ID:         id,
		Data:       datatypes.JSON(data),
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
		}).
		Create(&rec).Error
	if err != nil {
		return err
	}
	s.publish(collection)
	return nil
}

func (s *GormStore) Delete(ctx context.Context, collection, id string) error {
	err := s.db.WithContext(ctx).
		Delete(&document{}, "collection = ? AND id = ?", collection, id).Error
	if err != nil {
		return err
	}
	s.publish(collection)
	return nil
}

func (s *GormStore) publish(collection string) {
	if s.notifier == nil {
		return
	}
	// Notification failures do not fail the write; subscribers converge
	// on their next successful resync.
	_ = s.notifier.Publish(collection)
}

func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return me.Number == 1062
	}
	return false
}

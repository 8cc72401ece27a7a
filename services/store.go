package services

import (
	"fmt"

	"bosjol-tactical/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Collection names understood by the record store.
const (
	CollectionPlayers               = "players"
	CollectionEvents                = "events"
	CollectionSignups               = "signups"
	CollectionAttendees             = "attendees"
	CollectionTransactions          = "transactions"
	CollectionMatchHistory          = "match_history"
	CollectionExperienceAdjustments = "experience_adjustments"
)

// RecordStore is the only persistence boundary the attendance reconciler and
// finalization engine write through. Four primitives, no query language:
// insert with a generated id, upsert at a caller-chosen id, full replace,
// delete by id.
type RecordStore interface {
	CreateRecord(collection string, record any) (string, error)
	SetRecord(collection string, id string, record any) error
	UpdateRecord(collection string, record any) error
	DeleteRecord(collection string, id string) error
}

// identifiable lets CreateRecord assign generated ids without reflection.
type identifiable interface {
	SetID(id string)
	GetID() string
}

// GormRecordStore implements RecordStore on top of GORM/Postgres. Each call
// is an independent write; callers get no transaction spanning calls.
type GormRecordStore struct {
	DB *gorm.DB
}

func NewGormRecordStore(db *gorm.DB) *GormRecordStore {
	return &GormRecordStore{DB: db}
}

// prototype returns an empty model for a collection, used to resolve the
// table on deletes.
func prototype(collection string) (any, error) {
	switch collection {
	case CollectionPlayers:
		return &models.Player{}, nil
	case CollectionEvents:
		return &models.Event{}, nil
	case CollectionSignups:
		return &models.Signup{}, nil
	case CollectionAttendees:
		return &models.Attendee{}, nil
	case CollectionTransactions:
		return &models.Transaction{}, nil
	case CollectionMatchHistory:
		return &models.MatchHistoryEntry{}, nil
	case CollectionExperienceAdjustments:
		return &models.ExperienceAdjustment{}, nil
	default:
		return nil, fmt.Errorf("unknown collection %q", collection)
	}
}

func (s *GormRecordStore) CreateRecord(collection string, record any) (string, error) {
	if _, err := prototype(collection); err != nil {
		return "", err
	}
	if ider, ok := record.(identifiable); ok && ider.GetID() == "" {
		ider.SetID(uuid.NewString())
	}
	if err := s.DB.Create(record).Error; err != nil {
		return "", err
	}
	if ider, ok := record.(identifiable); ok {
		return ider.GetID(), nil
	}
	return "", nil
}

// SetRecord upserts at a caller-chosen id. Used for deterministic signup and
// transaction identities so repeated writes land on the same row.
func (s *GormRecordStore) SetRecord(collection string, id string, record any) error {
	if _, err := prototype(collection); err != nil {
		return err
	}
	if ider, ok := record.(identifiable); ok {
		ider.SetID(id)
	}
	return s.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(record).Error
}

func (s *GormRecordStore) UpdateRecord(collection string, record any) error {
	if _, err := prototype(collection); err != nil {
		return err
	}
	return s.DB.Save(record).Error
}

func (s *GormRecordStore) DeleteRecord(collection string, id string) error {
	proto, err := prototype(collection)
	if err != nil {
		return err
	}
	return s.DB.Unscoped().Delete(proto, "id = ?", id).Error
}

package session

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yeremiapane/lunchorder/models"
)

// State is what survives between runs: the bearer token and the user it belongs to.
type State struct {
	Token string
	User  models.User
}

func (s State) Empty() bool {
	return s.Token == ""
}

// Store persists a State. Load returns an empty State when nothing is stored.
type Store interface {
	Load() (State, error)
	Save(State) error
	Clear() error
}

// Record is the single persisted session row.
type Record struct {
	ID        uint   `gorm:"primaryKey"`
	Token     string `gorm:"type:text;not null"`
	UserJSON  string `gorm:"type:text;not null"`
	UpdatedAt time.Time
}

func (Record) TableName() string {
	return "client_sessions"
}

const recordID = 1

type GormStore struct {
	db *gorm.DB
}

// NewGormStore migrates the session table.
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &GormStore{db: db}, nil
}

func (s *GormStore) Load() (State, error) {
	var rec Record
	err := s.db.First(&rec, recordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return State{}, nil
	}
	if err != nil {
		return State{}, err
	}

	st := State{Token: rec.Token}
	if rec.UserJSON != "" {
		if err := json.Unmarshal([]byte(rec.UserJSON), &st.User); err != nil {
			return State{}, err
		}
	}
	return st, nil
}

func (s *GormStore) Save(st State) error {
	raw, err := json.Marshal(st.User)
	if err != nil {
		return err
	}
	return s.db.Save(&Record{ID: recordID, Token: st.Token, UserJSON: string(raw)}).Error
}

func (s *GormStore) Clear() error {
	return s.db.Delete(&Record{}, recordID).Error
}

// MemoryStore keeps the session for the process lifetime only.
type MemoryStore struct {
	mu    sync.Mutex
	state State
}

func (m *MemoryStore) Load() (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state, nil
}

func (m *MemoryStore) Save(st State) error {
	m.mu.Lock()
	m.state = st
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Clear() error {
	m.mu.Lock()
	m.state = State{}
	m.mu.Unlock()
	return nil
}

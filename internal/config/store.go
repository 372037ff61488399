package config

import (
	"fmt"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// storedEntry is the persisted form of a wizard-created Entry.
type storedEntry struct {
	gorm.Model
	StationID string `gorm:"uniqueIndex:idx_station_kind"`
	Kind      string `gorm:"uniqueIndex:idx_station_kind"`
	Name      string
	TimeZone  string
	Units     string
	Lat       float64
	Lng       float64
}

// Store persists wizard-created entries so they come back on restart.
type Store struct {
	db *gorm.DB
}

// OpenPostgres connects using the standard PG* environment variables.
func OpenPostgres() (*Store, error) {
	dsn := fmt.Sprintf("host=%s user=postgres password=%s dbname=tidewatch port=%s sslmode=disable",
		os.Getenv("PGHOST"),
		os.Getenv("PGPASSWORD"),
		os.Getenv("PGPORT"))
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	return NewStore(db)
}

// NewStore wraps an open database handle, migrating the entries table.
func NewStore(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&storedEntry{}); err != nil {
		return nil, fmt.Errorf("migrate entries: %w", err)
	}
	return &Store{db: db}, nil
}

// Save persists an entry.
func (s *Store) Save(e Entry) error {
	rec := storedEntry{
		StationID: e.StationID,
		Kind:      string(e.Kind),
		Name:      e.Name,
		TimeZone:  e.TimeZone,
		Units:     e.Units,
		Lat:       e.Lat,
		Lng:       e.Lng,
	}
	if tx := s.db.Create(&rec); tx.Error != nil {
		return fmt.Errorf("save entry %s: %w", e.ID(), tx.Error)
	}
	return nil
}

// List returns all persisted entries.
func (s *Store) List() ([]Entry, error) {
	var recs []storedEntry
	if tx := s.db.Find(&recs); tx.Error != nil {
		return nil, fmt.Errorf("list entries: %w", tx.Error)
	}

	entries := make([]Entry, 0, len(recs))
	for _, r := range recs {
		entries = append(entries, Entry{
			StationID: r.StationID,
			Kind:      Kind(r.Kind),
			Name:      r.Name,
			TimeZone:  r.TimeZone,
			Units:     r.Units,
			Lat:       r.Lat,
			Lng:       r.Lng,
		})
	}
	return entries, nil
}

// Exists reports whether an entry with the same station and kind is saved.
func (s *Store) Exists(stationID string, kind Kind) (bool, error) {
	var count int64
	tx := s.db.Model(&storedEntry{}).
		Where("station_id = ? AND kind = ?", stationID, string(kind)).
		Count(&count)
	if tx.Error != nil {
		return false, tx.Error
	}
	return count > 0, nil
}

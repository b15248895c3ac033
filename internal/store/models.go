// Package store provides database persistence for ingested Callgrind
// sessions and the suggestions the advisor derives from them.
package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// IngestSession represents the ingest_sessions table: one row per parsed
// Callgrind dump, recording where it came from and the headline counts
// from its Summary.
type IngestSession struct {
	ID               int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID        string    `gorm:"column:session_id;type:varchar(64);uniqueIndex"`
	SourcePath       string    `gorm:"column:source_path;type:varchar(1024)"`
	EventAxis        JSONField `gorm:"column:event_axis;type:json"`
	NEntries         int       `gorm:"column:n_entries"`
	NUniquePositions int       `gorm:"column:n_unique_positions"`
	Snapshot         []byte    `gorm:"column:snapshot;type:blob"`
	CreateTime       time.Time `gorm:"column:create_time;autoCreateTime"`
}

// TableName returns the table name for IngestSession.
func (IngestSession) TableName() string {
	return "ingest_sessions"
}

// EventNames unmarshals the stored event axis back into a string slice.
func (s *IngestSession) EventNames() ([]string, error) {
	if s.EventAxis == nil {
		return nil, nil
	}
	var names []string
	if err := json.Unmarshal(s.EventAxis, &names); err != nil {
		return nil, err
	}
	return names, nil
}

// Suggestion represents the session_suggestions table: one advisor
// finding attached to an ingest session.
type Suggestion struct {
	ID         int64     `gorm:"column:id;primaryKey;autoIncrement"`
	SessionID  string    `gorm:"column:session_id;type:varchar(64);index"`
	Type       string    `gorm:"column:type;type:varchar(64)"`
	Severity   string    `gorm:"column:severity;type:varchar(32)"`
	FuncName   string    `gorm:"column:func_name;type:varchar(512)"`
	Message    string    `gorm:"column:message;type:text"`
	CreateTime time.Time `gorm:"column:create_time;autoCreateTime"`
}

// TableName returns the table name for Suggestion.
func (Suggestion) TableName() string {
	return "session_suggestions"
}

// JSONField is a custom type for handling JSON columns in GORM.
type JSONField []byte

// Value implements driver.Valuer.
func (j JSONField) Value() (driver.Value, error) {
	if len(j) == 0 {
		return nil, nil
	}
	return string(j), nil
}

// Scan implements sql.Scanner.
func (j *JSONField) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	switch v := value.(type) {
	case []byte:
		*j = append(JSONField(nil), v...)
		return nil
	case string:
		*j = JSONField(v)
		return nil
	default:
		return errors.New("store: unsupported Scan type for JSONField")
	}
}

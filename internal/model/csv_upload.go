package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// CSVUpload is the metadata record for an uploaded delimited file. The
// column list is captured once at upload time so later plot and group-by
// requests do not have to re-read the file just to learn its shape.
// Records are immutable after creation except for deletion.
type CSVUpload struct {
	ID         string     `gorm:"primaryKey;size:36" json:"id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	FileName   string     `gorm:"size:255;not null" json:"file_name"`
	StorageKey string     `gorm:"size:512;not null" json:"-"`
	Columns    StringList `gorm:"type:json" json:"columns"`
	CreatedAt  time.Time  `json:"created_at"`
}

// StringList stores an ordered list of strings as a JSON column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		if s, isStr := src.(string); isStr {
			raw = []byte(s)
		} else {
			return fmt.Errorf("unsupported column list source type %T", src)
		}
	}
	return json.Unmarshal(raw, l)
}

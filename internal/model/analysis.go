package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Analysis is a persisted, user-owned collection of chart payloads with
// descriptive metadata and a publish flag.
type Analysis struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	AuthorName  string    `gorm:"size:128" json:"author_name"`
	Description string    `gorm:"type:text" json:"description"`
	Plots       PlotList  `gorm:"type:json" json:"plots"`
	IsPublic    bool      `gorm:"not null;default:false" json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Plot is one chart inside an Analysis: the plot kind, the axis
// configuration it was derived from, and the chart-ready series data. The
// data payload is opaque to the store and validated only for presence.
type Plot struct {
	Title         string            `json:"title"`
	Type          string            `json:"type"`
	Configuration PlotConfiguration `json:"configuration"`
	Data          json.RawMessage   `json:"data"`
}

type PlotConfiguration struct {
	XAxis string   `json:"x_axis"`
	YAxes []string `json:"y_axes"`
}

// PlotList stores the ordered plot collection as a JSON column.
type PlotList []Plot

func (l PlotList) Value() (driver.Value, error) {
	if l == nil {
		l = PlotList{}
	}
	return json.Marshal(l)
}

func (l *PlotList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	raw, ok := src.([]byte)
	if !ok {
		if s, isStr := src.(string); isStr {
			raw = []byte(s)
		} else {
			return fmt.Errorf("unsupported plot list source type %T", src)
		}
	}
	return json.Unmarshal(raw, l)
}

// Package reqlog records one row per API request and aggregates them into the
// admin reports.
package reqlog

import (
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

// RequestLog is append-only. UserID is empty for anonymous requests.
type RequestLog struct {
	ID             string    `gorm:"primaryKey;size:26"  json:"id"`
	Timestamp      time.Time `gorm:"index;not null"      json:"timestamp"`
	UserID         string    `gorm:"index;size:36"       json:"user_id"`
	Method         string    `gorm:"size:10"             json:"method"`
	Endpoint       string    `gorm:"index;not null"      json:"endpoint"`
	StatusCode     int       `gorm:"index;not null"      json:"status_code"`
	ResponseTimeMs int64     `gorm:"not null"            json:"response_time_ms"`
}

func (r *RequestLog) BeforeCreate(*gorm.DB) error {
	if r.Timestamp.IsZero() {
		r.Timestamp = time.Now().UTC()
	}
	if r.ID == "" {
		r.ID = ulid.MustNew(ulid.Timestamp(r.Timestamp), ulid.DefaultEntropy()).String()
	}
	return nil
}

type UserCount struct {
	UserID string `json:"user_id"`
	Count  int64  `json:"count"`
}

type EndpointTopUser struct {
	Endpoint string `json:"endpoint"`
	TopUser  string `json:"top_user"`
	Count    int64  `json:"count"`
}

type EndpointErrorCount struct {
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status_code"`
	Count      int64  `json:"count"`
}

type DailyUsers struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

package reqlog

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const DefaultLimit = 10

type Store struct {
	DB *gorm.DB
}

func (s *Store) Append(ctx context.Context, rec *RequestLog) error {
	return s.DB.WithContext(ctx).Create(rec).Error
}

func (s *Store) inRange(ctx context.Context, from, to time.Time) *gorm.DB {
	return s.DB.WithContext(ctx).Model(&RequestLog{}).
		Where("timestamp >= ? AND timestamp < ?", from.UTC(), to.UTC())
}

func clientErrors(q *gorm.DB) *gorm.DB {
	return q.Where("status_code >= ? AND status_code < ?", 400, 500)
}

func limitOrDefault(n int) int {
	if n <= 0 {
		return DefaultLimit
	}
	return n
}

// TopAPIUsers returns the users with the most requests in [from, to).
func (s *Store) TopAPIUsers(ctx context.Context, from, to time.Time, limit int) ([]UserCount, error) {
	out := []UserCount{}
	err := s.inRange(ctx, from, to).
		Select("user_id, COUNT(*) AS count").
		Where("user_id <> ?", "").
		Group("user_id").
		Order("count DESC, user_id").
		Limit(limitOrDefault(limit)).
		Scan(&out).Error
	return out, err
}

// RecentErrors returns the latest 4xx requests since the given time.
func (s *Store) RecentErrors(ctx context.Context, since time.Time, limit int) ([]RequestLog, error) {
	out := []RequestLog{}
	err := clientErrors(s.DB.WithContext(ctx).Where("timestamp >= ?", since.UTC())).
		Order("timestamp DESC").
		Limit(limitOrDefault(limit)).
		Find(&out).Error
	return out, err
}

// TopUsersByEndpoint returns, per endpoint, the user with the most 4xx
// responses in [from, to).
func (s *Store) TopUsersByEndpoint(ctx context.Context, from, to time.Time) ([]EndpointTopUser, error) {
	var rows []EndpointTopUser
	err := clientErrors(s.inRange(ctx, from, to)).
		Select("endpoint, user_id AS top_user, COUNT(*) AS count").
		Where("user_id <> ?", "").
		Group("endpoint, user_id").
		Order("endpoint, count DESC, user_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := []EndpointTopUser{}
	for _, r := range rows {
		if len(out) > 0 && out[len(out)-1].Endpoint == r.Endpoint {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// ErrorsByEndpoint counts 4xx responses per (endpoint, status) in [from, to).
func (s *Store) ErrorsByEndpoint(ctx context.Context, from, to time.Time, limit int) ([]EndpointErrorCount, error) {
	out := []EndpointErrorCount{}
	err := clientErrors(s.inRange(ctx, from, to)).
		Select("endpoint, status_code, COUNT(*) AS count").
		Group("endpoint, status_code").
		Order("count DESC, endpoint, status_code").
		Limit(limitOrDefault(limit)).
		Scan(&out).Error
	return out, err
}

// dayExpr renders the UTC calendar day of the timestamp column as
// YYYY-MM-DD for the connected dialect.
func (s *Store) dayExpr() string {
	switch s.DB.Dialector.Name() {
	case "postgres":
		return `to_char(timezone('UTC', "timestamp"), 'YYYY-MM-DD')`
	default:
		// SQLite keeps timestamps as UTC text starting with the date
		return `substr("timestamp", 1, 10)`
	}
}

// UniqueAPIUsers counts distinct users per UTC day in [from, to).
func (s *Store) UniqueAPIUsers(ctx context.Context, from, to time.Time) ([]DailyUsers, error) {
	day := s.dayExpr()
	out := []DailyUsers{}
	err := s.inRange(ctx, from, to).
		Select(day + " AS day, COUNT(DISTINCT user_id) AS count").
		Where("user_id <> ?", "").
		Group(day).
		Order(day).
		Scan(&out).Error
	return out, err
}

package reqlog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/pokedex/pkg/db"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	gdb, err := db.Open(context.Background(), "sqlite://:memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close(gdb) })
	require.NoError(t, gdb.AutoMigrate(&RequestLog{}))
	return &Store{DB: gdb}
}

var base = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func seed(t *testing.T, s *Store, recs ...RequestLog) {
	t.Helper()
	for i := range recs {
		require.NoError(t, s.Append(context.Background(), &recs[i]))
	}
}

func at(h time.Duration) time.Time { return base.Add(h) }

func TestAppend_AssignsID(t *testing.T) {
	s := newTestStore(t)
	rec := &RequestLog{UserID: "u1", Endpoint: "/login", StatusCode: 200}
	require.NoError(t, s.Append(context.Background(), rec))
	assert.Len(t, rec.ID, 26)
	assert.False(t, rec.Timestamp.IsZero())
}

func TestTopAPIUsers(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		RequestLog{UserID: "a", Endpoint: "/x", StatusCode: 200, Timestamp: at(0)},
		RequestLog{UserID: "a", Endpoint: "/x", StatusCode: 200, Timestamp: at(time.Hour)},
		RequestLog{UserID: "b", Endpoint: "/x", StatusCode: 200, Timestamp: at(time.Hour)},
		RequestLog{UserID: "", Endpoint: "/login", StatusCode: 401, Timestamp: at(time.Hour)},
		RequestLog{UserID: "b", Endpoint: "/x", StatusCode: 200, Timestamp: at(-48 * time.Hour)},
	)

	got, err := s.TopAPIUsers(context.Background(), at(-time.Hour), at(24*time.Hour), 0)
	require.NoError(t, err)
	assert.Equal(t, []UserCount{{UserID: "a", Count: 2}, {UserID: "b", Count: 1}}, got)
}

func TestRecentErrors(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		RequestLog{UserID: "a", Endpoint: "/x", StatusCode: 404, Timestamp: at(time.Hour)},
		RequestLog{UserID: "a", Endpoint: "/y", StatusCode: 400, Timestamp: at(2 * time.Hour)},
		RequestLog{UserID: "a", Endpoint: "/z", StatusCode: 500, Timestamp: at(3 * time.Hour)},
		RequestLog{UserID: "a", Endpoint: "/w", StatusCode: 401, Timestamp: at(-30 * time.Hour)},
	)

	got, err := s.RecentErrors(context.Background(), at(0), 10)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "/y", got[0].Endpoint)
	assert.Equal(t, "/x", got[1].Endpoint)
}

func TestTopUsersByEndpoint(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		RequestLog{UserID: "a", Endpoint: "/pokemon", StatusCode: 400, Timestamp: at(0)},
		RequestLog{UserID: "b", Endpoint: "/pokemon", StatusCode: 404, Timestamp: at(0)},
		RequestLog{UserID: "b", Endpoint: "/pokemon", StatusCode: 404, Timestamp: at(0)},
		RequestLog{UserID: "a", Endpoint: "/login", StatusCode: 401, Timestamp: at(0)},
		RequestLog{UserID: "c", Endpoint: "/login", StatusCode: 200, Timestamp: at(0)},
		RequestLog{UserID: "c", Endpoint: "/login", StatusCode: 200, Timestamp: at(0)},
	)

	got, err := s.TopUsersByEndpoint(context.Background(), at(-time.Hour), at(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []EndpointTopUser{
		{Endpoint: "/login", TopUser: "a", Count: 1},
		{Endpoint: "/pokemon", TopUser: "b", Count: 2},
	}, got)
}

func TestErrorsByEndpoint(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		RequestLog{Endpoint: "/pokemon", StatusCode: 404, Timestamp: at(0)},
		RequestLog{Endpoint: "/pokemon", StatusCode: 404, Timestamp: at(0)},
		RequestLog{Endpoint: "/pokemon", StatusCode: 400, Timestamp: at(0)},
		RequestLog{Endpoint: "/login", StatusCode: 401, Timestamp: at(0)},
		RequestLog{Endpoint: "/login", StatusCode: 200, Timestamp: at(0)},
	)

	got, err := s.ErrorsByEndpoint(context.Background(), at(-time.Hour), at(time.Hour), 2)
	require.NoError(t, err)
	assert.Equal(t, []EndpointErrorCount{
		{Endpoint: "/pokemon", StatusCode: 404, Count: 2},
		{Endpoint: "/login", StatusCode: 401, Count: 1},
	}, got)
}

func TestUniqueAPIUsers(t *testing.T) {
	s := newTestStore(t)
	seed(t, s,
		RequestLog{UserID: "a", Endpoint: "/x", StatusCode: 200, Timestamp: at(0)},
		RequestLog{UserID: "a", Endpoint: "/y", StatusCode: 200, Timestamp: at(time.Hour)},
		RequestLog{UserID: "b", Endpoint: "/x", StatusCode: 200, Timestamp: at(2 * time.Hour)},
		RequestLog{UserID: "a", Endpoint: "/x", StatusCode: 200, Timestamp: at(24 * time.Hour)},
		RequestLog{UserID: "", Endpoint: "/x", StatusCode: 401, Timestamp: at(24 * time.Hour)},
		RequestLog{UserID: "c", Endpoint: "/x", StatusCode: 200, Timestamp: at(72 * time.Hour)},
		RequestLog{UserID: "d", Endpoint: "/x", StatusCode: 200, Timestamp: at(-2 * time.Hour)},
	)

	got, err := s.UniqueAPIUsers(context.Background(), at(-time.Hour), at(48*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []DailyUsers{
		{Day: "2024-03-10", Count: 2},
		{Day: "2024-03-11", Count: 1},
	}, got)
}

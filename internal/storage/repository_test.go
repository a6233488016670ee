package storage_test

import (
	"context"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/spotfinder/internal/ranking"
	"github.com/neexbeast/spotfinder/internal/spot"
	"github.com/neexbeast/spotfinder/internal/storage"
)

// ---- mock Querier ----

type mockQuerier struct {
	queryRowFn func(ctx context.Context, sql string, args ...any) pgx.Row
	queryFn    func(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	execFn     func(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func (m *mockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.queryRowFn(ctx, sql, args...)
}
func (m *mockQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return m.queryFn(ctx, sql, args...)
}
func (m *mockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return m.execFn(ctx, sql, args...)
}

// ---- mock pgx.Row ----

type fakeRow struct {
	values []any
	err    error
}

func (f *fakeRow) Scan(dest ...any) error {
	if f.err != nil {
		return f.err
	}
	return assign(f.values, dest)
}

// assign copies values into scan destinations. Each non-nil value must have
// exactly the type the destination points to; nil zeroes the destination.
func assign(values, dest []any) error {
	if len(values) != len(dest) {
		return fmt.Errorf("scan: %d values for %d destinations", len(values), len(dest))
	}
	for i, d := range dest {
		target := reflect.ValueOf(d).Elem()
		if values[i] == nil {
			target.Set(reflect.Zero(target.Type()))
			continue
		}
		target.Set(reflect.ValueOf(values[i]))
	}
	return nil
}

// ---- mock pgx.Rows ----

type fakeRows struct {
	rows    [][]any
	idx     int
	rowErr  error
	scanErr error
}

func (f *fakeRows) Next() bool                                   { f.idx++; return f.idx <= len(f.rows) }
func (f *fakeRows) Err() error                                   { return f.rowErr }
func (f *fakeRows) Close()                                       {}
func (f *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (f *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (f *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (f *fakeRows) RawValues() [][]byte                          { return nil }
func (f *fakeRows) Conn() *pgx.Conn                              { return nil }

func (f *fakeRows) Scan(dest ...any) error {
	if f.scanErr != nil {
		return f.scanErr
	}
	return assign(f.rows[f.idx-1], dest)
}

// ---- helpers ----

func fp(v float64) *float64 { return &v }
func ip(v int) *int         { return &v }

var now = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func locationRow(id, name string, crowd *float64, ratings int) []any {
	return []any{
		id, name, "Thompson Library", "11th Floor", "1858 Neil Avenue Mall", "study",
		fp(40.0067), fp(-83.0298), fp(35.0), "quiet", ip(15),
		crowd, nil, ratings, now,
	}
}

func eventRow(id, name string, checkIns int) []any {
	return []any{
		id, name, "Bring snacks", "1", "Thompson Library: 11th Floor",
		fp(40.0067), fp(-83.0298), checkIns,
		fp(4.5), nil, fp(2.0), nil, 2, now,
	}
}

// ---- ListLocations ----

func TestListLocations_Found(t *testing.T) {
	rows := &fakeRows{rows: [][]any{
		locationRow("1", "Thompson Library: 11th Floor", fp(3.5), 4),
		locationRow("2", "Grand Reading Room", nil, 0),
	}}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	repo := storage.NewRepositoryWithQuerier(q)
	locs, err := repo.ListLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 2)

	assert.Equal(t, "1", locs[0].ID)
	assert.Equal(t, spot.KindStudy, locs[0].Kind)
	assert.Equal(t, ranking.NoiseQuiet, locs[0].NoiseLevel)
	assert.Equal(t, 3.5, *locs[0].AvgCrowdedness)
	assert.Equal(t, 4, locs[0].RatingCount)
	assert.Equal(t, 15, *locs[0].AvailableSeats)

	assert.Nil(t, locs[1].AvgCrowdedness)
	assert.Nil(t, locs[1].AvgNoise)
}

func TestListLocations_Empty(t *testing.T) {
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return &fakeRows{}, nil },
	}

	repo := storage.NewRepositoryWithQuerier(q)
	locs, err := repo.ListLocations(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, locs)
	assert.Empty(t, locs)
}

func TestListLocations_QueryError(t *testing.T) {
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
			return nil, fmt.Errorf("query failed")
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.ListLocations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying locations")
}

func TestListLocations_ScanError(t *testing.T) {
	rows := &fakeRows{
		rows:    [][]any{locationRow("1", "x", nil, 0)},
		scanErr: fmt.Errorf("scan failed"),
	}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.ListLocations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scanning")
}

func TestListLocations_RowsErr(t *testing.T) {
	rows := &fakeRows{rowErr: fmt.Errorf("rows iteration error")}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) { return rows, nil },
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.ListLocations(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "iterating")
}

// ---- GetLocation ----

func TestGetLocation_Found(t *testing.T) {
	var gotArgs []any
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, args ...any) pgx.Row {
			gotArgs = args
			return &fakeRow{values: locationRow("1", "Thompson Library: 11th Floor", fp(2), 1)}
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	loc, err := repo.GetLocation(context.Background(), "1")
	require.NoError(t, err)
	require.NotNil(t, loc)
	assert.Equal(t, "Thompson Library: 11th Floor", loc.Name)
	assert.Equal(t, []any{"1"}, gotArgs)
}

func TestGetLocation_NotFound(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{err: pgx.ErrNoRows}
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	loc, err := repo.GetLocation(context.Background(), "404")
	require.NoError(t, err)
	assert.Nil(t, loc)
}

func TestGetLocation_DBError(t *testing.T) {
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			return &fakeRow{err: fmt.Errorf("connection reset")}
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.GetLocation(context.Background(), "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying location")
}

// ---- ListEvents / GetEvent ----

func TestListEvents_FilterArgument(t *testing.T) {
	var gotArgs []any
	rows := &fakeRows{rows: [][]any{eventRow("e1", "Study Group", 3)}}
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, args ...any) (pgx.Rows, error) {
			gotArgs = args
			return rows, nil
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	events, err := repo.ListEvents(context.Background(), "1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, []any{"1"}, gotArgs)

	e := events[0]
	assert.Equal(t, "Study Group", e.Name)
	assert.Equal(t, 3, e.CheckInCount)
	assert.Equal(t, 4.5, *e.AvgRating)
	assert.Nil(t, e.AvgCrowdedness)
	assert.Equal(t, 2, e.RatingCount)
}

func TestListEvents_QueryError(t *testing.T) {
	q := &mockQuerier{
		queryFn: func(_ context.Context, _ string, _ ...any) (pgx.Rows, error) {
			return nil, fmt.Errorf("boom")
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	_, err := repo.ListEvents(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "querying events")
}

func TestGetEvent_FoundAndMissing(t *testing.T) {
	found := true
	q := &mockQuerier{
		queryRowFn: func(_ context.Context, _ string, _ ...any) pgx.Row {
			if found {
				return &fakeRow{values: eventRow("e1", "Review Session", 0)}
			}
			return &fakeRow{err: pgx.ErrNoRows}
		},
	}

	repo := storage.NewRepositoryWithQuerier(q)
	e, err := repo.GetEvent(context.Background(), "e1")
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "Review Session", e.Name)

	found = false
	e, err = repo.GetEvent(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, e)
}

// ---- writes (pgxmock) ----

func newMockRepo(t *testing.T) (*storage.Repository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return storage.NewRepositoryWithQuerier(mock), mock
}

func TestUpsertLocation(t *testing.T) {
	repo, mock := newMockRepo(t)
	loc := spot.Catalog()[0]

	mock.ExpectExec("INSERT INTO locations").
		WithArgs(loc.ID, loc.Name, loc.Building, loc.Floor, loc.Address, "study",
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.UpsertLocation(context.Background(), loc))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsertLocation_DBError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO locations").WillReturnError(assert.AnError)

	err := repo.UpsertLocation(context.Background(), spot.Catalog()[1])
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "upserting location 2")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLocationRating(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO location_ratings").
		WithArgs("4", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.AddLocationRating(context.Background(), "4", spot.Rating{Crowdedness: ip(3)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAddLocationRating_DBError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO location_ratings").WillReturnError(assert.AnError)

	err := repo.AddLocationRating(context.Background(), "4", spot.Rating{Noise: ip(3)})
	require.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent(t *testing.T) {
	repo, mock := newMockRepo(t)
	loc := spot.Catalog()[2]

	mock.ExpectQuery("INSERT INTO events").
		WithArgs("Study Group", "Midterm prep", "3", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at"}).AddRow("e-123", now))

	e, err := repo.CreateEvent(context.Background(), spot.NewEvent{Name: "Study Group", Description: "Midterm prep", LocationID: "3"}, loc)
	require.NoError(t, err)
	require.NotNil(t, e)
	assert.Equal(t, "e-123", e.ID)
	assert.Equal(t, now, e.CreatedAt)
	assert.Equal(t, "18th Avenue Library", e.LocationName)
	assert.Equal(t, 40.0080, *e.Latitude)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEvent_DBError(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectQuery("INSERT INTO events").WillReturnError(assert.AnError)

	_, err := repo.CreateEvent(context.Background(), spot.NewEvent{Name: "n", Description: "d", LocationID: "3"}, spot.Catalog()[2])
	require.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "inserting event")
}

func TestAddCheckIn(t *testing.T) {
	t.Run("new check-in", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("INSERT INTO event_checkins").
			WithArgs("e1", "u1").
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		inserted, err := repo.AddCheckIn(context.Background(), "e1", "u1")
		require.NoError(t, err)
		assert.True(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate check-in", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("INSERT INTO event_checkins").
			WithArgs("e1", "u1").
			WillReturnResult(pgxmock.NewResult("INSERT", 0))

		inserted, err := repo.AddCheckIn(context.Background(), "e1", "u1")
		require.NoError(t, err)
		assert.False(t, inserted)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("db error", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		mock.ExpectExec("INSERT INTO event_checkins").WillReturnError(assert.AnError)

		_, err := repo.AddCheckIn(context.Background(), "e1", "u1")
		require.ErrorIs(t, err, assert.AnError)
	})
}

func TestAddEventRating(t *testing.T) {
	repo, mock := newMockRepo(t)

	mock.ExpectExec("INSERT INTO event_ratings").
		WithArgs("e1", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.AddEventRating(context.Background(), "e1", spot.Rating{Overall: ip(5), Fun: ip(4)})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ---- NewRepository ----

func TestNewRepository_NotNil(t *testing.T) {
	repo := storage.NewRepository(nil)
	assert.NotNil(t, repo)
}

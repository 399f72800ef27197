package db

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/deemkeen/statusbridge/domain"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aliceId = "https://example.com/users/alice"

// setupTestDB creates an in-memory SQLite database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestNote(t *testing.T, db *DB, actorId, objType, content string, published time.Time) *domain.Object {
	t.Helper()
	ctx := context.Background()
	obj := &domain.Object{
		Type:            objType,
		Properties:      domain.ObjectProperties{Content: content},
		OriginalActorId: actorId,
	}
	require.NoError(t, db.CreateObject(ctx, obj))
	require.NoError(t, db.AddObjectInOutbox(ctx, actorId, obj.Id, published))
	return obj
}

func TestCDateRoundTrip(t *testing.T) {
	ts := time.Date(2024, 3, 1, 12, 30, 45, 123000000, time.UTC)
	s := FormatCDate(ts)
	assert.Equal(t, "2024-03-01 12:30:45.123", s)

	parsed, err := ParseCDate(s)
	require.NoError(t, err)
	assert.True(t, ts.Equal(parsed))

	assert.Less(t, BeginningOfTime, s)
}

func TestSaveAndReadActor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	actor := &domain.Actor{
		Id:                aliceId,
		Type:              domain.PersonType,
		PreferredUsername: "alice",
		Name:              "Alice",
		PrivateKeyPem:     "secret",
		Local:             true,
	}
	require.NoError(t, db.SaveActor(ctx, actor))

	got, err := db.ReadActorById(ctx, aliceId)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.PreferredUsername)
	assert.Equal(t, "Alice", got.Name)
	assert.True(t, got.Local)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestSaveActorKeepsKeyMaterial(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.SaveActor(ctx, &domain.Actor{Id: aliceId, PreferredUsername: "alice", PrivateKeyPem: "secret", Local: true}))
	require.NoError(t, db.SaveActor(ctx, &domain.Actor{Id: aliceId, PreferredUsername: "alice", Name: "Renamed"}))

	got, err := db.ReadActorById(ctx, aliceId)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, "secret", got.PrivateKeyPem)
	assert.True(t, got.Local)
}

func TestReadActorByIdNotFound(t *testing.T) {
	db := setupTestDB(t)

	acc, err := db.ReadActorById(context.Background(), "https://example.com/users/nobody")
	assert.ErrorIs(t, err, ErrActorNotFound)
	assert.Nil(t, acc)
}

func TestCacheObjectDeduplicates(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	first, created, err := db.CacheObject(ctx, &domain.Object{
		Type:             domain.NoteType,
		Properties:       domain.ObjectProperties{Content: "hi"},
		OriginalObjectId: "https://remote.example/notes/1",
	})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := db.CacheObject(ctx, &domain.Object{
		Type:             domain.NoteType,
		Properties:       domain.ObjectProperties{Content: "hi again"},
		OriginalObjectId: "https://remote.example/notes/1",
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.Id, second.Id)
	assert.Equal(t, "hi", second.Properties.Content)

	byOriginal, err := db.ReadObjectByOriginalId(ctx, "https://remote.example/notes/1")
	require.NoError(t, err)
	assert.Equal(t, first.Id, byOriginal.Id)
	assert.False(t, byOriginal.Local)
}

func TestCacheObjectRequiresOriginalId(t *testing.T) {
	db := setupTestDB(t)

	_, _, err := db.CacheObject(context.Background(), &domain.Object{Type: domain.NoteType})
	assert.Error(t, err)
}

func TestReadObjectByIdNotFound(t *testing.T) {
	db := setupTestDB(t)

	_, err := db.ReadObjectById(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestReadOutboxCursor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	note := createTestNote(t, db, aliceId, domain.NoteType, "a", base.Add(10*time.Second))

	cdate, err := db.ReadOutboxCursor(ctx, note.Id)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-01 00:00:10.000", cdate)

	_, err = db.ReadOutboxCursor(ctx, "does-not-exist")
	assert.ErrorIs(t, err, ErrCursorNotFound)
}

func TestReadLocalStatusesNewerThanCursor(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	createTestNote(t, db, aliceId, domain.NoteType, "a", base.Add(10*time.Second))
	b := createTestNote(t, db, aliceId, domain.NoteType, "b", base.Add(20*time.Second))
	c := createTestNote(t, db, aliceId, domain.NoteType, "c", base.Add(30*time.Second))

	all, err := db.ReadLocalStatuses(ctx, aliceId, BeginningOfTime, 20)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "c", all[0].Object.Properties.Content)
	assert.Equal(t, "b", all[1].Object.Properties.Content)
	assert.Equal(t, "a", all[2].Object.Properties.Content)

	cursor, err := db.ReadOutboxCursor(ctx, b.Id)
	require.NoError(t, err)

	page, err := db.ReadLocalStatuses(ctx, aliceId, cursor, 20)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, c.Id, page[0].Object.Id)
	assert.Equal(t, aliceId, page[0].ActorId)
}

func TestReadLocalStatusesOnlyNotes(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	createTestNote(t, db, aliceId, domain.NoteType, "note", base.Add(time.Second))
	createTestNote(t, db, aliceId, "Article", "article", base.Add(2*time.Second))
	createTestNote(t, db, aliceId, "Question", "question", base.Add(3*time.Second))

	notes, err := db.ReadLocalStatuses(context.Background(), aliceId, BeginningOfTime, 20)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, domain.NoteType, notes[0].Object.Type)
	assert.Equal(t, "note", notes[0].Object.Properties.Content)
}

func TestReadLocalStatusesScopedToActorAndLimited(t *testing.T) {
	db := setupTestDB(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 1; i <= 5; i++ {
		createTestNote(t, db, aliceId, domain.NoteType, "alice", base.Add(time.Duration(i)*time.Second))
	}
	createTestNote(t, db, "https://example.com/users/bob", domain.NoteType, "bob", base.Add(time.Minute))

	notes, err := db.ReadLocalStatuses(context.Background(), aliceId, BeginningOfTime, 2)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, "alice", n.Object.Properties.Content)
	}
	assert.Equal(t, "2024-01-01 00:00:05.000", notes[0].CDate)
}

func TestReadLocalStatusesCounters(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	note := createTestNote(t, db, aliceId, domain.NoteType, "liked", time.Now())
	require.NoError(t, db.CreateFavourite(ctx, "https://remote.example/users/bob", note.Id))
	// a second like by the same actor is not counted twice
	require.NoError(t, db.CreateFavourite(ctx, "https://remote.example/users/bob", note.Id))

	notes, err := db.ReadLocalStatuses(ctx, aliceId, BeginningOfTime, 20)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, 1, notes[0].FavouritesCount)
	assert.Equal(t, 0, notes[0].ReblogsCount)

	require.NoError(t, db.CreateReblog(ctx, "https://remote.example/users/bob", note.Id))
	notes, err = db.ReadLocalStatuses(ctx, aliceId, BeginningOfTime, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, notes[0].ReblogsCount)
}

func TestReadLocalStatusesEmpty(t *testing.T) {
	db := setupTestDB(t)

	notes, err := db.ReadLocalStatuses(context.Background(), aliceId, BeginningOfTime, 20)
	require.NoError(t, err)
	assert.Empty(t, notes)
	assert.NotNil(t, notes)
}

func TestWrapTransactionRollsBackOnError(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	failure := errors.New("boom")

	calls := 0
	err := db.wrapTransaction(ctx, func(tx *sql.Tx) error {
		calls++
		if _, err := tx.ExecContext(ctx, sqlInsertOutboxObject, "row-1", aliceId, "obj-1", FormatCDate(time.Now()), ""); err != nil {
			return err
		}
		return failure
	})
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, 1, calls)

	_, err = db.ReadOutboxCursor(ctx, "obj-1")
	assert.ErrorIs(t, err, ErrCursorNotFound)
}

func TestMalformedStoredCDateIsLogged(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	var buf bytes.Buffer
	prevLogger, prevLevel := log.Logger, zerolog.GlobalLevel()
	log.Logger = zerolog.New(&buf)
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	t.Cleanup(func() {
		log.Logger = prevLogger
		zerolog.SetGlobalLevel(prevLevel)
	})

	_, err := db.db.ExecContext(ctx, `INSERT INTO actors(id, preferred_username, cdate, last_fetched_at) VALUES (?, ?, ?, ?)`,
		aliceId, "alice", "yesterday", FormatCDate(time.Now()))
	require.NoError(t, err)

	actor, err := db.ReadActorById(ctx, aliceId)
	require.NoError(t, err)
	assert.True(t, actor.CreatedAt.IsZero())
	assert.False(t, actor.LastFetchedAt.IsZero())
	assert.Contains(t, buf.String(), "Unparseable stored cdate")
	assert.Contains(t, buf.String(), "actors.cdate")
}

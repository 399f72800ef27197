package main

import (
	"context"
	"testing"
	"time"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/deemkeen/statusbridge/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHost = "local.example"

func setupTestDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func TestCreateLocalActor(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	actor, err := createLocalActor(ctx, database, testHost, "alice", "", "hi <there>", 1024)
	require.NoError(t, err)
	assert.Equal(t, "https://local.example/users/alice", actor.Id)
	assert.Equal(t, "alice", actor.Name)
	assert.Equal(t, "hi &lt;there&gt;", actor.Summary)

	stored, err := database.ReadActorById(ctx, actor.Id)
	require.NoError(t, err)
	assert.True(t, stored.Local)
	assert.Contains(t, stored.PublicKeyPem, "PUBLIC KEY")
	assert.Contains(t, stored.PrivateKeyPem, "RSA PRIVATE KEY")

	_, err = createLocalActor(ctx, database, testHost, "alice", "", "", 1024)
	assert.ErrorIs(t, err, ErrActorExists)
}

func TestCreateLocalActorRejectsBadNames(t *testing.T) {
	database := setupTestDB(t)

	for _, name := range []string{"", "al ice", "bob@remote.example", "alice@local.example"} {
		_, err := createLocalActor(context.Background(), database, testHost, name, "", "", 1024)
		assert.ErrorIs(t, err, timeline.ErrInvalidHandle, name)
	}
}

func TestPublishNote(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()
	_, err := createLocalActor(ctx, database, testHost, "alice", "", "", 1024)
	require.NoError(t, err)

	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	note, err := publishNote(ctx, database, testHost, "alice", "read [this](https://example.com)", now)
	require.NoError(t, err)
	assert.Equal(t, domain.NoteType, note.Type)
	assert.Equal(t, "2024-05-01T12:00:00Z", note.Properties.Published)
	assert.Contains(t, note.Properties.Content, `<a href="https://example.com"`)

	cursor, err := database.ReadOutboxCursor(ctx, note.Id)
	require.NoError(t, err)
	assert.Equal(t, "2024-05-01 12:00:00.000", cursor)
}

func TestPublishNoteErrors(t *testing.T) {
	database := setupTestDB(t)
	ctx := context.Background()

	_, err := publishNote(ctx, database, testHost, "ghost", "boo", time.Now())
	assert.ErrorIs(t, err, db.ErrActorNotFound)

	_, err = createLocalActor(ctx, database, testHost, "alice", "", "", 1024)
	require.NoError(t, err)
	_, err = publishNote(ctx, database, testHost, "alice", "   ", time.Now())
	assert.Error(t, err)
}

func TestRenderStatuses(t *testing.T) {
	out := renderStatuses("alice", nil)
	assert.Contains(t, out, "statuses of alice (0)")
	assert.Contains(t, out, "No statuses.")

	out = renderStatuses("alice", []domain.Status{{
		CreatedAt: "2024-01-01T00:00:00.000Z",
		Content:   "hello",
		URI:       "https://local.example/ap/o/1",
		Account:   domain.Account{Acct: "alice@local.example"},
	}})
	assert.Contains(t, out, "hello")
	assert.Contains(t, out, "@alice@local.example")
	assert.Contains(t, out, "https://local.example/ap/o/1")
}

func TestDatabasePath(t *testing.T) {
	conf := &util.AppConfig{}
	conf.Conf.DbPath = ":memory:"
	assert.Equal(t, ":memory:", databasePath(conf))

	conf.Conf.DbPath = "/tmp/statusbridge.db"
	assert.Equal(t, "/tmp/statusbridge.db", databasePath(conf))
}

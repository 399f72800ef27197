package web

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deemkeen/statusbridge/activitypub"
	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/deemkeen/statusbridge/util"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDomain = "local.example"

type testEnv struct {
	router   *gin.Engine
	db       *db.DB
	registry *prometheus.Registry
}

func newTestConf() *util.AppConfig {
	conf := &util.AppConfig{}
	conf.Conf.Host = "127.0.0.1"
	conf.Conf.HttpPort = 9999
	conf.Conf.SslDomain = testDomain
	conf.Conf.OutboxLimit = 20
	conf.Conf.WithMetrics = true
	return conf
}

// newTestEnv builds a router over an in-memory database. deps may replace the remote
// collaborators of the statuses service.
func newTestEnv(t *testing.T, deps timeline.Deps) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	database, err := db.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cacheStore, err := activitypub.NewActorCacheStore()
	require.NoError(t, err)
	client := activitypub.NewClient(nil, nil, "")
	directory := activitypub.NewDirectory(database, client, cacheStore)

	deps.Store = database
	if deps.Actors == nil {
		deps.Actors = directory
	}

	keys, err := util.GeneratePemKeypair(1024)
	require.NoError(t, err)

	done := make(chan struct{})
	t.Cleanup(func() { close(done) })

	registry := prometheus.NewRegistry()
	router := NewRouter(Options{
		Conf:        newTestConf(),
		DB:          database,
		Statuses:    timeline.NewService(deps),
		InstanceKey: keys,
		Registry:    registry,
		Done:        done,
	})
	return &testEnv{router: router, db: database, registry: registry}
}

func (e *testEnv) do(method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	req.Host = testDomain
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) saveLocalActor(t *testing.T, username string) *domain.Actor {
	t.Helper()
	actor := &domain.Actor{
		Id:                domain.LocalActorURL(testDomain, username),
		Type:              domain.PersonType,
		PreferredUsername: username,
		Name:              "Alice Example",
		Summary:           "hello world",
		PublicKeyPem:      "-----BEGIN PUBLIC KEY-----\nabc\n-----END PUBLIC KEY-----\n",
		Local:             true,
	}
	require.NoError(t, e.db.SaveActor(context.Background(), actor))
	return actor
}

func (e *testEnv) publish(t *testing.T, actor *domain.Actor, objType, content string, at time.Time) *domain.Object {
	t.Helper()
	ctx := context.Background()
	obj := &domain.Object{
		Type:            objType,
		Properties:      domain.ObjectProperties{Content: content, Published: at.UTC().Format(time.RFC3339)},
		OriginalActorId: actor.Id,
	}
	require.NoError(t, e.db.CreateObject(ctx, obj))
	require.NoError(t, e.db.AddObjectInOutbox(ctx, actor.Id, obj.Id, at))
	return obj
}

func decodeStatuses(t *testing.T, w *httptest.ResponseRecorder) []domain.Status {
	t.Helper()
	var statuses []domain.Status
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &statuses))
	return statuses
}

func assertAPIHeaders(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "content-type, authorization", w.Header().Get("Access-Control-Allow-Headers"))
}

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deemkeen/statusbridge/activitypub"
	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/deemkeen/statusbridge/util"
	"github.com/rs/zerolog/log"
)

const instanceKeyBits = 2048

// app is the wired object graph shared by the commands.
type app struct {
	conf        *util.AppConfig
	db          *db.DB
	instanceKey *util.RsaKeyPair
	statuses    *timeline.Service
}

func databasePath(conf *util.AppConfig) string {
	if conf.Conf.DbPath == ":memory:" {
		return conf.Conf.DbPath
	}
	return util.ResolveFilePath(conf.Conf.DbPath)
}

func newApp(conf *util.AppConfig) (*app, error) {
	database, err := db.Open(databasePath(conf))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	keys, err := util.LoadOrCreateKeypair(util.ResolveFilePath(conf.Conf.KeyPath), instanceKeyBits)
	if err != nil {
		database.Close()
		return nil, err
	}
	privateKey, err := activitypub.ParsePrivateKey(keys.Private)
	if err != nil {
		database.Close()
		return nil, err
	}

	client := activitypub.NewClient(
		&http.Client{Timeout: time.Duration(conf.Conf.HttpTimeout) * time.Second},
		privateKey,
		fmt.Sprintf("https://%s/actor#main-key", conf.Conf.SslDomain),
	)
	cacheStore, err := activitypub.NewActorCacheStore()
	if err != nil {
		database.Close()
		return nil, err
	}
	directory := activitypub.NewDirectory(database, client, cacheStore)

	statuses := timeline.NewService(timeline.Deps{
		Store:      database,
		Actors:     directory,
		Discoverer: client,
		Outbox:     activitypub.NewOutboxReader(client, conf.Conf.OutboxLimit),
		Processor:  activitypub.NewProcessor(database, directory, client),
	})

	log.Debug().Str("db", databasePath(conf)).Str("domain", conf.Conf.SslDomain).Msg("Application wired")
	return &app{conf: conf, db: database, instanceKey: keys, statuses: statuses}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}

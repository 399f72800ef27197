package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/deemkeen/statusbridge/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const actorKeyBits = 2048

var ErrActorExists = errors.New("actor already exists")

var actorCmd = &cobra.Command{
	Use:   "actor",
	Short: "Manage local actors",
}

var actorAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Create a local actor",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		summary, _ := cmd.Flags().GetString("summary")

		conf, err := loadConf()
		if err != nil {
			return err
		}
		database, err := db.Open(databasePath(conf))
		if err != nil {
			return err
		}
		defer database.Close()

		actor, err := createLocalActor(cmd.Context(), database, conf.Conf.SslDomain, args[0], name, summary, actorKeyBits)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s\n", actor.Id)
		return nil
	},
}

// createLocalActor stores a new actor hosted on host with a fresh key pair.
func createLocalActor(ctx context.Context, database *db.DB, host, username, name, summary string, keyBits int) (*domain.Actor, error) {
	res := timeline.Classify(username, host)
	if res.Kind != timeline.Local || res.Handle.Domain != "" {
		return nil, fmt.Errorf("%q: %w", username, timeline.ErrInvalidHandle)
	}

	actorId := domain.LocalActorURL(host, username)
	if _, err := database.ReadActorById(ctx, actorId); err == nil {
		return nil, fmt.Errorf("%s: %w", actorId, ErrActorExists)
	} else if !errors.Is(err, db.ErrActorNotFound) {
		return nil, err
	}

	keys, err := util.GeneratePemKeypair(keyBits)
	if err != nil {
		return nil, err
	}

	if name == "" {
		name = username
	}
	actor := &domain.Actor{
		Id:                actorId,
		Type:              domain.PersonType,
		PreferredUsername: username,
		Name:              name,
		Summary:           util.NormalizeInput(summary),
		InboxURI:          actorId + "/inbox",
		OutboxURI:         actorId + "/outbox",
		PublicKeyPem:      keys.Public,
		PrivateKeyPem:     keys.Private,
		Local:             true,
	}
	if err := database.SaveActor(ctx, actor); err != nil {
		return nil, err
	}
	log.Info().Str("actor", actor.Id).Msg("Created local actor")
	return actor, nil
}

func init() {
	actorAddCmd.Flags().String("name", "", "Display name")
	actorAddCmd.Flags().String("summary", "", "Profile summary")
	actorCmd.AddCommand(actorAddCmd)
	rootCmd.AddCommand(actorCmd)
}

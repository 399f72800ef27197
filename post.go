package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/deemkeen/statusbridge/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var postCmd = &cobra.Command{
	Use:   "post <username> <text>",
	Short: "Publish a note as a local actor",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		conf, err := loadConf()
		if err != nil {
			return err
		}
		database, err := db.Open(databasePath(conf))
		if err != nil {
			return err
		}
		defer database.Close()

		note, err := publishNote(cmd.Context(), database, conf.Conf.SslDomain, args[0], strings.Join(args[1:], " "), time.Now())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), domain.ObjectURI(conf.Conf.SslDomain, note.Id))
		return nil
	},
}

// publishNote creates a Note for a local actor and appends it to the actor's outbox.
func publishNote(ctx context.Context, database *db.DB, host, username, text string, now time.Time) (*domain.Object, error) {
	actorId := domain.LocalActorURL(host, username)
	actor, err := database.ReadActorById(ctx, actorId)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", actorId, err)
	}
	if !actor.Local {
		return nil, fmt.Errorf("%s is not a local actor", actorId)
	}

	content := strings.TrimSpace(text)
	if content == "" {
		return nil, fmt.Errorf("empty note")
	}

	note := &domain.Object{
		Type: domain.NoteType,
		Properties: domain.ObjectProperties{
			Content:      util.MarkdownLinksToHTML(util.NormalizeInput(content)),
			Published:    now.UTC().Format(time.RFC3339),
			AttributedTo: actor.Id,
		},
		OriginalActorId: actor.Id,
		CreatedAt:       now,
	}
	if err := database.CreateObject(ctx, note); err != nil {
		return nil, err
	}
	if err := database.AddObjectInOutbox(ctx, actor.Id, note.Id, now); err != nil {
		return nil, err
	}
	log.Info().Str("actor", actor.Id).Str("object", note.Id).Msg("Published note")
	return note, nil
}

func init() {
	rootCmd.AddCommand(postCmd)
}

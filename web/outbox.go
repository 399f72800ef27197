package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deemkeen/statusbridge/activitypub"
	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/domain"
	"github.com/gin-gonic/gin"
	jsoniter "github.com/json-iterator/go"
	"github.com/rs/zerolog/log"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handleOutbox serves the outbox of a local actor. Without ?page only the collection
// summary is returned; the page holds the newest Notes wrapped in Create activities.
func (s *Server) handleOutbox(c *gin.Context) {
	c.Header("Content-Type", activityContentType)

	username := c.Param("username")
	actor := s.localActor(c, username)
	if actor == nil {
		return
	}
	outboxURL := getIRI(s.domain(), username, outbox)

	if c.Query("page") == "" {
		total, err := s.db.CountLocalStatuses(c.Request.Context(), actor.Id)
		if err != nil {
			log.Error().Err(err).Str("actor", actor.Id).Msg("Failed to count outbox")
			c.AbortWithStatus(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, activitypub.OrderedCollection{
			Context:    activityStreamsContext,
			ID:         outboxURL,
			Type:       "OrderedCollection",
			TotalItems: total,
			First:      outboxURL + "?page=true",
		})
		return
	}

	notes, err := s.db.ReadLocalStatuses(c.Request.Context(), actor.Id, db.BeginningOfTime, s.conf.Conf.OutboxLimit)
	if err != nil {
		log.Error().Err(err).Str("actor", actor.Id).Msg("Failed to read outbox")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	items := make([]domain.Activity, 0, len(notes))
	for _, note := range notes {
		activity, err := s.createActivity(actor, note)
		if err != nil {
			log.Warn().Err(err).Str("object", note.Object.Id).Msg("Skipping outbox item")
			continue
		}
		items = append(items, activity)
	}

	c.JSON(http.StatusOK, activitypub.OrderedCollection{
		Context:      activityStreamsContext,
		ID:           outboxURL + "?page=true",
		Type:         "OrderedCollectionPage",
		PartOf:       outboxURL,
		OrderedItems: items,
	})
}

func (s *Server) createActivity(actor *domain.Actor, note domain.OutboxNote) (domain.Activity, error) {
	published := note.Object.Properties.Published
	if published == "" {
		if t, err := db.ParseCDate(note.CDate); err == nil {
			published = t.Format(time.RFC3339)
		}
	}

	doc := s.objectDocument(note.Object)
	doc.Published = published
	object, err := json.Marshal(doc)
	if err != nil {
		return domain.Activity{}, err
	}

	return domain.Activity{
		Id:        fmt.Sprintf("%s/activity", domain.ObjectURI(s.domain(), note.Object.Id)),
		Type:      domain.CreateType,
		Actor:     actor.Id,
		Object:    object,
		Published: published,
		To:        []string{publicCollection},
	}, nil
}

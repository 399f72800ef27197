package web

import (
	"fmt"
	"net/http"
	"time"

	"github.com/deemkeen/statusbridge/domain"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/feeds"
	"github.com/rs/zerolog/log"
)

// handleFeed renders the newest statuses of a local actor as RSS.
func (s *Server) handleFeed(c *gin.Context) {
	c.Header("Content-Type", xmlContentType)

	username := c.Param("username")
	actor := s.localActor(c, username)
	if actor == nil {
		return
	}

	statuses, err := s.statuses.LocalStatuses(c.Request.Context(), s.domain(), timeline.Handle{LocalPart: username}, timeline.Options{Limit: timeline.MaxLimit})
	if err != nil {
		log.Error().Err(err).Str("actor", actor.Id).Msg("Failed to read statuses for feed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}

	rss, err := buildFeed(actor, statuses, s.domain())
	if err != nil {
		log.Error().Err(err).Str("actor", actor.Id).Msg("Failed to render feed")
		c.AbortWithStatus(http.StatusInternalServerError)
		return
	}
	c.String(http.StatusOK, rss)
}

func buildFeed(actor *domain.Actor, statuses []domain.Status, host string) (string, error) {
	author := &feeds.Author{Name: actor.PreferredUsername, Email: fmt.Sprintf("%s@%s", actor.PreferredUsername, host)}

	feed := &feeds.Feed{
		Title:       fmt.Sprintf("%s - %s", actor.PreferredUsername, host),
		Link:        &feeds.Link{Href: actor.Id},
		Description: actor.Summary,
		Author:      author,
		Created:     time.Now(),
	}

	for _, status := range statuses {
		created, err := time.Parse(timeline.ISOLayout, status.CreatedAt)
		if err != nil {
			created = time.Now()
		}
		feed.Items = append(feed.Items, &feeds.Item{
			Id:      status.URI,
			Title:   created.Format("2006-01-02 15:04"),
			Link:    &feeds.Link{Href: status.URI},
			Content: status.Content,
			Author:  author,
			Created: created,
		})
	}
	return feed.ToRss()
}

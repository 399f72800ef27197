package web

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/deemkeen/statusbridge/db"
	"github.com/deemkeen/statusbridge/timeline"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// handleStatuses serves GET /api/v1/accounts/:id/statuses. Failures answer with an
// empty body.
func (s *Server) handleStatuses(c *gin.Context) {
	started := time.Now()
	c.Header("Content-Type", jsonContentType)

	res := timeline.Classify(c.Param("id"), s.requestHost(c))
	code := http.StatusOK
	defer func() { s.metrics.observe(res.Kind.String(), code, started) }()

	if res.Kind == timeline.Invalid {
		code = http.StatusForbidden
		c.AbortWithStatus(code)
		return
	}

	opts := timeline.Options{
		MaxID:  c.Query("max_id"),
		Pinned: c.Query("pinned") == "true",
		Limit:  parseLimit(c.Query("limit")),
	}
	statuses, err := s.statuses.Statuses(c.Request.Context(), res, opts)
	if err != nil {
		code = statusCode(err)
		if code == http.StatusInternalServerError {
			log.Error().Err(err).Str("handle", c.Param("id")).Msg("Failed to resolve statuses")
		} else {
			log.Debug().Err(err).Str("handle", c.Param("id")).Int("code", code).Msg("Statuses not found")
		}
		c.AbortWithStatus(code)
		return
	}
	c.JSON(code, statuses)
}

func statusCode(err error) int {
	switch {
	case errors.Is(err, timeline.ErrInvalidHandle):
		return http.StatusForbidden
	case errors.Is(err, db.ErrCursorNotFound), errors.Is(err, timeline.ErrRemoteResolution):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// parseLimit returns 0 for a missing or malformed limit, which selects the default.
func parseLimit(raw string) int {
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil {
		return 0
	}
	return timeline.ClampLimit(limit)
}

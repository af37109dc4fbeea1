package server

import (
	"errors"
	"io"
	"time"

	"github.com/gin-gonic/gin"
	sessiondomain "github.com/railzwaylabs/parkwise/internal/session/domain"
)

func (s *Server) StartSession(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	var req sessiondomain.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.UserID = user

	resp, err := s.sessionSvc.Start(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, resp)
}

func (s *Server) GetActiveSession(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	resp, err := s.sessionSvc.Active(c.Request.Context(), user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

// GetSessionFee prices the session now, or at the optional `at` query
// parameter (RFC 3339).
func (s *Server) GetSessionFee(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	var at *time.Time
	if raw := c.Query("at"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			AbortWithError(c, newValidationError("at", "invalid_time", "at must be RFC 3339"))
			return
		}
		at = &parsed
	}

	resp, err := s.sessionSvc.Quote(c.Request.Context(), user, id, at)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

type endSessionRequest struct {
	EndedAt *time.Time `json:"ended_at"`
}

func (s *Server) EndSession(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	// The body is optional.
	var req endSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.sessionSvc.End(c.Request.Context(), user, id, req.EndedAt)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

package server

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	vehicledomain "github.com/railzwaylabs/parkwise/internal/vehicle/domain"
)

func (s *Server) RegisterVehicle(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	var req vehicledomain.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.UserID = user

	resp, err := s.vehicleSvc.Register(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, resp)
}

func (s *Server) ListVehicles(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}

	resp, err := s.vehicleSvc.ListByUser(c.Request.Context(), user)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp, len(resp))
}

func (s *Server) GetVehicle(c *gin.Context) {
	user, ok := userID(c)
	if !ok {
		return
	}
	id, ok := pathID(c)
	if !ok {
		return
	}

	resp, err := s.vehicleSvc.Get(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if resp.UserID != user {
		AbortWithError(c, vehicledomain.ErrNotFound)
		return
	}

	respondData(c, resp)
}

func pathID(c *gin.Context) (snowflake.ID, bool) {
	id, err := snowflake.ParseString(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid id"))
		return 0, false
	}
	return id, true
}

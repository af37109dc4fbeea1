package server

import (
	"github.com/gin-gonic/gin"
	zonedomain "github.com/railzwaylabs/parkwise/internal/zone/domain"
)

func (s *Server) CreateZone(c *gin.Context) {
	var req zonedomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.zoneSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondCreated(c, resp)
}

func (s *Server) ListZones(c *gin.Context) {
	resp, err := s.zoneSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondList(c, resp, len(resp))
}

func (s *Server) GetZone(c *gin.Context) {
	resp, err := s.zoneSvc.Get(c.Request.Context(), c.Param("code"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

func (s *Server) UpdateZone(c *gin.Context) {
	var req zonedomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.zoneSvc.Update(c.Request.Context(), c.Param("code"), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	respondData(c, resp)
}

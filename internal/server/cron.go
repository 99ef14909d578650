package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) StartCron(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err := s.scheduler.Start(); err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.scheduler.Status()})
}

func (s *Server) StopCron(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	s.scheduler.Stop()
	c.JSON(http.StatusOK, gin.H{"data": s.scheduler.Status()})
}

func (s *Server) RunCronOnce(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	settled, err := s.scheduler.RunOnce(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"positions_settled": settled}})
}

func (s *Server) CronStatus(c *gin.Context) {
	if s.scheduler == nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": s.scheduler.Status()})
}

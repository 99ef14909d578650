package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	ledgerdomain "github.com/hashyield/powergrid/internal/ledger/domain"
)

func (s *Server) GetAssets(c *gin.Context) {
	assets, err := s.userSvc.GetAssets(c.Request.Context(), userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": assets})
}

func (s *Server) ListTransactions(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	entries, err := s.ledgerSvc.ListByUser(c.Request.Context(), ledgerdomain.ListRequest{
		UserID: userID(c),
		Type:   ledgerdomain.TransactionType(strings.TrimSpace(c.Query("type"))),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": entries})
}

func (s *Server) ListPositions(c *gin.Context) {
	positions, err := s.positionRepo.ListByUser(c.Request.Context(), s.db, userID(c))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": positions})
}

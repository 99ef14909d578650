package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	orderdomain "github.com/hashyield/powergrid/internal/order/domain"
)

type createOrderRequest struct {
	PowerID        snowflake.ID `json:"power_id"`
	BlockchainType string       `json:"blockchain_type"`
}

type upgradeOrderRequest struct {
	OldPositionID  snowflake.ID `json:"old_position_id"`
	PowerID        snowflake.ID `json:"power_id"`
	BlockchainType string       `json:"blockchain_type"`
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.PowerID == 0 || strings.TrimSpace(req.BlockchainType) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.Create(c.Request.Context(), orderdomain.CreateOrderRequest{
		UserID:         userID(c),
		PackageID:      req.PowerID,
		BlockchainType: req.BlockchainType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpgradeOrder(c *gin.Context) {
	var req upgradeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if req.PowerID == 0 || req.OldPositionID == 0 || strings.TrimSpace(req.BlockchainType) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	resp, err := s.orderSvc.Upgrade(c.Request.Context(), orderdomain.UpgradeOrderRequest{
		UserID:         userID(c),
		OldPositionID:  req.OldPositionID,
		PackageID:      req.PowerID,
		BlockchainType: req.BlockchainType,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CancelOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.orderSvc.Cancel(c.Request.Context(), userID(c), orderNo); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"order_no": orderNo}})
}

func (s *Server) MarkOrderPaid(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	if err := s.orderSvc.MarkPaid(c.Request.Context(), userID(c), orderNo); err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": gin.H{"order_no": orderNo}})
}

func (s *Server) ListOrders(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	orders, err := s.orderSvc.ListByUser(c.Request.Context(), userID(c), limit, offset)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": orders})
}

func (s *Server) GetOrder(c *gin.Context) {
	orderNo := strings.TrimSpace(c.Param("order_no"))
	if orderNo == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	order, err := s.orderSvc.GetByNoAndUser(c.Request.Context(), userID(c), orderNo)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": order})
}

package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/backend-go/internal/domain"
	"github.com/retailpulse/backend-go/internal/service"
	"github.com/retailpulse/backend-go/internal/workflow"
)

type TransferHandler struct {
	service *service.DatasetService
}

func NewTransferHandler(service *service.DatasetService) *TransferHandler {
	return &TransferHandler{service: service}
}

// transferKeyRequest carries a transfer's natural key. Decisions are keyed by
// (product_id, from_store, to_store), never by list position.
type transferKeyRequest struct {
	ProductID string `json:"product_id" form:"product_id" binding:"required"`
	FromStore string `json:"from_store" form:"from_store" binding:"required"`
	ToStore   string `json:"to_store" form:"to_store" binding:"required"`
}

func (r transferKeyRequest) key() domain.TransferKey {
	return domain.TransferKey{ProductID: r.ProductID, FromStore: r.FromStore, ToStore: r.ToStore}
}

func (h *TransferHandler) Approve(c *gin.Context) {
	h.transition(c, h.service.Workflow().Approve, domain.StatusApproved)
}

func (h *TransferHandler) Reject(c *gin.Context) {
	h.transition(c, h.service.Workflow().Reject, domain.StatusRejected)
}

func (h *TransferHandler) transition(c *gin.Context, apply func(domain.TransferKey) error, status domain.TransferStatus) {
	var req transferKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transfer key", "details": err.Error()})
		return
	}

	if err := apply(req.key()); err != nil {
		if errors.Is(err, workflow.ErrTransferNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "transfer not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "transition failed", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

// BulkApprove approves every currently pending transfer and reports how many
// were approved.
func (h *TransferHandler) BulkApprove(c *gin.Context) {
	approved := h.service.Workflow().BulkApprove()

	c.JSON(http.StatusOK, gin.H{"approved": approved})
}

func (h *TransferHandler) GetSummary(c *gin.Context) {
	flow := h.service.Workflow()

	c.JSON(http.StatusOK, gin.H{
		"total":  flow.Size(),
		"counts": flow.Counts(),
	})
}

func (h *TransferHandler) GetStatus(c *gin.Context) {
	var req transferKeyRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transfer key", "details": err.Error()})
		return
	}

	status, err := h.service.Workflow().StatusOf(req.key())
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "transfer not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": status})
}

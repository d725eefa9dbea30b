package handlers

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/backend-go/internal/domain"
	"github.com/retailpulse/backend-go/internal/ingest"
	"github.com/retailpulse/backend-go/internal/service"
)

type UploadHandler struct {
	service *service.DatasetService
}

func NewUploadHandler(service *service.DatasetService) *UploadHandler {
	return &UploadHandler{service: service}
}

// UploadDataset ingests an inventory CSV plus an optional transfers CSV and
// replaces the current dataset. ?skip_invalid=false turns malformed rows from
// a reported skip into a rejected batch.
func (h *UploadHandler) UploadDataset(c *gin.Context) {
	opts := ingest.Options{SkipInvalid: true}
	if raw := c.Query("skip_invalid"); raw != "" {
		if v, err := strconv.ParseBool(raw); err == nil {
			opts.SkipInvalid = v
		}
	}

	inventoryFile, err := c.FormFile("inventory")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "inventory file is required"})
		return
	}

	inventoryRaw, err := readUpload(inventoryFile)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read inventory file", "details": err.Error()})
		return
	}

	products, skippedProducts, err := ingest.ParseProducts(bytes.NewReader(inventoryRaw), opts)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid inventory file", "details": err.Error()})
		return
	}

	var (
		transfers        []domain.Transfer
		skippedTransfers []*ingest.RowError
		transfersRaw     []byte
	)
	if transfersFile, err := c.FormFile("transfers"); err == nil {
		transfersRaw, err = readUpload(transfersFile)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read transfers file", "details": err.Error()})
			return
		}

		transfers, skippedTransfers, err = ingest.ParseTransfers(bytes.NewReader(transfersRaw), opts)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid transfers file", "details": err.Error()})
			return
		}
	}

	version := h.service.Ingest(c.Request.Context(), products, transfers)

	prefix := fmt.Sprintf("uploads/%s/v%d", time.Now().UTC().Format("20060102T150405Z"), version)
	h.service.ArchiveRaw(c.Request.Context(), prefix+"/inventory.csv", inventoryRaw)
	h.service.ArchiveRaw(c.Request.Context(), prefix+"/transfers.csv", transfersRaw)

	c.JSON(http.StatusOK, gin.H{
		"version":           version,
		"products":          len(products),
		"transfers":         len(transfers),
		"skipped_products":  skippedProducts,
		"skipped_transfers": skippedTransfers,
	})
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return io.ReadAll(f)
}

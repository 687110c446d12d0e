package transport

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"validascan/internal/database"
	"validascan/internal/service"
)

func (h *ScanHandler) ProcessScan(c *gin.Context) {
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No image file provided"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Erro ao ler arquivo. Tente novamente."})
		return
	}
	defer file.Close()

	response, err := h.service.ProcessScan(
		c.Request.Context(),
		fileHeader.Filename,
		fileHeader.Header.Get("Content-Type"),
		fileHeader.Size,
		file,
	)
	if err != nil {
		status := http.StatusInternalServerError

		var scanErr *service.ScanError
		if errors.As(err, &scanErr) {
			switch scanErr.Stage {
			case service.StageValidation:
				status = http.StatusBadRequest
			case service.StageCompression:
				status = http.StatusUnprocessableEntity
			case service.StageUpstream:
				status = http.StatusBadGateway
			}
		}

		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *ScanHandler) GetScan(c *gin.Context) {
	id := c.Param("id")

	record, err := h.service.GetScan(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
		return
	}

	c.JSON(http.StatusOK, record)
}

func (h *ScanHandler) AnnotatedImage(c *gin.Context) {
	id := c.Param("id")

	data, err := h.service.AnnotatedImage(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
		return
	}

	c.Data(http.StatusOK, "image/jpeg", data)
}

func (h *ScanHandler) DeleteScan(c *gin.Context) {
	id := c.Param("id")

	if err := h.service.DeleteScan(c.Request.Context(), id); err != nil {
		if errors.Is(err, database.ErrScanNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Scan not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Scan deleted successfully"})
}

func (h *ScanHandler) Diagnostics(c *gin.Context) {
	report := h.service.Diagnostics(c.Request.Context(), c.Request.UserAgent())
	c.JSON(http.StatusOK, report)
}

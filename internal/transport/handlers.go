package transport

import (
	"validascan/internal/service"
)

type ScanHandler struct {
	service service.ScanService
}

func NewScanHandler(service service.ScanService) *ScanHandler {
	return &ScanHandler{service: service}
}

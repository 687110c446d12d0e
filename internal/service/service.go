package service

import (
	"context"
	"io"
	"time"

	"validascan/internal/database"
	"validascan/internal/entity"
	"validascan/internal/pkg/cache"
	"validascan/internal/pkg/compressor"
	"validascan/internal/pkg/kafka"
)

// UpstreamProcessor is what the service needs from the detection client.
type UpstreamProcessor interface {
	Process(ctx context.Context, filename string, data []byte) (*entity.ProcessImageResponse, error)
}

type ScanService interface {
	ProcessScan(ctx context.Context, name, contentType string, size int64, file io.Reader) (*entity.ScanResponse, error)
	GetScan(ctx context.Context, id string) (*entity.ScanRecord, error)
	AnnotatedImage(ctx context.Context, id string) ([]byte, error)
	DeleteScan(ctx context.Context, id string) error
	Diagnostics(ctx context.Context, userAgent string) entity.DiagnosticsReport
}

// Pipeline stages, used by the transport to pick a status code.
const (
	StageValidation  = "validation"
	StageCompression = "compression"
	StageUpstream    = "upstream"
)

// ScanError carries a user-facing message plus the stage that produced it.
type ScanError struct {
	Stage   string
	Message string
}

func (e *ScanError) Error() string {
	return e.Message
}

type scanService struct {
	repo            database.ScanRepository
	cache           cache.Cache
	producer        kafka.Producer
	compressor      *compressor.Compressor
	upstream        UpstreamProcessor
	upstreamBaseURL string
	cacheTTL        time.Duration
}

func NewScanService(
	repo database.ScanRepository,
	resultCache cache.Cache,
	producer kafka.Producer,
	comp *compressor.Compressor,
	upstream UpstreamProcessor,
	upstreamBaseURL string,
	cacheTTL time.Duration,
) ScanService {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &scanService{
		repo:            repo,
		cache:           resultCache,
		producer:        producer,
		compressor:      comp,
		upstream:        upstream,
		upstreamBaseURL: upstreamBaseURL,
		cacheTTL:        cacheTTL,
	}
}

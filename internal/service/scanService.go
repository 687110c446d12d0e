package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"validascan/internal/database"
	"validascan/internal/entity"
	"validascan/internal/pkg/annotator"
	"validascan/internal/pkg/device"
	"validascan/internal/pkg/upstream"
	"validascan/internal/pkg/validator"
)

// ProcessScan runs the full pipeline for one upload:
// validate -> compress -> dedup lookup -> remote processing -> annotate ->
// persist -> cache -> publish. The request context flows through every
// stage, so a disconnected client cancels in-flight work instead of
// producing a result nobody will read.
func (s *scanService) ProcessScan(ctx context.Context, name, contentType string, size int64, file io.Reader) (*entity.ScanResponse, error) {
	outcome := validator.Validate(name, contentType, size)
	if !outcome.Valid {
		return nil, &ScanError{Stage: StageValidation, Message: outcome.Reason}
	}

	original, err := io.ReadAll(file)
	if err != nil {
		return nil, &ScanError{Stage: StageCompression, Message: "Erro ao ler arquivo. Tente novamente."}
	}

	compressed, err := s.compressor.Compress(ctx, original, name)
	if err != nil {
		return nil, &ScanError{Stage: StageCompression, Message: err.Error()}
	}

	hash := contentHash(compressed.Data)

	// The same photo submitted twice maps onto one scan; the remote
	// service is only asked once per distinct compressed payload.
	if record, ok := s.cachedByHash(ctx, hash); ok {
		logrus.Infof("scan cache hit for hash %s -> %s", hash[:12], record.ID)
		return s.envelope(record, true), nil
	}

	id := uuid.New().String()

	if err := s.repo.SaveArtifact(id, database.ArtifactOriginal, original); err != nil {
		logrus.Warnf("could not persist original for scan %s: %s", id, err.Error())
	}
	if err := s.repo.SaveArtifact(id, database.ArtifactCompressed, compressed.Data); err != nil {
		logrus.Warnf("could not persist compressed image for scan %s: %s", id, err.Error())
	}

	result, err := s.upstream.Process(ctx, compressed.Name, compressed.Data)
	if err != nil {
		return nil, &ScanError{Stage: StageUpstream, Message: err.Error()}
	}

	if err := s.annotate(id, compressed.Data, result); err != nil {
		logrus.Warnf("could not render annotations for scan %s: %s", id, err.Error())
	}

	record := &entity.ScanRecord{
		ID:           id,
		OriginalName: name,
		ContentHash:  hash,
		Width:        compressed.Width,
		Height:       compressed.Height,
		Result:       result,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	}

	if err := s.repo.Save(record); err != nil {
		return nil, fmt.Errorf("save scan record: %w", err)
	}
	s.cacheRecord(ctx, record)
	s.publish(ctx, record)

	return s.envelope(record, false), nil
}

func (s *scanService) GetScan(ctx context.Context, id string) (*entity.ScanRecord, error) {
	if data, ok := s.cache.Get(ctx, "scan:"+id); ok {
		var record entity.ScanRecord
		if err := json.Unmarshal(data, &record); err == nil {
			return &record, nil
		}
	}
	return s.repo.FindByID(id)
}

func (s *scanService) AnnotatedImage(_ context.Context, id string) ([]byte, error) {
	return s.repo.Artifact(id, database.ArtifactAnnotated)
}

// DeleteScan discards a scan exactly once: artifacts, metadata and both
// cache entries go together.
func (s *scanService) DeleteScan(ctx context.Context, id string) error {
	record, err := s.repo.FindByID(id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(id); err != nil {
		return err
	}

	s.cache.Delete(ctx, "scan:"+id)
	if record.ContentHash != "" {
		s.cache.Delete(ctx, "scan:hash:"+record.ContentHash)
	}
	return nil
}

func (s *scanService) Diagnostics(ctx context.Context, userAgent string) entity.DiagnosticsReport {
	return entity.DiagnosticsReport{
		Service:      "validascan-gateway",
		Runtime:      device.TakeSnapshot(),
		Upstream:     upstream.Probe(ctx, s.upstreamBaseURL),
		Capabilities: device.Capabilities(userAgent),
	}
}

func (s *scanService) annotate(id string, jpegData []byte, result *entity.ProcessImageResponse) error {
	img, err := imaging.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return err
	}

	annotated := annotator.Render(img, result)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, annotated, imaging.JPEG, imaging.JPEGQuality(90)); err != nil {
		return err
	}
	return s.repo.SaveArtifact(id, database.ArtifactAnnotated, buf.Bytes())
}

func (s *scanService) cachedByHash(ctx context.Context, hash string) (*entity.ScanRecord, bool) {
	data, ok := s.cache.Get(ctx, "scan:hash:"+hash)
	if !ok {
		return nil, false
	}

	var record entity.ScanRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, false
	}
	return &record, true
}

func (s *scanService) cacheRecord(ctx context.Context, record *entity.ScanRecord) {
	data, err := json.Marshal(record)
	if err != nil {
		return
	}
	s.cache.Set(ctx, "scan:"+record.ID, data, s.cacheTTL)
	s.cache.Set(ctx, "scan:hash:"+record.ContentHash, data, s.cacheTTL)
}

func (s *scanService) publish(ctx context.Context, record *entity.ScanRecord) {
	event := entity.ScanEvent{
		ScanID:      record.ID,
		Status:      record.Result.Status,
		Detections:  len(record.Result.Detections),
		ProcessedAt: record.Result.ProcessedAt,
	}
	if record.Result.BestDate != nil {
		event.BestExpired = record.Result.BestDate.IsExpired
	}

	if err := s.producer.PublishScanEvent(ctx, event); err != nil {
		logrus.Warnf("could not publish scan event for %s: %s", record.ID, err.Error())
	}
}

func (s *scanService) envelope(record *entity.ScanRecord, cached bool) *entity.ScanResponse {
	return &entity.ScanResponse{
		ID:           record.ID,
		Result:       record.Result,
		AnnotatedURL: "/scan/" + record.ID + "/annotated",
		Cached:       cached,
	}
}

func contentHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

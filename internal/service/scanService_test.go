package service

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"io"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"validascan/internal/database"
	"validascan/internal/entity"
	"validascan/internal/pkg/cache"
	"validascan/internal/pkg/compressor"
	"validascan/internal/pkg/storage"
)

type stubUpstream struct {
	calls    int
	response *entity.ProcessImageResponse
	err      error
}

func (s *stubUpstream) Process(_ context.Context, _ string, _ []byte) (*entity.ProcessImageResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.response, nil
}

type stubProducer struct {
	events []entity.ScanEvent
}

func (s *stubProducer) PublishScanEvent(_ context.Context, event entity.ScanEvent) error {
	s.events = append(s.events, event)
	return nil
}

func (s *stubProducer) Close() error { return nil }

func sampleResponse() *entity.ProcessImageResponse {
	expired := false
	date := "2027-03-01"
	return &entity.ProcessImageResponse{
		Status:  entity.StatusSuccess,
		Message: "1 data encontrada",
		Detections: []entity.DetectionResult{
			{
				BBox:       entity.BoundingBox{X1: 5, Y1: 5, X2: 25, Y2: 15, Width: 20, Height: 10},
				Confidence: 0.9,
				ClassName:  "expiry_date",
			},
		},
		Dates:       []entity.ParsedDate{{Date: &date, Confidence: 0.9, IsValid: true, IsExpired: &expired}},
		BestDate:    &entity.ParsedDate{Date: &date, Confidence: 0.9, IsValid: true, IsExpired: &expired},
		ProcessedAt: "2026-08-30T12:00:00Z",
	}
}

func testJPEG(t *testing.T) []byte {
	t.Helper()

	img := imaging.New(64, 48, color.NRGBA{R: 200, G: 180, B: 160, A: 255})
	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.JPEG))
	return buf.Bytes()
}

func newTestService(t *testing.T, up UpstreamProcessor, producer *stubProducer) (ScanService, database.ScanRepository) {
	t.Helper()

	repo := database.NewScanRepository(storage.NewFileStorage(t.TempDir()))
	svc := NewScanService(repo, cache.NewMemory(), producer, compressor.New(1920, 90, 0), up, "http://localhost:8000", 0)
	return svc, repo
}

func processUpload(t *testing.T, svc ScanService, name, contentType string, data []byte) (*entity.ScanResponse, error) {
	t.Helper()
	return svc.ProcessScan(context.Background(), name, contentType, int64(len(data)), bytes.NewReader(data))
}

func TestProcessScanHappyPath(t *testing.T) {
	up := &stubUpstream{response: sampleResponse()}
	producer := &stubProducer{}
	svc, repo := newTestService(t, up, producer)

	data := testJPEG(t)
	response, err := processUpload(t, svc, "label.jpg", "image/jpeg", data)
	require.NoError(t, err)

	assert.NotEmpty(t, response.ID)
	assert.False(t, response.Cached)
	assert.Equal(t, "/scan/"+response.ID+"/annotated", response.AnnotatedURL)
	require.NotNil(t, response.Result)
	assert.Equal(t, entity.StatusSuccess, response.Result.Status)

	// All three artifacts were persisted.
	for _, kind := range []string{database.ArtifactOriginal, database.ArtifactCompressed, database.ArtifactAnnotated} {
		artifact, err := repo.Artifact(response.ID, kind)
		require.NoError(t, err, kind)
		assert.NotEmpty(t, artifact, kind)
	}

	record, err := svc.GetScan(context.Background(), response.ID)
	require.NoError(t, err)
	assert.Equal(t, "label.jpg", record.OriginalName)
	assert.Equal(t, 64, record.Width)
	assert.Equal(t, 48, record.Height)

	require.Len(t, producer.events, 1)
	assert.Equal(t, response.ID, producer.events[0].ScanID)
	assert.Equal(t, 1, producer.events[0].Detections)
	require.NotNil(t, producer.events[0].BestExpired)
	assert.False(t, *producer.events[0].BestExpired)
}

func TestProcessScanDedupsIdenticalUploads(t *testing.T) {
	up := &stubUpstream{response: sampleResponse()}
	svc, _ := newTestService(t, up, &stubProducer{})

	data := testJPEG(t)

	first, err := processUpload(t, svc, "label.jpg", "image/jpeg", data)
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := processUpload(t, svc, "label.jpg", "image/jpeg", data)
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 1, up.calls)
}

func TestProcessScanValidationFailure(t *testing.T) {
	up := &stubUpstream{response: sampleResponse()}
	svc, _ := newTestService(t, up, &stubProducer{})

	_, err := processUpload(t, svc, "report.pdf", "application/pdf", []byte("%PDF"))
	require.Error(t, err)

	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, StageValidation, scanErr.Stage)
	assert.Equal(t, "Por favor, selecione um arquivo de imagem.", scanErr.Message)
	assert.Zero(t, up.calls)
}

func TestProcessScanCompressionFailure(t *testing.T) {
	up := &stubUpstream{response: sampleResponse()}
	svc, _ := newTestService(t, up, &stubProducer{})

	_, err := processUpload(t, svc, "broken.jpg", "image/jpeg", []byte("not an image"))
	require.Error(t, err)

	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, StageCompression, scanErr.Stage)
	assert.Zero(t, up.calls)
}

func TestProcessScanUpstreamFailure(t *testing.T) {
	up := &stubUpstream{err: errors.New("Erro no servidor. Tente novamente mais tarde.")}
	svc, _ := newTestService(t, up, &stubProducer{})

	_, err := processUpload(t, svc, "label.jpg", "image/jpeg", testJPEG(t))
	require.Error(t, err)

	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, StageUpstream, scanErr.Stage)
	assert.Equal(t, "Erro no servidor. Tente novamente mais tarde.", scanErr.Message)
}

func TestDeleteScanReleasesEverything(t *testing.T) {
	up := &stubUpstream{response: sampleResponse()}
	svc, repo := newTestService(t, up, &stubProducer{})

	data := testJPEG(t)
	response, err := processUpload(t, svc, "label.jpg", "image/jpeg", data)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteScan(context.Background(), response.ID))

	_, err = svc.GetScan(context.Background(), response.ID)
	assert.ErrorIs(t, err, database.ErrScanNotFound)

	_, err = repo.Artifact(response.ID, database.ArtifactAnnotated)
	assert.ErrorIs(t, err, database.ErrScanNotFound)

	// The hash entry went too: a re-upload hits the upstream again.
	again, err := processUpload(t, svc, "label.jpg", "image/jpeg", data)
	require.NoError(t, err)
	assert.False(t, again.Cached)
	assert.Equal(t, 2, up.calls)
}

func TestDeleteScanUnknownID(t *testing.T) {
	svc, _ := newTestService(t, &stubUpstream{response: sampleResponse()}, &stubProducer{})

	err := svc.DeleteScan(context.Background(), "does-not-exist")
	assert.ErrorIs(t, err, database.ErrScanNotFound)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}

func TestProcessScanReadFailure(t *testing.T) {
	svc, _ := newTestService(t, &stubUpstream{response: sampleResponse()}, &stubProducer{})

	_, err := svc.ProcessScan(context.Background(), "label.jpg", "image/jpeg", 100, failingReader{})
	require.Error(t, err)

	var scanErr *ScanError
	require.ErrorAs(t, err, &scanErr)
	assert.Equal(t, "Erro ao ler arquivo. Tente novamente.", scanErr.Message)
}

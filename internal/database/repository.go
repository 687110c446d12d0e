package database

import (
	"validascan/internal/entity"
	"validascan/internal/pkg/storage"
)

type ScanRepository interface {
	Save(record *entity.ScanRecord) error
	FindByID(id string) (*entity.ScanRecord, error)
	Delete(id string) error
	SaveArtifact(id, kind string, data []byte) error
	Artifact(id, kind string) ([]byte, error)
}

// Artifact kinds stored per scan.
const (
	ArtifactOriginal   = "original"
	ArtifactCompressed = "compressed"
	ArtifactAnnotated  = "annotated"
)

type fileScanRepository struct {
	storage storage.FileStorage
}

package database

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	"validascan/internal/entity"
	"validascan/internal/pkg/storage"
)

var ErrScanNotFound = errors.New("scan not found")

func NewScanRepository(storage storage.FileStorage) ScanRepository {
	return &fileScanRepository{storage: storage}
}

func (r *fileScanRepository) Save(record *entity.ScanRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return r.storage.Save(r.metadataPath(record.ID), bytes.NewReader(data))
}

func (r *fileScanRepository) FindByID(id string) (*entity.ScanRecord, error) {
	reader, err := r.storage.Get(r.metadataPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScanNotFound
		}
		return nil, err
	}
	defer reader.Close()

	var record entity.ScanRecord
	if err := json.NewDecoder(reader).Decode(&record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (r *fileScanRepository) Delete(id string) error {
	if !r.storage.Exists(r.metadataPath(id)) {
		return ErrScanNotFound
	}

	if err := r.storage.Delete(r.metadataPath(id)); err != nil && !os.IsNotExist(err) {
		return err
	}

	for _, kind := range []string{ArtifactOriginal, ArtifactCompressed, ArtifactAnnotated} {
		if err := r.storage.Delete(r.artifactPath(id, kind)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}

func (r *fileScanRepository) SaveArtifact(id, kind string, data []byte) error {
	return r.storage.SaveBytes(r.artifactPath(id, kind), data)
}

func (r *fileScanRepository) Artifact(id, kind string) ([]byte, error) {
	data, err := r.storage.ReadBytes(r.artifactPath(id, kind))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScanNotFound
		}
		return nil, err
	}
	return data, nil
}

func (r *fileScanRepository) metadataPath(id string) string {
	return filepath.Join("metadata", id+".json")
}

func (r *fileScanRepository) artifactPath(id, kind string) string {
	// Originals keep whatever bytes were uploaded; the rest are always JPEG.
	if kind == ArtifactOriginal {
		return filepath.Join(kind, id)
	}
	return filepath.Join(kind, id+".jpg")
}

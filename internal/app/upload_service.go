package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/google/uuid"

	"surveylens/internal/model"
	"surveylens/internal/pkg/csvtable"
	"surveylens/internal/storage"
)

var ErrUploadNotFound = errors.New("csv upload not found")

// UploadRepo is the persistence surface the upload and plot services need.
type UploadRepo interface {
	Create(upload *model.CSVUpload) error
	GetByID(id string) (*model.CSVUpload, error)
	ListByUserID(userID uint) ([]model.CSVUpload, error)
	DeleteByID(id string) error
}

// UploadCleanupScheduler hands blob removal to the background worker.
type UploadCleanupScheduler interface {
	Schedule(ctx context.Context, uploadID, storageKey string) error
}

type UploadService struct {
	uploadRepo UploadRepo
	store      storage.Store
	cleanup    UploadCleanupScheduler
}

type UploadInput struct {
	UserID   uint
	FileName string
	Size     int64
	Content  io.Reader
}

func NewUploadService(uploadRepo UploadRepo, store storage.Store, cleanup UploadCleanupScheduler) *UploadService {
	return &UploadService{
		uploadRepo: uploadRepo,
		store:      store,
		cleanup:    cleanup,
	}
}

// Upload stores the file content under a generated key, extracts the
// header once, and persists the metadata record. The column list is the
// only part of the file ever read at upload time.
func (s *UploadService) Upload(ctx context.Context, input UploadInput) (*model.CSVUpload, error) {
	if input.UserID == 0 || input.Content == nil {
		return nil, ErrInvalidInput
	}

	id := uuid.NewString()
	key := fmt.Sprintf("%s-%s", id, filepath.Base(input.FileName))

	if err := s.store.Save(ctx, key, input.Content, input.Size); err != nil {
		return nil, err
	}

	columns, err := s.readColumns(ctx, key)
	if err != nil {
		// The blob is useless without a readable header; drop it again.
		if removeErr := s.store.Remove(ctx, key); removeErr != nil {
			log.Printf("remove unreadable upload blob %s failed: %v", key, removeErr)
		}
		return nil, err
	}

	upload := &model.CSVUpload{
		ID:         id,
		UserID:     input.UserID,
		FileName:   input.FileName,
		StorageKey: key,
		Columns:    columns,
	}
	if err := s.uploadRepo.Create(upload); err != nil {
		return nil, err
	}
	return upload, nil
}

func (s *UploadService) List(userID uint) ([]model.CSVUpload, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.uploadRepo.ListByUserID(userID)
}

// Delete removes the metadata record and schedules blob removal on the
// cleanup queue. If scheduling fails the blob is removed inline so the
// record never outlives a reachable file in the happy path.
func (s *UploadService) Delete(ctx context.Context, userID uint, uploadID string) error {
	if userID == 0 || uploadID == "" {
		return ErrInvalidInput
	}

	upload, err := s.uploadRepo.GetByID(uploadID)
	if err != nil {
		return err
	}
	if upload == nil {
		return ErrUploadNotFound
	}
	if err := authorizeOwner(upload.UserID, userID); err != nil {
		return err
	}

	if err := s.uploadRepo.DeleteByID(uploadID); err != nil {
		return err
	}

	if s.cleanup != nil {
		err := s.cleanup.Schedule(ctx, upload.ID, upload.StorageKey)
		if err == nil {
			return nil
		}
		log.Printf("schedule blob cleanup for upload %s failed: %v", upload.ID, err)
	}
	if err := s.store.Remove(ctx, upload.StorageKey); err != nil && !errors.Is(err, storage.ErrBlobNotFound) {
		log.Printf("remove blob for upload %s failed: %v", upload.ID, err)
	}
	return nil
}

func (s *UploadService) readColumns(ctx context.Context, key string) (model.StringList, error) {
	src, err := s.store.Open(ctx, key)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	columns, err := csvtable.ReadColumns(src)
	if err != nil {
		return nil, err
	}
	return model.StringList(columns), nil
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log"

	"surveylens/internal/model"
	"surveylens/internal/pkg/csvtable"
	"surveylens/internal/plot"
	"surveylens/internal/storage"
)

// PlotDataCache holds derived plot payloads keyed by upload and request.
// Derivation re-streams the file when the cache misses or is absent.
type PlotDataCache interface {
	Get(ctx context.Context, uploadID string, kind plot.Kind, xAxis string, yAxes []string) (*plot.Result, bool, error)
	Set(ctx context.Context, uploadID string, kind plot.Kind, xAxis string, yAxes []string, result *plot.Result) error
}

type PlotService struct {
	uploadRepo UploadRepo
	store      storage.Store
	cache      PlotDataCache
}

type PlotDataInput struct {
	UserID   uint
	UploadID string
	PlotType string
	XAxis    string
	YAxes    []string
}

type GroupByInput struct {
	UserID   uint
	UploadID string
	Columns  []string
}

func NewPlotService(uploadRepo UploadRepo, store storage.Store, cache PlotDataCache) *PlotService {
	return &PlotService{
		uploadRepo: uploadRepo,
		store:      store,
		cache:      cache,
	}
}

// BuildPlotData validates the request, checks ownership, then streams the
// stored file once to shape the chart payload. Validation always runs
// before any file read.
func (s *PlotService) BuildPlotData(ctx context.Context, input PlotDataInput) (*plot.Result, error) {
	if input.UserID == 0 || input.UploadID == "" {
		return nil, fmt.Errorf("%w: plot type and csv upload id are required", plot.ErrInvalidRequest)
	}
	kind, ok := plot.ParseKind(input.PlotType)
	if !ok {
		return nil, fmt.Errorf("%w: unsupported plot type %q", plot.ErrInvalidRequest, input.PlotType)
	}
	if err := plot.ValidateRequest(kind, input.XAxis, input.YAxes); err != nil {
		return nil, err
	}

	upload, err := s.authorizedUpload(input.UserID, input.UploadID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		cached, hit, cacheErr := s.cache.Get(ctx, upload.ID, kind, input.XAxis, input.YAxes)
		if cacheErr != nil {
			log.Printf("plot cache lookup for upload %s failed: %v", upload.ID, cacheErr)
		} else if hit {
			return cached, nil
		}
	}

	reader, closeFn, err := s.openReader(ctx, upload)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	result, err := plot.Build(reader, kind, input.XAxis, input.YAxes)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.Set(ctx, upload.ID, kind, input.XAxis, input.YAxes, result); cacheErr != nil {
			log.Printf("plot cache store for upload %s failed: %v", upload.ID, cacheErr)
		}
	}
	return result, nil
}

// GroupBy counts distinct values for each requested column across the
// whole file, independently per column.
func (s *PlotService) GroupBy(ctx context.Context, input GroupByInput) (map[string][]plot.ValueCount, error) {
	if input.UserID == 0 || input.UploadID == "" {
		return nil, fmt.Errorf("%w: columns and csv upload id are required", plot.ErrInvalidRequest)
	}
	if len(input.Columns) == 0 {
		return nil, fmt.Errorf("%w: at least one column is required", plot.ErrInvalidRequest)
	}

	upload, err := s.authorizedUpload(input.UserID, input.UploadID)
	if err != nil {
		return nil, err
	}

	reader, closeFn, err := s.openReader(ctx, upload)
	if err != nil {
		return nil, err
	}
	defer closeFn()

	return plot.GroupBy(reader, input.Columns)
}

func (s *PlotService) authorizedUpload(userID uint, uploadID string) (*model.CSVUpload, error) {
	upload, err := s.uploadRepo.GetByID(uploadID)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, ErrUploadNotFound
	}
	if err := authorizeOwner(upload.UserID, userID); err != nil {
		return nil, err
	}
	return upload, nil
}

func (s *PlotService) openReader(ctx context.Context, upload *model.CSVUpload) (*csvtable.Reader, func(), error) {
	src, err := s.store.Open(ctx, upload.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return nil, nil, ErrUploadNotFound
		}
		return nil, nil, err
	}

	reader, err := csvtable.NewReader(src)
	if err != nil {
		src.Close()
		return nil, nil, err
	}
	return reader, func() { src.Close() }, nil
}

package app

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveylens/internal/model"
	"surveylens/internal/plot"
	"surveylens/internal/storage"
)

type fakeUploadRepo struct {
	uploads map[string]*model.CSVUpload
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: make(map[string]*model.CSVUpload)}
}

func (r *fakeUploadRepo) Create(upload *model.CSVUpload) error {
	copied := *upload
	r.uploads[upload.ID] = &copied
	return nil
}

func (r *fakeUploadRepo) GetByID(id string) (*model.CSVUpload, error) {
	upload, ok := r.uploads[id]
	if !ok {
		return nil, nil
	}
	copied := *upload
	return &copied, nil
}

func (r *fakeUploadRepo) ListByUserID(userID uint) ([]model.CSVUpload, error) {
	var result []model.CSVUpload
	for _, upload := range r.uploads {
		if upload.UserID == userID {
			result = append(result, *upload)
		}
	}
	return result, nil
}

func (r *fakeUploadRepo) DeleteByID(id string) error {
	delete(r.uploads, id)
	return nil
}

// seedUpload writes content into a fresh local store and registers the
// matching metadata record for userID.
func seedUpload(t *testing.T, repo *fakeUploadRepo, store storage.Store, userID uint, content string) *model.CSVUpload {
	t.Helper()

	key := "test-upload.csv"
	require.NoError(t, store.Save(context.Background(), key, strings.NewReader(content), int64(len(content))))

	upload := &model.CSVUpload{
		ID:         "upload-1",
		UserID:     userID,
		FileName:   "test.csv",
		StorageKey: key,
	}
	require.NoError(t, repo.Create(upload))
	return upload
}

func newPlotFixture(t *testing.T, content string) (*PlotService, *model.CSVUpload) {
	t.Helper()

	repo := newFakeUploadRepo()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	upload := seedUpload(t, repo, store, 1, content)
	return NewPlotService(repo, store, nil), upload
}

func TestBuildPlotDataBar(t *testing.T) {
	service, upload := newPlotFixture(t, "name,score\nalice,10\nbob,20\n")

	result, err := service.BuildPlotData(context.Background(), PlotDataInput{
		UserID:   1,
		UploadID: upload.ID,
		PlotType: "bar",
		XAxis:    "name",
		YAxes:    []string{"score"},
	})
	require.NoError(t, err)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "bar", result.Data[0].Type)
	assert.Equal(t, []string{"alice", "bob"}, result.Data[0].X)
	assert.Equal(t, []float64{10, 20}, result.Data[0].Y)
	assert.Equal(t, "Bar Plot", result.Layout.Title)
}

func TestBuildPlotDataValidatesBeforeLookup(t *testing.T) {
	repo := newFakeUploadRepo()
	store, err := storage.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	service := NewPlotService(repo, store, nil)

	// Invalid axes on a nonexistent upload still fail as a bad request,
	// never as a not-found.
	_, err = service.BuildPlotData(context.Background(), PlotDataInput{
		UserID:   1,
		UploadID: "missing",
		PlotType: "bar",
	})
	require.ErrorIs(t, err, plot.ErrInvalidRequest)

	_, err = service.BuildPlotData(context.Background(), PlotDataInput{
		UserID:   1,
		UploadID: "missing",
		PlotType: "volcano",
		XAxis:    "a",
		YAxes:    []string{"b"},
	})
	require.ErrorIs(t, err, plot.ErrInvalidRequest)
}

func TestBuildPlotDataUploadNotFound(t *testing.T) {
	service, _ := newPlotFixture(t, "name,score\nalice,10\n")

	_, err := service.BuildPlotData(context.Background(), PlotDataInput{
		UserID:   1,
		UploadID: "missing",
		PlotType: "bar",
		XAxis:    "name",
		YAxes:    []string{"score"},
	})
	require.ErrorIs(t, err, ErrUploadNotFound)
}

func TestBuildPlotDataForbiddenForOtherUser(t *testing.T) {
	service, upload := newPlotFixture(t, "name,score\nalice,10\n")

	_, err := service.BuildPlotData(context.Background(), PlotDataInput{
		UserID:   2,
		UploadID: upload.ID,
		PlotType: "bar",
		XAxis:    "name",
		YAxes:    []string{"score"},
	})
	require.ErrorIs(t, err, ErrNotOwner)
}

func TestBuildPlotDataNoRows(t *testing.T) {
	service, upload := newPlotFixture(t, "name,score\n")

	_, err := service.BuildPlotData(context.Background(), PlotDataInput{
		UserID:   1,
		UploadID: upload.ID,
		PlotType: "line",
		XAxis:    "name",
		YAxes:    []string{"score"},
	})
	require.ErrorIs(t, err, plot.ErrNoData)
}

func TestGroupByService(t *testing.T) {
	service, upload := newPlotFixture(t, "status\nok\nerr\nok\n")

	result, err := service.GroupBy(context.Background(), GroupByInput{
		UserID:   1,
		UploadID: upload.ID,
		Columns:  []string{"status"},
	})
	require.NoError(t, err)
	require.Equal(t, []plot.ValueCount{
		{Value: "ok", Count: 2},
		{Value: "err", Count: 1},
	}, result["status"])
}

func TestGroupByServiceRequiresColumns(t *testing.T) {
	service, upload := newPlotFixture(t, "status\nok\n")

	_, err := service.GroupBy(context.Background(), GroupByInput{
		UserID:   1,
		UploadID: upload.ID,
	})
	require.ErrorIs(t, err, plot.ErrInvalidRequest)
}

package app

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveylens/internal/model"
)

type fakeAnalysisRepo struct {
	analyses map[string]*model.Analysis
	saves    int
}

func newFakeAnalysisRepo() *fakeAnalysisRepo {
	return &fakeAnalysisRepo{analyses: make(map[string]*model.Analysis)}
}

func (r *fakeAnalysisRepo) Create(analysis *model.Analysis) error {
	copied := *analysis
	r.analyses[analysis.ID] = &copied
	return nil
}

func (r *fakeAnalysisRepo) GetByID(id string) (*model.Analysis, error) {
	analysis, ok := r.analyses[id]
	if !ok {
		return nil, nil
	}
	copied := *analysis
	return &copied, nil
}

func (r *fakeAnalysisRepo) ListByUserID(userID uint) ([]model.Analysis, error) {
	var result []model.Analysis
	for _, analysis := range r.analyses {
		if analysis.UserID == userID {
			result = append(result, *analysis)
		}
	}
	return result, nil
}

func (r *fakeAnalysisRepo) Save(analysis *model.Analysis) error {
	copied := *analysis
	r.analyses[analysis.ID] = &copied
	r.saves++
	return nil
}

func (r *fakeAnalysisRepo) DeleteByID(id string) error {
	delete(r.analyses, id)
	return nil
}

func validPlot() PlotEntry {
	return PlotEntry{
		Title: "Orders by region",
		Type:  "bar",
		Configuration: &model.PlotConfiguration{
			XAxis: "region",
			YAxes: []string{"orders"},
		},
		Data: json.RawMessage(`[{"type":"bar","x":["north"],"y":[3]}]`),
	}
}

func TestAnalysisSaveDefaultsTitleAndAuthor(t *testing.T) {
	service := NewAnalysisService(newFakeAnalysisRepo())

	analysis, err := service.Save(SaveAnalysisInput{
		UserID:        1,
		Username:      "alice",
		Plots:         []PlotEntry{validPlot()},
		PlotsProvided: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, analysis.ID)
	assert.Equal(t, "Untitled Analysis", analysis.Title)
	assert.Equal(t, "alice", analysis.AuthorName)
	assert.False(t, analysis.IsPublic)
}

func TestAnalysisSaveUnknownAuthorFallback(t *testing.T) {
	service := NewAnalysisService(newFakeAnalysisRepo())

	analysis, err := service.Save(SaveAnalysisInput{
		UserID:        1,
		Plots:         []PlotEntry{},
		PlotsProvided: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Unknown Author", analysis.AuthorName)
	assert.Empty(t, analysis.Plots)
}

func TestAnalysisSaveRequiresPlotsField(t *testing.T) {
	service := NewAnalysisService(newFakeAnalysisRepo())

	_, err := service.Save(SaveAnalysisInput{UserID: 1})
	require.ErrorIs(t, err, ErrPlotValidation)
}

func TestAnalysisSavePlotValidation(t *testing.T) {
	service := NewAnalysisService(newFakeAnalysisRepo())

	cases := []struct {
		name string
		plot PlotEntry
	}{
		{"missing type", PlotEntry{Data: json.RawMessage(`[{"x":[1]}]`)}},
		{"missing data", PlotEntry{Type: "bar"}},
		{"null data", PlotEntry{Type: "bar", Data: json.RawMessage(`null`)}},
		{"empty array data", PlotEntry{Type: "bar", Data: json.RawMessage(`[]`)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := service.Save(SaveAnalysisInput{
				UserID:        1,
				Plots:         []PlotEntry{tc.plot},
				PlotsProvided: true,
			})
			require.ErrorIs(t, err, ErrPlotValidation)
		})
	}
}

func TestAnalysisSaveDefaultsPlotTitleAndConfig(t *testing.T) {
	repo := newFakeAnalysisRepo()
	service := NewAnalysisService(repo)

	analysis, err := service.Save(SaveAnalysisInput{
		UserID: 1,
		Plots: []PlotEntry{{
			Type: "pie",
			Data: json.RawMessage(`[{"labels":["a"],"values":[1]}]`),
		}},
		PlotsProvided: true,
	})
	require.NoError(t, err)
	require.Len(t, analysis.Plots, 1)
	assert.Equal(t, "Untitled Plot", analysis.Plots[0].Title)
	assert.Empty(t, analysis.Plots[0].Configuration.XAxis)
	assert.NotNil(t, analysis.Plots[0].Configuration.YAxes)
}

func TestAnalysisGetOwnership(t *testing.T) {
	repo := newFakeAnalysisRepo()
	service := NewAnalysisService(repo)

	saved, err := service.Save(SaveAnalysisInput{
		UserID:        1,
		Plots:         []PlotEntry{validPlot()},
		PlotsProvided: true,
	})
	require.NoError(t, err)

	_, err = service.Get(2, saved.ID)
	require.ErrorIs(t, err, ErrNotOwner)

	_, err = service.Get(1, "no-such-id")
	require.ErrorIs(t, err, ErrAnalysisNotFound)

	got, err := service.Get(1, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
}

func TestAnalysisUpdateMergeSemantics(t *testing.T) {
	repo := newFakeAnalysisRepo()
	service := NewAnalysisService(repo)

	saved, err := service.Save(SaveAnalysisInput{
		UserID:        1,
		Title:         "Quarterly revenue",
		AuthorName:    "alice",
		Description:   "initial",
		Plots:         []PlotEntry{validPlot()},
		PlotsProvided: true,
	})
	require.NoError(t, err)

	// Empty title and author keep the stored values; an explicit empty
	// description replaces it; omitted plots stay untouched.
	empty := ""
	updated, err := service.Update(UpdateAnalysisInput{
		UserID:      1,
		AnalysisID:  saved.ID,
		Description: &empty,
	})
	require.NoError(t, err)
	assert.Equal(t, "Quarterly revenue", updated.Title)
	assert.Equal(t, "alice", updated.AuthorName)
	assert.Empty(t, updated.Description)
	assert.Len(t, updated.Plots, 1)

	updated, err = service.Update(UpdateAnalysisInput{
		UserID:        1,
		AnalysisID:    saved.ID,
		Title:         "Annual revenue",
		Plots:         []PlotEntry{},
		PlotsProvided: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Annual revenue", updated.Title)
	assert.Empty(t, updated.Plots)
}

func TestAnalysisUpdateRejectsInvalidPlots(t *testing.T) {
	service := NewAnalysisService(newFakeAnalysisRepo())

	saved, err := service.Save(SaveAnalysisInput{
		UserID:        1,
		Plots:         []PlotEntry{validPlot()},
		PlotsProvided: true,
	})
	require.NoError(t, err)

	_, err = service.Update(UpdateAnalysisInput{
		UserID:        1,
		AnalysisID:    saved.ID,
		Plots:         []PlotEntry{{Type: "bar"}},
		PlotsProvided: true,
	})
	require.ErrorIs(t, err, ErrPlotValidation)
}

func TestAnalysisDelete(t *testing.T) {
	repo := newFakeAnalysisRepo()
	service := NewAnalysisService(repo)

	saved, err := service.Save(SaveAnalysisInput{
		UserID:        1,
		Plots:         []PlotEntry{validPlot()},
		PlotsProvided: true,
	})
	require.NoError(t, err)

	require.ErrorIs(t, service.Delete(2, saved.ID), ErrNotOwner)
	require.NoError(t, service.Delete(1, saved.ID))

	_, err = service.Get(1, saved.ID)
	require.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestAnalysisPublishIdempotent(t *testing.T) {
	repo := newFakeAnalysisRepo()
	service := NewAnalysisService(repo)

	saved, err := service.Save(SaveAnalysisInput{
		UserID:        1,
		Plots:         []PlotEntry{validPlot()},
		PlotsProvided: true,
	})
	require.NoError(t, err)

	published, err := service.Publish(1, saved.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)
	savesAfterFirst := repo.saves

	published, err = service.Publish(1, saved.ID)
	require.NoError(t, err)
	assert.True(t, published.IsPublic)
	assert.Equal(t, savesAfterFirst, repo.saves)

	_, err = service.Publish(2, saved.ID)
	require.ErrorIs(t, err, ErrNotOwner)
}

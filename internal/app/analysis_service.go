package app

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"surveylens/internal/model"
)

var (
	ErrAnalysisNotFound = errors.New("analysis not found")
	ErrPlotValidation   = errors.New("plot validation failed")
)

// AnalysisRepo is the persistence surface for saved analyses.
type AnalysisRepo interface {
	Create(analysis *model.Analysis) error
	GetByID(id string) (*model.Analysis, error)
	ListByUserID(userID uint) ([]model.Analysis, error)
	Save(analysis *model.Analysis) error
	DeleteByID(id string) error
}

type AnalysisService struct {
	analysisRepo AnalysisRepo
}

// PlotEntry is one submitted plot before validation. Data stays raw: the
// store only cares that it is present and non-empty.
type PlotEntry struct {
	Title         string                   `json:"title"`
	Type          string                   `json:"type"`
	Configuration *model.PlotConfiguration `json:"configuration"`
	Data          json.RawMessage          `json:"data"`
}

type SaveAnalysisInput struct {
	UserID        uint
	Username      string
	Title         string
	AuthorName    string
	Description   string
	Plots         []PlotEntry
	PlotsProvided bool
}

type UpdateAnalysisInput struct {
	UserID        uint
	AnalysisID    string
	Title         string
	AuthorName    string
	Description   *string
	Plots         []PlotEntry
	PlotsProvided bool
}

func NewAnalysisService(analysisRepo AnalysisRepo) *AnalysisService {
	return &AnalysisService{analysisRepo: analysisRepo}
}

func (s *AnalysisService) Save(input SaveAnalysisInput) (*model.Analysis, error) {
	if input.UserID == 0 {
		return nil, ErrInvalidInput
	}
	if !input.PlotsProvided {
		return nil, fmt.Errorf("%w: plots must be an array", ErrPlotValidation)
	}

	plots, err := validatePlots(input.Plots)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = "Untitled Analysis"
	}
	author := strings.TrimSpace(input.AuthorName)
	if author == "" {
		author = input.Username
	}
	if author == "" {
		author = "Unknown Author"
	}

	analysis := &model.Analysis{
		ID:          uuid.NewString(),
		UserID:      input.UserID,
		Title:       title,
		AuthorName:  author,
		Description: input.Description,
		Plots:       plots,
	}
	if err := s.analysisRepo.Create(analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

func (s *AnalysisService) List(userID uint) ([]model.Analysis, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}
	return s.analysisRepo.ListByUserID(userID)
}

func (s *AnalysisService) Get(userID uint, analysisID string) (*model.Analysis, error) {
	return s.authorizedAnalysis(userID, analysisID)
}

// Update merges title/author when supplied, replaces description whenever
// it is present (even empty), and fully replaces the plot list when one is
// supplied, after the same per-entry validation as Save.
func (s *AnalysisService) Update(input UpdateAnalysisInput) (*model.Analysis, error) {
	analysis, err := s.authorizedAnalysis(input.UserID, input.AnalysisID)
	if err != nil {
		return nil, err
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		analysis.Title = title
	}
	if author := strings.TrimSpace(input.AuthorName); author != "" {
		analysis.AuthorName = author
	}
	if input.Description != nil {
		analysis.Description = *input.Description
	}
	if input.PlotsProvided {
		plots, err := validatePlots(input.Plots)
		if err != nil {
			return nil, err
		}
		analysis.Plots = plots
	}

	if err := s.analysisRepo.Save(analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

func (s *AnalysisService) Delete(userID uint, analysisID string) error {
	analysis, err := s.authorizedAnalysis(userID, analysisID)
	if err != nil {
		return err
	}
	return s.analysisRepo.DeleteByID(analysis.ID)
}

// Publish flips the analysis public. Publishing an already-public analysis
// is a no-op success.
func (s *AnalysisService) Publish(userID uint, analysisID string) (*model.Analysis, error) {
	analysis, err := s.authorizedAnalysis(userID, analysisID)
	if err != nil {
		return nil, err
	}
	if analysis.IsPublic {
		return analysis, nil
	}

	analysis.IsPublic = true
	if err := s.analysisRepo.Save(analysis); err != nil {
		return nil, err
	}
	return analysis, nil
}

func (s *AnalysisService) authorizedAnalysis(userID uint, analysisID string) (*model.Analysis, error) {
	if userID == 0 || analysisID == "" {
		return nil, ErrInvalidInput
	}

	analysis, err := s.analysisRepo.GetByID(analysisID)
	if err != nil {
		return nil, err
	}
	if analysis == nil {
		return nil, ErrAnalysisNotFound
	}
	if err := authorizeOwner(analysis.UserID, userID); err != nil {
		return nil, err
	}
	return analysis, nil
}

func validatePlots(entries []PlotEntry) (model.PlotList, error) {
	plots := make(model.PlotList, 0, len(entries))
	for i, entry := range entries {
		if strings.TrimSpace(entry.Type) == "" {
			return nil, fmt.Errorf("%w: plot #%d is missing required field: type", ErrPlotValidation, i+1)
		}
		if emptyPlotData(entry.Data) {
			return nil, fmt.Errorf("%w: plot #%d is missing required field: data", ErrPlotValidation, i+1)
		}

		title := strings.TrimSpace(entry.Title)
		if title == "" {
			title = "Untitled Plot"
		}
		configuration := model.PlotConfiguration{YAxes: []string{}}
		if entry.Configuration != nil {
			configuration = *entry.Configuration
			if configuration.YAxes == nil {
				configuration.YAxes = []string{}
			}
		}

		plots = append(plots, model.Plot{
			Title:         title,
			Type:          entry.Type,
			Configuration: configuration,
			Data:          entry.Data,
		})
	}
	return plots, nil
}

// emptyPlotData reports whether a submitted data field is absent, null, or
// an empty array. Anything else counts as usable payload.
func emptyPlotData(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return true
	}
	if trimmed[0] == '[' {
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err == nil && len(items) == 0 {
			return true
		}
	}
	return false
}

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/datatypes"

	"bettracker/internal/analytics"
	"bettracker/internal/models"
	"bettracker/internal/repository"
)

// Analyzer produces commentary for aggregated stats.
type Analyzer interface {
	Analyze(ctx context.Context, aggregates any, question string) (string, error)
	TextModel() string
}

type AnalyzeRequest struct {
	Filters  analytics.Filter `json:"filters"`
	Question *string          `json:"question"`
}

type AnalyzeResult struct {
	ID                uint64             `json:"id"`
	AnalysisText      string             `json:"analysis_text"`
	UsedFilters       analytics.Filter   `json:"used_filters"`
	AggregatesSummary analytics.Overview `json:"aggregates_summary"`
}

type AIService struct {
	Repo     repository.AnalysisRepository
	Stats    *StatsService
	LLM      Analyzer
	Settings *SystemSettingsService
	Logger   *zap.Logger

	Retention    time.Duration
	HistoryLimit int
	Now          func() time.Time
}

func (s *AIService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Analyze composes the overview for the filter, asks the text model about it
// and stores the exchange. Nothing is stored when the model call fails.
func (s *AIService) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResult, error) {
	if s.LLM == nil {
		return nil, fmt.Errorf("text model not configured")
	}
	overview, err := s.Stats.Overview(ctx, req.Filters)
	if err != nil {
		return nil, err
	}
	question := ""
	if req.Question != nil {
		question = strings.TrimSpace(*req.Question)
	}
	text, err := s.LLM.Analyze(ctx, overview, question)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}

	filtersJSON, err := json.Marshal(req.Filters)
	if err != nil {
		return nil, err
	}
	aggregatesJSON, err := json.Marshal(overview)
	if err != nil {
		return nil, err
	}
	record := &models.AiAnalysis{
		Context:      datatypes.JSON(filtersJSON),
		Aggregates:   datatypes.JSON(aggregatesJSON),
		ModelName:    s.LLM.TextModel(),
		ResponseText: text,
		CreatedAt:    s.now(),
	}
	if question != "" {
		record.Question = &question
	}
	if err := s.Repo.InsertAiAnalysis(ctx, record); err != nil {
		return nil, fmt.Errorf("store analysis: %w", err)
	}
	return &AnalyzeResult{
		ID:                record.ID,
		AnalysisText:      text,
		UsedFilters:       req.Filters,
		AggregatesSummary: overview,
	}, nil
}

// History returns the newest analyses first. Aggregates are left out of the
// listing.
func (s *AIService) History(ctx context.Context, limit int) ([]models.AiAnalysis, error) {
	if limit <= 0 {
		limit = s.HistoryLimit
	}
	items, err := s.Repo.ListAiAnalyses(ctx, repository.ListAiAnalysesParams{Limit: limit})
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].Aggregates = nil
	}
	if items == nil {
		items = []models.AiAnalysis{}
	}
	return items, nil
}

// Prune deletes analyses older than the retention window. It is a no-op when
// retention is unset or the feature switch is off.
func (s *AIService) Prune(ctx context.Context) (int64, error) {
	if s.Retention <= 0 || !s.Settings.IsEnabled(ctx, FeatureAIPrune, true) {
		return 0, nil
	}
	cutoff := s.now().Add(-s.Retention)
	n, err := s.Repo.DeleteAiAnalysesBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune analyses: %w", err)
	}
	if n > 0 && s.Logger != nil {
		s.Logger.Info("ai history pruned", zap.Int64("deleted", n), zap.Time("before", cutoff))
	}
	return n, nil
}

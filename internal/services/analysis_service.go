package services

import (
	"time"

	"github.com/glucotrack/backend/internal/analytics"
	"github.com/glucotrack/backend/internal/cache"
	"github.com/glucotrack/backend/internal/db/models"
	"github.com/glucotrack/backend/internal/db/repository"
	"github.com/glucotrack/backend/internal/metrics"
	"github.com/glucotrack/backend/internal/utils"
	"go.uber.org/zap"
)

// ReportCache abstracts the analysis report cache
type ReportCache interface {
	SetWithTTL(key string, value interface{}, ttl time.Duration) error
	Get(key string, dest interface{}) error
}

// AnalysisReport is the full analysis response for a patient window
type AnalysisReport struct {
	PatientID       uint                        `json:"patient_id"`
	PeriodDays      int                         `json:"period_days"`
	Daily           []DailyEntry                `json:"daily_metrics"`
	Aggregate       analytics.AggregateMetrics  `json:"aggregate"`
	Cluster         analytics.ClusterAssignment `json:"cluster"`
	Trend           string                      `json:"trend"`
	RiskScore       float64                     `json:"risk_score"`
	Recommendations []analytics.Recommendation  `json:"recommendations"`
	GeneratedAt     time.Time                   `json:"generated_at"`
}

// DailyEntry pairs a calendar date with its metrics
type DailyEntry struct {
	Date    string                 `json:"date"`
	Metrics analytics.DailyMetrics `json:"metrics"`
}

// ClusterInfo describes one profile in the cluster catalog
type ClusterInfo struct {
	ClusterID   int    `json:"cluster_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// AnalysisHistory is the stored analysis trail for a patient
type AnalysisHistory struct {
	PatientID   uint                             `json:"patient_id"`
	PeriodDays  int                              `json:"period_days"`
	Daily       []models.DailyMetricsRecord      `json:"daily_metrics"`
	Assignments []models.ClusterAssignmentRecord `json:"cluster_assignments"`
}

// AnalysisService orchestrates metric computation, classification,
// trend assessment and recommendation generation.
type AnalysisService struct {
	readings   repository.ReadingRepository
	analysis   repository.AnalysisRepository
	classifier *analytics.ProfileClassifier
	cache      ReportCache
	cacheTTL   time.Duration
	logger     *utils.Logger
	now        func() time.Time
}

// NewAnalysisService creates a new analysis service. The cache may be nil,
// in which case every report is computed from scratch.
func NewAnalysisService(
	readings repository.ReadingRepository,
	analysis repository.AnalysisRepository,
	classifier *analytics.ProfileClassifier,
	reportCache ReportCache,
	cacheTTL time.Duration,
	logger *utils.Logger,
) *AnalysisService {
	if cacheTTL <= 0 {
		cacheTTL = cache.DefaultTTL
	}
	return &AnalysisService{
		readings:   readings,
		analysis:   analysis,
		classifier: classifier,
		cache:      reportCache,
		cacheTTL:   cacheTTL,
		logger:     logger.Named("analysis_service"),
		now:        time.Now,
	}
}

// ComputeDailyMetrics calculates and persists the metrics for one
// patient-day. The date is truncated to midnight UTC.
func (s *AnalysisService) ComputeDailyMetrics(patientID uint, date time.Time) (*models.DailyMetricsRecord, error) {
	day := date.UTC().Truncate(24 * time.Hour)

	readings, err := s.readings.GetRange(patientID, day, day.Add(24*time.Hour))
	if err != nil {
		return nil, err
	}

	values := make([]float64, len(readings))
	for i, r := range readings {
		values[i] = r.Glucose
	}

	m, err := analytics.CalculateDailyMetrics(values)
	if err != nil {
		return nil, err
	}

	record := metricsToRecord(patientID, day, m)
	if err := s.analysis.UpsertDailyMetrics(record); err != nil {
		return nil, err
	}

	return record, nil
}

// GetAnalysisReport builds the full analysis report over the last `days`
// calendar days, serving from cache when possible. Days without enough
// readings are skipped; a report needs at least one valid day.
func (s *AnalysisService) GetAnalysisReport(patientID uint, days int) (*AnalysisReport, error) {
	key := cache.AnalysisKey(patientID, days)
	if s.cache != nil {
		var cached AnalysisReport
		if err := s.cache.Get(key, &cached); err == nil {
			metrics.CacheHits.Inc()
			return &cached, nil
		}
		metrics.CacheMisses.Inc()
	}

	report, err := s.computeReport(patientID, days)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetWithTTL(key, report, s.cacheTTL); err != nil {
			s.logger.Warn("Failed to cache analysis report", zap.Error(err))
		}
	}

	return report, nil
}

// computeReport performs the uncached analysis pipeline
func (s *AnalysisService) computeReport(patientID uint, days int) (*AnalysisReport, error) {
	end := s.now().UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	start := end.Add(-time.Duration(days) * 24 * time.Hour)

	var daily []analytics.DailyMetrics
	var entries []DailyEntry

	for day := start; day.Before(end); day = day.Add(24 * time.Hour) {
		readings, err := s.readings.GetRange(patientID, day, day.Add(24*time.Hour))
		if err != nil {
			return nil, err
		}

		values := make([]float64, len(readings))
		for i, r := range readings {
			values[i] = r.Glucose
		}

		m, err := analytics.CalculateDailyMetrics(values)
		if err != nil {
			// Sparse days are expected; they simply drop out of the window.
			continue
		}

		if err := s.analysis.UpsertDailyMetrics(metricsToRecord(patientID, day, m)); err != nil {
			s.logger.Warn("Failed to persist daily metrics",
				zap.Uint("patient_id", patientID),
				zap.Time("date", day),
				zap.Error(err),
			)
		}

		daily = append(daily, m)
		entries = append(entries, DailyEntry{Date: day.Format("2006-01-02"), Metrics: m})
	}

	if len(daily) == 0 {
		return nil, analytics.ErrInsufficientData
	}

	agg := analytics.Aggregate(daily)
	assignment := s.classifier.AssignCluster(agg)
	trend := analytics.AssessTrend(daily)
	latest := daily[len(daily)-1]
	risk := analytics.RiskScore(latest)
	recommendations := analytics.GenerateRecommendations(assignment, latest, trend)

	generatedAt := s.now().UTC()
	if err := s.analysis.CreateClusterAssignment(&models.ClusterAssignmentRecord{
		PatientID:   patientID,
		ClusterID:   assignment.ClusterID,
		ClusterName: assignment.ClusterName,
		Confidence:  assignment.Confidence,
		Fallback:    assignment.Fallback,
		WindowDays:  days,
		AssignedAt:  generatedAt,
	}); err != nil {
		s.logger.Warn("Failed to persist cluster assignment",
			zap.Uint("patient_id", patientID),
			zap.Error(err),
		)
	}

	metrics.AnalysesComputed.Inc()

	return &AnalysisReport{
		PatientID:       patientID,
		PeriodDays:      days,
		Daily:           entries,
		Aggregate:       agg,
		Cluster:         assignment,
		Trend:           trend,
		RiskScore:       risk,
		Recommendations: recommendations,
		GeneratedAt:     generatedAt,
	}, nil
}

// GetHistory returns the stored daily metrics and cluster assignment
// trail over the last `days` calendar days.
func (s *AnalysisService) GetHistory(patientID uint, days int) (*AnalysisHistory, error) {
	end := s.now().UTC().Truncate(24 * time.Hour)
	start := end.Add(-time.Duration(days-1) * 24 * time.Hour)

	records, err := s.analysis.GetDailyMetricsRange(patientID, start, end)
	if err != nil {
		return nil, err
	}

	assignments, err := s.analysis.GetClusterAssignmentHistory(patientID, days)
	if err != nil {
		return nil, err
	}

	return &AnalysisHistory{
		PatientID:   patientID,
		PeriodDays:  days,
		Daily:       records,
		Assignments: assignments,
	}, nil
}

// ClusterCatalog lists the five glycemic control profiles
func (s *AnalysisService) ClusterCatalog() []ClusterInfo {
	catalog := make([]ClusterInfo, analytics.NumClusters)
	for i := 0; i < analytics.NumClusters; i++ {
		catalog[i] = ClusterInfo{
			ClusterID:   i,
			Name:        analytics.ClusterNames[i],
			Description: analytics.ClusterDescriptions[i],
		}
	}
	return catalog
}

// HasModel reports whether the trained clustering model is loaded
func (s *AnalysisService) HasModel() bool {
	return s.classifier.HasModel()
}

// metricsToRecord maps computed metrics onto the persistence model
func metricsToRecord(patientID uint, day time.Time, m analytics.DailyMetrics) *models.DailyMetricsRecord {
	return &models.DailyMetricsRecord{
		Date:        day,
		PatientID:   patientID,
		MeanGlucose: m.MeanGlucose,
		Median:      m.MedianGlucose,
		StdDev:      m.StdGlucose,
		MinGlucose:  m.MinGlucose,
		MaxGlucose:  m.MaxGlucose,
		RangeWidth:  m.GlucoseRange,
		CV:          m.CV,
		TIR:         m.TIR,
		TBR:         m.TBR,
		TBRSevere:   m.TBRSevere,
		TAR:         m.TAR,
		TARSevere:   m.TARSevere,
		GMI:         m.GMI,
		NReadings:   m.NReadings,
	}
}

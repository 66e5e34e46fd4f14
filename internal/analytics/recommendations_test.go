package analytics

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateRecommendations(t *testing.T) {
	excellent := ClusterAssignment{ClusterID: ClusterExcellentControl, ClusterName: ClusterNames[0]}

	t.Run("Should rank severe hypoglycemia first", func(t *testing.T) {
		m := DailyMetrics{TIR: 55, CV: 40, TBR: 6, TBRSevere: 2, TAR: 30, GMI: 7.5}
		recs := GenerateRecommendations(ClusterAssignment{ClusterID: ClusterHypoRisk}, m, TrendStable)

		require.NotEmpty(t, recs)
		assert.Equal(t, 1, recs[0].Priority)
		assert.Equal(t, LevelCritical, recs[0].Level)
		assert.Equal(t, "Hipoglucemia", recs[0].Category)
	})

	t.Run("Should evaluate rules independently", func(t *testing.T) {
		m := DailyMetrics{TIR: 55, CV: 40, TBR: 6, TBRSevere: 2, TAR: 30, GMI: 7.5}
		recs := GenerateRecommendations(ClusterAssignment{ClusterID: ClusterHypoRisk}, m, TrendWorsening)

		categories := map[string]int{}
		for _, r := range recs {
			categories[r.Category]++
		}

		assert.GreaterOrEqual(t, categories["Hipoglucemia"], 2)
		assert.Equal(t, 1, categories["Hiperglucemia"])
		assert.Equal(t, 1, categories["Variabilidad"])
		assert.Equal(t, 1, categories["Control General"])
		assert.Equal(t, 1, categories["HbA1c"])
		assert.Equal(t, 1, categories["Cluster"])
		assert.Equal(t, 1, categories["Tendencia"])
	})

	t.Run("Should sort ascending by priority", func(t *testing.T) {
		m := DailyMetrics{TIR: 55, CV: 40, TBR: 6, TBRSevere: 2, TAR: 30, GMI: 7.5}
		recs := GenerateRecommendations(ClusterAssignment{ClusterID: ClusterSuboptimal}, m, TrendImproving)

		assert.True(t, sort.SliceIsSorted(recs, func(i, j int) bool {
			return recs[i].Priority < recs[j].Priority
		}))
	})

	t.Run("Should emit the all-clear for metrics at target", func(t *testing.T) {
		m := DailyMetrics{TIR: 80, CV: 30, TBR: 2, TAR: 15, GMI: 6.2}
		recs := GenerateRecommendations(excellent, m, TrendStable)

		var found bool
		for _, r := range recs {
			if r.Title == "Excelente Control Glucémico" {
				found = true
				assert.Equal(t, LevelInfo, r.Level)
			}
		}
		assert.True(t, found)
	})

	t.Run("Should add trend guidance on worsening control", func(t *testing.T) {
		m := DailyMetrics{TIR: 80, CV: 30, TBR: 2, TAR: 15, GMI: 6.2}
		recs := GenerateRecommendations(excellent, m, TrendWorsening)

		var found bool
		for _, r := range recs {
			if r.Category == "Tendencia" {
				found = true
				assert.Equal(t, 2, r.Priority)
				assert.Equal(t, LevelHigh, r.Level)
			}
		}
		assert.True(t, found)
	})

	t.Run("Should attach the cluster template for each profile", func(t *testing.T) {
		m := DailyMetrics{TIR: 80, CV: 30, TBR: 2, TAR: 15, GMI: 6.2}

		for id := 0; id < NumClusters; id++ {
			recs := GenerateRecommendations(ClusterAssignment{ClusterID: id}, m, TrendStable)

			var found bool
			for _, r := range recs {
				if r.Category == "Cluster" {
					found = true
				}
			}
			assert.True(t, found, "cluster %d should contribute a template", id)
		}
	})
}

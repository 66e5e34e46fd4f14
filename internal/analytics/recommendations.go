package analytics

import (
	"fmt"
	"sort"
)

// RecommendationLevel ranks the urgency of a recommendation.
type RecommendationLevel string

const (
	LevelCritical RecommendationLevel = "critical"
	LevelHigh     RecommendationLevel = "high"
	LevelModerate RecommendationLevel = "moderate"
	LevelInfo     RecommendationLevel = "info"
)

// Recommendation is one item of prioritized clinical guidance. Priority 1 is
// the most urgent; the generator sorts ascending by priority.
type Recommendation struct {
	Level       RecommendationLevel `json:"level"`
	Category    string              `json:"category"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Priority    int                 `json:"priority"`
}

// GenerateRecommendations evaluates every guidance rule independently over
// the cluster assignment, the latest daily metrics and the trend verdict.
// Multiple recommendations may co-occur; only the sort order ranks them.
func GenerateRecommendations(cluster ClusterAssignment, m DailyMetrics, trend string) []Recommendation {
	var recs []Recommendation

	if m.TBRSevere > 1 {
		recs = append(recs, Recommendation{
			Level:       LevelCritical,
			Category:    "Hipoglucemia",
			Title:       "Riesgo de Hipoglucemia Severa Detectado",
			Description: "Se ha detectado hipoglucemia severa (<3.0 mmol/L). Contacte inmediatamente a su médico para ajustar dosis de insulina basal.",
			Priority:    1,
		})
	}

	if m.TBR > 4 {
		recs = append(recs, Recommendation{
			Level:       LevelHigh,
			Category:    "Hipoglucemia",
			Title:       "Tiempo en Hipoglucemia Elevado",
			Description: fmt.Sprintf("Su TBR es %.1f%% (objetivo: <4%%). Considere reducir la dosis de insulina basal y revisar el factor de sensibilidad a la insulina.", m.TBR),
			Priority:    2,
		})
	}

	if m.TAR > 25 {
		recs = append(recs, Recommendation{
			Level:       LevelHigh,
			Category:    "Hiperglucemia",
			Title:       "Tiempo en Hiperglucemia Frecuente",
			Description: fmt.Sprintf("Su TAR es %.1f%% (objetivo: <25%%). Revise el conteo de carbohidratos y considere ajustar el ratio de insulina a carbohidratos.", m.TAR),
			Priority:    3,
		})
	}

	if m.CV > 36 {
		recs = append(recs, Recommendation{
			Level:       LevelModerate,
			Category:    "Variabilidad",
			Title:       "Alta Variabilidad Glucémica",
			Description: fmt.Sprintf("Su CV es %.1f%% (objetivo: <36%%). La alta variabilidad aumenta el riesgo de complicaciones. Considere mejorar el conteo de carbohidratos y la consistencia en horarios de comidas.", m.CV),
			Priority:    4,
		})
	}

	if m.TIR < 70 {
		recs = append(recs, Recommendation{
			Level:       LevelModerate,
			Category:    "Control General",
			Title:       "Tiempo en Rango Subóptimo",
			Description: fmt.Sprintf("Su TIR es %.1f%% (objetivo: >70%%). Trabaje con su equipo médico para optimizar su tratamiento.", m.TIR),
			Priority:    5,
		})
	}

	if m.GMI > 7.0 {
		recs = append(recs, Recommendation{
			Level:       LevelModerate,
			Category:    "HbA1c",
			Title:       "GMI Elevado",
			Description: fmt.Sprintf("Su GMI estimado es %.1f%% (objetivo: <7.0%%). Esto sugiere un control glucémico que podría mejorarse.", m.GMI),
			Priority:    6,
		})
	}

	recs = append(recs, clusterRecommendations(cluster.ClusterID)...)

	switch trend {
	case TrendWorsening:
		recs = append(recs, Recommendation{
			Level:       LevelHigh,
			Category:    "Tendencia",
			Title:       "Control Glucémico en Deterioro",
			Description: "Se ha detectado una tendencia de empeoramiento en su control glucémico. Programe una cita con su médico para revisar el tratamiento.",
			Priority:    2,
		})
	case TrendImproving:
		recs = append(recs, Recommendation{
			Level:       LevelInfo,
			Category:    "Tendencia",
			Title:       "Mejora en Control Glucémico",
			Description: "¡Excelente trabajo! Su control glucémico está mejorando. Continue con sus hábitos actuales.",
			Priority:    10,
		})
	}

	if m.TIR > 70 && m.CV < 36 && m.TBR < 4 && m.TAR < 25 {
		recs = append(recs, Recommendation{
			Level:       LevelInfo,
			Category:    "Control General",
			Title:       "Excelente Control Glucémico",
			Description: "Su control glucémico está dentro de los objetivos. ¡Siga así!",
			Priority:    11,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Priority < recs[j].Priority
	})
	return recs
}

// clusterRecommendations returns the fixed guidance template attached to
// each control profile.
func clusterRecommendations(clusterID int) []Recommendation {
	switch clusterID {
	case ClusterExcellentControl:
		return []Recommendation{{
			Level:       LevelInfo,
			Category:    "Cluster",
			Title:       "Perfil: Control Excelente",
			Description: "Usted pertenece al grupo de pacientes con mejor control glucémico. Mantenga sus hábitos actuales.",
			Priority:    12,
		}}
	case ClusterModerateControl:
		return []Recommendation{{
			Level:       LevelModerate,
			Category:    "Cluster",
			Title:       "Perfil: Control Moderado",
			Description: "Su control es bueno pero tiene margen de mejora. Enfóquese en optimizar el conteo de carbohidratos y el timing de insulina.",
			Priority:    7,
		}}
	case ClusterHighVariability:
		return []Recommendation{{
			Level:       LevelHigh,
			Category:    "Cluster",
			Title:       "Perfil: Alta Variabilidad",
			Description: "Usted pertenece al grupo con alta variabilidad glucémica. Considere tecnología de lazo cerrado (bomba + CGM) y educación en conteo avanzado de carbohidratos.",
			Priority:    3,
		}}
	case ClusterHypoRisk:
		return []Recommendation{{
			Level:       LevelHigh,
			Category:    "Cluster",
			Title:       "Perfil: Riesgo de Hipoglucemia",
			Description: "Usted pertenece al grupo con mayor riesgo de hipoglucemia. Es prioritario revisar las dosis de insulina basal con su médico.",
			Priority:    2,
		}}
	case ClusterSuboptimal:
		return []Recommendation{{
			Level:       LevelHigh,
			Category:    "Cluster",
			Title:       "Perfil: Control Subóptimo",
			Description: "Su control glucémico requiere optimización. Programe una cita con su equipo médico para revisar completamente el tratamiento.",
			Priority:    3,
		}}
	default:
		return nil
	}
}

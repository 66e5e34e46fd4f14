package analytics

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// The five glycemic-control profiles. The IDs are fixed by the trained
// clustering model and must not be renumbered.
const (
	ClusterExcellentControl = 0
	ClusterModerateControl  = 1
	ClusterHighVariability  = 2
	ClusterHypoRisk         = 3
	ClusterSuboptimal       = 4

	NumClusters = 5
)

// ClusterNames maps cluster IDs to their clinical profile labels.
var ClusterNames = [NumClusters]string{
	ClusterExcellentControl: "Control Excelente",
	ClusterModerateControl:  "Control Moderado",
	ClusterHighVariability:  "Alta Variabilidad",
	ClusterHypoRisk:         "Riesgo Hipoglucemia",
	ClusterSuboptimal:       "Control Subóptimo",
}

// ClusterDescriptions holds the catalog text for each profile.
var ClusterDescriptions = [NumClusters]string{
	ClusterExcellentControl: "Pacientes con excelente control: TIR >70%, CV <36%, mínima hipoglucemia",
	ClusterModerateControl:  "Pacientes con control moderado: TIR 50-70%, espacio para optimización",
	ClusterHighVariability:  "Pacientes con alta variabilidad: CV >40%, requieren ajuste de tratamiento",
	ClusterHypoRisk:         "Pacientes con riesgo de hipoglucemia: TBR >4%, prioridad reducir insulina",
	ClusterSuboptimal:       "Pacientes con control subóptimo: TIR <50%, requieren revisión completa",
}

// ClusterAssignment is the result of classifying a patient's aggregate
// metrics into a control profile.
type ClusterAssignment struct {
	ClusterID   int       `json:"cluster_id"`
	ClusterName string    `json:"cluster_name"`
	Confidence  float64   `json:"confidence_score"`
	Distances   []float64 `json:"distances_to_all_clusters"`
	// Fallback is true when the rule-based heuristic produced the
	// assignment instead of the trained model.
	Fallback bool `json:"fallback"`
}

// ClusteringArtifact is the trained nearest-centroid model exported by the
// training pipeline: five centroids in standardized feature space plus the
// feature scaler. It is loaded once at startup and read-only afterwards.
type ClusteringArtifact struct {
	Centroids   [][]float64 `json:"centroids"`
	ScalerMean  []float64   `json:"scaler_mean"`
	ScalerScale []float64   `json:"scaler_scale"`
}

// Validate checks the artifact dimensions: five centroids over the
// six-feature input and a matching scaler.
func (a *ClusteringArtifact) Validate() error {
	if len(a.Centroids) != NumClusters {
		return fmt.Errorf("expected %d centroids, got %d", NumClusters, len(a.Centroids))
	}
	for i, c := range a.Centroids {
		if len(c) != 6 {
			return fmt.Errorf("centroid %d has %d features, expected 6", i, len(c))
		}
	}
	if len(a.ScalerMean) != 6 || len(a.ScalerScale) != 6 {
		return fmt.Errorf("scaler must cover 6 features, got mean=%d scale=%d",
			len(a.ScalerMean), len(a.ScalerScale))
	}
	for i, s := range a.ScalerScale {
		if s == 0 {
			return fmt.Errorf("scaler scale for feature %d is zero", i)
		}
	}
	return nil
}

// LoadClusteringArtifact reads a JSON-exported clustering artifact from disk.
func LoadClusteringArtifact(path string) (*ClusteringArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read clustering artifact: %w", err)
	}

	var artifact ClusteringArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("failed to parse clustering artifact: %w", err)
	}
	if err := artifact.Validate(); err != nil {
		return nil, fmt.Errorf("invalid clustering artifact: %w", err)
	}
	return &artifact, nil
}

// ProfileClassifier assigns patients to glycemic-control profiles. With a
// trained artifact it predicts the nearest centroid; without one, or on any
// failure of the model path, it degrades to the rule-based heuristic.
// AssignCluster never fails.
type ProfileClassifier struct {
	artifact *ClusteringArtifact
}

// NewProfileClassifier creates a classifier. The artifact may be nil, in
// which case every assignment uses the rule-based fallback.
func NewProfileClassifier(artifact *ClusteringArtifact) *ProfileClassifier {
	return &ProfileClassifier{artifact: artifact}
}

// HasModel reports whether the trained clustering artifact is loaded.
func (c *ProfileClassifier) HasModel() bool {
	return c.artifact != nil
}

// AssignCluster classifies the aggregate metrics into a control profile.
// It always returns a valid assignment.
func (c *ProfileClassifier) AssignCluster(agg AggregateMetrics) ClusterAssignment {
	if c.artifact == nil {
		return assignClusterHeuristic(agg)
	}

	features := [6]float64{agg.MeanGlucose, agg.CV, agg.TIR, agg.TBR, agg.TAR, agg.GMI}

	scaled := make([]float64, 6)
	for i := range features {
		scaled[i] = (features[i] - c.artifact.ScalerMean[i]) / c.artifact.ScalerScale[i]
	}

	distances := make([]float64, NumClusters)
	best := 0
	for i, centroid := range c.artifact.Centroids {
		var sq float64
		for j, v := range centroid {
			d := scaled[j] - v
			sq += d * d
		}
		distances[i] = math.Sqrt(sq)
		if distances[i] < distances[best] {
			best = i
		}
	}

	return ClusterAssignment{
		ClusterID:   best,
		ClusterName: ClusterNames[best],
		Confidence:  round3(1.0 / (1.0 + distances[best])),
		Distances:   distances,
	}
}

// assignClusterHeuristic is the deterministic rule cascade used when no
// trained model is available. The rules short-circuit in priority order, so
// the hypoglycemia rule wins over the variability and TIR rules.
func assignClusterHeuristic(agg AggregateMetrics) ClusterAssignment {
	var clusterID int
	var confidence float64

	switch {
	case agg.TIR > 70 && agg.CV < 36 && agg.TBR < 4:
		clusterID = ClusterExcellentControl
		confidence = 0.85
	case agg.TBR > 4:
		clusterID = ClusterHypoRisk
		confidence = 0.80
	case agg.CV > 40:
		clusterID = ClusterHighVariability
		confidence = 0.75
	case agg.TIR < 50:
		clusterID = ClusterSuboptimal
		confidence = 0.80
	default:
		clusterID = ClusterModerateControl
		confidence = 0.70
	}

	return ClusterAssignment{
		ClusterID:   clusterID,
		ClusterName: ClusterNames[clusterID],
		Confidence:  confidence,
		Distances:   make([]float64, NumClusters),
		Fallback:    true,
	}
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

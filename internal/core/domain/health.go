package domain

// Health component names.
const (
	ComponentEmbedding  = "embedding"
	ComponentCompletion = "completion"
)

// HealthReport describes the liveness of external collaborators.
type HealthReport struct {
	// Status is "healthy" when every component is up, otherwise "degraded".
	Status string `json:"status"`

	// Components maps a component name to its liveness.
	Components map[string]bool `json:"components"`

	// Details carries the failure reason for components that are down.
	Details map[string]string `json:"details,omitempty"`
}

// Healthy returns true if every component is up.
func (h HealthReport) Healthy() bool {
	for _, up := range h.Components {
		if !up {
			return false
		}
	}
	return len(h.Components) > 0
}

package models

// Trial is one independent draw of the outcome model.
//
// Freedom and Cost are uniform draws shaped by the architecture, Latent is
// the normally distributed task quality before shocks and noise. Outcome is
// the clamped score, or the catastrophic penalty when the trial failed
// irreversibly.
type Trial struct {
	Freedom      float64 `json:"freedom"`
	Cost         float64 `json:"cost"`
	Latent       float64 `json:"latent"`
	Outcome      float64 `json:"outcome"`
	Catastrophic bool    `json:"catastrophic"`
}

// Outcomes projects the outcome of every trial.
func Outcomes(trials []Trial) []float64 {
	out := make([]float64, len(trials))
	for i, t := range trials {
		out[i] = t.Outcome
	}
	return out
}

// InDangerZone reports whether the trial sampled a high-freedom, high-cost state.
func (t Trial) InDangerZone(freedomThreshold, costThreshold float64) bool {
	return t.Freedom > freedomThreshold && t.Cost > costThreshold
}

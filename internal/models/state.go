package models

// Category is the discrete outcome of a state-space sample.
type Category string

const (
	CategorySuccess      Category = "success"
	CategoryFail         Category = "fail"
	CategoryCatastrophic Category = "catastrophic"
)

// TimeModel is how the system experiences time while acting.
type TimeModel string

const (
	TimeModelTau  TimeModel = "tau"  // structured turn time
	TimeModelWall TimeModel = "wall" // wall-clock time
)

// StateSample is one point of the five-axis state space.
type StateSample struct {
	System        string    `json:"system"`
	Iteration     int       `json:"iteration"`
	FailureCost   float64   `json:"failure_cost"`
	Reversibility float64   `json:"reversibility"`
	TimeModel     TimeModel `json:"time_model"`
	Freedom       float64   `json:"freedom"`
	InfoGain      float64   `json:"info_gain"`
	Outcome       Category  `json:"outcome"`
}

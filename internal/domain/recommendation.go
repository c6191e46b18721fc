package domain

// Constraint dimension names, as they appear in explanation output
const (
	DimensionFrequencyBand = "frequency_band"
	DimensionEnvironment   = "environment"
	DimensionConnectivity  = "connectivity"
	DimensionPower         = "power"
)

// ConstraintDetails records the outcome of each hard-constraint dimension.
// nil means the dimension was not specified by the requirement.
type ConstraintDetails struct {
	FrequencyBand *bool `json:"frequency_band"`
	Environment   *bool `json:"environment"`
	Connectivity  *bool `json:"connectivity"`
	Power         *bool `json:"power"`
}

// ConstraintResult is the outcome of evaluating one product against one requirement
type ConstraintResult struct {
	Passed      bool
	Score       float64
	Details     ConstraintDetails
	Explanation []string
}

// Recommendation is one ranked output record
type Recommendation struct {
	ProductID   string            `json:"Product_ID"`
	ProductName string            `json:"Product_Name"`
	Details     ConstraintDetails `json:"Hard_Constraints_Passed_Details"`
	Similarity  float64           `json:"Text_Similarity"`
	FinalScore  float64           `json:"Final_Score"`
	Explanation []string          `json:"Explanation_Details"`
}

// Outcome converts a match flag into a dimension outcome pointer
func Outcome(matched bool) *bool {
	return &matched
}

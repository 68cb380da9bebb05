package types

// BudgetBreakdown holds the per-category spend in whole currency units.
type BudgetBreakdown struct {
	Transportation int `json:"transportation"`
	Food           int `json:"food"`
	Activities     int `json:"activities"`
	Accommodation  int `json:"accommodation"`
	Miscellaneous  int `json:"miscellaneous"`
}

// Sum adds up every category.
func (b BudgetBreakdown) Sum() int {
	return b.Transportation + b.Food + b.Activities + b.Accommodation + b.Miscellaneous
}

type BudgetEstimate struct {
	Breakdown BudgetBreakdown `json:"breakdown"`
	Total     int             `json:"total"`
}

type BudgetEstimateRequest struct {
	Places []Place `json:"places" validate:"dive"`
}

type BudgetReconcileRequest struct {
	Saved  any     `json:"saved"`
	Places []Place `json:"places" validate:"dive"`
}

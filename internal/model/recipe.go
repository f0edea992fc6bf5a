package model

// Recipe is a synthesis formula. Success chance is a percentage; the
// workshop level gates which recipes a user may craft.
type Recipe struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Inputs      map[string]int `json:"inputs"`
	Output      string         `json:"output"`
	OutputCount int            `json:"output_count"`
	SuccessPct  int            `json:"success_pct"`
	MinWorkshop int            `json:"min_workshop"`
	FailRefund  bool           `json:"fail_refund"`
}

// CraftOutcome is the result of one synthesis attempt.
type CraftOutcome struct {
	UserID   string `json:"user_id"`
	RecipeID string `json:"recipe_id"`
	Success  bool   `json:"success"`
	Output   string `json:"output,omitempty"`
	Count    int    `json:"count,omitempty"`
	Refunded bool   `json:"refunded"`
}

// DecomposeOutcome is the result of breaking an item back into materials.
type DecomposeOutcome struct {
	UserID    string         `json:"user_id"`
	ItemID    string         `json:"item_id"`
	Materials map[string]int `json:"materials"`
}

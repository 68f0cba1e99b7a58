package dto

// ExerciseResponse 功课目录项
// Weekday 仅在非每日功课时返回（0=周一 … 6=周日）
type ExerciseResponse struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	EveryDay bool   `json:"everyDay"`
	Weekday  *int   `json:"weekday,omitempty"`
}

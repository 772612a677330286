package model

// ProgressState is a point-in-time view of one orchestration run
type ProgressState struct {
	CompletedCount      int      `json:"completed_count"`
	TotalCount          int      `json:"total_count"`
	CurrentItemFraction float64  `json:"current_item_fraction"` // 0.0 to 1.0
	OverallFraction     float64  `json:"overall_fraction"`      // 0.0 to 1.0
	CurrentFileName     string   `json:"current_file_name"`
	SpeedLabel          string   `json:"speed_label"`
	ETALabel            string   `json:"eta_label"`
	CompletedFiles      []string `json:"completed_files"`
}

// Percent returns the overall progress as an integer percentage
func (s ProgressState) Percent() int {
	return int(s.OverallFraction * 100)
}

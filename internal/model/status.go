package model

// RunStatus represents the status of a single orchestration run
type RunStatus string

const (
	// RunStatusPending means the run was created but the engine was not called yet
	RunStatusPending RunStatus = "Pending"

	// RunStatusDownloading means the engine call is in progress
	RunStatusDownloading RunStatus = "Downloading"

	// RunStatusCompleted means the engine call returned successfully
	RunStatusCompleted RunStatus = "Completed"

	// RunStatusError means the run failed before or during the engine call
	RunStatusError RunStatus = "Error"
)

// String returns the string representation of RunStatus
func (rs RunStatus) String() string {
	return string(rs)
}

// IsActive returns true if the run is in an active state
func (rs RunStatus) IsActive() bool {
	return rs == RunStatusDownloading
}

// IsFinished returns true if the run is in a finished state (completed or error)
func (rs RunStatus) IsFinished() bool {
	return rs == RunStatusCompleted || rs == RunStatusError
}

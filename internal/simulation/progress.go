package simulation

// ProgressCallback is called from the orchestrating goroutine to report progress.
type ProgressCallback func(event ProgressEvent)

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Type     ProgressEventType
	Scenario string
	Index    int // scenario position within a batch
	Total    int // scenarios in the batch
	Week     int
	Weeks    int
	Communes int
	Message  string
}

// ProgressEventType identifies the type of progress event
type ProgressEventType int

const (
	EventBuildStart ProgressEventType = iota
	EventBuildComplete
	EventScenarioStart
	EventInterventionsApplied
	EventWeekComplete
	EventScenarioComplete
)

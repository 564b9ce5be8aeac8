package analyze

// Stage identifies one phase of an analysis run.
type Stage string

const (
	StageImpactFactor Stage = "impact_factor"
	StageListing      Stage = "listing"
	StagePrimary      Stage = "primary"
	StageCitations    Stage = "citations"
	StageReferences   Stage = "references"
)

// stageOrder fixes the reporting order of partial stages.
var stageOrder = []Stage{StageImpactFactor, StageListing, StagePrimary, StageCitations, StageReferences}

// EventKind identifies one progress notification.
type EventKind string

const (
	EventStageStarted  EventKind = "stage_started"
	EventPageFetched   EventKind = "page_fetched"
	EventWorkCompleted EventKind = "work_completed"
	EventSelfCitation  EventKind = "self_citation"
	EventStageDone     EventKind = "stage_done"
)

// Event is one progress notification. Done and Total are cumulative
// within the event's stage; either may be zero when the stage has no
// meaningful count.
type Event struct {
	Kind  EventKind `json:"kind"`
	Stage Stage     `json:"stage"`
	DOI   string    `json:"doi,omitempty"`
	Done  int       `json:"done,omitempty"`
	Total int       `json:"total,omitempty"`
}

// ProgressFunc receives progress events. Workers invoke it concurrently,
// so implementations must be safe for concurrent calls.
type ProgressFunc func(Event)

package semantic

import (
	"strconv"
	"time"
)

// Phase is one step of an analysis run.
type Phase int

const (
	AnchorCollection Phase = iota
	TagResolution
	AliasResolution
	DocumentValidation
	FinalValidation
)

// Phases lists the phases in the order they run.
var Phases = []Phase{AnchorCollection, TagResolution, AliasResolution, DocumentValidation, FinalValidation}

func (p Phase) String() string {
	switch p {
	case AnchorCollection:
		return "anchor-collection"
	case TagResolution:
		return "tag-resolution"
	case AliasResolution:
		return "alias-resolution"
	case DocumentValidation:
		return "document-validation"
	case FinalValidation:
		return "final-validation"
	}
	return "Phase(" + strconv.Itoa(int(p)) + ")"
}

// Statistics summarizes one analysis run.
type Statistics struct {
	RunID           string
	Documents       int
	FailedDocuments int

	Anchors         int
	UnusedAnchors   int
	Aliases         int
	AliasesResolved int
	Expansions      int
	MergedKeys      int
	TagsResolved    int

	Cycles       int
	CyclesByType map[CycleType]int

	GraphNodes int
	GraphEdges int
	Cache      CacheStats
	Pool       PoolStats

	PhaseDurations map[Phase]time.Duration
	Duration       time.Duration
}

func newStatistics(runID string) Statistics {
	return Statistics{
		RunID:          runID,
		CyclesByType:   make(map[CycleType]int),
		PhaseDurations: make(map[Phase]time.Duration, len(Phases)),
	}
}

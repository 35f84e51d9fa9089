package models

// TimeFrame is the temporal phase of a sprint relative to today.
type TimeFrame string

const (
	TimeFrameCurrent TimeFrame = "current"
	TimeFrameFuture  TimeFrame = "future"
	TimeFramePast    TimeFrame = "past"
)

// Rank orders time frames current, future, past. Unknown values sort last.
func (tf TimeFrame) Rank() int {
	switch tf {
	case TimeFrameCurrent:
		return 0
	case TimeFrameFuture:
		return 1
	case TimeFramePast:
		return 2
	default:
		return 3
	}
}

// Sprint is a team iteration.
type Sprint struct {
	Name       string     `json:"name"`
	Path       string     `json:"path"`
	StartDate  *string    `json:"start_date"`
	FinishDate *string    `json:"finish_date"`
	TimeFrame  *TimeFrame `json:"time_frame"`
}

// Phase returns the sprint's time frame, or "" when Azure DevOps did not report one.
func (s Sprint) Phase() TimeFrame {
	if s.TimeFrame == nil {
		return ""
	}
	return *s.TimeFrame
}

// SprintList is the response of the sprint listing.
type SprintList struct {
	Total   int      `json:"total"`
	Sprints []Sprint `json:"sprints"`
}

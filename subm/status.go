package subm

import "strings"

type Status string

const (
	StatusSubmitting Status = "Submitting"
	StatusSubmitted  Status = "Submitted"
	StatusRunning    Status = "Running"
	StatusScoring    Status = "Scoring"
	StatusFinished   Status = "Finished"
	StatusFailed     Status = "Failed"
	StatusCancelled  Status = "Cancelled"
)

var allStatuses = []Status{
	StatusSubmitting,
	StatusSubmitted,
	StatusRunning,
	StatusScoring,
	StatusFinished,
	StatusFailed,
	StatusCancelled,
}

// allowed forward transitions, no self loops
var transitions = map[Status][]Status{
	StatusSubmitting: {StatusSubmitted, StatusRunning, StatusScoring, StatusFailed, StatusCancelled},
	StatusSubmitted:  {StatusRunning, StatusScoring, StatusFailed, StatusCancelled},
	StatusRunning:    {StatusScoring, StatusFinished, StatusFailed, StatusCancelled},
	StatusScoring:    {StatusFinished, StatusFailed, StatusCancelled},
}

// ParseStatus accepts the status name in any letter case.
func ParseStatus(s string) (Status, bool) {
	for _, st := range allStatuses {
		if strings.EqualFold(string(st), s) {
			return st, true
		}
	}
	return "", false
}

func (s Status) IsTerminal() bool {
	return s == StatusFinished || s == StatusFailed || s == StatusCancelled
}

func (s Status) CanTransitionTo(to Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

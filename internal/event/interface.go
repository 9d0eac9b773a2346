package event

// EventService owns the event lifecycle: registration, schedule generation,
// score recording and the rating pass at finish.
type EventService interface {
	CreateEvent(cfg EventConfig, creatorID string) (*Event, error)
	GetEvent(eventID string) (*EventDetail, error)
	ListEvents() ([]Event, error)
	Register(eventID, playerID string) (*Registration, error)
	CloseRegistration(eventID, callerID string) (*Event, error)
	CancelRegistration(eventID, callerID string) (CancelOutcome, error)
	ApproveCancel(eventID, callerID, playerID string) (*Registration, error)
	StartEvent(eventID, callerID string) (*EventDetail, error)
	SubmitScore(matchID, callerID string, input ScoreInput) (*Match, error)
	FinishEvent(eventID, callerID string) (*EventSummary, error)
	GetSummary(eventID string) (*EventSummary, error)
}

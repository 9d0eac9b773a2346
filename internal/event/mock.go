package event

import "sync"

// MockService is a mock implementation of the EventService interface for
// testing. It is safe for concurrent use.
type MockService struct {
	mu sync.Mutex

	// Spies for method calls
	CreateEventFunc        func(cfg EventConfig, creatorID string) (*Event, error)
	GetEventFunc           func(eventID string) (*EventDetail, error)
	ListEventsFunc         func() ([]Event, error)
	RegisterFunc           func(eventID, playerID string) (*Registration, error)
	CloseRegistrationFunc  func(eventID, callerID string) (*Event, error)
	CancelRegistrationFunc func(eventID, callerID string) (CancelOutcome, error)
	ApproveCancelFunc      func(eventID, callerID, playerID string) (*Registration, error)
	StartEventFunc         func(eventID, callerID string) (*EventDetail, error)
	SubmitScoreFunc        func(matchID, callerID string, input ScoreInput) (*Match, error)
	FinishEventFunc        func(eventID, callerID string) (*EventSummary, error)
	GetSummaryFunc         func(eventID string) (*EventSummary, error)

	// Call records
	CreateEventCalls []struct {
		Cfg       EventConfig
		CreatorID string
	}
	RegisterCalls []struct {
		EventID  string
		PlayerID string
	}
	StartEventCalls []struct {
		EventID  string
		CallerID string
	}
	SubmitScoreCalls []struct {
		MatchID  string
		CallerID string
		Input    ScoreInput
	}
	FinishEventCalls []struct {
		EventID  string
		CallerID string
	}
}

// NewMock creates a new mock instance.
func NewMock() *MockService {
	return &MockService{}
}

func (m *MockService) CreateEvent(cfg EventConfig, creatorID string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CreateEventCalls = append(m.CreateEventCalls, struct {
		Cfg       EventConfig
		CreatorID string
	}{cfg, creatorID})
	if m.CreateEventFunc != nil {
		return m.CreateEventFunc(cfg, creatorID)
	}
	return nil, nil
}

func (m *MockService) GetEvent(eventID string) (*EventDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetEventFunc != nil {
		return m.GetEventFunc(eventID)
	}
	return nil, nil
}

func (m *MockService) ListEvents() ([]Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ListEventsFunc != nil {
		return m.ListEventsFunc()
	}
	return nil, nil
}

func (m *MockService) Register(eventID, playerID string) (*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RegisterCalls = append(m.RegisterCalls, struct {
		EventID  string
		PlayerID string
	}{eventID, playerID})
	if m.RegisterFunc != nil {
		return m.RegisterFunc(eventID, playerID)
	}
	return nil, nil
}

func (m *MockService) CloseRegistration(eventID, callerID string) (*Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CloseRegistrationFunc != nil {
		return m.CloseRegistrationFunc(eventID, callerID)
	}
	return nil, nil
}

func (m *MockService) CancelRegistration(eventID, callerID string) (CancelOutcome, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CancelRegistrationFunc != nil {
		return m.CancelRegistrationFunc(eventID, callerID)
	}
	return CancelImmediate, nil
}

func (m *MockService) ApproveCancel(eventID, callerID, playerID string) (*Registration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ApproveCancelFunc != nil {
		return m.ApproveCancelFunc(eventID, callerID, playerID)
	}
	return nil, nil
}

func (m *MockService) StartEvent(eventID, callerID string) (*EventDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.StartEventCalls = append(m.StartEventCalls, struct {
		EventID  string
		CallerID string
	}{eventID, callerID})
	if m.StartEventFunc != nil {
		return m.StartEventFunc(eventID, callerID)
	}
	return nil, nil
}

func (m *MockService) SubmitScore(matchID, callerID string, input ScoreInput) (*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SubmitScoreCalls = append(m.SubmitScoreCalls, struct {
		MatchID  string
		CallerID string
		Input    ScoreInput
	}{matchID, callerID, input})
	if m.SubmitScoreFunc != nil {
		return m.SubmitScoreFunc(matchID, callerID, input)
	}
	return nil, nil
}

func (m *MockService) FinishEvent(eventID, callerID string) (*EventSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinishEventCalls = append(m.FinishEventCalls, struct {
		EventID  string
		CallerID string
	}{eventID, callerID})
	if m.FinishEventFunc != nil {
		return m.FinishEventFunc(eventID, callerID)
	}
	return nil, nil
}

func (m *MockService) GetSummary(eventID string) (*EventSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetSummaryFunc != nil {
		return m.GetSummaryFunc(eventID)
	}
	return nil, nil
}

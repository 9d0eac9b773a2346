package club

import "sync"

// MockStore is a mock implementation of the ClubStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	AddPlayerFunc        func(playerID, name string)
	UpsertPlayersFunc    func(players []PlayerInfo) error
	GetPlayerFunc        func(playerID string) (*PlayerInfo, error)
	GetPlayersFunc       func(playerIDs []string) ([]PlayerInfo, error)
	GetAllPlayersFunc    func() ([]PlayerInfo, error)
	LeaderboardFunc      func() ([]PlayerInfo, error)
	IsKnownPlayerFunc    func(playerID string) bool
	GetRatingHistoryFunc func(playerID string) ([]RatingHistoryEntry, error)
	ClearFunc            func()

	// Call records
	AddPlayerCalls []struct {
		PlayerID string
		Name     string
	}
	UpsertPlayersCalls    [][]PlayerInfo
	GetPlayersCalls       [][]string
	GetRatingHistoryCalls []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

func (m *MockStore) AddPlayer(playerID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AddPlayerCalls = append(m.AddPlayerCalls, struct {
		PlayerID string
		Name     string
	}{playerID, name})
	if m.AddPlayerFunc != nil {
		m.AddPlayerFunc(playerID, name)
	}
}

func (m *MockStore) UpsertPlayers(players []PlayerInfo) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) GetPlayer(playerID string) (*PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetPlayerFunc != nil {
		return m.GetPlayerFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) GetPlayers(playerIDs []string) ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetPlayersCalls = append(m.GetPlayersCalls, playerIDs)
	if m.GetPlayersFunc != nil {
		return m.GetPlayersFunc(playerIDs)
	}
	return nil, nil
}

func (m *MockStore) GetAllPlayers() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetAllPlayersFunc != nil {
		return m.GetAllPlayersFunc()
	}
	return nil, nil
}

func (m *MockStore) Leaderboard() ([]PlayerInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LeaderboardFunc != nil {
		return m.LeaderboardFunc()
	}
	return nil, nil
}

func (m *MockStore) IsKnownPlayer(playerID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.IsKnownPlayerFunc != nil {
		return m.IsKnownPlayerFunc(playerID)
	}
	return false
}

func (m *MockStore) GetRatingHistory(playerID string) ([]RatingHistoryEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.GetRatingHistoryCalls = append(m.GetRatingHistoryCalls, playerID)
	if m.GetRatingHistoryFunc != nil {
		return m.GetRatingHistoryFunc(playerID)
	}
	return nil, nil
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ClearFunc != nil {
		m.ClearFunc()
	}
}

package club

// ClubStore defines the interface for interacting with the club's roster.
type ClubStore interface {
	AddPlayer(playerID, name string)
	UpsertPlayers(players []PlayerInfo) error
	GetPlayer(playerID string) (*PlayerInfo, error)
	GetPlayers(playerIDs []string) ([]PlayerInfo, error)
	GetAllPlayers() ([]PlayerInfo, error)
	Leaderboard() ([]PlayerInfo, error)
	IsKnownPlayer(playerID string) bool
	GetRatingHistory(playerID string) ([]RatingHistoryEntry, error)
	Clear()
}

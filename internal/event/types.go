package event

import (
	"database/sql"
	"sync"
	"time"

	"github.com/mauv0809/court-call/internal/planner"
)

// store implements EventService over the database.
type store struct {
	db *sql.DB
	mu sync.Mutex
	// now is injected so deadline logic is testable.
	now func() time.Time
}

// Status is the lifecycle state of an event.
type Status string

const (
	StatusDraft      Status = "DRAFT"
	StatusOpen       Status = "OPEN_FOR_REGISTRATION"
	StatusClosed     Status = "REGISTRATION_CLOSED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusFinished   Status = "FINISHED"
	StatusCancelled  Status = "CANCELLED"
)

// legalTransitions is the explicit state machine: which status an event may
// move to from its current one. Operations consult this table instead of
// scattering ad-hoc status checks.
var legalTransitions = map[Status]map[Status]bool{
	StatusDraft:      {StatusOpen: true, StatusCancelled: true},
	StatusOpen:       {StatusClosed: true, StatusCancelled: true},
	StatusClosed:     {StatusInProgress: true, StatusCancelled: true},
	StatusInProgress: {StatusFinished: true},
}

func canTransition(from, to Status) bool {
	return legalTransitions[from][to]
}

// PairingMode selects the planner policy.
type PairingMode string

const (
	PairingRoundRobin PairingMode = "ROUND_ROBIN"
	PairingBalanced   PairingMode = "BALANCED"
)

func (m PairingMode) plannerMode() planner.Mode {
	if m == PairingBalanced {
		return planner.ModeBalanced
	}
	return planner.ModeRoundRobin
}

// ScoringMode selects how match results are recorded.
type ScoringMode string

const (
	ScoringSets   ScoringMode = "SETS"
	ScoringPoints ScoringMode = "POINTS"
)

// Event is one americana evening: a pool of registered players partitioned
// into balanced doubles matches across rounds and courts.
type Event struct {
	ID              string      `json:"id"`
	AuthorID        string      `json:"author_id"`
	Name            string      `json:"name"`
	Status          Status      `json:"status"`
	CourtsCount     int         `json:"courts_count"`
	PairingMode     PairingMode `json:"pairing_mode"`
	ScoringMode     ScoringMode `json:"scoring_mode"`
	PointsPerPlayer int         `json:"points_per_player"`
	SetsPerMatch    int         `json:"sets_per_match"`
	GamesPerSet     int         `json:"games_per_set"`
	AutoRounds      bool        `json:"auto_rounds"`
	RoundsPlanned   int         `json:"rounds_planned"`
	MaxTeamDiff     *int        `json:"max_team_diff,omitempty"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`
}

// Capacity is the number of players needed to fill all courts for one round.
func (e *Event) Capacity() int {
	return e.CourtsCount * 4
}

// EventConfig is the input to CreateEvent.
type EventConfig struct {
	Name            string      `json:"name"`
	CourtsCount     int         `json:"courts_count"`
	PairingMode     PairingMode `json:"pairing_mode"`
	ScoringMode     ScoringMode `json:"scoring_mode"`
	PointsPerPlayer int         `json:"points_per_player"`
	SetsPerMatch    int         `json:"sets_per_match"`
	GamesPerSet     int         `json:"games_per_set"`
	AutoRounds      bool        `json:"auto_rounds"`
	RoundsPlanned   int         `json:"rounds_planned"`
	StartTime       time.Time   `json:"start_time"`
	EndTime         time.Time   `json:"end_time"`
}

// RegistrationStatus is the state of one (event, player) registration row.
type RegistrationStatus string

const (
	RegStatusRegistered RegistrationStatus = "REGISTERED"
	RegStatusCancelled  RegistrationStatus = "CANCELLED"
)

// Registration ties a player to an event together with the cancellation
// negotiation sub-state.
type Registration struct {
	EventID           string             `json:"event_id"`
	PlayerID          string             `json:"player_id"`
	Status            RegistrationStatus `json:"status"`
	CancelRequested   bool               `json:"cancel_requested"`
	CancelApproved    bool               `json:"cancel_approved"`
	CancelRequestedAt *time.Time         `json:"cancel_requested_at,omitempty"`
	RegisteredAt      time.Time          `json:"registered_at"`
}

// CancelOutcome tells the caller what CancelRegistration did.
type CancelOutcome string

const (
	// CancelImmediate: the registration was cancelled on the spot.
	CancelImmediate CancelOutcome = "CANCELLED"
	// CancelPending: inside the 24h window; the author must approve.
	CancelPending CancelOutcome = "CANCEL_REQUESTED"
	// CancelNoop: the registration was already cancelled.
	CancelNoop CancelOutcome = "ALREADY_CANCELLED"
)

// MatchStatus is the state of a scheduled match.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchFinished  MatchStatus = "FINISHED"
)

// Match is four distinct players split over two teams on a court.
type Match struct {
	ID          string      `json:"id"`
	EventID     string      `json:"event_id"`
	RoundID     string      `json:"round_id"`
	RoundNumber int         `json:"round_number"`
	CourtNumber int         `json:"court_number"`
	TeamA       [2]string   `json:"team_a"`
	TeamB       [2]string   `json:"team_b"`
	Status      MatchStatus `json:"status"`
	Scores      []SetScore  `json:"scores,omitempty"`
}

// Round is one immutable planning pass.
type Round struct {
	ID      string  `json:"id"`
	EventID string  `json:"event_id"`
	Number  int     `json:"number"`
	Matches []Match `json:"matches"`
}

// SetScore is one recorded set. In POINTS mode a single row carries the
// whole match's point split.
type SetScore struct {
	SetNumber  int `json:"set_number"`
	TeamAGames int `json:"team_a_games"`
	TeamBGames int `json:"team_b_games"`
}

// SetInput is one submitted set.
type SetInput struct {
	TeamAGames int `json:"team_a_games"`
	TeamBGames int `json:"team_b_games"`
}

// ScoreInput is the body of a score submission. POINTS mode accepts either
// the explicit points pair or a single set; SETS mode requires Sets.
type ScoreInput struct {
	PointsA *int       `json:"points_a,omitempty"`
	PointsB *int       `json:"points_b,omitempty"`
	Sets    []SetInput `json:"sets,omitempty"`
}

// RatingChange is the immutable audit record written per player per match at
// event finish. Delta is the applied delta, after the calibration multiplier.
type RatingChange struct {
	ID        string    `json:"id"`
	EventID   string    `json:"event_id"`
	MatchID   string    `json:"match_id"`
	PlayerID  string    `json:"player_id"`
	OldRating int       `json:"old_rating"`
	Delta     int       `json:"delta"`
	NewRating int       `json:"new_rating"`
	CreatedAt time.Time `json:"created_at"`
}

// EventDetail is an event with its registrations and planned schedule.
type EventDetail struct {
	Event         Event          `json:"event"`
	Registrations []Registration `json:"registrations"`
	Rounds        []Round        `json:"rounds"`
}

// EventSummary is the result of finishing an event.
type EventSummary struct {
	Event   Event          `json:"event"`
	Changes []RatingChange `json:"changes"`
}

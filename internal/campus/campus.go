// Package campus defines the core domain types and the error taxonomy
// shared by the quest and journey engines. It has zero external
// dependencies.
package campus

import "errors"

// Sentinel errors returned by the engines. HTTP handlers map these to
// status codes with errors.Is; callers never need to string-match.
var (
	ErrNotFound        = errors.New("not found")
	ErrUnauthenticated = errors.New("not authenticated")
	ErrAlreadyAccepted = errors.New("quest already accepted")
	ErrNotAccepted     = errors.New("quest not accepted")
	ErrConflict        = errors.New("concurrent modification")
	ErrUploadFailed    = errors.New("image upload failed")
	ErrInvalid         = errors.New("invalid input")
)

// Quest is a player-created, location-anchored task. The geofence
// (Lat/Lng/Radius) gates acceptance visibility on the map, not proof
// submission.
type Quest struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Emoji       string       `json:"emoji"`
	Color       string       `json:"color"`
	Lat         float64      `json:"lat"`
	Lng         float64      `json:"lng"`
	Radius      float64      `json:"radius"`
	Reward      int          `json:"reward"`
	ImageURL    string       `json:"imageUrl"`
	CreatorID   string       `json:"creatorId"`
	AcceptedBy  []string     `json:"acceptedBy"`
	Submissions []Submission `json:"submissions"`
	Active      bool         `json:"active"`
	CreatedAt   string       `json:"createdAt"`
}

// Submission is a user's proof-of-completion record. A quest holds at
// most one live submission per user; a resubmission replaces it.
type Submission struct {
	UserID      string `json:"userId"`
	UserName    string `json:"userName"`
	ImageURL    string `json:"imageUrl"`
	SubmittedAt string `json:"submittedAt"`
}

// SubmissionFor returns the quest's submission for the given user.
func (q *Quest) SubmissionFor(userID string) (Submission, bool) {
	for _, s := range q.Submissions {
		if s.UserID == userID {
			return s, true
		}
	}
	return Submission{}, false
}

// HasAccepter reports whether the user is currently pursuing the quest.
func (q *Quest) HasAccepter(userID string) bool {
	for _, id := range q.AcceptedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// User is the per-user document. Both engines mutate it: the quest
// engine through acceptedQuests and the balances, the journey engine
// through the journey progress fields and the balances.
type User struct {
	ID                     string   `json:"id"`
	Name                   string   `json:"name"`
	Email                  string   `json:"email"`
	PasswordHash           string   `json:"passwordHash"`
	Admin                  bool     `json:"admin"`
	LeaderBoardPoints      int      `json:"leaderBoardPoints"`
	SpendablePoints        int      `json:"spendablePoints"`
	AcceptedQuests         []string `json:"acceptedQuests"`
	CurrentJourneyQuest    string   `json:"currentJourneyQuest"`
	CurrentJourneyStop     int      `json:"currentJourneyStop"`
	CompletedJourneyQuests []string `json:"completedJourneyQuests"`
	CreatedAt              string   `json:"createdAt"`
}

// JourneyQuest is a fixed, admin-authored riddle chain requiring
// physical check-ins. Stop 0 is the always-visible map anchor; stops
// 1 and 2 are hidden until unlocked by proximity.
type JourneyQuest struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Emoji  string `json:"emoji"`
	Reward int    `json:"reward"`
	Stops  []Stop `json:"stops"`
}

// Stop is one station of a journey: a circular geofence plus the
// riddle revealed when the previous stop is reached.
type Stop struct {
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	Radius     float64 `json:"radius"`
	RiddleText string  `json:"riddleText"`
}

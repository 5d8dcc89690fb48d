// Package journey tracks each player's progress through the fixed
// multi-stop journey quests and gates advancement on geofence
// proximity checks.
package journey

import (
	"context"
	"fmt"

	"github.com/campusquest/api/internal/campus"
	"github.com/campusquest/api/internal/geo"
	"github.com/campusquest/api/internal/users"
)

// Outcome discriminates the RingBell result. "Too far" is a normal
// negative outcome, not an error.
type Outcome string

const (
	NoActiveJourney Outcome = "no_active_journey"
	TooFar          Outcome = "too_far"
	Advanced        Outcome = "advanced"
	Completed       Outcome = "completed"
)

// Result is what a bell ring produced.
type Result struct {
	Outcome        Outcome
	NextRiddle     string  // set when Outcome == Advanced
	Reward         int     // set when Outcome == Completed
	DistanceMeters float64 // distance to the current stop, informational
}

// Progress is the read projection for display.
type Progress struct {
	JourneyID  string
	StopIndex  int
	RiddleText string
}

// fallbackRiddle covers inconsistent progress records, e.g. a catalog
// entry removed while a player was mid-journey.
const fallbackRiddle = "Continue your journey."

type Engine struct {
	users   *users.Store
	catalog map[string]campus.JourneyQuest
	order   []campus.JourneyQuest
}

func New(us *users.Store) *Engine {
	return NewWithCatalog(us, DefaultCatalog())
}

func NewWithCatalog(us *users.Store, catalog []campus.JourneyQuest) *Engine {
	byID := make(map[string]campus.JourneyQuest, len(catalog))
	for _, j := range catalog {
		byID[j.ID] = j
	}
	return &Engine{users: us, catalog: byID, order: catalog}
}

// List returns the catalog in its fixed order.
func (e *Engine) List() []campus.JourneyQuest {
	return e.order
}

// Accept starts the journey for the user and returns the riddle for
// stop 1. Any in-progress journey is replaced unconditionally: taking
// on a new journey abandons the old one with no award or penalty.
func (e *Engine) Accept(ctx context.Context, userID, journeyID string) (string, error) {
	if userID == "" {
		return "", campus.ErrUnauthenticated
	}
	j, ok := e.catalog[journeyID]
	if !ok {
		return "", fmt.Errorf("%w: journey %q", campus.ErrNotFound, journeyID)
	}
	if err := e.users.SetJourney(ctx, userID, journeyID, 1); err != nil {
		return "", err
	}
	return j.Stops[1].RiddleText, nil
}

// Abandon clears the user's active journey. Completed journeys are
// untouched.
func (e *Engine) Abandon(ctx context.Context, userID string) error {
	if userID == "" {
		return campus.ErrUnauthenticated
	}
	return e.users.SetJourney(ctx, userID, "", 1)
}

// RingBell checks the device position against the user's current stop
// and advances the journey when in range. Stop 0 is never checked: it
// is the map anchor that triggered Accept, not a proximity gate. Each
// journey therefore takes exactly two bell rings, one revealing the
// final riddle and one completing the journey and paying the reward.
func (e *Engine) RingBell(ctx context.Context, userID string, pos geo.Point) (Result, error) {
	if userID == "" {
		return Result{}, campus.ErrUnauthenticated
	}
	u, err := e.users.Get(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if u.CurrentJourneyQuest == "" {
		return Result{Outcome: NoActiveJourney}, nil
	}

	j, ok := e.catalog[u.CurrentJourneyQuest]
	if !ok || u.CurrentJourneyStop < 1 || u.CurrentJourneyStop >= len(j.Stops) {
		// Progress record points at nothing usable; reset it.
		if err := e.users.SetJourney(ctx, userID, "", 1); err != nil {
			return Result{}, err
		}
		return Result{Outcome: NoActiveJourney}, nil
	}

	stop := j.Stops[u.CurrentJourneyStop]
	dist := geo.Distance(pos, geo.Point{Lat: stop.Lat, Lng: stop.Lng})
	if dist > stop.Radius {
		return Result{Outcome: TooFar, DistanceMeters: dist}, nil
	}

	if u.CurrentJourneyStop < len(j.Stops)-1 {
		next := u.CurrentJourneyStop + 1
		if err := e.users.SetJourney(ctx, userID, j.ID, next); err != nil {
			return Result{}, err
		}
		return Result{
			Outcome:        Advanced,
			NextRiddle:     j.Stops[next].RiddleText,
			DistanceMeters: dist,
		}, nil
	}

	// Final stop: pay out, record the completion, reset the cursor.
	if err := e.users.CreditPoints(ctx, userID, j.Reward); err != nil {
		return Result{}, err
	}
	if err := e.users.AddCompletedJourney(ctx, userID, j.ID); err != nil {
		return Result{}, err
	}
	if err := e.users.SetJourney(ctx, userID, "", 1); err != nil {
		return Result{}, err
	}
	return Result{Outcome: Completed, Reward: j.Reward, DistanceMeters: dist}, nil
}

// GetProgress returns the user's journey position for display.
func (e *Engine) GetProgress(ctx context.Context, userID string) (Progress, error) {
	if userID == "" {
		return Progress{}, campus.ErrUnauthenticated
	}
	u, err := e.users.Get(ctx, userID)
	if err != nil {
		return Progress{}, err
	}
	p := Progress{
		JourneyID: u.CurrentJourneyQuest,
		StopIndex: u.CurrentJourneyStop,
	}
	if p.StopIndex == 0 {
		p.StopIndex = 1
	}
	if p.JourneyID == "" {
		return p, nil
	}
	j, ok := e.catalog[p.JourneyID]
	if !ok || p.StopIndex < 0 || p.StopIndex >= len(j.Stops) {
		p.RiddleText = fallbackRiddle
		return p, nil
	}
	p.RiddleText = j.Stops[p.StopIndex].RiddleText
	return p, nil
}

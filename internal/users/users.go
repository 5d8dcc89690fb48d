// Package users owns the per-user documents: identity, point
// balances, accepted quests, and journey progress. Both engines
// mutate user records only through this store.
package users

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/campusquest/api/internal/campus"
	"github.com/campusquest/api/internal/docstore"
)

type Store struct {
	docs *docstore.Store
}

func New(docs *docstore.Store) *Store {
	return &Store{docs: docs}
}

func (s *Store) Get(ctx context.Context, id string) (campus.User, error) {
	var u campus.User
	err := s.docs.Get(ctx, docstore.Users, id, &u)
	return u, err
}

// Create writes a new user document. The journey stop cursor starts
// at 1 by convention even with no active journey.
func (s *Store) Create(ctx context.Context, u campus.User) error {
	if u.ID == "" {
		return fmt.Errorf("%w: user id required", campus.ErrInvalid)
	}
	if u.CurrentJourneyStop == 0 {
		u.CurrentJourneyStop = 1
	}
	if u.CreatedAt == "" {
		u.CreatedAt = docstore.NowUTC()
	}
	return s.docs.Set(ctx, docstore.Users, u.ID, u)
}

// ByEmail scans the collection for a user with the given email,
// case-insensitively.
func (s *Store) ByEmail(ctx context.Context, email string) (campus.User, error) {
	var found campus.User
	var ok bool
	err := s.docs.Query(ctx, docstore.Users, func(data []byte) error {
		var u campus.User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		if strings.EqualFold(u.Email, email) {
			found = u
			ok = true
		}
		return nil
	})
	if err != nil {
		return campus.User{}, err
	}
	if !ok {
		return campus.User{}, campus.ErrNotFound
	}
	return found, nil
}

// CreditPoints adds points to both balances. Awards always raise the
// leaderboard and spendable balances together.
func (s *Store) CreditPoints(ctx context.Context, id string, points int) error {
	return s.docs.Swap(ctx, docstore.Users, id, func(data []byte) ([]byte, error) {
		var u campus.User
		if err := json.Unmarshal(data, &u); err != nil {
			return nil, err
		}
		u.LeaderBoardPoints += points
		u.SpendablePoints += points
		return json.Marshal(u)
	})
}

func (s *Store) AddAcceptedQuest(ctx context.Context, userID, questID string) error {
	return s.docs.ArrayUnion(ctx, docstore.Users, userID, "acceptedQuests", questID)
}

func (s *Store) RemoveAcceptedQuest(ctx context.Context, userID, questID string) error {
	return s.docs.ArrayRemove(ctx, docstore.Users, userID, "acceptedQuests", questID)
}

// SetJourney points the user at a journey and stop. An empty journey
// id clears the active journey; the stop cursor resets to 1.
func (s *Store) SetJourney(ctx context.Context, userID, journeyID string, stop int) error {
	return s.docs.Update(ctx, docstore.Users, userID, map[string]any{
		"currentJourneyQuest": journeyID,
		"currentJourneyStop":  stop,
	})
}

// AddCompletedJourney records a journey completion idempotently.
func (s *Store) AddCompletedJourney(ctx context.Context, userID, journeyID string) error {
	return s.docs.ArrayUnion(ctx, docstore.Users, userID, "completedJourneyQuests", journeyID)
}

// Package quest implements the lifecycle of player-created,
// location-bound quests: creation, accept/abandon, proof submission
// and withdrawal, approval, and closure.
package quest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/campusquest/api/internal/blob"
	"github.com/campusquest/api/internal/campus"
	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/users"
)

// CreateInput carries the caller-supplied quest fields. Display
// fields are opaque to the engine.
type CreateInput struct {
	Name        string
	Description string
	Emoji       string
	Color       string
	Lat         float64
	Lng         float64
	Radius      float64
	Reward      int
}

type Service struct {
	docs    *docstore.Store
	users   *users.Store
	uploads blob.Uploader
}

func New(docs *docstore.Store, us *users.Store, uploads blob.Uploader) *Service {
	return &Service{docs: docs, users: us, uploads: uploads}
}

// Create validates the input, uploads the proof-requirement image,
// and writes the new quest document. A nil image is rejected rather
// than stored as an empty URL.
func (s *Service) Create(ctx context.Context, creatorID string, in CreateInput, image io.Reader, filename string) (campus.Quest, error) {
	if creatorID == "" {
		return campus.Quest{}, campus.ErrUnauthenticated
	}
	if in.Name == "" {
		return campus.Quest{}, fmt.Errorf("%w: name required", campus.ErrInvalid)
	}
	if in.Radius <= 0 {
		return campus.Quest{}, fmt.Errorf("%w: radius must be positive", campus.ErrInvalid)
	}
	if in.Reward < 0 {
		return campus.Quest{}, fmt.Errorf("%w: reward must not be negative", campus.ErrInvalid)
	}
	if image == nil {
		return campus.Quest{}, fmt.Errorf("%w: image required", campus.ErrInvalid)
	}

	id := docstore.NewID()
	url, err := s.uploads.Upload(ctx, "quests/"+id+path.Ext(filename), image)
	if err != nil {
		return campus.Quest{}, fmt.Errorf("%w: %w", campus.ErrUploadFailed, err)
	}

	q := campus.Quest{
		ID:          id,
		Name:        in.Name,
		Description: in.Description,
		Emoji:       in.Emoji,
		Color:       in.Color,
		Lat:         in.Lat,
		Lng:         in.Lng,
		Radius:      in.Radius,
		Reward:      in.Reward,
		ImageURL:    url,
		CreatorID:   creatorID,
		AcceptedBy:  []string{},
		Submissions: []campus.Submission{},
		Active:      true,
		CreatedAt:   docstore.NowUTC(),
	}
	if err := s.docs.Set(ctx, docstore.Quests, id, q); err != nil {
		return campus.Quest{}, err
	}
	return q, nil
}

// Get returns the quest. A closed quest is gone from the engine's
// point of view, so active=false reads as ErrNotFound.
func (s *Service) Get(ctx context.Context, questID string) (campus.Quest, error) {
	var q campus.Quest
	if err := s.docs.Get(ctx, docstore.Quests, questID, &q); err != nil {
		return campus.Quest{}, err
	}
	if !q.Active {
		return campus.Quest{}, campus.ErrNotFound
	}
	return q, nil
}

// Accept adds the user to the quest's accepter set and mirrors the
// quest id onto the user record. The two writes target different
// documents and are deliberately separate, not atomic.
func (s *Service) Accept(ctx context.Context, questID, userID string) error {
	if userID == "" {
		return campus.ErrUnauthenticated
	}
	q, err := s.Get(ctx, questID)
	if err != nil {
		return err
	}
	if q.HasAccepter(userID) {
		return campus.ErrAlreadyAccepted
	}
	if err := s.docs.ArrayUnion(ctx, docstore.Quests, questID, "acceptedBy", userID); err != nil {
		return err
	}
	return s.users.AddAcceptedQuest(ctx, userID, questID)
}

// Abandon removes the user from both sets, symmetric to Accept.
// Abandoning a quest that was never accepted is a no-op.
func (s *Service) Abandon(ctx context.Context, questID, userID string) error {
	if userID == "" {
		return campus.ErrUnauthenticated
	}
	if err := s.docs.ArrayRemove(ctx, docstore.Quests, questID, "acceptedBy", userID); err != nil {
		return err
	}
	return s.users.RemoveAcceptedQuest(ctx, userID, questID)
}

// SubmitProof uploads the proof image and upserts the user's
// submission entry. A prior entry for the same user is replaced, not
// appended: the document store has no upsert-by-field primitive for
// array elements, so the whole list is rewritten under a revision
// check. A lost race surfaces as ErrConflict for the caller to retry.
func (s *Service) SubmitProof(ctx context.Context, questID, userID, userName string, image io.Reader, filename string) error {
	if userID == "" {
		return campus.ErrUnauthenticated
	}
	if image == nil {
		return fmt.Errorf("%w: image required", campus.ErrInvalid)
	}
	if _, err := s.Get(ctx, questID); err != nil {
		return err
	}

	// Upload before touching the document so a storage failure leaves
	// no partial submission behind.
	url, err := s.uploads.Upload(ctx, "submissions/"+questID+"/"+userID+path.Ext(filename), image)
	if err != nil {
		return fmt.Errorf("%w: %w", campus.ErrUploadFailed, err)
	}

	sub := campus.Submission{
		UserID:      userID,
		UserName:    userName,
		ImageURL:    url,
		SubmittedAt: docstore.NowUTC(),
	}
	return s.docs.Swap(ctx, docstore.Quests, questID, func(data []byte) ([]byte, error) {
		var q campus.Quest
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, err
		}
		if !q.Active {
			return nil, campus.ErrNotFound
		}
		replaced := false
		for i := range q.Submissions {
			if q.Submissions[i].UserID == userID {
				q.Submissions[i] = sub
				replaced = true
				break
			}
		}
		if !replaced {
			q.Submissions = append(q.Submissions, sub)
		}
		return json.Marshal(q)
	})
}

// WithdrawProof removes the user's submission entry. Withdrawing when
// no entry exists is treated as success.
func (s *Service) WithdrawProof(ctx context.Context, questID, userID string) error {
	if userID == "" {
		return campus.ErrUnauthenticated
	}
	return s.docs.Swap(ctx, docstore.Quests, questID, func(data []byte) ([]byte, error) {
		var q campus.Quest
		if err := json.Unmarshal(data, &q); err != nil {
			return nil, err
		}
		if !q.Active {
			return nil, campus.ErrNotFound
		}
		kept := q.Submissions[:0]
		for _, sub := range q.Submissions {
			if sub.UserID != userID {
				kept = append(kept, sub)
			}
		}
		q.Submissions = kept
		return json.Marshal(q)
	})
}

// Approve closes the quest in favor of one submission: the approved
// user is credited the reward, the quest goes inactive, and the quest
// id is removed from every accepter's record. The credit and the
// deactivation are two writes; a crash in between leaves one applied.
func (s *Service) Approve(ctx context.Context, questID, approvedUserID string) error {
	q, err := s.Get(ctx, questID)
	if err != nil {
		return err
	}
	if _, ok := q.SubmissionFor(approvedUserID); !ok {
		return fmt.Errorf("%w: no submission from user", campus.ErrNotFound)
	}

	if err := s.docs.Update(ctx, docstore.Quests, questID, map[string]any{"active": false}); err != nil {
		return err
	}
	if err := s.users.CreditPoints(ctx, approvedUserID, q.Reward); err != nil {
		return err
	}
	return s.cleanupAccepters(ctx, questID, q.AcceptedBy)
}

// Close deactivates the quest without awarding points. Authorization
// (creator or admin) is the caller's concern.
func (s *Service) Close(ctx context.Context, questID string) error {
	q, err := s.Get(ctx, questID)
	if err != nil {
		return err
	}
	if err := s.docs.Update(ctx, docstore.Quests, questID, map[string]any{"active": false}); err != nil {
		return err
	}
	return s.cleanupAccepters(ctx, questID, q.AcceptedBy)
}

// cleanupAccepters fans the quest-id removal out across all accepter
// records. The writes target disjoint user documents, so they run
// concurrently.
func (s *Service) cleanupAccepters(ctx context.Context, questID string, accepters []string) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, userID := range accepters {
		g.Go(func() error {
			return s.users.RemoveAcceptedQuest(gctx, userID, questID)
		})
	}
	return g.Wait()
}

// ListActive returns all active quests, oldest first. The ordering is
// stable within one read.
func (s *Service) ListActive(ctx context.Context) ([]campus.Quest, error) {
	var quests []campus.Quest
	err := s.docs.Query(ctx, docstore.Quests, func(data []byte) error {
		var q campus.Quest
		if err := json.Unmarshal(data, &q); err != nil {
			return err
		}
		if q.Active {
			quests = append(quests, q)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(quests, func(i, j int) bool {
		if quests[i].CreatedAt != quests[j].CreatedAt {
			return quests[i].CreatedAt < quests[j].CreatedAt
		}
		return quests[i].ID < quests[j].ID
	})
	return quests, nil
}

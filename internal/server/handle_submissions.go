package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/quest"
	"github.com/campusquest/api/internal/users"
)

func handleSubmitProof(docs *docstore.Store, us *users.Store, qs *quest.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		questID := chi.URLParam(r, "id")

		image, filename, err := multipartImage(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}

		if err := qs.SubmitProof(r.Context(), questID, u.ID, u.Name, image, filename); err != nil {
			writeEngineError(w, err)
			return
		}
		broker.Publish(questID, QuestEvent{
			Type:     eventProofSubmitted,
			QuestID:  questID,
			UserID:   u.ID,
			UserName: u.Name,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"submitted": true})
	}
}

func handleWithdrawProof(docs *docstore.Store, us *users.Store, qs *quest.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		questID := chi.URLParam(r, "id")
		if err := qs.WithdrawProof(r.Context(), questID, u.ID); err != nil {
			writeEngineError(w, err)
			return
		}
		broker.Publish(questID, QuestEvent{
			Type:    eventProofWithdrawn,
			QuestID: questID,
			UserID:  u.ID,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"withdrawn": true})
	}
}

type ApproveRequest struct {
	UserID string `json:"userId"`
}

func handleApproveSubmission(docs *docstore.Store, us *users.Store, qs *quest.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		questID := chi.URLParam(r, "id")

		var req ApproveRequest
		if err := readJSON(r, &req); err != nil || req.UserID == "" {
			writeError(w, http.StatusBadRequest, "userId is required")
			return
		}

		q, err := qs.Get(r.Context(), questID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if q.CreatorID != u.ID && !u.Admin {
			writeError(w, http.StatusForbidden, "only the creator can approve submissions")
			return
		}

		if err := qs.Approve(r.Context(), questID, req.UserID); err != nil {
			writeEngineError(w, err)
			return
		}
		broker.Publish(questID, QuestEvent{
			Type:    eventQuestApproved,
			QuestID: questID,
			UserID:  req.UserID,
		})
		writeJSON(w, http.StatusOK, map[string]any{"approved": true, "reward": q.Reward})
	}
}

package server

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/api/internal/campus"
	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/quest"
	"github.com/campusquest/api/internal/users"
)

const maxUploadBytes = 10 << 20

// QuestView is the public projection of a quest.
type QuestView struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Emoji       string  `json:"emoji"`
	Color       string  `json:"color"`
	Lat         float64 `json:"lat"`
	Lng         float64 `json:"lng"`
	Radius      float64 `json:"radius"`
	Reward      int     `json:"reward"`
	ImageURL    string  `json:"imageUrl"`
	CreatorID   string  `json:"creatorId"`
	Accepters   int     `json:"accepters"`
	Submissions int     `json:"submissions"`
	CreatedAt   string  `json:"createdAt"`
}

func questView(q campus.Quest) QuestView {
	return QuestView{
		ID:          q.ID,
		Name:        q.Name,
		Description: q.Description,
		Emoji:       q.Emoji,
		Color:       q.Color,
		Lat:         q.Lat,
		Lng:         q.Lng,
		Radius:      q.Radius,
		Reward:      q.Reward,
		ImageURL:    q.ImageURL,
		CreatorID:   q.CreatorID,
		Accepters:   len(q.AcceptedBy),
		Submissions: len(q.Submissions),
		CreatedAt:   q.CreatedAt,
	}
}

func handleListQuests(qs *quest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		quests, err := qs.ListActive(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal error")
			return
		}
		views := make([]QuestView, len(quests))
		for i, q := range quests {
			views[i] = questView(q)
		}
		writeJSON(w, http.StatusOK, views)
	}
}

func handleGetQuest(docs *docstore.Store, us *users.Store, qs *quest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		q, err := qs.Get(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeEngineError(w, err)
			return
		}
		// The creator sees the submissions; everyone else sees counts.
		if q.CreatorID == u.ID || u.Admin {
			writeJSON(w, http.StatusOK, q)
			return
		}
		writeJSON(w, http.StatusOK, questView(q))
	}
}

// multipartImage pulls the "image" file out of a multipart form.
// A request without the part returns a nil reader, which the engine
// rejects for commands that require proof.
func multipartImage(r *http.Request) (io.Reader, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, "", err
	}
	file, header, err := r.FormFile("image")
	if err == http.ErrMissingFile {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", err
	}
	return file, header.Filename, nil
}

func handleCreateQuest(docs *docstore.Store, us *users.Store, qs *quest.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		image, filename, err := multipartImage(r)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid multipart body")
			return
		}

		form := r.FormValue
		lat, _ := strconv.ParseFloat(form("lat"), 64)
		lng, _ := strconv.ParseFloat(form("lng"), 64)
		radius, _ := strconv.ParseFloat(form("radius"), 64)
		reward, _ := strconv.Atoi(form("reward"))

		q, err := qs.Create(r.Context(), u.ID, quest.CreateInput{
			Name:        strings.TrimSpace(form("name")),
			Description: form("description"),
			Emoji:       form("emoji"),
			Color:       form("color"),
			Lat:         lat,
			Lng:         lng,
			Radius:      radius,
			Reward:      reward,
		}, image, filename)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, questView(q))
	}
}

func handleAcceptQuest(docs *docstore.Store, us *users.Store, qs *quest.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		questID := chi.URLParam(r, "id")
		if err := qs.Accept(r.Context(), questID, u.ID); err != nil {
			writeEngineError(w, err)
			return
		}
		broker.Publish(questID, QuestEvent{
			Type:     eventQuestAccepted,
			QuestID:  questID,
			UserID:   u.ID,
			UserName: u.Name,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"accepted": true})
	}
}

func handleAbandonQuest(docs *docstore.Store, us *users.Store, qs *quest.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		questID := chi.URLParam(r, "id")
		if err := qs.Abandon(r.Context(), questID, u.ID); err != nil {
			writeEngineError(w, err)
			return
		}
		broker.Publish(questID, QuestEvent{
			Type:     eventQuestAbandoned,
			QuestID:  questID,
			UserID:   u.ID,
			UserName: u.Name,
		})
		writeJSON(w, http.StatusOK, map[string]bool{"abandoned": true})
	}
}

func handleCloseQuest(docs *docstore.Store, us *users.Store, qs *quest.Service, broker *Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		questID := chi.URLParam(r, "id")

		q, err := qs.Get(r.Context(), questID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		if q.CreatorID != u.ID && !u.Admin {
			writeError(w, http.StatusForbidden, "only the creator or an admin can close a quest")
			return
		}

		if err := qs.Close(r.Context(), questID); err != nil {
			writeEngineError(w, err)
			return
		}
		broker.Publish(questID, QuestEvent{Type: eventQuestClosed, QuestID: questID})
		writeJSON(w, http.StatusOK, map[string]bool{"closed": true})
	}
}

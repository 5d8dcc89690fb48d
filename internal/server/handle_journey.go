package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campusquest/api/internal/docstore"
	"github.com/campusquest/api/internal/geo"
	"github.com/campusquest/api/internal/journey"
	"github.com/campusquest/api/internal/users"
)

// JourneyView hides the riddle chain: only the stop-0 map anchor is
// public. Riddles for stops 1 and 2 are revealed by accept and bell.
type JourneyView struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Emoji    string  `json:"emoji"`
	Reward   int     `json:"reward"`
	StartLat float64 `json:"startLat"`
	StartLng float64 `json:"startLng"`
	Stops    int     `json:"stops"`
}

func handleListJourneys(je *journey.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		catalog := je.List()
		views := make([]JourneyView, len(catalog))
		for i, j := range catalog {
			views[i] = JourneyView{
				ID:       j.ID,
				Name:     j.Name,
				Emoji:    j.Emoji,
				Reward:   j.Reward,
				StartLat: j.Stops[0].Lat,
				StartLng: j.Stops[0].Lng,
				Stops:    len(j.Stops),
			}
		}
		writeJSON(w, http.StatusOK, views)
	}
}

type AcceptJourneyResponse struct {
	JourneyID string `json:"journeyId"`
	Riddle    string `json:"riddle"`
}

func handleAcceptJourney(docs *docstore.Store, us *users.Store, je *journey.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		journeyID := chi.URLParam(r, "id")
		riddle, err := je.Accept(r.Context(), u.ID, journeyID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, AcceptJourneyResponse{JourneyID: journeyID, Riddle: riddle})
	}
}

func handleAbandonJourney(docs *docstore.Store, us *users.Store, je *journey.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		if err := je.Abandon(r.Context(), u.ID); err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"abandoned": true})
	}
}

// BellRequest carries the device-reported position. Geolocation
// acquisition (permissions, timeouts) is the client's concern.
type BellRequest struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type BellResponse struct {
	Outcome        string  `json:"outcome"`
	NextRiddle     string  `json:"nextRiddle,omitempty"`
	Reward         int     `json:"reward,omitempty"`
	DistanceMeters float64 `json:"distanceMeters"`
}

func handleRingBell(docs *docstore.Store, us *users.Store, je *journey.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}

		var req BellRequest
		if err := readJSON(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		res, err := je.RingBell(r.Context(), u.ID, geo.Point{Lat: req.Lat, Lng: req.Lng})
		if err != nil {
			writeEngineError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, BellResponse{
			Outcome:        string(res.Outcome),
			NextRiddle:     res.NextRiddle,
			Reward:         res.Reward,
			DistanceMeters: res.DistanceMeters,
		})
	}
}

type ProgressResponse struct {
	JourneyID *string `json:"journeyId"`
	StopIndex int     `json:"stopIndex"`
	Riddle    string  `json:"riddle,omitempty"`
}

func handleJourneyProgress(docs *docstore.Store, us *users.Store, je *journey.Engine) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, err := userFromRequest(r, docs, us)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid or missing session token")
			return
		}
		p, err := je.GetProgress(r.Context(), u.ID)
		if err != nil {
			writeEngineError(w, err)
			return
		}
		resp := ProgressResponse{StopIndex: p.StopIndex, Riddle: p.RiddleText}
		if p.JourneyID != "" {
			resp.JourneyID = &p.JourneyID
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

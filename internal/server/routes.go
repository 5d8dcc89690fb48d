package server

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"
	"github.com/swaggest/swgui/v5emb"
)

func addRoutes(r chi.Router, logger *slog.Logger, deps Deps) {
	broker := NewBroker()

	r.Get("/openapi.json", handleOpenAPI())
	r.Mount("/docs", v5emb.New("CampusQuest API", "/openapi.json", "/docs"))
	r.Get("/healthz", handleHealth(logger, deps.DB, deps.Redis))
	r.Get("/ws/echo", handleWSEcho(logger))

	r.Post("/api/register", handleRegister(deps.Docs, deps.Users))
	r.Post("/api/login", handleLogin(deps.Docs, deps.Users))
	r.Get("/api/me", handleMe(deps.Docs, deps.Users))

	r.Route("/api/quests", func(r chi.Router) {
		r.Get("/", handleListQuests(deps.Quests))
		r.Post("/", handleCreateQuest(deps.Docs, deps.Users, deps.Quests))
		r.Get("/{id}", handleGetQuest(deps.Docs, deps.Users, deps.Quests))
		r.Post("/{id}/accept", handleAcceptQuest(deps.Docs, deps.Users, deps.Quests, broker))
		r.Post("/{id}/abandon", handleAbandonQuest(deps.Docs, deps.Users, deps.Quests, broker))
		r.Post("/{id}/close", handleCloseQuest(deps.Docs, deps.Users, deps.Quests, broker))
		r.Post("/{id}/submission", handleSubmitProof(deps.Docs, deps.Users, deps.Quests, broker))
		r.Delete("/{id}/submission", handleWithdrawProof(deps.Docs, deps.Users, deps.Quests, broker))
		r.Post("/{id}/approve", handleApproveSubmission(deps.Docs, deps.Users, deps.Quests, broker))
		r.Get("/{id}/events", handleEvents(deps.Docs, deps.Users, broker))
	})

	r.Route("/api/journeys", func(r chi.Router) {
		r.Get("/", handleListJourneys(deps.Journeys))
		r.Get("/progress", handleJourneyProgress(deps.Docs, deps.Users, deps.Journeys))
		r.Post("/bell", handleRingBell(deps.Docs, deps.Users, deps.Journeys))
		r.Post("/abandon", handleAbandonJourney(deps.Docs, deps.Users, deps.Journeys))
		r.Post("/{id}/accept", handleAcceptJourney(deps.Docs, deps.Users, deps.Journeys))
	})

	if deps.UploadsDir != "" {
		if info, err := os.Stat(deps.UploadsDir); err == nil && info.IsDir() {
			logger.Info("serving local uploads", "dir", deps.UploadsDir)
			fs := http.StripPrefix("/uploads/", http.FileServer(http.Dir(deps.UploadsDir)))
			r.Get("/uploads/*", fs.ServeHTTP)
		}
	}
}

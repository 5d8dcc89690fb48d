package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"
)

// ErrorResponse is returned for all error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "CampusQuest API"
	r.Spec.Info.Version = "0.1.0"
	r.Spec.Info.WithDescription("Backend API for the CampusQuest game.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(HealthResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// GET /ws/echo
	getWSEcho, _ := r.NewOperationContext(http.MethodGet, "/ws/echo")
	getWSEcho.SetSummary("WebSocket echo")
	getWSEcho.SetDescription("Upgrades to a WebSocket connection that echoes messages back.")
	getWSEcho.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusSwitchingProtocols),
		openapi.WithContentType("text/plain"))
	_ = r.AddOperation(getWSEcho)

	// POST /api/register
	postRegister, _ := r.NewOperationContext(http.MethodPost, "/api/register")
	postRegister.SetSummary("Register")
	postRegister.SetDescription("Create an account. Returns a session token.")
	postRegister.AddReqStructure(RegisterRequest{})
	postRegister.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postRegister.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	_ = r.AddOperation(postRegister)

	// POST /api/login
	postLogin, _ := r.NewOperationContext(http.MethodPost, "/api/login")
	postLogin.SetSummary("Log in")
	postLogin.SetDescription("Authenticate with email and password. Returns a session token.")
	postLogin.AddReqStructure(LoginRequest{})
	postLogin.AddRespStructure(AuthResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postLogin.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(postLogin)

	// GET /api/me
	getMe, _ := r.NewOperationContext(http.MethodGet, "/api/me")
	getMe.SetSummary("Current user")
	getMe.SetDescription("Returns the authenticated user's profile and balances. Requires Bearer token.")
	getMe.AddRespStructure(MeResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getMe.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getMe)

	// GET /api/quests
	listQuests, _ := r.NewOperationContext(http.MethodGet, "/api/quests")
	listQuests.SetSummary("List open quests")
	listQuests.SetDescription("Returns all open quests, oldest first.")
	listQuests.AddRespStructure([]QuestView{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listQuests)

	// POST /api/quests
	createQuest, _ := r.NewOperationContext(http.MethodPost, "/api/quests")
	createQuest.SetSummary("Create quest")
	createQuest.SetDescription("Creates a quest from a multipart form with an image part. Requires Bearer token.")
	createQuest.AddRespStructure(QuestView{}, openapi.WithHTTPStatus(http.StatusCreated))
	createQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	createQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	createQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(createQuest)

	// GET /api/quests/{id}
	getQuest, _ := r.NewOperationContext(http.MethodGet, "/api/quests/{id}")
	getQuest.SetSummary("Get quest")
	getQuest.SetDescription("Returns a quest. The creator sees submissions, everyone else sees counts. Requires Bearer token.")
	getQuest.AddRespStructure(QuestView{}, openapi.WithHTTPStatus(http.StatusOK))
	getQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	getQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getQuest)

	// POST /api/quests/{id}/accept
	acceptQuest, _ := r.NewOperationContext(http.MethodPost, "/api/quests/{id}/accept")
	acceptQuest.SetSummary("Accept quest")
	acceptQuest.SetDescription("Adds the caller to the quest's accepter list. Requires Bearer token.")
	acceptQuest.AddRespStructure(map[string]bool{}, openapi.WithHTTPStatus(http.StatusOK))
	acceptQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	acceptQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusConflict))
	acceptQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(acceptQuest)

	// POST /api/quests/{id}/abandon
	abandonQuest, _ := r.NewOperationContext(http.MethodPost, "/api/quests/{id}/abandon")
	abandonQuest.SetSummary("Abandon quest")
	abandonQuest.SetDescription("Removes the caller from the quest's accepter list. Requires Bearer token.")
	abandonQuest.AddRespStructure(map[string]bool{}, openapi.WithHTTPStatus(http.StatusOK))
	abandonQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	abandonQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(abandonQuest)

	// POST /api/quests/{id}/close
	closeQuest, _ := r.NewOperationContext(http.MethodPost, "/api/quests/{id}/close")
	closeQuest.SetSummary("Close quest")
	closeQuest.SetDescription("Closes a quest without awarding anyone. Creator or admin only. Requires Bearer token.")
	closeQuest.AddRespStructure(map[string]bool{}, openapi.WithHTTPStatus(http.StatusOK))
	closeQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	closeQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	closeQuest.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(closeQuest)

	// POST /api/quests/{id}/submission
	submitProof, _ := r.NewOperationContext(http.MethodPost, "/api/quests/{id}/submission")
	submitProof.SetSummary("Submit proof")
	submitProof.SetDescription("Uploads a proof photo for the quest. Replaces any earlier submission by the same user. Requires Bearer token.")
	submitProof.AddRespStructure(map[string]bool{}, openapi.WithHTTPStatus(http.StatusOK))
	submitProof.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	submitProof.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	submitProof.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	submitProof.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadGateway))
	_ = r.AddOperation(submitProof)

	// DELETE /api/quests/{id}/submission
	withdrawProof, _ := r.NewOperationContext(http.MethodDelete, "/api/quests/{id}/submission")
	withdrawProof.SetSummary("Withdraw proof")
	withdrawProof.SetDescription("Removes the caller's submission from the quest. Requires Bearer token.")
	withdrawProof.AddRespStructure(map[string]bool{}, openapi.WithHTTPStatus(http.StatusOK))
	withdrawProof.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	withdrawProof.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(withdrawProof)

	// POST /api/quests/{id}/approve
	approve, _ := r.NewOperationContext(http.MethodPost, "/api/quests/{id}/approve")
	approve.SetSummary("Approve submission")
	approve.SetDescription("Awards the reward to the chosen submitter and closes the quest. Creator or admin only. Requires Bearer token.")
	approve.AddReqStructure(ApproveRequest{})
	approve.AddRespStructure(map[string]any{}, openapi.WithHTTPStatus(http.StatusOK))
	approve.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusForbidden))
	approve.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	approve.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(approve)

	// GET /api/quests/{id}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/quests/{id}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events stream for a quest's activity. Pass token as query parameter.")
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	_ = r.AddOperation(getEvents)

	// GET /api/journeys
	listJourneys, _ := r.NewOperationContext(http.MethodGet, "/api/journeys")
	listJourneys.SetSummary("List journeys")
	listJourneys.SetDescription("Returns the journey catalog with start anchors only. Riddles are revealed through play.")
	listJourneys.AddRespStructure([]JourneyView{}, openapi.WithHTTPStatus(http.StatusOK))
	_ = r.AddOperation(listJourneys)

	// POST /api/journeys/{id}/accept
	acceptJourney, _ := r.NewOperationContext(http.MethodPost, "/api/journeys/{id}/accept")
	acceptJourney.SetSummary("Accept journey")
	acceptJourney.SetDescription("Starts the journey and reveals the first riddle. Replaces any active journey. Requires Bearer token.")
	acceptJourney.AddRespStructure(AcceptJourneyResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	acceptJourney.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	acceptJourney.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(acceptJourney)

	// POST /api/journeys/abandon
	abandonJourney, _ := r.NewOperationContext(http.MethodPost, "/api/journeys/abandon")
	abandonJourney.SetSummary("Abandon journey")
	abandonJourney.SetDescription("Clears the caller's active journey. Requires Bearer token.")
	abandonJourney.AddRespStructure(map[string]bool{}, openapi.WithHTTPStatus(http.StatusOK))
	abandonJourney.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(abandonJourney)

	// POST /api/journeys/bell
	ringBell, _ := r.NewOperationContext(http.MethodPost, "/api/journeys/bell")
	ringBell.SetSummary("Ring the bell")
	ringBell.SetDescription("Checks the caller's position against the current stop and advances the journey when close enough. Requires Bearer token.")
	ringBell.AddReqStructure(BellRequest{})
	ringBell.AddRespStructure(BellResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	ringBell.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	ringBell.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(ringBell)

	// GET /api/journeys/progress
	getProgress, _ := r.NewOperationContext(http.MethodGet, "/api/journeys/progress")
	getProgress.SetSummary("Journey progress")
	getProgress.SetDescription("Returns the caller's active journey, current stop, and riddle. Requires Bearer token.")
	getProgress.AddRespStructure(ProgressResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getProgress.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnauthorized))
	_ = r.AddOperation(getProgress)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}

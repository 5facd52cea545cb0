package app

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/nextchamp/nextchamp/internal/platform/errors"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/contest"
	"github.com/nextchamp/nextchamp/internal/services/contest/domain/user"
	"github.com/nextchamp/nextchamp/internal/services/contest/service"
	"github.com/nextchamp/nextchamp/internal/services/contest/storage"
)

type participantPayload struct {
	Email     string    `json:"email"`
	PaymentAt time.Time `json:"paymentAt"`
	Task      string    `json:"task,omitempty"`
	Name      string    `json:"name,omitempty"`
	Image     string    `json:"image,omitempty"`
}

type winnerPayload struct {
	Email      string    `json:"email,omitempty"`
	Name       string    `json:"name,omitempty"`
	Prize      string    `json:"prize,omitempty"`
	DeclaredAt time.Time `json:"declaredAt"`
}

type contestPayload struct {
	ID            string               `json:"id"`
	CreatorEmail  string               `json:"creatorEmail"`
	Title         string               `json:"title"`
	Type          string               `json:"type"`
	Price         float64              `json:"price"`
	Status        string               `json:"status"`
	PaymentStatus string               `json:"paymentStatus"`
	Participants  []participantPayload `json:"participants"`
	Winner        []winnerPayload      `json:"winner"`
	WinnerStatus  string               `json:"winnerStatus"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedTime   *time.Time           `json:"updatedTime,omitempty"`
}

type userPayload struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func contestToPayload(c contest.Contest) contestPayload {
	payload := contestPayload{
		ID:            c.ID,
		CreatorEmail:  c.CreatorEmail,
		Title:         c.Title,
		Type:          c.Type,
		Price:         c.Price,
		Status:        c.Status,
		PaymentStatus: string(c.PaymentStatus),
		Participants:  make([]participantPayload, 0, len(c.Participants)),
		Winner:        make([]winnerPayload, 0, len(c.Winners)),
		WinnerStatus:  string(c.WinnerStatus),
		CreatedAt:     c.CreatedAt,
		UpdatedTime:   c.UpdatedTime,
	}
	for _, p := range c.Participants {
		payload.Participants = append(payload.Participants, participantPayload{
			Email:     p.Email,
			PaymentAt: p.PaymentAt,
			Task:      p.Task,
			Name:      p.Name,
			Image:     p.Image,
		})
	}
	for _, w := range c.Winners {
		payload.Winner = append(payload.Winner, winnerPayload{
			Email:      w.Email,
			Name:       w.Name,
			Prize:      w.Prize,
			DeclaredAt: w.DeclaredAt,
		})
	}
	return payload
}

func contestsToPayload(contests []contest.Contest) []contestPayload {
	payloads := make([]contestPayload, 0, len(contests))
	for _, c := range contests {
		payloads = append(payloads, contestToPayload(c))
	}
	return payloads
}

func userToPayload(u user.User) userPayload {
	return userPayload{ID: u.ID, Email: u.Email, Role: u.Role, CreatedAt: u.CreatedAt}
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /users", s.handleListUsers)
	mux.HandleFunc("POST /users", s.handleSignup)
	mux.HandleFunc("PATCH /users/{id}", s.handleSetRole)

	mux.HandleFunc("GET /contests", s.handleListContests)
	mux.HandleFunc("POST /contests", s.handleCreateContest)
	mux.HandleFunc("GET /contests/{id}", s.handleGetContest)
	mux.HandleFunc("PUT /contests/{id}", s.handleUpdateContest)
	mux.HandleFunc("PATCH /contests/{id}", s.handleSetContestStatus)
	mux.HandleFunc("DELETE /contests/{id}", s.handleDeleteContest)
	mux.HandleFunc("PATCH /contests/{id}/winner", s.handleDeclareWinner)

	mux.HandleFunc("GET /my-contests", s.handleMyContests)
	mux.HandleFunc("GET /my-winnings-contest", s.handleMyWinnings)
	mux.HandleFunc("GET /my-participation/{email}", s.handleMyParticipation)
	mux.HandleFunc("PATCH /submit-task/{id}", s.handleSubmitTask)

	mux.HandleFunc("POST /create-checkout-session", s.handleCreateCheckoutSession)
	mux.HandleFunc("PATCH /payment-success", s.handlePaymentSuccess)

	return mux
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	writeJSON(w, code.HTTPStatus(), errorResponse{Error: err.Error(), Code: string(code)})
}

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "request body is not valid JSON", Code: string(apperrors.CodeUnknown)})
		return false
	}
	return true
}

// principal resolves the bearer credential on identity-gated routes.
func (s *Server) principal(r *http.Request) (string, error) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", apperrors.New(apperrors.CodeAuthTokenMissing, "authorization header is required")
	}
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found {
		return "", apperrors.New(apperrors.CodeAuthTokenInvalid, "authorization header must carry a bearer token")
	}
	return s.verifier.Verify(r.Context(), token)
}

// parseLimit reads the limit query parameter permissively: non-numeric or
// non-positive values mean "no cap" rather than an error.
func parseLimit(r *http.Request) int {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return 0
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0
	}
	return limit
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	account, outcome, err := s.users.Signup(r.Context(), user.SignupInput{Email: body.Email, Role: body.Role})
	if err != nil {
		writeError(w, err)
		return
	}
	status := http.StatusCreated
	if outcome == service.OutcomeAlreadyExists {
		status = http.StatusOK
	}
	writeJSON(w, status, userToPayload(account))
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.users.ListUsers(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	payloads := make([]userPayload, 0, len(users))
	for _, u := range users {
		payloads = append(payloads, userToPayload(u))
	}
	writeJSON(w, http.StatusOK, payloads)
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Role string `json:"role"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	userID := r.PathValue("id")
	if err := s.users.SetRole(r.Context(), userID, body.Role); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"id": userID, "role": strings.TrimSpace(body.Role)})
}

func (s *Server) handleCreateContest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CreatorEmail string  `json:"creatorEmail"`
		Title        string  `json:"title"`
		Type         string  `json:"type"`
		Price        float64 `json:"price"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	created, err := s.contests.CreateContest(r.Context(), contest.CreateInput{
		CreatorEmail: body.CreatorEmail,
		Title:        body.Title,
		Type:         body.Type,
		Price:        body.Price,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, contestToPayload(created))
}

func (s *Server) handleGetContest(w http.ResponseWriter, r *http.Request) {
	found, err := s.contests.GetContest(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contestToPayload(found))
}

func (s *Server) handleListContests(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	contests, err := s.contests.ListContests(r.Context(), storage.ContestFilter{
		CreatorEmail: query.Get("creator"),
		Search:       query.Get("search"),
		Limit:        parseLimit(r),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contestsToPayload(contests))
}

func (s *Server) handleUpdateContest(w http.ResponseWriter, r *http.Request) {
	var body struct {
		CreatorEmail *string  `json:"creatorEmail"`
		Title        *string  `json:"title"`
		Type         *string  `json:"type"`
		Price        *float64 `json:"price"`
		Status       *string  `json:"status"`
		Email        string   `json:"email"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	contestID := r.PathValue("id")
	outcome, err := s.contests.UpdateContest(r.Context(), contestID, storage.ContestPatch{
		CreatorEmail: body.CreatorEmail,
		Title:        body.Title,
		Type:         body.Type,
		Price:        body.Price,
		Status:       body.Status,
		Email:        body.Email,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	updated, err := s.contests.GetContest(r.Context(), contestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Outcome string         `json:"outcome"`
		Contest contestPayload `json:"contest"`
	}{Outcome: string(outcome), Contest: contestToPayload(updated)})
}

func (s *Server) handleSetContestStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Status string `json:"status"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	contestID := r.PathValue("id")
	if err := s.contests.SetStatus(r.Context(), contestID, body.Status); err != nil {
		writeError(w, err)
		return
	}
	updated, err := s.contests.GetContest(r.Context(), contestID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contestToPayload(updated))
}

func (s *Server) handleDeleteContest(w http.ResponseWriter, r *http.Request) {
	affected, err := s.contests.DeleteContest(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		DeletedCount int64 `json:"deletedCount"`
	}{DeletedCount: affected})
}

func (s *Server) handleDeclareWinner(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Name  string `json:"name"`
		Prize string `json:"prize"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	result, err := s.contests.DeclareWinner(r.Context(), r.PathValue("id"), service.WinnerInput{
		Email: body.Email,
		Name:  body.Name,
		Prize: body.Prize,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Redeclared bool           `json:"redeclared"`
		Contest    contestPayload `json:"contest"`
	}{Redeclared: result.Redeclared, Contest: contestToPayload(result.Contest)})
}

func (s *Server) handleMyContests(w http.ResponseWriter, r *http.Request) {
	email, err := s.principal(r)
	if err != nil {
		writeError(w, err)
		return
	}
	contests, err := s.contests.MyContests(r.Context(), email)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contestsToPayload(contests))
}

// handleMyWinnings is the identity-gated contest listing the dashboard uses
// to scan for declared winners; the winner records ride on each contest.
func (s *Server) handleMyWinnings(w http.ResponseWriter, r *http.Request) {
	if _, err := s.principal(r); err != nil {
		writeError(w, err)
		return
	}
	contests, err := s.contests.ListContests(r.Context(), storage.ContestFilter{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contestsToPayload(contests))
}

func (s *Server) handleMyParticipation(w http.ResponseWriter, r *http.Request) {
	if _, err := s.principal(r); err != nil {
		writeError(w, err)
		return
	}
	contests, err := s.contests.MyParticipation(r.Context(), r.PathValue("email"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contestsToPayload(contests))
}

func (s *Server) handleSubmitTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
		Task  string `json:"task"`
		Name  string `json:"name"`
		Image string `json:"image"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	updated, err := s.contests.SubmitTask(r.Context(), r.PathValue("id"), body.Email, body.Task, body.Name, body.Image)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, contestToPayload(updated))
}

func (s *Server) handleCreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var body struct {
		ContestID        string  `json:"contestId"`
		Price            float64 `json:"price"`
		ParticipantEmail string  `json:"participantEmail"`
		ProductName      string  `json:"productName"`
	}
	if !decodeBody(w, r, &body) {
		return
	}

	session, err := s.payments.CreateSession(r.Context(), service.CreateSessionInput{
		ContestID:        body.ContestID,
		Price:            body.Price,
		ParticipantEmail: body.ParticipantEmail,
		ProductName:      body.ProductName,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}{ID: session.ID, URL: session.URL})
}

func (s *Server) handlePaymentSuccess(w http.ResponseWriter, r *http.Request) {
	result, err := s.payments.Reconcile(r.Context(), r.URL.Query().Get("session_id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		Outcome   string `json:"outcome"`
		ContestID string `json:"contestId,omitempty"`
		Email     string `json:"email,omitempty"`
	}{Outcome: string(result.Outcome), ContestID: result.ContestID, Email: result.Email})
}

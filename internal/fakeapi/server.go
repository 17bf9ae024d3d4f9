// Package fakeapi is an in-memory stand-in for the habits REST API, used by
// tests across the client packages.
package fakeapi

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"

	"github.com/julianstephens/habitual/internal/models"
)

// Route names, usable with Calls and Fail
const (
	RouteListHabits  = "list-habits"
	RouteCreateHabit = "create-habit"
	RouteDeleteHabit = "delete-habit"
	RouteStats       = "stats"
	RouteToggle      = "toggle-habit"
	RouteLogin       = "login"
	RouteLogout      = "logout"
	RouteVersion     = "version"
)

const Prefix = "/api"

type failure struct {
	status int
	body   string
	times  int
}

type Server struct {
	srv *httptest.Server

	mu          sync.Mutex
	habits      map[int]*models.Habit
	order       []int
	nextID      int
	users       map[string]string
	tokens      map[string]models.User
	calls       map[string]int
	failures    map[string]*failure
	delays      map[string]time.Duration
	wrapList    bool
	requireAuth bool
	minVersion  string
	lastBody    map[string][]byte
	lastHeaders map[string]http.Header
}

func New() *Server {
	s := &Server{
		habits:      map[int]*models.Habit{},
		nextID:      1,
		users:       map[string]string{},
		tokens:      map[string]models.User{},
		calls:       map[string]int{},
		failures:    map[string]*failure{},
		delays:      map[string]time.Duration{},
		minVersion:  "1.0.0",
		lastBody:    map[string][]byte{},
		lastHeaders: map[string]http.Header{},
	}

	r := mux.NewRouter()
	api := r.PathPrefix(Prefix).Subrouter()
	api.Use(s.record)
	api.HandleFunc("/habits", s.listHabits).Methods(http.MethodGet).Name(RouteListHabits)
	api.HandleFunc("/habits", s.createHabit).Methods(http.MethodPost).Name(RouteCreateHabit)
	api.HandleFunc("/habits/stats", s.stats).Methods(http.MethodGet).Name(RouteStats)
	api.HandleFunc("/habits/{id:[0-9]+}", s.deleteHabit).Methods(http.MethodDelete).Name(RouteDeleteHabit)
	api.HandleFunc("/habits/{id:[0-9]+}/toggle", s.toggleHabit).Methods(http.MethodPatch).Name(RouteToggle)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost).Name(RouteLogin)
	api.HandleFunc("/auth/logout", s.logout).Methods(http.MethodPost).Name(RouteLogout)
	api.HandleFunc("/version/web", s.version).Methods(http.MethodGet).Name(RouteVersion)

	s.srv = httptest.NewServer(r)
	return s
}

// URL is the API base URL including the /api prefix
func (s *Server) URL() string { return s.srv.URL + Prefix }

func (s *Server) Close() { s.srv.Close() }

// AddUser registers credentials accepted by /auth/login
func (s *Server) AddUser(username, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = password
}

// AddHabit seeds a habit and returns it with its assigned ID
func (s *Server) AddHabit(h models.Habit) models.Habit {
	s.mu.Lock()
	defer s.mu.Unlock()
	h.ID = s.nextID
	s.nextID++
	if h.CreatedDate.IsZero() {
		h.CreatedDate = time.Now().UTC()
		h.UpdatedDate = h.CreatedDate
	}
	s.habits[h.ID] = &h
	s.order = append(s.order, h.ID)
	return h
}

// WrapList switches /habits between the bare and {"habits": [...]} shapes
func (s *Server) WrapList(wrap bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wrapList = wrap
}

// RequireAuth makes habit routes reject requests without a known bearer token
func (s *Server) RequireAuth(require bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requireAuth = require
}

func (s *Server) SetMinVersion(v string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.minVersion = v
}

// Fail makes the next times requests to route answer with status and body.
// times < 0 fails forever.
func (s *Server) Fail(route string, status int, body string, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = &failure{status: status, body: body, times: times}
}

// Delay holds responses on route for d before answering
func (s *Server) Delay(route string, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays[route] = d
}

// Calls reports how many requests reached route
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// LastBody returns the raw body of the most recent request to route
func (s *Server) LastBody(route string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastBody[route]
}

// LastHeader returns a header from the most recent request to route
func (s *Server) LastHeader(route, name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.lastHeaders[route]
	if !ok {
		return ""
	}
	return h.Get(name)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.calls[name]++
		s.lastBody[name] = body
		s.lastHeaders[name] = r.Header.Clone()
		delay := s.delays[name]
		f := s.failures[name]
		var fail *failure
		if f != nil && f.times != 0 {
			copied := *f
			fail = &copied
			if f.times > 0 {
				f.times--
			}
		}
		s.mu.Unlock()

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}

		if fail != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(fail.status)
			_, _ = w.Write([]byte(fail.body))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"statusCode": status, "message": msg})
}

func (s *Server) authorized(r *http.Request) bool {
	if !s.requireAuth {
		return true
	}
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	_, ok := s.tokens[tok]
	return ok
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	list := make([]models.Habit, 0, len(s.order))
	for _, id := range s.order {
		list = append(list, *s.habits[id])
	}
	if s.wrapList {
		writeJSON(w, http.StatusOK, map[string]any{"habits": list})
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var req models.CreateHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	if !s.authorized(r) {
		s.mu.Unlock()
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	for _, h := range s.habits {
		if strings.EqualFold(h.Name, req.Name) {
			s.mu.Unlock()
			writeError(w, http.StatusConflict, "Habit with this name already exists")
			return
		}
	}
	s.mu.Unlock()

	h := s.AddHabit(models.Habit{Name: req.Name, Description: req.Description})
	writeJSON(w, http.StatusCreated, h)
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if _, ok := s.habits[id]; !ok {
		writeError(w, http.StatusNotFound, "Habit not found")
		return
	}
	delete(s.habits, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleHabit(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.Atoi(mux.Vars(r)["id"])
	var req models.ToggleHabitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	h, ok := s.habits[id]
	if !ok {
		writeError(w, http.StatusNotFound, "Habit not found")
		return
	}

	now := time.Now().UTC()
	switch {
	case req.Completed && !h.IsCompletedToday:
		h.IsCompletedToday = true
		h.TotalCompletions++
		h.CurrentStreak++
		if h.CurrentStreak > h.LongestStreak {
			h.LongestStreak = h.CurrentStreak
		}
		h.LastCompletedAt = &now
	case !req.Completed && h.IsCompletedToday:
		h.IsCompletedToday = false
		h.TotalCompletions--
		if h.CurrentStreak > 0 {
			h.CurrentStreak--
		}
	}
	h.UpdatedDate = now
	writeJSON(w, http.StatusOK, h)
}

func (s *Server) stats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.authorized(r) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var st models.HabitStats
	streaks := 0
	for _, h := range s.habits {
		st.TotalHabits++
		if h.IsCompletedToday {
			st.CompletedToday++
		}
		st.TotalCompletions += h.TotalCompletions
		streaks += h.CurrentStreak
	}
	if st.TotalHabits > 0 {
		st.AverageStreak = float64(streaks) / float64(st.TotalHabits)
	}
	writeJSON(w, http.StatusOK, st)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	pw, ok := s.users[req.Username]
	if !ok || pw != req.Password {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	user := models.User{
		ID:          len(s.tokens) + 1,
		Username:    req.Username,
		AccessToken: "token-" + req.Username + "-" + strconv.Itoa(len(s.tokens)+1),
	}
	s.tokens[user.AccessToken] = user
	writeJSON(w, http.StatusOK, user)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	tok := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tok)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) version(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	writeJSON(w, http.StatusOK, models.VersionInfo{Version: s.minVersion})
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"promptifie/internal/ratelimit"
	"promptifie/internal/util"
	"promptifie/pkg/domain"
	"promptifie/pkg/session"
	"promptifie/services/studio/internal/app"
)

// Config wires required dependencies for the HTTP server.
type Config struct {
	App                      *app.App
	RedisAddr                string
	RedisPassword            string
	SignupRateLimitPerMinute int
	LoginRateLimitPerMinute  int
	ToolsRateLimitPerMinute  int
}

// Server exposes the studio HTTP API.
type Server struct {
	app           *app.App
	mux           *http.ServeMux
	signupLimiter *ratelimit.FixedWindowLimiter
	loginLimiter  *ratelimit.FixedWindowLimiter
	toolsLimiter  *ratelimit.FixedWindowLimiter
}

// New constructs the server with routes configured.
func New(cfg Config) (*Server, error) {
	if cfg.App == nil {
		return nil, errors.New("app is required")
	}
	signupLimit := cfg.SignupRateLimitPerMinute
	if signupLimit <= 0 {
		signupLimit = 5
	}
	loginLimit := cfg.LoginRateLimitPerMinute
	if loginLimit <= 0 {
		loginLimit = 10
	}
	toolsLimit := cfg.ToolsRateLimitPerMinute
	if toolsLimit <= 0 {
		toolsLimit = 30
	}
	rateWindow := time.Minute
	newLimiter := func(name string, limit int) (*ratelimit.FixedWindowLimiter, error) {
		prefix := "promptifie:studio:ratelimit:" + name
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, prefix, limit, rateWindow)
		if err != nil {
			return nil, fmt.Errorf("init %s limiter: %w", name, err)
		}
		return limiter, nil
	}
	signupLimiter, err := newLimiter("signup", signupLimit)
	if err != nil {
		return nil, err
	}
	loginLimiter, err := newLimiter("login", loginLimit)
	if err != nil {
		return nil, err
	}
	toolsLimiter, err := newLimiter("tools", toolsLimit)
	if err != nil {
		return nil, err
	}
	s := &Server{
		app:           cfg.App,
		mux:           http.NewServeMux(),
		signupLimiter: signupLimiter,
		loginLimiter:  loginLimiter,
		toolsLimiter:  toolsLimiter,
	}
	s.routes()
	return s, nil
}

// Router returns the configured handler.
func (s *Server) Router() http.Handler {
	return util.WithSecurityHeaders(util.WithCORS(util.WithRequestLog("studio", util.WithRequestID(s.mux))))
}

func (s *Server) routes() {
	s.mux.HandleFunc("/healthz", s.handleHealth)

	// auth
	s.mux.HandleFunc("/api/auth/signup", s.handleSignup)
	s.mux.HandleFunc("/api/auth/login", s.handleLogin)
	s.mux.Handle("/api/auth/logout", s.authenticated(s.handleLogout))

	// session state
	s.mux.Handle("/api/session", s.authenticated(s.handleSession))
	s.mux.Handle("/api/session/onboarding", s.authenticated(s.handleOnboarding))
	s.mux.Handle("/api/session/daily-use", s.authenticated(s.handleDailyUse))
	s.mux.Handle("/api/coins", s.authenticated(s.handleCoins))
	s.mux.Handle("/api/toasts", s.authenticated(s.handleToasts))
	s.mux.Handle("/api/history", s.authenticated(s.handleHistory))

	// collections
	s.mux.Handle("/api/creations", s.authenticated(s.handleCreations))
	s.mux.Handle("/api/creations/", s.authenticated(s.handleCreationAction))
	s.mux.Handle("/api/community", s.authenticated(s.handleCommunity))
	s.mux.Handle("/api/community/", s.authenticated(s.handleCommunityAction))
	s.mux.Handle("/api/marketplace", s.authenticated(s.handleMarketplace))
	s.mux.Handle("/api/marketplace/", s.authenticated(s.handleMarketplaceAction))
	s.mux.Handle("/api/team", s.authenticated(s.handleTeam))
	s.mux.Handle("/api/team/", s.authenticated(s.handleTeamMember))
	s.mux.Handle("/api/styles", s.authenticated(s.handleStyles))
	s.mux.Handle("/api/styles/", s.authenticated(s.handleStyleByID))

	// tools
	s.mux.Handle("/api/tools/", s.authenticated(s.handleTool))

	// background jobs
	s.mux.Handle("/api/jobs", s.authenticated(s.handleJobs))
	s.mux.Handle("/api/jobs/", s.authenticated(s.handleJobByID))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// auth wrappers
type authHandler func(http.ResponseWriter, *http.Request, string)

func (s *Server) authenticated(next authHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := bearerToken(r)
		if !ok {
			s.audit(r, "studio.authorize", "fail", "reason", "missing_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		email, ok, err := s.app.ResolveToken(token)
		if err != nil || !ok {
			s.audit(r, "studio.authorize", "fail", "reason", "invalid_token")
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next(w, r, email)
	})
}

type authRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type authResponse struct {
	Token   string           `json:"token"`
	Session session.Snapshot `json:"session"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.signupLimiter, "too many signup attempts") {
		s.audit(r, "studio.signup", "rate_limited")
		return
	}
	var req authRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	snap, token, err := s.app.SignUp(req.Email, req.Password)
	if err != nil {
		s.audit(r, "studio.signup", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "studio.signup", "success", "email", snap.Email)
	writeJSON(w, http.StatusCreated, authResponse{Token: token, Session: snap})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	if !s.allowRate(w, r, s.loginLimiter, "too many login attempts") {
		s.audit(r, "studio.login", "rate_limited")
		return
	}
	var req authRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	snap, token, err := s.app.Login(req.Email, req.Password)
	if err != nil {
		s.audit(r, "studio.login", "fail", "reason", err.Error())
		writeAppError(w, err)
		return
	}
	s.audit(r, "studio.login", "success", "email", snap.Email)
	writeJSON(w, http.StatusOK, authResponse{Token: token, Session: snap})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	token, _ := bearerToken(r)
	if err := s.app.Logout(token); err != nil {
		writeAppError(w, err)
		return
	}
	s.audit(r, "studio.logout", "success", "email", email)
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleSession(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Session(email).Snapshot())
}

func (s *Server) handleOnboarding(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Seen bool `json:"seen"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	s.app.Session(email).SetHasSeenOnboarding(req.Seen)
	writeJSON(w, http.StatusOK, map[string]bool{"hasSeenOnboarding": req.Seen})
}

func (s *Server) handleDailyUse(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	mgr := s.app.Session(email)
	mgr.ConsumeDailyUse()
	writeJSON(w, http.StatusOK, map[string]int{"dailyUsesLeft": mgr.DailyUsesLeft()})
}

// handleCoins credits a coin pack bought on the pricing surface.
func (s *Server) handleCoins(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Amount int `json:"amount"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	balance, err := s.app.PurchaseCoins(email, req.Amount)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"coins": balance})
}

func (s *Server) handleToasts(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Session(email).Toasts())
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	entries, err := s.app.History(email, 50)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleCreations(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Session(email).Creations())
}

// handleCreationAction routes /api/creations/{id}/{favorite|publish}.
func (s *Server) handleCreationAction(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id, action, ok := splitResourcePath(r.URL.Path, "/api/creations/")
	if !ok {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	mgr := s.app.Session(email)
	switch action {
	case "favorite":
		if err := mgr.ToggleFavorite(id); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case "publish":
		item, err := s.app.ShareCreation(email, id)
		if err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, item)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (s *Server) handleCommunity(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	writeJSON(w, http.StatusOK, s.app.Session(email).CommunityItems())
}

func (s *Server) handleCommunityAction(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id, action, ok := splitResourcePath(r.URL.Path, "/api/community/")
	if !ok || action != "like" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err := s.app.Session(email).LikeCommunityItem(id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleMarketplace(w http.ResponseWriter, r *http.Request, email string) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.app.Session(email).MarketplaceItems())
	case http.MethodPost:
		var req struct {
			Prompt string `json:"prompt"`
			Price  int    `json:"price"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Prompt) == "" || req.Price <= 0 {
			writeError(w, http.StatusBadRequest, "prompt and positive price required")
			return
		}
		item := s.app.ListPrompt(email, req.Prompt, req.Price)
		writeJSON(w, http.StatusCreated, item)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleMarketplaceAction(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	id, action, ok := splitResourcePath(r.URL.Path, "/api/marketplace/")
	if !ok || action != "buy" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err := s.app.PurchasePrompt(email, id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleTeam(w http.ResponseWriter, r *http.Request, email string) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.app.Session(email).TeamMembers())
	case http.MethodPost:
		var req struct {
			Email string `json:"email"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			writeError(w, http.StatusBadRequest, "email required")
			return
		}
		if err := s.app.Session(email).AddTeamMember(req.Email); err != nil {
			writeAppError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, s.app.Session(email).TeamMembers())
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleTeamMember(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	member := strings.TrimPrefix(r.URL.Path, "/api/team/")
	if member == "" || strings.Contains(member, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	s.app.Session(email).RemoveTeamMember(member)
	writeJSON(w, http.StatusOK, s.app.Session(email).TeamMembers())
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request, email string) {
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.app.Session(email).CustomStyles())
	case http.MethodPost:
		var req struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		}
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Value) == "" {
			writeError(w, http.StatusBadRequest, "name and value required")
			return
		}
		style := s.app.Session(email).AddCustomStyle(req.Name, req.Value)
		writeJSON(w, http.StatusCreated, style)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleStyleByID(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodDelete {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/styles/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if err := s.app.Session(email).RemoveCustomStyle(id); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}
	var req struct {
		Tool   string `json:"tool"`
		Prompt string `json:"prompt"`
	}
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	job, err := s.app.EnqueueGeneration(r.Context(), email, domain.Tool(req.Tool), req.Prompt)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, job)
}

func (s *Server) handleJobByID(w http.ResponseWriter, r *http.Request, email string) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	job, ok, err := s.app.JobStatus(r.Context(), id)
	if err != nil {
		writeAppError(w, err)
		return
	}
	if !ok || job.Email != email {
		writeError(w, http.StatusNotFound, "job not found")
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func bearerToken(r *http.Request) (string, bool) {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", false
	}
	return token, true
}

func decodeBody(r *http.Request, out any) error {
	return json.NewDecoder(io.LimitReader(r.Body, 16<<20)).Decode(out)
}

func methodNotAllowed(w http.ResponseWriter) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// splitResourcePath extracts the id and action from prefix + "{id}/{action}".
func splitResourcePath(path, prefix string) (id, action string, ok bool) {
	rest := strings.TrimPrefix(path, prefix)
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func (s *Server) audit(r *http.Request, event, outcome string, attrs ...any) {
	logAttrs := []any{
		"event", event,
		"outcome", outcome,
		"path", r.URL.Path,
		"method", r.Method,
		"ip", clientIP(r),
	}
	logAttrs = append(logAttrs, attrs...)
	if outcome == "success" {
		slog.Info("security_event", logAttrs...)
		return
	}
	slog.Warn("security_event", logAttrs...)
}

func (s *Server) allowRate(w http.ResponseWriter, r *http.Request, limiter *ratelimit.FixedWindowLimiter, msg string) bool {
	key := r.URL.Path + "|" + clientIP(r)
	if limiter.Allow(key) {
		return true
	}
	w.Header().Set("Retry-After", "60")
	writeError(w, http.StatusTooManyRequests, msg)
	return false
}

func clientIP(r *http.Request) string {
	if xfwd := strings.TrimSpace(r.Header.Get("X-Forwarded-For")); xfwd != "" {
		parts := strings.Split(xfwd, ",")
		if len(parts) > 0 {
			ip := strings.TrimSpace(parts[0])
			if ip != "" {
				return ip
			}
		}
	}
	if realIP := strings.TrimSpace(r.Header.Get("X-Real-IP")); realIP != "" {
		return realIP
	}
	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	return strings.TrimSpace(r.RemoteAddr)
}

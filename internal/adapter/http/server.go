package adapthttp

import (
	"net/http"

	"github.com/coreos/go-oidc/v3/oidc"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"babytracker/internal/app"
	"babytracker/internal/domain"
)

// OIDCConfig holds the SSO provider wiring. A zero value disables SSO.
type OIDCConfig struct {
	Enabled      bool
	OAuth2Config *oauth2.Config
	Provider     *oidc.Provider
}

// Services groups the application services the HTTP adapter drives.
type Services struct {
	Auth    *app.AuthService
	Events  *app.EventService
	Voice   *app.VoiceService
	Summary *app.SummaryService
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc    *app.AuthService
	events     *app.EventService
	voice      *app.VoiceService
	summary    *app.SummaryService
	oidcConfig OIDCConfig
	log        *zap.Logger
	webDir     string

	disableAuth bool
	localUser   *domain.User
}

// New creates a Server wired to the given application services.
func New(svcs Services, oidcConfig OIDCConfig, log *zap.Logger, webDir string) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		authSvc:    svcs.Auth,
		events:     svcs.Events,
		voice:      svcs.Voice,
		summary:    svcs.Summary,
		oidcConfig: oidcConfig,
		log:        log,
		webDir:     webDir,
	}
}

// WithoutAuth disables authentication and treats every request as coming
// from user. Used by tests.
func (s *Server) WithoutAuth(user *domain.User) *Server {
	s.disableAuth = true
	s.localUser = user
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	api.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	api.HandleFunc("/register", s.handleRegister)
	api.HandleFunc("/login", s.handleLogin)
	api.HandleFunc("/logout", s.handleLogout)
	api.HandleFunc("/setup", s.handleSetupUser)
	api.HandleFunc("/config", s.handleConfig)
	api.HandleFunc("/auth/sso/login", s.handleSSOLogin)
	api.HandleFunc("/auth/sso/callback", s.handleSSOCallback)

	api.Handle("/user", s.authMiddleware(http.HandlerFunc(s.handleUser)))
	api.Handle("/events", s.authMiddleware(http.HandlerFunc(s.handleEvents)))
	api.Handle("/events/{id}", s.authMiddleware(http.HandlerFunc(s.handleEvent)))
	api.Handle("/voice-commands", s.authMiddleware(http.HandlerFunc(s.handleVoiceCommand)))
	api.Handle("/summary/daily", s.authMiddleware(http.HandlerFunc(s.handleSummaryDaily)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}

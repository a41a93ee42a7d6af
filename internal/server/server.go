package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"lifelink/internal/lifecycle"
	"lifelink/internal/matching"
	"lifelink/internal/profiles"
	"lifelink/internal/utils"
	"lifelink/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

// CognitoAPI is the part of the Cognito client used for sign-up and login.
type CognitoAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
}

// KeySetProvider resolves the JWKS used to verify access tokens. *jwk.Cache
// satisfies it.
type KeySetProvider interface {
	Lookup(ctx context.Context, url string) (jwk.Set, error)
}

type UserStore interface {
	User(ctx context.Context, userID string) (*types.User, error)
	UpsertUser(ctx context.Context, user *types.User) error
}

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	cognitoClient CognitoAPI
	cookie        *securecookie.SecureCookie

	jwks    KeySetProvider
	jwksURL string

	users    UserStore
	alerts   *lifecycle.Service
	matcher  *matching.Service
	profiles *profiles.Service
	ping     func(ctx context.Context) error

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	cognitoClient CognitoAPI,
	jwks KeySetProvider,
	jwksURL string,
	users UserStore,
	alerts *lifecycle.Service,
	matcher *matching.Service,
	profileService *profiles.Service,
	ping func(ctx context.Context) error,
) (*Service, error) {
	mux := flow.New()

	hashKey, err := base64.StdEncoding.DecodeString(config.CookieHashKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie hash key: %w", err)
	}
	blockKey, err := base64.StdEncoding.DecodeString(config.CookieBlockKey)
	if err != nil {
		return nil, fmt.Errorf("decode cookie block key: %w", err)
	}

	s := &Service{
		logger:        logger,
		config:        config,
		cognitoClient: cognitoClient,
		cookie:        securecookie.New(hashKey, blockKey),

		jwks:    jwks,
		jwksURL: jwksURL,

		users:    users,
		alerts:   alerts,
		matcher:  matcher,
		profiles: profileService,
		ping:     ping,

		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// Handler exposes the router, mainly for tests.
func (s *Service) Handler() http.Handler {
	return s.server.Handler
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)
	r.Use(s.RequestTimeout)

	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/", s.handleHome, http.MethodGet)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/register/confirm", s.handleGetRegisterConfirm, http.MethodGet)
	r.HandleFunc("/register/confirm", s.handlePostRegisterConfirm, http.MethodPost)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handlePostLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/dashboard", s.handleGetDashboard, http.MethodGet)
		r.HandleFunc("/alerts/new", s.handleGetNewAlert, http.MethodGet)
		r.HandleFunc("/alerts", s.handlePostNewAlert, http.MethodPost)
		r.HandleFunc("/alerts/:id/:action", s.handlePostAlertAction, http.MethodPost)

		r.HandleFunc("/profile", s.handleGetProfile, http.MethodGet)
		r.HandleFunc("/profile", s.handlePostProfile, http.MethodPost)
		r.HandleFunc("/profile/documents", s.handlePostProfileDocument, http.MethodPost)
	})

	r.HandleFunc("/api/auth/logout", s.handleAPILogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAPIAuth)

		r.HandleFunc("/api/alerts", s.handleAPIListAlerts, http.MethodGet)
		r.HandleFunc("/api/alerts", s.handleAPICreateAlert, http.MethodPost)
		r.HandleFunc("/api/alerts/:id", s.handleAPIGetAlert, http.MethodGet)
		r.HandleFunc("/api/alerts/:id/accept", s.handleAPIAlertTransition(s.alerts.Accept), http.MethodPost)
		r.HandleFunc("/api/alerts/:id/resolve", s.handleAPIAlertTransition(s.alerts.Resolve), http.MethodPost)
		r.HandleFunc("/api/alerts/:id/cancel", s.handleAPIAlertTransition(s.alerts.Cancel), http.MethodPost)

		r.HandleFunc("/api/profile", s.handleAPIGetProfile, http.MethodGet)
		r.HandleFunc("/api/profile", s.handleAPISaveProfile, http.MethodPost)
		r.HandleFunc("/api/profile/documents", s.handleAPIUploadDocument, http.MethodPost)
		r.HandleFunc("/api/profiles/:userID/verify", s.handleAPIVerifyProfile, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		"deref": utils.PtrString,
		"km":    func(f float64) string { return fmt.Sprintf("%.1f km", f) },
	}

	t, err := template.New("").Funcs(funcs).ParseFS(uiFS, "templates/partials/*.html", "templates/pages/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return t, nil
}

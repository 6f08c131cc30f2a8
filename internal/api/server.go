// Package api exposes redaction, anonymization, credential and fair
// screening operations over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/VivekRai-gif/matchly/internal/anonymizer"
	"github.com/VivekRai-gif/matchly/internal/ats"
	"github.com/VivekRai-gif/matchly/internal/audit"
	"github.com/VivekRai-gif/matchly/internal/cache"
	"github.com/VivekRai-gif/matchly/internal/catalog"
	"github.com/VivekRai-gif/matchly/internal/config"
	"github.com/VivekRai-gif/matchly/internal/credential"
	"github.com/VivekRai-gif/matchly/internal/extract"
	"github.com/VivekRai-gif/matchly/internal/logger"
	"github.com/VivekRai-gif/matchly/internal/oracle"
	"github.com/VivekRai-gif/matchly/internal/privacy"
	"github.com/VivekRai-gif/matchly/internal/screening"
	"github.com/VivekRai-gif/matchly/internal/websocket"
)

// Version is reported by the health endpoint
const Version = "0.1.0"

// CredentialRegistry remembers issued credentials by id
type CredentialRegistry interface {
	Store(ctx context.Context, record *cache.CredentialRecord) error
	Lookup(ctx context.Context, credentialID string) (*cache.CredentialRecord, error)
	Revoke(ctx context.Context, credentialID string) error
}

// AuditStore records derived privacy data per processed resume
type AuditStore interface {
	Record(ctx context.Context, entry *audit.Entry) error
	GetStats(ctx context.Context) (*audit.Stats, error)
}

// Screener runs oracle-backed evaluations
type Screener interface {
	FairEvaluation(ctx context.Context, resumeText, jobDescription string) (*screening.Evaluation, error)
	DetectBias(ctx context.Context, evaluationText, resumeText string) (*screening.BiasAnalysis, error)
	CompareEvaluations(ctx context.Context, originalEval, anonymizedEval string) (*screening.Comparison, error)
	ExtractSkills(ctx context.Context, resumeText string) (*screening.SkillExtraction, error)
	VerifySkillClaims(ctx context.Context, resumeText string, claimed []string) (*screening.SkillVerification, error)
	CrossVerify(ctx context.Context, resumeText, jobDescription string) (*screening.SkillAlignment, error)
	Match(ctx context.Context, resumeText, jobDescription string) (*screening.TransparentMatch, error)
}

// Dependencies are the collaborators a Server is built from. Only Catalog
// is required; nil optional collaborators disable their endpoints. Oracle
// only adds a reasoned assessment to ATS analysis, which works without it.
type Dependencies struct {
	Catalog     *catalog.Catalog
	Issuer      *credential.Issuer
	Credentials CredentialRegistry
	Audit       AuditStore
	Screening   Screener
	Oracle      oracle.Analyzer
	Hub         *websocket.Hub
}

// Server represents the HTTP API server
type Server struct {
	config     *config.Config
	logger     *logger.Logger
	redactor   *privacy.Redactor
	assessor   *privacy.Assessor
	extractor  *extract.Extractor
	anonymizer *anonymizer.Anonymizer
	ats        *ats.Analyzer
	issuer     *credential.Issuer
	registry   CredentialRegistry
	audit      AuditStore
	screener   Screener
	wsHub      *websocket.Hub
	limiter    *RateLimiter
	router     *mux.Router
	server     *http.Server
	started    time.Time
	stats      *serverStats
}

// New creates a new API server instance
func New(cfg *config.Config, log *logger.Logger, deps Dependencies) (*Server, error) {
	if deps.Catalog == nil {
		return nil, fmt.Errorf("catalog is required")
	}

	redactor := privacy.NewRedactor(deps.Catalog, log)

	issuer := deps.Issuer
	if issuer == nil {
		issuer = credential.NewIssuer(cfg.Credential.Issuer)
	}

	s := &Server{
		config:     cfg,
		logger:     log.WithComponent("api"),
		redactor:   redactor,
		assessor:   privacy.NewAssessor(redactor),
		extractor:  extract.New(deps.Catalog),
		anonymizer: anonymizer.New(redactor, log),
		ats:        ats.New(redactor, deps.Oracle, log),
		issuer:     issuer,
		registry:   deps.Credentials,
		audit:      deps.Audit,
		screener:   deps.Screening,
		wsHub:      deps.Hub,
		router:     mux.NewRouter(),
		started:    time.Now(),
		stats:      &serverStats{},
	}
	if cfg.RateLimit.Enabled {
		s.limiter = NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
	}

	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return s, nil
}

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() {
	apiRouter := s.router.PathPrefix("/api").Subrouter()
	apiRouter.Use(s.loggingMiddleware)
	if s.limiter != nil {
		apiRouter.Use(s.rateLimitMiddleware)
	}
	apiRouter.Use(s.bodyLimitMiddleware)

	apiRouter.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	privacyRouter := apiRouter.PathPrefix("/privacy").Subrouter()
	privacyRouter.HandleFunc("/mask-pii", s.handleMaskPII).Methods(http.MethodPost)
	privacyRouter.HandleFunc("/anonymous-profile", s.handleAnonymousProfile).Methods(http.MethodPost)
	privacyRouter.HandleFunc("/report", s.handlePrivacyReport).Methods(http.MethodPost)
	privacyRouter.HandleFunc("/minimal-data", s.handleMinimalData).Methods(http.MethodPost)
	privacyRouter.HandleFunc("/audit/stats", s.handleAuditStats).Methods(http.MethodGet)

	biasRouter := apiRouter.PathPrefix("/bias").Subrouter()
	biasRouter.HandleFunc("/mask-personal-info", s.handleMaskPersonalInfo).Methods(http.MethodPost)
	biasRouter.HandleFunc("/fair-evaluation", s.handleFairEvaluation).Methods(http.MethodPost)
	biasRouter.HandleFunc("/detect", s.handleDetectBias).Methods(http.MethodPost)
	biasRouter.HandleFunc("/compare", s.handleCompareEvaluations).Methods(http.MethodPost)
	biasRouter.HandleFunc("/fairness-report", s.handleFairnessReport).Methods(http.MethodPost)

	skillsRouter := apiRouter.PathPrefix("/skills").Subrouter()
	skillsRouter.HandleFunc("/extract", s.handleExtractSkills).Methods(http.MethodPost)
	skillsRouter.HandleFunc("/verify", s.handleVerifySkills).Methods(http.MethodPost)
	skillsRouter.HandleFunc("/cross-verify", s.handleCrossVerify).Methods(http.MethodPost)
	skillsRouter.HandleFunc("/credential", s.handleIssueCredential).Methods(http.MethodPost)
	skillsRouter.HandleFunc("/credential/verify", s.handleVerifyCredential).Methods(http.MethodPost)
	skillsRouter.HandleFunc("/credential/{id}", s.handleRevokeCredential).Methods(http.MethodDelete)

	matchRouter := apiRouter.PathPrefix("/match").Subrouter()
	matchRouter.HandleFunc("/transparent", s.handleTransparentMatch).Methods(http.MethodPost)
	matchRouter.HandleFunc("/score-breakdown", s.handleScoreBreakdown).Methods(http.MethodPost)
	matchRouter.HandleFunc("/explanation-report", s.handleExplanationReport).Methods(http.MethodPost)
	matchRouter.HandleFunc("/compare", s.handleCompareCandidates).Methods(http.MethodPost)

	apiRouter.HandleFunc("/ats/analyze", s.handleATSAnalyze).Methods(http.MethodPost)
	apiRouter.HandleFunc("/analyze-ats", s.handleATSAnalyze).Methods(http.MethodPost)

	if s.wsHub != nil && s.config.WebSocket.Enabled {
		path := s.config.WebSocket.Path
		if path == "" {
			path = "/ws"
		}
		s.router.HandleFunc(path, s.wsHub.HandleWebSocket).Methods(http.MethodGet)
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Endpoint not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.Info("Starting matchly API server",
		zap.Int("port", s.config.Server.Port),
		zap.Bool("credential_registry", s.registry != nil),
		zap.Bool("audit_store", s.audit != nil),
		zap.Bool("screening", s.screener != nil),
		zap.Bool("websocket", s.wsHub != nil && s.config.WebSocket.Enabled),
		zap.Bool("rate_limit", s.limiter != nil),
	)

	if s.limiter != nil {
		s.limiter.StartCleanupRoutine(10 * time.Minute)
	}

	return s.server.ListenAndServe()
}

// Stop gracefully stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	s.logger.Info("Stopping matchly API server")
	if s.limiter != nil {
		s.limiter.Stop()
	}
	return s.server.Shutdown(ctx)
}

// SystemStatus reports the server's counters for the event stream
func (s *Server) SystemStatus() websocket.SystemStatusEvent {
	status := websocket.SystemStatusEvent{
		Status:          "healthy",
		Uptime:          time.Since(s.started).Round(time.Second).String(),
		TotalRequests:   s.stats.requests.Load(),
		TotalRedactions: s.stats.redactions.Load(),
		ActiveRules:     s.activeRules(),
		CacheEnabled:    s.registry != nil,
		AuditEnabled:    s.audit != nil,
		OracleEnabled:   s.screener != nil,
	}
	if s.wsHub != nil {
		status.ConnectedClients = int(s.wsHub.GetStats().ActiveConnections)
	}
	return status
}

func (s *Server) activeRules() int {
	cat := s.redactor.Catalog()
	return len(cat.Rules(catalog.DomainPII)) + len(cat.Rules(catalog.DomainDemographic)) + len(cat.Rules(catalog.DomainCleanup))
}

// StartStatusBroadcast publishes a system status event every interval
// until ctx is done
func (s *Server) StartStatusBroadcast(ctx context.Context, interval time.Duration) {
	if s.wsHub == nil || interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.wsHub.PublishSystemStatus(s.SystemStatus())
			}
		}
	}()
}

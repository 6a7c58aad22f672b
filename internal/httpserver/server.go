package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/sintosafreetraffic/pinterest-attribution/internal/attribution"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/config"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/database"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/insights"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/metrics"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/models"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/reporting"
	"github.com/sintosafreetraffic/pinterest-attribution/internal/storage"
	"go.uber.org/zap"
)

// insightsCacheTTL bounds how stale cached trend/persona signals may get.
const insightsCacheTTL = 15 * time.Minute

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	DB         *database.PostgresDB
	Redis      *database.RedisDB
	ClickHouse *database.ClickHouseDB
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *metrics.Metrics
}

// Server wraps HTTP handlers and the attribution services.
type Server struct {
	engine     *attribution.Engine
	journeys   storage.JourneyStore
	aggregator *reporting.Aggregator
	logger     *zap.Logger
	config     *config.Config
	metrics    *metrics.Metrics
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	// Initialize stores
	var journeys storage.JourneyStore
	if deps.DB != nil {
		journeys = storage.NewPostgresJourneyStore(deps.DB.Pool)
	} else {
		journeys = storage.NewInMemoryJourneyStore()
	}

	var results storage.ResultStore
	if deps.Redis != nil {
		results = storage.NewRedisResultStore(deps.Redis.Client)
	} else {
		results = storage.NewInMemoryResultStore()
	}

	// Initialize insight providers
	var trends insights.TrendProvider = insights.NewStaticTrendProvider()
	var audience insights.AudienceProvider = insights.NewStaticAudienceProvider()
	if deps.Redis != nil {
		trends = insights.NewCachedTrendProvider(trends, deps.Redis.Client, insightsCacheTTL, deps.Logger)
		audience = insights.NewCachedAudienceProvider(audience, deps.Redis.Client, insightsCacheTTL, deps.Logger)
	}

	engine := attribution.NewEngine(
		deps.Config.Attribution,
		deps.Config.Discovery,
		trends,
		audience,
		results,
		deps.Logger,
		deps.Metrics,
	)

	// Initialize reporting
	var delivery reporting.DeliveryMetricsProvider
	if deps.ClickHouse != nil {
		delivery = reporting.NewClickHouseMetricsProvider(deps.ClickHouse.Conn)
	}
	aggregator := reporting.NewAggregator(delivery, results, deps.Config.Discovery.Platform, deps.Logger, deps.Metrics)

	s := &Server{
		engine:     engine,
		journeys:   journeys,
		aggregator: aggregator,
		logger:     deps.Logger,
		config:     deps.Config,
		metrics:    deps.Metrics,
	}

	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", s.handleHealth)

	// Prometheus metrics
	if deps.Config.Metrics.Enabled {
		mux.Handle(deps.Config.Metrics.Path, metrics.Handler())
	}

	// Touchpoint ingestion
	mux.HandleFunc("/events/touchpoint", s.handleTouchpoint)

	// Journeys
	mux.HandleFunc("/journeys/", s.handleJourneyByUser)

	// Attribution
	mux.HandleFunc("/attribution/calculate", s.handleCalculate)
	mux.HandleFunc("/attribution/optimize", s.handleOptimize)

	// Reporting
	mux.HandleFunc("/reports/performance", s.handlePerformanceReport)

	// Capability summary
	mux.HandleFunc("/summary", s.handleSummary)

	return mux
}

// ---- Health Check ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// ---- Touchpoint Ingestion ----

type touchpointRequest struct {
	UserID     string            `json:"user_id"`
	SessionID  string            `json:"session_id"`
	Touchpoint models.Touchpoint `json:"touchpoint"`
}

func (s *Server) handleTouchpoint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req touchpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		s.errorResponse(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if err := req.Touchpoint.Validate(); err != nil {
		s.errorResponse(w, "invalid touchpoint: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := s.journeys.SaveTouchpoint(r.Context(), req.UserID, req.SessionID, req.Touchpoint); err != nil {
		s.logger.Error("failed to save touchpoint", zap.Error(err))
		s.errorResponse(w, "failed to save touchpoint", http.StatusInternalServerError)
		return
	}

	if s.metrics != nil {
		s.metrics.RecordTouchpoint(string(req.Touchpoint.Platform), string(req.Touchpoint.EventType))
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "accepted"})
}

// ---- Journeys ----

type journeyResponse struct {
	UserID      string              `json:"user_id"`
	SessionID   string              `json:"session_id,omitempty"`
	Touchpoints []models.Touchpoint `json:"touchpoints"`
}

func (s *Server) handleJourneyByUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	userID := strings.TrimPrefix(r.URL.Path, "/journeys/")
	if userID == "" || strings.Contains(userID, "/") {
		http.NotFound(w, r)
		return
	}

	touchpoints, err := s.journeys.GetTouchpoints(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to load journey", zap.String("user_id", userID), zap.Error(err))
		s.errorResponse(w, "failed to load journey", http.StatusInternalServerError)
		return
	}
	sessionID, err := s.journeys.SessionID(r.Context(), userID)
	if err != nil {
		s.logger.Error("failed to load session", zap.String("user_id", userID), zap.Error(err))
		s.errorResponse(w, "failed to load journey", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, journeyResponse{
		UserID:      userID,
		SessionID:   sessionID,
		Touchpoints: touchpoints,
	})
}

// ---- Attribution ----

type calculateRequest struct {
	UserID              string                  `json:"user_id"`
	SessionID           string                  `json:"session_id"`
	Touchpoints         []models.Touchpoint     `json:"touchpoints"`
	ConversionValue     float64                 `json:"conversion_value"`
	ConversionTimestamp time.Time               `json:"conversion_timestamp"`
	Model               models.AttributionModel `json:"model"`
}

func (s *Server) handleCalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req calculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	if req.UserID == "" {
		s.errorResponse(w, "user_id is required", http.StatusBadRequest)
		return
	}
	if req.Model == "" {
		req.Model = models.ModelDataDriven
	}

	// Journeys arrive inline or are rebuilt from ingested touchpoints.
	touchpoints := req.Touchpoints
	sessionID := req.SessionID
	if len(touchpoints) == 0 {
		var err error
		touchpoints, err = s.journeys.GetTouchpoints(r.Context(), req.UserID)
		if err != nil {
			s.logger.Error("failed to load journey", zap.String("user_id", req.UserID), zap.Error(err))
			s.errorResponse(w, "failed to load journey", http.StatusInternalServerError)
			return
		}
		if sessionID == "" {
			sessionID, _ = s.journeys.SessionID(r.Context(), req.UserID)
		}
	}

	convertedAt := req.ConversionTimestamp
	if convertedAt.IsZero() {
		convertedAt = time.Now().UTC()
	}

	journey := models.NewCustomerJourney(req.UserID, sessionID, touchpoints, req.ConversionValue, convertedAt)

	result, err := s.engine.CalculateAttribution(r.Context(), journey, req.Model)
	if err != nil {
		s.attributionError(w, err)
		return
	}

	s.jsonResponse(w, result)
}

type optimizeRequest struct {
	PlatformScores   map[models.Platform]float64 `json:"platform_scores"`
	TrendingKeywords []models.TrendingKeyword    `json:"trending_keywords"`
	Persona          *models.PersonaInsights     `json:"persona"`
}

type optimizeResponse struct {
	PlatformScores map[models.Platform]float64 `json:"platform_scores"`
}

func (s *Server) handleOptimize(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.errorResponse(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(req.PlatformScores) == 0 {
		s.errorResponse(w, "platform_scores is required", http.StatusBadRequest)
		return
	}

	optimized := s.engine.OptimizeDiscoveryPhase(req.PlatformScores, req.TrendingKeywords, req.Persona)
	s.jsonResponse(w, optimizeResponse{PlatformScores: optimized})
}

// ---- Reporting ----

func (s *Server) handlePerformanceReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// Defaults to the trailing 30 days.
	end := time.Now().UTC()
	start := end.AddDate(0, 0, -30)
	if startStr := r.URL.Query().Get("start_date"); startStr != "" {
		t, err := time.Parse("2006-01-02", startStr)
		if err != nil {
			s.errorResponse(w, "invalid start_date", http.StatusBadRequest)
			return
		}
		start = t
	}
	if endStr := r.URL.Query().Get("end_date"); endStr != "" {
		t, err := time.Parse("2006-01-02", endStr)
		if err != nil {
			s.errorResponse(w, "invalid end_date", http.StatusBadRequest)
			return
		}
		end = t
	}

	rng := models.DateRange{Start: start, End: end}
	if err := rng.Validate(); err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := s.aggregator.Aggregate(r.Context(), rng)
	if err != nil {
		s.logger.Error("failed to build report", zap.Error(err))
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	s.jsonResponse(w, report)
}

// ---- Summary ----

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.jsonResponse(w, s.engine.Summary())
}

// ---- Helper Methods ----

// attributionError maps the engine's typed errors onto HTTP statuses:
// caller mistakes are 400s, invariant violations are 500s.
func (s *Server) attributionError(w http.ResponseWriter, err error) {
	var invalidJourney *attribution.InvalidJourneyError
	var unknownModel *attribution.UnknownModelError
	var normalization *attribution.NormalizationError

	switch {
	case errors.As(err, &invalidJourney):
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &unknownModel):
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.As(err, &normalization):
		s.logger.Error("attribution invariant violated", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
	default:
		s.logger.Error("attribution error", zap.Error(err))
		s.errorResponse(w, "internal error", http.StatusInternalServerError)
	}
}

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

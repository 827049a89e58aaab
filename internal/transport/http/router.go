package httptransport

import (
	"net/http"

	"evalboard/internal/config"
	"evalboard/internal/domains"
	"evalboard/internal/httpx"
	"evalboard/internal/scoring"
	"evalboard/internal/service"
	"evalboard/internal/storage/providers"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
)

func Router(db *pgxpool.Pool, cfg *config.Config) *mux.Router {
	router := mux.NewRouter()

	allProviders := providers.New(db)

	defaultWeights := domains.MetricWeights{
		Manager:    cfg.Metrics.Manager,
		Tasks:      cfg.Metrics.Tasks,
		Attendance: cfg.Metrics.Attendance,
	}
	bucketConfig := scoring.BucketConfig{
		ChoiceLowMax:  cfg.Buckets.ChoiceLowMax,
		ChoiceHighMin: cfg.Buckets.ChoiceHighMin,
	}

	authService := service.NewAuthService(allProviders.AuthProvider, cfg.JWT.Secret)
	templateService := service.NewTemplateService(allProviders.TemplateProvider)
	evaluationService := service.NewEvaluationService(
		allProviders.AssignmentProvider,
		allProviders.TemplateProvider,
		allProviders.MetricsProvider,
		cfg.JWT.Secret,
		defaultWeights,
	)
	reportService := service.NewReportService(
		allProviders.AssignmentProvider,
		allProviders.MetricsProvider,
		defaultWeights,
		bucketConfig,
	)
	metricsService := service.NewMetricsService(allProviders.MetricsProvider, defaultWeights)

	authHandler := NewAuthHandlers(authService)
	templateHandler := NewTemplateHandlers(templateService)
	assignmentHandler := NewAssignmentHandlers(evaluationService)
	submissionHandler := NewSubmissionHandlers(evaluationService)
	reportHandler := NewReportHandlers(reportService)
	metricsHandler := NewMetricsHandlers(metricsService)

	api := router.PathPrefix("/api").Subrouter()

	auth := api.PathPrefix("/auth").Subrouter()
	auth.HandleFunc("/login", authHandler.Login).Methods(http.MethodPost)
	auth.HandleFunc("/register", authHandler.Register).Methods(http.MethodPost)
	auth.HandleFunc("/refresh", authHandler.Refresh).Methods(http.MethodPost)
	auth.HandleFunc("/me", authHandler.Me).Methods(http.MethodGet)

	owner := api.PathPrefix("").Subrouter()
	owner.Use(httpx.Protected(cfg.JWT.Secret))

	owner.HandleFunc("/templates", templateHandler.CreateTemplate).Methods(http.MethodPost)
	owner.HandleFunc("/templates", templateHandler.GetAllTemplatesByOwner).Methods(http.MethodGet)
	owner.HandleFunc("/templates/{id}", templateHandler.GetTemplateById).Methods(http.MethodGet)
	owner.HandleFunc("/templates/{id}", templateHandler.UpdateTemplate).Methods(http.MethodPut)

	owner.HandleFunc("/assignments", assignmentHandler.CreateAssignment).Methods(http.MethodPost)
	owner.HandleFunc("/assignments", assignmentHandler.GetAllAssignmentsByOwner).Methods(http.MethodGet)
	owner.HandleFunc("/assignments/{id}", assignmentHandler.GetAssignmentById).Methods(http.MethodGet)
	owner.HandleFunc("/assignments/{id}/reviewers", assignmentHandler.AddReviewer).Methods(http.MethodPost)
	owner.HandleFunc("/assignments/{id}/reviewers/{inviteId}", assignmentHandler.RemoveReviewer).Methods(http.MethodDelete)

	owner.HandleFunc("/assignments/{id}/report", reportHandler.AggregateForTarget).Methods(http.MethodGet)
	owner.HandleFunc("/assignments/{id}/submissions/{submissionId}/breakdown", reportHandler.SubmissionBreakdown).Methods(http.MethodGet)

	owner.HandleFunc("/metrics/weights/{department}", metricsHandler.GetWeights).Methods(http.MethodGet)
	owner.HandleFunc("/metrics/weights", metricsHandler.SaveWeights).Methods(http.MethodPut)

	respond := api.PathPrefix("/respond").Subrouter()
	respond.HandleFunc("/access", submissionHandler.AccessByToken).Methods(http.MethodGet, http.MethodPost)
	respond.HandleFunc("/start", submissionHandler.Start).Methods(http.MethodPost)
	respond.HandleFunc("/draft", submissionHandler.SaveDraft).Methods(http.MethodPut)
	respond.HandleFunc("/submit", submissionHandler.Submit).Methods(http.MethodPost)
	respond.HandleFunc("/result", submissionHandler.GetResultByToken).Methods(http.MethodGet)

	return router
}

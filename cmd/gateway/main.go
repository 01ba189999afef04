package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/physika-edu/physika-lms/internal/accessgate"
	api "github.com/physika-edu/physika-lms/internal/api/http"
	auth "github.com/physika-edu/physika-lms/internal/auth/middleware"
	"github.com/physika-edu/physika-lms/internal/catalog"
	"github.com/physika-edu/physika-lms/internal/config"
	"github.com/physika-edu/physika-lms/internal/db"
	"github.com/physika-edu/physika-lms/internal/eventlog"
	"github.com/physika-edu/physika-lms/internal/grading"
	"github.com/physika-edu/physika-lms/internal/logger"
	"github.com/physika-edu/physika-lms/internal/progress"
	"github.com/physika-edu/physika-lms/internal/rbac"
	"github.com/physika-edu/physika-lms/internal/storage"
)

func main() {
	cfg := config.FromEnv()

	log, err := logger.New(string(cfg.Mode))
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal("db open failed", "err", err)
	}

	cat := catalog.NewSQLStore(dbh)
	records := progress.NewSQLStore(dbh)
	events := eventlog.NewRepo(dbh)

	gate := accessgate.New(cat, accessgate.NewResolver(cfg.IPLookupURL, cfg.IPLookupTimeout))
	svc := progress.NewService(records, cat, gate,
		progress.WithEvents(events),
		progress.WithLogger(log),
	)
	evaluator := grading.NewDefaultEvaluator()

	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal("blob store", "err", err)
	}

	allowClaimFallback := cfg.Mode == config.ModeOffline

	// Protected API (JWT -> authoritative role -> RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, allowClaimFallback))

		// Student flow
		pr.With(rbac.Require("assignment:view")).
			Get("/assignments/{assignmentID}", api.GetAssignmentHandler(cat))
		pr.With(rbac.RequireAny("progress:view-own", "progress:view-all")).
			Get("/assignments/{assignmentID}/progress", api.GetProgressHandler(svc))
		pr.With(rbac.Require("progress:save")).
			Post("/assignments/{assignmentID}/answers", api.SubmitAnswerHandler(svc, cat, evaluator))
		pr.With(rbac.Require("progress:save")).
			Post("/assignments/{assignmentID}/reveal", api.RevealSolutionHandler(svc, cat))
		pr.With(rbac.Require("progress:save")).
			Post("/assignments/{assignmentID}/position", api.SetActiveIndexHandler(svc))
		pr.With(rbac.Require("progress:save")).
			Post("/assignments/{assignmentID}/variation", api.NextVariationHandler(svc))

		// Collections and access checks
		pr.With(rbac.Require("collection:view")).
			Get("/collections/{collectionID}/summary", api.CollectionSummaryHandler(svc))
		pr.With(rbac.Require("collection:view")).
			Get("/classrooms/{classroomID}/collections", api.ListCollectionsHandler(cat))
		pr.With(rbac.Require("access:check")).
			Get("/classrooms/{classroomID}/access", api.CheckAccessHandler(gate))

		// Teacher catalog management
		pr.With(rbac.Require("classroom:create")).
			Post("/classrooms", api.CreateClassroomHandler(cat))
		pr.With(rbac.Require("classroom:update")).
			Put("/classrooms/{classroomID}/ip-policy", api.SetIPPolicyHandler(cat))
		pr.With(rbac.Require("collection:create")).
			Post("/collections", api.CreateCollectionHandler(cat))
		pr.With(rbac.Require("assignment:create")).
			Post("/assignments", api.UpsertAssignmentHandler(cat))
		pr.With(rbac.Require("assignment:publish")).
			Put("/assignments/{assignmentID}/publish", api.PublishAssignmentHandler(cat))
		pr.With(rbac.Require("assignment:create")).
			Get("/assignments/{assignmentID}/full", api.GetAssignmentFullHandler(cat))

		// Users (teacher/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.With(rbac.Require("user:change_password")).
			Post("/users/change-password", api.ChangePasswordHandler(dbh))

		// Solution diagrams (authenticated; upload is teacher-gated inside)
		pr.Route("/assets", func(ar chi.Router) {
			api.MountAssets(ar, bs)
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Info("listening", "addr", cfg.HTTPAddr, "mode", cfg.Mode, "db", cfg.DBDriver)
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal("server exited", "err", err)
	}
}

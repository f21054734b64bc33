package main

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	api "github.com/tentagen/tentagen/internal/api/http"
	"github.com/tentagen/tentagen/internal/auth"
	"github.com/tentagen/tentagen/internal/config"
	"github.com/tentagen/tentagen/internal/db"
	"github.com/tentagen/tentagen/internal/export/docx"
	"github.com/tentagen/tentagen/internal/llm"
	"github.com/tentagen/tentagen/internal/logger"
	"github.com/tentagen/tentagen/internal/question"
	"github.com/tentagen/tentagen/internal/storage"

	// format encoders register themselves
	"github.com/tentagen/tentagen/internal/export"
	_ "github.com/tentagen/tentagen/internal/export/csvexport"
	_ "github.com/tentagen/tentagen/internal/export/jsondialect"
	_ "github.com/tentagen/tentagen/internal/export/qtipkg"
)

func main() {
	cfg := config.FromEnv()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// The Word encoder carries the configured logo URL; re-registering
	// replaces the zero-value encoder registered in its init.
	export.Register("docx", docx.Encoder{LogoURL: cfg.LogoURL})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("db open failed")
	}
	store := question.NewSQLStore(dbh)

	bs, err := storage.NewFSStore(cfg.BlobBasePath)
	if err != nil {
		log.Fatal().Err(err).Msg("blob store")
	}

	gen := llm.New(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel)
	authSvc := auth.NewService(cfg.AuthSecret)

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	var creds []auth.Credential
	if cfg.AdminPassHash != "" {
		creds = append(creds, auth.Credential{Username: cfg.AdminUser, PassHash: cfg.AdminPassHash})
	}
	r.Post("/auth/login", auth.LoginHandler(authSvc, creds))

	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Get("/questions", api.ListQuestionsHandler(store))
		pr.Put("/questions", api.PutQuestionHandler(store))
		pr.Delete("/questions/{id}", api.DeleteQuestionHandler(store))

		pr.Post("/generate", api.GenerateHandler(gen, store))
		pr.Post("/materials", api.UploadMaterialHandler(bs))

		pr.Get("/export-formats", api.ExportFormatsHandler())
		pr.Post("/exports", api.ExportHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Info().Str("addr", cfg.HTTPAddr).Str("db", cfg.DBDriver).Msg("listening")
	if err := http.ListenAndServe(cfg.HTTPAddr, r); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

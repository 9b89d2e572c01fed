package main

import (
	"net/http"
	"time"

	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/campaign"
	"github.com/estatecrm/api/internal/config"
	"github.com/estatecrm/api/internal/document"
	"github.com/estatecrm/api/internal/interaction"
	"github.com/estatecrm/api/internal/lead"
	"github.com/estatecrm/api/internal/meeting"
	"github.com/estatecrm/api/internal/note"
	"github.com/estatecrm/api/internal/pipeline"
	"github.com/estatecrm/api/internal/property"
	"github.com/estatecrm/api/internal/storage"
	"github.com/estatecrm/api/internal/task"
	"github.com/estatecrm/api/internal/user"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("config load failed", zap.Error(err))
	}
	auth.SetSecret(cfg.JWTSecret)

	db, err := storage.Connect(cfg)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}

	if err := db.AutoMigrate(
		&user.User{},
		&pipeline.Pipeline{},
		&pipeline.PipelineStage{},
		&campaign.Campaign{},
		&lead.Lead{},
		&interaction.Interaction{},
		&task.Task{},
		&note.Note{},
		&property.Property{},
		&property.PropertyInterest{},
		&document.Folder{},
		&document.Document{},
		&meeting.Meeting{},
		&meeting.MeetingAttendee{},
	); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// Handlers
	userHandler := user.NewHandler(db)
	pipelineHandler := pipeline.NewHandler(db)
	campaignHandler := campaign.NewHandler(db)
	leadHandler := lead.NewHandler(db, logger)
	interactionHandler := interaction.NewHandler(db)
	taskHandler := task.NewHandler(db)
	noteHandler := note.NewHandler(db)
	propertyHandler := property.NewHandler(db)
	documentHandler := document.NewHandler(db)
	meetingHandler := meeting.NewHandler(db, &meeting.Notifier{URL: cfg.CalendarWebhookURL, Logger: logger})

	// Router
	r := mux.NewRouter()
	r.HandleFunc("/login", userHandler.Login).Methods("POST")

	api := r.NewRoute().Subrouter()
	api.Use(auth.Middleware)
	api.Use(requestLogger(logger))

	api.HandleFunc("/me", userHandler.Me).Methods("GET")

	// Users
	admin := auth.RequireRole(auth.RoleAdmin)
	api.Handle("/users", admin(http.HandlerFunc(userHandler.Create))).Methods("POST")
	api.HandleFunc("/users", userHandler.List).Methods("GET")
	api.HandleFunc("/users/{id}", userHandler.Get).Methods("GET")
	api.HandleFunc("/users/{id}", userHandler.Update).Methods("PUT")
	api.Handle("/users/{id}", admin(http.HandlerFunc(userHandler.Delete))).Methods("DELETE")
	api.HandleFunc("/users/{id}/password", userHandler.ChangePassword).Methods("PUT")
	api.Handle("/users/{id}/reset-password", admin(http.HandlerFunc(userHandler.ResetPassword))).Methods("POST")

	// Pipelines (staff only for mutations)
	staff := auth.RequireRole(auth.RoleAdmin, auth.RoleManager)
	api.Handle("/pipelines", staff(http.HandlerFunc(pipelineHandler.Create))).Methods("POST")
	api.HandleFunc("/pipelines", pipelineHandler.List).Methods("GET")
	api.HandleFunc("/pipelines/{id}", pipelineHandler.Get).Methods("GET")
	api.Handle("/pipelines/{id}", staff(http.HandlerFunc(pipelineHandler.Update))).Methods("PUT")
	api.Handle("/pipelines/{id}/stages", staff(http.HandlerFunc(pipelineHandler.AddStage))).Methods("POST")
	api.Handle("/pipelines/{id}/stages/{stageId}", staff(http.HandlerFunc(pipelineHandler.UpdateStage))).Methods("PATCH")
	api.Handle("/pipelines/{id}/stages/{stageId}", staff(http.HandlerFunc(pipelineHandler.DeleteStage))).Methods("DELETE")

	// Campaigns
	api.Handle("/campaigns", staff(http.HandlerFunc(campaignHandler.Create))).Methods("POST")
	api.HandleFunc("/campaigns", campaignHandler.List).Methods("GET")
	api.HandleFunc("/campaigns/{id}", campaignHandler.Get).Methods("GET")
	api.Handle("/campaigns/{id}", staff(http.HandlerFunc(campaignHandler.Update))).Methods("PUT")
	api.Handle("/campaigns/{id}", admin(http.HandlerFunc(campaignHandler.Delete))).Methods("DELETE")
	api.HandleFunc("/campaigns/{id}/stats", leadHandler.Stats).Methods("GET")

	// Leads
	api.HandleFunc("/campaigns/{id}/leads", leadHandler.Create).Methods("POST")
	api.HandleFunc("/campaigns/{id}/leads", leadHandler.List).Methods("GET")
	api.HandleFunc("/campaigns/{id}/leads/{leadId}", leadHandler.Get).Methods("GET")
	api.HandleFunc("/campaigns/{id}/leads/{leadId}", leadHandler.Update).Methods("PUT")
	api.HandleFunc("/campaigns/{id}/leads/{leadId}", leadHandler.Delete).Methods("DELETE")
	api.HandleFunc("/campaigns/{id}/leads/{leadId}/stage", leadHandler.MoveStage).Methods("PUT")
	api.HandleFunc("/campaigns/{id}/leads/{leadId}/archive", leadHandler.Archive).Methods("PUT")
	api.HandleFunc("/campaigns/{id}/leads/{leadId}/convert-to-lead", leadHandler.ConvertToLead).Methods("PUT")
	api.HandleFunc("/leads/import/bulk", leadHandler.ImportBulk).Methods("POST")

	// Interactions
	api.HandleFunc("/campaigns/{id}/leads/{leadId}/interactions", interactionHandler.List).Methods("GET")
	api.HandleFunc("/campaigns/{id}/leads/{leadId}/interactions", interactionHandler.Log).Methods("POST")

	// Tasks
	api.HandleFunc("/tasks", taskHandler.Create).Methods("POST")
	api.HandleFunc("/tasks", taskHandler.List).Methods("GET")
	api.HandleFunc("/tasks/{id}", taskHandler.Get).Methods("GET")
	api.HandleFunc("/tasks/{id}", taskHandler.Update).Methods("PUT")
	api.HandleFunc("/tasks/{id}", taskHandler.Delete).Methods("DELETE")
	api.HandleFunc("/tasks/{id}/complete", taskHandler.Complete).Methods("PUT")

	// Notes
	api.HandleFunc("/leads/{leadId}/notes", noteHandler.Create).Methods("POST")
	api.HandleFunc("/leads/{leadId}/notes", noteHandler.ListByLead).Methods("GET")
	api.HandleFunc("/leads/{leadId}/notes/{noteId}", noteHandler.Update).Methods("PUT")
	api.HandleFunc("/leads/{leadId}/notes/{noteId}", noteHandler.Delete).Methods("DELETE")

	// Properties
	api.HandleFunc("/properties", propertyHandler.Create).Methods("POST")
	api.HandleFunc("/properties", propertyHandler.List).Methods("GET")
	api.HandleFunc("/properties/{id}", propertyHandler.Get).Methods("GET")
	api.HandleFunc("/properties/{id}", propertyHandler.Update).Methods("PUT")
	api.Handle("/properties/{id}", staff(http.HandlerFunc(propertyHandler.Delete))).Methods("DELETE")
	api.HandleFunc("/leads/{leadId}/property-interests", propertyHandler.AddInterests).Methods("POST")
	api.HandleFunc("/leads/{leadId}/property-interests", propertyHandler.ListInterests).Methods("GET")

	// Folders and documents
	api.HandleFunc("/folders", documentHandler.CreateFolder).Methods("POST")
	api.HandleFunc("/folders", documentHandler.ListFolders).Methods("GET")
	api.HandleFunc("/folders/{id}", documentHandler.GetFolder).Methods("GET")
	api.HandleFunc("/folders/{id}", documentHandler.DeleteFolder).Methods("DELETE")
	api.HandleFunc("/folders/{id}/share", documentHandler.ShareFolder).Methods("PUT")
	api.HandleFunc("/folders/{id}/documents", documentHandler.CreateDocument).Methods("POST")
	api.HandleFunc("/folders/{id}/documents", documentHandler.ListDocuments).Methods("GET")
	api.HandleFunc("/folders/{id}/documents/{docId}", documentHandler.DeleteDocument).Methods("DELETE")

	// Meetings
	api.HandleFunc("/meetings", meetingHandler.Create).Methods("POST")
	api.HandleFunc("/meetings", meetingHandler.List).Methods("GET")
	api.HandleFunc("/meetings/{id}", meetingHandler.Get).Methods("GET")
	api.HandleFunc("/meetings/{id}", meetingHandler.Update).Methods("PUT")
	api.HandleFunc("/meetings/{id}", meetingHandler.Delete).Methods("DELETE")
	api.HandleFunc("/meetings/{id}/cancel", meetingHandler.Cancel).Methods("PUT")

	handler := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	}).Handler(r)

	logger.Info("server listening", zap.String("port", cfg.Port))
	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func requestLogger(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("took", time.Since(start)),
			)
		})
	}
}

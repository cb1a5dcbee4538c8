package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/b1prep/backend/internal/auth"
	"github.com/b1prep/backend/internal/database"
	"github.com/b1prep/backend/internal/generator"
	"github.com/b1prep/backend/internal/middleware"
	"github.com/b1prep/backend/internal/placement"
	"github.com/b1prep/backend/internal/practice"
	"github.com/b1prep/backend/internal/progress"
	"github.com/b1prep/backend/internal/sessions"
	"github.com/b1prep/backend/internal/tutor"
	"github.com/b1prep/backend/internal/vocabulary"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment")
	}

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	gen := generator.NewGenerator()

	// Stores
	placementStore := placement.NewStore(db)
	practiceStore := practice.NewStore(db)
	sessionStore := sessions.NewStore(db)
	vocabStore := vocabulary.NewStore(db)
	progressStore := progress.NewStore(db)
	tutorStore := tutor.NewStore(db)

	// Services
	sessionService := sessions.NewService(sessionStore)
	placementService := placement.NewService(placementStore, gen)
	practiceService := practice.NewService(practiceStore, placementStore, gen, sessionService)
	vocabService := vocabulary.NewService(vocabStore, gen)
	progressService := progress.NewService(progressStore, placementStore, practiceService, sessionService, vocabStore)
	tutorService := tutor.NewService(tutorStore, placementStore, gen)

	// Handlers
	authHandler := auth.NewHandler(db)
	placementHandler := placement.NewHandler(placementService)
	practiceHandler := practice.NewHandler(practiceService)
	vocabHandler := vocabulary.NewHandler(vocabService)
	progressHandler := progress.NewHandler(progressService)
	tutorHandler := tutor.NewHandler(tutorService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")
	protected.HandleFunc("/auth/profile", authHandler.UpdateProfile).Methods("PUT")

	protected.HandleFunc("/placement/start", placementHandler.Start).Methods("POST")
	protected.HandleFunc("/placement/question", placementHandler.NextQuestion).Methods("POST")
	protected.HandleFunc("/placement/answer", placementHandler.SubmitAnswer).Methods("POST")
	protected.HandleFunc("/placement/complete", placementHandler.Complete).Methods("POST")
	protected.HandleFunc("/placement", placementHandler.GetData).Methods("GET")
	protected.HandleFunc("/learning-path", placementHandler.GetLearningPath).Methods("GET")
	protected.HandleFunc("/learning-path/{topicId}/skip", placementHandler.SkipPathItem).Methods("POST")

	protected.HandleFunc("/practice/exercise", practiceHandler.GenerateExercise).Methods("POST")
	protected.HandleFunc("/practice/submit", practiceHandler.SubmitExercise).Methods("POST")
	protected.HandleFunc("/practice/session-topics", practiceHandler.SessionTopics).Methods("GET")
	protected.HandleFunc("/practice/history", practiceHandler.History).Methods("GET")

	protected.HandleFunc("/vocabulary", vocabHandler.AddWord).Methods("POST")
	protected.HandleFunc("/vocabulary", vocabHandler.ListWords).Methods("GET")
	protected.HandleFunc("/vocabulary/due", vocabHandler.DueWords).Methods("GET")
	protected.HandleFunc("/vocabulary/suggest", vocabHandler.SuggestWords).Methods("GET")
	protected.HandleFunc("/vocabulary/{id}/review", vocabHandler.ReviewWord).Methods("POST")
	protected.HandleFunc("/vocabulary/{id}", vocabHandler.DeleteWord).Methods("DELETE")

	protected.HandleFunc("/dashboard", progressHandler.Dashboard).Methods("GET")
	protected.HandleFunc("/readiness", progressHandler.Readiness).Methods("GET")
	protected.HandleFunc("/progress", progressHandler.TopicProgress).Methods("GET")

	protected.HandleFunc("/tutor/chat", tutorHandler.Chat).Methods("POST")
	protected.HandleFunc("/tutor/history", tutorHandler.History).Methods("GET")
	protected.HandleFunc("/tutor/lesson", tutorHandler.Lesson).Methods("POST")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go practiceService.StartGenerationWorker(ctx)

	// Scheduled maintenance
	scheduler := gocron.NewScheduler(time.UTC)
	scheduler.Every(1).Day().At("03:00").Do(practiceService.RefreshProficiencies)
	scheduler.Every(1).Day().At("00:05").Do(sessionService.RolloverDailySessions)
	scheduler.StartAsync()
	defer scheduler.Stop()

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

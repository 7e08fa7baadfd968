package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"

	api "github.com/lingua-school/lingua-lms/internal/api/http"
	"github.com/lingua-school/lingua-lms/internal/auth"
	"github.com/lingua-school/lingua-lms/internal/catalog"
	"github.com/lingua-school/lingua-lms/internal/config"
	"github.com/lingua-school/lingua-lms/internal/course"
	"github.com/lingua-school/lingua-lms/internal/db"
	"github.com/lingua-school/lingua-lms/internal/enroll"
	"github.com/lingua-school/lingua-lms/internal/payments"
	"github.com/lingua-school/lingua-lms/internal/quiz"
	"github.com/lingua-school/lingua-lms/internal/rbac"
	"github.com/lingua-school/lingua-lms/internal/stats"
	"github.com/lingua-school/lingua-lms/internal/storage"
	"github.com/lingua-school/lingua-lms/internal/syncx"
	"github.com/lingua-school/lingua-lms/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}

	users := user.NewSQLStore(dbh)
	courses := course.NewSQLStore(dbh)
	quizzes := quiz.NewSQLStore(dbh)
	enrollments := enroll.NewSQLStore(dbh)
	catalogStore := catalog.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)
	statsSrc := stats.NewSource(dbh)

	var provider payments.Provider
	switch cfg.PaymentProvider {
	case "local", "":
		provider = payments.LocalProvider{}
	default:
		log.Fatalf("unknown payment provider %q", cfg.PaymentProvider)
	}
	paySvc := payments.NewService(payments.NewSQLStore(dbh), enrollments, provider)

	authSvc := auth.NewAuthService(cfg.AuthSecret)

	bs, err := storage.NewFSStore(cfg.BlobBasePath, cfg.PublicURL)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Post("/auth/register", api.RegisterHandler(users, authSvc))
	r.Post("/auth/login", api.LoginHandler(users, authSvc))

	// Public catalog. OptionalJWT lets teachers see their own drafts
	// through the same routes.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.OptionalJWT(authSvc))
		pr.Get("/courses", api.ListCoursesHandler(courses))
		pr.Get("/courses/{id}", api.GetCourseHandler(courses))
		pr.Get("/courses/{id}/lessons", api.ListLessonsHandler(courses, enrollments))
		pr.Get("/products", api.ListProductsHandler(catalogStore))
		pr.Get("/products/{id}", api.GetProductHandler(catalogStore))
		pr.Get("/announcements", api.ListAnnouncementsHandler(catalogStore))
	})

	// Assets: downloads public, uploads gated.
	r.Route("/assets", func(ar chi.Router) {
		api.MountAssets(ar, bs, auth.JWTMiddleware(authSvc), rbac.Require("asset:upload"))
	})

	// Authenticated API.
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))

		pr.Get("/auth/profile", api.ProfileHandler(users))
		pr.Put("/auth/profile", api.UpdateProfileHandler(users))
		pr.With(rbac.Require("user:change_password")).
			Post("/auth/change-password", api.ChangePasswordHandler(users))

		// Admin user management ("*" covers user:manage).
		pr.With(rbac.Require("user:manage")).Get("/users", api.ListUsersHandler(users))
		pr.With(rbac.Require("user:manage")).Post("/users", api.CreateUserHandler(users))
		pr.With(rbac.Require("user:manage")).Get("/users/{id}", api.GetUserHandler(users))
		pr.With(rbac.Require("user:manage")).Put("/users/{id}", api.UpdateUserHandler(users))
		pr.With(rbac.Require("user:manage")).Delete("/users/{id}", api.DeleteUserHandler(users))

		// Courses and lessons.
		pr.With(rbac.Require("course:create")).
			Post("/courses", api.CreateCourseHandler(courses))
		pr.With(rbac.RequireAny("course:update-own", "course:manage")).
			Put("/courses/{id}", api.UpdateCourseHandler(courses))
		pr.With(rbac.Require("course:set-status")).
			Put("/courses/{id}/status", api.SetCourseStatusHandler(courses))
		pr.With(rbac.RequireAny("course:delete-own", "course:manage")).
			Delete("/courses/{id}", api.DeleteCourseHandler(courses))
		pr.With(rbac.Require("lesson:view")).
			Get("/lessons/{id}", api.GetLessonHandler(courses, enrollments))
		pr.With(rbac.Require("lesson:manage-own")).
			Post("/courses/{id}/lessons", api.CreateLessonHandler(courses))
		pr.With(rbac.Require("lesson:manage-own")).
			Put("/lessons/{id}", api.UpdateLessonHandler(courses))
		pr.With(rbac.Require("lesson:manage-own")).
			Delete("/lessons/{id}", api.DeleteLessonHandler(courses))

		// Quizzes and attempts.
		pr.With(rbac.Require("quiz:create")).
			Post("/quizzes", api.CreateQuizHandler(quizzes, courses))
		pr.With(rbac.Require("quiz:view")).
			Get("/quizzes/{id}", api.GetQuizHandler(quizzes, enrollments))
		pr.With(rbac.Require("attempt:submit")).
			Post("/quizzes/{id}/attempts", api.SubmitAttemptHandler(quizzes, enrollments, events))
		pr.With(rbac.RequireAny("attempt:view-own", "attempt:view-course")).
			Get("/quizzes/{id}/attempts", api.ListAttemptsHandler(quizzes))

		// Enrollment and progress.
		pr.With(rbac.Require("enrollment:create")).
			Post("/courses/{id}/enroll", api.EnrollHandler(courses, enrollments, events))
		pr.With(rbac.Require("enrollment:view-own")).
			Get("/enrollments", api.ListMyEnrollmentsHandler(enrollments))
		pr.With(rbac.RequireAny("attempt:view-course", "enrollment:view-all")).
			Get("/courses/{id}/enrollments", api.ListCourseEnrollmentsHandler(courses, enrollments))
		pr.With(rbac.Require("progress:update")).
			Put("/lessons/{id}/progress", api.UpdateProgressHandler(courses, enrollments))
		pr.With(rbac.Require("progress:view-own")).
			Get("/courses/{id}/progress", api.ListProgressHandler(enrollments))

		// Payments.
		pr.With(rbac.Require("payment:create")).
			Post("/payments/checkout", api.CheckoutHandler(paySvc, courses))
		pr.With(rbac.Require("payment:create")).
			Post("/payments/{id}/confirm", api.ConfirmPaymentHandler(paySvc, events))
		pr.With(rbac.Require("payment:create")).
			Get("/payments", api.PaymentHistoryHandler(paySvc))

		// Dashboards.
		pr.With(rbac.Require("stats:admin")).Get("/stats/admin", api.AdminStatsHandler(statsSrc))
		pr.With(rbac.Require("stats:teacher")).Get("/stats/teacher", api.TeacherStatsHandler(statsSrc))
		pr.With(rbac.Require("stats:student")).Get("/stats/student", api.StudentStatsHandler(statsSrc))

		// Storefront administration.
		pr.With(rbac.Require("product:manage")).Post("/products", api.CreateProductHandler(catalogStore))
		pr.With(rbac.Require("product:manage")).Put("/products/{id}", api.UpdateProductHandler(catalogStore))
		pr.With(rbac.Require("product:manage")).Delete("/products/{id}", api.DeleteProductHandler(catalogStore))
		pr.With(rbac.Require("announcement:manage")).Post("/announcements", api.CreateAnnouncementHandler(catalogStore))
		pr.With(rbac.Require("announcement:manage")).Put("/announcements/{id}", api.UpdateAnnouncementHandler(catalogStore))
		pr.With(rbac.Require("announcement:manage")).Delete("/announcements/{id}", api.DeleteAnnouncementHandler(catalogStore))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	log.Printf("lingua-lms gateway listening on %s (driver=%s)", cfg.HTTPAddr, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

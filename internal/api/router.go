package api

import (
	"net/http"
	"time"

	"school_admin/internal/api/handler"
	"school_admin/internal/app/service"
	"school_admin/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	termService *service.TermService,
	subjectService *service.SubjectService,
	teacherService *service.TeacherService,
	studentService *service.StudentService,
	examService *service.ExamService,
	responseService *service.ResponseService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies the bearer token when present; the Authenticator middleware
	// enforces it per route group.
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		termHandler := handler.NewTermHandler(termService)
		v1.Route("/terms", termHandler.RegisterRoutes)

		subjectHandler := handler.NewSubjectHandler(subjectService)
		v1.Group(subjectHandler.RegisterRoutes)

		teacherHandler := handler.NewTeacherHandler(teacherService, responseService, authService)
		v1.Route("/teachers", teacherHandler.RegisterRoutes)

		studentHandler := handler.NewStudentHandler(studentService, responseService, authService)
		v1.Route("/students", studentHandler.RegisterRoutes)

		examHandler := handler.NewExamHandler(examService)
		v1.Route("/exams", examHandler.RegisterRoutes)

		responseHandler := handler.NewResponseHandler(responseService)
		v1.Route("/responses", responseHandler.RegisterRoutes)
	})

	return r
}

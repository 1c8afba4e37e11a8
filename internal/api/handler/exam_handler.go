package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"school_admin/internal/api/middleware"
	"school_admin/internal/app/service"
	"school_admin/internal/common"

	"github.com/go-chi/chi/v5"
)

type ExamHandler struct {
	examService *service.ExamService
}

func NewExamHandler(examService *service.ExamService) *ExamHandler {
	return &ExamHandler{examService: examService}
}

func (h *ExamHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/{examID}", h.getExam)
	r.Get("/by-student", h.listByStudent)

	r.Group(func(teacher chi.Router) {
		teacher.Use(middleware.TeacherTier)
		teacher.Post("/", h.createExam)
		teacher.Patch("/{examID}/reschedule", h.rescheduleExam)
		teacher.Get("/by-teacher", h.listByTeacher)
	})

	r.Group(func(principal chi.Router) {
		principal.Use(middleware.PrincipalOnly)
		principal.Get("/", h.listAll)
		principal.Get("/by-date/{date}", h.listByDate)
	})
}

func (h *ExamHandler) createExam(w http.ResponseWriter, r *http.Request) {
	var req service.CreateExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	exam, err := h.examService.CreateExam(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, exam)
}

type rescheduleExamRequest struct {
	StartTime string `json:"start_time"`
}

func (h *ExamHandler) rescheduleExam(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "examID")

	var req rescheduleExamRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	exam, err := h.examService.RescheduleExam(r.Context(), examID, req.StartTime)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, exam)
}

func (h *ExamHandler) getExam(w http.ResponseWriter, r *http.Request) {
	examID := chi.URLParam(r, "examID")
	callerRole, _ := middleware.GetUserRoleFromContext(r.Context())

	exam, err := h.examService.GetExamByID(r.Context(), examID, callerRole)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, exam)
}

func (h *ExamHandler) listByTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID := r.URL.Query().Get("teacher")
	if teacherID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "teacher query parameter required")
		return
	}
	listing, err := h.examService.ListExamsByTeacher(r.Context(), teacherID, r.URL.Query().Get("name"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, listing)
}

func (h *ExamHandler) listByStudent(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("student")
	if studentID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "student query parameter required")
		return
	}
	listing, err := h.examService.ListExamsByStudent(r.Context(), studentID, r.URL.Query().Get("name"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, listing)
}

func (h *ExamHandler) listAll(w http.ResponseWriter, r *http.Request) {
	listing, err := h.examService.ListAllExams(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, listing)
}

func (h *ExamHandler) listByDate(w http.ResponseWriter, r *http.Request) {
	date, err := time.Parse("2006-01-02", chi.URLParam(r, "date"))
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
		return
	}
	listing, err := h.examService.ListExamsByDate(r.Context(), date)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, listing)
}

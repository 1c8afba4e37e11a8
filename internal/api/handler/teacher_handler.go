package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"school_admin/internal/api/middleware"
	"school_admin/internal/app/service"
	"school_admin/internal/common"
	"school_admin/internal/domain/model"
	"school_admin/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type TeacherHandler struct {
	teacherService  *service.TeacherService
	responseService *service.ResponseService
	authService     *service.AuthService
}

func NewTeacherHandler(
	teacherService *service.TeacherService,
	responseService *service.ResponseService,
	authService *service.AuthService,
) *TeacherHandler {
	return &TeacherHandler{
		teacherService:  teacherService,
		responseService: responseService,
		authService:     authService,
	}
}

func (h *TeacherHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listTeachers) // any authenticated user

	r.Group(func(teacher chi.Router) {
		teacher.Use(middleware.TeacherTier)
		teacher.Get("/{teacherID}/subject-classes", h.getSubjectClasses)
		teacher.Get("/{teacherID}/students", h.getStudents)
		teacher.Get("/results", h.getExamResults)
	})

	r.Group(func(principal chi.Router) {
		principal.Use(middleware.PrincipalOnly)
		principal.Post("/", h.createTeacher)
		principal.Put("/{teacherID}", h.updateTeacher)
		principal.Delete("/{teacherID}", h.deleteTeacher)
	})
}

func (h *TeacherHandler) createTeacher(w http.ResponseWriter, r *http.Request) {
	var req service.CreateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	teacher, err := h.teacherService.CreateTeacher(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, teacher)
}

func (h *TeacherHandler) updateTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherID")

	var req service.UpdateTeacherRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	teacher, err := h.teacherService.UpdateTeacher(r.Context(), teacherID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, teacher)
}

func (h *TeacherHandler) deleteTeacher(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherID")
	if err := h.teacherService.DeleteTeacher(r.Context(), teacherID); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Teacher deleted"})
}

func (h *TeacherHandler) listTeachers(w http.ResponseWriter, r *http.Request) {
	filter := repository.UserFilter{}
	if name := r.URL.Query().Get("name"); name != "" {
		filter.Name = &name
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	listing, err := h.authService.ListUsers(r.Context(), model.RoleTeacher, filter, page, limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, listing)
}

func (h *TeacherHandler) getSubjectClasses(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherID")
	scs, err := h.teacherService.GetTeacherSubjectClasses(r.Context(), teacherID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"subject_classes": scs,
		"count":           len(scs),
	})
}

func (h *TeacherHandler) getStudents(w http.ResponseWriter, r *http.Request) {
	teacherID := chi.URLParam(r, "teacherID")
	students, err := h.teacherService.GetTeacherStudents(r.Context(), teacherID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"students": students,
		"count":    len(students),
	})
}

// getExamResults returns the teacher view of an exam: graded students with
// marks plus enrolled students who have not submitted.
func (h *TeacherHandler) getExamResults(w http.ResponseWriter, r *http.Request) {
	examID := r.URL.Query().Get("examId")
	if examID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "examId query parameter required")
		return
	}
	entries, err := h.responseService.GetResultsForExam(r.Context(), examID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, entries)
}

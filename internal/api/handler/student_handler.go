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

type StudentHandler struct {
	studentService  *service.StudentService
	responseService *service.ResponseService
	authService     *service.AuthService
}

func NewStudentHandler(
	studentService *service.StudentService,
	responseService *service.ResponseService,
	authService *service.AuthService,
) *StudentHandler {
	return &StudentHandler{
		studentService:  studentService,
		responseService: responseService,
		authService:     authService,
	}
}

func (h *StudentHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/{studentID}/subject-classes", h.getSubjectClasses)
	r.Get("/results", h.getResult)

	r.Group(func(teacher chi.Router) {
		teacher.Use(middleware.TeacherTier)
		teacher.Post("/", h.createStudent)
		teacher.Put("/{studentID}", h.updateStudent)
		teacher.Patch("/{studentID}/block", h.blockStudent)
		teacher.Get("/", h.listStudents)
	})
}

func (h *StudentHandler) createStudent(w http.ResponseWriter, r *http.Request) {
	var req service.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	student, err := h.studentService.CreateStudent(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, student)
}

func (h *StudentHandler) updateStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	var req service.CreateStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	student, err := h.studentService.UpdateStudent(r.Context(), studentID, req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, student)
}

type blockStudentRequest struct {
	Blocked bool `json:"blocked"`
}

func (h *StudentHandler) blockStudent(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")

	var req blockStudentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	if err := h.studentService.BlockStudent(r.Context(), studentID, req.Blocked); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]string{"message": "Student updated"})
}

func (h *StudentHandler) listStudents(w http.ResponseWriter, r *http.Request) {
	filter := repository.UserFilter{}
	if name := r.URL.Query().Get("name"); name != "" {
		filter.Name = &name
	}
	if v := r.URL.Query().Get("blocked"); v != "" {
		blocked, err := strconv.ParseBool(v)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "blocked must be a boolean")
			return
		}
		filter.Blocked = &blocked
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	listing, err := h.authService.ListUsers(r.Context(), model.RoleStudent, filter, page, limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, listing)
}

func (h *StudentHandler) getSubjectClasses(w http.ResponseWriter, r *http.Request) {
	studentID := chi.URLParam(r, "studentID")
	scs, err := h.studentService.GetStudentSubjectClasses(r.Context(), studentID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"subject_classes": scs,
		"count":           len(scs),
	})
}

// getResult returns the persisted result for (studentId, examId), or null
// when the pair has not been graded.
func (h *StudentHandler) getResult(w http.ResponseWriter, r *http.Request) {
	studentID := r.URL.Query().Get("studentId")
	examID := r.URL.Query().Get("examId")
	if studentID == "" || examID == "" {
		common.RespondWithError(w, http.StatusBadRequest, "studentId and examId query parameters required")
		return
	}

	// Students may only read their own results; teacher tier reads any.
	callerID, _ := middleware.GetUserIDFromContext(r.Context())
	callerRole, _ := middleware.GetUserRoleFromContext(r.Context())
	if !callerRole.AtLeast(model.RoleTeacher) && callerID != studentID {
		common.RespondWithError(w, http.StatusForbidden, "Cannot read another student's result")
		return
	}

	result, err := h.responseService.GetResult(r.Context(), studentID, examID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{"result": result})
}

package handler

import (
	"encoding/json"
	"net/http"

	"school_admin/internal/api/middleware"
	"school_admin/internal/app/service"
	"school_admin/internal/common"

	"github.com/go-chi/chi/v5"
)

type ResponseHandler struct {
	responseService *service.ResponseService
}

func NewResponseHandler(responseService *service.ResponseService) *ResponseHandler {
	return &ResponseHandler{responseService: responseService}
}

func (h *ResponseHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Post("/", h.submitResponses)

	r.Group(func(teacher chi.Router) {
		teacher.Use(middleware.TeacherTier)
		teacher.Post("/grade", h.gradeStudentExam)
	})
}

// submitResponses accepts one student's answers to one exam and grades the
// pair synchronously.
func (h *ResponseHandler) submitResponses(w http.ResponseWriter, r *http.Request) {
	callerID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Missing user context")
		return
	}

	var req service.SubmitResponsesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	// A student may only submit their own answers.
	for _, in := range req.Responses {
		if in.StudentID != callerID {
			common.RespondWithError(w, http.StatusForbidden, "Cannot submit responses for another student")
			return
		}
	}

	result, err := h.responseService.SubmitResponses(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, result)
}

type gradeRequest struct {
	StudentID string `json:"student_id"`
	ExamID    string `json:"exam_id"`
}

func (h *ResponseHandler) gradeStudentExam(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	result, err := h.responseService.GradeStudentExam(r.Context(), req.StudentID, req.ExamID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, result)
}

package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"school_admin/internal/api/middleware"
	"school_admin/internal/app/service"
	"school_admin/internal/common"
	"school_admin/internal/domain/model"

	"github.com/go-chi/chi/v5"
)

type SubjectHandler struct {
	subjectService *service.SubjectService
}

func NewSubjectHandler(subjectService *service.SubjectService) *SubjectHandler {
	return &SubjectHandler{subjectService: subjectService}
}

func (h *SubjectHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/classes", h.listClasses)
	r.Get("/subjects", h.listSubjects)
	r.Get("/subject-classes", h.listSubjectClasses)

	r.Group(func(principal chi.Router) {
		principal.Use(middleware.PrincipalOnly)
		principal.Post("/subjects", h.createSubject)
	})
}

func (h *SubjectHandler) listClasses(w http.ResponseWriter, r *http.Request) {
	classes, err := h.subjectService.ListClasses(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, classes)
}

func (h *SubjectHandler) listSubjects(w http.ResponseWriter, r *http.Request) {
	subjects, err := h.subjectService.ListSubjects(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, subjects)
}

func (h *SubjectHandler) createSubject(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSubjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	subject, err := h.subjectService.CreateSubject(r.Context(), req)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, subject)
}

// listSubjectClasses narrows the listing to the query parameters present:
// subjectId, classId, inUse.
func (h *SubjectHandler) listSubjectClasses(w http.ResponseWriter, r *http.Request) {
	var filter model.SubjectClassFilter
	if v := r.URL.Query().Get("subjectId"); v != "" {
		filter.SubjectID = &v
	}
	if v := r.URL.Query().Get("classId"); v != "" {
		filter.ClassID = &v
	}
	if v := r.URL.Query().Get("inUse"); v != "" {
		inUse, err := strconv.ParseBool(v)
		if err != nil {
			common.RespondWithError(w, http.StatusBadRequest, "inUse must be a boolean")
			return
		}
		filter.InUse = &inUse
	}

	scs, err := h.subjectService.ListSubjectClasses(r.Context(), filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, scs)
}

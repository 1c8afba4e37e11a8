package handler

import (
	"net/http"

	"school_admin/internal/api/middleware"
	"school_admin/internal/app/service"
	"school_admin/internal/common"

	"github.com/go-chi/chi/v5"
)

type TermHandler struct {
	termService *service.TermService
}

func NewTermHandler(termService *service.TermService) *TermHandler {
	return &TermHandler{termService: termService}
}

func (h *TermHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)
	r.Get("/", h.listTerms)
	r.Get("/current", h.getCurrentTerm)

	r.Group(func(principal chi.Router) {
		principal.Use(middleware.PrincipalOnly)
		principal.Post("/", h.advanceTerm)
		principal.Delete("/", h.removeCurrentTerm)
	})
}

func (h *TermHandler) listTerms(w http.ResponseWriter, r *http.Request) {
	terms, err := h.termService.ListTerms(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, terms)
}

func (h *TermHandler) getCurrentTerm(w http.ResponseWriter, r *http.Request) {
	term, err := h.termService.GetCurrentTerm(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, term)
}

// advanceTerm rotates the term; every outstanding session is invalidated, so
// the caller must log in again afterwards.
func (h *TermHandler) advanceTerm(w http.ResponseWriter, r *http.Request) {
	term, err := h.termService.AdvanceTerm(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, term)
}

func (h *TermHandler) removeCurrentTerm(w http.ResponseWriter, r *http.Request) {
	terms, err := h.termService.RemoveCurrentTerm(r.Context())
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, terms)
}

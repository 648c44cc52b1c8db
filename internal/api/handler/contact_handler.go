package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"contacthub/internal/api/middleware"
	"contacthub/internal/app/service"
	"contacthub/internal/common"
	"contacthub/internal/domain/repository"

	"github.com/go-chi/chi/v5"
)

type ContactHandler struct {
	contactService *service.ContactService
}

func NewContactHandler(contactService *service.ContactService) *ContactHandler {
	return &ContactHandler{contactService: contactService}
}

// RegisterRoutes mounts the contact routes; callers wrap the subtree in
// the Authenticator middleware.
func (h *ContactHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{contactID}", h.get)
	r.Patch("/{contactID}", h.update)
	r.Delete("/{contactID}", h.delete)
}

func contactID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "contactID"), 10, 64)
}

func queryInt(r *http.Request, name string) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return 0
	}
	return v
}

func (h *ContactHandler) list(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	filter := repository.ContactFilter{
		Search:              r.URL.Query().Get("search"),
		BirthdaysWithinDays: queryInt(r, "birthdays_within_days"),
		Skip:                queryInt(r, "skip"),
		Limit:               queryInt(r, "limit"),
	}

	contacts, err := h.contactService.List(r.Context(), user, filter)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contacts)
}

func (h *ContactHandler) get(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	id, err := contactID(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contact id")
		return
	}

	contact, err := h.contactService.Get(r.Context(), user, id)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) create(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	var input service.ContactInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contact, err := h.contactService.Create(r.Context(), user, input)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, contact)
}

func (h *ContactHandler) update(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	id, err := contactID(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contact id")
		return
	}

	var patch service.ContactPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}

	contact, err := h.contactService.Update(r.Context(), user, id, patch)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, contact)
}

func (h *ContactHandler) delete(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	id, err := contactID(r)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid contact id")
		return
	}

	if err := h.contactService.Delete(r.Context(), user, id); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"contacthub/internal/api/middleware"
	"contacthub/internal/app/service"
	"contacthub/internal/common"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"
)

// Avatar uploads are capped well above typical profile image sizes.
const maxAvatarBytes = 8 << 20

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes mounts the user routes; callers wrap the subtree in the
// Authenticator middleware.
func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.With(middleware.PerClientLimit(rate.Limit(10.0/60.0), 10)).Get("/me", h.me)
	r.With(middleware.AdminOnly).Patch("/avatar", h.updateAvatar)
}

func (h *UserHandler) me(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.CurrentUserFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart payload: "+err.Error())
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Missing avatar file: "+err.Error())
		return
	}
	defer file.Close()

	updated, err := h.userService.UpdateAvatar(r.Context(), user, file, header.Size, header.Header.Get("Content-Type"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithJSON(w, http.StatusOK, updated)
}

package handlers

import (
	"log"
	"net/http"

	"github.com/olekhv/contactbook/internal/http/respond"
	"github.com/olekhv/contactbook/internal/imagehost"
	"github.com/olekhv/contactbook/internal/middleware"
	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

const maxAvatarBytes = 5 << 20

// UsersHandler owns the self-service profile endpoints.
type UsersHandler struct {
	users    storage.UserStore
	uploader imagehost.Uploader
}

// NewUsersHandler constructs the handler.
func NewUsersHandler(users storage.UserStore, uploader imagehost.Uploader) *UsersHandler {
	return &UsersHandler{users: users, uploader: uploader}
}

// Register attaches the profile routes.
func (h *UsersHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator, limits middleware.RouteLimits) {
	member := middleware.RequireRoles(models.RoleUser, models.RoleAdmin)
	mux.Handle("GET /api/users/me", authn.RequireUser(member(limits.Read(http.HandlerFunc(h.handleMe)))))
	mux.Handle("PATCH /api/users/avatar", authn.RequireUser(member(limits.Write(http.HandlerFunc(h.handleAvatar)))))
}

func (h *UsersHandler) handleMe(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	respond.JSON(w, http.StatusOK, user)
}

func (h *UsersHandler) handleAvatar(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		respond.Detail(w, http.StatusBadRequest, "multipart form with a file field is required")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respond.Detail(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	url, err := h.uploader.UploadAvatar(r.Context(), user.ID, file)
	if err != nil {
		log.Printf("upload avatar: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to upload avatar")
		return
	}
	updated, err := h.users.UpdateAvatar(r.Context(), user.ID, url)
	if err != nil {
		log.Printf("store avatar url: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to update avatar")
		return
	}
	respond.JSON(w, http.StatusOK, updated)
}

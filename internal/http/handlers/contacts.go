package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/olekhv/contactbook/internal/cache"
	"github.com/olekhv/contactbook/internal/http/respond"
	"github.com/olekhv/contactbook/internal/middleware"
	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/models/dto"
	"github.com/olekhv/contactbook/internal/storage"
)

const listNamespace = "contacts:list"

// ContactsHandler owns the per-user contact CRUD plus the admin listing.
type ContactsHandler struct {
	contacts storage.ContactStore
	listings *cache.Listings
}

// NewContactsHandler constructs the handler.
func NewContactsHandler(contacts storage.ContactStore, listings *cache.Listings) *ContactsHandler {
	return &ContactsHandler{contacts: contacts, listings: listings}
}

// Register attaches the contact routes. Every route requires an
// authenticated caller; /contacts/all additionally requires the admin role.
func (h *ContactsHandler) Register(mux *http.ServeMux, authn *middleware.Authenticator, limits middleware.RouteLimits) {
	member := middleware.RequireRoles(models.RoleUser, models.RoleAdmin)
	admin := middleware.RequireRoles(models.RoleAdmin)
	route := func(gate func(http.Handler) http.Handler, limit middleware.Wrapper, fn http.HandlerFunc) http.Handler {
		return authn.RequireUser(gate(limit(fn)))
	}

	mux.Handle("GET /api/contacts", route(member, limits.Read, h.handleList))
	mux.Handle("GET /api/contacts/all", route(admin, limits.Read, h.handleListAll))
	mux.Handle("GET /api/contacts/{id}", route(member, limits.Read, h.handleGet))
	mux.Handle("POST /api/contacts", route(member, limits.Write, h.handleCreate))
	mux.Handle("PUT /api/contacts/{id}", route(member, limits.Write, h.handleUpdate))
	mux.Handle("DELETE /api/contacts/{id}", route(member, limits.Write, h.handleDelete))
}

func (h *ContactsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	filter, err := parseContactFilter(r)
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	key := cache.Key(listNamespace, user.ID, filter)
	if contacts, ok := h.listings.Get(key); ok {
		respond.JSON(w, http.StatusOK, contacts)
		return
	}

	contacts, err := h.contacts.ListContacts(r.Context(), user.ID, filter)
	if err != nil {
		log.Printf("list contacts: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	h.listings.Set(user.ID, key, contacts)
	respond.JSON(w, http.StatusOK, contacts)
}

func (h *ContactsHandler) handleListAll(w http.ResponseWriter, r *http.Request) {
	filter, err := parseContactFilter(r)
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respond.Detail(w, http.StatusUnprocessableEntity, "user_id must be an integer")
			return
		}
		filter.UserID = userID
	}

	contacts, err := h.contacts.ListAllContacts(r.Context(), filter)
	if err != nil {
		log.Printf("list all contacts: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to list contacts")
		return
	}
	respond.JSON(w, http.StatusOK, contacts)
}

func (h *ContactsHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	contactID, err := pathID(r)
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, "contact id must be an integer")
		return
	}
	contact, err := h.contacts.ContactByID(r.Context(), user.ID, contactID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Detail(w, http.StatusNotFound, "Contact not found")
			return
		}
		log.Printf("get contact: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to fetch contact")
		return
	}
	respond.JSON(w, http.StatusOK, contact)
}

func (h *ContactsHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	req, err := decodeContact(r)
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	contact, err := h.contacts.CreateContact(r.Context(), models.Contact{
		UserID:      user.ID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Birthday:    req.Birthday,
		Description: req.Description,
	})
	if err != nil {
		if errors.Is(err, storage.ErrAlreadyExists) {
			respond.Detail(w, http.StatusConflict, "Contact already exists")
			return
		}
		log.Printf("create contact: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to create contact")
		return
	}
	h.listings.Invalidate(user.ID)
	respond.JSON(w, http.StatusCreated, contact)
}

func (h *ContactsHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	contactID, err := pathID(r)
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, "contact id must be an integer")
		return
	}
	req, err := decodeContact(r)
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	contact, err := h.contacts.UpdateContact(r.Context(), user.ID, models.Contact{
		ID:          contactID,
		FirstName:   req.FirstName,
		LastName:    req.LastName,
		Email:       req.Email,
		Phone:       req.Phone,
		Birthday:    req.Birthday,
		Description: req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			respond.Detail(w, http.StatusNotFound, "Contact not found")
		case errors.Is(err, storage.ErrAlreadyExists):
			respond.Detail(w, http.StatusConflict, "Contact already exists")
		default:
			log.Printf("update contact: %v", err)
			respond.Detail(w, http.StatusInternalServerError, "failed to update contact")
		}
		return
	}
	h.listings.Invalidate(user.ID)
	respond.JSON(w, http.StatusOK, contact)
}

func (h *ContactsHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFrom(r.Context())
	contactID, err := pathID(r)
	if err != nil {
		respond.Detail(w, http.StatusUnprocessableEntity, "contact id must be an integer")
		return
	}
	if err := h.contacts.DeleteContact(r.Context(), user.ID, contactID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			respond.Detail(w, http.StatusNotFound, "Contact not found")
			return
		}
		log.Printf("delete contact: %v", err)
		respond.Detail(w, http.StatusInternalServerError, "failed to delete contact")
		return
	}
	h.listings.Invalidate(user.ID)
	respond.NoContent(w)
}

func pathID(r *http.Request) (int64, error) {
	return strconv.ParseInt(r.PathValue("id"), 10, 64)
}

func decodeContact(r *http.Request) (dto.ContactRequest, error) {
	var req dto.ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return dto.ContactRequest{}, errors.New("invalid JSON payload")
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Phone == "" {
		return dto.ContactRequest{}, errors.New("first_name, last_name, email, and phone are required")
	}
	return req, nil
}

func parseContactFilter(r *http.Request) (storage.ContactFilter, error) {
	q := r.URL.Query()
	filter := storage.ContactFilter{
		Limit:    10,
		Email:    q.Get("email"),
		Fullname: q.Get("fullname"),
	}
	var err error
	if filter.Limit, err = queryInt(q.Get("limit"), 10); err != nil {
		return storage.ContactFilter{}, errors.New("limit must be an integer")
	}
	if filter.Offset, err = queryInt(q.Get("offset"), 0); err != nil {
		return storage.ContactFilter{}, errors.New("offset must be an integer")
	}
	if filter.DaysToBirthday, err = queryInt(q.Get("days_to_birthday"), 0); err != nil {
		return storage.ContactFilter{}, errors.New("days_to_birthday must be an integer")
	}
	if filter.DaysToBirthday < 0 || filter.DaysToBirthday > 365 {
		return storage.ContactFilter{}, fmt.Errorf("days_to_birthday must be between 0 and 365")
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return filter, nil
}

func queryInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	return strconv.Atoi(raw)
}

package handlers

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/olekhv/contactbook/internal/auth"
	"github.com/olekhv/contactbook/internal/cache"
	"github.com/olekhv/contactbook/internal/middleware"
	"github.com/olekhv/contactbook/internal/models"
	"github.com/olekhv/contactbook/internal/storage"
)

type fakeUserStore struct {
	mu    sync.Mutex
	seq   int64
	users map[string]models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]models.User)}
}

func (s *fakeUserStore) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Email]; ok {
		return models.User{}, storage.ErrAlreadyExists
	}
	s.seq++
	user.ID = s.seq
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	s.users[user.Email] = user
	return user, nil
}

func (s *fakeUserStore) UserByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return models.User{}, storage.ErrNotFound
	}
	return user, nil
}

func (s *fakeUserStore) UserByID(_ context.Context, id int64) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.ID == id {
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *fakeUserStore) UpdateRefreshToken(_ context.Context, userID int64, token *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, user := range s.users {
		if user.ID == userID {
			user.RefreshToken = token
			s.users[email] = user
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *fakeUserStore) ConfirmEmail(_ context.Context, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return storage.ErrNotFound
	}
	user.Confirmed = true
	s.users[email] = user
	return nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, email, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[email]
	if !ok {
		return storage.ErrNotFound
	}
	user.PasswordHash = passwordHash
	s.users[email] = user
	return nil
}

func (s *fakeUserStore) UpdateAvatar(_ context.Context, userID int64, url string) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for email, user := range s.users {
		if user.ID == userID {
			user.Avatar = url
			s.users[email] = user
			return user, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}

func (s *fakeUserStore) setRole(email, role string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := s.users[email]
	user.Role = role
	s.users[email] = user
}

type fakeContactStore struct {
	mu        sync.Mutex
	seq       int64
	contacts  map[int64]models.Contact
	listCalls int
}

func newFakeContactStore() *fakeContactStore {
	return &fakeContactStore{contacts: make(map[int64]models.Contact)}
}

func (s *fakeContactStore) CreateContact(_ context.Context, contact models.Contact) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.contacts {
		if existing.UserID == contact.UserID && existing.Email == contact.Email && existing.Phone == contact.Phone {
			return models.Contact{}, storage.ErrAlreadyExists
		}
	}
	s.seq++
	contact.ID = s.seq
	contact.CreatedAt = time.Now()
	contact.UpdatedAt = contact.CreatedAt
	s.contacts[contact.ID] = contact
	return contact, nil
}

func (s *fakeContactStore) ContactByID(_ context.Context, userID, contactID int64) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.contacts[contactID]
	if !ok || contact.UserID != userID {
		return models.Contact{}, storage.ErrNotFound
	}
	return contact, nil
}

func (s *fakeContactStore) ListContacts(_ context.Context, userID int64, f storage.ContactFilter) ([]models.Contact, error) {
	f.UserID = userID
	return s.list(f), nil
}

func (s *fakeContactStore) ListAllContacts(_ context.Context, f storage.ContactFilter) ([]models.Contact, error) {
	return s.list(f), nil
}

func (s *fakeContactStore) list(f storage.ContactFilter) []models.Contact {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listCalls++

	matched := []models.Contact{}
	for _, contact := range s.contacts {
		if f.UserID != 0 && contact.UserID != f.UserID {
			continue
		}
		if f.Email != "" && !strings.Contains(strings.ToLower(contact.Email), strings.ToLower(f.Email)) {
			continue
		}
		if f.Fullname != "" && !strings.Contains(strings.ToLower(contact.FullName()), strings.ToLower(f.Fullname)) {
			continue
		}
		if f.DaysToBirthday > 0 {
			if contact.Birthday == nil || !storage.BirthdayInWindow(*contact.Birthday, time.Now(), f.DaysToBirthday) {
				continue
			}
		}
		matched = append(matched, contact)
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ID < matched[j].ID })

	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return []models.Contact{}
		}
		matched = matched[f.Offset:]
	}
	limit := f.Limit
	if limit <= 0 {
		limit = 10
	}
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched
}

func (s *fakeContactStore) UpdateContact(_ context.Context, userID int64, contact models.Contact) (models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.contacts[contact.ID]
	if !ok || existing.UserID != userID {
		return models.Contact{}, storage.ErrNotFound
	}
	contact.UserID = existing.UserID
	contact.CreatedAt = existing.CreatedAt
	contact.UpdatedAt = time.Now()
	s.contacts[contact.ID] = contact
	return contact, nil
}

func (s *fakeContactStore) DeleteContact(_ context.Context, userID, contactID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	contact, ok := s.contacts[contactID]
	if !ok || contact.UserID != userID {
		return storage.ErrNotFound
	}
	delete(s.contacts, contactID)
	return nil
}

func (s *fakeContactStore) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

type fakeCodeStore struct {
	mu    sync.Mutex
	seq   int64
	ttl   time.Duration
	codes []models.TemporaryCode
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{ttl: 15 * time.Minute}
}

func (s *fakeCodeStore) CreateTempCode(_ context.Context, email, description string) (models.TemporaryCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	code := models.TemporaryCode{
		ID:          s.seq,
		Code:        fmt.Sprintf("%06d", s.seq),
		Description: description,
		UserEmail:   email,
		CreatedAt:   time.Now(),
		ExpiresAt:   time.Now().Add(s.ttl),
	}
	s.codes = append(s.codes, code)
	return code, nil
}

func (s *fakeCodeStore) ConsumeTempCode(_ context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(s.codes) - 1; i >= 0; i-- {
		stored := &s.codes[i]
		if stored.UserEmail != email || stored.Code != code {
			continue
		}
		if stored.UsedAt != nil {
			return storage.ErrCodeUsed
		}
		if !time.Now().Before(stored.ExpiresAt) {
			return storage.ErrCodeExpired
		}
		now := time.Now()
		stored.UsedAt = &now
		return nil
	}
	return storage.ErrCodeInvalid
}

func (s *fakeCodeStore) latest() models.TemporaryCode {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.codes) == 0 {
		return models.TemporaryCode{}
	}
	return s.codes[len(s.codes)-1]
}

func (s *fakeCodeStore) expireAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.codes {
		s.codes[i].ExpiresAt = time.Now().Add(-time.Minute)
	}
}

type fakeMailer struct {
	mu     sync.Mutex
	resets []string
}

func (m *fakeMailer) SendVerification(string, string, string) error { return nil }

func (m *fakeMailer) SendPasswordReset(email, _, code, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.resets = append(m.resets, email+":"+code)
	return nil
}

type fakeUploader struct{}

func (fakeUploader) UploadAvatar(_ context.Context, userID int64, _ io.Reader) (string, error) {
	return fmt.Sprintf("https://images.example.com/user_%d.png", userID), nil
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

type testEnv struct {
	ts       *httptest.Server
	users    *fakeUserStore
	contacts *fakeContactStore
	codes    *fakeCodeStore
	mailer   *fakeMailer
	tokens   *auth.TokenManager
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		users:    newFakeUserStore(),
		contacts: newFakeContactStore(),
		codes:    newFakeCodeStore(),
		mailer:   &fakeMailer{},
		tokens:   auth.NewTokenManager("test-secret", time.Hour, 24*time.Hour, 24*time.Hour, 15*time.Minute),
	}

	mux := http.NewServeMux()
	limits := middleware.NewRouteLimits(false)
	authn := middleware.NewAuthenticator(env.tokens, env.users)
	listings := cache.NewListings(1000, time.Minute)

	NewHealthHandler(fakePinger{}).Register(mux)
	NewEmailTrackHandler().Register(mux)
	NewAuthHandler(env.users, env.codes, env.tokens, env.mailer).Register(mux, limits)
	NewContactsHandler(env.contacts, listings).Register(mux, authn, limits)
	NewUsersHandler(env.users, fakeUploader{}).Register(mux, authn, limits)

	env.ts = httptest.NewServer(mux)
	t.Cleanup(env.ts.Close)
	return env
}

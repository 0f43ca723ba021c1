package users

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"serotonyl.ru/newsboard/internal/common"
	"serotonyl.ru/newsboard/internal/config"
	"serotonyl.ru/newsboard/internal/features/auth"
	"serotonyl.ru/newsboard/internal/features/comments"
	"serotonyl.ru/newsboard/internal/features/stories"
)

type memStore struct {
	mu    sync.Mutex
	users []User
}

func (m *memStore) Create(ctx context.Context, u *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.users {
		if x.Email == u.Email {
			return common.ErrEmailTaken
		}
		if x.Username == u.Username {
			return common.ErrUsernameTaken
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	m.users = append(m.users, *u)
	return nil
}

func (m *memStore) find(match func(User) bool) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (m *memStore) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return m.find(func(u User) bool { return u.ID == id })
}

func (m *memStore) GetByUsername(ctx context.Context, username string) (*User, error) {
	return m.find(func(u User) bool { return u.Username == username })
}

func (m *memStore) GetByLogin(ctx context.Context, login string) (*User, error) {
	return m.find(func(u User) bool { return u.Email == login || u.Username == login })
}

func (m *memStore) FindConflict(ctx context.Context, email, username string) (*User, error) {
	return m.find(func(u User) bool { return u.Email == email || u.Username == username })
}

type authored struct {
	stories  []stories.Story
	comments []comments.Comment
}

func (a authored) storyLister() storyFunc     { return func() []stories.Story { return a.stories } }
func (a authored) commentLister() commentFunc { return func() []comments.Comment { return a.comments } }

type storyFunc func() []stories.Story

func (f storyFunc) ByAuthor(ctx context.Context, _ uuid.UUID) ([]stories.Story, error) {
	return f(), nil
}

type commentFunc func() []comments.Comment

func (f commentFunc) ByAuthor(ctx context.Context, _ uuid.UUID) ([]comments.Comment, error) {
	return f(), nil
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:         "test-secret-0123456789",
		JWTTTL:            time.Hour,
		JWTIssuer:         "newsboard",
		UserStartingKarma: 1,
		PasswordMinLength: 6,
	}
}

func newTestService(store *memStore, a authored) *Service {
	cfg := testConfig()
	svc := NewService(store, a.storyLister(), a.commentLister(), auth.NewTokenIssuer(cfg), cfg)
	// Дешёвые параметры, чтобы тесты не ждали 64 MB Argon2
	svc.argon = auth.Argon2Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}
	return svc
}

func TestService_Register(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store, authored{})
	ctx := context.Background()

	user, token, err := svc.Register(ctx, RegisterInput{Name: "pg", Email: " PG@Example.com ", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.Equal(t, "pg@example.com", user.Email)
	assert.Equal(t, 1, user.Karma)
	require.NotNil(t, user.About)
	assert.Equal(t, "New member", *user.About)
	assert.NotEqual(t, "secret1", user.Password)
	assert.True(t, auth.VerifyPassword("secret1", user.Password))

	claims, err := auth.NewTokenIssuer(testConfig()).Parse(token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.ID)
	assert.Equal(t, "pg", claims.Username)

	_, _, err = svc.Register(ctx, RegisterInput{Name: "other", Email: "pg@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrEmailTaken)

	_, _, err = svc.Register(ctx, RegisterInput{Name: "pg", Email: "new@example.com", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrUsernameTaken)
}

func TestService_RegisterValidation(t *testing.T) {
	svc := newTestService(&memStore{}, authored{})

	tests := []struct {
		name string
		in   RegisterInput
		want error
	}{
		{"no name", RegisterInput{Email: "a@b.co", Password: "secret1"}, common.ErrMissingFields},
		{"blank email", RegisterInput{Name: "a", Email: "  ", Password: "secret1"}, common.ErrMissingFields},
		{"no password", RegisterInput{Name: "a", Email: "a@b.co"}, common.ErrMissingFields},
		{"short password", RegisterInput{Name: "a", Email: "a@b.co", Password: "12345"}, common.ErrPasswordTooShort},
		{"bad email", RegisterInput{Name: "a", Email: "not-an-email", Password: "secret1"}, common.ErrInvalidEmail},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.Register(context.Background(), tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestService_Login(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store, authored{})
	ctx := context.Background()

	registered, _, err := svc.Register(ctx, RegisterInput{Name: "pg", Email: "pg@example.com", Password: "secret1"})
	require.NoError(t, err)

	byEmail, token, err := svc.Login(ctx, LoginInput{Email: "PG@example.com", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byEmail.ID)
	assert.NotEmpty(t, token)

	byName, _, err := svc.Login(ctx, LoginInput{Email: "pg", Password: "secret1"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, byName.ID)

	_, _, err = svc.Login(ctx, LoginInput{Email: "pg", Password: "wrong-pass"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, LoginInput{Email: "ghost", Password: "secret1"})
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
}

func TestService_Profile(t *testing.T) {
	store := &memStore{}
	story := stories.Story{ID: uuid.New(), Title: "mine"}
	svc := newTestService(store, authored{stories: []stories.Story{story}})
	ctx := context.Background()

	user, _, err := svc.Register(ctx, RegisterInput{Name: "pg", Email: "pg@example.com", Password: "secret1"})
	require.NoError(t, err)

	byName, err := svc.Profile(ctx, "pg")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byName.ID)
	require.Len(t, byName.Stories, 1)
	assert.Equal(t, "mine", byName.Stories[0].Title)
	assert.NotNil(t, byName.Comments)
	assert.Empty(t, byName.Comments)

	byID, err := svc.Profile(ctx, user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "pg", byID.Username)

	_, err = svc.Profile(ctx, "nobody")
	assert.ErrorIs(t, err, common.ErrUserNotFound)

	_, err = svc.Profile(ctx, uuid.NewString())
	assert.ErrorIs(t, err, common.ErrUserNotFound)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	store := &memStore{}
	h := NewHandler(newTestService(store, authored{}))
	var current uuid.UUID

	r := gin.New()
	r.POST("/api/auth/register", h.Register)
	r.POST("/api/auth/login", h.Login)
	r.GET("/api/auth/me", func(c *gin.Context) { auth.SetUserID(c, current) }, h.Me)
	r.GET("/api/users/:userId", h.Profile)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := do(http.MethodPost, "/api/auth/register", `{"name":"pg","email":"pg@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	var reg struct {
		Message string          `json:"message"`
		Token   string          `json:"token"`
		User    json.RawMessage `json:"user"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reg))
	assert.Equal(t, "User registered successfully", reg.Message)
	assert.NotEmpty(t, reg.Token)
	assert.NotContains(t, string(reg.User), "password")
	assert.NotContains(t, string(reg.User), "argon2id")

	w = do(http.MethodPost, "/api/auth/register", `{"name":"pg2","email":"pg@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Email already exists"}`, w.Body.String())

	w = do(http.MethodPost, "/api/auth/register", `{"name":"pg","email":"x@example.com","password":"secret1"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.JSONEq(t, `{"error":"Username already exists"}`, w.Body.String())

	w = do(http.MethodPost, "/api/auth/register", `{"name":"a","email":"a@example.com","password":"123"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"Password must be at least 6 characters"}`, w.Body.String())

	w = do(http.MethodPost, "/api/auth/register", `{"name":"a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error":"All fields are required"}`, w.Body.String())

	w = do(http.MethodPost, "/api/auth/login", `{"email":"pg","password":"nope-nope"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"Invalid credentials"}`, w.Body.String())

	w = do(http.MethodPost, "/api/auth/login", `{"email":"pg@example.com","password":"secret1"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"message":"Login successful"`)

	current = store.users[0].ID
	w = do(http.MethodGet, "/api/auth/me", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"pg"`)

	current = uuid.New()
	w = do(http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(http.MethodGet, "/api/users/pg", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "pg@example.com")

	w = do(http.MethodGet, "/api/users/ghost", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"User not found"}`, w.Body.String())
}

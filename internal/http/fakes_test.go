package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"anniversary-api/internal/domain"
	"anniversary-api/internal/repository"
	"anniversary-api/internal/service"
)

type mockUserRepo struct {
	mu           sync.Mutex
	nextID       int64
	usersByID    map[int64]domain.User
	usersByEmail map[string]int64
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		usersByID:    make(map[int64]domain.User),
		usersByEmail: make(map[string]int64),
	}
}

func (m *mockUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.usersByEmail[user.Email]; exists {
		return domain.User{}, repository.ErrDuplicateEmail
	}
	m.nextID++
	user.ID = m.nextID
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return user, nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id int64) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.usersByID[id]
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return user, nil
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	m.mu.Lock()
	id, ok := m.usersByEmail[email]
	m.mu.Unlock()
	if !ok {
		return domain.User{}, repository.ErrNotFound
	}
	return m.GetByID(ctx, id)
}

func (m *mockUserRepo) UpsertFederated(_ context.Context, user domain.User) (domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	user.ID = m.nextID
	m.usersByID[user.ID] = user
	m.usersByEmail[user.Email] = user.ID
	return user, nil
}

// mockCategoryRepo aplica el mismo predicado (id, dueño) que el repositorio real.
type mockCategoryRepo struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]domain.Category
}

func newMockCategoryRepo() *mockCategoryRepo {
	return &mockCategoryRepo{items: make(map[int64]domain.Category)}
}

func (m *mockCategoryRepo) List(_ context.Context, ownerID int64) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Category, 0)
	for id := int64(1); id <= m.nextID; id++ {
		if c, ok := m.items[id]; ok && c.UserID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *mockCategoryRepo) Get(_ context.Context, ownerID, id int64) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.UserID != ownerID {
		return domain.Category{}, repository.ErrNotFound
	}
	return c, nil
}

func (m *mockCategoryRepo) Create(_ context.Context, ownerID int64, name string) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().UTC()
	c := domain.Category{ID: m.nextID, UserID: ownerID, Name: name, CreatedAt: now, UpdatedAt: now}
	m.items[c.ID] = c
	return c, nil
}

func (m *mockCategoryRepo) Update(_ context.Context, ownerID, id int64, name string) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.UserID != ownerID {
		return domain.Category{}, repository.ErrNotFound
	}
	c.Name = name
	c.UpdatedAt = time.Now().UTC()
	m.items[id] = c
	return c, nil
}

func (m *mockCategoryRepo) Delete(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.items[id]
	if !ok || c.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type mockAnniversaryRepo struct {
	mu         sync.Mutex
	nextID     int64
	items      map[int64]domain.Anniversary
	categories *mockCategoryRepo
}

func newMockAnniversaryRepo(categories *mockCategoryRepo) *mockAnniversaryRepo {
	return &mockAnniversaryRepo{items: make(map[int64]domain.Anniversary), categories: categories}
}

func (m *mockAnniversaryRepo) List(ctx context.Context, ownerID int64) ([]domain.Anniversary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.Anniversary, 0)
	for id := int64(1); id <= m.nextID; id++ {
		if a, ok := m.items[id]; ok && a.UserID == ownerID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *mockAnniversaryRepo) Get(_ context.Context, ownerID, id int64) (domain.Anniversary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.UserID != ownerID {
		return domain.Anniversary{}, repository.ErrNotFound
	}
	return a, nil
}

func (m *mockAnniversaryRepo) Create(ctx context.Context, ownerID int64, in repository.AnniversaryInput) (domain.Anniversary, error) {
	category, err := m.categories.Get(ctx, ownerID, in.CategoryID)
	if err != nil {
		return domain.Anniversary{}, repository.ErrCategoryNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a := domain.Anniversary{
		ID:          m.nextID,
		UserID:      ownerID,
		CategoryID:  in.CategoryID,
		Name:        in.Name,
		Date:        in.Date,
		Description: in.Description,
		Category:    &category,
	}
	m.items[a.ID] = a
	return a, nil
}

func (m *mockAnniversaryRepo) Update(ctx context.Context, ownerID, id int64, in repository.AnniversaryInput) (domain.Anniversary, error) {
	existing, err := m.Get(ctx, ownerID, id)
	if err != nil {
		return domain.Anniversary{}, err
	}
	category, err := m.categories.Get(ctx, ownerID, in.CategoryID)
	if err != nil {
		return domain.Anniversary{}, repository.ErrCategoryNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	existing.CategoryID = in.CategoryID
	existing.Name = in.Name
	existing.Date = in.Date
	existing.Description = in.Description
	existing.Category = &category
	m.items[id] = existing
	return existing, nil
}

func (m *mockAnniversaryRepo) Delete(_ context.Context, ownerID, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.items[id]
	if !ok || a.UserID != ownerID {
		return repository.ErrNotFound
	}
	delete(m.items, id)
	return nil
}

type testApp struct {
	router        *gin.Engine
	users         *mockUserRepo
	categories    *mockCategoryRepo
	anniversaries *mockAnniversaryRepo
	jwtSvc        *service.JWTService
}

func newTestApp() *testApp {
	gin.SetMode(gin.TestMode)
	users := newMockUserRepo()
	categories := newMockCategoryRepo()
	anniversaries := newMockAnniversaryRepo(categories)
	jwtSvc := service.NewJWTService("secret", time.Hour, "")
	userSvc := service.NewUserService(zap.NewNop(), users, jwtSvc, service.NewPasswordHasher(bcrypt.MinCost), nil, 8)

	router := NewRouter(
		zap.NewNop(),
		nil,
		nil,
		nil,
		jwtSvc,
		NewUserHandler(zap.NewNop(), userSvc),
		NewCategoryHandler(zap.NewNop(), categories),
		NewAnniversaryHandler(zap.NewNop(), anniversaries),
	)
	return &testApp{
		router:        router,
		users:         users,
		categories:    categories,
		anniversaries: anniversaries,
		jwtSvc:        jwtSvc,
	}
}

func performRequest(r http.Handler, method, path string, body any, token string) *httptest.ResponseRecorder {
	var payload []byte
	if body != nil {
		payload, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

type signinResponse struct {
	User  userResponse `json:"user"`
	Token string       `json:"token"`
}

// signupAndSignin registra un usuario y devuelve su token.
func (a *testApp) signupAndSignin(email string) (int64, string) {
	rec := performRequest(a.router, http.MethodPost, "/auth/signup", map[string]string{
		"name": "T", "email": email, "password": "password123",
	}, "")
	if rec.Code != http.StatusCreated {
		panic("signup failed: " + rec.Body.String())
	}
	rec = performRequest(a.router, http.MethodPost, "/auth/signin", map[string]string{
		"email": email, "password": "password123",
	}, "")
	var resp signinResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil || resp.Token == "" {
		panic("signin failed: " + rec.Body.String())
	}
	return resp.User.ID, resp.Token
}

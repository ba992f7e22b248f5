package http

import (
	"encoding/json"
	"net/http"
	"testing"

	"anniversary-api/internal/domain"
)

func TestCategories_CRUD(t *testing.T) {
	app := newTestApp()
	userID, token := app.signupAndSignin("cat@example.com")

	rec := performRequest(app.router, http.MethodPost, "/categories", map[string]any{"name": "Personal", "user_id": 999}, token)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode category: %v", err)
	}
	if created.UserID != userID {
		t.Fatalf("owner must come from the token, got %d", created.UserID)
	}

	path := "/categories/" + itoa(created.ID)
	rec = performRequest(app.router, http.MethodPut, path, map[string]string{"name": "Family"}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: expected 200, got %d", rec.Code)
	}

	rec = performRequest(app.router, http.MethodGet, "/categories", nil, token)
	var list []domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Family" {
		t.Fatalf("unexpected list %s", rec.Body.String())
	}

	rec = performRequest(app.router, http.MethodDelete, path, nil, token)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rec.Code)
	}
	rec = performRequest(app.router, http.MethodGet, path, nil, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("get after delete: expected 404, got %d", rec.Code)
	}
}

func TestCategories_CrossOwnerIsNotFound(t *testing.T) {
	app := newTestApp()
	_, ownerToken := app.signupAndSignin("owner@example.com")
	_, otherToken := app.signupAndSignin("other@example.com")

	rec := performRequest(app.router, http.MethodPost, "/categories", map[string]string{"name": "Private"}, ownerToken)
	var created domain.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode category: %v", err)
	}
	path := "/categories/" + itoa(created.ID)

	cases := []struct {
		method string
		body   any
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]string{"name": "Stolen"}},
		{http.MethodDelete, nil},
	}
	for _, tc := range cases {
		rec := performRequest(app.router, tc.method, path, tc.body, otherToken)
		if rec.Code != http.StatusNotFound {
			t.Fatalf("%s: expected 404, got %d", tc.method, rec.Code)
		}
		if rec.Body.String() != `{"error":"Category not found"}` {
			t.Fatalf("%s: unexpected body %s", tc.method, rec.Body.String())
		}
	}

	rec = performRequest(app.router, http.MethodGet, "/categories", nil, otherToken)
	if rec.Body.String() != "[]" {
		t.Fatalf("other user must see an empty list, got %s", rec.Body.String())
	}

	rec = performRequest(app.router, http.MethodGet, path, nil, ownerToken)
	if rec.Code != http.StatusOK {
		t.Fatalf("owner still reads the category, got %d", rec.Code)
	}
	var after domain.Category
	_ = json.Unmarshal(rec.Body.Bytes(), &after)
	if after.Name != "Private" {
		t.Fatalf("category was modified by another user: %+v", after)
	}
}

func TestCategories_InvalidInput(t *testing.T) {
	app := newTestApp()
	_, token := app.signupAndSignin("invalid@example.com")

	if rec := performRequest(app.router, http.MethodGet, "/categories/abc", nil, token); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", rec.Code)
	}
	rec := performRequest(app.router, http.MethodPost, "/categories", map[string]string{}, token)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing name, got %d", rec.Code)
	}
}

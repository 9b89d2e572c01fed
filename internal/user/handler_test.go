package user_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/testutil"
	"github.com/estatecrm/api/internal/user"
	"github.com/estatecrm/api/internal/utils"
	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

func seedUser(t *testing.T, db *gorm.DB, email, password, role string) *user.User {
	t.Helper()
	hash, err := utils.HashPassword(password)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	u := &user.User{
		FirstName:    "Test",
		LastName:     "User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		IsActive:     true,
	}
	if err := db.Create(u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func TestLoginIssuesToken(t *testing.T) {
	auth.SetSecret("test-secret")
	db := testutil.SetupTestDB(t)
	h := user.NewHandler(db)
	seedUser(t, db, "agent@example.com", "hunter22", auth.RoleEmployee)

	body, _ := json.Marshal(user.LoginRequest{Email: "agent@example.com", Password: "hunter22"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	claims, err := auth.ParseAndValidate(resp["token"])
	if err != nil {
		t.Fatalf("token invalid: %v", err)
	}
	if claims.Role != auth.RoleEmployee {
		t.Errorf("role claim = %q, want EMPLOYEE", claims.Role)
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	auth.SetSecret("test-secret")
	db := testutil.SetupTestDB(t)
	h := user.NewHandler(db)
	seedUser(t, db, "agent@example.com", "hunter22", auth.RoleEmployee)

	body, _ := json.Marshal(user.LoginRequest{Email: "agent@example.com", Password: "wrong"})
	req := httptest.NewRequest("POST", "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Login(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestResetPasswordIssuesTempCredential(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := user.NewHandler(db)
	u := seedUser(t, db, "agent@example.com", "hunter22", auth.RoleEmployee)

	req := httptest.NewRequest("POST", "/users/1/reset-password", nil)
	req = mux.SetURLVars(req, map[string]string{"id": fmt.Sprint(u.ID)})
	req = auth.WithActor(req, auth.Actor{ID: 99, Role: auth.RoleAdmin})
	rec := httptest.NewRecorder()
	h.ResetPassword(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	temp := resp["tempPassword"]
	if len(temp) != 12 {
		t.Fatalf("temp password %q, want 12 characters", temp)
	}

	var updated user.User
	if err := db.First(&updated, u.ID).Error; err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if !updated.MustResetPassword {
		t.Error("MustResetPassword not set")
	}
	if !utils.CheckPassword(updated.PasswordHash, temp) {
		t.Error("temp password does not match stored hash")
	}
	if utils.CheckPassword(updated.PasswordHash, "hunter22") {
		t.Error("old password still valid")
	}
}

func TestListHidesOtherUsersFromEmployees(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := user.NewHandler(db)
	me := seedUser(t, db, "me@example.com", "pw", auth.RoleEmployee)
	seedUser(t, db, "other@example.com", "pw", auth.RoleEmployee)

	req := httptest.NewRequest("GET", "/users", nil)
	req = auth.WithActor(req, auth.Actor{ID: me.ID, Role: auth.RoleEmployee})
	rec := httptest.NewRecorder()
	h.List(rec, req)

	var users []user.User
	if err := json.NewDecoder(rec.Body).Decode(&users); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(users) != 1 || users[0].Email != "me@example.com" {
		t.Errorf("employee sees %d users, want only self", len(users))
	}
}

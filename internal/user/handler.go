package user

import (
	"encoding/json"
	"net/http"

	"github.com/estatecrm/api/internal/apperror"
	"github.com/estatecrm/api/internal/auth"
	"github.com/estatecrm/api/internal/utils"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type createUserRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Avatar    string `json:"avatar"`
	Password  string `json:"password"`
	Role      string `json:"role"`
}

type changePasswordRequest struct {
	Password string `json:"password"`
}

// Handler wraps the DB and repository.
type Handler struct {
	DB         *gorm.DB
	Repository Repository
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{DB: db, Repository: NewRepository()}
}

// Login issues a JWT for valid credentials.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	u, err := h.Repository.FindByEmail(h.DB, req.Email)
	if err != nil || !u.IsActive {
		apperror.Write(w, apperror.AccessDenied("invalid credentials"))
		return
	}
	if !utils.CheckPassword(u.PasswordHash, req.Password) {
		apperror.Write(w, apperror.AccessDenied("invalid credentials"))
		return
	}

	token, err := auth.GenerateToken(u.ID, u.Role)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not issue token"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"token": token})
}

// Create registers a new user (ADMIN only, enforced by route middleware).
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	fields := map[string]string{}
	if req.FirstName == "" {
		fields["firstName"] = "required"
	}
	if req.Email == "" {
		fields["email"] = "required"
	}
	if !auth.ValidRole(req.Role) {
		fields["role"] = "must be ADMIN, MANAGER or EMPLOYEE"
	}
	if len(fields) > 0 {
		apperror.Write(w, apperror.ValidationFields("invalid user", fields))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not hash password"))
		return
	}

	u := User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Phone:        req.Phone,
		Avatar:       req.Avatar,
		PasswordHash: hash,
		Role:         req.Role,
		IsActive:     true,
	}
	if err := h.Repository.Save(h.DB, &u); err != nil {
		apperror.Write(w, apperror.Internal("could not save user"))
		return
	}
	utils.RespondJSON(w, http.StatusCreated, u)
}

// List returns all users for staff, or just the caller's own record.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)

	if actor.IsStaff() {
		users, err := h.Repository.ListAll(h.DB)
		if err != nil {
			apperror.Write(w, apperror.Internal("could not list users"))
			return
		}
		utils.RespondJSON(w, http.StatusOK, users)
		return
	}

	u, err := h.Repository.FindByID(h.DB, actor.ID)
	if err != nil {
		apperror.Write(w, apperror.NotFound("user not found"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, []User{*u})
}

// Get returns one user by id.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	if !actor.IsStaff() && id != actor.ID {
		apperror.Write(w, apperror.AccessDenied("access denied"))
		return
	}
	u, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		apperror.Write(w, apperror.NotFound("user not found"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, u)
}

// Update changes a user's profile fields.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	if !actor.IsStaff() && id != actor.ID {
		apperror.Write(w, apperror.AccessDenied("access denied"))
		return
	}

	var updated User
	if err := json.NewDecoder(r.Body).Decode(&updated); err != nil {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}
	if err := h.Repository.Update(h.DB, id, &updated); err != nil {
		apperror.Write(w, apperror.NotFound("user not found"))
		return
	}
	u, _ := h.Repository.FindByID(h.DB, id)
	utils.RespondJSON(w, http.StatusOK, u)
}

// Delete removes a user (ADMIN only, enforced by route middleware).
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	if err := h.Repository.Delete(h.DB, id); err != nil {
		apperror.Write(w, apperror.Internal("could not delete user"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ChangePassword sets a new password for the user.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	if actor.Role != auth.RoleAdmin && id != actor.ID {
		apperror.Write(w, apperror.AccessDenied("access denied"))
		return
	}

	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Password == "" {
		apperror.Write(w, apperror.Validation("invalid payload"))
		return
	}

	u, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		apperror.Write(w, apperror.NotFound("user not found"))
		return
	}
	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not hash password"))
		return
	}
	u.PasswordHash = hash
	u.MustResetPassword = false
	if err := h.Repository.Save(h.DB, u); err != nil {
		apperror.Write(w, apperror.Internal("could not save user"))
		return
	}
	w.WriteHeader(http.StatusOK)
}

// ResetPassword issues a temporary password and forces a change on the next
// login (ADMIN only, enforced by route middleware).
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	id, ok := utils.PathID(r, "id")
	if !ok {
		apperror.Write(w, apperror.Validation("invalid id"))
		return
	}
	u, err := h.Repository.FindByID(h.DB, id)
	if err != nil {
		apperror.Write(w, apperror.NotFound("user not found"))
		return
	}

	temp, err := utils.TempPassword()
	if err != nil {
		apperror.Write(w, apperror.Internal("could not generate password"))
		return
	}
	hash, err := utils.HashPassword(temp)
	if err != nil {
		apperror.Write(w, apperror.Internal("could not hash password"))
		return
	}
	u.PasswordHash = hash
	u.MustResetPassword = true
	if err := h.Repository.Save(h.DB, u); err != nil {
		apperror.Write(w, apperror.Internal("could not save user"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]string{"tempPassword": temp})
}

// Me returns the logged-in user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	actor := auth.ActorFrom(r)
	u, err := h.Repository.FindByID(h.DB, actor.ID)
	if err != nil {
		apperror.Write(w, apperror.NotFound("user not found"))
		return
	}
	utils.RespondJSON(w, http.StatusOK, u)
}

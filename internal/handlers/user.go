package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	log "github.com/sirupsen/logrus"

	"github.com/openddz/ddz-server/internal/auth"
	"github.com/openddz/ddz-server/internal/database"
	"github.com/openddz/ddz-server/internal/models"
)

// CreateUserHandler registers a permanent account.
func CreateUserHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account  string `json:"account"`
		Password string `json:"password"`
		Nickname string `json:"nickname"`
		Avatar   int    `json:"avatar"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid payload", http.StatusBadRequest)
		return
	}
	if req.Account == "" || req.Password == "" {
		http.Error(w, "account and password are required", http.StatusBadRequest)
		return
	}
	if req.Nickname == "" {
		req.Nickname = req.Account
	}

	user := models.User{
		Account:  req.Account,
		Password: req.Password,
		Nickname: req.Nickname,
		Avatar:   req.Avatar,
	}
	if err := database.CreateUser(r.Context(), &user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			http.Error(w, "account already exists", http.StatusConflict)
			return
		}
		log.Errorf("failed to create user: %v", err)
		http.Error(w, "error creating user", http.StatusInternalServerError)
		return
	}

	user.Password = ""
	writeJSON(w, http.StatusCreated, user)
}

type loginResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// LoginHandler authenticates an account and returns a session token, also set
// as an HttpOnly cookie.
func LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Account  string `json:"account"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request payload", http.StatusBadRequest)
		return
	}

	token, err := database.AuthenticateUser(r.Context(), req.Account, req.Password)
	if err != nil {
		log.Warnf("failed to authenticate %s: %v", req.Account, err)
		http.Error(w, "authentication failed", http.StatusForbidden)
		return
	}
	user, err := database.GetUserByAccount(r.Context(), req.Account)
	if err != nil {
		http.Error(w, "user lookup failed", http.StatusInternalServerError)
		return
	}
	user.Password = ""

	setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: user})
}

// GuestLoginHandler creates a throwaway account with starting gold and logs
// it in. Guests keep their account for as long as they keep the token.
func GuestLoginHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nickname string `json:"nickname"`
	}
	// Body is optional for guests.
	json.NewDecoder(r.Body).Decode(&req)

	account := "guest_" + strings.Split(uuid.NewString(), "-")[0]
	if req.Nickname == "" {
		req.Nickname = "Guest"
	}

	user := models.User{
		Account:  account,
		Nickname: req.Nickname,
		IsGuest:  true,
	}
	if err := database.CreateUser(r.Context(), &user); err != nil {
		log.Errorf("failed to create guest user: %v", err)
		http.Error(w, "error creating guest", http.StatusInternalServerError)
		return
	}

	token, err := auth.CreateJWT(user.Account)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to create token: %v", err), http.StatusInternalServerError)
		return
	}

	setAuthCookie(w, token)
	writeJSON(w, http.StatusOK, loginResponse{Token: token, User: &user})
}

func setAuthCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "auth_token",
		Value:    token,
		HttpOnly: true,
		Path:     "/",
		MaxAge:   auth.TokenExpireSec,
	})
}

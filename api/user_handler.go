package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"pairchat/auth"
	"pairchat/errors"
	"pairchat/services"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
	cookieMaxAge       = 7 * 24 * time.Hour
)

// UserHandler serves the /user routes: account lifecycle, profile and
// search.
type UserHandler struct {
	log          *slog.Logger
	authService  services.IAuthService
	userService  services.IUserService
	secureCookie bool
}

func NewUserHandler(log *slog.Logger, authService services.IAuthService, userService services.IUserService, secureCookie bool) *UserHandler {
	return &UserHandler{
		log:          log,
		authService:  authService,
		userService:  userService,
		secureCookie: secureCookie,
	}
}

func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.log, w, errors.Validation("All Fields are required."))
		return
	}

	user, err := h.authService.Signup(r.Context(), req)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	respond(w, http.StatusCreated, "Account created! Please log in.", map[string]any{"user": user})
}

func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.log, w, errors.Validation("Email and password are required"))
		return
	}

	user, pair, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondError(h.log, w, err)
		return
	}

	h.setTokenCookies(w, pair)
	respond(w, http.StatusOK, "Login successful!", map[string]any{
		"user":         user,
		"accessToken":  pair.AccessToken,
		"refreshToken": pair.RefreshToken,
	})
}

func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	if err := h.authService.Logout(r.Context(), user.ID); err != nil {
		respondError(h.log, w, err)
		return
	}
	h.clearTokenCookies(w)
	respond(w, http.StatusOK, "Logout successful", nil)
}

// RefreshToken accepts the refresh token from the httpOnly cookie or the
// request body and rotates the pair.
func (h *UserHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	token := ""
	if cookie, err := r.Cookie(refreshTokenCookie); err == nil {
		token = cookie.Value
	}
	if token == "" {
		var body struct {
			RefreshToken string `json:"refreshToken"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		token = body.RefreshToken
	}

	pair, err := h.authService.Refresh(r.Context(), token)
	if err != nil {
		respondError(h.log, w, err)
		return
	}

	h.setTokenCookies(w, pair)
	respond(w, http.StatusOK, "Access token refreshed", pair)
}

func (h *UserHandler) Check(w http.ResponseWriter, r *http.Request) {
	respond(w, http.StatusOK, "User Auth", map[string]any{"user": currentUser(r)})
}

func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req auth.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.log, w, errors.Validation("Full name and bio are required"))
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), currentUser(r).ID, req)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	respond(w, http.StatusOK, "Profile updated successfully", map[string]any{"user": user})
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Search(r.Context(), r.URL.Query().Get("query"), currentUser(r).ID)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	respond(w, http.StatusOK, "Users fetched", map[string]any{"users": users})
}

func (h *UserHandler) setTokenCookies(w http.ResponseWriter, pair services.TokenPair) {
	h.setCookie(w, accessTokenCookie, pair.AccessToken, cookieMaxAge)
	h.setCookie(w, refreshTokenCookie, pair.RefreshToken, cookieMaxAge)
}

func (h *UserHandler) clearTokenCookies(w http.ResponseWriter) {
	h.setCookie(w, accessTokenCookie, "", -time.Second)
	h.setCookie(w, refreshTokenCookie, "", -time.Second)
}

func (h *UserHandler) setCookie(w http.ResponseWriter, name, value string, maxAge time.Duration) {
	sameSite := http.SameSiteLaxMode
	if h.secureCookie {
		// Cross-site frontends need None, which browsers only accept with
		// the Secure attribute.
		sameSite = http.SameSiteNoneMode
	}
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: sameSite,
	})
}

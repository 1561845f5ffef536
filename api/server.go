// Package api exposes the REST surface and mounts the realtime gateway.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"pairchat/observability"
	"pairchat/realtime"
	"pairchat/services"
)

type Options struct {
	CORSOrigin   string
	SecureCookie bool
}

// NewRouter wires every route. The websocket endpoint lives outside the
// authenticated subrouters on purpose: its handshake carries the user id
// as a query parameter and anonymous connections are allowed.
//
// CORS wraps the router from outside so preflight requests are answered
// even when no route matches their method.
func NewRouter(
	log *slog.Logger,
	authService services.IAuthService,
	userService services.IUserService,
	chatService services.IChatService,
	gateway *realtime.Gateway,
	reporter *observability.Reporter,
	options Options,
) http.Handler {
	userHandler := NewUserHandler(log, authService, userService, options.SecureCookie)
	messageHandler := NewMessageHandler(log, chatService)
	authed := requireAuth(log, authService)

	router := mux.NewRouter()

	router.Handle("/ws", gateway)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.HandleFunc("/status", func(w http.ResponseWriter, r *http.Request) {
		status := reporter.Snapshot(len(gateway.Registry().OnlineUserIDs()))
		respond(w, http.StatusOK, "Server is live", status)
	}).Methods(http.MethodGet)

	user := apiRouter.PathPrefix("/user").Subrouter()
	user.HandleFunc("/signup", userHandler.Signup).Methods(http.MethodPost)
	user.HandleFunc("/login", userHandler.Login).Methods(http.MethodPost)
	user.HandleFunc("/refresh-token", userHandler.RefreshToken).Methods(http.MethodPost)

	userAuthed := apiRouter.PathPrefix("/user").Subrouter()
	userAuthed.Use(authed)
	userAuthed.HandleFunc("/logout", userHandler.Logout).Methods(http.MethodPost)
	userAuthed.HandleFunc("/check", userHandler.Check).Methods(http.MethodGet)
	userAuthed.HandleFunc("/update-profile", userHandler.UpdateProfile).Methods(http.MethodPatch)
	userAuthed.HandleFunc("/search", userHandler.Search).Methods(http.MethodGet)

	messages := apiRouter.PathPrefix("/messages").Subrouter()
	messages.Use(authed)
	messages.HandleFunc("/users", messageHandler.Contacts).Methods(http.MethodGet)
	// The double "messages" segment mirrors the public route table.
	messages.HandleFunc("/messages/{messageId}/read", messageHandler.MarkRead).Methods(http.MethodPut)
	messages.HandleFunc("/send/{userId}", messageHandler.Send).Methods(http.MethodPost)
	messages.HandleFunc("/{userId}", messageHandler.History).Methods(http.MethodGet)

	return corsMiddleware(options.CORSOrigin)(router)
}

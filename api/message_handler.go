package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"pairchat/auth"
	"pairchat/errors"
	"pairchat/services"
)

// MessageHandler serves the /messages routes.
type MessageHandler struct {
	log         *slog.Logger
	chatService services.IChatService
}

func NewMessageHandler(log *slog.Logger, chatService services.IChatService) *MessageHandler {
	return &MessageHandler{log: log, chatService: chatService}
}

// Contacts lists every conversation counterpart with unseen counts.
func (h *MessageHandler) Contacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.chatService.ListContacts(r.Context(), currentUser(r).ID)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	respond(w, http.StatusOK, "Users fetched successfully", map[string]any{"users": contacts})
}

// History returns the ordered conversation with the counterpart and marks
// their messages read as a side effect.
func (h *MessageHandler) History(w http.ResponseWriter, r *http.Request) {
	counterpartID := mux.Vars(r)["userId"]
	messages, err := h.chatService.ListMessages(r.Context(), currentUser(r).ID, counterpartID)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	respond(w, http.StatusOK, "Messages fetched successfully", messages)
}

func (h *MessageHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	if err := h.chatService.MarkRead(r.Context(), mux.Vars(r)["messageId"]); err != nil {
		respondError(h.log, w, err)
		return
	}
	respond(w, http.StatusOK, "Message marked as read", nil)
}

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req auth.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(h.log, w, errors.Validation("Message text or image is required"))
		return
	}

	message, err := h.chatService.Send(r.Context(), currentUser(r), mux.Vars(r)["userId"], req)
	if err != nil {
		respondError(h.log, w, err)
		return
	}
	respond(w, http.StatusCreated, "Message sent successfully", message)
}

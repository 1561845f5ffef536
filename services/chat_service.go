//go:generate go run go.uber.org/mock/mockgen -source=chat_service.go -destination=../mocks/mock_chat_service.go -package=mocks
package services

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"pairchat/auth"
	"pairchat/domain"
	"pairchat/errors"
	"pairchat/media"
	"pairchat/moderation"
	"pairchat/repositories"
)

// IPusher is the realtime gateway seam: after a message is durably
// persisted it is offered to the receiver's live channels. Fan-out
// never fails from the caller's point of view.
type IPusher interface {
	PushMessage(message domain.Message, sender domain.PublicProfile)
}

type IChatService interface {
	ListContacts(ctx context.Context, userID string) ([]domain.Contact, error)
	ListMessages(ctx context.Context, userID, counterpartID string) ([]domain.Message, error)
	MarkRead(ctx context.Context, messageID string) error
	Send(ctx context.Context, sender domain.User, receiverID string, req auth.SendMessageRequest) (domain.Message, error)
}

type ChatService struct {
	messages  repositories.IMessageRepository
	users     repositories.IUserRepository
	media     media.IStore
	pusher    IPusher
	moderator *moderation.Moderator // nil disables masking
}

func NewChatService(
	messages repositories.IMessageRepository,
	users repositories.IUserRepository,
	mediaStore media.IStore,
	pusher IPusher,
	moderator *moderation.Moderator,
) IChatService {
	return &ChatService{
		messages:  messages,
		users:     users,
		media:     mediaStore,
		pusher:    pusher,
		moderator: moderator,
	}
}

// ListContacts aggregates every user who exchanged at least one message
// with userID, annotated with how many of their messages are still unread.
func (s *ChatService) ListContacts(ctx context.Context, userID string) ([]domain.Contact, error) {
	counterpartIDs, err := s.messages.Counterparts(userID)
	if err != nil {
		return nil, err
	}

	users, err := s.users.GetByIDs(counterpartIDs)
	if err != nil {
		return nil, err
	}

	contacts := make([]domain.Contact, 0, len(users))
	for _, user := range users {
		unseen, err := s.messages.CountUnread(user.ID, userID)
		if err != nil {
			return nil, err
		}
		contacts = append(contacts, domain.Contact{
			PublicProfile:  user.Public(),
			UnseenMessages: unseen,
		})
	}
	return contacts, nil
}

// ListMessages returns the ascending history between the two users.
// Opening the conversation is the read receipt: every message from the
// counterpart is marked read first, so the returned page already reflects
// it.
func (s *ChatService) ListMessages(ctx context.Context, userID, counterpartID string) ([]domain.Message, error) {
	if _, err := s.messages.MarkConversationRead(counterpartID, userID); err != nil {
		return nil, err
	}
	messages, err := s.messages.ListBetween(userID, counterpartID)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []domain.Message{}
	}
	return messages, nil
}

// MarkRead flips a single message's read flag.
func (s *ChatService) MarkRead(ctx context.Context, messageID string) error {
	id, err := uuid.Parse(messageID)
	if err != nil {
		return errors.NotFound("Message not found")
	}
	return s.messages.MarkRead(id)
}

// Send validates, uploads the image when present, persists the message and
// only then fans it out. Upload failure surfaces to the caller and nothing
// is persisted; fan-out failure is silent since the store already holds
// the record.
func (s *ChatService) Send(ctx context.Context, sender domain.User, receiverID string, req auth.SendMessageRequest) (domain.Message, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" && req.Image == "" {
		return domain.Message{}, errors.Validation("Message text or image is required")
	}
	if err := auth.ValidateStruct(req); err != nil {
		return domain.Message{}, err
	}

	receiver, err := s.users.GetByID(receiverID)
	if err != nil {
		if errors.Is(err, errors.KindNotFound) {
			return domain.Message{}, errors.NotFound("Receiver not found")
		}
		return domain.Message{}, err
	}

	content := domain.Content{Text: s.moderator.Censor(text)}
	if req.Image != "" {
		// The persisted record needs the final media URL, so the upload
		// must complete before the store write begins.
		url, err := s.media.Upload(ctx, []byte(req.Image))
		if err != nil {
			return domain.Message{}, err
		}
		content.Image = url
	}

	message := domain.Message{
		ID:        uuid.New(),
		Sender:    sender.ID,
		Receiver:  receiver.ID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.messages.Store(message); err != nil {
		return domain.Message{}, err
	}

	s.pusher.PushMessage(message, sender.Public())
	return message, nil
}

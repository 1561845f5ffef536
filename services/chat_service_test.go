package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pairchat/auth"
	"pairchat/domain"
	"pairchat/errors"
	"pairchat/mocks"
	"pairchat/moderation"
	"pairchat/services"
)

type chatFixture struct {
	messages *mocks.MockIMessageRepository
	users    *mocks.MockIUserRepository
	media    *mocks.MockIStore
	pusher   *mocks.MockIPusher
}

func newChatFixture(t *testing.T, moderator *moderation.Moderator) (services.IChatService, chatFixture) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fixture := chatFixture{
		messages: mocks.NewMockIMessageRepository(ctrl),
		users:    mocks.NewMockIUserRepository(ctrl),
		media:    mocks.NewMockIStore(ctrl),
		pusher:   mocks.NewMockIPusher(ctrl),
	}
	service := services.NewChatService(fixture.messages, fixture.users, fixture.media, fixture.pusher, moderator)
	return service, fixture
}

func TestChatService_SendPersistsThenPushes(t *testing.T) {
	req := require.New(t)
	service, fixture := newChatFixture(t, nil)
	sender := domain.User{ID: "alice", FullName: "Alice"}
	receiver := domain.User{ID: "bob", FullName: "Bob"}

	// Given the receiver exists
	fixture.users.EXPECT().GetByID("bob").Return(receiver, nil)
	var stored domain.Message
	fixture.messages.EXPECT().Store(gomock.Any()).DoAndReturn(func(message domain.Message) error {
		stored = message
		return nil
	})
	// Then the pushed message is exactly the persisted one
	fixture.pusher.EXPECT().PushMessage(gomock.Any(), sender.Public()).Do(
		func(message domain.Message, _ domain.PublicProfile) {
			req.Equal(stored, message)
		})

	// When alice sends a text message
	message, err := service.Send(context.Background(), sender, "bob", auth.SendMessageRequest{Text: "  hello  "})
	req.NoError(err)
	req.Equal("hello", message.Content.Text)
	req.Equal("alice", message.Sender)
	req.Equal("bob", message.Receiver)
	req.False(message.IsRead)
	req.NotEqual(uuid.Nil, message.ID)
}

func TestChatService_SendRequiresTextOrImage(t *testing.T) {
	req := require.New(t)
	service, _ := newChatFixture(t, nil)

	_, err := service.Send(context.Background(), domain.User{ID: "alice"}, "bob",
		auth.SendMessageRequest{Text: "   "})
	req.True(errors.Is(err, errors.KindValidation))
}

func TestChatService_SendImageOnly(t *testing.T) {
	req := require.New(t)
	service, fixture := newChatFixture(t, nil)
	sender := domain.User{ID: "alice"}

	fixture.users.EXPECT().GetByID("bob").Return(domain.User{ID: "bob"}, nil)
	fixture.media.EXPECT().Upload(gomock.Any(), []byte("raw-image")).Return("http://cdn/img.png", nil)
	fixture.messages.EXPECT().Store(gomock.Any()).Return(nil)
	fixture.pusher.EXPECT().PushMessage(gomock.Any(), gomock.Any())

	message, err := service.Send(context.Background(), sender, "bob",
		auth.SendMessageRequest{Image: "raw-image"})
	req.NoError(err)
	req.Empty(message.Content.Text)
	req.Equal("http://cdn/img.png", message.Content.Image)
}

func TestChatService_SendUploadFailureIsNotPersisted(t *testing.T) {
	req := require.New(t)
	service, fixture := newChatFixture(t, nil)

	fixture.users.EXPECT().GetByID("bob").Return(domain.User{ID: "bob"}, nil)
	fixture.media.EXPECT().Upload(gomock.Any(), gomock.Any()).
		Return("", errors.Upstream("Failed to upload image", nil))
	// No Store, no PushMessage expectations: neither may happen

	_, err := service.Send(context.Background(), domain.User{ID: "alice"}, "bob",
		auth.SendMessageRequest{Text: "hi", Image: "raw"})
	req.True(errors.Is(err, errors.KindUpstream))
}

func TestChatService_SendUnknownReceiver(t *testing.T) {
	req := require.New(t)
	service, fixture := newChatFixture(t, nil)

	fixture.users.EXPECT().GetByID("ghost").Return(domain.User{}, errors.NotFound("user not found"))

	_, err := service.Send(context.Background(), domain.User{ID: "alice"}, "ghost",
		auth.SendMessageRequest{Text: "hi"})
	req.True(errors.Is(err, errors.KindNotFound))
	req.Equal("Receiver not found", errors.MessageOf(err))
}

func TestChatService_SendAppliesModeration(t *testing.T) {
	req := require.New(t)
	moderator, err := moderation.NewModerator([]string{"darn"}, '*')
	req.NoError(err)
	service, fixture := newChatFixture(t, moderator)

	fixture.users.EXPECT().GetByID("bob").Return(domain.User{ID: "bob"}, nil)
	fixture.messages.EXPECT().Store(gomock.Any()).Return(nil)
	fixture.pusher.EXPECT().PushMessage(gomock.Any(), gomock.Any())

	message, err := service.Send(context.Background(), domain.User{ID: "alice"}, "bob",
		auth.SendMessageRequest{Text: "well darn it"})
	req.NoError(err)
	req.Equal("well **** it", message.Content.Text)
}

func TestChatService_ListMessagesMarksReadFirst(t *testing.T) {
	req := require.New(t)
	service, fixture := newChatFixture(t, nil)
	history := []domain.Message{{ID: uuid.New(), Sender: "bob", Receiver: "alice", IsRead: true}}

	// Opening the conversation flips bob's unread messages before listing
	gomock.InOrder(
		fixture.messages.EXPECT().MarkConversationRead("bob", "alice").Return(1, nil),
		fixture.messages.EXPECT().ListBetween("alice", "bob").Return(history, nil),
	)

	messages, err := service.ListMessages(context.Background(), "alice", "bob")
	req.NoError(err)
	req.Equal(history, messages)
}

func TestChatService_ListMessagesEmptyConversation(t *testing.T) {
	req := require.New(t)
	service, fixture := newChatFixture(t, nil)

	fixture.messages.EXPECT().MarkConversationRead("bob", "alice").Return(0, nil)
	fixture.messages.EXPECT().ListBetween("alice", "bob").Return(nil, nil)

	messages, err := service.ListMessages(context.Background(), "alice", "bob")
	req.NoError(err)
	req.NotNil(messages)
	req.Empty(messages)
}

func TestChatService_ListContacts(t *testing.T) {
	req := require.New(t)
	service, fixture := newChatFixture(t, nil)
	bob := domain.User{ID: "bob", FullName: "Bob"}
	carol := domain.User{ID: "carol", FullName: "Carol"}

	fixture.messages.EXPECT().Counterparts("alice").Return([]string{"bob", "carol"}, nil)
	fixture.users.EXPECT().GetByIDs([]string{"bob", "carol"}).Return([]domain.User{bob, carol}, nil)
	fixture.messages.EXPECT().CountUnread("bob", "alice").Return(3, nil)
	fixture.messages.EXPECT().CountUnread("carol", "alice").Return(0, nil)

	contacts, err := service.ListContacts(context.Background(), "alice")
	req.NoError(err)
	req.Len(contacts, 2)
	req.Equal("bob", contacts[0].ID)
	req.Equal(3, contacts[0].UnseenMessages)
	req.Equal("carol", contacts[1].ID)
	req.Zero(contacts[1].UnseenMessages)
}

func TestChatService_MarkReadBadID(t *testing.T) {
	req := require.New(t)
	service, _ := newChatFixture(t, nil)

	err := service.MarkRead(context.Background(), "not-a-uuid")
	req.True(errors.Is(err, errors.KindNotFound))
}

func TestChatService_MarkRead(t *testing.T) {
	req := require.New(t)
	service, fixture := newChatFixture(t, nil)
	id := uuid.New()

	fixture.messages.EXPECT().MarkRead(id).Return(nil)

	req.NoError(service.MarkRead(context.Background(), id.String()))
}

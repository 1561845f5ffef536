// Package domain contains core concepts of the chat system.
// This file defines the realtime event envelope pushed over live channels.
package domain

// Event names pushed from server to client.
const (
	EventOnlineUsers   = "getOnlineUsers"
	EventNewMessage    = "newMessage"
	EventAddToUserList = "addToUserList"
)

// Event is the JSON frame written to a live channel.
type Event struct {
	Name string `json:"event"`
	Data any    `json:"data"`
}

func NewOnlineUsersEvent(userIDs []string) Event {
	// Never marshal a nil slice: clients expect an array.
	if userIDs == nil {
		userIDs = []string{}
	}
	return Event{Name: EventOnlineUsers, Data: userIDs}
}

func NewMessageEvent(message Message) Event {
	return Event{Name: EventNewMessage, Data: message}
}

func NewAddToUserListEvent(profile PublicProfile) Event {
	return Event{Name: EventAddToUserList, Data: profile}
}

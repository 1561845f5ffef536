// Package domain contains core concepts of the chat system.
// This file defines User entities and their public projection.
// No storage, network, or UI logic should be added here.
package domain

import "time"

// User is the full account record. PasswordHash and RefreshToken
// never leave the server process.
type User struct {
	ID           string    `json:"_id"`
	Email        string    `json:"email"`
	FullName     string    `json:"fullName"`
	Bio          string    `json:"bio"`
	ProfilePic   string    `json:"profilePic"`
	PasswordHash string    `json:"-"`
	RefreshToken string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicProfile is the subset of User safe to push to other clients,
// e.g. in the addToUserList event.
type PublicProfile struct {
	ID         string `json:"_id"`
	FullName   string `json:"fullName"`
	ProfilePic string `json:"profilePic"`
	Bio        string `json:"bio"`
}

func (u User) Public() PublicProfile {
	return PublicProfile{
		ID:         u.ID,
		FullName:   u.FullName,
		ProfilePic: u.ProfilePic,
		Bio:        u.Bio,
	}
}

// Contact is a conversation counterpart annotated with the number of
// messages they sent that the current user has not read yet.
type Contact struct {
	PublicProfile
	UnseenMessages int `json:"unseenMessages"`
}

package user

import (
	"cmp"
	"slices"
	"time"
)

// User is a user record returned by the remote API.
type User struct {
	ID              string    `json:"id"`
	Login           string    `json:"login"`
	DisplayName     string    `json:"display_name"`
	Type            string    `json:"type"`
	BroadcasterType string    `json:"broadcaster_type"`
	Description     string    `json:"description"`
	ProfileImageURL string    `json:"profile_image_url"`
	OfflineImageURL string    `json:"offline_image_url"`
	Email           string    `json:"email,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// SortByIDs orders users to follow ids. Users whose ID is not in ids go last,
// in their original relative order.
func SortByIDs(users []*User, ids []string) {
	pos := make(map[string]int, len(ids))
	for i, id := range ids {
		if _, ok := pos[id]; !ok {
			pos[id] = i
		}
	}

	rank := func(u *User) int {
		if p, ok := pos[u.ID]; ok {
			return p
		}
		return len(ids)
	}

	slices.SortStableFunc(users, func(a, b *User) int {
		return cmp.Compare(rank(a), rank(b))
	})
}

package application

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// AvatarURL resolves the displayable avatar link for a user. Responses carry
// a URL reference instead of image bytes.
//
// A user with both a stored avatar and a username gets a link into the web
// app; everyone else falls back to a deterministic gravatar-style URL derived
// from the email address.
func AvatarURL(webAppURL string, avatar, username *string, email string) string {
	if avatar == nil || *avatar == "" || username == nil || *username == "" {
		return defaultAvatar(email)
	}
	return strings.TrimSuffix(webAppURL, "/") + "/" + *username + "/avatar.png"
}

func defaultAvatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?s=160&d=mp&r=g", sum)
}

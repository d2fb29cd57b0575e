package auth

import (
	"crypto/md5"
	"fmt"
	"strings"
)

// GravatarURL returns the default avatar for a new account, derived from
// the email per the Gravatar convention.
func GravatarURL(email string) string {
	normalized := strings.ToLower(strings.TrimSpace(email))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%x?d=identicon", md5.Sum([]byte(normalized)))
}

package models

// User is the authenticated profile returned by /auth/login. It is
// persisted as-is so a restart can restore the session.
type User struct {
	ID          int    `json:"id"`
	Username    string `json:"username"`
	AccessToken string `json:"access_token"`
}

// Valid reports whether the profile carries enough to act as a session
func (u User) Valid() bool {
	return u.Username != "" && u.AccessToken != ""
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type VersionInfo struct {
	Version string `json:"version"`
}

package domain

// User is the display identity returned by the login endpoint.
type User struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Session is the admin credential plus who it belongs to. User is set only
// when Token is.
type Session struct {
	Token string `json:"token"`
	User  *User  `json:"user,omitempty"`
}

func (s Session) Authenticated() bool {
	return s.Token != ""
}

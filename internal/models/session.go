package models

// Session identifies who is acting. It is built per request from a verified
// identity token and the matching profile, and passed explicitly to every
// service call.
type Session struct {
	AuthUID     string
	Email       string
	DisplayName string
	// Profile is nil until the user has initialized a profile.
	Profile *User
}

// ActorID returns the profile id, or the identity UID when no profile exists yet.
// Profiles are keyed by identity UID, so both forms name the same actor.
func (s *Session) ActorID() string {
	if s == nil {
		return ""
	}
	if s.Profile != nil {
		return s.Profile.ID
	}
	return s.AuthUID
}

// ActorName returns the display name snapshot used for attribution.
func (s *Session) ActorName() string {
	if s == nil {
		return ""
	}
	if s.Profile != nil && s.Profile.Name != "" {
		return s.Profile.Name
	}
	if s.DisplayName != "" {
		return s.DisplayName
	}
	return s.Email
}

// IsAdmin reports whether the session belongs to an active administrator.
func (s *Session) IsAdmin() bool {
	return s != nil && s.Profile != nil && s.Profile.IsAdmin()
}

// Authenticated reports whether the session carries a verified identity.
func (s *Session) Authenticated() bool {
	return s != nil && s.AuthUID != ""
}

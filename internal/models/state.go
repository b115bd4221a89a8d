package models

// State is the live session value: either no user or the signed-in account.
type State struct {
	User *UserRecord
}

// Unauthenticated is the signed-out State.
var Unauthenticated = State{}

// Authenticated returns a State for u. The record is copied so later
// changes to u cannot leak into published states.
func Authenticated(u UserRecord) State {
	return State{User: &u}
}

func (s State) LoggedIn() bool {
	return s.User != nil
}

// Clone returns a State that shares no memory with s.
func (s State) Clone() State {
	if s.User == nil {
		return State{}
	}
	return Authenticated(*s.User)
}

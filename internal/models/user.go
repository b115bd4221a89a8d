// Package models defines the account records persisted by the credential
// store and the session value observed by clients.
package models

import "maps"

// UserRecord is one registered account. ID and Email never change after
// registration; PasswordHash never holds the raw password.
type UserRecord struct {
	ID           string `json:"id"`
	Email        string `json:"email"`
	Username     string `json:"username"`
	PasswordHash string `json:"passwordHash"`
}

// Public returns a copy without the password hash, for sending to clients.
func (u UserRecord) Public() UserRecord {
	u.PasswordHash = ""
	return u
}

// Registry maps email to account. Emails compare exactly as stored.
type Registry map[string]UserRecord

// Clone returns an independent copy; a nil registry clones to an empty one.
func (r Registry) Clone() Registry {
	out := make(Registry, len(r))
	maps.Copy(out, r)
	return out
}

// HasID reports whether any account already uses id.
func (r Registry) HasID(id string) bool {
	for _, u := range r {
		if u.ID == id {
			return true
		}
	}
	return false
}

// Lookup returns the account stored under email. Entries without an id or
// filed under a key other than their own email are never returned; they
// stay in the registry untouched.
func (r Registry) Lookup(email string) (UserRecord, bool) {
	u, ok := r[email]
	if !ok || !u.usableAt(email) {
		return UserRecord{}, false
	}
	return u, true
}

// Malformed lists the keys whose entries Lookup refuses.
func (r Registry) Malformed() []string {
	var keys []string
	for k, u := range r {
		if !u.usableAt(k) {
			keys = append(keys, k)
		}
	}
	return keys
}

func (u UserRecord) usableAt(key string) bool {
	return u.ID != "" && u.Email == key
}

// Resolve returns the registry's copy of u if u still names a registered
// account: same email and same id.
func (r Registry) Resolve(u *UserRecord) (*UserRecord, bool) {
	if u == nil {
		return nil, false
	}
	found, ok := r.Lookup(u.Email)
	if !ok || found.ID != u.ID {
		return nil, false
	}
	return &found, true
}

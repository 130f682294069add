// Package relay implements the anonymous message relay bot.
package relay

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

// User is a registered relay participant.
type User struct {
	// ChatID is where messages addressed to the user are delivered.
	ChatID int64
	UserID int64
	// Handle is the Telegram username without "@"; may be empty.
	Handle    string
	FirstName string
	LastName  string
	LastSeen  time.Time
}

// Directory maps user ids and handles to registered users.
// Records are keyed by user id with a secondary lower-cased handle index,
// so every spelling of a handle resolves to the same record.
type Directory struct {
	mu       sync.RWMutex
	byID     map[int64]User
	byHandle map[string]int64
}

// NewDirectory returns an empty Directory.
func NewDirectory() *Directory {
	return &Directory{
		byID:     make(map[int64]User),
		byHandle: make(map[string]int64),
	}
}

func handleKey(handle string) string {
	return strings.ToLower(strings.TrimLeft(strings.TrimSpace(handle), "@"))
}

// Register stores u, replacing any previous record for the same user id.
// A handle the user no longer has stops resolving.
func (d *Directory) Register(u User) {
	u.Handle = strings.TrimLeft(strings.TrimSpace(u.Handle), "@")

	d.mu.Lock()
	defer d.mu.Unlock()
	if prev, ok := d.byID[u.UserID]; ok {
		if old := handleKey(prev.Handle); old != "" && old != handleKey(u.Handle) && d.byHandle[old] == u.UserID {
			delete(d.byHandle, old)
		}
	}
	d.byID[u.UserID] = u
	if key := handleKey(u.Handle); key != "" {
		d.byHandle[key] = u.UserID
	}
}

// Lookup resolves "@Handle", "handle", "@handle" or a numeric user id.
func (d *Directory) Lookup(identifier string) (User, bool) {
	key := handleKey(identifier)
	if key == "" {
		return User{}, false
	}

	d.mu.RLock()
	defer d.mu.RUnlock()
	if id, ok := d.byHandle[key]; ok {
		u, found := d.byID[id]
		return u, found
	}
	if isDigits(key) {
		if id, err := strconv.ParseInt(key, 10, 64); err == nil {
			u, ok := d.byID[id]
			return u, ok
		}
	}
	return User{}, false
}

// Touch updates LastSeen of a registered user and reports whether one exists.
func (d *Directory) Touch(userID int64, at time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.byID[userID]
	if !ok {
		return false
	}
	u.LastSeen = at
	d.byID[userID] = u
	return true
}

// Len reports the number of registered users.
func (d *Directory) Len() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.byID)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

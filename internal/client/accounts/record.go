package accounts

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/foodfinder/internal/common"
)

// Record is one cached identity. Empty strings mean "unknown".
type Record struct {
	UserID         string    `json:"userId"`
	Email          string    `json:"email"`
	FullName       string    `json:"fullName,omitempty"`
	UserType       string    `json:"userType,omitempty"`
	Username       string    `json:"username,omitempty"`
	RefreshToken   string    `json:"refreshToken,omitempty"`
	StoredPassword string    `json:"storedPassword,omitempty"`
	LastUsedAt     time.Time `json:"lastUsedAt"`
}

// DisplayName is the name shown in account lists.
func (r Record) DisplayName() string {
	if r.FullName != "" {
		return r.FullName
	}
	return "User"
}

// Handle is the @username shown under the display name.
func (r Record) Handle() string {
	if r.Username != "" {
		return "@" + r.Username
	}
	return "@" + common.EmailLocalPart(r.Email)
}

// Initials returns up to two upper-case initials of the full name.
func (r Record) Initials() string {
	var b strings.Builder
	n := 0
	for _, word := range strings.Fields(r.FullName) {
		b.WriteString(strings.ToUpper(string([]rune(word)[:1])))
		if n++; n == 2 {
			break
		}
	}
	if n == 0 {
		return "?"
	}
	return b.String()
}

// Patch lists the fields an upsert may set. A nil or empty field leaves the
// stored value untouched.
type Patch struct {
	UserID         *string
	FullName       *string
	UserType       *string
	Username       *string
	RefreshToken   *string
	StoredPassword *string
}

// Str is a helper for building Patch literals.
func Str(s string) *string {
	return &s
}

func (r *Record) apply(p Patch) {
	set := func(dst *string, v *string) {
		if v != nil && *v != "" {
			*dst = *v
		}
	}
	set(&r.UserID, p.UserID)
	set(&r.FullName, p.FullName)
	set(&r.UserType, p.UserType)
	set(&r.Username, p.Username)
	set(&r.RefreshToken, p.RefreshToken)
	set(&r.StoredPassword, p.StoredPassword)

	if r.Username == "" {
		r.Username = common.EmailLocalPart(r.Email)
	}
}

// fillFrom copies fields that are empty in r from other. Used when stale
// duplicates of the same email are collapsed.
func (r *Record) fillFrom(other Record) {
	fill := func(dst *string, v string) {
		if *dst == "" {
			*dst = v
		}
	}
	fill(&r.UserID, other.UserID)
	fill(&r.FullName, other.FullName)
	fill(&r.UserType, other.UserType)
	fill(&r.Username, other.Username)
	fill(&r.RefreshToken, other.RefreshToken)
	fill(&r.StoredPassword, other.StoredPassword)
	if other.LastUsedAt.After(r.LastUsedAt) {
		r.LastUsedAt = other.LastUsedAt
	}
}

package domain

import (
	"strings"
	"time"
)

// Account is a registered user of the tracker. Deleting an account removes the gym logs
// and workout plans it owns.
type Account struct {
	ID           string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Email        string    `bson:"email" json:"email"`    // unique, stored lower-case
	PasswordHash string    `bson:"passwordHash" json:"-"` // never exposed
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

// AccountPatch carries a profile update. Null is never valid for these fields.
type AccountPatch struct {
	Name         Optional[string]
	Email        Optional[string]
	PasswordHash Optional[string]
}

// IsEmpty reports whether the patch changes nothing.
func (p AccountPatch) IsEmpty() bool {
	return !p.Name.Set && !p.Email.Set && !p.PasswordHash.Set
}

// NormalizeEmail is the canonical form used for uniqueness checks.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p AccountPatch) Apply(a *Account) {
	p.Name.ApplyTo(&a.Name)
	if p.Email.Present() {
		a.Email = NormalizeEmail(p.Email.Value)
	}
	p.PasswordHash.ApplyTo(&a.PasswordHash)
}

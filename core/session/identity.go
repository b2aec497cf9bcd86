package session

import (
	"fmt"
	"math"
	"time"
)

// BirthdayLayout is the calendar date format used for Identity.Birthday.
const BirthdayLayout = "2006-01-02"

// Gender is an optional self-described gender on the identity record.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

// Valid reports whether g is one of the known values. The empty value is valid and means unset.
func (g Gender) Valid() bool {
	switch g {
	case "", GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Location is a geographic coordinate pair.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Validate rejects NaN, infinities and out-of-range coordinates.
func (l Location) Validate() error {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) || l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("%w: latitude %v", ErrInvalidLocation, l.Latitude)
	}
	if math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) || l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("%w: longitude %v", ErrInvalidLocation, l.Longitude)
	}
	return nil
}

// Identity is the profile of the signed-in user.
type Identity struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Email    string    `json:"email"`
	Avatar   string    `json:"avatar,omitempty"`
	Phone    string    `json:"phone,omitempty"`
	Gender   Gender    `json:"gender,omitempty"`
	Birthday string    `json:"birthday,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// clone returns a copy that shares no pointers with i.
func (i Identity) clone() Identity {
	if i.Location != nil {
		loc := *i.Location
		i.Location = &loc
	}
	return i
}

// Equal compares two identities field by field, including the location value.
func (i Identity) Equal(other Identity) bool {
	if (i.Location == nil) != (other.Location == nil) {
		return false
	}
	if i.Location != nil && *i.Location != *other.Location {
		return false
	}
	a, b := i, other
	a.Location, b.Location = nil, nil
	return a == b
}

// IdentityPatch is a partial identity. Nil fields are left untouched by Apply.
type IdentityPatch struct {
	ID       *string   `json:"id,omitempty"`
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Avatar   *string   `json:"avatar,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
	Gender   *Gender   `json:"gender,omitempty"`
	Birthday *string   `json:"birthday,omitempty"`
	Location *Location `json:"location,omitempty"`
}

// Validate checks the supplied fields only.
func (p IdentityPatch) Validate() error {
	if p.Gender != nil && !p.Gender.Valid() {
		return fmt.Errorf("%w: unknown gender %q", ErrInvalidProfile, *p.Gender)
	}
	if p.Birthday != nil && *p.Birthday != "" {
		if _, err := time.Parse(BirthdayLayout, *p.Birthday); err != nil {
			return fmt.Errorf("%w: birthday must be YYYY-MM-DD", ErrInvalidProfile)
		}
	}
	if p.Location != nil {
		if err := p.Location.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// Apply returns i with the supplied fields overwritten. i itself is not modified.
func (p IdentityPatch) Apply(i Identity) Identity {
	out := i.clone()
	if p.ID != nil {
		out.ID = *p.ID
	}
	if p.Name != nil {
		out.Name = *p.Name
	}
	if p.Email != nil {
		out.Email = *p.Email
	}
	if p.Avatar != nil {
		out.Avatar = *p.Avatar
	}
	if p.Phone != nil {
		out.Phone = *p.Phone
	}
	if p.Gender != nil {
		out.Gender = *p.Gender
	}
	if p.Birthday != nil {
		out.Birthday = *p.Birthday
	}
	if p.Location != nil {
		loc := *p.Location
		out.Location = &loc
	}
	return out
}

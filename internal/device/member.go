package device

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the backend's date of birth format.
const DateLayout = "2006-01-02"

// Member is one household member as stored in members.json.
type Member struct {
	ID     string `json:"id"`
	Age    int    `json:"age"`
	Gender string `json:"gender"`
	Active bool   `json:"active"`
}

// Age categories.
const (
	CategoryKid    = "kid"
	CategoryTeen   = "teen"
	CategoryMiddle = "middle"
	CategoryAged   = "aged"
	CategoryElder  = "elder"
)

// AgeCategory buckets an age in years.
func AgeCategory(age int) string {
	switch {
	case age <= 12:
		return CategoryKid
	case age <= 19:
		return CategoryTeen
	case age <= 39:
		return CategoryMiddle
	case age <= 59:
		return CategoryAged
	default:
		return CategoryElder
	}
}

// Category returns the member's age bucket.
func (m Member) Category() string { return AgeCategory(m.Age) }

// Avatar returns the "<gender>-<category>" key used to pick a member icon.
func (m Member) Avatar() string {
	return strings.ToLower(m.Gender) + "-" + m.Category()
}

// AgeAt returns the age in whole years on now of someone born on dob
// (YYYY-MM-DD).
func AgeAt(dob string, now time.Time) (int, error) {
	born, err := time.Parse(DateLayout, dob)
	if err != nil {
		return 0, fmt.Errorf("invalid date of birth %q: %w", dob, err)
	}
	now = now.UTC()
	age := now.Year() - born.Year()
	if now.Month() < born.Month() || (now.Month() == born.Month() && now.Day() < born.Day()) {
		age--
	}
	if age < 0 {
		age = 0
	}
	return age, nil
}

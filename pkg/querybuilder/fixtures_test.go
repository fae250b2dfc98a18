package querybuilder_test

import (
	"regexp"
	"time"

	"github.com/google/uuid"
)

type Name struct {
	GivenName  string `json:"givenName"`
	FamilyName string `json:"familyName"`
}

type Product struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type Person struct {
	ID       uuid.UUID  `json:"id"`
	Type     string     `json:"type"`
	Created  time.Time  `json:"created"`
	Modified time.Time  `json:"modified"`
	Deleted  *time.Time `json:"deleted,omitempty"`
	Sex      string     `json:"sex"`
	Name     Name       `json:"name"`
	Email    string     `json:"email"`
	Age      int        `json:"age"`
	Bones    []string   `json:"bones"`
	Products []Product  `json:"products"`

	Attributes map[string]any `json:"attributes,omitempty"`
	internal   string
}

var placeholderPattern = regexp.MustCompile(`@p\d+`)

// distinctPlaceholders returns the placeholders of query in order of first
// appearance.
func distinctPlaceholders(query string) []string {
	seen := map[string]bool{}
	var out []string
	for _, p := range placeholderPattern.FindAllString(query, -1) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}
	return out
}

package child

import (
	"strings"
	"time"
)

// Child is a child enrolled at the center. Activity records reference it by ID.
type Child struct {
	ID        string    `json:"id"`
	FirstName string    `json:"first_name"`
	LastName  string    `json:"last_name"`
	CreatedAt time.Time `json:"created_at"`
}

// DisplayName joins first and last name.
func (c Child) DisplayName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

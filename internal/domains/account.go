package domains

import "time"

// Account is an evaluation owner (HR or admin) able to create assignments and
// read reports.
type Account struct {
	Id         int        `json:"id"`
	FullName   string     `json:"full_name"`
	Email      string     `json:"email"`
	Password   string     `json:"-"`
	Role       string     `json:"role"`
	CreatedAt  time.Time  `json:"created_at"`
	DisabledAt *time.Time `json:"disabled_at,omitempty"`
}

package model

// Contact belongs to exactly one user; all access is scoped by UserID.
// Birthday is stored as an ISO date string (YYYY-MM-DD).
type Contact struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Birthday  string `json:"birthday"`
	UserID    int64  `json:"-"`
}

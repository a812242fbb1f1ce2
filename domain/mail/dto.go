package mail

import "strings"

type SendWelcomeRequest struct {
	Email string `json:"email" binding:"required,email,max=255"`
	Name  string `json:"name" binding:"omitempty,max=255"`
}

// Normalize runs before validation.
func (r *SendWelcomeRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Name = strings.TrimSpace(r.Name)
}

type SendWelcomeResponse struct {
	Message string `json:"message"`
}

// Settings are the sender identity and subject line of the welcome email.
type Settings struct {
	From    string
	Subject string
}

package packets

type ProfileResponse struct {
	ID        int      `json:"id"`
	Email     string   `json:"email"`
	Name      *string  `json:"name,omitempty"`
	Roles     []string `json:"roles"`
	Role      string   `json:"role"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

package dto

type SignupResult struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token,omitempty"`
}

type LoginResult struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
}

type RefreshResult struct {
	AccessToken string `json:"accessToken"`
}

// Profile is the outward view of a user; credentials and timestamps never appear here.
type Profile struct {
	ID        string  `json:"id"`
	Email     string  `json:"email"`
	Username  string  `json:"username"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
}

type TokenIntrospection struct {
	Valid    bool   `json:"valid"`
	ID       string `json:"id,omitempty"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

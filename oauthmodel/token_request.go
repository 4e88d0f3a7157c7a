package oauthmodel

// LoginRequest is the body of POST auth/login
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// RefreshTokenRequest is the body of POST auth/refresh
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token"`
}

package models

// TokenRequest is an operator's exchange of an API key for a bearer token
type TokenRequest struct {
	Operator string `json:"operator" binding:"required"`
	APIKey   string `json:"apiKey" binding:"required"`
}

// TokenResponse carries the signed operator token
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

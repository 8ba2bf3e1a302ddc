package auth

// LoginRequest captures the operator credentials sent to the login endpoint.
type LoginRequest struct {
	Operator string `json:"operator" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the bearer token and the operator's capabilities.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Operator    string `json:"operator"`
	Role        string `json:"role"`
	CanWrite    bool   `json:"can_write"`
}

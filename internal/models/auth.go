package models

import "github.com/golang-jwt/jwt/v5"

// Claims carries the authenticated principal through request handling.
type Claims struct {
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// LoginRequest is the credential payload for the auth collaborator.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse returns the issued access token and principal info.
type LoginResponse struct {
	AccessToken string `json:"accessToken"`
	Email       string `json:"email"`
	Role        string `json:"role"`
	FullName    string `json:"fullName,omitempty"`
}

package models

import "github.com/golang-jwt/jwt/v5"

// AccessClaims is the claim set carried by access tokens.
type AccessClaims struct {
	jwt.RegisteredClaims          // sub, iss, aud, exp, iat, jti
	Username             string   `json:"unique_name"`
	Roles                []string `json:"roles,omitempty"`
}

// GetUserID returns the user ID from the JWT subject claim.
func (c *AccessClaims) GetUserID() string {
	return c.Subject
}

package service

import (
	"strconv"
	"strings"
)

// AuthService decides who may run owner commands
type AuthService struct {
	ownerID string
}

// NewAuthService creates a new auth service
func NewAuthService(ownerID string) *AuthService {
	return &AuthService{ownerID: strings.TrimSpace(ownerID)}
}

// IsOwner checks the sender against the configured owner ID.
// IDs are compared in their decimal string form.
func (s *AuthService) IsOwner(userID int64) bool {
	if s.ownerID == "" {
		return false
	}
	return strconv.FormatInt(userID, 10) == s.ownerID
}

// OwnerID returns the configured owner ID
func (s *AuthService) OwnerID() string {
	return s.ownerID
}

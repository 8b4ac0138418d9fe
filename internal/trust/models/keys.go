package models

import (
	"strings"

	id "trustplane/pkg/domain"
)

// SanitizeKeySegment escapes delimiter characters in rate limit key segments
// to prevent key collision attacks where user-controlled identifiers
// containing ':' could manipulate adjacent buckets.
func SanitizeKeySegment(s string) string {
	return strings.ReplaceAll(s, ":", "_")
}

// LoginKey buckets login attempts per client address.
func LoginKey(clientAddr string) string {
	return "login:" + SanitizeKeySegment(clientAddr)
}

// RegistrationKey buckets account-creation attempts per client address.
func RegistrationKey(clientAddr string) string {
	return "register:" + SanitizeKeySegment(clientAddr)
}

// PasswordResetKey buckets password-reset requests per client address.
func PasswordResetKey(clientAddr string) string {
	return "pwreset:" + SanitizeKeySegment(clientAddr)
}

// FacialUploadKey buckets facial-document uploads per user.
func FacialUploadKey(userID id.UserID) string {
	return "facialupload:" + SanitizeKeySegment(userID.String())
}

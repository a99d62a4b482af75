package models

import "time"

// Role values for User.Role.
const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

// CredentialStatus tracks the lifecycle of a stored platform session cookie.
type CredentialStatus string

const (
	// CredentialNotLinked means the user never linked a cookie for the platform.
	CredentialNotLinked CredentialStatus = "NOT_LINKED"
	// CredentialLinked means a cookie is stored and assumed valid.
	CredentialLinked CredentialStatus = "LINKED"
	// CredentialExpired means the platform rejected the stored cookie.
	CredentialExpired CredentialStatus = "EXPIRED"
)

// User represents a student or teacher with optional judge-platform accounts.
// Cookie status transitions: NOT_LINKED -> LINKED only via explicit linking,
// LINKED -> EXPIRED only via the reconciliation engine observing an
// authorization failure.
type User struct {
	ID    uint   `gorm:"primaryKey" json:"id"`
	Name  string `gorm:"size:255;not null" json:"name"`
	Email string `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Role  string `gorm:"size:16;not null;default:student" json:"role"`

	LeetcodeUsername     string           `gorm:"size:255" json:"leetcode_username"`
	LeetcodeCookie       string           `gorm:"size:4096" json:"-"`
	LeetcodeCookieStatus CredentialStatus `gorm:"size:16;not null;default:NOT_LINKED" json:"leetcode_cookie_status"`

	HackerrankUsername     string           `gorm:"size:255" json:"hackerrank_username"`
	HackerrankCookie       string           `gorm:"size:4096" json:"-"`
	HackerrankCookieStatus CredentialStatus `gorm:"size:16;not null;default:NOT_LINKED" json:"hackerrank_cookie_status"`

	GfgUsername     string           `gorm:"size:255" json:"gfg_username"`
	GfgCookie       string           `gorm:"size:4096" json:"-"`
	GfgCookieStatus CredentialStatus `gorm:"size:16;not null;default:NOT_LINKED" json:"gfg_cookie_status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PlatformUsername returns the stored username for the given platform.
func (u User) PlatformUsername(platform string) string {
	switch platform {
	case PlatformLeetcode:
		return u.LeetcodeUsername
	case PlatformHackerrank:
		return u.HackerrankUsername
	case PlatformGfg:
		return u.GfgUsername
	default:
		return ""
	}
}

// PlatformCookie returns the stored cookie and its status for the platform.
func (u User) PlatformCookie(platform string) (string, CredentialStatus) {
	switch platform {
	case PlatformLeetcode:
		return u.LeetcodeCookie, u.LeetcodeCookieStatus
	case PlatformHackerrank:
		return u.HackerrankCookie, u.HackerrankCookieStatus
	case PlatformGfg:
		return u.GfgCookie, u.GfgCookieStatus
	default:
		return "", CredentialNotLinked
	}
}

// HasLinkedCookie reports whether a usable cookie is stored for the platform.
func (u User) HasLinkedCookie(platform string) bool {
	cookie, status := u.PlatformCookie(platform)
	return cookie != "" && status == CredentialLinked
}

package dto

// SweepResult is returned by the submission-check trigger endpoints.
type SweepResult struct {
	Count int `json:"count"`
}

// CredentialLinkRequest carries a platform account link payload.
type CredentialLinkRequest struct {
	Username string `json:"username" validate:"required,min=1,max=255"`
	Cookie   string `json:"cookie" validate:"omitempty,max=4096"`
}

// PlatformCredentialStatus summarizes one platform account for one student.
type PlatformCredentialStatus struct {
	HasUsername  bool   `json:"has_username"`
	Username     string `json:"username,omitempty"`
	CookieStatus string `json:"cookie_status"`
}

// StudentCredentialStatus reports per-platform credential health for a student.
type StudentCredentialStatus struct {
	UserID    uint                                `json:"user_id"`
	Name      string                              `json:"name"`
	Email     string                              `json:"email"`
	Platforms map[string]PlatformCredentialStatus `json:"platforms"`
}

// ClassCredentialReport is the credential status report for a whole class.
type ClassCredentialReport struct {
	ClassID      uint                      `json:"class_id"`
	ClassName    string                    `json:"class_name"`
	StudentCount int                       `json:"student_count"`
	Students     []StudentCredentialStatus `json:"students"`
}

package domain

import "strings"

// SuspendRequest is the payload of the suspend-user function.
type SuspendRequest struct {
	UserIDToSuspend string `json:"userIdToSuspend"`
}

// Party identifies one side of a user report.
type Party struct {
	Email    string `json:"email"`
	Username string `json:"username"`
}

// WarningRequest is the payload of the send-warning function.
type WarningRequest struct {
	ReportedUser Party  `json:"reportedUser"`
	Reporter     Party  `json:"reporter"`
	Message      string `json:"message"`
	Reason       string `json:"reason"`
}

func (r *WarningRequest) Validate() error {
	if strings.TrimSpace(r.ReportedUser.Email) == "" {
		return ErrValidationFailed.WithMessage("reportedUser.email is required")
	}
	if strings.TrimSpace(r.Message) == "" {
		return ErrValidationFailed.WithMessage("message is required")
	}
	return nil
}

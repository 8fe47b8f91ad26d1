package applications

import (
	"fmt"
	"strings"
	"time"
)

// Status tracks one application's lifecycle. SENT and FAILED_TO_SEND are
// assigned by the send pipeline; the rest are set later by the user.
type Status string

const (
	StatusSent         Status = "SENT"
	StatusFailedToSend Status = "FAILED_TO_SEND"
	StatusInterview    Status = "INTERVIEW"
	StatusRejected     Status = "REJECTED"
	StatusAccepted     Status = "ACCEPTED"
	StatusFollowUp     Status = "FOLLOW_UP"
)

var validStatuses = map[Status]struct{}{
	StatusSent:         {},
	StatusFailedToSend: {},
	StatusInterview:    {},
	StatusRejected:     {},
	StatusAccepted:     {},
	StatusFollowUp:     {},
}

// ParseStatus validates a raw status value. Matching is case-insensitive.
func ParseStatus(raw string) (Status, error) {
	status := Status(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := validStatuses[status]; !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

// Application records one send attempt. Everything except Status is immutable
// after creation; CVID is a snapshot of the CV used at send time and is not
// touched by later CV deletes.
type Application struct {
	ID        string    `json:"id"`
	UserID    string    `json:"-"`
	ProfileID string    `json:"profileId"`
	CVID      string    `json:"cvId"`
	Company   string    `json:"company"`
	JobEmail  string    `json:"jobEmail"`
	JobTitle  string    `json:"jobTitle"`
	Subject   string    `json:"subject"`
	Status    Status    `json:"status"`
	SentAt    time.Time `json:"sentAt"`
}

package attendance

import "errors"

var (
	ErrEmployeeOnLeave     = errors.New("employee is on approved leave on this date")
	ErrAbsenceNotFound     = errors.New("absence not found")
	ErrCertificateNotFound = errors.New("no certificate attached to this absence")
)

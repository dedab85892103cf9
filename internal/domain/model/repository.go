package model

import "time"

// Repository is a connected repository and its cached metrics.
// Provider never changes after the record is created. FullPath is empty until
// it is first resolved and is never overwritten afterwards.
type Repository struct {
	ID               string
	Provider         Provider
	FullPath         string // "owner/repo"; GitHub only.
	OpenPullRequests int
	UpdatedAt        time.Time
	AddedAt          time.Time
}

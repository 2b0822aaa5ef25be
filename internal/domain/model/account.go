package model

// AccountInfo is the read-only account snapshot returned by the remote service.
type AccountInfo struct {
	FirstName    string
	TotalRewards float64
	ReferrerCode string
}

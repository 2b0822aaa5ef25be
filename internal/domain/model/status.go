package model

import "time"

// FarmPhase names what the account loop is currently doing.
type FarmPhase string

const (
	FarmPhaseStarting   FarmPhase = "starting"
	FarmPhaseProcessing FarmPhase = "processing"
	FarmPhaseWaiting    FarmPhase = "waiting"
	FarmPhaseStopped    FarmPhase = "stopped"
)

// FarmStatus is a point-in-time view of the account loop, used for
// observability and testing.
type FarmStatus struct {
	Phase          FarmPhase
	PassID         string
	PassNumber     int
	AccountNumber  int // 1-based; 0 when no account is being processed.
	AccountCount   int
	NextPassAt     time.Time
	LastFinishedAt time.Time
}

package entity

import "time"

// LoadPhase is the lifecycle of one backend-fed list.
type LoadPhase int

const (
	// LoadPending means no fetch has completed yet.
	LoadPending LoadPhase = iota
	// LoadReady means the last fetch replaced the list successfully.
	LoadReady
	// LoadFailed means the last fetch failed; the previously loaded list
	// (possibly empty) is still being served.
	LoadFailed
)

func (p LoadPhase) String() string {
	switch p {
	case LoadReady:
		return "ready"
	case LoadFailed:
		return "failed"
	default:
		return "pending"
	}
}

// LoadState distinguishes "no data yet" from "load failed" from
// "legitimately empty list".
type LoadState struct {
	Phase     LoadPhase
	Err       string
	UpdatedAt time.Time
}

// Ready reports whether the list has been loaded at least once.
func (s LoadState) Ready() bool {
	return s.Phase == LoadReady
}

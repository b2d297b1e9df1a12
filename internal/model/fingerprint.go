package model

import "time"

// ScanFingerprint is a digest of the five core counters of one run.
type ScanFingerprint struct {
	Hash      string       `json:"hash"`
	Timestamp time.Time    `json:"timestamp"`
	Vector    MetricVector `json:"vector"`
}

// CounterDelta is a before/after pair of one counter.
type CounterDelta struct {
	Before int `json:"before"`
	After  int `json:"after"`
	Delta  int `json:"delta"`
}

// Change compares a run with the previous run of the same site.
type Change struct {
	// Since is the timestamp of the previous fingerprint.
	Since time.Time `json:"since"`

	// Changed is false when both hashes are equal.
	Changed bool `json:"changed"`

	MissingAlt CounterDelta `json:"missing_alt"`
	Unlabeled  CounterDelta `json:"unlabeled"`
}

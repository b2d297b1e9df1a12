package fingerprint

import (
	"encoding/binary"
	"fmt"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/nao1215/a11yscan/internal/model"
)

// Hash returns the hex digest of the ordered counter tuple
// (images, missing alt, controls, unlabeled, unique links).
// It is not a cryptographic hash.
func Hash(v model.MetricVector) string {
	var buf [8]byte
	d := xxhash.New()
	for _, n := range []int{v.Images, v.MissingAlt, v.Controls, v.Unlabeled, v.UniqueLinks} {
		binary.BigEndian.PutUint64(buf[:], uint64(int64(n))) //nolint:gosec // counters are non-negative
		_, _ = d.Write(buf[:])                               //nolint:errcheck // never fails
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// New fingerprints the counters of m at time at.
func New(m *model.SiteMetrics, at time.Time) model.ScanFingerprint {
	v := m.Vector()
	return model.ScanFingerprint{
		Hash:      Hash(v),
		Timestamp: at,
		Vector:    v,
	}
}

// Diff compares cur with the previous fingerprint of the same site.
// It returns nil when there is no baseline.
func Diff(prev *model.ScanFingerprint, cur model.ScanFingerprint) *model.Change {
	if prev == nil {
		return nil
	}
	return &model.Change{
		Since:      prev.Timestamp,
		Changed:    prev.Hash != cur.Hash,
		MissingAlt: delta(prev.Vector.MissingAlt, cur.Vector.MissingAlt),
		Unlabeled:  delta(prev.Vector.Unlabeled, cur.Vector.Unlabeled),
	}
}

func delta(before, after int) model.CounterDelta {
	return model.CounterDelta{Before: before, After: after, Delta: after - before}
}

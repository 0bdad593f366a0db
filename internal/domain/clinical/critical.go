package clinical

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// CriticalRule decides whether a reading indicates a critical condition.
type CriticalRule interface {
	IsCritical(r *Reading) bool
}

// RuleFunc adapts a function to CriticalRule.
type RuleFunc func(r *Reading) bool

func (f RuleFunc) IsCritical(r *Reading) bool { return f(r) }

// RemoteFlag trusts the is_critical_condition flag set by the API.
type RemoteFlag struct{}

func (RemoteFlag) IsCritical(r *Reading) bool { return r.IsCriticalCondition }

// AnyRule is critical when any of its rules is.
type AnyRule []CriticalRule

func (a AnyRule) IsCritical(r *Reading) bool {
	for _, rule := range a {
		if rule.IsCritical(r) {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Threshold bands
// ---------------------------------------------------------------------------

// Band is an inclusive normal range.
type Band struct {
	Low  int
	High int
}

func (b Band) Contains(n int) bool { return n >= b.Low && n <= b.High }

func (b Band) String() string { return fmt.Sprintf("%d:%d", b.Low, b.High) }

// VitalBands flags a reading when any banded vital is outside its range.
// Vitals without a band, or whose value is not a number, are not judged.
type VitalBands map[Vital]Band

func (vb VitalBands) IsCritical(r *Reading) bool {
	for v, band := range vb {
		n, err := strconv.Atoi(strings.TrimSpace(r.Value(v)))
		if err != nil {
			continue
		}
		if !band.Contains(n) {
			return true
		}
	}
	return false
}

// String renders the bands in the form ParseBands reads, in vital order.
func (vb VitalBands) String() string {
	var parts []string
	for _, v := range Vitals() {
		if b, ok := vb[v]; ok {
			parts = append(parts, string(v)+"="+b.String())
		}
	}
	return strings.Join(parts, ",")
}

// ReferenceBands is an adult resting range for each vital. It is only used
// when an operator selects it.
func ReferenceBands() VitalBands {
	return VitalBands{
		VitalBPSystolic:       {Low: 90, High: 180},
		VitalBPDiastolic:      {Low: 50, High: 110},
		VitalRespiratoryRate:  {Low: 10, High: 25},
		VitalBloodOxygenLevel: {Low: 92, High: 100},
		VitalPulseRate:        {Low: 50, High: 110},
	}
}

// ParseBands reads "bp_systolic=90:180,pulse_rate=50:110". The literal
// "reference" selects ReferenceBands.
func ParseBands(s string) (VitalBands, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return VitalBands{}, nil
	}
	if s == "reference" {
		return ReferenceBands(), nil
	}

	known := make(map[Vital]bool)
	for _, v := range Vitals() {
		known[v] = true
	}

	out := VitalBands{}
	for _, part := range strings.Split(s, ",") {
		name, rng, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			return nil, fmt.Errorf("band %q: expected vital=low:high", part)
		}
		v := Vital(strings.TrimSpace(name))
		if !known[v] {
			return nil, fmt.Errorf("band %q: unknown vital %q", part, v)
		}
		lo, hi, ok := strings.Cut(rng, ":")
		if !ok {
			return nil, fmt.Errorf("band %q: expected low:high", part)
		}
		low, err := strconv.Atoi(strings.TrimSpace(lo))
		if err != nil {
			return nil, fmt.Errorf("band %q: low: %w", part, err)
		}
		high, err := strconv.Atoi(strings.TrimSpace(hi))
		if err != nil {
			return nil, fmt.Errorf("band %q: high: %w", part, err)
		}
		if low > high {
			return nil, fmt.Errorf("band %q: low exceeds high", part)
		}
		out[v] = Band{Low: low, High: high}
	}
	return out, nil
}

// ---------------------------------------------------------------------------
// Classification over reading lists
// ---------------------------------------------------------------------------

// Critical returns the readings rule flags, keeping their order.
func Critical(readings []*Reading, rule CriticalRule) []*Reading {
	out := make([]*Reading, 0)
	for _, r := range readings {
		if r != nil && rule.IsCritical(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortNewestFirst orders readings by Time, most recent first. Readings with
// equal times keep their relative order.
func SortNewestFirst(readings []*Reading) {
	sort.SliceStable(readings, func(i, j int) bool {
		return readings[i].Time().After(readings[j].Time())
	})
}

// Latest returns the most recent reading, or nil for an empty list. The
// input order is not changed.
func Latest(readings []*Reading) *Reading {
	var latest *Reading
	for _, r := range readings {
		if r == nil {
			continue
		}
		if latest == nil || r.Time().After(latest.Time()) {
			latest = r
		}
	}
	return latest
}

// LatestCritical reports whether the most recent reading is critical. A
// patient with no readings is not critical.
func LatestCritical(readings []*Reading, rule CriticalRule) bool {
	r := Latest(readings)
	return r != nil && rule.IsCritical(r)
}

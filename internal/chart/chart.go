// Package chart assembles a patient's record and vital-sign history into one
// view.
package chart

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/clinic/records/internal/domain/clinical"
	"github.com/clinic/records/internal/domain/patient"
)

// Entry is one reading with its classification.
type Entry struct {
	Reading  *clinical.Reading `json:"reading"`
	Critical bool              `json:"critical"`
}

type Chart struct {
	Patient *patient.Patient `json:"patient"`
	// Entries are ordered newest first.
	Entries []Entry `json:"entries"`
	// Critical reports whether the most recent reading is critical.
	Critical bool `json:"critical"`
}

// CriticalEntries returns the flagged entries, newest first.
func (c *Chart) CriticalEntries() []Entry {
	out := make([]Entry, 0)
	for _, e := range c.Entries {
		if e.Critical {
			out = append(out, e)
		}
	}
	return out
}

type Loader struct {
	patients *patient.Service
	readings *clinical.Service
}

func NewLoader(patients *patient.Service, readings *clinical.Service) *Loader {
	return &Loader{patients: patients, readings: readings}
}

// Load fetches the patient and their readings concurrently. The first
// failure cancels the other request and is returned as-is.
func (l *Loader) Load(ctx context.Context, patientID string) (*Chart, error) {
	var (
		p        *patient.Patient
		readings []*clinical.Reading
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		p, err = l.patients.GetPatient(gctx, patientID)
		return err
	})
	g.Go(func() error {
		var err error
		readings, err = l.readings.ListReadings(gctx, patientID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	clinical.SortNewestFirst(readings)
	c := &Chart{
		Patient: p,
		Entries: make([]Entry, 0, len(readings)),
	}
	for _, r := range readings {
		c.Entries = append(c.Entries, Entry{Reading: r, Critical: l.readings.Classify(r)})
	}
	c.Critical = len(c.Entries) > 0 && c.Entries[0].Critical
	return c, nil
}

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinic/records/internal/domain/patient"
)

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func printPatientTable(w io.Writer, patients []*patient.Patient) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tNAME\tAGE\tGENDER\tCONTACT")
	for _, p := range patients {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.FullName(), p.Age, p.Gender, p.ContactNumber)
	}
	return tw.Flush()
}

// printPatient lists every field under its form section.
func printPatient(w io.Writer, p *patient.Patient) error {
	fmt.Fprintf(w, "Patient %s\n", p.ID)
	if p.ETag != "" {
		fmt.Fprintf(w, "Version %s\n", p.ETag)
	}
	tw := newTable(w)
	for _, g := range patient.Groups() {
		fmt.Fprintf(tw, "\n%s\t\n", g)
		for _, f := range patient.FieldsIn(g) {
			fmt.Fprintf(tw, "  %s\t%s\n", f.Label, p.Value(f.Name))
		}
	}
	return tw.Flush()
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// readPatientFile decodes a patient JSON document from path, or from the
// command's input when path is "-".
func readPatientFile(cmd *cobra.Command, path string) (*patient.Patient, error) {
	var r io.Reader
	if path == "-" {
		r = cmd.InOrStdin()
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}

	var p patient.Patient
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("read patient %s: %w", path, err)
	}
	return &p, nil
}

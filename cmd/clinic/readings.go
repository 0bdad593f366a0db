package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/clinic/records/internal/chart"
	"github.com/clinic/records/internal/domain/clinical"
	"github.com/clinic/records/internal/platform/apierr"
)

func readingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readings",
		Short: "List and record clinical readings",
	}
	cmd.AddCommand(readingsListCmd(a))
	cmd.AddCommand(readingsAddCmd(a))
	return cmd
}

func readingsListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list <patient-id>",
		Short: "List a patient's readings, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			readings, err := a.readings.ListReadings(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			clinical.SortNewestFirst(readings)

			entries := make([]chart.Entry, len(readings))
			for i, r := range readings {
				entries[i] = chart.Entry{Reading: r, Critical: a.readings.Classify(r)}
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), entries)
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}
}

func readingsAddCmd(a *app) *cobra.Command {
	var r clinical.Reading
	cmd := &cobra.Command{
		Use:   "add <patient-id>",
		Short: "Record a new set of vital signs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			saved, err := a.readings.AddReading(cmd.Context(), args[0], &r)
			if err != nil {
				if apierr.IsValidation(err) {
					printReadingProblems(cmd.ErrOrStderr(), &r)
				}
				return err
			}
			critical := a.readings.Classify(saved)
			a.logger.Info().
				Str("patient_id", args[0]).
				Str("reading_id", saved.ID).
				Bool("critical", critical).
				Msg("reading recorded")

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return printJSON(out, chart.Entry{Reading: saved, Critical: critical})
			}
			fmt.Fprintf(out, "Recorded reading %s\n", saved.ID)
			if critical {
				fmt.Fprintln(out, "CRITICAL: this reading is flagged")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&r.BPSystolic, "bp-systolic", "", "Systolic blood pressure")
	cmd.Flags().StringVar(&r.BPDiastolic, "bp-diastolic", "", "Diastolic blood pressure")
	cmd.Flags().StringVar(&r.RespiratoryRate, "respiratory-rate", "", "Breaths per minute")
	cmd.Flags().StringVar(&r.BloodOxygenLevel, "blood-oxygen", "", "Blood oxygen saturation (%)")
	cmd.Flags().StringVar(&r.PulseRate, "pulse-rate", "", "Beats per minute")
	cmd.Flags().StringVar(&r.ClinicStaff, "staff", "", "Who took the reading")
	return cmd
}

// printReadingProblems explains each rejected field in form order.
func printReadingProblems(w io.Writer, r *clinical.Reading) {
	problems := clinical.ReadingProblems(r)
	for _, name := range clinical.ReadingInvalidFields(r) {
		fmt.Fprintf(w, "  %s\n", problems[name])
	}
}

func printEntries(w io.Writer, entries []chart.Entry) error {
	if len(entries) == 0 {
		fmt.Fprintln(w, "No clinical readings.")
		return nil
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "TIME\tBP\tRESP\tSPO2\tPULSE\tSTAFF\tCRITICAL")
	for _, e := range entries {
		r := e.Reading
		flag := ""
		if e.Critical {
			flag = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s/%s\t%s\t%s\t%s\t%s\t%s\n",
			formatTime(r.Time()), r.BPSystolic, r.BPDiastolic, r.RespiratoryRate,
			r.BloodOxygenLevel, r.PulseRate, r.ClinicStaff, flag)
	}
	return tw.Flush()
}

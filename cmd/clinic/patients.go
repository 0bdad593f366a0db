package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/clinic/records/internal/chart"
	"github.com/clinic/records/internal/domain/patient"
	"github.com/clinic/records/internal/platform/scope"
	"github.com/clinic/records/pkg/pagination"
)

func patientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "List, view and edit patient records",
	}

	cmd.AddCommand(patientsListCmd(a))
	cmd.AddCommand(patientsCriticalCmd(a))
	cmd.AddCommand(patientsShowCmd(a))
	cmd.AddCommand(patientsCreateCmd(a))
	cmd.AddCommand(patientsUpdateCmd(a))
	cmd.AddCommand(patientsDeleteCmd(a))

	return cmd
}

func patientsListCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List patients, optionally filtered by name",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			search, _ := cmd.Flags().GetString("search")
			limit, _ := cmd.Flags().GetInt("limit")
			offset, _ := cmd.Flags().GetInt("offset")

			patients, err := a.patients.SearchPatients(cmd.Context(), search)
			if err != nil {
				return err
			}
			page := pagination.Paginate(patients, pagination.New(limit, offset))

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return printJSON(out, page)
			}
			if err := printPatientTable(out, page.Data); err != nil {
				return err
			}
			footer := page.Summary()
			if hints := page.Hints(); len(hints) > 0 {
				footer += " (" + strings.Join(hints, ", ") + ")"
			}
			fmt.Fprintf(out, "\n%s\n", footer)
			return nil
		},
	}
	cmd.Flags().String("search", "", "Case-insensitive substring of first or last name")
	cmd.Flags().Int("limit", pagination.DefaultLimit, "Patients per page")
	cmd.Flags().Int("offset", 0, "Patients to skip")
	return cmd
}

func patientsCriticalCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "critical",
		Short: "List patients currently flagged critical",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			patients, err := a.patients.ListCriticalPatients(cmd.Context())
			if err != nil {
				return err
			}
			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), patients)
			}
			return printPatientTable(cmd.OutOrStdout(), patients)
		},
	}
}

func patientsShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a patient with their clinical readings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadChart(cmd.Context(), a.charts, args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if a.jsonOut {
				return printJSON(out, c)
			}
			if err := printPatient(out, c.Patient); err != nil {
				return err
			}
			fmt.Fprintln(out)
			if c.Critical {
				fmt.Fprintln(out, "CRITICAL: latest reading is flagged")
			}
			return printEntries(out, c.Entries)
		},
	}
}

// loadChart runs the load inside a scope tied to ctx, so an interrupt drops
// the result even if the requests are already answered.
func loadChart(ctx context.Context, charts *chart.Loader, id string) (*chart.Chart, error) {
	sc := scope.New(ctx)
	defer sc.Close()

	type result struct {
		chart *chart.Chart
		err   error
	}
	done := make(chan result, 1)
	scope.Go(sc, func(ctx context.Context) (*chart.Chart, error) {
		return charts.Load(ctx, id)
	}, func(c *chart.Chart, err error) {
		done <- result{c, err}
	})

	select {
	case r := <-done:
		return r.chart, r.err
	case <-sc.Context().Done():
		return nil, sc.Context().Err()
	}
}

func patientsCreateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a patient from a JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			p, err := readPatientFile(cmd, file)
			if err != nil {
				return err
			}
			// Empty fields block saving before any format rule is reported.
			if err := patient.CheckComplete(p); err != nil {
				return err
			}

			saved, err := a.patients.CreatePatient(cmd.Context(), p)
			if err != nil {
				return err
			}
			a.logger.Info().Str("patient_id", saved.ID).Msg("patient created")

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created patient %s\n", saved.ID)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "-", "Patient JSON file, or - for stdin")
	return cmd
}

func patientsUpdateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Edit a patient record",
		Long: "Fetches the current record, applies the fields from --file and --set, " +
			"and saves the whole record. The save fails if someone else changed the " +
			"record in between and the API reports versions.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			sets, _ := cmd.Flags().GetStringArray("set")
			if file == "" && len(sets) == 0 {
				return fmt.Errorf("nothing to change: pass --file or --set")
			}

			current, err := a.patients.GetPatient(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			edited := current.Clone()

			if file != "" {
				changes, err := readPatientFile(cmd, file)
				if err != nil {
					return err
				}
				for _, f := range patient.Fields() {
					if v := changes.Value(f.Name); v != "" {
						edited.Set(f.Name, v)
					}
				}
			}
			for _, kv := range sets {
				name, value, ok := strings.Cut(kv, "=")
				if !ok {
					return fmt.Errorf("--set %q: expected field=value", kv)
				}
				if err := edited.Set(name, value); err != nil {
					return err
				}
			}

			if err := patient.CheckComplete(edited); err != nil {
				return err
			}
			saved, err := a.patients.UpdatePatient(cmd.Context(), args[0], edited)
			if err != nil {
				return err
			}
			a.logger.Info().Str("patient_id", saved.ID).Msg("patient updated")

			if a.jsonOut {
				return printJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated patient %s\n", saved.ID)
			return nil
		},
	}
	cmd.Flags().StringP("file", "f", "", "JSON file with the fields to change, or - for stdin")
	cmd.Flags().StringArray("set", nil, "field=value to change (repeatable)")
	return cmd
}

func patientsDeleteCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a patient record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			etag, _ := cmd.Flags().GetString("if-match")

			var err error
			if etag != "" {
				err = a.patients.DeletePatientVersion(cmd.Context(), &patient.Patient{ID: args[0], ETag: etag})
			} else {
				err = a.patients.DeletePatient(cmd.Context(), args[0])
			}
			if err != nil {
				return err
			}
			a.logger.Info().Str("patient_id", args[0]).Msg("patient deleted")
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted patient %s\n", args[0])
			return nil
		},
	}
	cmd.Flags().String("if-match", "", "Only delete if the record is still at this version")
	return cmd
}

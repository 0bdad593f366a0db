package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/clinic/records/internal/domain/patient"
)

func validateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a patient JSON file against the record rules without saving it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			file, _ := cmd.Flags().GetString("file")
			p, err := readPatientFile(cmd, file)
			if err != nil {
				return err
			}

			res := patient.ValidateRecord(p)
			out := cmd.OutOrStdout()
			if a.jsonOut {
				if err := printJSON(out, res); err != nil {
					return err
				}
			} else if res.Valid {
				fmt.Fprintln(out, "Record is valid.")
			} else {
				tw := newTable(out)
				fmt.Fprintln(tw, "FIELD\tPROBLEM\tVALUE")
				for _, name := range res.InvalidFields {
					fmt.Fprintf(tw, "%s\t%s\t%q\n", name, patient.FieldProblem(p, name), p.Value(name))
				}
				if err := tw.Flush(); err != nil {
					return err
				}
			}
			// The validation error carries the exit status and the notice.
			if err := patient.CheckComplete(p); err != nil {
				return err
			}
			return p.Validate()
		},
	}
	cmd.Flags().StringP("file", "f", "-", "Patient JSON file, or - for stdin")
	return cmd
}

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/JonMunkholm/partlib/internal/core"
	"github.com/spf13/cobra"
)

func (a *app) printJSON(v any) error {
	enc := json.NewEncoder(a.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the library database and default column mapping",
		Args:  argsExactly(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := a.service.Mapping(cmd.Context()); err != nil {
				return err
			}
			st, err := a.service.Status(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "library ready: %s (%d parts)\nmapping: %s\n", st.Database, st.Parts, st.MappingDoc)
			return nil
		},
	}
}

func newImportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import delimited files into the part library",
		Long: `Import reads every file with the saved column mapping and inserts parts
whose part number is not yet in the library. The previous database is
copied to the backup slot first. All files commit together or not at all.`,
		Args: argsAtLeast(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.service.Import(cmd.Context(), args)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "imported %d new parts from %d files in %s\n", res.Inserted, res.Files, res.Duration)
			return nil
		},
	}
}

func newQueryCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "query [pattern]...",
		Short: "List parts whose number contains any pattern",
		Long: `Query lists parts whose part number contains any of the given substrings.
With no patterns every part is listed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			patterns := args
			if len(patterns) == 0 {
				patterns = []string{""}
			}
			rs, err := a.service.Query(cmd.Context(), patterns)
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(rs.Working)
			}
			return a.printParts(rs.Working)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print parts as JSON")
	return cmd
}

func (a *app) printParts(parts []core.PartRecord) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PART NUMBER\tDEVICE TYPE\tDEVICE NAME\tVALUE\t+TOL\t-TOL\tCASE\tCASE ID")
	for _, p := range parts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.PartNumber, p.DeviceType, p.DeviceName, p.Value,
			p.PositiveTolerance, p.NegativeTolerance, p.CaseName, p.CaseIdentifier)
	}
	return tw.Flush()
}

// partFlags binds one string flag per editable part attribute.
type partFlags struct {
	deviceType, deviceName, value string
	tolPlus, tolMinus             string
	caseName, caseID              string
}

func (f *partFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.deviceType, "device-type", "", "device type")
	fs.StringVar(&f.deviceName, "device-name", "", "device name")
	fs.StringVar(&f.value, "value", "", "value")
	fs.StringVar(&f.tolPlus, "tol-plus", "", "positive tolerance")
	fs.StringVar(&f.tolMinus, "tol-minus", "", "negative tolerance")
	fs.StringVar(&f.caseName, "case", "", "case name")
	fs.StringVar(&f.caseID, "case-id", "", "case identifier")
}

// apply copies every flag the user set onto p. Unset flags leave p alone,
// so "--value ''" clears a value while omitting --value keeps it.
func (f *partFlags) apply(cmd *cobra.Command, p *core.PartRecord) {
	for _, b := range []struct {
		name string
		src  string
		dst  *string
	}{
		{"device-type", f.deviceType, &p.DeviceType},
		{"device-name", f.deviceName, &p.DeviceName},
		{"value", f.value, &p.Value},
		{"tol-plus", f.tolPlus, &p.PositiveTolerance},
		{"tol-minus", f.tolMinus, &p.NegativeTolerance},
		{"case", f.caseName, &p.CaseName},
		{"case-id", f.caseID, &p.CaseIdentifier},
	} {
		if cmd.Flags().Changed(b.name) {
			*b.dst = b.src
		}
	}
}

func newSetCmd(a *app) *cobra.Command {
	var flags partFlags

	cmd := &cobra.Command{
		Use:   "set <part-number>",
		Short: "Edit attributes of one part",
		Args:  argsExactly(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pn := args[0]
			if cmd.Flags().NFlag() == 0 {
				return withCode(exitUsage, fmt.Errorf("no attribute flags given for %s", pn))
			}
			rs, err := a.service.Query(cmd.Context(), []string{pn})
			if err != nil {
				return err
			}

			err = rs.Edit(pn, func(p *core.PartRecord) {
				flags.apply(cmd, p)
			})
			if err != nil {
				return err
			}

			updated, err := a.service.Save(cmd.Context(), rs)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "updated %d parts\n", updated)
			return nil
		},
	}
	flags.register(cmd)
	return cmd
}

func newExportCmd(a *app) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "export <source>",
		Short: "Write a copy of a BOM file merged with library attributes",
		Args:  argsExactly(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.service.Export(cmd.Context(), args[0], outDir)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s (%d merged, %d unchanged)\n", res.Path, res.Merged, res.Echoed)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "", "output directory (default: configured export dir)")
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Replace the library with the backup taken before the last import",
		Args:  argsExactly(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return withCode(exitUsage, core.ErrRestoreNotConfirmed)
			}
			outcome, err := a.service.Restore(cmd.Context(), true)
			if err != nil {
				return err
			}
			switch outcome {
			case core.RestoreNoBackup:
				fmt.Fprintln(a.out, "no backup available")
			case core.RestoreAlreadyUpToDate:
				fmt.Fprintln(a.out, "library already matches the backup")
			default:
				fmt.Fprintln(a.out, "library restored from backup")
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm the restore")
	return cmd
}

func newMappingCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mapping",
		Short: "Show or change the column mapping",
	}
	cmd.AddCommand(newMappingShowCmd(a), newMappingSetCmd(a))
	return cmd
}

func newMappingShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the column mapping as JSON",
		Args:  argsExactly(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.service.Mapping(cmd.Context())
			if err != nil {
				return err
			}
			return a.printJSON(m)
		},
	}
}

func newMappingSetCmd(a *app) *cobra.Command {
	var next core.ColumnMapping

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change individual column numbers (0 unmaps a column)",
		Args:  argsExactly(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.service.Mapping(cmd.Context())
			if err != nil {
				return err
			}

			fs := cmd.Flags()
			for _, b := range []struct {
				name string
				src  int
				dst  *int
			}{
				{"part-number", next.PartNumberColumn, &m.PartNumberColumn},
				{"device-type", next.DeviceTypeColumn, &m.DeviceTypeColumn},
				{"device-name", next.DeviceNameColumn, &m.DeviceNameColumn},
				{"value", next.ValueColumn, &m.ValueColumn},
				{"tol-plus", next.PositiveToleranceColumn, &m.PositiveToleranceColumn},
				{"tol-minus", next.NegativeToleranceColumn, &m.NegativeToleranceColumn},
				{"case", next.CaseColumn, &m.CaseColumn},
				{"case-id", next.CaseIdentifierColumn, &m.CaseIdentifierColumn},
				{"drawing-ref", next.DrawingReferenceColumn, &m.DrawingReferenceColumn},
				{"skip-rows", next.SkippedRowCount, &m.SkippedRowCount},
			} {
				if fs.Changed(b.name) {
					*b.dst = b.src
				}
			}

			if err := a.service.SaveMapping(cmd.Context(), m); err != nil {
				return err
			}
			return a.printJSON(m)
		},
	}

	fs := cmd.Flags()
	fs.IntVar(&next.PartNumberColumn, "part-number", 0, "part number column")
	fs.IntVar(&next.DeviceTypeColumn, "device-type", 0, "device type column")
	fs.IntVar(&next.DeviceNameColumn, "device-name", 0, "device name column")
	fs.IntVar(&next.ValueColumn, "value", 0, "value column")
	fs.IntVar(&next.PositiveToleranceColumn, "tol-plus", 0, "positive tolerance column")
	fs.IntVar(&next.NegativeToleranceColumn, "tol-minus", 0, "negative tolerance column")
	fs.IntVar(&next.CaseColumn, "case", 0, "case column")
	fs.IntVar(&next.CaseIdentifierColumn, "case-id", 0, "case identifier column")
	fs.IntVar(&next.DrawingReferenceColumn, "drawing-ref", 0, "drawing reference column")
	fs.IntVar(&next.SkippedRowCount, "skip-rows", 0, "leading rows to skip")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file>",
		Short: "Show the first data line of a file with column numbers",
		Args:  argsExactly(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.service.Preview(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(a.out, p.Marked)
			return nil
		},
	}
}

func newStatusCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Summarize the part library",
		Args:  argsExactly(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.service.Status(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return a.printJSON(st)
			}
			tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
			fmt.Fprintf(tw, "parts:\t%d\n", st.Parts)
			fmt.Fprintf(tw, "database:\t%s\n", st.Database)
			fmt.Fprintf(tw, "mapping:\t%s\n", st.MappingDoc)
			fmt.Fprintf(tw, "backup:\t%s (present: %t)\n", st.Backup, st.HasBackup)
			fmt.Fprintf(tw, "separator:\t%q\n", st.Separator)
			return tw.Flush()
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	return cmd
}

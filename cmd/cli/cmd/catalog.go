package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cloudcost/core/catalog"
	"cloudcost/core/ui"
	"cloudcost/internal/config"
)

var catalogNoColor bool

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List the known machine types and their costs",
	Long: `Catalog prints the machine type catalog used for rightsizing:
each type's vCPU count, memory, hourly price, and derived monthly cost.`,
	RunE: runCatalog,
}

func init() {
	catalogCmd.Flags().BoolVar(&catalogNoColor, "no-color", false, "disable colored output")
}

func runCatalog(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	cat := catalog.Default()
	if cfg.Catalog.MachineTypesPath != "" {
		loaded, err := catalog.LoadFile(cfg.Catalog.MachineTypesPath)
		if err != nil {
			return err
		}
		cat = loaded
	}

	w := ui.NewWriter(os.Stdout, catalogNoColor || cfg.Output.NoColor)
	w.Header("Machine Type Catalog")

	table := w.NewTable("NAME", "VCPUS", "MEMORY (GB)", "HOURLY", "MONTHLY")
	for _, spec := range cat.Specs() {
		table.AddRow(
			spec.Name,
			fmt.Sprintf("%g", spec.VCPUs),
			fmt.Sprintf("%g", spec.MemoryGB),
			"$"+spec.CostPerHour.StringFixed(3),
			"$"+spec.MonthlyCost().StringFixed(2),
		)
	}
	table.Render()

	w.Info("%d machine types", cat.Len())
	return nil
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/sarchlab/cachesim/mem/cache"
	"github.com/spf13/cobra"
)

var geometryCmd = &cobra.Command{
	Use:   "geometry [address...]",
	Short: "Print the shape of a cache and decode addresses with it.",
	Long: "`geometry --size 1024 --ways 4 0x1048` prints the number of " +
		"sets and the line address, set, tag, and offset of 0x1048.",
	RunE: runGeometry,
}

func init() {
	rootCmd.AddCommand(geometryCmd)

	geometryCmd.Flags().Uint64("size", 1024, "Total size in bytes.")
	geometryCmd.Flags().Uint64("ways", 4, "Number of ways.")
	geometryCmd.Flags().Uint64("line-size", 64, "Line size in bytes.")
	geometryCmd.Flags().Uint64("stride", 0,
		"Address distance between sets. Zero means the line size.")
}

func runGeometry(cmd *cobra.Command, args []string) error {
	size, _ := cmd.Flags().GetUint64("size")
	ways, _ := cmd.Flags().GetUint64("ways")
	lineSize, _ := cmd.Flags().GetUint64("line-size")
	stride, _ := cmd.Flags().GetUint64("stride")

	g, err := cache.NewGeometry(size, lineSize, ways, stride)
	if err != nil {
		return err
	}

	agu := cache.NewDefaultAGU(g)
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "size %d, line size %d, ways %d, stride %d, sets %d\n",
		g.TotalSize, g.LineSize, g.Ways, g.Stride, g.NumSets())

	for _, arg := range args {
		addr, err := strconv.ParseUint(arg, 0, 64)
		if err != nil {
			return fmt.Errorf("cannot parse address %q: %w", arg, err)
		}

		fmt.Fprintf(out, "0x%x: line 0x%x, set %d, tag 0x%x, offset %d\n",
			addr,
			agu.LineAddr(addr),
			agu.Index(addr),
			agu.Tag(addr),
			agu.LineOffset(addr))
	}

	return nil
}

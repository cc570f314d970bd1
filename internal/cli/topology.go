package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/forcelayout/pkg/errors"
	"github.com/matzehuels/forcelayout/pkg/fdp"
	"github.com/matzehuels/forcelayout/pkg/graph"
	"github.com/matzehuels/forcelayout/pkg/topology"
)

// topologyCommand creates the topology command for writing generated graphs.
func (c *CLI) topologyCommand() *cobra.Command {
	var (
		output string
		seed   uint64
	)

	kinds := make([]string, 0, len(topology.Kinds()))
	for _, k := range topology.Kinds() {
		kinds = append(kinds, string(k))
	}

	cmd := &cobra.Command{
		Use:   "topology <kind> <size>",
		Short: "Write a generated graph as graph.json",
		Long: fmt.Sprintf(`Write a generated graph as graph.json.

Kinds: %s.

Size is the vertex count, except for grid (size×size vertices) and
hypercube (dimension, 2^size vertices). The random kind draws size edges
uniformly; --seed makes it reproducible.`, strings.Join(kinds, ", ")),
		Args:      cobra.ExactArgs(2),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := topology.ParseKind(args[0])
			if err != nil {
				return err
			}
			size, err := strconv.Atoi(args[1])
			if err != nil {
				return errors.Field(errors.ErrCodeInvalidInput, "size", "not an integer: %q", args[1])
			}

			g, err := topology.Generate(kind, size, fdp.NewRand(seed))
			if err != nil {
				return err
			}

			path := output
			if path == "" {
				path = fmt.Sprintf("%s-%d.json", kind, size)
			}
			if path == "-" {
				return graph.WriteGraph(g, c.Out)
			}
			if err := graph.WriteGraphFile(g, path); err != nil {
				return fmt.Errorf("write output %s: %w", path, err)
			}

			printSuccess("Generated %s graph", kind)
			printFile(path)
			printKeyValue("nodes", fmt.Sprint(g.NodeCount()))
			printKeyValue("edges", fmt.Sprint(g.EdgeCount()))
			printNewline()
			printNextStep("Lay out", fmt.Sprintf("%s simulate %s", appName, path))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file, '-' for stdout (default: <kind>-<size>.json)")
	cmd.Flags().Uint64Var(&seed, "seed", 0, "random seed for the random kind (0 = random)")

	return cmd
}

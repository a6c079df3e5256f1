package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/OpinionGraph/internal/application/extraction"
)

func newGraphCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "graph [file...]",
		Short: "Build the co-occurrence graph and print its nodes",
		Long: "Build the word co-occurrence graph of a tagged corpus and print every node\n" +
			"with its positional reference index (sentence:position) and its valid\n" +
			"start and end flags.  With neo4j.enabled and extraction.persist_graph the\n" +
			"graph is also written to the graph store.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd, func(ctx context.Context, cliCtx *CLIContext, svc extraction.Service) error {
				sentences, err := readCorpus(cmd, args)
				if err != nil {
					return err
				}
				g, err := svc.BuildGraph(ctx, opts.input(sentences))
				if err != nil {
					return err
				}
				return renderGraph(cmd.OutOrStdout(), cliCtx.OutputFormat, g)
			})
		},
	}
	opts.bind(cmd, false)
	return cmd
}

func renderGraph(w io.Writer, format string, g *extraction.GraphReport) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, g)
	case FormatTable:
		table := tablewriter.NewWriter(w)
		table.SetHeader([]string{"Word", "Tag", "PRI", "VSN", "VEN"})
		table.SetAutoWrapText(false)
		for _, n := range g.Nodes {
			table.Append([]string{
				n.Word, n.Tag.String(), strings.Join(n.PRI, " "),
				strconv.FormatBool(n.ValidStart), strconv.FormatBool(n.ValidEnd),
			})
		}
		table.Render()
	default:
		for _, n := range g.Nodes {
			fmt.Fprintf(w, "%s/%s pri=[%s] vsn=%t ven=%t\n",
				n.Word, n.Tag, strings.Join(n.PRI, " "), n.ValidStart, n.ValidEnd)
		}
	}
	_, err := fmt.Fprintf(w, "%d nodes, %d edges, %d valid start, %d valid end (threshold %g)\n",
		g.Stats.Nodes, g.Stats.Edges, g.Stats.StartNodes, g.Stats.EndNodes, g.Settings.StartThreshold)
	return err
}

//Personal.AI order the ending

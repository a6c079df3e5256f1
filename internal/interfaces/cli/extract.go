package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/turtacn/OpinionGraph/internal/application/extraction"
	"github.com/turtacn/OpinionGraph/internal/domain/phrase"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/OpinionGraph/internal/infrastructure/nlp"
	"github.com/turtacn/OpinionGraph/pkg/errors"
)

// NoPhrasesMessage is printed when a run ranks nothing.
const NoPhrasesMessage = "no opinion phrases found"

// extractOptions are the per-run overrides shared by extract and graph.
type extractOptions struct {
	profile   string
	threshold *float64
	maxGap    int
	minLength int
	maxLength int
	top       int
	noCache   bool
}

func (o *extractOptions) bind(cmd *cobra.Command, withRanking bool) {
	f := cmd.Flags()
	f.StringVar(&o.profile, "profile", "", "start threshold profile (strict, lenient)")
	f.Var(&thresholdFlag{target: &o.threshold}, "threshold", "average start position threshold (overrides --profile)")
	if !withRanking {
		return
	}
	f.IntVar(&o.maxGap, "max-gap", 0, "exclusive position gap for adjacent phrase words")
	f.IntVar(&o.minLength, "min-length", 0, "minimum path length in edges")
	f.IntVar(&o.maxLength, "max-length", 0, "maximum path length in edges")
	f.IntVar(&o.top, "top", 0, "print only the N best phrases (0 prints all)")
	f.BoolVar(&o.noCache, "no-cache", false, "bypass the report cache")
}

func (o *extractOptions) input(sentences []string) *extraction.Input {
	return &extraction.Input{
		Sentences: sentences,
		Source:    "cli",
		Profile:   o.profile,
		Threshold: o.threshold,
		MaxGap:    o.maxGap,
		MinLength: o.minLength,
		MaxLength: o.maxLength,
		SkipCache: o.noCache,
	}
}

// thresholdFlag leaves its target nil until --threshold is given, so an
// explicit 0 still overrides the profile.
type thresholdFlag struct {
	target **float64
}

func (f *thresholdFlag) String() string {
	if f.target == nil || *f.target == nil {
		return ""
	}
	return strconv.FormatFloat(**f.target, 'g', -1, 64)
}

func (f *thresholdFlag) Set(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f.target = &v
	return nil
}

func (f *thresholdFlag) Type() string { return "float64" }

func newExtractCmd() *cobra.Command {
	opts := &extractOptions{}
	cmd := &cobra.Command{
		Use:   "extract [file...]",
		Short: "Rank opinion phrases in a tagged corpus",
		Long: "Read word/TAG sentences, one per line, from the given files or from stdin\n" +
			"(\"-\" or no arguments) and print the ranked opinion phrases.",
		Example: "  opiniongraph extract reviews.txt\n" +
			"  opiniongraph extract --profile lenient -o table < reviews.txt",
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.top < 0 {
				return errors.InvalidParam("--top must not be negative")
			}
			return withService(cmd, func(ctx context.Context, cliCtx *CLIContext, svc extraction.Service) error {
				sentences, err := readCorpus(cmd, args)
				if err != nil {
					return err
				}
				report, err := svc.Extract(ctx, opts.input(sentences))
				if err != nil {
					return err
				}
				cliCtx.Logger.Info("extraction finished",
					logging.String("run_id", report.RunID),
					logging.Int("phrases", len(report.Phrases)),
					logging.Bool("cached", report.Cached))
				report.Truncate(opts.top)
				return renderReport(cmd.OutOrStdout(), cliCtx.OutputFormat, cliCtx.Verbose, report)
			})
		},
	}
	opts.bind(cmd, true)
	return cmd
}

// withService applies the global timeout, builds the service and releases it
// when fn returns.
func withService(cmd *cobra.Command, fn func(context.Context, *CLIContext, extraction.Service) error) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if cliCtx.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cliCtx.Timeout)
		defer cancel()
	}

	svc, err := cliCtx.Service(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := cliCtx.close(context.WithoutCancel(ctx)); cerr != nil {
			cliCtx.Logger.Warn("failed to release backends", logging.Err(cerr))
		}
	}()
	return fn(ctx, cliCtx, svc)
}

// readCorpus concatenates the sentences of every named file; "-" or no names
// read stdin.
func readCorpus(cmd *cobra.Command, names []string) ([]string, error) {
	if len(names) == 0 {
		names = []string{"-"}
	}
	var all []string
	for _, name := range names {
		var r io.Reader
		if name == "-" {
			r = cmd.InOrStdin()
		} else {
			f, err := os.Open(name)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeInvalidParam, "cannot open corpus").WithDetail("file=" + name)
			}
			defer f.Close()
			r = f
		}
		sentences, err := nlp.ReadCorpus(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInvalidParam, "cannot read corpus").WithDetail("file=" + name)
		}
		all = append(all, sentences...)
	}
	return all, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Rendering
// ─────────────────────────────────────────────────────────────────────────────

func renderReport(w io.Writer, format string, verbose bool, r *extraction.Report) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, r)
	case FormatTable:
		if len(r.Phrases) == 0 {
			_, err := fmt.Fprintln(w, NoPhrasesMessage)
			return err
		}
		writePhraseTable(w, r.Phrases)
	default:
		if len(r.Phrases) == 0 {
			_, err := fmt.Fprintln(w, NoPhrasesMessage)
			return err
		}
		for i, p := range r.Phrases {
			fmt.Fprintf(w, "%2d. %s  %s", i+1, scoreString(p.Score), p.Text())
			if len(p.Templates) > 0 {
				fmt.Fprintf(w, "  [%s]", strings.Join(p.Templates, ","))
			}
			fmt.Fprintln(w)
		}
	}
	if verbose {
		st := r.Stats
		fmt.Fprintf(w, "\nrun %s: %d sentences, %d nodes, %d edges, %d start, %d end, %d candidates",
			r.RunID, st.Sentences, st.Nodes, st.Edges, st.StartNodes, st.EndNodes, st.Candidates)
		if r.Cached {
			fmt.Fprint(w, " (cached)")
		}
		fmt.Fprintln(w)
	}
	return nil
}

func writePhraseTable(w io.Writer, phrases []phrase.RankedPhrase) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Rank", "Score", "Overlap", "Length", "Phrase", "Tags", "Templates"})
	table.SetAutoWrapText(false)
	for i, p := range phrases {
		table.Append([]string{
			strconv.Itoa(i + 1),
			fmt.Sprintf("%.4f", p.Score),
			strconv.Itoa(p.Overlap),
			strconv.Itoa(p.Length),
			p.Text(),
			strings.Join(p.Tags, " "),
			strings.Join(p.Templates, ","),
		})
	}
	table.Render()
}

func scoreString(score float64) string {
	s := fmt.Sprintf("%.4f", score)
	if score > 0 {
		return color.GreenString(s)
	}
	return color.YellowString(s)
}

//Personal.AI order the ending

// Command tabulate ranks a snapshot file offline with the same engine the
// server uses. It prints one classification when -category, -level and
// -medium are given, and the overall division standings otherwise.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/okian/tally/internal/config"
	"github.com/okian/tally/internal/domain/model"
	"github.com/okian/tally/internal/domain/scoring"
	"github.com/okian/tally/internal/domain/tabulation"
	"github.com/okian/tally/internal/snapshot"
	"github.com/okian/tally/pkg/logger"
)

// Output formats.
const (
	formatText = "text"
	formatJSON = "json"
)

var errUsage = errors.New("usage")

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			os.Stderr.WriteString("tabulate: " + err.Error() + "\n")
		}
		os.Exit(2)
	}
}

type options struct {
	snapshot  string
	format    string
	class     model.Classification
	cutoff    int
	recompute bool
}

func parseFlags(args []string, out io.Writer) (options, error) {
	var (
		o                       options
		category, level, medium string
	)
	fs := flag.NewFlagSet("tabulate", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.StringVar(&o.snapshot, "snapshot", "", "JSON or YAML snapshot of contestants and scores (required)")
	fs.StringVar(&o.format, "format", formatText, "output format: text or json")
	fs.StringVar(&category, "category", "", "rank a single category")
	fs.StringVar(&level, "level", "", "level of the single classification")
	fs.StringVar(&medium, "medium", "", "medium of the single classification")
	fs.IntVar(&o.cutoff, "cutoff", -1, "points cutoff; defaults to the configured value")
	fs.BoolVar(&o.recompute, "recompute", false, "recompute totals, deductions and finals from raw scores")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	o.class = model.Classification{
		Category: model.Category(category),
		Level:    model.Level(level),
		Medium:   model.Medium(medium),
	}
	switch {
	case o.snapshot == "":
		return options{}, fmt.Errorf("%w: -snapshot is required", errUsage)
	case o.format != formatText && o.format != formatJSON:
		return options{}, fmt.Errorf("%w: unknown format %q", errUsage, o.format)
	case (category != "" || level != "" || medium != "") && o.class.IsZero():
		return options{}, fmt.Errorf("%w: -category, -level and -medium go together", errUsage)
	}
	return o, nil
}

func run(ctx context.Context, args []string, out io.Writer) error {
	o, err := parseFlags(args, out)
	if err != nil {
		return err
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	if o.cutoff < 0 {
		o.cutoff = cfg.PointsCutoff
	}
	book, err := cfg.Event.Book()
	if err != nil {
		return err
	}
	engine, err := tabulation.NewEngine(
		tabulation.WithRubrics(book),
		tabulation.WithClassifications(cfg.Event.Categories, cfg.Event.Levels, cfg.Event.Mediums),
		tabulation.WithPointsCutoff(o.cutoff),
	)
	if err != nil {
		return err
	}

	snap, err := snapshot.Load(o.snapshot)
	if err != nil {
		return err
	}
	if o.recompute {
		calc, err := cfg.Event.Calculator()
		if err != nil {
			return err
		}
		sheet, err := scoring.NewSheet(scoring.WithRubrics(book), scoring.WithDeductions(calc))
		if err != nil {
			return err
		}
		recompute(ctx, sheet, snap)
	}

	if !o.class.IsZero() {
		ranking, err := engine.Rank(o.class, snap.Contestants, snap.Scores)
		if err != nil {
			return err
		}
		points := tabulation.DivisionPoints(ranking.Results, o.cutoff)
		if o.format == formatJSON {
			return writeJSON(out, map[string]any{"ranking": ranking, "division_points": points})
		}
		return printRanking(out, ranking, points)
	}

	standings, err := engine.Overall(snap.Contestants, snap.Scores)
	if err != nil {
		return err
	}
	if o.format == formatJSON {
		return writeJSON(out, map[string]any{"standings": standings.Sorted(), "combinations": standings.Combinations, "warnings": standings.Warnings})
	}
	return printStandings(out, standings)
}

// recompute rewrites every entry's derived scores from its raw values.
// Entries are scored under their contestant's category.
func recompute(ctx context.Context, sheet *scoring.Sheet, snap snapshot.Snapshot) {
	categories := make(map[string]model.Category, len(snap.Contestants))
	for _, c := range snap.Contestants {
		categories[c.ID] = c.Category
	}
	for i := range snap.Scores {
		e := &snap.Scores[i]
		cat, ok := categories[e.ContestantID]
		if !ok {
			continue
		}
		res, err := sheet.Score(scoring.Input{Category: cat, RawScores: e.RawScores, ElapsedSeconds: e.ElapsedSeconds})
		if err != nil {
			logger.Get().Warn(ctx, "keeping stored scores for entry",
				logger.String("contestant", e.ContestantID),
				logger.String("judge", e.JudgeID),
				logger.Error(err),
			)
			continue
		}
		e.RawScores, e.TotalScore, e.TimeDeduction, e.FinalScore = res.Values, res.Total, res.Deduction, res.Final
	}
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printRanking(out io.Writer, r tabulation.Ranking, points map[string]int) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "%s\n\n", r.Classification)
	header := []string{"RANK", "CODE", "DIVISION"}
	header = append(header, r.Judges...)
	header = append(header, "SUM", "AVERAGE", "MAX")
	fmt.Fprintln(tw, strings.Join(header, "\t"))
	for _, res := range r.Results {
		row := []string{strconv.Itoa(res.FinalRank), res.ContestantCode, res.Division}
		for _, jr := range res.JudgeRanks {
			row = append(row, strconv.Itoa(jr))
		}
		row = append(row,
			strconv.Itoa(res.SumOfRanks),
			strconv.FormatFloat(res.AverageRawScore, 'f', 2, 64),
			strconv.FormatFloat(res.MaxIndividualScore, 'f', 2, 64),
		)
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	fmt.Fprintln(tw)
	fmt.Fprintln(tw, "DIVISION\tPOINTS")
	for _, s := range (tabulation.Standings{Totals: points}).Sorted() {
		fmt.Fprintf(tw, "%s\t%d\n", s.Division, s.Points)
	}
	printWarnings(tw, r.Warnings)
	return tw.Flush()
}

func printStandings(out io.Writer, s tabulation.Standings) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PLACE\tDIVISION\tPOINTS")
	for _, d := range s.Sorted() {
		fmt.Fprintf(tw, "%d\t%s\t%d\n", d.Place, d.Division, d.Points)
	}
	fmt.Fprintf(tw, "\n%d classifications tabulated\n", len(s.Combinations))
	printWarnings(tw, s.Warnings)
	return tw.Flush()
}

func printWarnings(w io.Writer, warnings []tabulation.Warning) {
	if len(warnings) == 0 {
		return
	}
	fmt.Fprintf(w, "\nWARNINGS (%d)\n", len(warnings))
	for _, wn := range warnings {
		fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\n", wn.Kind, wn.Classification, wn.ContestantID, wn.JudgeID, wn.Detail)
	}
}

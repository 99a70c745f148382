// Package cli renders answers and status for the kotae command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/hyperjump/kotae/internal/locale"
	"github.com/hyperjump/kotae/internal/models"
	"github.com/hyperjump/kotae/pkg/utils"
)

// OutputFormat is the format for answer and status output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact is one line per answer: tier, distance, answer.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, compact, json)", s)
	}
}

const compactAnswerLen = 120

// WriteAnswer writes resp to w in the given format. Text and compact output
// are localized to resp.Lang; JSON carries the answer as resolved.
func WriteAnswer(w io.Writer, resp *models.AnswerResponse, format OutputFormat) error {
	strs := locale.For(resp.Lang)
	res := &models.Resolution{Answer: resp.Answer, Distance: resp.Distance, Tier: resp.Tier, LineIndex: resp.LineIndex}
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		_, err := fmt.Fprintf(w, "%s\t%.2f\t%s\n", resp.Tier, resp.Distance, utils.Truncate(strs.DisplayAnswer(res), compactAnswerLen))
		return err
	default:
		fmt.Fprintf(w, "\n%s\n", strs.AnswerHeading)
		fmt.Fprintf(w, "─────────────────────────────────────────────────────────\n")
		fmt.Fprintf(w, "%s\n\n", strs.DisplayAnswer(res))
		_, err := fmt.Fprintf(w, "%s %s (%s: %.2f) • %dms\n", locale.TierIcon(resp.Tier), strs.TierLabel(resp.Tier), strs.DistanceLabel, resp.Distance, resp.QueryTimeMs)
		return err
	}
}

// WriteStatus writes an engine status summary to w.
func WriteStatus(w io.Writer, st *models.StatusResponse, format OutputFormat, lang string) error {
	if format == OutputJSON {
		return writeJSON(w, st)
	}
	strs := locale.For(lang)
	if format == OutputCompact {
		_, err := fmt.Fprintf(w, "%s\t%s\t%d lines\t%d %s\t%d dims\n", st.Status, st.Embedder, st.Lines, st.Topics, strings.ToLower(strs.StatsTopics), st.Dimensions)
		return err
	}
	fmt.Fprintf(w, "Status:          %s\n", st.Status)
	fmt.Fprintf(w, "Source:          %s\n", st.Source)
	fmt.Fprintf(w, "Embedder:        %s\n", st.Embedder)
	fmt.Fprintf(w, "Lines:           %d (%d questions, %d answers, %d orphan questions)\n", st.Lines, st.Questions, st.Answers, st.OrphanQuestions)
	fmt.Fprintf(w, "%-17s%d\n", strs.StatsTopics+":", st.Topics)
	fmt.Fprintf(w, "%-17s%d\n", strs.StatsLanguages+":", st.Languages)
	fmt.Fprintf(w, "%-17s%d\n", strs.StatsVectorSize+":", st.Dimensions)
	fmt.Fprintf(w, "Top k:           %d\n", st.TopK)
	if st.BuiltAt != nil {
		fmt.Fprintf(w, "Built at:        %s\n", st.BuiltAt.Local().Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintf(w, "Answers logged:  %d\n", st.AnswersLogged)
	_, err := fmt.Fprintf(w, "Disk usage:      %s\n", FormatBytes(st.DiskUsageBytes))
	return err
}

// PrintAnswer prints resp to stdout in text format.
func PrintAnswer(resp *models.AnswerResponse) {
	_ = WriteAnswer(os.Stdout, resp, OutputText)
}

// FormatBytes renders n with a binary unit suffix.
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

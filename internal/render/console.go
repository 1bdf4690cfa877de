// Package render formats verdicts for the terminal.
package render

import (
	"fmt"
	"io"
	"math"
	"strings"
	"unicode"

	"github.com/charmbracelet/lipgloss"

	"NewsVerdict/internal/domain"
)

const barWidth = 20

// Console renders reports with lipgloss styles bound to its writer.
type Console struct {
	w io.Writer

	title   lipgloss.Style
	real    lipgloss.Style
	fake    lipgloss.Style
	info    lipgloss.Style
	warning lipgloss.Style
	box     lipgloss.Style
}

// NewConsole binds styles to w so color is only emitted on terminals.
func NewConsole(w io.Writer) *Console {
	r := lipgloss.NewRenderer(w)
	return &Console{
		w:       w,
		title:   r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4")),
		real:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575")),
		fake:    r.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4D4D")),
		info:    r.NewStyle().Foreground(lipgloss.Color("#626262")),
		warning: r.NewStyle().Foreground(lipgloss.Color("#FFB000")),
		box: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2),
	}
}

// Sentence is the one-line verdict shown to users.
func Sentence(label domain.Label) string {
	return fmt.Sprintf("The news article is %s.", titleCase(label.String()))
}

// Report prints a verdict box followed by the credibility breakdown.
func (c *Console) Report(report domain.Report) error {
	labelStyle := c.fake
	if report.Label == domain.LabelReal {
		labelStyle = c.real
	}

	lines := []string{
		c.title.Render("Prediction"),
		labelStyle.Render(Sentence(report.Label)),
	}
	if report.Confidence != nil {
		lines = append(lines, fmt.Sprintf("Confidence  %s %5.1f%%", bar(*report.Confidence), *report.Confidence*100))
	} else {
		lines = append(lines, c.info.Render("Confidence  not available for this model"))
	}

	lines = append(lines,
		"",
		c.title.Render("Credibility"),
		fmt.Sprintf("Words       %d", report.WordCount),
		fmt.Sprintf("Sentences   %d", report.SentenceCount),
		fmt.Sprintf("Reliability %s %.2f", bar(report.ReliabilityScore), report.ReliabilityScore),
	)
	if report.Language != "" {
		lines = append(lines, fmt.Sprintf("Language    %s", report.Language))
	}

	if len(report.Factors) > 0 {
		lines = append(lines, "")
		for _, f := range report.Factors {
			lines = append(lines, fmt.Sprintf("%-18s %s %.2f x %.1f", f.Name, bar(f.Value), f.Value, f.Weight))
		}
	}

	var footer []string
	if report.Cached {
		footer = append(footer, "cached")
	}
	if report.ID != "" {
		footer = append(footer, "id "+report.ID)
	}
	if len(footer) > 0 {
		lines = append(lines, "", c.info.Render(strings.Join(footer, " · ")))
	}

	_, err := fmt.Fprintln(c.w, c.box.Render(strings.Join(lines, "\n")))
	return err
}

// Warning prints a highlighted one-line message.
func (c *Console) Warning(msg string) error {
	_, err := fmt.Fprintln(c.w, c.warning.Render(msg))
	return err
}

// Model prints the loaded artifact description.
func (c *Console) Model(info domain.ModelInfo) error {
	probabilities := "no"
	if info.HasProbabilities {
		probabilities = "yes"
	}

	lines := []string{
		c.title.Render("Model"),
		fmt.Sprintf("Vectorizer     %s (%s)", info.VectorizerKind, info.Vectorizer),
		fmt.Sprintf("Classifier     %s (%s)", info.ClassifierKind, info.Model),
		fmt.Sprintf("Features       %d", info.Features),
		fmt.Sprintf("Probabilities  %s", probabilities),
		fmt.Sprintf("Fingerprint    %s", info.Fingerprint),
	}
	_, err := fmt.Fprintln(c.w, c.box.Render(strings.Join(lines, "\n")))
	return err
}

// History prints one line per verdict, newest first.
func (c *Console) History(verdicts []domain.Verdict) error {
	if len(verdicts) == 0 {
		_, err := fmt.Fprintln(c.w, c.info.Render("No verdicts recorded yet."))
		return err
	}

	for _, v := range verdicts {
		labelStyle := c.fake
		if v.Label == domain.LabelReal {
			labelStyle = c.real
		}
		conf := "  n/a"
		if v.Confidence != nil {
			conf = fmt.Sprintf("%4.0f%%", *v.Confidence*100)
		}
		line := fmt.Sprintf("%s  %s %s  %.2f  %s",
			c.info.Render(v.CreatedAt.Local().Format("2006-01-02 15:04")),
			labelStyle.Render(fmt.Sprintf("%-4s", v.Label.String())),
			conf,
			v.ReliabilityScore,
			v.Excerpt)
		if _, err := fmt.Fprintln(c.w, line); err != nil {
			return err
		}
	}
	return nil
}

// bar draws a fixed-width gauge for a value in [0, 1].
func bar(value float64) string {
	filled := int(math.Round(math.Max(0, math.Min(1, value)) * barWidth))
	return strings.Repeat("█", filled) + strings.Repeat("░", barWidth-filled)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"helpdesk/internal/errs"
	"helpdesk/internal/usecase/report"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print ticket and knowledge-base counts",
	RunE: withApp(func(cmd *cobra.Command, svc services) error {
		snapshot, err := svc.Report.Snapshot(cmd.Context())
		if err != nil {
			return errs.Wrap(err, "build report")
		}

		return writeOutput(cmd, snapshot, func(w io.Writer) error {
			return writeReportText(w, snapshot)
		})
	}),
}

func writeReportText(w io.Writer, snapshot report.Snapshot) error {
	sectionStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	barStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("62"))

	sections := []struct {
		title   string
		buckets []report.Bucket
	}{
		{title: "Tickets by status", buckets: snapshot.Status},
		{title: "Tickets by priority", buckets: snapshot.Priority},
		{title: "Tickets by assignee", buckets: snapshot.Assignment},
		{title: "KB articles by category", buckets: snapshot.KBCategory},
	}

	var builder strings.Builder
	for _, section := range sections {
		builder.WriteString(sectionStyle.Render(section.title))
		builder.WriteString("\n")
		if len(section.buckets) == 0 {
			builder.WriteString("  -\n\n")
			continue
		}

		width := 0
		var peak int64
		for _, bucket := range section.buckets {
			width = max(width, len(bucket.Label))
			peak = max(peak, bucket.Count)
		}
		for _, bucket := range section.buckets {
			bar := strings.Repeat("#", int(bucket.Count*30/max(peak, 1)))
			builder.WriteString(fmt.Sprintf("  %-*s %5d %s\n", width, bucket.Label, bucket.Count, barStyle.Render(bar)))
		}
		builder.WriteString("\n")
	}

	_, err := io.WriteString(w, builder.String())
	return err
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addFormatFlag(reportCmd)
}

package output

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/masmgr/repometrics-go/internal/aggregation"
)

// CSVReportWriter writes metrics reports as CSV. The report is flattened to
// one author per row; histogram sections have no tabular equivalent here.
type CSVReportWriter struct{}

// Write outputs the author table of the report as CSV.
func (w *CSVReportWriter) Write(report *aggregation.Report, options OutputOptions) error {
	authors := limitTop(report.Authors, options.Top)

	writer, file, err := createCSVWriter(options.OutputPath)
	if err != nil {
		return err
	}
	if file != nil {
		defer file.Close()
	}

	headers := []string{"Name", "Email", "Commits", "LinesAdded", "LinesRemoved", "Churn",
		"FirstCommit", "LastCommit"}
	if err := writer.Write(headers); err != nil {
		return err
	}

	for _, a := range authors {
		row := []string{
			a.Name,
			a.Email,
			fmt.Sprintf("%d", a.Commits),
			fmt.Sprintf("%d", a.LinesAdded),
			fmt.Sprintf("%d", a.LinesRemoved),
			fmt.Sprintf("%d", a.Churn()),
			a.FirstCommit.Format(reportDateTimeLayout),
			a.LastCommit.Format(reportDateTimeLayout),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	writer.Flush()
	return writer.Error()
}

func createCSVWriter(outputPath string) (*csv.Writer, *os.File, error) {
	if outputPath != "" {
		file, err := os.Create(outputPath)
		if err != nil {
			return nil, nil, err
		}
		return csv.NewWriter(file), file, nil
	}
	return csv.NewWriter(os.Stdout), nil, nil
}

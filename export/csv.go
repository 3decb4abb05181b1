package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/maastricht-university/lipsync-pipeline/viseme"
)

type csvWriter struct{}

func (csvWriter) Ext() string { return ".csv" }

func (csvWriter) Write(w io.Writer, doc *Document) error { return EncodeCSV(w, doc.Frames) }

// Header is the CSV column layout: timestamp, dominant_viseme, laugh_score
// and one column per viseme category.
func Header() []string {
	return append([]string{"timestamp", "dominant_viseme", "laugh_score"}, viseme.Names()...)
}

func EncodeCSV(w io.Writer, records []viseme.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return err
	}
	names := viseme.Names()
	row := make([]string, 3+len(names))
	for _, r := range records {
		row[0] = formatFloat(r.Timestamp)
		row[1] = r.Dominant
		row[2] = formatFloat(r.Laugh)
		for i, n := range names {
			row[3+i] = formatFloat(r.Visemes[n])
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', 6, 64) }

// Package export serializes preview results to CSV for download.
package export

import (
	"encoding/csv"
	"io"

	ierrors "github.com/linkpeek/linkpeek/internal/errors"
	"github.com/linkpeek/linkpeek/types"
)

var csvHeader = []string{"URL", "Title", "Description", "Image"}

// WriteCSV writes a header row followed by one row per record.
func WriteCSV(w io.Writer, records []types.MetadataRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return ierrors.Wrap(err, "failed to write CSV header")
	}

	for _, r := range records {
		image := ""
		if r.Image != nil {
			image = *r.Image
		}
		if err := cw.Write([]string{r.URL, r.Title, r.Description, image}); err != nil {
			return ierrors.Wrap(err, "failed to write CSV row")
		}
	}

	cw.Flush()
	return ierrors.Wrap(cw.Error(), "failed to flush CSV")
}

package dataset

import (
	"context"
	"log/slog"
	"os"
	"time"
)

// UnknownDate is shown when the records dataset has no modification time.
const UnknownDate = "未知"

// Status carries the informational decorations of the page: whether the CSV
// export of the merged data can be downloaded, and when the data was merged.
// Neither affects table logic.
type Status struct {
	CSVAvailable bool       `json:"csv_available"`
	LastModified *time.Time `json:"last_modified,omitempty"`
}

// LastModifiedText formats LastModified as a date, or UnknownDate.
func (s Status) LastModifiedText() string {
	if s.LastModified == nil || s.LastModified.IsZero() {
		return UnknownDate
	}
	return s.LastModified.Format("2006-01-02")
}

// Availability checks the optional decorations.
type Availability struct {
	Source  Source
	CSVPath string
}

// Status runs both checks. Failures are logged and reported as absent.
func (a Availability) Status(ctx context.Context) Status {
	var st Status

	if a.CSVPath != "" {
		fi, err := os.Stat(a.CSVPath)
		switch {
		case err != nil:
			slog.Debug("csv download unavailable", "path", a.CSVPath, "error", err)
		case fi.Mode().IsRegular():
			st.CSVAvailable = true
		}
	}

	if a.Source != nil {
		mod, err := a.Source.ModTime(ctx, Records)
		if err != nil {
			slog.Debug("records modification time unavailable", "error", err)
		} else if !mod.IsZero() {
			st.LastModified = &mod
		}
	}

	return st
}

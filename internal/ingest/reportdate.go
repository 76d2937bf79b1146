package ingest

import (
	"bufio"
	"os"
	"regexp"

	"github.com/agentstation/utc"

	"github.com/agentstation/tradematch/pkg/errors"
)

// ReportDateLayout is the as-of date format of trade state reports.
const ReportDateLayout = "2006-01-02"

var isoDate = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)

// ParseReportDate validates a YYYY-MM-DD calendar date.
func ParseReportDate(s string) (utc.Time, error) {
	t, err := utc.Parse(ReportDateLayout, s)
	if err != nil {
		return utc.Time{}, errors.NewValidationError("report-date", s, "must be a YYYY-MM-DD date")
	}
	return t, nil
}

// ReportDate extracts the first YYYY-MM-DD date on line n (1-based) of path.
// Trade state reports carry their as-of date in a preamble line. A match that
// is not a calendar date, such as 2024-13-40, is a validation error.
func ReportDate(path string, n int) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.WrapIO("open", path, err)
	}
	defer f.Close() //nolint:errcheck

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for i := 1; sc.Scan(); i++ {
		if i < n {
			continue
		}
		d := isoDate.FindString(sc.Text())
		if d == "" {
			break
		}
		t, err := ParseReportDate(d)
		if err != nil {
			return "", err
		}
		return t.Format(ReportDateLayout), nil
	}
	if err := sc.Err(); err != nil {
		return "", errors.WrapIO("read", path, err)
	}
	return "", errors.NewNotFoundError("report date", path)
}

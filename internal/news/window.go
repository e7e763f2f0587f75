package news

import "time"

// dateLayout is the calendar date format the Finnhub API expects.
const dateLayout = "2006-01-02"

// Window is an inclusive calendar date range in upstream date format.
type Window struct {
	From string
	To   string
}

// DateWindow returns the range ending on the UTC date of now and starting
// days calendar days earlier.
func DateWindow(days int, now time.Time) Window {
	now = now.UTC()
	return Window{
		From: now.AddDate(0, 0, -days).Format(dateLayout),
		To:   now.Format(dateLayout),
	}
}

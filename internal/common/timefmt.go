package common

import (
	"time"

	"github.com/golang-module/carbon/v2"
)

// FormatDateTime renders t as "2006-01-02 15:04:05" in timezone. An unknown
// timezone falls back to UTC.
func FormatDateTime(t time.Time, timezone string) string {
	c := carbon.Time2Carbon(t).SetTimezone(timezone)
	if c.Error != nil {
		c = carbon.Time2Carbon(t).SetTimezone(carbon.UTC)
	}
	return c.ToDateTimeString()
}

// FormatUptime renders d rounded down to whole seconds, e.g. "1h2m3s"
func FormatUptime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Truncate(time.Second).String()
}

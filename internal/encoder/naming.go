package encoder

import (
	"fmt"
	"time"
)

// Naming selects how movies are named.
type Naming string

const (
	// NamingParams names a movie after its initial angles.
	NamingParams Naming = "params"
	// NamingTimestamp names a movie after the time it was made.
	NamingTimestamp Naming = "timestamp"
)

func ParamsName(alpha0, beta0 float64) string {
	return fmt.Sprintf("dsp_%.2f_%.2f.mp4", alpha0, beta0)
}

func TimestampName(t time.Time) string {
	return "pend_" + t.Format("20060102-150405") + ".mp4"
}

// MovieName picks the file name for a run. now is only called for
// timestamp naming.
func MovieName(n Naming, alpha0, beta0 float64, now func() time.Time) (string, error) {
	switch n {
	case NamingParams:
		return ParamsName(alpha0, beta0), nil
	case NamingTimestamp, "":
		if now == nil {
			now = time.Now
		}
		return TimestampName(now()), nil
	default:
		return "", fmt.Errorf("unknown movie naming %q (want %q or %q)", n, NamingParams, NamingTimestamp)
	}
}

// Package env keeps names of environment variables with special significance to
// boxcalc.
package env

// Environment variables with special significance to boxcalc.
//
// Note that some of these env vars may be significant only in special
// circumstances, such as when running unit tests.
const (
	BOXCALC_API_URL         = "BOXCALC_API_URL"
	BOXCALC_DATA_DIR        = "BOXCALC_DATA_DIR"
	BOXCALC_DB              = "BOXCALC_DB"
	BOXCALC_LOG             = "BOXCALC_LOG"
	BOXCALC_RELAY_ADDR      = "BOXCALC_RELAY_ADDR"
	BOXCALC_SESSION         = "BOXCALC_SESSION"
	BOXCALC_TEST_TIME_SCALE = "BOXCALC_TEST_TIME_SCALE"
	BOXCALC_TOPIC           = "BOXCALC_TOPIC"
)

package session

import "time"

// SetNowFunc pins the package clock for tests and returns a restore func.
func SetNowFunc(f func() time.Time) (restore func()) {
	orig := nowFunc
	nowFunc = f
	return func() { nowFunc = orig }
}

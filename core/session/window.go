package session

import (
	"time"

	"github.com/convenientedu/portal/core"
)

// withinWindow reports whether now falls inside the join window around a
// scheduled class time. Only minutes-of-day are compared; the calendar day
// is enforced separately by token expiry. The window opens futureTol before
// the scheduled minute and closes pastTol after it, both bounds inclusive.
func withinWindow(classTime string, now time.Time, pastTol, futureTol time.Duration) (bool, error) {
	hour, min, err := core.ParseClassTime(classTime)
	if err != nil {
		return false, err
	}
	scheduled := core.MinuteOfDay(hour, min)
	current := core.MinuteOfDay(now.Hour(), now.Minute())

	diff := current - scheduled // positive once the class has started
	return diff <= int(pastTol.Minutes()) && -diff <= int(futureTol.Minutes()), nil
}

package prayer

import "time"

// ScheduleConfig drives the screen-state scheduler and the iqamah countdown.
type ScheduleConfig struct {
	IqamahDelays   PerPrayerMinutes
	PrayerDuration PerPrayerMinutes
	// PostPrayerDhikrDuration applies after every prayer, in minutes.
	PostPrayerDhikrDuration      int
	EnablePrayerInProgressScreen bool
	EnablePostPrayerDhikrScreen  bool
}

// Config is an immutable snapshot of everything the core needs for one mosque.
type Config struct {
	Coordinates Coordinates
	Method      Method
	Madhab      Madhab
	Adjustments Adjustments
	Schedule    ScheduleConfig
}

// tomorrow returns local midnight of the day after now.
func tomorrow(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, now.Location())
}

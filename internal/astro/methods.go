package astro

// Method presets. Each returns Params with the standard (Shafi) asr factor;
// callers override AsrFactor for Hanafi.

func MuslimWorldLeague() Params {
	return Params{FajrAngle: 18, IshaAngle: 17, AsrFactor: 1, Adjustments: Adjustments{Dhuhr: 1}}
}

func Egyptian() Params {
	return Params{FajrAngle: 19.5, IshaAngle: 17.5, AsrFactor: 1, Adjustments: Adjustments{Dhuhr: 1}}
}

func Karachi() Params {
	return Params{FajrAngle: 18, IshaAngle: 18, AsrFactor: 1, Adjustments: Adjustments{Dhuhr: 1}}
}

// NorthAmerica is the ISNA method.
func NorthAmerica() Params {
	return Params{FajrAngle: 15, IshaAngle: 15, AsrFactor: 1, Adjustments: Adjustments{Dhuhr: 1}}
}

// UmmAlQura places isha a fixed 90 minutes after maghrib.
func UmmAlQura() Params {
	return Params{FajrAngle: 18.5, IshaInterval: 90, AsrFactor: 1}
}

func Qatar() Params {
	return Params{FajrAngle: 18, IshaInterval: 90, AsrFactor: 1}
}

func Kuwait() Params {
	return Params{FajrAngle: 18, IshaAngle: 17.5, AsrFactor: 1}
}

func Dubai() Params {
	return Params{
		FajrAngle: 18.2, IshaAngle: 18.2, AsrFactor: 1,
		Adjustments: Adjustments{Sunrise: -3, Dhuhr: 3, Asr: 3, Maghrib: 3},
	}
}

// MoonsightingCommittee starts from 18° angles and bounds them by the
// committee's seasonal twilight curves.
func MoonsightingCommittee() Params {
	return Params{
		FajrAngle: 18, IshaAngle: 18, AsrFactor: 1, Seasonal: true,
		Adjustments: Adjustments{Dhuhr: 5, Maghrib: 3},
	}
}

func Singapore() Params {
	return Params{FajrAngle: 20, IshaAngle: 18, AsrFactor: 1, Adjustments: Adjustments{Dhuhr: 1}}
}

// Turkey is the Diyanet method with its published minute offsets.
func Turkey() Params {
	return Params{
		FajrAngle: 18, IshaAngle: 17, AsrFactor: 1,
		Adjustments: Adjustments{Sunrise: -7, Dhuhr: 5, Asr: 4, Maghrib: 7},
	}
}

// Tehran is the University of Tehran geophysics institute method.
func Tehran() Params {
	return Params{FajrAngle: 17.7, IshaAngle: 14, MaghribAngle: 4.5, AsrFactor: 1}
}

package locomotion

// Config holds the motion constants. Times are in seconds of simulation time.
type Config struct {
	// Speed is the translation speed in world units per second.
	Speed float64
	// FallSpeedFactor multiplies Speed when the move points straight down.
	FallSpeedFactor float64
	// Tolerance is the arrival distance.
	Tolerance float64
	// SettleTimeout is how long the marker gets to rotate after an arrival.
	SettleTimeout float64
	// FallingSettleTimeout replaces SettleTimeout while the traveler is already falling.
	FallingSettleTimeout float64
	// GravityPause is the extra wait when a settle ends with the traveler starting to fall.
	GravityPause float64
	// RotateThresholdDeg is how close the marker must get before its rotation snaps.
	RotateThresholdDeg float64
}

func DefaultConfig() Config {
	return Config{
		Speed:                1,
		FallSpeedFactor:      5,
		Tolerance:            0.1,
		SettleTimeout:        2,
		FallingSettleTimeout: 0.01,
		GravityPause:         1,
		RotateThresholdDeg:   0.5,
	}
}

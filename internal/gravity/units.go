package gravity

// SI reference quantities. One simulation length unit is the distance light
// travels in one tick, and one tick is a 365-day year, so a photon moving at
// unit speed advances one light-year per tick.
const (
	GravitationalConstant = 6.67408e-11       // m³ kg⁻¹ s⁻²
	SpeedOfLight          = 299_792_458.0     // m s⁻¹
	SolarMass             = 1.989e30          // kg
	TimeUnit              = 365 * 86400.0     // s
	DistanceUnit          = SpeedOfLight * TimeUnit
	MassUnit              = SolarMass
)

// GUnit is the gravitational constant expressed in simulation units:
// light-years, years and solar masses.
const GUnit = GravitationalConstant * MassUnit * TimeUnit * TimeUnit /
	(DistanceUnit * DistanceUnit * DistanceUnit)

package wavefront

import "math"

// Physical constants.
const (
	Hbar         = 6.582119569e-16 // reduced Planck constant, eV*s
	SpeedOfLight = 299792458.0     // m/s
)

// Unit conversions. Parameter names carry their unit as a suffix (Um, Nm, M, Rad) and
// these are the only places the scale factors appear.
const (
	MetersPerMicrometer = 1e-6
	MetersPerNanometer  = 1e-9
)

// WavelengthFromEnergy returns the vacuum wavelength in meters of a photon with the
// given energy in eV.
func WavelengthFromEnergy(energyEV float64) float64 {
	omega := energyEV / Hbar
	return 2 * math.Pi * SpeedOfLight / omega
}

// EnergyFromWavelength is the inverse of WavelengthFromEnergy.
func EnergyFromWavelength(wavelengthM float64) float64 {
	return 2 * math.Pi * SpeedOfLight * Hbar / wavelengthM
}

// Wavenumber returns 2*pi/lambda.
func Wavenumber(wavelengthM float64) float64 {
	return 2 * math.Pi / wavelengthM
}

func umToM(um float64) float64 { return um * MetersPerMicrometer }

// Package wavefront propagates monochromatic scalar wavefronts through a beamline.
//
// A Field is a square grid of complex amplitudes together with the meshgrid of its
// physical x and y coordinates. Sources (PlaneSource, GaussianSource) create fields;
// apertures, mirrors and arbitrary optics modify them in the spatial domain; Drift
// propagates them through free space with the angular-spectrum method; Focus and Lens
// map them to the back focal plane of a thin lens, which changes the grid's extent and
// spacing. Every operator returns a new Field and leaves its input untouched.
//
// Lengths are in meters unless the parameter name says otherwise (Um for micrometers,
// Nm for nanometers). Photon energies are in eV.
//
// Non-fatal findings such as an aperture that passes too few grid points are returned as
// Diagnostics and logged through the logger installed with SetLogger.
package wavefront

package wavefront

import (
	"fmt"
	"log/slog"
)

// DiagnosticKind classifies an advisory condition found while applying an element.
type DiagnosticKind int

const (
	// ApertureUnderResolved means ten or fewer grid points pass an aperture mask.
	ApertureUnderResolved DiagnosticKind = iota
	// LensApertureOversized means a lens aperture passes every grid point, so it does
	// not truncate the beam and is probably misconfigured.
	LensApertureOversized
)

func (k DiagnosticKind) String() string {
	switch k {
	case ApertureUnderResolved:
		return "aperture under-resolved"
	case LensApertureOversized:
		return "lens aperture oversized"
	default:
		return fmt.Sprintf("DiagnosticKind(%d)", int(k))
	}
}

// minAperturePixels is the population at or below which an aperture is reported as
// under-resolved.
const minAperturePixels = 10

// Diagnostic is a non-fatal finding. The operator that produced it still returns a
// complete, if degraded, result.
type Diagnostic struct {
	Kind    DiagnosticKind
	Element string // operator that raised it, e.g. "slit"
	Pixels  int    // grid points passing the element's mask
	Total   int    // grid points in the field
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s", d.Element, d.Message)
}

// Diagnostics is the list of findings returned alongside an operator's output.
type Diagnostics []Diagnostic

// Has reports whether any entry is of kind k.
func (ds Diagnostics) Has(k DiagnosticKind) bool {
	for _, d := range ds {
		if d.Kind == k {
			return true
		}
	}
	return false
}

// emit logs d through the package logger and returns it as a one-element list.
func emit(d Diagnostic) Diagnostics {
	Logger().Warn(d.Message,
		slog.String("element", d.Element),
		slog.String("kind", d.Kind.String()),
		slog.Int("pixels", d.Pixels),
		slog.Int("total", d.Total),
	)
	return Diagnostics{d}
}

func checkAperture(element string, pixels, total int) Diagnostics {
	if pixels > minAperturePixels {
		return nil
	}
	return emit(Diagnostic{
		Kind:    ApertureUnderResolved,
		Element: element,
		Pixels:  pixels,
		Total:   total,
		Message: fmt.Sprintf("%s too narrow, %d pixels", element, pixels),
	})
}

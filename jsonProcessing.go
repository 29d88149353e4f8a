package main

import (
	"fmt"
	"path/filepath"

	json "github.com/KevinWang15/go-json5"

	"github.com/bob-anderson-ok/beamprop/wavefront"
)

// parseTableFormat reads a 2D table of numbers (a json array of arrays).
func parseTableFormat(data []byte) ([][]float64, error) {
	var rows [][]float64
	err := json.Unmarshal(data, &rows)
	return rows, err
}

func getLeafValue(jsonTable map[string]interface{}, path ...string) (interface{}, bool) {
	var cur interface{} = jsonTable
	for _, p := range path {
		m, ok := cur.(map[string]interface{})
		if !ok {
			return nil, false
		}
		cur, ok = m[p]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// requiredFloat fetches a number that must be present. label prefixes error messages.
func requiredFloat(table map[string]interface{}, label, key string) (float64, string, bool) {
	v, ok := getLeafValue(table, key)
	if !ok {
		return 0, fmt.Sprintf("%s%s: not found", label, key), false
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Sprintf("%s%s: is not a float64", label, key), false
	}
	return f, "", true
}

// optionalFloat is requiredFloat with a default for a missing key.
func optionalFloat(table map[string]interface{}, label, key string, def float64) (float64, string, bool) {
	if _, ok := getLeafValue(table, key); !ok {
		return def, "", true
	}
	return requiredFloat(table, label, key)
}

func optionalString(table map[string]interface{}, label, key, def string) (string, string, bool) {
	v, ok := getLeafValue(table, key)
	if !ok {
		return def, "", true
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Sprintf("%s%s: is not a string", label, key), false
	}
	return s, "", true
}

func optionalBool(table map[string]interface{}, label, key string) (bool, string, bool) {
	v, ok := getLeafValue(table, key)
	if !ok {
		return false, "", true
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Sprintf("%s%s: is not a bool", label, key), false
	}
	return b, "", true
}

// optionalMatrix fetches a square 2D array of numbers. A missing key gives nil.
func optionalMatrix(table map[string]interface{}, label, key string) ([][]float64, string, bool) {
	v, ok := getLeafValue(table, key)
	if !ok {
		return nil, "", true
	}
	rows, ok := v.([]interface{})
	if !ok || len(rows) == 0 {
		return nil, fmt.Sprintf("%s%s: is not a non-empty array of arrays", label, key), false
	}
	m := make([][]float64, len(rows))
	for i, r := range rows {
		cols, ok := r.([]interface{})
		if !ok || len(cols) != len(rows) {
			return nil, fmt.Sprintf("%s%s: row %d is not an array of %d numbers", label, key, i, len(rows)), false
		}
		m[i] = make([]float64, len(cols))
		for j, c := range cols {
			f, ok := c.(float64)
			if !ok {
				return nil, fmt.Sprintf("%s%s: [%d][%d] is not a float64", label, key, i, j), false
			}
			m[i][j] = f
		}
	}
	return m, "", true
}

func validateJsonFileAndFillBeamline(jsonTable map[string]interface{}, b *Beamline) (string, bool) {
	var msg string
	var ok bool

	b.ShowInput, msg, ok = optionalBool(jsonTable, "", "show_input_bool")
	if !ok {
		return msg, false
	}

	windowSize, msg, ok := optionalFloat(jsonTable, "", "window_size_pixels", 500) // Default to 500 pixels
	if !ok {
		return msg, false
	}
	b.WindowSizePixels = int(windowSize)

	b.Title, msg, ok = optionalString(jsonTable, "", "title", "")
	if !ok {
		return msg, false
	}

	b.OutputFolder, msg, ok = optionalString(jsonTable, "", "output_folder", ".")
	if !ok {
		return msg, false
	}

	b.View.Low, msg, ok = optionalFloat(jsonTable, "", "view_low_percentile", defaultView.Low)
	if !ok {
		return msg, false
	}
	b.View.High, msg, ok = optionalFloat(jsonTable, "", "view_high_percentile", defaultView.High)
	if !ok {
		return msg, false
	}
	if !(0 <= b.View.Low && b.View.Low < b.View.High && b.View.High <= 100) {
		return "view percentiles must satisfy 0 <= view_low_percentile < view_high_percentile <= 100", false
	}

	b.PhotonEnergyEV, msg, ok = requiredFloat(jsonTable, "", "photon_energy_ev")
	if !ok {
		return msg, false
	}
	if b.PhotonEnergyEV <= 0 {
		return "photon_energy_ev: must be positive", false
	}

	msg, ok = validateSource(jsonTable, &b.Source)
	if !ok {
		return msg, false
	}

	v, found := getLeafValue(jsonTable, "elements")
	if found {
		list, isList := v.([]interface{})
		if !isList {
			return "elements: is not an array", false
		}
		b.Elements = make([]ElementSpec, len(list))
		for i, item := range list {
			table, isTable := item.(map[string]interface{})
			label := fmt.Sprintf("elements[%d].", i)
			if !isTable {
				return label[:len(label)-1] + ": is not a group", false
			}
			msg, ok = validateElement(table, label, &b.Elements[i])
			if !ok {
				return msg, false
			}
		}
	}

	return "No problem found in json file", true
}

func validateSource(jsonTable map[string]interface{}, s *SourceSpec) (string, bool) {
	v, ok := getLeafValue(jsonTable, "source")
	if !ok {
		return "source group not found and is required.", false
	}
	table, ok := v.(map[string]interface{})
	if !ok {
		return "source: is not a group", false
	}
	const label = "source."

	var msg string
	s.Type, msg, ok = optionalString(table, label, "type", "plane")
	if !ok {
		return msg, false
	}

	numPts, msg, ok := requiredFloat(table, label, "num_points")
	if !ok {
		return msg, false
	}
	s.NumPoints = int(numPts)
	// Sanity check on number of points in the grid
	if s.NumPoints < 10 {
		return "source.num_points: must be at least 10", false
	}

	s.Z0M, msg, ok = optionalFloat(table, label, "z0_m", 0)
	if !ok {
		return msg, false
	}

	s.Save, msg, ok = optionalBool(table, label, "save_bool")
	if !ok {
		return msg, false
	}

	switch s.Type {
	case "plane":
		s.DxUm, msg, ok = requiredFloat(table, label, "dx_um")
		if !ok {
			return msg, false
		}
		if s.DxUm <= 0 {
			return "source.dx_um: must be positive", false
		}
	case "gaussian":
		s.W0xUm, msg, ok = requiredFloat(table, label, "w0x_um")
		if !ok {
			return msg, false
		}
		s.W0yUm, msg, ok = optionalFloat(table, label, "w0y_um", s.W0xUm)
		if !ok {
			return msg, false
		}
		if s.W0xUm <= 0 || s.W0yUm <= 0 {
			return "source: gaussian waists must be positive", false
		}
	default:
		return fmt.Sprintf("source.type: unknown source type %q (want plane or gaussian)", s.Type), false
	}
	return "", true
}

func validateElement(table map[string]interface{}, label string, e *ElementSpec) (string, bool) {
	var msg string
	var ok bool

	v, found := getLeafValue(table, "type")
	if !found {
		return label + "type: not found", false
	}
	e.Type, ok = v.(string)
	if !ok {
		return label + "type: is not a string", false
	}

	e.Name, msg, ok = optionalString(table, label, "name", "")
	if !ok {
		return msg, false
	}

	e.Save, msg, ok = optionalBool(table, label, "save_bool")
	if !ok {
		return msg, false
	}

	// Each type lists its numeric keys; all are required unless given a default below.
	fields := map[string][]struct {
		key string
		dst *float64
	}{
		"slit":                {{"slit_x_um", &e.SlitXUm}, {"slit_y_um", &e.SlitYUm}},
		"double_slit":         {{"half_width_um", &e.HalfWidthUm}, {"separation_um", &e.SeparationUm}},
		"circular_aperture":   {{"radius_um", &e.RadiusUm}},
		"elliptical_aperture": {{"x_diam_um", &e.Ellipse.XDiamUm}, {"y_diam_um", &e.Ellipse.YDiamUm}},
		"mirror":              {{"length_m", &e.LengthM}, {"grazing_angle_rad", &e.GrazingAngleRad}},
		"lens":                {{"radius_um", &e.RadiusUm}, {"focal_m", &e.FocalM}},
		"focus":               {{"focal_m", &e.FocalM}},
		"drift":               {{"distance_m", &e.DistanceM}},
		"arbitrary_optic":     {{"refractive_index", &e.RefractiveIndex}},
	}
	required, known := fields[e.Type]
	if !known {
		return fmt.Sprintf("%stype: unknown element type %q", label, e.Type), false
	}
	for _, f := range required {
		*f.dst, msg, ok = requiredFloat(table, label, f.key)
		if !ok {
			return msg, false
		}
	}

	switch e.Type {
	case "elliptical_aperture":
		for _, f := range []struct {
			key string
			dst *float64
		}{
			{"x_center_um", &e.Ellipse.XCenterUm},
			{"y_center_um", &e.Ellipse.YCenterUm},
			{"pa_degrees", &e.Ellipse.AngleDegrees},
		} {
			*f.dst, msg, ok = optionalFloat(table, label, f.key, 0)
			if !ok {
				return msg, false
			}
		}

	case "mirror":
		orientation, msg, ok := optionalString(table, label, "orientation", "horizontal")
		if !ok {
			return msg, false
		}
		o, err := wavefront.ParseOrientation(orientation)
		if err != nil {
			return fmt.Sprintf("%sorientation: %v", label, err), false
		}
		e.Orientation = o

		e.MisalignmentRad, msg, ok = optionalFloat(table, label, "misalignment_rad", 0)
		if !ok {
			return msg, false
		}
		e.HeightErrorNm, msg, ok = optionalMatrix(table, label, "height_error_nm")
		if !ok {
			return msg, false
		}
		e.HeightErrorFile, msg, ok = optionalString(table, label, "height_error_file", "")
		if !ok {
			return msg, false
		}
		if e.HeightErrorNm != nil && e.HeightErrorFile != "" {
			return label + "only one of height_error_nm and height_error_file may be given", false
		}
		if e.GrazingAngleRad <= 0 {
			return label + "grazing_angle_rad: must be positive", false
		}

	case "lens", "focus":
		if e.FocalM == 0 {
			return label + "focal_m: must not be zero", false
		}

	case "arbitrary_optic":
		e.ThicknessM, msg, ok = optionalMatrix(table, label, "thickness_table_m")
		if !ok {
			return msg, false
		}
		e.ThicknessFile, msg, ok = optionalString(table, label, "thickness_table_file", "")
		if !ok {
			return msg, false
		}
		if (e.ThicknessM == nil) == (e.ThicknessFile == "") {
			return label + "exactly one of thickness_table_m and thickness_table_file is required", false
		}
	}

	return "", true
}

// loadElementTables reads the table files named by mirror and arbitrary optic elements.
// Relative paths are taken from baseDir.
func loadElementTables(b *Beamline, baseDir string, readFile func(string) ([]byte, error)) error {
	load := func(name string) ([][]float64, error) {
		if !filepath.IsAbs(name) {
			name = filepath.Join(baseDir, name)
		}
		data, err := readFile(name)
		if err != nil {
			return nil, err
		}
		table, err := parseTableFormat(data)
		if err != nil {
			return nil, fmt.Errorf("error reading table file %q: %w", name, err)
		}
		if len(table) == 0 {
			return nil, fmt.Errorf("the table file %q is empty", name)
		}
		return table, nil
	}

	for i := range b.Elements {
		e := &b.Elements[i]
		var err error
		if e.ThicknessFile != "" {
			e.ThicknessM, err = load(e.ThicknessFile)
		} else if e.HeightErrorFile != "" {
			e.HeightErrorNm, err = load(e.HeightErrorFile)
		}
		if err != nil {
			return fmt.Errorf("elements[%d]: %w", i, err)
		}
	}
	return nil
}

package main

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	json "github.com/KevinWang15/go-json5"

	"github.com/bob-anderson-ok/beamprop/profile"
	"github.com/bob-anderson-ok/beamprop/wavefront"
)

const version = "1_0_0"

// Beamline is the validated content of a parameter file.
type Beamline struct {
	Title            string
	ShowInput        bool
	WindowSizePixels int
	OutputFolder     string
	View             viewRange
	PhotonEnergyEV   float64
	Source           SourceSpec
	Elements         []ElementSpec
}

// viewRange is the pair of intensity percentiles stretched onto black and white in the
// 8-bit view images.
type viewRange struct {
	Low  float64
	High float64
}

var defaultView = viewRange{Low: 0, High: 100}

// SourceSpec describes the field at the start of the beamline.
type SourceSpec struct {
	Type      string // "plane" or "gaussian"
	NumPoints int
	DxUm      float64 // plane only
	Z0M       float64
	W0xUm     float64 // gaussian only
	W0yUm     float64
	Save      bool
}

// ElementSpec is one entry of the elements array. Only the fields belonging to Type are
// meaningful.
type ElementSpec struct {
	Type string
	Name string
	Save bool

	SlitXUm      float64
	SlitYUm      float64
	HalfWidthUm  float64
	SeparationUm float64
	RadiusUm     float64
	Ellipse      wavefront.Ellipse

	LengthM         float64
	GrazingAngleRad float64
	Orientation     wavefront.Orientation
	MisalignmentRad float64
	HeightErrorNm   [][]float64
	HeightErrorFile string

	FocalM    float64
	DistanceM float64

	RefractiveIndex float64
	ThicknessM      [][]float64
	ThicknessFile   string
}

func main() {

	programStart := time.Now()

	args := os.Args

	if len(args) != 2 {
		fmt.Println("\n\tWrong number of arguments.\n\tUsage: beamprop <parameter-file>")
		os.Exit(1)
	}

	path := args[1]

	// Read the Json5 (or Json) parameter file
	data, err := os.ReadFile(path)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tAttempt to read input file %q failed: %w\n", path, err))
		os.Exit(2)
	}

	// Parse json(5) data into a generic container
	var jsonTable map[string]interface{}
	err = json.Unmarshal(data, &jsonTable)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tFormat error in file %q: %w\n", path, err))
		os.Exit(3)
	}

	var beamline Beamline
	msg, ok := validateJsonFileAndFillBeamline(jsonTable, &beamline)
	if !ok {
		fmt.Println(msg)
		os.Exit(4)
	}

	if beamline.ShowInput {
		fmt.Printf("%s", "\nPrintout of  complete jsonTable contents...\n")
		fmt.Println(string(data))
	}

	// Table files are resolved relative to the parameter file.
	err = loadElementTables(&beamline, filepath.Dir(path), os.ReadFile)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tReading of an element table failed: %w\n", err))
		os.Exit(5)
	}

	err = os.MkdirAll(beamline.OutputFolder, 0o755)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tCreation of output folder %q failed: %w\n", beamline.OutputFolder, err))
		os.Exit(6)
	}

	// Element diagnostics are reported on stderr as they happen.
	wavefront.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	fmt.Printf("\nVersion %s\n\n", version)

	wavelength := wavefront.WavelengthFromEnergy(beamline.PhotonEnergyEV)
	fmt.Printf("Wavelength is %0.4g nm (%0.1f eV)\n", wavelength*1e9, beamline.PhotonEnergyEV)

	var saved []savedStage
	var runErr error
	var finalPower float64
	onStage := func(s stageResult) {
		finalPower = s.Power
		if runErr != nil {
			return
		}
		fmt.Printf("Calculation of %s took %s\n", s.Name, s.Elapsed)
		if !s.Save {
			return
		}
		out, err := writeStageOutputs(beamline.OutputFolder, s, beamline.View)
		if err != nil {
			runErr = err
			return
		}
		saved = append(saved, out)
		printStageSummary(s, out)
	}

	start := time.Now()
	final, diags, err := runBeamline(&beamline, onStage)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tPropagation failed: %w", err))
		os.Exit(7)
	}
	if runErr != nil {
		fmt.Println(fmt.Errorf("\n\tWriting of stage outputs failed: %w", runErr))
		os.Exit(8)
	}
	elapsed := time.Since(start)
	fmt.Printf("\nPropagation through %d elements took %s\n", len(beamline.Elements), elapsed)

	if len(diags) > 0 {
		fmt.Printf("\n%d diagnostic(s) were raised:\n", len(diags))
		for _, d := range diags {
			fmt.Printf("  %s\n", d)
		}
	}

	lo, hi := final.Extent()
	fmt.Printf("\nFinal plane: %d x %d points, spacing %0.4g um, x from %0.4g to %0.4g um\n",
		final.N(), final.N(), final.Dx()*1e6, lo*1e6, hi*1e6)
	fmt.Printf("Final plane power is %0.6g (source units * m^2)\n", finalPower)

	powerFile := filepath.Join(beamline.OutputFolder, "power.png")
	err = makePowerPlot(saved, beamline.Title, powerFile)
	if err != nil {
		fmt.Println(fmt.Errorf("\n\tWriting of %q failed: %w", powerFile, err))
		os.Exit(9)
	}

	elapsed = time.Since(programStart)
	fmt.Printf("\nTotal program run time is %s\n", elapsed)

	if beamline.WindowSizePixels > 0 && len(saved) > 0 {
		showWindows(&beamline, saved[len(saved)-1], powerFile)
	}
}

func showWindows(b *Beamline, last savedStage, powerFile string) {
	size := b.WindowSizePixels

	// We supply an ID (hopefully unique) because we may need to use the preferences API
	myApp := app.NewWithID("com.gmail.ok.anderson.bob.beamprop")

	winTitle := b.Title
	if winTitle == "" {
		winTitle = "beamprop"
	}
	w := myApp.NewWindow(fmt.Sprintf("%s - %s intensity (8 bit grayscale png)", winTitle, last.Name))
	w.SetPadded(false)
	w.CenterOnScreen()
	w.Resize(fyne.Size{Height: float32(size), Width: float32(size)})

	img := canvas.NewImageFromFile(last.ImageFile)
	img.FillMode = canvas.ImageFillContain
	img.Resize(fyne.NewSize(float32(size), float32(size)))

	// Here we add a red line to show the profile cut with colored dots at the ends to show direction (red to green)
	content := []fyne.CanvasObject{img}
	if len(last.Cut) > 0 {
		n := float32(last.N)
		s := float32(size)
		first := last.Cut[0]
		end := last.Cut[len(last.Cut)-1]

		line := canvas.NewLine(color.RGBA{R: 255, A: 255})
		line.Position1 = fyne.NewPos(float32(first.X)/n*s, float32(first.Y)/n*s)
		line.Position2 = fyne.NewPos(float32(end.X)/n*s, float32(end.Y)/n*s)
		line.StrokeWidth = 2

		dotSize := float32(10)
		startDot := placeDotAt(line.Position1.X, line.Position1.Y, dotSize, color.RGBA{R: 255, A: 255})
		endDot := placeDotAt(line.Position2.X, line.Position2.Y, dotSize, color.RGBA{G: 255, A: 255})
		content = append(content, line, startDot, endDot)
	}
	w.SetContent(container.NewWithoutLayout(content...))
	w.Show()

	if last.Plot != nil {
		w2 := myApp.NewWindow("Profile through " + last.Name)
		w2.SetContent(container.NewCenter(plotCanvas(last.Plot)))
		w2.Resize(fyne.NewSize(950, 550))
		w2.Show()
	}

	if powerImg, err := profile.LoadImageFromFile(powerFile); err == nil {
		w3 := myApp.NewWindow("Power along the beamline")
		w3.SetContent(container.NewCenter(plotCanvas(powerImg)))
		w3.Resize(fyne.NewSize(950, 550))
		w3.Show()
	}

	w.ShowAndRun()
}

func plotCanvas(img image.Image) *canvas.Image {
	plotImg := canvas.NewImageFromImage(img)
	plotImg.FillMode = canvas.ImageFillContain
	plotImg.SetMinSize(fyne.NewSize(900, 450))
	return plotImg
}

func placeDotAt(x, y, diameter float32, col color.Color) *canvas.Circle {
	dot := canvas.NewCircle(col)
	dot.Resize(fyne.NewSize(diameter, diameter))
	dot.Move(fyne.NewPos(x-diameter/2, y-diameter/2))
	return dot
}

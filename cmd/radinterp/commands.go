package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/radinterp/internal/config"
	"github.com/san-kum/radinterp/internal/export"
	"github.com/san-kum/radinterp/internal/field"
	"github.com/san-kum/radinterp/internal/grid"
	"github.com/san-kum/radinterp/internal/lookup"
	"github.com/san-kum/radinterp/internal/report"
	"github.com/san-kum/radinterp/internal/storage"
)

func initScenario(cmd *cobra.Command, args []string) error {
	path := "scenario.yaml"
	if len(args) == 1 {
		path = args[0]
	}
	s := config.GetPreset(preset)
	if s == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.Presets())
	}
	if err := config.Save(path, s); err != nil {
		return err
	}
	log.Info("wrote scenario", zap.String("path", path), zap.String("preset", preset))
	return nil
}

// resolveQuery picks the position from --alt/--lat/--lon when any is set and
// from the scenario queries otherwise.
func resolveQuery(cmd *cobra.Command, s *config.Scenario) (field.Position, error) {
	f := cmd.Flags()
	if f.Changed("alt") || f.Changed("lat") || f.Changed("lon") {
		return field.Position{Alt: alt, Lat: lat, Lon: lon}, nil
	}
	if queryIndex < 0 || queryIndex >= len(s.Queries) {
		return field.Position{}, fmt.Errorf("query %d not in scenario (%d queries)", queryIndex, len(s.Queries))
	}
	return s.Queries[queryIndex], nil
}

type setup struct {
	scenario *config.Scenario
	atm      *field.Atmosphere
	table    *lookup.Table
	pos      field.Position
	point    field.Point
}

func prepare(cmd *cobra.Command) (*setup, error) {
	s, err := loadScenario()
	if err != nil {
		return nil, err
	}
	atm, err := s.Atmosphere()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	tbl, err := s.Table()
	if err != nil {
		return nil, err
	}
	log.Debug("built table",
		zap.Strings("species", tbl.Species()),
		zap.Int("frequencies", tbl.Frequency().Len()),
		zap.Int("levels", tbl.Pressure().Len()),
		zap.Duration("took", time.Since(start)))

	pos, err := resolveQuery(cmd, s)
	if err != nil {
		return nil, err
	}
	pt, err := atm.At(pos.Alt, pos.Lat, pos.Lon)
	if err != nil {
		return nil, err
	}
	return &setup{scenario: s, atm: atm, table: tbl, pos: pos, point: pt}, nil
}

func pointRow(pos field.Position, pt field.Point, species []string) []string {
	row := []string{report.Float(pos.Alt), report.Float(pos.Lat), report.Float(pos.Lon),
		report.Float(pt.Pressure), report.Float(pt.Temperature)}
	for _, s := range species {
		row = append(row, report.Float(pt.VMR[s]))
	}
	return row
}

func sampleAtmosphere(cmd *cobra.Command, args []string) error {
	s, err := loadScenario()
	if err != nil {
		return err
	}
	atm, err := s.Atmosphere()
	if err != nil {
		return err
	}
	points, err := atm.Profile(cmd.Context(), s.Queries)
	if err != nil {
		return err
	}

	names := atm.SpeciesNames()
	headers := append([]string{"ALT", "LAT", "LON", "P [Pa]", "T [K]"}, names...)
	rows := make([][]string, len(points))
	for i, pt := range points {
		rows[i] = pointRow(s.Queries[i], pt, names)
	}
	fmt.Println(report.Title.Render("atmosphere " + s.Name))
	fmt.Println(report.Table(headers, rows))
	return nil
}

func gridded(atm *field.Atmosphere, name string) (*field.Gridded, error) {
	var f field.Field
	switch name {
	case "temperature":
		f = atm.Temperature
	case "pressure":
		f = atm.Pressure
	default:
		var ok bool
		if f, ok = atm.Species[name]; !ok {
			return nil, errors.Wrap(field.ErrUnknownSpecies, name)
		}
	}
	g, ok := f.(*field.Gridded)
	if !ok {
		return nil, fmt.Errorf("field %s is not given on the atmosphere grids", name)
	}
	return g, nil
}

func showWeights(cmd *cobra.Command, args []string) error {
	s, err := loadScenario()
	if err != nil {
		return err
	}
	atm, err := s.Atmosphere()
	if err != nil {
		return err
	}
	g, err := gridded(atm, fieldName)
	if err != nil {
		return err
	}

	if jacobian {
		jac, err := field.Jacobian(g, s.Queries)
		if err != nil {
			return err
		}
		r, c := jac.Dims()
		rows := make([][]string, r)
		for i := range rows {
			row := mat.Row(nil, i, jac)
			rows[i] = []string{fmt.Sprint(i), fmt.Sprint(lo.CountBy(row, func(w float64) bool { return w != 0 })), report.Float(floats.Sum(row))}
		}
		fmt.Println(report.KV("field", fieldName, "jacobian", fmt.Sprintf("%d x %d", r, c)))
		fmt.Println(report.Table([]string{"QUERY", "NON-ZERO", "SUM"}, rows))
		return nil
	}

	pos, err := resolveQuery(cmd, s)
	if err != nil {
		return err
	}
	a, b, c, ok, err := g.Lags(pos.Alt, pos.Lat, pos.Lon)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println(report.Subtle.Render("position outside a zero-extrapolated axis; value is 0"))
		return nil
	}
	fw, err := g.FlatWeights(pos.Alt, pos.Lat, pos.Lon)
	if err != nil {
		return err
	}
	v, err := g.At(pos.Alt, pos.Lat, pos.Lon)
	if err != nil {
		return err
	}

	fmt.Println(report.KV("field", fieldName, "alt lag", fmt.Sprint(a), "lat lag", fmt.Sprint(b), "lon lag", fmt.Sprint(c), "value", report.Float(v)))
	rows := lo.Map(fw, func(w field.FlatWeight, _ int) []string {
		return []string{fmt.Sprint(w.Index), report.Float(w.Weight), report.Float(g.Data.Elements[w.Index])}
	})
	fmt.Println(report.Table([]string{"INDEX", "WEIGHT", "VALUE"}, rows))
	return nil
}

func extractOne(cmd *cobra.Command, args []string) error {
	st, err := prepare(cmd)
	if err != nil {
		return err
	}
	vmrs, err := st.point.VMRs(st.table.Species())
	if err != nil {
		return err
	}
	xsec, err := st.table.Extract(freqIndex, st.point.Pressure, st.point.Temperature, vmrs)
	if err != nil {
		return err
	}
	coef, err := lookup.Coefficients(xsec, st.point.Pressure, st.point.Temperature)
	if err != nil {
		return err
	}

	fmt.Println(report.KV(
		"frequency", fmt.Sprintf("%s GHz", report.Float(st.table.Frequency().At(freqIndex)/1e9)),
		"pressure", report.Float(st.point.Pressure)+" Pa",
		"temperature", report.Float(st.point.Temperature)+" K"))
	rows := make([][]string, len(xsec))
	for i, name := range st.table.Species() {
		rows[i] = []string{name, report.Float(vmrs[i]), report.Float(xsec[i]), report.Float(coef[i])}
	}
	fmt.Println(report.Table([]string{"SPECIES", "VMR", "XSEC [m2]", "ABS [1/m]"}, rows))
	return nil
}

func extractSpectrum(cmd *cobra.Command, args []string) error {
	st, err := prepare(cmd)
	if err != nil {
		return err
	}
	values, err := st.table.ExtractPoint(cmd.Context(), st.point)
	if err != nil {
		return err
	}
	sp := &storage.Spectrum{Frequency: st.table.Frequency().Vec(), Species: st.table.Species(), Values: values}

	fmt.Println(report.Title.Render(fmt.Sprintf("spectrum at %+v", st.pos)))
	fmt.Println(report.Spectrum(sp.Frequency, sp.Species, sp.Values, stride))

	if !save {
		return nil
	}
	store, err := openStore()
	if err != nil {
		return err
	}
	id, err := store.Save(storage.RunMetadata{
		Scenario:    st.scenario.Name,
		Query:       st.pos,
		Pressure:    st.point.Pressure,
		Temperature: st.point.Temperature,
		VMR:         st.point.VMR,
	}, sp)
	if err != nil {
		return err
	}
	log.Info("saved run", zap.String("id", id))
	return nil
}

// targetFrequencies spaces n frequencies evenly over [fmin, fmax]. A bound
// that is not positive falls back to the matching end of f.
func targetFrequencies(f grid.AscendingGrid, fmin, fmax float64, n int) (grid.AscendingGrid, error) {
	if n < 1 {
		return grid.AscendingGrid{}, fmt.Errorf("need at least one frequency, got %d", n)
	}
	first, last := f.Front(), f.Back()
	if fmin > 0 {
		first = fmin
	}
	if fmax > 0 {
		last = fmax
	}
	return grid.FromFunc[grid.Ascending](lo.Range(n), func(i int) float64 {
		if n == 1 {
			return first
		}
		return first + (last-first)*float64(i)/float64(n-1)
	})
}

func adaptTable(cmd *cobra.Command, args []string) error {
	st, err := prepare(cmd)
	if err != nil {
		return err
	}
	target, err := targetFrequencies(st.table.Frequency(), fmin, fmax, nfreq)
	if err != nil {
		return err
	}
	keep := species
	if len(keep) == 0 {
		keep = st.table.Species()
	}

	adapted, err := st.table.Adapt(keep, target)
	if err != nil {
		return err
	}
	log.Debug("adapted table", zap.Strings("species", adapted.Species()), zap.Int("frequencies", target.Len()))

	values, err := adapted.ExtractPoint(cmd.Context(), st.point)
	if err != nil {
		return err
	}
	fmt.Println(report.KV("species", fmt.Sprint(adapted.Species()), "non-linear", fmt.Sprint(adapted.NonlinearSpecies()), "frequencies", target.String()))
	fmt.Println(report.Spectrum(target.Vec(), adapted.Species(), values, max(nfreq/10, 1)))
	return nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir, log)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	sp, err := store.LoadSpectrum(args[0])
	if err != nil {
		return err
	}

	fmt.Println(report.KV("run", meta.ID, "scenario", meta.Scenario, "query", fmt.Sprintf("%+v", meta.Query)))
	fmt.Println(report.Plot(sp.Values, sp.Species, fmt.Sprintf("%s-%s GHz", report.Float(sp.Frequency[0]/1e9), report.Float(sp.Frequency[len(sp.Frequency)-1]/1e9)), plotWidth, plotHeight))
	for i, name := range sp.Species {
		fmt.Printf("%-6s %s\n", name, report.Sparkline(mat.Row(nil, i, sp.Values), plotWidth))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir, log).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	rows := lo.Map(runs, func(r storage.RunMetadata, _ int) []string {
		return []string{r.ID, r.Scenario, r.Timestamp.Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%g/%g/%g", r.Query.Alt, r.Query.Lat, r.Query.Lon),
			report.Float(r.Pressure), report.Float(r.Temperature), fmt.Sprint(r.Frequencies)}
	})
	fmt.Println(report.Table([]string{"ID", "SCENARIO", "TIME", "ALT/LAT/LON", "P", "T", "FREQS"}, rows))
	return nil
}

// writeExport writes an SVG plot when path ends in .svg and the JSON
// document otherwise.
func writeExport(path string, meta *storage.RunMetadata, sp *storage.Spectrum) error {
	if !strings.EqualFold(filepath.Ext(path), ".svg") {
		return storage.Export(path, meta, sp)
	}
	svg, err := export.SpectrumSVG(sp.Frequency, sp.Species, sp.Values, svgWidth, svgHeight)
	if err != nil {
		return err
	}
	return os.WriteFile(path, []byte(svg), 0644)
}

func exportRun(cmd *cobra.Command, args []string) error {
	store := storage.New(dataDir, log)
	meta, err := store.Load(args[0])
	if err != nil {
		return err
	}
	sp, err := store.LoadSpectrum(args[0])
	if err != nil {
		return err
	}
	path, err := filepath.Abs(args[1])
	if err != nil {
		return err
	}
	if err := writeExport(path, meta, sp); err != nil {
		return err
	}
	log.Info("exported run", zap.String("id", meta.ID), zap.String("path", path))
	return nil
}

func benchExtract(cmd *cobra.Command, args []string) error {
	st, err := prepare(cmd)
	if err != nil {
		return err
	}
	if benchRounds < 1 {
		return fmt.Errorf("need at least one round, got %d", benchRounds)
	}

	ctx := cmd.Context()
	times := make(stats.Float64Data, 0, benchRounds)
	for range benchRounds {
		start := time.Now()
		if _, err := st.table.ExtractPoint(ctx, st.point); err != nil {
			return err
		}
		times = append(times, float64(time.Since(start).Microseconds()))
	}

	mean, _ := times.Mean()
	median, _ := times.Median()
	p95, _ := times.Percentile(95)
	sd, _ := times.StandardDeviation()
	minT, _ := times.Min()
	maxT, _ := times.Max()

	fmt.Println(report.Title.Render(fmt.Sprintf("%d spectra, %d frequencies x %d species",
		benchRounds, st.table.Frequency().Len(), len(st.table.Species()))))
	fmt.Println(report.Table(
		[]string{"MEAN", "MEDIAN", "P95", "STDDEV", "MIN", "MAX"},
		[][]string{lo.Map([]float64{mean, median, p95, sd, minT, maxT}, func(v float64, _ int) string {
			return fmt.Sprintf("%.0fµs", v)
		})},
	))
	return nil
}

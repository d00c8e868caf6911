package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/san-kum/radinterp/internal/config"
	"github.com/san-kum/radinterp/internal/logging"
	"github.com/san-kum/radinterp/internal/storage"
)

var (
	dataDir    string
	configFile string
	verbose    bool

	log = logging.NewNop()

	// query selection
	queryIndex int
	alt        float64
	lat        float64
	lon        float64

	fieldName   string
	jacobian    bool
	freqIndex   int
	save        bool
	stride      int
	species     []string
	fmin        float64
	fmax        float64
	nfreq       int
	benchRounds int
	preset      string
	plotWidth   int
	plotHeight  int
	svgWidth    int
	svgHeight   int
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "radinterp",
		Short:         "atmospheric field sampling and absorption lookup",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			l, err := logging.New(verbose)
			if err != nil {
				return err
			}
			log = l
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".radinterp", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "scenario file (yaml); the default scenario when empty")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	queryFlags := func(cmd *cobra.Command) {
		cmd.Flags().IntVarP(&queryIndex, "query", "q", 0, "index of the scenario query")
		cmd.Flags().Float64Var(&alt, "alt", 0, "altitude [m], overrides --query")
		cmd.Flags().Float64Var(&lat, "lat", 0, "latitude [deg], overrides --query")
		cmd.Flags().Float64Var(&lon, "lon", 0, "longitude [deg], overrides --query")
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a scenario file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initScenario,
	}
	initCmd.Flags().StringVar(&preset, "preset", "midlatitude", "scenario preset")

	sampleCmd := &cobra.Command{
		Use:   "sample",
		Short: "sample the atmosphere at every query",
		RunE:  sampleAtmosphere,
	}

	weightsCmd := &cobra.Command{
		Use:   "weights",
		Short: "show interpolation weights of a gridded field",
		RunE:  showWeights,
	}
	queryFlags(weightsCmd)
	weightsCmd.Flags().StringVar(&fieldName, "field", "temperature", "temperature, pressure or a species name")
	weightsCmd.Flags().BoolVar(&jacobian, "jacobian", false, "build the jacobian of all queries")

	extractCmd := &cobra.Command{
		Use:   "extract",
		Short: "extract cross-sections at one frequency",
		RunE:  extractOne,
	}
	queryFlags(extractCmd)
	extractCmd.Flags().IntVarP(&freqIndex, "freq", "f", 0, "frequency index")

	spectrumCmd := &cobra.Command{
		Use:   "spectrum",
		Short: "extract the full spectrum at a query",
		RunE:  extractSpectrum,
	}
	queryFlags(spectrumCmd)
	spectrumCmd.Flags().BoolVar(&save, "save", true, "store the run")
	spectrumCmd.Flags().IntVar(&stride, "stride", 8, "print every n-th frequency")

	adaptCmd := &cobra.Command{
		Use:   "adapt",
		Short: "adapt the table to species and a frequency grid",
		RunE:  adaptTable,
	}
	queryFlags(adaptCmd)
	adaptCmd.Flags().StringSliceVar(&species, "species", nil, "species to keep (all when empty)")
	adaptCmd.Flags().Float64Var(&fmin, "fmin", 0, "first frequency [Hz]; table start when 0")
	adaptCmd.Flags().Float64Var(&fmax, "fmax", 0, "last frequency [Hz]; table end when 0")
	adaptCmd.Flags().IntVar(&nfreq, "n", 50, "number of frequencies")

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored spectrum",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&plotWidth, "width", 80, "plot width")
	plotCmd.Flags().IntVar(&plotHeight, "height", 12, "plot height")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id] [path]",
		Short: "export a run as json, or as svg when path ends in .svg",
		Args:  cobra.ExactArgs(2),
		RunE:  exportRun,
	}
	exportCmd.Flags().IntVar(&svgWidth, "width", 800, "svg width [px]")
	exportCmd.Flags().IntVar(&svgHeight, "height", 360, "svg height [px]")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time spectrum extraction",
		RunE:  benchExtract,
	}
	queryFlags(benchCmd)
	benchCmd.Flags().IntVar(&benchRounds, "rounds", 200, "number of extractions")

	rootCmd.AddCommand(initCmd, sampleCmd, weightsCmd, extractCmd, spectrumCmd, adaptCmd, plotCmd, listCmd, exportCmd, benchCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func loadScenario() (*config.Scenario, error) {
	if configFile == "" {
		log.Debug("using default scenario")
		return config.DefaultScenario(), nil
	}
	s, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}
	log.Debug("loaded scenario", zap.String("path", configFile), zap.String("name", s.Name))
	return s, nil
}

func openStore() (*storage.Store, error) {
	st := storage.New(dataDir, log)
	return st, st.Init()
}

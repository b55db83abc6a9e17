package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	ssacal "github.com/next-exp/ssacal_go/pkg"
)

var configuration ssacal.Configuration

var (
	logger         ssacal.SlogLogger
	VerbosityLevel int
)

func init() {
	logger = ssacal.NewSlogLogger(os.Stdout, os.Stderr, slog.LevelDebug)
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: calibrate -material c -energy i [-config file]")
	fmt.Fprintln(os.Stderr, "Choose from the following:")
	fmt.Fprintln(os.Stderr, "material: {MoFoil,MoPowder,FeFoil,Cu,Empty}")
	fmt.Fprintln(os.Stderr, "energy: {0,4,6,8}")
	fmt.Fprintln(os.Stderr, "Note: not all combinations are possible, see the run catalog.")
	flag.PrintDefaults()
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	material := flag.String("material", "", "Target material")
	energy := flag.Int("energy", -1, "Nominal beam energy in MeV")
	flag.Usage = printUsage
	flag.Parse()

	var err error
	configuration, err = ssacal.LoadConfigurationWithFlags(*configFilename, *material, *energy)
	if err != nil {
		message := fmt.Errorf("Error reading configuration: %w", err)
		logger.Error(message.Error())
		printUsage()
		os.Exit(1)
	}
	ssacal.SetLogger(logger)
	ssacal.SetVerbosity(configuration.Verbosity)

	VerbosityLevel = configuration.Verbosity
	if VerbosityLevel > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		ssacal.PrintConfiguration(configuration, logger)
	}

	if err := run(); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	catalog, dbConn, err := ssacal.OpenRunCatalog(configuration)
	if err != nil {
		return err
	}
	defer dbConn.Close()

	store, storeConn, err := ssacal.OpenCalibrationStore(configuration)
	if err != nil {
		return err
	}
	defer storeConn.Close()

	reader := ssacal.NewRootRunReader(configuration)
	calibrator := ssacal.NewCalibrator(configuration, catalog, reader, store)
	result, err := calibrator.Run(configuration.Material, configuration.Energy)
	for _, fn := range result.Functions.Functions() {
		message := fmt.Sprintf("Channel %d: a = %g +- %g, b = %g +- %g", fn.Channel, fn.A, fn.AErr, fn.B, fn.BErr)
		logger.Info(message, "main")
	}
	if err != nil && len(result.Functions) == 0 {
		return fmt.Errorf("Calibration failed: %w", err)
	}
	if err != nil {
		message := fmt.Errorf("Calibration finished with errors: %w", err)
		logger.Error(message.Error())
	}
	return nil
}

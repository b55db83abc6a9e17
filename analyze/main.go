package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

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
	fmt.Fprintln(os.Stderr, "Usage: analyze -material c -energy i [-config file]")
	fmt.Fprintln(os.Stderr, "Choose from the following:")
	fmt.Fprintln(os.Stderr, "material: {MoFoil,MoPowder,FeFoil,Cu,Empty}")
	fmt.Fprintln(os.Stderr, "energy: {0,4,6,8}")
	fmt.Fprintln(os.Stderr, "Note: the configuration must have been calibrated first.")
	flag.PrintDefaults()
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	material := flag.String("material", "", "Target material")
	energy := flag.Int("energy", -1, "Nominal beam energy in MeV")
	workers := flag.Int("workers", 0, "Number of workers, overrides the configuration")
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
	if *workers > 0 {
		configuration.NumWorkers = *workers
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
	start := time.Now()

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
	analyzer := ssacal.NewAnalyzer(configuration, catalog, reader, store)
	result, err := analyzer.Run(configuration.Material, configuration.Energy)
	if result == nil {
		return err
	}
	if err != nil {
		message := fmt.Errorf("Analysis finished with errors: %w", err)
		logger.Error(message.Error())
	}

	message := fmt.Sprintf("%d events from runs %v written to %s", len(result.Events), result.Runs.Runs, result.Filename)
	logger.Info(message, "main")
	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Total time: %d ms", duration.Milliseconds()), "main")
	return nil
}

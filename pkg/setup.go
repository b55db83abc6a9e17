package ssacal

import (
	"fmt"
	"io"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// OpenRunCatalog returns the database catalog when configured, otherwise
// the SSA run table. The closer releases the database connection.
func OpenRunCatalog(config Configuration) (RunCatalog, io.Closer, error) {
	if !config.UseDB {
		return SSACatalog(), nopCloser{}, nil
	}
	db, err := ConnectToDatabase(config.User, config.Passwd, config.Host, config.DBName)
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to database: %w", err)
	}
	return NewDBCatalog(db), db, nil
}

// OpenCalibrationStore returns the store selected by the configuration.
func OpenCalibrationStore(config Configuration) (CalibrationStore, io.Closer, error) {
	switch config.CalibrationBackend {
	case HDF5Backend:
		return NewHDF5Store(config.CalibrationDir), nopCloser{}, nil
	case RedisBackend:
		client, err := ConnectToRedis(config.RedisAddr, config.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		return NewRedisStore(client), client, nil
	}
	return nil, nil, fmt.Errorf("unknown calibration backend %v", config.CalibrationBackend)
}

func PrintConfiguration(config Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Material: %s", config.Material), "config")
	logger.Info(fmt.Sprintf("Energy: %d MeV", config.Energy), "config")
	logger.Info(fmt.Sprintf("Root dir: %s", config.RootDir), "config")
	logger.Info(fmt.Sprintf("File pattern: %s", config.FilePattern), "config")
	logger.Info(fmt.Sprintf("Tree: %s", config.TreeName), "config")
	logger.Info(fmt.Sprintf("Out dir: %s", config.OutDir), "config")
	logger.Info(fmt.Sprintf("Calibration backend: %v", config.CalibrationBackend), "config")
	logger.Info(fmt.Sprintf("Calibration dir: %s", config.CalibrationDir), "config")
	logger.Info(fmt.Sprintf("Redis: %s (db %d)", config.RedisAddr, config.RedisDB), "config")
	logger.Info(fmt.Sprintf("Use DB: %t", config.UseDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Number of workers: %d", config.NumWorkers), "config")
	logger.Info(fmt.Sprintf("Batch size: %d", config.BatchSize), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
	logger.Info(fmt.Sprintf("TOF outer bound: %g", config.TOFOuterBound), "config")
	logger.Info(fmt.Sprintf("Search windows 6 MeV: %v", config.SearchWindows6MeV), "config")
	logger.Info(fmt.Sprintf("Search windows other: %v", config.SearchWindowsOther), "config")
	logger.Info(fmt.Sprintf("Reference energies: %v", config.ReferenceEnergies), "config")
}

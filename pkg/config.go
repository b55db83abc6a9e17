package ssacal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
)

type CalibrationBackend int

const (
	HDF5Backend CalibrationBackend = iota
	RedisBackend
)

var calibrationBackendStrings = []string{
	"hdf5",
	"redis",
}

func (b CalibrationBackend) String() string {
	if b < HDF5Backend || b > RedisBackend {
		return "UNKNOWN"
	}
	return calibrationBackendStrings[b]
}

func (b CalibrationBackend) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.String())
}

func (b *CalibrationBackend) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, v := range calibrationBackendStrings {
		if v == s {
			*b = CalibrationBackend(i)
			return nil
		}
	}
	return fmt.Errorf("invalid CalibrationBackend: %s", s)
}

type Configuration struct {
	Material           string               `json:"material"`
	Energy             int                  `json:"energy"`
	RootDir            string               `json:"root_dir"`
	FilePattern        string               `json:"file_pattern"`
	TreeName           string               `json:"tree_name"`
	OutDir             string               `json:"out_dir"`
	CalibrationBackend CalibrationBackend   `json:"calibration_backend"`
	CalibrationDir     string               `json:"calibration_dir"`
	RedisAddr          string               `json:"redis_addr"`
	RedisDB            int                  `json:"redis_db"`
	UseDB              bool                 `json:"use_db"`
	Host               string               `json:"host"`
	User               string               `json:"user"`
	Passwd             string               `json:"pass"`
	DBName             string               `json:"dbname"`
	NumWorkers         int                  `json:"num_workers"`
	BatchSize          int                  `json:"batch_size"`
	Verbosity          int                  `json:"verbosity"`
	TOFOuterBound      float64              `json:"tof_outer_bound"`
	SearchWindows6MeV  [N_REF_LINES]Range   `json:"search_windows_6mev"`
	SearchWindowsOther [N_REF_LINES]Range   `json:"search_windows_other"`
	ReferenceEnergies  [N_REF_LINES]float64 `json:"reference_energies"`
}

func DefaultConfiguration() Configuration {
	var config Configuration

	// Set default values
	config.RootDir = "../root"
	config.FilePattern = "root_data_SSA_%03d.bin_tree.root"
	config.TreeName = "SSA"
	config.OutDir = "../processedFiles"
	config.CalibrationBackend = HDF5Backend
	config.CalibrationDir = "../processedFiles"
	config.RedisAddr = "localhost:6379"
	config.RedisDB = 0
	config.UseDB = false
	config.Host = "localhost"
	config.User = "ssareader"
	config.Passwd = "readonly"
	config.DBName = "SSA"
	config.NumWorkers = 4
	config.BatchSize = 10000
	config.Verbosity = 0
	config.TOFOuterBound = DEFAULT_TOF_OUTER_BOUND
	config.SearchWindows6MeV = DefaultSixMeVRanges
	config.SearchWindowsOther = DefaultOtherRanges
	config.ReferenceEnergies = ReferenceEnergies
	return config
}

// LoadConfiguration reads a JSON file on top of DefaultConfiguration. An
// empty filename returns the defaults.
func LoadConfiguration(filename string) (Configuration, error) {
	config := DefaultConfiguration()
	if filename == "" {
		return config, nil
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return config, &ErrOpenFile{Filename: filename, Err: err}
	}
	err = json.Unmarshal(data, &config)
	if err != nil {
		return config, err
	}
	return config, nil
}

// LoadConfigurationWithFlags loads filename and applies the command line
// material and energy on top of it. A negative energy leaves the file value.
func LoadConfigurationWithFlags(filename string, material string, energy int) (Configuration, error) {
	config, err := LoadConfiguration(filename)
	if err != nil {
		return config, err
	}
	if material != "" {
		config.Material = material
	}
	if energy >= 0 {
		config.Energy = energy
	}
	if config.Material == "" {
		return config, errors.New("no material given")
	}
	return config, nil
}

// WindowSet returns the peak search ranges for the configured energy.
func (c Configuration) WindowSet() WindowSet {
	return SelectWindowSet(c.Energy, c.SearchWindows6MeV, c.SearchWindowsOther)
}

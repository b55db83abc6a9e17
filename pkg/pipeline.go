package ssacal

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"go-hep.org/x/hep/hbook"
)

// Calibrator builds the calibration of a material and energy setting from
// the amplitude spectra of all its runs.
type Calibrator struct {
	Catalog RunCatalog
	Reader  RunReader
	Store   CalibrationStore
	Context *CalibrationContext
}

func NewCalibrator(config Configuration, catalog RunCatalog, reader RunReader, store CalibrationStore) *Calibrator {
	context := NewCalibrationContext(config.WindowSet())
	context.Energies = config.ReferenceEnergies
	return &Calibrator{
		Catalog: catalog,
		Reader:  reader,
		Store:   store,
		Context: context,
	}
}

// Run calibrates every detector channel and saves the functions that could
// be fitted. Runs that cannot be read and channels that fail are reported
// in the returned error without stopping the others.
func (c *Calibrator) Run(material string, energy int) (CalibrationResult, error) {
	runs, err := c.Catalog.Lookup(material, energy)
	if err != nil {
		return CalibrationResult{}, err
	}
	if verbosity > 0 {
		message := fmt.Sprintf("Calibrating %s at %d MeV (%s) with %s windows from runs %v",
			material, energy, runs.NameID, c.Context.Windows.Kind, runs.Runs)
		logger.Info(message, "calibrate")
	}

	var errs []error
	var hists [N_DET_CH]*hbook.H1D
	nEvents := 0
	for _, run := range runs.Runs {
		events, err := c.Reader.ReadRun(run)
		if err != nil {
			logger.Error(err.Error())
			errs = append(errs, err)
			continue
		}
		runHists := FillAmplitudes(events)
		for i := range hists {
			hists[i] = mergeHists(hists[i], runHists[i])
		}
		nEvents += len(events)
	}
	if nEvents == 0 {
		errs = append(errs, fmt.Errorf("no events read for %s", runs.NameID))
		return CalibrationResult{}, errors.Join(errs...)
	}

	result, err := c.Context.CalibrateChannels(hists)
	if err != nil {
		errs = append(errs, err)
	}

	if len(result.Functions) > 0 {
		curves := make([]CalibrationCurve, 0, len(result.Curves))
		for _, ch := range result.Functions.Channels() {
			curves = append(curves, result.Curves[ch])
		}
		if err := c.Store.Save(runs.NameID, result.Functions.Functions(), curves); err != nil {
			errs = append(errs, err)
		}
	}
	return result, joinErrors(errs)
}

// Analyzer reconstructs the events of a material and energy setting and
// subtracts the accidental background of every detector channel.
type Analyzer struct {
	Catalog       RunCatalog
	Reader        RunReader
	Store         CalibrationStore
	NumWorkers    int
	BatchSize     int
	TOFOuterBound float64
	OutDir        string
}

func NewAnalyzer(config Configuration, catalog RunCatalog, reader RunReader, store CalibrationStore) *Analyzer {
	return &Analyzer{
		Catalog:       catalog,
		Reader:        reader,
		Store:         store,
		NumWorkers:    config.NumWorkers,
		BatchSize:     config.BatchSize,
		TOFOuterBound: config.TOFOuterBound,
		OutDir:        config.OutDir,
	}
}

// AnalysisResult holds the reduced events and the spectra of the channels
// whose background could be subtracted.
type AnalysisResult struct {
	Runs     RunSet
	Events   []ReducedEvent
	Spectra  map[int]*ChannelSpectra
	Filename string
}

func (a *Analyzer) OutputFilename(nameID string) string {
	return filepath.Join(a.OutDir, fmt.Sprintf("analysis%s.h5", nameID))
}

func (a *Analyzer) Run(material string, energy int) (result *AnalysisResult, err error) {
	runs, err := a.Catalog.Lookup(material, energy)
	if err != nil {
		return nil, err
	}
	functions, err := a.Store.Load(runs.NameID)
	if err != nil {
		return nil, fmt.Errorf("error loading calibration %s: %w", runs.NameID, err)
	}
	calibrations := NewCalibrations(functions)
	if verbosity > 0 {
		message := fmt.Sprintf("Analyzing %s at %d MeV (%s), calibrated channels %v",
			material, energy, runs.NameID, calibrations.Channels())
		logger.Info(message, "analyze")
	}

	result = &AnalysisResult{
		Runs:     runs,
		Spectra:  make(map[int]*ChannelSpectra),
		Filename: a.OutputFilename(runs.NameID),
	}
	writer, err := NewWriter(result.Filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := writer.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	var errs []error
	spectra := newDetectorSpectra()
	for _, run := range runs.Runs {
		events, err := a.Reader.ReadRun(run)
		if err != nil {
			logger.Error(err.Error())
			errs = append(errs, err)
			continue
		}
		rc := NewRunContext(run, events)
		if err := rc.Process(calibrations, a.NumWorkers, a.BatchSize); err != nil {
			logger.Error(err.Error())
			errs = append(errs, err)
			continue
		}
		rc.Release()
		if err := writer.WriteEvents(rc.Reduced); err != nil {
			return result, errors.Join(append(errs, err)...)
		}
		if err := writer.WriteRunInfo(run, len(rc.Reduced)); err != nil {
			return result, errors.Join(append(errs, err)...)
		}
		for i := range spectra {
			spectra[i].Merge(rc.Spectra[i])
		}
		result.Events = append(result.Events, rc.Reduced...)
	}
	if len(result.Events) == 0 {
		errs = append(errs, fmt.Errorf("no events reconstructed for %s", runs.NameID))
		return result, errors.Join(errs...)
	}

	failed := a.subtractChannels(spectra, result.Events, calibrations)
	for i, ch := range DetectorChannels {
		if _, ok := failed[ch]; ok {
			continue
		}
		result.Spectra[ch] = spectra[i]
		if err := writer.WriteSpectra(spectra[i]); err != nil {
			errs = append(errs, err)
		}
	}
	if len(failed) > 0 {
		errs = append(errs, failed)
	}
	return result, joinErrors(errs)
}

// subtractChannels runs the accidental subtraction of every calibrated
// channel in parallel once all the events are reconstructed. Channels
// without calibration fail with ErrMissingCalibration.
func (a *Analyzer) subtractChannels(spectra [N_DET_CH]*ChannelSpectra, events []ReducedEvent, calibrations Calibrations) ChannelErrors {
	var wg sync.WaitGroup
	var mu sync.Mutex
	failed := make(ChannelErrors)
	for i := range spectra {
		if _, ok := calibrations[spectra[i].Channel]; !ok {
			err := &ErrMissingCalibration{Channel: spectra[i].Channel}
			logger.Error(fmt.Sprintf("background subtraction of channel %d skipped: %v", spectra[i].Channel, err))
			failed[spectra[i].Channel] = err
			continue
		}
		wg.Add(1)
		go func(s *ChannelSpectra) {
			defer wg.Done()
			if err := SubtractWindows(s, events, a.TOFOuterBound); err != nil {
				logger.Error(fmt.Sprintf("background subtraction of channel %d failed: %v", s.Channel, err))
				mu.Lock()
				failed[s.Channel] = err
				mu.Unlock()
			}
		}(spectra[i])
	}
	wg.Wait()
	return failed
}

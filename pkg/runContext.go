package ssacal

import "fmt"

// RunContext holds the events of one run while it is analyzed.
type RunContext struct {
	RunNumber int
	Events    []RawEvent
	Reduced   []ReducedEvent
	Spectra   [N_DET_CH]*ChannelSpectra
}

func NewRunContext(run int, events []RawEvent) *RunContext {
	return &RunContext{RunNumber: run, Events: events}
}

// Process reconstructs every event of the run.
func (rc *RunContext) Process(calibrations Calibrations, nWorkers int, batchSize int) error {
	reduced, spectra, err := ProcessEvents(rc.RunNumber, rc.Events, calibrations, nWorkers, batchSize)
	if err != nil {
		return fmt.Errorf("run %d: %w", rc.RunNumber, err)
	}
	rc.Reduced = reduced
	rc.Spectra = spectra
	if verbosity > 0 {
		message := fmt.Sprintf("Run %d: %d events reconstructed", rc.RunNumber, len(reduced))
		logger.Info(message, "run")
	}
	return nil
}

// Release drops the raw events once they are no longer needed.
func (rc *RunContext) Release() {
	rc.Events = nil
}

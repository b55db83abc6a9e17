package ssacal

import (
	"fmt"
)

// eventBatch is the half-open index range [start, end) of the run events.
type eventBatch struct {
	start int
	end   int
}

type workerResult struct {
	spectra [N_DET_CH]*ChannelSpectra
	err     error
}

func newDetectorSpectra() [N_DET_CH]*ChannelSpectra {
	var spectra [N_DET_CH]*ChannelSpectra
	for i, ch := range DetectorChannels {
		spectra[i] = NewChannelSpectra(ch)
	}
	return spectra
}

// worker reconstructs the events of each batch into the same positions of
// reduced and fills its own TOF and raw energy spectra, sent once the jobs
// channel is closed.
func worker(id int, run int, calibrations Calibrations, events []RawEvent, reduced []ReducedEvent,
	jobs <-chan eventBatch, results chan<- workerResult) {
	spectra := newDetectorSpectra()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("worker %d recovered from panic: %v", id, r)
			logger.Error(err.Error())
			results <- workerResult{spectra: spectra, err: err}
		}
	}()

	for batch := range jobs {
		if verbosity > 2 {
			message := fmt.Sprintf("Worker %d processing events %d-%d of run %d", id, batch.start, batch.end-1, run)
			logger.Info(message, "workers")
		}
		for i := batch.start; i < batch.end; i++ {
			event := calibrations.Reconstruct(&events[i], run)
			reduced[i] = event
			for ch := range spectra {
				spectra[ch].Fill(event.Energy[ch], event.TOF[ch])
			}
		}
	}
	results <- workerResult{spectra: spectra}
}

func sendEventsToWorkers(nEvents int, batchSize int, jobs chan<- eventBatch) {
	for start := 0; start < nEvents; start += batchSize {
		end := start + batchSize
		if end > nEvents {
			end = nEvents
		}
		jobs <- eventBatch{start: start, end: end}
	}
	close(jobs)
}

func numberOfBatches(nEvents int, batchSize int) int {
	return (nEvents + batchSize - 1) / batchSize
}

// ProcessEvents reconstructs the events of a run on nWorkers goroutines.
// The reduced events keep the order of the input, the spectra are the sum
// of the spectra filled by every worker.
func ProcessEvents(run int, events []RawEvent, calibrations Calibrations, nWorkers int, batchSize int) ([]ReducedEvent, [N_DET_CH]*ChannelSpectra, error) {
	if nWorkers < 1 {
		nWorkers = 1
	}
	if batchSize < 1 {
		batchSize = len(events)/nWorkers + 1
	}

	reduced := make([]ReducedEvent, len(events))
	jobs := make(chan eventBatch, numberOfBatches(len(events), batchSize))
	results := make(chan workerResult, nWorkers)

	sendEventsToWorkers(len(events), batchSize, jobs)
	for w := 0; w < nWorkers; w++ {
		go worker(w, run, calibrations, events, reduced, jobs, results)
	}

	spectra := newDetectorSpectra()
	var errs []error
	for w := 0; w < nWorkers; w++ {
		result := <-results
		if result.err != nil {
			errs = append(errs, result.err)
		}
		for ch := range spectra {
			spectra[ch].Merge(result.spectra[ch])
		}
	}
	return reduced, spectra, joinErrors(errs)
}

package ssacal

import (
	"errors"
	"fmt"

	hdf5 "github.com/jmbenlloch/go-hdf5"
)

const (
	RUN_GROUP     = "Run"
	SPECTRA_GROUP = "Spectra"
)

// Writer stores reduced events, run information and the background
// subtracted spectra of an analysis in one HDF5 file.
type Writer struct {
	File          *hdf5.File
	Filename      string
	RunGroup      *hdf5.Group
	SpectraGroup  *hdf5.Group
	EventTable    *hdf5.Dataset
	RunInfoTable  *hdf5.Dataset
	WindowsTable  *hdf5.Dataset
	EvtCounter    int
	RunCounter    int
	WindowCounter int
}

func NewWriter(filename string) (*Writer, error) {
	if verbosity > 0 {
		logger.Info(fmt.Sprintf("Creating file: %s", filename), "writer")
	}

	writer := &Writer{Filename: filename}
	var err error
	if writer.File, err = createFile(filename); err != nil {
		return nil, err
	}
	if writer.RunGroup, err = createGroup(writer.File, RUN_GROUP); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.SpectraGroup, err = createGroup(writer.File, SPECTRA_GROUP); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.EventTable, err = createTable(writer.RunGroup, "events", ReducedEventHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.RunInfoTable, err = createTable(writer.RunGroup, "runInfo", RunInfoHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	if writer.WindowsTable, err = createTable(writer.SpectraGroup, "windows", WindowsHDF5{}); err != nil {
		return nil, errors.Join(err, writer.Close())
	}
	return writer, nil
}

// WriteEvents appends reduced events in the given order.
func (w *Writer) WriteEvents(events []ReducedEvent) error {
	// The array MUST be allocated at creation, if not, HDF5 will panic
	rows := make([]ReducedEventHDF5, len(events))
	for i, event := range events {
		rows[i] = toReducedEventHDF5(event)
	}
	if err := writeArrayToTable(w.EventTable, &rows, w.EvtCounter); err != nil {
		return fmt.Errorf("error writing events: %w", err)
	}
	w.EvtCounter += len(rows)
	return nil
}

func (w *Writer) WriteRunInfo(run int, nEvents int) error {
	entry := RunInfoHDF5{run_number: int32(run), n_events: int64(nEvents)}
	if err := writeEntryToTable(w.RunInfoTable, entry, w.RunCounter); err != nil {
		return fmt.Errorf("error writing run info of run %d: %w", run, err)
	}
	w.RunCounter++
	return nil
}

// WriteSpectra stores the energy spectra of a channel and the TOF windows
// used to build them.
func (w *Writer) WriteSpectra(spectra *ChannelSpectra) error {
	named := []struct {
		kind   string
		values []float64
	}{
		{"raw", histValues(spectra.Raw)},
		{"prompt", histValues(spectra.Prompt)},
		{"early", histValues(spectra.Early)},
		{"late", histValues(spectra.Late)},
		{"corrected", histValues(spectra.Corrected)},
	}
	for _, spectrum := range named {
		name := spectrumName(spectrum.kind, spectra.Channel)
		if err := writeFloatArray(w.SpectraGroup, name, spectrum.values); err != nil {
			return err
		}
	}

	windows := spectra.Windows
	entry := WindowsHDF5{
		channel:   int32(spectra.Channel),
		tof_peak:  spectra.TOFPeak,
		prompt_lo: windows.Prompt.Lo,
		prompt_hi: windows.Prompt.Hi,
		early_lo:  windows.Early.Lo,
		early_hi:  windows.Early.Hi,
		late_lo:   windows.Late.Lo,
		late_hi:   windows.Late.Hi,
	}
	if err := writeEntryToTable(w.WindowsTable, entry, w.WindowCounter); err != nil {
		return fmt.Errorf("error writing windows of channel %d: %w", spectra.Channel, err)
	}
	w.WindowCounter++
	return nil
}

func (w *Writer) Close() error {
	var errs []error

	if w.EventTable != nil {
		if err := w.EventTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close EventTable: %w", err))
		}
	}
	if w.RunInfoTable != nil {
		if err := w.RunInfoTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close RunInfoTable: %w", err))
		}
	}
	if w.WindowsTable != nil {
		if err := w.WindowsTable.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close WindowsTable: %w", err))
		}
	}
	if w.RunGroup != nil {
		if err := w.RunGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close RunGroup: %w", err))
		}
	}
	if w.SpectraGroup != nil {
		if err := w.SpectraGroup.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close SpectraGroup: %w", err))
		}
	}
	if w.File != nil {
		if err := w.File.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close File: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ReadEvents returns the reduced events stored in an analysis file.
func ReadEvents(filename string) ([]ReducedEvent, error) {
	f, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := readTable[ReducedEventHDF5](f, RUN_GROUP+"/events")
	if err != nil {
		return nil, err
	}
	events := make([]ReducedEvent, len(rows))
	for i, row := range rows {
		events[i] = fromReducedEventHDF5(row)
	}
	return events, nil
}

// ReadSpectrum returns the bin contents of a stored spectrum, for example
// ReadSpectrum(f, "corrected", 0).
func ReadSpectrum(filename string, kind string, channel int) ([]float64, error) {
	f, err := openFile(filename)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readFloatArray(f, SPECTRA_GROUP+"/"+spectrumName(kind, channel))
}

package ssacal

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrOpenFile represents an error when opening a file.
type ErrOpenFile struct {
	Filename string
	Err      error
}

func (e *ErrOpenFile) Error() string {
	return fmt.Sprintf("error opening file %q: %v", e.Filename, e.Err)
}

func (e *ErrOpenFile) Unwrap() error {
	return e.Err
}

// ErrCreateGroup represents an error when creating a group.
type ErrCreateGroup struct {
	GroupName string
	Err       error
}

func (e *ErrCreateGroup) Error() string {
	return fmt.Sprintf("error creating group %q: %v", e.GroupName, e.Err)
}

func (e *ErrCreateGroup) Unwrap() error {
	return e.Err
}

// ErrCreateTable represents an error when creating a table.
type ErrCreateTable struct {
	TableName string
	Err       error
}

func (e *ErrCreateTable) Error() string {
	return fmt.Sprintf("error creating table %q: %v", e.TableName, e.Err)
}

func (e *ErrCreateTable) Unwrap() error {
	return e.Err
}

// ErrEmptyRange is returned when a peak search range selects no bins.
type ErrEmptyRange struct {
	Low  float64
	High float64
}

func (e *ErrEmptyRange) Error() string {
	return fmt.Sprintf("no histogram bins in range [%g, %g]", e.Low, e.High)
}

// ErrFitConvergence is returned when the gaussian refit of a peak fails
// or produces an unusable result.
type ErrFitConvergence struct {
	Center float64
	Reason string
	Err    error
}

func (e *ErrFitConvergence) Error() string {
	msg := fmt.Sprintf("gaussian fit around %g did not converge: %s", e.Center, e.Reason)
	if e.Err != nil {
		msg += fmt.Sprintf(": %v", e.Err)
	}
	return msg
}

func (e *ErrFitConvergence) Unwrap() error {
	return e.Err
}

// ErrDegenerateCalibration is returned when the calibration points cannot
// constrain a straight line.
type ErrDegenerateCalibration struct {
	Channel int
	Reason  string
}

func (e *ErrDegenerateCalibration) Error() string {
	return fmt.Sprintf("degenerate calibration for channel %d: %s", e.Channel, e.Reason)
}

// ErrMissingCalibration is returned when energy is requested for a channel
// without calibration function.
type ErrMissingCalibration struct {
	Channel int
}

func (e *ErrMissingCalibration) Error() string {
	return fmt.Sprintf("no calibration function for channel %d", e.Channel)
}

// ErrEmptyWindow is returned when a TOF window cannot be used to normalize
// the accidental background.
type ErrEmptyWindow struct {
	Channel int
	Window  WindowKind
	Reason  string
}

func (e *ErrEmptyWindow) Error() string {
	return fmt.Sprintf("channel %d, %v window: %s", e.Channel, e.Window, e.Reason)
}

// ErrUnknownCondition is returned by run catalogs for a material and
// energy combination without runs.
type ErrUnknownCondition struct {
	Material string
	Energy   int
}

func (e *ErrUnknownCondition) Error() string {
	return fmt.Sprintf("no runs for material %q at energy setting %d", e.Material, e.Energy)
}

// ErrReadRun represents an error when reading the events of a run.
type ErrReadRun struct {
	Run int
	Err error
}

func (e *ErrReadRun) Error() string {
	return fmt.Sprintf("error reading run %d: %v", e.Run, e.Err)
}

func (e *ErrReadRun) Unwrap() error {
	return e.Err
}

// ChannelErrors collects the failures of independent per-channel
// computations.
type ChannelErrors map[int]error

func (e ChannelErrors) Error() string {
	channels := e.Channels()
	msgs := make([]string, len(channels))
	for i, ch := range channels {
		msgs[i] = fmt.Sprintf("channel %d: %v", ch, e[ch])
	}
	return strings.Join(msgs, "; ")
}

func (e ChannelErrors) Unwrap() []error {
	channels := e.Channels()
	errs := make([]error, len(channels))
	for i, ch := range channels {
		errs[i] = e[ch]
	}
	return errs
}

// Channels returns the failed channels in ascending order.
func (e ChannelErrors) Channels() []int {
	channels := make([]int, 0, len(e))
	for ch := range e {
		channels = append(channels, ch)
	}
	sort.Ints(channels)
	return channels
}

// OrNil returns nil when no channel failed.
func (e ChannelErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return errors.Join(errs...)
}

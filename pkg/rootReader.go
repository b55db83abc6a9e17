package ssacal

import (
	"fmt"
	"reflect"

	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rtree"
)

const (
	AMPLITUDE_BRANCH    = "amplitude"
	CHANNEL_TIME_BRANCH = "channel_time"
	TRIGGER_TIME_BRANCH = "trigger_time"
)

// RunReader provides the events of a run.
type RunReader interface {
	ReadRun(run int) ([]RawEvent, error)
}

// RootRunReader reads runs from the tree files written by the acquisition.
type RootRunReader struct {
	Dir      string
	Pattern  string
	TreeName string
}

func NewRootRunReader(config Configuration) *RootRunReader {
	return &RootRunReader{
		Dir:      config.RootDir,
		Pattern:  config.FilePattern,
		TreeName: config.TreeName,
	}
}

func (r *RootRunReader) ReadRun(run int) ([]RawEvent, error) {
	fname := RunFileName(r.Dir, r.Pattern, run)
	events, err := ReadTreeFile(fname, r.TreeName)
	if err != nil {
		return nil, &ErrReadRun{Run: run, Err: err}
	}
	if verbosity > 0 {
		message := fmt.Sprintf("Run %d: %d events read from %s", run, len(events), fname)
		logger.Info(message, "reader")
	}
	return events, nil
}

// ReadTreeFile reads every entry of a tree. The amplitude and channel_time
// branches may hold up to N_DIGI_CH values of any numeric type, the first
// value of trigger_time is used as reference.
func ReadTreeFile(fname string, treeName string) ([]RawEvent, error) {
	f, err := groot.Open(fname)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	defer f.Close()

	obj, err := f.Get(treeName)
	if err != nil {
		return nil, fmt.Errorf("could not retrieve tree %q: %w", treeName, err)
	}
	tree, ok := obj.(rtree.Tree)
	if !ok {
		return nil, fmt.Errorf("object %q is not a tree", treeName)
	}

	var rvars []rtree.ReadVar
	for _, rvar := range rtree.NewReadVars(tree) {
		switch rvar.Name {
		case AMPLITUDE_BRANCH, CHANNEL_TIME_BRANCH, TRIGGER_TIME_BRANCH:
			rvars = append(rvars, rvar)
		}
	}
	if len(rvars) != 3 {
		return nil, fmt.Errorf("tree %q: expected branches %s, %s and %s",
			treeName, AMPLITUDE_BRANCH, CHANNEL_TIME_BRANCH, TRIGGER_TIME_BRANCH)
	}

	reader, err := rtree.NewReader(tree, rvars)
	if err != nil {
		return nil, fmt.Errorf("could not create tree reader: %w", err)
	}
	defer reader.Close()

	events := make([]RawEvent, 0, tree.Entries())
	err = reader.Read(func(ctx rtree.RCtx) error {
		var event RawEvent
		for _, rvar := range rvars {
			values, err := numericValues(rvar.Value)
			if err != nil {
				return fmt.Errorf("entry %d, branch %s: %w", ctx.Entry, rvar.Name, err)
			}
			switch rvar.Name {
			case AMPLITUDE_BRANCH:
				copy(event.Amplitude[:], values)
			case CHANNEL_TIME_BRANCH:
				copy(event.ChannelTime[:], values)
			case TRIGGER_TIME_BRANCH:
				if len(values) == 0 {
					return fmt.Errorf("entry %d: empty %s", ctx.Entry, TRIGGER_TIME_BRANCH)
				}
				event.TriggerTime = values[0]
			}
		}
		events = append(events, event)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not read tree %q: %w", treeName, err)
	}
	return events, nil
}

// numericValues flattens a pointer to a numeric scalar, array or slice.
func numericValues(ptr any) ([]float64, error) {
	v := reflect.Indirect(reflect.ValueOf(ptr))
	switch v.Kind() {
	case reflect.Array, reflect.Slice:
		values := make([]float64, v.Len())
		for i := range values {
			x, err := toFloat(v.Index(i))
			if err != nil {
				return nil, err
			}
			values[i] = x
		}
		return values, nil
	default:
		x, err := toFloat(v)
		if err != nil {
			return nil, err
		}
		return []float64{x}, nil
	}
}

func toFloat(v reflect.Value) (float64, error) {
	switch v.Kind() {
	case reflect.Float32, reflect.Float64:
		return v.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), nil
	}
	return 0, fmt.Errorf("unsupported type %v", v.Type())
}

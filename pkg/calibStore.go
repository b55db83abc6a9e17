package ssacal

import (
	"errors"
	"fmt"
	"path/filepath"
)

const CALIBRATION_GROUP = "Calibration"

// CalibrationStore persists the calibration functions of a configuration,
// identified by the run set name id.
type CalibrationStore interface {
	Save(id string, functions []CalibrationFunction, curves []CalibrationCurve) error
	Load(id string) ([]CalibrationFunction, error)
}

// HDF5Store keeps each configuration in its own file inside Dir.
type HDF5Store struct {
	Dir string
}

func NewHDF5Store(dir string) *HDF5Store {
	return &HDF5Store{Dir: dir}
}

func (s *HDF5Store) Filename(id string) string {
	return filepath.Join(s.Dir, fmt.Sprintf("calibration%s.h5", id))
}

func (s *HDF5Store) Save(id string, functions []CalibrationFunction, curves []CalibrationCurve) (err error) {
	fname := s.Filename(id)
	f, err := createFile(fname)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to close File: %w", cerr))
		}
	}()

	group, err := createGroup(f, CALIBRATION_GROUP)
	if err != nil {
		return err
	}
	defer group.Close()

	fnTable, err := createTable(group, "functions", CalibrationHDF5{})
	if err != nil {
		return err
	}
	defer fnTable.Close()
	rows := make([]CalibrationHDF5, len(functions))
	for i, fn := range functions {
		rows[i] = CalibrationHDF5{
			channel: int32(fn.Channel),
			a:       fn.A,
			b:       fn.B,
			a_err:   fn.AErr,
			b_err:   fn.BErr,
		}
	}
	if err := writeArrayToTable(fnTable, &rows, 0); err != nil {
		return fmt.Errorf("error writing calibration functions: %w", err)
	}

	pointsTable, err := createTable(group, "points", CalibrationPointHDF5{})
	if err != nil {
		return err
	}
	defer pointsTable.Close()
	points := make([]CalibrationPointHDF5, 0, len(curves)*N_REF_LINES)
	for _, curve := range curves {
		for i, p := range curve.Points {
			points = append(points, CalibrationPointHDF5{
				channel:      int32(curve.Channel),
				centroid:     p.Centroid,
				centroid_err: p.CentroidErr,
				energy:       p.Energy,
				residual:     curve.Residuals[i],
			})
		}
	}
	if err := writeArrayToTable(pointsTable, &points, 0); err != nil {
		return fmt.Errorf("error writing calibration points: %w", err)
	}

	if verbosity > 0 {
		message := fmt.Sprintf("%d calibration functions written to %s", len(functions), fname)
		logger.Info(message, "store")
	}
	return nil
}

func (s *HDF5Store) Load(id string) ([]CalibrationFunction, error) {
	f, err := openFile(s.Filename(id))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := readTable[CalibrationHDF5](f, CALIBRATION_GROUP+"/functions")
	if err != nil {
		return nil, err
	}
	functions := make([]CalibrationFunction, len(rows))
	for i, row := range rows {
		functions[i] = CalibrationFunction{
			Channel: int(row.channel),
			A:       row.a,
			B:       row.b,
			AErr:    row.a_err,
			BErr:    row.b_err,
		}
	}
	return functions, nil
}

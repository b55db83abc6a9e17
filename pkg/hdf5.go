package ssacal

import (
	"fmt"

	"github.com/jmbenlloch/go-hdf5"
)

const (
	COMPRESSION_LEVEL = 4
	TABLE_CHUNK       = 32768
)

type ReducedEventHDF5 struct {
	run_number int32
	energy_ch0 float64
	energy_ch1 float64
	energy_ch2 float64
	energy_ch3 float64
	tof_ch0    float64
	tof_ch1    float64
	tof_ch2    float64
	tof_ch3    float64
	monitor    float64
}

type RunInfoHDF5 struct {
	run_number int32
	n_events   int64
}

type WindowsHDF5 struct {
	channel   int32
	tof_peak  float64
	prompt_lo float64
	prompt_hi float64
	early_lo  float64
	early_hi  float64
	late_lo   float64
	late_hi   float64
}

type CalibrationHDF5 struct {
	channel int32
	a       float64
	b       float64
	a_err   float64
	b_err   float64
}

type CalibrationPointHDF5 struct {
	channel      int32
	centroid     float64
	centroid_err float64
	energy       float64
	residual     float64
}

func toReducedEventHDF5(event ReducedEvent) ReducedEventHDF5 {
	return ReducedEventHDF5{
		run_number: int32(event.RunNumber),
		energy_ch0: event.Energy[0],
		energy_ch1: event.Energy[1],
		energy_ch2: event.Energy[2],
		energy_ch3: event.Energy[3],
		tof_ch0:    event.TOF[0],
		tof_ch1:    event.TOF[1],
		tof_ch2:    event.TOF[2],
		tof_ch3:    event.TOF[3],
		monitor:    event.Monitor,
	}
}

func fromReducedEventHDF5(row ReducedEventHDF5) ReducedEvent {
	return ReducedEvent{
		RunNumber: int(row.run_number),
		Energy:    [N_DET_CH]float64{row.energy_ch0, row.energy_ch1, row.energy_ch2, row.energy_ch3},
		TOF:       [N_DET_CH]float64{row.tof_ch0, row.tof_ch1, row.tof_ch2, row.tof_ch3},
		Monitor:   row.monitor,
	}
}

func createFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.CreateFile(fname, hdf5.F_ACC_TRUNC)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func openFile(fname string) (*hdf5.File, error) {
	f, err := hdf5.OpenFile(fname, hdf5.F_ACC_RDONLY)
	if err != nil {
		return nil, &ErrOpenFile{Filename: fname, Err: err}
	}
	return f, nil
}

func createGroup(file *hdf5.File, groupName string) (*hdf5.Group, error) {
	g, err := file.CreateGroup(groupName)
	if err != nil {
		return nil, &ErrCreateGroup{GroupName: groupName, Err: err}
	}
	return g, nil
}

func createTable(group *hdf5.Group, name string, datatype interface{}) (*hdf5.Dataset, error) {
	dims := []uint{0}
	unlimitedDims := -1 // H5S_UNLIMITED is -1L
	maxDims := []uint{uint(unlimitedDims)}
	file_space, err := hdf5.CreateSimpleDataspace(dims, maxDims)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer file_space.Close()

	// create property list
	plist, err := hdf5.NewPropList(hdf5.P_DATASET_CREATE)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	defer plist.Close()

	chunks := []uint{TABLE_CHUNK}
	plist.SetChunk(chunks)
	plist.SetDeflate(COMPRESSION_LEVEL)

	// create the memory data type
	dtype, err := hdf5.NewDatatypeFromValue(datatype)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}

	dset, err := group.CreateDatasetWith(name, dtype, file_space, plist)
	if err != nil {
		return nil, &ErrCreateTable{TableName: name, Err: err}
	}
	return dset, nil
}

func writeEntryToTable[T any](dataset *hdf5.Dataset, data T, rowCounter int) error {
	array := []T{data}
	return writeArrayToTable(dataset, &array, rowCounter)
}

// writeArrayToTable appends data after the first rowCounter rows.
func writeArrayToTable[T any](dataset *hdf5.Dataset, data *[]T, rowCounter int) error {
	length := uint(len(*data))
	if length == 0 {
		return nil
	}
	dims := []uint{length}
	dataspace, err := hdf5.CreateSimpleDataspace(dims, nil)
	if err != nil {
		return err
	}
	defer dataspace.Close()

	// extend
	rowsInFile := uint(rowCounter)
	newsize := []uint{rowsInFile + length}
	if err := dataset.Resize(newsize); err != nil {
		return err
	}
	filespace := dataset.Space()
	defer filespace.Close()

	start := []uint{rowsInFile}
	count := []uint{length}
	if err := filespace.SelectHyperslab(start, nil, count, nil); err != nil {
		return err
	}

	return dataset.WriteSubset(data, dataspace, filespace)
}

// writeFloatArray stores values as a fixed size 1D dataset.
func writeFloatArray(group *hdf5.Group, name string, values []float64) error {
	dataspace, err := hdf5.CreateSimpleDataspace([]uint{uint(len(values))}, nil)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer dataspace.Close()

	dset, err := group.CreateDataset(name, hdf5.T_NATIVE_DOUBLE, dataspace)
	if err != nil {
		return &ErrCreateTable{TableName: name, Err: err}
	}
	defer dset.Close()
	return dset.Write(&values)
}

func readTable[T any](file *hdf5.File, path string) ([]T, error) {
	dset, err := file.OpenDataset(path)
	if err != nil {
		return nil, fmt.Errorf("error opening dataset %q: %w", path, err)
	}
	defer dset.Close()

	space := dset.Space()
	defer space.Close()
	dims, _, err := space.SimpleExtentDims()
	if err != nil {
		return nil, fmt.Errorf("error reading dimensions of %q: %w", path, err)
	}
	if len(dims) != 1 || dims[0] == 0 {
		return []T{}, nil
	}

	data := make([]T, dims[0])
	if err := dset.Read(&data); err != nil {
		return nil, fmt.Errorf("error reading dataset %q: %w", path, err)
	}
	return data, nil
}

func readFloatArray(file *hdf5.File, path string) ([]float64, error) {
	return readTable[float64](file, path)
}

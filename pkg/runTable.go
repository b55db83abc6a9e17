package ssacal

import (
	"fmt"
	"path/filepath"
	"sort"
)

// RunSet lists the runs taken with one material and beam energy, and the
// identifier used to name the files produced from them.
type RunSet struct {
	Runs   []int
	NameID string
}

type RunCatalog interface {
	Lookup(material string, energy int) (RunSet, error)
}

type condition struct {
	Material string
	Energy   int
}

// StaticCatalog is a run catalog held in memory.
type StaticCatalog map[condition]RunSet

func NewStaticCatalog() StaticCatalog {
	return make(StaticCatalog)
}

func (c StaticCatalog) Add(material string, energy int, runs RunSet) {
	c[condition{Material: material, Energy: energy}] = runs
}

func (c StaticCatalog) Lookup(material string, energy int) (RunSet, error) {
	runs, ok := c[condition{Material: material, Energy: energy}]
	if !ok {
		return RunSet{}, &ErrUnknownCondition{Material: material, Energy: energy}
	}
	sorted := append([]int(nil), runs.Runs...)
	sort.Ints(sorted)
	return RunSet{Runs: sorted, NameID: runs.NameID}, nil
}

// SSACatalog returns the runs of the SSA data taking campaign.
func SSACatalog() StaticCatalog {
	c := NewStaticCatalog()
	c.Add("MoFoil", 6, RunSet{Runs: []int{58, 59, 60, 61, 62, 63, 64, 65, 66}, NameID: "_MoFoil_6MeV"})
	c.Add("FeFoil", 6, RunSet{Runs: []int{67, 77, 78}, NameID: "_FeFoil_6MeV"})
	// Beam off runs were recorded with the powder target under the foil id
	c.Add("MoPowder", 0, RunSet{Runs: []int{68, 72, 76, 85}, NameID: "_MoFoil_NoBeam"})
	c.Add("MoPowder", 6, RunSet{Runs: []int{69, 70, 71, 73, 74, 75}, NameID: "_MoPowder_6MeV"})
	c.Add("Empty", 6, RunSet{Runs: []int{79}, NameID: "_Empty_6MeV"})
	c.Add("Cu", 6, RunSet{Runs: []int{80}, NameID: "_Cu_6MeV"})
	c.Add("MoPowder", 8, RunSet{Runs: []int{81, 82, 83, 84, 86}, NameID: "_MoPowder_8MeV"})
	c.Add("FeFoil", 8, RunSet{Runs: []int{87}, NameID: "_FeFoil_8MeV"})
	c.Add("FeFoil", 4, RunSet{Runs: []int{88}, NameID: "_FeFoil_4MeV"})
	c.Add("MoPowder", 4, RunSet{Runs: []int{89, 90}, NameID: "_MoPowder_4MeV"})
	c.Add("Empty", 4, RunSet{Runs: []int{91}, NameID: "_Empty_4MeV"})
	return c
}

// RunFileName returns the path of the tree file of a run.
func RunFileName(dir, pattern string, run int) string {
	return filepath.Join(dir, fmt.Sprintf(pattern, run))
}

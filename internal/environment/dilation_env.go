package environment

import (
	"encoding/binary"
	"math"

	"github.com/cespare/xxhash/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/armadaproject/clustersim/internal/cluster"
	simslices "github.com/armadaproject/clustersim/internal/common/slices"
	"github.com/armadaproject/clustersim/internal/dilation"
)

const defaultDilatorCacheSize = 128

// DilationAction is one step of a dilation-navigated episode. Exactly one of SkipTime, Contract or Cell is
// acted on, in that order of priority. Cell expands the current window unless it is fully expanded, in which case
// it selects the machine Job is scheduled on.
type DilationAction struct {
	Cell     dilation.Cell
	Job      int
	SkipTime bool
	Contract bool
}

// DilationObservation is what an agent sees while navigating.
type DilationObservation[P any] struct {
	// Window is the kernel-sized view of the current dilation state.
	Window *dilation.Grid
	Level  int
	// FullyExpanded is true if the next cell action selects a machine.
	FullyExpanded bool
	Cluster       cluster.Observation[P]
}

// DilationEnv lets an agent choose machines by navigating a pooled view of the cluster instead of picking among
// every machine at once. The hierarchy is rebuilt from the machines' free space whenever the cluster changes.
type DilationEnv[P any] struct {
	env     *Env[P]
	flatten func(P) []float64
	config  dilation.Config
	// Dilators by fingerprint of the free space they were built from.
	cache   *lru.Cache
	dilator *dilation.Dilator
}

// cachedDilator keeps the profiles a dilator was built from, so that a fingerprint collision is detected on lookup.
type cachedDilator struct {
	profiles [][]float64
	dilator  *dilation.Dilator
}

// NewDilationEnv wraps env. flatten turns a machine's free space into the channels of its grid cell.
func NewDilationEnv[P any](env *Env[P], flatten func(P) []float64, config dilation.Config, cacheSize int) (*DilationEnv[P], error) {
	if cacheSize <= 0 {
		cacheSize = defaultDilatorCacheSize
	}
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &DilationEnv[P]{env: env, flatten: flatten, config: config, cache: cache}, nil
}

func (d *DilationEnv[P]) Reset(seed int64) (DilationObservation[P], Info, error) {
	if _, _, err := d.env.Reset(seed); err != nil {
		return DilationObservation[P]{}, Info{}, err
	}
	if err := d.rebuild(); err != nil {
		return DilationObservation[P]{}, Info{}, err
	}
	return d.observation(), d.env.info(), nil
}

// Step applies action. Navigation steps earn no reward and leave the cluster untouched. Selecting a padding cell
// advances the clock instead of scheduling.
func (d *DilationEnv[P]) Step(action DilationAction) (StepResult[DilationObservation[P]], error) {
	switch {
	case action.SkipTime:
		return d.stepCluster(Action{SkipTime: true})
	case action.Contract:
		d.dilator.Contract()
		return d.navigationResult(), nil
	}
	if _, ok := d.dilator.State().(*dilation.FullyExpanded); !ok {
		if _, err := d.dilator.Expand(action.Cell); err != nil {
			return StepResult[DilationObservation[P]]{}, err
		}
		return d.navigationResult(), nil
	}
	machine, ok, err := d.dilator.SelectedMachine(action.Cell)
	if err != nil {
		return StepResult[DilationObservation[P]]{}, err
	}
	if !ok {
		d.env.logger.WithField("cell", action.Cell).Debug("selected padding, advancing time instead")
		return d.stepCluster(Action{SkipTime: true})
	}
	return d.stepCluster(Action{Machine: machine, Job: action.Job})
}

// Dilator returns the dilator for the cluster's current free space.
func (d *DilationEnv[P]) Dilator() *dilation.Dilator {
	return d.dilator
}

func (d *DilationEnv[P]) stepCluster(action Action) (StepResult[DilationObservation[P]], error) {
	result, err := d.env.Step(action)
	if err != nil {
		return StepResult[DilationObservation[P]]{}, err
	}
	if err := d.rebuild(); err != nil {
		return StepResult[DilationObservation[P]]{}, err
	}
	return StepResult[DilationObservation[P]]{
		Observation: d.observation(),
		Reward:      result.Reward,
		Terminated:  result.Terminated,
		Truncated:   result.Truncated,
		Info:        result.Info,
	}, nil
}

func (d *DilationEnv[P]) navigationResult() StepResult[DilationObservation[P]] {
	return StepResult[DilationObservation[P]]{
		Observation: d.observation(),
		Terminated:  d.env.terminated(),
		Truncated:   d.env.truncated(),
		Info:        d.env.info(),
	}
}

// rebuild points the env at a dilator, in its initial state, for the machines' current free space.
func (d *DilationEnv[P]) rebuild() error {
	profiles := simslices.Map(d.env.engine.Machines().Representation(), d.flatten)
	key := fingerprint(profiles)
	if cached, ok := d.cache.Get(key); ok {
		entry := cached.(*cachedDilator)
		if slices.EqualFunc(entry.profiles, profiles, slices.Equal[[]float64]) {
			d.dilator = entry.dilator
			d.dilator.Reset()
			return nil
		}
		d.env.logger.WithField("fingerprint", key).Debug("free space fingerprint collision, rebuilding dilator")
	}
	dilator, err := dilation.NewFromMachines(profiles, d.config)
	if err != nil {
		return err
	}
	d.cache.Add(key, &cachedDilator{profiles: profiles, dilator: dilator})
	d.dilator = dilator
	return nil
}

func (d *DilationEnv[P]) observation() DilationObservation[P] {
	state := d.dilator.State()
	_, fully := state.(*dilation.FullyExpanded)
	return DilationObservation[P]{
		Window:        state.Value(),
		Level:         state.Level(),
		FullyExpanded: fully,
		Cluster:       d.env.engine.Representation(),
	}
}

func fingerprint(profiles [][]float64) uint64 {
	h := xxhash.New()
	buf := make([]byte, 8)
	for _, profile := range profiles {
		binary.LittleEndian.PutUint64(buf, uint64(len(profile)))
		_, _ = h.Write(buf)
		for _, v := range profile {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			_, _ = h.Write(buf)
		}
	}
	return h.Sum64()
}

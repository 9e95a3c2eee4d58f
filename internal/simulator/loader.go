package simulator

import (
	"path/filepath"
	"strings"

	"github.com/mattn/go-zglob"
	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"github.com/armadaproject/clustersim/internal/common/config"
)

func ClusterSpecsFromPattern(pattern string) ([]*ClusterSpec, error) {
	filePaths, err := zglob.Glob(pattern)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ClusterSpecsFromFilePaths(filePaths)
}

func WorkloadSpecsFromPattern(pattern string) ([]*WorkloadSpec, error) {
	filePaths, err := zglob.Glob(pattern)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return WorkloadSpecsFromFilePaths(filePaths)
}

func SimulationConfigsFromPattern(pattern string) ([]*SimulationConfig, error) {
	filePaths, err := zglob.Glob(pattern)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return SimulationConfigsFromFilePaths(filePaths)
}

func ClusterSpecsFromFilePaths(filePaths []string) ([]*ClusterSpec, error) {
	return fromFilePaths(filePaths, ClusterSpecFromFilePath)
}

func WorkloadSpecsFromFilePaths(filePaths []string) ([]*WorkloadSpec, error) {
	return fromFilePaths(filePaths, WorkloadSpecFromFilePath)
}

func SimulationConfigsFromFilePaths(filePaths []string) ([]*SimulationConfig, error) {
	return fromFilePaths(filePaths, SimulationConfigFromFilePath)
}

func ClusterSpecFromFilePath(filePath string) (*ClusterSpec, error) {
	rv := &ClusterSpec{}
	if err := unmarshalFile(filePath, "ClusterSpec", rv); err != nil {
		return nil, err
	}
	// If no name is provided, set it to be the filename.
	if rv.Name == "" {
		rv.Name = nameFromFilePath(filePath)
	}
	return rv, nil
}

func WorkloadSpecFromFilePath(filePath string) (*WorkloadSpec, error) {
	rv := &WorkloadSpec{}
	if err := unmarshalFile(filePath, "WorkloadSpec", rv); err != nil {
		return nil, err
	}
	if rv.Name == "" {
		rv.Name = nameFromFilePath(filePath)
	}
	return rv, nil
}

func SimulationConfigFromFilePath(filePath string) (*SimulationConfig, error) {
	rv := &SimulationConfig{}
	if err := unmarshalFile(filePath, "SimulationConfig", rv); err != nil {
		return nil, err
	}
	if rv.Name == "" {
		rv.Name = nameFromFilePath(filePath)
	}
	return rv, nil
}

func fromFilePaths[T any](filePaths []string, load func(string) (T, error)) ([]T, error) {
	rv := make([]T, len(filePaths))
	for i, filePath := range filePaths {
		spec, err := load(filePath)
		if err != nil {
			return nil, err
		}
		rv[i] = spec
	}
	return rv, nil
}

func unmarshalFile(filePath, kind string, out interface{}) error {
	v := viper.NewWithOptions(viper.KeyDelimiter("::"))
	v.SetConfigFile(filePath)
	if err := v.ReadInConfig(); err != nil {
		err = errors.WithMessagef(err, "failed to read in %s %s", kind, filePath)
		return errors.WithStack(err)
	}
	if err := v.Unmarshal(out, config.CustomHooks...); err != nil {
		err = errors.WithMessagef(err, "failed to unmarshal %s %s", kind, filePath)
		return errors.WithStack(err)
	}
	return nil
}

func nameFromFilePath(filePath string) string {
	fileName := filepath.Base(filePath)
	return strings.TrimSuffix(fileName, filepath.Ext(fileName))
}

package config

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/armadaproject/clustersim/internal/cluster"
	"github.com/armadaproject/clustersim/internal/dilation"
)

var CustomHooks = []viper.DecoderConfigOption{
	viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		KernelDecodeHook(),
		OperationDecodeHook(),
		ComparisonDecodeHook(),
		mapstructure.StringToTimeDurationHookFunc(),
	)),
}

// KernelDecodeHook decodes strings such as "2x2" into a dilation.Kernel.
func KernelDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(dilation.Kernel{}) || f.Kind() != reflect.String {
			return data, nil
		}
		return dilation.ParseKernel(data.(string))
	}
}

func OperationDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(dilation.Max) {
			return data, nil
		}
		return dilation.ParseOperation(fmt.Sprintf("%v", data))
	}
}

func ComparisonDecodeHook() mapstructure.DecodeHookFuncType {
	return func(
		f reflect.Type,
		t reflect.Type,
		data interface{},
	) (interface{}, error) {
		if t != reflect.TypeOf(cluster.Strict) {
			return data, nil
		}
		return cluster.ParseComparison(fmt.Sprintf("%v", data))
	}
}

/*
Copyright © 2026 the EBM authors.
This file is part of EBM.

EBM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EBM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EBM.  If not, see <http://www.gnu.org/licenses/>.
*/

package ebmutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lnashier/viper"
	"github.com/spatialmodel/ebm"
	"github.com/spf13/cast"
)

// Params returns the session parameters specified by cfg.
// Values that cannot be converted to the right type, for example
// from environment variables, result in an error rather than a zero value.
func Params(cfg *viper.Viper) (ebm.Params, error) {
	var p ebm.Params
	var err error
	ints := []struct {
		name string
		dst  *int
	}{
		{"Rows", &p.Rows},
		{"Cols", &p.Cols},
	}
	for _, v := range ints {
		if *v.dst, err = cast.ToIntE(cfg.Get(v.name)); err != nil {
			return p, fmt.Errorf("ebm: invalid value for configuration variable %s: %v", v.name, err)
		}
	}
	floats := []struct {
		name string
		dst  *float64
	}{
		{"DiffusionCoefficient", &p.DiffusionCoefficient},
		{"WindSpeed", &p.WindSpeed},
		{"SolarConstant", &p.SolarConstant},
		{"StefanBoltzmann", &p.StefanBoltzmann},
		{"Timestep", &p.Timestep},
		{"InitialTemperature", &p.InitialTemperature},
		{"ResetTemperature", &p.ResetTemperature},
		{"HeatInjection", &p.HeatInjection},
	}
	for _, v := range floats {
		if *v.dst, err = cast.ToFloat64E(cfg.Get(v.name)); err != nil {
			return p, fmt.Errorf("ebm: invalid value for configuration variable %s: %v", v.name, err)
		}
	}
	ms, err := cast.ToIntE(cfg.Get("FrameBudgetMS"))
	if err != nil {
		return p, fmt.Errorf("ebm: invalid value for configuration variable FrameBudgetMS: %v", err)
	}
	p.FrameBudget = time.Duration(ms) * time.Millisecond
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

// checkOutputImage expands any environment variables in f and makes sure
// it names a PNG file.
func checkOutputImage(f string) (string, error) {
	if f == "" {
		return "", fmt.Errorf(`you need to specify an output image configuration variable (for example: OutputImage="ebm.png")`)
	}
	f = os.ExpandEnv(f)
	if ext := strings.ToLower(filepath.Ext(f)); ext != ".png" {
		return f, fmt.Errorf("ebm: OutputImage must be a .png file; got `%s`", f)
	}
	return f, nil
}

// settings returns the value of every configuration option except the
// location of the configuration file itself, converted to the type of the
// option's default value.
func settings(cfg *viper.Viper) map[string]interface{} {
	o := make(map[string]interface{})
	for _, option := range options {
		if option.name == "config" {
			continue
		}
		v := cfg.Get(option.name)
		switch option.defaultVal.(type) {
		case int:
			o[option.name] = cast.ToInt(v)
		case float64:
			o[option.name] = cast.ToFloat64(v)
		case bool:
			o[option.name] = cast.ToBool(v)
		default:
			o[option.name] = cast.ToString(v)
		}
	}
	return o
}

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"

	"github.com/fmi4go/fmi2/internal/fmilog"
)

// driverOptions groups the simulate-and-dump parameters a run of fmidrive
// needs, mirroring fmi4cpp's DriverOptions (FmuDriver.hpp): start/stop time,
// fixed communication step size, which variables to record, and where to
// write the resulting CSV.
type driverOptions struct {
	fmuPath       string
	startTime     float64
	stopTime      float64
	stepSize      float64
	variables     []string
	outputPath    string
	modelExchange bool
	verbose       bool
	logCategories categoryListFlag
	metricsAddr   string
}

// categoryListFlag is a repeatable pflag.Value accumulating FMI logger
// category names as given (Set does not validate them), adapted from wazero's custom logScopesFlag
// (flag.Value, comma-separated scope names) to pflag's Value interface and
// to a repeatable flag instead of a single comma-separated one.
type categoryListFlag []fmilog.Category

var _ pflag.Value = (*categoryListFlag)(nil)

func (f *categoryListFlag) String() string {
	names := make([]string, len(*f))
	for i, c := range *f {
		names[i] = string(c)
	}
	return strings.Join(names, ",")
}

func (f *categoryListFlag) Set(s string) error {
	*f = append(*f, fmilog.Category(s))
	return nil
}

func (f *categoryListFlag) Type() string { return "category" }

func (o *driverOptions) validate() error {
	if o.fmuPath == "" {
		return fmt.Errorf("missing path to fmu file")
	}
	if o.stepSize <= 0 {
		return fmt.Errorf("--step must be positive, got %v", o.stepSize)
	}
	if o.stopTime <= o.startTime {
		return fmt.Errorf("--stop (%v) must be greater than --start (%v)", o.stopTime, o.startTime)
	}
	if o.outputPath == "" {
		return fmt.Errorf("missing --out path")
	}
	return nil
}

func (o *driverOptions) categories() []fmilog.Category {
	return o.logCategories
}

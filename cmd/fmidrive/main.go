// Command fmidrive loads an FMU, simulates it over a fixed time window at a
// fixed communication step size, and writes the recorded variables to CSV.
// It is the Go counterpart of fmi4cpp's FmuDriver: open the package, resolve
// either its Co-Simulation or (wrapped) Model-Exchange slave, run
// setupExperiment/initialize/doStep in a loop, and dump the result.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	fmi "github.com/fmi4go/fmi2"
	"github.com/fmi4go/fmi2/internal/adapter"
)

var (
	errPrefix = color.New(color.FgRed, color.Bold).SprintFunc()
	warnColor = color.New(color.FgYellow).SprintFunc()
	okColor   = color.New(color.FgGreen).SprintFunc()
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdout, os.Stderr))
}

// doMain is split out from main for the purpose of unit testing, per the
// CLI's usual testable-entrypoint shape.
func doMain(args []string, stdout, stderr *os.File) int {
	cmd := newRootCommand(stdout, stderr)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(stderr, "%s %v\n", errPrefix("error:"), err)
		return 1
	}
	return 0
}

func newRootCommand(stdout, stderr *os.File) *cobra.Command {
	opts := &driverOptions{}

	cmd := &cobra.Command{
		Use:   "fmidrive <fmu-file>",
		Short: "Simulates an FMI 2.0 FMU and records its variables to CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.fmuPath = args[0]
			if err := opts.validate(); err != nil {
				return err
			}
			return runSimulation(opts, stdout, stderr)
		},
	}

	flags := cmd.Flags()
	flags.Float64Var(&opts.startTime, "start", 0, "Simulation start time")
	flags.Float64Var(&opts.stopTime, "stop", 1, "Simulation stop time")
	flags.Float64Var(&opts.stepSize, "step", 1e-2, "Fixed communication step size")
	flags.StringArrayVar(&opts.variables, "var", nil, "Variable name to record. May be repeated.")
	flags.StringVar(&opts.outputPath, "out", "", "Path of the CSV file to write")
	flags.BoolVar(&opts.modelExchange, "model-exchange", false, "Instantiate the Model-Exchange variant, wrapped by the built-in ME→CS adapter, instead of Co-Simulation")
	flags.BoolVar(&opts.verbose, "verbose", false, "Trace each doStep outer-loop iteration to stderr (Model-Exchange only)")
	flags.Var(&opts.logCategories, "log-categories", "FMI logger category to forward (e.g. logEvents). May be repeated.")
	flags.StringVar(&opts.metricsAddr, "metrics-addr", "", "If set, serve Prometheus metrics on this address while simulating (e.g. :9100)")

	return cmd
}

func runSimulation(opts *driverOptions, stdout, stderr *os.File) error {
	fmu, err := fmi.Open(opts.fmuPath)
	if err != nil {
		return fmt.Errorf("open %s: %w", opts.fmuPath, err)
	}
	defer fmu.Close()

	slave, closeVariant, err := instantiate(fmu, opts)
	if err != nil {
		return err
	}
	defer closeVariant()

	if opts.verbose {
		attachVerboseListener(slave, stderr)
	}

	metrics := newDriverMetrics()
	if opts.metricsAddr != "" {
		stopMetrics := serveMetrics(context.Background(), opts.metricsAddr, metrics.register(), stderr)
		defer stopMetrics()
	}

	out, err := os.Create(opts.outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", opts.outputPath, err)
	}
	defer out.Close()

	rec, err := newCSVRecorder(out, slave.ModelDescription(), opts.variables)
	if err != nil {
		return err
	}

	if err := slave.SetupExperiment(false, 0, opts.startTime, true, opts.stopTime); err != nil {
		return fmt.Errorf("setupExperiment: %w", err)
	}
	if err := slave.EnterInitializationMode(); err != nil {
		return fmt.Errorf("enterInitializationMode: %w", err)
	}
	if err := slave.ExitInitializationMode(); err != nil {
		return fmt.Errorf("exitInitializationMode: %w", err)
	}

	if err := rec.recordRow(slave); err != nil {
		return err
	}
	metrics.simulationTime.Set(slave.SimulationTime())

	for slave.SimulationTime() < opts.stopTime {
		ok, err := slave.DoStep(opts.stepSize)
		if err != nil {
			slave.Terminate()
			return fmt.Errorf("doStep: %w", err)
		}
		if !ok {
			slave.Terminate()
			return fmt.Errorf("simulation terminated prematurely at t=%v (status %v)",
				slave.SimulationTime(), slave.LastStatus())
		}
		metrics.stepsTaken.Inc()
		metrics.simulationTime.Set(slave.SimulationTime())
		if err := rec.recordRow(slave); err != nil {
			return err
		}
	}

	if err := slave.Terminate(); err != nil {
		return fmt.Errorf("terminate: %w", err)
	}
	if err := rec.flush(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}

	fmt.Fprintf(stdout, "%s wrote %s\n", okColor("done:"), opts.outputPath)
	return nil
}

// instantiate resolves and creates the requested variant, returning a
// closer that releases the loaded shared library.
func instantiate(fmu *fmi.Fmu, opts *driverOptions) (fmi.Slave, func(), error) {
	cfg := fmi.NewConfig().WithLogCategories(opts.categories()...)

	if opts.modelExchange {
		me, err := fmu.AsModelExchangeFmu()
		if err != nil {
			return nil, nil, err
		}
		slave, err := me.Instantiate("fmidrive", cfg)
		if err != nil {
			me.Close()
			return nil, nil, err
		}
		return slave, func() { me.Close() }, nil
	}

	cs, err := fmu.AsCoSimulationFmu()
	if err != nil {
		return nil, nil, err
	}
	slave, err := cs.Instantiate("fmidrive", cfg)
	if err != nil {
		cs.Close()
		return nil, nil, err
	}
	return slave, func() { cs.Close() }, nil
}

// verboseListener traces every ME→CS adapter outer-loop iteration to
// stderr, colorized by outcome. Only meaningful when the Slave is backed by
// the adapter (Co-Simulation FMUs run their own native doStep with nothing
// to trace at this granularity).
type verboseListener struct {
	stderr *os.File
}

func (l *verboseListener) Before(segmentStart, tNext float64) {
	fmt.Fprintf(l.stderr, "  doStep segment [%v, %v]\n", segmentStart, tNext)
}

func (l *verboseListener) After(outcome adapter.StepOutcome) {
	if outcome.Err != nil {
		fmt.Fprintf(l.stderr, "  %s %v\n", errPrefix("doStep failed:"), outcome.Err)
		return
	}
	if outcome.TimeEvent || outcome.StateEvent || outcome.StepEvent {
		fmt.Fprintf(l.stderr, "  %s time=%v state=%v step=%v eventMode=%v\n",
			warnColor("event:"), outcome.TimeEvent, outcome.StateEvent, outcome.StepEvent, outcome.EnteredEventMode)
	}
}

func attachVerboseListener(slave fmi.Slave, stderr *os.File) {
	if a, ok := slave.(*adapter.Adapter); ok {
		a.SetListener(&verboseListener{stderr: stderr})
	}
}

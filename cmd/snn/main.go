// Package main provides the snn command: simulation, gradient checks and
// block-size tuning for the integrate-and-fire kernels.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/born-ml/snn/internal/autotune"
	"github.com/born-ml/snn/internal/backend/cpu"
	"github.com/born-ml/snn/internal/gradcheck"
	"github.com/born-ml/snn/internal/neuron"
	"github.com/born-ml/snn/internal/nn"
	"github.com/born-ml/snn/internal/serialization"
	"github.com/born-ml/snn/internal/surrogate"
	"github.com/born-ml/snn/internal/tensor"
)

const version = "v0.1.0"

func main() {
	log.SetFlags(0)
	log.SetPrefix("snn: ")

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "version":
		fmt.Printf("snn %s\n", version)
	case "simulate":
		err = simulate(os.Args[2:])
	case "gradcheck":
		err = runGradcheck(os.Args[2:])
	case "tune":
		err = tune(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatal(err)
	}
}

func usage() {
	fmt.Println("snn - multi-step integrate-and-fire kernels")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version     Show version")
	fmt.Println("  simulate    Run an IF layer on random currents and report firing rates")
	fmt.Println("  gradcheck   Compare analytic and finite-difference gradients")
	fmt.Println("  tune        Autotune channel-block sizes on a grid of problem shapes")
}

// parseReset turns "soft" or a number into a Config.VReset value.
func parseReset(s string) (*float64, error) {
	if s == "soft" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid -reset %q: want \"soft\" or a number", s)
	}
	return neuron.ResetTo(v), nil
}

func simulate(args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	steps := fs.Int("t", 16, "Number of timesteps")
	channels := fs.Int("n", 1024, "Number of channels")
	threshold := fs.Float64("threshold", 1.0, "Firing threshold")
	reset := fs.String("reset", "0", `Reset: "soft" or the hard-reset potential`)
	mean := fs.Float64("mean", 0.3, "Mean input current")
	std := fs.Float64("std", 0.2, "Standard deviation of the input current")
	seed := fs.Int64("seed", 1, "Random seed")
	calls := fs.Int("calls", 1, "Consecutive sequences fed without reset")
	save := fs.String("save", "", "Write the final membrane state to this .snn file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	vReset, err := parseReset(*reset)
	if err != nil {
		return err
	}

	backend := cpu.New()
	cfg := nn.DefaultIFNodeConfig()
	cfg.VThreshold = *threshold
	cfg.VReset = vReset
	node, err := nn.NewIFNode(cfg, backend)
	if err != nil {
		return err
	}
	fmt.Printf("%s on %s, T=%d N=%d\n", node, backend.Name(), *steps, *channels)

	for call := 0; call < *calls; call++ {
		x := tensor.Randn[float32](tensor.Shape{*steps, *channels}, *mean, *std, *seed+int64(call), backend)
		spikes, err := node.ForwardSeq(x)
		if err != nil {
			return err
		}

		rates := make([]string, *steps)
		total := 0
		data := spikes.Data()
		for t := 0; t < *steps; t++ {
			count := 0
			for _, s := range data[t**channels : (t+1)**channels] {
				if s != 0 {
					count++
				}
			}
			total += count
			rates[t] = fmt.Sprintf("%.3f", float64(count)/float64(*channels))
		}
		fmt.Printf("call %d: firing rate %.4f, per step [%s]\n",
			call, float64(total)/float64(*steps**channels), strings.Join(rates, " "))
	}

	if *save != "" {
		meta := map[string]string{"t": strconv.Itoa(*steps), "n": strconv.Itoa(*channels)}
		if err := serialization.SaveFile(*save, node.StateDict(), "IFNode", meta); err != nil {
			return err
		}
		log.Printf("state written to %s", *save)
	}
	return nil
}

func runGradcheck(args []string) error {
	fs := flag.NewFlagSet("gradcheck", flag.ExitOnError)
	steps := fs.Int("t", 6, "Number of timesteps")
	channels := fs.Int("n", 5, "Number of channels")
	seed := fs.Int64("seed", 1, "Random seed")
	tol := fs.Float64("tol", 1e-5, "Maximum allowed absolute error")
	sgFlag := fs.String("surrogate", "", `Surrogate to check, e.g. "atan:2" (default: all built-ins)`)
	if err := fs.Parse(args); err != nil {
		return err
	}

	sgs := surrogate.Builtin()
	if *sgFlag != "" {
		sg, err := surrogate.Parse(*sgFlag)
		if err != nil {
			return err
		}
		sgs = []surrogate.Function{sg}
	}

	variants := []neuron.Params{
		{VThreshold: 1, SoftReset: true, DetachReset: true},
		{VThreshold: 1, SoftReset: true},
		{VThreshold: 1, VReset: 0, DetachReset: true},
		{VThreshold: 1, VReset: 0},
	}

	failed := 0
	for _, sg := range sgs {
		for _, p := range variants {
			r, err := gradcheck.Run(gradcheck.RandomProblem(*steps, *channels, p, sg, *seed))
			if err != nil {
				return err
			}
			status := "ok"
			if r.MaxAbsErr > *tol {
				status = "FAIL"
				failed++
			}
			fmt.Printf("%-20s %-16s max|err| %.3e  %s\n", sg.Name(), p.BackwardMode(), r.MaxAbsErr, status)
		}
	}
	if failed > 0 {
		return fmt.Errorf("gradcheck: %d of %d checks above tolerance %g", failed, len(sgs)*len(variants), *tol)
	}
	return nil
}

func tune(args []string) error {
	fs := flag.NewFlagSet("tune", flag.ExitOnError)
	stepsList := fs.String("t", "4,16,64", "Comma-separated timestep counts")
	channelsList := fs.String("n", "1024,65536", "Comma-separated channel counts")
	reps := fs.Int("reps", 3, "Timed runs per candidate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	stepsGrid, err := parseInts(*stepsList)
	if err != nil {
		return err
	}
	channelsGrid, err := parseInts(*channelsList)
	if err != nil {
		return err
	}

	tcfg := autotune.DefaultTunerConfig()
	tcfg.Reps = *reps
	tcfg.Logf = log.Printf
	tuner := autotune.NewTuner(tcfg)

	bcfg := cpu.DefaultConfig()
	bcfg.BlockSize = tuner
	backend := cpu.NewWithConfig(bcfg)

	p := neuron.Params{VThreshold: 1, SoftReset: true}
	sg := surrogate.Sigmoid{}
	for _, steps := range stepsGrid {
		for _, channels := range channelsGrid {
			shape := tensor.Shape{steps, channels}
			x := tensor.Randn[float32](shape, 0.3, 0.2, 1, backend)
			v0 := tensor.Zeros[float32](tensor.Shape{channels}, backend)

			res, err := backend.MultiStepIF(x.Raw(), v0.Raw(), p, true)
			if err != nil {
				return err
			}
			ones := tensor.Full[float32](shape, 1, backend)
			if _, _, err := backend.MultiStepIFBackward(ones.Raw(), ones.Raw(), res.H, p, sg); err != nil {
				return err
			}
		}
	}
	fmt.Printf("tuned %d kernel configurations\n", tuner.Len())
	return nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("invalid size %q", part)
		}
		out = append(out, v)
	}
	return out, nil
}

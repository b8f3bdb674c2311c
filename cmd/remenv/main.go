package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/Daraan/remenv/core"
	"github.com/Daraan/remenv/encoding/json"
	"github.com/Daraan/remenv/env"
	"github.com/Daraan/remenv/util/errs"
	"github.com/spf13/cobra"
)

var (
	flagConfigFile  string
	flagPoolSize    int
	flagCycles      int
	flagRestart     bool
	flagInjectFault bool
)

func main() {
	root := &cobra.Command{
		Use:   "remenv",
		Short: "Drive a demo pool of random-walk environments",
		RunE:  runDemo,
	}
	root.Flags().StringVarP(&flagConfigFile, "config", "c", "", "config file (yaml)")
	root.Flags().IntVarP(&flagPoolSize, "pool-size", "n", 0, "number of workers, overrides config")
	root.Flags().IntVar(&flagCycles, "cycles", 10, "number of poll/send cycles")
	root.Flags().BoolVar(&flagRestart, "restart", false, "restart faulted workers")
	root.Flags().BoolVar(&flagInjectFault, "inject-fault", false, "worker 0 faults on its third step")

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}

func runDemo(cmd *cobra.Command, args []string) error {
	if flagConfigFile != "" {
		if err := core.LoadConfigFromFile(flagConfigFile); err != nil {
			return err
		}
	}
	core.ConfigureLogging()
	rail := core.NewRail()

	conf := env.ConfigFromProps()
	if flagPoolSize > 0 {
		conf.PoolSize = flagPoolSize
	}
	if flagRestart {
		conf.RestartOnFailure = true
	}
	conf.MakeEnv = func(idx int) (any, error) {
		return &randomWalkEnv{idx: idx, faulty: flagInjectFault && idx == 0}, nil
	}

	pool, err := env.NewPool(rail, conf)
	if err != nil {
		return err
	}
	defer pool.Stop()

	for cycle := 0; cycle < flagCycles; cycle++ {
		batch, err := pool.Poll()
		if err != nil {
			return err
		}

		s, _ := json.SWriteJson(map[string]any{
			"cycle":  cycle,
			"envs":   batch.EnvIDs(),
			"reward": batch.Reward,
			"done":   batch.Terminated,
		})
		fmt.Println(s)

		actions := map[env.EnvID]map[env.AgentID]any{}
		for _, envID := range batch.EnvIDs() {
			if batch.Terminated[envID][env.AllAgents] {
				pool.TryReset(envID, nil, nil)
				continue
			}
			step := -1.0
			if rand.IntN(2) == 0 {
				step = 1.0
			}
			actions[envID] = map[env.AgentID]any{env.DummyAgentID: step}
		}
		if len(actions) > 0 {
			if err := pool.SendActions(actions); err != nil {
				return err
			}
		}
	}
	return nil
}

// Toy single-agent env: position drifts by the action value, episodes end
// after a fixed number of steps.
type randomWalkEnv struct {
	idx    int
	pos    float64
	steps  int
	faulty bool
}

func (e *randomWalkEnv) Reset(seed *int64, options map[string]any) (any, any, error) {
	e.pos = 0
	e.steps = 0
	return e.pos, map[string]any{}, nil
}

func (e *randomWalkEnv) Step(action any) (any, float64, bool, bool, any, error) {
	e.steps++
	if e.faulty && e.steps == 3 {
		return nil, 0, false, false, nil, errs.NewErrf("injected fault on env %d", e.idx)
	}
	if f, ok := action.(float64); ok {
		e.pos += f
	}
	reward := -e.pos * e.pos
	terminated := e.steps >= 20
	return e.pos, reward, terminated, false, map[string]any{"steps": e.steps}, nil
}

func (e *randomWalkEnv) ObservationSpace() any {
	return "Box(-inf, inf, (1,))"
}

func (e *randomWalkEnv) ActionSpace() any {
	return "Box(-1, 1, (1,))"
}

func (e *randomWalkEnv) Close() error {
	time.Sleep(time.Millisecond)
	return nil
}

package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/cmd/see-federate/console"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/config"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/examples"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/federate"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/rti/loopback"
)

var interactive bool // Start the readline console

// runCmd runs the sample federate
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Join the federation and run the sample lander federate",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runFederate(ctx, cfg, os.Stderr, interactive)
	},
}

func init() {
	runCmd.Flags().BoolVarP(&interactive, "console", "i", false, "Start the interactive console")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// runFederate joins an in-process federation and drives the lander until
// the loop ends.
func runFederate(ctx context.Context, cfg *config.Config, logOut io.Writer, withConsole bool) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger, err := newLogger(cfg, logOut)
	if err != nil {
		return err
	}
	tr, err := newTracing(cfg, logOut)
	if err != nil {
		return fmt.Errorf("open trace: %w", err)
	}
	defer tr.Close()

	if addr := cfg.RTIAddress(); addr != "" || cfg.RTI.Discover {
		logger.Warn("no network runtime binding available, running standalone", "crc", addr)
	}

	fedExec := loopback.NewFederation(cfg.Federation, logger)
	fed, err := federate.New(fedExec.NewAmbassador(), cfg.FederateConfig(logger, tr.logger))
	if err != nil {
		return err
	}
	defer func() { _ = fed.Resign() }()

	if err := fed.Join(ctx); err != nil {
		return err
	}
	logger.Info("joined federation", "federation", cfg.Federation, "federate", fed.Name(), "session", fed.SessionID())

	lander, err := setupLander(ctx, fed, logger)
	if err != nil {
		return err
	}

	if withConsole {
		con, err := console.New(fed)
		if err != nil {
			return err
		}
		go con.Run(ctx, cancel)
	}

	dt := cfg.Time.Step.Seconds()
	err = fed.Run(ctx, func(ctx context.Context, cycle uint64, now rti.Time) error {
		lander.step(dt)
		if err := fed.Update(lander.body, nil); err != nil {
			return err
		}
		logger.Debug("cycle", "cycle", cycle, "time", now, "altitude", lander.altitude())
		return nil
	})
	logger.Info("federate stopped", "cycles", fed.Time().Cycles(), "time", fed.Time().FederateTime())
	return err
}

// lander is the sample entity published by the run command.
type lander struct {
	fed    *federate.Federate
	body   *examples.PhysicalEntity
	logger *slog.Logger
}

func setupLander(ctx context.Context, fed *federate.Federate, logger *slog.Logger) (*lander, error) {
	if _, err := fed.PublishObject(examples.PhysicalEntityClass); err != nil {
		return nil, err
	}
	if _, err := fed.SubscribeObject(examples.PhysicalEntityClass); err != nil {
		return nil, err
	}
	if _, err := fed.SubscribeInteraction(examples.ModeTransitionRequestClass); err != nil {
		return nil, err
	}

	l := &lander{
		fed:    fed,
		logger: logger,
		body: &examples.PhysicalEntity{
			Name:         fed.Name(),
			Type:         "Lander",
			Status:       "descending",
			ParentFrame:  "MoonCentricFixed",
			State:        examples.SpaceTimeCoordinateState{Position: examples.Vector3{Z: 1000}, Attitude: examples.IdentityQuaternion},
			Acceleration: examples.Vector3{Z: -1.62},
		},
	}
	if _, err := fed.Register(ctx, examples.PhysicalEntityClass, l.body, fed.Name()); err != nil {
		return nil, err
	}

	fed.OnReceived(l.handleRequest)
	return l, nil
}

// handleRequest applies mode transition requests directly when the
// federation runs without a master federate.
func (l *lander) handleRequest(class string, element any, _ []byte) {
	req, ok := element.(*examples.ModeTransitionRequest)
	if !ok {
		return
	}
	l.logger.Info("mode transition requested", "class", class, "mode", req.Mode)
	switch req.Mode {
	case examples.MTRGotoFreeze:
		l.fed.Suspend()
	case examples.MTRGotoRun:
		l.fed.Resume()
	case examples.MTRGotoShutdown:
		l.fed.Shutdown()
	}
}

func (l *lander) step(dt float64) {
	e, ok := l.fed.Registry().EntityOf(l.body)
	if !ok {
		return
	}
	e.Do(func(any) {
		l.body.Step(dt)
		if l.body.State.Position.Z <= 0 {
			l.body.State.Position.Z = 0
			l.body.State.Velocity = examples.Vector3{}
			l.body.Acceleration = examples.Vector3{}
			l.body.Status = "landed"
		}
	})
}

func (l *lander) altitude() float64 {
	var z float64
	if e, ok := l.fed.Registry().EntityOf(l.body); ok {
		e.Do(func(any) { z = l.body.State.Position.Z })
	}
	return z
}

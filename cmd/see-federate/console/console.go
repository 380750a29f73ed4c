// Package console provides the interactive command-line interface of
// see-federate.
package console

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/chzyer/readline"

	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/federate"
	"github.com/SMASH-Lab/SEE-HLA-Starter-Kit-sub000/pkg/instance"
)

// Console drives a running federate from a readline prompt.
type Console struct {
	fed *federate.Federate
	rl  *readline.Instance
	out io.Writer
}

// New creates a console for fed.
func New(fed *federate.Federate) (*Console, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          fed.Config().FederateName + "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Console{fed: fed, rl: rl, out: rl.Stdout()}, nil
}

// Stdout returns a writer that coordinates with the prompt. Use it for
// log output.
func (c *Console) Stdout() io.Writer {
	if c.rl == nil {
		return c.out
	}
	return c.rl.Stdout()
}

// Run reads commands until quit, EOF or ctx is done. Quitting calls cancel.
func (c *Console) Run(ctx context.Context, cancel context.CancelFunc) {
	defer c.rl.Close()

	c.printHelp()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		line, err := c.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			fmt.Fprintln(c.out, "Exiting...")
			cancel()
			return
		}

		if quit := c.Exec(line); quit {
			cancel()
			return
		}
	}
}

// Exec runs one command line and reports whether the console should exit.
func (c *Console) Exec(line string) bool {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) == 0 {
		return false
	}
	cmd := strings.ToLower(parts[0])

	switch cmd {
	case "help", "?":
		c.printHelp()

	case "status", "s":
		c.cmdStatus()

	case "time", "t":
		c.cmdTime()

	case "points", "p":
		c.cmdPoints()

	case "entities", "e":
		c.cmdEntities()

	case "suspend", "freeze":
		c.fed.Suspend()
		fmt.Fprintln(c.out, "Execution suspended")

	case "resume", "run":
		c.fed.Resume()
		fmt.Fprintln(c.out, "Execution resumed")

	case "shutdown":
		c.fed.Shutdown()
		fmt.Fprintln(c.out, "Shutdown requested")

	case "quit", "exit", "q":
		fmt.Fprintln(c.out, "Exiting...")
		return true

	default:
		fmt.Fprintf(c.out, "Unknown command: %s (type 'help' for commands)\n", cmd)
	}
	return false
}

func (c *Console) printHelp() {
	fmt.Fprintln(c.out, `
Federate Commands:
  Inspection:
    status             - Show federate and execution state
    time               - Show logical time state
    points             - List synchronization points
    entities           - List local and remote object instances

  Execution:
    suspend            - Suspend the execution loop
    resume             - Resume a suspended loop
    shutdown           - Stop after the current cycle and resign

  Other:
    help               - Show this help
    quit               - Exit`)
}

func (c *Console) cmdStatus() {
	fmt.Fprintf(c.out, "Federate:   %s (handle %d)\n", c.fed.Name(), c.fed.Handle())
	fmt.Fprintf(c.out, "Federation: %s\n", c.fed.Config().FederationName)
	fmt.Fprintf(c.out, "State:      %s\n", c.fed.State())
	if loop := c.fed.Loop(); loop != nil {
		fmt.Fprintf(c.out, "Execution:  %s\n", loop.State())
	}
	fmt.Fprintf(c.out, "Cycles:     %d\n", c.fed.Time().Cycles())
	fmt.Fprintf(c.out, "Entities:   %d\n", c.fed.Registry().Len())
	fmt.Fprintf(c.out, "Session:    %s\n", c.fed.SessionID())
}

func (c *Console) cmdTime() {
	s := c.fed.Time().Snapshot()
	fmt.Fprintf(c.out, "Federate time:   %s\n", s.FederateTime)
	fmt.Fprintf(c.out, "Federation time: %s\n", s.FederationTime)
	fmt.Fprintf(c.out, "Lookahead:       %s\n", s.Lookahead)
	fmt.Fprintf(c.out, "Regulating:      %t\n", s.Regulating)
	fmt.Fprintf(c.out, "Constrained:     %t\n", s.Constrained)
	if s.Advancing {
		fmt.Fprintf(c.out, "Advancing to:    %s\n", s.Requested)
	}
}

func (c *Console) cmdPoints() {
	points := c.fed.SyncPoints()
	labels := points.Labels()
	if len(labels) == 0 {
		fmt.Fprintln(c.out, "No synchronization points")
		return
	}
	slices.Sort(labels)
	for _, label := range labels {
		p := points.Point(label)
		var flags []string
		if p.IsAnnounced() {
			flags = append(flags, "announced")
		}
		if p.IsRegistered() {
			flags = append(flags, "registered")
		}
		if p.IsRegistrationFailed() {
			flags = append(flags, "failed: "+p.FailureReason())
		}
		if p.IsAchieved() {
			flags = append(flags, "achieved")
		}
		if p.IsSynchronized() {
			flags = append(flags, "synchronized")
		}
		fmt.Fprintf(c.out, "  %-28s %s\n", label, strings.Join(flags, ", "))
	}
}

func (c *Console) cmdEntities() {
	reg := c.fed.Registry()
	c.printEntities("Local", reg.Locals())
	c.printEntities("Remote", reg.Remotes())
}

func (c *Console) printEntities(title string, entities []*instance.Entity) {
	fmt.Fprintf(c.out, "%s (%d):\n", title, len(entities))
	slices.SortFunc(entities, func(a, b *instance.Entity) int {
		return strings.Compare(a.Name(), b.Name())
	})
	for _, e := range entities {
		fmt.Fprintf(c.out, "  %-24s %-40s %s\n", e.Name(), e.Class().Name(), e.Maturity())
	}
}

package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/pkg/errors"

	"github.com/tantralabs/sena"
	"github.com/tantralabs/sena/interfaces"
	"github.com/tantralabs/sena/models"
	"github.com/tantralabs/sena/notify"
	"github.com/tantralabs/sena/utils"
)

const defaultHistory = 10

const helpText = `Commands:
  agents                          list agents with status
  start <name>                    activate an agent
  stop <name>                     deactivate an agent
  execute <name>                  run an agent once on the next tick
  metrics [name]                  performance of one or all agents
  status                          system overview
  startall | stopall              activate or deactivate every agent
  executeall                      run every agent once
  history <name> [n]              last n trades of an agent
  override <name> [key value]     show or set runtime overrides
  notify on|off [type...]         stream trade and lifecycle events
  help                            this message
  quit                            leave the shell`

// Shell turns command lines into orchestrator calls. Every line is checked
// against the rate limiter for the caller's identity first.
type Shell struct {
	orch    *sena.Orchestrator
	limiter interfaces.RateLimiter
	hub     *notify.Hub

	mu  sync.Mutex
	out io.Writer
}

func NewShell(orch *sena.Orchestrator, limiter interfaces.RateLimiter, hub *notify.Hub, out io.Writer) *Shell {
	return &Shell{orch: orch, limiter: limiter, hub: hub, out: out}
}

// Deliver writes an event to the shell output. It makes Shell a notify.Sink.
func (s *Shell) Deliver(_ string, e models.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := fmt.Fprintf(s.out, "[%s] %s: %s\n", e.Type, e.Agent, e.Message)
	return err
}

// Handle runs one command line for identity and returns the reply text.
func (s *Shell) Handle(ctx context.Context, identity, line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	if s.limiter != nil && !s.limiter.Allow(identity) {
		return "Rate limit exceeded. Please wait before sending more commands."
	}

	cmd, args := strings.ToLower(strings.TrimPrefix(fields[0], "/")), fields[1:]
	switch cmd {
	case "help":
		return helpText
	case "agents", "bots":
		return renderAgents(s.orch.StatusAll())
	case "status":
		return renderSystem(s.orch.SystemStatus())
	case "start", "start_bot":
		return s.withName(args, "start", func(name string) (string, error) {
			if err := s.orch.Start(name); err != nil {
				return "", err
			}
			st, err := s.orch.Status(name)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s started (%s)", name, st.Strategy), nil
		})
	case "stop", "stop_bot":
		return s.withName(args, "stop", func(name string) (string, error) {
			if err := s.orch.Stop(name); err != nil {
				return "", err
			}
			return name + " stopped", nil
		})
	case "execute":
		return s.withName(args, "execute", func(name string) (string, error) {
			d, err := s.orch.Execute(ctx, name)
			if err != nil {
				return "", err
			}
			return renderDecision(name, d), nil
		})
	case "metrics":
		if len(args) == 0 {
			return renderAllMetrics(s.orch.List(), s.orch.MetricsAll())
		}
		return s.withName(args, "metrics", func(name string) (string, error) {
			m, err := s.orch.Metrics(name)
			if err != nil {
				return "", err
			}
			return renderMetrics(name, m), nil
		})
	case "history":
		return s.withName(args, "history", func(name string) (string, error) {
			limit := defaultHistory
			if len(args) > 1 {
				n, err := strconv.Atoi(args[1])
				if err != nil || n < 1 {
					return "", errors.Errorf("invalid count %q", args[1])
				}
				limit = n
			}
			entries, err := s.orch.Ledger(name)
			if err != nil {
				return "", err
			}
			return renderHistory(name, entries, limit), nil
		})
	case "startall":
		return renderBatch("Start all", s.orch.StartAll())
	case "stopall":
		return renderBatch("Stop all", s.orch.StopAll())
	case "executeall":
		return renderBatch("Execute all", s.orch.ExecuteAll(ctx))
	case "override":
		return s.withName(args, "override", func(name string) (string, error) {
			switch len(args) {
			case 1:
			case 3:
				if err := s.orch.Override(name, args[1], args[2]); err != nil {
					return "", err
				}
			default:
				return "", errors.New("usage: override <name> [key value]")
			}
			values, err := s.orch.Overrides(name)
			if err != nil {
				return "", err
			}
			return renderOverrides(name, values), nil
		})
	case "notify":
		return s.notify(identity, args)
	default:
		return fmt.Sprintf("Unknown command %q. Type help for the command list.", fields[0])
	}
}

func (s *Shell) withName(args []string, cmd string, fn func(name string) (string, error)) string {
	if len(args) == 0 {
		return fmt.Sprintf("Please specify an agent name: %s <name>", cmd)
	}
	out, err := fn(args[0])
	if err != nil {
		return describe(err)
	}
	return out
}

func (s *Shell) notify(identity string, args []string) string {
	if s.hub == nil {
		return "Notifications are not available"
	}
	if len(args) == 0 {
		return notifyUsage
	}
	known := []string{string(models.EventAll)}
	for _, t := range models.EventTypes {
		known = append(known, string(t))
	}
	var types []models.EventType
	for _, arg := range args[1:] {
		if !utils.StringInSlice(arg, known) {
			return fmt.Sprintf("Unknown event type %q. Types: %s", arg, strings.Join(known, ", "))
		}
		types = append(types, models.EventType(arg))
	}
	scope := ""
	if len(types) > 0 {
		scope = " for " + strings.Join(args[1:], ", ")
	}

	switch strings.ToLower(args[0]) {
	case "on":
		s.hub.Subscribe(identity, s, types...)
		return "Notifications enabled" + scope
	case "off":
		s.hub.Unsubscribe(identity, types...)
		return "Notifications disabled" + scope
	default:
		return notifyUsage
	}
}

const notifyUsage = "usage: notify on|off [event type...]"

// describe renders err for a user, separating unknown agents from failed
// executions.
func describe(err error) string {
	switch {
	case errors.Is(err, sena.ErrAgentNotFound):
		return "Not found: " + err.Error()
	case errors.Is(err, sena.ErrExecutionFailed):
		return "Execution failed: " + err.Error()
	default:
		return "Error: " + err.Error()
	}
}

// Run reads commands from in until EOF, quit or ctx is done.
func (s *Shell) Run(ctx context.Context, identity string, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	s.print("sena shell, type help for commands\n> ")
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "quit" || line == "exit" {
			return nil
		}
		if reply := s.Handle(ctx, identity, line); reply != "" {
			s.print(reply + "\n")
		}
		s.print("> ")
	}
	return scanner.Err()
}

func (s *Shell) print(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	io.WriteString(s.out, text)
}

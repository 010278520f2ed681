// Package cli wires the kong command tree: the interactive console plus
// one-shot commands for scripting against the backend.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"go.uber.org/zap"

	"github.com/NivaraGame/adaptive-lms-sub001/internal/api"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/clipboard"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/console"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/highlight"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/history"
	"github.com/NivaraGame/adaptive-lms-sub001/internal/query"
)

// Globals are flags shared by every command.
type Globals struct {
	BaseURL string        `help:"Backend base URL." env:"LMSPROBE_BASE_URL" default:"http://localhost:8000"`
	Timeout time.Duration `help:"Request timeout." env:"LMSPROBE_TIMEOUT" default:"15s"`
	NoColor bool          `help:"Disable ANSI colors in output." env:"LMSPROBE_NO_COLOR"`
}

// CLI is the full command tree.
type CLI struct {
	Globals

	Console   ConsoleCmd   `cmd:"" default:"1" help:"Launch the interactive API console."`
	Call      CallCmd      `cmd:"" help:"Invoke one endpoint and print the JSON response."`
	Endpoints EndpointsCmd `cmd:"" help:"List the endpoint catalog."`
	Check     CheckCmd     `cmd:"" help:"Probe backend reachability."`
}

// Context carries runtime dependencies into command Run methods.
type Context struct {
	Globals
	Out io.Writer
	Log *zap.Logger
}

func (c *Context) client() *api.Client {
	return api.NewClient(c.BaseURL, c.Timeout, c.Log)
}

func (c *Context) useColor() bool {
	if c.NoColor {
		return false
	}
	f, ok := c.Out.(*os.File)
	return ok && isatty.IsTerminal(f.Fd())
}

// ConsoleCmd runs the TUI.
type ConsoleCmd struct{}

func (cmd *ConsoleCmd) Run(ctx *Context) error {
	hist, err := history.NewStore(historyPath())
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	model := console.NewModel(
		ctx.client(),
		query.NewService(),
		hist,
		clipboard.NewService(),
		console.Config{Telemetry: envEnabled("LMSPROBE_TELEMETRY")},
	)

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return err
	}

	if m, ok := final.(console.Model); ok {
		if summary, ok := m.TelemetrySummary(); ok {
			fmt.Fprintln(os.Stderr, summary)
		}
	}
	return nil
}

// CallCmd invokes a single endpoint.
type CallCmd struct {
	Endpoint string   `arg:"" help:"Endpoint name, e.g. users.get (see 'lmsprobe endpoints')."`
	Param    []string `short:"p" help:"Parameter as name=value; repeatable."`
	Filter   string   `short:"f" help:"jq filter applied to the response before printing."`
}

func (cmd *CallCmd) Run(ctx *Context) error {
	ep, ok := api.Lookup(cmd.Endpoint)
	if !ok {
		return fmt.Errorf("unknown endpoint %q (see 'lmsprobe endpoints')", cmd.Endpoint)
	}

	params, err := parseParams(cmd.Param)
	if err != nil {
		return err
	}

	res, err := ctx.client().Invoke(context.Background(), ep, params)
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			// Backend errors still print their JSON payload; the
			// process exit code signals the failure.
			if printErr := printJSON(ctx, apiErr.Body); printErr == nil {
				return err
			}
		}
		return err
	}

	if len(res.Body) == 0 {
		fmt.Fprintf(ctx.Out, "%d (no content)\n", res.Status)
		return nil
	}

	if cmd.Filter != "" {
		out, err := query.NewService().Apply(context.Background(), cmd.Filter, res.Value)
		if err != nil {
			return fmt.Errorf("filter: %w", err)
		}
		return printJSON(ctx, []byte(out))
	}

	return printJSON(ctx, res.Body)
}

// printJSON pretty-prints a JSON document, highlighted when writing to a
// terminal. Non-JSON bodies are printed verbatim.
func printJSON(ctx *Context, data []byte) error {
	lines, err := highlight.HighlightBytes(data)
	if err != nil {
		fmt.Fprintln(ctx.Out, strings.TrimRight(string(data), "\n"))
		return err
	}

	if ctx.useColor() {
		fmt.Fprintln(ctx.Out, highlight.Render(lines, highlight.DefaultPalette))
	} else {
		fmt.Fprintln(ctx.Out, highlight.Text(lines))
	}
	return nil
}

func parseParams(pairs []string) (map[string]string, error) {
	params := map[string]string{}
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected name=value", pair)
		}
		params[name] = value
	}
	return params, nil
}

// EndpointsCmd prints the catalog.
type EndpointsCmd struct {
	Group string `short:"g" help:"Only show one endpoint group."`
}

func (cmd *EndpointsCmd) Run(ctx *Context) error {
	for _, group := range api.Groups() {
		if cmd.Group != "" && group != cmd.Group {
			continue
		}
		fmt.Fprintln(ctx.Out, group)
		for _, ep := range api.Catalog() {
			if ep.Group != group {
				continue
			}
			fmt.Fprintf(ctx.Out, "  %-7s %-28s %s %s\n", ep.Method, ep.Name, ep.Path, paramSummary(ep))
		}
	}
	return nil
}

func paramSummary(ep api.Endpoint) string {
	if len(ep.Params) == 0 {
		return ""
	}
	names := make([]string, 0, len(ep.Params))
	for _, p := range ep.Params {
		name := p.Name
		if p.Required {
			name += "*"
		}
		names = append(names, name)
	}
	return "(" + strings.Join(names, ", ") + ")"
}

// CheckCmd probes the backend.
type CheckCmd struct{}

func (cmd *CheckCmd) Run(ctx *Context) error {
	results := ctx.client().Check(context.Background())

	failed := 0
	for _, pr := range results {
		if pr.Err != nil {
			failed++
			fmt.Fprintf(ctx.Out, "%-16s FAIL  %v\n", pr.Endpoint, pr.Err)
			continue
		}
		fmt.Fprintf(ctx.Out, "%-16s OK    %d in %s\n", pr.Endpoint, pr.Status, pr.Latency.Round(time.Millisecond))
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d probes failed", failed, len(results))
	}
	return nil
}

func historyPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = os.Getenv("HOME")
	}
	return filepath.Join(configDir, "lmsprobe", "history.json")
}

func envEnabled(name string) bool {
	switch strings.ToLower(os.Getenv(name)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/zenmover/internal/config"
	"github.com/1broseidon/zenmover/internal/ipc"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "monitors":
		os.Exit(runMonitors(os.Args[2:]))
	case "block":
		os.Exit(runSetBlocked("block", true, os.Args[2:]))
	case "unblock":
		os.Exit(runSetBlocked("unblock", false, os.Args[2:]))
	case "center":
		os.Exit(runCenter(os.Args[2:]))
	case "lookup":
		os.Exit(runLookup(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: zenmover <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the zenmover daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  monitors            List connected displays")
	fmt.Fprintln(w, "  block               Ignore drag and maximize requests")
	fmt.Fprintln(w, "  unblock             Resume handling drag and maximize requests")
	fmt.Fprintln(w, "  center              Center the target window on the primary display")
	fmt.Fprintln(w, "  lookup <domain>     Show the drag handle classes for a site")
	fmt.Fprintln(w, "  reload              Ask the daemon to reload its configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'zenmover <command> --help' for command-specific options.")
}

// parseNoArgs parses a flag set for commands that take no positional
// arguments. ok is false when the caller should return code.
func parseNoArgs(name, usage string, args []string) (code int, ok bool) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: zenmover %s\n\n%s\n", name, usage)
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0, false
		}
		return 2, false
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", name)
		fs.Usage()
		return 2, false
	}
	return 0, true
}

func runStatus(args []string) int {
	if code, ok := parseNoArgs("status", "Show daemon status via IPC.", args); !ok {
		return code
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetBorder(false)
	table.SetColumnSeparator("  ")
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)

	table.Append([]string{"daemon_running", strconv.FormatBool(status.DaemonRunning)})
	table.Append([]string{"backend", status.Backend})
	table.Append([]string{"listen", status.Listen})
	table.Append([]string{"target_class", status.TargetClass})
	table.Append([]string{"target_found", strconv.FormatBool(status.TargetFound)})
	if status.Placement != "" {
		table.Append([]string{"placement", status.Placement})
	}
	table.Append([]string{"blocked", strconv.FormatBool(status.Blocked)})
	table.Append([]string{"connections", strconv.Itoa(status.Connections)})
	table.Append([]string{"uptime_seconds", strconv.FormatInt(status.UptimeSeconds, 10)})
	if status.LastStatus != "" {
		table.Append([]string{"last_status", fmt.Sprintf("%s (%s)", status.LastStatus, status.LastStatusTime.Format(time.TimeOnly))})
	}
	table.Render()
	return 0
}

func runMonitors(args []string) int {
	if code, ok := parseNoArgs("monitors", "List displays known to the daemon.", args); !ok {
		return code
	}

	client := ipc.NewClient()
	data, err := client.GetMonitors()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Position", "Size", "Primary"})
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetColumnSeparator("  ")
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	for _, m := range data.Monitors {
		primary := ""
		if m.Primary {
			primary = "*"
		}
		table.Append([]string{
			strconv.Itoa(m.ID),
			m.Name,
			fmt.Sprintf("%d,%d", m.X, m.Y),
			fmt.Sprintf("%dx%d", m.Width, m.Height),
			primary,
		})
	}
	table.Render()
	return 0
}

func runSetBlocked(name string, blocked bool, args []string) int {
	usage := "Resume handling drag and maximize requests."
	if blocked {
		usage = "Ignore drag and maximize requests until unblocked."
	}
	if code, ok := parseNoArgs(name, usage, args); !ok {
		return code
	}

	client := ipc.NewClient()
	data, err := client.SetBlocked(blocked)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("blocked: %v\n", data.Blocked)
	return 0
}

func runCenter(args []string) int {
	if code, ok := parseNoArgs("center", "Center the target window on the primary display.", args); !ok {
		return code
	}

	client := ipc.NewClient()
	if err := client.CenterWindow(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runReload(args []string) int {
	if code, ok := parseNoArgs("reload", "Ask the running daemon to reload its configuration.", args); !ok {
		return code
	}

	client := ipc.NewClient()
	if err := client.Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("config reloaded")
	return 0
}

func runLookup(args []string) int {
	fs := flag.NewFlagSet("lookup", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: zenmover lookup <domain>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the drag handle classes the daemon serves for a site.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	data, err := client.Lookup(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if len(data.Classes) == 0 {
		fmt.Fprintf(os.Stderr, "no movable elements configured for %s\n", data.Domain)
		return 1
	}
	for _, class := range data.Classes {
		fmt.Println(class)
	}
	return 0
}

func loadConfigResult(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  zenmover config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  zenmover config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  zenmover config explain [--path PATH] <yaml.path>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/zenmover/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		if _, err := loadConfigResult(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/zenmover/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfigResult(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/zenmover/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfigResult(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", src)
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

// Package cli provides the command-line interface with injectable io.Writer for testing.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/mcdonaldj/enginesetup/internal/adapters/execgit"
	"github.com/mcdonaldj/enginesetup/internal/adapters/execrunner"
	"github.com/mcdonaldj/enginesetup/internal/adapters/osfs"
	"github.com/mcdonaldj/enginesetup/internal/config"
	"github.com/mcdonaldj/enginesetup/internal/observability"
	"github.com/mcdonaldj/enginesetup/internal/ports"
	"github.com/rs/zerolog"
)

// ConfigService provides configuration operations for the CLI.
type ConfigService interface {
	Load(path string) (*config.Config, error)
	Save(cfg *config.Config, path string) error
	DefaultConfig() *config.Config
}

// CLI represents the command-line interface with injectable dependencies.
type CLI struct {
	Out     io.Writer // Standard output
	Err     io.Writer // Standard error
	Version string    // Application version
	Args    []string  // Command arguments (like os.Args)

	// Exit function for testability (defaults to os.Exit)
	Exit func(code int)

	// Getwd supplies the default project root (defaults to os.Getwd)
	Getwd func() (string, error)

	// Context, when set, replaces the signal-cancelled default
	Context context.Context

	// Injectable dependencies (nil means use defaults)
	ConfigSvc ConfigService
	FS        ports.FileSystem
	Git       ports.GitClient
	Commands  ports.CommandRunner

	// Color functions (can be disabled for testing)
	green  func(a ...interface{}) string
	yellow func(a ...interface{}) string
	cyan   func(a ...interface{}) string
	gray   func(a ...interface{}) string
	red    func(a ...interface{}) string
}

// New creates a new CLI with default settings.
func New(version string) *CLI {
	return &CLI{
		Out:     os.Stdout,
		Err:     os.Stderr,
		Version: version,
		Args:    os.Args,
		Exit:    os.Exit,
		Getwd:   os.Getwd,
		green:   color.New(color.FgGreen, color.Bold).SprintFunc(),
		yellow:  color.New(color.FgYellow).SprintFunc(),
		cyan:    color.New(color.FgCyan).SprintFunc(),
		gray:    color.New(color.FgHiBlack).SprintFunc(),
		red:     color.New(color.FgRed).SprintFunc(),
	}
}

// NewForTesting creates a CLI configured for testing (no colors, captured output).
func NewForTesting(out, errOut io.Writer, args []string) *CLI {
	noColor := func(a ...interface{}) string { return fmt.Sprint(a...) }
	return &CLI{
		Out:     out,
		Err:     errOut,
		Version: "test",
		Args:    args,
		Exit:    func(code int) {},
		Getwd:   func() (string, error) { return "/proj", nil },
		green:   noColor,
		yellow:  noColor,
		cyan:    noColor,
		gray:    noColor,
		red:     noColor,
	}
}

// defaultConfigService wraps the config package functions.
type defaultConfigService struct{}

func (d *defaultConfigService) Load(path string) (*config.Config, error) { return config.Load(path) }
func (d *defaultConfigService) Save(cfg *config.Config, path string) error {
	return cfg.Save(path)
}
func (d *defaultConfigService) DefaultConfig() *config.Config { return config.DefaultConfig() }

// Helper methods to get the service or default
func (c *CLI) configSvc() ConfigService {
	if c.ConfigSvc != nil {
		return c.ConfigSvc
	}
	return &defaultConfigService{}
}

func (c *CLI) fs() ports.FileSystem {
	if c.FS != nil {
		return c.FS
	}
	return osfs.New()
}

func (c *CLI) commands(log zerolog.Logger) ports.CommandRunner {
	if c.Commands != nil {
		return c.Commands
	}
	return execrunner.New(execrunner.WithLogger(log))
}

func (c *CLI) git(runner ports.CommandRunner) ports.GitClient {
	if c.Git != nil {
		return c.Git
	}
	return execgit.New(execgit.WithRunner(runner), execgit.WithFileSystem(c.fs()))
}

// context returns the run context. Without an injected one it is cancelled
// on SIGINT or SIGTERM, which kills the running child process.
func (c *CLI) context() (context.Context, context.CancelFunc) {
	if c.Context != nil {
		return context.WithCancel(c.Context)
	}
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func (c *CLI) logger(verbose bool) zerolog.Logger {
	return observability.InitLogger("enginesetup", c.Err, verbose)
}

// Run executes the CLI with the configured arguments.
func (c *CLI) Run() {
	cmd, args := "setup", []string{}
	if len(c.Args) >= 2 {
		cmd, args = c.Args[1], c.Args[2:]
		// Bare flags run the primary setup.
		if len(cmd) > 0 && cmd[0] == '-' && !isHelpOrVersion(cmd) {
			cmd, args = "setup", c.Args[1:]
		}
	}

	switch cmd {
	case "setup":
		c.RunSetup(args)
	case "tools":
		c.RunTools(args)
	case "status":
		c.ShowStatus(args)
	case "libs":
		c.ListLibs(args)
	case "init":
		c.InitConfig(args)
	case "version", "--version":
		fmt.Fprintf(c.Out, "enginesetup v%s\n", c.Version)
	case "help", "-h", "--help":
		c.PrintUsage()
	default:
		fmt.Fprintf(c.Err, "Unknown command: %s\n", cmd)
		c.PrintUsage()
		c.Exit(1)
	}
}

func isHelpOrVersion(arg string) bool {
	switch arg {
	case "-h", "--help", "--version":
		return true
	}
	return false
}

// PrintUsage prints the help message.
func (c *CLI) PrintUsage() {
	fmt.Fprintln(c.Out, `enginesetup - Engine Dependency Bootstrap

Usage:
  enginesetup [flags]                      Same as 'enginesetup setup'
  enginesetup setup [flags]                Fetch the bootstrap tool and run it (output not checked)
  enginesetup tools [flags]                Fetch and run the bootstrap tool, then the post-step build
  enginesetup status [flags]               Show bootstrap tool, pin and manifest status
  enginesetup libs [flags]                 List libraries declared in the manifest
  enginesetup init [flags] [--force]       Write a default config file
  enginesetup version                      Show version
  enginesetup help, -h                     Show this help

Flags:
  --config <path>                          Config file (default <root>/enginesetup.yaml, .toml also accepted)
  --root <dir>                             Project root (default current directory)
  --mode <fire-and-forget|observed>        Override how the bootstrap tool is run
  --pin-policy <warn|abort|ignore>         What a failed branch pin does (default warn)
  --no-post-step                           Skip the post-step build in 'tools'
  -v, --verbose                            Log every command to stderr`)
}

// fail prints err to stderr and exits 1.
func (c *CLI) fail(prefix string, err error) {
	fmt.Fprintf(c.Err, "%s: %v\n", prefix, err)
	c.Exit(1)
}

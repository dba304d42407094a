package cli

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/mcdonaldj/enginesetup/internal/config"
	"github.com/mcdonaldj/enginesetup/internal/manifest"
	"github.com/mcdonaldj/enginesetup/internal/setup"
)

// preset is the mode and post-step choice a command implies.
type preset struct {
	mode     setup.Mode
	postStep bool
}

var (
	setupPreset = preset{mode: setup.FireAndForget}
	toolsPreset = preset{mode: setup.Observed, postStep: true}
)

// RunSetup runs the primary setup: acquire the tool, run it without checking its result.
func (c *CLI) RunSetup(args []string) {
	c.runSetup("setup", setupPreset, args)
}

// RunTools runs the tooling setup: acquire, run the tool observed, then the post-step.
func (c *CLI) RunTools(args []string) {
	c.runSetup("tools", toolsPreset, args)
}

func (c *CLI) runSetup(name string, p preset, args []string) {
	opts, err := parseFlags(args)
	if err != nil {
		c.fail("Error", err)
		return
	}
	cfg, _, err := c.loadConfig(opts)
	if err != nil {
		c.fail("Error", err)
		return
	}

	// --mode beats the config file, which beats the command's preset.
	mode := p.mode
	if cfg.Mode != "" {
		mode, err = setup.ParseMode(cfg.Mode)
		if err != nil {
			c.fail("Error", err)
			return
		}
	}

	log := c.logger(opts.verbose)
	runner := c.commands(log)
	orch, err := setup.New(cfg, setup.Deps{
		FS:       c.fs(),
		Git:      c.git(runner),
		Commands: runner,
		Out:      c.Out,
		Log:      log,
	})
	if err != nil {
		c.fail("Error", err)
		return
	}
	orch.Hooks = c.hooks(orch)

	runPost := p.postStep && !opts.noPostStep && orch.PostStep != nil

	ctx, cancel := c.context()
	defer cancel()

	fmt.Fprintf(c.Out, "%s %s (%s) in %s\n", c.cyan("=>"), name, mode, orch.Layout().Root)
	rep, err := orch.Run(ctx, setup.Options{Mode: mode, PostStep: runPost})
	if err != nil {
		fmt.Fprintf(c.Out, "  %s stopped at %s\n", c.red("x"), rep.Final())
		c.fail(stepName(err)+" failed", err)
		return
	}

	if rep.Bootstrap != nil && rep.Bootstrap.Err != nil {
		fmt.Fprintf(c.Out, "  %s bootstrap exited %d (not checked in %s mode)\n",
			c.yellow("!"), rep.Bootstrap.ExitCode, mode)
	}
	fmt.Fprintln(c.Out, c.green("Done."))
}

// hooks renders phase messages as the run advances.
func (c *CLI) hooks(orch *setup.Orchestrator) setup.Hooks {
	layout := orch.Layout()
	acq := orch.Acquirer

	return setup.Hooks{
		OnTransition: func(from, to setup.State) {
			switch to {
			case setup.StateToolPresent:
				fmt.Fprintf(c.Out, "  %s bootstrap tool present %s\n", c.green("*"), c.gray(layout.ToolDir))
			case setup.StateToolAcquiring:
				fmt.Fprintf(c.Out, "%s Fetching %s\n", c.cyan("=>"), acq.Coordinate)
			case setup.StateToolAcquired:
				fmt.Fprintf(c.Out, "  %s bootstrap tool ready\n", c.green("*"))
			case setup.StateBootstrapRun:
				fmt.Fprintf(c.Out, "%s Running bootstrap %s\n", c.cyan("=>"), c.gray(orch.Runner.Invocation().String()))
			case setup.StateBootstrapDone:
				fmt.Fprintf(c.Out, "  %s bootstrap finished\n", c.green("*"))
			case setup.StatePostStepRun:
				fmt.Fprintf(c.Out, "%s Running post-step %s\n", c.cyan("=>"), c.gray(orch.PostStep.Invocation().String()))
			case setup.StatePostStepDone:
				fmt.Fprintf(c.Out, "  %s post-step finished\n", c.green("*"))
			}
		},
		OnCloned: func(dest string) {
			fmt.Fprintf(c.Out, "  %s cloned into %s\n", c.green("*"), dest)
		},
		OnPinWarning: func(w *setup.PinWarning) {
			fmt.Fprintf(c.Out, "  %s could not pin %s at %s (exit %d), continuing\n",
				c.yellow("!"), w.Branch, w.Revision, w.ExitCode)
		},
	}
}

// stepName labels a fatal run error for the user.
func stepName(err error) string {
	var (
		acqErr  *setup.AcquireError
		bootErr *setup.BootstrapError
		postErr *setup.PostStepError
	)
	switch {
	case errors.As(err, &acqErr):
		return "Acquire"
	case errors.As(err, &bootErr):
		return "Bootstrap"
	case errors.As(err, &postErr):
		return "Post-step"
	}
	return "Setup"
}

// loadConfig resolves the config path, loads it and applies flag overrides.
func (c *CLI) loadConfig(opts options) (*config.Config, string, error) {
	root, err := c.rootDir(opts)
	if err != nil {
		return nil, "", err
	}
	path := c.configPath(opts, root)

	cfg, err := c.configSvc().Load(path)
	if err != nil {
		return nil, path, fmt.Errorf("loading config: %w", err)
	}
	// --root wins; otherwise a config without a root uses the working directory.
	if opts.root != "" || cfg.Root == "" {
		cfg.Root = root
	}
	if opts.mode != "" {
		cfg.Mode = opts.mode
	}
	if opts.pinPolicy != "" {
		cfg.PinPolicy = opts.pinPolicy
	}
	return cfg, path, nil
}

func (c *CLI) rootDir(opts options) (string, error) {
	if opts.root != "" {
		return config.ExpandPath(opts.root), nil
	}
	if c.Getwd == nil {
		return ".", nil
	}
	return c.Getwd()
}

func (c *CLI) configPath(opts options, root string) string {
	if opts.configPath != "" {
		return config.ExpandPath(opts.configPath)
	}
	return config.DefaultPath(root)
}

// ShowStatus shows the bootstrap tool, pin and manifest status.
func (c *CLI) ShowStatus(args []string) {
	opts, err := parseFlags(args)
	if err != nil {
		c.fail("Error", err)
		return
	}
	cfg, path, err := c.loadConfig(opts)
	if err != nil {
		c.fail("Error", err)
		return
	}
	layout, err := setup.NewLayout(cfg)
	if err != nil {
		c.fail("Error", err)
		return
	}

	fs := c.fs()
	git := c.git(c.commands(c.logger(opts.verbose)))

	fmt.Fprintln(c.Out, "enginesetup status:")
	fmt.Fprintf(c.Out, "  Root:      %s\n", layout.Root)
	if _, err := fs.Stat(path); err == nil {
		fmt.Fprintf(c.Out, "  Config:    %s\n", path)
	} else {
		fmt.Fprintf(c.Out, "  Config:    %s\n", c.gray("(defaults)"))
	}
	fmt.Fprintf(c.Out, "  Pin:       %s@%s as %s\n", cfg.Bootstrap.Repository, cfg.Bootstrap.Revision, cfg.Bootstrap.Branch)

	present, err := setup.ToolPresent(fs, layout.ToolDir)
	switch {
	case err != nil:
		fmt.Fprintf(c.Out, "  Tool:      %s\n", c.red(err.Error()))
	case !present:
		fmt.Fprintf(c.Out, "  Tool:      %s\n", c.gray("not fetched"))
	default:
		fmt.Fprintf(c.Out, "  Tool:      %s\n", c.green(layout.ToolDir))
		fmt.Fprintf(c.Out, "  Branch:    %s\n", c.branchStatus(git.IsRepo(layout.ToolDir), git.ResolveRef(layout.ToolDir, cfg.Bootstrap.Branch), cfg))
	}

	m, err := manifest.Load(fs, layout.ManifestPath)
	switch {
	case errors.Is(err, manifest.ErrManifestNotFound):
		fmt.Fprintf(c.Out, "  Manifest:  %s\n", c.gray("not found"))
	case err != nil:
		fmt.Fprintf(c.Out, "  Manifest:  %s\n", c.red(err.Error()))
	default:
		fmt.Fprintf(c.Out, "  Manifest:  %d libraries %s\n", len(m.Libraries), c.gray(formatCounts(m.CountByType())))
	}
}

// formatCounts renders per-type counts as "(1 archive, 2 git)", sorted by type.
func formatCounts(counts map[string]int) string {
	if len(counts) == 0 {
		return ""
	}
	types := make([]string, 0, len(counts))
	for t := range counts {
		types = append(types, t)
	}
	sort.Strings(types)
	parts := make([]string, len(types))
	for i, t := range types {
		parts[i] = fmt.Sprintf("%d %s", counts[t], t)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (c *CLI) branchStatus(isRepo bool, hash string, cfg *config.Config) string {
	branch, rev := cfg.Bootstrap.Branch, cfg.Bootstrap.Revision
	switch {
	case !isRepo:
		return c.yellow("not a git repository")
	case hash == "":
		return c.yellow(branch + " missing")
	case strings.HasPrefix(hash, rev):
		return c.green(branch + " at " + rev)
	default:
		return c.yellow(fmt.Sprintf("%s at %s, expected %s", branch, shortHash(hash), rev))
	}
}

func shortHash(hash string) string {
	if len(hash) > 7 {
		return hash[:7]
	}
	return hash
}

// ListLibs lists the libraries declared in the manifest.
func (c *CLI) ListLibs(args []string) {
	opts, err := parseFlags(args)
	if err != nil {
		c.fail("Error", err)
		return
	}
	cfg, _, err := c.loadConfig(opts)
	if err != nil {
		c.fail("Error", err)
		return
	}
	layout, err := setup.NewLayout(cfg)
	if err != nil {
		c.fail("Error", err)
		return
	}

	m, err := manifest.Load(c.fs(), layout.ManifestPath)
	if err != nil {
		c.fail("Error", err)
		return
	}

	if len(m.Libraries) == 0 {
		fmt.Fprintln(c.Out, "No libraries declared.")
		return
	}

	fmt.Fprintf(c.Out, "Libraries in %s:\n\n", m.Path)
	for _, name := range m.Names() {
		lib := m.Find(name)
		rev := lib.Source.Revision
		if rev == "" {
			rev = "-"
		}
		fmt.Fprintf(c.Out, "  %-24s %-8s %s\n", lib.Name, c.gray(lib.Source.Type), c.gray(rev))
	}
	fmt.Fprintf(c.Out, "\nTotal: %d libraries\n", len(m.Libraries))
}

// InitConfig writes a default config file.
func (c *CLI) InitConfig(args []string) {
	opts, err := parseFlags(args)
	if err != nil {
		c.fail("Error", err)
		return
	}
	root, err := c.rootDir(opts)
	if err != nil {
		c.fail("Error", err)
		return
	}
	path := c.configPath(opts, root)

	if _, err := c.fs().Stat(path); err == nil && !opts.force {
		fmt.Fprintf(c.Err, "Config already exists at %s (use --force to overwrite)\n", path)
		c.Exit(1)
		return
	}

	svc := c.configSvc()
	cfg := svc.DefaultConfig()
	if opts.pinPolicy != "" {
		cfg.PinPolicy = opts.pinPolicy
	}
	if opts.mode != "" {
		if _, err := setup.ParseMode(opts.mode); err != nil {
			c.fail("Error", err)
			return
		}
		cfg.Mode = opts.mode
	}
	if _, err := setup.ParsePinPolicy(cfg.PinPolicy); err != nil {
		c.fail("Error", err)
		return
	}
	if err := svc.Save(cfg, path); err != nil {
		c.fail("Error saving config", err)
		return
	}
	fmt.Fprintf(c.Out, "Created config at %s\n", path)
}

package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kokistudios/playsh/internal/boundary"
	"github.com/kokistudios/playsh/internal/builtin"
	"github.com/kokistudios/playsh/internal/config"
	"github.com/kokistudios/playsh/internal/exec"
	"github.com/kokistudios/playsh/internal/lexer"
	playmcp "github.com/kokistudios/playsh/internal/mcp"
	"github.com/kokistudios/playsh/internal/parser"
	"github.com/kokistudios/playsh/internal/trash"
	"github.com/kokistudios/playsh/internal/ui"
)

// Set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func buildVersion() string {
	if commit == "none" {
		return version
	}
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}

func main() {
	var noColor bool

	rootCmd := &cobra.Command{
		Use:   "playsh",
		Short: "playsh — a sandboxed shell for coding agents",
		Long: "A restricted POSIX-flavored shell that confines every command to a set of\n" +
			"playground directories. Paths outside the playground do not exist as far as\n" +
			"the shell is concerned, and rm is a soft delete into a recoverable trash.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ui.Init(noColor)
		},
	}

	rootCmd.Version = buildVersion()
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")

	rootCmd.AddGroup(
		&cobra.Group{ID: "shell", Title: "Shell Commands:"},
		&cobra.Group{ID: "trash", Title: "Trash:"},
		&cobra.Group{ID: "config", Title: "Configuration:"},
	)

	execC := execCmd()
	execC.GroupID = "shell"
	replC := replCmd()
	replC.GroupID = "shell"
	guideC := guideCmd()
	guideC.GroupID = "shell"

	trashC := trashCmd()
	trashC.GroupID = "trash"

	initC := initCmd()
	initC.GroupID = "config"
	configC := configCmd()
	configC.GroupID = "config"
	doctorC := doctorCmd()
	doctorC.GroupID = "config"

	rootCmd.AddCommand(execC)
	rootCmd.AddCommand(replC)
	rootCmd.AddCommand(guideC)
	rootCmd.AddCommand(trashC)
	rootCmd.AddCommand(initC)
	rootCmd.AddCommand(configC)
	rootCmd.AddCommand(doctorC)
	rootCmd.AddCommand(mcpServeCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadStore loads the PLAYSH_HOME config, falling back to defaults when no
// home exists yet.
func loadStore() (*config.Store, error) {
	return config.Load(config.Home())
}

// buildShell assembles the executor and boundary set from config, with
// --root flags overriding the configured sandbox roots.
func buildShell(roots []string) (*exec.Executor, *boundary.Set, error) {
	s, err := loadStore()
	if err != nil {
		return nil, nil, err
	}
	if len(roots) > 0 {
		s.Config.Sandbox.Roots = roots
		s.Config.Sandbox.Home = ""
	}
	set, err := s.BuildBoundary()
	if err != nil {
		return nil, nil, err
	}
	table := builtin.Table(s.Config.Limits.MaxOutputLines)
	return exec.New(table, s.Config.Limits.MaxPipelineDepth), set, nil
}

// runLine tokenizes, parses, and executes one command line. The returned
// error text is already user-facing.
func runLine(executor *exec.Executor, ctx *exec.Context, line string) (string, error) {
	tokens, err := lexer.Tokenize(line)
	if err != nil {
		return "", fmt.Errorf("%s\n", err)
	}
	cmd, err := parser.Parse(tokens)
	if err != nil {
		return "", fmt.Errorf("%s\n", err)
	}
	return executor.Run(cmd, ctx)
}

func execCmd() *cobra.Command {
	var roots []string
	cmd := &cobra.Command{
		Use:   "exec <command line>",
		Short: "Run one command line in the playground",
		Long: "Run a single command line inside the sandbox and print its output. The\n" +
			"command line is passed as one argument; quote it in your outer shell.",
		Example: "  playsh exec 'ls -la'\n  playsh exec 'grep -rn TODO src | head -n 5'\n  playsh exec --root /tmp/play 'cat notes.txt'",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, set, err := buildShell(roots)
			if err != nil {
				return err
			}
			ctx := exec.NewContext(set)

			out, err := runLine(executor, ctx, strings.Join(args, " "))
			if err != nil {
				fmt.Print(err.Error())
				os.Exit(1)
			}
			fmt.Print(out)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&roots, "root", nil, "Playground root directory (repeatable; overrides config)")
	return cmd
}

func replCmd() *cobra.Command {
	var roots []string
	cmd := &cobra.Command{
		Use:     "repl",
		Short:   "Start an interactive playground session",
		Example: "  playsh repl\n  playsh repl --root ~/scratch",
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, set, err := buildShell(roots)
			if err != nil {
				return err
			}
			ctx := exec.NewContext(set)

			ui.LogoWithTagline("type 'exit' to leave")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Fprint(os.Stderr, ui.Prompt(ctx.Dir))
				if !scanner.Scan() {
					fmt.Fprintln(os.Stderr)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}
				out, err := runLine(executor, ctx, line)
				if err != nil {
					fmt.Print(err.Error())
					continue
				}
				fmt.Print(out)
			}
		},
	}
	cmd.Flags().StringArrayVar(&roots, "root", nil, "Playground root directory (repeatable; overrides config)")
	return cmd
}

func initCmd() *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:     "init",
		Short:   "Initialize PLAYSH_HOME with a default config",
		Example: "  playsh init\n  playsh init --force",
		RunE: func(cmd *cobra.Command, args []string) error {
			home := config.Home()
			if err := config.Init(home, force); err != nil {
				return err
			}
			ui.Success("playsh initialized")
			ui.Detail("Home:", home)
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "Reinitialize even if PLAYSH_HOME already exists")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "View and edit playsh configuration",
	}
	cmd.AddCommand(configShowCmd())
	cmd.AddCommand(configSetCmd())
	return cmd
}

func configShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Display current effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(s.Config)
			if err != nil {
				return fmt.Errorf("failed to marshal config: %w", err)
			}
			fmt.Print(string(data))
			return nil
		},
	}
}

func configSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long:  "Set a playsh configuration value. Valid keys: sandbox.roots, sandbox.home, limits.max_pipeline_depth, limits.max_output_lines.",
		Example: `  playsh config set sandbox.roots "~/projects/*,/tmp/scratch"
  playsh config set limits.max_output_lines 500`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadStore()
			if err != nil {
				return err
			}
			if err := s.SetConfigValue(args[0], args[1]); err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Set %s = %s", args[0], args[1]))
			return nil
		},
	}
}

func trashCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trash",
		Short: "Inspect and empty the playground trash",
		Long:  "rm inside the playground moves targets into a .trash directory under the playground home. List what is there or delete it for good.",
	}
	cmd.AddCommand(trashListCmd())
	cmd.AddCommand(trashEmptyCmd())
	return cmd
}

func trashListCmd() *cobra.Command {
	var roots []string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List trashed entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, set, err := buildShell(roots)
			if err != nil {
				return err
			}
			entries, err := trash.List(set)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				ui.EmptyState("Trash is empty.")
				return nil
			}
			var rows [][]string
			for _, e := range entries {
				kind := "file"
				if e.IsDir {
					kind = "dir"
				}
				rows = append(rows, []string{e.Original, kind, fmt.Sprintf("%d", e.Size), e.Modified.Format("2006-01-02 15:04")})
			}
			ui.Table([]string{"NAME", "TYPE", "SIZE", "TRASHED"}, rows)
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&roots, "root", nil, "Playground root directory (repeatable; overrides config)")
	return cmd
}

func trashEmptyCmd() *cobra.Command {
	var roots []string
	var force bool
	cmd := &cobra.Command{
		Use:   "empty",
		Short: "Permanently delete everything in the trash",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, set, err := buildShell(roots)
			if err != nil {
				return err
			}
			entries, err := trash.List(set)
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				ui.EmptyState("Trash is already empty.")
				return nil
			}
			if !force {
				ok, err := ui.Confirm(fmt.Sprintf("Permanently delete %d trashed item(s)?", len(entries)))
				if err != nil {
					return err
				}
				if !ok {
					ui.Info("Aborted.")
					return nil
				}
			}
			removed, err := trash.Empty(set)
			if err != nil {
				return err
			}
			ui.Success(fmt.Sprintf("Deleted %d item(s)", removed))
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&roots, "root", nil, "Playground root directory (repeatable; overrides config)")
	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	return cmd
}

func doctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check PLAYSH_HOME and sandbox configuration health",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.SectionHeader("Playground")
			if s, err := loadStore(); err == nil {
				if set, err := s.BuildBoundary(); err == nil {
					ui.KeyValue("Home ", set.Home())
					ui.KeyValue("Roots", strings.Join(set.Roots(), ", "))
				} else {
					ui.KeyValue("Home ", config.Home())
					ui.KeyValue("Roots", err.Error())
				}
			}

			issues := config.CheckHealth(config.Home())
			if len(issues) == 0 {
				ui.Success("Everything looks good")
				return nil
			}

			hasError := false
			for _, issue := range issues {
				if issue.Severity == "error" {
					ui.Error(fmt.Sprintf("[ERR]  %s", issue.Message))
					hasError = true
				} else {
					ui.Warning(fmt.Sprintf("[WARN] %s", issue.Message))
				}
			}
			if hasError {
				os.Exit(2)
			}
			os.Exit(1)
			return nil
		},
	}
}

func guideCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "guide",
		Short: "Show the playground shell guide",
		RunE: func(cmd *cobra.Command, args []string) error {
			ui.RenderMarkdown(guideText)
			return nil
		},
	}
}

func mcpServeCmd() *cobra.Command {
	var roots []string
	cmd := &cobra.Command{
		Use:    "mcp-serve",
		Short:  "Run playsh as an MCP server",
		Long:   "Start playsh as a Model Context Protocol (MCP) server over stdio. Agent runtimes call playsh_exec to run sandboxed commands and playsh_roots to discover the playground.",
		Hidden: true, // Not typically called directly by users
		RunE: func(cmd *cobra.Command, args []string) error {
			executor, set, err := buildShell(roots)
			if err != nil {
				return err
			}
			server := playmcp.NewServer(executor, set, version)
			return server.Run(context.Background())
		},
	}
	cmd.Flags().StringArrayVar(&roots, "root", nil, "Playground root directory (repeatable; overrides config)")
	return cmd
}

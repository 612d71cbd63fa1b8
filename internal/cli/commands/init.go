package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/tally/internal/cli/config"
	"github.com/leapstack-labs/tally/internal/cli/output"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ConfigFileName is the name of the file written by init.
const ConfigFileName = "tally.yaml"

// exampleFileName is the name of the sample file written by init --example.
const exampleFileName = "example.tl"

const exampleSource = `# Lines are evaluated in order; blank lines and # comments are skipped.
VAR price = 19.99
VAR qty = 3
VAR subtotal = price * qty
VAR tax = subtotal * 0.08
subtotal + tax
2 ^ 10
-2 ^ 2
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool
	var example bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Create a tally.yaml configuration file",
		Long: `Create a tally.yaml configuration file populated with the default settings.

Use --example to also write example.tl, a small file to try with
'tally eval -f' or 'tally watch'.`,
		Example: `  # Initialize in current directory
  tally init

  # Initialize with an example file
  tally init --example

  # Force overwrite existing config
  tally init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg := getConfig()
			r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))
			return runInit(r, dir, force, example)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing files")
	cmd.Flags().BoolVar(&example, "example", false, "Also create an example expression file")

	return cmd
}

// fileConfig is the on-disk shape of tally.yaml.
type fileConfig struct {
	StatePath string `yaml:"state_path"`
	Session   string `yaml:"session"`
	Output    string `yaml:"output"`
	MaxDepth  int    `yaml:"max_depth"`
	Journal   bool   `yaml:"journal"`
	REPL      struct {
		Prompt      string `yaml:"prompt"`
		HistoryFile string `yaml:"history_file"`
	} `yaml:"repl"`
	Watch struct {
		Debounce string `yaml:"debounce"`
	} `yaml:"watch"`
}

func defaultFileConfig() fileConfig {
	var fc fileConfig
	fc.StatePath = config.DefaultStateFile
	fc.Session = config.DefaultSession
	fc.Output = config.DefaultOutput
	fc.Journal = true
	fc.REPL.Prompt = config.DefaultPrompt
	fc.REPL.HistoryFile = config.DefaultHistoryFile
	fc.Watch.Debounce = config.DefaultDebounce.String()
	return fc
}

func runInit(r *output.Renderer, dir string, force, example bool) error {
	if dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	configPath := filepath.Join(dir, ConfigFileName)
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("%s already exists. Use --force to overwrite", ConfigFileName)
	}

	f, err := os.Create(configPath) //nolint:gosec // user-supplied directory
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", configPath, err)
	}
	if err := writeYAML(f, defaultFileConfig()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	r.Printf("Created %s\n", configPath)

	if example {
		examplePath := filepath.Join(dir, exampleFileName)
		if _, err := os.Stat(examplePath); err == nil && !force {
			return fmt.Errorf("%s already exists. Use --force to overwrite", exampleFileName)
		}
		if err := os.WriteFile(examplePath, []byte(exampleSource), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", examplePath, err)
		}
		r.Printf("Created %s\n", examplePath)
	}

	r.Println("")
	r.Println("Next steps:")
	r.Println("  tally repl            Start an interactive session")
	if example {
		r.Println("  tally eval -f " + exampleFileName + "  Evaluate the example file")
	} else {
		r.Println("  tally eval \"1 + 2\"    Evaluate an expression")
	}
	return nil
}

// writeYAML encodes v to w with two-space indentation.
func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

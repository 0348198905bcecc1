package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/groundcheck/internal/logging"
	"github.com/ppiankov/groundcheck/internal/model"
	"github.com/ppiankov/groundcheck/internal/pipeline"
)

// Version is set at build time
var Version = "v0.1.0"

const envPrefix = "GROUNDCHECK"

var (
	cfgFile string
	envFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "groundcheck",
	Short: "Groundcheck - grounded fact checks for news claims",
	Long: `Groundcheck sends a news claim to a generative model with live web search
enabled and reports a sourced verdict.

Each answer is reduced to a Yes/No keyword verdict, followed by the model's
explanation and the sources it cited. Every completed check is appended to a
CSV history record.

The verdict is a keyword heuristic over the model's text. It is a pointer
to the sources, not a ruling on truth.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number for Groundcheck.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "groundcheck %s\n", Version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: $HOME/.groundcheck/config.yaml)")
	flags.StringVar(&envFile, "env-file", "", "dotenv file to load before reading the environment (default: ./.env if present)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logging)")
	flags.String("provider", "", "generative backend (gemini, openai)")
	flags.String("model", "", "model name")
	flags.String("history", "", "history CSV path")
	flags.Bool("cache", false, "reuse recent answers for repeated claims instead of asking again")
	flags.Bool("no-search", false, "do not declare the web search tool")
	flags.Bool("verify-sources", false, "probe every cited link after a check")

	// Bind flags to viper
	_ = viper.BindPFlag("logging.verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("api.provider", flags.Lookup("provider"))
	_ = viper.BindPFlag("api.model", flags.Lookup("model"))
	_ = viper.BindPFlag("history.path", flags.Lookup("history"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in the dotenv file, config file and ENV variables
func initConfig() {
	if err := loadDotEnv(envFile); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
		} else {
			viper.AddConfigPath(dir)
			viper.SetConfigType("yaml")
			viper.SetConfigName("config")
		}
	}

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	} else if err != nil && cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: cannot read config file %s: %v\n", cfgFile, err)
	}
}

// loadDotEnv loads path, or ./.env when path is empty. A missing default file is not an error.
func loadDotEnv(path string) error {
	if path == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".groundcheck"), nil
}

// loadConfig resolves the effective configuration:
// flags > GROUNDCHECK_* env > config file > defaults
func loadConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()

	if err := registerDefaults(v, cfg); err != nil {
		return nil, err
	}
	// Applies whichever config file was read
	if dir, err := configDir(); err == nil {
		v.SetDefault("cache.disk_dir", filepath.Join(dir, "cache"))
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	_ = v.BindEnv("api.api_key", envPrefix+"_API_KEY")

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.API.APIKey == "" {
		cfg.API.APIKey = providerKeyFromEnv(cfg.API.Provider)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// registerDefaults makes every config key known to viper so env vars bind to it
func registerDefaults(v *viper.Viper, cfg *model.Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal defaults: %w", err)
	}

	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return fmt.Errorf("unmarshal defaults: %w", err)
	}

	var walk func(prefix string, node map[string]any)
	walk = func(prefix string, node map[string]any) {
		for key, val := range node {
			full := key
			if prefix != "" {
				full = prefix + "." + key
			}
			if child, ok := val.(map[string]any); ok {
				walk(full, child)
				continue
			}
			v.SetDefault(full, val)
		}
	}
	walk("", tree)
	return nil
}

func providerKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	default:
		if key := os.Getenv("GEMINI_API_KEY"); key != "" {
			return key
		}
		return os.Getenv("GOOGLE_API_KEY")
	}
}

// setup loads the config, applies command-line switches that have no config
// key of their own and builds the logger
func setup(cmd *cobra.Command) (*model.Config, *zap.Logger, error) {
	cfg, err := loadConfig(viper.GetViper())
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if useCache, _ := flags.GetBool("cache"); useCache {
		cfg.Cache.Enabled = true
	}
	if noSearch, _ := flags.GetBool("no-search"); noSearch {
		cfg.API.GoogleSearch = false
	}
	if verify, _ := flags.GetBool("verify-sources"); verify {
		cfg.Sources.VerifyLinks = true
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logger, nil
}

// newPipeline builds the check pipeline for a command
func newPipeline(cmd *cobra.Command) (*pipeline.Pipeline, *model.Config, *zap.Logger, error) {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return nil, nil, nil, err
	}

	if cfg.API.APIKey == "" {
		return nil, nil, nil, fmt.Errorf("no API key configured for %s (set %s)", cfg.API.Provider, keyEnvName(cfg.API.Provider))
	}

	p, err := pipeline.New(cfg, pipeline.WithLogger(logger))
	if err != nil {
		return nil, nil, nil, err
	}

	logger.Debug("pipeline ready",
		zap.String("provider", p.Provider().Name()),
		zap.String("model", p.Provider().Model()),
		zap.String("history", p.History().Path()),
		zap.Bool("cache", cfg.Cache.Enabled))
	return p, cfg, logger, nil
}

func keyEnvName(provider string) string {
	if strings.EqualFold(provider, "openai") {
		return "OPENAI_API_KEY"
	}
	return "GEMINI_API_KEY"
}

package cmd

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"text/template"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or manage configuration",
	Long: `Show or manage adosprint configuration.

Running bare 'adosprint config' is the same as 'adosprint config show'.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create config file with commented defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configInitRun()
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show effective configuration with sources",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configShowRun()
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open config file in $EDITOR",
	RunE: func(cmd *cobra.Command, args []string) error {
		return configEditRun()
	},
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "Overwrite existing config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	rootCmd.AddCommand(configCmd)
}

// configTemplate is the template for generating config.yaml with comments.
// The PAT is never written to the file; keep it in AZURE_PAT.
const configTemplate = `# adosprint configuration
# See: adosprint config show (for effective values and sources)

# Azure DevOps organization and project (required)
org: "{{ .Org }}"
project: "{{ .Project }}"

# Team whose sprints are listed (default: same as project)
team: "{{ .Team }}"

# Azure DevOps base URL (default: https://dev.azure.com)
# base_url: {{ .BaseURL }}

# HTTP API listen address
host: "{{ .Host }}"
port: {{ .Port }}

# Timezone of the /health timestamp
timezone: "{{ .Timezone }}"

# Anthropic (optional, enables digests)
anthropic:
  # Model used for sprint digests
  model: "{{ .AnthropicModel }}"
`

type configTemplateData struct {
	Org            string
	Project        string
	Team           string
	BaseURL        string
	Host           string
	Port           int
	Timezone       string
	AnthropicModel string
}

func configFilePath() (string, error) {
	dir, err := configDirFunc()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

func configInitRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	// Check if file already exists
	if _, err := os.Stat(cfgPath); err == nil {
		if !configForce {
			return fmt.Errorf("config file already exists: %s (use --force to overwrite)", cfgPath)
		}
		ui.Warning("Overwriting existing config file")
	}

	// Build template data from current viper values
	data := configTemplateData{
		Org:            viper.GetString("org"),
		Project:        viper.GetString("project"),
		Team:           viper.GetString("team"),
		BaseURL:        viper.GetString("base_url"),
		Host:           viper.GetString("host"),
		Port:           viper.GetInt("port"),
		Timezone:       viper.GetString("timezone"),
		AnthropicModel: viper.GetString("anthropic.model"),
	}

	tmpl, err := template.New("config").Parse(configTemplate)
	if err != nil {
		return fmt.Errorf("template parse error: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("template execute error: %w", err)
	}

	if dryRun {
		ui.DryRunMsg("Would create config file: %s", cfgPath)
		fmt.Fprintln(ui.Out)
		fmt.Fprint(ui.Out, buf.String())
		return nil
	}

	// Create config directory
	dir := filepath.Dir(cfgPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(cfgPath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	ui.Success("Config file created: %s", cfgPath)
	fmt.Fprintln(ui.Out)
	fmt.Fprint(ui.Out, buf.String())
	return nil
}

// configKeyInfo describes a config key for display purposes. Fallback names
// an unprefixed env var consulted when the key itself is unset.
type configKeyInfo struct {
	Key      string
	EnvVar   string
	Fallback string
	Secret   bool
	Required bool
}

var configKeys = []configKeyInfo{
	{Key: "org", EnvVar: "AZURE_ORG", Required: true},
	{Key: "project", EnvVar: "AZURE_PROJECT", Required: true},
	{Key: "team", EnvVar: "AZURE_TEAM"},
	{Key: "pat", EnvVar: "AZURE_PAT", Secret: true},
	{Key: "base_url", EnvVar: "AZURE_BASE_URL"},
	{Key: "host", EnvVar: "AZURE_HOST"},
	{Key: "port", EnvVar: "AZURE_PORT"},
	{Key: "timezone", EnvVar: "AZURE_TIMEZONE"},
	{Key: "anthropic.api_key", EnvVar: "AZURE_ANTHROPIC_API_KEY", Fallback: "ANTHROPIC_API_KEY", Secret: true},
	{Key: "anthropic.model", EnvVar: "AZURE_ANTHROPIC_MODEL"},
}

func configShowRun() error {
	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); err == nil {
		ui.Info("Config file: %s", cfgPath)
	} else {
		ui.Info("Config file: (none)")
	}
	fmt.Fprintln(ui.Out)

	fileValues := readConfigFileValues(cfgPath)

	table := ui.Table([]string{"Key", "Value", "Source"})
	var missing []configKeyInfo
	for _, k := range configKeys {
		value, source := configValue(k, fileValues)
		if k.Required && value == "" {
			missing = append(missing, k)
		}
		if k.Secret {
			value = redact(value)
			if value == "" {
				value = "(not set)"
			}
		}
		_ = table.Append([]string{k.Key, value, source})
	}
	if err := table.Render(); err != nil {
		return err
	}

	for _, k := range missing {
		ui.Warning("%s is not set; the API answers 500 until %s is configured", k.Key, k.EnvVar)
	}
	if viper.GetString("pat") == "" {
		ui.Info("No local PAT: terminal queries and the MCP server need AZURE_PAT")
	}
	return nil
}

// configValue returns the effective value of a key and where it comes from,
// honoring the key's unprefixed fallback env var.
func configValue(k configKeyInfo, fileValues map[string]bool) (string, string) {
	value := viper.GetString(k.Key)
	if value == "" && k.Fallback != "" {
		if v := os.Getenv(k.Fallback); v != "" {
			return v, fmt.Sprintf("(env: %s)", k.Fallback)
		}
	}
	return value, detectSource(k.Key, k.EnvVar, fileValues)
}

// readConfigFileValues reads the raw YAML file and returns a flat map of keys present in it.
func readConfigFileValues(path string) map[string]bool {
	result := make(map[string]bool)

	data, err := os.ReadFile(path)
	if err != nil {
		return result
	}

	var parsed map[string]any
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return result
	}

	// Flatten nested keys with dot notation
	flattenKeys("", parsed, result)
	return result
}

// flattenKeys recursively flattens a nested map to dot-notation keys.
func flattenKeys(prefix string, m map[string]any, result map[string]bool) {
	for key, val := range m {
		fullKey := key
		if prefix != "" {
			fullKey = prefix + "." + key
		}
		if nested, ok := val.(map[string]any); ok {
			flattenKeys(fullKey, nested, result)
		} else {
			result[fullKey] = true
		}
	}
}

// detectSource determines where a config value is coming from.
func detectSource(key, envVar string, fileValues map[string]bool) string {
	if _, ok := os.LookupEnv(envVar); ok {
		return fmt.Sprintf("(env: %s)", envVar)
	}
	if fileValues[key] {
		return "(file)"
	}
	return "(default)"
}

func configEditRun() error {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = os.Getenv("VISUAL")
	}
	if editor == "" {
		return fmt.Errorf("$EDITOR is not set, set it to your preferred editor (e.g. export EDITOR=vim)")
	}

	cfgPath, err := configFilePath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		return fmt.Errorf("config file not found: %s (run 'adosprint config init' first)", cfgPath)
	}

	if dryRun {
		ui.DryRunMsg("Would open %s in %s", cfgPath, editor)
		return nil
	}

	editCmd := exec.Command(editor, cfgPath)
	editCmd.Stdin = os.Stdin
	editCmd.Stdout = os.Stdout
	editCmd.Stderr = os.Stderr
	return editCmd.Run()
}

// redact hides all but the last four characters of a secret.
func redact(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return "***"
	}
	return "***" + secret[len(secret)-4:]
}

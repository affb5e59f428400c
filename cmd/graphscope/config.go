package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/rohankatakam/graphscope/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect graphscope configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration (secrets masked)",
	RunE:  runConfigShow,
}

var validateContext string

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration for a command",
	Long: `Validate configuration for one of: serve, mcp, export, schema, all.

Examples:
  graphscope config validate --for serve
  GRAPHSCOPE_DEPLOYMENT_MODE=prod graphscope config validate --for all`,
	RunE: runConfigValidate,
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write the effective configuration to a file",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configSetPasswordCmd = &cobra.Command{
	Use:   "set-password",
	Short: "Store the Neo4j password in the OS keychain",
	Long: `Read the Neo4j password from the terminal (or stdin when piped) and
store it in the OS keychain. Commands that talk to Neo4j read it from
there when neither the config file nor NEO4J_PASSWORD provides one.`,
	RunE: runConfigSetPassword,
}

var configDeletePasswordCmd = &cobra.Command{
	Use:   "delete-password",
	Short: "Remove the Neo4j password from the OS keychain",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.NewKeyringManager().DeleteNeo4jPassword(); err != nil {
			return err
		}
		fmt.Println("✅ Removed Neo4j password from keychain")
		return nil
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configSetPasswordCmd)
	configCmd.AddCommand(configDeletePasswordCmd)
	configCmd.AddCommand(configValidateCmd)
	configCmd.AddCommand(configInitCmd)

	configValidateCmd.Flags().StringVar(&validateContext, "for", "all", "validation context")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	out, err := yaml.Marshal(cfg.Redacted())
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func runConfigValidate(cmd *cobra.Command, args []string) error {
	mode := config.DetectMode()
	if source, err := config.NewCredentialManager().ResolveNeo4jPassword(cfg, false); err == nil {
		fmt.Printf("Neo4j password: %s (%s)\n", config.MaskSecret(cfg.Neo4j.Password), source)
	}
	result := cfg.ValidateWithMode(config.ValidationContext(validateContext), mode)

	fmt.Printf("Deployment mode: %s (%s)\n", mode, mode.Description())
	if result.HasErrors() {
		fmt.Print(result.Error())
		return fmt.Errorf("configuration is invalid for %s", validateContext)
	}

	for _, w := range result.Warnings {
		fmt.Printf("  ⚠️  %s\n", w)
	}
	fmt.Println("✅ Configuration is valid")
	return nil
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := filepath.Join(".graphscope", "config.yaml")
	if len(args) == 1 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	// credentials stay in the environment
	out := *cfg
	out.Neo4j.Password = ""
	if err := out.Save(path); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	fmt.Printf("✅ Wrote %s\n", path)
	return nil
}

func runConfigSetPassword(cmd *cobra.Command, args []string) error {
	cm := config.NewCredentialManager()
	if !cm.Keyring().IsAvailable() {
		return fmt.Errorf("OS keychain is not available; set NEO4J_PASSWORD instead")
	}

	fmt.Fprint(os.Stderr, "Neo4j password: ")
	password, err := cm.ReadPassword()
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if err := cm.Keyring().SaveNeo4jPassword(password); err != nil {
		return err
	}
	fmt.Printf("✅ Saved Neo4j password (%s) to keychain\n", config.MaskSecret(password))
	return nil
}

package cmd

import (
	"fmt"
	"os"

	"github.com/julienpequegnot/topicrank/internal/config"
	"github.com/julienpequegnot/topicrank/internal/database"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize topicrank configuration and database",
	Long:  `Creates the ~/.topicrank directory with config.yaml and SQLite database.`,
	RunE:  runInit,
}

func init() {
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	dir := config.Dir()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if _, err := os.Stat(config.Path()); err == nil {
		fmt.Printf("Keeping existing config at %s\n", config.Path())
	} else {
		if err := config.Save(config.Default()); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		fmt.Printf("Created config at %s\n", config.Path())
	}

	db, err := database.New(config.DBPath())
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	db.Close()
	fmt.Printf("Created database at %s\n", config.DBPath())

	fmt.Println("\nTopicrank initialized! Next steps:")
	fmt.Println("  edit config.yaml            Set search.provider and its keys")
	fmt.Println("  topicrank search <query>    Search and re-rank")

	return nil
}

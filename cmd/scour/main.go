package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/scourbot/scour/config"
	srv "github.com/scourbot/scour/internal/server"
)

func main() {
	_ = godotenv.Load()

	var root = &cobra.Command{Use: "scour"}
	var cfgPath string
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")

	var serveAddr string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serveAddr == "" {
				serveAddr = os.Getenv("SCOUR_HTTP_ADDR")
			}
			cfg := config.LoadConfig(cfgPath)
			return srv.Run(cfg, serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to server.address)")

	var maxResults int
	var research = &cobra.Command{
		Use:   "research [task]",
		Short: "Run one research task and print progress",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			task := args[0]
			if len(args) > 1 {
				for _, a := range args[1:] {
					task += " " + a
				}
			}
			cfg := config.LoadConfig(cfgPath)
			manager, _, err := srv.BuildManager(cfg)
			if err != nil {
				return err
			}
			s := manager.Start(task, maxResults)
			for msg := range s.Events() {
				fmt.Println(msg)
			}
			if a, ok := s.Artifact(); ok {
				fmt.Println("report written to", a.Path)
				return nil
			}
			return fmt.Errorf("run %s produced no report", s.ID())
		},
	}
	research.Flags().IntVar(&maxResults, "max-results", 0, "search results per query (defaults to search.max_results)")

	root.AddCommand(serve, research)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

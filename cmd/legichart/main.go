package main

import (
	"os"

	"github.com/spf13/cobra"

	"legichart/config"
	"legichart/logger"
	"legichart/service"
)

func main() {
	root := &cobra.Command{
		Use:           "legichart",
		Short:         "Collect and chart the commit history of the French legal codes",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(newCollectCmd(), newRenderCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (*service.Service, error) {
	cfg := config.NewConfig()
	if err := cfg.Load(); err != nil {
		return nil, err
	}
	if err := logger.Initialize(cfg.LogLevel); err != nil {
		return nil, err
	}
	return service.NewService(cfg)
}

func newCollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect",
		Short: "Fetch the commit history from the forge and write the corpus dataset",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup()
			if err != nil {
				return err
			}
			defer svc.Close()
			defer logger.Sync()
			return svc.Collect(cmd.Context())
		},
	}
}

func newRenderCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Aggregate the corpus and render the chart page",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := setup()
			if err != nil {
				return err
			}
			defer svc.Close()
			defer logger.Sync()
			return svc.Render()
		},
	}
}

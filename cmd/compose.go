package main

import (
	"context"
	"fmt"
	"os"
	"radiomirchi"
	"radiomirchi/pkg/compose"
	"radiomirchi/pkg/logger"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var requiredAppEnv = []string{"MONGODB_URI", "MONGODB_DB"} //nolint:gochecknoglobals

// composeCommand checks a compose file and prints the order its services start in.
func composeCommand() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "compose",
		Short: "Validates the deployment compose file",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := context.Background()

			data := radiomirchi.ComposeFile
			if file != "" {
				var err error
				data, err = os.ReadFile(file)
				if err != nil {
					logger.Fatal(ctx, "could not read compose file", zap.String("file", file), zap.Error(err))
				}
			}

			f, err := compose.Parse(data)
			if err != nil {
				logger.Fatal(ctx, "could not parse compose file", zap.Error(err))
			}
			if err := f.Validate(); err != nil {
				logger.Fatal(ctx, "invalid compose file", zap.Error(err))
			}

			order, err := f.StartupOrder()
			if err != nil {
				logger.Fatal(ctx, "could not resolve startup order", zap.Error(err))
			}

			if app := f.Service("app"); app != nil {
				env := app.Env()
				for _, name := range requiredAppEnv {
					if _, ok := env[name]; !ok {
						logger.Warn(ctx, "app service does not set required variable", zap.String("variable", name))
					}
				}
			}

			fmt.Println(strings.Join(order, " -> ")) //nolint:forbidigo
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "path to compose file, defaults to the embedded one")

	return cmd
}

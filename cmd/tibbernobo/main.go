package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/joho/godotenv/autoload"
	"github.com/koding/multiconfig"
	"github.com/nergy-se/tibbernobo/pkg/api/v1/config"
	"github.com/nergy-se/tibbernobo/pkg/app"
	"github.com/nergy-se/tibbernobo/pkg/version"
	"github.com/sirupsen/logrus"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGQUIT, syscall.SIGTERM)
	defer stop()
	err := Run(ctx)
	if err != nil {
		logrus.Error(err)
		os.Exit(1)
	}
}

func newLoader() multiconfig.Loader {
	return multiconfig.MultiLoader(
		&multiconfig.TagLoader{},
		&multiconfig.EnvironmentLoader{Prefix: "TIBBERNOBO", CamelCase: true},
		&multiconfig.FlagLoader{CamelCase: true},
	)
}

func Run(ctx context.Context) error {
	config := &config.CliConfig{}
	err := newLoader().Load(config)
	if err != nil {
		return err
	}
	lvl, err := logrus.ParseLevel(config.LogLevel)
	if err != nil {
		return fmt.Errorf("error setting logrus loglevel: %w", err)
	}
	logrus.SetLevel(lvl)
	logrus.Debugf("starting tibbernobo %s", version.Version)

	config.ApplyEnvFallback(os.LookupEnv)
	err = config.LoadToken()
	if err != nil {
		return fmt.Errorf("error loading token: %w", err)
	}
	err = config.Validate()
	if err != nil {
		return err
	}

	return app.New(config).Run(ctx)
}

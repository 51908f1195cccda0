/*
Copyright 2024-2025 the Unikorn Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
	"github.com/go-logr/zapr"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/unikorn-cloud/petstore-acceptance/pkg/constants"
	"github.com/unikorn-cloud/petstore-acceptance/test/api"
	"github.com/unikorn-cloud/petstore-acceptance/test/bdd"
	"github.com/unikorn-cloud/petstore-acceptance/test/features"
)

type options struct {
	baseURL  string
	apiKey   string
	debug    bool
	features []string
	godog    godog.Options
}

func (o *options) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&o.baseURL, "base-url", "", "Pet Store base URL, overrides PETSTORE_BASE_URL.")
	f.StringVar(&o.apiKey, "api-key", "", "Pet Store API key, overrides PETSTORE_API_KEY.")
	f.BoolVar(&o.debug, "debug", false, "Enable debug logging, including per poll attempt detail.")
	f.StringSliceVar(&o.features, "features", nil, "Feature files or directories to run, defaults to the built in features.")
}

func newLogger(debug bool) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	config.Encoding = "console"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if debug {
		// zapr maps logr V(1) to zap debug.
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	return config.Build()
}

func run(ctx context.Context, o *options) (int, error) {
	config, err := api.LoadTestConfig()
	if err != nil {
		return 1, err
	}

	if o.baseURL != "" {
		config.BaseURL = o.baseURL
	}

	if o.apiKey != "" {
		config.APIKey = o.apiKey
	}

	zl, err := newLogger(o.debug || config.DebugLogging)
	if err != nil {
		return 1, err
	}

	defer func() {
		_ = zl.Sync()
	}()

	logger := zapr.NewLogger(zl)

	logger.Info("acceptance run starting", "application", constants.Application, "version", constants.Version, "revision", constants.Revision, "baseURL", config.BaseURL)

	deps := bdd.Dependencies{
		Config:   config,
		Client:   api.NewAPIClientWithConfig(config, api.WithLogger(logger.WithName("client"))),
		Fixtures: api.NewFixtureLoader(config.FixturePath),
		Logger:   logger.WithName("scenario"),
	}

	// Without explicit paths, run the features compiled into the binary.
	if len(o.godog.Paths) == 0 {
		o.godog.FS = features.FS
		o.godog.Paths = []string{"."}
	}

	o.godog.DefaultContext = ctx

	suite := godog.TestSuite{
		Name:                "petstore",
		ScenarioInitializer: bdd.InitializeScenario(deps),
		Options:             &o.godog,
	}

	return suite.Run(), nil
}

func main() {
	o := &options{
		godog: godog.Options{
			Output: colors.Colored(os.Stdout),
			Format: "pretty",
		},
	}

	godog.BindCommandLineFlags("godog.", &o.godog)
	o.AddFlags(pflag.CommandLine)

	pflag.Parse()

	o.godog.Paths = append(o.features, pflag.Args()...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	status, err := run(ctx, o)

	stop()

	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	os.Exit(status)
}

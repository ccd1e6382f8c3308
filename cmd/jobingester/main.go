package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mak8427/Benchmarking-suite-backend/internal/common"
	"github.com/mak8427/Benchmarking-suite-backend/internal/common/app"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/configuration"
)

const CustomConfigLocation = "config"

func init() {
	pflag.StringSlice(
		CustomConfigLocation,
		[]string{},
		"Fully qualified path to application configuration file (for multiple config files repeat this arg or separate paths with commas)",
	)
	pflag.Parse()
}

func main() {
	common.ConfigureLogging()
	common.BindCommandlineArguments()

	var config configuration.JobIngesterConfiguration
	userSpecifiedConfigs := viper.GetStringSlice(CustomConfigLocation)
	common.LoadConfig(&config, "./config/jobingester", userSpecifiedConfigs)
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	summary, err := jobingester.Run(app.CreateContextWithShutdown(), &config)
	if err != nil {
		log.Fatalf("Batch run aborted: %v", err)
	}
	log.Infof("Run complete: %d processed, %d skipped, %d failed",
		summary.Processed, summary.Skipped, summary.Failed)
}

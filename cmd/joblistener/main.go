package main

import (
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/mak8427/Benchmarking-suite-backend/internal/common"
	"github.com/mak8427/Benchmarking-suite-backend/internal/common/app"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/configuration"
	"github.com/mak8427/Benchmarking-suite-backend/internal/jobingester/listener"
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

	var config configuration.JobListenerConfiguration
	userSpecifiedConfigs := viper.GetStringSlice(CustomConfigLocation)
	common.LoadConfig(&config, "./config/joblistener", userSpecifiedConfigs)
	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if err := listener.Run(app.CreateContextWithShutdown(), &config); err != nil {
		log.Fatalf("Listener terminated: %v", err)
	}
}

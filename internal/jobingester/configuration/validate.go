package configuration

import (
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

// validateCommon checks settings shared by both trigger paths and fills in
// defaults. The process must not start when any of these fail.
func (c *JobIngesterConfiguration) validateCommon() *multierror.Error {
	var result *multierror.Error

	if len(c.Postgres.Connection) == 0 {
		result = multierror.Append(result, errors.New("postgres connection parameters are required"))
	}
	if c.Pricing.Mode != "" && c.Pricing.Mode != "flat" && c.Pricing.Mode != "market" {
		result = multierror.Append(result, errors.Errorf("unknown pricing mode %q", c.Pricing.Mode))
	}

	if c.Discovery.FileSuffix == "" {
		c.Discovery.FileSuffix = ".h5"
	}
	if c.Parallelism <= 0 {
		c.Parallelism = 1
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.MaxBackoff <= 0 {
		c.MaxBackoff = 30
	}

	return result
}

// Validate checks a batch run configuration.
func (c *JobIngesterConfiguration) Validate() error {
	result := c.validateCommon()
	if c.Discovery.LocalRoot == "" && c.Discovery.RemotePrefix == "" {
		result = multierror.Append(result, errors.New("at least one of discovery.localRoot and discovery.remotePrefix is required"))
	}
	if c.Discovery.RemotePrefix != "" && c.ObjectStore.Endpoint == "" {
		result = multierror.Append(result, errors.New("discovery.remotePrefix requires objectStore.endpoint"))
	}
	return result.ErrorOrNil()
}

// Validate checks a listener configuration. The listener resolves notification
// records against the object store, so an endpoint is always required.
func (c *JobListenerConfiguration) Validate() error {
	result := c.validateCommon()
	if c.ListenAddress == "" {
		result = multierror.Append(result, errors.New("listenAddress is required"))
	}
	if c.ObjectStore.Endpoint == "" {
		result = multierror.Append(result, errors.New("objectStore.endpoint is required to resolve notifications"))
	}
	return result.ErrorOrNil()
}

package mapwatch

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/mapwatch/mapwatch/internal/transport"
	"github.com/mapwatch/mapwatch/pkg/logging"
	"github.com/mapwatch/mapwatch/pkg/products"
	"github.com/mapwatch/mapwatch/pkg/profiles"
	"github.com/mapwatch/mapwatch/pkg/upload"
)

// Option is a function that configures a Mapwatch instance.
type Option func(*config) error

// config holds construction-time settings resolved by New.
type config struct {
	store        products.Store
	storePath    string
	profiles     []profiles.Profile
	profilesPath string
	fetcher      transport.Fetcher
	proxyPrefix  string
	timeout      time.Duration

	uploadMapping upload.Mapping
	logger        *zerolog.Logger
}

func defaultConfig() *config {
	return &config{
		uploadMapping: upload.DefaultMapping(),
		logger:        logging.Default(),
	}
}

// WithStore uses an existing record store. The caller retains ownership;
// Close will not release it.
func WithStore(store products.Store) Option {
	return func(c *config) error {
		c.store = store
		return nil
	}
}

// WithStorePath opens a SQLite record store at the given path, creating it
// if absent. Close releases it.
func WithStorePath(path string) Option {
	return func(c *config) error {
		c.storePath = path
		return nil
	}
}

// WithProfiles uses the given source profiles instead of the built-ins.
func WithProfiles(list []profiles.Profile) Option {
	return func(c *config) error {
		c.profiles = list
		return nil
	}
}

// WithProfilesFile loads source profiles from a YAML file.
func WithProfilesFile(path string) Option {
	return func(c *config) error {
		c.profilesPath = path
		return nil
	}
}

// WithFetcher uses a custom feed fetcher, replacing the HTTP transport.
func WithFetcher(f transport.Fetcher) Option {
	return func(c *config) error {
		c.fetcher = f
		return nil
	}
}

// WithProxyPrefix routes feed fetches through a pass-through proxy; the
// feed URL is appended to the prefix query-escaped.
func WithProxyPrefix(prefix string) Option {
	return func(c *config) error {
		c.proxyPrefix = prefix
		return nil
	}
}

// WithFetchTimeout bounds each feed fetch.
func WithFetchTimeout(timeout time.Duration) Option {
	return func(c *config) error {
		c.timeout = timeout
		return nil
	}
}

// WithUploadMapping sets the header mapping used by CheckCSV and CheckXLSX.
func WithUploadMapping(m upload.Mapping) Option {
	return func(c *config) error {
		if err := m.Validate(); err != nil {
			return err
		}
		c.uploadMapping = m
		return nil
	}
}

// WithLogger sets the logger for import and check runs.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

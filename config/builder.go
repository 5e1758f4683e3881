package config

import (
	"fmt"
	"sort"

	"github.com/jpalmerr/devpulse"
)

// BuildBackend converts the api section into an SDK Backend.
func BuildBackend(cfg *Config) (devpulse.Backend, error) {
	api := cfg.API
	opts := []devpulse.BackendOption{
		devpulse.WithTimeout(api.Timeout.Duration()),
	}

	if api.HealthPath != "" {
		opts = append(opts, devpulse.WithHealthPath(api.HealthPath))
	}
	if api.DBCheckPath != "" {
		opts = append(opts, devpulse.WithDBCheckPath(api.DBCheckPath))
	}
	if api.InfoPath != "" {
		opts = append(opts, devpulse.WithInfoPath(api.InfoPath))
	}
	if len(api.Headers) > 0 {
		opts = append(opts, devpulse.WithHeaders(mapToKeyValuePairs(api.Headers)...))
	}
	if api.VersionField != "" || api.EnvField != "" {
		opts = append(opts, devpulse.WithInfoExtractor(
			devpulse.JSONInfoExtractor(orDefault(api.VersionField, "version"), orDefault(api.EnvField, "env")),
		))
	}

	be, err := devpulse.NewBackend(api.BaseURL, opts...)
	if err != nil {
		return devpulse.Backend{}, fmt.Errorf("api: %w", err)
	}
	return be, nil
}

// BuildOptions converts parsed configuration into SDK options for [devpulse.New].
func BuildOptions(cfg *Config) ([]devpulse.Option, error) {
	be, err := BuildBackend(cfg)
	if err != nil {
		return nil, err
	}

	opts := []devpulse.Option{
		devpulse.WithBackend(be),
		devpulse.WithPort(cfg.Port),
		devpulse.WithPollingInterval(cfg.PollInterval.Duration()),
		devpulse.WithTitle(cfg.Title),
		devpulse.WithSubtitle(cfg.Subtitle),
	}

	if len(cfg.Links) > 0 {
		links := make([]devpulse.Link, len(cfg.Links))
		for i, l := range cfg.Links {
			links[i] = devpulse.Link{Name: l.Name, URL: l.URL}
		}
		opts = append(opts, devpulse.WithLinks(links...))
	}

	return opts, nil
}

// mapToKeyValuePairs converts a map to a key-sorted slice of key-value pairs.
func mapToKeyValuePairs(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(m)*2)
	for _, k := range keys {
		pairs = append(pairs, k, m[k])
	}
	return pairs
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package userconfig

import (
	"errors"
	"fmt"
	"io"
	"net"

	"bookshelf/storage"

	yaml "gopkg.in/yaml.v2"
)

// Meta represents all current config options that the application can use,
// i.e., after validation and parsing
type Meta struct {
	Server  Server           `yaml:"server"`
	Storage storage.KVConfig `yaml:"storage"`
}

// Server contains config options for the application's HTTP listener
type Server struct {
	ListenAddr string `yaml:"listenAddr"`
}

// CheckAndSetDefaults validates s and either returns a copy of s with default
// settings applied or returns an error due to an invalid configuration
func (s *Server) CheckAndSetDefaults() (Server, error) {
	if s.ListenAddr == "" {
		s.ListenAddr = ":8080"
	}

	if _, _, err := net.SplitHostPort(s.ListenAddr); err != nil {
		return Server{}, fmt.Errorf(
			"can't parse the user-provided listen address %q: %v",
			s.ListenAddr,
			err,
		)
	}

	return *s, nil
}

// CheckAndSetDefaults validates m and either returns a copy of m with default
// settings applied or returns an error due to an invalid configuration
func (m *Meta) CheckAndSetDefaults() (Meta, error) {
	c := Meta{}

	s, err := m.Server.CheckAndSetDefaults()
	if err != nil {
		return Meta{}, err
	}
	c.Server = s

	if m.Storage.StorageDirPath == "" {
		return Meta{}, errors.New(
			"user-provided config does not include a storage path",
		)
	}
	if m.Storage.MaxValueSize == 0 {
		m.Storage.MaxValueSize = storage.DefaultMaxValueSize
	}
	c.Storage = m.Storage

	return c, nil
}

// Parse generates usable configurations from possibly arbitrary user input.
// An error indicates a problem with parsing or validation. The Reader r
// can be either JSON or YAML.
func Parse(r io.Reader) (*Meta, error) {
	var m Meta
	err := yaml.NewDecoder(r).Decode(&m)
	if err != nil {
		return &Meta{}, fmt.Errorf("can't read the config file as YAML: %v", err)
	}

	if m.Storage.StorageDirPath == "" {
		return &Meta{}, errors.New("must include a \"storage\" section")
	}

	return &m, nil
}

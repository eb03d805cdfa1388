package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Provider resolves a configuration key. ok is false when the key is unset.
type Provider interface {
	Lookup(key string) (value string, ok bool)
}

type EnvProvider struct{}

func (EnvProvider) Lookup(key string) (string, bool) {
	return os.LookupEnv(key)
}

type MapProvider map[string]string

func (m MapProvider) Lookup(key string) (string, bool) {
	v, ok := m[key]
	return v, ok
}

// Layered returns the first non-blank value in order.
type Layered []Provider

func (l Layered) Lookup(key string) (string, bool) {
	for _, p := range l {
		if v, ok := p.Lookup(key); ok && strings.TrimSpace(v) != "" {
			return v, true
		}
	}
	return "", false
}

// LoadFile reads a flat YAML mapping of environment-style keys, e.g.
//
//	APP_VERSION: 2.3.0
//	NODE_ENV: Staging
func LoadFile(path string) (MapProvider, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	// Nodes keep the scalar text as written, so 2.10 stays "2.10".
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	out := make(MapProvider, len(raw))
	for k, node := range raw {
		n := &node
		if n.Kind == yaml.AliasNode && n.Alias != nil {
			n = n.Alias
		}
		if n.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("config file %s: key %s: nested values not supported", path, k)
		}
		if n.Tag == "!!null" {
			continue
		}
		out[strings.ToUpper(k)] = n.Value
	}
	return out, nil
}

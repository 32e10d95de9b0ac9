package config

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/sandevgo/ragway/internal/core"
)

// Profile is a named provider selection from profiles.toml:
//
//	[profiles.work]
//	provider = "openai"
//	model = "gpt-4o-mini"
//	api_key = "sk-..."
type Profile struct {
	Provider string `toml:"provider"`
	Model    string `toml:"model"`
	APIKey   string `toml:"api_key"`
	APIURL   string `toml:"api_url"`
}

type Profiles struct {
	Profiles map[string]Profile `toml:"profiles"`
}

var ErrProfileNotFound = errors.New("profile not found")

// LoadProfiles reads path; a missing file yields an empty set.
func LoadProfiles(path string) (*Profiles, error) {
	p := &Profiles{}
	if _, err := toml.DecodeFile(path, p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Profiles{Profiles: map[string]Profile{}}, nil
		}
		return nil, fmt.Errorf("failed to parse profiles %s: %w", path, err)
	}
	if p.Profiles == nil {
		p.Profiles = map[string]Profile{}
	}
	return p, nil
}

func (p *Profiles) Get(name string) (core.ProviderConfig, error) {
	prof, ok := p.Profiles[name]
	if !ok {
		return core.ProviderConfig{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return core.ProviderConfig{
		Provider:   core.ProviderID(prof.Provider),
		Model:      prof.Model,
		Credential: prof.APIKey,
		Endpoint:   prof.APIURL,
	}, nil
}

func (p *Profiles) Names() []string {
	names := make([]string, 0, len(p.Profiles))
	for name := range p.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

package auth

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClientConfig describes one OAuth2 client in the clients file.
type ClientConfig struct {
	Name         string   `yaml:"name"`
	Provider     string   `yaml:"provider"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
	AuthURL      string   `yaml:"auth_url"`
	TokenURL     string   `yaml:"token_url"`
	UserInfoURL  string   `yaml:"user_info_url"`
	IDField      string   `yaml:"id_field"`
}

type clientsFile struct {
	Clients []ClientConfig `yaml:"clients"`
}

// ParseClients decodes client definitions. ${VAR} references are expanded
// from the environment so secrets stay out of the file.
func ParseClients(data []byte, opts ...OAuth2Option) ([]Client, error) {
	var f clientsFile
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &f); err != nil {
		return nil, errors.Join(ErrFailedToParseClients, err)
	}

	clients := make([]Client, 0, len(f.Clients))
	for i, cfg := range f.Clients {
		c, err := NewClientFromConfig(cfg, opts...)
		if err != nil {
			return nil, fmt.Errorf("%w: client #%d (%s): %w", ErrFailedToParseClients, i, cfg.Name, err)
		}
		clients = append(clients, c)
	}
	return clients, nil
}

// LoadClients reads client definitions from a YAML file.
func LoadClients(path string, opts ...OAuth2Option) ([]Client, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Join(ErrFailedToReadClients, err)
	}
	return ParseClients(data, opts...)
}

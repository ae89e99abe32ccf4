package resolver

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/Quantumben/devdb-vscode/internal/domain"
	"github.com/Quantumben/devdb-vscode/internal/secret"
)

// ConfigFileName is the workspace-relative declarative configuration
// artifact: a JSON list of connection descriptor objects.
const ConfigFileName = ".devdbrc"

// ConfigResolver reads an explicit descriptor list authored by the user.
// An absent or unparsable file means "no candidates", never an error.
type ConfigResolver struct {
	root    string
	secrets secret.Store
	log     zerolog.Logger
}

// NewConfigResolver creates a resolver bound to a workspace root.
// secrets resolves ${VAR} references in descriptor string fields.
func NewConfigResolver(root string, secrets secret.Store, log zerolog.Logger) *ConfigResolver {
	return &ConfigResolver{root: root, secrets: secrets, log: log}
}

func (r *ConfigResolver) Name() string { return "config" }

func (r *ConfigResolver) Resolve(ctx context.Context) []domain.ConnectionDescriptor {
	path := filepath.Join(r.root, ConfigFileName)
	data, err := os.ReadFile(path)
	if err != nil {
		r.log.Debug().Str("path", path).Msg("no config file in workspace")
		return nil
	}

	list, err := domain.ParseDescriptorList(data)
	if err != nil {
		r.log.Debug().Err(err).Str("path", path).Msg("config file is not a descriptor list")
		return nil
	}

	for i := range list {
		r.expand(&list[i])
	}
	return list
}

// expand resolves ${VAR} secret references so credentials can live outside
// the checked-in config file.
func (r *ConfigResolver) expand(d *domain.ConnectionDescriptor) {
	d.Path = secret.Expand(d.Path, r.secrets)
	d.Host = secret.Expand(d.Host, r.secrets)
	d.Port = domain.Port(secret.Expand(string(d.Port), r.secrets))
	d.Username = secret.Expand(d.Username, r.secrets)
	d.Password = secret.Expand(d.Password, r.secrets)
	d.Database = secret.Expand(d.Database, r.secrets)
}

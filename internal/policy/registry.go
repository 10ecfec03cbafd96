package policy

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"taskhub/internal/domain/models"
	"taskhub/internal/domain/services"
)

//go:embed policy.yaml
var defaultPolicy []byte

type policyFile struct {
	Operations map[string][]string `yaml:"operations"`
}

// Registry holds the allowed-role set of every guarded operation
type Registry struct {
	sets map[string]models.RoleSet
	mu   sync.RWMutex
}

// NewRegistry loads the embedded policy
func NewRegistry() (*Registry, error) {
	return Parse(defaultPolicy)
}

// Parse builds a registry from YAML. Every operation in
// services.GuardedOperations must be present and every role name must be known.
func Parse(data []byte) (*Registry, error) {
	sets, err := parseSets(data)
	if err != nil {
		return nil, err
	}
	return &Registry{sets: sets}, nil
}

// LoadFile builds a registry from a policy file on disk
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read policy: %w", err)
	}
	return Parse(data)
}

// Reload replaces every role set at once. On error the current policy stays.
func (r *Registry) Reload(data []byte) error {
	sets, err := parseSets(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.sets = sets
	r.mu.Unlock()
	return nil
}

func parseSets(data []byte) (map[string]models.RoleSet, error) {
	var file policyFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal policy: %w", err)
	}

	sets := make(map[string]models.RoleSet, len(file.Operations))
	for op, names := range file.Operations {
		set := models.NewRoleSet()
		for _, name := range names {
			role := models.ParseRole(name)
			if !role.Valid() {
				return nil, fmt.Errorf("operation %s: unknown role %q", op, name)
			}
			set[role] = struct{}{}
		}
		if len(set) == 0 {
			return nil, fmt.Errorf("operation %s: empty role set", op)
		}
		sets[op] = set
	}

	for _, op := range services.GuardedOperations {
		if _, ok := sets[op]; !ok {
			return nil, fmt.Errorf("policy is missing operation %s", op)
		}
	}

	return sets, nil
}

// Allowed returns the role set for an operation. Unknown operations get an
// empty set, which authorizes nobody.
func (r *Registry) Allowed(operation string) models.RoleSet {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if set, ok := r.sets[operation]; ok {
		return set
	}
	return models.NewRoleSet()
}

var _ services.AccessPolicy = (*Registry)(nil)

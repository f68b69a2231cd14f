// Package prompts holds the fixed instructions bound to each oracle role.
package prompts

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed roles.yaml
var defaultRoles []byte

// Role names one of the three oracle contracts.
type Role string

const (
	RoleProposer  Role = "proposer"
	RoleValidator Role = "validator"
	RoleFinalizer Role = "finalizer"
)

// RoleBook maps each role to its instructions. Built once at startup and
// never mutated; share it by pointer.
type RoleBook struct {
	Proposer  string `yaml:"proposer"`
	Validator string `yaml:"validator"`
	Finalizer string `yaml:"finalizer"`
}

// Instructions returns the text bound to role.
func (b *RoleBook) Instructions(role Role) (string, error) {
	switch role {
	case RoleProposer:
		return b.Proposer, nil
	case RoleValidator:
		return b.Validator, nil
	case RoleFinalizer:
		return b.Finalizer, nil
	}
	return "", fmt.Errorf("unknown oracle role %q", role)
}

// Default returns the built-in role instructions.
func Default() (*RoleBook, error) {
	return parse(defaultRoles)
}

// Load reads role instructions from path, or the built-in set when path is empty.
func Load(path string) (*RoleBook, error) {
	if strings.TrimSpace(path) == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load roles: read %q: %w", path, err)
	}

	book, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("load roles %q: %w", path, err)
	}
	return book, nil
}

func parse(data []byte) (*RoleBook, error) {
	var book RoleBook
	if err := yaml.Unmarshal(data, &book); err != nil {
		return nil, fmt.Errorf("parse roles: %w", err)
	}

	var missing []string
	for _, role := range []Role{RoleProposer, RoleValidator, RoleFinalizer} {
		if text, _ := book.Instructions(role); strings.TrimSpace(text) == "" {
			missing = append(missing, string(role))
		}
	}
	if len(missing) > 0 {
		return nil, errors.New("parse roles: missing instructions for " + strings.Join(missing, ", "))
	}

	return &book, nil
}

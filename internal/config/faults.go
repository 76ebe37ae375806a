package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/jcmexdev/foodme/internal/api/core/faults"
)

// LoadFaultProfile overlays the YAML file at path onto base. Keys absent
// from the file keep their base value; unknown keys are rejected.
//
//	inventory_failure_rate: 0.5
//	latency_delay: 1500ms
//	latency_mode: global
func LoadFaultProfile(path string, base faults.Policy) (faults.Policy, error) {
	f, err := os.Open(path)
	if err != nil {
		return faults.Policy{}, fmt.Errorf("config: open fault profile: %w", err)
	}
	defer f.Close()

	return ParseFaultProfile(f, base)
}

func ParseFaultProfile(r io.Reader, base faults.Policy) (faults.Policy, error) {
	policy := base
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&policy); err != nil && !errors.Is(err, io.EOF) {
		return faults.Policy{}, fmt.Errorf("config: decode fault profile: %w", err)
	}
	return policy, nil
}

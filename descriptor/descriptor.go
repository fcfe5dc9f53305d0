// Package descriptor loads deployment descriptors: YAML documents that
// declare contexts, their servlets and the URL patterns mapped to them.
//
//	contexts:
//	  - path: /dummy
//	    filters: [request-id, access-log, recovery]
//	    servlets:
//	      - name: Mapping
//	        mappings: ["/mapping", "*.test"]
//	        params:
//	          kind: report
//
// Descriptors are validated on load. Build turns a descriptor into a started
// *container.Host; the handlers themselves come from a HandlerFactory.
package descriptor

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/vitalvas/servlet/mapping"
)

// ErrInvalidDescriptor is returned when a descriptor fails validation.
var ErrInvalidDescriptor = errors.New("invalid deployment descriptor")

// Filter names accepted in Context.Filters.
const (
	FilterRequestID = "request-id"
	FilterAccessLog = "access-log"
	FilterRecovery  = "recovery"
)

// Descriptor is the root of a deployment descriptor.
type Descriptor struct {
	Contexts []Context `yaml:"contexts" validate:"required,min=1,unique=Path,dive"`
}

// Context declares one routable unit.
type Context struct {
	// Path is the base path; empty for the root context.
	Path string `yaml:"path" validate:"contextpath"`

	// Filters lists the middleware applied to direct requests, in order.
	Filters []string `yaml:"filters,omitempty" validate:"unique,dive,oneof=request-id access-log recovery"`

	Servlets []Servlet `yaml:"servlets" validate:"unique=Name,dive"`
}

// Servlet declares a named handler and the patterns mapped to it.
type Servlet struct {
	Name     string            `yaml:"name" validate:"required"`
	Mappings []string          `yaml:"mappings,omitempty" validate:"unique,dive,urlpattern"`
	Params   map[string]string `yaml:"params,omitempty"`
}

// Registrations returns the pattern registrations of the context.
func (c Context) Registrations() []mapping.Registration {
	var regs []mapping.Registration
	for _, s := range c.Servlets {
		for _, p := range s.Mappings {
			regs = append(regs, mapping.Registration{Pattern: p, Handler: s.Name})
		}
	}
	return regs
}

// Load decodes and validates a descriptor. Unknown fields are rejected.
func Load(r io.Reader) (*Descriptor, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Descriptor
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%w: empty document", ErrInvalidDescriptor)
		}
		return nil, fmt.Errorf("decode descriptor: %w", err)
	}

	if err := Validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadFile loads the descriptor stored at path.
func LoadFile(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	d, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Marshal encodes the descriptor as YAML.
func (d *Descriptor) Marshal() ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(d); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

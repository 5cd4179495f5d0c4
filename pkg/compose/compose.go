// Package compose reads and checks container-orchestration (compose) files.
// It understands the subset of the format the deployment descriptor of this
// repository uses, in both short and long syntax.
package compose

import (
	"fmt"
	"radiomirchi/pkg/serrors"
	"slices"

	"gopkg.in/yaml.v3"
)

// File is a parsed compose file.
type File struct {
	Version  string              `yaml:"version,omitempty"`
	Services map[string]*Service `yaml:"services"`
	// Volumes are the top-level named volumes. A volume declared with no
	// options has a nil value.
	Volumes map[string]*Volume `yaml:"volumes,omitempty"`
}

// Service is a single container definition.
type Service struct {
	// Name is the key of the service in the services mapping.
	Name string `yaml:"-"`

	Image       string        `yaml:"image,omitempty"`
	Build       *Build        `yaml:"build,omitempty"`
	Ports       []Port        `yaml:"ports,omitempty"`
	Volumes     []VolumeMount `yaml:"volumes,omitempty"`
	Environment Environment   `yaml:"environment,omitempty"`
	EnvFile     StringList    `yaml:"env_file,omitempty"`
	DependsOn   DependsOn     `yaml:"depends_on,omitempty"`
}

// Build is the build section of a service.
type Build struct {
	Context    string `yaml:"context,omitempty"`
	Dockerfile string `yaml:"dockerfile,omitempty"`
}

// Volume is a top-level named volume declaration.
type Volume struct {
	Driver   string `yaml:"driver,omitempty"`
	External bool   `yaml:"external,omitempty"`
}

// Port is a port mapping of a service.
type Port struct {
	// Raw is the mapping as written, used in validation messages.
	Raw       string
	HostIP    string
	Host      string
	Container string
	Protocol  string
}

// Mount types.
const (
	MountVolume = "volume"
	MountBind   = "bind"
)

// VolumeMount is a volume or bind mount of a service.
type VolumeMount struct {
	Type     string
	Source   string
	Target   string
	ReadOnly bool
}

// Named reports whether the mount refers to a named volume.
func (m VolumeMount) Named() bool { return m.Type == MountVolume && m.Source != "" }

// Environment maps variable names to values. Variables declared without a
// value map to an empty string.
type Environment map[string]string

// StringList accepts a single string or a list of strings.
type StringList []string

// Dependency is the condition a service waits for on one of its dependencies.
type Dependency struct {
	Condition string `yaml:"condition,omitempty"`
}

// DependsOn maps dependency names to their start condition.
type DependsOn map[string]Dependency

// Names returns the dependency names sorted.
func (d DependsOn) Names() []string {
	names := make([]string, 0, len(d))
	for n := range d {
		names = append(names, n)
	}
	slices.Sort(names)

	return names
}

// Parse decodes a compose file. It does not validate it.
func Parse(data []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not parse compose file")
	}
	for name, svc := range f.Services {
		if svc == nil {
			svc = &Service{}
			f.Services[name] = svc
		}
		svc.Name = name
	}

	return &f, nil
}

// ServiceNames returns the service names sorted.
func (f *File) ServiceNames() []string {
	names := make([]string, 0, len(f.Services))
	for n := range f.Services {
		names = append(names, n)
	}
	slices.Sort(names)

	return names
}

// Service returns the named service or nil.
func (f *File) Service(name string) *Service {
	return f.Services[name]
}

// VolumeReferences returns the services mounting the named volume, one
// entry per mount, in service name order.
func (f *File) VolumeReferences(name string) []string {
	var refs []string
	for _, svcName := range f.ServiceNames() {
		for _, m := range f.Services[svcName].Volumes {
			if m.Named() && m.Source == name {
				refs = append(refs, svcName)
			}
		}
	}

	return refs
}

// Env returns the declared environment of the service. Variables loaded
// from env_file are not included.
func (s *Service) Env() map[string]string {
	env := make(map[string]string, len(s.Environment))
	for k, v := range s.Environment {
		env[k] = v
	}

	return env
}

func (p Port) String() string {
	if p.Raw != "" {
		return p.Raw
	}
	s := p.Container
	if p.Host != "" {
		s = p.Host + ":" + s
	}
	if p.HostIP != "" {
		s = p.HostIP + ":" + s
	}
	if p.Protocol != "" {
		s += "/" + p.Protocol
	}

	return s
}

func (m VolumeMount) String() string {
	if m.Source == "" {
		return m.Target
	}
	s := fmt.Sprintf("%s:%s", m.Source, m.Target)
	if m.ReadOnly {
		s += ":ro"
	}

	return s
}

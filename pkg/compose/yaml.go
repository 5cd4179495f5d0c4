package compose

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML accepts `build: <context>` and the long mapping form.
func (b *Build) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		b.Context = value.Value

		return nil
	}

	type plain Build

	return value.Decode((*plain)(b))
}

// UnmarshalYAML accepts a list of NAME=value strings or a mapping.
func (e *Environment) UnmarshalYAML(value *yaml.Node) error {
	env := Environment{}
	switch value.Kind {
	case yaml.SequenceNode:
		for _, item := range value.Content {
			k, v, _ := strings.Cut(item.Value, "=")
			env[k] = v
		}
	case yaml.MappingNode:
		for i := 0; i+1 < len(value.Content); i += 2 {
			v := value.Content[i+1]
			if v.ShortTag() == "!!null" {
				env[value.Content[i].Value] = ""

				continue
			}
			env[value.Content[i].Value] = v.Value
		}
	default:
		return fmt.Errorf("line %d: environment must be a list or a mapping", value.Line)
	}
	*e = env

	return nil
}

// UnmarshalYAML accepts a single string or a list of strings.
func (l *StringList) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*l = StringList{value.Value}

		return nil
	}

	var items []string
	if err := value.Decode(&items); err != nil {
		return err
	}
	*l = items

	return nil
}

// UnmarshalYAML accepts a list of service names or a mapping of names to
// conditions. List entries wait for service_started.
func (d *DependsOn) UnmarshalYAML(value *yaml.Node) error {
	deps := DependsOn{}
	switch value.Kind {
	case yaml.SequenceNode:
		for _, item := range value.Content {
			deps[item.Value] = Dependency{Condition: "service_started"}
		}
	case yaml.MappingNode:
		var m map[string]Dependency
		if err := value.Decode(&m); err != nil {
			return err
		}
		for k, v := range m {
			if v.Condition == "" {
				v.Condition = "service_started"
			}
			deps[k] = v
		}
	default:
		return fmt.Errorf("line %d: depends_on must be a list or a mapping", value.Line)
	}
	*d = deps

	return nil
}

// UnmarshalYAML accepts "[ip:][host:]container[/protocol]" strings, bare
// numbers and the long mapping form.
func (p *Port) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*p = parsePort(value.Value)

		return nil
	}

	var long struct {
		Target    string `yaml:"target"`
		Published string `yaml:"published"`
		HostIP    string `yaml:"host_ip"`
		Protocol  string `yaml:"protocol"`
	}
	if err := value.Decode(&long); err != nil {
		return err
	}
	*p = Port{HostIP: long.HostIP, Host: long.Published, Container: long.Target, Protocol: long.Protocol}

	return nil
}

func parsePort(raw string) Port {
	p := Port{Raw: raw}
	spec := raw
	if before, proto, ok := strings.Cut(spec, "/"); ok {
		spec, p.Protocol = before, proto
	}

	// an IPv6 host ip is bracketed, so the last two colons separate the ports
	parts := strings.Split(spec, ":")
	switch n := len(parts); {
	case n == 1:
		p.Container = parts[0]
	case n == 2:
		p.Host, p.Container = parts[0], parts[1]
	default:
		p.HostIP = strings.Join(parts[:n-2], ":")
		p.Host, p.Container = parts[n-2], parts[n-1]
	}

	return p
}

// UnmarshalYAML accepts "source:target[:mode]", a bare target (anonymous
// volume) and the long mapping form.
func (m *VolumeMount) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		*m = parseVolumeMount(value.Value)

		return nil
	}

	var long struct {
		Type     string `yaml:"type"`
		Source   string `yaml:"source"`
		Target   string `yaml:"target"`
		ReadOnly bool   `yaml:"read_only"`
	}
	if err := value.Decode(&long); err != nil {
		return err
	}
	*m = VolumeMount{Type: long.Type, Source: long.Source, Target: long.Target, ReadOnly: long.ReadOnly}
	if m.Type == "" {
		m.Type = mountType(m.Source)
	}

	return nil
}

func parseVolumeMount(raw string) VolumeMount {
	parts := strings.Split(raw, ":")
	if len(parts) == 1 {
		return VolumeMount{Type: MountVolume, Target: parts[0]}
	}

	m := VolumeMount{Source: parts[0], Target: parts[1], Type: mountType(parts[0])}
	if len(parts) > 2 {
		for _, opt := range strings.Split(parts[2], ",") {
			if opt == "ro" {
				m.ReadOnly = true
			}
		}
	}

	return m
}

// mountType tells bind mounts (paths) from named volumes.
func mountType(source string) string {
	if strings.HasPrefix(source, ".") || strings.HasPrefix(source, "/") ||
		strings.HasPrefix(source, "~") || strings.Contains(source, "/") {
		return MountBind
	}

	return MountVolume
}

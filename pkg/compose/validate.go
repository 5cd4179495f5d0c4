package compose

import (
	"errors"
	"fmt"
	"net"
	"radiomirchi/pkg/serrors"
	"regexp"
	"strconv"
	"strings"
)

var versionRe = regexp.MustCompile(`^[23](\.\d+){0,2}$`)

// Validate checks the file for problems a container runtime would reject.
// All problems are reported, joined, as a BAD_REQUEST error.
func (f *File) Validate() error {
	var errs []error
	if f.Version != "" && !versionRe.MatchString(f.Version) {
		errs = append(errs, fmt.Errorf("unsupported version %q", f.Version))
	}
	if len(f.Services) == 0 {
		errs = append(errs, errors.New("no services declared"))
	}

	missingDeps := false
	for _, name := range f.ServiceNames() {
		svc := f.Services[name]
		if svc.Image == "" && svc.Build == nil {
			errs = append(errs, fmt.Errorf("service %q: image or build is required", name))
		}
		for _, dep := range svc.DependsOn.Names() {
			if _, ok := f.Services[dep]; !ok {
				missingDeps = true
				errs = append(errs, fmt.Errorf("service %q: depends on undefined service %q", name, dep))
			}
		}
		for _, p := range svc.Ports {
			if err := p.validate(); err != nil {
				errs = append(errs, fmt.Errorf("service %q: %w", name, err))
			}
		}
		for _, m := range svc.Volumes {
			if m.Target == "" {
				errs = append(errs, fmt.Errorf("service %q: volume %q has no target", name, m))

				continue
			}
			if !m.Named() {
				continue
			}
			if _, ok := f.Volumes[m.Source]; !ok {
				errs = append(errs, fmt.Errorf("service %q: volume %q is not declared", name, m.Source))
			}
		}
	}
	if !missingDeps {
		if _, err := f.StartupOrder(); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return serrors.Wrap(serrors.ErrBadRequest, errors.Join(errs...), "invalid compose file")
	}

	return nil
}

func (p Port) validate() error {
	if p.Protocol != "" && p.Protocol != "tcp" && p.Protocol != "udp" && p.Protocol != "sctp" {
		return fmt.Errorf("port %q: unknown protocol %q", p, p.Protocol)
	}
	if p.HostIP != "" && net.ParseIP(strings.Trim(p.HostIP, "[]")) == nil {
		return fmt.Errorf("port %q: invalid host ip %q", p, p.HostIP)
	}
	if p.Host != "" {
		if err := validatePortRange(p.Host); err != nil {
			return fmt.Errorf("port %q: host %w", p, err)
		}
	}
	if err := validatePortRange(p.Container); err != nil {
		return fmt.Errorf("port %q: container %w", p, err)
	}

	return nil
}

// validatePortRange accepts "N" or "N-M" with 1 <= N <= M <= 65535.
func validatePortRange(s string) error {
	lo, hi, isRange := strings.Cut(s, "-")
	from, err := portNumber(lo)
	if err != nil {
		return err
	}
	if !isRange {
		return nil
	}
	to, err := portNumber(hi)
	if err != nil {
		return err
	}
	if to < from {
		return fmt.Errorf("port range %q is reversed", s)
	}

	return nil
}

func portNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > 65535 {
		return 0, fmt.Errorf("port %q is not a number between 1 and 65535", s)
	}

	return n, nil
}

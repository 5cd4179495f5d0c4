package compose

import (
	"fmt"
	"slices"
	"strings"
)

// StartupOrder returns the service names so that every service comes after
// the services it depends on. Services that could start at the same time
// are ordered by name.
func (f *File) StartupOrder() ([]string, error) {
	indegree := make(map[string]int, len(f.Services))
	dependents := make(map[string][]string, len(f.Services))
	for _, name := range f.ServiceNames() {
		indegree[name] += 0
		for _, dep := range f.Services[name].DependsOn.Names() {
			if _, ok := f.Services[dep]; !ok {
				return nil, fmt.Errorf("service %q depends on undefined service %q", name, dep)
			}
			indegree[name]++
			dependents[dep] = append(dependents[dep], name)
		}
	}

	var ready []string
	for name, n := range indegree {
		if n == 0 {
			ready = append(ready, name)
		}
	}

	order := make([]string, 0, len(f.Services))
	for len(ready) > 0 {
		slices.Sort(ready)
		next := ready[0]
		ready = ready[1:]
		order = append(order, next)

		for _, d := range dependents[next] {
			indegree[d]--
			if indegree[d] == 0 {
				ready = append(ready, d)
			}
		}
	}

	if len(order) != len(f.Services) {
		var cyclic []string
		for _, name := range f.ServiceNames() {
			if indegree[name] > 0 {
				cyclic = append(cyclic, name)
			}
		}

		return nil, fmt.Errorf("dependency cycle between services %s", strings.Join(cyclic, ", "))
	}

	return order, nil
}

package core

import (
	"fmt"
	"strings"
)

// StatusPolicy decides which status changes an order may make.
// The zero value allows any active status to follow any other.
type StatusPolicy struct {
	allowed map[string]map[string]bool
}

// ParseStatusPolicy reads "from->to,from->to". Status names are compared
// case-insensitively. An empty string yields the permissive policy.
func ParseStatusPolicy(transitions string) (StatusPolicy, error) {
	transitions = strings.TrimSpace(transitions)
	if transitions == "" {
		return StatusPolicy{}, nil
	}
	p := StatusPolicy{allowed: make(map[string]map[string]bool)}
	for _, pair := range strings.Split(transitions, ",") {
		from, to, ok := strings.Cut(strings.TrimSpace(pair), "->")
		from, to = normalizeStatus(from), normalizeStatus(to)
		if !ok || from == "" || to == "" {
			return StatusPolicy{}, fmt.Errorf("invalid status transition %q: want from->to", pair)
		}
		if p.allowed[from] == nil {
			p.allowed[from] = make(map[string]bool)
		}
		p.allowed[from][to] = true
	}
	return p, nil
}

// Strict reports whether a transition table is in force.
func (p StatusPolicy) Strict() bool { return p.allowed != nil }

// Allows reports whether an order in status from may move to status to.
// Staying in the same status is always allowed.
func (p StatusPolicy) Allows(from, to string) bool {
	from, to = normalizeStatus(from), normalizeStatus(to)
	if !p.Strict() || from == to {
		return true
	}
	return p.allowed[from][to]
}

func normalizeStatus(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

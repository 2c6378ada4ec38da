package narration

import (
	"sort"
	"strings"
)

var priority = map[string]int{
	"openai": 0,
	"groq":   1,
	"gemini": 2,
}

func rank(name string) int {
	if p, ok := priority[name]; ok {
		return p
	}
	return len(priority)
}

// Selection is the request-scoped choice of narration provider. It is never
// shared between requests.
type Selection struct {
	order []Generator
	idx   int
}

// NewSelection orders the available generators by priority (openai, groq,
// gemini, then any others). A preferred name other than "" or "auto" moves
// that generator to the front.
func NewSelection(generators []Generator, preferred string) *Selection {
	order := make([]Generator, 0, len(generators))
	for _, g := range generators {
		if g != nil && g.Available() {
			order = append(order, g)
		}
	}
	sort.SliceStable(order, func(i, j int) bool {
		return rank(order[i].Name()) < rank(order[j].Name())
	})

	preferred = strings.ToLower(strings.TrimSpace(preferred))
	if preferred != "" && preferred != "auto" {
		for i, g := range order {
			if g.Name() == preferred {
				order = append([]Generator{g}, append(order[:i:i], order[i+1:]...)...)
				break
			}
		}
	}
	return &Selection{order: order}
}

// Current returns the selected generator, or nil when none is available.
func (s *Selection) Current() Generator {
	if s.idx >= len(s.order) {
		return nil
	}
	return s.order[s.idx]
}

// Next switches to the next provider, excluding the current one. It reports
// false when there is no other provider to switch to.
func (s *Selection) Next() bool {
	if s.idx+1 >= len(s.order) {
		return false
	}
	s.idx++
	return true
}

// Names lists the providers in selection order.
func (s *Selection) Names() []string {
	names := make([]string, len(s.order))
	for i, g := range s.order {
		names[i] = g.Name()
	}
	return names
}

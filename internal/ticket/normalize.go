package ticket

import (
	"fmt"
	"regexp"
	"strings"
)

// Section headings the readiness checklist expects, in template order.
const (
	SectionGoal        = "Goal"
	SectionDeliverable = "Human-verifiable deliverable"
	SectionAcceptance  = "Acceptance criteria"
	SectionConstraints = "Constraints"
	SectionNonGoals    = "Non-goals"
)

var canonicalSections = []string{
	SectionGoal,
	SectionDeliverable,
	SectionAcceptance,
	SectionConstraints,
	SectionNonGoals,
}

// headingSeparators collapses space/hyphen runs so "Non Goals",
// "non-goals", and "Non-goals:" all resolve to the same key.
var headingSeparators = regexp.MustCompile(`[\s-]+`)

func headingKey(s string) string {
	s = strings.TrimSuffix(strings.TrimSpace(s), ":")
	return strings.ToLower(strings.TrimSpace(headingSeparators.ReplaceAllString(s, " ")))
}

var sectionLookup = func() map[string]string {
	m := make(map[string]string, len(canonicalSections))
	for _, s := range canonicalSections {
		m[headingKey(s)] = s
	}
	return m
}()

// titleIDPattern strips a leading ticket identifier and its separator
// from a title line, so normalization can replace a stale id.
var titleIDPattern = regexp.MustCompile(`^(?:[A-Za-z][A-Za-z0-9]*-)?[0-9]{1,9}\s*(?:—|–|-|:)\s*`)

// Normalize deterministically rewrites a ticket body: checklist
// section headings get their canonical casing and level, and — when
// displayID is known — the first level-1 heading becomes
// "# DISPLAYID — title". Normalizing an already-normalized body is a
// no-op, and no placeholder tokens are introduced.
//
// An empty displayID skips the title-line rewrite; creation runs one
// such pass before the ticket number is allocated, then a second pass
// with the allocated id.
func Normalize(body, displayID, title string) string {
	lines := strings.Split(body, "\n")
	inFence := false
	titleDone := displayID == ""

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		level, text, ok := splitHeading(trimmed)
		if !ok {
			continue
		}
		if !titleDone && level == 1 {
			rest := titleIDPattern.ReplaceAllString(strings.TrimSpace(text), "")
			if rest == "" {
				rest = title
			}
			lines[i] = fmt.Sprintf("# %s — %s", displayID, rest)
			titleDone = true
			continue
		}
		if canonical, ok := sectionLookup[headingKey(text)]; ok {
			lines[i] = "## " + canonical
		}
	}

	out := strings.Join(lines, "\n")
	if !titleDone {
		header := fmt.Sprintf("# %s — %s", displayID, title)
		if strings.TrimSpace(out) == "" {
			return header + "\n"
		}
		out = header + "\n\n" + out
	}
	return out
}

// splitHeading parses an ATX heading line into its level and text.
func splitHeading(line string) (level int, text string, ok bool) {
	i := 0
	for i < len(line) && line[i] == '#' {
		i++
	}
	if i == 0 || i > 6 || i == len(line) || line[i] != ' ' {
		return 0, "", false
	}
	return i, strings.TrimSpace(line[i:]), true
}

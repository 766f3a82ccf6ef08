package ticket

import (
	"regexp"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

// CheckItem identifies one entry of the Definition of Ready checklist.
type CheckItem string

const (
	CheckGoal         CheckItem = "goal"
	CheckDeliverable  CheckItem = "deliverable"
	CheckAcceptance   CheckItem = "acceptance-criteria"
	CheckScopeBounds  CheckItem = "scope-bounds"
	CheckPlaceholders CheckItem = "placeholders"
)

// ReadinessResult reports the Definition of Ready evaluation for one
// ticket body. Ready is true only when every checklist item passes.
type ReadinessResult struct {
	Ready        bool               `json:"ready"`
	MissingItems []string           `json:"missing_items,omitempty"`
	Checklist    map[CheckItem]bool `json:"checklist"`
}

// checklistOrder fixes the order and wording of MissingItems.
var checklistOrder = []struct {
	check   CheckItem
	missing string
}{
	{CheckGoal, `a non-empty "Goal" section`},
	{CheckDeliverable, `a non-empty "Human-verifiable deliverable" section`},
	{CheckAcceptance, `an "Acceptance criteria" section with at least one checkbox line ("- [ ] ...")`},
	{CheckScopeBounds, `"Constraints" and "Non-goals" sections`},
	{CheckPlaceholders, `no unresolved placeholder tokens`},
}

// The parser is built once and shared: its configuration never
// changes, and goldmark parsers keep per-parse state in the reader.
var (
	markdownParserInstance goldmark.Markdown
	markdownParserOnce     sync.Once
)

func markdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParserInstance = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		)
	})
	return markdownParserInstance
}

// EvaluateReadiness runs the Definition of Ready checklist over a
// ticket body. It is a pure function: evaluating the same body always
// yields the same result, and nothing is mutated.
func EvaluateReadiness(body string) ReadinessResult {
	sections := scanSections(body)

	checklist := map[CheckItem]bool{
		CheckGoal:         sections[SectionGoal].hasContent,
		CheckDeliverable:  sections[SectionDeliverable].hasContent,
		CheckAcceptance:   sections[SectionAcceptance].present && sections[SectionAcceptance].hasCheckbox,
		CheckScopeBounds:  sections[SectionConstraints].present && sections[SectionNonGoals].present,
		CheckPlaceholders: len(Placeholders(body)) == 0,
	}

	res := ReadinessResult{Ready: true, Checklist: checklist}
	for _, item := range checklistOrder {
		if !checklist[item.check] {
			res.Ready = false
			res.MissingItems = append(res.MissingItems, item.missing)
		}
	}
	return res
}

type sectionInfo struct {
	present     bool
	hasContent  bool
	hasCheckbox bool
}

// scanSections walks the markdown AST once and records, per canonical
// section, whether its heading exists, whether any non-heading block
// with text follows it before the next heading, and whether it
// contains a GFM task checkbox.
func scanSections(body string) map[string]sectionInfo {
	source := []byte(body)
	doc := markdownParser().Parser().Parse(text.NewReader(source))

	sections := make(map[string]sectionInfo, len(canonicalSections))
	current := ""

	for node := doc.FirstChild(); node != nil; node = node.NextSibling() {
		if h, ok := node.(*ast.Heading); ok {
			current = ""
			if canonical, ok := sectionLookup[headingKey(nodeText(h, source))]; ok {
				current = canonical
				info := sections[canonical]
				info.present = true
				sections[canonical] = info
			}
			continue
		}
		if current == "" {
			continue
		}
		info := sections[current]
		if strings.TrimSpace(nodeText(node, source)) != "" {
			info.hasContent = true
		}
		if hasTaskCheckbox(node) {
			info.hasCheckbox = true
		}
		sections[current] = info
	}
	return sections
}

// nodeText concatenates the plain text under a node.
func nodeText(n ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := child.(type) {
		case *ast.Text:
			sb.Write(t.Segment.Value(source))
		case *ast.String:
			sb.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}

func hasTaskCheckbox(n ast.Node) bool {
	found := false
	_ = ast.Walk(n, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if entering {
			if _, ok := child.(*extast.TaskCheckBox); ok {
				found = true
				return ast.WalkStop, nil
			}
		}
		return ast.WalkContinue, nil
	})
	return found
}

// --- Bullet auto-fix ---

var (
	bulletPattern   = regexp.MustCompile(`^(\s*)[-*+]\s+(.*)$`)
	checkboxPattern = regexp.MustCompile(`^\s*[-*+]\s+\[[ xX]\]`)
)

// RewriteBulletsAsCheckboxes converts plain bullet lines inside the
// Acceptance criteria section into unchecked task checkboxes. Lines
// that already carry a checkbox, and everything outside the section,
// are left alone. Returns the rewritten body and whether anything
// changed; callers decide whether to keep the rewrite.
func RewriteBulletsAsCheckboxes(body string) (string, bool) {
	lines := strings.Split(body, "\n")
	inSection := false
	inFence := false
	changed := false

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if _, text, ok := splitHeading(trimmed); ok {
			inSection = sectionLookup[headingKey(text)] == SectionAcceptance
			continue
		}
		if !inSection || checkboxPattern.MatchString(line) {
			continue
		}
		if m := bulletPattern.FindStringSubmatch(line); m != nil && strings.TrimSpace(m[2]) != "" {
			lines[i] = m[1] + "- [ ] " + m[2]
			changed = true
		}
	}

	if !changed {
		return body, false
	}
	return strings.Join(lines, "\n"), true
}

package ticket

// BodyTemplate is the canonical ticket body. Every angle-bracket
// token must be replaced with real content before the body can be
// persisted — the placeholder validator rejects bodies that still
// contain one. The section headings are exactly what the Definition
// of Ready checklist looks for.
const BodyTemplate = `# <id> — <title>

## Goal

<goal>

## Human-verifiable deliverable

<deliverable>

## Acceptance criteria

- [ ] <AC 1>

## Constraints

<constraints>

## Non-goals

<non-goals>
`

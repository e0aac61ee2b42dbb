package asm

import (
	"regexp"
	"strings"
)

// lineKind tags which grammar alternative a source line matched
// (§4.6's "[label ':'] [directive | instruction] [';' comment]").
type lineKind uint8

const (
	lineBlank lineKind = iota
	lineOrg
	lineByte
	lineWord
	lineInstruction
)

// operandForm tags which of the §4.6 operand-form table rows an
// instruction line's operand text matched.
type operandForm uint8

const (
	formNone operandForm = iota
	formImmediate
	formIndirect
	formIndexedIndirectX // (E,X)
	formIndirectIndexedY // (E),Y
	formIndexedX         // E,X
	formIndexedY         // E,Y
	formPlain            // E
)

// parsedLine is one source line broken into its grammar components.
// Expressions are kept as raw, untrimmed-of-prefix text; evalExpr does
// the numeric/identifier work.
type parsedLine struct {
	label string
	kind  lineKind

	// lineOrg
	orgExpr string

	// lineByte / lineWord
	exprs []string

	// lineInstruction
	mnemonic string
	form     operandForm
	expr     string
}

// The line grammar is matched as a sequence of regex families, tried
// in the order a real assembler's line scanner would try them: strip
// the label and comment first, then classify what remains as a
// directive or one of the instruction operand forms.
var (
	reLabel  = regexp.MustCompile(`^([A-Za-z]\w*)\s*:\s*(.*)$`)
	reOrg    = regexp.MustCompile(`(?i)^\.ORG\s+(.+)$`)
	reOrgAlt = regexp.MustCompile(`^\*\s*=\s*(.+)$`)
	reByte   = regexp.MustCompile(`(?i)^(?:\.BYTE|DCB)\s+(.+)$`)
	reWord   = regexp.MustCompile(`(?i)^\.WORD\s+(.+)$`)

	reMnemonic = regexp.MustCompile(`^([A-Za-z]{3})\s*(.*)$`)

	reImmediate        = regexp.MustCompile(`^#(.+)$`)
	reIndexedIndirectX = regexp.MustCompile(`^\((.+),\s*[Xx]\s*\)$`)
	reIndirectIndexedY = regexp.MustCompile(`^\((.+)\)\s*,\s*[Yy]$`)
	reIndirect         = regexp.MustCompile(`^\((.+)\)$`)
	reIndexedX         = regexp.MustCompile(`^(.+),\s*[Xx]$`)
	reIndexedY         = regexp.MustCompile(`^(.+),\s*[Yy]$`)
)

// parseLine classifies one source line, with the trailing comment (if
// any) already stripped by the caller.
func parseLine(text string) (parsedLine, bool) {
	var p parsedLine

	rest := strings.TrimSpace(text)
	if m := reLabel.FindStringSubmatch(rest); m != nil {
		p.label = m[1]
		rest = strings.TrimSpace(m[2])
	}

	if rest == "" {
		p.kind = lineBlank
		return p, true
	}

	if m := reOrg.FindStringSubmatch(rest); m != nil {
		p.kind = lineOrg
		p.orgExpr = strings.TrimSpace(m[1])
		return p, true
	}
	if m := reOrgAlt.FindStringSubmatch(rest); m != nil {
		p.kind = lineOrg
		p.orgExpr = strings.TrimSpace(m[1])
		return p, true
	}
	if m := reByte.FindStringSubmatch(rest); m != nil {
		p.kind = lineByte
		p.exprs = splitOperands(m[1])
		return p, true
	}
	if m := reWord.FindStringSubmatch(rest); m != nil {
		p.kind = lineWord
		p.exprs = splitOperands(m[1])
		return p, true
	}

	m := reMnemonic.FindStringSubmatch(rest)
	if m == nil {
		return p, false
	}
	p.kind = lineInstruction
	p.mnemonic = strings.ToUpper(m[1])
	operand := strings.TrimSpace(m[2])

	switch {
	case operand == "":
		p.form = formNone
	case reImmediate.MatchString(operand):
		p.form = formImmediate
		p.expr = strings.TrimSpace(reImmediate.FindStringSubmatch(operand)[1])
	case reIndexedIndirectX.MatchString(operand):
		p.form = formIndexedIndirectX
		p.expr = strings.TrimSpace(reIndexedIndirectX.FindStringSubmatch(operand)[1])
	case reIndirectIndexedY.MatchString(operand):
		p.form = formIndirectIndexedY
		p.expr = strings.TrimSpace(reIndirectIndexedY.FindStringSubmatch(operand)[1])
	case reIndirect.MatchString(operand):
		p.form = formIndirect
		p.expr = strings.TrimSpace(reIndirect.FindStringSubmatch(operand)[1])
	case reIndexedX.MatchString(operand):
		p.form = formIndexedX
		p.expr = strings.TrimSpace(reIndexedX.FindStringSubmatch(operand)[1])
	case reIndexedY.MatchString(operand):
		p.form = formIndexedY
		p.expr = strings.TrimSpace(reIndexedY.FindStringSubmatch(operand)[1])
	default:
		p.form = formPlain
		p.expr = operand
	}

	return p, true
}

// stripComment removes a trailing ';' comment; the grammar has no
// quoted strings, so the first ';' always starts one.
func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

func splitOperands(text string) []string {
	parts := strings.Split(text, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

package asm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bdwalton/mos6502/asmsym"
)

// Numeric literal forms recognized by an expression (§4.6): hex with a
// '$' sigil, binary with a '%' sigil, or bare decimal (optionally
// signed, for a branch's direct displacement literal).
var (
	reHex       = regexp.MustCompile(`^\$([0-9A-Fa-f]{1,4})$`)
	reBin       = regexp.MustCompile(`^%([01]{1,16})$`)
	reDecimal   = regexp.MustCompile(`^-?[0-9]{1,5}$`)
	reIdentExpr = regexp.MustCompile(`^[A-Za-z]\w*$`)
)

// evalExpr evaluates one §4.6 expression: an optional '<'/'>' prefix
// applied to a number or identifier. ok is false when the text matches
// none of the grammar's token forms (a syntax error at the caller's
// line).
func evalExpr(text string, symtab *asmsym.SymbolTable) (value asmsym.OperandValue, hasPrefix bool, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return asmsym.OperandValue{}, false, false
	}

	var prefix byte
	if text[0] == '<' || text[0] == '>' {
		prefix = text[0]
		hasPrefix = true
		text = strings.TrimSpace(text[1:])
	}

	switch {
	case reHex.MatchString(text):
		m := reHex.FindStringSubmatch(text)
		n, _ := strconv.ParseUint(m[1], 16, 32)
		value = asmsym.OperandValue{Kind: asmsym.Literal, Value: uint16(n)}
	case reBin.MatchString(text):
		m := reBin.FindStringSubmatch(text)
		n, _ := strconv.ParseUint(m[1], 2, 32)
		value = asmsym.OperandValue{Kind: asmsym.Literal, Value: uint16(n)}
	case reDecimal.MatchString(text):
		n, _ := strconv.ParseInt(text, 10, 32)
		value = asmsym.OperandValue{Kind: asmsym.Literal, Value: uint16(n)}
	case reIdentExpr.MatchString(text):
		if v, found := symtab.Get(text); found {
			value = asmsym.OperandValue{Kind: asmsym.Identifier, Value: v}
		} else {
			value = asmsym.OperandValue{Kind: asmsym.UndefinedIdentifier}
			return value, hasPrefix, true
		}
	default:
		return asmsym.OperandValue{}, false, false
	}

	if prefix != 0 {
		switch prefix {
		case '<':
			value.Value &= 0xFF
		case '>':
			value.Value = (value.Value >> 8) & 0xFF
		}
	}

	return value, hasPrefix, true
}

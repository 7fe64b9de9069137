/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package extractfx

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// field is one hoisted interpolation expression together with the position
// of the brace that opened it.
type field struct {
	line, col int
	expr      string
}

// literalPrefix is the run of letters immediately before an opening quote
// that belongs to the literal.
type literalPrefix struct {
	raw bool
	fx  byte   // 0, 'f' or 'x'
	enc string // "", "L", "U", "u" or "u8"
}

// takePrefix reclaims a literal prefix from the tail of the already-staged
// output: nearest the quote an optional R, then an optional f/F/x/X, then an
// optional encoding. Letters outside this set stay in the output as
// surrounding code, so the W of Wf"..." is ordinary source text.
func takePrefix(dst *bytes.Buffer) literalPrefix {
	var p literalPrefix
	b := dst.Bytes()
	i := len(b)
	if i > 0 && b[i-1] == 'R' {
		p.raw = true
		i--
	}
	if i > 0 {
		switch b[i-1] {
		case 'f', 'F':
			p.fx = 'f'
			i--
		case 'x', 'X':
			p.fx = 'x'
			i--
		}
	}
	if i > 0 {
		switch b[i-1] {
		case 'L', 'U':
			p.enc = string(b[i-1 : i])
			i--
		case 'u':
			p.enc = "u"
			i--
		case '8':
			if i > 1 && b[i-2] == 'u' {
				p.enc = "u8"
				i -= 2
			}
		}
	}
	dst.Truncate(i)
	return p
}

// literal rewrites the literal at the cursor into dst. For double-quoted
// literals the prefix letters already staged in dst are reclaimed first;
// character literals take no prefix and never interpolate.
func (r *rewriter) literal(dst *bytes.Buffer) error {
	term := r.ch()
	var p literalPrefix
	if term == '"' {
		p = takePrefix(dst)
	}
	text, err := r.scanLiteral(term, p)
	if err != nil {
		return err
	}
	dst.WriteString(text)
	return nil
}

// scanLiteral consumes a complete literal, cursor on the opening quote, and
// returns its rewritten text, leaving the cursor past the closing quote.
// Non-f/x literals are reassembled byte-identically.
func (r *rewriter) scanLiteral(term byte, p literalPrefix) (string, error) {
	r.pos++ // opening quote

	var lit bytes.Buffer // the rewritten literal, encoding and delimiters included
	lit.WriteString(p.enc)

	var rawPrefix string
	if p.raw {
		start := r.pos
		for r.ch() != '(' {
			switch c := r.ch(); {
			case c == 0:
				if !r.hasNL {
					return "", &EarlyEndError{"input ends inside a raw literal delimiter"}
				}
				return "", r.errAt("line ends inside a raw literal delimiter")
			case c == ')' || c == '\\' || c == '"' || isSpace(c):
				return "", r.errAt(fmt.Sprintf("invalid character %q in raw literal delimiter", c))
			}
			r.pos++
		}
		rawPrefix = r.line[start:r.pos]
		r.pos++ // the (
		lit.WriteString(`R"`)
		lit.WriteString(rawPrefix)
		lit.WriteByte('(')
	} else {
		lit.WriteByte(term)
	}

	var fields []field
body:
	for {
		if p.raw {
			if r.ch() == 0 {
				if !r.getLine() {
					return "", &EarlyEndError{"input ends inside a raw literal"}
				}
				lit.WriteByte('\n')
				continue
			}
			if r.ch() == ')' && r.rawEndAhead(rawPrefix) {
				lit.WriteByte(')')
				lit.WriteString(rawPrefix)
				r.pos += 1 + len(rawPrefix) // cursor on the closing quote
				break
			}
		} else {
			switch r.ch() {
			case '\\':
				lit.WriteByte('\\')
				r.pos++
				start := r.pos
				for {
					if r.ch() == 0 {
						// A continuation: keep the trailing spaces and the
						// newline, resume in the next physical line.
						lit.WriteString(r.line[start:])
						lit.WriteByte('\n')
						if !r.getLine() {
							return "", &EarlyEndError{`input ends with a \ last on a line inside a string literal`}
						}
						break
					}
					if !isSpace(r.ch()) {
						// An ordinary escape: the next character is copied
						// verbatim, whatever it is.
						r.pos = start
						lit.WriteByte(r.ch())
						r.pos++
						break
					}
					r.pos++
				}
				continue
			case term:
				break body
			case 0:
				return "", r.errAt("line ends inside a string literal")
			}
		}

		switch {
		case p.fx != 0 && r.ch() == '{':
			if r.at(1) == '{' { // escaped literal brace
				lit.WriteString("{{")
				r.pos += 2
				continue
			}
			fld := field{line: r.lineNo, col: r.pos + 1}
			r.pos++ // the {
			expr, err := r.insertExpr(p.raw)
			if err != nil {
				return "", err
			}
			if expr == "" {
				return "", r.errAt("empty expression field")
			}
			if core, ok := splitDebug(expr); ok {
				// Debug '=': the verbatim expression moves into the body,
				// the argument loses the '=' and what follows it.
				lit.WriteString(expr)
				expr = core
			}
			fld.expr = expr
			fields = append(fields, fld)
			lit.WriteByte('{')
			if r.ch() == ':' {
				lit.WriteByte(':')
				r.pos++
				if err := r.formatSpec(&lit, &fields, p.raw); err != nil {
					return "", err
				}
			}
			// insertExpr and formatSpec both stop on the closing brace
			lit.WriteByte('}')
			r.pos++
		case p.fx != 0 && r.ch() == '}':
			if r.at(1) != '}' {
				return "", r.errAt("a } in an f/x literal body must be doubled")
			}
			lit.WriteString("}}")
			r.pos += 2
		default:
			lit.WriteByte(r.ch())
			r.pos++
		}
	}

	lit.WriteByte(term) // the closing quote
	closeLine := r.lineNo
	r.pos++
	nextCol := r.pos + 1 // 1-based column of the byte after the literal

	return r.assemble(p, lit.String(), fields, closeLine, nextCol), nil
}

// rawEndAhead reports whether the cursor, on a ')', sits at the )prefix"
// terminator of the raw literal.
func (r *rewriter) rawEndAhead(prefix string) bool {
	rest := r.line[r.pos+1:]
	return strings.HasPrefix(rest, prefix) && len(rest) > len(prefix) && rest[len(prefix)] == '"'
}

// formatSpec copies the :format-spec tail verbatim up to the top-level },
// hoisting nested {width} fields as further arguments.
func (r *rewriter) formatSpec(lit *bytes.Buffer, fields *[]field, raw bool) error {
	for r.ch() != '}' {
		if r.ch() == 0 {
			if !raw {
				return r.errAt("line ends inside a format spec")
			}
			lit.WriteByte('\n')
			if !r.getLine() {
				return &EarlyEndError{"input ends inside a format spec in a raw literal"}
			}
			continue
		}
		if r.ch() == '{' { // nested width or precision field
			fld := field{line: r.lineNo, col: r.pos + 1}
			r.pos++
			expr, err := r.insertExpr(raw)
			if err != nil {
				return err
			}
			if expr == "" {
				return r.errAt("empty expression field")
			}
			if r.ch() != '}' {
				return r.errAt("a : is not allowed inside a nested width field")
			}
			fld.expr = expr
			*fields = append(*fields, fld)
			lit.WriteString("{}")
			r.pos++
			continue
		}
		lit.WriteByte(r.ch())
		r.pos++
	}
	return nil
}

// splitDebug recognizes the debug '=' suffix: an expression whose last
// non-whitespace byte is '='. It returns the argument expression with the
// '=' and everything after it stripped.
func splitDebug(expr string) (string, bool) {
	i := len(expr)
	for i > 0 && (isSpace(expr[i-1]) || expr[i-1] == '\n') {
		i--
	}
	if i == 0 || expr[i-1] != '=' {
		return expr, false
	}
	return expr[:i-1], true
}

// assemble builds the final rewritten text for one literal: the call prefix
// for f, the literal body, the hoisted arguments and, when requested, #line
// markers re-anchoring each argument at its original position.
func (r *rewriter) assemble(p literalPrefix, lit string, fields []field, closeLine, nextCol int) string {
	if p.fx == 0 {
		return lit
	}
	var out strings.Builder
	if p.fx == 'f' {
		name := r.cfg.FunctionName
		if strings.HasSuffix(name, "*") {
			name = name[:len(name)-1] + strconv.Itoa(len(fields))
		}
		out.WriteString(name)
		out.WriteByte('(')
	}
	out.WriteString(lit)
	for _, f := range fields {
		if r.cfg.LineDirectives {
			fmt.Fprintf(&out, "\n#line %d %q\n", f.line, r.cfg.SourcePath)
			out.WriteString(strings.Repeat(" ", max(0, f.col-2)))
		}
		out.WriteString(", ")
		out.WriteString(f.expr)
	}
	if r.cfg.LineDirectives && len(fields) > 0 {
		fmt.Fprintf(&out, "\n#line %d %q\n", closeLine, r.cfg.SourcePath)
		pad := nextCol - 1
		if p.fx == 'f' {
			pad-- // the closing paren takes one column
		}
		out.WriteString(strings.Repeat(" ", max(0, pad)))
	}
	if p.fx == 'f' {
		out.WriteByte(')')
	}
	return out.String()
}

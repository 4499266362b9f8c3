package patch

import (
	"fmt"
	"math"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
)

// Parse turns patch source into a Program. Parsing stops at the first
// syntax error; the returned diagnostics carry its source range.
func Parse(src []byte, filename string) (*Program, hcl.Diagnostics) {
	tokens, diags := hclsyntax.LexConfig(src, filename, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, diags
	}

	p := &parser{tokens: tokens}
	prog := &Program{Filename: filename, Source: src}
	for {
		p.skipTrivia()
		if p.current().Type == hclsyntax.TokenEOF {
			break
		}
		stmt, diag := p.statement()
		if diag != nil {
			return nil, hcl.Diagnostics{diag}
		}
		prog.Statements = append(prog.Statements, stmt)
	}
	return prog, nil
}

type parser struct {
	tokens hclsyntax.Tokens
	pos    int
}

func isTrivia(t hclsyntax.TokenType) bool {
	return t == hclsyntax.TokenNewline || t == hclsyntax.TokenComment
}

func (p *parser) skipTrivia() {
	for p.pos < len(p.tokens)-1 && isTrivia(p.tokens[p.pos].Type) {
		p.pos++
	}
}

// current returns the token at the cursor. The lexer always terminates the
// stream with TokenEOF, so the cursor never runs past the end.
func (p *parser) current() hclsyntax.Token {
	return p.tokens[p.pos]
}

// lookahead returns the first non-trivia token after the cursor.
func (p *parser) lookahead() hclsyntax.Token {
	for i := p.pos + 1; i < len(p.tokens); i++ {
		if !isTrivia(p.tokens[i].Type) {
			return p.tokens[i]
		}
	}
	return p.tokens[len(p.tokens)-1]
}

func (p *parser) advance() hclsyntax.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	p.skipTrivia()
	return tok
}

func (p *parser) statement() (*Statement, *hcl.Diagnostic) {
	tok := p.current()
	if tok.Type == hclsyntax.TokenIdent && p.lookahead().Type == hclsyntax.TokenEqual {
		p.advance() // name
		p.advance() // '='
		value, diag := p.expr()
		if diag != nil {
			return nil, diag
		}
		return &Statement{
			Target:      string(tok.Bytes),
			TargetRange: tok.Range,
			Value:       value,
			SrcRange:    hcl.RangeBetween(tok.Range, value.Range()),
		}, nil
	}

	value, diag := p.expr()
	if diag != nil {
		return nil, diag
	}
	return &Statement{Value: value, SrcRange: value.Range()}, nil
}

func (p *parser) expr() (Expr, *hcl.Diagnostic) {
	tok := p.current()
	switch tok.Type {
	case hclsyntax.TokenMinus:
		p.advance()
		num := p.current()
		if num.Type != hclsyntax.TokenNumberLit {
			return nil, syntaxError(num.Range, "Invalid negative literal", "A minus sign must be followed by a number.")
		}
		n, diag := p.number()
		if diag != nil {
			return nil, diag
		}
		n.Value = -n.Value
		n.SrcRange = hcl.RangeBetween(tok.Range, n.SrcRange)
		return n, nil
	case hclsyntax.TokenNumberLit:
		return p.number()
	case hclsyntax.TokenIdent:
		if p.lookahead().Type == hclsyntax.TokenOParen {
			return p.call()
		}
		p.advance()
		return &Ident{Name: string(tok.Bytes), SrcRange: tok.Range}, nil
	case hclsyntax.TokenEOF:
		return nil, syntaxError(tok.Range, "Unexpected end of patch", "An expression is required here.")
	default:
		return nil, syntaxError(tok.Range, "Invalid expression",
			fmt.Sprintf("Expected a number, a name or a call, found %q.", string(tok.Bytes)))
	}
}

func (p *parser) number() (*Number, *hcl.Diagnostic) {
	tok := p.advance()
	val, err := cty.ParseNumberVal(string(tok.Bytes))
	if err != nil {
		return nil, syntaxError(tok.Range, "Invalid number literal", err.Error())
	}
	f, _ := val.AsBigFloat().Float64()
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, syntaxError(tok.Range, "Invalid number literal",
			fmt.Sprintf("%s does not fit in a 64-bit float.", tok.Bytes))
	}
	return &Number{Value: f, SrcRange: tok.Range}, nil
}

func (p *parser) call() (*Call, *hcl.Diagnostic) {
	name := p.advance()
	open := p.advance() // '(' is guaranteed by lookahead
	c := &Call{Name: string(name.Bytes), NameRange: name.Range}

	if p.current().Type == hclsyntax.TokenCParen {
		closing := p.advance()
		c.SrcRange = hcl.RangeBetween(name.Range, closing.Range)
		return c, nil
	}

	for {
		arg, diag := p.expr()
		if diag != nil {
			return nil, diag
		}
		c.Args = append(c.Args, arg)

		tok := p.current()
		switch tok.Type {
		case hclsyntax.TokenComma:
			p.advance()
		case hclsyntax.TokenCParen:
			p.advance()
			c.SrcRange = hcl.RangeBetween(name.Range, tok.Range)
			return c, nil
		default:
			return nil, syntaxError(tok.Range, "Unclosed call",
				fmt.Sprintf("Expected ',' or ')' in call to %s opened on line %d.", c.Name, open.Range.Start.Line))
		}
	}
}

func syntaxError(rng hcl.Range, summary, detail string) *hcl.Diagnostic {
	return &hcl.Diagnostic{
		Severity: hcl.DiagError,
		Summary:  summary,
		Detail:   detail,
		Subject:  rng.Ptr(),
	}
}

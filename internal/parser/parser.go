// Package parser implements the recursive-descent builder (component
// C4) that consumes the descriptor grammar (spec §4.1) and emits a
// typetree.Node tree with layouts already composed via the ABI Oracle.
package parser

import (
	"io"
	"strings"

	"github.com/celix-project/dynitype/internal/abi"
	"github.com/celix-project/dynitype/internal/dfilog"
	"github.com/celix-project/dynitype/internal/errs"
	"github.com/celix-project/dynitype/internal/lexer"
	"github.com/celix-project/dynitype/internal/typetree"
)

// Options configures a parse. Oracle and Logger default to
// abi.DefaultOracle and dfilog.Nop when left zero.
type Options struct {
	Name     string
	ExtScope typetree.ReferenceScope
	Oracle   abi.Oracle
	Logger   dfilog.Logger
}

func (o Options) withDefaults() Options {
	if o.Oracle == nil {
		o.Oracle = abi.DefaultOracle{}
	}
	if o.Logger == nil {
		o.Logger = dfilog.Nop{}
	}
	return o
}

type parser struct {
	lex    *lexer.Lexer
	oracle abi.Oracle
	log    dfilog.Logger
	scope  typetree.ReferenceScope
}

// ParseStream parses a descriptor from r, consuming exactly one type
// (nested declarations plus one body) and leaving any trailer
// unconsumed.
func ParseStream(r io.Reader, opts Options) (*typetree.Node, error) {
	opts = opts.withDefaults()
	p := &parser{lex: lexer.New(r), oracle: opts.Oracle, log: opts.Logger, scope: opts.ExtScope}

	root, err := p.parseType(nil)
	if err != nil {
		p.log.Errorf("parse failed: %v", err)
		return nil, err
	}
	root.Name = opts.Name
	return root, nil
}

// ParseString parses a descriptor from a string and additionally
// requires that nothing but a trailing NUL or EOF follow the parsed
// body (spec §4.1's "fmemopen-style" entry rule).
func ParseString(s string, opts Options) (*typetree.Node, error) {
	opts = opts.withDefaults()
	p := &parser{lex: lexer.New(strings.NewReader(s)), oracle: opts.Oracle, log: opts.Logger, scope: opts.ExtScope}

	root, err := p.parseType(nil)
	if err != nil {
		p.log.Errorf("parse failed: %v", err)
		return nil, err
	}

	c, err := p.lex.Next()
	switch {
	case err == io.EOF:
		root.Name = opts.Name
		return root, nil
	case err != nil:
		typetree.Destroy(root)
		return nil, errs.Wrap(errs.CodeParseError, "reading trailer", err)
	case c == 0:
		root.Name = opts.Name
		return root, nil
	default:
		typetree.Destroy(root)
		return nil, errs.New(errs.CodeParseError, "trailing garbage %q after type", c)
	}
}

// parseType implements `type := nested* body`: zero or more nested
// declarations attached to the node being built, then its body.
func (p *parser) parseType(parent *typetree.Node) (*typetree.Node, error) {
	node := typetree.NewPending("", parent)

	for {
		c, err := p.lex.Peek()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errs.Wrap(errs.CodeParseError, "reading descriptor", err)
		}
		if c != 'T' {
			break
		}
		if _, err := p.lex.Next(); err != nil {
			return nil, errs.Wrap(errs.CodeParseError, "reading descriptor", err)
		}
		if err := p.parseNestedDecl(node); err != nil {
			typetree.Destroy(node)
			return nil, err
		}
	}

	if err := p.parseBody(node, node); err != nil {
		typetree.Destroy(node)
		return nil, err
	}
	return node, nil
}

// parseNestedDecl implements `nested := 'T' name '=' body ';'`. The
// placeholder is installed into owner's nested table before its body
// is parsed, so a self-referential body can find it by name.
func (p *parser) parseNestedDecl(owner *typetree.Node) error {
	name, err := p.readNonEmptyName("nested type name")
	if err != nil {
		return err
	}
	if err := p.expect('='); err != nil {
		return err
	}

	placeholder := typetree.NewPending(name, owner)
	owner.AddNested(name, placeholder)

	if err := p.parseBody(placeholder, owner); err != nil {
		return err
	}
	p.log.Debugf("declared nested type %q", name)
	return p.expect(';')
}

// parseBody implements the `body` production for target, which must
// already be linked into the tree (its parent pointer and any nested
// table are set). owner is the node whose scope name resolution walks
// from: target itself for a type's own body, the enclosing Complex
// for a field, and the declaring node for a nested declaration's body.
func (p *parser) parseBody(target, owner *typetree.Node) error {
	c, err := p.lex.Next()
	if err != nil {
		return errs.Wrap(errs.CodeParseError, "expected a type descriptor", err)
	}

	if prim, ok := abi.PrimitiveForDescriptor(c); ok {
		typetree.FinalizeSimple(target, prim, c, p.oracle)
		return nil
	}

	switch c {
	case 't':
		typetree.FinalizeText(target, p.oracle)
		return nil
	case 'L':
		return p.parseTypedRef(target, owner)
	case 'l':
		return p.parseRefByValue(target, owner)
	case '{':
		return p.parseComplex(target)
	case '[':
		return p.parseSequence(target)
	case '*':
		return p.parseAnonPointer(target)
	default:
		return errs.New(errs.CodeParseError, "unknown type descriptor %q", c)
	}
}

// parseTypedRef implements `'L' name ';'`: a TypedPointer wrapping an
// in-place Reference to a named type.
func (p *parser) parseTypedRef(target, owner *typetree.Node) error {
	ref, err := p.parseReference(target, owner)
	if err != nil {
		return err
	}
	typetree.FinalizeTypedPointer(target, ref, p.oracle)
	return nil
}

// parseRefByValue implements `'l' name ';'`: target itself becomes the
// Reference node.
func (p *parser) parseRefByValue(target, owner *typetree.Node) error {
	name, err := p.readNonEmptyName("reference name")
	if err != nil {
		return err
	}
	if err := p.expect(';'); err != nil {
		return err
	}
	resolved, err := typetree.Resolve(owner, name, p.scope)
	if err != nil {
		return err
	}
	typetree.FinalizeReference(target, resolved)
	return nil
}

// parseReference resolves `name ';'` and wraps the result in a fresh
// Reference node owned by target, for use inside a TypedPointer.
func (p *parser) parseReference(target, owner *typetree.Node) (*typetree.Node, error) {
	name, err := p.readNonEmptyName("reference name")
	if err != nil {
		return nil, err
	}
	if err := p.expect(';'); err != nil {
		return nil, err
	}
	resolved, err := typetree.Resolve(owner, name, p.scope)
	if err != nil {
		return nil, err
	}
	ref := typetree.NewPending("", target)
	typetree.FinalizeReference(ref, resolved)
	return ref, nil
}

// parseComplex implements `'{' body+ name+ '}'`: bodies are consumed
// until a space or '}', then one name per body, space-separated.
func (p *parser) parseComplex(target *typetree.Node) error {
	var fieldNodes []*typetree.Node
	for {
		c, err := p.lex.Peek()
		if err != nil {
			return errs.Wrap(errs.CodeParseError, "unterminated complex", err)
		}
		if c == ' ' || c == '}' {
			break
		}
		fn := typetree.NewPending("", target)
		if err := p.parseBody(fn, target); err != nil {
			return err
		}
		fieldNodes = append(fieldNodes, fn)
	}

	names := make([]string, len(fieldNodes))
	if len(fieldNodes) > 0 {
		if err := p.expect(' '); err != nil {
			return err
		}
		for i := range fieldNodes {
			name, err := p.readNonEmptyName("field name")
			if err != nil {
				return err
			}
			names[i] = name
			if i < len(fieldNodes)-1 {
				if err := p.expect(' '); err != nil {
					return err
				}
			}
		}
	}

	if err := p.expect('}'); err != nil {
		return errs.New(errs.CodeParseError, "unterminated complex: missing '}'")
	}

	fields := make([]typetree.Field, len(fieldNodes))
	for i, fn := range fieldNodes {
		fn.Name = names[i]
		fields[i] = typetree.Field{Name: names[i], Type: fn}
	}
	typetree.FinalizeComplex(target, fields, p.oracle)
	return nil
}

// parseSequence implements `'[' type`: exactly one child type follows
// and becomes the element.
func (p *parser) parseSequence(target *typetree.Node) error {
	elem, err := p.parseType(target)
	if err != nil {
		return err
	}
	typetree.FinalizeSequence(target, elem, p.oracle)
	return nil
}

// parseAnonPointer implements `'*' type`: a TypedPointer whose pointee
// is an anonymous body.
func (p *parser) parseAnonPointer(target *typetree.Node) error {
	pointee, err := p.parseType(target)
	if err != nil {
		return err
	}
	typetree.FinalizeTypedPointer(target, pointee, p.oracle)
	return nil
}

func (p *parser) expect(want byte) error {
	c, err := p.lex.Next()
	if err != nil {
		return errs.New(errs.CodeParseError, "expected %q, got EOF", want)
	}
	if c != want {
		return errs.New(errs.CodeParseError, "expected %q, got %q", want, c)
	}
	return nil
}

func (p *parser) readNonEmptyName(what string) (string, error) {
	name, err := p.lex.ReadName()
	if err != nil {
		return "", errs.Wrap(errs.CodeParseError, "expected "+what, err)
	}
	if name == "" {
		return "", errs.New(errs.CodeParseError, "expected %s", what)
	}
	return name, nil
}

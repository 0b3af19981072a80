package chlo

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/gomlx/chlo/internal/utils"
	"github.com/gomlx/chlo/types"
	"github.com/gomlx/chlo/types/optypes"
	"github.com/gomlx/chlo/types/shapes"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Parse reads a program in the text format written by Builder.Write, using the default broadcast policy.
//
// The declared result types are taken as given: use Builder.Verify to check them.
func Parse(text string) (*Builder, error) {
	return ParseWithPolicy(text, types.BroadcastOptimistic)
}

// ParseWithPolicy reads a program in the text format written by Builder.Write. The policy is used by
// later shape inferences and verification of the program.
//
// The names of the values are preserved, so writing the parsed program gives back the same text.
func ParseWithPolicy(text string, policy types.BroadcastPolicy) (*Builder, error) {
	p := &parser{text: text}
	b, err := p.parseModule(policy)
	if err != nil {
		return nil, errors.WithMessagef(err, "line %d", p.line())
	}
	klog.V(1).Infof("parsed program %q with %d functions", b.name, len(b.functions))
	return b, nil
}

// parser is a recursive descent parser of the program text.
type parser struct {
	text string
	pos  int
	b    *Builder

	// scopes of value names, the innermost last.
	scopes []map[string]*Value
}

func (p *parser) line() int {
	return strings.Count(p.text[:p.pos], "\n") + 1
}

func (p *parser) skipSpace() {
	for p.pos < len(p.text) {
		switch p.text[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

// peek returns whether the text, after spaces, continues with the prefix.
func (p *parser) peek(prefix string) bool {
	p.skipSpace()
	return strings.HasPrefix(p.text[p.pos:], prefix)
}

// accept consumes the prefix if the text continues with it.
func (p *parser) accept(prefix string) bool {
	if !p.peek(prefix) {
		return false
	}
	p.pos += len(prefix)
	return true
}

func (p *parser) expect(prefix string) error {
	if !p.accept(prefix) {
		return errors.Errorf("expected %q, got %q", prefix, p.excerpt())
	}
	return nil
}

func (p *parser) excerpt() string {
	end := min(p.pos+20, len(p.text))
	if idx := strings.IndexByte(p.text[p.pos:end], '\n'); idx >= 0 {
		end = p.pos + idx
	}
	return p.text[p.pos:end]
}

func isIdentifierChar(c byte) bool {
	return c == '_' || c == '.' || c == '$' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// identifier reads a (possibly empty) identifier, with the characters allowed in names and numbers.
func (p *parser) identifier() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.text) && isIdentifierChar(p.text[p.pos]) {
		p.pos++
	}
	return p.text[start:p.pos]
}

// denseElement reads one scalar element of a dense literal: a number, possibly with a signed exponent (as in
// 1.0e+30), the hexadecimal bits of a float or a boolean.
func (p *parser) denseElement() string {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.text) {
		c := p.text[p.pos]
		exponentSign := (c == '+' || c == '-') && p.pos > start && (p.text[p.pos-1] == 'e' || p.text[p.pos-1] == 'E')
		if !exponentSign && !isIdentifierChar(c) {
			break
		}
		p.pos++
	}
	return p.text[start:p.pos]
}

func (p *parser) parseModule(policy types.BroadcastPolicy) (*Builder, error) {
	if err := p.expect("module"); err != nil {
		return nil, err
	}
	if err := p.expect("@"); err != nil {
		return nil, err
	}
	p.b = New(p.identifier()).WithBroadcastPolicy(policy)
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	for !p.accept("}") {
		if err := p.parseFunction(); err != nil {
			return nil, err
		}
	}
	p.skipSpace()
	if p.pos != len(p.text) {
		return nil, errors.Errorf("unexpected text after the module: %q", p.excerpt())
	}
	return p.b, nil
}

func (p *parser) parseFunction() error {
	if err := p.expect("func.func"); err != nil {
		return err
	}
	if err := p.expect("@"); err != nil {
		return err
	}
	name := p.identifier()
	if p.b.Function(name) != nil {
		return errors.Errorf("duplicate function name %q", name)
	}
	fn := p.b.NewFunction(name)
	p.scopes = append(p.scopes, make(map[string]*Value))
	defer func() { p.scopes = p.scopes[:len(p.scopes)-1] }()

	if err := p.parseArguments(fn); err != nil {
		return err
	}
	if err := p.expect("->"); err != nil {
		return err
	}
	outputs, err := p.parseTypeList()
	if err != nil {
		return err
	}
	fn.Outputs = outputs
	if err := p.expect("{"); err != nil {
		return err
	}
	for !p.accept("}") {
		if err := p.parseStatement(fn); err != nil {
			return errors.WithMessagef(err, "function %q", fn.Name)
		}
	}
	return nil
}

// parseArguments parses "(%name: type, ...)" and creates the inputs of the function.
func (p *parser) parseArguments(fn *Function) error {
	if err := p.expect("("); err != nil {
		return err
	}
	for i := 0; !p.accept(")"); i++ {
		if i > 0 {
			if err := p.expect(","); err != nil {
				return err
			}
		}
		name, err := p.parseValueName()
		if err != nil {
			return err
		}
		if err := p.expect(":"); err != nil {
			return err
		}
		shape, err := p.parseTensorType()
		if err != nil {
			return err
		}
		v, err := p.declareValue(fn, name, shape)
		if err != nil {
			return err
		}
		fn.Inputs = append(fn.Inputs, v)
	}
	return nil
}

func (p *parser) parseValueName() (string, error) {
	if err := p.expect("%"); err != nil {
		return "", err
	}
	name := p.identifier()
	if name == "" {
		return "", errors.Errorf("missing value name")
	}
	return name, nil
}

// declareValue creates a value of the function with the given name. The automatic naming of the function is
// moved past the declared names, so values created later don't clash.
func (p *parser) declareValue(fn *Function, name string, shape shapes.Shape) (*Value, error) {
	if !fn.reserveName(name) {
		return nil, errors.Errorf("value %%%s defined more than once", name)
	}
	rootFn := fn.findRootFn()
	if id, err := strconv.Atoi(name); err == nil {
		rootFn.nextTmpID = max(rootFn.nextTmpID, id+1)
	} else if suffix, found := strings.CutPrefix(name, "arg"); found {
		if id, err := strconv.Atoi(suffix); err == nil {
			rootFn.nextArgID = max(rootFn.nextArgID, id+1)
		}
	}
	v := &Value{fn: fn, name: name, shape: shape}
	p.scopes[len(p.scopes)-1][name] = v
	return v, nil
}

// lookup finds the value in the innermost scope that defines it.
func (p *parser) lookup(name string) (*Value, error) {
	for i := len(p.scopes) - 1; i >= 0; i-- {
		if v, found := p.scopes[i][name]; found {
			return v, nil
		}
	}
	return nil, errors.Errorf("value %%%s used before being defined", name)
}

func (p *parser) parseStatement(fn *Function) error {
	var resultNames []string
	if p.peek("%") {
		for {
			name, err := p.parseValueName()
			if err != nil {
				return err
			}
			resultNames = append(resultNames, name)
			if !p.accept(",") {
				break
			}
		}
		if err := p.expect("="); err != nil {
			return err
		}
	}

	p.skipSpace()
	quoted, err := p.parseQuoted()
	if err != nil {
		return err
	}
	opType := optypes.FromStableHLO(quoted)
	if opType == optypes.Invalid {
		return errors.Errorf("unknown operation %q", quoted)
	}

	// Operands:
	if err := p.expect("("); err != nil {
		return err
	}
	var inputs []*Value
	for i := 0; !p.accept(")"); i++ {
		if i > 0 {
			if err := p.expect(","); err != nil {
				return err
			}
		}
		name, err := p.parseValueName()
		if err != nil {
			return err
		}
		v, err := p.lookup(name)
		if err != nil {
			return err
		}
		inputs = append(inputs, v)
	}

	// Region, for clusters:
	var body *Function
	if p.accept("(") {
		body, err = p.parseRegion(fn)
		if err != nil {
			return errors.WithMessagef(err, "region of %s", opType)
		}
	}

	// Attributes:
	var attributes map[string]any
	if p.peek("{") {
		attributes, err = p.parseAttributes()
		if err != nil {
			return errors.WithMessagef(err, "attributes of %s", opType)
		}
	}

	// Signature:
	if err := p.expect(":"); err != nil {
		return err
	}
	operandTypes, err := p.parseTypeList()
	if err != nil {
		return err
	}
	if len(operandTypes) != len(inputs) {
		return errors.Errorf("%s has %d operands, but its signature lists %d types", opType, len(inputs), len(operandTypes))
	}
	for i, input := range inputs {
		if !input.shape.Equal(operandTypes[i]) {
			return errors.Errorf("%s operand #%d (%s) has type %s, but the signature says %s",
				opType, i, input, input.shape.ToStableHLO(), operandTypes[i].ToStableHLO())
		}
	}
	if err := p.expect("->"); err != nil {
		return err
	}
	resultTypes, err := p.parseTypeList()
	if err != nil {
		return err
	}
	if len(resultTypes) != len(resultNames) {
		return errors.Errorf("%s defines %d values, but its signature lists %d result types", opType, len(resultNames), len(resultTypes))
	}

	stmt := &Statement{
		Builder:    p.b,
		Function:   fn,
		OpType:     opType,
		Inputs:     inputs,
		Attributes: attributes,
		Body:       body,
	}
	for i, name := range resultNames {
		v, err := p.declareValue(fn, name, resultTypes[i])
		if err != nil {
			return err
		}
		v.producer = stmt
		stmt.Outputs = append(stmt.Outputs, v)
	}
	fn.Statements = append(fn.Statements, stmt)
	if opType == optypes.FuncReturn {
		fn.Returned = true
	}
	return nil
}

// parseRegion parses the body of a cluster, after its opening "(": `{ ^bb0(args): statements })`.
func (p *parser) parseRegion(fn *Function) (*Function, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	if err := p.expect("^bb0"); err != nil {
		return nil, err
	}
	body := fn.newBody()
	p.scopes = append(p.scopes, make(map[string]*Value))
	defer func() { p.scopes = p.scopes[:len(p.scopes)-1] }()
	if err := p.parseArguments(body); err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	for !p.accept("}") {
		if err := p.parseStatement(body); err != nil {
			return nil, err
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return body, nil
}

func (p *parser) parseQuoted() (string, error) {
	p.skipSpace()
	if p.pos >= len(p.text) || p.text[p.pos] != '"' {
		return "", errors.Errorf("expected a quoted string, got %q", p.excerpt())
	}
	quoted, err := strconv.QuotedPrefix(p.text[p.pos:])
	if err != nil {
		return "", errors.Wrapf(err, "invalid quoted string %q", p.excerpt())
	}
	p.pos += len(quoted)
	return strconv.Unquote(quoted)
}

// parseTypeList parses either a single tensor type, or a parenthesized (possibly empty) list of them.
func (p *parser) parseTypeList() ([]shapes.Shape, error) {
	if !p.accept("(") {
		shape, err := p.parseTensorType()
		if err != nil {
			return nil, err
		}
		return []shapes.Shape{shape}, nil
	}
	list := []shapes.Shape{}
	for i := 0; !p.accept(")"); i++ {
		if i > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		shape, err := p.parseTensorType()
		if err != nil {
			return nil, err
		}
		list = append(list, shape)
	}
	return list, nil
}

// parseTensorType parses types like "tensor<2x?xf32>", "tensor<f32>" or "tensor<*xcomplex<f64>>".
func (p *parser) parseTensorType() (shapes.Shape, error) {
	if err := p.expect("tensor<"); err != nil {
		return shapes.Invalid(), err
	}
	unranked := p.accept("*x")
	dims := []int{}
	for {
		p.skipSpace()
		if p.pos >= len(p.text) {
			return shapes.Invalid(), errors.New("unterminated tensor type")
		}
		c := p.text[p.pos]
		if c == '?' {
			p.pos++
			dims = append(dims, shapes.DynamicDim)
		} else if c >= '0' && c <= '9' {
			start := p.pos
			for p.pos < len(p.text) && p.text[p.pos] >= '0' && p.text[p.pos] <= '9' {
				p.pos++
			}
			dim, err := strconv.Atoi(p.text[start:p.pos])
			if err != nil {
				return shapes.Invalid(), errors.Wrapf(err, "invalid dimension in tensor type")
			}
			dims = append(dims, dim)
		} else {
			break
		}
		if err := p.expect("x"); err != nil {
			return shapes.Invalid(), err
		}
	}

	// Element type, which may itself have angle brackets (complex<f32>).
	start := p.pos
	depth := 0
	for ; p.pos < len(p.text); p.pos++ {
		c := p.text[p.pos]
		if c == '<' {
			depth++
		} else if c == '>' {
			if depth == 0 {
				break
			}
			depth--
		}
	}
	elementType := p.text[start:p.pos]
	if err := p.expect(">"); err != nil {
		return shapes.Invalid(), err
	}
	dtype := utils.DTypeFromStableHLO(elementType)
	if dtype == dtypes.InvalidDType {
		return shapes.Invalid(), errors.Errorf("unsupported element type %q", elementType)
	}
	if unranked {
		if len(dims) > 0 {
			return shapes.Invalid(), errors.Errorf("unranked tensor type with dimensions %v", dims)
		}
		return shapes.MakeUnranked(dtype), nil
	}
	return shapes.Shape{DType: dtype, Dimensions: dims}, nil
}

// parseAttributes parses "{name = value, ...}".
func (p *parser) parseAttributes() (map[string]any, error) {
	if err := p.expect("{"); err != nil {
		return nil, err
	}
	attributes := make(map[string]any)
	for i := 0; !p.accept("}"); i++ {
		if i > 0 {
			if err := p.expect(","); err != nil {
				return nil, err
			}
		}
		name := p.identifier()
		if name == "" {
			return nil, errors.Errorf("missing attribute name at %q", p.excerpt())
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		value, err := p.parseAttributeValue()
		if err != nil {
			return nil, errors.WithMessagef(err, "attribute %q", name)
		}
		attributes[name] = value
	}
	return attributes, nil
}

func (p *parser) parseAttributeValue() (any, error) {
	switch {
	case p.accept("array<i64"):
		dims := types.BroadcastDimensions{}
		if p.accept(":") {
			for i := 0; !p.peek(">"); i++ {
				if i > 0 {
					if err := p.expect(","); err != nil {
						return nil, err
					}
				}
				axis, err := strconv.Atoi(p.identifier())
				if err != nil {
					return nil, errors.Wrapf(err, "invalid array element")
				}
				dims = append(dims, axis)
			}
		}
		if err := p.expect(">"); err != nil {
			return nil, err
		}
		return dims, nil

	case p.accept("#chlo<comparison_direction"):
		direction, err := types.ComparisonDirectionString(p.identifier())
		if err != nil {
			return nil, err
		}
		return direction, p.expect(">")

	case p.accept("#chlo<comparison_type"):
		compareType, err := types.ComparisonTypeFromKeyword(p.identifier())
		if err != nil {
			return nil, err
		}
		return compareType, p.expect(">")

	case p.accept("dense<"):
		return p.parseDense()

	case p.peek("\""):
		return p.parseQuoted()
	}

	word := p.identifier()
	switch word {
	case "true":
		return true, nil
	case "false":
		return false, nil
	case "":
		return nil, errors.Errorf("unsupported attribute value %q", p.excerpt())
	}
	n, err := strconv.ParseInt(word, 10, 64)
	if err != nil {
		return nil, errors.Wrapf(err, "unsupported attribute value %q", word)
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	typeName := p.identifier()
	dtype := utils.DTypeFromStableHLO(typeName)
	if !dtype.IsInt() {
		return nil, errors.Errorf("unsupported integer attribute type %q", typeName)
	}
	return reflect.ValueOf(n).Convert(dtype.GoType()).Interface(), nil
}

// parseDense parses the dense elements after "dense<": `elements> : tensor<...>`.
func (p *parser) parseDense() (any, error) {
	var elements []string
	var parseElements func() error
	parseElements = func() error {
		if p.accept("[") {
			for i := 0; !p.accept("]"); i++ {
				if i > 0 {
					if err := p.expect(","); err != nil {
						return err
					}
				}
				if err := parseElements(); err != nil {
					return err
				}
			}
			return nil
		}
		if p.peek("(") {
			end := strings.IndexByte(p.text[p.pos:], ')')
			if end < 0 {
				return errors.New("unterminated complex element")
			}
			elements = append(elements, p.text[p.pos:p.pos+end+1])
			p.pos += end + 1
			return nil
		}
		elem := p.denseElement()
		if elem == "" {
			return errors.Errorf("invalid dense element at %q", p.excerpt())
		}
		elements = append(elements, elem)
		return nil
	}
	if !p.peek(">") {
		if err := parseElements(); err != nil {
			return nil, err
		}
	}
	if err := p.expect(">"); err != nil {
		return nil, err
	}
	if err := p.expect(":"); err != nil {
		return nil, err
	}
	shape, err := p.parseTensorType()
	if err != nil {
		return nil, err
	}
	return newTensorLiteralFromText(shape, elements)
}

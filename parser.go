package demangle

import (
	"fmt"
	"math"
	"strconv"
)

// maxDepth bounds grammar recursion so adversarial input fails with a
// Failure root instead of exhausting the call stack.
const maxDepth = 512

// parser decodes the legacy ("_T"-prefixed) Swift mangling scheme. Every
// production returns (node, error); the facade converts an error into a
// Failure root, so callers of the package never see the error channel.
type parser struct {
	data  string
	pos   int
	depth int

	// subst records every decoded module and nominal type, in decode order.
	// "S<index>_" references resolve against it with a deep clone.
	subst []*Node

	// archetypeCount is the number of generic parameters currently in
	// scope; archetype references resolve positionally against it.
	archetypeCount int
}

func newParser(data string) *parser {
	return &parser{data: data}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.data)
}

func (p *parser) peek() byte {
	if p.eof() {
		return 0
	}
	return p.data[p.pos]
}

func (p *parser) consume() byte {
	if p.eof() {
		return 0
	}
	b := p.data[p.pos]
	p.pos++
	return b
}

func (p *parser) nextIf(b byte) bool {
	if p.eof() || p.data[p.pos] != b {
		return false
	}
	p.pos++
	return true
}

func (p *parser) expect(b byte) error {
	if p.eof() {
		return fmt.Errorf("unexpected end of mangled name, expected %q", b)
	}
	if p.data[p.pos] != b {
		return fmt.Errorf("unexpected character %q at position %d, expected %q", p.data[p.pos], p.pos, b)
	}
	p.pos++
	return nil
}

func (p *parser) enter() error {
	p.depth++
	if p.depth > maxDepth {
		return fmt.Errorf("mangled name exceeds nesting limit at position %d", p.pos)
	}
	return nil
}

func (p *parser) leave() {
	p.depth--
}

func (p *parser) readNumber() (int, error) {
	if p.eof() {
		return 0, fmt.Errorf("unexpected end while reading number")
	}
	start := p.pos
	total := 0
	for !p.eof() {
		c := p.data[p.pos]
		if c < '0' || c > '9' {
			break
		}
		d := int(c - '0')
		if total > (math.MaxInt-d)/10 {
			return 0, fmt.Errorf("number at position %d is out of range", start)
		}
		total = total*10 + d
		p.pos++
	}
	if p.pos == start {
		return 0, fmt.Errorf("expected digit at position %d", start)
	}
	return total, nil
}

// readIndex reads the legacy index encoding: '_' is 0, "<n>_" is n+1.
func (p *parser) readIndex() (int, error) {
	if p.eof() {
		return 0, fmt.Errorf("unexpected end while reading index")
	}
	if p.nextIf('_') {
		return 0, nil
	}
	n, err := p.readNumber()
	if err != nil {
		return 0, err
	}
	if n == math.MaxInt {
		return 0, fmt.Errorf("index out of range")
	}
	if err := p.expect('_'); err != nil {
		return 0, err
	}
	return n + 1, nil
}

// readIdentifierText reads a length-prefixed identifier, or an 'X'-prefixed
// punycode identifier. A length claiming more text than remains is a decode
// failure, not a truncated read.
func (p *parser) readIdentifierText() (string, error) {
	if p.eof() {
		return "", fmt.Errorf("unexpected end while reading identifier")
	}
	if p.nextIf('X') {
		return p.readPunycodeIdentifierText()
	}
	if !isDigit(p.peek()) {
		return "", fmt.Errorf("expected identifier length at position %d, found %q", p.pos, p.peek())
	}
	length, err := p.readNumber()
	if err != nil {
		return "", err
	}
	if length <= 0 {
		return "", fmt.Errorf("identifier length must be >0, got %d", length)
	}
	if length > len(p.data)-p.pos {
		return "", fmt.Errorf("identifier exceeds input length at position %d", p.pos)
	}
	text := p.data[p.pos : p.pos+length]
	p.pos += length
	return text, nil
}

func (p *parser) readPunycodeIdentifierText() (string, error) {
	length, err := p.readNumber()
	if err != nil {
		return "", err
	}
	if length <= 0 {
		return "", fmt.Errorf("punycode identifier length must be >0, got %d", length)
	}
	if length > len(p.data)-p.pos {
		return "", fmt.Errorf("punycode identifier exceeds input length at position %d", p.pos)
	}
	encoded := p.data[p.pos : p.pos+length]
	p.pos += length
	decoded, err := decodePunycode(encoded)
	if err != nil {
		return "", err
	}
	return decoded, nil
}

func (p *parser) pushSubstitution(n *Node) {
	if n != nil {
		p.subst = append(p.subst, n)
	}
}

func (p *parser) lookupSubstitution(index int) (*Node, error) {
	if index < 0 || index >= len(p.subst) {
		return nil, fmt.Errorf("invalid substitution index %d (have %d)", index, len(p.subst))
	}
	// Trees are not DAGs; reusing a substituted node means cloning it.
	return p.subst[index].Clone(), nil
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

func archetypeName(index int) string {
	name := string(rune('A' + index%26))
	if index >= 26 {
		name += strconv.Itoa(index / 26)
	}
	return name
}

// knownTypes are the legacy one-letter standard library substitutions
// ("Si" is Swift.Int and so on).
var knownTypes = map[byte]struct {
	kind Kind
	name string
}{
	'a': {KindStructure, "Array"},
	'b': {KindStructure, "Bool"},
	'c': {KindStructure, "UnicodeScalar"},
	'd': {KindStructure, "Double"},
	'f': {KindStructure, "Float"},
	'i': {KindStructure, "Int"},
	'q': {KindEnum, "Optional"},
	'Q': {KindEnum, "ImplicitlyUnwrappedOptional"},
	'S': {KindStructure, "String"},
	'u': {KindStructure, "UInt"},
}

var valueWitnessKinds = map[string]string{
	"al": "allocateBuffer",
	"ca": "assignWithCopy",
	"ta": "assignWithTake",
	"de": "deallocateBuffer",
	"xx": "destroy",
	"XX": "destroyBuffer",
	"CP": "initializeBufferWithCopyOfBuffer",
	"Cp": "initializeBufferWithCopy",
	"cp": "initializeWithCopy",
	"Tk": "initializeBufferWithTake",
	"tk": "initializeWithTake",
	"pr": "projectBuffer",
	"ty": "typeof",
}

// translateOperatorChar maps the mangled operator alphabet back to operator
// punctuation.
func translateOperatorChar(c byte) byte {
	switch c {
	case 'a':
		return '&'
	case 'c':
		return '@'
	case 'd':
		return '/'
	case 'e':
		return '='
	case 'g':
		return '>'
	case 'l':
		return '<'
	case 'm':
		return '*'
	case 'n':
		return '!'
	case 'o':
		return '|'
	case 'p':
		return '+'
	case 'q':
		return '?'
	case 'r':
		return '%'
	case 's':
		return '-'
	case 't':
		return '~'
	case 'x':
		return '^'
	case 'z':
		return '.'
	default:
		return c
	}
}

var nominalKinds = map[byte]Kind{
	'C': KindClass,
	'V': KindStructure,
	'O': KindEnum,
	'P': KindProtocol,
}

// parseMangledName decodes a whole symbol: the '_T' prefix, one global
// production, and nothing else.
func (p *parser) parseMangledName() (*Node, error) {
	if err := p.expect('_'); err != nil {
		return nil, fmt.Errorf("not a mangled swift symbol: %w", err)
	}
	if err := p.expect('T'); err != nil {
		return nil, fmt.Errorf("not a mangled swift symbol: %w", err)
	}
	node, err := p.parseGlobal()
	if err != nil {
		return nil, err
	}
	if !p.eof() {
		return nil, fmt.Errorf("trailing characters at position %d", p.pos)
	}
	return node, nil
}

func (p *parser) parseGlobal() (*Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.eof() {
		return nil, fmt.Errorf("empty mangled name body")
	}
	switch p.peek() {
	case 'M':
		p.consume()
		return p.parseMetadata()
	case 'w':
		p.consume()
		return p.parseValueWitness()
	case 'W':
		p.consume()
		return p.parseWitnessRecord()
	case 'T':
		p.consume()
		return p.parseThunkRecord()
	case 't':
		p.consume()
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		wrapper := NewNode(KindType)
		wrapper.AddChild(ty)
		return wrapper, nil
	default:
		return p.parseEntity()
	}
}

func (p *parser) parseDirectness() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("unexpected end while reading directness")
	}
	switch p.consume() {
	case 'd':
		return NewNodeWithText(KindDirectness, "direct"), nil
	case 'i':
		return NewNodeWithText(KindDirectness, "indirect"), nil
	default:
		return nil, fmt.Errorf("invalid directness marker at position %d", p.pos-1)
	}
}

func (p *parser) parseMetadata() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("truncated metadata record")
	}
	switch p.peek() {
	case 'P':
		p.consume()
		pattern := NewNode(KindGenericTypeMetadataPattern)
		directness, err := p.parseDirectness()
		if err != nil {
			return nil, err
		}
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		pattern.AddChildren(directness, ty)
		return pattern, nil
	case 'm':
		p.consume()
		metaclass := NewNode(KindMetaclass)
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		metaclass.AddChild(ty)
		return metaclass, nil
	case 'n':
		p.consume()
		descriptor := NewNode(KindNominalTypeDescriptor)
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		descriptor.AddChild(ty)
		return descriptor, nil
	default:
		metadata := NewNode(KindTypeMetadata)
		directness, err := p.parseDirectness()
		if err != nil {
			return nil, err
		}
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		metadata.AddChildren(directness, ty)
		return metadata, nil
	}
}

func (p *parser) parseValueWitness() (*Node, error) {
	if p.pos+2 > len(p.data) {
		return nil, fmt.Errorf("truncated value witness kind")
	}
	code := p.data[p.pos : p.pos+2]
	name, ok := valueWitnessKinds[code]
	if !ok {
		return nil, fmt.Errorf("unknown value witness kind %q", code)
	}
	p.pos += 2
	witness := NewNodeWithText(KindValueWitnessKind, name)
	ty, err := p.parseTypeNode()
	if err != nil {
		return nil, err
	}
	witness.AddChild(ty)
	return witness, nil
}

func (p *parser) parseWitnessRecord() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("truncated witness record")
	}
	switch p.consume() {
	case 'V':
		table := NewNode(KindValueWitnessTable)
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		table.AddChild(ty)
		return table, nil
	case 'o':
		offset := NewNode(KindWitnessTableOffset)
		entity, err := p.parseEntity()
		if err != nil {
			return nil, err
		}
		offset.AddChild(entity)
		return offset, nil
	case 'v':
		fieldOffset := NewNode(KindFieldOffset)
		directness, err := p.parseDirectness()
		if err != nil {
			return nil, err
		}
		entity, err := p.parseEntity()
		if err != nil {
			return nil, err
		}
		fieldOffset.AddChildren(directness, entity)
		return fieldOffset, nil
	case 'P':
		return p.parseConformanceRecord(KindProtocolWitnessTable)
	case 'Z':
		return p.parseConformanceRecord(KindLazyProtocolWitnessTableAccessor)
	case 'z':
		return p.parseConformanceRecord(KindLazyProtocolWitnessTableTemplate)
	case 'D':
		return p.parseConformanceRecord(KindDependentProtocolWitnessTableGenerator)
	case 'd':
		return p.parseConformanceRecord(KindDependentProtocolWitnessTableTemplate)
	default:
		return nil, fmt.Errorf("unknown witness record at position %d", p.pos-1)
	}
}

func (p *parser) parseConformanceRecord(kind Kind) (*Node, error) {
	record := NewNode(kind)
	conformance, err := p.parseProtocolConformance()
	if err != nil {
		return nil, err
	}
	record.AddChild(conformance)
	return record, nil
}

func (p *parser) parseThunkRecord() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("truncated thunk record")
	}
	switch p.consume() {
	case 'W':
		witness := NewNode(KindProtocolWitness)
		conformance, err := p.parseProtocolConformance()
		if err != nil {
			return nil, err
		}
		entity, err := p.parseEntity()
		if err != nil {
			return nil, err
		}
		witness.AddChildren(conformance, entity)
		return witness, nil
	case 'o':
		attr := NewNode(KindObjCAttribute)
		global, err := p.parseGlobal()
		if err != nil {
			return nil, err
		}
		attr.AddChild(global)
		return attr, nil
	case 'b':
		bridge := NewNode(KindBridgeToBlockFunction)
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		bridge.AddChild(ty)
		return bridge, nil
	default:
		return nil, fmt.Errorf("unknown thunk record at position %d", p.pos-1)
	}
}

// protocol-conformance ::= type protocol module
func (p *parser) parseProtocolConformance() (*Node, error) {
	conformance := NewNode(KindProtocolConformance)
	ty, err := p.parseTypeNode()
	if err != nil {
		return nil, err
	}
	proto, err := p.parseProtocolName()
	if err != nil {
		return nil, err
	}
	module, err := p.parseModule()
	if err != nil {
		return nil, err
	}
	conformance.AddChild(ty)
	conformance.AddChild(proto)
	conformance.AddChild(module)
	return conformance, nil
}

func (p *parser) parseModule() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("unexpected end while parsing module")
	}
	if p.peek() == 'S' {
		return p.parseSubstitution()
	}
	text, err := p.readIdentifierText()
	if err != nil {
		return nil, err
	}
	module := NewNodeWithText(KindModule, text)
	p.pushSubstitution(module)
	return module, nil
}

// parseSubstitution handles every 'S'-prefixed form: the stdlib module
// ("Ss"), the known standard types ("Si", "SS", ...) and back references
// ("S_", "S0_", ...).
func (p *parser) parseSubstitution() (*Node, error) {
	if err := p.expect('S'); err != nil {
		return nil, err
	}
	if p.eof() {
		return nil, fmt.Errorf("truncated substitution")
	}
	c := p.peek()
	switch {
	case c == 's':
		p.consume()
		return NewNodeWithText(KindModule, "Swift"), nil
	case c == '_' || isDigit(c):
		index, err := p.readIndex()
		if err != nil {
			return nil, err
		}
		return p.lookupSubstitution(index)
	default:
		known, ok := knownTypes[c]
		if !ok {
			return nil, fmt.Errorf("unknown substitution %q at position %d", c, p.pos)
		}
		p.consume()
		node := NewNode(known.kind)
		node.AddChild(NewNodeWithText(KindModule, "Swift"))
		node.AddChild(NewNodeWithText(KindIdentifier, known.name))
		return node, nil
	}
}

// context ::= substitution | nominal-type | module
func (p *parser) parseContext() (*Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.eof() {
		return nil, fmt.Errorf("unexpected end while parsing context")
	}
	c := p.peek()
	switch {
	case c == 'S':
		return p.parseSubstitution()
	case nominalKinds[c] != 0:
		return p.parseNominalType()
	case isDigit(c) || c == 'X':
		return p.parseModule()
	default:
		return nil, fmt.Errorf("invalid context start %q at position %d", c, p.pos)
	}
}

// nominal-type ::= ('C'|'V'|'O'|'P') context identifier
func (p *parser) parseNominalType() (*Node, error) {
	kind, ok := nominalKinds[p.peek()]
	if !ok {
		return nil, fmt.Errorf("invalid nominal type kind %q at position %d", p.peek(), p.pos)
	}
	p.consume()
	context, err := p.parseContext()
	if err != nil {
		return nil, err
	}
	name, err := p.readIdentifierText()
	if err != nil {
		return nil, err
	}
	node := NewNode(kind)
	node.AddChild(context)
	node.AddChild(NewNodeWithText(KindIdentifier, name))
	p.pushSubstitution(node)
	return node, nil
}

// parseProtocolName reads a bare protocol reference: a substitution or a
// context plus identifier (the protocol's declaration name without a kind
// marker).
func (p *parser) parseProtocolName() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("unexpected end while parsing protocol name")
	}
	if p.peek() == 'S' {
		return p.parseSubstitution()
	}
	context, err := p.parseContext()
	if err != nil {
		return nil, err
	}
	name, err := p.readIdentifierText()
	if err != nil {
		return nil, err
	}
	proto := NewNode(KindProtocol)
	proto.AddChild(context)
	proto.AddChild(NewNodeWithText(KindIdentifier, name))
	p.pushSubstitution(proto)
	return proto, nil
}

// entity ::= 'F' context entity-core | 'v' context decl-name type
//          | nominal-type | substitution
func (p *parser) parseEntity() (*Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.eof() {
		return nil, fmt.Errorf("unexpected end while parsing entity")
	}
	switch p.peek() {
	case 'F':
		p.consume()
		context, err := p.parseContext()
		if err != nil {
			return nil, err
		}
		return p.parseEntityCore(context)
	case 'v':
		p.consume()
		context, err := p.parseContext()
		if err != nil {
			return nil, err
		}
		name, err := p.parseDeclName()
		if err != nil {
			return nil, err
		}
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		decl := NewNode(KindDeclaration)
		decl.AddChild(declPath(context, name))
		decl.AddChild(ty)
		return decl, nil
	case 'C', 'V', 'O', 'P':
		return p.parseNominalType()
	case 'S':
		return p.parseSubstitution()
	default:
		return nil, fmt.Errorf("invalid entity start %q at position %d", p.peek(), p.pos)
	}
}

// entity-core dispatches on the declaration marker following a function
// entity's context.
func (p *parser) parseEntityCore(context *Node) (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("unexpected end while parsing declaration")
	}
	switch p.peek() {
	case 'C':
		p.consume()
		return p.parseCtorLike(KindAllocator, context)
	case 'c':
		p.consume()
		return p.parseCtorLike(KindConstructor, context)
	case 'D':
		p.consume()
		return wrapContext(KindDeallocator, context), nil
	case 'd':
		p.consume()
		return wrapContext(KindDestructor, context), nil
	case 'g':
		p.consume()
		return p.parseAccessor(KindGetter, context)
	case 's':
		p.consume()
		return p.parseAccessor(KindSetter, context)
	case 'a':
		p.consume()
		return p.parseAccessor(KindAddressor, context)
	default:
		name, err := p.parseDeclName()
		if err != nil {
			return nil, err
		}
		ty, err := p.parseTypeNode()
		if err != nil {
			return nil, err
		}
		decl := NewNode(KindDeclaration)
		decl.AddChild(declPath(context, name))
		decl.AddChild(ty)
		return decl, nil
	}
}

func (p *parser) parseCtorLike(kind Kind, context *Node) (*Node, error) {
	node := wrapContext(kind, context)
	ty, err := p.parseTypeNode()
	if err != nil {
		return nil, err
	}
	node.AddChild(ty)
	return node, nil
}

func (p *parser) parseAccessor(kind Kind, context *Node) (*Node, error) {
	name, err := p.parseDeclName()
	if err != nil {
		return nil, err
	}
	ty, err := p.parseTypeNode()
	if err != nil {
		return nil, err
	}
	node := NewNode(kind)
	node.AddChild(declPath(context, name))
	node.AddChild(ty)
	return node, nil
}

func wrapContext(kind Kind, context *Node) *Node {
	node := NewNode(kind)
	declContext := NewNode(KindDeclContext)
	declContext.AddChild(context)
	node.AddChild(declContext)
	return node
}

func declPath(context, name *Node) *Node {
	path := NewNode(KindPath)
	declContext := NewNode(KindDeclContext)
	declContext.AddChild(context)
	path.AddChild(declContext)
	path.AddChild(name)
	return path
}

// decl-name ::= identifier | 'o' ('p'|'P'|'i') operator-chars
func (p *parser) parseDeclName() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("unexpected end while parsing declaration name")
	}
	if p.peek() == 'o' {
		p.consume()
		if p.eof() {
			return nil, fmt.Errorf("truncated operator fixity")
		}
		var kind Kind
		switch p.consume() {
		case 'p':
			kind = KindPrefixOperator
		case 'P':
			kind = KindPostfixOperator
		case 'i':
			kind = KindInfixOperator
		default:
			return nil, fmt.Errorf("invalid operator fixity at position %d", p.pos-1)
		}
		encoded, err := p.readIdentifierText()
		if err != nil {
			return nil, err
		}
		decoded := make([]byte, len(encoded))
		for i := 0; i < len(encoded); i++ {
			decoded[i] = translateOperatorChar(encoded[i])
		}
		return NewNodeWithText(kind, string(decoded)), nil
	}
	text, err := p.readIdentifierText()
	if err != nil {
		return nil, err
	}
	return NewNodeWithText(KindIdentifier, text), nil
}

// parseTypeNode parses one type production and wraps it in a Type node, the
// shape entities and runtime records carry their type payloads in.
func (p *parser) parseTypeNode() (*Node, error) {
	ty, err := p.parseType()
	if err != nil {
		return nil, err
	}
	wrapper := NewNode(KindType)
	wrapper.AddChild(ty)
	return wrapper, nil
}

func (p *parser) parseType() (*Node, error) {
	if err := p.enter(); err != nil {
		return nil, err
	}
	defer p.leave()

	if p.eof() {
		return nil, fmt.Errorf("unexpected end while parsing type")
	}
	switch p.peek() {
	case 'A':
		p.consume()
		count, err := p.readNumber()
		if err != nil {
			return nil, err
		}
		element, err := p.parseType()
		if err != nil {
			return nil, err
		}
		array := NewNode(KindArrayType)
		array.AddChild(NewNodeWithText(KindNumber, strconv.Itoa(count)))
		array.AddChild(element)
		return array, nil
	case 'B':
		p.consume()
		return p.parseBuiltinType()
	case 'b':
		p.consume()
		return p.parseFunctionLike(KindObjCBlock)
	case 'F':
		p.consume()
		return p.parseFunctionLike(KindFunctionType)
	case 'f':
		p.consume()
		return p.parseFunctionLike(KindUncurriedFunctionType)
	case 'G':
		p.consume()
		return p.parseBoundGenericType()
	case 'M':
		p.consume()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		meta := NewNode(KindMetaType)
		meta.AddChild(inner)
		return meta, nil
	case 'P':
		p.consume()
		return p.parseProtocolComposition()
	case 'Q':
		p.consume()
		return p.parseArchetype()
	case 'R':
		p.consume()
		inner, err := p.parseType()
		if err != nil {
			return nil, err
		}
		inout := NewNode(KindInOut)
		inout.AddChild(inner)
		return inout, nil
	case 'S':
		return p.parseSubstitution()
	case 'T':
		p.consume()
		return p.parseTuple(KindNonVariadicTuple)
	case 't':
		p.consume()
		return p.parseTuple(KindVariadicTuple)
	case 'U':
		p.consume()
		return p.parseGenericType()
	case 'X':
		p.consume()
		return p.parseReferenceStorage()
	case 'C', 'V', 'O':
		return p.parseNominalType()
	default:
		return nil, fmt.Errorf("unsupported type at position %d (%q)", p.pos, p.peek())
	}
}

func (p *parser) parseBuiltinType() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("truncated builtin type")
	}
	switch p.consume() {
	case 'i':
		width, err := p.readNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expect('_'); err != nil {
			return nil, err
		}
		return NewNodeWithText(KindBuiltinTypeName, "Builtin.Int"+strconv.Itoa(width)), nil
	case 'f':
		width, err := p.readNumber()
		if err != nil {
			return nil, err
		}
		if err := p.expect('_'); err != nil {
			return nil, err
		}
		return NewNodeWithText(KindBuiltinTypeName, "Builtin.Float"+strconv.Itoa(width)), nil
	case 'O':
		return NewNodeWithText(KindBuiltinTypeName, "Builtin.ObjCPointer"), nil
	case 'o':
		return NewNodeWithText(KindBuiltinTypeName, "Builtin.NativeObject"), nil
	case 'p':
		return NewNodeWithText(KindBuiltinTypeName, "Builtin.RawPointer"), nil
	case 'u':
		return NewNodeWithText(KindBuiltinTypeName, "Builtin.OpaquePointer"), nil
	default:
		return nil, fmt.Errorf("unknown builtin type at position %d", p.pos-1)
	}
}

func (p *parser) parseFunctionLike(kind Kind) (*Node, error) {
	args, err := p.parseType()
	if err != nil {
		return nil, err
	}
	result, err := p.parseType()
	if err != nil {
		return nil, err
	}
	argTuple := NewNode(KindArgumentTuple)
	argTuple.AddChild(args)
	returnType := NewNode(KindReturnType)
	returnType.AddChild(result)
	fn := NewNode(kind)
	fn.AddChildren(argTuple, returnType)
	return fn, nil
}

// bound-generic ::= 'G' type type* '_'
func (p *parser) parseBoundGenericType() (*Node, error) {
	base, err := p.parseType()
	if err != nil {
		return nil, err
	}
	var kind Kind
	switch base.Kind {
	case KindClass:
		kind = KindBoundGenericClass
	case KindStructure:
		kind = KindBoundGenericStructure
	case KindEnum:
		kind = KindBoundGenericEnum
	default:
		return nil, fmt.Errorf("bound generic base must be a nominal type, got %s", base.Kind)
	}
	args := NewNode(KindTypeList)
	for !p.nextIf('_') {
		if p.eof() {
			return nil, fmt.Errorf("unterminated bound generic type")
		}
		arg, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args.AddChild(arg)
	}
	bound := NewNode(kind)
	bound.AddChild(base)
	bound.AddChild(args)
	p.pushSubstitution(bound)
	return bound, nil
}

// protocol composition ::= 'P' protocol* '_'
func (p *parser) parseProtocolComposition() (*Node, error) {
	var protocols []*Node
	for !p.nextIf('_') {
		if p.eof() {
			return nil, fmt.Errorf("unterminated protocol composition")
		}
		proto, err := p.parseProtocolName()
		if err != nil {
			return nil, err
		}
		protocols = append(protocols, proto)
	}
	if len(protocols) == 1 {
		return protocols[0], nil
	}
	list := NewNode(KindProtocolList)
	for _, proto := range protocols {
		list.AddChild(proto)
	}
	return list, nil
}

func (p *parser) parseArchetype() (*Node, error) {
	if p.nextIf('q') {
		index, err := p.readIndex()
		if err != nil {
			return nil, err
		}
		context, err := p.parseType()
		if err != nil {
			return nil, err
		}
		qualified := NewNode(KindQualifiedArchetype)
		qualified.AddChild(NewNodeWithText(KindNumber, strconv.Itoa(index)))
		qualified.AddChild(context)
		return qualified, nil
	}
	index, err := p.readIndex()
	if err != nil {
		return nil, err
	}
	return NewNodeWithText(KindArchetypeRef, archetypeName(index)), nil
}

func (p *parser) parseTuple(kind Kind) (*Node, error) {
	tuple := NewNode(kind)
	for !p.nextIf('_') {
		if p.eof() {
			return nil, fmt.Errorf("unterminated tuple")
		}
		element := NewNode(KindTupleElement)
		// A digit (or punycode marker) here can only start an element
		// name; types never begin with one.
		if isDigit(p.peek()) || p.peek() == 'X' {
			name, err := p.readIdentifierText()
			if err != nil {
				return nil, err
			}
			element.AddChild(NewNodeWithText(KindTupleElementName, name))
		}
		ty, err := p.parseType()
		if err != nil {
			return nil, err
		}
		elementType := NewNode(KindTupleElementType)
		elementType.AddChild(ty)
		element.AddChild(elementType)
		tuple.AddChild(element)
	}
	return tuple, nil
}

// generics ::= 'U' gen-param+ '.' type. Parameters are positional; each is
// '_' (unconstrained) or a protocol composition constraint.
func (p *parser) parseGenericType() (*Node, error) {
	list := NewNode(KindArchetypeList)
	outerCount := p.archetypeCount
	count := 0
	for !p.nextIf('.') {
		if p.eof() {
			return nil, fmt.Errorf("unterminated generic parameter list")
		}
		name := archetypeName(outerCount + count)
		switch {
		case p.nextIf('_'):
			list.AddChild(NewNodeWithText(KindArchetypeRef, name))
		case p.peek() == 'P':
			p.consume()
			proto, err := p.parseProtocolComposition()
			if err != nil {
				return nil, err
			}
			constrained := NewNode(KindArchetypeAndProtocol)
			constrained.AddChild(NewNodeWithText(KindArchetypeRef, name))
			constrained.AddChild(proto)
			list.AddChild(constrained)
		default:
			return nil, fmt.Errorf("invalid generic parameter at position %d", p.pos)
		}
		count++
	}
	if count == 0 {
		return nil, fmt.Errorf("empty generic parameter list at position %d", p.pos)
	}

	p.archetypeCount += count
	body, err := p.parseType()
	p.archetypeCount = outerCount
	if err != nil {
		return nil, err
	}

	generic := NewNode(KindGenericType)
	generic.AddChildren(list, body)
	return generic, nil
}

func (p *parser) parseReferenceStorage() (*Node, error) {
	if p.eof() {
		return nil, fmt.Errorf("truncated reference storage type")
	}
	var kind Kind
	switch p.consume() {
	case 'o':
		kind = KindUnowned
	case 'w':
		kind = KindWeak
	default:
		return nil, fmt.Errorf("unknown reference storage type at position %d", p.pos-1)
	}
	inner, err := p.parseType()
	if err != nil {
		return nil, err
	}
	node := NewNode(kind)
	node.AddChild(inner)
	return node, nil
}

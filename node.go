package demangle

import "fmt"

// Kind identifies the mangling-grammar production a Node represents.
type Kind int

const (
	KindFailure Kind = iota
	KindAddressor
	KindAllocator
	KindArchetypeAndProtocol
	KindArchetypeList
	KindArchetypeRef
	KindArgumentTuple
	KindArrayType
	KindAssociatedTypeRef
	KindBoundGenericClass
	KindBoundGenericEnum
	KindBoundGenericStructure
	KindBridgeToBlockFunction
	KindBuiltinTypeName
	KindClass
	KindConstructor
	KindDeallocator
	KindDeclaration
	KindDeclContext
	KindDependentProtocolWitnessTableGenerator
	KindDependentProtocolWitnessTableTemplate
	KindDestructor
	KindDirectness
	KindEnum
	KindErrorType
	KindFieldOffset
	KindFunctionType
	KindGenericType
	KindGenericTypeMetadataPattern
	KindGetter
	KindIdentifier
	KindInOut
	KindInfixOperator
	KindLazyProtocolWitnessTableAccessor
	KindLazyProtocolWitnessTableTemplate
	KindLocalEntity
	KindMetaType
	KindMetaclass
	KindModule
	KindNominalTypeDescriptor
	KindNonVariadicTuple
	KindNumber
	KindObjCAttribute
	KindObjCBlock
	KindPath
	KindPostfixOperator
	KindPrefixOperator
	KindProtocol
	KindProtocolConformance
	KindProtocolList
	KindProtocolWitness
	KindProtocolWitnessTable
	KindQualifiedArchetype
	KindReturnType
	KindSelfTypeRef
	KindSetter
	KindStructure
	KindTupleElement
	KindTupleElementName
	KindTupleElementType
	KindType
	KindTypeList
	KindTypeMetadata
	KindUncurriedFunctionType
	KindUnknown
	KindUnowned
	KindValueWitnessKind
	KindValueWitnessTable
	KindVariadicTuple
	KindWeak
	KindWitnessTableOffset

	numKinds
)

var kindNames = [numKinds]string{
	KindFailure:                                "Failure",
	KindAddressor:                              "Addressor",
	KindAllocator:                              "Allocator",
	KindArchetypeAndProtocol:                   "ArchetypeAndProtocol",
	KindArchetypeList:                          "ArchetypeList",
	KindArchetypeRef:                           "ArchetypeRef",
	KindArgumentTuple:                          "ArgumentTuple",
	KindArrayType:                              "ArrayType",
	KindAssociatedTypeRef:                      "AssociatedTypeRef",
	KindBoundGenericClass:                      "BoundGenericClass",
	KindBoundGenericEnum:                       "BoundGenericEnum",
	KindBoundGenericStructure:                  "BoundGenericStructure",
	KindBridgeToBlockFunction:                  "BridgeToBlockFunction",
	KindBuiltinTypeName:                        "BuiltinTypeName",
	KindClass:                                  "Class",
	KindConstructor:                            "Constructor",
	KindDeallocator:                            "Deallocator",
	KindDeclaration:                            "Declaration",
	KindDeclContext:                            "DeclContext",
	KindDependentProtocolWitnessTableGenerator: "DependentProtocolWitnessTableGenerator",
	KindDependentProtocolWitnessTableTemplate:  "DependentProtocolWitnessTableTemplate",
	KindDestructor:                             "Destructor",
	KindDirectness:                             "Directness",
	KindEnum:                                   "Enum",
	KindErrorType:                              "ErrorType",
	KindFieldOffset:                            "FieldOffset",
	KindFunctionType:                           "FunctionType",
	KindGenericType:                            "GenericType",
	KindGenericTypeMetadataPattern:             "GenericTypeMetadataPattern",
	KindGetter:                                 "Getter",
	KindIdentifier:                             "Identifier",
	KindInOut:                                  "InOut",
	KindInfixOperator:                          "InfixOperator",
	KindLazyProtocolWitnessTableAccessor:       "LazyProtocolWitnessTableAccessor",
	KindLazyProtocolWitnessTableTemplate:       "LazyProtocolWitnessTableTemplate",
	KindLocalEntity:                            "LocalEntity",
	KindMetaType:                               "MetaType",
	KindMetaclass:                              "Metaclass",
	KindModule:                                 "Module",
	KindNominalTypeDescriptor:                  "NominalTypeDescriptor",
	KindNonVariadicTuple:                       "NonVariadicTuple",
	KindNumber:                                 "Number",
	KindObjCAttribute:                          "ObjCAttribute",
	KindObjCBlock:                              "ObjCBlock",
	KindPath:                                   "Path",
	KindPostfixOperator:                        "PostfixOperator",
	KindPrefixOperator:                         "PrefixOperator",
	KindProtocol:                               "Protocol",
	KindProtocolConformance:                    "ProtocolConformance",
	KindProtocolList:                           "ProtocolList",
	KindProtocolWitness:                        "ProtocolWitness",
	KindProtocolWitnessTable:                   "ProtocolWitnessTable",
	KindQualifiedArchetype:                     "QualifiedArchetype",
	KindReturnType:                             "ReturnType",
	KindSelfTypeRef:                            "SelfTypeRef",
	KindSetter:                                 "Setter",
	KindStructure:                              "Structure",
	KindTupleElement:                           "TupleElement",
	KindTupleElementName:                       "TupleElementName",
	KindTupleElementType:                       "TupleElementType",
	KindType:                                   "Type",
	KindTypeList:                               "TypeList",
	KindTypeMetadata:                           "TypeMetadata",
	KindUncurriedFunctionType:                  "UncurriedFunctionType",
	KindUnknown:                                "Unknown",
	KindUnowned:                                "Unowned",
	KindValueWitnessKind:                       "ValueWitnessKind",
	KindValueWitnessTable:                      "ValueWitnessTable",
	KindVariadicTuple:                          "VariadicTuple",
	KindWeak:                                   "Weak",
	KindWitnessTableOffset:                     "WitnessTableOffset",
}

func (k Kind) String() string {
	if k >= 0 && k < numKinds {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Node is one production of a demangled symbol tree. A node owns its
// children; the parent reference and the sibling chain are derived from that
// ownership and never keep a node alive on their own.
type Node struct {
	Kind Kind
	Text string

	children []*Node
	parent   *Node
}

// NewNode creates an unlinked node of the given kind.
func NewNode(kind Kind) *Node {
	return &Node{Kind: kind}
}

// NewNodeWithText creates an unlinked node carrying a text payload.
func NewNodeWithText(kind Kind, text string) *Node {
	return &Node{Kind: kind, Text: text}
}

// HasChildren reports whether the node has at least one child.
func (n *Node) HasChildren() bool { return len(n.children) > 0 }

// NumChildren returns the number of children.
func (n *Node) NumChildren() int { return len(n.children) }

// Child returns the i-th child, or nil when out of range.
func (n *Node) Child(i int) *Node {
	if i < 0 || i >= len(n.children) {
		return nil
	}
	return n.children[i]
}

// FirstChild returns the first child, or nil.
func (n *Node) FirstChild() *Node { return n.Child(0) }

// Children returns the ordered child list. Callers must not mutate it;
// use AddChild to grow a tree.
func (n *Node) Children() []*Node { return n.children }

// Parent returns the node's structural parent, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

func (n *Node) childIndex() int {
	if n.parent == nil {
		return -1
	}
	for i, c := range n.parent.children {
		if c == n {
			return i
		}
	}
	return -1
}

// NextSibling returns the node following n in its parent's child list.
// Sibling lookup walks the parent's children; it is not on the decode or
// render path.
func (n *Node) NextSibling() *Node {
	if i := n.childIndex(); i >= 0 {
		return n.parent.Child(i + 1)
	}
	return nil
}

// PrevSibling returns the node preceding n in its parent's child list.
func (n *Node) PrevSibling() *Node {
	if i := n.childIndex(); i > 0 {
		return n.parent.Child(i - 1)
	}
	return nil
}

func (n *Node) isUnlinked() bool { return n.parent == nil }

// AddChild appends child to n's child list and returns it. The child must be
// unlinked; attaching an already-linked node is a decoder bug, not an input
// condition, and panics.
func (n *Node) AddChild(child *Node) *Node {
	if child == nil {
		panic("demangle: AddChild called with nil child")
	}
	if !child.isUnlinked() {
		panic("demangle: AddChild called with an already-linked node")
	}
	child.parent = n
	n.children = append(n.children, child)
	return child
}

// AddChildren appends two children at once.
func (n *Node) AddChildren(child1, child2 *Node) {
	n.AddChild(child1)
	n.AddChild(child2)
}

// SetNextNode attaches next as the sibling immediately following n. n must be
// the last child of its parent and next must be unlinked; the new sibling is
// adopted by the shared parent.
func (n *Node) SetNextNode(next *Node) {
	if next == nil {
		panic("demangle: SetNextNode called with nil node")
	}
	if !next.isUnlinked() {
		panic("demangle: SetNextNode called with an already-linked node")
	}
	if n.parent == nil {
		panic("demangle: SetNextNode called on a node without a parent")
	}
	if n.NextSibling() != nil {
		panic("demangle: node already has a next sibling")
	}
	n.parent.AddChild(next)
}

// Clone deep-copies the node and its subtree. The copy is always unlinked,
// regardless of the original's position in a larger tree.
func (n *Node) Clone() *Node {
	if n == nil {
		return nil
	}
	out := &Node{Kind: n.Kind, Text: n.Text}
	for _, child := range n.children {
		out.AddChild(child.Clone())
	}
	return out
}

// String implements fmt.Stringer using the default render options.
func (n *Node) String() string {
	return NodeToString(n, DefaultOptions())
}

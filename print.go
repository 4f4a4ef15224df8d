package demangle

import "strings"

// failurePlaceholder is what a Failure root renders to. The diagnostic
// stays on the node's Text and never leaks into rendered output.
const failurePlaceholder = "<<demangling failure>>"

type printer struct {
	opts Options
}

func (pr *printer) print(node *Node) string {
	if node == nil {
		return ""
	}
	switch node.Kind {
	case KindFailure:
		return failurePlaceholder

	case KindIdentifier, KindModule, KindArchetypeRef, KindBuiltinTypeName,
		KindNumber, KindTupleElementName, KindDirectness:
		return node.Text

	case KindPrefixOperator:
		return node.Text + " prefix"
	case KindPostfixOperator:
		return node.Text + " postfix"
	case KindInfixOperator:
		return node.Text + " infix"

	// Wrapper kinds carry no text of their own.
	case KindType, KindDeclContext, KindArgumentTuple, KindReturnType,
		KindTupleElementType:
		return pr.print(node.FirstChild())

	case KindClass, KindStructure, KindEnum, KindProtocol:
		return pr.printDotted(node)

	case KindPath:
		return pr.printDotted(node)

	case KindLocalEntity, KindAssociatedTypeRef:
		if node.HasChildren() {
			return pr.printDotted(node)
		}
		return node.Text

	case KindDeclaration:
		return pr.printTypedDecl(node)
	case KindGetter:
		return pr.printAccessor(node, "getter")
	case KindSetter:
		return pr.printAccessor(node, "setter")
	case KindAddressor:
		return pr.printAccessor(node, "addressor")

	case KindAllocator:
		return pr.print(node.Child(0)) + ".__allocating_init : " + pr.print(node.Child(1))
	case KindConstructor:
		return pr.print(node.Child(0)) + ".init : " + pr.print(node.Child(1))
	case KindDestructor:
		return pr.print(node.Child(0)) + ".destructor"
	case KindDeallocator:
		return pr.print(node.Child(0)) + ".__deallocating_destructor"

	case KindFieldOffset:
		return pr.printFieldOffset(node)

	case KindTypeMetadata:
		return pr.print(node.Child(0)) + " type metadata for " + pr.print(node.Child(1))
	case KindGenericTypeMetadataPattern:
		return pr.print(node.Child(0)) + " generic type metadata pattern for " + pr.print(node.Child(1))
	case KindMetaclass:
		return "metaclass for " + pr.print(node.Child(0))
	case KindNominalTypeDescriptor:
		return "nominal type descriptor for " + pr.print(node.Child(0))

	case KindValueWitnessKind:
		return node.Text + " value witness for " + pr.print(node.Child(0))
	case KindValueWitnessTable:
		return "value witness table for " + pr.print(node.Child(0))
	case KindWitnessTableOffset:
		return "witness table offset for " + pr.print(node.Child(0))
	case KindProtocolWitnessTable:
		return "protocol witness table for " + pr.print(node.Child(0))
	case KindLazyProtocolWitnessTableAccessor:
		return "lazy protocol witness table accessor for " + pr.print(node.Child(0))
	case KindLazyProtocolWitnessTableTemplate:
		return "lazy protocol witness table template for " + pr.print(node.Child(0))
	case KindDependentProtocolWitnessTableGenerator:
		return "dependent protocol witness table generator for " + pr.print(node.Child(0))
	case KindDependentProtocolWitnessTableTemplate:
		return "dependent protocol witness table template for " + pr.print(node.Child(0))

	case KindProtocolConformance:
		return pr.print(node.Child(0)) + " : " + pr.print(node.Child(1)) + " in " + pr.print(node.Child(2))
	case KindProtocolWitness:
		return "protocol witness for " + pr.print(node.Child(1)) + " in conformance " + pr.print(node.Child(0))

	case KindObjCAttribute:
		return "@objc " + pr.print(node.Child(0))
	case KindBridgeToBlockFunction:
		return "bridge-to-block function for " + pr.print(node.Child(0))

	case KindFunctionType, KindUncurriedFunctionType:
		return pr.print(node.Child(0)) + " -> " + pr.print(node.Child(1))
	case KindObjCBlock:
		return "@objc_block " + pr.print(node.Child(0)) + " -> " + pr.print(node.Child(1))

	case KindNonVariadicTuple:
		return pr.printTuple(node, false)
	case KindVariadicTuple:
		return pr.printTuple(node, true)
	case KindTupleElement:
		if node.NumChildren() == 2 {
			return pr.print(node.Child(0)) + ": " + pr.print(node.Child(1))
		}
		return pr.print(node.Child(0))

	case KindArrayType:
		return pr.print(node.Child(1)) + "[" + pr.print(node.Child(0)) + "]"
	case KindMetaType:
		return pr.print(node.Child(0)) + ".metatype"
	case KindInOut:
		return "inout " + pr.print(node.Child(0))
	case KindUnowned:
		return "unowned " + pr.print(node.Child(0))
	case KindWeak:
		return "weak " + pr.print(node.Child(0))

	case KindProtocolList:
		return "protocol<" + pr.printJoined(node, ", ") + ">"
	case KindTypeList, KindArchetypeList:
		return pr.printJoined(node, ", ")

	case KindBoundGenericClass, KindBoundGenericStructure, KindBoundGenericEnum:
		return pr.printBoundGeneric(node)

	case KindGenericType:
		return "<" + pr.print(node.Child(0)) + "> " + pr.print(node.Child(1))
	case KindArchetypeAndProtocol:
		return pr.print(node.Child(0)) + ": " + pr.print(node.Child(1))
	case KindQualifiedArchetype:
		return "(archetype " + pr.print(node.Child(0)) + " of " + pr.print(node.Child(1)) + ")"
	case KindSelfTypeRef:
		return "Self"

	case KindErrorType:
		return "<ERROR TYPE>"
	case KindUnknown:
		return "<<unknown: " + node.Text + ">>"

	default:
		return "<<unknown: " + node.Kind.String() + ">>"
	}
}

// printDotted joins child renderings with "." and appends the node's own
// text last, the shape shared by nominal types and declaration paths.
func (pr *printer) printDotted(node *Node) string {
	var parts []string
	for _, child := range node.Children() {
		if s := pr.print(child); s != "" {
			parts = append(parts, s)
		}
	}
	if node.Text != "" {
		parts = append(parts, node.Text)
	}
	return strings.Join(parts, ".")
}

func (pr *printer) printJoined(node *Node, sep string) string {
	if node == nil {
		return ""
	}
	var parts []string
	for _, child := range node.Children() {
		parts = append(parts, pr.print(child))
	}
	return strings.Join(parts, sep)
}

func (pr *printer) printTypedDecl(node *Node) string {
	path := pr.print(node.Child(0))
	if node.NumChildren() < 2 {
		return path
	}
	return path + " : " + pr.print(node.Child(1))
}

func (pr *printer) printAccessor(node *Node, kind string) string {
	return pr.print(node.Child(0)) + "." + kind + " : " + pr.print(node.Child(1))
}

func (pr *printer) printFieldOffset(node *Node) string {
	directness := pr.print(node.Child(0))
	entity := node.Child(1)
	var body string
	if !pr.opts.DisplayTypeOfIVarFieldOffset && entity != nil && entity.Kind == KindDeclaration {
		body = pr.print(entity.Child(0))
	} else {
		body = pr.print(entity)
	}
	return directness + " field offset for " + body
}

func (pr *printer) printTuple(node *Node, variadic bool) string {
	var parts []string
	for _, child := range node.Children() {
		parts = append(parts, pr.print(child))
	}
	if variadic && len(parts) > 0 {
		parts[len(parts)-1] += "..."
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

func (pr *printer) printBoundGeneric(node *Node) string {
	base := node.Child(0)
	args := node.Child(1)
	if pr.opts.SynthesizeSugarOnTypes && node.Kind == KindBoundGenericEnum && args != nil && args.NumChildren() == 1 {
		if name, ok := swiftStdlibName(base); ok {
			switch name {
			case "Optional":
				return pr.print(args.Child(0)) + "?"
			case "ImplicitlyUnwrappedOptional":
				return pr.print(args.Child(0)) + "!"
			}
		}
	}
	return pr.print(base) + "<" + pr.printJoined(args, ", ") + ">"
}

// swiftStdlibName reports the declaration name of a nominal type whose
// context is the Swift module.
func swiftStdlibName(node *Node) (string, bool) {
	if node == nil || node.NumChildren() != 2 {
		return "", false
	}
	module := node.Child(0)
	name := node.Child(1)
	if module.Kind != KindModule || module.Text != "Swift" {
		return "", false
	}
	if name.Kind != KindIdentifier {
		return "", false
	}
	return name.Text, true
}

// Package demangle turns mangled Swift symbol names back into
// human-readable declarations.
//
// The package exposes the pipeline in three pieces: DemangleSymbolAsNode
// decodes a mangled name into a node tree, NodeToString renders a tree to
// text, and DemangleSymbolAsString composes the two. All three are total:
// a name that does not decode yields a Failure root, which renders to a
// fixed placeholder, and no input panics.
package demangle

import "regexp"

// Options control rendering only; they never affect decoding.
type Options struct {
	// SynthesizeSugarOnTypes prints Swift.Optional<T> as T? and
	// Swift.ImplicitlyUnwrappedOptional<T> as T!.
	SynthesizeSugarOnTypes bool

	// DisplayTypeOfIVarFieldOffset includes the field's type when
	// printing a field offset record.
	DisplayTypeOfIVarFieldOffset bool
}

// DefaultOptions returns the rendering defaults: no type sugar, field
// offset types shown.
func DefaultOptions() Options {
	return Options{DisplayTypeOfIVarFieldOffset: true}
}

// DemangleSymbolAsNode decodes a mangled symbol into its node tree. The
// result is never nil: any decode failure, including a name without the
// "_T" prefix, produces a Failure root whose Text holds the diagnostic.
// Options are accepted for symmetry with the other entry points; decoding
// does not consult them.
func DemangleSymbolAsNode(mangled string, opts Options) *Node {
	node, err := newParser(mangled).parseMangledName()
	if err != nil {
		return NewNodeWithText(KindFailure, err.Error())
	}
	return node
}

// NodeToString renders a node tree to text. It accepts any tree, not just
// ones produced by DemangleSymbolAsNode; unknown shapes render to
// placeholder text rather than failing.
func NodeToString(node *Node, opts Options) string {
	pr := printer{opts: opts}
	return pr.print(node)
}

// DemangleSymbolAsString decodes and renders in one step.
func DemangleSymbolAsString(mangled string, opts Options) string {
	return NodeToString(DemangleSymbolAsNode(mangled, opts), opts)
}

var mangledTokenPattern = regexp.MustCompile(`_T[A-Za-z0-9_]+`)

// DemangleBlob rewrites every demanglable "_T" token in blob to its
// readable form, leaving everything else untouched. Tokens that fail to
// decode pass through unchanged.
func DemangleBlob(blob string, opts Options) string {
	return mangledTokenPattern.ReplaceAllStringFunc(blob, func(token string) string {
		node := DemangleSymbolAsNode(token, opts)
		if node.Kind == KindFailure {
			return token
		}
		return NodeToString(node, opts)
	})
}

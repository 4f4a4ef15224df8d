package demangle

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func mustPanic(t *testing.T, name string, fn func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Fatalf("%s did not panic", name)
		}
	}()
	fn()
}

func TestAddChildLinks(t *testing.T) {
	root := NewNode(KindType)
	a := root.AddChild(NewNodeWithText(KindIdentifier, "a"))
	b := root.AddChild(NewNodeWithText(KindIdentifier, "b"))
	c := root.AddChild(NewNodeWithText(KindIdentifier, "c"))

	if root.NumChildren() != 3 {
		t.Fatalf("expected 3 children, got %d", root.NumChildren())
	}
	if a.Parent() != root || b.Parent() != root || c.Parent() != root {
		t.Fatal("child parent not set")
	}
	if root.FirstChild() != a || root.Child(2) != c {
		t.Fatal("child order lost")
	}
	if root.Child(-1) != nil || root.Child(3) != nil {
		t.Fatal("out-of-range child access must return nil")
	}
}

func TestSiblingsAreDerived(t *testing.T) {
	root := NewNode(KindType)
	a := root.AddChild(NewNodeWithText(KindIdentifier, "a"))
	b := root.AddChild(NewNodeWithText(KindIdentifier, "b"))

	if a.NextSibling() != b {
		t.Fatal("a.NextSibling() != b")
	}
	if b.PrevSibling() != a {
		t.Fatal("b.PrevSibling() != a")
	}
	if a.PrevSibling() != nil || b.NextSibling() != nil {
		t.Fatal("chain ends must be nil")
	}
	if root.NextSibling() != nil || root.PrevSibling() != nil {
		t.Fatal("root has no siblings")
	}
}

func TestSetNextNode(t *testing.T) {
	root := NewNode(KindType)
	a := root.AddChild(NewNodeWithText(KindIdentifier, "a"))
	b := NewNodeWithText(KindIdentifier, "b")

	a.SetNextNode(b)
	if b.Parent() != root {
		t.Fatal("sibling not adopted by parent")
	}
	if a.NextSibling() != b || b.PrevSibling() != a {
		t.Fatal("sibling chain broken after SetNextNode")
	}
}

func TestLinkPreconditionsPanic(t *testing.T) {
	root := NewNode(KindType)
	a := root.AddChild(NewNodeWithText(KindIdentifier, "a"))
	b := root.AddChild(NewNodeWithText(KindIdentifier, "b"))

	mustPanic(t, "AddChild(nil)", func() { root.AddChild(nil) })
	mustPanic(t, "AddChild(linked)", func() { NewNode(KindType).AddChild(a) })
	mustPanic(t, "SetNextNode(nil)", func() { a.SetNextNode(nil) })
	mustPanic(t, "SetNextNode(linked)", func() { b.SetNextNode(a) })
	mustPanic(t, "SetNextNode on root", func() { root.SetNextNode(NewNode(KindType)) })
	mustPanic(t, "SetNextNode with existing sibling", func() {
		a.SetNextNode(NewNodeWithText(KindIdentifier, "c"))
	})
}

func TestClone(t *testing.T) {
	root := NewNode(KindType)
	class := root.AddChild(NewNode(KindClass))
	class.AddChild(NewNodeWithText(KindModule, "M"))
	class.AddChild(NewNodeWithText(KindIdentifier, "T"))

	clone := class.Clone()
	if clone.Parent() != nil {
		t.Fatal("clone must be unlinked")
	}

	var original, copied strings.Builder
	DumpTree(&original, class)
	DumpTree(&copied, clone)
	if diff := cmp.Diff(original.String(), copied.String()); diff != "" {
		t.Fatalf("clone differs from original (-orig +clone):\n%s", diff)
	}

	clone.AddChild(NewNodeWithText(KindIdentifier, "extra"))
	if class.NumChildren() != 2 {
		t.Fatal("mutating a clone leaked into the original")
	}
}

func TestKindString(t *testing.T) {
	if got := KindClass.String(); got != "Class" {
		t.Fatalf("KindClass.String() = %q", got)
	}
	if got := Kind(999).String(); got != "Kind(999)" {
		t.Fatalf("out-of-range kind = %q", got)
	}
}

func TestNodeStringer(t *testing.T) {
	node := DemangleSymbolAsNode("_TtC1M1T", DefaultOptions())
	if got := node.String(); got != "M.T" {
		t.Fatalf("String() = %q, want %q", got, "M.T")
	}
}

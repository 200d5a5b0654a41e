package property

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"pgregory.net/rapid"
)

func attribute(id string, base float64) Node {
	return Node{ID: id, Type: TypeAttribute, Name: id, BaseValue: base, Enabled: true}
}

func TestNewGraph(t *testing.T) {
	g := New("", "Sister Agatha")
	if g.Root() != RootID {
		t.Fatalf("root = %q, want %q", g.Root(), RootID)
	}
	root, ok := g.Node(RootID)
	if !ok {
		t.Fatal("expected root node")
	}
	if root.Type != TypeFolder || !root.HasTag("root") || !root.Enabled {
		t.Errorf("unexpected root node: %+v", root)
	}
}

func TestAddIsCopyOnWrite(t *testing.T) {
	before := New(RootID, "test")
	after, err := before.Add(attribute("attr-strength", 3), "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if before.Len() != 1 {
		t.Errorf("original graph len = %d, want 1", before.Len())
	}
	root, _ := before.Node(RootID)
	if len(root.Children) != 0 {
		t.Errorf("original root children = %v, want none", root.Children)
	}

	if after.Len() != 2 {
		t.Errorf("new graph len = %d, want 2", after.Len())
	}
	child, ok := after.Node("attr-strength")
	if !ok {
		t.Fatal("expected added node")
	}
	if child.Parent != RootID {
		t.Errorf("parent = %q, want %q", child.Parent, RootID)
	}
	root, _ = after.Node(RootID)
	if !reflect.DeepEqual(root.Children, []string{"attr-strength"}) {
		t.Errorf("root children = %v", root.Children)
	}
}

func TestAddErrors(t *testing.T) {
	g, err := New(RootID, "test").Add(attribute("attr-strength", 3), "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	tests := []struct {
		name   string
		node   Node
		parent string
		want   error
	}{
		{name: "missing id", node: Node{Type: TypeNote}, want: ErrMissingID},
		{name: "duplicate id", node: attribute("attr-strength", 1), want: ErrDuplicateID},
		{name: "unknown parent", node: attribute("attr-agility", 1), parent: "nope", want: ErrParentNotFound},
		{name: "invalid type", node: Node{ID: "x", Type: "weapon"}, want: ErrInvalidType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := g.Add(tt.node, tt.parent)
			if !errors.Is(err, tt.want) {
				t.Errorf("Add error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGraft(t *testing.T) {
	g := New(RootID, "test")
	g, err := g.Graft([]Node{
		{ID: "species-human", Type: TypeFolder, Name: "Human", Enabled: true},
		{ID: "species-human-speed", Type: TypeConstant, Name: "Speed", Parent: "species-human", Value: ptr(Num(6)), Enabled: true},
	}, "")
	if err != nil {
		t.Fatalf("graft: %v", err)
	}
	children := g.Children("species-human")
	if len(children) != 1 || children[0].ID != "species-human-speed" {
		t.Errorf("children = %+v", children)
	}

	_, err = g.Graft([]Node{
		{ID: "a", Type: TypeFolder, Enabled: true},
		{ID: "b", Type: TypeNote, Parent: "missing", Enabled: true},
	}, "")
	if !errors.Is(err, ErrParentNotFound) {
		t.Errorf("graft with dangling parent error = %v", err)
	}
	if _, ok := g.Node("a"); ok {
		t.Error("failed graft leaked a node into the original graph")
	}
}

func TestRemoveIsRecursive(t *testing.T) {
	g := New(RootID, "test")
	g, _ = g.Add(Node{ID: "folder", Type: TypeFolder, Enabled: true}, "")
	g, _ = g.Add(Node{ID: "inner", Type: TypeFolder, Enabled: true}, "folder")
	g, _ = g.Add(attribute("attr-strength", 3), "inner")
	g, _ = g.Add(attribute("attr-agility", 2), "")

	removed, err := g.Remove("folder")
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	for _, id := range []string{"folder", "inner", "attr-strength"} {
		if _, ok := removed.Node(id); ok {
			t.Errorf("node %q should be removed", id)
		}
	}
	root, _ := removed.Node(RootID)
	if !reflect.DeepEqual(root.Children, []string{"attr-agility"}) {
		t.Errorf("root children = %v", root.Children)
	}
	if g.Len() != 5 {
		t.Errorf("original len = %d, want 5", g.Len())
	}

	if _, err := g.Remove(RootID); !errors.Is(err, ErrRootRemoval) {
		t.Errorf("remove root error = %v", err)
	}
	if _, err := g.Remove("ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("remove ghost error = %v", err)
	}
}

func TestWalkSkipsDisabledSubtrees(t *testing.T) {
	g := New(RootID, "test")
	g, _ = g.Add(Node{ID: "gear", Type: TypeFolder, Enabled: true, Order: 2}, "")
	g, _ = g.Add(attribute("attr-strength", 3), "gear")
	g, _ = g.Add(Node{ID: "notes", Type: TypeNote, Enabled: true, Order: 1}, "")

	var visited []string
	g.Walk(func(n Node) { visited = append(visited, n.ID) })
	want := []string{RootID, "notes", "gear", "attr-strength"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("walk = %v, want %v", visited, want)
	}

	disabled, err := g.SetEnabled("gear", false)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	visited = visited[:0]
	disabled.Walk(func(n Node) { visited = append(visited, n.ID) })
	want = []string{RootID, "notes"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("walk after disable = %v, want %v", visited, want)
	}
}

func TestUpdateKeepsStructure(t *testing.T) {
	g := New(RootID, "test")
	g, _ = g.Add(attribute("attr-strength", 3), "")
	updated, err := g.Update("attr-strength", func(n *Node) {
		n.BaseValue = 5
		n.ID = "hijack"
		n.Parent = "elsewhere"
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	n, ok := updated.Node("attr-strength")
	if !ok {
		t.Fatal("updated node missing")
	}
	if n.BaseValue != 5 || n.Parent != RootID {
		t.Errorf("updated node = %+v", n)
	}
	old, _ := g.Node("attr-strength")
	if old.BaseValue != 3 {
		t.Errorf("original base value = %v, want 3", old.BaseValue)
	}
}

func TestGrantedAbilities(t *testing.T) {
	g := New(RootID, "test")
	g, _ = g.Add(Node{ID: "f1", Type: TypeFeature, Enabled: true, GrantedAbilities: []string{"scrounger"}}, "")
	g, _ = g.Add(Node{ID: "f2", Type: TypeFeature, Enabled: false, GrantedAbilities: []string{"look-out-sir"}}, "")
	g, _ = g.Add(Node{ID: "f3", Type: TypeFeature, Enabled: true, GrantedAbilities: []string{"scrounger"}}, "")

	got := g.GrantedAbilities()
	if !reflect.DeepEqual(got, []string{"scrounger"}) {
		t.Errorf("granted = %v", got)
	}
}

func TestGraphJSON(t *testing.T) {
	g := New(RootID, "test")
	g, _ = g.Add(Node{ID: "armour", Type: TypeConstant, Name: "Armour", Value: ptr(Num(2)), Enabled: true}, "")
	g, _ = g.Add(Node{ID: "bonus", Type: TypeConstant, Name: "Bonus", Value: ptr(Formula("tier + 1")), Enabled: true}, "")

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded Graph
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !reflect.DeepEqual(decoded.Nodes(), g.Nodes()) {
		t.Errorf("decoded nodes differ:\n got %+v\nwant %+v", decoded.Nodes(), g.Nodes())
	}

	if err := json.Unmarshal([]byte(`{"rootPropertyId":"x","properties":{}}`), &decoded); !errors.Is(err, ErrMissingRoot) {
		t.Errorf("missing root error = %v", err)
	}
}

func TestGraphEditsProperties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := New(RootID, "prop")
		ids := []string{RootID}
		steps := rapid.IntRange(1, 30).Draw(t, "steps")
		for i := 0; i < steps; i++ {
			if len(ids) > 1 && rapid.Bool().Draw(t, fmt.Sprintf("remove%d", i)) {
				id := rapid.SampledFrom(ids[1:]).Draw(t, fmt.Sprintf("victim%d", i))
				before := g
				next, err := g.Remove(id)
				if err != nil {
					t.Fatalf("remove %s: %v", id, err)
				}
				if _, ok := next.Node(id); ok {
					t.Fatalf("removed node %s still present", id)
				}
				if _, ok := before.Node(id); !ok {
					t.Fatalf("remove mutated the previous snapshot")
				}
				g = next
				ids = []string{RootID}
				for _, n := range g.Nodes() {
					if n.ID != RootID {
						ids = append(ids, n.ID)
					}
				}
				continue
			}
			parent := rapid.SampledFrom(ids).Draw(t, fmt.Sprintf("parent%d", i))
			id := fmt.Sprintf("n%d", i)
			before := g.Len()
			next, err := g.Add(Node{ID: id, Type: TypeFolder, Enabled: true}, parent)
			if err != nil {
				t.Fatalf("add %s: %v", id, err)
			}
			if g.Len() != before {
				t.Fatalf("add mutated the previous snapshot")
			}
			g = next
			ids = append(ids, id)
		}

		// Every non-root node is reachable and listed by its parent exactly once.
		for _, n := range g.Nodes() {
			if n.ID == RootID {
				continue
			}
			parent, ok := g.Node(n.Parent)
			if !ok {
				t.Fatalf("node %s has dangling parent %s", n.ID, n.Parent)
			}
			count := 0
			for _, c := range parent.Children {
				if c == n.ID {
					count++
				}
			}
			if count != 1 {
				t.Fatalf("node %s listed %d times by parent", n.ID, count)
			}
		}
		if got := len(g.Enabled()); got != g.Len() {
			t.Fatalf("walk visited %d of %d enabled nodes", got, g.Len())
		}
	})
}

func ptr[T any](v T) *T {
	return &v
}

package property

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"sort"
	"strings"
)

var (
	// ErrMissingID indicates a node without an id.
	ErrMissingID = errors.New("property id is required")
	// ErrInvalidType indicates an unknown property type.
	ErrInvalidType = errors.New("property type is invalid")
	// ErrDuplicateID indicates an id already present in the graph.
	ErrDuplicateID = errors.New("property id already exists")
	// ErrNotFound indicates an id absent from the graph.
	ErrNotFound = errors.New("property not found")
	// ErrParentNotFound indicates an insertion under a missing parent.
	ErrParentNotFound = errors.New("parent property not found")
	// ErrRootRemoval indicates an attempt to remove the root node.
	ErrRootRemoval = errors.New("root property cannot be removed")
	// ErrMissingRoot indicates a graph whose root id is not among its nodes.
	ErrMissingRoot = errors.New("root property is missing")
)

// RootID is the id assembly gives the root folder of every entity.
const RootID = "root"

// Graph is an immutable property tree snapshot.
//
// Edits copy the id index and the nodes on the path they touch; every other
// node is shared with the previous snapshot. Nodes held by a Graph are never
// modified after insertion.
type Graph struct {
	root  string
	nodes map[string]*Node
}

// New returns a graph holding only a root folder.
func New(rootID, name string) Graph {
	if strings.TrimSpace(rootID) == "" {
		rootID = RootID
	}
	root := &Node{
		ID:      rootID,
		Type:    TypeFolder,
		Name:    name,
		Tags:    []string{"root"},
		Enabled: true,
	}
	return Graph{root: rootID, nodes: map[string]*Node{rootID: root}}
}

// FromNodes builds a graph from a flat node list such as a decoded
// document. Parent and children links are taken as given.
func FromNodes(rootID string, nodes []Node) (Graph, error) {
	index := make(map[string]*Node, len(nodes))
	for _, n := range nodes {
		if strings.TrimSpace(n.ID) == "" {
			return Graph{}, ErrMissingID
		}
		if _, ok := index[n.ID]; ok {
			return Graph{}, fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
		}
		copied := n.clone()
		index[n.ID] = &copied
	}
	if _, ok := index[rootID]; !ok {
		return Graph{}, fmt.Errorf("%w: %s", ErrMissingRoot, rootID)
	}
	return Graph{root: rootID, nodes: index}, nil
}

// Root returns the root node id.
func (g Graph) Root() string {
	return g.root
}

// Len returns the number of nodes, enabled or not.
func (g Graph) Len() int {
	return len(g.nodes)
}

// Node returns a copy of the node with id.
func (g Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.clone(), true
}

// Nodes returns copies of every node sorted by id.
func (g Graph) Nodes() []Node {
	out := make([]Node, 0, len(g.nodes))
	for _, n := range g.nodes {
		out = append(out, n.clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Children returns the existing children of id in evaluation order: by
// Order, then by position in the parent's children list.
func (g Graph) Children(id string) []Node {
	parent, ok := g.nodes[id]
	if !ok {
		return nil
	}
	out := make([]Node, 0, len(parent.Children))
	for _, childID := range parent.Children {
		if child, ok := g.nodes[childID]; ok {
			out = append(out, child.clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out
}

// Walk visits the enabled subtree reachable from the root in evaluation
// order. A disabled node hides its entire subtree. A node listed twice is
// visited once.
func (g Graph) Walk(fn func(Node)) {
	visited := make(map[string]struct{}, len(g.nodes))
	var visit func(id string)
	visit = func(id string) {
		n, ok := g.nodes[id]
		if !ok || !n.Enabled {
			return
		}
		if _, seen := visited[id]; seen {
			return
		}
		visited[id] = struct{}{}
		fn(n.clone())
		for _, child := range g.Children(id) {
			visit(child.ID)
		}
	}
	visit(g.root)
}

// Enabled returns the nodes Walk visits, in the same order.
func (g Graph) Enabled() []Node {
	var out []Node
	g.Walk(func(n Node) { out = append(out, n) })
	return out
}

// GrantedAbilities lists ability ids granted by enabled features, in
// evaluation order without duplicates.
func (g Graph) GrantedAbilities() []string {
	var out []string
	g.Walk(func(n Node) {
		if n.Type != TypeFeature {
			return
		}
		for _, id := range n.GrantedAbilities {
			if !slices.Contains(out, id) {
				out = append(out, id)
			}
		}
	})
	return out
}

// Add returns a graph with node inserted as the last child of parentID. An
// empty parentID means the root.
func (g Graph) Add(node Node, parentID string) (Graph, error) {
	return g.Graft([]Node{node}, parentID)
}

// Graft inserts a subtree in one edit. nodes[0] becomes the last child of
// parentID (the root when empty); every other node must name a parent
// inside the batch or already in the graph.
func (g Graph) Graft(nodes []Node, parentID string) (Graph, error) {
	if len(nodes) == 0 {
		return g, nil
	}
	if parentID == "" {
		parentID = g.root
	}
	if _, ok := g.nodes[parentID]; !ok {
		return Graph{}, fmt.Errorf("%w: %s", ErrParentNotFound, parentID)
	}

	next := g.copyIndex()
	for i, n := range nodes {
		if strings.TrimSpace(n.ID) == "" {
			return Graph{}, ErrMissingID
		}
		if !n.Type.Valid() {
			return Graph{}, fmt.Errorf("%w: %q on %s", ErrInvalidType, n.Type, n.ID)
		}
		if _, exists := next.nodes[n.ID]; exists {
			return Graph{}, fmt.Errorf("%w: %s", ErrDuplicateID, n.ID)
		}
		inserted := n.clone()
		if i == 0 {
			inserted.Parent = parentID
		}
		if _, ok := next.nodes[inserted.Parent]; !ok {
			return Graph{}, fmt.Errorf("%w: %s", ErrParentNotFound, inserted.Parent)
		}
		next.nodes[inserted.ID] = &inserted
		next.linkChild(inserted.Parent, inserted.ID)
	}
	return next, nil
}

// Remove returns a graph without id and its whole subtree, detached from
// its parent's children list.
func (g Graph) Remove(id string) (Graph, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Graph{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if id == g.root || n.Parent == "" {
		return Graph{}, fmt.Errorf("%w: %s", ErrRootRemoval, id)
	}

	next := g.copyIndex()
	var drop func(id string)
	drop = func(id string) {
		current, ok := next.nodes[id]
		if !ok {
			return
		}
		delete(next.nodes, id)
		for _, child := range current.Children {
			drop(child)
		}
	}
	drop(id)

	if parent, ok := next.nodes[n.Parent]; ok {
		updated := parent.clone()
		updated.Children = slices.DeleteFunc(updated.Children, func(c string) bool { return c == id })
		next.nodes[parent.ID] = &updated
	}
	return next, nil
}

// SetEnabled returns a graph with id enabled or disabled.
func (g Graph) SetEnabled(id string, enabled bool) (Graph, error) {
	return g.Update(id, func(n *Node) { n.Enabled = enabled })
}

// Update returns a graph where id has been changed by edit. Edits to the
// id, parent and children links are ignored; use Add, Graft and Remove for
// structure.
func (g Graph) Update(id string, edit func(*Node)) (Graph, error) {
	n, ok := g.nodes[id]
	if !ok {
		return Graph{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	updated := n.clone()
	edit(&updated)
	updated.ID = n.ID
	updated.Parent = n.Parent
	updated.Children = cloneStrings(n.Children)
	if !updated.Type.Valid() {
		return Graph{}, fmt.Errorf("%w: %q on %s", ErrInvalidType, updated.Type, id)
	}

	next := g.copyIndex()
	next.nodes[id] = &updated
	return next, nil
}

func (g Graph) copyIndex() Graph {
	nodes := make(map[string]*Node, len(g.nodes)+1)
	for id, n := range g.nodes {
		nodes[id] = n
	}
	return Graph{root: g.root, nodes: nodes}
}

// linkChild appends childID to parentID's children, replacing the parent
// node rather than mutating it.
func (g Graph) linkChild(parentID, childID string) {
	parent := g.nodes[parentID]
	if slices.Contains(parent.Children, childID) {
		return
	}
	updated := parent.clone()
	updated.Children = append(updated.Children, childID)
	g.nodes[parentID] = &updated
}

type graphDocument struct {
	RootPropertyID string          `json:"rootPropertyId"`
	Properties     map[string]Node `json:"properties"`
}

// MarshalJSON encodes the graph as {rootPropertyId, properties}.
func (g Graph) MarshalJSON() ([]byte, error) {
	doc := graphDocument{RootPropertyID: g.root, Properties: make(map[string]Node, len(g.nodes))}
	for id, n := range g.nodes {
		doc.Properties[id] = *n
	}
	return json.Marshal(doc)
}

// UnmarshalJSON decodes the format written by MarshalJSON.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc graphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	nodes := make([]Node, 0, len(doc.Properties))
	for id, n := range doc.Properties {
		if n.ID == "" {
			n.ID = id
		}
		nodes = append(nodes, n)
	}
	decoded, err := FromNodes(doc.RootPropertyID, nodes)
	if err != nil {
		return err
	}
	*g = decoded
	return nil
}

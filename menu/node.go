package menu

import (
	"encoding/json"
	"fmt"
)

// Node is one entry of the server-delivered menu tree. Nodes without a Path
// are pure groupings; nodes with a Path are navigable. The backend filters
// the tree by the session's permissions before delivery, so a node's
// presence already implies the session may visit it.
type Node struct {
	ID         int64  `json:"id"`
	Title      string `json:"title"`
	Path       string `json:"path,omitempty"`
	Permission string `json:"permission_code,omitempty"`
	Children   []Node `json:"children,omitempty"`
}

// Tree is a rooted, ordered, multi-way menu tree. A nil or empty Tree means
// "not yet fetched" and puts the route authorizer into fallback mode.
type Tree []Node

// Decode parses a tree from the data payload of a menu envelope and
// validates it.
func Decode(data []byte) (Tree, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("menu: decode tree: %w", err)
	}
	if err := tree.Validate(); err != nil {
		return nil, err
	}
	return tree, nil
}

// Empty reports whether no tree has been loaded.
func (t Tree) Empty() bool {
	return len(t) == 0
}

// FindPath walks the tree depth-first and returns the first node whose Path
// equals path.
func (t Tree) FindPath(path string) (*Node, bool) {
	if path == "" {
		return nil, false
	}
	for i := range t {
		if found, ok := findPath(&t[i], path); ok {
			return found, true
		}
	}
	return nil, false
}

func findPath(n *Node, path string) (*Node, bool) {
	if n.Path == path {
		return n, true
	}
	for i := range n.Children {
		if found, ok := findPath(&n.Children[i], path); ok {
			return found, true
		}
	}
	return nil, false
}

// Paths collects every navigable path in depth-first order.
func (t Tree) Paths() []string {
	var paths []string
	t.walk(func(n *Node) {
		if n.Path != "" {
			paths = append(paths, n.Path)
		}
	})
	return paths
}

// Permissions collects every permission code present in the tree, without
// duplicates, in depth-first order.
func (t Tree) Permissions() []string {
	seen := map[string]struct{}{}
	var codes []string
	t.walk(func(n *Node) {
		if n.Permission == "" {
			return
		}
		if _, ok := seen[n.Permission]; ok {
			return
		}
		seen[n.Permission] = struct{}{}
		codes = append(codes, n.Permission)
	})
	return codes
}

// Validate checks the tree invariant: paths are unique among nodes that
// carry one.
func (t Tree) Validate() error {
	seen := map[string]int64{}
	var err error
	t.walk(func(n *Node) {
		if err != nil || n.Path == "" {
			return
		}
		if prev, ok := seen[n.Path]; ok {
			err = fmt.Errorf("menu: duplicate path %q (nodes %d and %d)", n.Path, prev, n.ID)
			return
		}
		seen[n.Path] = n.ID
	})
	return err
}

func (t Tree) walk(visit func(*Node)) {
	var rec func(*Node)
	rec = func(n *Node) {
		visit(n)
		for i := range n.Children {
			rec(&n.Children[i])
		}
	}
	for i := range t {
		rec(&t[i])
	}
}

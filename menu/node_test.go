package menu

import (
	"strings"
	"testing"
)

func sampleTree() Tree {
	return Tree{
		{
			ID:    1,
			Title: "Workspace",
			Children: []Node{
				{ID: 2, Title: "Dashboard", Path: "/dashboard"},
				{ID: 3, Title: "Projects", Path: "/projects", Permission: "project:view"},
				{
					ID:    4,
					Title: "Review",
					Children: []Node{
						{ID: 5, Title: "Code Review", Path: "/code-review", Permission: "review:view"},
						{ID: 6, Title: "Code Analysis", Path: "/code-analysis", Permission: "analysis:view"},
					},
				},
			},
		},
		{ID: 7, Title: "Users", Path: "/users", Permission: "user:manage"},
	}
}

func TestFindPathDepthFirst(t *testing.T) {
	tree := sampleTree()

	node, ok := tree.FindPath("/code-analysis")
	if !ok {
		t.Fatal("expected to find nested path")
	}
	if node.ID != 6 || node.Permission != "analysis:view" {
		t.Fatalf("wrong node: %+v", node)
	}

	if _, ok := tree.FindPath("/issues"); ok {
		t.Fatal("unexpected match for absent path")
	}
	if _, ok := tree.FindPath(""); ok {
		t.Fatal("empty path must never match a grouping node")
	}
}

func TestPathsAndPermissions(t *testing.T) {
	tree := sampleTree()

	paths := tree.Paths()
	want := []string{"/dashboard", "/projects", "/code-review", "/code-analysis", "/users"}
	if len(paths) != len(want) {
		t.Fatalf("expected %d paths, got %v", len(want), paths)
	}
	for i, p := range want {
		if paths[i] != p {
			t.Fatalf("path order mismatch at %d: got %v", i, paths)
		}
	}

	perms := tree.Permissions()
	if len(perms) != 4 {
		t.Fatalf("expected 4 permission codes, got %v", perms)
	}
	if perms[0] != "project:view" {
		t.Fatalf("expected depth-first permission order, got %v", perms)
	}
}

func TestDecodeValidatesDuplicatePaths(t *testing.T) {
	payload := `[
		{"id": 1, "title": "A", "path": "/projects"},
		{"id": 2, "title": "B", "children": [{"id": 3, "title": "C", "path": "/projects"}]}
	]`

	_, err := Decode([]byte(payload))
	if err == nil {
		t.Fatal("expected duplicate-path error")
	}
	if !strings.Contains(err.Error(), "/projects") {
		t.Fatalf("error should name the duplicated path: %v", err)
	}
}

func TestDecodeEmptyPayload(t *testing.T) {
	tree, err := Decode(nil)
	if err != nil {
		t.Fatalf("Decode(nil) failed: %v", err)
	}
	if !tree.Empty() {
		t.Fatal("expected empty tree")
	}
}

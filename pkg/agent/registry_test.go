package agent

import (
	"context"
	"testing"

	"github.com/wilhg/actionskills/pkg/errmodel"
)

type listTool struct{}

func (listTool) Describe() ToolDescriptor {
	return ToolDescriptor{
		Name:         "list",
		InputSchema:  []byte(`{"type":"object","properties":{"n":{"type":"string","pattern":"^[0-9]+$"}}}`),
		OutputSchema: []byte(`{"type":"array","items":{"type":"integer"}}`),
		Permissions:  []ToolPermission{{Name: "cpu"}},
	}
}

func (listTool) Invoke(ctx context.Context, call Call) (any, error) {
	n, err := call.Args.Int("n", 2)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out, nil
}

func TestRegistryAndSafeInvoke(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(listTool{}); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(listTool{}); err == nil {
		t.Fatal("expected duplicate registration error")
	}
	tl, ok := reg.Resolve("list")
	if !ok || tl == nil {
		t.Fatal("tool not resolved")
	}
	// missing permission
	_, err := SafeInvoke(context.Background(), tl, Call{Args: Args{"n": "3"}}, map[string]bool{}, JSONSchemaValidator)
	if err == nil {
		t.Fatal("expected permission error")
	}
	if errmodel.HTTPStatus(errmodel.From(err)) != 403 {
		t.Fatalf("permission error status=%d", errmodel.HTTPStatus(errmodel.From(err)))
	}
	// ok
	out, err := SafeInvoke(context.Background(), tl, Call{Args: Args{"n": "3"}}, map[string]bool{"cpu": true}, JSONSchemaValidator)
	if err != nil {
		t.Fatal(err)
	}
	if got, _ := out.([]int); len(got) != 3 {
		t.Fatalf("out=%v", out)
	}
	// bad input
	if _, err := SafeInvoke(context.Background(), tl, Call{Args: Args{"n": "x"}}, map[string]bool{"cpu": true}, JSONSchemaValidator); err == nil {
		t.Fatal("expected validation error")
	}
	// nil args default to empty
	if _, err := SafeInvoke(context.Background(), tl, Call{}, map[string]bool{"cpu": true}, nil); err != nil {
		t.Fatal(err)
	}
}

func TestRegistry_RejectsInvalidSchema(t *testing.T) {
	reg := NewRegistry()
	if err := reg.Register(brokenSchemaTool{}); err == nil {
		t.Fatal("expected schema compile error")
	}
}

type brokenSchemaTool struct{}

func (brokenSchemaTool) Describe() ToolDescriptor {
	return ToolDescriptor{Name: "broken", InputSchema: []byte(`{"type":42}`)}
}

func (brokenSchemaTool) Invoke(context.Context, Call) (any, error) { return nil, nil }

func TestRegistry_RangeIsSortedAndPermissionsUnion(t *testing.T) {
	reg := NewRegistry()
	_ = reg.Register(listTool{})
	_ = reg.Register(echoTool{})
	var names []string
	reg.Range(func(name string, _ Tool) { names = append(names, name) })
	if len(names) != 2 || names[0] != "echo" || names[1] != "list" {
		t.Fatalf("names=%v", names)
	}
	if perms := reg.Permissions(); !perms["cpu"] || len(perms) != 1 {
		t.Fatalf("perms=%v", perms)
	}
	if d := reg.Descriptors(); len(d) != 2 {
		t.Fatalf("descriptors=%v", d)
	}
}

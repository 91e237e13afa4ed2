package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func mustParse(t *testing.T, input string) *Tree {
	t.Helper()
	tree, err := NewParser(input).Parse()
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return tree
}

func TestParsePool(t *testing.T) {
	input := `ltm pool /Common/pool_http {
    members {
        /Common/10.0.0.2:80 { }
        /Common/10.0.0.3:80 { }
    }
    monitor /Common/http
}`
	tree := mustParse(t, input)
	if len(tree.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(tree.Objects))
	}

	obj := tree.Objects[0]
	if obj.Type() != "ltm pool" {
		t.Errorf("type path %q", obj.Type())
	}
	if obj.Name != "/Common/pool_http" {
		t.Errorf("name %q", obj.Name)
	}

	v, ok := obj.Props.Get("members")
	if !ok {
		t.Fatal("missing members")
	}
	members, ok := v.(*Block)
	if !ok {
		t.Fatalf("members is %T, want *Block", v)
	}
	if got := members.Keys(); len(got) != 2 ||
		got[0] != "/Common/10.0.0.2:80" || got[1] != "/Common/10.0.0.3:80" {
		t.Errorf("member keys %v", got)
	}
	for _, e := range members.Entries {
		if blk, ok := e.Value.(*Block); !ok || blk.Len() != 0 {
			t.Errorf("member %q: expected empty block, got %#v", e.Key, e.Value)
		}
	}

	mon, ok := obj.Props.Get("monitor")
	if !ok {
		t.Fatal("missing monitor")
	}
	if s, ok := mon.(Scalar); !ok || s.Text != "/Common/http" {
		t.Errorf("monitor %#v", mon)
	}
}

func TestHeaderSplit(t *testing.T) {
	cases := []struct {
		input    string
		typePath string
		name     string
	}{
		{"ltm pool /Common/p { }", "ltm pool", "/Common/p"},
		{"ltm virtual vs_http { }", "ltm virtual", "vs_http"},
		{"sys global-settings { }", "sys global-settings", ""},
		{"net self /Common/10.0.0.5%2 { }", "net self", "/Common/10.0.0.5%2"},
		{"wom deduplication { }", "wom deduplication", ""},
		{"gtm monitor external /Common/ext { }", "gtm monitor external", "/Common/ext"},
	}
	for _, c := range cases {
		tree := mustParse(t, c.input)
		obj := tree.Objects[0]
		if obj.Type() != c.typePath || obj.Name != c.name {
			t.Errorf("%q: got type %q name %q, want %q %q",
				c.input, obj.Type(), obj.Name, c.typePath, c.name)
		}
	}
}

func TestFlagVersusSingleValue(t *testing.T) {
	tree := mustParse(t, "sys global-settings { mgmt-dhcp enabled }")
	v, _ := tree.Objects[0].Props.Get("mgmt-dhcp")
	if s, ok := v.(Scalar); !ok || s.Kind == ScalarBool || s.Text != "enabled" {
		t.Errorf("single-token value: got %#v", v)
	}

	tree = mustParse(t, "sys global-settings {\n    mgmt-dhcp\n}")
	v, _ = tree.Objects[0].Props.Get("mgmt-dhcp")
	if s, ok := v.(Scalar); !ok || s.Kind != ScalarBool {
		t.Errorf("flag-only value: got %#v", v)
	}
}

func TestInlineScalarList(t *testing.T) {
	tree := mustParse(t, "ltm virtual /Common/vs {\n    rules /Common/r1 /Common/r2\n}")
	v, _ := tree.Objects[0].Props.Get("rules")
	list, ok := v.(List)
	if !ok || len(list) != 2 {
		t.Fatalf("expected 2-item list, got %#v", v)
	}
	if list[0].(Scalar).Text != "/Common/r1" || list[1].(Scalar).Text != "/Common/r2" {
		t.Errorf("items %#v", list)
	}
}

func TestCommentStripping(t *testing.T) {
	with := mustParse(t, "ltm pool /Common/p {\n    # this is ignored\n    monitor /Common/http\n}")
	without := mustParse(t, "ltm pool /Common/p {\n    monitor /Common/http\n}")

	a, err := json.Marshal(with)
	if err != nil {
		t.Fatal(err)
	}
	b, err := json.Marshal(without)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(b) {
		t.Errorf("comment changed the parse:\n%s\n%s", a, b)
	}
}

func TestEmptyBodies(t *testing.T) {
	for _, input := range []string{
		"ltm pool /Common/p {}",
		"ltm pool /Common/p { }",
		"ltm pool /Common/p {\n}",
	} {
		tree := mustParse(t, input)
		if tree.Objects[0].Props.Len() != 0 {
			t.Errorf("%q: expected empty properties", input)
		}
	}
}

func TestKeyOrderPreserved(t *testing.T) {
	tree := mustParse(t, "ltm pool /Common/p {\n    zebra 1\n    alpha 2\n    mike 3\n}")
	keys := tree.Objects[0].Props.Keys()
	want := []string{"zebra", "alpha", "mike"}
	for i, k := range want {
		if keys[i] != k {
			t.Fatalf("key order %v, want %v", keys, want)
		}
	}
}

func TestQuotedValues(t *testing.T) {
	tree := mustParse(t, `ltm virtual /Common/vs {
    description "staging { braces } inside"
}`)
	v, _ := tree.Objects[0].Props.Get("description")
	if s := v.(Scalar); s.Text != "staging { braces } inside" {
		t.Errorf("got %q", s.Text)
	}
}

func TestUnterminatedString(t *testing.T) {
	_, err := NewParser("ltm virtual /Common/vs {\n    description \"never closed\n").Parse()
	var lexErr *LexError
	if !errors.As(err, &lexErr) {
		t.Fatalf("expected LexError, got %v", err)
	}
	if lexErr.Kind != UnterminatedString {
		t.Errorf("kind %v", lexErr.Kind)
	}
	if lexErr.Line != 2 {
		t.Errorf("line %d", lexErr.Line)
	}
}

func TestUnbalancedBraces(t *testing.T) {
	cases := []string{
		"ltm pool /Common/p {\n    monitor /Common/http\n",
		"}",
		"ltm pool /Common/p {\n    members {\n}",
	}
	for _, input := range cases {
		_, err := NewParser(input).Parse()
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("%q: expected ParseError, got %v", input, err)
		}
		if parseErr.Kind != UnbalancedBraces {
			t.Errorf("%q: kind %v", input, parseErr.Kind)
		}
	}
}

func TestHeaderWithoutBrace(t *testing.T) {
	_, err := NewParser("ltm pool /Common/p").Parse()
	var parseErr *ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if parseErr.Kind != UnexpectedEOF {
		t.Errorf("kind %v", parseErr.Kind)
	}

	_, err = NewParser("ltm pool /Common/p\nltm pool /Common/q { }").Parse()
	if !errors.As(err, &parseErr) || parseErr.Kind != UnexpectedToken {
		t.Errorf("newline after header: got %v", err)
	}
}

func TestDeepNesting(t *testing.T) {
	const depth = 60
	var b strings.Builder
	b.WriteString("ltm policy /Common/deep {\n")
	for i := 0; i < depth; i++ {
		fmt.Fprintf(&b, "level%d {\n", i)
	}
	b.WriteString("leaf done\n")
	for i := 0; i <= depth; i++ {
		b.WriteString("}\n")
	}

	tree := mustParse(t, b.String())
	block := tree.Objects[0].Props
	for i := 0; i < depth; i++ {
		v, ok := block.Get(fmt.Sprintf("level%d", i))
		if !ok {
			t.Fatalf("missing level%d", i)
		}
		block = v.(*Block)
	}
	if v, ok := block.Get("leaf"); !ok || v.(Scalar).Text != "done" {
		t.Fatalf("leaf not reached")
	}
}

func TestAnonymousBlocks(t *testing.T) {
	input := `sys ecm config {
    entries {
        {
            key a
        }
        {
            key b
        }
    }
}`
	tree := mustParse(t, input)
	v, _ := tree.Objects[0].Props.Get("entries")
	entries := v.(*Block)
	if got := entries.Keys(); len(got) != 2 || got[0] != "0" || got[1] != "1" {
		t.Fatalf("anonymous keys %v", got)
	}
	first, _ := entries.Get("0")
	if kv, _ := first.(*Block).Get("key"); kv.(Scalar).Text != "a" {
		t.Errorf("first anonymous block %#v", first)
	}
}

func TestMonitorMinOf(t *testing.T) {
	tree := mustParse(t, `ltm pool /Common/p {
    monitor min 1 of { /Common/m1 /Common/m2 }
}`)
	v, ok := tree.Objects[0].Props.Get("monitor min 1 of")
	if !ok {
		t.Fatalf("missing monitor min key, have %v", tree.Objects[0].Props.Keys())
	}
	list, ok := v.(List)
	if !ok || len(list) != 2 {
		t.Fatalf("expected 2-item list, got %#v", v)
	}
}

func TestIRuleRawBody(t *testing.T) {
	input := `ltm rule /Common/redirect {
when HTTP_REQUEST {
    # unbalanced { in a comment
    set host [HTTP::host]
    if { $host eq "www.example.com" } {
        HTTP::respond 200 content "{\"ok\":true}"
    }
}
}
ltm pool /Common/after {
    monitor /Common/http
}`
	tree := mustParse(t, input)
	if len(tree.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(tree.Objects))
	}

	rule := tree.Objects[0]
	if rule.Type() != "ltm rule" || rule.Name != "/Common/redirect" {
		t.Fatalf("rule header: %q %q", rule.Type(), rule.Name)
	}
	if rule.Props.Len() != 0 {
		t.Errorf("rule props should be empty")
	}
	if !strings.HasPrefix(rule.Raw, "when HTTP_REQUEST {") {
		t.Errorf("raw body start: %q", rule.Raw)
	}
	if !strings.Contains(rule.Raw, "set host [HTTP::host]") {
		t.Errorf("raw body missing set line: %q", rule.Raw)
	}
	if strings.Contains(rule.Raw, "/Common/after") {
		t.Errorf("raw capture overran the closing brace")
	}

	if tree.Objects[1].Type() != "ltm pool" {
		t.Errorf("object after rule: %q", tree.Objects[1].Type())
	}
}

func TestOpaqueBodies(t *testing.T) {
	input := `cli script /Common/helper {
proc script::run {} {
    puts "hello"
}
}
sys ntp {
    servers {
        10.0.0.1
    }
}`
	tree := mustParse(t, input)
	if len(tree.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(tree.Objects))
	}
	script := tree.Objects[0]
	if script.Type() != "cli script" || script.Props.Len() != 0 || script.Raw != "" {
		t.Errorf("cli script should parse to an empty object")
	}
	if tree.Objects[1].Type() != "sys ntp" {
		t.Errorf("object after script: %q", tree.Objects[1].Type())
	}
}

func TestTopologyRecords(t *testing.T) {
	input := `gtm topology ldns: subnet 10.0.0.0/8 server: datacenter /Common/DC1 {
    order 1
}
gtm topology ldns: continent AS server: pool /Common/apac {
    order 2
}
gtm global-settings load-balancing {
    topology-longest-match yes
}`
	tree := mustParse(t, input)

	topo := tree.Find("gtm topology", "/Common/Shared/topology")
	if topo == nil {
		t.Fatal("missing synthetic topology object")
	}
	v, _ := topo.Props.Get("records")
	records := v.(*Block)

	keys := records.Keys()
	want := []string{"topology_0", "topology_1", "longest-match-enabled"}
	if len(keys) != len(want) {
		t.Fatalf("record keys %v", keys)
	}
	for i := range want {
		if keys[i] != want[i] {
			t.Fatalf("record keys %v, want %v", keys, want)
		}
	}

	r0, _ := records.Get("topology_0")
	rec := r0.(*Block)
	if src, _ := rec.Get("source"); src.(Scalar).Text != "subnet 10.0.0.0/8" {
		t.Errorf("source %#v", src)
	}
	if dst, _ := rec.Get("destination"); dst.(Scalar).Text != "datacenter /Common/DC1" {
		t.Errorf("destination %#v", dst)
	}
	if order, _ := rec.Get("order"); order.(Scalar).Text != "1" {
		t.Errorf("order %#v", order)
	}

	if lm, _ := records.Get("longest-match-enabled"); lm.(Scalar).Text != "true" {
		t.Errorf("longest-match %#v", lm)
	}
}

func TestMultipleObjects(t *testing.T) {
	input := `ltm pool /Common/a { }
ltm node /Common/n1 {
    address 10.0.0.1
}
ltm pool /Common/b { }`
	tree := mustParse(t, input)
	if len(tree.Objects) != 3 {
		t.Fatalf("expected 3 objects, got %d", len(tree.Objects))
	}
	groups := tree.Groups()
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if groups[0].Type != "ltm pool" || len(groups[0].Objects) != 2 {
		t.Errorf("group 0: %q x%d", groups[0].Type, len(groups[0].Objects))
	}
	if groups[1].Type != "ltm node" || len(groups[1].Objects) != 1 {
		t.Errorf("group 1: %q x%d", groups[1].Type, len(groups[1].Objects))
	}
}

func TestSingleLineForeignBodies(t *testing.T) {
	input := `cli script /Common/x { }
ltm pool /Common/p { }`
	tree := mustParse(t, input)
	if len(tree.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(tree.Objects))
	}
	script := tree.Objects[0]
	if script.Type() != "cli script" || script.Props.Len() != 0 || script.Raw != "" {
		t.Errorf("one-line cli script should parse to an empty object")
	}
	if tree.Objects[1].Type() != "ltm pool" {
		t.Errorf("object after script: %q", tree.Objects[1].Type())
	}

	tree = mustParse(t, `ltm rule /Common/empty { }`)
	if len(tree.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(tree.Objects))
	}
	rule := tree.Objects[0]
	if rule.Type() != "ltm rule" || rule.Raw != "" || rule.Props.Len() != 0 {
		t.Errorf("one-line rule should parse to an empty object, got raw %q", rule.Raw)
	}
}

func TestRuleHeaderLineBraces(t *testing.T) {
	input := `ltm rule /Common/inline { when HTTP_REQUEST {
    pool /Common/pool_http
}
}
ltm pool /Common/pool_http { }`
	tree := mustParse(t, input)
	if len(tree.Objects) != 2 {
		t.Fatalf("expected 2 objects, got %d", len(tree.Objects))
	}
	rule := tree.Objects[0]
	if !strings.Contains(rule.Raw, "pool /Common/pool_http") {
		t.Errorf("rule body %q", rule.Raw)
	}
	if tree.Objects[1].Type() != "ltm pool" {
		t.Errorf("object after rule: %q", tree.Objects[1].Type())
	}
}

func TestUserDefinedVariables(t *testing.T) {
	input := `gtm monitor external /Common/custom_probe {
    defaults-from /Common/external
    run /Common/probe.sh
    user-defined ping_count 3
    user-defined dest_host www example com
    user-defined ping_count 5
}`
	tree := mustParse(t, input)
	if len(tree.Objects) != 1 {
		t.Fatalf("expected 1 object, got %d", len(tree.Objects))
	}

	props := tree.Objects[0].Props
	if got := props.Keys(); len(got) != 3 {
		t.Fatalf("keys %v", got)
	}
	v, ok := props.Get("user-defined")
	if !ok {
		t.Fatal("missing user-defined block")
	}
	vars, ok := v.(*Block)
	if !ok {
		t.Fatalf("user-defined is %T, want *Block", v)
	}
	if count, _ := vars.Get("ping_count"); count.(Scalar).Text != "5" {
		t.Errorf("ping_count = %v, want later declaration to win", count)
	}
	if host, _ := vars.Get("dest_host"); host.(Scalar).Text != "www example com" {
		t.Errorf("dest_host = %v", host)
	}

	// Other monitor kinds keep repeated keys for the normalizer to fold.
	tree = mustParse(t, "ltm monitor http /Common/m {\n    user-defined a 1\n    user-defined b 2\n}")
	if keys := tree.Objects[0].Props.Keys(); len(keys) != 2 {
		t.Errorf("non-external monitor keys %v", keys)
	}
}

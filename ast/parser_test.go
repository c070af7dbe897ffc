// Copyright (C) 2025 Michael J. Fromberger. All Rights Reserved.

package ast_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/creachadair/jstream"
	"github.com/creachadair/jstream/ast"
	"github.com/google/go-cmp/cmp"
)

// explode splits s into chunks of at most n bytes.
func explode(s string, n int) []string {
	var out []string
	for len(s) > n {
		out = append(out, s[:n])
		s = s[n:]
	}
	return append(out, s)
}

// snapshots runs a parser over the given chunks and returns the rendered
// state of the value after each visible change.
func snapshots(chunks ...string) ([]string, error) {
	p := ast.NewParser(jstream.Chunks(chunks...))
	var snaps []string
	for p.Next() {
		snaps = append(snaps, p.Value().JSON())
	}
	return snaps, p.Err()
}

func TestParser(t *testing.T) {
	tests := []struct {
		name   string
		chunks []string
		want   []string
		errIs  error // nil for a clean parse
	}{
		{"ObjectByBytes",
			explode(`{"name":"Alex","keys":[1,20,300]}`, 1),
			[]string{
				`{}`,
				`{"name":""}`,
				`{"name":"A"}`,
				`{"name":"Al"}`,
				`{"name":"Ale"}`,
				`{"name":"Alex"}`,
				`{"name":"Alex","keys":[]}`,
				`{"name":"Alex","keys":[1]}`,
				`{"name":"Alex","keys":[1,20]}`,
				`{"name":"Alex","keys":[1,20,300]}`,
			}, nil},

		{"Constant", []string{"true"}, []string{"true"}, nil},

		{"SplitNumber", []string{"3.", "14"}, []string{"3.14"}, nil},

		{"SplitArray", []string{"[", "1", ",2]"},
			[]string{"[]", "[1]", "[1,2]"}, nil},

		{"DuplicateKey", []string{`{"a":1,"a":2}`},
			[]string{`{}`, `{"a":1}`, `{"a":2}`}, nil},

		{"TruncatedArray", []string{"[1, 2"},
			[]string{"[]", "[1]", "[1,2]"}, jstream.ErrUnexpectedEnd},

		{"TrailingGarbage", []string{"[1,2] garbage"},
			[]string{"[]", "[1]", "[1,2]"}, jstream.ErrTrailingContent},

		{"Empty", []string{""}, nil, jstream.ErrUnexpectedEnd},

		{"SplitString", []string{`"ab`, `cd`, `e"`},
			[]string{`""`, `"ab"`, `"abcd"`, `"abcde"`}, nil},

		{"NestedEmpty", []string{`[[],{}]`},
			[]string{`[]`, `[[]]`, `[[],{}]`}, nil},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := snapshots(test.chunks...)
			if test.errIs == nil && err != nil {
				t.Errorf("Parse failed: %v", err)
			} else if test.errIs != nil && !errors.Is(err, test.errIs) {
				t.Errorf("Parse error: got %v, want %v", err, test.errIs)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Snapshots: (-want, +got)\n%s", diff)
			}
		})
	}
}

func TestStableContainers(t *testing.T) {
	// The same containers are returned across calls to Next, extended in
	// place, so a consumer may keep a reference to any part of the tree.
	p := ast.NewParser(jstream.Chunks("[1", ",[2", ",3]", ",4]"))
	if !p.Next() {
		t.Fatalf("Next failed: %v", p.Err())
	}
	root := p.Value().(*ast.Array)
	var inner *ast.Array
	for p.Next() {
		if got := p.Value(); got != ast.Value(root) {
			t.Errorf("Value: got %v, want %v", got, root)
		}
		if inner == nil && len(root.Values) > 1 {
			inner = root.Values[1].(*ast.Array)
		}
	}
	if err := p.Err(); err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got, want := root.JSON(), "[1,[2,3],4]"; got != want {
		t.Errorf("Root: got %#q, want %#q", got, want)
	}
	if got, want := inner.JSON(), "[2,3]"; got != want {
		t.Errorf("Inner: got %#q, want %#q", got, want)
	}
}

// parseOracle decodes input with the stock non-streaming parser.
func parseOracle(t *testing.T, input string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(input), &v); err != nil {
		t.Fatalf("Oracle parse %#q failed: %v", input, err)
	}
	return v
}

var parityInputs = []string{
	`null`,
	`true`,
	`-0.5`,
	`1e-3`,
	`"steady state"`,
	`"tab\there \"quoted\" back\\slash"`,
	`"😀 π ·"`,
	`[]`,
	`{}`,
	`[[[]]]`,
	`[1,[2,[3,[4]]]]`,
	`{"a":{"b":{"c":[false]}}}`,
	`{"name":"Alex","keys":[1,20,300],"ok":true,"extra":null}`,
	`{"dup":1,"other":2,"dup":[3]}`,
	`  [ 1 ,  2.5e2 , "x y" , { } ]  `,
}

func TestOracleParity(t *testing.T) {
	// The final value must match the oracle parse of the whole input, no
	// matter how the input is chunked.
	for _, input := range parityInputs {
		if !json.Valid([]byte(input)) {
			t.Fatalf("Invalid parity input: %#q", input)
		}
		want := parseOracle(t, input)
		for _, size := range []int{1, 2, 3, 7, len(input)} {
			v, err := ast.Parse(jstream.Chunks(explode(input, size)...))
			if err != nil {
				t.Errorf("Input %#q size %d: Parse failed: %v", input, size, err)
				continue
			}
			got := parseOracle(t, v.JSON())
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("Input %#q size %d: (-oracle, +got)\n%s", input, size, diff)
			}
		}
	}
}

func TestRejectionParity(t *testing.T) {
	// Everything the oracle rejects, the streaming parser must reject.
	inputs := []string{
		``, `  `, `x`, `tru`, `truth`, `nulll`,
		`01`, `1.`, `.5`, `+1`, `-`, `1e`, `1e+`, `1..2`, `1e999`,
		`"unterminated`, "\"ctl\x01\"", `"\q"`, `"\u12g4"`,
		`[`, `[1,`, `[1,]`, `[1 2]`, `[1,2]]`,
		`{`, `{]`, `{"a"}`, `{"a":}`, `{"a":1,}`, `{"a":1 "b":2}`, `{'a':1}`,
		`{a:1}`, `[1,2] 3`, `nan`, `Infinity`,
	}
	for _, input := range inputs {
		var v any
		if err := json.Unmarshal([]byte(input), &v); err == nil {
			t.Errorf("Oracle accepted %#q; bad test case", input)
			continue
		}
		if _, err := ast.Parse(jstream.Chunks(input)); err == nil {
			t.Errorf("Input %#q: Parse did not report an error", input)
		} else {
			t.Logf("Input %#q: got expected error: %v", input, err)
		}
	}
}

// checkGrowth verifies that next extends prev: equal types at shared
// positions, strings grown by suffix only, containers extended at the tail.
func checkGrowth(t *testing.T, path string, prev, next any) {
	t.Helper()
	switch p := prev.(type) {
	case nil, bool, float64:
		if !cmp.Equal(prev, next) {
			t.Errorf("At %s: %v changed to %v", path, prev, next)
		}
	case string:
		n, ok := next.(string)
		if !ok || len(n) < len(p) || n[:len(p)] != p {
			t.Errorf("At %s: %q did not grow into %v", path, p, next)
		}
	case []any:
		n, ok := next.([]any)
		if !ok || len(n) < len(p) {
			t.Errorf("At %s: %v did not extend %v", path, next, p)
			return
		}
		for i, pv := range p {
			checkGrowth(t, fmt.Sprintf("%s[%d]", path, i), pv, n[i])
		}
	case map[string]any:
		n, ok := next.(map[string]any)
		if !ok || len(n) < len(p) {
			t.Errorf("At %s: %v did not extend %v", path, next, p)
			return
		}
		for k, pv := range p {
			nv, ok := n[k]
			if !ok {
				t.Errorf("At %s: key %q disappeared", path, k)
				continue
			}
			checkGrowth(t, fmt.Sprintf("%s.%s", path, k), pv, nv)
		}
	default:
		t.Fatalf("At %s: unexpected type %T", path, prev)
	}
}

func TestMonotonicGrowth(t *testing.T) {
	// Every intermediate value is a prefix of its successor. Inputs with
	// duplicate keys are excluded: an override is the one sanctioned type
	// change.
	for _, input := range parityInputs {
		if input == `{"dup":1,"other":2,"dup":[3]}` {
			continue
		}
		for _, size := range []int{1, 3} {
			snaps, err := snapshots(explode(input, size)...)
			if err != nil {
				t.Fatalf("Input %#q: Parse failed: %v", input, err)
			}
			var prev any
			for i, snap := range snaps {
				cur := parseOracle(t, snap)
				if i > 0 {
					checkGrowth(t, "$", prev, cur)
				}
				prev = cur
			}
		}
	}
}

// record formats a completion callback invocation for comparison.
func record(v ast.Value, p ast.Path) string {
	return fmt.Sprintf("%v %s", p.Segments(), v.JSON())
}

func TestCompleteCallback(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`true`, []string{"[] true"}},
		{`"hi"`, []string{`[] "hi"`}},
		{`[]`, []string{"[] []"}},
		{`{"name":"Alex","keys":[1,20,300]}`, []string{
			`[name] "Alex"`,
			`[keys 0] 1`,
			`[keys 1] 20`,
			`[keys 2] 300`,
			`[keys] [1,20,300]`,
			`[] {"name":"Alex","keys":[1,20,300]}`,
		}},

		// The value replaced by a duplicate key is never reported.
		{`{"a":1,"a":2}`, []string{
			`[a] 2`,
			`[] {"a":2}`,
		}},
		// A non-adjacent duplicate cannot be suppressed: the earlier value
		// was already proven to stand when a different key followed it.
		{`{"a":1,"b":2,"a":3}`, []string{
			`[a] 1`,
			`[b] 2`,
			`[a] 3`,
			`[] {"a":3,"b":2}`,
		}},

		{`[[1],{"k":null}]`, []string{
			`[0 0] 1`,
			`[0] [1]`,
			`[1 k] null`,
			`[1] {"k":null}`,
			`[] [[1],{"k":null}]`,
		}},
	}
	for _, test := range tests {
		// The callback sequence must not depend on chunking.
		for _, size := range []int{1, 4, len(test.input)} {
			var got []string
			p := ast.NewParser(jstream.Chunks(explode(test.input, size)...))
			p.OnComplete(func(v ast.Value, path ast.Path) {
				got = append(got, record(v, path))
			})
			for p.Next() {
			}
			if err := p.Err(); err != nil {
				t.Fatalf("Input %#q: Parse failed: %v", test.input, err)
			}
			if diff := cmp.Diff(test.want, got); diff != "" {
				t.Errorf("Input %#q size %d: callbacks (-want, +got)\n%s",
					test.input, size, diff)
			}
		}
	}
}

func TestParse(t *testing.T) {
	v, err := ast.Parse(jstream.Chunks(`{"ok": [1, 2, 3]}`))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got, want := v.JSON(), `{"ok":[1,2,3]}`; got != want {
		t.Errorf("Parse: got %#q, want %#q", got, want)
	}

	if v, err := ast.Parse(jstream.Chunks("[true", " ")); !errors.Is(err, jstream.ErrUnexpectedEnd) {
		t.Errorf("Parse: got %v, %v; want %v", v, err, jstream.ErrUnexpectedEnd)
	}
}

func TestParserSourceError(t *testing.T) {
	fail := errors.New("connection lost")
	calls := 0
	src := jstream.SourceFunc(func() (string, error) {
		calls++
		if calls == 1 {
			return `{"partial": [1, 2`, nil
		}
		return "", fail
	})
	p := ast.NewParser(src)
	var snaps []string
	for p.Next() {
		snaps = append(snaps, p.Value().JSON())
	}
	if !errors.Is(p.Err(), fail) {
		t.Errorf("Err: got %v, want %v", p.Err(), fail)
	}
	want := []string{`{}`, `{"partial":[]}`, `{"partial":[1]}`}
	if diff := cmp.Diff(want, snaps); diff != "" {
		t.Errorf("Snapshots: (-want, +got)\n%s", diff)
	}
}

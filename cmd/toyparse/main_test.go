package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(strings.NewReader(stdin), &out, &errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestTokenizeText(t *testing.T) {
	out, _, err := execute(t, "", "tokenize", "x = struct{};")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "[Ident(\"x\"), AssignOp, Keyword(\"struct\"), CuBracketOpen, CuBracketClose, SemiColon]\n"
	if out != want {
		t.Errorf("got %q, want %q", out, want)
	}
}

func TestParseFromStdin(t *testing.T) {
	out, _, err := execute(t, "fn1(fn2(fn3(12)),12,34)\n", "parse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "fn1(fn2(fn3(12)), 12, 34)\n" {
		t.Errorf("got %q", out)
	}
}

func TestParseJSON(t *testing.T) {
	out, _, err := execute(t, "", "--format", "json", "parse", "f(1)")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got map[string]interface{}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	want := map[string]interface{}{
		"type": "FnCall",
		"name": "f",
		"args": []interface{}{
			map[string]interface{}{"type": "Int", "value": float64(1)},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestProgramYAML(t *testing.T) {
	out, _, err := execute(t, "", "program", "--format", "yaml", "a = 1; b: bool = true;")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var got []map[string]interface{}
	if err := yaml.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if len(got) != 2 || got[0]["name"] != "a" || got[1]["name"] != "b" {
		t.Errorf("got %v", got)
	}
	if _, ok := got[1]["type"]; !ok {
		t.Error("expected type annotation on b")
	}
}

func TestDeclAndPrimitive(t *testing.T) {
	out, _, err := execute(t, "", "decl", "x:int=1;")
	if err != nil {
		t.Fatalf("decl: %v", err)
	}
	if out != "x: int = 1;\n" {
		t.Errorf("decl: got %q", out)
	}

	out, _, err = execute(t, "", "primitive", "4.2xyz")
	if err != nil {
		t.Fatalf("primitive: %v", err)
	}
	if out != "Float(4.2) rest=\"xyz\"\n" {
		t.Errorf("primitive: got %q", out)
	}
}

func TestFailureIsReported(t *testing.T) {
	out, errOut, err := execute(t, "", "--format", "json", "tokenize", `x = 1"2;`)
	if !errors.Is(err, errReported) {
		t.Fatalf("expected errReported, got %v", err)
	}
	if out != "" {
		t.Errorf("expected empty stdout, got %q", out)
	}
	var doc map[string]map[string]interface{}
	if err := json.Unmarshal([]byte(errOut), &doc); err != nil {
		t.Fatalf("decode %q: %v", errOut, err)
	}
	if doc["error"]["kind"] != "CannotStartStringInOtherToken" {
		t.Errorf("kind: got %v", doc["error"]["kind"])
	}
}

func TestInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "", "--format", "xml", "parse", "1")
	if err == nil || !strings.Contains(err.Error(), "unknown output format") {
		t.Errorf("expected format error, got %v", err)
	}
}

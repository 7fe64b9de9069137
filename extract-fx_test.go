/*
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package extractfx

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func rewrite(t *testing.T, cfg Config, input string) (string, error) {
	t.Helper()
	var out strings.Builder
	err := Process(cfg, strings.NewReader(input), &out)
	return out.String(), err
}

func TestPassthrough(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"empty", ""},
		{"code", "x = y"},
		{"code with newline", "x = y\n"},
		{"no trailing newline", "a\nb"},
		{"crlf terminators", "a\r\nb = \"s\";\r\n"},
		{"directive", "#include <string>\n"},
		{"directive with mismatched quote", "#x = y\"\n"},
		{"directive continuation", "#define A \\\n  \" b\"\n"},
		{"hash not first on line", "int n = a # b;\n"},
		{"line comment", "xx // foo \"bar\n"},
		{"line comment continuation", "xx // foo \\\nc \"\n"},
		{"block comment", "xx /* \" */ yy\n"},
		{"multiline block comment", "xx /* ss\n \" */ yy\n"},
		{"plain literal", "s = \"foo.bar\";\n"},
		{"escaped quote", "s = \"foo\\\"bar\";\n"},
		{"literal continuation", "s = \"foo\\\n\\\"bar\";\n"},
		{"char literal quote", "c = '\"';\n"},
		{"char literal escaped quote", "c = '\\'';\n"},
		{"char literal escaped backslash", "c = '\\\\';\n"},
		{"multichar literal", "c = '\"and\"';\n"},
		{"digit separators", "n = 1'000'000;\n"},
		{"raw literal", "s = R\"xy(foo\".bar)xy\";\n"},
		{"raw literal spanning lines", "s = R\"xy(foo\n\"bar)xy\";\n"},
		{"raw near-miss terminators", "R\"xy(foo)\"bar)yx\"fum)xy\""},
		{"wide literal", "L\"no fields\""},
		{"braces in plain literal", "std::format(\"The number is: {}\", 3 * 5)"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rewrite(t, Config{}, tt.input)
			if err != nil {
				t.Fatalf("rewrite error: %v", err)
			}
			if diff := cmp.Diff(tt.input, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRewrite(t *testing.T) {
	testCases := []struct {
		name   string
		input  string
		output string
	}{
		{
			"single field",
			"f\"The number is: {3 * 5}\"",
			"std::format(\"The number is: {}\", 3 * 5)",
		},
		{
			"x literal",
			"x\"The numbers are: {a} and {b}\"",
			"\"The numbers are: {} and {}\", a, b",
		},
		{
			"nested width field",
			"f\"The number is: {a:x{b}d}\"",
			"std::format(\"The number is: {:x{}d}\", a, b)",
		},
		{
			"doubled braces",
			"f\"Just braces {{a}} {a}\"",
			"std::format(\"Just braces {{a}} {}\", a)",
		},
		{
			"debug suffix",
			"f\"{foo = }\"",
			"std::format(\"foo = {}\", foo )",
		},
		{
			"debug suffix tight",
			"f\"{foo=}\"",
			"std::format(\"foo={}\", foo)",
		},
		{
			"wide f literal",
			"Lf\"The number is: {3 * 5}\"",
			"std::format(L\"The number is: {}\", 3 * 5)",
		},
		{
			"utf8 f literal",
			"u8f\"{v}\"",
			"std::format(u8\"{}\", v)",
		},
		{
			"unknown encoding letter stays outside",
			"Wf\"a {b}\"",
			"Wstd::format(\"a {}\", b)",
		},
		{
			"ternary before spec",
			"f\"The number is: {a ? b : c :4d}\"",
			"std::format(\"The number is: {:4d}\", a ? b : c )",
		},
		{
			"scope operator",
			"f\"Use colon colon {std::rand()}\"",
			"std::format(\"Use colon colon {}\", std::rand())",
		},
		{
			"comment in field",
			"f\"The number is: {3 /* : } ignored */ * 5:fmt}\"",
			"std::format(\"The number is: {:fmt}\", 3 /* : } ignored */ * 5)",
		},
		{
			"x raw literal",
			"xR\"xy(The numbers are: {a} and {b})xy\"",
			"R\"xy(The numbers are: {} and {})xy\", a, b",
		},
		{
			"f literal in field",
			"f\"The number is: {f\"Five: {5}\"} end\"",
			"std::format(\"The number is: {} end\", std::format(\"Five: {}\", 5))",
		},
		{
			"plain literal in field",
			"f\"The number is: {std::strlen(\"He{ } j\")}\"",
			"std::format(\"The number is: {}\", std::strlen(\"He{ } j\"))",
		},
		{
			"braced initializer in field",
			"f\"The number is: {MyType{}}\"",
			"std::format(\"The number is: {}\", MyType{})",
		},
		{
			"multiline raw f literal",
			"print(fR\"(Sum:\n{a + b})\");\n",
			"print(std::format(R\"(Sum:\n{})\", a + b));\n",
		},
		{
			"surrounding code preserved",
			"auto s = f\"n = {n}\"; // done\n",
			"auto s = std::format(\"n = {}\", n); // done\n",
		},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rewrite(t, Config{}, tt.input)
			if err != nil {
				t.Fatalf("rewrite error: %v", err)
			}
			if diff := cmp.Diff(tt.output, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRewriteErrors(t *testing.T) {
	testCases := []struct {
		input string
		error string
	}{
		{"xx /* ss", "/* comment unterminated at end of input"},
		{"#x = y \\", `input ends with a line ending in \`},
		{"xx //  \\", `input ends with a line ending in \`},
		{"foo \"", "line 1: line ends inside a string literal"},
		{"foo\n\"bar", "line 2: line ends inside a string literal"},
		{"\"foo\\", `input ends with a \ last on a line inside a string literal`},
		{"R\"abc", "input ends inside a raw literal delimiter"},
		{"R\"a b(x)a b\"", "line 1: invalid character ' ' in raw literal delimiter"},
		{"R\"xy(foo", "input ends inside a raw literal"},
		{"f\"{{} {a}\"", "line 1: a } in an f/x literal body must be doubled"},
		{"f\"{a:x{b:x}d}\"", "line 1: a : is not allowed inside a nested width field"},
		{"f\"{3\n* 5}\"", "line 1: line ends inside an expression field"},
		{"f\"{3 // comment * 5}\"", "line 1: line ends inside an expression field"},
		{"fR\"xy({3 * 5)xy\"", "line 1: unbalanced ')' in an expression field"},
		{"f\"{a[0)}\"", "line 1: mismatched ')', expected ']'"},
		{"f\"{a ? b}\"", "line 1: a ? without matching : in an expression field"},
		{"f\"{}\"", "line 1: empty expression field"},
		{"f\"{3 /* c \"", "line 1: line ends inside a comment in an expression field"},
		{"f\"{3 /*c\\", `input ends with a \ last on a line inside an expression field`},
	}
	for _, tt := range testCases {
		t.Run(tt.error, func(t *testing.T) {
			_, err := rewrite(t, Config{}, tt.input)
			if err == nil {
				t.Fatalf("expected error %q", tt.error)
			}
			if diff := cmp.Diff(tt.error, err.Error()); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestErrorTypes(t *testing.T) {
	_, err := rewrite(t, Config{}, "f\"{3\n* 5}\"")
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %T", err)
	}
	if perr.Line != 1 {
		t.Errorf("Line = %d, want 1", perr.Line)
	}

	_, err = rewrite(t, Config{}, "xx /* ss")
	var eerr *EarlyEndError
	if !errors.As(err, &eerr) {
		t.Fatalf("expected *EarlyEndError, got %T", err)
	}
}

func TestFunctionName(t *testing.T) {
	testCases := []struct {
		name   string
		fn     string
		input  string
		output string
	}{
		{"default", "", "f\"{x}\"", "std::format(\"{}\", x)"},
		{"override", "fmt::format", "f\"{x}\"", "fmt::format(\"{}\", x)"},
		{"arity marker", "check*", "f\"{a} and {b}\"", "check2(\"{} and {}\", a, b)"},
		{"arity marker without fields", "check*", "f\"hi\"", "check0(\"hi\")"},
		{"name ignored for x literals", "check*", "x\"{a}\"", "\"{}\", a"},
	}
	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rewrite(t, Config{FunctionName: tt.fn}, tt.input)
			if err != nil {
				t.Fatalf("rewrite error: %v", err)
			}
			if diff := cmp.Diff(tt.output, got); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLineDirectives(t *testing.T) {
	cfg := Config{SourcePath: "src/main.cpp", LineDirectives: true}
	input := "print(f\"v: {a}\");\n"
	want := "print(std::format(\"v: {}\"\n" +
		"#line 1 \"src/main.cpp\"\n" +
		"          , a\n" +
		"#line 1 \"src/main.cpp\"\n" +
		"              ));\n"
	got, err := rewrite(t, cfg, input)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}

func TestLineDirectivesOffPreservesLineCount(t *testing.T) {
	input := "a = f\"{x}\";\nb = f\"{y:{w}}\";\n"
	got, err := rewrite(t, Config{}, input)
	if err != nil {
		t.Fatalf("rewrite error: %v", err)
	}
	if wantN, gotN := strings.Count(input, "\n"), strings.Count(got, "\n"); wantN != gotN {
		t.Errorf("newline count = %d, want %d in output:\n%s", gotN, wantN, got)
	}
}

func TestIdempotence(t *testing.T) {
	input := "print(f\"n = {n}, m = {m:>{w}}\");\nputs(x\"v: {v}\");\n"
	once, err := rewrite(t, Config{}, input)
	if err != nil {
		t.Fatalf("first rewrite error: %v", err)
	}
	twice, err := rewrite(t, Config{}, once)
	if err != nil {
		t.Fatalf("second rewrite error: %v", err)
	}
	if diff := cmp.Diff(once, twice); diff != "" {
		t.Errorf("second rewrite changed the output (-once +twice):\n%s", diff)
	}
}

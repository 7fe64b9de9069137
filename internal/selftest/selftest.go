// Package selftest carries the embedded rewrite corpus behind the CLI's
// --test flag. The same cases run under go test; the CLI runner exists so a
// deployed binary can verify itself without a Go toolchain present.
package selftest

import (
	"fmt"
	"io"
	"strings"

	extractfx "github.com/BengtGustafsson/extract-fx"
)

type testCase struct {
	name     string
	in       string
	out      string // expected output; empty means the input passes through unchanged
	fail     bool
	fn       string // formatting function override; empty selects std::format
	lineDirs bool
}

var cases = []testCase{
	// Basic passthrough.
	{name: "empty", in: ""},
	{name: "plain code", in: "x = y"},
	{name: "plain code with newline", in: "x = y\n"},
	{name: "directive", in: "#x = y\n"},
	{name: "directive with mismatched quote", in: "#x = y\"\n"},
	{name: "directive continuation with mismatched quote", in: "#x = y\\ \n\" c\"\\n"},
	{name: "directive with two continuations", in: "#x = y\\ \nfoo \\\n\" c\"\\n"},
	{name: "hash not first on line", in: "int n = a # b;"},
	{name: "line comment", in: "xx // foo"},
	{name: "line comment continuation with mismatched quote", in: "xx // foo \\ \nc \""},
	{name: "block comment with mismatched quote", in: "xx /* \" */ yy"},
	{name: "multiline block comment with mismatched quote", in: "xx /* ss\n \" */ yy"},
	{name: "unterminated block comment", in: "xx /* ss", fail: true},
	{name: "unterminated multiline block comment", in: "xx /* ss\n \"/ yy *", fail: true},
	{name: "directive continuation at end of input", in: "#x = y \\", fail: true},
	{name: "line comment continuation at end of input", in: "xx //  \\", fail: true},

	// Non-raw literals.
	{name: "empty literal", in: "\"\""},
	{name: "plain literal", in: "\"foo.bar\""},
	{name: "escaped quote", in: "\"foo\\\"bar\""},
	{name: "escaped backslash", in: "\"foo\\\\bar\""},
	{name: "literal continuation", in: "\"foo\\\n\\\"bar\""},
	{name: "unterminated literal", in: "foo \"", fail: true},
	{name: "unterminated literal on second line", in: "foo\n\"", fail: true},
	{name: "literal continuation then unterminated", in: "\"foo\\ \nbar", fail: true},
	{name: "literal backslash at end of input", in: "\"foo\\", fail: true},

	// Character literals.
	{name: "char literal quote", in: "c = '\"';"},
	{name: "char literal escaped quote", in: "c = '\\'';"},
	{name: "char literal escaped backslash", in: "c = '\\\\';"},
	{name: "multichar literal", in: "c = '\"and\"';"},
	{name: "digit separators", in: "n = 1'000'000;"},

	// Raw literals.
	{name: "raw empty", in: "R\"()\""},
	{name: "raw empty with delimiter", in: "R\"xy()xy\""},
	{name: "raw body", in: "R\"xy(foo.bar)xy\""},
	{name: "raw quote in body", in: "R\"xy(foo\".bar)xy\""},
	{name: "raw backslash quote", in: "R\"xy(foo\\\"bar)xy\""},
	{name: "raw double backslash", in: "R\"xy(foo\\\\bar)xy\""},
	{name: "raw near-miss terminators", in: "R\"xy(foo)\"bar)yx\"fum)xy\""},
	{name: "raw spanning lines", in: "R\"xy(foo\n\"bar)xy\""},
	{name: "raw terminator in column one", in: "R\"xy(foo\n)xy\""},
	{name: "raw delimiter hits end of line", in: "R\"abc", fail: true},
	{name: "raw delimiter hits end of line mid input", in: "R\"abc\nd)", fail: true},
	{name: "raw unterminated on last line", in: "foo R\"xy(", fail: true},
	{name: "raw unterminated on second line", in: "foo\nR\"(xy)z\"", fail: true},
	{name: "raw delimiter mismatch empty vs z", in: "foo R\"(xy)z\"", fail: true},
	{name: "raw delimiter mismatch w vs z", in: "foo R\"w(xy)z\")\"", fail: true},
	{name: "raw unterminated two lines no delimiter", in: "R\"(foo \nbar", fail: true},
	{name: "raw unterminated two lines", in: "R\"xy(foo \nbar", fail: true},
	{name: "raw delimiter mismatch two lines", in: "R\"xy(foo \nbar)yx\"", fail: true},

	// Field extraction.
	{
		name: "single field",
		in:   "f\"The number is: {3 * 5}\"",
		out:  "std::format(\"The number is: {}\", 3 * 5)",
	},
	{
		name: "f literal without fields",
		in:   "f\"plain\"",
		out:  "std::format(\"plain\")",
	},
	{
		name: "x literal",
		in:   "x\"The numbers are: {a} and {b}\"",
		out:  "\"The numbers are: {} and {}\", a, b",
	},
	{
		name: "x literal without fields",
		in:   "x\"plain\"",
		out:  "\"plain\"",
	},
	{
		name: "x literal with specs",
		in:   "x\"The numbers are: {a:x} and {b:5}\"",
		out:  "\"The numbers are: {:x} and {:5}\", a, b",
	},
	{
		name: "nested width field",
		in:   "f\"The number is: {a:{b}}\"",
		out:  "std::format(\"The number is: {:{}}\", a, b)",
	},
	{
		name: "nested width field inside spec",
		in:   "f\"The number is: {a:x{b}d}\"",
		out:  "std::format(\"The number is: {:x{}d}\", a, b)",
	},
	{
		name: "adjacent fields",
		in:   "f\"{a}{b}\"",
		out:  "std::format(\"{}{}\", a, b)",
	},
	{
		name: "ternary before spec",
		in:   "f\"The number is: {a ? b : c :4d}\"",
		out:  "std::format(\"The number is: {:4d}\", a ? b : c )",
	},
	{
		name: "nested ternary left",
		in:   "f\"The number is: {a ? b ? c : d : c :4d}\"",
		out:  "std::format(\"The number is: {:4d}\", a ? b ? c : d : c )",
	},
	{
		name: "nested ternary right",
		in:   "f\"The number is: {a ? b : c ? d : e :4d}\"",
		out:  "std::format(\"The number is: {:4d}\", a ? b : c ? d : e )",
	},
	{
		name: "braced initializer in field",
		in:   "f\"The number is: {MyType{}}\"",
		out:  "std::format(\"The number is: {}\", MyType{})",
	},
	{
		name: "doubled braces stay doubled",
		in:   "f\"Just braces {{a}} {a}\"",
		out:  "std::format(\"Just braces {{a}} {}\", a)",
	},
	{
		name: "scope operator",
		in:   "f\"Use colon colon {std::rand()}\"",
		out:  "std::format(\"Use colon colon {}\", std::rand())",
	},
	{
		name: "scope operator with spec",
		in:   "f\"Use colon colon {std::rand():fmt}\"",
		out:  "std::format(\"Use colon colon {:fmt}\", std::rand())",
	},

	// Comments in fields.
	{
		name: "comment in field",
		in:   "f\"The number is: {3 /* comment */ * 5}\"",
		out:  "std::format(\"The number is: {}\", 3 /* comment */ * 5)",
	},
	{
		name: "colon hidden in comment",
		in:   "f\"The number is: {3 /* : ignored */ * 5:fmt}\"",
		out:  "std::format(\"The number is: {:fmt}\", 3 /* : ignored */ * 5)",
	},
	{
		name: "brace hidden in comment",
		in:   "f\"The number is: {3 /* } ignored */ * 5:f{m}t}\"",
		out:  "std::format(\"The number is: {:f{}t}\", 3 /* } ignored */ * 5, m)",
	},
	{
		name: "comment continuation in field",
		in:   "f\"The number is: {3 /* comment \\\ncontinues */ * 5}\"",
		out:  "std::format(\"The number is: {}\", 3 /* comment \\\ncontinues */ * 5)",
	},

	// Raw f/x literals.
	{
		name: "x raw literal",
		in:   "xR\"(The numbers are: {a} and {b})\"",
		out:  "R\"(The numbers are: {} and {})\", a, b",
	},
	{
		name: "x raw literal with delimiter",
		in:   "xR\"xy(The numbers are: {a} and {b})xy\"",
		out:  "R\"xy(The numbers are: {} and {})xy\", a, b",
	},
	{
		name: "f raw literal with multiline comment",
		in:   "fR\"(The number is: {3 /* comment\ncontinues */ * 5})\"",
		out:  "std::format(R\"(The number is: {})\", 3 /* comment\ncontinues */ * 5)",
	},
	{
		name: "f raw literal comment with near-miss terminators",
		in:   "fR\"xy(The number is: {3 /* comment\nxy) )\" yx)\" continues */ * 5})xy\"",
		out:  "std::format(R\"xy(The number is: {})xy\", 3 /* comment\nxy) )\" yx)\" continues */ * 5)",
	},

	// Literals in fields.
	{
		name: "plain literal in field",
		in:   "f\"The number is: {std::strlen(\"He{ } j\")}\"",
		out:  "std::format(\"The number is: {}\", std::strlen(\"He{ } j\"))",
	},
	{
		name: "raw literal in field",
		in:   "f\"The number is: {std::strlen(R\"(Hej)\")}\"",
		out:  "std::format(\"The number is: {}\", std::strlen(R\"(Hej)\"))",
	},
	{
		name: "multiline raw literal in field",
		in:   "f\"The number is: {std::strlen(R\"xy(Hej\n{{}})xy\")}\"",
		out:  "std::format(\"The number is: {}\", std::strlen(R\"xy(Hej\n{{}})xy\"))",
	},

	// f literals nested in f literal fields.
	{
		name: "f literal in field",
		in:   "f\"The number is: {f\"Five: {5}\"} end\"",
		out:  "std::format(\"The number is: {} end\", std::format(\"Five: {}\", 5))",
	},
	{
		name: "f literal in field with continuation",
		in:   "f\"The number is: {f\"Fi\\\nve: {5}\"}\"",
		out:  "std::format(\"The number is: {}\", std::format(\"Fi\\\nve: {}\", 5))",
	},
	{
		name: "f raw literal in field",
		in:   "f\"The number is: {fR\"xy(Five: {5})xy\"}\"",
		out:  "std::format(\"The number is: {}\", std::format(R\"xy(Five: {})xy\", 5))",
	},
	{
		name: "multiline f raw literal in field",
		in:   "f\"The number is: {fR\"xy(Fi\nve: {5})xy\"}\"",
		out:  "std::format(\"The number is: {}\", std::format(R\"xy(Fi\nve: {})xy\", 5))",
	},

	// Debug '=' suffix.
	{
		name: "debug suffix with spaces",
		in:   "f\"{foo = }\"",
		out:  "std::format(\"foo = {}\", foo )",
	},
	{
		name: "debug suffix tight",
		in:   "f\"{foo=}\"",
		out:  "std::format(\"foo={}\", foo)",
	},

	// Encoding prefixes.
	{
		name: "wide f literal",
		in:   "Lf\"The number is: {3 * 5}\"",
		out:  "std::format(L\"The number is: {}\", 3 * 5)",
	},
	{
		name: "utf8 f literal",
		in:   "u8f\"{v}\"",
		out:  "std::format(u8\"{}\", v)",
	},
	{
		name: "wide x literal",
		in:   "Lx\"{a}\"",
		out:  "L\"{}\", a",
	},
	{
		name: "wide plain literal passes through",
		in:   "L\"no fields\"",
	},
	{
		name: "unknown encoding letter stays outside",
		in:   "Wf\"a {b}\"",
		out:  "Wstd::format(\"a {}\", b)",
	},

	// Function name configuration.
	{
		name: "name override",
		in:   "f\"{x}\"",
		out:  "fmt::format(\"{}\", x)",
		fn:   "fmt::format",
	},
	{
		name: "arity marker",
		in:   "f\"{a} and {b}\"",
		out:  "check2(\"{} and {}\", a, b)",
		fn:   "check*",
	},
	{
		name: "arity marker without fields",
		in:   "f\"hi\"",
		out:  "check0(\"hi\")",
		fn:   "check*",
	},

	// Line directives.
	{
		name:     "line directives",
		in:       "f\"v: {a}\"",
		out:      "std::format(\"v: {}\"\n#line 1 \"<test>\"\n    , a\n#line 1 \"<test>\"\n        )",
		lineDirs: true,
	},

	// Output of a rewrite is stable under a second rewrite.
	{name: "rewritten output passes through", in: "std::format(\"The number is: {}\", 3 * 5)"},

	// Negative field cases.
	{name: "lone right brace", in: "f\"Just braces {{} {a}\"", fail: true},
	{name: "colon in nested width field", in: "f\"The number is: {a:x{b:x}d}\"", fail: true},
	{name: "line ends in field", in: "f\"The number is: {3\n* 5}\"", fail: true},
	{name: "literal ends in field", in: "f\"The number is: {3 * 5\"", fail: true},
	{name: "raw literal ends in field", in: "fR\"xy(The number is: {3 * 5)xy\"", fail: true},
	{name: "literal ends in format spec", in: "f\"The number is: {3 * 5: a\"", fail: true},
	{name: "raw literal ends in format spec", in: "fR\"xy(The number is: {3 * 5: a)xy\"", fail: true},
	{name: "literal ends in nested field", in: "f\"The number is: {3 * 5:{3\"", fail: true},
	{name: "raw literal ends in nested field", in: "fR\"xy(The number is: {3 * 5:{3)xy\"", fail: true},
	{name: "literal ends in field comment", in: "f\"The number is: {3 * 5 /*comment \"", fail: true},
	{name: "raw literal ends in field comment", in: "fR\"x(The number is: {3 * 5 /*comment )x\"", fail: true},
	{name: "input ends in field comment", in: "f\"The number is: {3 * 5 /*comment\\", fail: true},
	{name: "line comment swallows closer", in: "f\"The number is: {3 // comment * 5}\"", fail: true},
	{name: "ternary without colon", in: "f\"{a ? b}\"", fail: true},
	{name: "empty field", in: "f\"{}\"", fail: true},
	{name: "empty field with spec", in: "f\"{:d}\"", fail: true},
}

// Run executes the corpus, reporting each mismatch to w, and returns the
// number of failing cases.
func Run(w io.Writer) int {
	failed := 0
	for _, tc := range cases {
		cfg := extractfx.Config{
			FunctionName:   tc.fn,
			SourcePath:     "<test>",
			LineDirectives: tc.lineDirs,
		}
		var out strings.Builder
		err := extractfx.Process(cfg, strings.NewReader(tc.in), &out)
		switch {
		case tc.fail && err == nil:
			failed++
			fmt.Fprintf(w, "ERROR: %s: expected an error, got output:\n%s\n", tc.name, out.String())
		case !tc.fail && err != nil:
			failed++
			fmt.Fprintf(w, "ERROR: %s: unexpected error: %v\n", tc.name, err)
		case !tc.fail:
			want := tc.out
			if want == "" {
				want = tc.in
			}
			if out.String() != want {
				failed++
				fmt.Fprintf(w, "ERROR: %s: got:\n%s\nwant:\n%s\n", tc.name, out.String(), want)
			}
		}
	}
	fmt.Fprintf(w, "%d tests of %d failed.\n", failed, len(cases))
	return failed
}

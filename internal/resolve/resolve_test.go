package resolve

import "testing"

func TestResolve(t *testing.T) {
	r := New(nil)
	r.SetNamespace(`Acme\Tools`)
	r.Import(map[string]string{
		"Logger": `Vendor\Log\Logger`,
		"http":   `Vendor\Http`,
	})

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"builtin", "string", "string"},
		{"builtin case-insensitive", "Self", "Self"},
		{"object builtin", "object", "object"},
		{"null type", "null", "null"},
		{"false type", "False", "False"},
		{"absolute", `\Foo\Bar`, `\Foo\Bar`},
		{"unqualified falls back to namespace", "Widget", `\Acme\Tools\Widget`},
		{"qualified falls back to namespace", `Sub\Widget`, `\Acme\Tools\Sub\Widget`},
		{"alias", "Logger", `\Vendor\Log\Logger`},
		{"alias is case-insensitive", "LOGGER", `\Vendor\Log\Logger`},
		{"alias with remainder", `Http\Client`, `\Vendor\Http\Client`},
		{"alias prefix must be a whole segment", `Loggers\X`, `\Acme\Tools\Loggers\X`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := r.Resolve(tt.in); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestResolve_GlobalNamespace(t *testing.T) {
	r := New(nil)
	if got := r.Resolve("Foo"); got != `\Foo` {
		t.Errorf("Resolve(Foo) = %q, want \\Foo", got)
	}

	r.SetNamespace(`\Lead`)
	if r.Namespace() != "Lead" {
		t.Errorf("Namespace() = %q", r.Namespace())
	}
	r.SetNamespace("")
	if got := r.Resolve(`A\B`); got != `\A\B` {
		t.Errorf("Resolve(A\\B) = %q", got)
	}
}

func TestImportTable(t *testing.T) {
	r := New(NewBuiltins("int"))
	if target, ok := r.Imports()[""]; !ok || target != "" {
		t.Error("import table lacks the identity entry")
	}
	if r.IsBuiltin("string") {
		t.Error("custom builtins should replace the defaults")
	}
	if !r.IsBuiltin("INT") {
		t.Error("IsBuiltin(INT) = false")
	}
}

package policy

import "testing"

func testPolicy() *Policy {
	return New("VendorPrefix", "Acme", map[string]bool{
		`Vendor\Logger`:  true,
		`Vendor\Handler`: true,
		`Ext\Rule`:       true,
	}, []string{`Forced\`}, []string{`Ext\`})
}

func TestShouldPrefix(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		name string
		fqn  string
		want bool
	}{
		{"member", `Vendor\Logger`, true},
		{"member with leading separator", `\Vendor\Logger`, true},
		{"non member", `Vendor\Other`, false},
		{"force include", `Forced\Anything`, true},
		{"force exclude beats membership", `Ext\Rule`, false},
		{"root namespace", `Acme\X`, false},
		{"root namespace itself", `Acme`, false},
		{"root prefix is segment based", `AcmeCorp\X`, false},
		{"vendor prefix is reserved", `VendorPrefix\Vendor\Logger`, false},
		{"empty", ``, false},
		{"case sensitive", `vendor\logger`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.ShouldPrefix(tt.fqn); got != tt.want {
				t.Errorf("ShouldPrefix(%q) = %v, want %v", tt.fqn, got, tt.want)
			}
		})
	}
}

func TestMember(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		fqn  string
		want bool
	}{
		{`Vendor\Logger`, true},
		{`\Vendor\Handler`, true},
		{`Forced\Anything`, false},
		{`Ext\Rule`, false},
		{`VendorPrefix\Vendor\Logger`, false},
		{``, false},
	}
	for _, tt := range tests {
		if got := p.Member(tt.fqn); got != tt.want {
			t.Errorf("Member(%q) = %v, want %v", tt.fqn, got, tt.want)
		}
	}
}

func TestReservedRootBeatsForceInclude(t *testing.T) {
	p := New("V", "Acme", nil, []string{"Acme"}, nil)
	if p.ShouldPrefix(`Acme\Foo`) {
		t.Error("force-include relocated the root namespace")
	}
	if !p.Known(`Acme\Foo`) {
		t.Error("Known() should only look at membership and force-include")
	}
}

func TestPrefixNamespace(t *testing.T) {
	p := testPolicy()

	tests := []struct {
		ns     string
		want   string
		wantOK bool
	}{
		{`Vendor\Log`, `VendorPrefix\Vendor\Log`, true},
		{`\Vendor`, `VendorPrefix\Vendor`, true},
		{`Acme`, ``, false},
		{`Acme\Sub`, ``, false},
		{`VendorPrefix\Vendor`, ``, false},
		{``, ``, false},
	}
	for _, tt := range tests {
		got, ok := p.PrefixNamespace(tt.ns)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("PrefixNamespace(%q) = %q, %v; want %q, %v", tt.ns, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestWithNamespaces(t *testing.T) {
	p := testPolicy()
	ext := p.WithNamespaces(nil, []string{`Vendor\`})

	if ext.ShouldPrefix(`Vendor\Logger`) {
		t.Error("extension policy relocated an excluded member")
	}
	if !ext.ShouldPrefix(`Ext\Rule`) {
		t.Error("extension policy kept the parent exclusions")
	}
	if !p.ShouldPrefix(`Vendor\Logger`) {
		t.Error("WithNamespaces mutated the parent policy")
	}
	if got := p.Prefixed(`\Vendor\Logger`); got != `\VendorPrefix\Vendor\Logger` {
		t.Errorf("Prefixed() = %q", got)
	}
}

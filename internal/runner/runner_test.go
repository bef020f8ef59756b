package runner

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"nsprefix/internal/errors"
	"nsprefix/internal/journal"
	"nsprefix/internal/policy"
	"nsprefix/internal/walker"
)

type project struct {
	root  string
	files map[string]string
}

func newProject(t *testing.T, files map[string]string) *project {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return &project{root: root, files: files}
}

func (p *project) file(rel string, kind walker.FileKind) walker.File {
	return walker.File{Path: filepath.Join(p.root, filepath.FromSlash(rel)), Rel: rel, Kind: kind}
}

func (p *project) read(t *testing.T, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(p.root, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

var sources = map[string]string{
	"src/Rule.php":                 "<?php\nnamespace Acme;\nuse Vendor\\Logger;\nclass Rule { public function __construct(Logger $l) {} }\n",
	"src/Plain.php":                "<?php\nnamespace Acme;\nclass Plain {}\n",
	"conf/services.yaml":           "services:\n  logger:\n    class: Vendor\\Logger\n",
	"vendor/vendor/log/Logger.php": "<?php\nnamespace Vendor;\nclass Logger {}\n",
	"vendor/ext/rules/Ext.php":     "<?php\nnamespace Ext;\nclass Ext extends \\Vendor\\Logger {}\n",
}

func testPolicy() *policy.Policy {
	return policy.New("VendorPrefix", "Acme", map[string]bool{`Vendor\Logger`: true}, nil, nil)
}

func groups(p *project) []walker.Group {
	return []walker.Group{
		{Name: walker.CoreGroup, Files: []walker.File{
			p.file("conf/services.yaml", walker.Document),
			p.file("src/Plain.php", walker.PHP),
			p.file("src/Rule.php", walker.PHP),
			p.file("vendor/vendor/log/Logger.php", walker.PHP),
		}},
		{Name: "ext/rules", ForceExclude: []string{`Vendor\`}, Files: []walker.File{
			p.file("vendor/ext/rules/Ext.php", walker.PHP),
		}},
	}
}

func TestRun(t *testing.T) {
	for _, workers := range []int{1, 4} {
		p := newProject(t, sources)
		store, err := journal.OpenStore(filepath.Join(p.root, journal.DefaultPath), nil)
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()

		sum, err := Run(context.Background(), Options{
			Root:    p.root,
			Groups:  groups(p),
			Policy:  testPolicy(),
			Workers: workers,
			Journal: store,
		})
		if err != nil {
			t.Fatalf("workers=%d: Run() error = %v", workers, err)
		}

		wantChanged := []string{"conf/services.yaml", "src/Rule.php", "vendor/ext/rules/Ext.php", "vendor/vendor/log/Logger.php"}
		if !reflect.DeepEqual(sum.Changed, wantChanged) {
			t.Errorf("workers=%d: Changed = %v, want %v", workers, sum.Changed, wantChanged)
		}
		if sum.Scanned != 5 || len(sum.Failures) != 0 || sum.RunID == "" {
			t.Errorf("workers=%d: summary = %+v", workers, sum)
		}

		if got := p.read(t, "src/Rule.php"); !strings.Contains(got, `__construct(\VendorPrefix\Vendor\Logger $l)`) || strings.Contains(got, "use Vendor") {
			t.Errorf("src/Rule.php =\n%s", got)
		}
		if got := p.read(t, "vendor/vendor/log/Logger.php"); !strings.Contains(got, `namespace VendorPrefix\Vendor;`) {
			t.Errorf("Logger.php =\n%s", got)
		}
		if got := p.read(t, "vendor/ext/rules/Ext.php"); !strings.Contains(got, `extends \Vendor\Logger`) || !strings.Contains(got, `namespace VendorPrefix\Ext;`) {
			t.Errorf("Ext.php =\n%s", got)
		}
		if got := p.read(t, "conf/services.yaml"); !strings.Contains(got, `\VendorPrefix\Vendor\Logger`) {
			t.Errorf("services.yaml =\n%s", got)
		}
		if got := p.read(t, "src/Plain.php"); got != sources["src/Plain.php"] {
			t.Errorf("unchanged file rewritten:\n%s", got)
		}

		run, err := store.GetRun(sum.RunID)
		if err != nil || run == nil || run.Status != journal.RunCompleted || run.FilesChanged != 4 {
			t.Errorf("workers=%d: journal run = %+v, %v", workers, run, err)
		}
		entries, _ := store.Entries(sum.RunID)
		if len(entries) != 4 {
			t.Errorf("workers=%d: %d journal entries, want 4", workers, len(entries))
		}

		if _, err := store.Restore(context.Background(), sum.RunID, false); err != nil {
			t.Fatalf("Restore() error = %v", err)
		}
		for rel, want := range sources {
			if got := p.read(t, rel); got != want {
				t.Errorf("workers=%d: %s not restored:\n%s", workers, rel, got)
			}
		}
	}
}

func TestRun_DryRun(t *testing.T) {
	p := newProject(t, sources)
	sum, err := Run(context.Background(), Options{
		Root:   p.root,
		Groups: groups(p),
		Policy: testPolicy(),
		DryRun: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(sum.Changed) != 4 || !sum.DryRun || sum.RunID != "" {
		t.Errorf("summary = %+v", sum)
	}
	for rel, want := range sources {
		if got := p.read(t, rel); got != want {
			t.Errorf("dry run wrote %s", rel)
		}
	}
}

func TestRun_Failures(t *testing.T) {
	files := map[string]string{
		"src/A.php":   "<?php\nnamespace Vendor;\nclass A {}\n",
		"src/Bad.php": "<?php\nclass {\n",
		"src/C.php":   "<?php\nnamespace Vendor;\nclass C {}\n",
	}

	t.Run("keep going", func(t *testing.T) {
		p := newProject(t, files)
		g := walker.Group{Name: walker.CoreGroup, Files: []walker.File{
			p.file("src/A.php", walker.PHP), p.file("src/Bad.php", walker.PHP), p.file("src/C.php", walker.PHP),
		}}
		sum, err := Run(context.Background(), Options{Root: p.root, Groups: []walker.Group{g}, Policy: testPolicy(), KeepGoing: true})
		if err != nil {
			t.Fatalf("Run() error = %v", err)
		}
		if len(sum.Failures) != 1 || sum.Failures[0].Path != "src/Bad.php" {
			t.Errorf("Failures = %+v", sum.Failures)
		}
		if len(sum.Changed) != 2 {
			t.Errorf("Changed = %v", sum.Changed)
		}
		if sum.Scanned != 3 {
			t.Errorf("Scanned = %d, want failed files counted too", sum.Scanned)
		}
	})

	t.Run("abort", func(t *testing.T) {
		p := newProject(t, files)
		g := walker.Group{Name: walker.CoreGroup, Files: []walker.File{p.file("src/Bad.php", walker.PHP)}}
		store, err := journal.OpenStore(filepath.Join(p.root, journal.DefaultPath), nil)
		if err != nil {
			t.Fatal(err)
		}
		defer store.Close()

		sum, err := Run(context.Background(), Options{Root: p.root, Groups: []walker.Group{g}, Policy: testPolicy(), Journal: store})
		if !errors.IsCode(err, errors.SyntaxError) {
			t.Fatalf("Run() error = %v, want SYNTAX_ERROR", err)
		}
		if !strings.Contains(err.Error(), "Bad.php") {
			t.Errorf("error does not name the file: %v", err)
		}
		run, _ := store.GetRun(sum.RunID)
		if run == nil || run.Status != journal.RunFailed {
			t.Errorf("journal run = %+v", run)
		}
	})
}

func TestRun_Cancelled(t *testing.T) {
	p := newProject(t, sources)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Run(ctx, Options{Root: p.root, Groups: groups(p), Policy: testPolicy()}); err == nil {
		t.Error("Run() expected context error")
	}
}

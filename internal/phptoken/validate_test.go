//go:build cgo

package phptoken

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
)

var validSources = map[string]string{
	"class": `<?php
namespace Acme;

use Vendor\Logger;

final class Rule extends Logger implements \Countable
{
    public function count(): int
    {
        $f = function ($x) use ($y) { return $x + $y; };
        return 0;
    }
}
`,
	"heredoc": "<?php\n$sql = <<<SQL\nSELECT * FROM t WHERE a = '{$a}'\nSQL;\n$raw = <<<'TXT'\n{$not} interpolated\nTXT;\n",
	"inline html": "<html>\n<body><?php echo $title; ?></body>\n</html>\n",
	"empty":       "",
}

var brokenSources = []struct {
	name string
	src  string
	line int
}{
	{"missing operand", "<?php\n$x = ;\n", 2},
	{"dangling operator", "<?php\n\n\necho 1 +;\n", 4},
	{"inside a block", "<?php\nif ($a) {\n    $b = ;\n}\n", 3},
}

func TestValidator_Valid(t *testing.T) {
	if !IsAvailable() {
		t.Fatal("IsAvailable() = false in a cgo build")
	}
	v := NewValidator()
	for name, src := range validSources {
		t.Run(name, func(t *testing.T) {
			if err := v.Validate(context.Background(), []byte(src)); err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestValidator_Broken(t *testing.T) {
	v := NewValidator()
	for _, tt := range brokenSources {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(context.Background(), []byte(tt.src))
			var syntaxErr *SyntaxError
			if !errors.As(err, &syntaxErr) {
				t.Fatalf("Validate() error = %v, want *SyntaxError", err)
			}
			if syntaxErr.Line != tt.line {
				t.Errorf("line = %d, want %d (%s)", syntaxErr.Line, tt.line, syntaxErr.Msg)
			}
		})
	}
}

func TestValidator_ReusedAfterError(t *testing.T) {
	v := NewValidator()
	if err := v.Validate(context.Background(), []byte(brokenSources[0].src)); err == nil {
		t.Fatal("broken source accepted")
	}
	if err := v.Validate(context.Background(), []byte(validSources["class"])); err != nil {
		t.Errorf("Validate() after an error = %v", err)
	}
}

func TestValidatorPool_Parallel(t *testing.T) {
	pool := NewValidatorPool()

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				broken := brokenSources[(w+i)%len(brokenSources)]
				var syntaxErr *SyntaxError
				if err := pool.Validate(context.Background(), []byte(broken.src)); !errors.As(err, &syntaxErr) || syntaxErr.Line != broken.line {
					errs <- fmt.Errorf("worker %d: %s: %v", w, broken.name, err)
					return
				}
				if err := pool.Validate(context.Background(), []byte(validSources["heredoc"])); err != nil {
					errs <- fmt.Errorf("worker %d: heredoc: %v", w, err)
					return
				}
			}
		}(w)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

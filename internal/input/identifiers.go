// Package input reads the list of seqfeature identifiers to report on.
package input

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JonMunkholm/seqannot/internal/annotation"
)

// utf8BOM is prepended to text files by some Windows editors.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SkipBOM returns a reader over r with a leading UTF-8 BOM removed.
func SkipBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return br
}

// ReadIdentifiers parses one identifier per line. Surrounding whitespace is
// stripped and blank lines are ignored. Any other line that is not an
// integer is an error naming its line number.
func ReadIdentifiers(r io.Reader) ([]annotation.FeatureID, error) {
	var ids []annotation.FeatureID

	sc := bufio.NewScanner(SkipBOM(r))
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" {
			continue
		}

		n, err := strconv.ParseInt(text, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: invalid seqfeature id %q", line, text)
		}
		ids = append(ids, annotation.FeatureID(n))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read identifiers: %w", err)
	}

	return ids, nil
}

// ReadFile reads identifiers from the named file; "-" reads standard input.
func ReadFile(path string) ([]annotation.FeatureID, error) {
	if path == "-" {
		return ReadIdentifiers(os.Stdin)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open identifiers: %w", err)
	}
	defer f.Close()

	ids, err := ReadIdentifiers(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return ids, nil
}

package loader

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"tipdex/internal/domain"
)

// ParseError reports a malformed source document. It is fatal at load
// time: the catalog refuses to start on a corpus it cannot trust.
type ParseError struct {
	File   string
	Line   int
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Reason)
}

// Tip headings look like "## #42 Guard statement". Anything starting
// with "## #" is claimed as a tip heading so typos fail loudly instead
// of silently becoming body text.
var (
	headingRe = regexp.MustCompile(`^##\s+#(\d+)\s+(.+)$`)
	tagsRe    = regexp.MustCompile(`^Tags:\s*(.*)$`)
	linkRe    = regexp.MustCompile(`\[[^\]]*\]\((https?://[^)\s]+)\)`)
)

// Load reads a source file or directory of .md files and returns the
// entries in load order: files in lexical path order, tips in document
// order. Ids must be unique across the whole corpus.
func Load(source string) ([]domain.Entry, error) {
	files, err := sourceFiles(source)
	if err != nil {
		return nil, err
	}

	var entries []domain.Entry
	seen := make(map[int]string) // id -> "file:line" of first occurrence

	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open source: %w", err)
		}
		parsed, err := parse(path, f, seen)
		f.Close()
		if err != nil {
			return nil, err
		}
		entries = append(entries, parsed...)
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no tip entries found in %s", source)
	}

	return entries, nil
}

// Fingerprint returns a stable digest of the source tree, used to
// decide whether a cached catalog is still current.
func Fingerprint(source string) (string, error) {
	files, err := sourceFiles(source)
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, path := range files {
		f, err := os.Open(path)
		if err != nil {
			return "", fmt.Errorf("open source: %w", err)
		}
		io.WriteString(h, filepath.Base(path))
		_, err = io.Copy(h, f)
		f.Close()
		if err != nil {
			return "", fmt.Errorf("hash source: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// sourceFiles resolves a source path to an ordered list of markdown files.
func sourceFiles(source string) ([]string, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("stat source: %w", err)
	}

	if !info.IsDir() {
		return []string{source}, nil
	}

	var files []string
	err = filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".md") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk source: %w", err)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no markdown files in %s", source)
	}
	sort.Strings(files)
	return files, nil
}

func parse(name string, r io.Reader, seen map[int]string) ([]domain.Entry, error) {
	var entries []domain.Entry

	var cur *domain.Entry
	var body []string
	inFence := false
	tagsAllowed := false // a Tags: line is only metadata directly under a heading

	flush := func() {
		if cur == nil {
			return
		}
		cur.Body = strings.TrimSpace(strings.Join(body, "\n"))
		if m := linkRe.FindStringSubmatch(cur.Body); m != nil {
			cur.Link = m[1]
		}
		entries = append(entries, *cur)
		cur = nil
		body = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0

	for scanner.Scan() {
		line := scanner.Text()
		lineNo++

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			inFence = !inFence
		}

		// Headings inside code fences are examples, not delimiters.
		if !inFence && strings.HasPrefix(line, "## #") {
			m := headingRe.FindStringSubmatch(line)
			if m == nil {
				return nil, &ParseError{File: name, Line: lineNo, Reason: fmt.Sprintf("malformed tip heading %q: want \"## #<id> <title>\"", line)}
			}
			id, err := strconv.Atoi(m[1])
			if err != nil || id <= 0 {
				return nil, &ParseError{File: name, Line: lineNo, Reason: fmt.Sprintf("invalid tip id %q", m[1])}
			}
			title := strings.TrimSpace(m[2])
			if title == "" {
				return nil, &ParseError{File: name, Line: lineNo, Reason: fmt.Sprintf("tip #%d has an empty title", id)}
			}
			if first, dup := seen[id]; dup {
				return nil, &ParseError{File: name, Line: lineNo, Reason: fmt.Sprintf("duplicate tip id %d (first defined at %s)", id, first)}
			}
			seen[id] = fmt.Sprintf("%s:%d", name, lineNo)

			flush()
			cur = &domain.Entry{ID: id, Title: title}
			tagsAllowed = true
			continue
		}

		if cur == nil {
			continue // preamble before the first tip: title, TOC, badges
		}

		if tagsAllowed {
			if strings.TrimSpace(line) == "" && len(body) == 0 {
				continue
			}
			if m := tagsRe.FindStringSubmatch(line); m != nil {
				cur.Tags = splitTags(m[1])
				tagsAllowed = false
				continue
			}
			tagsAllowed = false
		}

		body = append(body, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}

	flush()
	return entries, nil
}

// splitTags normalizes a comma-separated tag list: lower case, trimmed,
// duplicates dropped, original order kept.
func splitTags(s string) []string {
	var tags []string
	seen := make(map[string]bool)
	for _, part := range strings.Split(s, ",") {
		tag := strings.ToLower(strings.TrimSpace(part))
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}

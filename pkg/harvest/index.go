package harvest

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

const (
	// perFileBudget bounds the concatenated chunk text per file pulled
	// from the index.
	perFileBudget = 11000
	// maxIndexFiles caps how many indexed files seed one bootstrap.
	maxIndexFiles = 12
)

// indexedFile is one file's worth of chunk text read back from the
// runtime's vector-index database.
type indexedFile struct {
	Path string
	Text string
}

/*
readIndexedFiles opens the runtime's index database read-only and
groups its markdown chunks by file path, concatenating chunk text per
file up to the budget. The dashboard never writes to this database; it
belongs to the runtime.
*/
func readIndexedFiles(dbPath string) ([]indexedFile, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", dbPath, err)
	}
	defer db.Close()

	rows, err := db.Query(`
		SELECT path, text
		FROM chunks
		WHERE source = 'memory' AND path LIKE '%.md'
		ORDER BY path, start_line`)
	if err != nil {
		return nil, fmt.Errorf("query index %s: %w", dbPath, err)
	}
	defer rows.Close()

	var (
		files   []indexedFile
		current *indexedFile
		skipped = map[string]struct{}{}
	)

	for rows.Next() {
		var path, text string
		if err := rows.Scan(&path, &text); err != nil {
			return nil, err
		}
		if _, skip := skipped[path]; skip {
			continue
		}

		if current == nil || current.Path != path {
			if len(files) >= maxIndexFiles {
				skipped[path] = struct{}{}
				continue
			}
			files = append(files, indexedFile{Path: path})
			current = &files[len(files)-1]
		}

		if len(current.Text) >= perFileBudget {
			continue
		}
		if current.Text != "" {
			current.Text += "\n"
		}
		remaining := perFileBudget - len(current.Text)
		if len(text) > remaining {
			text = text[:remaining]
		}
		current.Text += text
	}

	return files, rows.Err()
}

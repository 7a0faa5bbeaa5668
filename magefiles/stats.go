//go:build mage

package main

import (
	"bytes"
	"encoding/json"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// packageLines is the line tally for one Go package directory.
type packageLines struct {
	Package string `json:"package"`
	Prod    int    `json:"prod"`
	Test    int    `json:"test"`
}

type statsReport struct {
	Packages []packageLines `json:"packages"`
	Prod     int            `json:"go_loc_prod"`
	Test     int            `json:"go_loc_test"`
	Seeds    int            `json:"seed_records"`
	DocWords int            `json:"doc_words"`
}

var statsSkipDirs = map[string]bool{
	".git":      true,
	"vendor":    true,
	"_examples": true,
	"magefiles": true,
	binaryDir:   true,
}

// Stats prints per-package Go line counts, the number of seed records and
// the word count of the top-level markdown documents as one JSON object.
func Stats() error {
	byPkg := map[string]*packageLines{}
	report := statsReport{}

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != "." && statsSkipDirs[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}
		switch filepath.Ext(path) {
		case ".go":
			n, err := lineCount(path)
			if err != nil {
				return err
			}
			dir := filepath.ToSlash(filepath.Dir(path))
			pl := byPkg[dir]
			if pl == nil {
				pl = &packageLines{Package: dir}
				byPkg[dir] = pl
			}
			if strings.HasSuffix(path, "_test.go") {
				pl.Test += n
				report.Test += n
			} else {
				pl.Prod += n
				report.Prod += n
			}
		case ".jsonl":
			n, err := lineCount(path)
			if err != nil {
				return err
			}
			report.Seeds += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	docs, err := filepath.Glob("*.md")
	if err != nil {
		return err
	}
	for _, doc := range docs {
		data, err := os.ReadFile(doc)
		if err != nil {
			return err
		}
		report.DocWords += len(strings.Fields(string(data)))
	}

	for _, pl := range byPkg {
		report.Packages = append(report.Packages, *pl)
	}
	sort.Slice(report.Packages, func(i, j int) bool {
		return report.Packages[i].Package < report.Packages[j].Package
	})

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// lineCount counts newline-terminated lines plus a trailing partial line.
func lineCount(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	n := bytes.Count(data, []byte("\n"))
	if len(data) > 0 && data[len(data)-1] != '\n' {
		n++
	}
	return n, nil
}

package main

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// listSourceFiles returns every .ts file below dir in sorted order,
// skipping hidden directories and skip.
func listSourceFiles(dir, skip string) ([]string, error) {
	var files []string
	skip = filepath.Clean(skip)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (strings.HasPrefix(d.Name(), ".") || filepath.Clean(path) == skip) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".ts") && !strings.HasSuffix(path, ".d.ts") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// expandInputs replaces directories in args by the sources they contain.
func expandInputs(args []string, skip string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		found, err := listSourceFiles(arg, skip)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	return files, nil
}

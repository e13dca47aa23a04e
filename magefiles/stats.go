// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// statsRoots are the source trees counted by Stats.
var statsRoots = []string{"cmd", "internal", "pkg"}

// Stats prints Go lines of code per source tree, split into production and
// test code, plus word counts of the design documents.
func Stats() error {
	record := map[string]int{}
	for _, root := range statsRoots {
		prod, test, err := countGoLines(root)
		if err != nil {
			return err
		}
		record["go_loc_prod_"+root] = prod
		record["go_loc_test_"+root] = test
		record["go_loc_prod"] += prod
		record["go_loc_test"] += test
	}
	record["go_loc"] = record["go_loc_prod"] + record["go_loc_test"]

	for key, path := range map[string]string{"spec_wc": "SPEC_FULL.md", "design_wc": "DESIGN.md"} {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		record[key] = len(strings.Fields(string(data)))
	}

	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	fmt.Println(string(line))
	return nil
}

// countGoLines walks root and counts the lines of .go files. A missing root
// counts as empty.
func countGoLines(root string) (prod, test int, err error) {
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && path == root {
				return filepath.SkipDir
			}
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".go") {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		n := bytes.Count(data, []byte("\n"))
		if strings.HasSuffix(path, "_test.go") {
			test += n
		} else {
			prod += n
		}
		return nil
	})
	return prod, test, err
}

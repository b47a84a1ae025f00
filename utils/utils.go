package utils

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// MsgAt prefixes msg with a source position and the text found there.
// A negative pos means the end of the input.
func MsgAt(pos int, text string, msg string) string {
	if pos < 0 {
		return "at end: " + msg
	}
	return fmt.Sprintf("at %d: %q, %s", pos, text, msg)
}

type TestData struct {
	Label    string
	Enable   bool
	Input    string
	Variable string
	Expected map[string]string
}

func ReadTestData(s []byte) []TestData {
	var data []TestData
	if err := yaml.Unmarshal(s, &data); err != nil {
		panic(err)
	}

	// Remove disabled test cases.
	i := 0
	for _, d := range data {
		if d.Enable {
			data[i] = d
			i++
		}
	}
	data = data[:i]

	return data
}

// ReadTestDataFile reads the yaml test cases stored at path.
func ReadTestDataFile(path string) ([]TestData, error) {
	s, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read test data: %w", err)
	}
	return ReadTestData(s), nil
}

// FindSourceFiles returns the expression sources (*.expr) under dir, sorted by name.
func FindSourceFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && filepath.Ext(path) == ".expr" {
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

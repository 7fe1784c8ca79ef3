package question

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load reads, parses, and validates a question file.
func Load(path string) (Bank, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Bank{}, fmt.Errorf("read question file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes question data; the path extension selects JSON or YAML.
func Parse(data []byte, path string) (Bank, error) {
	spec, err := parseSpec(data, path)
	if err != nil {
		return Bank{}, &MalformedDataError{
			Source: path,
			Issues: []Issue{{Field: "(document)", Message: err.Error()}},
		}
	}
	bank, err := normalizeSpec(spec)
	if err != nil {
		var malformed *MalformedDataError
		if errors.As(err, &malformed) {
			malformed.Source = path
		}
		return Bank{}, err
	}
	bank.Source = path
	return bank, nil
}

// Select returns a bank holding only the requested ids in exam order.
func (b Bank) Select(ids []int) (Bank, error) {
	if len(ids) == 0 {
		return b, nil
	}
	wanted := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		wanted[id] = struct{}{}
	}
	selected := make([]Question, 0, len(ids))
	for _, item := range b.Questions {
		if _, ok := wanted[item.ID]; ok {
			selected = append(selected, item)
			delete(wanted, item.ID)
		}
	}
	if len(wanted) > 0 {
		missing := make([]int, 0, len(wanted))
		for id := range wanted {
			missing = append(missing, id)
		}
		sort.Ints(missing)
		collector := &issueCollector{}
		for _, id := range missing {
			collector.add("questions", fmt.Sprintf("unknown question id %d", id))
		}
		return Bank{}, &MalformedDataError{Source: b.Source, Issues: collector.issues}
	}
	sort.SliceStable(selected, func(i, j int) bool { return selected[i].ID < selected[j].ID })
	return Bank{Source: b.Source, Title: b.Title, Questions: selected}, nil
}

func parseSpec(data []byte, path string) (fileSpec, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		return parseJSONSpec(data)
	}
	return parseYAMLSpec(data)
}

func parseJSONSpec(data []byte) (fileSpec, error) {
	var spec fileSpec
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&spec); err != nil {
		return fileSpec{}, fmt.Errorf("parse json: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fileSpec{}, fmt.Errorf("parse json: multiple documents are not supported")
		}
		return fileSpec{}, fmt.Errorf("parse json: %w", err)
	}
	return spec, nil
}

func parseYAMLSpec(data []byte) (fileSpec, error) {
	var spec fileSpec
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&spec); err != nil {
		return fileSpec{}, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return fileSpec{}, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return fileSpec{}, fmt.Errorf("parse yaml: %w", err)
	}
	return spec, nil
}

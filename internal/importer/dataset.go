// Package importer loads the legacy flat-file exam database into the
// catalog tables.
package importer

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema/legacy.schema.json
var legacySchema []byte

// ErrInvalidDataset is returned when a file does not match the legacy schema.
var ErrInvalidDataset = errors.New("invalid legacy dataset")

// Dataset mirrors the legacy database file: one array per collection.
type Dataset struct {
	Users     []LegacyUser     `json:"users"`
	Courses   []LegacyCourse   `json:"courses"`
	Subjects  []LegacySubject  `json:"subjects"`
	Exams     []LegacyExam     `json:"exams"`
	Questions []LegacyQuestion `json:"questions"`
}

type LegacyUser struct {
	ID             int    `json:"id"`
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	Role           int    `json:"role"`
	ProfilePicture string `json:"profilePicture"`
	Status         *int   `json:"status"`
}

type LegacyCourse struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Img         string `json:"img"`
}

type LegacySubject struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	CourseID    int    `json:"coursesId"`
	Img         string `json:"img"`
}

type LegacyExam struct {
	ID          int              `json:"id"`
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Duration    int              `json:"duration"`
	SubjectID   int              `json:"examSubjectId"`
	Questions   []LegacyQuestion `json:"questions"`
}

// LegacyQuestion keeps the old field name: the text lives in "questions".
type LegacyQuestion struct {
	ID      int      `json:"id"`
	ExamID  int      `json:"examId"`
	Text    string   `json:"questions"`
	Options []string `json:"options"`
	Answer  string   `json:"answer"`
}

// LoadFile reads a dataset from path. Files ending in .yaml or .yml are
// parsed as YAML, anything else as JSON.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return ParseYAML(data)
	default:
		return ParseJSON(data)
	}
}

// ParseJSON validates data against the legacy schema and decodes it.
func ParseJSON(data []byte) (*Dataset, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	var ds Dataset
	if err := json.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return &ds, nil
}

// ParseYAML converts a single YAML document to JSON and parses that.
func ParseYAML(data []byte) (*Dataset, error) {
	var doc interface{}
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("parse yaml: multiple documents are not supported")
		}
		return nil, fmt.Errorf("parse yaml: %w", err)
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("convert yaml: %w", err)
	}
	return ParseJSON(raw)
}

func validateSchema(data []byte) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(legacySchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDataset, err)
	}
	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, re := range result.Errors() {
		msgs = append(msgs, re.String())
	}
	return fmt.Errorf("%w: %s", ErrInvalidDataset, strings.Join(msgs, "; "))
}

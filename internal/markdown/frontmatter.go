package markdown

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/adrg/frontmatter"
	"github.com/rogersnm/taskdesk/internal/model"
	"gopkg.in/yaml.v3"
)

// Parse reads YAML frontmatter and body from r into T.
func Parse[T any](r io.Reader) (T, string, error) {
	var meta T
	body, err := frontmatter.Parse(r, &meta)
	if err != nil {
		return meta, "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	return meta, strings.TrimSpace(string(body)), nil
}

// Marshal serializes meta as YAML frontmatter followed by body.
func Marshal[T any](meta T, body string) ([]byte, error) {
	yamlBytes, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(yamlBytes)
	buf.WriteString("---\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}
	return buf.Bytes(), nil
}

// recordHeader is the editable part of a record file. The id is carried
// for reference and ignored on read.
type recordHeader struct {
	ID       int    `yaml:"id"`
	Task     string `yaml:"task"`
	Process  string `yaml:"process"`
	Priority string `yaml:"priority"`
}

const editHelp = `Edit the fields above and save to apply.
process:  Done | In process | Cancel | (empty)
priority: Normal | High | Low | (empty)`

// EncodeRecord renders r as an editable markdown file.
func EncodeRecord(r model.Record) ([]byte, error) {
	h := recordHeader{ID: r.ID, Task: r.Task, Process: string(r.Process), Priority: string(r.Priority)}
	return Marshal(h, editHelp)
}

// DecodeRecord reads a file written by EncodeRecord, keeping base's id.
func DecodeRecord(r io.Reader, base model.Record) (model.Record, error) {
	h, _, err := Parse[recordHeader](r)
	if err != nil {
		return model.Record{}, err
	}
	process, err := model.ParseProcess(h.Process)
	if err != nil {
		return model.Record{}, err
	}
	priority, err := model.ParsePriority(h.Priority)
	if err != nil {
		return model.Record{}, err
	}
	out := model.Record{ID: base.ID, Task: strings.TrimSpace(h.Task), Process: process, Priority: priority}
	if out.Task == "" {
		return model.Record{}, model.ErrTaskRequired
	}
	return out, nil
}

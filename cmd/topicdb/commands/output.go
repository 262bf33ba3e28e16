package commands

import (
	"encoding/json"
	"io"

	"github.com/pelletier/go-toml/v2"
	"github.com/pterm/pterm"
	"gopkg.in/yaml.v3"

	"github.com/teranos/topicdb/errors"
)

// Structured output formats accepted by --format
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
	formatTOML = "toml"
)

// encode writes v to w in a structured format. Text output is rendered by
// each command itself.
func encode(w io.Writer, format string, v any) error {
	var (
		data []byte
		err  error
	)
	switch format {
	case formatJSON:
		data, err = json.MarshalIndent(v, "", "  ")
		if err == nil {
			data = append(data, '\n')
		}
	case formatYAML:
		data, err = yaml.Marshal(v)
	case formatTOML:
		data, err = toml.Marshal(v)
	default:
		return errors.NewInvalidRequestError("unsupported format %q (supported: text, json, yaml, toml)", format)
	}
	if err != nil {
		return errors.Wrapf(err, "failed to marshal %s", format)
	}
	_, err = w.Write(data)
	return err
}

// renderTable prints rows under header, or a muted note when there are none
func renderTable(header []string, rows [][]string, empty string) error {
	if len(rows) == 0 {
		pterm.Info.Println(empty)
		return nil
	}
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

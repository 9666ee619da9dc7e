package format

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/qstep/qsee/core"
)

var _ core.Formatter = (*YAML)(nil)

type YAML struct{}

func NewYAML() *YAML {
	return &YAML{}
}

func (yf *YAML) Format(header core.Header, rows []core.Row, _ *core.FormatterOptions) ([]byte, error) {
	// a sequence of mappings keeps column order
	data := &yaml.Node{Kind: yaml.SequenceNode}
	for _, row := range rows {
		record := &yaml.Node{Kind: yaml.MappingNode}
		for i, val := range row {
			key := &yaml.Node{Kind: yaml.ScalarNode, Value: columnName(header, i)}
			value := &yaml.Node{}
			if err := value.Encode(val); err != nil {
				return nil, fmt.Errorf("value.Encode: %w", err)
			}
			record.Content = append(record.Content, key, value)
		}
		data.Content = append(data.Content, record)
	}

	out, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("yaml.Marshal: %w", err)
	}

	return out, nil
}

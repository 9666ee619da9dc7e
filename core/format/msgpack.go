package format

import (
	"bytes"
	"fmt"

	"github.com/neovim/go-client/msgpack"

	"github.com/qstep/qsee/core"
)

var _ core.Formatter = (*MsgPack)(nil)

// MsgPack encodes the result as a single map:
//
//	{"header": [...], "rows": [[...], ...]}
type MsgPack struct{}

func NewMsgPack() *MsgPack {
	return &MsgPack{}
}

func (mf *MsgPack) Format(header core.Header, rows []core.Row, _ *core.FormatterOptions) ([]byte, error) {
	data := struct {
		Header []string `msgpack:"header"`
		Rows   [][]any  `msgpack:"rows"`
	}{
		Header: header,
		Rows:   make([][]any, len(rows)),
	}
	for i, row := range rows {
		data.Rows[i] = row
	}

	b := new(bytes.Buffer)
	err := msgpack.NewEncoder(b).Encode(&data)
	if err != nil {
		return nil, fmt.Errorf("msgpack.Encode: %w", err)
	}

	return b.Bytes(), nil
}

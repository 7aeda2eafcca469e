package codegen

import (
	"bytes"

	"github.com/xplshn/glex/pkg/config"
	"github.com/xplshn/glex/pkg/lexer"
	"github.com/xplshn/glex/pkg/token"
)

// dotBackend renders the DFA, or with nfa set the merged NFA, as Graphviz.
type dotBackend struct {
	nfa bool
}

func NewDotBackend() Backend { return &dotBackend{} }

func NewNFABackend() Backend { return &dotBackend{nfa: true} }

func (b *dotBackend) Generate(lx *lexer.Lexer, cfg *config.Config) (*bytes.Buffer, error) {
	var buf bytes.Buffer
	name := func(id int) string { return lx.TokenName(token.Type(id)) }
	var err error
	if b.nfa {
		err = lx.NFA().WriteDot(&buf, name)
	} else {
		err = lx.Table().WriteDot(&buf, name)
	}
	if err != nil {
		return nil, err
	}
	return &buf, nil
}

// Package idgen issues row IDs and human-readable business numbers.
package idgen

import (
	"fmt"
	"time"

	"github.com/bwmarrin/snowflake"
)

// Business-number prefixes.
const (
	PrefixOrder       = "O"
	PrefixTransaction = "T"
)

// Generator wraps a snowflake node and derives date-prefixed business
// numbers from it. The node serializes ID generation internally, so a
// single Generator is safe for concurrent callers.
type Generator struct {
	node *snowflake.Node
	now  func() time.Time
}

func New(node *snowflake.Node) *Generator {
	return &Generator{node: node, now: func() time.Time { return time.Now().UTC() }}
}

// NextID returns a raw snowflake row ID.
func (g *Generator) NextID() snowflake.ID {
	return g.node.Generate()
}

// NextNo returns prefix + YYYYMMDD + zero-padded snowflake. Numbers sort
// lexicographically in generation order: the date prefix groups by day and
// the snowflake component is monotonic within it.
func (g *Generator) NextNo(prefix string) string {
	id := g.node.Generate()
	today := g.now().Format("20060102")
	return fmt.Sprintf("%s%s%019d", prefix, today, id.Int64())
}

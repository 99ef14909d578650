package idgen

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
)

func RegisterSnowflake() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

var Module = fx.Module("idgen",
	fx.Provide(RegisterSnowflake),
	fx.Provide(New),
)

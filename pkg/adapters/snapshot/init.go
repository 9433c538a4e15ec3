package snapshot

import (
	"log/slog"

	"github.com/leapstack-labs/schemadoc/pkg/adapter"
)

func init() {
	adapter.Register("snapshot", func(logger *slog.Logger) adapter.Adapter { return New(logger) })
}

//go:build !ios && !android && (amd64 || arm64)

// Command ffscrub inspects videos, decodes single frames, runs the external
// converter and plays videos headlessly through the frame player.
package main

import (
	"github.com/obinnaokechukwu/ffscrub/internal/config"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup(fs))
	Execute()
}

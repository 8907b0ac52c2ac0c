// Command vragctl exposes the pipeline helpers on the command line: hashing,
// token counting, JSON extraction, CSV prompt rendering and device selection.
package main

import (
	"os"

	"github.com/rs/zerolog/log"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		log.Error().Err(err).Msg("vragctl failed")
		os.Exit(1)
	}
}

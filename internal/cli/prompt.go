package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
)

// PromptForDirectory asks for the photo directory on in, writing the prompt
// to out. Returns def if the user enters nothing.
func PromptForDirectory(in io.Reader, out io.Writer, def string) string {
	fmt.Fprintf(out, "Photo directory [%s]: ", def)

	input, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && input == "" {
		log.Warn().Err(err).Msg("Failed to read input, using default directory")
		return def
	}

	if input = strings.TrimSpace(input); input == "" {
		return def
	}
	return input
}

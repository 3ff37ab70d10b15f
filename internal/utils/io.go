package utils

import (
	"fmt"
	"io"
	"os"

	kerrors "github.com/PolarWolf314/kapu/internal/errors"
)

// ReadMessage reads a message piped to in, usually os.Stdin, and strips a
// single trailing newline. A terminal or an empty pipe is ErrInvalidMessage.
func ReadMessage(in *os.File) (string, error) {
	stat, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("%w: inspecting %s: %v", kerrors.ErrIOFailure, in.Name(), err)
	}

	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return "", fmt.Errorf("%w: nothing piped to --in -, try: echo \"HELLO\" | kapu vault encrypt --in - ...", kerrors.ErrInvalidMessage)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", kerrors.ErrIOFailure, in.Name(), err)
	}

	message := trimLineEnding(string(data))
	if message == "" {
		return "", fmt.Errorf("%w: piped message is empty", kerrors.ErrInvalidMessage)
	}
	return message, nil
}

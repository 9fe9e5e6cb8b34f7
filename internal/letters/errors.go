package letters

import (
	"errors"
	"fmt"
)

var (
	ErrNotASCII      = errors.New("string contains non-ASCII characters")
	ErrNotAlphabetic = errors.New("string contains characters other than letters")
	ErrCountOverflow = errors.New("letter count exceeds 15")
)

// EncodeError describes why a word could not be encoded. Pos is the byte
// offset that triggered the failure.
type EncodeError struct {
	Word string
	Pos  int
	Err  error
}

func (e *EncodeError) Error() string {
	if e.Word == "" {
		return fmt.Sprintf("letter %d: %s", e.Pos, e.Err.Error())
	}
	return fmt.Sprintf("word %q at byte %d: %s", e.Word, e.Pos, e.Err.Error())
}

func (e *EncodeError) Unwrap() error {
	return e.Err
}

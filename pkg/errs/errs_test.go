package errs

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"success", nil, 0},
		{"invalid argument", ErrInvalidArgument, 234},
		{"wrapped invalid argument", fmt.Errorf("open /nope: %w", ErrInvalidArgument), 234},
		{"out of memory", fmt.Errorf("alloc: %w", ErrOutOfMemory), 244},
		{"io", fmt.Errorf("write 3: %w", ErrIO), 251},
		{"unclassified", errors.New("boom"), 234},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

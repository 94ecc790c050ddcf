package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
		expectError   bool
	}{
		{
			name:          "successful read",
			input:         "beli kopi 25rb\n",
			expectedValue: "beli kopi 25rb",
		},
		{
			name:          "read with extra whitespace",
			input:         "  bayar kos 1.2 juta  \n",
			expectedValue: "bayar kos 1.2 juta",
		},
		{
			name:          "empty line",
			input:         "\n",
			expectedValue: "",
		},
		{
			name:        "end of input",
			input:       "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := strings.NewReader(tt.input)
			lr := NewLineReader(reader)

			ctx := context.Background()
			result, err := lr.ReadLine(ctx)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expectedValue, result)
			}
		})
	}
}

func TestLineReader_ContextCancellation(t *testing.T) {
	t.Run("immediate cancellation", func(t *testing.T) {
		reader := strings.NewReader("")
		lr := NewLineReader(reader)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := lr.ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
	})

	t.Run("cancellation during read", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer func() { _ = pr.Close() }()
		defer func() { _ = pw.Close() }()

		lr := NewLineReader(pr)

		ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
		defer cancel()

		_, err := lr.ReadLine(ctx)
		assert.Equal(t, ErrInputCancelled, err)
	})
}

func TestLineReader_MultipleReads(t *testing.T) {
	input := "dapet 50rb\nya\nsaldo berapa\n"
	reader := strings.NewReader(input)
	lr := NewLineReader(reader)

	ctx := context.Background()

	line1, err := lr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "dapet 50rb", line1)

	line2, err := lr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ya", line2)

	line3, err := lr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "saldo berapa", line3)
}

func TestLineReader_FinalLineWithoutNewline(t *testing.T) {
	lr := NewLineReader(strings.NewReader("ya\nsaldo berapa"))
	ctx := context.Background()

	line, err := lr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "ya", line)

	line, err = lr.ReadLine(ctx)
	require.NoError(t, err)
	assert.Equal(t, "saldo berapa", line)

	_, err = lr.ReadLine(ctx)
	assert.ErrorIs(t, err, io.EOF)
}

func TestLineReader_LineSurvivesCancelledRead(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pr.Close() }()

	lr := NewLineReader(pr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := lr.ReadLine(ctx)
	require.ErrorIs(t, err, ErrInputCancelled)

	go func() {
		_, _ = io.WriteString(pw, "ya\n")
		_ = pw.Close()
	}()

	line, err := lr.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ya", line)

	_, err = lr.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

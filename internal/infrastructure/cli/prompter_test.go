package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/doeshing/nlsh/internal/domain"
)

func safeRequest(command string) domain.ConfirmationRequest {
	return domain.ConfirmationRequest{
		Command: command,
		Risk:    domain.RiskAssessment{Level: domain.RiskSafe},
		Backend: "anthropic",
	}
}

func dangerousRequest(command string) domain.ConfirmationRequest {
	return domain.ConfirmationRequest{
		Command: command,
		Risk: domain.RiskAssessment{
			Level:       domain.RiskDangerous,
			MatchedRule: "recursive-delete",
			Description: "recursive delete",
		},
		Backend: "openai",
	}
}

func TestPrompterAnswers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"y", "y\n", true},
		{"yes upper", "YES\n", true},
		{"padded", "  y  \n", true},
		{"empty line defaults to no", "\n", false},
		{"n", "n\n", false},
		{"anything else", "sure\n", false},
		{"eof", "", false},
		{"last line without newline", "y", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := NewPrompter(NewLineReader(strings.NewReader(tt.input)), &out, PlainStyles(), false)

			ok, err := p.Confirm(context.Background(), safeRequest("ls -la"))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
			assert.Contains(t, out.String(), "ls -la")
			assert.Contains(t, out.String(), "[y/N]")
		})
	}
}

func TestPrompterTypedYesForDangerous(t *testing.T) {
	var out bytes.Buffer
	p := NewPrompter(NewLineReader(strings.NewReader("y\n")), &out, PlainStyles(), true)
	ok, err := p.Confirm(context.Background(), dangerousRequest("rm -rf build"))
	require.NoError(t, err)
	assert.False(t, ok, "a bare y is not enough")
	assert.Contains(t, out.String(), "Type 'yes'")
	assert.Contains(t, out.String(), "dangerous: recursive delete [recursive-delete]")

	p = NewPrompter(NewLineReader(strings.NewReader("yes\n")), io.Discard, PlainStyles(), true)
	ok, err = p.Confirm(context.Background(), dangerousRequest("rm -rf build"))
	require.NoError(t, err)
	assert.True(t, ok)

	// Safe commands keep the short prompt.
	p = NewPrompter(NewLineReader(strings.NewReader("y\n")), io.Discard, PlainStyles(), true)
	ok, err = p.Confirm(context.Background(), safeRequest("ls"))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPrompterCancelled(t *testing.T) {
	reader, writer := io.Pipe()
	defer writer.Close()

	p := NewPrompter(NewLineReader(reader), io.Discard, PlainStyles(), false)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	ok, err := p.Confirm(ctx, safeRequest("ls"))
	assert.False(t, ok)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLineReaderKeepsPendingLineAfterCancel(t *testing.T) {
	reader, writer := io.Pipe()
	lines := NewLineReader(reader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := lines.ReadLine(ctx)
	require.ErrorIs(t, err, context.Canceled)

	go func() {
		_, _ = writer.Write([]byte("list files\n"))
	}()
	line, err := lines.ReadLine(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "list files", line)

	writer.Close()
	_, err = lines.ReadLine(context.Background())
	assert.ErrorIs(t, err, io.EOF)
}

func TestDescribeRecoveryRequest(t *testing.T) {
	req := safeRequest("cat notes.txt")
	req.Recovery = true
	req.Explanation = "the file is notes.txt"
	req.Failure = &domain.FailureContext{Command: "cat note.txt", ExitCode: 1}

	text := describeRequest(PlainStyles(), req)
	assert.Contains(t, text, "Previous command failed (exit 1): cat note.txt")
	assert.Contains(t, text, "Suggested fix:")
	assert.Contains(t, text, "the file is notes.txt")
	assert.Contains(t, text, "via anthropic")
	assert.NotContains(t, text, "dangerous")
}

func TestRiskSummaryBackendFlag(t *testing.T) {
	risk := domain.RiskAssessment{Level: domain.RiskSafe}.Combine(true)
	assert.Equal(t, "dangerous: flagged as destructive by the backend [backend]", riskSummary(risk))
	assert.Equal(t, "safe", riskSummary(domain.RiskAssessment{Level: domain.RiskSafe}))
}

func TestNewConfirmationPrompterStyles(t *testing.T) {
	lines := NewLineReader(strings.NewReader(""))

	_, isPlain := NewConfirmationPrompter(domain.ConfirmSettings{Style: "plain"}, lines, io.Discard, PlainStyles()).(*Prompter)
	assert.True(t, isPlain)

	_, isForm := NewConfirmationPrompter(domain.ConfirmSettings{Style: "form"}, lines, io.Discard, PlainStyles()).(*FormPrompter)
	assert.True(t, isForm)

	_, isPlain = NewConfirmationPrompter(domain.ConfirmSettings{Style: "auto", TypedYesForDangerous: true}, lines, io.Discard, PlainStyles()).(*Prompter)
	assert.True(t, isPlain)
}

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/Veraticus/celengan/internal/common"
	"github.com/Veraticus/celengan/internal/dialogue"
	"github.com/Veraticus/celengan/internal/model"
)

// Conversation is the part of the dialogue engine the chat loop drives.
type Conversation interface {
	HandleMessage(ctx context.Context, sessionID, userID, text string) (dialogue.Response, error)
	GetPendingAction(ctx context.Context, sessionID string) (*model.PendingAction, error)
	SetLanguage(ctx context.Context, sessionID string, lang model.Language) error
}

const chatHelp = `/pending        show the entry waiting for confirmation
/bahasa id|en   switch reply language
/keluar         leave the chat`

// Chat is an interactive read-reply loop over one session.
type Chat struct {
	conv      Conversation
	reader    *LineReader
	writer    io.Writer
	sessionID string
	userID    string
	lang      model.Language
}

// NewChat creates a chat loop for an existing session.
func NewChat(conv Conversation, in io.Reader, out io.Writer, sessionID, userID string, lang model.Language) *Chat {
	return &Chat{
		conv:      conv,
		reader:    NewLineReader(in),
		writer:    out,
		sessionID: sessionID,
		userID:    userID,
		lang:      model.ParseLanguage(string(lang)),
	}
}

// Run reads messages until the input ends, the user leaves or ctx is
// canceled. Only a lost session or a write failure is returned as an error.
func (c *Chat) Run(ctx context.Context) error {
	if err := c.println(FormatTitle("Celengan") + "\n" + SubtleStyle.Render("Ketik /bantuan untuk perintah.")); err != nil {
		return err
	}

	for {
		if _, err := fmt.Fprint(c.writer, FormatPrompt("kamu")); err != nil {
			return fmt.Errorf("failed to write prompt: %w", err)
		}

		line, err := c.reader.ReadLine(ctx)
		switch {
		case errors.Is(err, ErrInputCancelled), errors.Is(err, io.EOF):
			return c.println("")
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			done, err := c.command(ctx, line)
			if err != nil || done {
				return err
			}
			continue
		}

		resp, err := c.conv.HandleMessage(ctx, c.sessionID, c.userID, line)
		if err != nil {
			if errors.Is(err, common.ErrSessionNotFound) {
				return fmt.Errorf("chat session %s: %w", c.sessionID, err)
			}
			if writeErr := c.println(FormatError(err.Error())); writeErr != nil {
				return writeErr
			}
			continue
		}
		if err := c.println(RenderResponse(resp)); err != nil {
			return err
		}
	}
}

func (c *Chat) command(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)

	switch strings.ToLower(fields[0]) {
	case "/keluar", "/exit", "/quit":
		return true, c.println(FormatInfo("Sampai jumpa! " + CelenganIcon))
	case "/bantuan", "/help":
		return false, c.println(SubtleStyle.Render(chatHelp))
	case "/pending":
		pa, err := c.conv.GetPendingAction(ctx, c.sessionID)
		if err != nil {
			return false, c.println(FormatError(err.Error()))
		}
		return false, c.println(RenderPending(c.lang, pa))
	case "/bahasa", "/lang":
		if len(fields) != 2 {
			return false, c.println(FormatWarning("Pakai: /bahasa id atau /bahasa en"))
		}
		lang := model.ParseLanguage(strings.ToLower(fields[1]))
		if err := c.conv.SetLanguage(ctx, c.sessionID, lang); err != nil {
			return false, c.println(FormatError(err.Error()))
		}
		c.lang = lang
		return false, c.println(FormatSuccess("Bahasa: " + string(lang)))
	default:
		return false, c.println(FormatWarning("Perintah tidak dikenal: " + fields[0]))
	}
}

func (c *Chat) println(s string) error {
	if _, err := fmt.Fprintln(c.writer, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

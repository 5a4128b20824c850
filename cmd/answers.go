package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/speech"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"
)

const (
	AnswerModeType  = "Type answer"
	AnswerModeSpeak = "Speak answer"
	AnswerModeSkip  = "Skip question"
)

// consoleAnswers asks questions on the terminal.
type consoleAnswers struct {
	listener speech.Listener
	out      io.Writer
	logger   *zap.Logger

	// swapped in tests
	chooseMode func(modes []string) (string, error)
	readLine   func(label string) (string, error)
}

func newConsoleAnswers(listener speech.Listener, out io.Writer, logger *zap.Logger) *consoleAnswers {
	return &consoleAnswers{
		listener:   listener,
		out:        out,
		logger:     logger,
		chooseMode: selectMode,
		readLine:   readLine,
	}
}

func (c *consoleAnswers) Answer(ctx context.Context, p interview.Prompt) (string, error) {
	fmt.Fprintf(c.out, "\nQuestion %d/%d (%s): %s\n", p.Number, p.Total, p.Question.Category, p.Question.Text)
	if !p.Deadline.IsZero() {
		fmt.Fprintf(c.out, "Time left: %s\n", time.Until(p.Deadline).Round(time.Second))
	}

	modes := []string{AnswerModeType, AnswerModeSkip}
	if c.listener != nil {
		modes = []string{AnswerModeType, AnswerModeSpeak, AnswerModeSkip}
	}

	mode, err := await(ctx, func() (string, error) { return c.chooseMode(modes) })
	if err != nil {
		return "", promptError(err)
	}

	switch mode {
	case AnswerModeSkip:
		c.logger.Info("question skipped", zap.Int("number", p.Number))
		return "", nil
	case AnswerModeSpeak:
		text := c.listener.ListenOnce(ctx)
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if text == "" {
			fmt.Fprintln(c.out, "Could not understand audio.")
		} else {
			fmt.Fprintf(c.out, "You said: %s\n", text)
		}
		return text, nil
	default:
		answer, err := await(ctx, func() (string, error) { return c.readLine("Your answer") })
		if err != nil {
			return "", promptError(err)
		}
		return answer, nil
	}
}

// await runs a blocking prompt and gives up when ctx is done. The prompt
// goroutine is left behind; the process exits after the session is saved.
func await(ctx context.Context, prompt func() (string, error)) (string, error) {
	type reply struct {
		value string
		err   error
	}

	replies := make(chan reply, 1)
	go func() {
		value, err := prompt()
		replies <- reply{value: value, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-replies:
		return r.value, r.err
	}
}

// promptError turns an interrupted prompt into a cancellation so the
// interview stops and saves what was answered.
func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return fmt.Errorf("%w: %w", context.Canceled, err)
	}
	return err
}

func selectMode(modes []string) (string, error) {
	modePrompt := promptui.Select{
		Label: "How do you want to answer?",
		Items: modes,
	}

	_, mode, err := modePrompt.Run()
	return mode, err
}

func readLine(label string) (string, error) {
	answerPrompt := promptui.Prompt{
		Label: label,
	}

	return answerPrompt.Run()
}

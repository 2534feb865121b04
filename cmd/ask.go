package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/bytebuddy/internal/quiz"
	"github.com/abhisek/bytebuddy/internal/session"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single question without the TUI",
	Long: `Ask one question, print the answer and its sources, and optionally take
a quiz on the answer from the terminal.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		withQuiz, _ := cmd.Flags().GetBool("quiz")

		d, err := setup(cmd)
		if err != nil {
			return err
		}
		defer d.Close()

		return runAsk(cmd.Context(), d.session, strings.Join(args, " "), withQuiz, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	askCmd.Flags().Bool("quiz", false, "Generate a quiz from the answer and take it interactively")
}

// runAsk asks question, prints the result and, when withQuiz is set,
// walks the quiz reading one answer per line from in.
func runAsk(ctx context.Context, s *session.Session, question string, withQuiz bool, in io.Reader, out io.Writer) error {
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question is empty")
	}

	askErr := s.AskQuestion(ctx, question)
	snap := s.Snapshot()

	fmt.Fprintln(out, snap.Answer)
	if len(snap.Sources) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Sources:")
		for _, src := range snap.Sources {
			fmt.Fprintf(out, "  • %s\n", src)
		}
	}
	if askErr != nil {
		return askErr
	}
	if !withQuiz {
		return nil
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Generating quiz...")
	if err := s.GenerateQuiz(ctx); err != nil {
		return fmt.Errorf("generate quiz: %w", err)
	}
	return takeQuiz(s, in, out)
}

// takeQuiz prompts for each item in turn and grades it immediately.
func takeQuiz(s *session.Session, in io.Reader, out io.Writer) error {
	snap := s.Snapshot()
	if !snap.QuizVisible {
		fmt.Fprintln(out, "No quiz questions were generated.")
		return nil
	}

	scanner := bufio.NewScanner(in)
	total := len(snap.Quiz)

	for i, item := range snap.Quiz {
		fmt.Fprintf(out, "\n── Question %d/%d ──\n", i+1, total)
		fmt.Fprintln(out, item.Question)
		for _, opt := range item.Options {
			fmt.Fprintf(out, "  %s\n", opt)
		}

		var choice string
		for choice == "" {
			fmt.Fprint(out, "\nYour answer: ")
			if !scanner.Scan() {
				fmt.Fprintln(out, "\n(input closed)")
				return scanner.Err()
			}
			var ok bool
			choice, ok = pickOption(item.Options, scanner.Text())
			if !ok {
				fmt.Fprintf(out, "Pick one of A-%s or 1-%d.\n", quiz.Letter(len(item.Options)-1), len(item.Options))
			}
		}

		if err := s.SelectOption(i, choice); err != nil {
			return err
		}
		if err := s.CheckAnswer(i); err != nil {
			return err
		}

		graded := s.Snapshot().Quiz[i]
		if graded.Correct {
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Incorrect. Correct answer: %s\n", graded.AnswerKey)
		}
	}

	final := s.Snapshot()
	fmt.Fprintf(out, "\nYou scored %d out of %d\n", final.Score, len(final.Quiz))
	return nil
}

// pickOption maps a typed letter ("b") or 1-based number ("2") to the
// matching option text.
func pickOption(options []string, input string) (string, bool) {
	v := strings.TrimSpace(input)
	if v == "" || len(options) == 0 {
		return "", false
	}
	if n, err := strconv.Atoi(v); err == nil {
		if n >= 1 && n <= len(options) {
			return options[n-1], true
		}
		return "", false
	}
	if len(v) == 1 {
		idx := int(strings.ToUpper(v)[0] - 'A')
		if idx >= 0 && idx < len(options) {
			return options[idx], true
		}
	}
	return "", false
}

// Command receptionist is a text console for the clinic receptionist agent.
// Each line typed on stdin is one caller utterance.
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"unicode"

	"github.com/joho/godotenv"

	"github.com/wolfman30/clinic-scheduler/internal/agent"
	"github.com/wolfman30/clinic-scheduler/internal/app/bootstrap"
	appconfig "github.com/wolfman30/clinic-scheduler/internal/config"
	"github.com/wolfman30/clinic-scheduler/internal/tools"
	"github.com/wolfman30/clinic-scheduler/pkg/logging"
)

type replier interface {
	Greet(ctx context.Context) (string, error)
	Reply(ctx context.Context, utterance string) (string, error)
}

func main() {
	_ = godotenv.Load()
	cfg := appconfig.Load()

	// Logs go to stderr so the transcript stays readable.
	logger := logging.NewWithWriter(os.Stderr, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.BuildScheduler(ctx, cfg, nil, logger)
	if err != nil {
		logger.Error("failed to initialize scheduler", "error", err)
		os.Exit(1)
	}
	defer rt.Close()

	registry := tools.NewRegistry(rt.Scheduler, nil, logger.Component("tools"))
	receptionist, err := agent.New(ctx, agent.Config{
		APIKey:     cfg.GeminiAPIKey,
		ModelID:    cfg.GeminiModelID,
		ClinicName: cfg.ClinicName,
		Location:   rt.Location,
	}, registry, logger.Component("agent"))
	if err != nil {
		logger.Error("failed to initialize receptionist", "error", err)
		os.Exit(1)
	}
	defer receptionist.Close()

	if err := converse(ctx, receptionist.NewSession(), os.Stdin, os.Stdout, logger); err != nil {
		logger.Error("conversation ended with error", "error", err)
	}
}

var (
	exitWords   = map[string]bool{"stop": true, "exit": true, "quit": true}
	fillerWords = map[string]bool{"ok": true, "okay": true, "please": true, "now": true, "thanks": true, "thank": true, "you": true, "bye": true, "goodbye": true}
)

// isExit reports whether the utterance is an exit command: at least one exit
// word and nothing else but pleasantries.
func isExit(utterance string) bool {
	words := strings.FieldsFunc(strings.ToLower(utterance), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	found := false
	for _, w := range words {
		switch {
		case exitWords[w]:
			found = true
		case !fillerWords[w]:
			return false
		}
	}
	return found
}

// converse greets the caller and answers each line until an exit word, EOF,
// or cancellation.
func converse(ctx context.Context, session replier, in io.Reader, out io.Writer, logger *logging.Logger) error {
	greeting, err := session.Greet(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Receptionist: %s\n", greeting)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}
		if isExit(utterance) {
			fmt.Fprintln(out, "Receptionist: Goodbye!")
			return nil
		}

		answer, err := session.Reply(ctx, utterance)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			logger.Warn("receptionist reply failed", "error", err)
			fmt.Fprintln(out, "Receptionist: Sorry, I didn't catch that. Could you say it again?")
			continue
		}
		fmt.Fprintf(out, "Receptionist: %s\n", answer)
	}
}

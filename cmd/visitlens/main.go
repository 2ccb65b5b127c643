// Command visitlens is a terminal client for the classification backend.
// It prompts for a website URL, walks through the clarifying questions and
// prints the resulting interest classification.
package main

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/visitlens/visitlens/internal/config"
	"github.com/visitlens/visitlens/internal/dialogue"
	"github.com/visitlens/visitlens/internal/sessionstore"
	"github.com/visitlens/visitlens/internal/transport"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	// The client logs to stderr so prompts and renders stay clean on stdout.
	level, parseErr := zerolog.ParseLevel(os.Getenv("VISITLENS_LOG_LEVEL"))
	if parseErr != nil {
		level = zerolog.WarnLevel
	}
	zerolog.SetGlobalLevel(level)
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	client := transport.New(cfg.Client.BaseURL, &http.Client{Timeout: cfg.Client.Timeout})
	sessions := sessionstore.New(cfg.Client.SessionFile)
	machine := dialogue.NewMachine(client, sessions)

	fmt.Println("visitlens: find out what a website's visitors are interested in")
	fmt.Println(`enter a website URL to begin, "reset" to start over, "quit" to exit`)

	scanner := bufio.NewScanner(os.Stdin)
	for {
		render(machine.Snapshot())

		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit":
			return nil
		case "reset":
			machine.Reset()
			fmt.Println("session cleared")
			continue
		}

		if err := dispatch(ctx, machine, line); err != nil {
			log.Debug().Err(err).Msg("input rejected")
		}
		if ctx.Err() != nil {
			return nil
		}
	}
}

// dispatch routes input by the machine's state: an open question takes the
// line as an answer, anything else is treated as a URL.
func dispatch(ctx context.Context, machine *dialogue.Machine, line string) error {
	view := machine.Snapshot()

	if view.Status == dialogue.StatusAwaitingAnswer {
		answer := resolveOption(view, line)
		return machine.SubmitAnswer(ctx, answer)
	}
	return machine.StartSession(ctx, line)
}

// resolveOption maps a numeric choice onto the open question's options;
// any other input is taken verbatim.
func resolveOption(view dialogue.View, line string) string {
	n, err := strconv.Atoi(line)
	if err != nil {
		return line
	}
	for _, msg := range view.Messages {
		if msg.Answerable && n >= 1 && n <= len(msg.Options) {
			return msg.Options[n-1]
		}
	}
	return line
}

func render(view dialogue.View) {
	for _, msg := range view.Messages {
		switch msg.Kind {
		case dialogue.KindQuestion:
			if !msg.Answerable {
				continue
			}
			fmt.Println()
			fmt.Println(msg.Content)
			for i, opt := range msg.Options {
				fmt.Printf("  %d. %s\n", i+1, opt)
			}
		case dialogue.KindClassification:
			printClassification(msg)
		case dialogue.KindAnswer:
			// Answers were typed by the user, no need to echo them.
		}
	}

	if view.URLError != "" {
		fmt.Println("!", view.URLError)
	}
	if view.AnswerError != "" {
		fmt.Println("!", view.AnswerError)
	}

	if view.Status == dialogue.StatusCompleted {
		fmt.Println(`done. enter a new URL or "quit"`)
	}
}

func printClassification(msg dialogue.MessageView) {
	cls := msg.Classification
	if cls == nil {
		return
	}
	fmt.Println()
	fmt.Println("visitor interests:", strings.Join(cls.Interests, ", "))
	if cls.PrimaryInterest != "" {
		fmt.Println("primary interest: ", cls.PrimaryInterest)
	}
	if len(cls.RelevantSections) > 0 {
		fmt.Println("relevant sections:")
		for _, s := range cls.RelevantSections {
			fmt.Println("  -", s)
		}
	}
}

package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"warehouse-backend/internal/adapters/cli"
	"warehouse-backend/internal/app"
)

var errExit = errors.New("exit")

// Run starts the interactive console loop. Slash commands accept the same
// arguments as the one-shot CLI; /new-order starts the order wizard.
func Run(ctx context.Context, svc app.ApplicationService, reader *bufio.Reader, out io.Writer) {
	fmt.Fprintln(out, "Warehouse console")
	fmt.Fprintln(out, "Use /help for commands, /new-order to place an order.")
	fmt.Fprintln(out, strings.Repeat("-", 70))

	dispatchSlash := func(input string) error {
		tokens := strings.Fields(strings.TrimPrefix(input, "/"))
		if len(tokens) == 0 {
			return nil
		}
		cmd := strings.ToLower(tokens[0])
		args := tokens[1:]

		switch cmd {
		case "new-order", "no":
			handleNewOrder(ctx, reader, out, svc, args)
			return nil
		case "exit", "quit", "e", "q":
			return errExit
		case "h":
			cmd = "help"
		case "place":
			fmt.Fprintln(out, "Use /new-order here; place reads JSON from stdin in one-shot mode.")
			return nil
		}
		return cli.Run(ctx, svc, append([]string{cmd}, args...), strings.NewReader(""), out)
	}

	for {
		fmt.Fprint(out, "\n> ")
		input, err := reader.ReadString('\n')
		input = strings.TrimSpace(input)
		if input == "" {
			if err != nil {
				return
			}
			continue
		}

		if !strings.HasPrefix(input, "/") {
			fmt.Fprintln(out, "Commands start with '/'. Type /help for the list.")
			continue
		}
		if err := dispatchSlash(input); err != nil {
			if errors.Is(err, errExit) {
				fmt.Fprintln(out, "Goodbye!")
				return
			}
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"swooche-router/internal/observe"
	"swooche-router/internal/softphone"
	"swooche-router/pkg/logger"

	"github.com/joho/godotenv"
)

// Console softphone. Registers a voice session against a running router and
// drives it from stdin, with the simulated device standing in for a provider
// SDK. Useful for exercising token issuance, presence reporting and the full
// call round trip without a carrier in the loop.
func main() {
	_ = godotenv.Load()

	routerURL := flag.String("router", "http://localhost:8080", "base URL of the routing service")
	identity := flag.String("identity", "", "requested agent identity (router may substitute the default)")
	flag.Parse()

	log := logger.New("development")

	client := softphone.NewRouterClient(*routerURL, *identity, log, observe.NewNopMetrics())
	dev := softphone.NewSimDevice()
	session := softphone.NewSession(softphone.Config{
		Platform: softphone.PlatformConsole,
		Device:   dev,
		Media:    softphone.NewSimMedia(),
		Tokens:   client,
		Presence: client,
		Logger:   log,
	})
	dev.Bind(session)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Println("commands: start | ring <from> | accept | reject | cancel | hangup | state | quit")

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		fmt.Printf("[%s] > ", session.State())
		var line string
		var open bool
		select {
		case <-ctx.Done():
			session.Stop()
			return
		case line, open = <-lines:
			if !open {
				session.Stop()
				return
			}
		}

		cmd, arg := splitCommand(line)
		switch cmd {
		case "":
		case "start":
			if err := session.Start(ctx); err != nil {
				if errors.Is(err, softphone.ErrSessionActive) {
					fmt.Println("already started")
				} else {
					fmt.Println("start failed:", err)
				}
			}
		case "ring":
			if arg == "" {
				fmt.Println("usage: ring <from-number>")
				continue
			}
			dev.EmitIncoming(arg)
		case "accept":
			session.Accept()
		case "reject":
			session.Reject()
		case "cancel":
			dev.EmitCancel()
		case "hangup":
			session.EndCall()
		case "state":
			fmt.Printf("state=%s identity=%s counterparty=%s duration=%ds err=%q\n",
				session.State(), session.Identity(), session.Counterparty(),
				session.DurationSeconds(), session.Err())
		case "quit":
			session.Stop()
			return
		default:
			fmt.Println("unknown command:", cmd)
		}
	}
}

func splitCommand(line string) (string, string) {
	fields := strings.Fields(strings.TrimSpace(line))
	if len(fields) == 0 {
		return "", ""
	}
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], fields[1]
}

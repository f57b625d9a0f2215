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
	"time"

	"tempchat/repositories"
	"tempchat/runtime"
	"tempchat/runtime/workers"
	"tempchat/services"
	"tempchat/ui"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
)

// Exit codes for the chat binary.
const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

func main() {
	// The main function manages the OS exit code based on run()'s return.
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
	}
	os.Exit(code)
}

// run initializes all components, manages the session lifecycle, and
// centralizes error reporting. This pattern is preferred over calling
// os.Exit or panic directly because it ensures all 'defer' statements
// (like database cleanup) are executed before the program exits.
func run() (int, error) {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return exitRuntime, fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Context & Signals (Ctrl+C behaves like /quit)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 4. Store adapter, change feed, rendering
	retention := time.Duration(config.TTLSeconds) * time.Second
	feed := repositories.NewChangeFeed(log)
	defer feed.Close()
	messages := repositories.NewMessageRepository(db, log, feed, config.Room, retention)
	users := repositories.NewUserRepository(db)
	render := ui.NewConsoleRenderer(os.Stdout, config.Colours)
	history := services.NewHistoryService(messages, render, log)

	// 5. Retention sweeper, supervised for the process lifetime
	sup := workers.NewSupervisor(log, config.RestartInterval)
	sup.Add(workers.NewExpiryWorker(messages, log, config.SweepInterval))
	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	// 6. One reader shared between the username prompt and the input loop,
	// so no buffered bytes are lost between the two.
	stdin := bufio.NewReader(os.Stdin)
	username, err := promptUsername(render, stdin, config.Room)
	if err != nil {
		stop()
		<-supDone
		return exitRuntime, err
	}

	session := runtime.NewSession(
		log, users, messages, feed, history, render, stdin,
		config.Room, config.RecentLimit, config.ShutdownTimeout,
	)
	sessionErr := session.Run(ctx, username)

	stop()
	<-supDone

	if sessionErr != nil {
		return exitRuntime, sessionErr
	}
	return exitOK, nil
}

// promptUsername asks until it gets a usable handle. Colons are rejected
// because the store keys use them as separators; the room identifier is
// reserved for broadcast addressing.
func promptUsername(render *ui.ConsoleRenderer, in *bufio.Reader, room string) (string, error) {
	for {
		render.Prompt("Choose a username: ")
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return "", fmt.Errorf("reading username: %w", err)
		}
		username := strings.TrimSpace(line)
		switch {
		case username == "" && err == io.EOF:
			return "", fmt.Errorf("no username provided")
		case username == "":
			continue
		case strings.ContainsAny(username, ": "):
			render.Alert("Usernames cannot contain spaces or ':'")
		case username == room:
			render.Alert(fmt.Sprintf("%q is reserved for the public room", room))
		default:
			return username, nil
		}
	}
}

package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gookit/color"
	"github.com/kelseyhightower/envconfig"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"pairchat/auth"
	"pairchat/client"
	"pairchat/domain"
)

const (
	exitOK      = 0
	exitRuntime = 1
	exitConfig  = 2
)

// Config defines the client-side environment variables.
type Config struct {
	ServerURL string `envconfig:"CHAT_SERVER_URL" default:"http://localhost:8080"`
	Email     string `envconfig:"CHAT_EMAIL"`
	Password  string `envconfig:"CHAT_PASSWORD"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"INFO"`
}

func main() {
	code, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Client error: %v\n", err)
	}
	os.Exit(code)
}

func run() (int, error) {
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		return exitConfig, fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	session := client.NewSession(config.ServerURL)
	stdin := bufio.NewScanner(os.Stdin)

	email, password := config.Email, config.Password
	if email == "" {
		email = prompt(stdin, "email: ")
	}
	if password == "" {
		password = prompt(stdin, "password: ")
	}

	user, err := session.Login(ctx, email, password)
	if err != nil {
		return exitRuntime, fmt.Errorf("login failed: %w", err)
	}
	color.Green.Printf("Logged in as %s (%s)\n", user.FullName, user.ID)

	// Live channel: register handlers once, reconnection is automatic.
	live := client.NewLiveChannel(config.ServerURL, user.ID, log)
	live.On(domain.EventOnlineUsers, func(data json.RawMessage) {
		var ids []string
		if err := json.Unmarshal(data, &ids); err == nil {
			color.Cyan.Printf("online: %s\n", strings.Join(ids, ", "))
		}
	})
	live.On(domain.EventNewMessage, func(data json.RawMessage) {
		var message domain.Message
		if err := json.Unmarshal(data, &message); err == nil {
			color.Yellow.Printf("[%s] %s %s\n",
				message.Sender, message.Content.Text, message.Content.Image)
		}
	})
	live.On(domain.EventAddToUserList, func(data json.RawMessage) {
		var profile domain.PublicProfile
		if err := json.Unmarshal(data, &profile); err == nil {
			color.Cyan.Printf("new conversation with %s\n", profile.FullName)
		}
	})
	go live.Run(ctx)

	printHelp()
	for {
		fmt.Print("> ")
		if !stdin.Scan() {
			break
		}
		line := strings.TrimSpace(stdin.Text())
		if line == "" {
			continue
		}
		if quit := dispatch(ctx, session, live, line); quit {
			break
		}
	}

	return exitOK, nil
}

// dispatch executes one REPL command, returning true to exit.
func dispatch(ctx context.Context, session *client.Session, live *client.LiveChannel, line string) bool {
	command, rest, _ := strings.Cut(line, " ")
	switch command {
	case "/contacts":
		contacts, err := session.Contacts(ctx)
		if err != nil {
			color.Red.Println(err)
			return false
		}
		renderContacts(contacts)
	case "/search":
		users, err := session.SearchUsers(ctx, rest)
		if err != nil {
			color.Red.Println(err)
			return false
		}
		for _, user := range users {
			fmt.Printf("%s\t%s\n", user.ID, user.FullName)
		}
	case "/open":
		messages, err := session.History(ctx, rest)
		if err != nil {
			color.Red.Println(err)
			return false
		}
		for _, message := range messages {
			fmt.Printf("%s [%s] %s %s\n",
				message.CreatedAt.Format("15:04:05"), message.Sender,
				message.Content.Text, message.Content.Image)
		}
	case "/send":
		receiverID, text, _ := strings.Cut(rest, " ")
		_, err := session.Send(ctx, receiverID, auth.SendMessageRequest{Text: text})
		if err != nil {
			color.Red.Println(err)
		}
	case "/logout":
		// Explicit teardown: the socket closes together with the session.
		live.Close()
		if err := session.Logout(ctx); err != nil {
			color.Red.Println(err)
		}
		return true
	case "/quit":
		live.Close()
		return true
	default:
		printHelp()
	}
	return false
}

func renderContacts(contacts []domain.Contact) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"ID", "Name", "Unseen"})
	for _, contact := range contacts {
		table.Append([]string{contact.ID, contact.FullName, fmt.Sprintf("%d", contact.UnseenMessages)})
	}
	table.Render()
}

func prompt(stdin *bufio.Scanner, label string) string {
	fmt.Print(label)
	if !stdin.Scan() {
		return ""
	}
	return strings.TrimSpace(stdin.Text())
}

func printHelp() {
	fmt.Println("commands: /contacts, /search <query>, /open <userId>, /send <userId> <text>, /logout, /quit")
}

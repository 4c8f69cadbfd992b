package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/agentmira/mira-go/internal/api"
	"github.com/agentmira/mira-go/internal/chat"
	"github.com/agentmira/mira-go/internal/config"
	"github.com/agentmira/mira-go/internal/logger"
	"github.com/agentmira/mira-go/internal/property"
	"github.com/agentmira/mira-go/internal/saved"
	"github.com/agentmira/mira-go/internal/session"
)

var errQuit = errors.New("quit")

// app wires the stores together and renders their state. It holds no
// state of its own beyond the transcript cursor.
type app struct {
	gw       *api.Client
	sess     *session.Store
	chat     *chat.Session
	tracker  *saved.Tracker
	rendered int
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.L.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger.SetLevel(cfg.Log.Level)

	client := api.NewClient(cfg.API.BaseURL, cfg.API.Timeout())
	tokens := session.NewTokenStore(cfg.Session.TokenDBPath)
	sess := session.NewStore(client, tokens)
	chatSession := chat.NewSession(client, cfg.Chat.Greeting)
	tracker := saved.NewTracker(client, chatSession.FindProperty)

	a := &app{gw: client, sess: sess, chat: chatSession, tracker: tracker}

	ctx := context.Background()

	// Silent session restore before the first prompt.
	sess.Restore(ctx)
	if sess.IsAuthenticated() {
		if err := tracker.Refresh(ctx); err != nil {
			logger.L.Warn("initial saved-list load failed", "error", err)
		}
		fmt.Printf("Welcome back, %s.\n", sess.User().Name)
	} else {
		fmt.Println("You are not logged in. Use /login or /register to get started.")
	}
	a.render()

	registry := a.commands()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			if err := a.dispatch(ctx, registry, line); err != nil {
				if errors.Is(err, errQuit) {
					return
				}
				fmt.Println(err.Error())
			}
			continue
		}

		if !sess.IsAuthenticated() {
			fmt.Println("Please log in first: /login <email> <password>")
			continue
		}
		chatSession.SendText(ctx, line)
		a.render()
	}
}

func (a *app) dispatch(ctx context.Context, registry *Registry, line string) error {
	fields := strings.Fields(line)
	name := strings.TrimPrefix(fields[0], "/")

	cmd, err := registry.Get(name)
	if err != nil {
		return err
	}
	if cmd.RequireAuth && !a.sess.IsAuthenticated() {
		return fmt.Errorf("/%s requires a login. Use /login <email> <password> first.", cmd.Name)
	}
	return cmd.Run(ctx, fields[1:])
}

func (a *app) commands() *Registry {
	registry := NewRegistry()

	registry.Register(&Command{
		Name: "help", Usage: "/help", Description: "List available commands",
		Run: func(ctx context.Context, args []string) error {
			for _, c := range registry.List() {
				fmt.Printf("  %-40s %s\n", c.Usage, c.Description)
			}
			return nil
		},
	})

	registry.Register(&Command{
		Name: "quit", Usage: "/quit", Description: "Exit",
		Run: func(ctx context.Context, args []string) error { return errQuit },
	})

	registry.Register(&Command{
		Name: "login", Usage: "/login <email> <password>", Description: "Log in",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 2 {
				return errors.New("usage: /login <email> <password>")
			}
			if err := a.sess.Login(ctx, args[0], args[1]); err != nil {
				return err
			}
			a.afterLogin(ctx)
			return nil
		},
	})

	registry.Register(&Command{
		Name: "register", Usage: "/register <name> <email> <password>", Description: "Create an account",
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 3 {
				return errors.New("usage: /register <name> <email> <password>")
			}
			if err := a.sess.Register(ctx, args[0], args[1], args[2]); err != nil {
				return err
			}
			a.afterLogin(ctx)
			return nil
		},
	})

	registry.Register(&Command{
		Name: "logout", Usage: "/logout", Description: "Log out",
		Run: func(ctx context.Context, args []string) error {
			a.sess.Logout()
			a.tracker.Clear()
			fmt.Println("Logged out. Use /login or /register to start a new session.")
			return nil
		},
	})

	registry.Register(&Command{
		Name: "whoami", Usage: "/whoami", Description: "Show the current user",
		Run: func(ctx context.Context, args []string) error {
			user := a.sess.User()
			if user == nil {
				fmt.Println("Not logged in.")
				return nil
			}
			fmt.Printf("%s <%s>\n", user.Name, user.Email)
			return nil
		},
	})

	registry.Register(&Command{
		Name: "filters", Usage: "/filters [location=..] [budget=..] [bedrooms=..]",
		Description: "Search via the assistant with structured criteria", RequireAuth: true,
		Run: func(ctx context.Context, args []string) error {
			filters, err := parseFilters(args)
			if err != nil {
				return err
			}
			a.chat.SendFilters(ctx, filters)
			a.render()
			return nil
		},
	})

	registry.Register(&Command{
		Name: "search", Usage: "/search [location=..] [budget=..] [bedrooms=..]",
		Description: "List matching properties without a chat turn", RequireAuth: true,
		Run: func(ctx context.Context, args []string) error {
			filters, err := parseFilters(args)
			if err != nil {
				return err
			}
			recs, err := a.gw.SearchProperties(ctx, filters)
			if err != nil {
				return fmt.Errorf("search failed: %w", err)
			}
			a.printCards(recsToCards(recs))
			return nil
		},
	})

	registry.Register(&Command{
		Name: "save", Usage: "/save <property-id>", Description: "Save a property", RequireAuth: true,
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: /save <property-id>")
			}
			res, err := a.tracker.Save(ctx, args[0], nil)
			if err != nil {
				return err
			}
			if res.AlreadySaved {
				fmt.Println("Property is already saved.")
			} else {
				fmt.Println("Property saved. You can save multiple properties in this chat.")
			}
			return nil
		},
	})

	registry.Register(&Command{
		Name: "unsave", Usage: "/unsave <property-id>", Description: "Remove a saved property", RequireAuth: true,
		Run: func(ctx context.Context, args []string) error {
			if len(args) != 1 {
				return errors.New("usage: /unsave <property-id>")
			}
			if err := a.tracker.Unsave(ctx, args[0]); err != nil {
				return err
			}
			fmt.Println("Removed from saved properties.")
			return nil
		},
	})

	registry.Register(&Command{
		Name: "saved", Usage: "/saved", Description: "List saved properties", RequireAuth: true,
		Run: func(ctx context.Context, args []string) error {
			if err := a.tracker.Refresh(ctx); err != nil {
				return err
			}
			props := a.tracker.List()
			if len(props) == 0 {
				fmt.Println("You haven't saved any properties yet.")
				return nil
			}
			noun := "properties"
			if len(props) == 1 {
				noun = "property"
			}
			fmt.Printf("You have %d saved %s:\n", len(props), noun)
			for _, p := range props {
				fmt.Println("  " + p.Card())
			}
			return nil
		},
	})

	return registry
}

func (a *app) afterLogin(ctx context.Context) {
	if err := a.tracker.Refresh(ctx); err != nil {
		logger.L.Warn("saved-list load after login failed", "error", err)
	}
	fmt.Printf("Logged in as %s.\n", a.sess.User().Name)
}

// render prints transcript entries added since the last render.
func (a *app) render() {
	msgs := a.chat.Messages()
	for _, m := range msgs[a.rendered:] {
		switch m.Role {
		case chat.RoleUser:
			fmt.Printf("You: %s\n", m.Content)
		default:
			fmt.Printf("Mira: %s\n", m.Content)
		}
		if m.Filters != nil {
			fmt.Printf("  (filters: %s)\n", filterTag(*m.Filters))
		}
		if len(m.Properties) > 0 {
			cards := make([]string, 0, len(m.Properties))
			for _, p := range m.Properties {
				card := p.Card()
				if a.tracker.IsSaved(p.ID) {
					card += "  [saved]"
				}
				cards = append(cards, card)
			}
			a.printCards(cards)
		}
	}
	a.rendered = len(msgs)
}

func (a *app) printCards(cards []string) {
	if len(cards) == 0 {
		fmt.Println("  (no matching properties)")
		return
	}
	for _, card := range cards {
		fmt.Println("  " + card)
	}
}

func filterTag(f api.Filters) string {
	orAny := func(s string) string {
		if s == "" {
			return "Any"
		}
		return s
	}
	return fmt.Sprintf("%s / %s / %s beds", orAny(f.Location), orAny(f.Budget), orAny(f.Bedrooms))
}

func recsToCards(recs []property.Record) []string {
	props := property.FromBackendList(recs)
	cards := make([]string, 0, len(props))
	for _, p := range props {
		cards = append(cards, p.Card())
	}
	return cards
}

func parseFilters(args []string) (api.Filters, error) {
	var f api.Filters
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || value == "" {
			return api.Filters{}, fmt.Errorf("bad filter %q (expected key=value)", arg)
		}
		switch key {
		case "location":
			f.Location = value
		case "budget":
			f.Budget = value
		case "bedrooms":
			f.Bedrooms = value
		default:
			return api.Filters{}, fmt.Errorf("unknown filter %q (location, budget, bedrooms)", key)
		}
	}
	return f, nil
}

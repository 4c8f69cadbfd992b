package main

import (
	"context"
	"fmt"
	"sort"
)

// Command is a slash command available at the prompt.
type Command struct {
	Name        string
	Usage       string
	Description string
	RequireAuth bool
	Run         func(ctx context.Context, args []string) error
}

// Registry manages the available commands
type Registry struct {
	commands map[string]*Command
}

// NewRegistry creates a new Registry
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register registers a new command
func (r *Registry) Register(cmd *Command) {
	r.commands[cmd.Name] = cmd
}

// Get retrieves a command by name
func (r *Registry) Get(name string) (*Command, error) {
	cmd, ok := r.commands[name]
	if !ok {
		return nil, fmt.Errorf("unknown command: /%s (try /help)", name)
	}
	return cmd, nil
}

// List returns all registered commands sorted by name
func (r *Registry) List() []*Command {
	cmds := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		cmds = append(cmds, c)
	}
	sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name < cmds[j].Name })
	return cmds
}

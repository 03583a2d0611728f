package command

import (
	"fmt"
	"sort"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// Registry collects declared commands. It is safe for concurrent use: the
// router reads from it on the gateway goroutine while setup code registers.
type Registry struct {
	mu       sync.RWMutex
	commands map[string]*Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{commands: make(map[string]*Command)}
}

// Register adds commands. Duplicate names are rejected and the whole
// batch is refused, so an error means nothing was registered.
func (r *Registry) Register(cmds ...*Command) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[string]bool, len(cmds))
	for _, c := range cmds {
		if c == nil {
			return ErrInvalidInput("cannot register a nil command", nil)
		}
		if _, exists := r.commands[c.Name]; exists {
			return ErrConflict(fmt.Sprintf("command %q already registered", c.Name), nil)
		}
		if batch[c.Name] {
			return ErrConflict(fmt.Sprintf("command %q appears twice in one batch", c.Name), nil)
		}
		batch[c.Name] = true
	}

	for _, c := range cmds {
		r.commands[c.Name] = c
	}
	return nil
}

// Get returns the command with the given name.
func (r *Registry) Get(name string) (*Command, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.commands[name]
	if !ok {
		return nil, ErrNotFound(fmt.Sprintf("command %q not registered", name), nil)
	}
	return c, nil
}

// List returns the registered commands sorted by name. The slice is a
// defensive copy so callers cannot disturb registration state.
func (r *Registry) List() []*Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Command, 0, len(r.commands))
	for _, c := range r.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// ApplicationCommands renders every registered command into its wire
// payload, sorted by name for deterministic registration payloads.
func (r *Registry) ApplicationCommands() []*discordgo.ApplicationCommand {
	cmds := r.List()
	out := make([]*discordgo.ApplicationCommand, 0, len(cmds))
	for _, c := range cmds {
		out = append(out, c.ApplicationCommand())
	}
	return out
}

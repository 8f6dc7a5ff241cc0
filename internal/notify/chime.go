package notify

import (
	"context"
	"os/exec"
	"strings"

	"github.com/mgaillard/cooloff/internal/logger"
)

// Chime is the audio side effect fired on cooldown expiry. Fire and
// forget: failures are swallowed by the caller.
type Chime interface {
	Play(ctx context.Context) error
}

// NoopChime does nothing. Used when sound is off or no command is
// configured.
type NoopChime struct{}

func (NoopChime) Play(ctx context.Context) error { return nil }

// CommandChime shells out to a user-configured command, e.g.
// "paplay /usr/share/sounds/ding.oga". The command runs detached from
// the tick loop; its exit status is reported but never blocks a
// transition.
type CommandChime struct {
	name   string
	args   []string
	logger logger.Logger
}

// NewCommandChime parses command into program plus arguments. Returns a
// NoopChime when the command is empty.
func NewCommandChime(command string, log logger.Logger) Chime {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return NoopChime{}
	}
	return &CommandChime{
		name:   fields[0],
		args:   fields[1:],
		logger: log,
	}
}

func (c *CommandChime) Play(ctx context.Context) error {
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			c.logger.Debug("chime command exited with error", logger.Error(err))
		}
	}()
	return nil
}

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"tutorec/internal/config"
	"tutorec/internal/ipc"
	"tutorec/internal/library"
)

// standaloneAnnotation marks commands that must work without a loadable
// config file, like `config init` on a fresh machine.
const standaloneAnnotation = "standalone"

// commandContext carries lazily-loaded shared state across the command
// tree: the effective config and the daemon socket location.
type commandContext struct {
	socketFlag *string
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(socketFlag, configFlag *string) *commandContext {
	return &commandContext{
		socketFlag: socketFlag,
		configFlag: configFlag,
	}
}

// ensureConfig loads and caches the configuration exactly once per
// invocation, honoring the --config flag.
func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err == nil {
			err = cfg.EnsureDirectories()
		}
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// configValue returns the cached config, nil when loading failed.
func (c *commandContext) configValue() *config.Config {
	cfg, _ := c.ensureConfig()
	return cfg
}

func (c *commandContext) socketPath() string {
	if c.socketFlag == nil {
		return defaultSocketPath()
	}
	if strings.TrimSpace(*c.socketFlag) == "" {
		*c.socketFlag = defaultSocketPath()
	}
	return *c.socketFlag
}

func (c *commandContext) withClient(fn func(*ipc.Client) error) error {
	client, err := c.dialClient()
	if err != nil {
		return err
	}
	defer client.Close()
	return fn(client)
}

func (c *commandContext) dialClient() (*ipc.Client, error) {
	socket := c.socketPath()
	client, err := ipc.Dial(socket)
	if err == nil {
		return client, nil
	}
	if errors.Is(err, ipc.ErrDaemonNotRunning) {
		return nil, fmt.Errorf("daemon is not running (socket %s); start it with `tutorec daemon start`", socket)
	}
	return nil, fmt.Errorf("connect to daemon: %w", err)
}

// withLibrary runs fn against the daemon when one is up, so catalog reads
// see in-flight writes, and falls back to opening the library database
// directly when no daemon is running. Exactly one of client and store is
// non-nil.
func (c *commandContext) withLibrary(fn func(*ipc.Client, *library.Store) error) error {
	client, err := ipc.Dial(c.socketPath())
	if err == nil {
		defer client.Close()
		return fn(client, nil)
	}
	if !errors.Is(err, ipc.ErrDaemonNotRunning) {
		return fmt.Errorf("connect to daemon: %w", err)
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := library.Open(cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(nil, store)
}

// defaultSocketPath resolves the socket from config, falling back to a
// stable per-user location when no config can be loaded.
func defaultSocketPath() string {
	if cfg, _, _, err := config.Load(""); err == nil {
		return cfg.Paths.SocketPath
	}
	if fallback, err := config.ExpandPath("~/.local/share/tutorec/tutorec.sock"); err == nil {
		return fallback
	}
	return filepath.Join(os.TempDir(), "tutorec.sock")
}

// isStandalone reports whether cmd or any ancestor opts out of config
// loading via the standalone annotation.
func isStandalone(cmd *cobra.Command) bool {
	for ; cmd != nil; cmd = cmd.Parent() {
		if cmd.Annotations[standaloneAnnotation] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}

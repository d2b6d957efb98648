// Package rcon wraps the game server's remote console. Timeouts are
// static: a whisper that cannot be delivered within a few seconds is
// dropped rather than holding up a marketplace operation.
package rcon

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorcon/rcon"
	"go.uber.org/zap"
)

const (
	dialTimeout = 5 * time.Second
	execTimeout = 5 * time.Second
)

type Client struct {
	addr     string
	password string
	log      *zap.SugaredLogger

	mu   sync.Mutex
	conn *rcon.Conn
}

func Dial(addr, password string, log *zap.SugaredLogger) (*Client, error) {
	c := &Client{addr: addr, password: password, log: log}
	if err := c.reconnect(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) reconnect() error {
	if c.conn != nil {
		_ = c.conn.Close()
		c.conn = nil
	}
	conn, err := rcon.Dial(c.addr, c.password,
		rcon.SetDialTimeout(dialTimeout),
		rcon.SetDeadline(execTimeout))
	if err != nil {
		return fmt.Errorf("rcon dial %s: %w", c.addr, err)
	}
	c.conn = conn
	return nil
}

// execute serializes commands on the single connection and redials once
// on failure; RCON connections are routinely dropped by server restarts.
func (c *Client) execute(command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		if err := c.reconnect(); err != nil {
			return "", err
		}
	}
	out, err := c.conn.Execute(command)
	if err == nil {
		return out, nil
	}
	c.log.Warnw("rcon execute failed, redialing", "err", err)
	if err := c.reconnect(); err != nil {
		return "", err
	}
	return c.conn.Execute(command)
}

// Tell whispers a message to one online player.
func (c *Client) Tell(playerName, message string) error {
	_, err := c.execute(fmt.Sprintf("tell %s %s", playerName, message))
	return err
}

// OnlinePlayers queries the server's player list.
func (c *Client) OnlinePlayers() ([]string, error) {
	out, err := c.execute("list")
	if err != nil {
		return nil, err
	}
	return parsePlayerList(out), nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return nil
	}
	err := c.conn.Close()
	c.conn = nil
	return err
}

// parsePlayerList handles the vanilla output
// "There are 2 of a max of 20 players online: alice, bob".
func parsePlayerList(out string) []string {
	_, names, ok := strings.Cut(out, ":")
	if !ok {
		return nil
	}
	var players []string
	for _, n := range strings.Split(names, ",") {
		n = strings.TrimSpace(n)
		if n != "" {
			players = append(players, n)
		}
	}
	return players
}

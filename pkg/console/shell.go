package console

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/abiosoft/ishell"
)

const shellKey = "$shell"

// DefaultRecvWait is the wait of recv without argument.
const DefaultRecvWait = 500 * time.Millisecond

var commands = []*ishell.Cmd{
	&OpenCmd,
	&CloseCmd,
	&SendCmd,
	&SendHexCmd,
	&RecvCmd,
	&StatsCmd,
	&PortsCmd,
}

// Shell is the interactive front end of a Console.
type Shell struct {
	Shell   *ishell.Shell
	Console *Console
}

// NewShell creates a Shell.
func NewShell(c *Console) *Shell {
	s := &Shell{Shell: ishell.New(), Console: c}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(c.Prompt())
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// ConsoleFrom gets the Console from ishell context.
func ConsoleFrom(c *ishell.Context) *Console {
	return ShellFrom(c).Console
}

func (s *Shell) updatePrompt() {
	s.Shell.SetPrompt(s.Console.Prompt())
}

// Run processes args as one command if present, otherwise runs interactively.
func (s *Shell) Run(args ...string) error {
	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	s.Shell.Run()
	return nil
}

func mustBeOpen(fn func(c *ishell.Context, con *Console)) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		con := ConsoleFrom(c)
		if !con.Stack.IsOpen() {
			c.Err(ErrNotOpen)
			return
		}
		fn(c, con)
	}
}

func printRecv(c *ishell.Context, data []byte) {
	if len(data) == 0 {
		c.Println("(no data)")
		return
	}
	c.Printf("%q\n", string(data))
}

var (
	// OpenCmd initializes the stack on the endpoint.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "open the endpoint",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			if err := s.Console.Open(); err != nil {
				c.Err(err)
				return
			}
			s.updatePrompt()
		},
	}

	// CloseCmd closes the endpoint.
	CloseCmd = ishell.Cmd{
		Name:    "close",
		Aliases: []string{"c"},
		Help:    "close the endpoint",
		Func: mustBeOpen(func(c *ishell.Context, con *Console) {
			if err := con.Close(); err != nil {
				c.Err(err)
			}
			ShellFrom(c).updatePrompt()
		}),
	}

	// SendCmd sends a line of text.
	SendCmd = ishell.Cmd{
		Name:    "send",
		Aliases: []string{"s"},
		Help:    "TEXT, sent with CR LF",
		Func: mustBeOpen(func(c *ishell.Context, con *Console) {
			if _, err := con.SendLine(strings.Join(c.Args, " ")); err != nil {
				c.Err(err)
				return
			}
			data, err := con.Recv(DefaultRecvWait)
			if err != nil {
				c.Err(err)
				return
			}
			printRecv(c, data)
		}),
	}

	// SendHexCmd sends raw bytes.
	SendHexCmd = ishell.Cmd{
		Name:    "sendhex",
		Aliases: []string{"sx"},
		Help:    "HEX",
		Func: mustBeOpen(func(c *ishell.Context, con *Console) {
			n, err := con.SendHex(strings.Join(c.Args, ""))
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%d bytes sent\n", n)
		}),
	}

	// RecvCmd prints received input.
	RecvCmd = ishell.Cmd{
		Name:    "recv",
		Aliases: []string{"r"},
		Help:    "[WAIT_MS]",
		Func: mustBeOpen(func(c *ishell.Context, con *Console) {
			wait := DefaultRecvWait
			if len(c.Args) > 0 {
				ms, err := strconv.ParseUint(c.Args[0], 10, 32)
				if err != nil {
					c.Err(fmt.Errorf("invalid wait %q", c.Args[0]))
					return
				}
				wait = time.Duration(ms) * time.Millisecond
			}
			data, err := con.Recv(wait)
			if err != nil {
				c.Err(err)
				return
			}
			printRecv(c, data)
		}),
	}

	// StatsCmd prints transport counters.
	StatsCmd = ishell.Cmd{
		Name: "stats",
		Help: "show counters",
		Func: func(c *ishell.Context) {
			c.Println(FormatStats(ConsoleFrom(c).Stats()))
		},
	}

	// PortsCmd lists host serial devices.
	PortsCmd = ishell.Cmd{
		Name:    "ports",
		Aliases: []string{"p"},
		Help:    "list serial devices",
		Func: func(c *ishell.Context) {
			ports, err := Ports()
			if err != nil {
				c.Err(err)
				return
			}
			if len(ports) == 0 {
				c.Println("No serial devices found")
				return
			}
			for _, p := range ports {
				c.Println(p)
			}
		},
	}
)

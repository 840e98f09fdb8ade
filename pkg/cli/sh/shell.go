// Package sh provides the ishell backed bench tool for inspecting and
// tuning parameter images directly, without a vehicle in the loop.
package sh

import (
	"flag"
	"fmt"
	"log"
	"strconv"

	"github.com/abiosoft/ishell"

	"github.com/robotalks/param.go/pkg/param"
)

// Shell wraps an interactive shell over a parameter store.
type Shell struct {
	Interactive bool

	Shell *ishell.Shell
	Store *param.Store
}

const shellKey = "$shell"

var (
	// flags

	evalOnly bool

	// commands
	commands = []*ishell.Cmd{
		&InfoCmd,
		&DumpCmd,
		&GetCmd,
		&SetCmd,
		&ResetCmd,
		&VerifyCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
}

// New creates a new shell over the store.
func New(store *param.Store) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		Shell:       ishell.New(),
		Store:       store,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt("param > ")
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// Run runs the shell.
func (s *Shell) Run(args ...string) {
	if len(args) > 0 {
		if err := s.Shell.Process(args...); err != nil {
			log.Fatalln(err)
		}
		return
	}
	if s.Interactive {
		s.Shell.Run()
		return
	}
	log.Fatalln("command expected")
}

func slotArg(c *ishell.Context) (int, bool) {
	if len(c.Args) < 1 {
		c.Err(fmt.Errorf("slot index expected"))
		return 0, false
	}
	i, err := strconv.Atoi(c.Args[0])
	if err != nil {
		c.Err(err)
		return 0, false
	}
	return i, true
}

var (
	// InfoCmd prints store geometry.
	InfoCmd = ishell.Cmd{
		Name:    "info",
		Aliases: []string{"i"},
		Help:    "",
		Func: func(c *ishell.Context) {
			s := ShellFrom(c)
			c.Printf("slots:    %d\n", s.Store.Count())
			c.Printf("image:    %d bytes\n", s.Store.ImageSize())
			c.Printf("checksum: 0x%04X\n", s.Store.Checksum())
		},
	}

	// DumpCmd lists all parameter values.
	DumpCmd = ishell.Cmd{
		Name:    "dump",
		Aliases: []string{"d", "list"},
		Help:    "",
		Func: func(c *ishell.Context) {
			for i, v := range ShellFrom(c).Store.Values() {
				c.Printf("%3d: %g\n", i, v)
			}
		},
	}

	// GetCmd prints one parameter value.
	GetCmd = ishell.Cmd{
		Name:    "get",
		Aliases: []string{"g"},
		Help:    "SLOT",
		Func: func(c *ishell.Context) {
			i, ok := slotArg(c)
			if !ok {
				return
			}
			v, err := ShellFrom(c).Store.Value(i)
			if err != nil {
				c.Err(err)
				return
			}
			c.Printf("%g\n", v)
		},
	}

	// SetCmd updates one parameter and persists it.
	SetCmd = ishell.Cmd{
		Name:    "set",
		Aliases: []string{"s"},
		Help:    "SLOT VALUE",
		Func: func(c *ishell.Context) {
			i, ok := slotArg(c)
			if !ok {
				return
			}
			if len(c.Args) < 2 {
				c.Err(fmt.Errorf("value expected"))
				return
			}
			v, err := strconv.ParseFloat(c.Args[1], 32)
			if err != nil {
				c.Err(err)
				return
			}
			if err = ShellFrom(c).Store.Set(i, float32(v)); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}

	// ResetCmd rewrites the image with all-zero defaults.
	ResetCmd = ishell.Cmd{
		Name: "reset",
		Help: "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Store.Reset(); err != nil {
				c.Err(err)
				return
			}
			c.Println("OK")
		},
	}

	// VerifyCmd re-reads the image from the medium and validates it.
	VerifyCmd = ishell.Cmd{
		Name: "verify",
		Help: "",
		Func: func(c *ishell.Context) {
			ok, err := ShellFrom(c).Store.Verify()
			if err != nil {
				c.Err(err)
				return
			}
			if ok {
				c.Println("valid")
			} else {
				c.Println("INVALID")
			}
		},
	}
)

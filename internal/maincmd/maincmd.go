// Package maincmd implements sixpass's per-pass CLI dispatch: a
// reflection-driven command table where a Cmd method matching the
// command-function shape is discovered by name, lower-cased, rather
// than registered by hand one at a time.
package maincmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/mna/mainer"
	"github.com/mna/sixpass/lang/ilerr"
	"github.com/rs/zerolog"
)

const binName = "sixpass"

var (
	shortUsage = fmt.Sprintf(`
usage: %s [<option>...] <command> SOURCE
Run '%[1]s --help' for details.
`, binName)

	longUsage = fmt.Sprintf(`usage: %s [<option>...] <command> SOURCE
       %[1]s --help
       %[1]s --version

Compiler pipeline for the sixpass intermediate languages: five
independently runnable passes, plus an 'all' command chaining them.

The <command> can be one of:
       lb                        Parse an LB source file and lower it to
                                  LA, writing prog.a.
       la                        Parse an LA file (prog.a) and tag it,
                                  writing IR to prog.IR.
       ir                        Parse an IR file (prog.IR), trace-schedule
                                  and tile it, writing L2 to prog.L2.
       l2                        Parse an L2 file (prog.L2) and run
                                  register allocation, writing L1 to
                                  prog.L1.
       l1                        Parse an L1 file (prog.L1) and either
                                  assemble it to prog.S or, with -i,
                                  interpret it directly.
       all                       Run every pass in sequence from an LB
                                  source file through to prog.S.

Valid flag options are:
       -h --help                 Show this help and exit.
       --version                 Print version and exit.
       -v --verbose              Print a verbose program dump before
                                 writing output.
       -g 0|1                    Enable code generation (default 1; the
                                 l1 and all commands only).
       -O 0|1|2                  Optimisation level (default 2): 0
                                 disables trace scheduling and dead-code
                                 elimination, 1 enables dead-code
                                 elimination only, 2 enables both.
       -s --spill-only           Restrict the l2 command to a spill-info
                                 dump.
       -l --liveness-only        Restrict the l2 command to a
                                 liveness-sets dump.
       -i --interference-only    Restrict the l2 command to an
                                 interference-graph dump; reused on the
                                 l1 command to mean "interpret instead of
                                 assemble".
       -d --debug                Enable leveled debug logging on stderr.

More information on the sixpass repository:
       https://github.com/mna/sixpass
`, binName)
)

type Cmd struct {
	BuildVersion string
	BuildDate    string

	Help    bool `flag:"h,help"`
	Version bool `flag:"version"`

	Verbose          bool `flag:"v,verbose"`
	GenCode          int  `flag:"g,gencode"`
	OptLevel         int  `flag:"O,optlevel"`
	SpillOnly        bool `flag:"s,spill-only"`
	LivenessOnly     bool `flag:"l,liveness-only"`
	InterferenceOnly bool `flag:"i,interference-only"`
	Debug            bool `flag:"d,debug"`

	args  []string
	flags map[string]bool
	cmdFn func(context.Context, mainer.Stdio, []string) error
}

func (c *Cmd) SetArgs(args []string) {
	c.args = args
}

func (c *Cmd) SetFlags(flags map[string]bool) {
	c.flags = flags
}

func (c *Cmd) Validate() error {
	if c.Help || c.Version {
		return nil
	}

	if len(c.args) == 0 {
		return errors.New("no command specified")
	}

	cmdName := c.args[0]
	commands := buildCmds(c)
	c.cmdFn = commands[cmdName]
	if c.cmdFn == nil {
		return fmt.Errorf("unknown command: %s", cmdName)
	}

	if len(c.args[1:]) != 1 {
		return fmt.Errorf("%s: exactly one SOURCE file must be provided", cmdName)
	}

	if (c.SpillOnly || c.LivenessOnly) && cmdName != "l2" {
		return fmt.Errorf("%s: -s and -l only apply to the l2 command", cmdName)
	}
	if c.InterferenceOnly && cmdName != "l2" && cmdName != "l1" {
		return fmt.Errorf("%s: -i only applies to the l2 and l1 commands", cmdName)
	}

	ec := loadEnvConfig()
	fc := loadFileConfig()
	c.OptLevel = resolveOptLevel(c.flags["O"] || c.flags["optlevel"], c.OptLevel, fc, ec)
	if !c.flags["g"] && !c.flags["gencode"] {
		c.GenCode = 1
	}

	return nil
}

func (c *Cmd) logger(stdio mainer.Stdio) zerolog.Logger {
	if !c.Debug {
		return zerolog.Nop()
	}
	w := zerolog.ConsoleWriter{Out: stdio.Stderr, NoColor: !loadEnvConfig().Color}
	return zerolog.New(w).Level(zerolog.DebugLevel).With().Timestamp().Logger()
}

func (c *Cmd) Main(args []string, stdio mainer.Stdio) (code mainer.ExitCode) {
	p := mainer.Parser{
		EnvVars:   false,
		EnvPrefix: strings.ToUpper(binName) + "_",
	}
	if err := p.Parse(args, c); err != nil {
		fmt.Fprintf(stdio.Stderr, "invalid arguments: %s\n%s", err, shortUsage)
		return mainer.InvalidArgs
	}

	switch {
	case c.Help:
		fmt.Fprint(stdio.Stdout, longUsage)
		return mainer.Success
	case c.Version:
		fmt.Fprintf(stdio.Stdout, "%s %s %s\n", binName, c.BuildVersion, c.BuildDate)
		return mainer.Success
	}

	ctx := mainer.CancelOnSignal(context.Background(), os.Interrupt)
	defer func() {
		if e := ilerr.Recover(recover()); e != nil {
			fmt.Fprintf(stdio.Stderr, "%s\n", e)
			code = mainer.Failure
		}
	}()
	if err := c.cmdFn(ctx, stdio, c.args[1:]); err != nil {
		fmt.Fprintf(stdio.Stderr, "%s\n", err)
		return mainer.Failure
	}
	return mainer.Success
}

// valid commands are those that take a mainer.Stdio and a slice of strings as
// input, and return an error as output.
func buildCmds(v interface{}) map[string]func(context.Context, mainer.Stdio, []string) error {
	cmds := make(map[string]func(context.Context, mainer.Stdio, []string) error)

	vv := reflect.ValueOf(v)
	vt := vv.Type()
	for i := 0; i < vt.NumMethod(); i++ {
		m := vt.Method(i)
		mt := m.Type

		if mt.NumIn() != 4 || mt.NumOut() != 1 {
			continue
		}
		if rt := mt.Out(0); rt.Kind() != reflect.Interface || rt.Name() != "error" {
			continue
		}
		if p0 := mt.In(0); p0.Kind() != reflect.Ptr || p0.Elem().Name() != "Cmd" {
			continue
		}
		if p1 := mt.In(1); p1.Kind() != reflect.Interface || p1.Name() != "Context" {
			continue
		}
		if p2 := mt.In(2); p2.Kind() != reflect.Struct || p2.Name() != "Stdio" {
			continue
		}
		if p3 := mt.In(3); p3.Kind() != reflect.Slice || p3.Elem().Name() != "string" {
			continue
		}
		cmds[strings.ToLower(m.Name)] = vv.Method(i).Interface().(func(context.Context, mainer.Stdio, []string) error)
	}
	return cmds
}

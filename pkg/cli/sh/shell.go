package sh

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/abiosoft/ishell"
	"github.com/golang/glog"

	"github.com/robotalks/coldplate.go/pkg/coldplate"
	"github.com/robotalks/coldplate.go/pkg/env"
	fx "github.com/robotalks/coldplate.go/pkg/framework"
	"github.com/robotalks/coldplate.go/pkg/telemetry/mqtt"
	"github.com/robotalks/coldplate.go/pkg/telemetry/msgs"
)

// ErrNotOpen indicates no device is open.
var ErrNotOpen = errors.New("not open")

// Shell provides ishell backed interactive shell.
type Shell struct {
	Interactive bool
	OutputJSON  bool
	AssumeYes   bool
	AutoOpen    bool

	Shell     *ishell.Shell
	Config    *env.Config
	Device    *coldplate.Device
	Publisher *mqtt.Publisher
	PortURL   string
}

const (
	shellKey     = "$shell"
	closedPrompt = "[none] > "
)

var (
	// flags

	evalOnly   bool
	outputJSON bool
	assumeYes  bool

	// commands
	commands = []*ishell.Cmd{
		&OpenCmd,
		&CloseCmd,
	}
)

func init() {
	flag.BoolVar(&evalOnly, "e", evalOnly, "Evaluation only, no interactive shell.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print output in JSON.")
	flag.BoolVar(&assumeYes, "y", assumeYes, "Assume yes to confirmations.")
}

// AddCmds is used by other commands providers during init func.
func AddCmds(cmds ...*ishell.Cmd) {
	commands = append(commands, cmds...)
}

// New creates a new shell.
func New(conf *env.Config) *Shell {
	s := &Shell{
		Interactive: !evalOnly,
		OutputJSON:  outputJSON,
		AssumeYes:   assumeYes,

		Shell:  ishell.New(),
		Config: conf,
	}
	s.Shell.Set(shellKey, s)
	s.Shell.SetPrompt(closedPrompt)
	for _, cmd := range commands {
		s.Shell.AddCmd(cmd)
	}
	return s
}

// ShellFrom gets Shell from ishell context.
func ShellFrom(c *ishell.Context) *Shell {
	return c.Get(shellKey).(*Shell)
}

// WithAutoOpen sets AutoOpen.
func (s *Shell) WithAutoOpen(en bool) *Shell {
	s.AutoOpen = en
	return s
}

// Confirm implements coldplate.Confirmer by prompting [y/n].
// Without a terminal only -y confirms.
func (s *Shell) Confirm(prompt string) bool {
	if s.AssumeYes {
		return true
	}
	if !s.Interactive {
		return false
	}
	s.Shell.Printf("%s [y/n] ", prompt)
	return IsYes(s.Shell.ReadLine())
}

// IsYes interprets an answer to a confirmation.
func IsYes(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true
	}
	return false
}

// Report implements coldplate.Reporter by printing events.
func (s *Shell) Report(ev coldplate.Event) {
	if s.OutputJSON {
		out, err := json.Marshal(msgs.FromEvent(ev))
		if err == nil {
			s.Shell.Println(string(out))
			return
		}
	}
	prefix := ""
	if ev.Kind == coldplate.EventWarning || ev.Kind == coldplate.EventTimedOut {
		prefix = "WARNING: "
	}
	s.Shell.Println(prefix + ev.String())
}

// Open opens a device. The current one is closed first, as a serial
// port can only be opened once.
func (s *Shell) Open(portURL string) error {
	conf := *s.Config
	if portURL != "" {
		conf.Port = portURL
	}
	if err := s.Close(); err != nil {
		glog.Warningf("close %s: %v", s.PortURL, err)
	}
	dev, err := conf.NewDevice()
	if err != nil {
		return err
	}

	reporters := coldplate.Reporters{s, coldplate.LogReporter{}}
	if s.Publisher == nil && conf.MQTTURL != "" {
		if s.Publisher, err = conf.NewPublisher(context.Background()); err != nil {
			glog.Warningf("telemetry disabled: %v", err)
		}
	}
	if s.Publisher != nil {
		reporters = append(reporters, s.Publisher)
		s.Publisher.SetMeta(deviceMeta(dev, conf.Port))
	}
	dev.Reporter = reporters
	dev.Confirmer = coldplate.ConfirmFunc(s.Confirm)
	s.Device, s.PortURL = dev, conf.Port
	s.setPrompt(fmt.Sprintf("%s > ", conf.Port))
	return nil
}

func deviceMeta(dev *coldplate.Device, portURL string) *msgs.Meta {
	ctx := context.Background()
	meta := &msgs.Meta{Port: portURL}
	meta.Description, _ = dev.Description(ctx)
	meta.Version, _ = dev.Version(ctx)
	meta.Serial, _ = dev.Serial(ctx)
	return meta
}

// Close closes current device.
func (s *Shell) Close() error {
	if s.Device == nil {
		return nil
	}
	err := s.Device.Close()
	s.Device, s.PortURL = nil, ""
	s.setPrompt(closedPrompt)
	return err
}

func (s *Shell) setPrompt(prompt string) {
	if s.Shell != nil {
		s.Shell.SetPrompt(prompt)
	}
}

// Shutdown closes the device and the telemetry publisher.
func (s *Shell) Shutdown() error {
	var errs fx.AggregatedError
	errs.Add(s.Close())
	if s.Publisher != nil {
		errs.Add(s.Publisher.Close())
		s.Publisher = nil
	}
	return errs.Aggregate()
}

// Print prints a command result.
func (s *Shell) Print(c *ishell.Context, result interface{}) {
	if s.OutputJSON {
		out, err := json.Marshal(result)
		if err != nil {
			c.Err(err)
			return
		}
		c.Println(string(out))
		return
	}
	switch r := result.(type) {
	case nil:
	case string:
		c.Println(r)
	case fmt.Stringer:
		c.Println(r.String())
	case float64:
		c.Printf("%.1f °C\n", r)
	default:
		c.Printf("%+v\n", r)
	}
}

// Outcome is the result of an operation which may be declined or
// not confirmed by readback.
type Outcome struct {
	Reply string `json:"reply,omitempty"`
	OK    bool   `json:"ok"`
}

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if !o.OK {
		return "NOT done"
	}
	if o.Reply == "" {
		return "OK"
	}
	return o.Reply
}

// Action is the body of a device command.
type Action func(ctx context.Context, c *ishell.Context, dev *coldplate.Device) (interface{}, error)

// DeviceFunc wraps an Action requiring an open device. The context is
// canceled on CtrlC for the duration of the command.
func DeviceFunc(action Action) func(c *ishell.Context) {
	return func(c *ishell.Context) {
		s := ShellFrom(c)
		if s.Device == nil {
			c.Err(ErrNotOpen)
			return
		}
		ctx, stop := fx.SignalContext(context.Background())
		defer stop()
		result, err := action(ctx, c, s.Device)
		if err != nil {
			c.Err(err)
			return
		}
		s.Print(c, result)
	}
}

// FloatArg parses the n-th argument as °C.
func FloatArg(c *ishell.Context, n int, name string) (float64, error) {
	if len(c.Args) <= n {
		return 0, fmt.Errorf("%s required", name)
	}
	val, err := strconv.ParseFloat(c.Args[n], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %v", name, err)
	}
	return val, nil
}

// Delta returns the optional tolerance argument at n, or the configured one.
func Delta(c *ishell.Context, n int) (float64, error) {
	if len(c.Args) <= n {
		return ShellFrom(c).Config.Delta, nil
	}
	return FloatArg(c, n, "DELTA")
}

// Run runs the shell.
func (s *Shell) Run(args ...string) error {
	defer s.Shutdown()
	if s.AutoOpen && s.Config.Port != "" {
		if s.Interactive {
			s.Shell.Printf("Opening %s ...\n", s.Config.Port)
		}
		if err := s.Open(""); err != nil {
			return fmt.Errorf("open %q failed: %w", s.Config.Port, err)
		}
	}

	if len(args) > 0 {
		return s.Shell.Process(args...)
	}
	if s.Interactive {
		s.Shell.Run()
		return nil
	}
	return errors.New("command expected")
}

var (
	// OpenCmd opens a device.
	OpenCmd = ishell.Cmd{
		Name:    "open",
		Aliases: []string{"o"},
		Help:    "[PORT-URL]",
		Func: func(c *ishell.Context) {
			var portURL string
			if len(c.Args) > 0 {
				portURL = c.Args[0]
			}
			if err := ShellFrom(c).Open(portURL); err != nil {
				c.Err(err)
			}
		},
	}

	// CloseCmd closes current device.
	CloseCmd = ishell.Cmd{
		Name: "close",
		Help: "",
		Func: func(c *ishell.Context) {
			if err := ShellFrom(c).Close(); err != nil {
				c.Err(err)
			}
		},
	}
)

// Main is a helper to provide a single call in main.
func Main() {
	flag.Parse()
	conf := env.NewConfig()
	if err := conf.LoadFile(); err != nil {
		glog.Exit(err)
	}
	if err := New(conf).WithAutoOpen(true).Run(flag.Args()...); err != nil {
		glog.Exit(err)
	}
}

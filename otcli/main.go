package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/otlcommon"
	"github.com/npillmayer/otlcommon/ot"
	"github.com/npillmayer/otlcommon/otquery"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
)

// tracer traces with key 'font.opentype.cli'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype.cli")
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter":            "go",
		"trace.font.opentype.cli":    "Info",
		"trace.font.opentype":        "Error",
		"trace.font.opentype.layout": "Error",
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", "", "Font to load")
	testfont := flag.Bool("testfont", false, "Relax checks for required tables")
	flag.Parse()
	tracer().SetTraceLevel(tracing.LevelError)           // will set the correct level later
	pterm.Info.Println("Welcome to OpenType Layout CLI") // colored welcome message
	//
	// set up REPL
	repl, err := readline.New("otl > ")
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	intp := &Intp{repl: repl}
	//
	// load font to use
	var opts []ot.ParseOption
	if *testfont {
		opts = append(opts, ot.IsTestfont)
	}
	if err := intp.loadFont(*fontname, opts...); err != nil { // font name provided by flag
		tracer().Errorf(err.Error())
		os.Exit(4)
	}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	switch *tlevel {
	case "Debug":
		tracer().SetTraceLevel(tracing.LevelDebug)
	case "Info":
		tracer().SetTraceLevel(tracing.LevelInfo)
	case "Error":
		tracer().SetTraceLevel(tracing.LevelError)
	default:
		tracer().Errorf("Invalid trace level: %s", *tlevel)
		os.Exit(5)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is our interpreter object
type Intp struct {
	font  *otlcommon.ScalableFont
	inst  *otquery.Instance
	repl  *readline.Instance
	table *ot.LayoutTable // GSUB or GPOS
}

func (intp *Intp) String() string {
	if intp == nil || intp.table == nil {
		return "()"
	}
	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("( table=%s", intp.table.Kind()))
	if coords := intp.inst.Coords(); len(coords) > 0 {
		sb.WriteString(" coords=[")
		for i, c := range coords {
			if i > 0 {
				sb.WriteString(" ")
			}
			sb.WriteString(fmt.Sprintf("%.3f", c.Float()))
		}
		sb.WriteString("]")
	}
	sb.WriteString(" )")
	return sb.String()
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		ops, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		err, quit := intp.execute(ops)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a single command of a command line, with up to two arguments.
type Op struct {
	code int
	arg  string
	arg2 string
}

const maxOpsPerLine = 32

const (
	QUIT int = iota
	HELP
	TABLE
	TABLES
	ERRORS
	SCRIPTS
	LANGS
	FEATURES
	LOOKUPS
	LOOKUP
	COVERAGE
	VARSTORE
	DELTA
	AXIS
	FVAR
)

var opMap = map[string]int{
	"quit":     QUIT,
	"help":     HELP,
	"table":    TABLE,
	"tables":   TABLES,
	"errors":   ERRORS,
	"scripts":  SCRIPTS,
	"langs":    LANGS,
	"features": FEATURES,
	"lookups":  LOOKUPS,
	"lookup":   LOOKUP,
	"coverage": COVERAGE,
	"varstore": VARSTORE,
	"delta":    DELTA,
	"axis":     AXIS,
	"fvar":     FVAR,
}

// parseCommand splits a line into ops. Ops are separated by white space,
// arguments by colons, e.g. "table:GPOS lookup:3". Unknown ops turn into
// requests for help. Parsing stops at 'quit'.
func parseCommand(line string) ([]Op, error) {
	steps := strings.Fields(line)
	if len(steps) > maxOpsPerLine {
		return nil, fmt.Errorf("too many commands in one line: %d", len(steps))
	}
	ops := make([]Op, 0, len(steps))
	for _, step := range steps {
		c := strings.Split(step, ":")
		code, ok := opMap[strings.ToLower(c[0])]
		if !ok {
			code = HELP
		}
		ops = append(ops, Op{code: code, arg: getOptArg(c, 1), arg2: getOptArg(c, 2)})
		if code == QUIT {
			break
		}
		tracer().Debugf("parsed command: %v", c)
	}
	return ops, nil
}

var commandFn = map[int]func(*Intp, *Op) (error, bool){
	QUIT:     quitOp,
	HELP:     helpOp,
	TABLE:    tableOp,
	TABLES:   tablesOp,
	ERRORS:   errorsOp,
	SCRIPTS:  scriptsOp,
	LANGS:    langsOp,
	FEATURES: featuresOp,
	LOOKUPS:  lookupsOp,
	LOOKUP:   lookupOp,
	COVERAGE: coverageOp,
	VARSTORE: varstoreOp,
	DELTA:    deltaOp,
	AXIS:     axisOp,
	FVAR:     fvarOp,
}

func (intp *Intp) execute(ops []Op) (err error, stop bool) {
	tracer().Debugf("cmd = %v", ops)
	for _, op := range ops {
		f, ok := commandFn[op.code]
		if !ok {
			pterm.Error.Printf("unknown command code: %d\n", op.code)
			return nil, false
		}
		if err, stop = f(intp, &op); err != nil || stop {
			return
		}
	}
	return
}

func quitOp(intp *Intp, op *Op) (error, bool) {
	pterm.Println("Goodbye!")
	return nil, true
}

// --- Font Loading -----------------------------------------------------

func (intp *Intp) loadFont(fontname string, opts ...ot.ParseOption) (err error) {
	if fontname == "" {
		return errors.New("no font given, use flag -font")
	}
	if intp.font, err = otlcommon.LoadOpenTypeFont(fontname, opts...); err != nil {
		tracer().Errorf("cannot load font %s: %s", fontname, err)
		return
	}
	tracer().Infof("parsed OpenType font = %s", intp.font.Fontname)
	otf := intp.font.OT
	intp.inst = otquery.NewInstance(otf)
	if intp.table = otf.Layout.GSub; intp.table == nil {
		intp.table = otf.Layout.GPos
	}
	pterm.Printf("font tables: %v\n", otf.TableTags())
	if n := len(otf.Errors()) + len(otf.Warnings()); n > 0 {
		pterm.Info.Printf("font has %d issues, see command 'errors'\n", n)
	}
	return
}

// ----------------------------------------------------------------------

var ERR_NO_TABLE = errors.New("no layout table set")

func (intp *Intp) checkTable() error {
	if intp.table == nil {
		return ERR_NO_TABLE
	}
	return nil
}

func getOptArg(s []string, inx int) string {
	if len(s) > inx {
		return s[inx]
	}
	return ""
}

func (op *Op) noArg() bool {
	return op.arg == ""
}

func (op *Op) hasArg() (string, bool) {
	if op.arg == "" {
		return "", false
	}
	return op.arg, true
}

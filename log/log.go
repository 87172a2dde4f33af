// Package log provides the leveled, key/value structured logger used
// throughout hxhim: module := log.New("module", "transport"); module.Info(
// "listening", "addr", addr).
package log

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-stack/stack"
	"github.com/logrusorgru/aurora"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// Lvl orders log levels from most to least severe.
type Lvl int

const (
	LvlCrit Lvl = iota
	LvlError
	LvlWarn
	LvlInfo
	LvlDebug
	LvlTrace
)

func (l Lvl) String() string {
	switch l {
	case LvlCrit:
		return "CRIT"
	case LvlError:
		return "ERRO"
	case LvlWarn:
		return "WARN"
	case LvlInfo:
		return "INFO"
	case LvlDebug:
		return "DBUG"
	default:
		return "TRCE"
	}
}

func (l Lvl) colorize(s string) string {
	switch l {
	case LvlCrit:
		return aurora.Red(s).Bold().String()
	case LvlError:
		return aurora.Red(s).String()
	case LvlWarn:
		return aurora.Yellow(s).String()
	case LvlInfo:
		return aurora.Green(s).String()
	case LvlDebug:
		return aurora.Cyan(s).String()
	default:
		return aurora.Gray(12, s).String()
	}
}

// Logger emits leveled, key/value records with a fixed set of context
// values (set via New/With) prepended to every record's own pairs.
type Logger struct {
	ctx []interface{}
}

var (
	root       = &Logger{}
	minLevel   = LvlInfo
	out        = colorable.NewColorableStderr()
	colorTTY   = isatty.IsTerminal(os.Stderr.Fd())
	mu         sync.Mutex
	callerSkip = 3
)

// SetLevel changes the minimum level that reaches the writer.
func SetLevel(l Lvl) { minLevel = l }

// New returns a Logger with ctx appended as permanent key/value context.
func New(ctx ...interface{}) *Logger {
	return &Logger{ctx: ctx}
}

// With returns a child Logger with additional permanent context.
func (l *Logger) With(ctx ...interface{}) *Logger {
	merged := make([]interface{}, 0, len(l.ctx)+len(ctx))
	merged = append(merged, l.ctx...)
	merged = append(merged, ctx...)
	return &Logger{ctx: merged}
}

func (l *Logger) log(lvl Lvl, msg string, kv []interface{}) {
	if lvl > minLevel {
		return
	}
	mu.Lock()
	defer mu.Unlock()

	var b strings.Builder
	ts := time.Now().Format("2006-01-02T15:04:05.000")
	b.WriteString(ts)
	b.WriteByte(' ')
	level := lvl.String()
	if colorTTY {
		level = lvl.colorize(level)
	}
	b.WriteString(level)
	b.WriteByte(' ')
	b.WriteString(msg)

	all := make([]interface{}, 0, len(l.ctx)+len(kv))
	all = append(all, l.ctx...)
	all = append(all, kv...)
	for i := 0; i+1 < len(all); i += 2 {
		fmt.Fprintf(&b, " %v=%v", all[i], all[i+1])
	}
	if len(all)%2 == 1 {
		fmt.Fprintf(&b, " %v=MISSING", all[len(all)-1])
	}
	if lvl <= LvlError {
		c := stack.Caller(callerSkip)
		fmt.Fprintf(&b, " caller=%+v", c)
	}
	b.WriteByte('\n')
	fmt.Fprint(out, b.String())
}

func (l *Logger) Crit(msg string, kv ...interface{})  { l.log(LvlCrit, msg, kv) }
func (l *Logger) Error(msg string, kv ...interface{}) { l.log(LvlError, msg, kv) }
func (l *Logger) Warn(msg string, kv ...interface{})  { l.log(LvlWarn, msg, kv) }
func (l *Logger) Info(msg string, kv ...interface{})  { l.log(LvlInfo, msg, kv) }
func (l *Logger) Debug(msg string, kv ...interface{}) { l.log(LvlDebug, msg, kv) }
func (l *Logger) Trace(msg string, kv ...interface{}) { l.log(LvlTrace, msg, kv) }

func Crit(msg string, kv ...interface{})  { root.log(LvlCrit, msg, kv) }
func Error(msg string, kv ...interface{}) { root.log(LvlError, msg, kv) }
func Warn(msg string, kv ...interface{})  { root.log(LvlWarn, msg, kv) }
func Info(msg string, kv ...interface{})  { root.log(LvlInfo, msg, kv) }
func Debug(msg string, kv ...interface{}) { root.log(LvlDebug, msg, kv) }
func Trace(msg string, kv ...interface{}) { root.log(LvlTrace, msg, kv) }

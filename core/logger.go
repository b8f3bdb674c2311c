package core

import (
	"bytes"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/Daraan/remenv/util/utillog"
	"github.com/natefinch/lumberjack"
	"github.com/sirupsen/logrus"
)

const (
	callerField = "caller"

	traceSpanIdWidth = 16
	fnWidth          = 30
	levelWidth       = 5
)

var (
	logger = logrus.New()

	logBufPool = sync.Pool{
		New: func() any {
			return &bytes.Buffer{}
		},
	}
)

func init() {
	logger.SetReportCaller(false) // caller is set manually through Rail
	logger.SetFormatter(CustomFormatter())
	logger.SetOutput(os.Stdout)

	utillog.DebugLog = func(pat string, args ...any) {
		if logger.IsLevelEnabled(logrus.DebugLevel) {
			logger.WithFields(logrus.Fields{callerField: ""}).Debugf(pat, args...)
		}
	}
	utillog.ErrorLog = func(pat string, args ...any) {
		logger.WithFields(logrus.Fields{callerField: ""}).Errorf(pat, args...)
	}
}

type CTFormatter struct {
}

func (c *CTFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	var fn string
	caller, ok := entry.Data[callerField]
	if ok {
		fn, _ = caller.(string)
	}

	var traceId string
	var spanId string
	if fields := entry.Data; fields != nil {
		if v, ok := fields[XTraceId].(string); ok {
			traceId = v
		}
		if v, ok := fields[XSpanId].(string); ok {
			spanId = v
		}
	}

	levelstr := toLevelStr(entry.Level)

	b := logBufPool.Get().(*bytes.Buffer)
	defer putLogBuf(b)

	b.WriteString(entry.Time.Format("2006-01-02 15:04:05.000"))
	b.WriteByte(' ')
	b.WriteString(levelstr)
	if len(levelstr) < levelWidth {
		b.WriteString(spaces(levelWidth - len(levelstr)))
	}

	b.WriteString(" [")
	b.WriteString(traceId)
	if len(traceId) < traceSpanIdWidth {
		b.WriteString(spaces(traceSpanIdWidth - len(traceId)))
	}
	b.WriteByte(',')
	b.WriteString(spanId)
	if len(spanId) < traceSpanIdWidth {
		b.WriteString(spaces(traceSpanIdWidth - len(spanId)))
	}
	b.WriteString("]  ")

	b.WriteString(fn)
	if len(fn) < fnWidth {
		b.WriteString(spaces(fnWidth - len(fn)))
	}

	b.WriteString(" : ")
	b.WriteString(entry.Message)
	b.WriteByte('\n')

	cp := make([]byte, b.Len())
	copy(cp, b.Bytes())
	return cp, nil
}

func putLogBuf(b *bytes.Buffer) {
	b.Reset()
	logBufPool.Put(b)
}

func toLevelStr(level logrus.Level) string {
	switch level {
	case logrus.TraceLevel:
		return "TRACE"
	case logrus.DebugLevel:
		return "DEBUG"
	case logrus.InfoLevel:
		return "INFO"
	case logrus.WarnLevel:
		return "WARN"
	case logrus.ErrorLevel:
		return "ERROR"
	case logrus.FatalLevel:
		return "FATAL"
	case logrus.PanicLevel:
		return "PANIC"
	}
	return "UNKNOWN"
}

func spaces(n int) string {
	return strings.Repeat(" ", n)
}

// Create custom formatter log
func CustomFormatter() logrus.Formatter {
	return &CTFormatter{}
}

// Set log level, one of trace/debug/info/warn/error.
func SetLogLevel(level string) {
	ll, err := logrus.ParseLevel(level)
	if err != nil {
		ll = logrus.InfoLevel
	}
	logger.SetLevel(ll)
}

func SetLogOutput(w io.Writer) {
	logger.SetOutput(w)
}

type NewRollingLogFileParam struct {
	Filename   string // filename
	MaxSize    int    // max file size in mb
	MaxAge     int    // max age in day
	MaxBackups int    // max number of files
}

// Create rolling file based log writer
func BuildRollingLogFileWriter(p NewRollingLogFileParam) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   p.Filename,
		MaxSize:    p.MaxSize,
		MaxAge:     p.MaxAge,
		MaxBackups: p.MaxBackups,
		LocalTime:  true,
		Compress:   false,
	}
}

// Configure logging based on loaded props.
//
// If [PropLogFile] is set, logs are written to the rolling file as well as
// stdout.
func ConfigureLogging() {
	SetLogLevel(GetPropStr(PropLogLevel))
	if f := GetPropStr(PropLogFile); f != "" {
		fw := BuildRollingLogFileWriter(NewRollingLogFileParam{
			Filename:   f,
			MaxSize:    GetPropInt(PropLogFileMaxSize),
			MaxAge:     GetPropInt(PropLogFileMaxAge),
			MaxBackups: GetPropInt(PropLogFileMaxBackups),
		})
		logger.SetOutput(io.MultiWriter(os.Stdout, fw))
	}
}

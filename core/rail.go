package core

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"math/rand/v2"
	"runtime"
	"strings"

	"github.com/Daraan/remenv/util/errs"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cast"
)

const (
	XTraceId = "X-B3-TraceId"
	XSpanId  = "X-B3-SpanId"
)

// Rail, an object that carries trace information along with the execution.
type Rail struct {
	ctx context.Context
}

func (r Rail) Context() context.Context {
	return r.ctx
}

func (r Rail) IsDone() bool {
	return r.ctx.Err() != nil
}

func (r Rail) Done() <-chan struct{} {
	return r.ctx.Done()
}

func (r Rail) CtxValue(key string) any {
	return r.ctx.Value(key)
}

func (r Rail) CtxValStr(key string) string {
	return cast.ToString(r.ctx.Value(key))
}

func (r Rail) TraceId() string {
	return r.CtxValStr(XTraceId)
}

func (r Rail) SpanId() string {
	return r.CtxValStr(XSpanId)
}

func (r Rail) WithCtxVal(key string, val any) Rail {
	return Rail{ctx: context.WithValue(r.ctx, key, val)}
}

// Create a new Rail with a new SpanId.
func (r Rail) NextSpan() Rail {
	return r.WithCtxVal(XSpanId, randSpanId())
}

func (r Rail) fields() logrus.Fields {
	return logrus.Fields{
		XSpanId:     r.ctx.Value(XSpanId),
		XTraceId:    r.ctx.Value(XTraceId),
		callerField: getCallerFn(),
	}
}

func (r Rail) Tracef(format string, args ...interface{}) {
	if !logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}
	logger.WithFields(r.fields()).Tracef(format, args...)
}

func (r Rail) Debugf(format string, args ...interface{}) {
	if !logger.IsLevelEnabled(logrus.DebugLevel) {
		return
	}
	logger.WithFields(r.fields()).Debugf(format, args...)
}

func (r Rail) Infof(format string, args ...interface{}) {
	if !logger.IsLevelEnabled(logrus.InfoLevel) {
		return
	}
	logger.WithFields(r.fields()).Infof(format, args...)
}

func (r Rail) Warnf(format string, args ...interface{}) {
	if !logger.IsLevelEnabled(logrus.WarnLevel) {
		return
	}
	logger.WithFields(r.fields()).Warnf(format, args...)
}

func (r Rail) Errorf(format string, args ...interface{}) {
	if !logger.IsLevelEnabled(logrus.ErrorLevel) {
		return
	}
	logger.WithFields(r.fields()).Errorf(appendErrStack(format, args...), args...)
}

func (r Rail) ErrorIf(err error, op string, args ...any) {
	if err != nil {
		r.Errorf(fmt.Sprintf("%v - %v, %v", getCallerFn(), op, err), args...)
	}
}

func (r Rail) WarnIf(err error, op string, args ...any) {
	if err != nil {
		r.Warnf(fmt.Sprintf("%v - %v, %v", getCallerFn(), op, err), args...)
	}
}

// Create empty Rail.
func EmptyRail() Rail {
	return Rail{ctx: context.Background()}
}

// Create new Rail with a generated TraceId and SpanId.
func NewRail() Rail {
	return EmptyRail().
		WithCtxVal(XTraceId, randTraceId()).
		WithCtxVal(XSpanId, randSpanId())
}

// Create Rail from context, trace ids are kept if present.
func NewRailCtx(ctx context.Context) Rail {
	if ctx == nil {
		return NewRail()
	}
	r := Rail{ctx: ctx}
	if r.TraceId() == "" {
		r = r.WithCtxVal(XTraceId, randTraceId())
	}
	if r.SpanId() == "" {
		r = r.WithCtxVal(XSpanId, randSpanId())
	}
	return r
}

func randTraceId() string {
	b := make([]byte, 16)
	binary.LittleEndian.PutUint64(b, rand.Uint64())
	binary.LittleEndian.PutUint64(b[8:], rand.Uint64())
	return hex.EncodeToString(b)
}

func randSpanId() string {
	b := make([]byte, 8)
	binary.LittleEndian.PutUint64(b, rand.Uint64())
	return hex.EncodeToString(b)
}

// For Errorf calls, append the wrapped error's stacktrace if there is one.
func appendErrStack(format string, args ...any) string {
	var err error = nil
	for i := len(args) - 1; i > -1; i-- {
		if er, ok := args[i].(error); ok {
			err = er
			break
		}
	}
	if err != nil {
		stackTrace, withStack := errs.UnwrapErrStack(err)
		if withStack {
			format += stackTrace
		}
	}
	return format
}

func getCallerFn() string {
	pc := make([]uintptr, 1)
	// skip runtime.Callers, getCallerFn, Rail method, logrus hop
	n := runtime.Callers(3, pc)
	if n < 1 {
		return ""
	}
	frame, _ := runtime.CallersFrames(pc).Next()
	fn := frame.Function
	if i := strings.LastIndexByte(fn, '/'); i > -1 {
		fn = fn[i+1:]
	}
	return fmt.Sprintf("%v:%v", fn, frame.Line)
}

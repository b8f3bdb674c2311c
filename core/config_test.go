package core

import (
	"testing"
	"time"
)

func TestPropDefaults(t *testing.T) {
	if GetPropInt(PropPoolSize) != 2 {
		t.Fatalf("pool size default: %v", GetPropInt(PropPoolSize))
	}
	if GetPropBool(PropPoolRestartOnFailure) {
		t.Fatal("restart should default to off")
	}
	if d := GetPropDur(PropPoolPollTimeout, time.Millisecond); d != 20*time.Millisecond {
		t.Fatalf("poll timeout default: %v", d)
	}
}

func TestLoadConfigFromStr(t *testing.T) {
	conf := `
remenv:
  pool:
    size: 7
    poll-timeout: 5ms
    restart-on-failure: true
`
	if err := LoadConfigFromStr(conf); err != nil {
		t.Fatal(err)
	}
	if GetPropInt(PropPoolSize) != 7 {
		t.Fatalf("pool size: %v", GetPropInt(PropPoolSize))
	}
	if d := GetPropDur(PropPoolPollTimeout, time.Millisecond); d != 5*time.Millisecond {
		t.Fatalf("poll timeout: %v", d)
	}
	if !GetPropBool(PropPoolRestartOnFailure) {
		t.Fatal("restart should be on")
	}

	// overrides beat loaded config
	SetProp(PropPoolSize, 9)
	if GetPropInt(PropPoolSize) != 9 {
		t.Fatalf("pool size after SetProp: %v", GetPropInt(PropPoolSize))
	}
}

func TestRailTraceIds(t *testing.T) {
	rail := NewRail()
	if rail.TraceId() == "" || rail.SpanId() == "" {
		t.Fatal("new rail should carry trace and span ids")
	}
	next := rail.NextSpan()
	if next.SpanId() == rail.SpanId() {
		t.Fatal("next span should differ")
	}
	if next.TraceId() != rail.TraceId() {
		t.Fatal("trace id should be preserved across spans")
	}
	rail.Infof("rail smoke test, trace=%v", rail.TraceId())
}

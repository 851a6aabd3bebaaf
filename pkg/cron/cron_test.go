package cron

import (
	"bytes"
	"context"
	"fmt"
	"testing"

	"github.com/charmbracelet/log"
)

func TestCronLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	logger.SetLevel(log.DebugLevel)
	clogger := cronLogger{logger}
	clogger.Info("foo")
	clogger.Error(fmt.Errorf("bar"), "test")
	if buf.String() != "DEBU foo\nERRO test err=bar\n" {
		t.Errorf("unexpected log output: %s", buf.String())
	}
}

func TestSchedulerAddRemove(t *testing.T) {
	s := NewScheduler(context.TODO())
	id, err := s.AddFunc("@daily", func() {})
	if err != nil {
		t.Fatal(err)
	}
	if n := len(s.Entries()); n != 1 {
		t.Errorf("got %d entries, want 1", n)
	}
	s.Remove(id)
	if n := len(s.Entries()); n != 0 {
		t.Errorf("got %d entries, want 0", n)
	}
}

func TestSchedulerInvalidSpec(t *testing.T) {
	s := NewScheduler(context.TODO())
	if _, err := s.AddFunc("every tuesday", func() {}); err == nil {
		t.Error("expected error for invalid spec")
	}
}

func TestSchedulerShutdown(t *testing.T) {
	s := NewScheduler(context.TODO())
	s.Start()
	s.Shutdown()
}

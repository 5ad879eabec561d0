package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/honeycarbs/hhnotify/pkg/logging"
)

func TestAddRejectsInvalidSpec(t *testing.T) {
	s := New(logging.NewNop(), time.Second)
	if err := s.Add("poll", "not a cron spec", func(context.Context) error { return nil }); err == nil {
		t.Fatalf("expected error for invalid spec")
	}
	if err := s.Add("poll", "*/5 * * * *", func(context.Context) error { return nil }); err != nil {
		t.Fatalf("expected standard spec to parse: %v", err)
	}
}

func TestJobRunsWithDeadline(t *testing.T) {
	s := New(logging.NewNop(), 5*time.Second)

	ran := make(chan bool, 1)
	err := s.Add("poll", "@every 1s", func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		select {
		case ran <- hasDeadline:
		default:
		}
		return errors.New("upstream down")
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}

	s.Start()
	defer func() {
		if err := s.Shutdown(context.Background()); err != nil {
			t.Errorf("Shutdown: %v", err)
		}
	}()

	select {
	case hasDeadline := <-ran:
		if !hasDeadline {
			t.Fatalf("expected job context to carry a deadline")
		}
	case <-time.After(3 * time.Second):
		t.Fatalf("job did not run")
	}
}

func TestShutdownIdle(t *testing.T) {
	s := New(nil, 0)
	s.Start()
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestCronLoggerError(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := cronLogger{log: logging.FromZap(zap.New(core))}

	l.Error(errors.New("boom"), "panic", "job", "poll")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if entries[0].Message != "cron: panic" || fields["job"] != "poll" || fields["err"] != "boom" {
		t.Fatalf("unexpected entry %+v %v", entries[0].Entry, fields)
	}
}

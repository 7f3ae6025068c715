package scheduler

import (
	"testing"
	"time"
)

func TestNewIntervalFires(t *testing.T) {
	trigger, err := NewInterval(10 * time.Millisecond)
	if err != nil {
		t.Fatalf("NewInterval() error = %v", err)
	}
	defer trigger.Stop()

	select {
	case <-trigger.C:
	case <-time.After(time.Second):
		t.Fatal("interval trigger did not fire")
	}
}

func TestNewIntervalRejectsNonPositive(t *testing.T) {
	if _, err := NewInterval(0); err == nil {
		t.Error("NewInterval(0) should error")
	}
	if _, err := NewInterval(-time.Second); err == nil {
		t.Error("NewInterval(-1s) should error")
	}
}

func TestNewCronRejectsGarbage(t *testing.T) {
	if _, err := NewCron("not a cron line"); err == nil {
		t.Error("NewCron() with garbage should error")
	}
}

func TestNewCronEveryFires(t *testing.T) {
	trigger, err := NewCron("@every 10ms")
	if err != nil {
		t.Fatalf("NewCron() error = %v", err)
	}
	defer trigger.Stop()

	select {
	case <-trigger.C:
	case <-time.After(2 * time.Second):
		t.Fatal("cron trigger did not fire")
	}
}

func TestCronNext(t *testing.T) {
	trigger, err := NewCron("@every 1h")
	if err != nil {
		t.Fatalf("NewCron() error = %v", err)
	}
	defer trigger.Stop()

	next := trigger.Next()
	if next.IsZero() {
		t.Error("Next() = zero time for cron trigger")
	}
	if until := time.Until(next); until > time.Hour+time.Minute {
		t.Errorf("Next() too far out: %v", until)
	}
}

func TestValidate(t *testing.T) {
	if err := Validate("*/5 * * * *"); err != nil {
		t.Errorf("Validate() error = %v for valid expression", err)
	}
	if err := Validate("banana"); err == nil {
		t.Error("Validate() should reject garbage")
	}
}

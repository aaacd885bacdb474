package gpio

import (
	"errors"
	"testing"
)

func TestFakeOutputRecordsLevels(t *testing.T) {
	f := NewFakeOutput()

	if f.Active() {
		t.Error("never-driven line should be inactive")
	}

	if err := f.DriveActive(); err != nil {
		t.Fatalf("DriveActive: %v", err)
	}
	if !f.Active() {
		t.Error("Active: got false, want true")
	}
	if err := f.DriveInactive(); err != nil {
		t.Fatalf("DriveInactive: %v", err)
	}

	got := f.History()
	if len(got) != 2 || got[0] != true || got[1] != false {
		t.Errorf("History: got %v, want [true false]", got)
	}
}

func TestFakeOutputFailWith(t *testing.T) {
	f := NewFakeOutput()
	f.FailWith(errors.New("line gone"), 1)

	if err := f.DriveActive(); err != nil {
		t.Fatalf("first drive should succeed: %v", err)
	}
	if err := f.DriveInactive(); err == nil || err.Error() != "line gone" {
		t.Errorf("second drive: got %v, want line gone", err)
	}
	if n := len(f.History()); n != 1 {
		t.Errorf("failed drive should not be recorded, history len %d", n)
	}
}

func TestFakeOutputFailImmediately(t *testing.T) {
	f := NewFakeOutput()
	f.FailWith(errors.New("boom"), -1)

	if err := f.DriveInactive(); err == nil {
		t.Error("expected error")
	}
}

func TestFakeOutputClose(t *testing.T) {
	f := NewFakeOutput()
	if f.Closed() {
		t.Error("should not be closed initially")
	}
	if err := f.Close(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if !f.Closed() {
		t.Error("should be closed after Close()")
	}
}

func TestFakeChipRequestOutput(t *testing.T) {
	c := NewFakeChip()

	out, err := c.RequestOutput(DefaultPinA)
	if err != nil {
		t.Fatalf("RequestOutput: %v", err)
	}
	if out != Output(c.Output(DefaultPinA)) {
		t.Error("Output should return the requested line")
	}

	if _, err := c.RequestOutput(DefaultPinA); err == nil {
		t.Error("expected error requesting the same pin twice")
	}
}

func TestFakeChipRequestError(t *testing.T) {
	c := NewFakeChip()
	c.RequestErrors[DefaultPinB] = errors.New("busy")

	if _, err := c.RequestOutput(DefaultPinB); err == nil {
		t.Error("expected scripted error")
	}
	if c.Output(DefaultPinB) != nil {
		t.Error("failed request should not register a line")
	}
}

func TestDrive(t *testing.T) {
	f := NewFakeOutput()

	if err := Drive(f, true); err != nil {
		t.Fatal(err)
	}
	if err := Drive(f, false); err != nil {
		t.Fatal(err)
	}

	got := f.History()
	if len(got) != 2 || !got[0] || got[1] {
		t.Errorf("History: got %v, want [true false]", got)
	}
}

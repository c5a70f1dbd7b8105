package dxtex

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

func TestDefaultLoggerSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var h slog.Handler = nopHandler{}
	if _, ok := h.WithAttrs([]slog.Attr{slog.Int("mips", 3)}).(nopHandler); !ok {
		t.Error("WithAttrs left the no-op handler")
	}
	if _, ok := h.WithGroup("dds").(nopHandler); !ok {
		t.Error("WithGroup left the no-op handler")
	}
	if err := h.Handle(context.Background(), slog.Record{}); err != nil {
		t.Errorf("Handle = %v", err)
	}

	SetLogger(slog.Default())
	SetLogger(nil)
	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) left a nil logger")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("silent logger enabled at %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)
	if Logger() != custom {
		t.Fatal("Logger() is not the logger passed to SetLogger")
	}

	src := solidRGBA(t, 8, 8, [4]byte{9, 9, 9, 255})
	out, err := src.GenerateMipMaps(0, TexFilterDefault)
	if err != nil {
		t.Fatal(err)
	}
	out.Release()
	if buf.Len() == 0 {
		t.Error("pipeline wrote nothing to the custom logger")
	}
}

func TestSetLoggerPropagatesToDevice(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() {
		SetLogger(orig)
		SetDeviceFactory(nil)
	})
	SetDeviceFactory(func() (*Device, error) { return NewDevice(WithWorkers(1)) })

	dev, err := HWDevice()
	if err != nil {
		t.Fatalf("HWDevice() = %v", err)
	}

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)

	if dev.logger() != custom {
		t.Error("SetLogger did not propagate to the process device")
	}
}

func TestNewDeviceUsesCurrentLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	dev, err := NewDevice(WithWorkers(2))
	if err != nil {
		t.Fatalf("NewDevice() = %v", err)
	}
	defer dev.Close()

	if dev.logger() != custom {
		t.Error("NewDevice did not pick up the current logger")
	}
	if !strings.Contains(buf.String(), "compression device created") {
		t.Errorf("expected creation to be logged, got: %s", buf.String())
	}
}

func TestLoggerConcurrentAccess(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var wg sync.WaitGroup
	for range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			Logger().Debug("read", "format", "BC7_UNORM")
		}()
		go func() {
			defer wg.Done()
			SetLogger(slog.Default())
			SetLogger(nil)
		}()
	}
	wg.Wait()
}

func BenchmarkDisabledLog(b *testing.B) {
	l := Logger()
	b.ReportAllocs()
	for b.Loop() {
		l.Debug("layout", "bytes", 4096, "images", 6)
	}
}

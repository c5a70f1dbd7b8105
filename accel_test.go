package dxtex

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/gogpu/dxtex/dxgi"
)

// fakeProvider is a host GPU context for tests.
type fakeProvider struct {
	device gpucontext.Device
	info   gpucontext.AdapterInfo
}

func (p *fakeProvider) Device() gpucontext.Device { return p.device }
func (p *fakeProvider) Queue() gpucontext.Queue   { return nil }
func (p *fakeProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}
func (p *fakeProvider) Adapter() gpucontext.Adapter          { return nil }
func (p *fakeProvider) AdapterInfo() gpucontext.AdapterInfo { return p.info }

var _ gpucontext.DeviceProvider = (*fakeProvider)(nil)

func TestShouldAccel(t *testing.T) {
	tests := []struct {
		format dxgi.Format
		want   bool
	}{
		{dxgi.FormatBC1Unorm, false},
		{dxgi.FormatBC3UnormSRGB, false},
		{dxgi.FormatBC5Snorm, false},
		{dxgi.FormatBC6HUF16, true},
		{dxgi.FormatBC6HSF16, true},
		{dxgi.FormatBC7Unorm, true},
		{dxgi.FormatBC7UnormSRGB, true},
		{dxgi.FormatR8G8B8A8Unorm, false},
	}
	for _, tt := range tests {
		if got := ShouldAccel(tt.format); got != tt.want {
			t.Errorf("ShouldAccel(%v) = %v, want %v", tt.format, got, tt.want)
		}
	}
}

func TestDeviceMatchesSoftware(t *testing.T) {
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 16, 16, 1, 0)
	pattern(src.Buffer())

	dev, err := NewDevice(WithWorkers(3))
	if err != nil {
		t.Fatal(err)
	}
	defer dev.Close()
	if dev.Workers() != 3 {
		t.Errorf("Workers() = %d", dev.Workers())
	}
	if dev.ID() == uuid.Nil {
		t.Error("device has no ID")
	}

	for _, f := range []dxgi.Format{dxgi.FormatBC7Unorm, dxgi.FormatBC1Unorm} {
		t.Run(f.String(), func(t *testing.T) {
			hw, err := src.CompressWithDevice(dev, f, TexCompressDefault, 0)
			if err != nil {
				t.Fatal(err)
			}
			defer hw.Release()
			sw, err := compress("test", src.Images(), src.Metadata(), f, TexCompressDefault, 0, nil)
			if err != nil {
				t.Fatal(err)
			}
			defer sw.Release()
			if diff := cmp.Diff(sw.Buffer(), hw.Buffer()); diff != "" {
				t.Errorf("device output differs (-software +device):\n%s", diff)
			}
		})
	}
}

func TestDeviceClosed(t *testing.T) {
	dev, err := NewDevice(WithWorkers(1))
	if err != nil {
		t.Fatal(err)
	}
	dev.Close()
	dev.Close()

	src := solidRGBA(t, 4, 4, [4]byte{})
	_, err = src.CompressWithDevice(dev, dxgi.FormatBC7Unorm, TexCompressDefault, 0)
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
	}
	var e *Error
	if errors.As(err, &e) && e.Code != DXGIErrorUnsupported {
		t.Errorf("code = %#x", uint32(e.Code))
	}
}

func TestDeviceCloseDuringCompress(t *testing.T) {
	dev, err := NewDevice(WithWorkers(4))
	if err != nil {
		t.Fatal(err)
	}
	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 64, 64, 4, 1)
	pattern(src.Buffer())

	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
	)
	errs := make(chan error, 8*4)
	for range 8 {
		wg.Add(1)
		started.Add(1)
		go func() {
			defer wg.Done()
			started.Done()
			for range 4 {
				out, err := src.CompressWithDevice(dev, dxgi.FormatBC1Unorm, TexCompressDefault, 0)
				if err != nil {
					errs <- err
					continue
				}
				out.Release()
			}
		}()
	}
	started.Wait()
	dev.Close()
	wg.Wait()
	close(errs)

	for err := range errs {
		if !errors.Is(err, ErrDeviceUnavailable) {
			t.Errorf("compress racing Close: %v", err)
		}
	}
	if _, err := dev.acquire("test"); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("closed device still usable: %v", err)
	}
}

func TestSetDeviceFactoryDuringCompress(t *testing.T) {
	t.Cleanup(func() { SetDeviceFactory(nil) })
	factory := func() (*Device, error) { return NewDevice(WithWorkers(2)) }
	SetDeviceFactory(factory)

	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 16, 16, 2, 1)
	pattern(src.Buffer())

	done := make(chan struct{})
	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
				}
				out, err := src.Compress(dxgi.FormatBC7Unorm, TexCompressDefault, 0)
				if err != nil {
					if !errors.Is(err, ErrDeviceUnavailable) {
						t.Errorf("compress racing SetDeviceFactory: %v", err)
					}
					continue
				}
				out.Release()
			}
		}()
	}
	for range 10 {
		SetDeviceFactory(factory)
		if _, err := HWDevice(); err != nil {
			t.Errorf("HWDevice: %v", err)
		}
	}
	close(done)
	wg.Wait()
}

func TestDeviceProvider(t *testing.T) {
	t.Run("bound", func(t *testing.T) {
		p := &fakeProvider{
			device: struct{}{},
			info:   gpucontext.AdapterInfo{Name: "Test GPU", Type: gpucontext.AdapterTypeIntegrated},
		}
		dev, err := NewDevice(WithDeviceProvider(p))
		if err != nil {
			t.Fatal(err)
		}
		defer dev.Close()
		info, ok := dev.AdapterInfo()
		if !ok || info.Name != "Test GPU" {
			t.Errorf("AdapterInfo() = %+v, %v", info, ok)
		}
	})
	t.Run("no device", func(t *testing.T) {
		dev, err := NewDevice(WithDeviceProvider(&fakeProvider{}))
		if !errors.Is(err, ErrDeviceUnavailable) {
			t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
		}
		if dev != nil {
			t.Error("device returned with error")
		}
	})
	t.Run("unbound", func(t *testing.T) {
		dev, err := NewDevice()
		if err != nil {
			t.Fatal(err)
		}
		defer dev.Close()
		if _, ok := dev.AdapterInfo(); ok {
			t.Error("unbound device reports an adapter")
		}
	})
}

func TestCompressDeviceFailure(t *testing.T) {
	t.Cleanup(func() { SetDeviceFactory(nil) })

	var calls atomic.Int32
	cause := errors.New("no adapter")
	SetDeviceFactory(func() (*Device, error) {
		calls.Add(1)
		return nil, cause
	})

	src := solidRGBA(t, 4, 4, [4]byte{1, 2, 3, 4})
	for range 2 {
		_, err := src.Compress(dxgi.FormatBC7Unorm, TexCompressDefault, 0)
		if !errors.Is(err, ErrDeviceUnavailable) {
			t.Fatalf("err = %v, want ErrDeviceUnavailable", err)
		}
		if !errors.Is(err, cause) {
			t.Errorf("err = %v does not wrap the factory error", err)
		}
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("factory called %d times, want 1", n)
	}

	// Formats the device does not handle stay on the software path.
	out, err := src.Compress(dxgi.FormatBC1Unorm, TexCompressDefault, 0)
	if err != nil {
		t.Fatalf("BC1 with failed device: %v", err)
	}
	out.Release()
}

func TestHWDeviceOnce(t *testing.T) {
	t.Cleanup(func() { SetDeviceFactory(nil) })

	var calls atomic.Int32
	SetDeviceFactory(func() (*Device, error) {
		calls.Add(1)
		return NewDevice(WithWorkers(2))
	})

	var wg sync.WaitGroup
	devs := make([]*Device, 8)
	for i := range devs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d, err := HWDevice()
			if err != nil {
				t.Error(err)
				return
			}
			devs[i] = d
		}()
	}
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Errorf("factory called %d times, want 1", n)
	}
	for _, d := range devs[1:] {
		if d != devs[0] {
			t.Fatal("HWDevice returned different devices")
		}
	}

	// Replacing the factory closes the created device.
	first := devs[0]
	SetDeviceFactory(nil)
	if _, err := first.acquire("test"); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("old device still usable: %v", err)
	}
}

func TestCompressUsesHWDevice(t *testing.T) {
	t.Cleanup(func() { SetDeviceFactory(nil) })
	SetDeviceFactory(func() (*Device, error) { return NewDevice(WithWorkers(2)) })

	src := mustInit2D(t, dxgi.FormatR8G8B8A8Unorm, 8, 8, 1, 1)
	pattern(src.Buffer())
	out, err := src.Compress(dxgi.FormatBC7Unorm, TexCompressDefault, 0)
	if err != nil {
		t.Fatal(err)
	}
	defer out.Release()
	if createdHWDevice() == nil {
		t.Error("Compress(BC7) did not create the process device")
	}
	if out.Format() != dxgi.FormatBC7Unorm || out.BufferSize() != 4*16 {
		t.Errorf("got %v with %d bytes", out.Format(), out.BufferSize())
	}
}
